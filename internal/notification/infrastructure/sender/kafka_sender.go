// Package sender holds the push-channel implementations behind the
// notification service.
package sender

import (
	"context"
	"strconv"

	"github.com/vunguard/ledger/internal/notification/domain"
	"github.com/vunguard/ledger/pkg/mq"
)

// pushMessage is the wire format consumed by downstream delivery
// workers (mail, SMS, mobile push).
type pushMessage struct {
	NotificationID string `json:"notification_id"`
	AccountID      uint   `json:"account_id"`
	Type           string `json:"type"`
	Title          string `json:"title"`
	Content        string `json:"content"`
}

// KafkaSender hands notifications to Kafka for asynchronous delivery.
type KafkaSender struct {
	producer *mq.KafkaProducer
	topic    string
}

// NewKafkaSender creates the Kafka push channel.
func NewKafkaSender(producer *mq.KafkaProducer, topic string) domain.Sender {
	return &KafkaSender{
		producer: producer,
		topic:    topic,
	}
}

// Send publishes the notification keyed by account id, keeping per
// account ordering.
func (s *KafkaSender) Send(ctx context.Context, notification *domain.Notification) error {
	msg := pushMessage{
		NotificationID: notification.NotificationID,
		AccountID:      notification.AccountID,
		Type:           string(notification.Type),
		Title:          notification.Title,
		Content:        notification.Content,
	}
	key := strconv.FormatUint(uint64(notification.AccountID), 10)
	return s.producer.SendMessage(ctx, s.topic, key, msg)
}
