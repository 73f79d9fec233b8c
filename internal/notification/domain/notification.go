// Package domain holds the in-app notification model: the messages an
// account sees after its transactions commit.
package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrNotificationNotFound is returned when a notification id does not exist.
var ErrNotificationNotFound = errors.New("notification not found")

// NotificationType classifies the message.
type NotificationType string

const (
	NotificationTypeTransaction NotificationType = "transaction"
	NotificationTypeSystem      NotificationType = "system"
)

// NotificationStatus tracks delivery to the push channel. The in-app
// record exists regardless of push outcome.
type NotificationStatus string

const (
	NotificationStatusPending NotificationStatus = "PENDING"
	NotificationStatusSent    NotificationStatus = "SENT"
	NotificationStatusFailed  NotificationStatus = "FAILED"
)

// Notification is one message addressed to an account.
type Notification struct {
	gorm.Model
	NotificationID string             `gorm:"column:notification_id;type:varchar(36);uniqueIndex;not null" json:"notification_id"`
	AccountID      uint               `gorm:"column:account_id;index;not null" json:"account_id"`
	Type           NotificationType   `gorm:"column:type;type:varchar(20);not null" json:"type"`
	Title          string             `gorm:"column:title;type:varchar(128);not null" json:"title"`
	Content        string             `gorm:"column:content;type:text" json:"content"`
	Status         NotificationStatus `gorm:"column:status;type:varchar(20);index;not null;default:'PENDING'" json:"status"`
	ErrorMessage   string             `gorm:"column:error_message;type:text" json:"error_message,omitempty"`
	IsRead         bool               `gorm:"column:is_read;not null;default:false" json:"is_read"`
	SentAt         *time.Time         `gorm:"column:sent_at;type:datetime" json:"sent_at,omitempty"`
}

// NewNotification creates a pending, unread notification.
func NewNotification(accountID uint, notificationType NotificationType, title, content string) *Notification {
	return &Notification{
		NotificationID: uuid.New().String(),
		AccountID:      accountID,
		Type:           notificationType,
		Title:          title,
		Content:        content,
		Status:         NotificationStatusPending,
	}
}

// MarkSent records successful delivery to the push channel.
func (n *Notification) MarkSent() {
	now := time.Now()
	n.Status = NotificationStatusSent
	n.SentAt = &now
	n.ErrorMessage = ""
}

// MarkFailed records a delivery failure.
func (n *Notification) MarkFailed(err error) {
	n.Status = NotificationStatusFailed
	n.ErrorMessage = err.Error()
}

// MarkRead flags the notification as seen by the account.
func (n *Notification) MarkRead() {
	n.IsRead = true
}
