package sender

import (
	"context"

	"github.com/vunguard/ledger/internal/notification/domain"
	"github.com/vunguard/ledger/pkg/logger"
)

// MockSender logs notifications instead of delivering them. Used in
// development and when no push channel is configured.
type MockSender struct{}

// NewMockSender creates the logging push channel.
func NewMockSender() domain.Sender {
	return &MockSender{}
}

func (s *MockSender) Send(ctx context.Context, notification *domain.Notification) error {
	logger.Info(ctx, "notification delivered (mock)",
		"notification_id", notification.NotificationID,
		"account_id", notification.AccountID,
		"title", notification.Title,
	)
	return nil
}
