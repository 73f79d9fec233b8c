// Package application implements the notification use cases: recording
// messages for accounts, pushing them to a delivery channel, and the
// read/unread bookkeeping.
package application

import (
	"context"
	"fmt"

	"github.com/vunguard/ledger/internal/notification/domain"
	"github.com/vunguard/ledger/pkg/logger"
	"github.com/vunguard/ledger/pkg/metrics"
)

// SendNotificationCommand records and pushes one notification.
type SendNotificationCommand struct {
	AccountID uint
	Type      domain.NotificationType
	Title     string
	Content   string
}

// NotificationService coordinates the notification store and the push
// channel.
type NotificationService struct {
	repo    domain.NotificationRepository
	sender  domain.Sender
	metrics *metrics.Metrics
}

// NewNotificationService creates the notification service. m may be nil.
func NewNotificationService(repo domain.NotificationRepository, sender domain.Sender, m *metrics.Metrics) *NotificationService {
	return &NotificationService{
		repo:    repo,
		sender:  sender,
		metrics: m,
	}
}

// SendNotification persists the message and pushes it. The record is
// written even when the push fails; the failure is kept on the record.
func (s *NotificationService) SendNotification(ctx context.Context, cmd SendNotificationCommand) (string, error) {
	if cmd.AccountID == 0 || cmd.Title == "" {
		return "", fmt.Errorf("invalid notification: account id and title are required")
	}

	notification := domain.NewNotification(cmd.AccountID, cmd.Type, cmd.Title, cmd.Content)
	if err := s.repo.Save(ctx, notification); err != nil {
		return "", fmt.Errorf("failed to save notification: %w", err)
	}

	if err := s.sender.Send(ctx, notification); err != nil {
		logger.Warn(ctx, "notification push failed",
			"notification_id", notification.NotificationID,
			"account_id", notification.AccountID,
			"error", err,
		)
		notification.MarkFailed(err)
	} else {
		notification.MarkSent()
	}
	s.metrics.RecordNotification(string(notification.Status))

	if err := s.repo.Save(ctx, notification); err != nil {
		logger.Error(ctx, "failed to record notification status",
			"notification_id", notification.NotificationID, "error", err)
	}
	return notification.NotificationID, nil
}

// ListNotifications returns an account's notifications newest first.
func (s *NotificationService) ListNotifications(ctx context.Context, accountID uint, limit, offset int) ([]*NotificationDTO, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	notifications, total, err := s.repo.ListByAccount(ctx, accountID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	dtos := make([]*NotificationDTO, len(notifications))
	for i, n := range notifications {
		dtos[i] = toNotificationDTO(n)
	}
	return dtos, total, nil
}

// MarkRead flags one notification as seen.
func (s *NotificationService) MarkRead(ctx context.Context, notificationID string) error {
	notification, err := s.repo.Get(ctx, notificationID)
	if err != nil {
		return err
	}
	if notification.IsRead {
		return nil
	}
	notification.MarkRead()
	return s.repo.Save(ctx, notification)
}

// UnreadCount returns the number of unread notifications for an account.
func (s *NotificationService) UnreadCount(ctx context.Context, accountID uint) (int64, error) {
	return s.repo.CountUnread(ctx, accountID)
}
