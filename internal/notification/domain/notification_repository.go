package domain

import "context"

// NotificationRepository is the notification store.
type NotificationRepository interface {
	// Save inserts or updates a notification by its business id.
	Save(ctx context.Context, notification *Notification) error
	// Get loads a notification or returns ErrNotificationNotFound.
	Get(ctx context.Context, notificationID string) (*Notification, error)
	// ListByAccount returns an account's notifications newest first.
	ListByAccount(ctx context.Context, accountID uint, limit, offset int) ([]*Notification, int64, error)
	// CountUnread returns the number of unread notifications.
	CountUnread(ctx context.Context, accountID uint) (int64, error)
}

// Sender pushes a notification to an external channel. The in-app record
// is the source of truth; push delivery is best-effort.
type Sender interface {
	Send(ctx context.Context, notification *Notification) error
}
