package application

import "github.com/vunguard/ledger/internal/notification/domain"

// NotificationDTO is the notification returned to callers.
type NotificationDTO struct {
	NotificationID string `json:"notification_id"`
	AccountID      uint   `json:"account_id"`
	Type           string `json:"type"`
	Title          string `json:"title"`
	Content        string `json:"content"`
	Status         string `json:"status"`
	IsRead         bool   `json:"is_read"`
	CreatedAt      int64  `json:"created_at"`
}

func toNotificationDTO(n *domain.Notification) *NotificationDTO {
	return &NotificationDTO{
		NotificationID: n.NotificationID,
		AccountID:      n.AccountID,
		Type:           string(n.Type),
		Title:          n.Title,
		Content:        n.Content,
		Status:         string(n.Status),
		IsRead:         n.IsRead,
		CreatedAt:      n.CreatedAt.Unix(),
	}
}
