// Package http exposes an account's notifications over gin.
package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/vunguard/ledger/internal/notification/application"
	"github.com/vunguard/ledger/internal/notification/domain"
	"github.com/vunguard/ledger/pkg/logger"
)

const accountHeader = "X-Account-ID"

// NotificationHandler is the HTTP adapter over the notification service.
type NotificationHandler struct {
	service *application.NotificationService
}

// NewNotificationHandler creates the HTTP adapter.
func NewNotificationHandler(service *application.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

// RegisterRoutes mounts the notification API.
func (h *NotificationHandler) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api/v1/notifications")
	{
		api.GET("", h.ListNotifications)
		api.GET("/unread_count", h.UnreadCount)
		api.PUT("/:id/read", h.MarkRead)
	}
}

// ListNotifications returns the requesting account's notifications.
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	accountID, ok := h.accountID(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if offset < 0 {
		offset = 0
	}

	notifications, total, err := h.service.ListNotifications(c.Request.Context(), accountID, limit, offset)
	if err != nil {
		logger.Error(c.Request.Context(), "failed to list notifications", "account_id", accountID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"notifications": notifications, "total": total})
}

// UnreadCount returns the requesting account's unread counter.
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	accountID, ok := h.accountID(c)
	if !ok {
		return
	}

	count, err := h.service.UnreadCount(c.Request.Context(), accountID)
	if err != nil {
		logger.Error(c.Request.Context(), "failed to count unread notifications", "account_id", accountID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"unread_count": count})
}

// MarkRead flags one notification as seen.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	notificationID := c.Param("id")
	if notificationID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "notification id is required"})
		return
	}

	if err := h.service.MarkRead(c.Request.Context(), notificationID); err != nil {
		if errors.Is(err, domain.ErrNotificationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		logger.Error(c.Request.Context(), "failed to mark notification read", "notification_id", notificationID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *NotificationHandler) accountID(c *gin.Context) (uint, bool) {
	raw := c.GetHeader(accountHeader)
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "X-Account-ID header is required"})
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid X-Account-ID header"})
		return 0, false
	}
	return uint(id), true
}
