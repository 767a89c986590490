package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/itihub/backend/internal/database"
	"github.com/itihub/backend/internal/handlers/dto"
	"github.com/itihub/backend/internal/middleware"
	"github.com/itihub/backend/internal/models"
)

// NotificationReader CRUD-поверхность уведомлений для остального приложения
type NotificationReader interface {
	ListNotifications(recipient uuid.UUID, notificationType string, unreadOnly bool) ([]models.Notification, error)
	MarkNotificationRead(recipient, id uuid.UUID) error
	MarkAllNotificationsRead(recipient uuid.UUID) (int64, error)
	DeleteNotification(recipient, id uuid.UUID) error
	ClearNotifications(recipient uuid.UUID) (int64, error)
}

type NotificationHandler struct {
	store NotificationReader
}

func NewNotificationHandler(store NotificationReader) *NotificationHandler {
	return &NotificationHandler{store: store}
}

// List уведомления получателя, новые первыми; ?type= и ?unread=true
func (h *NotificationHandler) List(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	notificationType := c.Query("type")
	unreadOnly := c.Query("unread") == "true"

	notifications, err := h.store.ListNotifications(userID, notificationType, unreadOnly)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list notifications"})
		return
	}

	result := make([]dto.NotificationResponse, len(notifications))
	for i := range notifications {
		result[i] = formatNotification(&notifications[i])
	}

	c.JSON(http.StatusOK, gin.H{"notifications": result})
}

// MarkRead единственный переход unread → read; повторный вызов — no-op
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid notification id"})
		return
	}

	if err := h.store.MarkNotificationRead(userID, id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "notification not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to mark notification as read"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "notification marked as read"})
}

func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	count, err := h.store.MarkAllNotificationsRead(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to mark notifications as read"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("%d notifications marked as read", count)})
}

func (h *NotificationHandler) Delete(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid notification id"})
		return
	}

	if err := h.store.DeleteNotification(userID, id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "notification not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete notification"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "notification deleted"})
}

func (h *NotificationHandler) Clear(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	count, err := h.store.ClearNotifications(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to clear notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("%d notifications deleted", count)})
}

func formatNotification(n *models.Notification) dto.NotificationResponse {
	response := dto.NotificationResponse{
		ID:           n.ID,
		Type:         string(n.Type),
		ReactionType: n.ReactionType,
		RelatedKind:  string(n.RelatedKind),
		RelatedID:    n.RelatedID,
		Status:       "unread",
		Text:         notificationText(n),
		CreatedAt:    n.CreatedAt,
	}

	if n.IsRead {
		response.Status = "read"
	}

	if n.Sender != nil {
		response.Sender = &dto.NotificationSender{
			ID:       n.Sender.ID,
			Username: n.Sender.Username,
		}
	}

	return response
}

// notificationText текст для отображения; имя отправителя подставляется,
// если связь Sender загружена
func notificationText(n *models.Notification) string {
	sender := "Someone"
	if n.Sender != nil {
		sender = n.Sender.Username
	}

	switch n.Type {
	case models.NotificationChat:
		return fmt.Sprintf("New message from %s", sender)
	case models.NotificationGroupChat:
		return "New message in a group chat"
	case models.NotificationMention:
		return fmt.Sprintf("You were mentioned by %s", sender)
	case models.NotificationReaction:
		return fmt.Sprintf("%s reacted %s to your %s", sender, n.ReactionType, n.RelatedKind)
	case models.NotificationComment:
		return fmt.Sprintf("%s commented on your post", sender)
	case models.NotificationNewPost:
		return fmt.Sprintf("%s published a new post", sender)
	case models.NotificationFollow:
		return fmt.Sprintf("%s started following you", sender)
	case models.NotificationBatchAssignment:
		return "You have been assigned to a new batch"
	case models.NotificationBatchEnd:
		return "Your batch has ended"
	}
	return "New notification"
}
