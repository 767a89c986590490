package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/itihub/backend/internal/database"
	"github.com/itihub/backend/internal/handlers/dto"
	"github.com/itihub/backend/internal/middleware"
	"github.com/itihub/backend/internal/models"
)

// HTTPMessageHandler read-путь истории чата. Переподключившийся клиент
// дочитывает пропущенное отсюда, а не из повторной рассылки.
type HTTPMessageHandler struct {
	db *database.Database
}

func NewHTTPMessageHandler(db *database.Database) *HTTPMessageHandler {
	return &HTTPMessageHandler{db: db}
}

// GetGroupMessages история групповой комнаты
func (h *HTTPMessageHandler) GetGroupMessages(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	groupID, err := uuid.Parse(c.Param("group_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid group id"})
		return
	}

	isMember, err := h.db.IsGroupMember(groupID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check membership"})
		return
	}
	if !isMember {
		c.JSON(http.StatusForbidden, gin.H{"error": "you are not a member of this group"})
		return
	}

	h.listMessages(c, models.GroupRoomKey(groupID))
}

// GetPrivateMessages история личной переписки с указанным пользователем
func (h *HTTPMessageHandler) GetPrivateMessages(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	peerID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	if _, err := h.db.GetUser(peerID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	h.listMessages(c, models.PrivateRoomKey(userID, peerID))
}

func (h *HTTPMessageHandler) listMessages(c *gin.Context, roomKey string) {
	// Параметры пагинации
	limit := 50
	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	// order=asc — старые первыми (прокрутка), по умолчанию новые первыми
	ascending := c.Query("order") == "asc"

	var before *time.Time
	if b := c.Query("before"); b != "" {
		if parsed, err := time.Parse(time.RFC3339, b); err == nil {
			before = &parsed
		}
	}

	messages, err := h.db.GetRoomMessages(roomKey, limit, before, ascending)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get messages"})
		return
	}

	result := make([]dto.MessageResponse, len(messages))
	for i, msg := range messages {
		result[i] = dto.MessageResponse{
			ID:        msg.ID,
			RoomKey:   msg.RoomKey,
			SenderID:  msg.SenderID,
			Sender:    msg.Sender.Username,
			Content:   msg.Content,
			CreatedAt: msg.CreatedAt,
			Edited:    msg.Edited(),
			EditedAt:  msg.EditedAt,
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"messages": result,
		"has_more": len(messages) == limit,
	})
}
