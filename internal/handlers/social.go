package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/itihub/backend/internal/database"
	"github.com/itihub/backend/internal/middleware"
	"github.com/itihub/backend/internal/services"
)

// SocialHandler подписки между пользователями. CRUD постов и комментариев
// живет в отдельном сервисе, подписки остаются здесь: их событие питает
// fan-out уведомлений.
type SocialHandler struct {
	db     *database.Database
	fanout EventSink
}

func NewSocialHandler(db *database.Database, fanout EventSink) *SocialHandler {
	return &SocialHandler{db: db, fanout: fanout}
}

// Follow подписывает текущего пользователя на указанного
func (h *SocialHandler) Follow(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	targetID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	if targetID == userID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot follow yourself"})
		return
	}

	if err := h.db.Follow(userID, targetID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to follow user"})
		return
	}

	h.fanout.HandleEvent(services.FollowCreated{
		FollowerID:  userID,
		FollowingID: targetID,
	})

	c.JSON(http.StatusOK, gin.H{"message": "followed"})
}
