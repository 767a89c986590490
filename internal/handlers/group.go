package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/itihub/backend/internal/database"
	"github.com/itihub/backend/internal/middleware"
	"github.com/itihub/backend/internal/models"
)

// GroupHandler минимальное управление групповыми комнатами: эта
// поверхность наполняет таблицы членства, которые читает gateway.
type GroupHandler struct {
	db *database.Database
}

func NewGroupHandler(db *database.Database) *GroupHandler {
	return &GroupHandler{db: db}
}

// CreateGroup создает группу; создатель становится участником и супервайзером
func (h *GroupHandler) CreateGroup(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	var req struct {
		Name      string   `json:"name" binding:"required,max=100"`
		MemberIDs []string `json:"member_ids"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	group := &models.GroupChat{
		Name:      req.Name,
		CreatedBy: userID,
		CreatedAt: time.Now(),
	}

	if err := h.db.CreateGroup(group); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create group"})
		return
	}

	if err := h.db.AddGroupMember(group.ID, userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add creator to group"})
		return
	}
	if err := h.db.AddGroupSupervisor(group.ID, userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to promote creator"})
		return
	}

	for _, memberID := range req.MemberIDs {
		id, err := uuid.Parse(memberID)
		if err != nil || id == userID {
			continue
		}
		h.db.AddGroupMember(group.ID, id)
	}

	fullGroup, err := h.db.GetGroup(group.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load group"})
		return
	}

	c.JSON(http.StatusCreated, formatGroupResponse(fullGroup))
}

// GetGroup информация о группе; доступна только участникам
func (h *GroupHandler) GetGroup(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	groupID, err := uuid.Parse(c.Param("group_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid group id"})
		return
	}

	group, err := h.db.GetGroup(groupID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "group not found"})
		return
	}

	isMember := false
	for _, member := range group.Members {
		if member.ID == userID {
			isMember = true
			break
		}
	}
	if !isMember {
		c.JSON(http.StatusForbidden, gin.H{"error": "you are not a member of this group"})
		return
	}

	c.JSON(http.StatusOK, formatGroupResponse(group))
}

// AddMember добавляет участника; членство создается только здесь,
// никогда при подключении
func (h *GroupHandler) AddMember(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	groupID, targetID, ok := h.memberParams(c)
	if !ok {
		return
	}

	if !h.requireAdmin(c, groupID, userID) {
		return
	}

	if err := h.db.AddGroupMember(groupID, targetID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "group or user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add member"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "member added"})
}

func (h *GroupHandler) RemoveMember(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	groupID, targetID, ok := h.memberParams(c)
	if !ok {
		return
	}

	// Выйти из группы можно самому, исключить другого — только супервайзеру
	if targetID != userID && !h.requireAdmin(c, groupID, userID) {
		return
	}

	if err := h.db.RemoveGroupMember(groupID, targetID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "group or user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to remove member"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "member removed"})
}

// PromoteSupervisor выдает права администратора участнику группы
func (h *GroupHandler) PromoteSupervisor(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	groupID, targetID, ok := h.memberParams(c)
	if !ok {
		return
	}

	if !h.requireAdmin(c, groupID, userID) {
		return
	}

	if err := h.db.AddGroupSupervisor(groupID, targetID); err != nil {
		if errors.Is(err, database.ErrForbidden) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "user is not a member of this group"})
			return
		}
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "group or user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to promote supervisor"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "supervisor promoted"})
}

func (h *GroupHandler) memberParams(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	groupID, err := uuid.Parse(c.Param("group_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid group id"})
		return uuid.Nil, uuid.Nil, false
	}

	targetID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return uuid.Nil, uuid.Nil, false
	}

	return groupID, targetID, true
}

func (h *GroupHandler) requireAdmin(c *gin.Context, groupID, userID uuid.UUID) bool {
	isAdmin, err := h.db.IsGroupAdmin(groupID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check permissions"})
		return false
	}
	if !isAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "supervisor rights required"})
		return false
	}
	return true
}

func formatGroupResponse(group *models.GroupChat) gin.H {
	members := make([]gin.H, len(group.Members))
	for i, member := range group.Members {
		members[i] = gin.H{
			"id":       member.ID,
			"username": member.Username,
		}
	}

	supervisors := make([]uuid.UUID, len(group.Supervisors))
	for i, supervisor := range group.Supervisors {
		supervisors[i] = supervisor.ID
	}

	return gin.H{
		"id":          group.ID,
		"name":        group.Name,
		"created_by":  group.CreatedBy,
		"created_at":  group.CreatedAt,
		"members":     members,
		"supervisors": supervisors,
	}
}
