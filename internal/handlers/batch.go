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
	"github.com/itihub/backend/internal/services"
)

// BatchHandler управление учебными потоками; доступно только staff.
// Зачисление и завершение потока порождают события для fan-out'а.
type BatchHandler struct {
	db     *database.Database
	fanout EventSink
}

func NewBatchHandler(db *database.Database, fanout EventSink) *BatchHandler {
	return &BatchHandler{db: db, fanout: fanout}
}

// CreateBatch создает поток
func (h *BatchHandler) CreateBatch(c *gin.Context) {
	if !h.requireStaff(c) {
		return
	}

	var req struct {
		Name      string    `json:"name" binding:"required,max=100"`
		StartDate time.Time `json:"start_date" binding:"required"`
		EndDate   time.Time `json:"end_date"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	batch := &models.Batch{
		Name:      req.Name,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		CreatedAt: time.Now(),
	}
	if err := h.db.CreateBatch(batch); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create batch"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": batch.ID, "name": batch.Name})
}

// AssignStudents зачисляет студентов; каждый получает уведомление
func (h *BatchHandler) AssignStudents(c *gin.Context) {
	if !h.requireStaff(c) {
		return
	}

	batchID, err := uuid.Parse(c.Param("batch_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid batch id"})
		return
	}

	var req struct {
		StudentIDs []uuid.UUID `json:"student_ids" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.db.AssignBatchStudents(batchID, req.StudentIDs); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "batch or student not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to assign students"})
		return
	}

	h.fanout.HandleEvent(services.BatchAssigned{
		BatchID:    batchID,
		StudentIDs: req.StudentIDs,
	})

	c.JSON(http.StatusOK, gin.H{"message": "students assigned"})
}

// EndBatch завершает поток и уведомляет всех его студентов
func (h *BatchHandler) EndBatch(c *gin.Context) {
	if !h.requireStaff(c) {
		return
	}

	batchID, err := uuid.Parse(c.Param("batch_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid batch id"})
		return
	}

	studentIDs, err := h.db.BatchStudentIDs(batchID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list students"})
		return
	}

	if err := h.db.CloseBatch(batchID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "batch not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to end batch"})
		return
	}

	h.fanout.HandleEvent(services.BatchEnded{
		BatchID:    batchID,
		StudentIDs: studentIDs,
	})

	c.JSON(http.StatusOK, gin.H{"message": "batch ended"})
}

func (h *BatchHandler) requireStaff(c *gin.Context) bool {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	user, err := h.db.GetUser(userID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unknown user"})
		return false
	}
	if !user.IsStaff {
		c.JSON(http.StatusForbidden, gin.H{"error": "staff rights required"})
		return false
	}
	return true
}
