package database

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/itihub/backend/internal/models"
	"gorm.io/gorm"
)

func (d *Database) GetBatch(id uuid.UUID) (*models.Batch, error) {
	var batch models.Batch
	if err := d.db.Preload("Students").First(&batch, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &batch, nil
}

// BatchStudentIDs идентификаторы студентов потока
func (d *Database) BatchStudentIDs(batchID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := d.db.Table("batch_students").
		Where("batch_id = ?", batchID).
		Pluck("user_id", &ids).Error
	return ids, err
}

func (d *Database) CreateBatch(batch *models.Batch) error {
	return d.db.Create(batch).Error
}

// AssignBatchStudents зачисляет студентов в поток. Несуществующие
// идентификаторы возвращают ErrNotFound до изменения состава.
func (d *Database) AssignBatchStudents(batchID uuid.UUID, studentIDs []uuid.UUID) error {
	batch, err := d.GetBatch(batchID)
	if err != nil {
		return err
	}

	students := make([]*models.User, 0, len(studentIDs))
	for _, studentID := range studentIDs {
		student, err := d.GetUser(studentID)
		if err != nil {
			return err
		}
		students = append(students, student)
	}

	return d.db.Model(batch).Association("Students").Append(students)
}

// CloseBatch фиксирует дату окончания потока
func (d *Database) CloseBatch(batchID uuid.UUID) error {
	result := d.db.Model(&models.Batch{}).
		Where("id = ?", batchID).
		Update("end_date", time.Now())
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
