package models

import (
	"github.com/google/uuid"
	"time"
)

// GroupChat групповая комната. Supervisors — подмножество Members с правами
// администратора (редактирование и удаление чужих сообщений).
type GroupChat struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string    `gorm:"not null"`
	BatchID   *uuid.UUID
	CreatedBy uuid.UUID
	CreatedAt time.Time

	// Связи
	Members     []User `gorm:"many2many:group_members"`
	Supervisors []User `gorm:"many2many:group_supervisors"`
}
