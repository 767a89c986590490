package models

import (
	"github.com/google/uuid"
	"time"
)

type Batch struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string    `gorm:"not null"`
	StartDate time.Time
	EndDate   time.Time
	CreatedAt time.Time

	// Связи
	Students []User `gorm:"many2many:batch_students"`
}
