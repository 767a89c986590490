package models

import (
	"github.com/google/uuid"
	"time"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Username     string    `gorm:"uniqueIndex;not null"`
	Email        string    `gorm:"uniqueIndex;not null"`
	PasswordHash string    `gorm:"not null"`
	AvatarURL    string
	IsStaff      bool `gorm:"default:false"`
	LastSeenAt   time.Time
	CreatedAt    time.Time

	// Связи
	Followers []User `gorm:"many2many:follows;joinForeignKey:FollowingID;joinReferences:FollowerID"`
	Following []User `gorm:"many2many:follows;joinForeignKey:FollowerID;joinReferences:FollowingID"`
}
