package models

import (
	"github.com/google/uuid"
	"time"
)

// ChatMessage сообщение группового или личного чата. RoomKey вычисляется
// при создании (см. roomkey.go) и не меняется. Для групповых сообщений
// заполнен GroupID, для личных — ReceiverID.
type ChatMessage struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	RoomKey    string    `gorm:"index;not null"`
	GroupID    *uuid.UUID
	SenderID   uuid.UUID `gorm:"not null"`
	ReceiverID *uuid.UUID
	Content    string `gorm:"not null"`
	CreatedAt  time.Time
	EditedAt   *time.Time

	// Связи
	Sender User       `gorm:"foreignKey:SenderID"`
	Group  *GroupChat `gorm:"foreignKey:GroupID"`
}

// Edited true, если сообщение когда-либо редактировалось.
func (m *ChatMessage) Edited() bool {
	return m.EditedAt != nil
}
