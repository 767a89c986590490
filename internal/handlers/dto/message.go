package dto

import (
	"github.com/google/uuid"
	"time"
)

// MessageResponse элемент истории чата
type MessageResponse struct {
	ID        uuid.UUID  `json:"id"`
	RoomKey   string     `json:"room_key"`
	SenderID  uuid.UUID  `json:"sender_id"`
	Sender    string     `json:"sender"`
	Content   string     `json:"content"`
	CreatedAt time.Time  `json:"created_at"`
	Edited    bool       `json:"edited"`
	EditedAt  *time.Time `json:"edited_at,omitempty"`
}
