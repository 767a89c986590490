package dto

import (
	"github.com/google/uuid"
	"time"
)

type NotificationSender struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}

type NotificationResponse struct {
	ID           uuid.UUID           `json:"id"`
	Sender       *NotificationSender `json:"sender"`
	Type         string              `json:"type"`
	ReactionType string              `json:"reaction_type,omitempty"`
	RelatedKind  string              `json:"related_kind,omitempty"`
	RelatedID    uuid.UUID           `json:"related_id,omitempty"`
	Status       string              `json:"status"`
	Text         string              `json:"text"`
	CreatedAt    time.Time           `json:"created_at"`
}
