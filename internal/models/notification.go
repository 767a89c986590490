package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationChat            NotificationType = "chat"
	NotificationGroupChat       NotificationType = "group_chat"
	NotificationMention         NotificationType = "mention"
	NotificationReaction        NotificationType = "reaction"
	NotificationComment         NotificationType = "comment"
	NotificationNewPost         NotificationType = "new_post"
	NotificationFollow          NotificationType = "follow"
	NotificationBatchAssignment NotificationType = "batch_assignment"
	NotificationBatchEnd        NotificationType = "batch_end"
)

// RelatedKind закрытый набор сущностей, на которые может ссылаться
// уведомление. Разрешение ссылки — обычный switch по kind, без рефлексии.
type RelatedKind string

const (
	RelatedMessage RelatedKind = "message"
	RelatedPost    RelatedKind = "post"
	RelatedComment RelatedKind = "comment"
	RelatedGroup   RelatedKind = "group"
	RelatedBatch   RelatedKind = "batch"
	RelatedUser    RelatedKind = "user"
)

// Notification создаётся только fan-out'ом. Кортеж
// (recipient, sender, type, related_kind, related_id) уникален —
// повторная доставка того же события не создаёт дубликат.
type Notification struct {
	ID           uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	RecipientID  uuid.UUID        `gorm:"not null;index;uniqueIndex:idx_notifications_dedup"`
	SenderID     *uuid.UUID       `gorm:"uniqueIndex:idx_notifications_dedup"`
	Type         NotificationType `gorm:"not null;uniqueIndex:idx_notifications_dedup"`
	ReactionType string
	RelatedKind  RelatedKind `gorm:"uniqueIndex:idx_notifications_dedup"`
	RelatedID    uuid.UUID   `gorm:"type:uuid;uniqueIndex:idx_notifications_dedup"`
	CreatedAt    time.Time
	IsRead       bool `gorm:"default:false"`

	// Связи
	Recipient User  `gorm:"foreignKey:RecipientID"`
	Sender    *User `gorm:"foreignKey:SenderID"`
}

// DedupKey строковая форма кортежа идемпотентности.
func (n *Notification) DedupKey() string {
	sender := ""
	if n.SenderID != nil {
		sender = n.SenderID.String()
	}
	return strings.Join([]string{
		n.RecipientID.String(),
		sender,
		string(n.Type),
		string(n.RelatedKind),
		n.RelatedID.String(),
	}, "|")
}
