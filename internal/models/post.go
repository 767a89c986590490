package models

import (
	"github.com/google/uuid"
	"time"
)

// Посты, комментарии и реакции принадлежат внешнему CRUD-слою;
// здесь только то, что нужно fan-out'у уведомлений.

type Post struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	AuthorID  uuid.UUID `gorm:"not null"`
	Content   string    `gorm:"not null"`
	CreatedAt time.Time

	Author User `gorm:"foreignKey:AuthorID"`
}

type Comment struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	PostID    uuid.UUID `gorm:"not null"`
	AuthorID  uuid.UUID `gorm:"not null"`
	Content   string    `gorm:"not null"`
	CreatedAt time.Time

	Author User `gorm:"foreignKey:AuthorID"`
}

// Типы реакций
const (
	ReactionLike  = "like"
	ReactionLove  = "love"
	ReactionHaha  = "haha"
	ReactionWow   = "wow"
	ReactionSad   = "sad"
	ReactionAngry = "angry"
)

// Reaction ставится либо на пост, либо на комментарий.
type Reaction struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID       uuid.UUID `gorm:"not null"`
	PostID       *uuid.UUID
	CommentID    *uuid.UUID
	ReactionType string `gorm:"not null"`
	CreatedAt    time.Time
}
