package services

import (
	"github.com/google/uuid"
	"github.com/itihub/backend/internal/models"
)

// Доменные события — явное размеченное объединение. Fan-out сопоставляет
// по конкретному типу, без рефлексии и неявной регистрации обработчиков.

type EventKind string

const (
	EventMessageCreated  EventKind = "message_created"
	EventCommentAdded    EventKind = "comment_added"
	EventReactionAdded   EventKind = "reaction_added"
	EventReactionRemoved EventKind = "reaction_removed"
	EventPostCreated     EventKind = "post_created"
	EventFollowCreated   EventKind = "follow_created"
	EventBatchAssigned   EventKind = "batch_assigned"
	EventBatchEnded      EventKind = "batch_ended"
)

type Event interface {
	Kind() EventKind
}

// MessageCreated сообщение чата сохранено
type MessageCreated struct {
	Message models.ChatMessage
}

func (MessageCreated) Kind() EventKind { return EventMessageCreated }

// CommentAdded комментарий к посту сохранен
type CommentAdded struct {
	Comment      models.Comment
	PostAuthorID uuid.UUID
}

func (CommentAdded) Kind() EventKind { return EventCommentAdded }

// ReactionAdded реакция поставлена; OwnerID — автор поста или комментария
type ReactionAdded struct {
	Reaction models.Reaction
	OwnerID  uuid.UUID
}

func (ReactionAdded) Kind() EventKind { return EventReactionAdded }

// ReactionRemoved реакция снята
type ReactionRemoved struct {
	Reaction models.Reaction
	OwnerID  uuid.UUID
}

func (ReactionRemoved) Kind() EventKind { return EventReactionRemoved }

// PostCreated новый пост опубликован
type PostCreated struct {
	Post models.Post
}

func (PostCreated) Kind() EventKind { return EventPostCreated }

// FollowCreated пользователь подписался на другого
type FollowCreated struct {
	FollowerID  uuid.UUID
	FollowingID uuid.UUID
}

func (FollowCreated) Kind() EventKind { return EventFollowCreated }

// BatchAssigned студенты зачислены в поток
type BatchAssigned struct {
	BatchID    uuid.UUID
	StudentIDs []uuid.UUID
}

func (BatchAssigned) Kind() EventKind { return EventBatchAssigned }

// BatchEnded поток завершен
type BatchEnded struct {
	BatchID    uuid.UUID
	StudentIDs []uuid.UUID
}

func (BatchEnded) Kind() EventKind { return EventBatchEnded }
