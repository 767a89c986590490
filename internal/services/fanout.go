package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/itihub/backend/internal/models"
	"github.com/sirupsen/logrus"
)

// NotificationStore запись уведомлений. InsertNotifications пропускает
// строки с уже существующим кортежем идемпотентности.
type NotificationStore interface {
	InsertNotifications(notifications []models.Notification) (int, error)
	RetractNotification(recipient uuid.UUID, sender *uuid.UUID, notificationType models.NotificationType, kind models.RelatedKind, relatedID uuid.UUID) error
}

// Directory выборка получателей
type Directory interface {
	GroupMemberIDs(groupID uuid.UUID) ([]uuid.UUID, error)
	FindUsersByUsernames(usernames []string) ([]models.User, error)
	FollowerIDs(userID uuid.UUID) ([]uuid.UUID, error)
}

// FanoutService превращает доменное событие в уведомления для нужного
// набора получателей. Уведомления самому себе всегда подавляются.
type FanoutService struct {
	store NotificationStore
	dir   Directory
	log   *logrus.Entry
}

func NewFanoutService(store NotificationStore, dir Directory) *FanoutService {
	return &FanoutService{
		store: store,
		dir:   dir,
		log:   logrus.WithField("component", "fanout"),
	}
}

// HandleEvent вызывается синхронно после закоммиченной записи. Любая
// ошибка fan-out'а логируется и не возвращается: она не откатывает и не
// блокирует уже подтвержденную запись.
func (s *FanoutService) HandleEvent(event Event) {
	if err := s.dispatch(event); err != nil {
		s.log.WithError(err).WithField("event", event.Kind()).Error("fanout failed")
	}
}

func (s *FanoutService) dispatch(event Event) error {
	switch e := event.(type) {
	case MessageCreated:
		return s.onMessageCreated(e)
	case CommentAdded:
		return s.onCommentAdded(e)
	case ReactionAdded:
		return s.onReactionAdded(e)
	case ReactionRemoved:
		return s.onReactionRemoved(e)
	case PostCreated:
		return s.onPostCreated(e)
	case FollowCreated:
		return s.onFollowCreated(e)
	case BatchAssigned:
		return s.notifyBatch(e.BatchID, e.StudentIDs, models.NotificationBatchAssignment)
	case BatchEnded:
		return s.notifyBatch(e.BatchID, e.StudentIDs, models.NotificationBatchEnd)
	default:
		return fmt.Errorf("unknown event kind %q", event.Kind())
	}
}

func (s *FanoutService) onMessageCreated(e MessageCreated) error {
	msg := e.Message
	sender := msg.SenderID

	switch {
	case msg.ReceiverID != nil:
		// Личное сообщение — одно уведомление получателю
		if *msg.ReceiverID != sender {
			_, err := s.store.InsertNotifications([]models.Notification{
				notification(*msg.ReceiverID, &sender, models.NotificationChat, models.RelatedMessage, msg.ID),
			})
			if err != nil {
				return err
			}
		}

	case msg.GroupID != nil:
		// Групповое сообщение — пакетная вставка для всех, кроме отправителя
		memberIDs, err := s.dir.GroupMemberIDs(*msg.GroupID)
		if err != nil {
			return err
		}

		rows := make([]models.Notification, 0, len(memberIDs))
		for _, memberID := range memberIDs {
			if memberID == sender {
				continue
			}
			rows = append(rows, notification(memberID, &sender, models.NotificationGroupChat, models.RelatedMessage, msg.ID))
		}
		if _, err := s.store.InsertNotifications(rows); err != nil {
			return err
		}
	}

	return s.notifyMentions(msg.Content, sender, models.RelatedMessage, msg.ID)
}

func (s *FanoutService) onCommentAdded(e CommentAdded) error {
	comment := e.Comment

	if e.PostAuthorID != comment.AuthorID {
		_, err := s.store.InsertNotifications([]models.Notification{
			notification(e.PostAuthorID, &comment.AuthorID, models.NotificationComment, models.RelatedComment, comment.ID),
		})
		if err != nil {
			return err
		}
	}

	return s.notifyMentions(comment.Content, comment.AuthorID, models.RelatedComment, comment.ID)
}

func (s *FanoutService) onReactionAdded(e ReactionAdded) error {
	if e.OwnerID == e.Reaction.UserID {
		return nil
	}

	kind, entityID := reactionTarget(e.Reaction)
	row := notification(e.OwnerID, &e.Reaction.UserID, models.NotificationReaction, kind, entityID)
	row.ReactionType = e.Reaction.ReactionType

	_, err := s.store.InsertNotifications([]models.Notification{row})
	return err
}

// onReactionRemoved ретракция: снятая реакция удаляет ранее созданное
// уведомление и не создает нового.
func (s *FanoutService) onReactionRemoved(e ReactionRemoved) error {
	if e.OwnerID == e.Reaction.UserID {
		return nil
	}

	kind, entityID := reactionTarget(e.Reaction)
	return s.store.RetractNotification(e.OwnerID, &e.Reaction.UserID, models.NotificationReaction, kind, entityID)
}

func (s *FanoutService) onPostCreated(e PostCreated) error {
	followerIDs, err := s.dir.FollowerIDs(e.Post.AuthorID)
	if err != nil {
		return err
	}

	rows := make([]models.Notification, 0, len(followerIDs))
	for _, followerID := range followerIDs {
		if followerID == e.Post.AuthorID {
			continue
		}
		rows = append(rows, notification(followerID, &e.Post.AuthorID, models.NotificationNewPost, models.RelatedPost, e.Post.ID))
	}
	if _, err := s.store.InsertNotifications(rows); err != nil {
		return err
	}

	return s.notifyMentions(e.Post.Content, e.Post.AuthorID, models.RelatedPost, e.Post.ID)
}

func (s *FanoutService) onFollowCreated(e FollowCreated) error {
	if e.FollowerID == e.FollowingID {
		return nil
	}

	_, err := s.store.InsertNotifications([]models.Notification{
		notification(e.FollowingID, &e.FollowerID, models.NotificationFollow, models.RelatedUser, e.FollowerID),
	})
	return err
}

func (s *FanoutService) notifyBatch(batchID uuid.UUID, studentIDs []uuid.UUID, notificationType models.NotificationType) error {
	rows := make([]models.Notification, 0, len(studentIDs))
	for _, studentID := range studentIDs {
		rows = append(rows, notification(studentID, nil, notificationType, models.RelatedBatch, batchID))
	}
	_, err := s.store.InsertNotifications(rows)
	return err
}

// notifyMentions одно уведомление каждому упомянутому пользователю,
// автор исключается, повторные упоминания схлопнуты.
func (s *FanoutService) notifyMentions(body string, authorID uuid.UUID, kind models.RelatedKind, relatedID uuid.UUID) error {
	names := ExtractMentions(body)
	if len(names) == 0 {
		return nil
	}

	users, err := s.dir.FindUsersByUsernames(names)
	if err != nil {
		return err
	}

	rows := make([]models.Notification, 0, len(users))
	for _, user := range users {
		if user.ID == authorID {
			continue
		}
		rows = append(rows, notification(user.ID, &authorID, models.NotificationMention, kind, relatedID))
	}

	_, err = s.store.InsertNotifications(rows)
	return err
}

func notification(recipient uuid.UUID, sender *uuid.UUID, notificationType models.NotificationType, kind models.RelatedKind, relatedID uuid.UUID) models.Notification {
	return models.Notification{
		RecipientID: recipient,
		SenderID:    sender,
		Type:        notificationType,
		RelatedKind: kind,
		RelatedID:   relatedID,
		CreatedAt:   time.Now(),
	}
}

// reactionTarget ссылка уведомления указывает на сам пост/комментарий,
// а не на строку реакции: при повторной постановке реакция получает новый
// id, а ключ ретракции должен оставаться стабильным.
func reactionTarget(reaction models.Reaction) (models.RelatedKind, uuid.UUID) {
	if reaction.CommentID != nil {
		return models.RelatedComment, *reaction.CommentID
	}
	if reaction.PostID != nil {
		return models.RelatedPost, *reaction.PostID
	}
	return models.RelatedPost, uuid.Nil
}
