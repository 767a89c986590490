package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/itihub/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeNotificationStore in-memory хранилище с тем же контрактом
// идемпотентности, что и database.InsertNotifications
type fakeNotificationStore struct {
	rows map[string]models.Notification
}

func newFakeNotificationStore() *fakeNotificationStore {
	return &fakeNotificationStore{rows: make(map[string]models.Notification)}
}

func (f *fakeNotificationStore) InsertNotifications(notifications []models.Notification) (int, error) {
	inserted := 0
	for _, n := range notifications {
		key := n.DedupKey()
		if _, ok := f.rows[key]; ok {
			continue
		}
		f.rows[key] = n
		inserted++
	}
	return inserted, nil
}

func (f *fakeNotificationStore) RetractNotification(recipient uuid.UUID, sender *uuid.UUID, notificationType models.NotificationType, kind models.RelatedKind, relatedID uuid.UUID) error {
	probe := models.Notification{
		RecipientID: recipient,
		SenderID:    sender,
		Type:        notificationType,
		RelatedKind: kind,
		RelatedID:   relatedID,
	}
	delete(f.rows, probe.DedupKey())
	return nil
}

func (f *fakeNotificationStore) forRecipient(recipient uuid.UUID) []models.Notification {
	var result []models.Notification
	for _, n := range f.rows {
		if n.RecipientID == recipient {
			result = append(result, n)
		}
	}
	return result
}

func (f *fakeNotificationStore) countByType(notificationType models.NotificationType) int {
	count := 0
	for _, n := range f.rows {
		if n.Type == notificationType {
			count++
		}
	}
	return count
}

type fakeDirectory struct {
	members   map[uuid.UUID][]uuid.UUID
	usersByName map[string]models.User
	followers map[uuid.UUID][]uuid.UUID
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{
		members:     make(map[uuid.UUID][]uuid.UUID),
		usersByName: make(map[string]models.User),
		followers:   make(map[uuid.UUID][]uuid.UUID),
	}
}

func (f *fakeDirectory) GroupMemberIDs(groupID uuid.UUID) ([]uuid.UUID, error) {
	return f.members[groupID], nil
}

func (f *fakeDirectory) FindUsersByUsernames(usernames []string) ([]models.User, error) {
	var users []models.User
	for _, name := range usernames {
		if user, ok := f.usersByName[name]; ok {
			users = append(users, user)
		}
	}
	return users, nil
}

func (f *fakeDirectory) FollowerIDs(userID uuid.UUID) ([]uuid.UUID, error) {
	return f.followers[userID], nil
}

func (f *fakeDirectory) addUser(name string) models.User {
	user := models.User{ID: uuid.New(), Username: name}
	f.usersByName[name] = user
	return user
}

func groupMessage(sender, groupID uuid.UUID, content string) models.ChatMessage {
	return models.ChatMessage{
		ID:        uuid.New(),
		RoomKey:   models.GroupRoomKey(groupID),
		GroupID:   &groupID,
		SenderID:  sender,
		Content:   content,
		CreatedAt: time.Now(),
	}
}

func TestFanoutGroupMessage(t *testing.T) {
	store := newFakeNotificationStore()
	dir := newFakeDirectory()
	fanout := NewFanoutService(store, dir)

	sender := uuid.New()
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	groupID := uuid.New()
	dir.members[groupID] = []uuid.UUID{sender, a, b, c}

	fanout.HandleEvent(MessageCreated{Message: groupMessage(sender, groupID, "hello everyone")})

	assert.Equal(t, 3, store.countByType(models.NotificationGroupChat))
	assert.Empty(t, store.forRecipient(sender), "отправитель не получает уведомления о своем сообщении")
	for _, recipient := range []uuid.UUID{a, b, c} {
		require.Len(t, store.forRecipient(recipient), 1)
	}
}

func TestFanoutGroupMessageIdempotent(t *testing.T) {
	store := newFakeNotificationStore()
	dir := newFakeDirectory()
	fanout := NewFanoutService(store, dir)

	sender := uuid.New()
	groupID := uuid.New()
	dir.members[groupID] = []uuid.UUID{sender, uuid.New(), uuid.New(), uuid.New()}

	event := MessageCreated{Message: groupMessage(sender, groupID, "hello")}

	// Повторная доставка того же события не создает дубликатов
	fanout.HandleEvent(event)
	fanout.HandleEvent(event)

	assert.Equal(t, 3, store.countByType(models.NotificationGroupChat))
}

func TestFanoutPrivateMessage(t *testing.T) {
	store := newFakeNotificationStore()
	fanout := NewFanoutService(store, newFakeDirectory())

	sender := uuid.New()
	receiver := uuid.New()
	message := models.ChatMessage{
		ID:         uuid.New(),
		RoomKey:    models.PrivateRoomKey(sender, receiver),
		SenderID:   sender,
		ReceiverID: &receiver,
		Content:    "hi",
		CreatedAt:  time.Now(),
	}

	fanout.HandleEvent(MessageCreated{Message: message})

	rows := store.forRecipient(receiver)
	require.Len(t, rows, 1)
	assert.Equal(t, models.NotificationChat, rows[0].Type)
	assert.Equal(t, models.RelatedMessage, rows[0].RelatedKind)
	assert.Equal(t, message.ID, rows[0].RelatedID)
}

func TestFanoutGroupMessageWithMention(t *testing.T) {
	store := newFakeNotificationStore()
	dir := newFakeDirectory()
	fanout := NewFanoutService(store, dir)

	sender := uuid.New()
	bob := dir.addUser("bob")
	carol := dir.addUser("carol")
	groupID := uuid.New()
	dir.members[groupID] = []uuid.UUID{sender, bob.ID, carol.ID}

	// Двойное @bob схлопывается в одно mention-уведомление
	fanout.HandleEvent(MessageCreated{Message: groupMessage(sender, groupID, "hello @bob, are you there @bob?")})

	assert.Equal(t, 2, store.countByType(models.NotificationGroupChat))
	assert.Equal(t, 1, store.countByType(models.NotificationMention))
	assert.Len(t, store.forRecipient(bob.ID), 2)
	assert.Len(t, store.forRecipient(carol.ID), 1)
}

func TestFanoutMentionOfSelfSuppressed(t *testing.T) {
	store := newFakeNotificationStore()
	dir := newFakeDirectory()
	fanout := NewFanoutService(store, dir)

	alice := dir.addUser("alice")
	receiver := uuid.New()
	message := models.ChatMessage{
		ID:         uuid.New(),
		SenderID:   alice.ID,
		ReceiverID: &receiver,
		Content:    "as @alice said earlier",
		CreatedAt:  time.Now(),
	}

	fanout.HandleEvent(MessageCreated{Message: message})

	assert.Equal(t, 0, store.countByType(models.NotificationMention))
}

func TestFanoutReactionAddedThenRemoved(t *testing.T) {
	store := newFakeNotificationStore()
	fanout := NewFanoutService(store, newFakeDirectory())

	owner := uuid.New()
	reactor := uuid.New()
	postID := uuid.New()
	reaction := models.Reaction{
		ID:           uuid.New(),
		UserID:       reactor,
		PostID:       &postID,
		ReactionType: models.ReactionLove,
	}

	fanout.HandleEvent(ReactionAdded{Reaction: reaction, OwnerID: owner})

	rows := store.forRecipient(owner)
	require.Len(t, rows, 1)
	assert.Equal(t, models.ReactionLove, rows[0].ReactionType)
	assert.Equal(t, models.RelatedPost, rows[0].RelatedKind)

	// Снятая реакция ретрагирует уведомление, даже если строка реакции
	// при повторной постановке имела бы другой id
	removed := reaction
	removed.ID = uuid.New()
	fanout.HandleEvent(ReactionRemoved{Reaction: removed, OwnerID: owner})

	assert.Empty(t, store.forRecipient(owner))
}

func TestFanoutReactionToOwnPostSuppressed(t *testing.T) {
	store := newFakeNotificationStore()
	fanout := NewFanoutService(store, newFakeDirectory())

	owner := uuid.New()
	postID := uuid.New()

	fanout.HandleEvent(ReactionAdded{
		Reaction: models.Reaction{ID: uuid.New(), UserID: owner, PostID: &postID, ReactionType: models.ReactionLike},
		OwnerID:  owner,
	})

	assert.Empty(t, store.rows)
}

func TestFanoutCommentAdded(t *testing.T) {
	store := newFakeNotificationStore()
	fanout := NewFanoutService(store, newFakeDirectory())

	postAuthor := uuid.New()
	commenter := uuid.New()
	comment := models.Comment{ID: uuid.New(), PostID: uuid.New(), AuthorID: commenter, Content: "nice"}

	fanout.HandleEvent(CommentAdded{Comment: comment, PostAuthorID: postAuthor})

	rows := store.forRecipient(postAuthor)
	require.Len(t, rows, 1)
	assert.Equal(t, models.NotificationComment, rows[0].Type)
}

func TestFanoutCommentOnOwnPostSuppressed(t *testing.T) {
	store := newFakeNotificationStore()
	fanout := NewFanoutService(store, newFakeDirectory())

	author := uuid.New()
	comment := models.Comment{ID: uuid.New(), PostID: uuid.New(), AuthorID: author, Content: "replying to myself"}

	fanout.HandleEvent(CommentAdded{Comment: comment, PostAuthorID: author})

	assert.Empty(t, store.rows)
}

func TestFanoutPostCreatedNotifiesFollowers(t *testing.T) {
	store := newFakeNotificationStore()
	dir := newFakeDirectory()
	fanout := NewFanoutService(store, dir)

	author := uuid.New()
	f1, f2 := uuid.New(), uuid.New()
	dir.followers[author] = []uuid.UUID{f1, f2}

	fanout.HandleEvent(PostCreated{Post: models.Post{ID: uuid.New(), AuthorID: author, Content: "news"}})

	assert.Equal(t, 2, store.countByType(models.NotificationNewPost))
}

func TestFanoutFollowCreated(t *testing.T) {
	store := newFakeNotificationStore()
	fanout := NewFanoutService(store, newFakeDirectory())

	follower := uuid.New()
	following := uuid.New()

	fanout.HandleEvent(FollowCreated{FollowerID: follower, FollowingID: following})

	rows := store.forRecipient(following)
	require.Len(t, rows, 1)
	assert.Equal(t, models.NotificationFollow, rows[0].Type)
}

func TestFanoutBatchAssigned(t *testing.T) {
	store := newFakeNotificationStore()
	fanout := NewFanoutService(store, newFakeDirectory())

	batchID := uuid.New()
	students := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}

	fanout.HandleEvent(BatchAssigned{BatchID: batchID, StudentIDs: students})

	assert.Equal(t, 3, store.countByType(models.NotificationBatchAssignment))
	for _, n := range store.rows {
		assert.Nil(t, n.SenderID)
		assert.Equal(t, models.RelatedBatch, n.RelatedKind)
	}

	fanout.HandleEvent(BatchEnded{BatchID: batchID, StudentIDs: students})
	assert.Equal(t, 3, store.countByType(models.NotificationBatchEnd))
}
