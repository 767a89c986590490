package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/itihub/backend/internal/database"
	"github.com/itihub/backend/internal/middleware"
	"github.com/itihub/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNotificationReader struct {
	rows map[uuid.UUID]*models.Notification
}

func newFakeNotificationReader() *fakeNotificationReader {
	return &fakeNotificationReader{rows: make(map[uuid.UUID]*models.Notification)}
}

func (f *fakeNotificationReader) add(recipient uuid.UUID, notificationType models.NotificationType, isRead bool) uuid.UUID {
	id := uuid.New()
	f.rows[id] = &models.Notification{
		ID:          id,
		RecipientID: recipient,
		Type:        notificationType,
		RelatedKind: models.RelatedMessage,
		RelatedID:   uuid.New(),
		IsRead:      isRead,
		CreatedAt:   time.Now(),
	}
	return id
}

func (f *fakeNotificationReader) ListNotifications(recipient uuid.UUID, notificationType string, unreadOnly bool) ([]models.Notification, error) {
	var result []models.Notification
	for _, n := range f.rows {
		if n.RecipientID != recipient {
			continue
		}
		if notificationType != "" && string(n.Type) != notificationType {
			continue
		}
		if unreadOnly && n.IsRead {
			continue
		}
		result = append(result, *n)
	}
	return result, nil
}

func (f *fakeNotificationReader) MarkNotificationRead(recipient, id uuid.UUID) error {
	n, ok := f.rows[id]
	if !ok || n.RecipientID != recipient {
		return database.ErrNotFound
	}
	n.IsRead = true
	return nil
}

func (f *fakeNotificationReader) MarkAllNotificationsRead(recipient uuid.UUID) (int64, error) {
	var count int64
	for _, n := range f.rows {
		if n.RecipientID == recipient && !n.IsRead {
			n.IsRead = true
			count++
		}
	}
	return count, nil
}

func (f *fakeNotificationReader) DeleteNotification(recipient, id uuid.UUID) error {
	n, ok := f.rows[id]
	if !ok || n.RecipientID != recipient {
		return database.ErrNotFound
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeNotificationReader) ClearNotifications(recipient uuid.UUID) (int64, error) {
	var count int64
	for id, n := range f.rows {
		if n.RecipientID == recipient {
			delete(f.rows, id)
			count++
		}
	}
	return count, nil
}

func notificationRouter(store *fakeNotificationReader, userID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewNotificationHandler(store)

	router := gin.New()
	group := router.Group("/api/v1/notifications", func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID)
	})
	group.GET("", handler.List)
	group.PATCH("/:id/read", handler.MarkRead)
	group.PATCH("/read-all", handler.MarkAllRead)
	group.DELETE("/:id", handler.Delete)
	group.DELETE("", handler.Clear)
	return router
}

func doRequest(router *gin.Engine, method, path string) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(method, path, nil)
	router.ServeHTTP(recorder, request)
	return recorder
}

func TestNotificationListFilters(t *testing.T) {
	store := newFakeNotificationReader()
	userID := uuid.New()
	store.add(userID, models.NotificationChat, false)
	store.add(userID, models.NotificationMention, true)
	store.add(uuid.New(), models.NotificationChat, false)

	router := notificationRouter(store, userID)

	var body struct {
		Notifications []json.RawMessage `json:"notifications"`
	}

	// Чужие уведомления не просачиваются
	recorder := doRequest(router, http.MethodGet, "/api/v1/notifications")
	require.Equal(t, http.StatusOK, recorder.Code)
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Len(t, body.Notifications, 2)

	recorder = doRequest(router, http.MethodGet, "/api/v1/notifications?type=chat")
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Len(t, body.Notifications, 1)

	recorder = doRequest(router, http.MethodGet, "/api/v1/notifications?unread=true")
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Len(t, body.Notifications, 1)
}

func TestNotificationMarkReadIdempotent(t *testing.T) {
	store := newFakeNotificationReader()
	userID := uuid.New()
	id := store.add(userID, models.NotificationChat, false)

	router := notificationRouter(store, userID)
	path := fmt.Sprintf("/api/v1/notifications/%s/read", id)

	recorder := doRequest(router, http.MethodPatch, path)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.True(t, store.rows[id].IsRead)

	// Повторный вызов остается успешным и ничего не меняет
	recorder = doRequest(router, http.MethodPatch, path)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.True(t, store.rows[id].IsRead)
}

func TestNotificationMarkReadUnknownID(t *testing.T) {
	store := newFakeNotificationReader()
	router := notificationRouter(store, uuid.New())

	recorder := doRequest(router, http.MethodPatch, fmt.Sprintf("/api/v1/notifications/%s/read", uuid.New()))
	assert.Equal(t, http.StatusNotFound, recorder.Code)

	recorder = doRequest(router, http.MethodPatch, "/api/v1/notifications/not-a-uuid/read")
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestNotificationMarkReadForeignRecipient(t *testing.T) {
	store := newFakeNotificationReader()
	ownerID := uuid.New()
	id := store.add(ownerID, models.NotificationChat, false)

	// Уведомление существует, но принадлежит другому получателю
	router := notificationRouter(store, uuid.New())
	recorder := doRequest(router, http.MethodPatch, fmt.Sprintf("/api/v1/notifications/%s/read", id))

	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.False(t, store.rows[id].IsRead)
}

func TestNotificationDelete(t *testing.T) {
	store := newFakeNotificationReader()
	userID := uuid.New()
	id := store.add(userID, models.NotificationChat, false)

	router := notificationRouter(store, userID)

	recorder := doRequest(router, http.MethodDelete, fmt.Sprintf("/api/v1/notifications/%s", id))
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Empty(t, store.rows)

	recorder = doRequest(router, http.MethodDelete, fmt.Sprintf("/api/v1/notifications/%s", id))
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestNotificationMarkAllAndClear(t *testing.T) {
	store := newFakeNotificationReader()
	userID := uuid.New()
	store.add(userID, models.NotificationChat, false)
	store.add(userID, models.NotificationMention, false)
	foreign := store.add(uuid.New(), models.NotificationChat, false)

	router := notificationRouter(store, userID)

	recorder := doRequest(router, http.MethodPatch, "/api/v1/notifications/read-all")
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "2 notifications")

	recorder = doRequest(router, http.MethodDelete, "/api/v1/notifications")
	assert.Equal(t, http.StatusOK, recorder.Code)

	// Чужие записи переживают очистку
	require.Len(t, store.rows, 1)
	assert.False(t, store.rows[foreign].IsRead)
}
