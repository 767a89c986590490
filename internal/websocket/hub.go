package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// EventType определяет типы исходящих кадров
type EventType string

const (
	// События сообщений
	TypeChatMessage   EventType = "chat_message"
	TypeEditMessage   EventType = "edit_message"
	TypeDeleteMessage EventType = "delete_message"

	// События присутствия
	TypeUserJoined EventType = "user_joined"
	TypeUserLeft   EventType = "user_left"

	// Ошибка действия на живом соединении
	TypeError EventType = "error"
)

// Формат времени в исходящих кадрах
const timestampLayout = "2006-01-02 15:04:05"

// Event исходящий кадр, рассылаемый всем соединениям комнаты.
type Event struct {
	Type       EventType  `json:"type"`
	MessageID  *uuid.UUID `json:"message_id,omitempty"`
	Message    string     `json:"message,omitempty"`
	NewContent string     `json:"new_content,omitempty"`
	Sender     string     `json:"sender,omitempty"`
	Username   string     `json:"username,omitempty"`
	Error      string     `json:"error,omitempty"`
	Timestamp  string     `json:"timestamp,omitempty"`
}

// Timestamp в формате исходящих кадров.
func EventTimestamp(t time.Time) string {
	return t.Format(timestampLayout)
}

// Bus внешняя шина рассылки для работы нескольких экземпляров gateway.
// Publish доставляет кадр всем подписанным экземплярам, включая текущий.
type Bus interface {
	Publish(ctx context.Context, roomKey string, payload []byte) error
	Subscribe(ctx context.Context, deliver func(roomKey string, payload []byte)) error
}

// Hub реестр комнат: какие живые соединения подписаны на какой ключ комнаты.
// Конструируется явно и передается в gateway — не синглтон.
type Hub struct {
	// Клиенты по ключу комнаты
	rooms map[string]map[uuid.UUID]*Client

	// Каналы для регистрации/отмены регистрации
	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	// nil — доставка только локальным клиентам
	bus Bus

	log *logrus.Entry

	// Контекст для graceful shutdown
	ctx    context.Context
	cancel context.CancelFunc
}

// NewHub создает новый Hub. bus может быть nil.
func NewHub(bus Bus) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		rooms:      make(map[string]map[uuid.UUID]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		bus:        bus,
		log:        logrus.WithField("component", "hub"),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Run запускает hub и, если задана шина, цикл подписки на нее
func (h *Hub) Run() {
	if h.bus != nil {
		go func() {
			if err := h.bus.Subscribe(h.ctx, h.deliverLocal); err != nil {
				h.log.WithError(err).Error("bus subscription stopped")
			}
		}()
	}

	for {
		select {
		case <-h.ctx.Done():
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)
		}
	}
}

// Stop останавливает hub и закрывает все соединения
func (h *Hub) Stop() {
	h.cancel()

	h.mu.Lock()
	defer h.mu.Unlock()

	for _, room := range h.rooms {
		for _, client := range room {
			close(client.Send)
			client.Conn.Close()
		}
	}
	h.rooms = make(map[string]map[uuid.UUID]*Client)
}

// Register регистрирует клиента в его комнате
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister отменяет регистрацию клиента
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

func (h *Hub) registerClient(client *Client) {
	h.JoinRoom(client.RoomKey, client)

	h.log.WithFields(logrus.Fields{
		"client": client.ID,
		"user":   client.UserID,
		"room":   client.RoomKey,
	}).Info("client registered")

	h.Broadcast(client.RoomKey, &Event{
		Type:      TypeUserJoined,
		Username:  client.Username,
		Timestamp: EventTimestamp(time.Now()),
	})
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.RoomKey]
	if ok {
		_, ok = room[client.ID]
	}
	if ok {
		delete(room, client.ID)
		if len(room) == 0 {
			delete(h.rooms, client.RoomKey)
		}
		close(client.Send)
	}
	h.mu.Unlock()

	if !ok {
		return
	}

	h.log.WithFields(logrus.Fields{
		"client": client.ID,
		"user":   client.UserID,
		"room":   client.RoomKey,
	}).Info("client unregistered")

	h.Broadcast(client.RoomKey, &Event{
		Type:      TypeUserLeft,
		Username:  client.Username,
		Timestamp: EventTimestamp(time.Now()),
	})
}

// JoinRoom добавляет клиента в комнату. Повторный join — no-op.
func (h *Hub) JoinRoom(roomKey string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.rooms[roomKey]; !ok {
		h.rooms[roomKey] = make(map[uuid.UUID]*Client)
	}
	h.rooms[roomKey][client.ID] = client
}

// LeaveRoom убирает клиента из комнаты. Leave не-участника — no-op.
func (h *Hub) LeaveRoom(roomKey string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[roomKey]
	if !ok {
		return
	}
	delete(room, client.ID)
	if len(room) == 0 {
		delete(h.rooms, roomKey)
	}
}

// Broadcast рассылает событие всем соединениям комнаты. При наличии шины
// кадр публикуется в нее, и локальная доставка происходит из цикла подписки.
func (h *Hub) Broadcast(roomKey string, event *Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.log.WithError(err).Error("failed to marshal event")
		return
	}

	if h.bus != nil {
		err := h.bus.Publish(h.ctx, roomKey, data)
		if err == nil {
			return
		}
		// Шина недоступна — доставляем хотя бы локальным клиентам
		h.log.WithError(err).WithField("room", roomKey).Warn("bus publish failed")
	}

	h.deliverLocal(roomKey, data)
}

// deliverLocal доставка по принципу best-effort: переполненный или мертвый
// клиент пропускается и не мешает остальным.
func (h *Hub) deliverLocal(roomKey string, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.rooms[roomKey] {
		select {
		case client.Send <- data:
		default:
			h.log.WithFields(logrus.Fields{
				"client": client.ID,
				"room":   roomKey,
			}).Warn("send channel full, dropping event")
		}
	}
}

// RoomSize количество живых соединений в комнате
func (h *Hub) RoomSize(roomKey string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomKey])
}
