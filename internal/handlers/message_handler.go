package handlers

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/itihub/backend/internal/models"
	"github.com/itihub/backend/internal/services"
	ws "github.com/itihub/backend/internal/websocket"
	"github.com/sirupsen/logrus"
)

// Максимальный размер тела сообщения в байтах
const maxMessageBytes = 4096

// MessageStore хранилище сообщений с проверкой прав
type MessageStore interface {
	SaveMessage(message *models.ChatMessage) error
	UpdateMessageContent(id, requester uuid.UUID, newContent string) (*models.ChatMessage, error)
	DeleteMessage(id, requester uuid.UUID) (*models.ChatMessage, error)
}

// Broadcaster доставка события всем соединениям комнаты
type Broadcaster interface {
	Broadcast(roomKey string, event *ws.Event)
}

// EventSink прием доменных событий fan-out'ом
type EventSink interface {
	HandleEvent(event services.Event)
}

// MessageHandler обрабатывает кадры действий одного соединения:
// сохранить — разослать комнате — отдать событие fan-out'у.
type MessageHandler struct {
	store  MessageStore
	hub    Broadcaster
	fanout EventSink
}

func NewMessageHandler(store MessageStore, hub Broadcaster, fanout EventSink) *MessageHandler {
	return &MessageHandler{
		store:  store,
		hub:    hub,
		fanout: fanout,
	}
}

func (h *MessageHandler) HandleFrame(client *ws.Client, frame *ws.ActionFrame) error {
	switch frame.Action {
	case ws.ActionSend:
		return h.handleSend(client, frame)

	case ws.ActionEdit:
		return h.handleEdit(client, frame)

	case ws.ActionDelete:
		return h.handleDelete(client, frame)

	default:
		return ws.ErrUnknownAction
	}
}

func validateBody(body string) error {
	if strings.TrimSpace(body) == "" {
		return ws.ErrEmptyMessage
	}
	if len(body) > maxMessageBytes {
		return ws.ErrMessageTooLong
	}
	return nil
}

func (h *MessageHandler) handleSend(client *ws.Client, frame *ws.ActionFrame) error {
	if err := validateBody(frame.Message); err != nil {
		return err
	}

	message := &models.ChatMessage{
		RoomKey:    client.RoomKey,
		GroupID:    client.GroupID,
		SenderID:   client.UserID,
		ReceiverID: client.PeerID,
		Content:    frame.Message,
		CreatedAt:  time.Now(),
	}

	// Сообщение сохраняется до любой рассылки: подписчик никогда не
	// увидит кадр без записи в хранилище
	if err := h.store.SaveMessage(message); err != nil {
		logrus.WithError(err).Error("failed to save message")
		return err
	}

	// Кадр получают все соединения комнаты, включая отправителя:
	// собственное эхо подтверждает доставку, как в остальных клиентах
	h.hub.Broadcast(client.RoomKey, &ws.Event{
		Type:      ws.TypeChatMessage,
		MessageID: &message.ID,
		Message:   message.Content,
		Sender:    client.Username,
		Timestamp: ws.EventTimestamp(message.CreatedAt),
	})

	h.fanout.HandleEvent(services.MessageCreated{Message: *message})

	return nil
}

func (h *MessageHandler) handleEdit(client *ws.Client, frame *ws.ActionFrame) error {
	if frame.MessageID == nil {
		return ws.ErrInvalidFrame
	}
	if err := validateBody(frame.NewContent); err != nil {
		return err
	}

	message, err := h.store.UpdateMessageContent(*frame.MessageID, client.UserID, frame.NewContent)
	if err != nil {
		return err
	}

	h.hub.Broadcast(message.RoomKey, &ws.Event{
		Type:       ws.TypeEditMessage,
		MessageID:  &message.ID,
		NewContent: message.Content,
	})

	return nil
}

func (h *MessageHandler) handleDelete(client *ws.Client, frame *ws.ActionFrame) error {
	if frame.MessageID == nil {
		return ws.ErrInvalidFrame
	}

	message, err := h.store.DeleteMessage(*frame.MessageID, client.UserID)
	if err != nil {
		return err
	}

	h.hub.Broadcast(message.RoomKey, &ws.Event{
		Type:      ws.TypeDeleteMessage,
		MessageID: &message.ID,
	})

	return nil
}
