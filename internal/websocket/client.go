package websocket

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	// Время ожидания записи
	writeWait = 10 * time.Second

	// Время ожидания pong от клиента
	pongWait = 60 * time.Second

	// Интервал отправки ping
	pingPeriod = (pongWait * 9) / 10

	// Максимальный размер кадра
	maxFrameSize = 64 * 1024
)

// Действия входящих кадров
const (
	ActionSend   = "send"
	ActionEdit   = "edit"
	ActionDelete = "delete"
)

// ActionFrame входящий кадр: send {message}, edit {message_id, new_content},
// delete {message_id}.
type ActionFrame struct {
	Action     string     `json:"action"`
	Message    string     `json:"message,omitempty"`
	MessageID  *uuid.UUID `json:"message_id,omitempty"`
	NewContent string     `json:"new_content,omitempty"`
}

type FrameHandler interface {
	HandleFrame(client *Client, frame *ActionFrame) error
}

// Client одно живое соединение: пользователь, ключ комнаты, в которую оно
// вошло, и канал исходящих кадров.
type Client struct {
	ID       uuid.UUID
	UserID   uuid.UUID
	Username string
	RoomKey  string

	// Для групповой комнаты заполнен GroupID, для личной — PeerID
	GroupID *uuid.UUID
	PeerID  *uuid.UUID

	Conn *websocket.Conn
	Send chan []byte
	Hub  *Hub
}

func NewClient(hub *Hub, conn *websocket.Conn, userID uuid.UUID, username, roomKey string) *Client {
	return &Client{
		ID:       uuid.New(),
		UserID:   userID,
		Username: username,
		RoomKey:  roomKey,
		Conn:     conn,
		Send:     make(chan []byte, 256),
		Hub:      hub,
	}
}

// ReadPump читает кадры от клиента и передает их обработчику строго
// по одному, в порядке прихода. Ошибка действия отправляется клиенту
// кадром error, соединение остается открытым.
func (c *Client) ReadPump(handler FrameHandler) {
	defer func() {
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxFrameSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logrus.WithError(err).WithField("client", c.ID).Warn("websocket read error")
			}
			break
		}

		var frame ActionFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			c.SendError(ErrInvalidFrame.Error())
			continue
		}

		if err := handler.HandleFrame(c, &frame); err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"client": c.ID,
				"action": frame.Action,
			}).Warn("frame rejected")
			c.SendError(err.Error())
		}
	}
}

// WritePump отправляет кадры клиенту
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub закрыл канал
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			c.Conn.WriteMessage(websocket.TextMessage, message)

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendEvent кладет кадр в очередь этого соединения
func (c *Client) SendEvent(event *Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	select {
	case c.Send <- data:
		return nil
	default:
		return ErrClientQueueFull
	}
}

func (c *Client) SendError(errorMsg string) {
	c.SendEvent(&Event{
		Type:  TypeError,
		Error: errorMsg,
	})
}
