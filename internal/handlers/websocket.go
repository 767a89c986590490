package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/itihub/backend/internal/database"
	"github.com/itihub/backend/internal/middleware"
	"github.com/itihub/backend/internal/models"
	ws "github.com/itihub/backend/internal/websocket"
)

// ChatWebSocketHandler владеет жизненным циклом соединения: аутентификация
// (в WSAuthMiddleware, до upgrade), разрешение комнаты, регистрация в hub.
type ChatWebSocketHandler struct {
	db       *database.Database
	hub      *ws.Hub
	frames   ws.FrameHandler
	upgrader websocket.Upgrader
}

func NewChatWebSocketHandler(db *database.Database, hub *ws.Hub, frames ws.FrameHandler) *ChatWebSocketHandler {
	return &ChatWebSocketHandler{
		db:     db,
		hub:    hub,
		frames: frames,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// TODO: проверять origin в prod
				return true
			},
		},
	}
}

// HandleGroupChat подключение к групповой комнате. Членство проверяется
// до upgrade: не-участник получает 403, соединение не регистрируется.
func (h *ChatWebSocketHandler) HandleGroupChat(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	groupID, err := uuid.Parse(c.Param("group_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid group id"})
		return
	}

	isMember, err := h.db.IsGroupMember(groupID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check membership"})
		return
	}
	if !isMember {
		c.JSON(http.StatusForbidden, gin.H{"error": "you are not a member of this group"})
		return
	}

	user, err := h.db.GetUser(userID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unknown user"})
		return
	}

	client, ok := h.upgrade(c, userID, user.Username, models.GroupRoomKey(groupID))
	if !ok {
		return
	}
	client.GroupID = &groupID

	h.start(client)
}

// HandlePrivateChat подключение к личной комнате с указанным пользователем.
// У личной комнаты нет собственной записи: ключ выводится из пары
// идентификаторов, членство не требуется — только существование собеседника.
func (h *ChatWebSocketHandler) HandlePrivateChat(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	peerID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	if peerID == userID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot open a private chat with yourself"})
		return
	}

	if _, err := h.db.GetUser(peerID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	user, err := h.db.GetUser(userID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unknown user"})
		return
	}

	client, ok := h.upgrade(c, userID, user.Username, models.PrivateRoomKey(userID, peerID))
	if !ok {
		return
	}
	client.PeerID = &peerID

	h.start(client)
}

func (h *ChatWebSocketHandler) upgrade(c *gin.Context, userID uuid.UUID, username, roomKey string) (*ws.Client, bool) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return nil, false
	}
	return ws.NewClient(h.hub, conn, userID, username, roomKey), true
}

func (h *ChatWebSocketHandler) start(client *ws.Client) {
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump(h.frames)
}
