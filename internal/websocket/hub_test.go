package websocket

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(roomKey string, queue int) *Client {
	return &Client{
		ID:      uuid.New(),
		UserID:  uuid.New(),
		RoomKey: roomKey,
		Send:    make(chan []byte, queue),
	}
}

func drain(c *Client) int {
	count := 0
	for {
		select {
		case <-c.Send:
			count++
		default:
			return count
		}
	}
}

func TestHubJoinIsIdempotent(t *testing.T) {
	hub := NewHub(nil)
	client := testClient("group:1", 8)

	hub.JoinRoom(client.RoomKey, client)
	hub.JoinRoom(client.RoomKey, client)

	require.Equal(t, 1, hub.RoomSize(client.RoomKey))

	hub.Broadcast(client.RoomKey, &Event{Type: TypeChatMessage, Message: "hello"})
	assert.Equal(t, 1, drain(client), "двойной join не должен давать двойной доставки")
}

func TestHubLeaveNonMemberIsNoop(t *testing.T) {
	hub := NewHub(nil)
	member := testClient("group:1", 8)
	stranger := testClient("group:1", 8)

	hub.JoinRoom(member.RoomKey, member)
	hub.LeaveRoom(member.RoomKey, stranger)
	hub.LeaveRoom("group:unknown", stranger)

	assert.Equal(t, 1, hub.RoomSize(member.RoomKey))
}

func TestHubLeaveStopsDelivery(t *testing.T) {
	hub := NewHub(nil)
	client := testClient("group:1", 8)

	hub.JoinRoom(client.RoomKey, client)
	hub.LeaveRoom(client.RoomKey, client)

	hub.Broadcast(client.RoomKey, &Event{Type: TypeChatMessage, Message: "after leave"})
	assert.Equal(t, 0, drain(client))
}

func TestHubBroadcastReachesAllRoomMembers(t *testing.T) {
	hub := NewHub(nil)
	a := testClient("group:1", 8)
	b := testClient("group:1", 8)
	other := testClient("group:2", 8)

	hub.JoinRoom(a.RoomKey, a)
	hub.JoinRoom(b.RoomKey, b)
	hub.JoinRoom(other.RoomKey, other)

	hub.Broadcast("group:1", &Event{Type: TypeChatMessage, Message: "hello"})

	assert.Equal(t, 1, drain(a))
	assert.Equal(t, 1, drain(b))
	assert.Equal(t, 0, drain(other), "рассылка не пересекает границы комнат")
}

func TestHubBroadcastBestEffort(t *testing.T) {
	hub := NewHub(nil)
	// Переполненный клиент: канал без буфера и без читателя
	stale := testClient("group:1", 0)
	healthy := testClient("group:1", 8)

	hub.JoinRoom(stale.RoomKey, stale)
	hub.JoinRoom(healthy.RoomKey, healthy)

	// Не должно ни заблокироваться, ни помешать остальным
	hub.Broadcast("group:1", &Event{Type: TypeChatMessage, Message: "hello"})

	assert.Equal(t, 1, drain(healthy))
}

func TestHubRoomRemovedWhenEmpty(t *testing.T) {
	hub := NewHub(nil)
	client := testClient("group:1", 8)

	hub.JoinRoom(client.RoomKey, client)
	hub.LeaveRoom(client.RoomKey, client)

	hub.mu.RLock()
	_, exists := hub.rooms[client.RoomKey]
	hub.mu.RUnlock()
	assert.False(t, exists)
}
