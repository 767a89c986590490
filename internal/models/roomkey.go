package models

import "github.com/google/uuid"

// GroupRoomKey ключ комнаты группового чата.
func GroupRoomKey(groupID uuid.UUID) string {
	return "group:" + groupID.String()
}

// PrivateRoomKey канонический ключ личной комнаты: идентификаторы
// сортируются, поэтому оба участника получают один и тот же ключ
// независимо от того, кто открыл соединение.
func PrivateRoomKey(a, b uuid.UUID) string {
	first, second := a.String(), b.String()
	if second < first {
		first, second = second, first
	}
	return "private:" + first + ":" + second
}
