package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestPrivateRoomKeySymmetric(t *testing.T) {
	a := uuid.New()
	b := uuid.New()

	// Оба участника должны получить один и тот же ключ
	assert.Equal(t, PrivateRoomKey(a, b), PrivateRoomKey(b, a))
}

func TestPrivateRoomKeyDistinctPairs(t *testing.T) {
	a := uuid.New()
	b := uuid.New()
	c := uuid.New()

	assert.NotEqual(t, PrivateRoomKey(a, b), PrivateRoomKey(a, c))
	assert.NotEqual(t, PrivateRoomKey(a, b), PrivateRoomKey(b, c))
}

func TestRoomKeyPrefixes(t *testing.T) {
	groupID := uuid.New()
	a := uuid.New()
	b := uuid.New()

	assert.Contains(t, GroupRoomKey(groupID), "group:")
	assert.Contains(t, GroupRoomKey(groupID), groupID.String())
	assert.Contains(t, PrivateRoomKey(a, b), "private:")
}
