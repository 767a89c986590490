package auth

import (
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTGenerateValidate(t *testing.T) {
	manager := NewJWTManager("test-secret", time.Hour)
	userID := uuid.New()

	token, err := manager.Generate(userID)
	require.NoError(t, err)

	parsed, err := manager.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, userID, parsed)
}

func TestJWTExpiredTokenRejected(t *testing.T) {
	manager := NewJWTManager("test-secret", -time.Minute)

	token, err := manager.Generate(uuid.New())
	require.NoError(t, err)

	_, err = manager.Validate(token)
	assert.Error(t, err)
}

func TestJWTWrongSecretRejected(t *testing.T) {
	manager := NewJWTManager("test-secret", time.Hour)
	other := NewJWTManager("another-secret", time.Hour)

	token, err := manager.Generate(uuid.New())
	require.NoError(t, err)

	_, err = other.Validate(token)
	assert.Error(t, err)
}

func TestJWTGarbageRejected(t *testing.T) {
	manager := NewJWTManager("test-secret", time.Hour)

	_, err := manager.Validate("not-a-jwt")
	assert.Error(t, err)
}

func TestJWTExpiry(t *testing.T) {
	manager := NewJWTManager("test-secret", time.Hour)

	token, err := manager.Generate(uuid.New())
	require.NoError(t, err)

	expiry, err := manager.Expiry(token)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiry, time.Minute)
}

func TestExtractTokenFromHeader(t *testing.T) {
	request, err := http.NewRequest(http.MethodGet, "/", nil)
	require.NoError(t, err)

	request.Header.Set("Authorization", "Bearer abc.def.ghi")
	token, err := ExtractTokenFromHeader(request)
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)

	request.Header.Set("Authorization", "Basic abc")
	_, err = ExtractTokenFromHeader(request)
	assert.Error(t, err)

	request.Header.Del("Authorization")
	_, err = ExtractTokenFromHeader(request)
	assert.Error(t, err)
}
