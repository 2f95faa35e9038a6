package api

import (
	"testing"
	"time"

	"agon-market-go/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenService(t *testing.T) {
	tokens, err := NewTokenService(models.AuthConfig{JWTSecret: "secret", TokenTTL: time.Hour})
	require.NoError(t, err)

	token, err := tokens.Issue("user-1")
	require.NoError(t, err)

	userId, err := tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userId)

	other, err := NewTokenService(models.AuthConfig{JWTSecret: "other", TokenTTL: time.Hour})
	require.NoError(t, err)
	_, err = other.Verify(token)
	assert.ErrorIs(t, err, errInvalidToken)

	tokens.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = tokens.Verify(token)
	assert.ErrorIs(t, err, errInvalidToken)
}

func TestNewTokenServiceRequiresSecret(t *testing.T) {
	_, err := NewTokenService(models.AuthConfig{})
	assert.Error(t, err)
}
