package utils

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetJWTConfig(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		configuredSecret = ""
		accessTokenTTL = 15 * time.Minute
	})
}

func TestConfiguredSecretSignsTokens(t *testing.T) {
	resetJWTConfig(t)
	ConfigureJWT("resolved-secret", 24)

	userID := uuid.New()
	pair, err := GenerateTokenPair(userID, "partner@example.com", false)
	require.NoError(t, err)

	claims, err := ValidateToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "partner@example.com", claims.Email)
	assert.False(t, claims.IsAdmin)
}

func TestTokenSignedWithOtherSecretIsRejected(t *testing.T) {
	resetJWTConfig(t)

	ConfigureJWT("secret-one", 24)
	pair, err := GenerateTokenPair(uuid.New(), "partner@example.com", false)
	require.NoError(t, err)

	ConfigureJWT("secret-two", 24)
	_, err = ValidateToken(pair.AccessToken)
	assert.Error(t, err)
}

func TestConfiguredExpirationSetsAccessTokenLifetime(t *testing.T) {
	resetJWTConfig(t)
	ConfigureJWT("resolved-secret", 2)

	pair, err := GenerateTokenPair(uuid.New(), "partner@example.com", true)
	require.NoError(t, err)
	assert.Equal(t, int64((2 * time.Hour).Seconds()), pair.ExpiresIn)

	claims, err := ValidateToken(pair.AccessToken)
	require.NoError(t, err)
	assert.InDelta(t, time.Now().Add(2*time.Hour).Unix(), claims.ExpiresAt, 60)
}

func TestConfigureJWTIgnoresNonPositiveExpiration(t *testing.T) {
	resetJWTConfig(t)
	ConfigureJWT("resolved-secret", 0)

	pair, err := GenerateTokenPair(uuid.New(), "partner@example.com", false)
	require.NoError(t, err)
	assert.Equal(t, int64((15 * time.Minute).Seconds()), pair.ExpiresIn)
}
