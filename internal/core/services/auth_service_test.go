package services

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/pollapp/internal/core/domain"
)

func TestLoginIssuesParsableToken(t *testing.T) {
	ctx := context.Background()
	env := setupEnv(t)
	alice := env.user(t, "alice")

	token, err := env.auth.Login(ctx, "alice@example.com", "secret-alice")
	require.NoError(t, err)

	userID, err := env.auth.ParseAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, userID)

	_, err = env.auth.Login(ctx, "alice@example.com", "nope")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestParseAccessTokenRejectsBadTokens(t *testing.T) {
	env := setupEnv(t)
	alice := env.user(t, "alice")

	other := NewAuthService(env.users, "other-secret", time.Minute)
	foreign, err := other.GenerateAccessToken(alice)
	require.NoError(t, err)

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": alice.ID.String(),
		"exp": time.Now().Add(-time.Minute).Unix(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": alice.ID.String(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	badSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "not-a-uuid",
		"exp": time.Now().Add(time.Minute).Unix(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	for name, token := range map[string]string{
		"garbage":     "not.a.token",
		"foreign":     foreign,
		"expired":     expired,
		"no expiry":   noExpiry,
		"bad subject": badSubject,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := env.auth.ParseAccessToken(token)
			assert.ErrorIs(t, err, domain.ErrUnauthorized)
		})
	}
}
