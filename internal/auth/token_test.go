package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("local-test-key"))
	require.NoError(t, err)
	return token
}

func TestExpired(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	t.Run("future exp is live", func(t *testing.T) {
		token := signedToken(t, jwt.MapClaims{"sub": "1", "exp": now.Add(time.Hour).Unix()})
		require.False(t, Expired(token, now))
	})

	t.Run("past exp is expired", func(t *testing.T) {
		token := signedToken(t, jwt.MapClaims{"sub": "1", "exp": now.Add(-time.Hour).Unix()})
		require.True(t, Expired(token, now))
	})

	t.Run("no exp claim is left to the server", func(t *testing.T) {
		token := signedToken(t, jwt.MapClaims{"sub": "1"})
		require.False(t, Expired(token, now))
	})

	t.Run("garbage counts as expired", func(t *testing.T) {
		require.True(t, Expired("not-a-jwt", now))
		require.True(t, Expired("", now))
	})
}
