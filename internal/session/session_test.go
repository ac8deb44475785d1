package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("server-only-secret"))
	require.NoError(t, err)
	return tok
}

func TestFromToken(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("reads profile claims and caps expiry", func(t *testing.T) {
		tok := signToken(t, jwt.MapClaims{
			"email":   "ana@acme.test",
			"name":    "Ana",
			"company": "Acme",
			"exp":     now.Add(2 * time.Hour).Unix(),
		})

		s, err := FromToken(tok, now, 24*time.Hour)
		require.NoError(t, err)
		assert.Equal(t, "ana@acme.test", s.Email)
		assert.Equal(t, "Acme", s.Company)
		assert.Equal(t, "Ana", s.DisplayName())
		assert.Equal(t, now.Add(2*time.Hour).Unix(), s.ExpiresAt.Unix())

		short, err := FromToken(tok, now, time.Hour)
		require.NoError(t, err)
		assert.Equal(t, now.Add(time.Hour), short.ExpiresAt)
	})

	t.Run("expired token is rejected", func(t *testing.T) {
		tok := signToken(t, jwt.MapClaims{"exp": now.Add(-time.Minute).Unix()})
		_, err := FromToken(tok, now, time.Hour)
		assert.ErrorIs(t, err, ErrTokenExpired)
	})

	t.Run("opaque token is accepted", func(t *testing.T) {
		s, err := FromToken("opaque-123", now, time.Hour)
		require.NoError(t, err)
		assert.Equal(t, "opaque-123", s.BearerToken())
		assert.Empty(t, s.Company)
		assert.Equal(t, now.Add(time.Hour), s.ExpiresAt)
	})

	t.Run("empty token", func(t *testing.T) {
		_, err := FromToken("", now, time.Hour)
		assert.ErrorIs(t, err, ErrEmptyToken)
	})
}

func TestSession_Valid(t *testing.T) {
	now := time.Now()
	var nilSession *Session

	assert.False(t, nilSession.Valid(now))
	assert.Equal(t, "", nilSession.BearerToken())
	assert.False(t, (&Session{}).Valid(now))
	assert.True(t, (&Session{Token: "t"}).Valid(now))
	assert.True(t, (&Session{Token: "t", ExpiresAt: now.Add(time.Second)}).Valid(now))
	assert.False(t, (&Session{Token: "t", ExpiresAt: now}).Valid(now))
}
