package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signed(t *testing.T, claims jwt.Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("upstream-secret"))
	require.NoError(t, err)
	return token
}

func TestDecodeUnverified_ReadsPayload(t *testing.T) {
	token := signed(t, jwt.MapClaims{
		"sub":  "budi@example.com",
		"role": "R002",
		"nohp": "08123",
	})

	claims, err := DecodeUnverified(token)
	require.NoError(t, err)
	assert.Equal(t, "budi@example.com", claims.Subject)
	assert.Equal(t, "R002", claims.Role)
	assert.Equal(t, "08123", claims.Phone)
	assert.True(t, claims.ExpiresAtTime().IsZero())
}

func TestDecodeUnverified_IgnoresSignature(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "a@b.c"}).
		SignedString([]byte("some-other-secret"))
	require.NoError(t, err)

	claims, err := DecodeUnverified("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, "a@b.c", claims.Subject)
}

func TestDecodeUnverified_Malformed(t *testing.T) {
	for _, raw := range []string{"", "   ", "not-a-token", "a.b.c", "Bearer "} {
		_, err := DecodeUnverified(raw)
		assert.ErrorIs(t, err, ErrTokenMalformed, "input %q", raw)
	}
}

func TestDecodeUnverified_MissingSubject(t *testing.T) {
	token := signed(t, jwt.MapClaims{"role": "R001"})

	_, err := DecodeUnverified(token)
	assert.ErrorIs(t, err, ErrTokenNoSubject)
}

func TestClaimsTTL(t *testing.T) {
	now := time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC)

	c := &Claims{}
	assert.Equal(t, 12*time.Hour, c.TTL(now, 12*time.Hour))

	c.ExpiresAt = jwt.NewNumericDate(now.Add(time.Hour))
	assert.Equal(t, time.Hour, c.TTL(now, 12*time.Hour))
	assert.Equal(t, 30*time.Minute, c.TTL(now, 30*time.Minute))

	c.ExpiresAt = jwt.NewNumericDate(now.Add(-time.Minute))
	assert.Equal(t, time.Duration(0), c.TTL(now, 12*time.Hour))
}
