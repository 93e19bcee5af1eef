package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"daterbo-console/internal/adapters/persistence/repositories"
	"daterbo-console/internal/core/domain"
	"daterbo-console/internal/pkg/jwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSession_AdoptLoadClear(t *testing.T) {
	ctx := context.Background()
	store := repositories.NewMemoryTokenStore()
	token := makeToken(t, "admin@daterbo.id", "R001", "U1", time.Now().Add(time.Hour))

	sess := NewSession(store, TokenKey, 12*time.Hour, nil, zap.NewNop())
	p, err := sess.Adopt(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "admin@daterbo.id", p.Identity.Email)
	assert.Equal(t, domain.RoleAdmin, p.Identity.Role)
	assert.Equal(t, "U1", p.Identity.UserID)

	stored, err := store.Load(ctx, TokenKey)
	require.NoError(t, err)
	assert.Equal(t, token, stored)

	// a fresh session over the same store restores the identity
	again := NewSession(store, TokenKey, 12*time.Hour, nil, zap.NewNop())
	p, err = again.Load(ctx)
	require.NoError(t, err)
	assert.True(t, p.Identity.IsAdmin())

	require.NoError(t, again.Clear(ctx))
	assert.False(t, again.Authenticated())
	_, err = store.Load(ctx, TokenKey)
	assert.ErrorIs(t, err, repositories.ErrTokenNotFound)
}

func TestSession_MalformedStoredTokenLogsOut(t *testing.T) {
	ctx := context.Background()
	store := repositories.NewMemoryTokenStore()
	require.NoError(t, store.Save(ctx, TokenKey, "not.a.jwt", 0))

	sess := NewSession(store, TokenKey, time.Hour, nil, zap.NewNop())
	_, err := sess.Load(ctx)
	assert.ErrorIs(t, err, domain.ErrMalformedToken)
	assert.Nil(t, sess.Identity())

	_, err = store.Load(ctx, TokenKey)
	assert.ErrorIs(t, err, repositories.ErrTokenNotFound)
}

func TestSession_ExpiredToken(t *testing.T) {
	ctx := context.Background()
	store := repositories.NewMemoryTokenStore()
	expired := makeToken(t, "s@daterbo.id", "R003", "", time.Now().Add(-time.Minute))

	sess := NewSession(store, TokenKey, time.Hour, nil, zap.NewNop())
	_, err := sess.Adopt(ctx, expired)
	assert.ErrorIs(t, err, domain.ErrNoSession)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	require.NoError(t, store.Save(ctx, TokenKey, expired, 0))
	_, err = sess.Load(ctx)
	assert.ErrorIs(t, err, domain.ErrNoSession)
	_, err = store.Load(ctx, TokenKey)
	assert.ErrorIs(t, err, repositories.ErrTokenNotFound)
}

func TestSession_NoToken(t *testing.T) {
	sess := NewSession(repositories.NewMemoryTokenStore(), TokenKey, time.Hour, nil, zap.NewNop())
	_, err := sess.Load(context.Background())
	assert.ErrorIs(t, err, domain.ErrNoSession)
}

func TestSession_AdoptRejectsGarbage(t *testing.T) {
	store := repositories.NewMemoryTokenStore()
	sess := NewSession(store, TokenKey, time.Hour, nil, zap.NewNop())

	_, err := sess.Adopt(context.Background(), "garbage")
	assert.ErrorIs(t, err, domain.ErrMalformedToken)
	_, err = store.Load(context.Background(), TokenKey)
	assert.ErrorIs(t, err, repositories.ErrTokenNotFound)
}

func TestSession_GuardEndsSessionOnUnauthorized(t *testing.T) {
	ctx := context.Background()
	store := repositories.NewMemoryTokenStore()
	sess := newTestSession(t, store, "R002", "U2")

	err := sess.Guard(ctx, &domain.RejectedError{StatusCode: 409, Message: "duplikat"})
	assert.Error(t, err)
	assert.True(t, sess.Authenticated())

	err = sess.Guard(ctx, domain.ErrUnauthorized)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.False(t, sess.Authenticated())
	_, err = store.Load(ctx, TokenKey)
	assert.ErrorIs(t, err, repositories.ErrTokenNotFound)
}

func TestResolveToken_RoleMapping(t *testing.T) {
	exp := time.Now().Add(time.Hour)
	tests := []struct {
		role string
		want domain.Role
	}{
		{"R001", domain.RoleAdmin},
		{"R002", domain.RoleStaffBroad},
		{"R003", domain.RoleStaffNarrow},
		{"", domain.RoleStaffNarrow},
	}
	for _, tt := range tests {
		p, err := ResolveToken("Bearer "+makeToken(t, "x@daterbo.id", tt.role, "", exp), time.Now())
		require.NoError(t, err)
		assert.Equal(t, tt.want, p.Identity.Role, tt.role)
		assert.NotContains(t, p.Token, "Bearer")
	}
}

func TestSessionManager(t *testing.T) {
	m := NewSessionManager(repositories.NewMemoryTokenStore(), time.Hour, nil, zap.NewNop())
	assert.Equal(t, "authToken:abc", m.Open("abc").Key())
	assert.Equal(t, "authToken", m.Open("").Key())
	a, b := m.Ephemeral(), m.Ephemeral()
	assert.True(t, strings.HasPrefix(a.Key(), TokenKey+":"))
	assert.NotEqual(t, a.Key(), b.Key())
}
