package services

import (
	"context"
	"testing"
	"time"

	"daterbo-console/internal/adapters/persistence/repositories"
	"daterbo-console/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestAuthService_Login(t *testing.T) {
	f := newFakeUpstream()
	f.token = makeToken(t, "staff@daterbo.id", "R003", "U3", time.Now().Add(time.Hour))
	svc := NewAuthService(f, zap.NewNop())
	store := repositories.NewMemoryTokenStore()
	sess := NewSession(store, TokenKeyFor("sid-1"), time.Hour, nil, zap.NewNop())
	ctx := context.Background()

	p, err := svc.Login(ctx, sess, LoginInput{Email: " staff@daterbo.id ", Password: "rahasia"})
	require.NoError(t, err)
	assert.Equal(t, "staff@daterbo.id", p.Identity.Email)
	assert.Equal(t, domain.RoleStaffNarrow, p.Identity.Role)

	stored, err := store.Load(ctx, "authToken:sid-1")
	require.NoError(t, err)
	assert.Equal(t, f.token, stored)

	require.NoError(t, svc.Logout(ctx, sess))
	_, err = store.Load(ctx, "authToken:sid-1")
	assert.ErrorIs(t, err, repositories.ErrTokenNotFound)
}

func TestAuthService_LoginFailures(t *testing.T) {
	f := newFakeUpstream()
	svc := NewAuthService(f, zap.NewNop())
	sess := NewSession(repositories.NewMemoryTokenStore(), TokenKey, time.Hour, nil, zap.NewNop())
	ctx := context.Background()

	_, err := svc.Login(ctx, sess, LoginInput{Password: "x"})
	assert.ErrorIs(t, err, domain.ErrRequiredField)

	f.errs["Login"] = &domain.RejectedError{StatusCode: 401, Message: "Login sebagai user gagal"}
	_, err = svc.Login(ctx, sess, LoginInput{Email: "a@b.id", Password: "x"})
	assert.EqualError(t, err, "Login sebagai user gagal")
	assert.False(t, sess.Authenticated())

	// upstream issuing an undecodable token leaves the session logged out
	delete(f.errs, "Login")
	f.token = "garbage"
	_, err = svc.Login(ctx, sess, LoginInput{Email: "a@b.id", Password: "x"})
	assert.ErrorIs(t, err, domain.ErrMalformedToken)
	assert.False(t, sess.Authenticated())
}

func TestAuthService_RegisterAdmin(t *testing.T) {
	f := newFakeUpstream()
	svc := NewAuthService(f, zap.NewNop())

	err := svc.RegisterAdmin(context.Background(), domain.Admin{Name: "Root", Email: "root@daterbo.id"})
	assert.ErrorIs(t, err, domain.ErrRequiredField)

	require.NoError(t, svc.RegisterAdmin(context.Background(), domain.Admin{Name: "Root", Email: "root@daterbo.id", Password: "pw"}))
	assert.True(t, f.called("RegisterAdmin"))
}
