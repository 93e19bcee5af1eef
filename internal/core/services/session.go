package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"daterbo-console/internal/adapters/persistence/repositories"
	"daterbo-console/internal/core/domain"
	"daterbo-console/internal/pkg/jwt"
	"daterbo-console/internal/pkg/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TokenKey is the fixed name the bearer token is stored under
const TokenKey = "authToken"

// Reasons a session ends
const (
	EndLogout       = "logout"
	EndUnauthorized = "unauthorized"
	EndMalformed    = "malformed"
	EndExpired      = "expired"
)

// TokenKeyFor namespaces the token key by browser session id
func TokenKeyFor(sessionID string) string {
	if sessionID == "" {
		return TokenKey
	}
	return TokenKey + ":" + sessionID
}

// Principal is a decoded bearer token
type Principal struct {
	Token     string
	Identity  *domain.Identity
	ExpiresAt time.Time
}

// IdentityFromClaims maps token claims onto a console identity
func IdentityFromClaims(c *jwt.Claims) *domain.Identity {
	return &domain.Identity{
		Email:    strings.TrimSpace(c.Subject),
		UserID:   c.UserID,
		RoleCode: c.Role,
		Role:     domain.RoleFromCode(c.Role),
		Phone:    c.Phone,
	}
}

// ResolveToken decodes a token into a principal without verifying it.
// Decode failures wrap domain.ErrMalformedToken; expired tokens wrap domain.ErrNoSession.
func ResolveToken(token string, now time.Time) (*Principal, error) {
	p, _, err := resolve(token, now)
	return p, err
}

func resolve(token string, now time.Time) (*Principal, *jwt.Claims, error) {
	claims, err := jwt.DecodeUnverified(token)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", domain.ErrMalformedToken, err)
	}
	if claims.TTL(now, time.Hour) == 0 {
		return nil, nil, errors.Join(domain.ErrNoSession, jwt.ErrTokenExpired)
	}
	return &Principal{
		Token:     strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(token), "Bearer ")),
		Identity:  IdentityFromClaims(claims),
		ExpiresAt: claims.ExpiresAtTime(),
	}, claims, nil
}

// Session is one staff member's authentication state backed by a token store.
// It replaces any process-wide auth singleton: each browser session or CLI
// invocation owns its own Session.
type Session struct {
	store   repositories.TokenStore
	key     string
	ttl     time.Duration
	metrics *metrics.Metrics
	logger  *zap.Logger
	now     func() time.Time

	mu      sync.RWMutex
	current *Principal
}

// NewSession creates a session over store under key.
// ttl caps how long a token is kept in the store.
func NewSession(store repositories.TokenStore, key string, ttl time.Duration, m *metrics.Metrics, logger *zap.Logger) *Session {
	return &Session{
		store:   store,
		key:     key,
		ttl:     ttl,
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
}

// Key returns the store key of this session
func (s *Session) Key() string {
	return s.key
}

// Load restores the principal from the store.
// An absent token yields domain.ErrNoSession. A token that cannot be decoded
// or has expired is removed and the session becomes unauthenticated.
func (s *Session) Load(ctx context.Context) (*Principal, error) {
	token, err := s.store.Load(ctx, s.key)
	if err != nil {
		if errors.Is(err, repositories.ErrTokenNotFound) {
			return nil, domain.ErrNoSession
		}
		return nil, fmt.Errorf("load session: %w", err)
	}

	p, err := ResolveToken(token, s.now())
	if err != nil {
		reason := EndMalformed
		if errors.Is(err, jwt.ErrTokenExpired) {
			reason = EndExpired
		}
		s.logger.Warn("discarding stored token", zap.String("reason", reason), zap.Error(err))
		s.end(ctx, reason)
		return nil, err
	}

	s.set(p)
	return p, nil
}

// Adopt installs a freshly issued token. Nothing is stored when the token cannot be decoded.
func (s *Session) Adopt(ctx context.Context, token string) (*Principal, error) {
	now := s.now()
	p, claims, err := resolve(token, now)
	if err != nil {
		return nil, err
	}

	if err := s.store.Save(ctx, s.key, p.Token, claims.TTL(now, s.ttl)); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	s.set(p)
	s.logger.Info("session started",
		zap.String("email", p.Identity.Email),
		zap.String("role", string(p.Identity.Role)),
	)
	return p, nil
}

// Clear logs the session out
func (s *Session) Clear(ctx context.Context) error {
	return s.end(ctx, EndLogout)
}

// Guard inspects an upstream error: a 401/403 ends the session.
// The error is returned unchanged.
func (s *Session) Guard(ctx context.Context, err error) error {
	if err != nil && errors.Is(err, domain.ErrUnauthorized) {
		s.logger.Warn("upstream refused token, ending session", zap.String("key", s.key))
		s.end(ctx, EndUnauthorized)
	}
	return err
}

// Principal returns the current principal or nil
func (s *Session) Principal() *Principal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Identity returns the current identity; nil means unauthenticated
func (s *Session) Identity() *domain.Identity {
	if p := s.Principal(); p != nil {
		return p.Identity
	}
	return nil
}

// Token returns the current bearer token or ""
func (s *Session) Token() string {
	if p := s.Principal(); p != nil {
		return p.Token
	}
	return ""
}

// Authenticated reports whether a principal is present
func (s *Session) Authenticated() bool {
	return s.Principal() != nil
}

func (s *Session) set(p *Principal) {
	s.mu.Lock()
	s.current = p
	s.mu.Unlock()
}

func (s *Session) end(ctx context.Context, reason string) error {
	s.set(nil)
	s.metrics.SessionEnded(reason)
	if err := s.store.Delete(ctx, s.key); err != nil {
		s.logger.Error("failed to delete stored token", zap.String("key", s.key), zap.Error(err))
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// SessionManager opens sessions over a shared token store
type SessionManager struct {
	store   repositories.TokenStore
	ttl     time.Duration
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewSessionManager creates a session manager
func NewSessionManager(store repositories.TokenStore, ttl time.Duration, m *metrics.Metrics, logger *zap.Logger) *SessionManager {
	return &SessionManager{store: store, ttl: ttl, metrics: m, logger: logger}
}

// Open returns the session of a browser session id; "" uses the bare token key
func (m *SessionManager) Open(sessionID string) *Session {
	return NewSession(m.store, TokenKeyFor(sessionID), m.ttl, m.metrics, m.logger)
}

// Ephemeral returns a session that lives only for one request, for
// clients that send their own bearer token. Each gets its own key so
// concurrent clients never share a request gate slot.
func (m *SessionManager) Ephemeral() *Session {
	return NewSession(repositories.NewMemoryTokenStore(), TokenKeyFor(uuid.NewString()), m.ttl, nil, m.logger)
}
