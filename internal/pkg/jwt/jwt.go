package jwt

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenMalformed = errors.New("token is malformed")
	ErrTokenNoSubject = errors.New("token has no subject")
	ErrTokenExpired   = errors.New("token has expired")
)

// Claims represents the payload fields the console reads from an upstream token
type Claims struct {
	UserID string `json:"iduser,omitempty"`
	Role   string `json:"role,omitempty"`
	Phone  string `json:"nohp,omitempty"`
	jwt.RegisteredClaims
}

var parser = jwt.NewParser()

// DecodeUnverified extracts the payload of a bearer token WITHOUT checking
// its signature. The result is only fit for UI personalization; the upstream
// API stays the authority on every request.
func DecodeUnverified(tokenString string) (*Claims, error) {
	tokenString = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(tokenString), "Bearer "))
	if tokenString == "" {
		return nil, ErrTokenMalformed
	}

	claims := &Claims{}
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return nil, errors.Join(ErrTokenMalformed, err)
	}

	if strings.TrimSpace(claims.Subject) == "" {
		return nil, ErrTokenNoSubject
	}

	return claims, nil
}

// ExpiresAtTime returns the token expiry, or the zero time when the token carries none
func (c *Claims) ExpiresAtTime() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// TTL returns how long the token remains valid, capped by fallback.
// Tokens without expiry get the fallback.
func (c *Claims) TTL(now time.Time, fallback time.Duration) time.Duration {
	exp := c.ExpiresAtTime()
	if exp.IsZero() {
		return fallback
	}
	ttl := exp.Sub(now)
	if ttl <= 0 {
		return 0
	}
	if fallback > 0 && ttl > fallback {
		return fallback
	}
	return ttl
}
