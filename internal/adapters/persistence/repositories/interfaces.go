package repositories

import (
	"context"
	"errors"
	"time"
)

// ErrTokenNotFound is returned by Load when no live token is stored under the key
var ErrTokenNotFound = errors.New("token not found")

// TokenStore keeps bearer tokens under a key.
// A ttl of zero means the token does not expire in the store.
type TokenStore interface {
	Load(ctx context.Context, key string) (string, error)
	Save(ctx context.Context, key, token string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// ExpiringTokenStore is a store that needs periodic cleanup of expired rows
type ExpiringTokenStore interface {
	TokenStore
	PurgeExpired(ctx context.Context) (int64, error)
}
