package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
)

// redisTokenStore keeps tokens in redis with a native TTL
type redisTokenStore struct {
	client *redis.Client
	prefix string
}

// NewRedisTokenStore creates a redis-backed token store.
// Keys are stored as <prefix><key>.
func NewRedisTokenStore(client *redis.Client, prefix string) TokenStore {
	return &redisTokenStore{client: client, prefix: prefix}
}

func (s *redisTokenStore) Load(ctx context.Context, key string) (string, error) {
	token, err := s.client.Get(ctx, s.prefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrTokenNotFound
		}
		return "", err
	}
	return token, nil
}

func (s *redisTokenStore) Save(ctx context.Context, key, token string, ttl time.Duration) error {
	return s.client.Set(ctx, s.prefix+key, token, ttl).Err()
}

func (s *redisTokenStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.prefix+key).Err()
}
