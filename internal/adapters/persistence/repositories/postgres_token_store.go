package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const postgresTokenSchema = `
CREATE TABLE IF NOT EXISTS console_tokens (
	token_key  VARCHAR(191) PRIMARY KEY,
	token      TEXT NOT NULL,
	expires_at TIMESTAMPTZ NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_console_tokens_expires_at ON console_tokens (expires_at);`

// postgresTokenStore implements ExpiringTokenStore on PostgreSQL
type postgresTokenStore struct {
	db         *sql.DB
	defaultTTL time.Duration
	now        func() time.Time
}

// NewPostgresTokenStore creates a PostgreSQL-backed token store.
// defaultTTL is applied when Save is called without a ttl.
func NewPostgresTokenStore(db *sql.DB, defaultTTL time.Duration) ExpiringTokenStore {
	return &postgresTokenStore{db: db, defaultTTL: defaultTTL, now: time.Now}
}

// EnsurePostgresSchema creates the token table if it does not exist
func EnsurePostgresSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, postgresTokenSchema); err != nil {
		return fmt.Errorf("create console_tokens: %w", err)
	}
	return nil
}

func (s *postgresTokenStore) Load(ctx context.Context, key string) (string, error) {
	var token string
	err := s.db.QueryRowContext(ctx,
		`SELECT token FROM console_tokens WHERE token_key = $1 AND expires_at > $2`,
		key, s.now(),
	).Scan(&token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrTokenNotFound
		}
		return "", err
	}
	return token, nil
}

func (s *postgresTokenStore) Save(ctx context.Context, key, token string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	now := s.now()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO console_tokens (token_key, token, expires_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $4)
		 ON CONFLICT (token_key) DO UPDATE
		 SET token = EXCLUDED.token, expires_at = EXCLUDED.expires_at, updated_at = EXCLUDED.updated_at`,
		key, token, now.Add(ttl), now,
	)
	return err
}

func (s *postgresTokenStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM console_tokens WHERE token_key = $1`, key)
	return err
}

func (s *postgresTokenStore) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM console_tokens WHERE expires_at <= $1`, s.now())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
