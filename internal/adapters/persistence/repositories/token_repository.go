package repositories

import (
	"context"
	"errors"
	"time"

	"daterbo-console/internal/adapters/persistence/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// tokenRepository implements ExpiringTokenStore on MySQL
type tokenRepository struct {
	db         *gorm.DB
	defaultTTL time.Duration
	now        func() time.Time
}

// NewTokenRepository creates a MySQL-backed token store.
// defaultTTL is applied when Save is called without a ttl.
func NewTokenRepository(db *gorm.DB, defaultTTL time.Duration) ExpiringTokenStore {
	return &tokenRepository{db: db, defaultTTL: defaultTTL, now: time.Now}
}

// Load gets the live token stored under key
func (r *tokenRepository) Load(ctx context.Context, key string) (string, error) {
	var row models.ConsoleToken
	err := r.db.WithContext(ctx).
		Where("token_key = ?", key).
		Where("expires_at > ?", r.now()).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrTokenNotFound
		}
		return "", err
	}
	// clock skew between app and db
	if row.IsExpiredAt(r.now()) {
		return "", ErrTokenNotFound
	}
	return row.Token, nil
}

// Save upserts the token under key
func (r *tokenRepository) Save(ctx context.Context, key, token string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = r.defaultTTL
	}
	row := &models.ConsoleToken{
		TokenKey:  key,
		Token:     token,
		ExpiresAt: r.now().Add(ttl),
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "token_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"token", "expires_at", "updated_at"}),
		}).
		Create(row).Error
}

// Delete removes the token stored under key
func (r *tokenRepository) Delete(ctx context.Context, key string) error {
	return r.db.WithContext(ctx).
		Where("token_key = ?", key).
		Delete(&models.ConsoleToken{}).Error
}

// PurgeExpired deletes all expired tokens (cleanup job)
func (r *tokenRepository) PurgeExpired(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("expires_at <= ?", r.now()).
		Delete(&models.ConsoleToken{})
	return res.RowsAffected, res.Error
}
