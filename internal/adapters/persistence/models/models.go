package models

import (
	"time"

	"gorm.io/gorm"
)

// ============================================================
// Console session tables
// ============================================================

// ConsoleToken represents console_tokens table.
// One row per session key; the bearer token is the upstream JWT.
type ConsoleToken struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TokenKey  string    `gorm:"column:token_key;size:128;not null;uniqueIndex" json:"token_key"`
	Token     string    `gorm:"type:text;not null" json:"-"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (ConsoleToken) TableName() string {
	return "console_tokens"
}

// IsExpiredAt reports whether the row is past its expiry at t
func (t *ConsoleToken) IsExpiredAt(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate creates the session tables. Borrower data lives upstream and is never migrated here.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&ConsoleToken{},
	)
}
