package repositories

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

const testToken = "eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiJhQGIuaWQifQ.sig"

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, TokenStore) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, NewRedisTokenStore(client, "daterbo:")
}

func setupTestDB(t *testing.T) (sqlmock.Sqlmock, *tokenRepository) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	repo := NewTokenRepository(db, time.Hour).(*tokenRepository)
	return mock, repo
}

// exercised against every store
func storeRoundTrip(t *testing.T, store TokenStore) {
	ctx := context.Background()

	_, err := store.Load(ctx, "authToken")
	assert.ErrorIs(t, err, ErrTokenNotFound)

	require.NoError(t, store.Save(ctx, "authToken", testToken, time.Hour))
	got, err := store.Load(ctx, "authToken")
	require.NoError(t, err)
	assert.Equal(t, testToken, got)

	require.NoError(t, store.Save(ctx, "authToken", "second", time.Hour))
	got, err = store.Load(ctx, "authToken")
	require.NoError(t, err)
	assert.Equal(t, "second", got)

	require.NoError(t, store.Delete(ctx, "authToken"))
	_, err = store.Load(ctx, "authToken")
	assert.ErrorIs(t, err, ErrTokenNotFound)

	// deleting twice is not an error
	assert.NoError(t, store.Delete(ctx, "authToken"))
}

func TestMemoryTokenStore(t *testing.T) {
	storeRoundTrip(t, NewMemoryTokenStore())
}

func TestMemoryTokenStore_Expiry(t *testing.T) {
	store := NewMemoryTokenStore().(*memoryTokenStore)
	now := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "k", testToken, time.Minute))
	require.NoError(t, store.Save(ctx, "forever", testToken, 0))

	now = now.Add(2 * time.Minute)
	_, err := store.Load(ctx, "k")
	assert.ErrorIs(t, err, ErrTokenNotFound)

	got, err := store.Load(ctx, "forever")
	require.NoError(t, err)
	assert.Equal(t, testToken, got)
}

func TestFileTokenStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "daterbo")
	store := NewFileTokenStore(dir)
	storeRoundTrip(t, store)
}

func TestFileTokenStore_KeySanitised(t *testing.T) {
	dir := t.TempDir()
	store := NewFileTokenStore(dir).(*fileTokenStore)
	assert.Equal(t, filepath.Join(dir, "authToken_abc"), store.path("authToken:abc"))
	assert.Equal(t, filepath.Join(dir, ".._x"), store.path("../x"))
}

func TestRedisTokenStore(t *testing.T) {
	_, store := setupTestRedis(t)
	storeRoundTrip(t, store)
}

func TestRedisTokenStore_TTL(t *testing.T) {
	mr, store := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "authToken:s1", testToken, 10*time.Minute))
	assert.True(t, mr.Exists("daterbo:authToken:s1"))
	assert.Equal(t, 10*time.Minute, mr.TTL("daterbo:authToken:s1"))

	mr.FastForward(11 * time.Minute)
	_, err := store.Load(ctx, "authToken:s1")
	assert.ErrorIs(t, err, ErrTokenNotFound)
}

func TestTokenRepository_Save(t *testing.T) {
	mock, repo := setupTestDB(t)

	mock.ExpectExec("INSERT INTO `console_tokens`.*ON DUPLICATE KEY UPDATE").
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Save(context.Background(), "authToken:s1", testToken, 0)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenRepository_Load(t *testing.T) {
	mock, repo := setupTestDB(t)
	now := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return now }

	rows := sqlmock.NewRows([]string{"id", "token_key", "token", "expires_at", "created_at", "updated_at"}).
		AddRow(1, "authToken:s1", testToken, now.Add(time.Hour), now, now)
	mock.ExpectQuery("SELECT \\* FROM `console_tokens` WHERE token_key = \\? AND expires_at > \\?").
		WillReturnRows(rows)

	got, err := repo.Load(context.Background(), "authToken:s1")
	require.NoError(t, err)
	assert.Equal(t, testToken, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenRepository_Load_NotFound(t *testing.T) {
	mock, repo := setupTestDB(t)

	mock.ExpectQuery("SELECT \\* FROM `console_tokens`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "token_key", "token", "expires_at"}))

	_, err := repo.Load(context.Background(), "authToken:missing")
	assert.ErrorIs(t, err, ErrTokenNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenRepository_DeleteAndPurge(t *testing.T) {
	mock, repo := setupTestDB(t)

	mock.ExpectExec("DELETE FROM `console_tokens` WHERE token_key = \\?").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM `console_tokens` WHERE expires_at <= \\?").
		WillReturnResult(sqlmock.NewResult(0, 3))

	require.NoError(t, repo.Delete(context.Background(), "authToken:s1"))

	n, err := repo.PurgeExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
