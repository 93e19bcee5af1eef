package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"daterbo-console/internal/pkg/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeExpiringStore struct {
	purged int64
	err    error
	runs   int
}

func (f *fakeExpiringStore) Load(context.Context, string) (string, error)              { return "", nil }
func (f *fakeExpiringStore) Save(context.Context, string, string, time.Duration) error { return nil }
func (f *fakeExpiringStore) Delete(context.Context, string) error                      { return nil }
func (f *fakeExpiringStore) PurgeExpired(context.Context) (int64, error) {
	f.runs++
	return f.purged, f.err
}

func TestTokenJanitor_RunOnce(t *testing.T) {
	store := &fakeExpiringStore{purged: 5}
	j, err := NewTokenJanitor(store, "@every 1h", metrics.New(), zap.NewNop())
	require.NoError(t, err)

	n, err := j.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)

	store.err = errors.New("db gone")
	_, err = j.RunOnce(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 2, store.runs)
}

func TestTokenJanitor_InvalidSchedule(t *testing.T) {
	_, err := NewTokenJanitor(&fakeExpiringStore{}, "every hour", nil, zap.NewNop())
	assert.Error(t, err)
}

func TestTokenJanitor_StartStop(t *testing.T) {
	j, err := NewTokenJanitor(&fakeExpiringStore{}, "@every 1h", nil, zap.NewNop())
	require.NoError(t, err)
	j.Start()
	j.Stop()
}
