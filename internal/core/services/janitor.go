package services

import (
	"context"
	"fmt"
	"time"

	"daterbo-console/internal/adapters/persistence/repositories"
	"daterbo-console/internal/pkg/metrics"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// TokenJanitor purges expired session tokens on a cron schedule
type TokenJanitor struct {
	store   repositories.ExpiringTokenStore
	cron    *cron.Cron
	timeout time.Duration
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewTokenJanitor schedules PurgeExpired on schedule (standard cron spec or @every)
func NewTokenJanitor(store repositories.ExpiringTokenStore, schedule string, m *metrics.Metrics, logger *zap.Logger) (*TokenJanitor, error) {
	j := &TokenJanitor{
		store:   store,
		cron:    cron.New(),
		timeout: 30 * time.Second,
		metrics: m,
		logger:  logger,
	}

	if _, err := j.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
		defer cancel()
		_, _ = j.RunOnce(ctx)
	}); err != nil {
		return nil, fmt.Errorf("invalid token purge schedule %q: %w", schedule, err)
	}
	return j, nil
}

// RunOnce purges expired tokens now
func (j *TokenJanitor) RunOnce(ctx context.Context) (int64, error) {
	n, err := j.store.PurgeExpired(ctx)
	if err != nil {
		j.logger.Error("token purge failed", zap.Error(err))
		return 0, err
	}
	j.metrics.TokensPurged(n)
	if n > 0 {
		j.logger.Info("purged expired tokens", zap.Int64("count", n))
	}
	return n, nil
}

// Start runs the schedule in the background
func (j *TokenJanitor) Start() {
	j.cron.Start()
}

// Stop halts the schedule and waits for a running purge
func (j *TokenJanitor) Stop() {
	<-j.cron.Stop().Done()
}
