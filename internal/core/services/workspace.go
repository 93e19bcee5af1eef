package services

import (
	"context"
	"errors"
	"time"

	"daterbo-console/internal/adapters/upstream"
	"daterbo-console/internal/core/domain"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// WorkspaceLoader fetches records and reference data in one consistent set
type WorkspaceLoader struct {
	api    Upstream
	gate   *RequestGate
	logger *zap.Logger
	now    func() time.Time
}

// NewWorkspaceLoader creates a loader; gate may be shared across loaders
func NewWorkspaceLoader(api Upstream, gate *RequestGate, logger *zap.Logger) *WorkspaceLoader {
	if gate == nil {
		gate = NewRequestGate()
	}
	return &WorkspaceLoader{api: api, gate: gate, logger: logger, now: time.Now}
}

// Load fetches everything concurrently. Any 401/403 aborts the whole set
// and ends the session. When a newer load for the same session starts
// first, this one is cancelled and returns domain.ErrSuperseded.
func (l *WorkspaceLoader) Load(ctx context.Context, sess *Session) (*domain.Workspace, error) {
	if !sess.Authenticated() {
		return nil, domain.ErrNoSession
	}
	token := sess.Token()
	id := sess.Identity()

	gctx, ticket := l.gate.Begin(ctx, sess.Key())
	defer ticket.Done()

	ws := &domain.Workspace{}
	g, gctx := errgroup.WithContext(gctx)

	g.Go(func() error {
		records, err := l.api.ListRecords(gctx, token)
		ws.Records = records
		return err
	})
	g.Go(func() error { return l.api.List(gctx, token, upstream.Statuses, &ws.Statuses) })
	g.Go(func() error { return l.api.List(gctx, token, upstream.Leasings, &ws.Leasings) })
	g.Go(func() error { return l.api.List(gctx, token, upstream.PICs, &ws.PICs) })
	g.Go(func() error { return l.api.List(gctx, token, upstream.Surveyors, &ws.Surveyors) })
	// the user filter is only offered to broad-visibility roles
	if id.CanViewAll() {
		g.Go(func() error { return l.api.List(gctx, token, upstream.Users, &ws.Users) })
	}

	err := g.Wait()
	if !ticket.Current() {
		l.logger.Debug("discarding superseded workspace load", zap.String("key", sess.Key()))
		return nil, domain.ErrSuperseded
	}
	if err != nil {
		if errors.Is(err, context.Canceled) && ctx.Err() == nil {
			// cancelled by the gate between Current and Wait
			return nil, domain.ErrSuperseded
		}
		return nil, sess.Guard(ctx, err)
	}

	ws.LoadedAt = l.now()
	return ws, nil
}
