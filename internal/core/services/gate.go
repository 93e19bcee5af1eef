package services

import (
	"context"
	"sync"
)

// RequestGate serialises overlapping loads per key: starting a load cancels
// the one in flight, and only the most recently started load may publish.
type RequestGate struct {
	mu       sync.Mutex
	seq      uint64
	inflight map[string]gateEntry
}

type gateEntry struct {
	seq    uint64
	cancel context.CancelFunc
}

// Ticket identifies one started load
type Ticket struct {
	gate *RequestGate
	key  string
	seq  uint64
}

// NewRequestGate creates an empty gate
func NewRequestGate() *RequestGate {
	return &RequestGate{inflight: make(map[string]gateEntry)}
}

// Begin starts a load for key, cancelling any older one.
// Callers must call Ticket.Done when the load returns.
func (g *RequestGate) Begin(parent context.Context, key string) (context.Context, Ticket) {
	ctx, cancel := context.WithCancel(parent)

	g.mu.Lock()
	defer g.mu.Unlock()

	if prev, ok := g.inflight[key]; ok {
		prev.cancel()
	}
	g.seq++
	g.inflight[key] = gateEntry{seq: g.seq, cancel: cancel}

	return ctx, Ticket{gate: g, key: key, seq: g.seq}
}

// Current reports whether no newer load has started for the key
func (t Ticket) Current() bool {
	t.gate.mu.Lock()
	defer t.gate.mu.Unlock()
	e, ok := t.gate.inflight[t.key]
	return ok && e.seq == t.seq
}

// Done releases the ticket's context
func (t Ticket) Done() {
	t.gate.mu.Lock()
	defer t.gate.mu.Unlock()
	if e, ok := t.gate.inflight[t.key]; ok && e.seq == t.seq {
		e.cancel()
		delete(t.gate.inflight, t.key)
	}
}

// InFlight returns the number of keys with a load running
func (g *RequestGate) InFlight() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.inflight)
}
