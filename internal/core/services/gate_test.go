package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestGate_NewerLoadCancelsOlder(t *testing.T) {
	g := NewRequestGate()

	ctx1, t1 := g.Begin(context.Background(), "authToken:a")
	assert.True(t, t1.Current())

	ctx2, t2 := g.Begin(context.Background(), "authToken:a")
	assert.ErrorIs(t, ctx1.Err(), context.Canceled)
	assert.NoError(t, ctx2.Err())
	assert.False(t, t1.Current())
	assert.True(t, t2.Current())

	// releasing the stale ticket leaves the newer one alone
	t1.Done()
	assert.True(t, t2.Current())
	assert.Equal(t, 1, g.InFlight())

	t2.Done()
	assert.ErrorIs(t, ctx2.Err(), context.Canceled)
	assert.Equal(t, 0, g.InFlight())
}

func TestRequestGate_KeysAreIndependent(t *testing.T) {
	g := NewRequestGate()

	ctxA, ta := g.Begin(context.Background(), "a")
	_, tb := g.Begin(context.Background(), "b")
	assert.NoError(t, ctxA.Err())
	assert.True(t, ta.Current())
	assert.True(t, tb.Current())
	ta.Done()
	tb.Done()
}
