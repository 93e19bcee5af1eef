package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestStatusClass(t *testing.T) {
	assert.Equal(t, "error", StatusClass(0))
	assert.Equal(t, "2xx", StatusClass(200))
	assert.Equal(t, "4xx", StatusClass(401))
	assert.Equal(t, "5xx", StatusClass(503))
}

func TestObserveUpstream(t *testing.T) {
	m := New()
	m.ObserveUpstream("GET", "/datapeminjam", 200, 10*time.Millisecond)
	m.ObserveUpstream("GET", "/datapeminjam", 200, 12*time.Millisecond)
	m.ObserveUpstream("GET", "/datapeminjam", 401, 5*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.upstreamCalls.WithLabelValues("GET", "/datapeminjam", "2xx")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.upstreamCalls.WithLabelValues("GET", "/datapeminjam", "4xx")))

	m.SessionEnded("unauthorized")
	m.TokensPurged(4)
	m.TokensPurged(0)
	assert.Equal(t, 4.0, testutil.ToFloat64(m.tokensPurged))

	expected := `
# HELP daterbo_console_sessions_ended_total Sessions cleared, by reason.
# TYPE daterbo_console_sessions_ended_total counter
daterbo_console_sessions_ended_total{reason="unauthorized"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "daterbo_console_sessions_ended_total"))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveUpstream("GET", "/x", 200, time.Millisecond)
		m.SessionEnded("logout")
		m.TokensPurged(1)
	})
}
