package remote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type recordingSink struct {
	mu      sync.Mutex
	signals []bool
}

func (r *recordingSink) SetOnline(online bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.signals = append(r.signals, online)
}

func (r *recordingSink) Signals() []bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]bool(nil), r.signals...)
}

func newHealthServer(t *testing.T, healthy *atomic.Bool) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if healthy.Load() {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestMonitorProbe(t *testing.T) {
	t.Run("TrueWhenHealthEndpointAnswers", func(t *testing.T) {
		var healthy atomic.Bool
		healthy.Store(true)
		server := newHealthServer(t, &healthy)

		m := NewMonitor(server.URL, &recordingSink{}, 0, zap.NewNop())
		assert.True(t, m.Probe(context.Background()))
	})

	t.Run("FalseOnErrorStatus", func(t *testing.T) {
		var healthy atomic.Bool
		server := newHealthServer(t, &healthy)

		m := NewMonitor(server.URL, &recordingSink{}, 0, zap.NewNop())
		assert.False(t, m.Probe(context.Background()))
	})

	t.Run("FalseWhenServerIsDown", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := server.URL
		server.Close()

		m := NewMonitor(url, &recordingSink{}, 0, zap.NewNop())
		assert.False(t, m.Probe(context.Background()))
	})
}

func TestMonitorTransitions(t *testing.T) {
	var healthy atomic.Bool
	healthy.Store(true)
	server := newHealthServer(t, &healthy)

	sink := &recordingSink{}
	m := NewMonitor(server.URL, sink, 10*time.Millisecond, zap.NewNop())
	m.Start()

	assert.Eventually(t, func() bool {
		s := sink.Signals()
		return len(s) == 1 && s[0]
	}, time.Second, 5*time.Millisecond, "first probe should signal online")

	healthy.Store(false)
	assert.Eventually(t, func() bool {
		s := sink.Signals()
		return len(s) == 2 && !s[1]
	}, time.Second, 5*time.Millisecond, "losing the server should signal offline")

	// Steady state is not re-signaled.
	time.Sleep(50 * time.Millisecond)
	assert.Len(t, sink.Signals(), 2)

	m.Stop()
	healthy.Store(true)
	time.Sleep(30 * time.Millisecond)
	assert.Len(t, sink.Signals(), 2, "no signals after Stop")
}
