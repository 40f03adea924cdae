package remote

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	defaultProbeInterval = 15 * time.Second
	probeTimeout         = 3 * time.Second
)

// StatusSink receives connectivity updates from a Monitor.
type StatusSink interface {
	SetOnline(online bool)
}

// Monitor periodically probes the server health endpoint and reports
// connectivity transitions to a sink. Probes bypass the circuit breaker
// so an open breaker can still observe the server coming back.
type Monitor struct {
	healthURL string
	http      *http.Client
	sink      StatusSink
	interval  time.Duration
	logger    *zap.Logger

	// known/online are only touched by the run goroutine.
	known  bool
	online bool

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewMonitor creates a monitor probing the API at baseURL.
func NewMonitor(baseURL string, sink StatusSink, interval time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = defaultProbeInterval
	}
	return &Monitor{
		healthURL: strings.TrimRight(baseURL, "/") + "/health",
		http:      &http.Client{Timeout: probeTimeout},
		sink:      sink,
		interval:  interval,
		logger:    logger,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Probe performs a single health check. It reports true when the server
// answers with a success status.
func (m *Monitor) Probe(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.healthURL, nil)
	if err != nil {
		return false
	}

	resp, err := m.http.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices
}

// Start launches the probe loop in a background goroutine.
func (m *Monitor) Start() {
	go m.run()
}

// Stop ends the probe loop and waits for it to finish.
func (m *Monitor) Stop() {
	close(m.stopCh)
	<-m.doneCh
}

func (m *Monitor) run() {
	defer close(m.doneCh)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopCh:
			return
		case <-ticker.C:
			m.check()
		}
	}
}

func (m *Monitor) check() {
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	online := m.Probe(ctx)
	if m.known && online == m.online {
		return
	}
	m.known = true
	m.online = online

	if online {
		m.logger.Info("server reachable", zap.String("url", m.healthURL))
	} else {
		m.logger.Warn("server unreachable", zap.String("url", m.healthURL))
	}
	m.sink.SetOnline(online)
}
