package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	globalCollector *Collector
	collectorMutex  sync.Mutex
)

// Collector holds the Prometheus metrics exposed at /metrics. All metrics
// register against a private registry so tests can create servers without
// tripping duplicate-registration panics on the default registry.
type Collector struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Business metrics
	TodosCreated prometheus.Counter
	TodosToggled prometheus.Counter
	TodosDeleted prometheus.Counter

	// Repository metrics
	RepositoryOperations *prometheus.CounterVec
	RepositoryDuration   *prometheus.HistogramVec

	// Event publishing metrics
	EventsPublished prometheus.Counter
	EventsFailed    prometheus.Counter

	// Client sync metrics
	SyncFallbacks prometheus.Counter
}

// NewCollector returns the process-wide metrics collector, creating it on
// first use. The singleton avoids duplicate registration when the container
// is rebuilt in tests.
func NewCollector(namespace string) *Collector {
	collectorMutex.Lock()
	defer collectorMutex.Unlock()

	if globalCollector != nil {
		return globalCollector
	}

	registry := prometheus.NewRegistry()

	httpRequests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	todosCreated := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "todos_created_total",
			Help:      "Total number of todos created",
		},
	)

	todosToggled := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "todos_toggled_total",
			Help:      "Total number of completion toggles",
		},
	)

	todosDeleted := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "todos_deleted_total",
			Help:      "Total number of todos deleted, including bulk clears",
		},
	)

	repositoryOperations := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "repository_operations_total",
			Help:      "Total number of repository operations",
		},
		[]string{"operation", "provider", "status"},
	)

	repositoryDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "repository_operation_duration_seconds",
			Help:      "Repository operation duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation", "provider"},
	)

	eventsPublished := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Total number of domain events published",
		},
	)

	eventsFailed := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_failed_total",
			Help:      "Total number of domain events that failed to publish",
		},
	)

	syncFallbacks := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_fallbacks_total",
			Help:      "Total number of loads served from the local cache instead of the server",
		},
	)

	registry.MustRegister(
		httpRequests,
		httpDuration,
		todosCreated,
		todosToggled,
		todosDeleted,
		repositoryOperations,
		repositoryDuration,
		eventsPublished,
		eventsFailed,
		syncFallbacks,
	)

	globalCollector = &Collector{
		registry:             registry,
		HTTPRequests:         httpRequests,
		HTTPDuration:         httpDuration,
		TodosCreated:         todosCreated,
		TodosToggled:         todosToggled,
		TodosDeleted:         todosDeleted,
		RepositoryOperations: repositoryOperations,
		RepositoryDuration:   repositoryDuration,
		EventsPublished:      eventsPublished,
		EventsFailed:         eventsFailed,
		SyncFallbacks:        syncFallbacks,
	}

	return globalCollector
}

// ResetForTesting clears the global collector so tests can rebuild it.
func ResetForTesting() {
	collectorMutex.Lock()
	defer collectorMutex.Unlock()
	globalCollector = nil
}

// GetRegistry returns the Prometheus registry backing this collector.
func (c *Collector) GetRegistry() *prometheus.Registry {
	return c.registry
}
