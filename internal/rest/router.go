// Package rest wires the HTTP middleware stack and routes.
package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"todosync/internal/config"
	"todosync/internal/handlers"
	"todosync/internal/middleware"
	"todosync/internal/observability"
	"todosync/internal/service"
	"todosync/pkg/api"
)

// Router creates and configures the HTTP router.
type Router struct {
	config    *config.Config
	service   service.Service
	collector *observability.Collector
	logger    *zap.Logger
}

// NewRouter creates a new router instance.
func NewRouter(
	cfg *config.Config,
	svc service.Service,
	collector *observability.Collector,
	logger *zap.Logger,
) *Router {
	return &Router{
		config:    cfg,
		service:   svc,
		collector: collector,
		logger:    logger,
	}
}

// Setup configures all routes and middleware.
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware. Order matters: the request id must exist before
	// anything logs and recovery must wrap everything below it.
	router.Use(middleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(middleware.Logger(rt.logger))
	router.Use(middleware.Recovery(rt.logger))

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: rt.config.CORS.AllowedOrigins,
		AllowedMethods: rt.config.CORS.AllowedMethods,
		AllowedHeaders: rt.config.CORS.AllowedHeaders,
		ExposedHeaders: []string{"X-Request-ID", "X-Trace-ID"},
		MaxAge:         rt.config.CORS.MaxAge,
	}))

	router.Use(middleware.Timeout(rt.config.Server.RequestTimeout, rt.logger))
	router.Use(observability.MetricsMiddleware(rt.collector))
	if rt.config.Tracing.Enabled {
		router.Use(observability.TracingMiddleware(rt.config.Tracing.ServiceName))
	}

	healthHandler := handlers.NewHealthHandler(rt.service, rt.logger)
	todoHandler := handlers.NewTodoHandler(rt.service, rt.logger)

	// System endpoints
	router.Get("/health", healthHandler.Check)
	router.Get("/ready", healthHandler.Ready)
	router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(rt.collector.GetRegistry(), promhttp.HandlerOpts{}))
	router.Get("/swagger", api.SwaggerHandler())

	// Todo endpoints. Static segments (/stats, /completed) are registered
	// ahead of the {id} wildcard.
	router.Route("/api/todos", func(r chi.Router) {
		r.Get("/", todoHandler.List)
		r.Post("/", todoHandler.Create)
		r.Get("/stats", todoHandler.GetStats)
		r.Delete("/completed", todoHandler.DeleteCompleted)
		r.Get("/{id}", todoHandler.Get)
		r.Put("/{id}", todoHandler.Update)
		r.Delete("/{id}", todoHandler.Delete)
		r.Patch("/{id}/toggle", todoHandler.Toggle)
	})

	return router
}
