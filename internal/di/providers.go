package di

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"todosync/internal/config"
	"todosync/internal/events"
	"todosync/internal/observability"
	"todosync/internal/repository"
	"todosync/internal/repository/ddb"
	"todosync/internal/repository/memory"
	"todosync/internal/rest"
	"todosync/internal/service"
)

// provideConfig loads and validates the application configuration.
func provideConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// provideLogger creates a structured logger appropriate for the environment.
// Production uses JSON format, development uses console format.
func provideLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	switch cfg.Environment {
	case config.Production, config.Staging:
		zapCfg = zap.NewProductionConfig()
	default:
		zapCfg = zap.NewDevelopmentConfig()
	}

	if level, err := zapcore.ParseLevel(cfg.Logging.Level); err == nil {
		zapCfg.Level = zap.NewAtomicLevelAt(level)
	}

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return logger, nil
}

// provideCollector creates the Prometheus metrics collector.
func provideCollector() *observability.Collector {
	return observability.NewCollector("todosync")
}

// provideRepository selects the persistence backend from configuration and
// wraps it with metrics and tracing instrumentation.
func provideRepository(ctx context.Context, cfg *config.Config, collector *observability.Collector, logger *zap.Logger) (repository.Repository, error) {
	switch cfg.Database.Provider {
	case "dynamodb":
		client, err := ddb.NewClient(ctx, cfg.Database.Region, cfg.Database.Endpoint)
		if err != nil {
			return nil, fmt.Errorf("failed to create dynamodb client: %w", err)
		}
		repo := ddb.NewRepository(client, cfg.Database.TableName, logger)
		return observability.NewInstrumentedRepository(repo, collector, "dynamodb"), nil
	case "memory":
		return observability.NewInstrumentedRepository(memory.NewRepository(), collector, "memory"), nil
	default:
		return nil, fmt.Errorf("unknown database provider %q", cfg.Database.Provider)
	}
}

// providePublisher creates the domain event publisher, or a no-op when
// event publishing is disabled.
func providePublisher(ctx context.Context, cfg *config.Config, logger *zap.Logger) (events.Publisher, error) {
	if !cfg.Events.Enabled {
		return events.NewNoopPublisher(), nil
	}

	client, err := events.NewEventBridgeClient(ctx, cfg.Database.Region)
	if err != nil {
		return nil, fmt.Errorf("failed to create eventbridge client: %w", err)
	}
	return events.NewEventBridgePublisher(client, cfg.Events.EventBusName, cfg.Events.Source, logger), nil
}

// provideService creates the todo service.
func provideService(repo repository.Repository, publisher events.Publisher, collector *observability.Collector, logger *zap.Logger) service.Service {
	return service.NewService(repo, publisher, collector, logger)
}

// provideRouter builds the HTTP router with the full middleware stack.
func provideRouter(cfg *config.Config, svc service.Service, collector *observability.Collector, logger *zap.Logger) http.Handler {
	return rest.NewRouter(cfg, svc, collector, logger).Setup()
}

// provideTracerProvider initializes OTLP tracing when enabled. Returns nil
// without error when tracing is off; callers treat a nil provider as a no-op.
func provideTracerProvider(cfg *config.Config, logger *zap.Logger) (*observability.TracerProvider, error) {
	if !cfg.Tracing.Enabled {
		return nil, nil
	}

	tp, err := observability.InitTracing(observability.TracingConfig{
		ServiceName: cfg.Tracing.ServiceName,
		Environment: string(cfg.Environment),
		Endpoint:    cfg.Tracing.Endpoint,
		SampleRate:  cfg.Tracing.SampleRate,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	logger.Info("tracing initialized",
		zap.String("endpoint", cfg.Tracing.Endpoint),
		zap.Float64("sample_rate", cfg.Tracing.SampleRate),
	)
	return tp, nil
}
