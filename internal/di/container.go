package di

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"todosync/internal/config"
	"todosync/internal/events"
	"todosync/internal/observability"
	"todosync/internal/repository"
	"todosync/internal/service"
)

// Container holds all application dependencies, initialized in order.
type Container struct {
	Config         *config.Config
	Logger         *zap.Logger
	Collector      *observability.Collector
	Repository     repository.Repository
	Publisher      events.Publisher
	Service        service.Service
	Router         http.Handler
	TracerProvider *observability.TracerProvider

	shutdownFunctions []func() error
}

// NewContainer creates and initializes a new dependency injection container.
func NewContainer(ctx context.Context) (*Container, error) {
	container := &Container{
		shutdownFunctions: make([]func() error, 0),
	}

	if err := container.initialize(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize container: %w", err)
	}

	return container, nil
}

// initialize sets up all dependencies in the correct order.
func (c *Container) initialize(ctx context.Context) error {
	cfg, err := provideConfig()
	if err != nil {
		return err
	}
	c.Config = cfg

	c.Logger, err = provideLogger(cfg)
	if err != nil {
		return err
	}
	c.AddShutdownFunction(func() error {
		// Sync flushes buffered logs; stderr sync failures are expected
		// on some platforms and ignored.
		_ = c.Logger.Sync()
		return nil
	})

	c.Collector = provideCollector()

	c.Repository, err = provideRepository(ctx, cfg, c.Collector, c.Logger)
	if err != nil {
		return err
	}

	c.Publisher, err = providePublisher(ctx, cfg, c.Logger)
	if err != nil {
		return err
	}

	c.Service = provideService(c.Repository, c.Publisher, c.Collector, c.Logger)
	c.Router = provideRouter(cfg, c.Service, c.Collector, c.Logger)

	c.TracerProvider, err = provideTracerProvider(cfg, c.Logger)
	if err != nil {
		// Tracing failures never block startup.
		c.Logger.Warn("tracing disabled", zap.Error(err))
	}
	if c.TracerProvider != nil {
		c.AddShutdownFunction(func() error {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), c.Config.Server.ShutdownTimeout)
			defer cancel()
			return c.TracerProvider.Shutdown(shutdownCtx)
		})
	}

	c.Logger.Info("container initialized",
		zap.String("environment", string(cfg.Environment)),
		zap.String("database_provider", cfg.Database.Provider),
		zap.Bool("events_enabled", cfg.Events.Enabled),
		zap.Bool("tracing_enabled", cfg.Tracing.Enabled),
	)
	return nil
}

// AddShutdownFunction adds a function to be called during container shutdown.
func (c *Container) AddShutdownFunction(fn func() error) {
	c.shutdownFunctions = append(c.shutdownFunctions, fn)
}

// Shutdown runs the registered shutdown functions in reverse order.
func (c *Container) Shutdown() error {
	var errs []error
	for i := len(c.shutdownFunctions) - 1; i >= 0; i-- {
		if err := c.shutdownFunctions[i](); err != nil {
			errs = append(errs, err)
			c.Logger.Error("shutdown step failed", zap.Error(err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown completed with %d errors", len(errs))
	}
	return nil
}
