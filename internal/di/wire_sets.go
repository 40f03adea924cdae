// Package di provides the dependency injection container and Wire provider
// sets. Wiring happens manually in container.go; the sets document the
// dependency graph and keep it ready for Wire code generation.
package di

import (
	"github.com/google/wire"
)

// SuperSet combines all provider sets for the complete application.
var SuperSet = wire.NewSet(
	ConfigProviders,
	InfrastructureProviders,
	ApplicationProviders,
	InterfaceProviders,
)

// ConfigProviders provides configuration-related dependencies.
// These are the foundation that other layers depend upon.
var ConfigProviders = wire.NewSet(
	provideConfig,
	provideLogger,
)

// InfrastructureProviders provides persistence, messaging and observability.
var InfrastructureProviders = wire.NewSet(
	provideCollector,
	provideRepository,
	providePublisher,
	provideTracerProvider,
)

// ApplicationProviders provides the business services.
var ApplicationProviders = wire.NewSet(
	provideService,
)

// InterfaceProviders provides the HTTP layer.
var InterfaceProviders = wire.NewSet(
	provideRouter,
)
