// Package config provides layered configuration loading for the server:
// code defaults, then YAML files, then environment variables, validated
// after the final merge.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Environment represents the deployment environment.
type Environment string

const (
	Development Environment = "development"
	Staging     Environment = "staging"
	Production  Environment = "production"
)

// Config is the root configuration for the API server.
type Config struct {
	Environment Environment `yaml:"environment" validate:"required,oneof=development staging production"`

	Server   Server   `yaml:"server"`
	Database Database `yaml:"database"`
	Events   Events   `yaml:"events"`
	Tracing  Tracing  `yaml:"tracing"`
	CORS     CORS     `yaml:"cors"`
	Logging  Logging  `yaml:"logging"`

	// LoadedFrom tracks which sources contributed, in merge order.
	LoadedFrom []string `yaml:"-"`
}

// Server holds the HTTP server settings.
type Server struct {
	Port            int           `yaml:"port" validate:"required,min=1,max=65535"`
	Host            string        `yaml:"host"`
	ReadTimeout     time.Duration `yaml:"-"`
	WriteTimeout    time.Duration `yaml:"-"`
	IdleTimeout     time.Duration `yaml:"-"`
	RequestTimeout  time.Duration `yaml:"-"`
	ShutdownTimeout time.Duration `yaml:"-"`
}

// Database selects and configures the item store.
type Database struct {
	Provider  string `yaml:"provider" validate:"required,oneof=memory dynamodb"`
	TableName string `yaml:"table_name" validate:"required_if=Provider dynamodb"`
	Region    string `yaml:"region"`
	// Endpoint overrides the DynamoDB endpoint, used for LocalStack.
	Endpoint string `yaml:"endpoint"`
}

// Events configures domain event publishing.
type Events struct {
	Enabled      bool   `yaml:"enabled"`
	EventBusName string `yaml:"event_bus_name"`
	Source       string `yaml:"source"`
}

// Tracing configures the OTLP trace exporter.
type Tracing struct {
	Enabled     bool    `yaml:"enabled"`
	Endpoint    string  `yaml:"endpoint"`
	ServiceName string  `yaml:"service_name"`
	SampleRate  float64 `yaml:"sample_rate" validate:"gte=0,lte=1"`
}

// CORS holds the cross-origin settings applied by the router.
type CORS struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
	MaxAge         int      `yaml:"max_age"`
}

// Logging controls the zap logger.
type Logging struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
}

// Validate checks the merged configuration.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		if fieldErrs, ok := err.(validator.ValidationErrors); ok && len(fieldErrs) > 0 {
			first := fieldErrs[0]
			return fmt.Errorf("invalid config: field %s failed %q", first.Namespace(), first.Tag())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// applyEnvironmentDefaults adjusts settings that depend on the environment
// after all sources are merged.
func (c *Config) applyEnvironmentDefaults() {
	if c.Environment == Production && c.Logging.Level == "debug" {
		c.Logging.Level = "info"
	}
	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = "todosync-api"
	}
}

// IsDevelopment reports whether the config targets a development environment.
func (c *Config) IsDevelopment() bool {
	return c.Environment == Development
}

// getEnvironment resolves the deployment environment from the process
// environment, defaulting to development.
func getEnvironment() Environment {
	switch strings.ToLower(os.Getenv("ENVIRONMENT")) {
	case "production", "prod":
		return Production
	case "staging", "stage":
		return Staging
	default:
		return Development
	}
}
