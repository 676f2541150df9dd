// Package config provides configuration management for the gates service.
//
// Configuration is layered: compiled defaults, then an optional YAML file,
// then environment variables. Environment variables use the GATES_ prefix
// (GATES_SERVER_PORT) and also fall back to the bare name (PORT) so the
// usual Lambda and container variables work unchanged.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // business hours time zones on hosts without zoneinfo

	"gates-backend/internal/domain/businesshours"
)

// Environment represents the deployment environment.
type Environment string

const (
	Development Environment = "development"
	Staging     Environment = "staging"
	Production  Environment = "production"
)

// IsValid reports whether e is a known environment.
func (e Environment) IsValid() bool {
	switch e {
	case Development, Staging, Production:
		return true
	}
	return false
}

// Config is the complete service configuration.
type Config struct {
	Environment Environment `yaml:"environment" envconfig:"ENVIRONMENT"`
	ServiceName string      `yaml:"service_name" envconfig:"SERVICE_NAME"`
	Version     string      `yaml:"version" envconfig:"VERSION"`

	// DemoMode wraps the repository in the read-only decorator.
	DemoMode bool `yaml:"demo_mode" envconfig:"DEMO_MODE"`

	Server         Server         `yaml:"server" envconfig:"SERVER"`
	Database       Database       `yaml:"database" envconfig:"DATABASE"`
	BusinessHours  BusinessHours  `yaml:"business_hours" envconfig:"BUSINESS_HOURS"`
	Events         Events         `yaml:"events" envconfig:"EVENTS"`
	Tracing        Tracing        `yaml:"tracing" envconfig:"TRACING"`
	Metrics        Metrics        `yaml:"metrics" envconfig:"METRICS"`
	CircuitBreaker CircuitBreaker `yaml:"circuit_breaker" envconfig:"CIRCUIT_BREAKER"`
	Logging        Logging        `yaml:"logging" envconfig:"LOGGING"`
	CORS           CORS           `yaml:"cors" envconfig:"CORS"`

	// source is the YAML file the configuration was read from, if any.
	source string
}

// Server holds HTTP server settings.
type Server struct {
	Port            int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" split_words:"true"`
	WriteTimeout    time.Duration `yaml:"write_timeout" split_words:"true"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" split_words:"true"`
	RequestTimeout  time.Duration `yaml:"request_timeout" split_words:"true"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" split_words:"true"`
}

// Address is the listen address for the HTTP server.
func (s Server) Address() string {
	return fmt.Sprintf(":%d", s.Port)
}

// Database holds DynamoDB settings.
type Database struct {
	TableName string `yaml:"table_name" envconfig:"TABLE_NAME"`
	Region    string `yaml:"region" envconfig:"AWS_REGION"`
	// Endpoint points the client at DynamoDB Local when set.
	Endpoint         string        `yaml:"endpoint" envconfig:"DYNAMODB_ENDPOINT"`
	CreateTable      bool          `yaml:"create_table" split_words:"true"`
	RetryMaxAttempts int           `yaml:"retry_max_attempts" split_words:"true"`
	ConnectTimeout   time.Duration `yaml:"connect_timeout" split_words:"true"`
}

// IsLocal reports whether a local endpoint is configured.
func (d Database) IsLocal() bool {
	return d.Endpoint != ""
}

// BusinessHours configures the business-hours switch.
type BusinessHours struct {
	Enabled  bool                       `yaml:"enabled"`
	Timezone string                     `yaml:"timezone"`
	Week     businesshours.BusinessWeek `yaml:"week" ignored:"true"`
}

// Location resolves Timezone, defaulting to UTC.
func (b BusinessHours) Location() (*time.Location, error) {
	if b.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(b.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid business hours timezone %q: %w", b.Timezone, err)
	}
	return loc, nil
}

// Events configures domain event publishing to EventBridge.
type Events struct {
	Enabled bool   `yaml:"enabled"`
	BusName string `yaml:"bus_name" envconfig:"EVENT_BUS_NAME"`
	Source  string `yaml:"source"`
}

// Tracing configures OpenTelemetry export.
type Tracing struct {
	Enabled    bool    `yaml:"enabled"`
	Endpoint   string  `yaml:"endpoint" envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	Insecure   bool    `yaml:"insecure"`
	SampleRate float64 `yaml:"sample_rate" split_words:"true"`
}

// Metrics configures the Prometheus collector.
type Metrics struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace"`
}

// CircuitBreaker configures the breaker around the repository.
type CircuitBreaker struct {
	Enabled      bool          `yaml:"enabled"`
	MaxRequests  uint32        `yaml:"max_requests" split_words:"true"`
	Interval     time.Duration `yaml:"interval"`
	Timeout      time.Duration `yaml:"timeout"`
	MinRequests  uint32        `yaml:"min_requests" split_words:"true"`
	FailureRatio float64       `yaml:"failure_ratio" split_words:"true"`
}

// Logging configures zap.
type Logging struct {
	Level string `yaml:"level" envconfig:"LOG_LEVEL"`
}

// CORS configures cross-origin access to the API.
type CORS struct {
	AllowedOrigins []string `yaml:"allowed_origins" split_words:"true"`
	MaxAge         int      `yaml:"max_age" split_words:"true"`
}

// Default returns the configuration used when nothing else is provided.
func Default() *Config {
	return &Config{
		Environment: Development,
		ServiceName: "gates",
		Version:     "dev",
		Server: Server{
			Port:            8080,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			IdleTimeout:     60 * time.Second,
			RequestTimeout:  5 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Database: Database{
			TableName:        "Gates",
			Region:           "eu-central-1",
			RetryMaxAttempts: 3,
			ConnectTimeout:   30 * time.Second,
		},
		BusinessHours: BusinessHours{
			Enabled:  true,
			Timezone: "UTC",
			Week:     businesshours.DefaultWeek(),
		},
		Events: Events{
			Source: "gates.service",
		},
		Tracing: Tracing{
			SampleRate: 1.0,
		},
		Metrics: Metrics{
			Enabled:   true,
			Namespace: "gates",
		},
		CircuitBreaker: CircuitBreaker{
			Enabled:      true,
			MaxRequests:  3,
			Interval:     10 * time.Second,
			Timeout:      30 * time.Second,
			MinRequests:  5,
			FailureRatio: 0.6,
		},
		Logging: Logging{
			Level: "info",
		},
		CORS: CORS{
			AllowedOrigins: []string{"*"},
			MaxAge:         300,
		},
	}
}

// Source returns the YAML file this configuration was loaded from.
func (c *Config) Source() string {
	return c.source
}

// IsProduction reports whether the service runs in production.
func (c *Config) IsProduction() bool {
	return c.Environment == Production
}

// Validate checks the configuration for inconsistencies.
func (c *Config) Validate() error {
	var errs []error

	if !c.Environment.IsValid() {
		errs = append(errs, fmt.Errorf("invalid environment %q", c.Environment))
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid server port %d", c.Server.Port))
	}
	if strings.TrimSpace(c.Database.TableName) == "" {
		errs = append(errs, errors.New("database table name is required"))
	}
	if c.Database.RetryMaxAttempts < 0 {
		errs = append(errs, errors.New("database retry attempts must not be negative"))
	}
	if _, err := c.BusinessHours.Location(); err != nil {
		errs = append(errs, err)
	}
	if err := c.BusinessHours.Week.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("invalid business week: %w", err))
	}
	if c.Events.Enabled && c.Events.BusName == "" {
		errs = append(errs, errors.New("events enabled but no event bus name configured"))
	}
	if c.Tracing.Enabled && c.Tracing.Endpoint == "" {
		errs = append(errs, errors.New("tracing enabled but no OTLP endpoint configured"))
	}
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		errs = append(errs, fmt.Errorf("tracing sample rate %v out of range [0,1]", c.Tracing.SampleRate))
	}
	if c.CircuitBreaker.FailureRatio <= 0 || c.CircuitBreaker.FailureRatio > 1 {
		errs = append(errs, fmt.Errorf("circuit breaker failure ratio %v out of range (0,1]", c.CircuitBreaker.FailureRatio))
	}

	return errors.Join(errs...)
}
