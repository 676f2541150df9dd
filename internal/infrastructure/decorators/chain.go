package decorators

import (
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"gates-backend/internal/infrastructure/observability"
	"gates-backend/internal/repository"
	"gates-backend/internal/service/quotes"
)

// ChainConfig selects the decorators applied by Chain. Nil fields are
// skipped.
type ChainConfig struct {
	Tracer         trace.TracerProvider
	Metrics        *observability.Collector
	CircuitBreaker *CircuitBreakerConfig
	Logging        *LoggingConfig
	// ReadOnly enables demo mode with the given quotes.
	ReadOnly quotes.Provider
}

// Chain wraps base from the inside out:
//
//	base -> tracing -> metrics -> circuit breaker -> logging -> read-only
//
// Tracing and metrics sit next to the backend so they measure real calls.
// The breaker sees backend failures before logging reports them, and the
// read-only guard rejects demo writes before anything below it runs.
func Chain(base repository.GateRepository, config ChainConfig, logger *zap.Logger) repository.GateRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	repo := base

	if config.Tracer != nil {
		repo = NewTracingGateRepository(repo, config.Tracer)
	}
	if config.Metrics != nil {
		repo = NewMetricsGateRepository(repo, config.Metrics)
	}
	if config.CircuitBreaker != nil {
		var onChange func(string, gobreaker.State, gobreaker.State)
		if config.Metrics != nil {
			onChange = config.Metrics.BreakerStateChanged
		}
		repo = NewCircuitBreakerGateRepository(repo, *config.CircuitBreaker, logger, onChange)
	}
	if config.Logging != nil {
		repo = NewLoggingGateRepository(repo, logger, *config.Logging)
	}
	if config.ReadOnly != nil {
		repo = NewReadOnlyGateRepository(repo, config.ReadOnly)
	}
	return repo
}
