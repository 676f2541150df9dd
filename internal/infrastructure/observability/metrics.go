// Package observability provides logging, metrics and tracing setup for the
// gates service.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds all Prometheus metrics for the application
type Collector struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Repository metrics
	RepositoryOperations *prometheus.CounterVec
	RepositoryDuration   *prometheus.HistogramVec

	// Business metrics
	GatesCreated        prometheus.Counter
	GatesDeleted        prometheus.Counter
	StateChanges        *prometheus.CounterVec
	BusinessHoursVetoes prometheus.Counter
	CommentsAdded       prometheus.Counter

	// Resilience metrics
	CircuitBreakerState *prometheus.GaugeVec
}

// NewCollector creates a collector with its own registry. Each call yields an
// independent set of metrics, so tests can create as many as they like.
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		RepositoryOperations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "repository_operations_total",
				Help:      "Total number of gate repository operations by outcome",
			},
			[]string{"operation", "outcome"},
		),
		RepositoryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "repository_operation_duration_seconds",
				Help:      "Gate repository operation duration in seconds",
				Buckets:   []float64{.002, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"operation"},
		),
		GatesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gates_created_total",
			Help:      "Total number of gates created",
		}),
		GatesDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gates_deleted_total",
			Help:      "Total number of gates deleted",
		}),
		StateChanges: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "gate_state_changes_total",
				Help:      "Total number of gate state writes by target state",
			},
			[]string{"state"},
		),
		BusinessHoursVetoes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "business_hours_vetoes_total",
			Help:      "Open requests rejected outside business hours",
		}),
		CommentsAdded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "comments_added_total",
			Help:      "Total number of comments added",
		}),
		CircuitBreakerState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "circuit_breaker_state",
				Help:      "Circuit breaker state (0 closed, 1 half-open, 2 open)",
			},
			[]string{"breaker"},
		),
	}

	registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.RepositoryOperations,
		c.RepositoryDuration,
		c.GatesCreated,
		c.GatesDeleted,
		c.StateChanges,
		c.BusinessHoursVetoes,
		c.CommentsAdded,
		c.CircuitBreakerState,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// Registry exposes the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the metrics in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}
