// Package router assembles the chi router of the gates API.
package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"gates-backend/internal/infrastructure/observability"
	"gates-backend/internal/interfaces/http/handlers"
	"gates-backend/internal/middleware"
	"gates-backend/pkg/api"
)

// Config holds the HTTP options of the router.
type Config struct {
	AllowedOrigins []string
	MaxAge         int
	RequestTimeout time.Duration
}

// Dependencies are the handlers and observability hooks the router mounts.
// Metrics and Tracer are optional.
type Dependencies struct {
	Gates   *handlers.GateHandler
	Info    *handlers.InfoHandler
	Metrics *observability.Collector
	Tracer  trace.Tracer
	Logger  *zap.Logger
}

// New builds the router.
func New(cfg Config, deps Dependencies) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(deps.Logger))
	if deps.Tracer != nil {
		r.Use(middleware.Tracing(deps.Tracer, otel.GetTextMapPropagator()))
	}
	if deps.Metrics != nil {
		r.Use(middleware.Metrics(deps.Metrics))
	}
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         cfg.MaxAge,
	}))
	r.Use(middleware.Timeout(cfg.RequestTimeout))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		api.ErrorWithRequestID(w, http.StatusNotFound, "route not found", middleware.GetRequestIDFromRequest(r))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		api.ErrorWithRequestID(w, http.StatusMethodNotAllowed, "method not allowed", middleware.GetRequestIDFromRequest(r))
	})

	r.Get("/health", deps.Info.Health)
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/", deps.Info.Info)
		r.Get("/config", deps.Info.Config)

		r.Route("/gates", func(r chi.Router) {
			r.Get("/", deps.Gates.List)
			r.Post("/", deps.Gates.Create)

			r.Route("/{group}/{service}/{environment}", func(r chi.Router) {
				r.Get("/", deps.Gates.Get)
				r.Delete("/", deps.Gates.Delete)
				r.Get("/state", deps.Gates.GetState)
				r.Put("/state", deps.Gates.UpdateState)
				r.Put("/display-order", deps.Gates.UpdateDisplayOrder)
				r.Post("/comments", deps.Gates.AddComment)
				r.Delete("/comments/{commentID}", deps.Gates.DeleteComment)
			})
		})
	})

	return r
}
