package handlers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"gates-backend/internal/service/gates"
	"gates-backend/pkg/api"
)

// InfoHandler serves the service description, the business-hours
// configuration and the health probe.
type InfoHandler struct {
	name    string
	version string
	service *gates.Service
	check   func(context.Context) error
	logger  *zap.Logger
}

// NewInfoHandler creates an info handler. check backs /health and may be nil.
func NewInfoHandler(name, version string, service *gates.Service, check func(context.Context) error, logger *zap.Logger) *InfoHandler {
	return &InfoHandler{name: name, version: version, service: service, check: check, logger: logger}
}

// Info handles GET /api.
func (h *InfoHandler) Info(w http.ResponseWriter, r *http.Request) {
	api.Success(w, http.StatusOK, api.InfoResponse{Name: h.name, Version: h.version})
}

// Config handles GET /api/config.
func (h *InfoHandler) Config(w http.ResponseWriter, r *http.Request) {
	view := h.service.Config()
	api.Success(w, http.StatusOK, api.ConfigResponse{
		SystemTime:   view.SystemTime,
		Enabled:      view.Enabled,
		BusinessWeek: view.BusinessWeek,
	})
}

// Health handles GET /health.
func (h *InfoHandler) Health(w http.ResponseWriter, r *http.Request) {
	if h.check != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()
		if err := h.check(ctx); err != nil {
			h.logger.Warn("health check failed", zap.Error(err))
			api.Success(w, http.StatusServiceUnavailable, api.HealthResponse{Status: "unavailable"})
			return
		}
	}
	api.Success(w, http.StatusOK, api.HealthResponse{Status: "ok"})
}
