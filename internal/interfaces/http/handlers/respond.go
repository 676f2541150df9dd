// Package handlers implements the HTTP handlers of the gates API.
package handlers

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"gates-backend/internal/domain/gate"
	"gates-backend/internal/interfaces/http/validation"
	"gates-backend/internal/middleware"
	"gates-backend/pkg/api"
	apperrors "gates-backend/pkg/errors"
)

// writeError maps err to a status code and JSON error body.
func writeError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	requestID := middleware.GetRequestIDFromRequest(r)

	var verrs validation.Errors
	if errors.As(err, &verrs) {
		api.Success(w, http.StatusBadRequest, api.ErrorResponse{
			Error:     "validation failed",
			RequestID: requestID,
			Fields:    verrs.Fields(),
		})
		return
	}

	app, ok := apperrors.As(err)
	if !ok {
		app = &apperrors.AppError{Type: apperrors.ErrorTypeInternal, Message: "Internal server error", Err: err}
	}
	if app.Type == apperrors.ErrorTypeInternal {
		logger.Error("request failed",
			zap.String("request_id", requestID),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
	api.ErrorWithRequestID(w, app.Type.HTTPStatus(), app.Message, requestID)
}

func badRequest(w http.ResponseWriter, r *http.Request, message string) {
	api.ErrorWithRequestID(w, http.StatusBadRequest, message, middleware.GetRequestIDFromRequest(r))
}

// pathParam returns an unescaped chi URL parameter.
func pathParam(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

// gateKey reads the key from the route. Validation is left to the service.
func gateKey(r *http.Request) gate.Key {
	return gate.Key{
		Group:       pathParam(r, "group"),
		Service:     pathParam(r, "service"),
		Environment: pathParam(r, "environment"),
	}
}
