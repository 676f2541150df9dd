package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"gates-backend/pkg/api"
)

// Recovery turns a handler panic into a 500 response and logs it with the
// stack. If the handler already wrote a status nothing more is sent.
func Recovery(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				requestID := GetRequestIDFromRequest(r)
				logger.Error("panic recovered",
					zap.Any("panic", rec),
					zap.String("request_id", requestID),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Stack("stack"),
				)

				if ww.Status() == 0 {
					api.ErrorWithRequestID(ww, http.StatusInternalServerError, "Internal server error", requestID)
				}
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
