package middleware

import (
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/google/uuid"

	"github.com/minrisk/risk-management/pkg/logger"
)

// RequestID binds the caller-supplied trace ID (or a fresh one) plus chi's
// per-request ID to the context logger, and echoes the trace ID back so
// clients can correlate.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get("X-Trace-ID")
		if traceID == "" {
			traceID = uuid.NewString()
		}

		ctx := logger.With(r.Context(),
			"traceID", traceID,
			"request_id", middleware.GetReqID(r.Context()),
		)

		w.Header().Set("X-Trace-ID", traceID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
