package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/minrisk/risk-management/pkg/logger"
)

// RecoveryMiddleware provides panic recovery with detailed logging. It pulls
// the logger from the request context so panic logs carry the trace ID.
func RecoveryMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.From(r.Context()).Error("panic recovered",
						"error", err,
						"method", r.Method,
						"url", r.URL.String(),
						"stack", string(debug.Stack()))

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					fmt.Fprintf(w, `{"error": "Internal server error", "message": "panic: %v"}`, err)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
