package logger

import (
	"context"
	"log/slog"
)

type ctxKey struct{}

// With returns a context carrying a child logger enriched with fields.
// Middleware uses it to attach per-request attributes like the trace ID.
func With(ctx context.Context, fields ...any) context.Context {
	return context.WithValue(ctx, ctxKey{}, From(ctx).With(fields...))
}

// From returns the logger stored in context, falling back to the process
// logger when the context carries none.
func From(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
			return l
		}
	}
	return LoggerWrapper()
}
