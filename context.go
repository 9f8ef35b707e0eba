package extcore

import (
	"context"
	"log/slog"
	"net/http"
)

type contextKey[T any] struct{}

// SetValue stores a typed value in the request context. For use in middleware.
func SetValue[T any](r *http.Request, val T) *http.Request {
	ctx := context.WithValue(r.Context(), contextKey[T]{}, val)
	return r.WithContext(ctx)
}

// GetValue retrieves a typed value from the request context.
func GetValue[T any](ctx context.Context) (T, bool) {
	val, ok := ctx.Value(contextKey[T]{}).(T)
	return val, ok
}

type requestLogger struct {
	*slog.Logger
}

// ContextWithLogger returns a context carrying logger. Handlers receive it
// through HandlerContext.Logger.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, contextKey[requestLogger]{}, requestLogger{logger})
}

// LoggerFrom returns the logger stored in ctx, or fallback.
func LoggerFrom(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if l, ok := ctx.Value(contextKey[requestLogger]{}).(requestLogger); ok && l.Logger != nil {
		return l.Logger
	}
	if fallback != nil {
		return fallback
	}
	return slog.Default()
}
