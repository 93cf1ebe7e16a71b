package contextx

import (
	"context"
	"log/slog"

	"github.com/oklog/ulid/v2"
)

// NewRequestID returns a fresh, lexically time-ordered request id.
func NewRequestID() string {
	return ulid.Make().String()
}

// WithRequestID returns a derived context that carries the given request ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the request ID stored in ctx.
// It returns an empty string when no request ID is present.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// EnsureRequestID returns ctx unchanged when it already carries a request
// id and otherwise attaches id, or a new one when id is empty.
func EnsureRequestID(ctx context.Context, id string) context.Context {
	if RequestIDFromContext(ctx) != "" {
		return ctx
	}
	if id == "" {
		id = NewRequestID()
	}
	return WithRequestID(ctx, id)
}

// Logger returns base annotated with the request id of ctx, if any.
func Logger(ctx context.Context, base *slog.Logger) *slog.Logger {
	if base == nil {
		base = slog.Default()
	}
	if id := RequestIDFromContext(ctx); id != "" {
		return base.With("request_id", id)
	}
	return base
}
