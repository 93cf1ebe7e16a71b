package httpapi

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/Keksclan/goMensaSquirrel/contextx"
	"github.com/felixge/httpsnoop"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/trace"
)

// RequestID keeps a client supplied X-Request-Id or assigns a new one, and
// echoes it in the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := contextx.EnsureRequestID(r.Context(), r.Header.Get(contextx.HeaderRequestID))
		w.Header().Set(contextx.HeaderRequestID, contextx.RequestIDFromContext(ctx))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Recover turns a handler panic into a 500 and logs it with the stack.
func Recover(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if v := recover(); v != nil {
					if v == http.ErrAbortHandler {
						panic(v)
					}
					contextx.Logger(r.Context(), log).ErrorContext(r.Context(), "panic in handler",
						"path", r.URL.Path,
						"panic", v,
						"stack", string(debug.Stack()))
					writeJSON(w, http.StatusInternalServerError, "internal_error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// AccessLog writes one line per request. 5xx responses log at error level.
func AccessLog(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			m := httpsnoop.CaptureMetrics(next, w, r)
			level := slog.LevelInfo
			if m.Code >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			contextx.Logger(r.Context(), log).Log(r.Context(), level, "http",
				"method", r.Method,
				"path", r.URL.Path,
				"status", m.Code,
				"bytes", m.Written,
				"duration", m.Duration)
		})
	}
}

// Trace wraps next in an otelhttp server span named after the route.
func Trace(tp trace.TracerProvider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		var opts []otelhttp.Option
		if tp != nil {
			opts = append(opts, otelhttp.WithTracerProvider(tp))
		}
		opts = append(opts, otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}))
		return otelhttp.NewHandler(next, "mensa.http", opts...)
	}
}
