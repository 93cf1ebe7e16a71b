package gomensasquirrel

import (
	"context"
	"log/slog"
	"time"

	"github.com/Keksclan/goMensaSquirrel/httpapi"
	"github.com/Keksclan/goMensaSquirrel/interceptors"
	"github.com/Keksclan/goMensaSquirrel/tracing"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
)

// Option configures a Server.
type Option func(*config)

// WithLogger sets the logger used by the recovery and access log layers.
// Options that install those layers read the logger when NewServer runs, so
// the order of options does not matter.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.log = l }
}

// WithTracerProvider sets the provider for gRPC and HTTP server spans.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *config) { c.tp = tp }
}

// WithGatherer sets the registry served on /metrics. The default is
// prometheus.DefaultGatherer.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(c *config) { c.gatherer = g }
}

// WithClock sets the source of "now" for relative day inputs on both
// surfaces. Its location decides which date "today" is.
func WithClock(now func() time.Time) Option {
	return func(c *config) { c.now = now }
}

// WithShutdownHook registers f to run during Shutdown after both surfaces
// have stopped and before background persistence is drained. Use it for
// producers of new writes, such as a refresh scheduler. Hook errors are
// joined into the error Shutdown returns.
func WithShutdownHook(f func(context.Context) error) Option {
	return func(c *config) {
		c.shutdownHooks = append(c.shutdownHooks, f)
	}
}

// WithUnaryInterceptor adds a unary server interceptor that runs after the
// built-in ones.
func WithUnaryInterceptor(i grpc.UnaryServerInterceptor) Option {
	return func(c *config) {
		c.middlewares.Add(orderUser, "user", i)
	}
}

// WithHTTPMiddleware adds an HTTP middleware that runs after the built-in
// ones.
func WithHTTPMiddleware(mw Middleware) Option {
	return func(c *config) {
		c.http = append(c.http, orderedHTTP{order: orderUser, mw: mw})
	}
}

// WithRecovery installs panic recovery on both surfaces so that a panicking
// handler answers with an internal error instead of crashing the process.
func WithRecovery() Option {
	return func(c *config) {
		c.deferred(func() {
			c.middlewares.Add(orderRecovery, "recovery", interceptors.RecoveryUnary(c.log))
			c.http = append(c.http, orderedHTTP{orderRecovery, httpapi.Recover(c.log)})
		})
	}
}

// WithRequestID assigns every call a request id, keeping a client supplied
// one.
func WithRequestID() Option {
	return func(c *config) {
		c.middlewares.Add(orderRequestID, "request-id", interceptors.RequestIDUnary())
		c.http = append(c.http, orderedHTTP{orderRequestID, httpapi.RequestID})
	}
}

// WithTracing opens a server span per call.
func WithTracing() Option {
	return func(c *config) {
		c.deferred(func() {
			c.middlewares.Add(orderTracing, "tracing",
				tracing.UnaryServerInterceptor(&tracing.Config{TracerProvider: c.tp}))
			c.http = append(c.http, orderedHTTP{orderTracing, httpapi.Trace(c.tp)})
		})
	}
}

// WithAccessLog writes one log line per call.
func WithAccessLog() Option {
	return func(c *config) {
		c.deferred(func() {
			c.middlewares.Add(orderLogging, "logging", interceptors.LoggingUnary(c.log))
			c.http = append(c.http, orderedHTTP{orderLogging, httpapi.AccessLog(c.log)})
		})
	}
}
