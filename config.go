package gomensasquirrel

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/Keksclan/goMensaSquirrel/internal/core"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
)

// Interceptor and HTTP middleware positions. Lower runs first (outermost).
const (
	orderRecovery  = 100
	orderRequestID = 200
	orderTracing   = 300
	orderLogging   = 400
	orderUser      = 1000
)

// config holds the internal configuration assembled via functional options.
type config struct {
	middlewares core.MiddlewareBuilder
	http        []orderedHTTP

	log      *slog.Logger
	tp       trace.TracerProvider
	gatherer prometheus.Gatherer
	now      func() time.Time

	// shutdownHooks run in order once both surfaces have stopped, before
	// the querier is drained.
	shutdownHooks []func(context.Context) error

	// pending runs once all options are applied, for layers that read
	// other options.
	pending []func()
}

func (c *config) deferred(f func()) {
	c.pending = append(c.pending, f)
}

func (c *config) finish() {
	for _, f := range c.pending {
		f()
	}
	c.pending = nil
}

// httpChain returns the HTTP middlewares sorted by order (stable).
func (c *config) httpChain() []Middleware {
	slices.SortStableFunc(c.http, func(a, b orderedHTTP) int {
		return cmp.Compare(a.order, b.order)
	})
	mw := make([]Middleware, len(c.http))
	for i, h := range c.http {
		mw[i] = h.mw
	}
	return mw
}

type orderedHTTP struct {
	order int
	mw    Middleware
}
