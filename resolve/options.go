package resolve

import (
	"log/slog"
	"time"

	"github.com/Keksclan/goMensaSquirrel/cache"
	"github.com/Keksclan/goMensaSquirrel/durable"
	"github.com/Keksclan/goMensaSquirrel/metrics"
	"github.com/Keksclan/goMensaSquirrel/ratelimit"
	"go.opentelemetry.io/otel/trace"
)

// DefaultPersistTimeout bounds one background durable write of a plan.
const DefaultPersistTimeout = time.Minute

// Option configures a Manager.
type Option func(*Manager)

// WithDurable enables the durable tier and background persistence.
func WithDurable(s durable.Store) Option {
	return func(m *Manager) { m.durable = s }
}

// WithDayCache keeps durable hits in process.
func WithDayCache(c *cache.DayCache) Option {
	return func(m *Manager) { m.days = c }
}

func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.log = l }
}

func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(m *Manager) { m.tp = tp }
}

func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Manager) { m.metrics = mt }
}

// WithRefreshLimiter paces the fetches of RefreshAll.
func WithRefreshLimiter(l *ratelimit.Limiter) Option {
	return func(m *Manager) { m.limiter = l }
}

// WithPersistTimeout overrides DefaultPersistTimeout.
func WithPersistTimeout(d time.Duration) Option {
	return func(m *Manager) { m.persistTimeout = d }
}
