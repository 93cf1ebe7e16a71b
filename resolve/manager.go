package resolve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"cloud.google.com/go/civil"
	"github.com/Keksclan/goMensaSquirrel/cache"
	"github.com/Keksclan/goMensaSquirrel/durable"
	"github.com/Keksclan/goMensaSquirrel/meal"
	"github.com/Keksclan/goMensaSquirrel/metrics"
	"github.com/Keksclan/goMensaSquirrel/ratelimit"
	"github.com/Keksclan/goMensaSquirrel/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
)

// ErrNotFound is returned by GetDay when no tier knows the requested day.
var ErrNotFound = errors.New("resolve: plan not found")

// RefreshSummary reports the outcome of one RefreshAll sweep.
type RefreshSummary struct {
	Pairs     int
	Refreshed int
	Failed    int
	// Skipped counts pairs left out because ctx ended the sweep early.
	Skipped  int
	Duration time.Duration
}

// Manager owns the plan collection and answers queries against it. It is
// safe for concurrent use.
//
// The collection lock is only held for map operations, never across a
// durable or upstream call. Cold misses for the same pair share a single
// upstream fetch.
type Manager struct {
	fetcher Fetcher

	mu    sync.RWMutex
	plans *cache.Collection

	flight singleflight.Group

	// persistMu orders persist.Add against persist.Wait and guards closed.
	persistMu sync.Mutex
	persist   sync.WaitGroup
	closed    bool

	durable        durable.Store
	days           *cache.DayCache
	log            *slog.Logger
	tp             trace.TracerProvider
	tracer         trace.Tracer
	metrics        *metrics.Metrics
	limiter        *ratelimit.Limiter
	persistTimeout time.Duration
}

// New creates a Manager that fetches plans with fetcher.
func New(fetcher Fetcher, opts ...Option) *Manager {
	m := &Manager{
		fetcher:        fetcher,
		plans:          cache.NewCollection(),
		log:            slog.Default(),
		persistTimeout: DefaultPersistTimeout,
	}
	for _, o := range opts {
		o(m)
	}
	m.tracer = tracing.Tracer(m.tp)
	return m
}

func (m *Manager) start(ctx context.Context, name, facility, lang string) (context.Context, trace.Span) {
	return m.tracer.Start(ctx, name, trace.WithAttributes(
		attribute.String("mensa.facility", facility),
		attribute.String("mensa.lang", lang),
	))
}

func finish(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// GetPlan returns the plan of facility in lang, fetching it from upstream
// when it is not in memory. The returned plan is a copy.
func (m *Manager) GetPlan(ctx context.Context, facility, lang string) (_ *meal.Plan, err error) {
	lang = cache.NormalizeLang(lang)
	ctx, span := m.start(ctx, "resolve.GetPlan", facility, lang)
	defer func() { finish(span, err) }()

	m.mu.RLock()
	plan, ok := m.plans.Get(facility, lang)
	if ok {
		plan = plan.Clone()
	}
	m.mu.RUnlock()

	if ok {
		span.SetAttributes(attribute.String("mensa.tier", metrics.TierMemory))
		m.metrics.ObserveLookup(metrics.TierMemory)
		return plan, nil
	}

	span.SetAttributes(attribute.String("mensa.tier", metrics.TierUpstream))
	m.metrics.ObserveLookup(metrics.TierUpstream)
	return m.fetchShared(ctx, facility, lang)
}

// GetDay returns one day of facility in lang. The tiers are memory, the day
// cache, the durable store and the upstream API, in that order. A durable
// read failure counts as a miss. ErrNotFound is returned when the upstream
// plan does not contain date either.
func (m *Manager) GetDay(ctx context.Context, facility, lang string, date civil.Date) (_ meal.Day, err error) {
	lang = cache.NormalizeLang(lang)
	ctx, span := m.start(ctx, "resolve.GetDay", facility, lang)
	span.SetAttributes(attribute.String("mensa.date", date.String()))
	defer func() { finish(span, err) }()

	hit := func(tier string, day meal.Day) (meal.Day, error) {
		span.SetAttributes(attribute.String("mensa.tier", tier))
		m.metrics.ObserveLookup(tier)
		return day, nil
	}

	if day, ok := m.memoryDay(facility, lang, date); ok {
		return hit(metrics.TierMemory, day)
	}

	if m.days != nil {
		if day, ok := m.days.Get(facility, lang, date); ok {
			return hit(metrics.TierDayCache, day)
		}
	}

	if m.durable != nil {
		day, ok, err := durable.LoadDay(ctx, m.durable, facility, lang, date)
		switch {
		case err != nil:
			m.log.WarnContext(ctx, "durable lookup failed, falling through to upstream",
				"facility", facility, "lang", lang, "date", date.String(), "error", err)
		case ok:
			if m.days != nil {
				m.days.Set(facility, lang, day)
			}
			return hit(metrics.TierDurable, day.Clone())
		}
	}

	plan, err := m.fetchShared(ctx, facility, lang)
	if err != nil {
		return meal.Day{}, err
	}
	day, ok := plan.Day(date)
	if !ok {
		return meal.Day{}, fmt.Errorf("%w: %s on %s", ErrNotFound, cache.Key(facility, lang), date)
	}
	return hit(metrics.TierUpstream, day)
}

func (m *Manager) memoryDay(facility, lang string, date civil.Date) (meal.Day, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	plan, ok := m.plans.Get(facility, lang)
	if !ok {
		return meal.Day{}, false
	}
	day, ok := plan.Day(date)
	if !ok {
		return meal.Day{}, false
	}
	return day.Clone(), true
}

// fetchShared collapses concurrent cold misses for the same pair into one
// FetchPlan. The shared fetch is detached from the first caller's
// cancellation; every caller still stops waiting when its own ctx ends.
func (m *Manager) fetchShared(ctx context.Context, facility, lang string) (*meal.Plan, error) {
	ch := m.flight.DoChan(cache.Key(facility, lang), func() (any, error) {
		return m.FetchPlan(context.WithoutCancel(ctx), facility, lang)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*meal.Plan).Clone(), nil
	}
}

// FetchPlan unconditionally fetches the plan from upstream and stores it.
// Transport and parse failures are returned unchanged.
func (m *Manager) FetchPlan(ctx context.Context, facility, lang string) (_ *meal.Plan, err error) {
	lang = cache.NormalizeLang(lang)
	ctx, span := m.start(ctx, "resolve.FetchPlan", facility, lang)
	defer func() { finish(span, err) }()

	began := time.Now()
	plan, err := m.fetcher.Fetch(ctx, facility, lang)
	m.metrics.ObserveFetch(time.Since(began), err)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("mensa.days", plan.Len()))

	m.StorePlan(facility, lang, plan)
	return plan.Clone(), nil
}

// StorePlan replaces the in-memory plan of the pair and, with a durable
// store configured, persists it in the background. Persistence failures are
// logged and counted, never returned or retried. After Close the plan is
// kept in memory only. While Wait or Close drains, StorePlan blocks until
// the drain is over.
func (m *Manager) StorePlan(facility, lang string, plan *meal.Plan) {
	lang = cache.NormalizeLang(lang)
	stored := plan.Clone()

	m.mu.Lock()
	m.plans.Insert(facility, lang, stored)
	n := m.plans.Len()
	m.mu.Unlock()
	m.metrics.SetKnownPlans(n)

	if m.durable == nil {
		return
	}

	m.persistMu.Lock()
	defer m.persistMu.Unlock()
	if m.closed {
		m.log.Warn("manager closed, plan kept in memory only", "facility", facility, "lang", lang)
		return
	}

	// Plans in the collection are replaced, never mutated, so stored can be
	// read without the lock.
	m.persist.Add(1)
	go func() {
		defer m.persist.Done()
		ctx, cancel := context.WithTimeout(context.Background(), m.persistTimeout)
		defer cancel()

		err := durable.StorePlan(ctx, m.durable, facility, lang, stored)
		m.metrics.ObservePersist(err)
		if err != nil {
			m.log.Error("could not store plan", "facility", facility, "lang", lang, "error", err)
			return
		}
		m.log.Debug("stored plan", "facility", facility, "lang", lang, "days", stored.Len())
	}()
}

// RefreshAll re-fetches every known pair, one at a time. A failing pair is
// logged and the sweep continues. Pairs are snapshotted before the first
// fetch; plans stored during the sweep are not revisited.
func (m *Manager) RefreshAll(ctx context.Context) RefreshSummary {
	ctx, span := m.tracer.Start(ctx, "resolve.RefreshAll")
	defer span.End()

	began := time.Now()
	pairs := m.Known()
	sum := RefreshSummary{Pairs: len(pairs)}

	for i, p := range pairs {
		if err := m.limiter.Wait(ctx); err != nil {
			sum.Skipped = len(pairs) - i
			m.log.WarnContext(ctx, "refresh interrupted", "skipped", sum.Skipped, "error", err)
			break
		}
		if _, err := m.FetchPlan(ctx, p.Facility, p.Lang); err != nil {
			sum.Failed++
			m.log.ErrorContext(ctx, "could not refresh plan",
				"facility", p.Facility, "lang", p.Lang, "error", err)
			continue
		}
		sum.Refreshed++
		m.log.InfoContext(ctx, "updated plan", "facility", p.Facility, "lang", p.Lang)
	}

	sum.Duration = time.Since(began)
	m.metrics.ObserveRefresh(sum.Duration, sum.Refreshed, sum.Failed)
	span.SetAttributes(
		attribute.Int("mensa.refresh.pairs", sum.Pairs),
		attribute.Int("mensa.refresh.failed", sum.Failed),
	)
	return sum
}

// Known returns the pairs currently held in memory, sorted by key.
func (m *Manager) Known() []cache.Pair {
	m.mu.RLock()
	pairs := slices.Collect(m.plans.Pairs())
	m.mu.RUnlock()

	slices.SortFunc(pairs, func(a, b cache.Pair) int {
		return strings.Compare(a.String(), b.String())
	})
	return pairs
}

// Wait blocks until all background persistence writes have finished.
func (m *Manager) Wait() {
	m.persistMu.Lock()
	defer m.persistMu.Unlock()
	m.persist.Wait()
}

// Close waits for background writes like Wait and stops starting new ones,
// so the durable store can be closed afterwards. The manager keeps
// answering queries.
func (m *Manager) Close() {
	m.persistMu.Lock()
	defer m.persistMu.Unlock()
	m.closed = true
	m.persist.Wait()
}
