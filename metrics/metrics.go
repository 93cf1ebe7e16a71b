// Package metrics defines the Prometheus collectors of the meal service.
// All methods are safe on a nil *Metrics, which records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "mensa"

// Tiers reported by ObserveLookup.
const (
	TierMemory   = "memory"
	TierDayCache = "day_cache"
	TierDurable  = "durable"
	TierUpstream = "upstream"
)

// Metrics bundles every collector.
type Metrics struct {
	lookups     *prometheus.CounterVec
	fetches     *prometheus.CounterVec
	fetchTime   prometheus.Histogram
	persists    *prometheus.CounterVec
	refreshes   *prometheus.CounterVec
	refreshTime prometheus.Histogram
	knownPlans  prometheus.Gauge
}

// New registers the collectors with reg. A nil reg uses the default
// registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		lookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lookups_total",
			Help:      "Day and plan lookups by the tier that answered them.",
		}, []string{"tier"}),
		fetches: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_fetches_total",
			Help:      "Upstream plan fetches by result.",
		}, []string{"result"}),
		fetchTime: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_fetch_duration_seconds",
			Help:      "Duration of upstream plan fetches.",
			Buckets:   prometheus.DefBuckets,
		}),
		persists: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "durable_writes_total",
			Help:      "Background plan writes to the durable store by result.",
		}, []string{"result"}),
		refreshes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_plans_total",
			Help:      "Plans handled by refresh sweeps by result.",
		}, []string{"result"}),
		refreshTime: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "refresh_duration_seconds",
			Help:      "Duration of full refresh sweeps.",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
		}),
		knownPlans: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "known_plans",
			Help:      "Facility and language pairs held in memory.",
		}),
	}
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// ObserveLookup counts a lookup answered by tier.
func (m *Metrics) ObserveLookup(tier string) {
	if m == nil {
		return
	}
	m.lookups.WithLabelValues(tier).Inc()
}

// ObserveFetch records one upstream fetch.
func (m *Metrics) ObserveFetch(d time.Duration, err error) {
	if m == nil {
		return
	}
	m.fetches.WithLabelValues(result(err)).Inc()
	m.fetchTime.Observe(d.Seconds())
}

// ObservePersist records one background durable write.
func (m *Metrics) ObservePersist(err error) {
	if m == nil {
		return
	}
	m.persists.WithLabelValues(result(err)).Inc()
}

// ObserveRefresh records a finished refresh sweep.
func (m *Metrics) ObserveRefresh(d time.Duration, refreshed, failed int) {
	if m == nil {
		return
	}
	m.refreshes.WithLabelValues("ok").Add(float64(refreshed))
	m.refreshes.WithLabelValues("error").Add(float64(failed))
	m.refreshTime.Observe(d.Seconds())
}

// SetKnownPlans sets the number of pairs held in memory.
func (m *Metrics) SetKnownPlans(n int) {
	if m == nil {
		return
	}
	m.knownPlans.Set(float64(n))
}
