// Package metrics exposes run and source counters for Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "jobalert"

// Metrics holds the pipeline collectors. A nil *Metrics records nothing.
type Metrics struct {
	reg prometheus.Gatherer

	// Run metrics
	RunsTotal     *prometheus.CounterVec
	RunDuration   prometheus.Histogram
	FreshPostings prometheus.Counter
	LastRunFresh  prometheus.Gauge
	LastRunTime   prometheus.Gauge

	// Source metrics
	SourceFetched  *prometheus.CounterVec
	SourceFailures *prometheus.CounterVec
	SourceDuration *prometheus.HistogramVec

	// Cache and notify metrics
	CacheEntries  prometheus.Gauge
	CachePruned   prometheus.Counter
	NotifyFailure prometheus.Counter
}

// New registers the collectors on reg. Tests pass a fresh registry; the
// binary passes prometheus.NewRegistry() and serves it from Handler.
func New(reg *prometheus.Registry) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		reg: reg,
		RunsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Completed runs by outcome (ok, notify_failed, error)",
		}, []string{"outcome"}),
		RunDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of one run",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}),
		FreshPostings: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fresh_postings_total",
			Help:      "Postings surfaced for the first time",
		}),
		LastRunFresh: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_fresh_postings",
			Help:      "Fresh postings in the most recent run",
		}),
		LastRunTime: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the most recent run finished",
		}),
		SourceFetched: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_postings_total",
			Help:      "Relevant postings returned per source",
		}, []string{"source", "kind"}),
		SourceFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_failures_total",
			Help:      "Source fetches that ended unavailable",
		}, []string{"source", "kind"}),
		SourceDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "source_duration_seconds",
			Help:      "Time to fetch one source",
			Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"kind"}),
		CacheEntries: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "seen_cache_entries",
			Help:      "Entries in the seen cache after the last save",
		}),
		CachePruned: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "seen_cache_pruned_total",
			Help:      "Entries dropped for exceeding retention",
		}),
		NotifyFailure: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notify_failures_total",
			Help:      "Runs whose digest failed to send",
		}),
	}
}

func (m *Metrics) ObserveSource(source, kind string, postings int, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.SourceDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
	if err != nil {
		m.SourceFailures.WithLabelValues(source, kind).Inc()
		return
	}
	m.SourceFetched.WithLabelValues(source, kind).Add(float64(postings))
}

func (m *Metrics) ObserveRun(outcome string, fresh int, elapsed time.Duration, finished time.Time) {
	if m == nil {
		return
	}
	m.RunsTotal.WithLabelValues(outcome).Inc()
	m.RunDuration.Observe(elapsed.Seconds())
	m.FreshPostings.Add(float64(fresh))
	m.LastRunFresh.Set(float64(fresh))
	m.LastRunTime.Set(float64(finished.Unix()))
	if outcome == OutcomeNotifyFailed {
		m.NotifyFailure.Inc()
	}
}

func (m *Metrics) ObserveCache(entries, pruned int) {
	if m == nil {
		return
	}
	m.CacheEntries.Set(float64(entries))
	m.CachePruned.Add(float64(pruned))
}

// Run outcomes.
const (
	OutcomeOK           = "ok"
	OutcomeNotifyFailed = "notify_failed"
	OutcomeError        = "error"
)

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.reg == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}
