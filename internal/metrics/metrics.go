// Package metrics exposes ingestion and maintenance counters to Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"LayoffTracker/internal/ports"
)

const namespace = "layofftracker"

// Metrics implements ports.Recorder on a Prometheus registry.
type Metrics struct {
	ArticlesFetchedTotal prometheus.Counter
	ArticlesSkippedTotal *prometheus.CounterVec
	EventsSavedTotal     prometheus.Counter
	SyncDurationSeconds  *prometheus.HistogramVec
	SweepDeletedTotal    *prometheus.CounterVec
}

var _ ports.Recorder = (*Metrics)(nil)

// New registers every collector on reg; nil means the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		ArticlesFetchedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "articles_fetched_total",
			Help:      "Unique candidate articles fetched across all cycles",
		}),
		ArticlesSkippedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "articles_skipped_total",
			Help:      "Articles skipped by classifier gate or admission check",
		}, []string{"reason"}),
		EventsSavedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "events_saved_total",
			Help:      "Layoff events persisted by ingestion",
		}),
		SyncDurationSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "duration_seconds",
			Help:      "Duration of ingestion cycles",
			Buckets:   prometheus.ExponentialBuckets(0.25, 2, 10),
		}, []string{"outcome"}),
		SweepDeletedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "maintenance",
			Name:      "deleted_total",
			Help:      "Events deleted by maintenance sweeps",
		}, []string{"sweep"}),
	}
}

// ArticlesFetched adds n unique articles to the fetched counter.
func (m *Metrics) ArticlesFetched(n int) {
	m.ArticlesFetchedTotal.Add(float64(n))
}

// ArticleSkipped counts one skipped article under reason.
func (m *Metrics) ArticleSkipped(reason string) {
	m.ArticlesSkippedTotal.WithLabelValues(reason).Inc()
}

// EventSaved counts one persisted event.
func (m *Metrics) EventSaved() {
	m.EventsSavedTotal.Inc()
}

// SyncFinished observes the duration of a finished cycle by outcome.
func (m *Metrics) SyncFinished(outcome string, elapsed time.Duration) {
	m.SyncDurationSeconds.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

// SweepDeleted adds n deleted rows to the given sweep.
func (m *Metrics) SweepDeleted(sweep string, n int) {
	m.SweepDeletedTotal.WithLabelValues(sweep).Add(float64(n))
}
