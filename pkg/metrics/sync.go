package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SyncMetrics records counters for catalog sync runs.
type SyncMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
	rows     *prometheus.CounterVec
}

// NewSyncMetrics registers the sync metrics on the provided registerer.
func NewSyncMetrics(reg prometheus.Registerer) *SyncMetrics {
	if reg == nil {
		return &SyncMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sync_duration_seconds",
		Help:    "Duration of catalog sync runs in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"phase"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sync_success",
		Help: "Successful catalog sync runs.",
	}, []string{"phase"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sync_failure",
		Help: "Failed catalog sync runs.",
	}, []string{"phase"})
	rows := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sync_rows_total",
		Help: "Rows touched by catalog sync runs, by operation.",
	}, []string{"op"})
	reg.MustRegister(duration, success, failure, rows)
	return &SyncMetrics{
		duration: duration,
		success:  success,
		failure:  failure,
		rows:     rows,
	}
}

// ObserveDuration records the duration for the named phase.
func (s *SyncMetrics) ObserveDuration(phase string, duration time.Duration) {
	if s == nil || s.duration == nil {
		return
	}
	s.duration.WithLabelValues(normalizeLabel(phase)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter for the named phase.
func (s *SyncMetrics) IncSuccess(phase string) {
	if s == nil || s.success == nil {
		return
	}
	s.success.WithLabelValues(normalizeLabel(phase)).Inc()
}

// IncFailure increments the failure counter for the named phase.
func (s *SyncMetrics) IncFailure(phase string) {
	if s == nil || s.failure == nil {
		return
	}
	s.failure.WithLabelValues(normalizeLabel(phase)).Inc()
}

// AddRows adds to the row counter for the given operation
// (inserted, updated, deleted, linked, images).
func (s *SyncMetrics) AddRows(op string, n int) {
	if s == nil || s.rows == nil || n <= 0 {
		return
	}
	s.rows.WithLabelValues(normalizeLabel(op)).Add(float64(n))
}

func normalizeLabel(label string) string {
	if label == "" {
		return "unknown"
	}
	return label
}
