package worker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// WorkerMetrics provides Prometheus metrics for the poll worker.
//
// Metrics:
//   - worker_poll_cycles_total: Total poll cycles by status (success/skipped/failure)
//   - worker_poll_cycle_duration_seconds: Duration histogram of poll cycles
//   - worker_poll_new_announcements_total: Total new announcements discovered
//   - worker_poll_last_success_timestamp: Unix timestamp of last successful cycle
type WorkerMetrics struct {
	// PollCyclesTotal counts poll cycle outcomes.
	// Labels: status (success, skipped, failure)
	PollCyclesTotal *prometheus.CounterVec

	// PollCycleDurationSeconds measures poll cycle execution time.
	// Buckets cover sub-second skips up to multi-minute backlog drains.
	PollCycleDurationSeconds prometheus.Histogram

	// NewAnnouncementsTotal counts announcements seen for the first time.
	NewAnnouncementsTotal prometheus.Counter

	// LastSuccessTimestamp records when a cycle last completed cleanly.
	LastSuccessTimestamp prometheus.Gauge
}

// NewWorkerMetrics creates the worker metrics. Registration happens
// automatically via promauto.
func NewWorkerMetrics() *WorkerMetrics {
	return &WorkerMetrics{
		PollCyclesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_poll_cycles_total",
			Help: "Total number of poll cycles by status (success/skipped/failure)",
		}, []string{"status"}),

		PollCycleDurationSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "worker_poll_cycle_duration_seconds",
			Help:    "Duration of poll cycle execution in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300}, // 100ms to 5m
		}),

		NewAnnouncementsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "worker_poll_new_announcements_total",
			Help: "Total number of new announcements discovered across all cycles",
		}),

		LastSuccessTimestamp: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "worker_poll_last_success_timestamp",
			Help: "Unix timestamp of the last successful poll cycle",
		}),
	}
}

// RecordCycle increments the cycle counter for the given status.
// Status should be "success", "skipped" or "failure".
func (m *WorkerMetrics) RecordCycle(status string) {
	m.PollCyclesTotal.WithLabelValues(status).Inc()
}

// RecordCycleDuration observes the duration of one poll cycle in seconds.
func (m *WorkerMetrics) RecordCycleDuration(seconds float64) {
	m.PollCycleDurationSeconds.Observe(seconds)
}

// RecordNewAnnouncements adds the number of new announcements found in a
// cycle to the total counter.
func (m *WorkerMetrics) RecordNewAnnouncements(count int) {
	m.NewAnnouncementsTotal.Add(float64(count))
}

// RecordLastSuccess records the current time as the last successful cycle.
func (m *WorkerMetrics) RecordLastSuccess() {
	m.LastSuccessTimestamp.SetToCurrentTime()
}
