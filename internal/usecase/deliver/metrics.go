package deliver

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for delivery monitoring
var (
	// deliverySentTotal tracks delivery results per sink
	deliverySentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "delivery_sent_total",
			Help: "Total number of announcement deliveries",
		},
		[]string{"sink", "status"}, // status: success|failure
	)

	// deliveryDuration tracks delivery send duration per sink
	deliveryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "delivery_duration_seconds",
			Help:    "Announcement delivery duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30}, // 100ms to 30s
		},
		[]string{"sink"},
	)

	// announcementsDeliveredTotal tracks fully delivered announcements
	// (all enabled sinks succeeded).
	announcementsDeliveredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "announcements_delivered_total",
			Help: "Total number of announcements delivered to all enabled sinks",
		},
	)

	// announcementsPartialTotal tracks announcements where at least one
	// enabled sink failed.
	announcementsPartialTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "announcements_partial_failure_total",
			Help: "Total number of announcements with at least one failed sink",
		},
	)

	// sinksEnabled tracks number of enabled delivery sinks
	sinksEnabled = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "delivery_sinks_enabled",
			Help: "Number of enabled delivery sinks",
		},
	)
)

// recordSuccess records a successful delivery to one sink.
func recordSuccess(sink string, duration time.Duration) {
	deliverySentTotal.WithLabelValues(sink, "success").Inc()
	deliveryDuration.WithLabelValues(sink).Observe(duration.Seconds())
}

// recordFailure records a failed delivery to one sink.
func recordFailure(sink string, duration time.Duration) {
	deliverySentTotal.WithLabelValues(sink, "failure").Inc()
	deliveryDuration.WithLabelValues(sink).Observe(duration.Seconds())
}

// recordAnnouncementResult records the aggregate outcome for one announcement.
func recordAnnouncementResult(delivered bool) {
	if delivered {
		announcementsDeliveredTotal.Inc()
	} else {
		announcementsPartialTotal.Inc()
	}
}

// setSinksEnabled sets the number of enabled delivery sinks.
func setSinksEnabled(count float64) {
	sinksEnabled.Set(count)
}
