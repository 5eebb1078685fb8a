package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "releaseboard"

// Ingest outcomes
const (
	IngestStored       = "stored"
	IngestDeduplicated = "deduplicated"
	IngestRejected     = "rejected"
)

// Metrics holds the collectors of the service. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	usageIngested       *prometheus.CounterVec
	releaseTransitions  *prometheus.CounterVec
	notificationsFanout prometheus.Counter
	deliveries          *prometheus.CounterVec
	reprocessed         *prometheus.CounterVec
	aggregationDuration *prometheus.HistogramVec
}

// New registers all collectors on reg. Pass prometheus.DefaultRegisterer for
// the process-wide registry served by promhttp.Handler.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		usageIngested: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "usage",
			Name:      "events_total",
			Help:      "Usage events received by outcome",
		}, []string{"outcome"}),

		releaseTransitions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "release",
			Name:      "transitions_total",
			Help:      "Release status transitions by target status",
		}, []string{"to"}),

		notificationsFanout: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notification",
			Name:      "created_total",
			Help:      "Notifications created by release cascades",
		}),

		deliveries: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notification",
			Name:      "deliveries_total",
			Help:      "Notification delivery attempts by status",
		}, []string{"status"}),

		reprocessed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reprocess",
			Name:      "entries_total",
			Help:      "Error log entries replayed by result",
		}, []string{"result", "dry_run"}),

		aggregationDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "analytics",
			Name:      "duration_seconds",
			Help:      "Time spent computing an aggregate",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"aggregate"}),
	}
}

func (x *Metrics) UsageIngested(outcome string) {
	if x == nil {
		return
	}
	x.usageIngested.WithLabelValues(outcome).Inc()
}

func (x *Metrics) ReleaseTransition(to string) {
	if x == nil {
		return
	}
	x.releaseTransitions.WithLabelValues(to).Inc()
}

func (x *Metrics) NotificationsCreated(n int) {
	if x == nil || n <= 0 {
		return
	}
	x.notificationsFanout.Add(float64(n))
}

func (x *Metrics) Delivery(status string) {
	if x == nil {
		return
	}
	x.deliveries.WithLabelValues(status).Inc()
}

func (x *Metrics) Reprocessed(success bool, dryRun bool) {
	if x == nil {
		return
	}
	result := "failed"
	if success {
		result = "succeeded"
	}
	dry := "false"
	if dryRun {
		dry = "true"
	}
	x.reprocessed.WithLabelValues(result, dry).Inc()
}

// ObserveAggregation records the time elapsed since start under name
func (x *Metrics) ObserveAggregation(name string, start time.Time) {
	if x == nil {
		return
	}
	x.aggregationDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
}
