package metrics_test

import (
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/secmon-lab/releaseboard/pkg/service/metrics"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	m.UsageIngested(metrics.IngestStored)
	m.UsageIngested(metrics.IngestStored)
	m.UsageIngested(metrics.IngestDeduplicated)
	m.ReleaseTransition("RELEASED")
	m.NotificationsCreated(5)
	m.NotificationsCreated(0)
	m.Delivery("SENT")
	m.Reprocessed(true, false)
	m.Reprocessed(false, true)
	m.ObserveAggregation("health", time.Now())

	gt.Number(t, testutil.ToFloat64(m.UsageCounter(metrics.IngestStored))).Equal(2)
	gt.Number(t, testutil.ToFloat64(m.UsageCounter(metrics.IngestDeduplicated))).Equal(1)

	count, err := testutil.GatherAndCount(reg, "releaseboard_notification_created_total")
	gt.NoError(t, err).Required()
	gt.Number(t, count).Equal(1)

	count, err = testutil.GatherAndCount(reg, "releaseboard_reprocess_entries_total")
	gt.NoError(t, err).Required()
	gt.Number(t, count).Equal(2)
}

func TestNilMetrics(t *testing.T) {
	var m *metrics.Metrics
	m.UsageIngested(metrics.IngestRejected)
	m.ReleaseTransition("DELAYED")
	m.NotificationsCreated(3)
	m.Delivery("FAILED")
	m.Reprocessed(true, true)
	m.ObserveAggregation("dashboard", time.Now())
}
