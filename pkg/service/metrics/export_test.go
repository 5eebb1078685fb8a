package metrics

import "github.com/prometheus/client_golang/prometheus"

// UsageCounter exposes the per-outcome usage counter for assertions
func (x *Metrics) UsageCounter(outcome string) prometheus.Counter {
	return x.usageIngested.WithLabelValues(outcome)
}
