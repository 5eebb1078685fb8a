package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/releaseboard/pkg/domain/interfaces"
	"github.com/secmon-lab/releaseboard/pkg/domain/model"
	"github.com/secmon-lab/releaseboard/pkg/domain/model/config"
	"github.com/secmon-lab/releaseboard/pkg/domain/types"
	"github.com/secmon-lab/releaseboard/pkg/service/metrics"
	"github.com/secmon-lab/releaseboard/pkg/utils/clock"
	"golang.org/x/sync/errgroup"
)

// maxGapBuckets caps the bucket count; wider ranges get wider buckets
const maxGapBuckets = 10000

type AnalyticsUseCase struct {
	repo    interfaces.Repository
	clock   clock.Clock
	tuning  config.Tuning
	metrics *metrics.Metrics
}

// HealthMetrics reports ingestion health over [start, end]. Missing bounds
// default to the configured trailing range ending now.
func (uc *AnalyticsUseCase) HealthMetrics(ctx context.Context, start, end *time.Time) (*model.HealthMetrics, error) {
	defer uc.metrics.ObserveAggregation("health", time.Now())

	s, e, err := resolveRange(start, end, uc.clock.Now(), uc.tuning.HealthDefaultRange)
	if err != nil {
		return nil, err
	}

	var (
		events []*model.UsageEvent
		errs   []*model.ErrorLogEntry
	)
	eg, egCtx := errgroup.WithContext(ctx)
	// TotalEvents and the gap buckets are both derived from this one read.
	eg.Go(func() error {
		list, err := uc.repo.Usage().List(egCtx, s, e)
		if err != nil {
			return goerr.Wrap(err, "failed to list usage events")
		}
		events = list
		return nil
	})
	eg.Go(func() error {
		list, _, err := uc.repo.ErrorLog().List(egCtx, interfaces.ErrorLogFilter{Start: s, End: e})
		if err != nil {
			return goerr.Wrap(err, "failed to list error logs")
		}
		errs = list
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return computeHealth(model.TimeRange{Start: s, End: e}, len(events), events, errs, uc.tuning.HealthBucket, uc.tuning.GapThreshold), nil
}

func computeHealth(r model.TimeRange, total int, events []*model.UsageEvent, errs []*model.ErrorLogEntry, bucket time.Duration, threshold int) *model.HealthMetrics {
	h := &model.HealthMetrics{
		Range:        r,
		TotalEvents:  total,
		FailedEvents: len(errs),
		ErrorsByType: make(map[types.ErrorType]int),
		DataGaps:     detectGaps(r, events, bucket, threshold),
	}
	for _, e := range errs {
		h.ErrorsByType[e.ErrorType]++
	}

	switch {
	case total > 0:
		succeeded := max(total-h.FailedEvents, 0)
		h.SuccessRate = model.Percent(succeeded, total)
		h.ErrorRate = model.Round2(100 - h.SuccessRate)
	case h.FailedEvents > 0:
		h.ErrorRate = 100
	}
	return h
}

// detectGaps splits r into buckets and returns runs of consecutive buckets
// whose event count is at or below threshold. The last bucket ends at r.End.
func detectGaps(r model.TimeRange, events []*model.UsageEvent, bucket time.Duration, threshold int) []model.DataGap {
	gaps := []model.DataGap{}
	span := r.End.Sub(r.Start)
	if span <= 0 || bucket <= 0 {
		return gaps
	}

	n := int((span + bucket - 1) / bucket)
	if n > maxGapBuckets {
		bucket = (span + maxGapBuckets - 1) / maxGapBuckets
		n = int((span + bucket - 1) / bucket)
	}

	counts := make([]int, n)
	for _, ev := range events {
		if !r.Contains(ev.Timestamp) {
			continue
		}
		idx := min(int(ev.Timestamp.Sub(r.Start)/bucket), n-1)
		counts[idx]++
	}

	var current *model.DataGap
	for i, c := range counts {
		bStart := r.Start.Add(time.Duration(i) * bucket)
		bEnd := bStart.Add(bucket)
		if bEnd.After(r.End) {
			bEnd = r.End
		}

		if c > threshold {
			if current != nil {
				gaps = append(gaps, *current)
				current = nil
			}
			continue
		}
		if current == nil {
			current = &model.DataGap{Start: bStart}
		}
		current.End = bEnd
		current.EventCount += c
	}
	if current != nil {
		gaps = append(gaps, *current)
	}
	return gaps
}
