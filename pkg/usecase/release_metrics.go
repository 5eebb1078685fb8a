package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/secmon-lab/releaseboard/pkg/domain/model"
	"github.com/secmon-lab/releaseboard/pkg/domain/types"
)

const (
	day  = 24 * time.Hour
	week = 7 * day
)

// ReleaseMetrics computes velocity, blocked time and per-owner workload
func (uc *AnalyticsUseCase) ReleaseMetrics(ctx context.Context, code string) (*model.ReleaseMetrics, error) {
	defer uc.metrics.ObserveAggregation("release_metrics", time.Now())

	release, features, err := uc.loadRelease(ctx, code)
	if err != nil {
		return nil, err
	}
	return computeReleaseMetrics(release, features, uc.clock.Now()), nil
}

func computeReleaseMetrics(release *model.Release, features []*model.Feature, now time.Time) *model.ReleaseMetrics {
	m := &model.ReleaseMetrics{
		ReleaseCode:   release.Code,
		TotalFeatures: len(features),
		WorkloadDistribution: model.WorkloadDistribution{
			ByOwner: []model.OwnerWorkload{},
		},
	}

	var (
		cycleTotal   time.Duration
		blockedCount int
		owners       = make(map[string]*model.OwnerWorkload)
	)

	for _, f := range features {
		status := f.Status.Normalize()

		switch status {
		case types.FeatureStatusReleased:
			m.CompletedFeatures++
			if cycle := f.CompletedAt().Sub(f.CreatedAt); cycle > 0 {
				cycleTotal += cycle
			}
		case types.FeatureStatusOnHold:
			blockedCount++
			if since := now.Sub(f.StatusChangedAt); since > 0 {
				m.BlockedTime.TotalBlockedDays += int(since / day)
			}
		}

		owner := f.Owner()
		if owner == "" {
			continue
		}
		w, ok := owners[owner]
		if !ok {
			w = &model.OwnerWorkload{Owner: owner}
			owners[owner] = w
		}
		w.AssignedFeatures++
		switch status {
		case types.FeatureStatusReleased:
			w.CompletedFeatures++
		case types.FeatureStatusInProgress:
			w.InProgressFeatures++
		case types.FeatureStatusOnHold:
			w.BlockedFeatures++
		}
	}

	m.CompletionRate = model.Percent(m.CompletedFeatures, m.TotalFeatures)

	if m.CompletedFeatures > 0 {
		weeks := max(now.Sub(release.CreatedAt).Hours()/week.Hours(), 1)
		m.Velocity.FeaturesPerWeek = model.Round2(float64(m.CompletedFeatures) / weeks)
		m.Velocity.AverageCycleTime = model.Round2(cycleTotal.Hours() / day.Hours() / float64(m.CompletedFeatures))
	}
	if blockedCount > 0 {
		m.BlockedTime.AverageBlockedDuration = model.Round2(float64(m.BlockedTime.TotalBlockedDays) / float64(blockedCount))
	}

	for _, w := range owners {
		w.UtilizationRate = model.Percent(w.AssignedFeatures-w.BlockedFeatures, w.AssignedFeatures)
		m.WorkloadDistribution.ByOwner = append(m.WorkloadDistribution.ByOwner, *w)
	}
	sort.Slice(m.WorkloadDistribution.ByOwner, func(i, j int) bool {
		return m.WorkloadDistribution.ByOwner[i].Owner < m.WorkloadDistribution.ByOwner[j].Owner
	})
	return m
}
