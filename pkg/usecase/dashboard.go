package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/releaseboard/pkg/domain/interfaces"
	"github.com/secmon-lab/releaseboard/pkg/domain/model"
	"github.com/secmon-lab/releaseboard/pkg/domain/types"
	"golang.org/x/sync/errgroup"
)

// UnassignedOwner is the breakdown key for features without an owner
const UnassignedOwner = "unassigned"

func (uc *AnalyticsUseCase) loadRelease(ctx context.Context, code string) (*model.Release, []*model.Feature, error) {
	var (
		release  *model.Release
		features []*model.Feature
	)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		r, err := uc.repo.Release().Get(egCtx, code)
		if err != nil {
			return goerr.Wrap(err, "failed to get release", goerr.V(ReleaseCodeKey, code))
		}
		release = r
		return nil
	})
	eg.Go(func() error {
		list, err := uc.repo.Feature().List(egCtx, interfaces.FeatureFilter{ReleaseCode: code})
		if err != nil {
			return goerr.Wrap(err, "failed to list release features", goerr.V(ReleaseCodeKey, code))
		}
		features = list
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, nil, err
	}
	return release, features, nil
}

// Dashboard summarizes a release's features, health and timeline
func (uc *AnalyticsUseCase) Dashboard(ctx context.Context, code string) (*model.ReleaseDashboard, error) {
	defer uc.metrics.ObserveAggregation("dashboard", time.Now())

	release, features, err := uc.loadRelease(ctx, code)
	if err != nil {
		return nil, err
	}
	return computeDashboard(release, features, uc.clock.Now()), nil
}

func computeDashboard(release *model.Release, features []*model.Feature, now time.Time) *model.ReleaseDashboard {
	d := &model.ReleaseDashboard{
		ReleaseCode: release.Code,
		Status:      release.Status,
		FeatureBreakdown: model.FeatureBreakdown{
			ByStatus: make(map[types.FeatureStatus]int),
			ByOwner:  make(map[string]int),
		},
	}
	for _, s := range types.AllFeatureStatuses() {
		d.FeatureBreakdown.ByStatus[s] = 0
	}

	ov := &d.Overview
	var overdue int
	var plannedEnd, lastCompletion, estimatedEnd *time.Time

	for _, f := range features {
		status := f.Status.Normalize()
		ov.TotalFeatures++
		switch status {
		case types.FeatureStatusReleased:
			ov.CompletedFeatures++
		case types.FeatureStatusInProgress:
			ov.InProgressFeatures++
		case types.FeatureStatusOnHold:
			ov.BlockedFeatures++
		default:
			ov.PendingFeatures++
		}

		d.FeatureBreakdown.ByStatus[status]++
		owner := f.Owner()
		if owner == "" {
			owner = UnassignedOwner
		}
		d.FeatureBreakdown.ByOwner[owner]++

		if f.PlannedCompletionDate != nil {
			plannedEnd = latest(plannedEnd, *f.PlannedCompletionDate)
		}

		if status == types.FeatureStatusReleased {
			done := f.CompletedAt()
			lastCompletion = latest(lastCompletion, done)
			estimatedEnd = latest(estimatedEnd, done)
			continue
		}
		if f.PlannedCompletionDate != nil {
			if f.PlannedCompletionDate.Before(now) {
				overdue++
				// an overdue feature can finish no earlier than now
				estimatedEnd = latest(estimatedEnd, now)
			} else {
				estimatedEnd = latest(estimatedEnd, *f.PlannedCompletionDate)
			}
		}
	}
	ov.CompletionPercentage = model.Percent(ov.CompletedFeatures, ov.TotalFeatures)

	adherence := timelineAdherence(release, overdue, ov.TotalFeatures, plannedEnd, now)
	d.HealthIndicators = model.HealthIndicators{
		TimelineAdherence: adherence,
		RiskLevel:         riskLevel(ov.BlockedFeatures, ov.TotalFeatures, adherence),
		BlockedFeatures:   ov.BlockedFeatures,
		OverdueFeatures:   overdue,
	}

	start := release.CreatedAt
	d.Timeline = model.ReleaseTimeline{
		StartDate:        &start,
		PlannedEndDate:   plannedEnd,
		EstimatedEndDate: estimatedEnd,
		ActualEndDate:    release.ReleasedAt,
	}
	if d.Timeline.ActualEndDate == nil && ov.TotalFeatures > 0 && ov.CompletedFeatures == ov.TotalFeatures {
		d.Timeline.ActualEndDate = lastCompletion
	}
	return d
}

func latest(cur *time.Time, t time.Time) *time.Time {
	if cur == nil || t.After(*cur) {
		return &t
	}
	return cur
}

// timelineAdherence is ON_SCHEDULE without overdue features, DELAYED with
// some, and CRITICAL when more than half are overdue or the planned end of
// an unreleased release has passed.
func timelineAdherence(release *model.Release, overdue, total int, plannedEnd *time.Time, now time.Time) types.TimelineAdherence {
	if total == 0 {
		return types.TimelineOnSchedule
	}
	if overdue*2 > total {
		return types.TimelineCritical
	}
	if plannedEnd != nil && plannedEnd.Before(now) && !release.IsReleased() && overdue > 0 {
		return types.TimelineCritical
	}
	if overdue > 0 {
		return types.TimelineDelayed
	}
	return types.TimelineOnSchedule
}

// riskLevel grades the blocked-feature ratio and raises it one level when
// the timeline is critical
func riskLevel(blocked, total int, adherence types.TimelineAdherence) types.RiskLevel {
	var level types.RiskLevel
	ratio := 0.0
	if total > 0 {
		ratio = float64(blocked) / float64(total)
	}
	switch {
	case ratio == 0:
		level = types.RiskLevelLow
	case ratio < 0.2:
		level = types.RiskLevelMedium
	case ratio < 0.4:
		level = types.RiskLevelHigh
	default:
		level = types.RiskLevelCritical
	}
	if adherence == types.TimelineCritical {
		level = level.Raise()
	}
	return level
}
