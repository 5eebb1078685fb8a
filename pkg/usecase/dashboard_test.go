package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/releaseboard/pkg/domain/types"
	"github.com/secmon-lab/releaseboard/pkg/usecase"
)

const day = 24 * time.Hour

func seedDashboardRelease(t *testing.T, f *fixture) {
	t.Helper()
	f.seedRelease(t, "v1.0", types.ReleaseStatusInProgress)
	f.seedFeature(t, "pm", usecase.FeatureInput{
		Code: "f1", ReleaseCode: "v1.0", AssignedTo: "alice",
		Status:                types.FeatureStatusReleased,
		ActualCompletionDate:  ptr(baseTime.Add(2 * day)),
		PlannedCompletionDate: ptr(baseTime.Add(3 * day)),
	})
	f.seedFeature(t, "pm", usecase.FeatureInput{
		Code: "f2", ReleaseCode: "v1.0", AssignedTo: "alice",
		Status:                types.FeatureStatusInProgress,
		PlannedCompletionDate: ptr(baseTime.Add(20 * day)),
	})
	f.seedFeature(t, "pm", usecase.FeatureInput{
		Code: "f3", ReleaseCode: "v1.0", FeatureOwner: "bob",
		Status:                types.FeatureStatusOnHold,
		PlannedCompletionDate: ptr(baseTime.Add(10 * day)),
	})
	f.seedFeature(t, "pm", usecase.FeatureInput{Code: "f4", ReleaseCode: "v1.0"})
}

func TestDashboard(t *testing.T) {
	t.Run("mixed features", func(t *testing.T) {
		f := newFixture(t)
		seedDashboardRelease(t, f)
		f.clock.Set(baseTime.Add(14 * day))

		d, err := f.uc.Analytics.Dashboard(context.Background(), "v1.0")
		gt.NoError(t, err).Required()

		ov := d.Overview
		gt.Number(t, ov.TotalFeatures).Equal(4)
		gt.Number(t, ov.CompletedFeatures).Equal(1)
		gt.Number(t, ov.InProgressFeatures).Equal(1)
		gt.Number(t, ov.BlockedFeatures).Equal(1)
		gt.Number(t, ov.PendingFeatures).Equal(1)
		gt.Number(t, ov.CompletedFeatures+ov.InProgressFeatures+ov.BlockedFeatures+ov.PendingFeatures).Equal(ov.TotalFeatures)
		gt.Number(t, ov.CompletionPercentage).Equal(25)

		gt.Value(t, d.HealthIndicators.TimelineAdherence).Equal(types.TimelineDelayed)
		gt.Value(t, d.HealthIndicators.RiskLevel).Equal(types.RiskLevelHigh)
		gt.Number(t, d.HealthIndicators.OverdueFeatures).Equal(1)

		gt.Number(t, len(d.FeatureBreakdown.ByStatus)).Equal(4)
		gt.Number(t, d.FeatureBreakdown.ByStatus[types.FeatureStatusNew]).Equal(1)
		gt.Number(t, d.FeatureBreakdown.ByOwner["alice"]).Equal(2)
		gt.Number(t, d.FeatureBreakdown.ByOwner["bob"]).Equal(1)
		gt.Number(t, d.FeatureBreakdown.ByOwner[usecase.UnassignedOwner]).Equal(1)

		gt.Bool(t, d.Timeline.StartDate.Equal(baseTime)).True()
		gt.Bool(t, d.Timeline.PlannedEndDate.Equal(baseTime.Add(20*day))).True()
		gt.Bool(t, d.Timeline.EstimatedEndDate.Equal(baseTime.Add(20*day))).True()
		gt.Value(t, d.Timeline.ActualEndDate).Nil()
	})

	t.Run("planned end passed is critical", func(t *testing.T) {
		f := newFixture(t)
		seedDashboardRelease(t, f)
		f.clock.Set(baseTime.Add(21 * day))

		d, err := f.uc.Analytics.Dashboard(context.Background(), "v1.0")
		gt.NoError(t, err).Required()
		gt.Value(t, d.HealthIndicators.TimelineAdherence).Equal(types.TimelineCritical)
		gt.Value(t, d.HealthIndicators.RiskLevel).Equal(types.RiskLevelCritical)
		gt.Number(t, d.HealthIndicators.OverdueFeatures).Equal(2)
	})

	t.Run("empty release", func(t *testing.T) {
		f := newFixture(t)
		f.seedRelease(t, "v2.0", types.ReleaseStatusDraft)

		d, err := f.uc.Analytics.Dashboard(context.Background(), "v2.0")
		gt.NoError(t, err).Required()
		gt.Number(t, d.Overview.TotalFeatures).Equal(0)
		gt.Number(t, d.Overview.CompletionPercentage).Equal(0)
		gt.Value(t, d.HealthIndicators.TimelineAdherence).Equal(types.TimelineOnSchedule)
		gt.Value(t, d.HealthIndicators.RiskLevel).Equal(types.RiskLevelLow)
		gt.Value(t, d.Timeline.PlannedEndDate).Nil()
	})

	t.Run("missing release", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.uc.Analytics.Dashboard(context.Background(), "nope")
		gt.Error(t, err).Is(usecase.ErrNotFound)
	})
}

func TestReleaseMetrics(t *testing.T) {
	f := newFixture(t)
	seedDashboardRelease(t, f)
	f.clock.Set(baseTime.Add(14 * day))

	m, err := f.uc.Analytics.ReleaseMetrics(context.Background(), "v1.0")
	gt.NoError(t, err).Required()

	gt.Number(t, m.TotalFeatures).Equal(4)
	gt.Number(t, m.CompletedFeatures).Equal(1)
	gt.Number(t, m.CompletionRate).Equal(25)
	gt.Number(t, m.Velocity.FeaturesPerWeek).Equal(0.5)
	gt.Number(t, m.Velocity.AverageCycleTime).Equal(2)
	gt.Number(t, m.BlockedTime.TotalBlockedDays).Equal(14)
	gt.Number(t, m.BlockedTime.AverageBlockedDuration).Equal(14)

	owners := m.WorkloadDistribution.ByOwner
	gt.Array(t, owners).Length(2)
	gt.Value(t, owners[0].Owner).Equal("alice")
	gt.Number(t, owners[0].AssignedFeatures).Equal(2)
	gt.Number(t, owners[0].CompletedFeatures).Equal(1)
	gt.Number(t, owners[0].InProgressFeatures).Equal(1)
	gt.Number(t, owners[0].UtilizationRate).Equal(100)
	gt.Value(t, owners[1].Owner).Equal("bob")
	gt.Number(t, owners[1].BlockedFeatures).Equal(1)
	gt.Number(t, owners[1].UtilizationRate).Equal(0)

	t.Run("no completions", func(t *testing.T) {
		f := newFixture(t)
		f.seedRelease(t, "v2.0", types.ReleaseStatusDraft)
		m, err := f.uc.Analytics.ReleaseMetrics(context.Background(), "v2.0")
		gt.NoError(t, err).Required()
		gt.Number(t, m.Velocity.FeaturesPerWeek).Equal(0)
		gt.Number(t, m.Velocity.AverageCycleTime).Equal(0)
		gt.Array(t, m.WorkloadDistribution.ByOwner).Length(0)
	})
}
