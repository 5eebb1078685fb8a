package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/releaseboard/pkg/domain/interfaces"
	"github.com/secmon-lab/releaseboard/pkg/domain/model"
	"github.com/secmon-lab/releaseboard/pkg/domain/types"
	"github.com/secmon-lab/releaseboard/pkg/repository/memory"
	"github.com/secmon-lab/releaseboard/pkg/usecase"
)

func TestHealthMetrics(t *testing.T) {
	t.Run("three events and one error", func(t *testing.T) {
		f := newFixture(t)
		ctx := context.Background()
		actions := []types.ActionType{types.ActionTypeFeatureUsed, types.ActionTypeFeatureViewed, types.ActionTypePageViewed}
		for i, a := range actions {
			_, err := f.uc.Usage.Ingest(ctx, model.UsagePayload{
				UserID:     "u1",
				ActionType: string(a),
				Timestamp:  ptr(baseTime.Add(-time.Duration(i+1) * time.Hour)),
			})
			gt.NoError(t, err).Required()
		}
		_, err := f.uc.Usage.Ingest(ctx, model.UsagePayload{UserID: "u1", ActionType: "BOGUS"})
		gt.Error(t, err).Is(usecase.ErrValidation)

		h, err := f.uc.Analytics.HealthMetrics(ctx, nil, nil)
		gt.NoError(t, err).Required()

		gt.Number(t, h.TotalEvents).Equal(3)
		gt.Number(t, h.FailedEvents).Equal(1)
		gt.Number(t, h.SuccessRate).Equal(66.67)
		gt.Number(t, h.ErrorRate).Equal(33.33)
		gt.Number(t, h.ErrorsByType[types.ErrorTypeValidation]).Equal(1)
		gt.Bool(t, h.Range.End.Equal(baseTime)).True()
		gt.Bool(t, h.Range.Start.Equal(baseTime.Add(-24*time.Hour))).True()

		// hours 21..23 of the range carry events
		gt.Array(t, h.DataGaps).Length(1)
		gt.Bool(t, h.DataGaps[0].Start.Equal(h.Range.Start)).True()
		gt.Bool(t, h.DataGaps[0].End.Equal(baseTime.Add(-3*time.Hour))).True()
	})

	t.Run("empty range has zero values", func(t *testing.T) {
		f := newFixture(t)
		h, err := f.uc.Analytics.HealthMetrics(context.Background(), nil, nil)
		gt.NoError(t, err).Required()

		gt.Number(t, h.TotalEvents).Equal(0)
		gt.Number(t, h.SuccessRate).Equal(0)
		gt.Number(t, h.ErrorRate).Equal(0)
		gt.Value(t, h.ErrorsByType).NotNil()
		gt.Number(t, len(h.ErrorsByType)).Equal(0)
		gt.Array(t, h.DataGaps).Length(1)
	})

	t.Run("errors without events", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.uc.Usage.Ingest(context.Background(), model.UsagePayload{ActionType: string(types.ActionTypePageViewed)})
		gt.Error(t, err).Is(usecase.ErrValidation)

		h, err := f.uc.Analytics.HealthMetrics(context.Background(), nil, nil)
		gt.NoError(t, err).Required()
		gt.Number(t, h.SuccessRate).Equal(0)
		gt.Number(t, h.ErrorRate).Equal(100)
	})

	t.Run("end before start", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.uc.Analytics.HealthMetrics(context.Background(), ptr(baseTime), ptr(baseTime.Add(-time.Hour)))
		gt.Error(t, err).Is(usecase.ErrValidation)
	})
}

func TestDetectGaps(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r := model.TimeRange{Start: start, End: start.Add(5*time.Hour + 30*time.Minute)}
	events := []*model.UsageEvent{
		{Timestamp: start.Add(10 * time.Minute)},
		{Timestamp: start.Add(3*time.Hour + 10*time.Minute)},
		// outside the range
		{Timestamp: start.Add(-time.Minute)},
	}

	gaps := usecase.DetectGaps(r, events, time.Hour, 0)
	gt.Array(t, gaps).Length(2)
	gt.Bool(t, gaps[0].Start.Equal(start.Add(time.Hour))).True()
	gt.Bool(t, gaps[0].End.Equal(start.Add(3*time.Hour))).True()
	gt.Bool(t, gaps[1].Start.Equal(start.Add(4*time.Hour))).True()
	gt.Bool(t, gaps[1].End.Equal(r.End)).True()

	t.Run("threshold counts sparse buckets as gaps", func(t *testing.T) {
		gaps := usecase.DetectGaps(r, events, time.Hour, 1)
		gt.Array(t, gaps).Length(1)
		gt.Number(t, gaps[0].EventCount).Equal(2)
	})

	t.Run("empty range", func(t *testing.T) {
		gaps := usecase.DetectGaps(model.TimeRange{Start: start, End: start}, events, time.Hour, 0)
		gt.Array(t, gaps).Length(0)
	})
}

// driftingUsage reports more events from Count than List returns, as a
// store does when writes land between two separate reads.
type driftingUsage struct {
	interfaces.UsageRepository
}

func (u *driftingUsage) Count(ctx context.Context, start, end time.Time) (int, error) {
	n, err := u.UsageRepository.Count(ctx, start, end)
	return n + 5, err
}

type driftingRepository struct {
	*memory.Memory
}

func (r *driftingRepository) Usage() interfaces.UsageRepository {
	return &driftingUsage{UsageRepository: r.Memory.Usage()}
}

func TestHealthMetrics_TotalsFromOneRead(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i := range 4 {
		_, err := f.uc.Usage.Ingest(ctx, model.UsagePayload{
			UserID:     "u1",
			ActionType: string(types.ActionTypePageViewed),
			Timestamp:  ptr(baseTime.Add(-time.Duration(i+1) * time.Hour)),
		})
		gt.NoError(t, err).Required()
	}

	uc := usecase.New(&driftingRepository{Memory: f.repo}, usecase.WithClock(f.clock))
	h, err := uc.Analytics.HealthMetrics(ctx, nil, nil)
	gt.NoError(t, err).Required()
	gt.Number(t, h.TotalEvents).Equal(4)
	gt.Number(t, h.SuccessRate).Equal(100)

	var inGaps int
	for _, g := range h.DataGaps {
		inGaps += g.EventCount
	}
	// every event sits in a non-gap bucket at the default threshold
	gt.Number(t, inGaps).Equal(0)
}
