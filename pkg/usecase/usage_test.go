package usecase_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/releaseboard/pkg/domain/interfaces"
	"github.com/secmon-lab/releaseboard/pkg/domain/model"
	"github.com/secmon-lab/releaseboard/pkg/domain/model/config"
	"github.com/secmon-lab/releaseboard/pkg/domain/types"
	"github.com/secmon-lab/releaseboard/pkg/usecase"
)

func countUsage(t *testing.T, f *fixture) int {
	t.Helper()
	n, err := f.repo.Usage().Count(context.Background(), time.Unix(0, 0), baseTime.Add(24*time.Hour))
	gt.NoError(t, err).Required()
	return n
}

func TestIngest_Deduplication(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	payload := model.UsagePayload{
		UserID:      "u1",
		ActionType:  string(types.ActionTypeFeatureUsed),
		FeatureCode: ptr("search"),
	}

	first, err := f.uc.Usage.Ingest(ctx, payload)
	gt.NoError(t, err).Required()
	gt.Bool(t, first.Deduplicated).False()
	gt.Number(t, len(first.Event.Hash)).Equal(16)

	t.Run("repeat inside the window is dropped", func(t *testing.T) {
		f.clock.Set(baseTime.Add(2 * time.Minute))
		result, err := f.uc.Usage.Ingest(ctx, payload)
		gt.NoError(t, err).Required()
		gt.Bool(t, result.Deduplicated).True()
		gt.Value(t, result.Event.Hash).Equal(first.Event.Hash)
		gt.Number(t, countUsage(t, f)).Equal(1)
	})

	t.Run("window start is inclusive", func(t *testing.T) {
		f.clock.Set(baseTime.Add(5 * time.Minute))
		result, err := f.uc.Usage.Ingest(ctx, payload)
		gt.NoError(t, err).Required()
		gt.Bool(t, result.Deduplicated).True()
		gt.Number(t, countUsage(t, f)).Equal(1)
	})

	t.Run("just past the window is stored", func(t *testing.T) {
		f.clock.Set(baseTime.Add(5*time.Minute + time.Second))
		result, err := f.uc.Usage.Ingest(ctx, payload)
		gt.NoError(t, err).Required()
		gt.Bool(t, result.Deduplicated).False()
		gt.Number(t, countUsage(t, f)).Equal(2)
	})
}

func TestIngest_DistinctFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	base := model.UsagePayload{UserID: "u1", ActionType: string(types.ActionTypeFeatureViewed), FeatureCode: ptr("a")}

	variants := []model.UsagePayload{
		base,
		{UserID: "u2", ActionType: base.ActionType, FeatureCode: ptr("a")},
		{UserID: "u1", ActionType: string(types.ActionTypeFeatureUsed), FeatureCode: ptr("a")},
		{UserID: "u1", ActionType: base.ActionType, FeatureCode: ptr("b")},
		{UserID: "u1", ActionType: base.ActionType},
		{UserID: "u1", ActionType: base.ActionType, FeatureCode: ptr("a"), ProductCode: ptr("p")},
	}

	hashes := map[string]struct{}{}
	for _, p := range variants {
		result, err := f.uc.Usage.Ingest(ctx, p)
		gt.NoError(t, err).Required()
		gt.Bool(t, result.Deduplicated).False()
		hashes[result.Event.Hash] = struct{}{}
	}
	gt.Number(t, len(hashes)).Equal(len(variants))
	gt.Number(t, countUsage(t, f)).Equal(len(variants))
}

func TestIngest_CustomWindow(t *testing.T) {
	tuning := config.DefaultTuning()
	tuning.DedupWindow = time.Minute
	f := newFixture(t, usecase.WithTuning(tuning))
	ctx := context.Background()
	payload := model.UsagePayload{UserID: "u1", ActionType: string(types.ActionTypePageViewed)}

	_, err := f.uc.Usage.Ingest(ctx, payload)
	gt.NoError(t, err).Required()

	f.clock.Advance(2 * time.Minute)
	result, err := f.uc.Usage.Ingest(ctx, payload)
	gt.NoError(t, err).Required()
	gt.Bool(t, result.Deduplicated).False()
}

func TestIngest_ValidationFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.uc.Usage.Ingest(ctx, model.UsagePayload{UserID: "u1", ActionType: "TELEPORTED"})
	gt.Error(t, err).Is(usecase.ErrValidation)
	gt.Number(t, countUsage(t, f)).Equal(0)

	entries, total, err := f.repo.ErrorLog().List(ctx, interfaces.ErrorLogFilter{})
	gt.NoError(t, err).Required()
	gt.Number(t, total).Equal(1)
	gt.Value(t, entries[0].ErrorType).Equal(types.ErrorTypeValidation)
	gt.Value(t, entries[0].UserID).Equal("u1")
	gt.Bool(t, entries[0].Resolved).False()

	var stored model.UsagePayload
	gt.NoError(t, json.Unmarshal([]byte(entries[0].Payload), &stored)).Required()
	gt.Value(t, stored.ActionType).Equal("TELEPORTED")
}

func TestIngest_MissingUser(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.Usage.Ingest(context.Background(), model.UsagePayload{ActionType: string(types.ActionTypePageViewed)})
	gt.Error(t, err).Is(usecase.ErrValidation)
}

func TestIngest_BackdatedDuplicates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	backdated := baseTime.Add(-time.Hour)
	payload := model.UsagePayload{
		UserID:      "u1",
		ActionType:  string(types.ActionTypeFeatureUsed),
		FeatureCode: ptr("search"),
		Timestamp:   &backdated,
	}

	first, err := f.uc.Usage.Ingest(ctx, payload)
	gt.NoError(t, err).Required()
	gt.Bool(t, first.Deduplicated).False()
	gt.Bool(t, first.Event.Timestamp.Equal(backdated)).True()

	f.clock.Advance(time.Second)
	second, err := f.uc.Usage.Ingest(ctx, payload)
	gt.NoError(t, err).Required()
	gt.Bool(t, second.Deduplicated).True()
	gt.Number(t, countUsage(t, f)).Equal(1)
}
