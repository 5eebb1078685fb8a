package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/releaseboard/pkg/domain/model"
	"github.com/secmon-lab/releaseboard/pkg/domain/types"
	"github.com/secmon-lab/releaseboard/pkg/usecase"
)

func seedErrorLog(t *testing.T, f *fixture, payload string) *model.ErrorLogEntry {
	t.Helper()
	entry, err := f.repo.ErrorLog().Create(context.Background(), &model.ErrorLogEntry{
		Timestamp: f.clock.Now(),
		ErrorType: types.ErrorTypeDatabase,
		Message:   "connection reset",
		Payload:   payload,
		UserID:    "u1",
		CreatedAt: f.clock.Now(),
	})
	gt.NoError(t, err).Required()
	return entry
}

const replayablePayload = `{"userId":"u1","actionType":"FEATURE_USED","featureCode":"search"}`

func TestReprocess(t *testing.T) {
	t.Run("dry run changes nothing", func(t *testing.T) {
		f := newFixture(t)
		good := seedErrorLog(t, f, replayablePayload)
		bad := seedErrorLog(t, f, `{"userId":"u1","actionType":"NOPE"}`)

		result, err := f.uc.Reprocess.Reprocess(context.Background(), usecase.ReprocessRequest{
			ErrorLogIDs: []string{good.ID, bad.ID},
			DryRun:      true,
		})
		gt.NoError(t, err).Required()
		gt.Bool(t, result.DryRun).True()
		gt.Number(t, result.TotalProcessed).Equal(2)
		gt.Number(t, result.SuccessCount).Equal(1)
		gt.Number(t, result.FailedCount).Equal(1)
		gt.Value(t, result.Errors[0].ErrorLogID).Equal(bad.ID)

		stored, err := f.repo.ErrorLog().Get(context.Background(), good.ID)
		gt.NoError(t, err).Required()
		gt.Bool(t, stored.Resolved).False()
		gt.Number(t, countUsage(t, f)).Equal(0)
	})

	t.Run("replay stores and resolves", func(t *testing.T) {
		f := newFixture(t)
		good := seedErrorLog(t, f, replayablePayload)
		broken := seedErrorLog(t, f, `not json`)

		result, err := f.uc.Reprocess.Reprocess(context.Background(), usecase.ReprocessRequest{
			ErrorLogIDs: []string{good.ID, broken.ID, good.ID, "missing"},
		})
		gt.NoError(t, err).Required()
		gt.Number(t, result.TotalProcessed).Equal(3)
		gt.Number(t, result.SuccessCount).Equal(1)
		gt.Number(t, result.FailedCount).Equal(2)
		gt.Number(t, countUsage(t, f)).Equal(1)

		stored, err := f.repo.ErrorLog().Get(context.Background(), good.ID)
		gt.NoError(t, err).Required()
		gt.Bool(t, stored.Resolved).True()

		unchanged, err := f.repo.ErrorLog().Get(context.Background(), broken.ID)
		gt.NoError(t, err).Required()
		gt.Bool(t, unchanged.Resolved).False()
	})

	t.Run("range skips resolved entries", func(t *testing.T) {
		f := newFixture(t)
		first := seedErrorLog(t, f, replayablePayload)
		_, err := f.uc.Reprocess.Reprocess(context.Background(), usecase.ReprocessRequest{ErrorLogIDs: []string{first.ID}})
		gt.NoError(t, err).Required()

		f.clock.Advance(time.Minute)
		seedErrorLog(t, f, `{"userId":"u2","actionType":"PAGE_VIEWED"}`)

		result, err := f.uc.Reprocess.Reprocess(context.Background(), usecase.ReprocessRequest{
			Start: ptr(baseTime.Add(-time.Hour)),
			End:   ptr(baseTime.Add(time.Hour)),
		})
		gt.NoError(t, err).Required()
		gt.Number(t, result.TotalProcessed).Equal(1)
		gt.Number(t, result.SuccessCount).Equal(1)
	})

	t.Run("explicit resolved id is attempted and deduplicated", func(t *testing.T) {
		f := newFixture(t)
		entry := seedErrorLog(t, f, replayablePayload)
		for range 2 {
			result, err := f.uc.Reprocess.Reprocess(context.Background(), usecase.ReprocessRequest{ErrorLogIDs: []string{entry.ID}})
			gt.NoError(t, err).Required()
			gt.Number(t, result.SuccessCount).Equal(1)
		}
		gt.Number(t, countUsage(t, f)).Equal(1)
	})

	t.Run("selection is validated", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.uc.Reprocess.Reprocess(context.Background(), usecase.ReprocessRequest{})
		gt.Error(t, err).Is(usecase.ErrValidation)

		_, err = f.uc.Reprocess.Reprocess(context.Background(), usecase.ReprocessRequest{
			ErrorLogIDs: []string{"a"},
			Start:       ptr(baseTime),
			End:         ptr(baseTime),
		})
		gt.Error(t, err).Is(usecase.ErrValidation)

		_, err = f.uc.Reprocess.Reprocess(context.Background(), usecase.ReprocessRequest{Start: ptr(baseTime)})
		gt.Error(t, err).Is(usecase.ErrValidation)
	})
}

func TestReprocess_ReplayTwiceIsDeduplicated(t *testing.T) {
	f := newFixture(t)
	entry := seedErrorLog(t, f, replayablePayload)

	f.clock.Advance(time.Hour)
	for range 2 {
		result, err := f.uc.Reprocess.Reprocess(context.Background(), usecase.ReprocessRequest{
			ErrorLogIDs: []string{entry.ID},
		})
		gt.NoError(t, err).Required()
		gt.Number(t, result.SuccessCount).Equal(1)
		f.clock.Advance(time.Second)
	}

	gt.Number(t, countUsage(t, f)).Equal(1)
}
