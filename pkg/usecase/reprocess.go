package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/releaseboard/pkg/domain/interfaces"
	"github.com/secmon-lab/releaseboard/pkg/domain/model"
	"github.com/secmon-lab/releaseboard/pkg/service/metrics"
	"github.com/secmon-lab/releaseboard/pkg/utils/clock"
	"github.com/secmon-lab/releaseboard/pkg/utils/logging"
)

type ReprocessUseCase struct {
	repo    interfaces.Repository
	clock   clock.Clock
	usage   *UsageUseCase
	metrics *metrics.Metrics
}

// ReprocessRequest selects error log entries either by ID or by time range
type ReprocessRequest struct {
	ErrorLogIDs []string
	Start       *time.Time
	End         *time.Time
	DryRun      bool
}

func (r ReprocessRequest) hasRange() bool {
	return r.Start != nil || r.End != nil
}

// Reprocess replays stored payloads through ingestion. Entries selected by
// range skip resolved ones; explicitly listed IDs are always attempted.
// A dry run stops after validation and writes nothing.
func (uc *ReprocessUseCase) Reprocess(ctx context.Context, req ReprocessRequest) (*model.ReprocessResult, error) {
	entries, result, err := uc.selectEntries(ctx, req)
	if err != nil {
		return nil, err
	}

	for _, entry := range entries {
		result.TotalProcessed++
		if err := uc.replay(ctx, entry, req.DryRun); err != nil {
			result.FailedCount++
			result.Errors = append(result.Errors, model.ReprocessError{
				ErrorLogID: entry.ID,
				Message:    err.Error(),
			})
			uc.metrics.Reprocessed(false, req.DryRun)
			continue
		}
		result.SuccessCount++
		uc.metrics.Reprocessed(true, req.DryRun)
	}

	logging.From(ctx).Info("reprocessed error log entries",
		"dry_run", req.DryRun,
		"total", result.TotalProcessed,
		"succeeded", result.SuccessCount,
		"failed", result.FailedCount,
	)
	return result, nil
}

func (uc *ReprocessUseCase) selectEntries(ctx context.Context, req ReprocessRequest) ([]*model.ErrorLogEntry, *model.ReprocessResult, error) {
	result := &model.ReprocessResult{DryRun: req.DryRun, Errors: []model.ReprocessError{}}

	switch {
	case len(req.ErrorLogIDs) > 0 && req.hasRange():
		return nil, nil, invalid("specify either errorLogIds or a date range, not both")

	case len(req.ErrorLogIDs) > 0:
		var entries []*model.ErrorLogEntry
		seen := make(map[string]struct{}, len(req.ErrorLogIDs))
		for _, id := range req.ErrorLogIDs {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}

			entry, err := uc.repo.ErrorLog().Get(ctx, id)
			if err != nil {
				if !errors.Is(err, ErrNotFound) {
					return nil, nil, goerr.Wrap(err, "failed to get error log", goerr.V(ErrorLogIDKey, id))
				}
				result.TotalProcessed++
				result.FailedCount++
				result.Errors = append(result.Errors, model.ReprocessError{ErrorLogID: id, Message: "error log not found"})
				continue
			}
			entries = append(entries, entry)
		}
		return entries, result, nil

	case req.hasRange():
		if req.Start == nil || req.End == nil {
			return nil, nil, invalid("date range needs both startDate and endDate")
		}
		if req.End.Before(*req.Start) {
			return nil, nil, invalid("end date is before start date")
		}
		entries, _, err := uc.repo.ErrorLog().List(ctx, interfaces.ErrorLogFilter{
			Start:          req.Start.UTC(),
			End:            req.End.UTC(),
			UnresolvedOnly: true,
		})
		if err != nil {
			return nil, nil, goerr.Wrap(err, "failed to list error logs")
		}
		return entries, result, nil

	default:
		return nil, nil, invalid("errorLogIds or a date range is required")
	}
}

func (uc *ReprocessUseCase) replay(ctx context.Context, entry *model.ErrorLogEntry, dryRun bool) error {
	if entry.Payload == "" {
		return goerr.New("error log has no payload to replay", goerr.V(ErrorLogIDKey, entry.ID))
	}

	var payload model.UsagePayload
	if err := json.Unmarshal([]byte(entry.Payload), &payload); err != nil {
		return goerr.Wrap(err, "stored payload is not valid JSON", goerr.V(ErrorLogIDKey, entry.ID))
	}
	if payload.UserID == "" {
		payload.UserID = entry.UserID
	}
	if payload.Timestamp == nil {
		ts := entry.Timestamp
		payload.Timestamp = &ts
	}

	event, err := buildUsageEvent(payload)
	if err != nil {
		return err
	}
	if dryRun {
		return nil
	}

	if _, err := uc.usage.store(ctx, event); err != nil {
		return err
	}
	if err := uc.repo.ErrorLog().MarkResolved(ctx, entry.ID, uc.clock.Now()); err != nil {
		return goerr.Wrap(err, "failed to mark error log resolved", goerr.V(ErrorLogIDKey, entry.ID))
	}
	return nil
}
