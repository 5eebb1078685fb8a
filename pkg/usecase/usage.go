package usecase

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/releaseboard/pkg/domain/interfaces"
	"github.com/secmon-lab/releaseboard/pkg/domain/model"
	"github.com/secmon-lab/releaseboard/pkg/domain/types"
	"github.com/secmon-lab/releaseboard/pkg/service/lock"
	"github.com/secmon-lab/releaseboard/pkg/service/metrics"
	"github.com/secmon-lab/releaseboard/pkg/utils/clock"
	"github.com/secmon-lab/releaseboard/pkg/utils/errutil"
	"github.com/secmon-lab/releaseboard/pkg/utils/logging"
)

type UsageUseCase struct {
	repo    interfaces.Repository
	clock   clock.Clock
	window  time.Duration
	locker  lock.Locker
	metrics *metrics.Metrics
}

// IngestResult tells whether the event was stored or collapsed into an
// earlier identical one
type IngestResult struct {
	Event        *model.UsageEvent
	Deduplicated bool
}

// Ingest validates and stores a usage event. Invalid payloads are recorded
// in the error log before the validation error is returned, so they can be
// replayed later.
func (uc *UsageUseCase) Ingest(ctx context.Context, payload model.UsagePayload) (*IngestResult, error) {
	now := uc.clock.Now()
	if payload.Timestamp == nil {
		payload.Timestamp = &now
	}

	event, err := buildUsageEvent(payload)
	if err != nil {
		uc.metrics.UsageIngested(metrics.IngestRejected)
		uc.recordFailure(ctx, payload, types.ErrorTypeValidation, err)
		return nil, err
	}

	result, err := uc.store(ctx, event)
	if err != nil {
		uc.recordFailure(ctx, payload, types.ErrorTypeDatabase, err)
		return nil, err
	}
	return result, nil
}

// buildUsageEvent turns an untrusted payload into a hashed event
func buildUsageEvent(p model.UsagePayload) (*model.UsageEvent, error) {
	userID := strings.TrimSpace(p.UserID)
	if userID == "" {
		return nil, invalid("userId is required")
	}
	if p.ActionType == "" {
		return nil, invalid("actionType is required")
	}
	action, err := types.ParseActionType(p.ActionType)
	if err != nil {
		return nil, invalidFrom(err)
	}
	if p.Timestamp == nil {
		return nil, invalid("timestamp is required")
	}

	event := &model.UsageEvent{
		UserID:      userID,
		ActionType:  action,
		FeatureCode: optionalCode(p.FeatureCode),
		ProductCode: optionalCode(p.ProductCode),
		Timestamp:   p.Timestamp.UTC(),
	}
	if len(p.Context) > 0 {
		event.Context = make(map[string]string, len(p.Context))
		for k, v := range p.Context {
			event.Context[k] = v
		}
	}
	event.ComputeHash()
	return event, nil
}

func optionalCode(v *string) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(*v)
}

// store is the deduplication guard: an event whose user and hash match an
// event ingested at or after now - window is dropped. The lock narrows
// contention; the repository check-and-insert is atomic on its own.
func (uc *UsageUseCase) store(ctx context.Context, event *model.UsageEvent) (*IngestResult, error) {
	unlock, err := uc.locker.Lock(ctx, "usage:"+event.UserID+":"+event.Hash)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to lock usage dedup key", goerr.V("hash", event.Hash))
	}
	defer unlock()

	event.IngestedAt = uc.clock.Now().UTC()
	since := event.IngestedAt.Add(-uc.window)
	inserted, err := uc.repo.Usage().InsertIfAbsent(ctx, event, since)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to store usage event",
			goerr.V("user_id", event.UserID), goerr.V("hash", event.Hash))
	}

	if !inserted {
		uc.metrics.UsageIngested(metrics.IngestDeduplicated)
		logging.From(ctx).Debug("usage event deduplicated", "user_id", event.UserID, "hash", event.Hash)
		return &IngestResult{Event: event, Deduplicated: true}, nil
	}
	uc.metrics.UsageIngested(metrics.IngestStored)
	return &IngestResult{Event: event}, nil
}

func (uc *UsageUseCase) recordFailure(ctx context.Context, payload model.UsagePayload, errType types.ErrorType, cause error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		_ = errutil.Handle(ctx, goerr.Wrap(err, "failed to serialize usage payload"), "usage error log")
	}

	now := uc.clock.Now()
	entry := &model.ErrorLogEntry{
		Timestamp: now,
		ErrorType: errType,
		Message:   cause.Error(),
		Payload:   string(raw),
		UserID:    payload.UserID,
		CreatedAt: now,
	}
	if _, err := uc.repo.ErrorLog().Create(ctx, entry); err != nil {
		_ = errutil.Handle(ctx, goerr.Wrap(err, "failed to write error log",
			goerr.V("error_type", errType)), "usage error log")
	}
}
