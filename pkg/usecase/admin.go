package usecase

import (
	"context"
	"math"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/releaseboard/pkg/domain/interfaces"
	"github.com/secmon-lab/releaseboard/pkg/domain/model"
	"github.com/secmon-lab/releaseboard/pkg/domain/types"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100

	// maxPageOffset bounds Page*Size; Firestore offsets are 32-bit
	maxPageOffset = math.MaxInt32
)

type AdminUseCase struct {
	repo interfaces.Repository
}

// ErrorLogQuery is a page request over the error log. Page is zero based.
type ErrorLogQuery struct {
	Page      int
	Size      int
	ErrorType string
	Start     *time.Time
	End       *time.Time
}

// ErrorLogPage is one page of error log entries, newest first
type ErrorLogPage struct {
	Entries    []*model.ErrorLogEntry
	Page       int
	Size       int
	TotalCount int
	TotalPages int
}

func (uc *AdminUseCase) ListErrorLogs(ctx context.Context, q ErrorLogQuery) (*ErrorLogPage, error) {
	if q.Page < 0 {
		return nil, invalid("page must not be negative", goerr.V("page", q.Page))
	}
	size := q.Size
	if size == 0 {
		size = DefaultPageSize
	}
	if size < 0 || size > MaxPageSize {
		return nil, invalid("page size out of range", goerr.V("size", q.Size), goerr.V("max", MaxPageSize))
	}

	if q.Page > maxPageOffset/size {
		return nil, invalid("page is too large", goerr.V("page", q.Page), goerr.V("size", size))
	}

	filter := interfaces.ErrorLogFilter{
		Offset: q.Page * size,
		Limit:  size,
	}
	if q.ErrorType != "" {
		et, err := types.ParseErrorType(q.ErrorType)
		if err != nil {
			return nil, invalidFrom(err)
		}
		filter.ErrorType = et.String()
	}
	if q.Start != nil {
		filter.Start = q.Start.UTC()
	}
	if q.End != nil {
		filter.End = q.End.UTC()
	}
	if q.Start != nil && q.End != nil && filter.End.Before(filter.Start) {
		return nil, invalid("end date is before start date", goerr.V("start", filter.Start), goerr.V("end", filter.End))
	}

	entries, total, err := uc.repo.ErrorLog().List(ctx, filter)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list error logs")
	}
	if entries == nil {
		entries = []*model.ErrorLogEntry{}
	}

	return &ErrorLogPage{
		Entries:    entries,
		Page:       q.Page,
		Size:       size,
		TotalCount: total,
		TotalPages: (total + size - 1) / size,
	}, nil
}

func (uc *AdminUseCase) GetErrorLog(ctx context.Context, id string) (*model.ErrorLogEntry, error) {
	entry, err := uc.repo.ErrorLog().Get(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get error log", goerr.V(ErrorLogIDKey, id))
	}
	return entry, nil
}

// DeliveryFailureQuery filters delivery failures; zero values do not filter
type DeliveryFailureQuery struct {
	NotificationID string
	Start          *time.Time
	End            *time.Time
}

func (uc *AdminUseCase) ListDeliveryFailures(ctx context.Context, q DeliveryFailureQuery) ([]*model.DeliveryFailure, error) {
	filter := interfaces.DeliveryFailureFilter{NotificationID: q.NotificationID}
	if q.Start != nil {
		filter.Start = q.Start.UTC()
	}
	if q.End != nil {
		filter.End = q.End.UTC()
	}
	if q.Start != nil && q.End != nil && filter.End.Before(filter.Start) {
		return nil, invalid("end date is before start date", goerr.V("start", filter.Start), goerr.V("end", filter.End))
	}

	failures, err := uc.repo.DeliveryFailure().List(ctx, filter)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list delivery failures")
	}
	if failures == nil {
		failures = []*model.DeliveryFailure{}
	}
	return failures, nil
}
