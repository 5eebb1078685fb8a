package interfaces

import (
	"context"
	"time"

	"github.com/secmon-lab/releaseboard/pkg/domain/model"
)

// UsageRepository defines the interface for UsageEvent data access
type UsageRepository interface {
	// InsertIfAbsent stores event unless an event with the same user and hash
	// has an IngestedAt at or after since. The check and the insert are atomic.
	// It reports whether the event was stored.
	InsertIfAbsent(ctx context.Context, event *model.UsageEvent, since time.Time) (bool, error)

	// List returns events with a timestamp within [start, end], oldest first
	List(ctx context.Context, start, end time.Time) ([]*model.UsageEvent, error)

	// Count returns the number of events within [start, end]
	Count(ctx context.Context, start, end time.Time) (int, error)
}

// ErrorLogFilter narrows ErrorLogRepository.List. Zero values do not filter.
type ErrorLogFilter struct {
	ErrorType      string
	Start          time.Time
	End            time.Time
	UnresolvedOnly bool

	Offset int
	// Limit of 0 returns all matching entries
	Limit int
}

// ErrorLogRepository defines the interface for ErrorLogEntry data access
type ErrorLogRepository interface {
	Create(ctx context.Context, entry *model.ErrorLogEntry) (*model.ErrorLogEntry, error)
	Get(ctx context.Context, id string) (*model.ErrorLogEntry, error)

	// List returns one page of entries, newest first, and the total match count
	List(ctx context.Context, filter ErrorLogFilter) ([]*model.ErrorLogEntry, int, error)

	// MarkResolved sets resolved. An already resolved entry is left unchanged.
	MarkResolved(ctx context.Context, id string, at time.Time) error
}
