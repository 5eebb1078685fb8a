package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/releaseboard/pkg/domain/interfaces"
	"github.com/secmon-lab/releaseboard/pkg/domain/model"
)

type errorLogRepository struct {
	st *store
}

func (r *errorLogRepository) Create(ctx context.Context, entry *model.ErrorLogEntry) (*model.ErrorLogEntry, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	created := copyErrorLog(entry)
	if created.ID == "" {
		created.ID = uuid.NewString()
	}
	if _, exists := r.st.errorLogs[created.ID]; exists {
		return nil, goerr.Wrap(interfaces.ErrAlreadyExists, "error log already exists", goerr.V("id", created.ID))
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = r.st.now()
	}
	if created.Timestamp.IsZero() {
		created.Timestamp = created.CreatedAt
	}
	r.st.errorLogs[created.ID] = created
	return copyErrorLog(created), nil
}

func (r *errorLogRepository) Get(ctx context.Context, id string) (*model.ErrorLogEntry, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	e, exists := r.st.errorLogs[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "error log not found", goerr.V("id", id))
	}
	return copyErrorLog(e), nil
}

func (r *errorLogRepository) List(ctx context.Context, filter interfaces.ErrorLogFilter) ([]*model.ErrorLogEntry, int, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	matched := make([]*model.ErrorLogEntry, 0)
	for _, e := range r.st.errorLogs {
		if filter.ErrorType != "" && string(e.ErrorType) != filter.ErrorType {
			continue
		}
		if !filter.Start.IsZero() && e.Timestamp.Before(filter.Start) {
			continue
		}
		if !filter.End.IsZero() && e.Timestamp.After(filter.End) {
			continue
		}
		if filter.UnresolvedOnly && e.Resolved {
			continue
		}
		matched = append(matched, e)
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].Timestamp.Equal(matched[j].Timestamp) {
			return matched[i].Timestamp.After(matched[j].Timestamp)
		}
		return matched[i].ID < matched[j].ID
	})

	total := len(matched)
	page := paginate(matched, filter.Offset, filter.Limit)
	entries := make([]*model.ErrorLogEntry, 0, len(page))
	for _, e := range page {
		entries = append(entries, copyErrorLog(e))
	}
	return entries, total, nil
}

func (r *errorLogRepository) MarkResolved(ctx context.Context, id string, at time.Time) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	e, exists := r.st.errorLogs[id]
	if !exists {
		return goerr.Wrap(ErrNotFound, "error log not found", goerr.V("id", id))
	}
	if e.Resolved {
		return nil
	}
	e.Resolved = true
	e.ResolvedAt = &at
	return nil
}

func paginate[T any](items []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
