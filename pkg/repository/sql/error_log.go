package sql

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/releaseboard/pkg/domain/interfaces"
	"github.com/secmon-lab/releaseboard/pkg/domain/model"
	"gorm.io/gorm"
)

type errorLogRepository struct {
	db *gorm.DB
}

func (r *errorLogRepository) Create(ctx context.Context, entry *model.ErrorLogEntry) (*model.ErrorLogEntry, error) {
	row := errorLogFromModel(entry)
	if row.ID == "" {
		row.ID = uuid.NewString()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = r.db.NowFunc()
	}
	if row.Timestamp.IsZero() {
		row.Timestamp = row.CreatedAt
	}

	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		if isDuplicated(err) {
			return nil, goerr.Wrap(interfaces.ErrAlreadyExists, "error log already exists", goerr.V("id", row.ID))
		}
		return nil, goerr.Wrap(err, "failed to create error log", goerr.V("id", row.ID))
	}
	return row.toModel(), nil
}

func (r *errorLogRepository) Get(ctx context.Context, id string) (*model.ErrorLogEntry, error) {
	var row errorLogRow
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error; err != nil {
		if isNotFound(err) {
			return nil, goerr.Wrap(ErrNotFound, "error log not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get error log", goerr.V("id", id))
	}
	return row.toModel(), nil
}

func (r *errorLogRepository) List(ctx context.Context, filter interfaces.ErrorLogFilter) ([]*model.ErrorLogEntry, int, error) {
	q := r.db.WithContext(ctx).Model(&errorLogRow{})
	if filter.ErrorType != "" {
		q = q.Where("error_type = ?", filter.ErrorType)
	}
	if filter.UnresolvedOnly {
		q = q.Where("resolved = ?", false)
	}
	if !filter.Start.IsZero() {
		q = q.Where("timestamp >= ?", filter.Start)
	}
	if !filter.End.IsZero() {
		q = q.Where("timestamp <= ?", filter.End)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, goerr.Wrap(err, "failed to count error logs")
	}

	page := q.Order("timestamp DESC").Order("id")
	if filter.Offset > 0 {
		page = page.Offset(filter.Offset)
	}
	if filter.Limit > 0 {
		page = page.Limit(filter.Limit)
	}

	var rows []errorLogRow
	if err := page.Find(&rows).Error; err != nil {
		return nil, 0, goerr.Wrap(err, "failed to list error logs")
	}

	entries := make([]*model.ErrorLogEntry, 0, len(rows))
	for i := range rows {
		entries = append(entries, rows[i].toModel())
	}
	return entries, int(total), nil
}

func (r *errorLogRepository) MarkResolved(ctx context.Context, id string, at time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row errorLogRow
		if err := tx.Where("id = ?", id).Take(&row).Error; err != nil {
			if isNotFound(err) {
				return goerr.Wrap(ErrNotFound, "error log not found", goerr.V("id", id))
			}
			return goerr.Wrap(err, "failed to get error log", goerr.V("id", id))
		}
		if row.Resolved {
			return nil
		}

		if err := tx.Model(&errorLogRow{}).Where("id = ? AND resolved = ?", id, false).
			Updates(map[string]any{"resolved": true, "resolved_at": at}).Error; err != nil {
			return goerr.Wrap(err, "failed to mark error log resolved", goerr.V("id", id))
		}
		return nil
	})
}
