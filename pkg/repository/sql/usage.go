package sql

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/releaseboard/pkg/domain/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type usageRepository struct {
	db *gorm.DB
}

// InsertIfAbsent locks the (user, hash) key row before the lookup so two
// concurrent identical events cannot both pass the duplicate check.
func (r *usageRepository) InsertIfAbsent(ctx context.Context, event *model.UsageEvent, since time.Time) (bool, error) {
	if event.Hash == "" {
		return false, goerr.New("usage event has no hash", goerr.V("user_id", event.UserID))
	}

	row := usageEventFromModel(event)
	if row.ID == "" {
		row.ID = uuid.NewString()
	}

	var inserted bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		key := usageDedupKeyRow{UserID: event.UserID, Hash: event.Hash}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&key).Error; err != nil {
			return goerr.Wrap(err, "failed to register dedup key")
		}
		if err := tx.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
			Where("user_id = ? AND hash = ?", event.UserID, event.Hash).
			Take(&key).Error; err != nil {
			return goerr.Wrap(err, "failed to lock dedup key")
		}

		var dups int64
		if err := tx.Model(&usageEventRow{}).
			Where("user_id = ? AND hash = ? AND ingested_at >= ?", event.UserID, event.Hash, since).
			Count(&dups).Error; err != nil {
			return goerr.Wrap(err, "failed to look up duplicate usage event")
		}
		if dups > 0 {
			return nil
		}

		if err := tx.Create(row).Error; err != nil {
			return goerr.Wrap(err, "failed to create usage event", goerr.V("id", row.ID))
		}
		inserted = true
		return nil
	})
	if err != nil {
		return false, goerr.Wrap(err, "usage insert transaction failed",
			goerr.V("user_id", event.UserID), goerr.V("hash", event.Hash))
	}
	return inserted, nil
}

func (r *usageRepository) List(ctx context.Context, start, end time.Time) ([]*model.UsageEvent, error) {
	var rows []usageEventRow
	if err := r.db.WithContext(ctx).
		Where("timestamp >= ? AND timestamp <= ?", start, end).
		Order("timestamp").
		Find(&rows).Error; err != nil {
		return nil, goerr.Wrap(err, "failed to list usage events")
	}

	events := make([]*model.UsageEvent, 0, len(rows))
	for i := range rows {
		events = append(events, rows[i].toModel())
	}
	return events, nil
}

func (r *usageRepository) Count(ctx context.Context, start, end time.Time) (int, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&usageEventRow{}).
		Where("timestamp >= ? AND timestamp <= ?", start, end).
		Count(&n).Error; err != nil {
		return 0, goerr.Wrap(err, "failed to count usage events")
	}
	return int(n), nil
}
