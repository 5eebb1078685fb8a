package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/releaseboard/pkg/domain/model"
)

type usageRepository struct {
	client *firestore.Client
	cols   *collections
}

// InsertIfAbsent runs the duplicate lookup and the insert in one transaction.
// Requires the composite index (UserID, Hash, IngestedAt) created by migrate.
func (r *usageRepository) InsertIfAbsent(ctx context.Context, event *model.UsageEvent, since time.Time) (bool, error) {
	if event.Hash == "" {
		return false, goerr.New("usage event has no hash", goerr.V("user_id", event.UserID))
	}

	created := *event
	if created.ID == "" {
		created.ID = uuid.NewString()
	}
	col := r.cols.ref(CollectionUsageEvents)
	dupQuery := col.
		Where("UserID", "==", event.UserID).
		Where("Hash", "==", event.Hash).
		Where("IngestedAt", ">=", since).
		Limit(1)

	var inserted bool
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		inserted = false
		docs, err := tx.Documents(dupQuery).GetAll()
		if err != nil {
			return goerr.Wrap(err, "failed to look up duplicate usage event")
		}
		if len(docs) > 0 {
			return nil
		}

		if err := tx.Create(col.Doc(created.ID), &created); err != nil {
			return goerr.Wrap(err, "failed to create usage event", goerr.V("id", created.ID))
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

func (r *usageRepository) rangeQuery(start, end time.Time) firestore.Query {
	return r.cols.ref(CollectionUsageEvents).
		Where("Timestamp", ">=", start).
		Where("Timestamp", "<=", end).
		OrderBy("Timestamp", firestore.Asc)
}

func (r *usageRepository) List(ctx context.Context, start, end time.Time) ([]*model.UsageEvent, error) {
	return readAll[model.UsageEvent](r.rangeQuery(start, end).Documents(ctx), "usage events")
}

func (r *usageRepository) Count(ctx context.Context, start, end time.Time) (int, error) {
	return countQuery(ctx, r.cols.ref(CollectionUsageEvents).
		Where("Timestamp", ">=", start).
		Where("Timestamp", "<=", end), "usage events")
}
