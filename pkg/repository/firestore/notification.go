package firestore

import (
	"context"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/releaseboard/pkg/domain/interfaces"
	"github.com/secmon-lab/releaseboard/pkg/domain/model"
	"github.com/secmon-lab/releaseboard/pkg/domain/types"
)

type notificationRepository struct {
	client *firestore.Client
	cols   *collections
}

func (r *notificationRepository) Get(ctx context.Context, id string) (*model.Notification, error) {
	doc, err := r.cols.ref(CollectionNotifications).Doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, goerr.Wrap(ErrNotFound, "notification not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get notification", goerr.V("id", id))
	}

	var n model.Notification
	if err := doc.DataTo(&n); err != nil {
		return nil, goerr.Wrap(err, "failed to decode notification", goerr.V("id", id))
	}
	return &n, nil
}

func (r *notificationRepository) ListByRecipient(ctx context.Context, recipientID string, unreadOnly bool) ([]*model.Notification, error) {
	q := r.cols.ref(CollectionNotifications).Where("RecipientID", "==", recipientID)
	if unreadOnly {
		q = q.Where("Read", "==", false)
	}

	list, err := readAll[model.Notification](q.Documents(ctx), "notifications")
	if err != nil {
		return nil, err
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].ID < list[j].ID
	})
	return list, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, id string, at time.Time) (*model.Notification, error) {
	ref := r.cols.ref(CollectionNotifications).Doc(id)

	var n model.Notification
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil {
			if isNotFound(err) {
				return goerr.Wrap(ErrNotFound, "notification not found", goerr.V("id", id))
			}
			return goerr.Wrap(err, "failed to get notification", goerr.V("id", id))
		}
		if err := doc.DataTo(&n); err != nil {
			return goerr.Wrap(err, "failed to decode notification", goerr.V("id", id))
		}
		if n.Read {
			return nil
		}

		n.Read = true
		n.ReadAt = &at
		return tx.Update(ref, []firestore.Update{
			{Path: "Read", Value: true},
			{Path: "ReadAt", Value: at},
		})
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to mark notification read", goerr.V("id", id))
	}
	return &n, nil
}

func (r *notificationRepository) UpdateDeliveryStatus(ctx context.Context, id string, status types.DeliveryStatus) error {
	_, err := r.cols.ref(CollectionNotifications).Doc(id).Update(ctx, []firestore.Update{
		{Path: "DeliveryStatus", Value: string(status)},
	})
	if err != nil {
		if isNotFound(err) {
			return goerr.Wrap(ErrNotFound, "notification not found", goerr.V("id", id))
		}
		return goerr.Wrap(err, "failed to update delivery status", goerr.V("id", id))
	}
	return nil
}

func (r *notificationRepository) ListByDeliveryStatus(ctx context.Context, status types.DeliveryStatus, limit int) ([]*model.Notification, error) {
	q := r.cols.ref(CollectionNotifications).
		Where("DeliveryStatus", "==", string(status)).
		OrderBy("CreatedAt", firestore.Asc)
	if limit > 0 {
		q = q.Limit(limit)
	}
	return readAll[model.Notification](q.Documents(ctx), "notifications")
}

type deliveryFailureRepository struct {
	client *firestore.Client
	cols   *collections
}

func (r *deliveryFailureRepository) Create(ctx context.Context, failure *model.DeliveryFailure) (*model.DeliveryFailure, error) {
	created := *failure
	if created.ID == "" {
		created.ID = uuid.NewString()
	}
	if created.FailedAt.IsZero() {
		created.FailedAt = r.cols.now()
	}

	if _, err := r.cols.ref(CollectionDeliveryFailures).Doc(created.ID).Create(ctx, &created); err != nil {
		if isAlreadyExists(err) {
			return nil, goerr.Wrap(interfaces.ErrAlreadyExists, "delivery failure already exists", goerr.V("id", created.ID))
		}
		return nil, goerr.Wrap(err, "failed to create delivery failure", goerr.V("id", created.ID))
	}
	return &created, nil
}

func (r *deliveryFailureRepository) List(ctx context.Context, filter interfaces.DeliveryFailureFilter) ([]*model.DeliveryFailure, error) {
	q := r.cols.ref(CollectionDeliveryFailures).Query
	if filter.NotificationID != "" {
		q = q.Where("NotificationID", "==", filter.NotificationID)
	}
	if !filter.Start.IsZero() {
		q = q.Where("FailedAt", ">=", filter.Start)
	}
	if !filter.End.IsZero() {
		q = q.Where("FailedAt", "<=", filter.End)
	}

	list, err := readAll[model.DeliveryFailure](q.Documents(ctx), "delivery failures")
	if err != nil {
		return nil, err
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].FailedAt.Equal(list[j].FailedAt) {
			return list[i].FailedAt.After(list[j].FailedAt)
		}
		return list[i].ID < list[j].ID
	})
	return list, nil
}
