package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/releaseboard/pkg/domain/interfaces"
	"github.com/secmon-lab/releaseboard/pkg/domain/model"
	"github.com/secmon-lab/releaseboard/pkg/domain/types"
)

type notificationRepository struct {
	st *store
}

func (r *notificationRepository) Get(ctx context.Context, id string) (*model.Notification, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	n, exists := r.st.notifications[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "notification not found", goerr.V("id", id))
	}
	return copyNotification(n), nil
}

func (r *notificationRepository) ListByRecipient(ctx context.Context, recipientID string, unreadOnly bool) ([]*model.Notification, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	list := make([]*model.Notification, 0)
	for _, n := range r.st.notifications {
		if n.RecipientID != recipientID {
			continue
		}
		if unreadOnly && n.Read {
			continue
		}
		list = append(list, copyNotification(n))
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
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	n, exists := r.st.notifications[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "notification not found", goerr.V("id", id))
	}
	if !n.Read {
		n.Read = true
		n.ReadAt = &at
	}
	return copyNotification(n), nil
}

func (r *notificationRepository) UpdateDeliveryStatus(ctx context.Context, id string, status types.DeliveryStatus) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	n, exists := r.st.notifications[id]
	if !exists {
		return goerr.Wrap(ErrNotFound, "notification not found", goerr.V("id", id))
	}
	n.DeliveryStatus = status
	return nil
}

func (r *notificationRepository) ListByDeliveryStatus(ctx context.Context, status types.DeliveryStatus, limit int) ([]*model.Notification, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	list := make([]*model.Notification, 0)
	for _, n := range r.st.notifications {
		if n.DeliveryStatus == status {
			list = append(list, copyNotification(n))
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.Before(list[j].CreatedAt)
		}
		return list[i].ID < list[j].ID
	})
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

type deliveryFailureRepository struct {
	st *store
}

func (r *deliveryFailureRepository) Create(ctx context.Context, failure *model.DeliveryFailure) (*model.DeliveryFailure, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	created := copyDeliveryFailure(failure)
	if created.ID == "" {
		created.ID = uuid.NewString()
	}
	if _, exists := r.st.failures[created.ID]; exists {
		return nil, goerr.Wrap(interfaces.ErrAlreadyExists, "delivery failure already exists", goerr.V("id", created.ID))
	}
	if created.FailedAt.IsZero() {
		created.FailedAt = r.st.now()
	}
	r.st.failures[created.ID] = created
	return copyDeliveryFailure(created), nil
}

func (r *deliveryFailureRepository) List(ctx context.Context, filter interfaces.DeliveryFailureFilter) ([]*model.DeliveryFailure, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	list := make([]*model.DeliveryFailure, 0)
	for _, f := range r.st.failures {
		if filter.NotificationID != "" && f.NotificationID != filter.NotificationID {
			continue
		}
		if !filter.Start.IsZero() && f.FailedAt.Before(filter.Start) {
			continue
		}
		if !filter.End.IsZero() && f.FailedAt.After(filter.End) {
			continue
		}
		list = append(list, copyDeliveryFailure(f))
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].FailedAt.Equal(list[j].FailedAt) {
			return list[i].FailedAt.After(list[j].FailedAt)
		}
		return list[i].ID < list[j].ID
	})
	return list, nil
}
