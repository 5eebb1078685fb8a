package usecase

import (
	"context"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/releaseboard/pkg/domain/interfaces"
	"github.com/secmon-lab/releaseboard/pkg/domain/model"
	"github.com/secmon-lab/releaseboard/pkg/domain/types"
	"github.com/secmon-lab/releaseboard/pkg/utils/clock"
)

const NotificationIDKey = "notification_id"

// maxDeliveryAttempts bounds how often a notification is sent before it is
// left FAILED for good
const maxDeliveryAttempts = 3

type NotificationUseCase struct {
	repo     interfaces.Repository
	clock    clock.Clock
	delivery *deliveryService
}

// List returns the caller's notifications, newest first
func (uc *NotificationUseCase) List(ctx context.Context, unreadOnly bool) ([]*model.Notification, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}

	list, err := uc.repo.Notification().ListByRecipient(ctx, actor, unreadOnly)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list notifications", goerr.V("recipient", actor))
	}
	if list == nil {
		list = []*model.Notification{}
	}
	return list, nil
}

// MarkRead marks a notification of the caller as read
func (uc *NotificationUseCase) MarkRead(ctx context.Context, id string) (*model.Notification, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateNotificationID(id); err != nil {
		return nil, err
	}

	n, err := uc.repo.Notification().Get(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get notification", goerr.V(NotificationIDKey, id))
	}
	if n.RecipientID != actor {
		return nil, goerr.Wrap(ErrForbidden, "notification belongs to another user",
			goerr.V(NotificationIDKey, id))
	}

	return uc.markRead(ctx, id)
}

// TrackOpen records that a notification was opened through the tracking
// pixel. It needs no caller identity and only the first call changes state.
func (uc *NotificationUseCase) TrackOpen(ctx context.Context, id string) error {
	if err := validateNotificationID(id); err != nil {
		return err
	}
	_, err := uc.markRead(ctx, id)
	return err
}

func (uc *NotificationUseCase) markRead(ctx context.Context, id string) (*model.Notification, error) {
	n, err := uc.repo.Notification().MarkRead(ctx, id, uc.clock.Now())
	if err != nil {
		return nil, goerr.Wrap(err, "failed to mark notification read", goerr.V(NotificationIDKey, id))
	}
	return n, nil
}

// RetryFailedDeliveries re-sends up to limit FAILED notifications that have
// attempts left and returns how many were retried. Without a notifier it
// does nothing.
func (uc *NotificationUseCase) RetryFailedDeliveries(ctx context.Context, limit int) (int, error) {
	if !uc.delivery.enabled() {
		return 0, nil
	}

	failed, err := uc.repo.Notification().ListByDeliveryStatus(ctx, types.DeliveryStatusFailed, 0)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to list undelivered notifications")
	}

	var retry []*model.Notification
	for _, n := range failed {
		if limit > 0 && len(retry) >= limit {
			break
		}
		attempts, err := uc.repo.DeliveryFailure().List(ctx, interfaces.DeliveryFailureFilter{NotificationID: n.ID})
		if err != nil {
			return 0, goerr.Wrap(err, "failed to list delivery failures", goerr.V(NotificationIDKey, n.ID))
		}
		if len(attempts) >= maxDeliveryAttempts {
			continue
		}
		retry = append(retry, n)
	}

	if err := uc.delivery.deliver(ctx, retry); err != nil {
		return 0, goerr.Wrap(err, "failed to redeliver notifications")
	}
	return len(retry), nil
}

func validateNotificationID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return invalid("notification id must be a UUID", goerr.V(NotificationIDKey, id))
	}
	return nil
}
