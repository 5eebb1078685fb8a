package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/releaseboard/pkg/domain/interfaces"
	"github.com/secmon-lab/releaseboard/pkg/domain/model"
	"github.com/secmon-lab/releaseboard/pkg/domain/types"
	"github.com/secmon-lab/releaseboard/pkg/service/metrics"
	"github.com/secmon-lab/releaseboard/pkg/utils/clock"
	"github.com/secmon-lab/releaseboard/pkg/utils/logging"
	"golang.org/x/sync/errgroup"
)

const maxConcurrentDeliveries = 4

// deliveryService pushes committed notifications through a Notifier and
// records the outcome on each notification
type deliveryService struct {
	repo     interfaces.Repository
	clock    clock.Clock
	notifier Notifier
	metrics  *metrics.Metrics
}

func (x *deliveryService) enabled() bool {
	return x != nil && x.notifier != nil
}

func (x *deliveryService) deliver(ctx context.Context, notifications []*model.Notification) error {
	var eg errgroup.Group
	eg.SetLimit(maxConcurrentDeliveries)

	for _, n := range notifications {
		eg.Go(func() error {
			return x.deliverOne(ctx, n)
		})
	}
	return eg.Wait()
}

// deliverOne returns an error only when the outcome could not be recorded.
// A failed send is persisted as a DeliveryFailure.
func (x *deliveryService) deliverOne(ctx context.Context, n *model.Notification) error {
	sendErr := x.notifier.Notify(ctx, n)
	if sendErr == nil {
		x.metrics.Delivery(types.DeliveryStatusSent.String())
		if err := x.repo.Notification().UpdateDeliveryStatus(ctx, n.ID, types.DeliveryStatusSent); err != nil {
			return goerr.Wrap(err, "failed to mark notification sent", goerr.V("notification_id", n.ID))
		}
		return nil
	}

	x.metrics.Delivery(types.DeliveryStatusFailed.String())
	logging.From(ctx).Warn("notification delivery failed",
		"notification_id", n.ID,
		"recipient", n.RecipientID,
		"error", sendErr,
	)

	if _, err := x.repo.DeliveryFailure().Create(ctx, &model.DeliveryFailure{
		NotificationID: n.ID,
		Recipient:      n.RecipientID,
		EventType:      n.EventType,
		ErrorMessage:   sendErr.Error(),
		FailedAt:       x.clock.Now(),
	}); err != nil {
		return goerr.Wrap(err, "failed to record delivery failure", goerr.V("notification_id", n.ID))
	}
	if err := x.repo.Notification().UpdateDeliveryStatus(ctx, n.ID, types.DeliveryStatusFailed); err != nil {
		return goerr.Wrap(err, "failed to mark notification failed", goerr.V("notification_id", n.ID))
	}
	return nil
}
