package interfaces

import (
	"context"
	"time"

	"github.com/secmon-lab/releaseboard/pkg/domain/model"
	"github.com/secmon-lab/releaseboard/pkg/domain/types"
)

// NotificationRepository defines the interface for Notification data access.
// Notifications are created through ReleaseRepository.Update.
type NotificationRepository interface {
	Get(ctx context.Context, id string) (*model.Notification, error)
	ListByRecipient(ctx context.Context, recipientID string, unreadOnly bool) ([]*model.Notification, error)

	// MarkRead sets the read flag and timestamp on first call. Later calls
	// return the stored notification unchanged.
	MarkRead(ctx context.Context, id string, at time.Time) (*model.Notification, error)

	UpdateDeliveryStatus(ctx context.Context, id string, status types.DeliveryStatus) error

	// ListByDeliveryStatus returns up to limit notifications in status,
	// oldest first
	ListByDeliveryStatus(ctx context.Context, status types.DeliveryStatus, limit int) ([]*model.Notification, error)
}

// DeliveryFailureFilter narrows DeliveryFailureRepository.List. Zero values do not filter.
type DeliveryFailureFilter struct {
	NotificationID string
	Start          time.Time
	End            time.Time
}

// DeliveryFailureRepository defines the interface for DeliveryFailure data access
type DeliveryFailureRepository interface {
	Create(ctx context.Context, failure *model.DeliveryFailure) (*model.DeliveryFailure, error)

	// List returns failures newest first
	List(ctx context.Context, filter DeliveryFailureFilter) ([]*model.DeliveryFailure, error)
}
