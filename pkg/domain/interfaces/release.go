package interfaces

import (
	"context"

	"github.com/secmon-lab/releaseboard/pkg/domain/model"
)

// ReleaseMutation is applied to the stored release inside a transaction. It
// receives a copy of the release and the features currently scheduled in it,
// modifies the release in place and returns notifications to persist together
// with the update. Returning an error aborts the transaction.
type ReleaseMutation func(release *model.Release, features []*model.Feature) ([]*model.Notification, error)

// ReleaseRepository defines the interface for Release data access
type ReleaseRepository interface {
	// Create fails with ErrAlreadyExists if the code is taken, and with
	// ErrParentNotFound if ParentCode names no stored release.
	Create(ctx context.Context, release *model.Release) (*model.Release, error)

	Get(ctx context.Context, code string) (*model.Release, error)

	// List returns releases of a product, or all releases if productCode is empty
	List(ctx context.Context, productCode string) ([]*model.Release, error)

	// Update atomically applies mutate and stores the returned notifications.
	// Either the release and all notifications are written, or nothing is.
	// A changed ParentCode must name a stored release, else ErrParentNotFound.
	Update(ctx context.Context, code string, mutate ReleaseMutation) (*model.Release, []*model.Notification, error)

	// Delete removes the release. Child releases lose their parent link and
	// features scheduled in it become unscheduled.
	Delete(ctx context.Context, code string) error
}
