package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/releaseboard/pkg/domain/interfaces"
	"github.com/secmon-lab/releaseboard/pkg/domain/model"
	"github.com/secmon-lab/releaseboard/pkg/domain/types"
)

// seedNotifications stores n notifications for recipient through a release update
func seedNotifications(t *testing.T, repo interfaces.Repository, recipient string, n int) []*model.Notification {
	t.Helper()
	ctx := context.Background()

	release := uniqueCode("REL")
	_, err := repo.Release().Create(ctx, &model.Release{
		Code:        release,
		ProductCode: uniqueCode("PRD"),
		Status:      types.ReleaseStatusInProgress,
	})
	gt.NoError(t, err).Required()

	_, stored, err := repo.Release().Update(ctx, release, func(r *model.Release, _ []*model.Feature) ([]*model.Notification, error) {
		r.Status = types.ReleaseStatusDelayed
		var out []*model.Notification
		for range n {
			out = append(out, &model.Notification{
				ID:             uniqueCode("N"),
				RecipientID:    recipient,
				EventType:      types.NotificationEventReleaseUpdated,
				Details:        model.NotificationDetails{ReleaseCode: release, NewStatus: r.Status},
				Link:           model.ReleaseLink(release),
				DeliveryStatus: types.DeliveryStatusPending,
			})
		}
		return out, nil
	})
	gt.NoError(t, err).Required()
	return stored
}

func runNotificationRepositoryTest(t *testing.T, newRepo repoFactory) {
	t.Run("MarkRead is idempotent", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		stored := seedNotifications(t, repo, uniqueCode("user"), 1)
		first := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

		n, err := repo.Notification().MarkRead(ctx, stored[0].ID, first)
		gt.NoError(t, err).Required()
		gt.Bool(t, n.Read).True()
		gt.Bool(t, n.ReadAt.Equal(first)).True()

		n, err = repo.Notification().MarkRead(ctx, stored[0].ID, first.Add(time.Hour))
		gt.NoError(t, err).Required()
		gt.Bool(t, n.ReadAt.Equal(first)).True()
	})

	t.Run("ListByRecipient honors unread filter", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		recipient := uniqueCode("user")
		stored := seedNotifications(t, repo, recipient, 3)

		_, err := repo.Notification().MarkRead(ctx, stored[1].ID, time.Now().UTC())
		gt.NoError(t, err).Required()

		all, err := repo.Notification().ListByRecipient(ctx, recipient, false)
		gt.NoError(t, err).Required()
		gt.Array(t, all).Length(3)

		unread, err := repo.Notification().ListByRecipient(ctx, recipient, true)
		gt.NoError(t, err).Required()
		gt.Array(t, unread).Length(2)
	})

	t.Run("UpdateDeliveryStatus", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		stored := seedNotifications(t, repo, uniqueCode("user"), 1)

		gt.NoError(t, repo.Notification().UpdateDeliveryStatus(ctx, stored[0].ID, types.DeliveryStatusFailed)).Required()
		got, err := repo.Notification().Get(ctx, stored[0].ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.DeliveryStatus).Equal(types.DeliveryStatusFailed)

		err = repo.Notification().UpdateDeliveryStatus(ctx, uniqueCode("nope"), types.DeliveryStatusSent)
		gt.Error(t, err).Is(interfaces.ErrNotFound)
	})

	t.Run("ListByDeliveryStatus", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		recipient := uniqueCode("user")
		stored := seedNotifications(t, repo, recipient, 3)

		for _, n := range stored[:2] {
			gt.NoError(t, repo.Notification().UpdateDeliveryStatus(ctx, n.ID, types.DeliveryStatusFailed)).Required()
		}

		failed, err := repo.Notification().ListByDeliveryStatus(ctx, types.DeliveryStatusFailed, 0)
		gt.NoError(t, err).Required()
		var mine int
		for _, n := range failed {
			gt.Value(t, n.DeliveryStatus).Equal(types.DeliveryStatusFailed)
			if n.RecipientID == recipient {
				mine++
			}
		}
		gt.Number(t, mine).Equal(2)

		limited, err := repo.Notification().ListByDeliveryStatus(ctx, types.DeliveryStatusFailed, 1)
		gt.NoError(t, err).Required()
		gt.Array(t, limited).Length(1)
	})

	t.Run("MarkRead of missing notification returns ErrNotFound", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.Notification().MarkRead(context.Background(), uniqueCode("nope"), time.Now())
		gt.Error(t, err).Is(interfaces.ErrNotFound)
	})
}

func runDeliveryFailureRepositoryTest(t *testing.T, newRepo repoFactory) {
	t.Run("List filters by notification and sorts newest first", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		notificationID := uniqueCode("N")
		base := isolatedTime()

		for i := range 3 {
			_, err := repo.DeliveryFailure().Create(ctx, &model.DeliveryFailure{
				NotificationID: notificationID,
				Recipient:      "alice@example.com",
				EventType:      types.NotificationEventReleaseUpdated,
				ErrorMessage:   "channel_not_found",
				FailedAt:       base.Add(time.Duration(i) * time.Minute),
			})
			gt.NoError(t, err).Required()
		}

		list, err := repo.DeliveryFailure().List(ctx, interfaces.DeliveryFailureFilter{NotificationID: notificationID})
		gt.NoError(t, err).Required()
		gt.Array(t, list).Length(3)
		gt.Bool(t, list[0].FailedAt.Equal(base.Add(2*time.Minute))).True()

		ranged, err := repo.DeliveryFailure().List(ctx, interfaces.DeliveryFailureFilter{
			Start: base.Add(time.Minute),
			End:   base.Add(time.Hour),
		})
		gt.NoError(t, err).Required()
		gt.Array(t, ranged).Length(2)
	})
}

func TestNotificationRepository(t *testing.T) {
	runAllBackends(t, runNotificationRepositoryTest)
}

func TestDeliveryFailureRepository(t *testing.T) {
	runAllBackends(t, runDeliveryFailureRepositoryTest)
}
