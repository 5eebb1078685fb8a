package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/releaseboard/pkg/domain/interfaces"
	"github.com/secmon-lab/releaseboard/pkg/domain/model"
	"github.com/secmon-lab/releaseboard/pkg/domain/types"
	"github.com/secmon-lab/releaseboard/pkg/repository/memory"
	"github.com/secmon-lab/releaseboard/pkg/usecase"
	"github.com/secmon-lab/releaseboard/pkg/utils/clock"
)

func seedStakeholderRelease(t *testing.T, f *fixture) {
	t.Helper()
	f.seedRelease(t, "v1.0", types.ReleaseStatusInProgress)
	f.seedFeature(t, "creator1", usecase.FeatureInput{Code: "f1", ReleaseCode: "v1.0", AssignedTo: "assignee1"})
	f.seedFeature(t, "creator2", usecase.FeatureInput{Code: "f2", ReleaseCode: "v1.0", AssignedTo: "assignee2"})
	f.seedFeature(t, "creator1", usecase.FeatureInput{Code: "f3", ReleaseCode: "v1.0", AssignedTo: "assignee3"})
	// not in the release
	f.seedFeature(t, "outsider", usecase.FeatureInput{Code: "f4", AssignedTo: "assignee4"})
}

func TestUpdateRelease_Cascade(t *testing.T) {
	t.Run("released notifies every stakeholder once", func(t *testing.T) {
		f := newFixture(t)
		seedStakeholderRelease(t, f)

		result, err := f.uc.Release.UpdateRelease(asUser("releaser"), "v1.0", usecase.UpdateReleaseInput{
			Status: ptr(types.ReleaseStatusReleased),
		})
		gt.NoError(t, err).Required()

		gt.Value(t, result.Release.Status).Equal(types.ReleaseStatusReleased)
		gt.Value(t, result.Release.ReleasedAt).NotNil()
		gt.Bool(t, result.Release.ReleasedAt.Equal(baseTime)).True()

		gt.Array(t, result.Notifications).Length(5)
		var recipients []string
		for _, n := range result.Notifications {
			recipients = append(recipients, n.RecipientID)
			gt.Value(t, n.EventType).Equal(types.NotificationEventReleaseUpdated)
			gt.Value(t, n.Details.PreviousStatus).Equal(types.ReleaseStatusInProgress)
			gt.Value(t, n.Details.NewStatus).Equal(types.ReleaseStatusReleased)
			gt.Value(t, n.Details.ActorID).Equal("releaser")
			gt.Value(t, n.Link).Equal("/releases/v1.0")
			gt.Value(t, n.DeliveryStatus).Equal(types.DeliveryStatusPending)
		}
		gt.Value(t, recipients).Equal([]string{"assignee1", "assignee2", "assignee3", "creator1", "creator2"})

		stored, err := f.repo.Notification().ListByRecipient(context.Background(), "creator1", false)
		gt.NoError(t, err).Required()
		gt.Array(t, stored).Length(1)
	})

	t.Run("actor is excluded", func(t *testing.T) {
		f := newFixture(t)
		seedStakeholderRelease(t, f)

		result, err := f.uc.Release.UpdateRelease(asUser("creator1"), "v1.0", usecase.UpdateReleaseInput{
			Status: ptr(types.ReleaseStatusDelayed),
		})
		gt.NoError(t, err).Required()
		gt.Array(t, result.Notifications).Length(4)
		for _, n := range result.Notifications {
			gt.Value(t, n.RecipientID).NotEqual("creator1")
		}
	})

	t.Run("non cascading transition creates nothing", func(t *testing.T) {
		f := newFixture(t)
		f.seedRelease(t, "v2.0", types.ReleaseStatusDraft)
		f.seedFeature(t, "creator1", usecase.FeatureInput{Code: "g1", ReleaseCode: "v2.0", AssignedTo: "assignee1"})

		result, err := f.uc.Release.UpdateRelease(asUser("releaser"), "v2.0", usecase.UpdateReleaseInput{
			Status: ptr(types.ReleaseStatusPlanned),
		})
		gt.NoError(t, err).Required()
		gt.Value(t, result.Release.Status).Equal(types.ReleaseStatusPlanned)
		gt.Array(t, result.Notifications).Length(0)
	})

	t.Run("same status is not a transition", func(t *testing.T) {
		f := newFixture(t)
		seedStakeholderRelease(t, f)

		result, err := f.uc.Release.UpdateRelease(asUser("releaser"), "v1.0", usecase.UpdateReleaseInput{
			Status:      ptr(types.ReleaseStatusInProgress),
			Description: ptr("still going"),
		})
		gt.NoError(t, err).Required()
		gt.Bool(t, result.Transition.Changed()).False()
		gt.Array(t, result.Notifications).Length(0)
		gt.Value(t, result.Release.Description).Equal("still going")
	})
}

func TestUpdateRelease_InvalidTransition(t *testing.T) {
	f := newFixture(t)
	f.seedRelease(t, "v1.0", types.ReleaseStatusDraft)
	f.seedFeature(t, "creator1", usecase.FeatureInput{Code: "f1", ReleaseCode: "v1.0", AssignedTo: "assignee1"})

	_, err := f.uc.Release.UpdateRelease(asUser("releaser"), "v1.0", usecase.UpdateReleaseInput{
		Status:      ptr(types.ReleaseStatusReleased),
		Description: ptr("must not be written"),
	})
	gt.Error(t, err).Is(usecase.ErrInvalidTransition)

	stored, err := f.uc.Release.GetRelease(context.Background(), "v1.0")
	gt.NoError(t, err).Required()
	gt.Value(t, stored.Status).Equal(types.ReleaseStatusDraft)
	gt.Value(t, stored.Description).Equal("")

	list, err := f.repo.Notification().ListByRecipient(context.Background(), "assignee1", false)
	gt.NoError(t, err).Required()
	gt.Array(t, list).Length(0)
}

func TestUpdateRelease_TerminalStatus(t *testing.T) {
	f := newFixture(t)
	f.seedRelease(t, "v1.0", types.ReleaseStatusCancelled)

	_, err := f.uc.Release.UpdateRelease(asUser("releaser"), "v1.0", usecase.UpdateReleaseInput{
		Status: ptr(types.ReleaseStatusInProgress),
	})
	gt.Error(t, err).Is(usecase.ErrInvalidTransition)
}

func TestRelease_Parent(t *testing.T) {
	f := newFixture(t)
	f.seedRelease(t, "v1.0", types.ReleaseStatusDraft)
	ctx := asUser("admin")

	t.Run("create with itself as parent", func(t *testing.T) {
		_, err := f.uc.Release.CreateRelease(ctx, usecase.CreateReleaseInput{
			Code: "v1.1", ProductCode: "prod", ParentCode: "v1.1",
		})
		gt.Error(t, err).Is(usecase.ErrValidation)
	})

	t.Run("create with missing parent", func(t *testing.T) {
		_, err := f.uc.Release.CreateRelease(ctx, usecase.CreateReleaseInput{
			Code: "v1.1", ProductCode: "prod", ParentCode: "v0.9",
		})
		gt.Error(t, err).Is(usecase.ErrValidation)
	})

	t.Run("update to itself as parent", func(t *testing.T) {
		_, err := f.uc.Release.UpdateRelease(ctx, "v1.0", usecase.UpdateReleaseInput{ParentCode: ptr("v1.0")})
		gt.Error(t, err).Is(usecase.ErrValidation)
	})

	t.Run("valid parent then cleared", func(t *testing.T) {
		created, err := f.uc.Release.CreateRelease(ctx, usecase.CreateReleaseInput{
			Code: "v1.0.1", ProductCode: "prod", ParentCode: "v1.0",
		})
		gt.NoError(t, err).Required()
		gt.Value(t, created.Status).Equal(types.ReleaseStatusDraft)
		gt.Bool(t, created.HasParent()).True()

		result, err := f.uc.Release.UpdateRelease(ctx, "v1.0.1", usecase.UpdateReleaseInput{ParentCode: ptr("")})
		gt.NoError(t, err).Required()
		gt.Bool(t, result.Release.HasParent()).False()
	})

	t.Run("parent removed before the write commits", func(t *testing.T) {
		f := newFixture(t)
		f.seedRelease(t, "v2.0", types.ReleaseStatusDraft)
		f.seedRelease(t, "v2.1", types.ReleaseStatusDraft)
		f.seedRelease(t, "v3.0", types.ReleaseStatusDraft)
		repo := &parentDroppingRepository{Memory: f.repo}
		uc := usecase.New(repo, usecase.WithClock(f.clock), usecase.WithSyncDispatch())

		repo.drop = "v2.0"
		_, err := uc.Release.CreateRelease(ctx, usecase.CreateReleaseInput{
			Code: "v2.0.1", ProductCode: "prod", ParentCode: "v2.0",
		})
		gt.Error(t, err).Is(usecase.ErrValidation)
		_, err = f.repo.Release().Get(ctx, "v2.0.1")
		gt.Error(t, err).Is(usecase.ErrNotFound)

		repo.drop = "v2.1"
		_, err = uc.Release.UpdateRelease(ctx, "v3.0", usecase.UpdateReleaseInput{ParentCode: ptr("v2.1")})
		gt.Error(t, err).Is(usecase.ErrValidation)
		stored, err := f.repo.Release().Get(ctx, "v3.0")
		gt.NoError(t, err).Required()
		gt.Bool(t, stored.HasParent()).False()
	})

	t.Run("unknown product", func(t *testing.T) {
		_, err := f.uc.Release.CreateRelease(ctx, usecase.CreateReleaseInput{Code: "x1", ProductCode: "nope"})
		gt.Error(t, err).Is(usecase.ErrValidation)
	})

	t.Run("missing release", func(t *testing.T) {
		_, err := f.uc.Release.UpdateRelease(ctx, "v9.9", usecase.UpdateReleaseInput{Description: ptr("x")})
		gt.Error(t, err).Is(usecase.ErrNotFound)
	})
}

type fakeNotifier struct {
	mu     sync.Mutex
	sent   []string
	failOn map[string]bool
}

func (x *fakeNotifier) Notify(ctx context.Context, n *model.Notification) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.failOn[n.RecipientID] {
		return errors.New("user_not_found")
	}
	x.sent = append(x.sent, n.RecipientID)
	return nil
}

func TestUpdateRelease_Delivery(t *testing.T) {
	notifier := &fakeNotifier{failOn: map[string]bool{"assignee2": true}}
	f := newFixture(t, usecase.WithNotifier(notifier))
	seedStakeholderRelease(t, f)

	result, err := f.uc.Release.UpdateRelease(asUser("releaser"), "v1.0", usecase.UpdateReleaseInput{
		Status: ptr(types.ReleaseStatusCancelled),
	})
	gt.NoError(t, err).Required()
	gt.Array(t, result.Notifications).Length(5)
	gt.Array(t, notifier.sent).Length(4)

	for _, n := range result.Notifications {
		stored, err := f.repo.Notification().Get(context.Background(), n.ID)
		gt.NoError(t, err).Required()
		if n.RecipientID == "assignee2" {
			gt.Value(t, stored.DeliveryStatus).Equal(types.DeliveryStatusFailed)
		} else {
			gt.Value(t, stored.DeliveryStatus).Equal(types.DeliveryStatusSent)
		}
	}

	failures, err := f.repo.DeliveryFailure().List(context.Background(), interfaces.DeliveryFailureFilter{})
	gt.NoError(t, err).Required()
	gt.Array(t, failures).Length(1)
	gt.Value(t, failures[0].Recipient).Equal("assignee2")
	gt.String(t, failures[0].ErrorMessage).Contains("user_not_found")

	admin, err := f.uc.Admin.ListDeliveryFailures(context.Background(), usecase.DeliveryFailureQuery{
		NotificationID: failures[0].NotificationID,
	})
	gt.NoError(t, err).Required()
	gt.Array(t, admin).Length(1)
}

func TestDeleteRelease(t *testing.T) {
	f := newFixture(t)
	f.seedRelease(t, "v1.0", types.ReleaseStatusDraft)
	f.seedFeature(t, "creator1", usecase.FeatureInput{Code: "f1", ReleaseCode: "v1.0"})

	gt.NoError(t, f.uc.Release.DeleteRelease(asUser("admin"), "v1.0")).Required()

	feature, err := f.uc.Feature.GetFeature(context.Background(), "f1")
	gt.NoError(t, err).Required()
	gt.Value(t, feature.ReleaseCode).Equal("")

	_, err = f.uc.Release.GetRelease(context.Background(), "v1.0")
	gt.Error(t, err).Is(usecase.ErrNotFound)
}

func TestStakeholders(t *testing.T) {
	features := []*model.Feature{
		{CreatedBy: "b", AssignedTo: "a"},
		{CreatedBy: "a", AssignedTo: "c"},
		{CreatedBy: "actor"},
	}
	gt.Value(t, usecase.Stakeholders(features, "actor")).Equal([]string{"a", "b", "c"})
}

func TestUpdateRelease_AsyncDeliveryDrain(t *testing.T) {
	notifier := &fakeNotifier{}
	clk := clock.NewFixed(baseTime)
	repo := memory.New(memory.WithClock(clk))
	f := &fixture{
		uc:    usecase.New(repo, usecase.WithClock(clk), usecase.WithNotifier(notifier)),
		repo:  repo,
		clock: clk,
	}
	seedStakeholderRelease(t, f)

	result, err := f.uc.Release.UpdateRelease(asUser("releaser"), "v1.0", usecase.UpdateReleaseInput{
		Status: ptr(types.ReleaseStatusCancelled),
	})
	gt.NoError(t, err).Required()
	gt.NoError(t, f.uc.Drain(context.Background())).Required()

	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	gt.Array(t, notifier.sent).Length(len(result.Notifications))
}

// parentDroppingRepository deletes the release named by drop right before a
// release write reaches the store, as a concurrent delete would.
type parentDroppingRepository struct {
	*memory.Memory
	drop string
}

func (r *parentDroppingRepository) Release() interfaces.ReleaseRepository {
	return &parentDroppingReleases{ReleaseRepository: r.Memory.Release(), repo: r}
}

type parentDroppingReleases struct {
	interfaces.ReleaseRepository
	repo *parentDroppingRepository
}

func (r *parentDroppingReleases) dropParent(ctx context.Context) error {
	if r.repo.drop == "" {
		return nil
	}
	return r.ReleaseRepository.Delete(ctx, r.repo.drop)
}

func (r *parentDroppingReleases) Create(ctx context.Context, release *model.Release) (*model.Release, error) {
	if err := r.dropParent(ctx); err != nil {
		return nil, err
	}
	return r.ReleaseRepository.Create(ctx, release)
}

func (r *parentDroppingReleases) Update(ctx context.Context, code string, mutate interfaces.ReleaseMutation) (*model.Release, []*model.Notification, error) {
	if err := r.dropParent(ctx); err != nil {
		return nil, nil, err
	}
	return r.ReleaseRepository.Update(ctx, code, mutate)
}

func TestUpdateRelease_StampsWithClock(t *testing.T) {
	f := newFixture(t)
	f.seedRelease(t, "v1.0", types.ReleaseStatusDraft)
	f.clock.Advance(3 * time.Hour)

	result, err := f.uc.Release.UpdateRelease(asUser("releaser"), "v1.0", usecase.UpdateReleaseInput{
		Description: ptr("rc"),
	})
	gt.NoError(t, err).Required()
	gt.Value(t, result.Release.CreatedAt).Equal(baseTime)
	gt.Value(t, result.Release.UpdatedAt).Equal(baseTime.Add(3 * time.Hour))

	stored, err := f.uc.Release.GetRelease(asUser("releaser"), "v1.0")
	gt.NoError(t, err).Required()
	gt.Value(t, stored.UpdatedAt).Equal(baseTime.Add(3 * time.Hour))
}
