package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/releaseboard/pkg/domain/interfaces"
	"github.com/secmon-lab/releaseboard/pkg/domain/model"
	"github.com/secmon-lab/releaseboard/pkg/domain/model/auth"
	"github.com/secmon-lab/releaseboard/pkg/domain/types"
	"github.com/secmon-lab/releaseboard/pkg/service/metrics"
	"github.com/secmon-lab/releaseboard/pkg/utils/clock"
	"github.com/secmon-lab/releaseboard/pkg/utils/logging"
)

type ReleaseUseCase struct {
	repo     interfaces.Repository
	clock    clock.Clock
	metrics  *metrics.Metrics
	delivery *deliveryService
	dispatch dispatcher
}

// CreateReleaseInput is a validated creation request
type CreateReleaseInput struct {
	Code        string
	ProductCode string
	Description string
	// Status defaults to DRAFT when empty
	Status     types.ReleaseStatus
	ParentCode string
	ReleasedAt *time.Time
}

// UpdateReleaseInput changes a release. Nil fields are left as they are;
// an empty ParentCode removes the parent.
type UpdateReleaseInput struct {
	Description *string
	Status      *types.ReleaseStatus
	ReleasedAt  *time.Time
	ParentCode  *string
}

// ReleaseUpdateResult is the committed release and the notifications created with it
type ReleaseUpdateResult struct {
	Release       *model.Release
	Transition    model.StatusTransition
	Notifications []*model.Notification
}

func (uc *ReleaseUseCase) CreateRelease(ctx context.Context, in CreateReleaseInput) (*model.Release, error) {
	if err := types.ValidateCode("release", in.Code); err != nil {
		return nil, invalidFrom(err)
	}
	status := in.Status
	if status == "" {
		status = types.ReleaseStatusDraft
	}
	if !status.IsValid() {
		return nil, invalid("unknown release status", goerr.V("status", in.Status))
	}

	if _, err := uc.repo.Product().Get(ctx, in.ProductCode); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, invalid("product does not exist", goerr.V("product_code", in.ProductCode))
		}
		return nil, goerr.Wrap(err, "failed to get product", goerr.V("product_code", in.ProductCode))
	}
	if err := checkSelfParent(in.Code, in.ParentCode); err != nil {
		return nil, err
	}

	now := uc.clock.Now()
	release := &model.Release{
		Code:        in.Code,
		ProductCode: in.ProductCode,
		Description: in.Description,
		Status:      status,
		ParentCode:  in.ParentCode,
		ReleasedAt:  in.ReleasedAt,
		CreatedBy:   auth.ActorID(ctx),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if release.IsReleased() && release.ReleasedAt == nil {
		release.ReleasedAt = timePtr(now)
	}

	created, err := uc.repo.Release().Create(ctx, release)
	if err != nil {
		if errors.Is(err, interfaces.ErrParentNotFound) {
			return nil, invalid("parent release does not exist", goerr.V("parent_code", in.ParentCode))
		}
		return nil, goerr.Wrap(err, "failed to create release", goerr.V(ReleaseCodeKey, in.Code))
	}
	return created, nil
}

// checkSelfParent rejects a release naming itself as parent. Parent existence
// is checked by the repository in the same transaction as the write.
func checkSelfParent(code, parentCode string) error {
	if parentCode != "" && parentCode == code {
		return invalid("release cannot be its own parent", goerr.V(ReleaseCodeKey, code))
	}
	return nil
}

func (uc *ReleaseUseCase) GetRelease(ctx context.Context, code string) (*model.Release, error) {
	r, err := uc.repo.Release().Get(ctx, code)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get release", goerr.V(ReleaseCodeKey, code))
	}
	return r, nil
}

func (uc *ReleaseUseCase) ListReleases(ctx context.Context, productCode string) ([]*model.Release, error) {
	releases, err := uc.repo.Release().List(ctx, productCode)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list releases", goerr.V("product_code", productCode))
	}
	return releases, nil
}

// UpdateRelease applies in to the release. A status change is checked
// against the transition table on the stored status inside the repository
// transaction; a cascading transition commits the stakeholder notifications
// together with the release, then hands them to delivery.
func (uc *ReleaseUseCase) UpdateRelease(ctx context.Context, code string, in UpdateReleaseInput) (*ReleaseUpdateResult, error) {
	if in.Status != nil && !in.Status.IsValid() {
		return nil, invalid("unknown release status", goerr.V("status", *in.Status))
	}
	if in.ParentCode != nil {
		if err := checkSelfParent(code, *in.ParentCode); err != nil {
			return nil, err
		}
	}

	actorID := auth.ActorID(ctx)
	now := uc.clock.Now()
	var tr model.StatusTransition

	updated, notifications, err := uc.repo.Release().Update(ctx, code,
		func(r *model.Release, features []*model.Feature) ([]*model.Notification, error) {
			tr = model.StatusTransition{
				ReleaseCode: r.Code,
				ProductCode: r.ProductCode,
				From:        r.Status,
				To:          r.Status,
				ActorID:     actorID,
				At:          now,
			}
			if in.Status != nil {
				if !r.Status.CanTransitionTo(*in.Status) {
					return nil, goerr.Wrap(ErrInvalidTransition, "release status change is not allowed",
						goerr.V(ReleaseCodeKey, r.Code),
						goerr.V("from", r.Status),
						goerr.V("to", *in.Status))
				}
				tr.To = *in.Status
				r.Status = *in.Status
			}

			if in.Description != nil {
				r.Description = *in.Description
			}
			if in.ParentCode != nil {
				r.ParentCode = *in.ParentCode
			}
			if in.ReleasedAt != nil {
				r.ReleasedAt = in.ReleasedAt
			}
			if tr.Changed() && tr.To == types.ReleaseStatusReleased && r.ReleasedAt == nil {
				r.ReleasedAt = timePtr(now)
			}

			return buildReleaseNotifications(r, features, tr), nil
		})
	if err != nil {
		if in.ParentCode != nil && errors.Is(err, interfaces.ErrParentNotFound) {
			return nil, invalid("parent release does not exist", goerr.V("parent_code", *in.ParentCode))
		}
		return nil, goerr.Wrap(err, "failed to update release", goerr.V(ReleaseCodeKey, code))
	}

	if tr.Changed() {
		uc.metrics.ReleaseTransition(tr.To.String())
		logging.From(ctx).Info("release status changed",
			"release_code", code,
			"from", tr.From,
			"to", tr.To,
			"actor", actorID,
			"notifications", len(notifications),
		)
	}
	uc.metrics.NotificationsCreated(len(notifications))

	if len(notifications) > 0 && uc.delivery.enabled() {
		pending := notifications
		uc.dispatch(ctx, func(ctx context.Context) error {
			return uc.delivery.deliver(ctx, pending)
		})
	}

	return &ReleaseUpdateResult{
		Release:       updated,
		Transition:    tr,
		Notifications: notifications,
	}, nil
}

// DeleteRelease removes a release. Children lose their parent and
// features scheduled in it become unscheduled.
func (uc *ReleaseUseCase) DeleteRelease(ctx context.Context, code string) error {
	if err := uc.repo.Release().Delete(ctx, code); err != nil {
		return goerr.Wrap(err, "failed to delete release", goerr.V(ReleaseCodeKey, code))
	}
	return nil
}
