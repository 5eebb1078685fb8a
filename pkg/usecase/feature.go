package usecase

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/releaseboard/pkg/domain/interfaces"
	"github.com/secmon-lab/releaseboard/pkg/domain/model"
	"github.com/secmon-lab/releaseboard/pkg/domain/model/auth"
	"github.com/secmon-lab/releaseboard/pkg/domain/types"
	"github.com/secmon-lab/releaseboard/pkg/utils/clock"
)

type FeatureUseCase struct {
	repo  interfaces.Repository
	clock clock.Clock
}

// FeatureInput carries the writable fields of a feature
type FeatureInput struct {
	Code        string
	Title       string
	Description string
	// Status defaults to NEW when empty
	Status      types.FeatureStatus
	ProductCode string
	ReleaseCode string
	AssignedTo  string

	PlannedCompletionDate *time.Time
	ActualCompletionDate  *time.Time
	PlanningStatus        types.PlanningStatus
	FeatureOwner          string
	BlockageReason        string
}

// FeatureUpdateInput changes a feature. Nil fields are left as they are.
type FeatureUpdateInput struct {
	Title       *string
	Description *string
	Status      *types.FeatureStatus
	ReleaseCode *string
	AssignedTo  *string

	PlannedCompletionDate *time.Time
	ActualCompletionDate  *time.Time
	PlanningStatus        *types.PlanningStatus
	FeatureOwner          *string
	BlockageReason        *string
}

func validateFeatureOwner(owner string) error {
	if utf8.RuneCountInString(owner) > model.MaxFeatureOwnerLength {
		return invalid("feature owner is too long",
			goerr.V("length", utf8.RuneCountInString(owner)),
			goerr.V("max", model.MaxFeatureOwnerLength))
	}
	return nil
}

func validatePlanningStatus(s types.PlanningStatus) error {
	if s != "" && !s.IsValid() {
		return invalid("unknown planning status", goerr.V("planning_status", s))
	}
	return nil
}

func (uc *FeatureUseCase) requireRelease(ctx context.Context, code string) error {
	if code == "" {
		return nil
	}
	if _, err := uc.repo.Release().Get(ctx, code); err != nil {
		if errors.Is(err, ErrNotFound) {
			return invalid("release does not exist", goerr.V(ReleaseCodeKey, code))
		}
		return goerr.Wrap(err, "failed to get release", goerr.V(ReleaseCodeKey, code))
	}
	return nil
}

func (uc *FeatureUseCase) CreateFeature(ctx context.Context, in FeatureInput) (*model.Feature, error) {
	if err := types.ValidateCode("feature", in.Code); err != nil {
		return nil, invalidFrom(err)
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, invalid("feature title is required")
	}
	status := in.Status.Normalize()
	if !status.IsValid() {
		return nil, invalid("unknown feature status", goerr.V("status", in.Status))
	}
	if err := validatePlanningStatus(in.PlanningStatus); err != nil {
		return nil, err
	}
	if err := validateFeatureOwner(in.FeatureOwner); err != nil {
		return nil, err
	}

	if _, err := uc.repo.Product().Get(ctx, in.ProductCode); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, invalid("product does not exist", goerr.V("product_code", in.ProductCode))
		}
		return nil, goerr.Wrap(err, "failed to get product", goerr.V("product_code", in.ProductCode))
	}
	if err := uc.requireRelease(ctx, in.ReleaseCode); err != nil {
		return nil, err
	}

	now := uc.clock.Now()
	created, err := uc.repo.Feature().Create(ctx, &model.Feature{
		Code:                  in.Code,
		Title:                 title,
		Description:           in.Description,
		Status:                status,
		ProductCode:           in.ProductCode,
		ReleaseCode:           in.ReleaseCode,
		CreatedBy:             auth.ActorID(ctx),
		AssignedTo:            in.AssignedTo,
		PlannedCompletionDate: in.PlannedCompletionDate,
		ActualCompletionDate:  in.ActualCompletionDate,
		PlanningStatus:        in.PlanningStatus,
		FeatureOwner:          in.FeatureOwner,
		BlockageReason:        in.BlockageReason,
		StatusChangedAt:       now,
		CreatedAt:             now,
		UpdatedAt:             now,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create feature", goerr.V(FeatureCodeKey, in.Code))
	}
	return created, nil
}

func (uc *FeatureUseCase) GetFeature(ctx context.Context, code string) (*model.Feature, error) {
	f, err := uc.repo.Feature().Get(ctx, code)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get feature", goerr.V(FeatureCodeKey, code))
	}
	return f, nil
}

func (uc *FeatureUseCase) ListFeatures(ctx context.Context, filter interfaces.FeatureFilter) ([]*model.Feature, error) {
	features, err := uc.repo.Feature().List(ctx, filter)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list features")
	}
	return features, nil
}

// UpdateFeature applies in. A status change stamps StatusChangedAt, which
// blocked-time metrics measure from.
func (uc *FeatureUseCase) UpdateFeature(ctx context.Context, code string, in FeatureUpdateInput) (*model.Feature, error) {
	f, err := uc.repo.Feature().Get(ctx, code)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get feature", goerr.V(FeatureCodeKey, code))
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, invalid("feature title is required")
		}
		f.Title = title
	}
	if in.Description != nil {
		f.Description = *in.Description
	}
	if in.Status != nil {
		status := in.Status.Normalize()
		if !status.IsValid() {
			return nil, invalid("unknown feature status", goerr.V("status", *in.Status))
		}
		if status != f.Status {
			f.Status = status
			f.StatusChangedAt = uc.clock.Now()
		}
	}
	if in.ReleaseCode != nil {
		if err := uc.requireRelease(ctx, *in.ReleaseCode); err != nil {
			return nil, err
		}
		f.ReleaseCode = *in.ReleaseCode
	}
	if in.AssignedTo != nil {
		f.AssignedTo = *in.AssignedTo
	}
	if in.PlannedCompletionDate != nil {
		f.PlannedCompletionDate = in.PlannedCompletionDate
	}
	if in.ActualCompletionDate != nil {
		f.ActualCompletionDate = in.ActualCompletionDate
	}
	if in.PlanningStatus != nil {
		if err := validatePlanningStatus(*in.PlanningStatus); err != nil {
			return nil, err
		}
		f.PlanningStatus = *in.PlanningStatus
	}
	if in.FeatureOwner != nil {
		if err := validateFeatureOwner(*in.FeatureOwner); err != nil {
			return nil, err
		}
		f.FeatureOwner = *in.FeatureOwner
	}
	if in.BlockageReason != nil {
		f.BlockageReason = *in.BlockageReason
	}
	f.UpdatedAt = uc.clock.Now()

	updated, err := uc.repo.Feature().Update(ctx, f)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update feature", goerr.V(FeatureCodeKey, code))
	}
	return updated, nil
}

// DeleteFeature removes the feature and every dependency that mentions it
func (uc *FeatureUseCase) DeleteFeature(ctx context.Context, code string) error {
	if err := uc.repo.Feature().Delete(ctx, code); err != nil {
		return goerr.Wrap(err, "failed to delete feature", goerr.V(FeatureCodeKey, code))
	}
	if err := uc.repo.Dependency().DeleteByFeature(ctx, code); err != nil {
		return goerr.Wrap(err, "failed to delete feature dependencies", goerr.V(FeatureCodeKey, code))
	}
	return nil
}
