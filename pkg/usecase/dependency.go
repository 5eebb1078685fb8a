package usecase

import (
	"context"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/releaseboard/pkg/domain/model"
	"github.com/secmon-lab/releaseboard/pkg/domain/model/auth"
	"github.com/secmon-lab/releaseboard/pkg/domain/types"
)

func (uc *FeatureUseCase) requireFeature(ctx context.Context, code string) error {
	if _, err := uc.repo.Feature().Get(ctx, code); err != nil {
		if errors.Is(err, ErrNotFound) {
			return goerr.Wrap(ErrNotFound, "feature not found", goerr.V(FeatureCodeKey, code))
		}
		return goerr.Wrap(err, "failed to get feature", goerr.V(FeatureCodeKey, code))
	}
	return nil
}

// AddDependency records that featureCode depends on dependsOnCode
func (uc *FeatureUseCase) AddDependency(ctx context.Context, featureCode, dependsOnCode string, depType types.DependencyType, notes *string) (*model.FeatureDependency, error) {
	if featureCode == dependsOnCode {
		return nil, invalid("feature cannot depend on itself", goerr.V(FeatureCodeKey, featureCode))
	}
	if !depType.IsValid() {
		return nil, invalid("unknown dependency type", goerr.V("type", depType))
	}
	if err := uc.requireFeature(ctx, featureCode); err != nil {
		return nil, err
	}
	if err := uc.requireFeature(ctx, dependsOnCode); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, invalid("depended-on feature does not exist", goerr.V("depends_on", dependsOnCode))
		}
		return nil, err
	}

	now := uc.clock.Now()
	created, err := uc.repo.Dependency().Create(ctx, &model.FeatureDependency{
		FeatureCode:   featureCode,
		DependsOnCode: dependsOnCode,
		Type:          depType,
		Notes:         notes,
		CreatedBy:     auth.ActorID(ctx),
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create dependency",
			goerr.V(FeatureCodeKey, featureCode), goerr.V("depends_on", dependsOnCode))
	}
	return created, nil
}

func (uc *FeatureUseCase) ListDependencies(ctx context.Context, featureCode string) ([]*model.FeatureDependency, error) {
	if err := uc.requireFeature(ctx, featureCode); err != nil {
		return nil, err
	}
	deps, err := uc.repo.Dependency().ListByFeature(ctx, featureCode)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list dependencies", goerr.V(FeatureCodeKey, featureCode))
	}
	return deps, nil
}

// UpdateDependency replaces type and notes. An empty type keeps the current
// one; nil notes clear them.
func (uc *FeatureUseCase) UpdateDependency(ctx context.Context, featureCode, dependsOnCode string, depType types.DependencyType, notes *string) (*model.FeatureDependency, error) {
	if depType != "" && !depType.IsValid() {
		return nil, invalid("unknown dependency type", goerr.V("type", depType))
	}

	dep, err := uc.repo.Dependency().Get(ctx, featureCode, dependsOnCode)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get dependency",
			goerr.V(FeatureCodeKey, featureCode), goerr.V("depends_on", dependsOnCode))
	}

	if depType != "" {
		dep.Type = depType
	}
	dep.Notes = notes
	dep.UpdatedAt = uc.clock.Now()

	updated, err := uc.repo.Dependency().Update(ctx, dep)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update dependency",
			goerr.V(FeatureCodeKey, featureCode), goerr.V("depends_on", dependsOnCode))
	}
	return updated, nil
}

func (uc *FeatureUseCase) RemoveDependency(ctx context.Context, featureCode, dependsOnCode string) error {
	if err := uc.repo.Dependency().Delete(ctx, featureCode, dependsOnCode); err != nil {
		return goerr.Wrap(err, "failed to delete dependency",
			goerr.V(FeatureCodeKey, featureCode), goerr.V("depends_on", dependsOnCode))
	}
	return nil
}
