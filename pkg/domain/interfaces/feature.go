package interfaces

import (
	"context"

	"github.com/secmon-lab/releaseboard/pkg/domain/model"
)

// FeatureFilter narrows List results. Empty fields do not filter.
type FeatureFilter struct {
	ProductCode string
	ReleaseCode string
}

// FeatureRepository defines the interface for Feature data access
type FeatureRepository interface {
	// Create fails with ErrAlreadyExists if the code is taken
	Create(ctx context.Context, feature *model.Feature) (*model.Feature, error)
	Get(ctx context.Context, code string) (*model.Feature, error)
	List(ctx context.Context, filter FeatureFilter) ([]*model.Feature, error)
	Update(ctx context.Context, feature *model.Feature) (*model.Feature, error)
	Delete(ctx context.Context, code string) error
}

// DependencyRepository defines the interface for FeatureDependency data access
type DependencyRepository interface {
	// Create fails with ErrAlreadyExists if the pair is already linked
	Create(ctx context.Context, dep *model.FeatureDependency) (*model.FeatureDependency, error)
	Get(ctx context.Context, featureCode, dependsOnCode string) (*model.FeatureDependency, error)

	// ListByFeature returns dependencies declared by featureCode
	ListByFeature(ctx context.Context, featureCode string) ([]*model.FeatureDependency, error)

	Update(ctx context.Context, dep *model.FeatureDependency) (*model.FeatureDependency, error)
	Delete(ctx context.Context, featureCode, dependsOnCode string) error

	// DeleteByFeature removes every dependency where featureCode is on either side
	DeleteByFeature(ctx context.Context, featureCode string) error
}
