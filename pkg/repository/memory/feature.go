package memory

import (
	"context"
	"sort"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/releaseboard/pkg/domain/interfaces"
	"github.com/secmon-lab/releaseboard/pkg/domain/model"
)

type featureRepository struct {
	st *store
}

func (r *featureRepository) Create(ctx context.Context, feature *model.Feature) (*model.Feature, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	if _, exists := r.st.features[feature.Code]; exists {
		return nil, goerr.Wrap(interfaces.ErrAlreadyExists, "feature already exists", goerr.V("code", feature.Code))
	}

	created := copyFeature(feature)
	stamp(r.st.now(), &created.CreatedAt, &created.UpdatedAt)
	if created.StatusChangedAt.IsZero() {
		created.StatusChangedAt = created.CreatedAt
	}
	r.st.features[created.Code] = created
	return copyFeature(created), nil
}

func (r *featureRepository) Get(ctx context.Context, code string) (*model.Feature, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	f, exists := r.st.features[code]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "feature not found", goerr.V("code", code))
	}
	return copyFeature(f), nil
}

func (r *featureRepository) List(ctx context.Context, filter interfaces.FeatureFilter) ([]*model.Feature, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	features := make([]*model.Feature, 0)
	for _, f := range r.st.features {
		if filter.ProductCode != "" && f.ProductCode != filter.ProductCode {
			continue
		}
		if filter.ReleaseCode != "" && f.ReleaseCode != filter.ReleaseCode {
			continue
		}
		features = append(features, copyFeature(f))
	}
	sort.Slice(features, func(i, j int) bool { return features[i].Code < features[j].Code })
	return features, nil
}

func (r *featureRepository) Update(ctx context.Context, feature *model.Feature) (*model.Feature, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	existing, exists := r.st.features[feature.Code]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "feature not found", goerr.V("code", feature.Code))
	}

	updated := copyFeature(feature)
	updated.CreatedAt = existing.CreatedAt
	stamp(r.st.now(), &updated.CreatedAt, &updated.UpdatedAt)
	r.st.features[updated.Code] = updated
	return copyFeature(updated), nil
}

func (r *featureRepository) Delete(ctx context.Context, code string) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	if _, exists := r.st.features[code]; !exists {
		return goerr.Wrap(ErrNotFound, "feature not found", goerr.V("code", code))
	}
	delete(r.st.features, code)
	return nil
}

type dependencyRepository struct {
	st *store
}

func (r *dependencyRepository) Create(ctx context.Context, dep *model.FeatureDependency) (*model.FeatureDependency, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	key := model.DependencyKey(dep.FeatureCode, dep.DependsOnCode)
	if _, exists := r.st.dependencies[key]; exists {
		return nil, goerr.Wrap(interfaces.ErrAlreadyExists, "dependency already exists",
			goerr.V("feature", dep.FeatureCode), goerr.V("depends_on", dep.DependsOnCode))
	}

	created := copyDependency(dep)
	stamp(r.st.now(), &created.CreatedAt, &created.UpdatedAt)
	r.st.dependencies[key] = created
	return copyDependency(created), nil
}

func (r *dependencyRepository) Get(ctx context.Context, featureCode, dependsOnCode string) (*model.FeatureDependency, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	d, exists := r.st.dependencies[model.DependencyKey(featureCode, dependsOnCode)]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "dependency not found",
			goerr.V("feature", featureCode), goerr.V("depends_on", dependsOnCode))
	}
	return copyDependency(d), nil
}

func (r *dependencyRepository) ListByFeature(ctx context.Context, featureCode string) ([]*model.FeatureDependency, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	deps := make([]*model.FeatureDependency, 0)
	for _, d := range r.st.dependencies {
		if d.FeatureCode == featureCode {
			deps = append(deps, copyDependency(d))
		}
	}
	sort.Slice(deps, func(i, j int) bool { return deps[i].DependsOnCode < deps[j].DependsOnCode })
	return deps, nil
}

func (r *dependencyRepository) Update(ctx context.Context, dep *model.FeatureDependency) (*model.FeatureDependency, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	key := model.DependencyKey(dep.FeatureCode, dep.DependsOnCode)
	existing, exists := r.st.dependencies[key]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "dependency not found",
			goerr.V("feature", dep.FeatureCode), goerr.V("depends_on", dep.DependsOnCode))
	}

	updated := copyDependency(dep)
	updated.CreatedAt = existing.CreatedAt
	updated.CreatedBy = existing.CreatedBy
	stamp(r.st.now(), &updated.CreatedAt, &updated.UpdatedAt)
	r.st.dependencies[key] = updated
	return copyDependency(updated), nil
}

func (r *dependencyRepository) Delete(ctx context.Context, featureCode, dependsOnCode string) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	key := model.DependencyKey(featureCode, dependsOnCode)
	if _, exists := r.st.dependencies[key]; !exists {
		return goerr.Wrap(ErrNotFound, "dependency not found",
			goerr.V("feature", featureCode), goerr.V("depends_on", dependsOnCode))
	}
	delete(r.st.dependencies, key)
	return nil
}

func (r *dependencyRepository) DeleteByFeature(ctx context.Context, featureCode string) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	for key, d := range r.st.dependencies {
		if d.FeatureCode == featureCode || d.DependsOnCode == featureCode {
			delete(r.st.dependencies, key)
		}
	}
	return nil
}
