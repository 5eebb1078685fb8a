package firestore

import (
	"context"
	"sort"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/releaseboard/pkg/domain/interfaces"
	"github.com/secmon-lab/releaseboard/pkg/domain/model"
)

type featureRepository struct {
	client *firestore.Client
	cols   *collections
}

func (r *featureRepository) Create(ctx context.Context, feature *model.Feature) (*model.Feature, error) {
	created := *feature
	now := r.cols.now()
	if created.CreatedAt.IsZero() {
		created.CreatedAt = now
	}
	if created.StatusChangedAt.IsZero() {
		created.StatusChangedAt = created.CreatedAt
	}
	created.UpdatedAt = now

	if _, err := r.cols.ref(CollectionFeatures).Doc(created.Code).Create(ctx, &created); err != nil {
		if isAlreadyExists(err) {
			return nil, goerr.Wrap(interfaces.ErrAlreadyExists, "feature already exists", goerr.V("code", created.Code))
		}
		return nil, goerr.Wrap(err, "failed to create feature", goerr.V("code", created.Code))
	}
	return &created, nil
}

func (r *featureRepository) Get(ctx context.Context, code string) (*model.Feature, error) {
	doc, err := r.cols.ref(CollectionFeatures).Doc(code).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, goerr.Wrap(ErrNotFound, "feature not found", goerr.V("code", code))
		}
		return nil, goerr.Wrap(err, "failed to get feature", goerr.V("code", code))
	}

	var f model.Feature
	if err := doc.DataTo(&f); err != nil {
		return nil, goerr.Wrap(err, "failed to decode feature", goerr.V("code", code))
	}
	return &f, nil
}

func (r *featureRepository) List(ctx context.Context, filter interfaces.FeatureFilter) ([]*model.Feature, error) {
	q := r.cols.ref(CollectionFeatures).Query
	if filter.ProductCode != "" {
		q = q.Where("ProductCode", "==", filter.ProductCode)
	}
	if filter.ReleaseCode != "" {
		q = q.Where("ReleaseCode", "==", filter.ReleaseCode)
	}

	features, err := readAll[model.Feature](q.Documents(ctx), "features")
	if err != nil {
		return nil, err
	}
	sort.Slice(features, func(i, j int) bool { return features[i].Code < features[j].Code })
	return features, nil
}

func (r *featureRepository) Update(ctx context.Context, feature *model.Feature) (*model.Feature, error) {
	ref := r.cols.ref(CollectionFeatures).Doc(feature.Code)

	var updated model.Feature
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil {
			if isNotFound(err) {
				return goerr.Wrap(ErrNotFound, "feature not found", goerr.V("code", feature.Code))
			}
			return goerr.Wrap(err, "failed to get feature", goerr.V("code", feature.Code))
		}
		var existing model.Feature
		if err := doc.DataTo(&existing); err != nil {
			return goerr.Wrap(err, "failed to decode feature", goerr.V("code", feature.Code))
		}

		updated = *feature
		updated.CreatedAt = existing.CreatedAt
		updated.UpdatedAt = r.cols.now()
		return tx.Set(ref, &updated)
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update feature", goerr.V("code", feature.Code))
	}
	return &updated, nil
}

func (r *featureRepository) Delete(ctx context.Context, code string) error {
	if _, err := r.cols.ref(CollectionFeatures).Doc(code).Delete(ctx, firestore.Exists); err != nil {
		if isNotFound(err) {
			return goerr.Wrap(ErrNotFound, "feature not found", goerr.V("code", code))
		}
		return goerr.Wrap(err, "failed to delete feature", goerr.V("code", code))
	}
	return nil
}

type dependencyRepository struct {
	client *firestore.Client
	cols   *collections
}

func (r *dependencyRepository) doc(featureCode, dependsOnCode string) *firestore.DocumentRef {
	return r.cols.ref(CollectionDependencies).Doc(model.DependencyKey(featureCode, dependsOnCode))
}

func (r *dependencyRepository) Create(ctx context.Context, dep *model.FeatureDependency) (*model.FeatureDependency, error) {
	created := *dep
	now := r.cols.now()
	if created.CreatedAt.IsZero() {
		created.CreatedAt = now
	}
	created.UpdatedAt = now

	if _, err := r.doc(dep.FeatureCode, dep.DependsOnCode).Create(ctx, &created); err != nil {
		if isAlreadyExists(err) {
			return nil, goerr.Wrap(interfaces.ErrAlreadyExists, "dependency already exists",
				goerr.V("feature", dep.FeatureCode), goerr.V("depends_on", dep.DependsOnCode))
		}
		return nil, goerr.Wrap(err, "failed to create dependency",
			goerr.V("feature", dep.FeatureCode), goerr.V("depends_on", dep.DependsOnCode))
	}
	return &created, nil
}

func (r *dependencyRepository) Get(ctx context.Context, featureCode, dependsOnCode string) (*model.FeatureDependency, error) {
	doc, err := r.doc(featureCode, dependsOnCode).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, goerr.Wrap(ErrNotFound, "dependency not found",
				goerr.V("feature", featureCode), goerr.V("depends_on", dependsOnCode))
		}
		return nil, goerr.Wrap(err, "failed to get dependency",
			goerr.V("feature", featureCode), goerr.V("depends_on", dependsOnCode))
	}

	var d model.FeatureDependency
	if err := doc.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to decode dependency", goerr.V("doc_id", doc.Ref.ID))
	}
	return &d, nil
}

func (r *dependencyRepository) ListByFeature(ctx context.Context, featureCode string) ([]*model.FeatureDependency, error) {
	q := r.cols.ref(CollectionDependencies).Where("FeatureCode", "==", featureCode)
	deps, err := readAll[model.FeatureDependency](q.Documents(ctx), "dependencies")
	if err != nil {
		return nil, err
	}
	sort.Slice(deps, func(i, j int) bool { return deps[i].DependsOnCode < deps[j].DependsOnCode })
	return deps, nil
}

func (r *dependencyRepository) Update(ctx context.Context, dep *model.FeatureDependency) (*model.FeatureDependency, error) {
	ref := r.doc(dep.FeatureCode, dep.DependsOnCode)

	var updated model.FeatureDependency
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil {
			if isNotFound(err) {
				return goerr.Wrap(ErrNotFound, "dependency not found",
					goerr.V("feature", dep.FeatureCode), goerr.V("depends_on", dep.DependsOnCode))
			}
			return goerr.Wrap(err, "failed to get dependency", goerr.V("doc_id", ref.ID))
		}
		var existing model.FeatureDependency
		if err := doc.DataTo(&existing); err != nil {
			return goerr.Wrap(err, "failed to decode dependency", goerr.V("doc_id", ref.ID))
		}

		updated = *dep
		updated.CreatedAt = existing.CreatedAt
		updated.CreatedBy = existing.CreatedBy
		updated.UpdatedAt = r.cols.now()
		return tx.Set(ref, &updated)
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update dependency", goerr.V("doc_id", ref.ID))
	}
	return &updated, nil
}

func (r *dependencyRepository) Delete(ctx context.Context, featureCode, dependsOnCode string) error {
	if _, err := r.doc(featureCode, dependsOnCode).Delete(ctx, firestore.Exists); err != nil {
		if isNotFound(err) {
			return goerr.Wrap(ErrNotFound, "dependency not found",
				goerr.V("feature", featureCode), goerr.V("depends_on", dependsOnCode))
		}
		return goerr.Wrap(err, "failed to delete dependency",
			goerr.V("feature", featureCode), goerr.V("depends_on", dependsOnCode))
	}
	return nil
}

func (r *dependencyRepository) DeleteByFeature(ctx context.Context, featureCode string) error {
	col := r.cols.ref(CollectionDependencies)
	queries := []firestore.Query{
		col.Where("FeatureCode", "==", featureCode),
		col.Where("DependsOnCode", "==", featureCode),
	}

	return r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		var refs []*firestore.DocumentRef
		for _, q := range queries {
			docs, err := tx.Documents(q).GetAll()
			if err != nil {
				return goerr.Wrap(err, "failed to query dependencies", goerr.V("feature", featureCode))
			}
			for _, d := range docs {
				refs = append(refs, d.Ref)
			}
		}
		for _, ref := range refs {
			if err := tx.Delete(ref); err != nil {
				return goerr.Wrap(err, "failed to delete dependency", goerr.V("doc_id", ref.ID))
			}
		}
		return nil
	})
}
