package sql

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/releaseboard/pkg/domain/interfaces"
	"github.com/secmon-lab/releaseboard/pkg/domain/model"
	"gorm.io/gorm"
)

type featureRepository struct {
	db *gorm.DB
}

func (r *featureRepository) Create(ctx context.Context, feature *model.Feature) (*model.Feature, error) {
	row := featureFromModel(feature)
	if row.StatusChangedAt.IsZero() {
		row.StatusChangedAt = r.db.NowFunc()
		if !row.CreatedAt.IsZero() {
			row.StatusChangedAt = row.CreatedAt
		}
	}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		if isDuplicated(err) {
			return nil, goerr.Wrap(interfaces.ErrAlreadyExists, "feature already exists", goerr.V("code", feature.Code))
		}
		return nil, goerr.Wrap(err, "failed to create feature", goerr.V("code", feature.Code))
	}
	return row.toModel(), nil
}

func (r *featureRepository) Get(ctx context.Context, code string) (*model.Feature, error) {
	var row featureRow
	if err := r.db.WithContext(ctx).Where("code = ?", code).Take(&row).Error; err != nil {
		if isNotFound(err) {
			return nil, goerr.Wrap(ErrNotFound, "feature not found", goerr.V("code", code))
		}
		return nil, goerr.Wrap(err, "failed to get feature", goerr.V("code", code))
	}
	return row.toModel(), nil
}

func (r *featureRepository) List(ctx context.Context, filter interfaces.FeatureFilter) ([]*model.Feature, error) {
	q := r.db.WithContext(ctx).Order("code")
	if filter.ProductCode != "" {
		q = q.Where("product_code = ?", filter.ProductCode)
	}
	if filter.ReleaseCode != "" {
		q = q.Where("release_code = ?", filter.ReleaseCode)
	}

	var rows []featureRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, goerr.Wrap(err, "failed to list features")
	}

	features := make([]*model.Feature, 0, len(rows))
	for i := range rows {
		features = append(features, rows[i].toModel())
	}
	return features, nil
}

func (r *featureRepository) Update(ctx context.Context, feature *model.Feature) (*model.Feature, error) {
	var result *model.Feature
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing featureRow
		if err := tx.Where("code = ?", feature.Code).Take(&existing).Error; err != nil {
			if isNotFound(err) {
				return goerr.Wrap(ErrNotFound, "feature not found", goerr.V("code", feature.Code))
			}
			return goerr.Wrap(err, "failed to get feature", goerr.V("code", feature.Code))
		}

		row := featureFromModel(feature)
		row.CreatedAt = existing.CreatedAt
		if err := tx.Save(row).Error; err != nil {
			return goerr.Wrap(err, "failed to update feature", goerr.V("code", feature.Code))
		}
		result = row.toModel()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *featureRepository) Delete(ctx context.Context, code string) error {
	res := r.db.WithContext(ctx).Where("code = ?", code).Delete(&featureRow{})
	if res.Error != nil {
		return goerr.Wrap(res.Error, "failed to delete feature", goerr.V("code", code))
	}
	if res.RowsAffected == 0 {
		return goerr.Wrap(ErrNotFound, "feature not found", goerr.V("code", code))
	}
	return nil
}

type dependencyRepository struct {
	db *gorm.DB
}

func (r *dependencyRepository) Create(ctx context.Context, dep *model.FeatureDependency) (*model.FeatureDependency, error) {
	row := dependencyFromModel(dep)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		if isDuplicated(err) {
			return nil, goerr.Wrap(interfaces.ErrAlreadyExists, "dependency already exists",
				goerr.V("feature", dep.FeatureCode), goerr.V("depends_on", dep.DependsOnCode))
		}
		return nil, goerr.Wrap(err, "failed to create dependency",
			goerr.V("feature", dep.FeatureCode), goerr.V("depends_on", dep.DependsOnCode))
	}
	return row.toModel(), nil
}

func (r *dependencyRepository) Get(ctx context.Context, featureCode, dependsOnCode string) (*model.FeatureDependency, error) {
	var row dependencyRow
	err := r.db.WithContext(ctx).
		Where("feature_code = ? AND depends_on_code = ?", featureCode, dependsOnCode).
		Take(&row).Error
	if err != nil {
		if isNotFound(err) {
			return nil, goerr.Wrap(ErrNotFound, "dependency not found",
				goerr.V("feature", featureCode), goerr.V("depends_on", dependsOnCode))
		}
		return nil, goerr.Wrap(err, "failed to get dependency",
			goerr.V("feature", featureCode), goerr.V("depends_on", dependsOnCode))
	}
	return row.toModel(), nil
}

func (r *dependencyRepository) ListByFeature(ctx context.Context, featureCode string) ([]*model.FeatureDependency, error) {
	var rows []dependencyRow
	if err := r.db.WithContext(ctx).Where("feature_code = ?", featureCode).
		Order("depends_on_code").Find(&rows).Error; err != nil {
		return nil, goerr.Wrap(err, "failed to list dependencies", goerr.V("feature", featureCode))
	}

	deps := make([]*model.FeatureDependency, 0, len(rows))
	for i := range rows {
		deps = append(deps, rows[i].toModel())
	}
	return deps, nil
}

func (r *dependencyRepository) Update(ctx context.Context, dep *model.FeatureDependency) (*model.FeatureDependency, error) {
	var result *model.FeatureDependency
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing dependencyRow
		if err := tx.Where("feature_code = ? AND depends_on_code = ?", dep.FeatureCode, dep.DependsOnCode).
			Take(&existing).Error; err != nil {
			if isNotFound(err) {
				return goerr.Wrap(ErrNotFound, "dependency not found",
					goerr.V("feature", dep.FeatureCode), goerr.V("depends_on", dep.DependsOnCode))
			}
			return goerr.Wrap(err, "failed to get dependency",
				goerr.V("feature", dep.FeatureCode), goerr.V("depends_on", dep.DependsOnCode))
		}

		row := dependencyFromModel(dep)
		row.CreatedAt = existing.CreatedAt
		row.CreatedBy = existing.CreatedBy
		if err := tx.Save(row).Error; err != nil {
			return goerr.Wrap(err, "failed to update dependency",
				goerr.V("feature", dep.FeatureCode), goerr.V("depends_on", dep.DependsOnCode))
		}
		result = row.toModel()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *dependencyRepository) Delete(ctx context.Context, featureCode, dependsOnCode string) error {
	res := r.db.WithContext(ctx).
		Where("feature_code = ? AND depends_on_code = ?", featureCode, dependsOnCode).
		Delete(&dependencyRow{})
	if res.Error != nil {
		return goerr.Wrap(res.Error, "failed to delete dependency",
			goerr.V("feature", featureCode), goerr.V("depends_on", dependsOnCode))
	}
	if res.RowsAffected == 0 {
		return goerr.Wrap(ErrNotFound, "dependency not found",
			goerr.V("feature", featureCode), goerr.V("depends_on", dependsOnCode))
	}
	return nil
}

func (r *dependencyRepository) DeleteByFeature(ctx context.Context, featureCode string) error {
	err := r.db.WithContext(ctx).
		Where("feature_code = ? OR depends_on_code = ?", featureCode, featureCode).
		Delete(&dependencyRow{}).Error
	if err != nil {
		return goerr.Wrap(err, "failed to delete dependencies", goerr.V("feature", featureCode))
	}
	return nil
}
