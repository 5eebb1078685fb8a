package sql

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/releaseboard/pkg/domain/interfaces"
	"github.com/secmon-lab/releaseboard/pkg/domain/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type releaseRepository struct {
	db *gorm.DB
}

func (r *releaseRepository) Create(ctx context.Context, release *model.Release) (*model.Release, error) {
	row := releaseFromModel(release)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkParent(tx, row.ParentCode); err != nil {
			return err
		}
		if err := tx.Create(row).Error; err != nil {
			if isDuplicated(err) {
				return goerr.Wrap(interfaces.ErrAlreadyExists, "release already exists", goerr.V("code", release.Code))
			}
			return goerr.Wrap(err, "failed to create release", goerr.V("code", release.Code))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return row.toModel(), nil
}

// checkParent locks the parent row for the rest of tx, so a concurrent
// delete either waits for the write or makes it fail here.
func checkParent(tx *gorm.DB, parent string) error {
	if parent == "" {
		return nil
	}
	var row releaseRow
	if err := tx.Clauses(clause.Locking{Strength: clause.LockingStrengthShare}).
		Where("code = ?", parent).Take(&row).Error; err != nil {
		if isNotFound(err) {
			return goerr.Wrap(interfaces.ErrParentNotFound, "parent release not found", goerr.V("parent_code", parent))
		}
		return goerr.Wrap(err, "failed to get parent release", goerr.V("parent_code", parent))
	}
	return nil
}

func (r *releaseRepository) Get(ctx context.Context, code string) (*model.Release, error) {
	var row releaseRow
	if err := r.db.WithContext(ctx).Where("code = ?", code).Take(&row).Error; err != nil {
		if isNotFound(err) {
			return nil, goerr.Wrap(ErrNotFound, "release not found", goerr.V("code", code))
		}
		return nil, goerr.Wrap(err, "failed to get release", goerr.V("code", code))
	}
	return row.toModel(), nil
}

func (r *releaseRepository) List(ctx context.Context, productCode string) ([]*model.Release, error) {
	q := r.db.WithContext(ctx).Order("created_at").Order("code")
	if productCode != "" {
		q = q.Where("product_code = ?", productCode)
	}

	var rows []releaseRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, goerr.Wrap(err, "failed to list releases", goerr.V("product", productCode))
	}

	releases := make([]*model.Release, 0, len(rows))
	for i := range rows {
		releases = append(releases, rows[i].toModel())
	}
	return releases, nil
}

func (r *releaseRepository) Update(ctx context.Context, code string, mutate interfaces.ReleaseMutation) (*model.Release, []*model.Notification, error) {
	var (
		updated *model.Release
		stored  []*model.Notification
	)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current releaseRow
		if err := tx.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
			Where("code = ?", code).Take(&current).Error; err != nil {
			if isNotFound(err) {
				return goerr.Wrap(ErrNotFound, "release not found", goerr.V("code", code))
			}
			return goerr.Wrap(err, "failed to get release", goerr.V("code", code))
		}

		var featureRows []featureRow
		if err := tx.Where("release_code = ?", code).Order("code").Find(&featureRows).Error; err != nil {
			return goerr.Wrap(err, "failed to list release features", goerr.V("code", code))
		}
		features := make([]*model.Feature, 0, len(featureRows))
		for i := range featureRows {
			features = append(features, featureRows[i].toModel())
		}

		next := current.toModel()
		notifications, err := mutate(next, features)
		if err != nil {
			return err
		}
		next.Code = current.Code
		next.CreatedAt = current.CreatedAt
		next.UpdatedAt = tx.NowFunc()
		if next.ParentCode != current.ParentCode {
			if err := checkParent(tx, next.ParentCode); err != nil {
				return err
			}
		}

		if err := tx.Save(releaseFromModel(next)).Error; err != nil {
			return goerr.Wrap(err, "failed to update release", goerr.V("code", code))
		}

		stored = make([]*model.Notification, 0, len(notifications))
		if len(notifications) > 0 {
			rows := make([]*notificationRow, 0, len(notifications))
			for _, n := range notifications {
				row := notificationFromModel(n)
				if row.CreatedAt.IsZero() {
					row.CreatedAt = next.UpdatedAt
				}
				rows = append(rows, row)
			}
			if err := tx.Create(rows).Error; err != nil {
				return goerr.Wrap(err, "failed to create notifications", goerr.V("code", code))
			}
			for _, row := range rows {
				stored = append(stored, row.toModel())
			}
		}

		updated = next
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return updated, stored, nil
}

func (r *releaseRepository) Delete(ctx context.Context, code string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("code = ?", code).Delete(&releaseRow{})
		if res.Error != nil {
			return goerr.Wrap(res.Error, "failed to delete release", goerr.V("code", code))
		}
		if res.RowsAffected == 0 {
			return goerr.Wrap(ErrNotFound, "release not found", goerr.V("code", code))
		}

		now := tx.NowFunc()
		if err := tx.Model(&releaseRow{}).Where("parent_code = ?", code).
			Updates(map[string]any{"parent_code": "", "updated_at": now}).Error; err != nil {
			return goerr.Wrap(err, "failed to detach child releases", goerr.V("code", code))
		}
		if err := tx.Model(&featureRow{}).Where("release_code = ?", code).
			Updates(map[string]any{"release_code": "", "updated_at": now}).Error; err != nil {
			return goerr.Wrap(err, "failed to unschedule features", goerr.V("code", code))
		}
		return nil
	})
}
