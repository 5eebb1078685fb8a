package firestore

import (
	"context"
	"sort"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/releaseboard/pkg/domain/interfaces"
	"github.com/secmon-lab/releaseboard/pkg/domain/model"
)

type releaseRepository struct {
	client *firestore.Client
	cols   *collections
}

func (r *releaseRepository) Create(ctx context.Context, release *model.Release) (*model.Release, error) {
	created := *release
	now := r.cols.now()
	if created.CreatedAt.IsZero() {
		created.CreatedAt = now
	}
	created.UpdatedAt = now

	releaseRef := r.cols.ref(CollectionReleases).Doc(created.Code)
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(releaseRef); err == nil {
			return goerr.Wrap(interfaces.ErrAlreadyExists, "release already exists", goerr.V("code", created.Code))
		} else if !isNotFound(err) {
			return goerr.Wrap(err, "failed to get release", goerr.V("code", created.Code))
		}
		if err := r.checkParent(tx, created.ParentCode); err != nil {
			return err
		}
		return tx.Create(releaseRef, &created)
	})
	if err != nil {
		if isAlreadyExists(err) {
			return nil, goerr.Wrap(interfaces.ErrAlreadyExists, "release already exists", goerr.V("code", created.Code))
		}
		return nil, goerr.Wrap(err, "failed to create release", goerr.V("code", created.Code))
	}
	return &created, nil
}

// checkParent reads the parent inside tx so a concurrent delete of the
// parent conflicts with the write.
func (r *releaseRepository) checkParent(tx *firestore.Transaction, parent string) error {
	if parent == "" {
		return nil
	}
	if _, err := tx.Get(r.cols.ref(CollectionReleases).Doc(parent)); err != nil {
		if isNotFound(err) {
			return goerr.Wrap(interfaces.ErrParentNotFound, "parent release not found", goerr.V("parent_code", parent))
		}
		return goerr.Wrap(err, "failed to get parent release", goerr.V("parent_code", parent))
	}
	return nil
}

func (r *releaseRepository) Get(ctx context.Context, code string) (*model.Release, error) {
	doc, err := r.cols.ref(CollectionReleases).Doc(code).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, goerr.Wrap(ErrNotFound, "release not found", goerr.V("code", code))
		}
		return nil, goerr.Wrap(err, "failed to get release", goerr.V("code", code))
	}

	var rel model.Release
	if err := doc.DataTo(&rel); err != nil {
		return nil, goerr.Wrap(err, "failed to decode release", goerr.V("code", code))
	}
	return &rel, nil
}

func (r *releaseRepository) List(ctx context.Context, productCode string) ([]*model.Release, error) {
	q := r.cols.ref(CollectionReleases).Query
	if productCode != "" {
		q = q.Where("ProductCode", "==", productCode)
	}

	releases, err := readAll[model.Release](q.Documents(ctx), "releases")
	if err != nil {
		return nil, err
	}
	sort.Slice(releases, func(i, j int) bool {
		if !releases[i].CreatedAt.Equal(releases[j].CreatedAt) {
			return releases[i].CreatedAt.Before(releases[j].CreatedAt)
		}
		return releases[i].Code < releases[j].Code
	})
	return releases, nil
}

func (r *releaseRepository) Update(ctx context.Context, code string, mutate interfaces.ReleaseMutation) (*model.Release, []*model.Notification, error) {
	releaseRef := r.cols.ref(CollectionReleases).Doc(code)
	featureQuery := r.cols.ref(CollectionFeatures).Where("ReleaseCode", "==", code)

	var (
		updated *model.Release
		stored  []*model.Notification
	)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(releaseRef)
		if err != nil {
			if isNotFound(err) {
				return goerr.Wrap(ErrNotFound, "release not found", goerr.V("code", code))
			}
			return goerr.Wrap(err, "failed to get release", goerr.V("code", code))
		}

		var current model.Release
		if err := doc.DataTo(&current); err != nil {
			return goerr.Wrap(err, "failed to decode release", goerr.V("code", code))
		}

		features, err := readAll[model.Feature](tx.Documents(featureQuery), "features")
		if err != nil {
			return err
		}
		sort.Slice(features, func(i, j int) bool { return features[i].Code < features[j].Code })

		next := current
		notifications, err := mutate(&next, features)
		if err != nil {
			return err
		}
		next.Code = current.Code
		next.CreatedAt = current.CreatedAt
		next.UpdatedAt = r.cols.now()
		if next.ParentCode != current.ParentCode {
			if err := r.checkParent(tx, next.ParentCode); err != nil {
				return err
			}
		}

		if err := tx.Set(releaseRef, &next); err != nil {
			return goerr.Wrap(err, "failed to update release", goerr.V("code", code))
		}

		stored = make([]*model.Notification, 0, len(notifications))
		for _, n := range notifications {
			c := *n
			if c.CreatedAt.IsZero() {
				c.CreatedAt = next.UpdatedAt
			}
			ref := r.cols.ref(CollectionNotifications).Doc(c.ID)
			if err := tx.Create(ref, &c); err != nil {
				return goerr.Wrap(err, "failed to create notification", goerr.V("id", c.ID))
			}
			stored = append(stored, &c)
		}

		updated = &next
		return nil
	})
	if err != nil {
		return nil, nil, goerr.Wrap(err, "release update transaction failed", goerr.V("code", code))
	}

	return updated, stored, nil
}

func (r *releaseRepository) Delete(ctx context.Context, code string) error {
	releaseRef := r.cols.ref(CollectionReleases).Doc(code)
	childQuery := r.cols.ref(CollectionReleases).Where("ParentCode", "==", code)
	featureQuery := r.cols.ref(CollectionFeatures).Where("ReleaseCode", "==", code)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(releaseRef); err != nil {
			if isNotFound(err) {
				return goerr.Wrap(ErrNotFound, "release not found", goerr.V("code", code))
			}
			return goerr.Wrap(err, "failed to get release", goerr.V("code", code))
		}

		children, err := tx.Documents(childQuery).GetAll()
		if err != nil {
			return goerr.Wrap(err, "failed to query child releases", goerr.V("code", code))
		}
		features, err := tx.Documents(featureQuery).GetAll()
		if err != nil {
			return goerr.Wrap(err, "failed to query release features", goerr.V("code", code))
		}

		now := r.cols.now()
		for _, child := range children {
			if err := tx.Update(child.Ref, []firestore.Update{
				{Path: "ParentCode", Value: ""},
				{Path: "UpdatedAt", Value: now},
			}); err != nil {
				return goerr.Wrap(err, "failed to detach child release", goerr.V("child", child.Ref.ID))
			}
		}
		for _, f := range features {
			if err := tx.Update(f.Ref, []firestore.Update{
				{Path: "ReleaseCode", Value: ""},
				{Path: "UpdatedAt", Value: now},
			}); err != nil {
				return goerr.Wrap(err, "failed to unschedule feature", goerr.V("feature", f.Ref.ID))
			}
		}

		return tx.Delete(releaseRef)
	})
	if err != nil {
		return goerr.Wrap(err, "release delete transaction failed", goerr.V("code", code))
	}
	return nil
}
