package memory

import (
	"context"
	"sort"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/releaseboard/pkg/domain/interfaces"
	"github.com/secmon-lab/releaseboard/pkg/domain/model"
)

type releaseRepository struct {
	st *store
}

func (r *releaseRepository) Create(ctx context.Context, release *model.Release) (*model.Release, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	if _, exists := r.st.releases[release.Code]; exists {
		return nil, goerr.Wrap(interfaces.ErrAlreadyExists, "release already exists", goerr.V("code", release.Code))
	}
	if err := r.checkParent(release.ParentCode); err != nil {
		return nil, err
	}

	created := copyRelease(release)
	stamp(r.st.now(), &created.CreatedAt, &created.UpdatedAt)
	r.st.releases[created.Code] = created
	return copyRelease(created), nil
}

// checkParent requires a non-empty parent code to name a stored release.
// Callers hold the write lock.
func (r *releaseRepository) checkParent(parent string) error {
	if parent == "" {
		return nil
	}
	if _, exists := r.st.releases[parent]; !exists {
		return goerr.Wrap(interfaces.ErrParentNotFound, "parent release not found", goerr.V("parent_code", parent))
	}
	return nil
}

func (r *releaseRepository) Get(ctx context.Context, code string) (*model.Release, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	rel, exists := r.st.releases[code]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "release not found", goerr.V("code", code))
	}
	return copyRelease(rel), nil
}

func (r *releaseRepository) List(ctx context.Context, productCode string) ([]*model.Release, error) {
	r.st.mu.RLock()
	defer r.st.mu.RUnlock()

	releases := make([]*model.Release, 0, len(r.st.releases))
	for _, rel := range r.st.releases {
		if productCode != "" && rel.ProductCode != productCode {
			continue
		}
		releases = append(releases, copyRelease(rel))
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
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	current, exists := r.st.releases[code]
	if !exists {
		return nil, nil, goerr.Wrap(ErrNotFound, "release not found", goerr.V("code", code))
	}

	var features []*model.Feature
	for _, f := range r.st.features {
		if f.ReleaseCode == code {
			features = append(features, copyFeature(f))
		}
	}
	sort.Slice(features, func(i, j int) bool { return features[i].Code < features[j].Code })

	updated := copyRelease(current)
	notifications, err := mutate(updated, features)
	if err != nil {
		return nil, nil, err
	}
	updated.Code = current.Code
	updated.CreatedAt = current.CreatedAt
	updated.UpdatedAt = r.st.now()
	if updated.ParentCode != current.ParentCode {
		if err := r.checkParent(updated.ParentCode); err != nil {
			return nil, nil, err
		}
	}

	for _, n := range notifications {
		if _, dup := r.st.notifications[n.ID]; dup {
			return nil, nil, goerr.Wrap(interfaces.ErrAlreadyExists, "notification already exists", goerr.V("id", n.ID))
		}
	}

	r.st.releases[code] = updated
	stored := make([]*model.Notification, 0, len(notifications))
	for _, n := range notifications {
		c := copyNotification(n)
		if c.CreatedAt.IsZero() {
			c.CreatedAt = updated.UpdatedAt
		}
		r.st.notifications[c.ID] = c
		stored = append(stored, copyNotification(c))
	}

	return copyRelease(updated), stored, nil
}

func (r *releaseRepository) Delete(ctx context.Context, code string) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	if _, exists := r.st.releases[code]; !exists {
		return goerr.Wrap(ErrNotFound, "release not found", goerr.V("code", code))
	}

	now := r.st.now()
	for _, rel := range r.st.releases {
		if rel.ParentCode == code {
			rel.ParentCode = ""
			rel.UpdatedAt = now
		}
	}
	for _, f := range r.st.features {
		if f.ReleaseCode == code {
			f.ReleaseCode = ""
			f.UpdatedAt = now
		}
	}
	delete(r.st.releases, code)
	return nil
}
