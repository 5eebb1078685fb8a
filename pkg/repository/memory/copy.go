package memory

import (
	"time"

	"github.com/secmon-lab/releaseboard/pkg/domain/model"
)

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func copyProduct(p *model.Product) *model.Product {
	v := *p
	return &v
}

func copyRelease(r *model.Release) *model.Release {
	v := *r
	v.ReleasedAt = copyTime(r.ReleasedAt)
	return &v
}

func copyFeature(f *model.Feature) *model.Feature {
	v := *f
	v.PlannedCompletionDate = copyTime(f.PlannedCompletionDate)
	v.ActualCompletionDate = copyTime(f.ActualCompletionDate)
	return &v
}

func copyDependency(d *model.FeatureDependency) *model.FeatureDependency {
	v := *d
	if d.Notes != nil {
		notes := *d.Notes
		v.Notes = &notes
	}
	return &v
}

func copyUsageEvent(e *model.UsageEvent) *model.UsageEvent {
	v := *e
	if e.Context != nil {
		v.Context = make(map[string]string, len(e.Context))
		for k, val := range e.Context {
			v.Context[k] = val
		}
	}
	return &v
}

func copyErrorLog(e *model.ErrorLogEntry) *model.ErrorLogEntry {
	v := *e
	v.ResolvedAt = copyTime(e.ResolvedAt)
	return &v
}

func copyNotification(n *model.Notification) *model.Notification {
	v := *n
	v.ReadAt = copyTime(n.ReadAt)
	return &v
}

func copyDeliveryFailure(f *model.DeliveryFailure) *model.DeliveryFailure {
	v := *f
	return &v
}

// stamp fills zero CreatedAt and always refreshes UpdatedAt
func stamp(now time.Time, createdAt, updatedAt *time.Time) {
	if createdAt.IsZero() {
		*createdAt = now
	}
	*updatedAt = now
}
