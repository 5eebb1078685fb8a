package model

import (
	"time"

	"github.com/secmon-lab/releaseboard/pkg/domain/types"
)

// MaxFeatureOwnerLength bounds Feature.FeatureOwner
const MaxFeatureOwnerLength = 255

// Feature is a unit of work tracked under a product and optionally a release
type Feature struct {
	Code        string
	Title       string
	Description string
	Status      types.FeatureStatus
	ProductCode string
	ReleaseCode string // empty when unscheduled
	CreatedBy   string
	AssignedTo  string

	PlannedCompletionDate *time.Time
	ActualCompletionDate  *time.Time
	PlanningStatus        types.PlanningStatus
	FeatureOwner          string
	BlockageReason        string

	// StatusChangedAt is set when the feature status last changed.
	StatusChangedAt time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Owner is the person accountable for the feature: the planning owner if set,
// otherwise the assignee.
func (x *Feature) Owner() string {
	if x.FeatureOwner != "" {
		return x.FeatureOwner
	}
	return x.AssignedTo
}

// Stakeholders returns the non-empty creator and assignee identities
func (x *Feature) Stakeholders() []string {
	var ids []string
	if x.CreatedBy != "" {
		ids = append(ids, x.CreatedBy)
	}
	if x.AssignedTo != "" {
		ids = append(ids, x.AssignedTo)
	}
	return ids
}

// CompletedAt returns when the feature was completed, falling back to the
// time it entered RELEASED.
func (x *Feature) CompletedAt() time.Time {
	if x.ActualCompletionDate != nil {
		return *x.ActualCompletionDate
	}
	return x.StatusChangedAt
}
