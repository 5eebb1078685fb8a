package model

import (
	"time"

	"github.com/secmon-lab/releaseboard/pkg/domain/types"
)

// Release is a versioned delivery of features under a product
type Release struct {
	Code        string
	ProductCode string
	Description string
	Status      types.ReleaseStatus
	ParentCode  string // empty when the release has no parent
	ReleasedAt  *time.Time
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HasParent reports whether the release is linked under another release
func (x *Release) HasParent() bool {
	return x.ParentCode != ""
}

// IsReleased reports whether the release has shipped
func (x *Release) IsReleased() bool {
	switch x.Status {
	case types.ReleaseStatusReleased, types.ReleaseStatusCompleted:
		return true
	}
	return false
}

// StatusTransition records a status change applied to a release
type StatusTransition struct {
	ReleaseCode string
	ProductCode string
	From        types.ReleaseStatus
	To          types.ReleaseStatus
	ActorID     string
	At          time.Time
}

// Changed reports whether the status actually moved
func (x StatusTransition) Changed() bool {
	return x.From != x.To
}

// Cascades reports whether stakeholders must be notified
func (x StatusTransition) Cascades() bool {
	return x.Changed() && x.To.TriggersCascade()
}
