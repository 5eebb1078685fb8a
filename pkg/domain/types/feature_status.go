package types

import "github.com/m-mizutani/goerr/v2"

// FeatureStatus represents the delivery status of a feature
type FeatureStatus string

const (
	FeatureStatusNew        FeatureStatus = "NEW"
	FeatureStatusInProgress FeatureStatus = "IN_PROGRESS"
	FeatureStatusOnHold     FeatureStatus = "ON_HOLD"
	FeatureStatusReleased   FeatureStatus = "RELEASED"
)

// AllFeatureStatuses returns all valid feature statuses
func AllFeatureStatuses() []FeatureStatus {
	return []FeatureStatus{
		FeatureStatusNew,
		FeatureStatusInProgress,
		FeatureStatusOnHold,
		FeatureStatusReleased,
	}
}

// IsValid checks if the feature status is valid
func (s FeatureStatus) IsValid() bool {
	switch s {
	case FeatureStatusNew,
		FeatureStatusInProgress,
		FeatureStatusOnHold,
		FeatureStatusReleased:
		return true
	default:
		return false
	}
}

// Normalize treats an empty status as NEW.
func (s FeatureStatus) Normalize() FeatureStatus {
	if s == "" {
		return FeatureStatusNew
	}
	return s
}

func (s FeatureStatus) String() string {
	return string(s)
}

// ParseFeatureStatus parses a string into a FeatureStatus
func ParseFeatureStatus(s string) (FeatureStatus, error) {
	status := FeatureStatus(s)
	if !status.IsValid() {
		return "", goerr.New("invalid feature status", goerr.V("status", s))
	}
	return status, nil
}

// PlanningStatus tracks planning progress independently of delivery status
type PlanningStatus string

const (
	PlanningStatusNotStarted PlanningStatus = "NOT_STARTED"
	PlanningStatusInProgress PlanningStatus = "IN_PROGRESS"
	PlanningStatusBlocked    PlanningStatus = "BLOCKED"
	PlanningStatusDone       PlanningStatus = "DONE"
)

func (s PlanningStatus) IsValid() bool {
	switch s {
	case PlanningStatusNotStarted,
		PlanningStatusInProgress,
		PlanningStatusBlocked,
		PlanningStatusDone:
		return true
	default:
		return false
	}
}

func (s PlanningStatus) String() string {
	return string(s)
}

// ParsePlanningStatus parses a string into a PlanningStatus
func ParsePlanningStatus(s string) (PlanningStatus, error) {
	status := PlanningStatus(s)
	if !status.IsValid() {
		return "", goerr.New("invalid planning status", goerr.V("status", s))
	}
	return status, nil
}
