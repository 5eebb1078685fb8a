package types

import "github.com/m-mizutani/goerr/v2"

// ReleaseStatus represents the lifecycle status of a release
type ReleaseStatus string

const (
	ReleaseStatusDraft      ReleaseStatus = "DRAFT"
	ReleaseStatusPlanned    ReleaseStatus = "PLANNED"
	ReleaseStatusInProgress ReleaseStatus = "IN_PROGRESS"
	ReleaseStatusReleased   ReleaseStatus = "RELEASED"
	ReleaseStatusCompleted  ReleaseStatus = "COMPLETED"
	ReleaseStatusDelayed    ReleaseStatus = "DELAYED"
	ReleaseStatusCancelled  ReleaseStatus = "CANCELLED"
)

// releaseTransitions is the legality table. Statuses absent as keys are terminal.
var releaseTransitions = map[ReleaseStatus][]ReleaseStatus{
	ReleaseStatusDraft:      {ReleaseStatusPlanned},
	ReleaseStatusPlanned:    {ReleaseStatusInProgress},
	ReleaseStatusInProgress: {ReleaseStatusReleased, ReleaseStatusDelayed, ReleaseStatusCancelled},
	ReleaseStatusReleased:   {ReleaseStatusCompleted},
	ReleaseStatusDelayed:    {ReleaseStatusInProgress},
}

// AllReleaseStatuses returns all valid release statuses
func AllReleaseStatuses() []ReleaseStatus {
	return []ReleaseStatus{
		ReleaseStatusDraft,
		ReleaseStatusPlanned,
		ReleaseStatusInProgress,
		ReleaseStatusReleased,
		ReleaseStatusCompleted,
		ReleaseStatusDelayed,
		ReleaseStatusCancelled,
	}
}

// IsValid checks if the release status is valid
func (s ReleaseStatus) IsValid() bool {
	switch s {
	case ReleaseStatusDraft,
		ReleaseStatusPlanned,
		ReleaseStatusInProgress,
		ReleaseStatusReleased,
		ReleaseStatusCompleted,
		ReleaseStatusDelayed,
		ReleaseStatusCancelled:
		return true
	default:
		return false
	}
}

// CanTransitionTo reports whether moving from s to next is allowed.
// Staying on the same status is not a transition and is always allowed.
func (s ReleaseStatus) CanTransitionTo(next ReleaseStatus) bool {
	if s == next {
		return true
	}
	for _, allowed := range releaseTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// TriggersCascade reports whether entering s notifies feature stakeholders.
func (s ReleaseStatus) TriggersCascade() bool {
	switch s {
	case ReleaseStatusReleased,
		ReleaseStatusDelayed,
		ReleaseStatusCancelled,
		ReleaseStatusCompleted:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no transition leaves s.
func (s ReleaseStatus) IsTerminal() bool {
	return len(releaseTransitions[s]) == 0
}

// String returns the string representation of the release status
func (s ReleaseStatus) String() string {
	return string(s)
}

// ParseReleaseStatus parses a string into a ReleaseStatus
func ParseReleaseStatus(s string) (ReleaseStatus, error) {
	status := ReleaseStatus(s)
	if !status.IsValid() {
		return "", goerr.New("invalid release status", goerr.V("status", s))
	}
	return status, nil
}
