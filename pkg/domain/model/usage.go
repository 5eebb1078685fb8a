package model

import (
	"time"

	"github.com/secmon-lab/releaseboard/pkg/domain/types"
)

// UsageEvent is one recorded interaction with the product
type UsageEvent struct {
	ID          string
	UserID      string
	ActionType  types.ActionType
	FeatureCode string // empty when absent
	ProductCode string // empty when absent
	Context     map[string]string
	Timestamp   time.Time
	Hash        string

	// IngestedAt is when the event was accepted. The dedup window is measured
	// on it, never on the caller supplied Timestamp.
	IngestedAt time.Time
}

// UsagePayload is the unvalidated ingestion input as received from callers.
// It is also what gets stored in the error log for later reprocessing.
type UsagePayload struct {
	UserID      string            `json:"userId,omitempty"`
	ActionType  string            `json:"actionType"`
	FeatureCode *string           `json:"featureCode,omitempty"`
	ProductCode *string           `json:"productCode,omitempty"`
	Context     map[string]string `json:"context,omitempty"`
	Timestamp   *time.Time        `json:"timestamp,omitempty"`
}
