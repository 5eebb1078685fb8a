package model

import (
	"time"

	"github.com/secmon-lab/releaseboard/pkg/domain/types"
)

// ErrorLogEntry records a usage event that failed ingestion
type ErrorLogEntry struct {
	ID         string
	Timestamp  time.Time
	ErrorType  types.ErrorType
	Message    string
	Payload    string // serialized UsagePayload, empty if unavailable
	UserID     string
	Resolved   bool
	ResolvedAt *time.Time
	CreatedAt  time.Time
}
