package usecase

import (
	"errors"

	"github.com/secmon-lab/releaseboard/pkg/domain/interfaces"
)

// Sentinel errors for use case layer
var (
	// ErrValidation marks malformed input, unknown enum values or bad dates
	ErrValidation = errors.New("validation error")

	// ErrInvalidTransition is returned for a release status change not in the transition table
	ErrInvalidTransition = errors.New("invalid status transition")

	// Not found and conflict errors are shared with the repository layer
	ErrNotFound      = interfaces.ErrNotFound
	ErrAlreadyExists = interfaces.ErrAlreadyExists

	// Access control errors
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("insufficient role")
)

// Context keys for error values
const (
	ReleaseCodeKey = "release_code"
	FeatureCodeKey = "feature_code"
	ErrorLogIDKey  = "error_log_id"
)
