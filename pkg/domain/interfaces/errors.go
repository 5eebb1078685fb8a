package interfaces

import "errors"

// Errors returned by every Repository implementation
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// ErrParentNotFound is returned by release writes whose ParentCode names
	// a release that does not exist when the write commits.
	ErrParentNotFound = errors.New("parent release not found")
)
