package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate indicates a unique constraint violation.
	ErrDuplicate = errors.New("duplicate entry")
	// ErrValidation indicates request validation failure.
	ErrValidation = errors.New("validation failed")
	// ErrConflict indicates the operation conflicts with current state.
	ErrConflict = errors.New("conflict")
)
