package service

import "errors"

// Error kinds. Services wrap these with fmt.Errorf("%w: ...") so callers can
// classify failures with errors.Is while keeping a human-readable message.
var (
	// ErrNotFound is returned when a referenced resource does not exist
	ErrNotFound = errors.New("resource not found")

	// ErrValidation is returned when input violates a business invariant
	ErrValidation = errors.New("validation failed")

	// ErrConflict is returned on duplicates and dependent-document blocks
	ErrConflict = errors.New("resource conflict")

	// ErrInvalidState is returned when a lifecycle transition is not
	// permitted from the current status
	ErrInvalidState = errors.New("invalid state transition")
)
