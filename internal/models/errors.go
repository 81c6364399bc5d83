package models

import "errors"

// Engine error taxonomy. ErrValidation, ErrInvalidTransition and ErrNotFound
// are checked before any write; ErrConcurrentModification rejects stale
// writers on version append. Partial failure of the erasure coordinator is
// reported as data (EraseReport), not as an error.
var (
	ErrValidation             = errors.New("validation failed")
	ErrInvalidTransition      = errors.New("invalid status transition")
	ErrNotFound               = errors.New("not found")
	ErrConcurrentModification = errors.New("concurrent modification")
)
