package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors. ErrUnknownJurisdiction is the only failure the quote
// pipeline escalates to the caller; everything else recovers into explicit
// result states (undetermined classification, caveats, alternatives).
var (
	ErrUnknownJurisdiction = errors.New("unknown jurisdiction")
	ErrInvalidDescriptor   = errors.New("invalid vehicle descriptor")
	ErrInvalidVIN          = errors.New("invalid VIN fragment")
	ErrYearOutOfRange      = errors.New("model year out of range")
	ErrNegativeAmount      = errors.New("negative amount")
	ErrInvalidRegulation   = errors.New("invalid regulation record")
)

// ValidationError wraps a sentinel with field context.
type ValidationError struct {
	Field   string
	Value   string
	Wrapped error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s (value=%q)", e.Wrapped, e.Field, e.Value)
}

func (e *ValidationError) Unwrap() error { return e.Wrapped }

// NewValidationError creates a ValidationError.
func NewValidationError(field, value string, wrapped error) *ValidationError {
	return &ValidationError{Field: field, Value: value, Wrapped: wrapped}
}
