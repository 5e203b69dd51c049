package booking

import "errors"

var (
	// ErrNotFound is returned when the requested appointment does not exist.
	ErrNotFound = errors.New("booking: appointment not found")
	// ErrConflict is returned when a booking request fails conflict validation.
	ErrConflict = errors.New("booking: validation failed")
)

// ValidationError captures field level validation issues that callers can
// surface to users. Distinct from ValidationResult, which carries scheduling
// conflicts rather than malformed input.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}
