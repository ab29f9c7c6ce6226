package shared

import "errors"

// Error kinds shared by every ledger component. Domain errors wrap or match one of
// these so callers can branch on the kind without knowing the concrete type.
var (
	ErrValidation          = errors.New("validation error")
	ErrConstraintViolation = errors.New("constraint violation")
	ErrNotFound            = errors.New("not found")
)

// ValidationError reports malformed or out-of-range input on a single field
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return "invalid " + e.Field + ": " + e.Reason
}

// Unwrap lets errors.Is match ErrValidation
func (e ValidationError) Unwrap() error {
	return ErrValidation
}
