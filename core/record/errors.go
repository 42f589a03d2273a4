package record

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedRow is returned when a row segment has no key/value separator.
	ErrMalformedRow = errors.New("malformed row")
	// ErrFieldNotFound is returned when the row has no value for a field's key.
	ErrFieldNotFound = errors.New("field not found in row")
	// ErrCoercion is returned when a resolved value cannot be converted to the
	// field's kind.
	ErrCoercion = errors.New("cannot coerce value")
)

// FieldError reports a failed field access. It wraps the lookup or coercion
// error so callers can match it with errors.Is and errors.As.
type FieldError struct {
	Field string
	Kind  Kind
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %q (%s): %v", e.Field, e.Kind, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }
