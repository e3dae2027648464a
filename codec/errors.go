package codec

import "fmt"

// KeyNotFoundError is returned when a row has no key for a model field.
type KeyNotFoundError struct {
	Column string
}

// Error implements the error interface.
func (e *KeyNotFoundError) Error() string {
	return fmt.Sprintf("row has no value for column %q", e.Column)
}

// ValueMissingError is returned when a row holds null for a field that
// is not optional.
type ValueMissingError struct {
	Column string
}

// Error implements the error interface.
func (e *ValueMissingError) Error() string {
	return fmt.Sprintf("column %q is null but the field is not optional", e.Column)
}

// TypeMismatchError is returned when a row value's kind cannot be
// converted to the field's kind. Narrow-to-wide integer conversion is
// defined and does not produce this error.
type TypeMismatchError struct {
	Column   string
	Value    any
	Expected string
}

// Error implements the error interface.
func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("column %q: cannot decode %v (%T) as %s", e.Column, e.Value, e.Value, e.Expected)
}

// DecodeError is returned when a stored textual encoding cannot be
// decoded, naming the column and the offending value.
type DecodeError struct {
	Column string
	Value  any
	Cause  error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("column %q: cannot decode value %v: %v", e.Column, e.Value, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *DecodeError) Unwrap() error { return e.Cause }
