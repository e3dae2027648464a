package schema

import "fmt"

// TableCreationError is returned when a type cannot be derived into a
// persistable table. It is fatal to schema derivation; a failed
// derivation is never cached, so a later call retries cleanly.
type TableCreationError struct {
	// Type is the name of the offending model type.
	Type string

	// Field is the offending field's column name, empty for root-level
	// failures.
	Field string

	Reason string
}

// Error implements the error interface.
func (e *TableCreationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("cannot create table for %s: field %s: %s", e.Type, e.Field, e.Reason)
	}
	return fmt.Sprintf("cannot create table for %s: %s", e.Type, e.Reason)
}
