package query

import "fmt"

// QueryError is returned when query parameters cannot be compiled.
// It is reported before any query execution is attempted.
type QueryError struct {
	// Column is the parameter field involved, empty for whole-query
	// failures.
	Column string

	Reason string
}

// Error implements the error interface.
func (e *QueryError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("invalid query parameters: %s: %s", e.Column, e.Reason)
	}
	return fmt.Sprintf("invalid query parameters: %s", e.Reason)
}
