package quarry

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// Common store error sentinels.
var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")

	// ErrUniqueViolation is returned when a unique constraint is violated.
	ErrUniqueViolation = errors.New("unique constraint violation")

	// ErrForeignKeyViolation is returned when a foreign key constraint is violated.
	ErrForeignKeyViolation = errors.New("foreign key constraint violation")

	// ErrCheckViolation is returned when a check constraint is violated.
	ErrCheckViolation = errors.New("check constraint violation")

	// ErrNotNullViolation is returned when a NOT NULL constraint is violated.
	ErrNotNullViolation = errors.New("not null constraint violation")
)

// InternalError signals an invariant violation that should be
// unreachable. Seeing one is a bug in this library, not a condition a
// caller can correct.
type InternalError struct {
	Reason string
}

// Error implements the error interface.
func (e *InternalError) Error() string {
	return "internal error: " + e.Reason
}

// ConvertDBError maps driver-specific errors to store sentinels.
// Both postgres drivers are recognized; anything else passes through.
func ConvertDBError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}

	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		if mapped := convertPostgresCode(pgxErr.Code, pgxErr.Detail); mapped != nil {
			return mapped
		}
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if mapped := convertPostgresCode(string(pqErr.Code), pqErr.Detail); mapped != nil {
			return mapped
		}
	}

	return err
}

func convertPostgresCode(code, detail string) error {
	switch code {
	case "23505": // unique_violation
		return fmt.Errorf("%w: %s", ErrUniqueViolation, detail)
	case "23503": // foreign_key_violation
		return fmt.Errorf("%w: %s", ErrForeignKeyViolation, detail)
	case "23514": // check_violation
		return fmt.Errorf("%w: %s", ErrCheckViolation, detail)
	case "23502": // not_null_violation
		return fmt.Errorf("%w: %s", ErrNotNullViolation, detail)
	default:
		return nil
	}
}

// IsNotFound returns true if the error is ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsUniqueViolation returns true if the error is ErrUniqueViolation.
func IsUniqueViolation(err error) bool {
	return errors.Is(err, ErrUniqueViolation)
}
