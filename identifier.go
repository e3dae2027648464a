package quarry

import (
	"fmt"

	"github.com/google/uuid"
)

// Identifier is the primary-key value of a persisted row, either an
// integer or a string. It is opaque so callers do not depend on which
// representation a driver hands back.
type Identifier struct {
	intVal int64
	strVal string
	isInt  bool
}

// IdentifierError is returned when a raw value returned by the driver
// cannot be converted to an identifier representation.
type IdentifierError struct {
	Value any
}

// Error implements the error interface.
func (e *IdentifierError) Error() string {
	return fmt.Sprintf("value %v (%T) is not representable as an identifier", e.Value, e.Value)
}

// NewIdentifier converts a raw value into an Identifier. Integer widths
// widen; strings, byte slices and UUIDs become string identifiers.
func NewIdentifier(raw any) (Identifier, error) {
	switch x := raw.(type) {
	case int:
		return Identifier{intVal: int64(x), isInt: true}, nil
	case int8:
		return Identifier{intVal: int64(x), isInt: true}, nil
	case int16:
		return Identifier{intVal: int64(x), isInt: true}, nil
	case int32:
		return Identifier{intVal: int64(x), isInt: true}, nil
	case int64:
		return Identifier{intVal: x, isInt: true}, nil
	case uint32:
		return Identifier{intVal: int64(x), isInt: true}, nil
	case string:
		return Identifier{strVal: x}, nil
	case []byte:
		return Identifier{strVal: string(x)}, nil
	case uuid.UUID:
		return Identifier{strVal: x.String()}, nil
	default:
		return Identifier{}, &IdentifierError{Value: raw}
	}
}

// Int64 returns the integer form, reporting false for string
// identifiers.
func (id Identifier) Int64() (int64, bool) {
	return id.intVal, id.isInt
}

// String returns the identifier's textual form.
func (id Identifier) String() string {
	if id.isInt {
		return fmt.Sprintf("%d", id.intVal)
	}
	return id.strVal
}

// Value returns the representation suitable for binding as a query
// parameter.
func (id Identifier) Value() any {
	if id.isInt {
		return id.intVal
	}
	return id.strVal
}
