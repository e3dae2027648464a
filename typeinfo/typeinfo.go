// Package typeinfo derives a recursive description of a Go type's shape.
// The description feeds schema construction (which fields exist, which are
// optional, which are supported leaf kinds) and row mapping. Cyclic type
// references are detected and reported with a sentinel node rather than
// recursed into.
package typeinfo

import (
	"fmt"
	"strings"
)

// Kind discriminates the variants of a TypeInfo node.
type Kind int

const (
	// KindOpaque is the zero value: a node that has not been resolved.
	KindOpaque Kind = iota

	// KindSingle is a scalar leaf (primitive or whitelisted leaf type).
	KindSingle

	// KindKeyed is a record type with named fields.
	KindKeyed

	// KindDynamicKeyed is a generic mapping (map[K]V).
	KindDynamicKeyed

	// KindUnkeyed is a sequence (slice or array).
	KindUnkeyed

	// KindOptional wraps any variant and means "may be absent".
	KindOptional

	// KindCyclic marks a type already being visited higher on the
	// current introspection path.
	KindCyclic
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindOpaque:
		return "opaque"
	case KindSingle:
		return "single"
	case KindKeyed:
		return "keyed"
	case KindDynamicKeyed:
		return "dynamicKeyed"
	case KindUnkeyed:
		return "unkeyed"
	case KindOptional:
		return "optional"
	case KindCyclic:
		return "cyclic"
	default:
		return "unknown"
	}
}

// Leaf identifies the declared kind of a KindSingle node.
type Leaf int

const (
	LeafBool Leaf = iota
	LeafInt
	LeafInt8
	LeafInt16
	LeafInt32
	LeafInt64
	LeafUint
	LeafUint8
	LeafUint16
	LeafUint32
	LeafUint64
	LeafFloat32
	LeafFloat64
	LeafString

	// Whitelisted non-primitive leaves. These are scalar for schema
	// purposes even though their Go representations are composite.
	LeafBytes
	LeafURL
	LeafUUID
	LeafTime
)

// String returns the string representation of the leaf kind.
func (l Leaf) String() string {
	switch l {
	case LeafBool:
		return "bool"
	case LeafInt:
		return "int"
	case LeafInt8:
		return "int8"
	case LeafInt16:
		return "int16"
	case LeafInt32:
		return "int32"
	case LeafInt64:
		return "int64"
	case LeafUint:
		return "uint"
	case LeafUint8:
		return "uint8"
	case LeafUint16:
		return "uint16"
	case LeafUint32:
		return "uint32"
	case LeafUint64:
		return "uint64"
	case LeafFloat32:
		return "float32"
	case LeafFloat64:
		return "float64"
	case LeafString:
		return "string"
	case LeafBytes:
		return "bytes"
	case LeafURL:
		return "url"
	case LeafUUID:
		return "uuid"
	case LeafTime:
		return "time"
	default:
		return "unknown"
	}
}

// IsInteger reports whether the leaf is any integer width.
func (l Leaf) IsInteger() bool {
	return l >= LeafInt && l <= LeafUint64
}

// IsFloat reports whether the leaf is a floating point width.
func (l Leaf) IsFloat() bool {
	return l == LeafFloat32 || l == LeafFloat64
}

// TypeInfo is a recursive description of a type's shape. Exactly the
// fields relevant to Kind are populated.
type TypeInfo struct {
	Kind Kind

	// Leaf is set for KindSingle.
	Leaf Leaf

	// Fields is set for KindKeyed, in declaration order.
	Fields []Field

	// Key and Value are set for KindDynamicKeyed.
	Key   *TypeInfo
	Value *TypeInfo

	// Elem is set for KindUnkeyed and KindOptional.
	Elem *TypeInfo
}

// Field is one named member of a KindKeyed node.
type Field struct {
	// Name is the column name: the db tag if present, else the
	// snake_cased struct field name.
	Name string

	// GoName is the struct field name.
	GoName string

	// Index is the field's index path for reflect FieldByIndex,
	// spanning embedded structs.
	Index []int

	Info *TypeInfo
}

// FieldByName returns the field with the given column name.
func (ti *TypeInfo) FieldByName(name string) (Field, bool) {
	for _, f := range ti.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// String renders the shape for diagnostics, e.g.
// keyed{id: optional(int64), name: string}.
func (ti *TypeInfo) String() string {
	if ti == nil {
		return "<nil>"
	}
	switch ti.Kind {
	case KindSingle:
		return ti.Leaf.String()
	case KindKeyed:
		var b strings.Builder
		b.WriteString("keyed{")
		for i, f := range ti.Fields {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s: %s", f.Name, f.Info)
		}
		b.WriteString("}")
		return b.String()
	case KindDynamicKeyed:
		return fmt.Sprintf("dynamicKeyed(%s, %s)", ti.Key, ti.Value)
	case KindUnkeyed:
		return fmt.Sprintf("unkeyed(%s)", ti.Elem)
	case KindOptional:
		return fmt.Sprintf("optional(%s)", ti.Elem)
	default:
		return ti.Kind.String()
	}
}

// Unwrap removes a single KindOptional layer, reporting whether one was
// present.
func (ti *TypeInfo) Unwrap() (*TypeInfo, bool) {
	if ti.Kind == KindOptional {
		return ti.Elem, true
	}
	return ti, false
}
