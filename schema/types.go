// Package schema derives and caches the relational shape of model types.
// A Table is computed once per type from its TypeInfo and is immutable
// afterwards; only flat records of scalar leaves are persistable.
package schema

import "strings"

// ColumnType is the declared storage type of a column.
type ColumnType int

const (
	// TypeInteger is the canonical integer storage width; narrower Go
	// integer widths are widened to it.
	TypeInteger ColumnType = iota

	// TypeDouble stores both float widths.
	TypeDouble

	TypeBoolean

	// TypeText stores strings and the textual encodings of the
	// whitelisted leaves (blob, URL, UUID, date).
	TypeText
)

// String returns the string representation of the column type.
func (c ColumnType) String() string {
	switch c {
	case TypeInteger:
		return "integer"
	case TypeDouble:
		return "double"
	case TypeBoolean:
		return "boolean"
	case TypeText:
		return "text"
	default:
		return "unknown"
	}
}

// Column describes one column of a derived table.
type Column struct {
	Name          string
	Type          ColumnType
	Nullable      bool
	PrimaryKey    bool
	AutoIncrement bool
}

// Table is the ordered column list derived for one model type. Tables
// are created once per type and never mutated afterwards.
type Table struct {
	Name    string
	Columns []Column
}

// Column returns the column with the given name, matched
// case-insensitively.
func (t *Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return Column{}, false
}

// PrimaryKey returns the table's primary key column. Every derived
// table has exactly one.
func (t *Table) PrimaryKey() Column {
	for _, c := range t.Columns {
		if c.PrimaryKey {
			return c
		}
	}
	return Column{}
}

// ColumnNames returns the column names in declaration order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// HasColumn reports whether the table has a column with the given name,
// matched case-insensitively.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if strings.EqualFold(c.Name, name) {
			return true
		}
	}
	return false
}
