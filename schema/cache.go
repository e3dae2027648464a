package schema

import (
	"reflect"
	"sync"

	"github.com/quarrydb/quarry/typeinfo"
)

// Cache memoizes table derivation per model type. Reads take no lock
// once an entry is populated; population is serialized and
// double-checked so concurrent first use of the same type derives once.
// Construct one cache per database handle rather than sharing an
// implicit global, so tests stay independent.
type Cache struct {
	entries sync.Map // reflect.Type -> *entry
	mu      sync.Mutex
}

type entry struct {
	info  *typeinfo.TypeInfo
	table *Table
}

// NewCache creates an empty schema cache.
func NewCache() *Cache {
	return &Cache{}
}

// GetTable returns the table derived for t, deriving and caching it on
// first use. idColumn names the identifier column; if the type has no
// field by that name a column of idType is synthesized, primary key and
// auto increment. The first call for a type fixes its table; later
// calls return the cached value regardless of arguments.
func (c *Cache) GetTable(idColumn string, idType ColumnType, tableName string, t reflect.Type) (*Table, error) {
	e, err := c.get(idColumn, idType, tableName, t)
	if err != nil {
		return nil, err
	}
	return e.table, nil
}

// Info returns the cached TypeInfo introspected for t alongside its
// table derivation.
func (c *Cache) Info(idColumn string, idType ColumnType, tableName string, t reflect.Type) (*typeinfo.TypeInfo, error) {
	e, err := c.get(idColumn, idType, tableName, t)
	if err != nil {
		return nil, err
	}
	return e.info, nil
}

func (c *Cache) get(idColumn string, idType ColumnType, tableName string, t reflect.Type) (*entry, error) {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if v, ok := c.entries.Load(t); ok {
		return v.(*entry), nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// A racing caller may have populated the entry while we waited.
	if v, ok := c.entries.Load(t); ok {
		return v.(*entry), nil
	}

	info, err := typeinfo.Introspect(t)
	if err != nil {
		return nil, &TableCreationError{Type: t.String(), Reason: err.Error()}
	}
	table, err := buildTable(idColumn, idType, tableName, t, info)
	if err != nil {
		return nil, err
	}

	e := &entry{info: info, table: table}
	c.entries.Store(t, e)
	return e, nil
}

// buildTable derives the column list from a keyed TypeInfo. Only flat
// records are persistable: nested records, mappings and sequences are
// rejected rather than silently flattened or JSON-encoded.
func buildTable(idColumn string, idType ColumnType, tableName string, t reflect.Type, info *typeinfo.TypeInfo) (*Table, error) {
	if info.Kind != typeinfo.KindKeyed {
		return nil, &TableCreationError{Type: t.String(), Reason: "can only persist a record type"}
	}

	table := &Table{Name: tableName, Columns: make([]Column, 0, len(info.Fields))}
	haveID := false

	for _, f := range info.Fields {
		fi, optional := f.Info.Unwrap()

		col := Column{Name: f.Name, Nullable: optional}

		switch fi.Kind {
		case typeinfo.KindSingle:
			col.Type = columnTypeFor(fi.Leaf)
		case typeinfo.KindKeyed, typeinfo.KindDynamicKeyed, typeinfo.KindCyclic:
			return nil, &TableCreationError{Type: t.String(), Field: f.Name, Reason: "nested structs or maps are not supported"}
		case typeinfo.KindUnkeyed:
			return nil, &TableCreationError{Type: t.String(), Field: f.Name, Reason: "slices or arrays are not supported"}
		default:
			return nil, &TableCreationError{Type: t.String(), Field: f.Name, Reason: "unsupported field shape " + fi.Kind.String()}
		}

		if f.Name == idColumn {
			haveID = true
			col.PrimaryKey = true
			col.Nullable = false
			// An optional identifier means the store assigns values
			// unless the caller supplies one.
			col.AutoIncrement = optional
		}

		table.Columns = append(table.Columns, col)
	}

	if !haveID {
		table.Columns = append(table.Columns, Column{
			Name:          idColumn,
			Type:          idType,
			PrimaryKey:    true,
			AutoIncrement: true,
		})
	}

	return table, nil
}

// columnTypeFor maps a leaf kind to its storage type. Narrow integer
// widths widen to the canonical integer storage width; the whitelisted
// leaves store textually.
func columnTypeFor(l typeinfo.Leaf) ColumnType {
	switch {
	case l == typeinfo.LeafBool:
		return TypeBoolean
	case l.IsInteger():
		return TypeInteger
	case l.IsFloat():
		return TypeDouble
	default:
		// string, bytes, url, uuid, time
		return TypeText
	}
}
