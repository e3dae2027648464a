// Package sqlgen renders SQL statements from derived tables, encoded
// rows and compiled queries. It owns the dialect differences: the
// placeholder style and the storage type spellings.
package sqlgen

import (
	"fmt"
	"strings"

	"github.com/quarrydb/quarry/codec"
	"github.com/quarrydb/quarry/query"
	"github.com/quarrydb/quarry/schema"
)

// Dialect selects placeholder style and type spellings.
type Dialect int

const (
	// SQLite uses ? placeholders and SQLite type affinities.
	SQLite Dialect = iota

	// Postgres uses $n placeholders, BIGSERIAL identifiers and
	// RETURNING for assigned ids.
	Postgres
)

// String returns the dialect name.
func (d Dialect) String() string {
	if d == Postgres {
		return "postgres"
	}
	return "sqlite"
}

func (d Dialect) placeholder(n int) string {
	if d == Postgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// Generator renders statements for one dialect.
type Generator struct {
	Dialect Dialect
}

// CreateTable renders a CREATE TABLE IF NOT EXISTS statement.
func (g Generator) CreateTable(t *schema.Table) string {
	defs := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		defs = append(defs, g.columnDef(c))
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", t.Name, strings.Join(defs, ", "))
}

// DropTable renders a DROP TABLE IF EXISTS statement.
func (g Generator) DropTable(t *schema.Table) string {
	return fmt.Sprintf("DROP TABLE IF EXISTS %s", t.Name)
}

func (g Generator) columnDef(c schema.Column) string {
	var b strings.Builder
	b.WriteString(c.Name)
	b.WriteByte(' ')

	switch {
	case c.PrimaryKey && c.AutoIncrement && c.Type == schema.TypeInteger:
		if g.Dialect == Postgres {
			b.WriteString("BIGSERIAL PRIMARY KEY")
		} else {
			// SQLite auto-assignment requires this exact spelling.
			b.WriteString("INTEGER PRIMARY KEY AUTOINCREMENT")
		}
	case c.PrimaryKey:
		b.WriteString(g.typeName(c.Type))
		b.WriteString(" PRIMARY KEY")
	default:
		b.WriteString(g.typeName(c.Type))
		if !c.Nullable {
			b.WriteString(" NOT NULL")
		}
	}
	return b.String()
}

func (g Generator) typeName(t schema.ColumnType) string {
	if g.Dialect == Postgres {
		switch t {
		case schema.TypeInteger:
			return "BIGINT"
		case schema.TypeDouble:
			return "DOUBLE PRECISION"
		case schema.TypeBoolean:
			return "BOOLEAN"
		default:
			return "TEXT"
		}
	}
	switch t {
	case schema.TypeInteger, schema.TypeBoolean:
		return "INTEGER"
	case schema.TypeDouble:
		return "REAL"
	default:
		return "TEXT"
	}
}

// Insert renders an INSERT for the row's cells, in row order.
func (g Generator) Insert(t *schema.Table, row codec.Row) (string, []any) {
	names := row.Names()
	placeholders := make([]string, len(names))
	for i := range names {
		placeholders[i] = g.Dialect.placeholder(i + 1)
	}
	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		t.Name, strings.Join(names, ", "), strings.Join(placeholders, ", "))
	return sql, row.Values()
}

// InsertReturning renders an INSERT that yields the assigned identifier
// column. Only the postgres dialect supports it.
func (g Generator) InsertReturning(t *schema.Table, row codec.Row) (string, []any) {
	sql, args := g.Insert(t, row)
	return sql + " RETURNING " + t.PrimaryKey().Name, args
}

// Update renders an UPDATE of the row's cells for one primary key
// value. The identifier itself is never part of the SET list.
func (g Generator) Update(t *schema.Table, row codec.Row, id any) (string, []any) {
	pk := t.PrimaryKey().Name
	row = row.Without(pk)

	sets := make([]string, len(row))
	args := make([]any, 0, len(row)+1)
	for i, c := range row {
		sets[i] = fmt.Sprintf("%s = %s", c.Name, g.Dialect.placeholder(i+1))
		args = append(args, c.Value)
	}
	args = append(args, id)
	sql := fmt.Sprintf("UPDATE %s SET %s WHERE %s = %s",
		t.Name, strings.Join(sets, ", "), pk, g.Dialect.placeholder(len(row)+1))
	return sql, args
}

// Select renders a SELECT of all table columns constrained by a
// compiled query. Compiled may be nil for an unconstrained select.
func (g Generator) Select(t *schema.Table, q *query.Compiled) (string, []any) {
	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s", strings.Join(t.ColumnNames(), ", "), t.Name)
	args := g.appendClauses(&b, q)
	return b.String(), args
}

// SelectByID renders a primary key lookup.
func (g Generator) SelectByID(t *schema.Table) string {
	return fmt.Sprintf("SELECT %s FROM %s WHERE %s = %s",
		strings.Join(t.ColumnNames(), ", "), t.Name, t.PrimaryKey().Name, g.Dialect.placeholder(1))
}

// Delete renders a DELETE constrained by a compiled query.
func (g Generator) Delete(t *schema.Table, q *query.Compiled) (string, []any) {
	var b strings.Builder
	fmt.Fprintf(&b, "DELETE FROM %s", t.Name)
	args := g.appendClauses(&b, q)
	return b.String(), args
}

// DeleteByID renders a primary key delete.
func (g Generator) DeleteByID(t *schema.Table) string {
	return fmt.Sprintf("DELETE FROM %s WHERE %s = %s",
		t.Name, t.PrimaryKey().Name, g.Dialect.placeholder(1))
}

func (g Generator) appendClauses(b *strings.Builder, q *query.Compiled) []any {
	if q == nil {
		return nil
	}
	var args []any
	if q.Filter != nil {
		counter := 1
		b.WriteString(" WHERE ")
		g.renderFilter(b, q.Filter, &counter)
		args = append(args, q.Params...)
	}
	if len(q.Order) > 0 {
		parts := make([]string, len(q.Order))
		for i, o := range q.Order {
			parts[i] = o.Column + " " + o.Direction.String()
		}
		b.WriteString(" ORDER BY ")
		b.WriteString(strings.Join(parts, ", "))
	}
	if q.Page != nil {
		fmt.Fprintf(b, " LIMIT %d OFFSET %d", q.Page.Limit, q.Page.Offset)
	}
	return args
}

// renderFilter emits placeholders in depth-first left-to-right order so
// they line up with the compiled positional parameter list.
func (g Generator) renderFilter(b *strings.Builder, f *query.Filter, counter *int) {
	if f.IsLeaf() {
		fmt.Fprintf(b, "%s %s %s", f.Column, f.Op, g.Dialect.placeholder(*counter))
		*counter++
		return
	}
	b.WriteByte('(')
	g.renderFilter(b, f.Left, counter)
	fmt.Fprintf(b, " %s ", f.Join)
	g.renderFilter(b, f.Right, counter)
	b.WriteByte(')')
}
