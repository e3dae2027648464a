package sqlgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarrydb/quarry/codec"
	"github.com/quarrydb/quarry/query"
	"github.com/quarrydb/quarry/schema"
)

func peopleTable() *schema.Table {
	return &schema.Table{
		Name: "people",
		Columns: []schema.Column{
			{Name: "id", Type: schema.TypeInteger, PrimaryKey: true, AutoIncrement: true},
			{Name: "name", Type: schema.TypeText},
			{Name: "age", Type: schema.TypeInteger, Nullable: true},
		},
	}
}

func TestCreateTable(t *testing.T) {
	table := peopleTable()

	t.Run("sqlite", func(t *testing.T) {
		sql := Generator{Dialect: SQLite}.CreateTable(table)
		assert.Equal(t,
			"CREATE TABLE IF NOT EXISTS people (id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT NOT NULL, age INTEGER)",
			sql)
	})

	t.Run("postgres", func(t *testing.T) {
		sql := Generator{Dialect: Postgres}.CreateTable(table)
		assert.Equal(t,
			"CREATE TABLE IF NOT EXISTS people (id BIGSERIAL PRIMARY KEY, name TEXT NOT NULL, age BIGINT)",
			sql)
	})

	t.Run("caller-owned identifier", func(t *testing.T) {
		table := &schema.Table{
			Name: "docs",
			Columns: []schema.Column{
				{Name: "id", Type: schema.TypeText, PrimaryKey: true},
			},
		}
		sql := Generator{Dialect: SQLite}.CreateTable(table)
		assert.Equal(t, "CREATE TABLE IF NOT EXISTS docs (id TEXT PRIMARY KEY)", sql)
	})

	t.Run("drop", func(t *testing.T) {
		assert.Equal(t, "DROP TABLE IF EXISTS people", Generator{Dialect: SQLite}.DropTable(table))
	})
}

func TestInsert(t *testing.T) {
	row := codec.Row{
		{Name: "name", Value: "Joe"},
		{Name: "age", Value: int64(38)},
	}

	t.Run("sqlite placeholders", func(t *testing.T) {
		sql, args := Generator{Dialect: SQLite}.Insert(peopleTable(), row)
		assert.Equal(t, "INSERT INTO people (name, age) VALUES (?, ?)", sql)
		assert.Equal(t, []any{"Joe", int64(38)}, args)
	})

	t.Run("postgres returning", func(t *testing.T) {
		sql, args := Generator{Dialect: Postgres}.InsertReturning(peopleTable(), row)
		assert.Equal(t, "INSERT INTO people (name, age) VALUES ($1, $2) RETURNING id", sql)
		assert.Len(t, args, 2)
	})
}

func TestUpdate(t *testing.T) {
	row := codec.Row{
		{Name: "id", Value: int64(7)},
		{Name: "name", Value: "Joe"},
		{Name: "age", Value: int64(39)},
	}

	sql, args := Generator{Dialect: SQLite}.Update(peopleTable(), row, int64(7))
	assert.Equal(t, "UPDATE people SET name = ?, age = ? WHERE id = ?", sql)
	assert.Equal(t, []any{"Joe", int64(39), int64(7)}, args)
}

func TestSelect(t *testing.T) {
	t.Run("unconstrained", func(t *testing.T) {
		sql, args := Generator{Dialect: SQLite}.Select(peopleTable(), nil)
		assert.Equal(t, "SELECT id, name, age FROM people", sql)
		assert.Empty(t, args)
	})

	t.Run("by id", func(t *testing.T) {
		sql := Generator{Dialect: SQLite}.SelectByID(peopleTable())
		assert.Equal(t, "SELECT id, name, age FROM people WHERE id = ?", sql)
	})

	t.Run("filter order and pagination", func(t *testing.T) {
		params := struct {
			Name string
			Age  []int64
			Sort query.Sort
			Page query.Pagination
		}{
			Name: "Joe",
			Age:  []int64{38, 28},
			Sort: query.Descending("age"),
			Page: query.Page(10, 0),
		}
		compiled, err := query.Compile(params, peopleTable())
		require.NoError(t, err)

		sql, args := Generator{Dialect: SQLite}.Select(peopleTable(), compiled)
		assert.Equal(t,
			"SELECT id, name, age FROM people WHERE (name = ? AND (age = ? OR age = ?)) ORDER BY age DESC LIMIT 10 OFFSET 0",
			sql)
		assert.Equal(t, []any{"Joe", int64(38), int64(28)}, args)
	})

	t.Run("postgres placeholders count up", func(t *testing.T) {
		params := struct {
			Age query.Range
		}{Age: query.InclusiveRange(20, 30)}
		compiled, err := query.Compile(params, peopleTable())
		require.NoError(t, err)

		sql, args := Generator{Dialect: Postgres}.Select(peopleTable(), compiled)
		assert.Equal(t,
			"SELECT id, name, age FROM people WHERE (age >= $1 AND age <= $2)",
			sql)
		assert.Equal(t, []any{int64(20), int64(30)}, args)
	})
}

func TestDelete(t *testing.T) {
	t.Run("by id", func(t *testing.T) {
		sql := Generator{Dialect: SQLite}.DeleteByID(peopleTable())
		assert.Equal(t, "DELETE FROM people WHERE id = ?", sql)
	})

	t.Run("by filter", func(t *testing.T) {
		params := struct {
			Age query.Cmp
		}{Age: query.LessThan(18)}
		compiled, err := query.Compile(params, peopleTable())
		require.NoError(t, err)

		sql, args := Generator{Dialect: SQLite}.Delete(peopleTable(), compiled)
		assert.Equal(t, "DELETE FROM people WHERE age < ?", sql)
		assert.Equal(t, []any{int64(18)}, args)
	})
}
