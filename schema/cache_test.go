package schema

import (
	"reflect"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type person struct {
	Name string
	Age  int64
}

type autoIDModel struct {
	ID   *int64
	Name string
}

type manualIDModel struct {
	ID   int64
	Name string
}

type selfRef struct {
	Name string
	Next *selfRef
}

func TestGetTable(t *testing.T) {
	t.Run("synthesizes identifier when no field matches", func(t *testing.T) {
		cache := NewCache()
		table, err := cache.GetTable("id", TypeInteger, "people", reflect.TypeOf(person{}))
		require.NoError(t, err)

		require.Len(t, table.Columns, 3)
		assert.Equal(t, "name", table.Columns[0].Name)
		assert.Equal(t, TypeText, table.Columns[0].Type)
		assert.Equal(t, "age", table.Columns[1].Name)
		assert.Equal(t, TypeInteger, table.Columns[1].Type)

		id := table.Columns[2]
		assert.Equal(t, "id", id.Name)
		assert.True(t, id.PrimaryKey)
		assert.True(t, id.AutoIncrement)
	})

	t.Run("optional identifier field auto-assigns", func(t *testing.T) {
		cache := NewCache()
		table, err := cache.GetTable("id", TypeInteger, "models", reflect.TypeOf(autoIDModel{}))
		require.NoError(t, err)

		require.Len(t, table.Columns, 2)
		id := table.Columns[0]
		assert.Equal(t, "id", id.Name)
		assert.True(t, id.PrimaryKey)
		assert.True(t, id.AutoIncrement)
		assert.False(t, id.Nullable)
	})

	t.Run("mandatory identifier field is caller-owned", func(t *testing.T) {
		cache := NewCache()
		table, err := cache.GetTable("id", TypeInteger, "models", reflect.TypeOf(manualIDModel{}))
		require.NoError(t, err)

		id := table.Columns[0]
		assert.True(t, id.PrimaryKey)
		assert.False(t, id.AutoIncrement)
	})

	t.Run("exactly one primary key", func(t *testing.T) {
		cache := NewCache()
		table, err := cache.GetTable("id", TypeInteger, "people", reflect.TypeOf(person{}))
		require.NoError(t, err)

		count := 0
		for _, c := range table.Columns {
			if c.PrimaryKey {
				count++
			}
		}
		assert.Equal(t, 1, count)
	})

	t.Run("optional fields are nullable", func(t *testing.T) {
		type model struct {
			Nickname *string
		}
		cache := NewCache()
		table, err := cache.GetTable("id", TypeInteger, "models", reflect.TypeOf(model{}))
		require.NoError(t, err)
		assert.True(t, table.Columns[0].Nullable)
	})

	t.Run("narrow integers widen", func(t *testing.T) {
		type model struct {
			Small int8
			Wide  uint32
		}
		cache := NewCache()
		table, err := cache.GetTable("id", TypeInteger, "models", reflect.TypeOf(model{}))
		require.NoError(t, err)
		assert.Equal(t, TypeInteger, table.Columns[0].Type)
		assert.Equal(t, TypeInteger, table.Columns[1].Type)
	})

	t.Run("rejects non-record roots", func(t *testing.T) {
		cache := NewCache()
		_, err := cache.GetTable("id", TypeInteger, "numbers", reflect.TypeOf(int64(0)))

		var tce *TableCreationError
		require.ErrorAs(t, err, &tce)
		assert.Contains(t, tce.Error(), "record type")
	})

	t.Run("rejects nested structs", func(t *testing.T) {
		type address struct {
			City string
		}
		type model struct {
			Name string
			Home address `db:"home"`
		}
		cache := NewCache()
		_, err := cache.GetTable("id", TypeInteger, "models", reflect.TypeOf(model{}))

		var tce *TableCreationError
		require.ErrorAs(t, err, &tce)
		assert.Contains(t, tce.Error(), "nested structs or maps")
	})

	t.Run("rejects maps", func(t *testing.T) {
		type model struct {
			Extras map[string]string
		}
		cache := NewCache()
		_, err := cache.GetTable("id", TypeInteger, "models", reflect.TypeOf(model{}))

		var tce *TableCreationError
		require.ErrorAs(t, err, &tce)
	})

	t.Run("rejects slices", func(t *testing.T) {
		type model struct {
			Tags []string
		}
		cache := NewCache()
		_, err := cache.GetTable("id", TypeInteger, "models", reflect.TypeOf(model{}))

		var tce *TableCreationError
		require.ErrorAs(t, err, &tce)
		assert.Contains(t, tce.Error(), "slices or arrays")
	})

	t.Run("self-referential types terminate and are rejected", func(t *testing.T) {
		cache := NewCache()
		_, err := cache.GetTable("id", TypeInteger, "nodes", reflect.TypeOf(selfRef{}))

		var tce *TableCreationError
		require.ErrorAs(t, err, &tce)
		assert.Contains(t, tce.Error(), "nested structs or maps")
	})

	t.Run("failed derivations are not cached", func(t *testing.T) {
		type model struct {
			Tags []string
		}
		cache := NewCache()
		_, err := cache.GetTable("id", TypeInteger, "models", reflect.TypeOf(model{}))
		require.Error(t, err)
		_, err = cache.GetTable("id", TypeInteger, "models", reflect.TypeOf(model{}))
		require.Error(t, err)
	})
}

func TestCacheBehavior(t *testing.T) {
	t.Run("repeated derivation returns the cached table", func(t *testing.T) {
		cache := NewCache()
		first, err := cache.GetTable("id", TypeInteger, "people", reflect.TypeOf(person{}))
		require.NoError(t, err)
		second, err := cache.GetTable("id", TypeInteger, "people", reflect.TypeOf(person{}))
		require.NoError(t, err)
		assert.Same(t, first, second)
	})

	t.Run("pointer and value types share an entry", func(t *testing.T) {
		cache := NewCache()
		byValue, err := cache.GetTable("id", TypeInteger, "people", reflect.TypeOf(person{}))
		require.NoError(t, err)
		byPointer, err := cache.GetTable("id", TypeInteger, "people", reflect.TypeOf(&person{}))
		require.NoError(t, err)
		assert.Same(t, byValue, byPointer)
	})

	t.Run("concurrent first use derives once", func(t *testing.T) {
		cache := NewCache()

		const workers = 16
		tables := make([]*Table, workers)
		var wg sync.WaitGroup
		wg.Add(workers)
		for i := 0; i < workers; i++ {
			go func(i int) {
				defer wg.Done()
				table, err := cache.GetTable("id", TypeInteger, "people", reflect.TypeOf(person{}))
				assert.NoError(t, err)
				tables[i] = table
			}(i)
		}
		wg.Wait()

		for i := 1; i < workers; i++ {
			assert.Same(t, tables[0], tables[i])
		}
	})

	t.Run("cached info matches the table derivation", func(t *testing.T) {
		cache := NewCache()
		_, err := cache.GetTable("id", TypeInteger, "people", reflect.TypeOf(person{}))
		require.NoError(t, err)

		info, err := cache.Info("id", TypeInteger, "people", reflect.TypeOf(person{}))
		require.NoError(t, err)
		require.Len(t, info.Fields, 2)
		assert.Equal(t, "name", info.Fields[0].Name)
	})
}
