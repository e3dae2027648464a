package typeinfo

import (
	"net/url"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type plainModel struct {
	Name      string
	Age       int64
	CreatedAt time.Time
	Tagged    string `db:"label"`
	Skipped   string `db:"-"`
	hidden    string
}

type node struct {
	Value int64
	Next  *node
}

type pingNode struct {
	Pong *pongNode
}

type pongNode struct {
	Ping *pingNode
}

func TestIntrospect(t *testing.T) {
	t.Run("flat record", func(t *testing.T) {
		info, err := Introspect(reflect.TypeOf(plainModel{}))
		require.NoError(t, err)
		require.Equal(t, KindKeyed, info.Kind)
		require.Len(t, info.Fields, 4)

		assert.Equal(t, "name", info.Fields[0].Name)
		assert.Equal(t, KindSingle, info.Fields[0].Info.Kind)
		assert.Equal(t, LeafString, info.Fields[0].Info.Leaf)

		assert.Equal(t, "age", info.Fields[1].Name)
		assert.Equal(t, LeafInt64, info.Fields[1].Info.Leaf)

		assert.Equal(t, "created_at", info.Fields[2].Name)
		assert.Equal(t, LeafTime, info.Fields[2].Info.Leaf)

		assert.Equal(t, "label", info.Fields[3].Name)
	})

	t.Run("optional wraps the field shape", func(t *testing.T) {
		type model struct {
			Age *int64
		}
		info, err := Introspect(reflect.TypeOf(model{}))
		require.NoError(t, err)
		age := info.Fields[0].Info
		require.Equal(t, KindOptional, age.Kind)
		assert.Equal(t, KindSingle, age.Elem.Kind)
		assert.Equal(t, LeafInt64, age.Elem.Leaf)
	})

	t.Run("whitelisted leaves stay scalar", func(t *testing.T) {
		type model struct {
			Blob []byte
			Home url.URL
			Key  uuid.UUID
			At   time.Time
		}
		info, err := Introspect(reflect.TypeOf(model{}))
		require.NoError(t, err)

		leaves := []Leaf{LeafBytes, LeafURL, LeafUUID, LeafTime}
		for i, want := range leaves {
			assert.Equal(t, KindSingle, info.Fields[i].Info.Kind, info.Fields[i].Name)
			assert.Equal(t, want, info.Fields[i].Info.Leaf, info.Fields[i].Name)
		}
	})

	t.Run("map short-circuits to dynamicKeyed", func(t *testing.T) {
		info, err := Introspect(reflect.TypeOf(map[string]int64{}))
		require.NoError(t, err)
		require.Equal(t, KindDynamicKeyed, info.Kind)
		assert.Equal(t, LeafString, info.Key.Leaf)
		assert.Equal(t, LeafInt64, info.Value.Leaf)
	})

	t.Run("slice is unkeyed", func(t *testing.T) {
		info, err := Introspect(reflect.TypeOf([]string{}))
		require.NoError(t, err)
		require.Equal(t, KindUnkeyed, info.Kind)
		assert.Equal(t, LeafString, info.Elem.Leaf)
	})

	t.Run("self reference terminates with cyclic marker", func(t *testing.T) {
		info, err := Introspect(reflect.TypeOf(node{}))
		require.NoError(t, err)

		next := info.Fields[1].Info
		require.Equal(t, KindOptional, next.Kind)
		assert.Equal(t, KindCyclic, next.Elem.Kind)
	})

	t.Run("mutual reference terminates with cyclic marker", func(t *testing.T) {
		info, err := Introspect(reflect.TypeOf(pingNode{}))
		require.NoError(t, err)

		pong := info.Fields[0].Info
		require.Equal(t, KindOptional, pong.Kind)
		require.Equal(t, KindKeyed, pong.Elem.Kind)

		ping := pong.Elem.Fields[0].Info
		require.Equal(t, KindOptional, ping.Kind)
		assert.Equal(t, KindCyclic, ping.Elem.Kind)
	})

	t.Run("identical types introspect identically", func(t *testing.T) {
		first, err := Introspect(reflect.TypeOf(plainModel{}))
		require.NoError(t, err)
		second, err := Introspect(reflect.TypeOf(plainModel{}))
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("undescribable types fail", func(t *testing.T) {
		type model struct {
			Notify chan int
		}
		_, err := Introspect(reflect.TypeOf(model{}))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "notify")
	})
}

func TestStructFields(t *testing.T) {
	t.Run("skips unexported and omitted fields", func(t *testing.T) {
		refs, err := StructFields(reflect.TypeOf(plainModel{}))
		require.NoError(t, err)
		require.Len(t, refs, 4)
		for _, ref := range refs {
			assert.NotEqual(t, "skipped", ref.Name)
			assert.NotEqual(t, "hidden", ref.Name)
		}
	})

	t.Run("flattens embedded structs", func(t *testing.T) {
		type timestamps struct {
			CreatedAt time.Time
		}
		type model struct {
			timestamps
			Name string
		}
		refs, err := StructFields(reflect.TypeOf(model{}))
		require.NoError(t, err)
		require.Len(t, refs, 2)
		assert.Equal(t, "created_at", refs[0].Name)
		assert.Equal(t, []int{0, 0}, refs[0].Index)
		assert.Equal(t, "name", refs[1].Name)
	})

	t.Run("rejects non-struct types", func(t *testing.T) {
		_, err := StructFields(reflect.TypeOf(42))
		assert.Error(t, err)
	})
}

func TestToSnakeCase(t *testing.T) {
	cases := map[string]string{
		"Name":       "name",
		"CreatedAt":  "created_at",
		"HTTPServer": "http_server",
		"UserID":     "user_id",
		"ID":         "id",
		"age":        "age",
	}
	for in, want := range cases {
		assert.Equal(t, want, ToSnakeCase(in), in)
	}
}

func TestTableNameFor(t *testing.T) {
	type User struct{}
	type Box struct{}
	type Category struct{}

	assert.Equal(t, "users", TableNameFor(reflect.TypeOf(User{})))
	assert.Equal(t, "boxes", TableNameFor(reflect.TypeOf(&Box{})))
	assert.Equal(t, "categories", TableNameFor(reflect.TypeOf(Category{})))
}
