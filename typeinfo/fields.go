package typeinfo

import (
	"fmt"
	"reflect"
	"strings"
)

// FieldRef locates one mappable struct field without describing its
// type's shape. Both the introspection walk and the row codec resolve
// fields through the same list so column naming stays consistent.
type FieldRef struct {
	Name   string // column name
	GoName string // struct field name
	Index  []int  // index path for FieldByIndex
	Type   reflect.Type
}

// StructFields returns the mappable fields of a struct type in
// declaration order. Unexported fields and fields tagged db:"-" are
// skipped. Anonymous embedded structs without a db tag are flattened
// into their owner; the first field wins a name collision.
func StructFields(t reflect.Type) ([]FieldRef, error) {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%s is not a struct type", t)
	}

	var refs []FieldRef
	seen := make(map[string]struct{})

	var walk func(t reflect.Type, base []int)
	walk = func(t reflect.Type, base []int) {
		for i := 0; i < t.NumField(); i++ {
			sf := t.Field(i)
			if sf.PkgPath != "" && !sf.Anonymous {
				continue
			}
			tag := sf.Tag.Get("db")
			if tag == "-" {
				continue
			}

			index := append(append([]int(nil), base...), i)

			if sf.Anonymous && tag == "" && sf.Type.Kind() == reflect.Struct {
				if _, whitelisted := LeafOf(sf.Type); !whitelisted {
					walk(sf.Type, index)
					continue
				}
			}

			name := tag
			if name == "" {
				name = ToSnakeCase(sf.Name)
			}
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}

			refs = append(refs, FieldRef{
				Name:   name,
				GoName: sf.Name,
				Index:  index,
				Type:   sf.Type,
			})
		}
	}
	walk(t, nil)

	return refs, nil
}

// ToSnakeCase converts a Go identifier to snake_case, splitting on
// camelCase boundaries and acronym ends ("HTTPServer" -> "http_server").
func ToSnakeCase(s string) string {
	var result []rune
	runes := []rune(s)

	for i, r := range runes {
		if i > 0 && r >= 'A' && r <= 'Z' {
			prev := runes[i-1]
			if prev >= 'a' && prev <= 'z' {
				result = append(result, '_')
			} else if i+1 < len(runes) && runes[i+1] >= 'a' && runes[i+1] <= 'z' && prev != '_' {
				result = append(result, '_')
			}
		}
		if r >= 'A' && r <= 'Z' {
			result = append(result, r+('a'-'A'))
		} else {
			result = append(result, r)
		}
	}
	return string(result)
}

// TableNameFor derives the default table name for a model type: the
// pluralized snake_case of the type's name.
func TableNameFor(t reflect.Type) string {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return pluralize(ToSnakeCase(t.Name()))
}

func pluralize(s string) string {
	if strings.HasSuffix(s, "s") ||
		strings.HasSuffix(s, "x") ||
		strings.HasSuffix(s, "z") {
		return s + "es"
	}
	if strings.HasSuffix(s, "y") {
		return s[:len(s)-1] + "ies"
	}
	return s + "s"
}
