package typeinfo

import (
	"fmt"
	"net/url"
	"reflect"
	"time"

	"github.com/google/uuid"
)

var (
	timeType = reflect.TypeOf(time.Time{})
	urlType  = reflect.TypeOf(url.URL{})
	uuidType = reflect.TypeOf(uuid.UUID{})
)

// Introspect derives the TypeInfo for t. Pointer types become
// KindOptional wrappers, maps short-circuit into KindDynamicKeyed without
// walking a synthetic sequence, and a type already on the current visit
// path is reported as KindCyclic so self-referential types terminate.
//
// Introspect itself does not judge persistability; a schema layer decides
// which shapes it can store. It fails only for types that cannot be
// described at all (channels, funcs, bare interfaces).
func Introspect(t reflect.Type) (*TypeInfo, error) {
	w := walker{}
	return w.walk(t)
}

type walker struct {
	// path holds the types currently being visited, outermost first.
	path []reflect.Type
}

func (w *walker) walk(t reflect.Type) (*TypeInfo, error) {
	if t.Kind() == reflect.Pointer {
		elem, err := w.walk(t.Elem())
		if err != nil {
			return nil, err
		}
		return &TypeInfo{Kind: KindOptional, Elem: elem}, nil
	}

	// Whitelisted leaves before any structural decomposition: their own
	// internals (a UUID's byte array, a URL's parts) are not columns.
	if leaf, ok := LeafOf(t); ok {
		return &TypeInfo{Kind: KindSingle, Leaf: leaf}, nil
	}

	for _, p := range w.path {
		if p == t {
			return &TypeInfo{Kind: KindCyclic}, nil
		}
	}

	switch t.Kind() {
	case reflect.Struct:
		w.path = append(w.path, t)
		defer func() { w.path = w.path[:len(w.path)-1] }()

		refs, err := StructFields(t)
		if err != nil {
			return nil, err
		}
		fields := make([]Field, 0, len(refs))
		for _, ref := range refs {
			info, err := w.walk(ref.Type)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", ref.Name, err)
			}
			fields = append(fields, Field{
				Name:   ref.Name,
				GoName: ref.GoName,
				Index:  ref.Index,
				Info:   info,
			})
		}
		return &TypeInfo{Kind: KindKeyed, Fields: fields}, nil

	case reflect.Map:
		w.path = append(w.path, t)
		defer func() { w.path = w.path[:len(w.path)-1] }()

		key, err := w.walk(t.Key())
		if err != nil {
			return nil, err
		}
		value, err := w.walk(t.Elem())
		if err != nil {
			return nil, err
		}
		return &TypeInfo{Kind: KindDynamicKeyed, Key: key, Value: value}, nil

	case reflect.Slice, reflect.Array:
		w.path = append(w.path, t)
		defer func() { w.path = w.path[:len(w.path)-1] }()

		elem, err := w.walk(t.Elem())
		if err != nil {
			return nil, err
		}
		return &TypeInfo{Kind: KindUnkeyed, Elem: elem}, nil

	default:
		return nil, fmt.Errorf("cannot introspect %s type %s", t.Kind(), t)
	}
}

// LeafOf classifies t as a scalar leaf, reporting false for composite
// types. Named types over primitive kinds classify by their underlying
// kind; the whitelist types match by identity, plus any byte slice.
func LeafOf(t reflect.Type) (Leaf, bool) {
	switch t {
	case timeType:
		return LeafTime, true
	case urlType:
		return LeafURL, true
	case uuidType:
		return LeafUUID, true
	}
	if t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8 {
		return LeafBytes, true
	}

	switch t.Kind() {
	case reflect.Bool:
		return LeafBool, true
	case reflect.Int:
		return LeafInt, true
	case reflect.Int8:
		return LeafInt8, true
	case reflect.Int16:
		return LeafInt16, true
	case reflect.Int32:
		return LeafInt32, true
	case reflect.Int64:
		return LeafInt64, true
	case reflect.Uint:
		return LeafUint, true
	case reflect.Uint8:
		return LeafUint8, true
	case reflect.Uint16:
		return LeafUint16, true
	case reflect.Uint32:
		return LeafUint32, true
	case reflect.Uint64:
		return LeafUint64, true
	case reflect.Float32:
		return LeafFloat32, true
	case reflect.Float64:
		return LeafFloat64, true
	case reflect.String:
		return LeafString, true
	}
	return 0, false
}
