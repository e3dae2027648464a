package codec

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"reflect"
	"time"

	"github.com/google/uuid"

	"github.com/quarrydb/quarry/typeinfo"
)

// Encoder converts model instances to rows.
type Encoder struct {
	Dates DateFormat
}

// Encode flattens a struct instance into an ordered row. Optional
// fields that are unset are omitted rather than written as explicit
// nulls. Integer widths widen to int64 (uint64 stays unsigned) so
// values bind uniformly regardless of the field's declared width.
func (e Encoder) Encode(instance any) (Row, error) {
	rv := reflect.ValueOf(instance)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, fmt.Errorf("cannot encode nil instance")
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, fmt.Errorf("cannot encode %s value, need a struct", rv.Kind())
	}

	refs, err := typeinfo.StructFields(rv.Type())
	if err != nil {
		return nil, err
	}

	row := make(Row, 0, len(refs))
	for _, ref := range refs {
		fv := rv.FieldByIndex(ref.Index)
		if fv.Kind() == reflect.Pointer {
			if fv.IsNil() {
				continue
			}
			fv = fv.Elem()
		}
		value, err := e.encodeLeaf(fv)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", ref.Name, err)
		}
		row = append(row, Cell{Name: ref.Name, Value: value})
	}
	return row, nil
}

// EncodeValue applies the leaf transforms to a single value: blob to
// base64 text, URL and UUID to strings, time per the date format,
// integers widened. The query compiler uses it so filter parameters
// bind the same way encoded rows do.
func (e Encoder) EncodeValue(value any) (any, error) {
	rv := reflect.ValueOf(value)
	if !rv.IsValid() {
		return nil, nil
	}
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, nil
		}
		rv = rv.Elem()
	}
	return e.encodeLeaf(rv)
}

func (e Encoder) encodeLeaf(v reflect.Value) (any, error) {
	switch x := v.Interface().(type) {
	case time.Time:
		return e.encodeTime(x), nil
	case uuid.UUID:
		return x.String(), nil
	case url.URL:
		return x.String(), nil
	}

	if v.Kind() == reflect.Slice && v.Type().Elem().Kind() == reflect.Uint8 {
		return base64.StdEncoding.EncodeToString(v.Bytes()), nil
	}

	switch v.Kind() {
	case reflect.Bool:
		return v.Bool(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint(), nil
	case reflect.Float32, reflect.Float64:
		return v.Float(), nil
	case reflect.String:
		return v.String(), nil
	default:
		return nil, fmt.Errorf("unsupported %s value", v.Kind())
	}
}

func (e Encoder) encodeTime(t time.Time) any {
	switch e.Dates {
	case FormatDate:
		return t.Format(layoutDate)
	case FormatTime:
		return t.Format(layoutTime)
	case FormatTimestamp:
		return t.Format(layoutTimestamp)
	default:
		return float64(t.Unix()) + float64(t.Nanosecond())/1e9
	}
}
