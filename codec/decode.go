package codec

import (
	"encoding/base64"
	"fmt"
	"math"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/quarrydb/quarry/typeinfo"
)

// canonicalID is the column name a model's identifier field maps to.
const canonicalID = "id"

// Decoder materializes model instances from driver rows.
type Decoder struct {
	// Dates must match the format the rows were encoded with.
	Dates DateFormat

	// IDColumn is the table's identifier column name. When it differs
	// from the model's canonical "id" field the row key is renamed
	// before matching.
	IDColumn string
}

// Decode fills the struct pointed to by dest from a row. Row keys are
// folded to lower case first, to tolerate storage engines that fold
// identifier case.
func (d Decoder) Decode(row map[string]any, dest any) error {
	rv := reflect.ValueOf(dest)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("decode destination must be a non-nil pointer")
	}
	rv = rv.Elem()
	if rv.Kind() != reflect.Struct {
		return fmt.Errorf("cannot decode into %s value, need a struct", rv.Kind())
	}

	folded := make(map[string]any, len(row))
	for k, v := range row {
		folded[strings.ToLower(k)] = v
	}

	if idColumn := strings.ToLower(d.IDColumn); idColumn != "" && idColumn != canonicalID {
		if v, ok := folded[idColumn]; ok {
			folded[canonicalID] = v
			delete(folded, idColumn)
		}
	}

	refs, err := typeinfo.StructFields(rv.Type())
	if err != nil {
		return err
	}

	for _, ref := range refs {
		raw, ok := folded[strings.ToLower(ref.Name)]
		if !ok {
			return &KeyNotFoundError{Column: ref.Name}
		}

		fv := rv.FieldByIndex(ref.Index)
		if raw == nil {
			if fv.Kind() == reflect.Pointer {
				fv.Set(reflect.Zero(fv.Type()))
				continue
			}
			return &ValueMissingError{Column: ref.Name}
		}

		if fv.Kind() == reflect.Pointer {
			p := reflect.New(fv.Type().Elem())
			if err := d.decodeLeaf(ref.Name, raw, p.Elem()); err != nil {
				return err
			}
			fv.Set(p)
			continue
		}
		if err := d.decodeLeaf(ref.Name, raw, fv); err != nil {
			return err
		}
	}
	return nil
}

// Decode materializes a T from a row.
func Decode[T any](d Decoder, row map[string]any) (T, error) {
	var v T
	if err := d.Decode(row, &v); err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}

// DecodeAll materializes one T per row. The first failing row aborts
// the whole batch; callers never observe a partial result.
func DecodeAll[T any](d Decoder, rows []map[string]any) ([]T, error) {
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		v, err := Decode[T](d, row)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (d Decoder) decodeLeaf(column string, raw any, out reflect.Value) error {
	switch out.Type() {
	case reflect.TypeOf(time.Time{}):
		return d.decodeTime(column, raw, out)
	case reflect.TypeOf(uuid.UUID{}):
		s, ok := textValue(raw)
		if !ok {
			return &TypeMismatchError{Column: column, Value: raw, Expected: "uuid"}
		}
		id, err := uuid.Parse(s)
		if err != nil {
			return &TypeMismatchError{Column: column, Value: raw, Expected: "uuid"}
		}
		out.Set(reflect.ValueOf(id))
		return nil
	case reflect.TypeOf(url.URL{}):
		s, ok := textValue(raw)
		if !ok {
			return &TypeMismatchError{Column: column, Value: raw, Expected: "url"}
		}
		u, err := url.ParseRequestURI(s)
		if err != nil {
			return &TypeMismatchError{Column: column, Value: raw, Expected: "url"}
		}
		out.Set(reflect.ValueOf(*u))
		return nil
	}

	if out.Kind() == reflect.Slice && out.Type().Elem().Kind() == reflect.Uint8 {
		s, ok := textValue(raw)
		if !ok {
			return &TypeMismatchError{Column: column, Value: raw, Expected: "base64 text"}
		}
		b, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return &DecodeError{Column: column, Value: raw, Cause: err}
		}
		out.Set(reflect.ValueOf(b).Convert(out.Type()))
		return nil
	}

	switch out.Kind() {
	case reflect.Bool:
		switch x := raw.(type) {
		case bool:
			out.SetBool(x)
		case int64:
			// SQLite stores booleans as integers.
			out.SetBool(x != 0)
		default:
			return &TypeMismatchError{Column: column, Value: raw, Expected: "bool"}
		}
		return nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, ok := intValue(raw)
		if !ok || out.OverflowInt(n) {
			return &TypeMismatchError{Column: column, Value: raw, Expected: out.Kind().String()}
		}
		out.SetInt(n)
		return nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, ok := uintValue(raw)
		if !ok || out.OverflowUint(n) {
			return &TypeMismatchError{Column: column, Value: raw, Expected: out.Kind().String()}
		}
		out.SetUint(n)
		return nil

	case reflect.Float32, reflect.Float64:
		switch x := raw.(type) {
		case float64:
			out.SetFloat(x)
		case float32:
			out.SetFloat(float64(x))
		default:
			return &TypeMismatchError{Column: column, Value: raw, Expected: out.Kind().String()}
		}
		return nil

	case reflect.String:
		s, ok := textValue(raw)
		if !ok {
			return &TypeMismatchError{Column: column, Value: raw, Expected: "string"}
		}
		out.SetString(s)
		return nil

	default:
		return &TypeMismatchError{Column: column, Value: raw, Expected: out.Type().String()}
	}
}

func (d Decoder) decodeTime(column string, raw any, out reflect.Value) error {
	if d.Dates == FormatDouble {
		var seconds float64
		switch x := raw.(type) {
		case float64:
			seconds = x
		case float32:
			seconds = float64(x)
		case int64:
			seconds = float64(x)
		case int:
			seconds = float64(x)
		case string, []byte:
			// Engines with textual column affinity store the offset as
			// its decimal text.
			s, _ := textValue(raw)
			parsed, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return &TypeMismatchError{Column: column, Value: raw, Expected: "time (seconds since epoch)"}
			}
			seconds = parsed
		default:
			return &TypeMismatchError{Column: column, Value: raw, Expected: "time (seconds since epoch)"}
		}
		sec, frac := math.Modf(seconds)
		out.Set(reflect.ValueOf(time.Unix(int64(sec), int64(math.Round(frac*1e9)))))
		return nil
	}

	s, ok := textValue(raw)
	if !ok {
		return &TypeMismatchError{Column: column, Value: raw, Expected: "time (" + d.Dates.String() + " text)"}
	}
	var layout string
	switch d.Dates {
	case FormatDate:
		layout = layoutDate
	case FormatTime:
		layout = layoutTime
	default:
		layout = layoutTimestamp
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return &TypeMismatchError{Column: column, Value: raw, Expected: "time (" + d.Dates.String() + " text)"}
	}
	out.Set(reflect.ValueOf(t))
	return nil
}

// textValue accepts the textual raw forms drivers hand back.
func textValue(raw any) (string, bool) {
	switch x := raw.(type) {
	case string:
		return x, true
	case []byte:
		return string(x), true
	default:
		return "", false
	}
}

// intValue widens any stored integer width. A stored value outside the
// signed range reports false.
func intValue(raw any) (int64, bool) {
	switch x := raw.(type) {
	case int:
		return int64(x), true
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case uint:
		return int64(x), uint64(x) <= math.MaxInt64
	case uint8:
		return int64(x), true
	case uint16:
		return int64(x), true
	case uint32:
		return int64(x), true
	case uint64:
		return int64(x), x <= math.MaxInt64
	default:
		return 0, false
	}
}

func uintValue(raw any) (uint64, bool) {
	switch x := raw.(type) {
	case int:
		return uint64(x), x >= 0
	case int8:
		return uint64(x), x >= 0
	case int16:
		return uint64(x), x >= 0
	case int32:
		return uint64(x), x >= 0
	case int64:
		return uint64(x), x >= 0
	case uint:
		return uint64(x), true
	case uint8:
		return uint64(x), true
	case uint16:
		return uint64(x), true
	case uint32:
		return uint64(x), true
	case uint64:
		return x, true
	default:
		return 0, false
	}
}
