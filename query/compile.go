package query

import (
	"reflect"

	"github.com/quarrydb/quarry/codec"
	"github.com/quarrydb/quarry/schema"
	"github.com/quarrydb/quarry/typeinfo"
)

// Compiled is the outcome of compiling a query-parameters value.
type Compiled struct {
	// Filter is nil when no predicate was extracted.
	Filter *Filter

	// Params holds one value per filter placeholder, in placeholder
	// order.
	Params []any

	Order []Ordering

	// Page is nil when no pagination directive was present.
	Page *Pagination
}

// Compiler compiles query-parameters values against a table.
type Compiler struct {
	// Dates is the representation used for time-valued parameters; it
	// must match the format rows were encoded with.
	Dates codec.DateFormat
}

// Compile compiles with the default date representation.
func Compile(params any, table *schema.Table) (*Compiled, error) {
	return Compiler{}.Compile(params, table)
}

// Compile walks the real field values of params and produces a filter
// tree, ordering list and pagination bounds. Fields combine
// conjunctively; a slice value becomes an OR chain of equalities over
// its column. A nil params value compiles to an empty result. A non-nil
// params value from which nothing is extractable is a QueryError.
func (c Compiler) Compile(params any, table *schema.Table) (*Compiled, error) {
	out := &Compiled{}
	if params == nil {
		return out, nil
	}

	rv := reflect.ValueOf(params)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return out, nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, &QueryError{Reason: "query parameters must be a record type"}
	}

	refs, err := typeinfo.StructFields(rv.Type())
	if err != nil {
		return nil, &QueryError{Reason: err.Error()}
	}

	enc := codec.Encoder{Dates: c.Dates}
	var filter *Filter
	usable := 0

	for _, ref := range refs {
		fv := rv.FieldByIndex(ref.Index)
		if fv.Kind() == reflect.Pointer {
			if fv.IsNil() {
				continue
			}
			fv = fv.Elem()
		}

		// Ordering and pagination directives are not part of the
		// filter.
		switch v := fv.Interface().(type) {
		case Sort:
			if len(v) == 0 {
				continue
			}
			for _, o := range v {
				if table.HasColumn(o.Column) {
					out.Order = append(out.Order, o)
				}
			}
			usable++
			continue
		case Pagination:
			page := v
			out.Page = &page
			usable++
			continue
		}

		if !table.HasColumn(ref.Name) {
			continue
		}

		switch v := fv.Interface().(type) {
		case Cmp:
			param, err := enc.EncodeValue(v.Value)
			if err != nil {
				return nil, &QueryError{Column: ref.Name, Reason: err.Error()}
			}
			filter = branch(And, filter, leaf(ref.Name, v.Op))
			out.Params = append(out.Params, param)

		case Range:
			if v.Low == nil || v.High == nil {
				return nil, &QueryError{Column: ref.Name, Reason: "range requires exactly two endpoints"}
			}
			low, err := enc.EncodeValue(v.Low)
			if err != nil {
				return nil, &QueryError{Column: ref.Name, Reason: err.Error()}
			}
			high, err := enc.EncodeValue(v.High)
			if err != nil {
				return nil, &QueryError{Column: ref.Name, Reason: err.Error()}
			}
			lowOp, highOp := OpGreaterThanOrEqual, OpLessThanOrEqual
			if v.Exclusive {
				lowOp, highOp = OpGreaterThan, OpLessThan
			}
			pair := branch(And, leaf(ref.Name, lowOp), leaf(ref.Name, highOp))
			filter = branch(And, filter, pair)
			out.Params = append(out.Params, low, high)

		default:
			if fv.Kind() == reflect.Slice && fv.Type().Elem().Kind() != reflect.Uint8 {
				if fv.Len() == 0 {
					return nil, &QueryError{Column: ref.Name, Reason: "empty filter collection"}
				}
				var chain *Filter
				for i := 0; i < fv.Len(); i++ {
					param, err := enc.EncodeValue(fv.Index(i).Interface())
					if err != nil {
						return nil, &QueryError{Column: ref.Name, Reason: err.Error()}
					}
					chain = branch(Or, chain, leaf(ref.Name, OpEqual))
					out.Params = append(out.Params, param)
				}
				filter = branch(And, filter, chain)
			} else {
				param, err := enc.EncodeValue(fv.Interface())
				if err != nil {
					return nil, &QueryError{Column: ref.Name, Reason: err.Error()}
				}
				filter = branch(And, filter, leaf(ref.Name, OpEqual))
				out.Params = append(out.Params, param)
			}
		}
		usable++
	}

	if usable == 0 {
		return nil, &QueryError{Reason: "parameters present but unusable"}
	}

	out.Filter = filter
	return out, nil
}
