package query

// Cmp tags a query-parameter value with a comparison operator other
// than equality. Use the constructors rather than building one by hand.
type Cmp struct {
	Op    Operator
	Value any
}

// GreaterThan matches rows where the column is strictly greater.
func GreaterThan(value any) Cmp { return Cmp{Op: OpGreaterThan, Value: value} }

// AtLeast matches rows where the column is greater or equal.
func AtLeast(value any) Cmp { return Cmp{Op: OpGreaterThanOrEqual, Value: value} }

// LessThan matches rows where the column is strictly smaller.
func LessThan(value any) Cmp { return Cmp{Op: OpLessThan, Value: value} }

// AtMost matches rows where the column is smaller or equal.
func AtMost(value any) Cmp { return Cmp{Op: OpLessThanOrEqual, Value: value} }

// Range tags a query-parameter value with two endpoints. It compiles
// into two conjoined predicates; both endpoints must be set.
type Range struct {
	Low       any
	High      any
	Exclusive bool
}

// InclusiveRange matches column >= low AND column <= high.
func InclusiveRange(low, high any) Range { return Range{Low: low, High: high} }

// ExclusiveRange matches column > low AND column < high.
func ExclusiveRange(low, high any) Range { return Range{Low: low, High: high, Exclusive: true} }

// Direction orders a column ascending or descending.
type Direction int

const (
	Asc Direction = iota
	Desc
)

// String returns the SQL representation of the direction.
func (d Direction) String() string {
	if d == Desc {
		return "DESC"
	}
	return "ASC"
}

// Ordering is one ORDER BY entry.
type Ordering struct {
	Column    string
	Direction Direction
}

// Sort is an ordering directive carried in a query-parameters struct.
// It contributes to the compiled order list, not to the filter.
type Sort []Ordering

// Ascending orders by the given columns, ascending.
func Ascending(columns ...string) Sort {
	s := make(Sort, len(columns))
	for i, c := range columns {
		s[i] = Ordering{Column: c, Direction: Asc}
	}
	return s
}

// Descending orders by the given columns, descending.
func Descending(columns ...string) Sort {
	s := make(Sort, len(columns))
	for i, c := range columns {
		s[i] = Ordering{Column: c, Direction: Desc}
	}
	return s
}

// Then appends further orderings.
func (s Sort) Then(more Sort) Sort { return append(s, more...) }

// Pagination is a LIMIT/OFFSET directive carried in a query-parameters
// struct. It contributes to the compiled pagination, not to the filter.
type Pagination struct {
	Limit  int
	Offset int
}

// Page returns a pagination directive.
func Page(limit, offset int) Pagination { return Pagination{Limit: limit, Offset: offset} }
