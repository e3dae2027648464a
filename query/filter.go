// Package query compiles a query-parameters value into a filter
// predicate tree, an ordering list and pagination bounds. The filter
// carries a positional parameter list whose order matches placeholder
// order exactly, left to right and depth first, because parameters are
// bound positionally.
package query

// Operator represents a comparison operator on a filter leaf.
type Operator int

const (
	OpEqual Operator = iota
	OpGreaterThan
	OpGreaterThanOrEqual
	OpLessThan
	OpLessThanOrEqual
)

// String returns the SQL representation of the operator.
func (o Operator) String() string {
	switch o {
	case OpEqual:
		return "="
	case OpGreaterThan:
		return ">"
	case OpGreaterThanOrEqual:
		return ">="
	case OpLessThan:
		return "<"
	case OpLessThanOrEqual:
		return "<="
	default:
		return "UNKNOWN"
	}
}

// Conjunction joins the two sides of a branch node.
type Conjunction int

const (
	And Conjunction = iota
	Or
)

// String returns the SQL representation of the conjunction.
func (c Conjunction) String() string {
	if c == Or {
		return "OR"
	}
	return "AND"
}

// Filter is a binary predicate tree. A node is either a leaf comparing
// one column against one positional placeholder, or a branch joining
// two subtrees. Left being nil marks a leaf.
type Filter struct {
	// Leaf fields.
	Column string
	Op     Operator

	// Branch fields.
	Left  *Filter
	Right *Filter
	Join  Conjunction
}

// IsLeaf reports whether the node is a single comparison.
func (f *Filter) IsLeaf() bool { return f.Left == nil }

// Leaves counts the comparison leaves, which equals the number of
// placeholders the filter renders.
func (f *Filter) Leaves() int {
	if f == nil {
		return 0
	}
	if f.IsLeaf() {
		return 1
	}
	return f.Left.Leaves() + f.Right.Leaves()
}

func leaf(column string, op Operator) *Filter {
	return &Filter{Column: column, Op: op}
}

func branch(join Conjunction, left, right *Filter) *Filter {
	if left == nil {
		return right
	}
	if right == nil {
		return left
	}
	return &Filter{Left: left, Right: right, Join: join}
}
