// Package codec converts model instances to and from flat name-value
// rows. Encoding walks a struct's fields applying leaf transforms
// (blob to base64 text, URL and UUID to their string forms, dates per a
// caller-selected representation); decoding reverses them with typed
// errors for missing keys, unexpected nulls and mismatched kinds.
package codec

// DateFormat selects how time values are represented on a row. The
// decode path must be given the same format the row was written with.
type DateFormat int

const (
	// FormatDouble stores seconds since the Unix epoch as a float64.
	FormatDouble DateFormat = iota

	// FormatDate stores the calendar date as "2006-01-02".
	FormatDate

	// FormatTime stores the clock time as "15:04:05".
	FormatTime

	// FormatTimestamp stores "2006-01-02 15:04:05".
	FormatTimestamp
)

// String returns the string representation of the date format.
func (f DateFormat) String() string {
	switch f {
	case FormatDouble:
		return "double"
	case FormatDate:
		return "date"
	case FormatTime:
		return "time"
	case FormatTimestamp:
		return "timestamp"
	default:
		return "unknown"
	}
}

const (
	layoutDate      = "2006-01-02"
	layoutTime      = "15:04:05"
	layoutTimestamp = "2006-01-02 15:04:05"
)

// Cell is one named value of an encoded row.
type Cell struct {
	Name  string
	Value any
}

// Row is an ordered name-value mapping produced by Encode and consumed
// by the SQL generation layer. Order follows the model's field order.
type Row []Cell

// Get returns the value for the given column name.
func (r Row) Get(name string) (any, bool) {
	for _, c := range r {
		if c.Name == name {
			return c.Value, true
		}
	}
	return nil, false
}

// Names returns the column names in row order.
func (r Row) Names() []string {
	names := make([]string, len(r))
	for i, c := range r {
		names[i] = c.Name
	}
	return names
}

// Values returns the values in row order.
func (r Row) Values() []any {
	values := make([]any, len(r))
	for i, c := range r {
		values[i] = c.Value
	}
	return values
}

// Without returns a copy of the row with the named cell removed.
func (r Row) Without(name string) Row {
	out := make(Row, 0, len(r))
	for _, c := range r {
		if c.Name != name {
			out = append(out, c)
		}
	}
	return out
}
