// Package table provides the in-memory tabular data model for skybench.
//
// A Table is an ordered sequence of named columns, each holding a
// homogeneous value sequence. All columns of a table have the same
// length. Missing float values are represented as NaN; other kinds
// have no missing representation.
//
// A ColumnMap is the order-preserving name-to-values mapping used as
// the intermediate form between tables and columnar file writers.
// Converting a table to a ColumnMap aliases the underlying slices.
package table

import (
	"math"

	"github.com/skybench/skybench/pkg/errors"
)

// Kind identifies the value type of a column.
type Kind uint8

const (
	// KindFloat64 is a 64-bit floating point column. NaN marks missing values.
	KindFloat64 Kind = iota
	// KindInt64 is a 64-bit integer column.
	KindInt64
	// KindString is a text column.
	KindString
	// KindBool is a boolean column.
	KindBool
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindFloat64:
		return "float64"
	case KindInt64:
		return "int64"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	default:
		return "unknown"
	}
}

// Column is a named, homogeneous value sequence. Exactly one of the
// value slices is populated, selected by Kind.
type Column struct {
	Name string
	Kind Kind

	Floats  []float64
	Ints    []int64
	Strings []string
	Bools   []bool
}

// NewFloat64Column creates a float64 column. The slice is aliased, not copied.
func NewFloat64Column(name string, values []float64) *Column {
	return &Column{Name: name, Kind: KindFloat64, Floats: values}
}

// NewInt64Column creates an int64 column. The slice is aliased, not copied.
func NewInt64Column(name string, values []int64) *Column {
	return &Column{Name: name, Kind: KindInt64, Ints: values}
}

// NewStringColumn creates a string column. The slice is aliased, not copied.
func NewStringColumn(name string, values []string) *Column {
	return &Column{Name: name, Kind: KindString, Strings: values}
}

// NewBoolColumn creates a bool column. The slice is aliased, not copied.
func NewBoolColumn(name string, values []bool) *Column {
	return &Column{Name: name, Kind: KindBool, Bools: values}
}

// Len returns the number of values in the column.
func (c *Column) Len() int {
	switch c.Kind {
	case KindFloat64:
		return len(c.Floats)
	case KindInt64:
		return len(c.Ints)
	case KindString:
		return len(c.Strings)
	case KindBool:
		return len(c.Bools)
	default:
		return 0
	}
}

// Value returns the value at index i as an interface. Missing float
// values are returned as nil.
func (c *Column) Value(i int) interface{} {
	switch c.Kind {
	case KindFloat64:
		v := c.Floats[i]
		if math.IsNaN(v) {
			return nil
		}
		return v
	case KindInt64:
		return c.Ints[i]
	case KindString:
		return c.Strings[i]
	case KindBool:
		return c.Bools[i]
	default:
		return nil
	}
}

// Values returns the underlying value slice as an interface. The
// slice is aliased, not copied.
func (c *Column) Values() interface{} {
	switch c.Kind {
	case KindFloat64:
		return c.Floats
	case KindInt64:
		return c.Ints
	case KindString:
		return c.Strings
	case KindBool:
		return c.Bools
	default:
		return nil
	}
}

// equal reports whether two columns have the same name, kind and values.
// NaN floats compare equal to NaN.
func (c *Column) equal(o *Column) bool {
	if c.Name != o.Name || c.Kind != o.Kind || c.Len() != o.Len() {
		return false
	}
	switch c.Kind {
	case KindFloat64:
		for i, v := range c.Floats {
			w := o.Floats[i]
			if v != w && !(math.IsNaN(v) && math.IsNaN(w)) {
				return false
			}
		}
	case KindInt64:
		for i, v := range c.Ints {
			if v != o.Ints[i] {
				return false
			}
		}
	case KindString:
		for i, v := range c.Strings {
			if v != o.Strings[i] {
				return false
			}
		}
	case KindBool:
		for i, v := range c.Bools {
			if v != o.Bools[i] {
				return false
			}
		}
	}
	return true
}

// Table is an ordered collection of equally sized named columns.
type Table struct {
	cols   []*Column
	byName map[string]int
}

// New creates a table from the given columns. All columns must have
// distinct names and the same length.
func New(cols ...*Column) (*Table, error) {
	t := &Table{
		cols:   make([]*Column, 0, len(cols)),
		byName: make(map[string]int, len(cols)),
	}

	nrows := -1
	for _, col := range cols {
		if col.Name == "" {
			return nil, errors.New(errors.ErrorTypeValidation, "column name must not be empty")
		}
		if _, dup := t.byName[col.Name]; dup {
			return nil, errors.Newf(errors.ErrorTypeValidation, "duplicate column name %q", col.Name)
		}
		if nrows == -1 {
			nrows = col.Len()
		} else if col.Len() != nrows {
			return nil, errors.Newf(errors.ErrorTypeValidation,
				"column %q has %d rows, expected %d", col.Name, col.Len(), nrows)
		}
		t.byName[col.Name] = len(t.cols)
		t.cols = append(t.cols, col)
	}

	return t, nil
}

// NumRows returns the row count, uniform across columns.
func (t *Table) NumRows() int {
	if len(t.cols) == 0 {
		return 0
	}
	return t.cols[0].Len()
}

// NumCols returns the number of columns.
func (t *Table) NumCols() int {
	return len(t.cols)
}

// Names returns the column names in table order.
func (t *Table) Names() []string {
	names := make([]string, len(t.cols))
	for i, col := range t.cols {
		names[i] = col.Name
	}
	return names
}

// Column returns the named column, or nil if absent.
func (t *Table) Column(name string) *Column {
	idx, ok := t.byName[name]
	if !ok {
		return nil
	}
	return t.cols[idx]
}

// ColumnAt returns the column at position i.
func (t *Table) ColumnAt(i int) *Column {
	return t.cols[i]
}

// Row returns row i as a name-to-value map.
func (t *Table) Row(i int) map[string]interface{} {
	row := make(map[string]interface{}, len(t.cols))
	for _, col := range t.cols {
		row[col.Name] = col.Value(i)
	}
	return row
}

// Equal reports whether two tables have identical column names, order,
// kinds and values.
func (t *Table) Equal(o *Table) bool {
	if t.NumCols() != o.NumCols() {
		return false
	}
	for i, col := range t.cols {
		if !col.equal(o.cols[i]) {
			return false
		}
	}
	return true
}

// Columns converts the table to an order-preserving mapping from
// column name to that column's full value sequence. The value slices
// alias the table's storage; no copying is performed. A well-formed
// table always converts.
func (t *Table) Columns() *ColumnMap {
	m := NewColumnMap()
	for _, col := range t.cols {
		m.Set(col.Name, col.Values())
	}
	return m
}

// FromColumns reassembles a table from a column mapping. Every entry
// must be one of the supported value slices and all entries must have
// the same length, otherwise an error is returned.
func FromColumns(m *ColumnMap) (*Table, error) {
	cols := make([]*Column, 0, m.Len())
	for _, name := range m.Names() {
		values, _ := m.Get(name)
		col, err := columnFromValues(name, values)
		if err != nil {
			return nil, err
		}
		cols = append(cols, col)
	}
	return New(cols...)
}

func columnFromValues(name string, values interface{}) (*Column, error) {
	switch vs := values.(type) {
	case []float64:
		return NewFloat64Column(name, vs), nil
	case []int64:
		return NewInt64Column(name, vs), nil
	case []string:
		return NewStringColumn(name, vs), nil
	case []bool:
		return NewBoolColumn(name, vs), nil
	default:
		return nil, errors.Newf(errors.ErrorTypeData,
			"column %q has unsupported value type %T", name, values)
	}
}
