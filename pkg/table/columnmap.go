package table

// ColumnMap is an order-preserving mapping from column name to column
// values. It is the intermediate form handed to columnar file writers,
// whose entry points expect named arrays rather than a table object.
//
// Values are normally one of the supported column slices ([]float64,
// []int64, []string, []bool); readers that encounter non-rectangular
// data may store raw per-row values (e.g. [][]float64) instead, in
// which case FromColumns will refuse to build a table.
type ColumnMap struct {
	names  []string
	values map[string]interface{}
}

// NewColumnMap creates an empty column mapping.
func NewColumnMap() *ColumnMap {
	return &ColumnMap{values: make(map[string]interface{})}
}

// Set stores values under name, preserving first-insertion order.
// Setting an existing name replaces its values in place.
func (m *ColumnMap) Set(name string, values interface{}) {
	if _, ok := m.values[name]; !ok {
		m.names = append(m.names, name)
	}
	m.values[name] = values
}

// Get returns the values stored under name.
func (m *ColumnMap) Get(name string) (interface{}, bool) {
	v, ok := m.values[name]
	return v, ok
}

// Names returns the column names in insertion order.
func (m *ColumnMap) Names() []string {
	return m.names
}

// Len returns the number of columns in the mapping.
func (m *ColumnMap) Len() int {
	return len(m.names)
}
