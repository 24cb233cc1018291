package table

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/skybench/skybench/pkg/errors"
)

func TestNewRejectsRaggedColumns(t *testing.T) {
	_, err := New(
		NewFloat64Column("a", []float64{1, 2}),
		NewFloat64Column("b", []float64{3}),
	)
	require.Error(t, err)
	require.True(t, errors.IsType(err, errors.ErrorTypeValidation))
}

func TestNewRejectsDuplicateNames(t *testing.T) {
	_, err := New(
		NewInt64Column("a", []int64{1}),
		NewFloat64Column("a", []float64{2}),
	)
	require.Error(t, err)
}

func TestColumnsPreservesOrderAndAliases(t *testing.T) {
	floats := []float64{1.5, 2.5}
	tbl, err := New(
		NewStringColumn("name", []string{"x", "y"}),
		NewFloat64Column("mag", floats),
	)
	require.NoError(t, err)

	m := tbl.Columns()
	require.Equal(t, []string{"name", "mag"}, m.Names())

	values, ok := m.Get("mag")
	require.True(t, ok)

	// The mapping aliases the table's storage.
	values.([]float64)[0] = 9.0
	require.Equal(t, 9.0, floats[0])
}

func TestFromColumnsRoundTrip(t *testing.T) {
	tbl, err := New(
		NewInt64Column("id", []int64{1, 2, 3}),
		NewFloat64Column("mag", []float64{4.5, math.NaN(), 6.5}),
		NewBoolColumn("variable", []bool{true, false, true}),
		NewStringColumn("name", []string{"a", "b", "c"}),
	)
	require.NoError(t, err)

	got, err := FromColumns(tbl.Columns())
	require.NoError(t, err)
	require.True(t, tbl.Equal(got))
}

func TestFromColumnsRejectsRaggedMapping(t *testing.T) {
	m := NewColumnMap()
	m.Set("a", []float64{1, 2})
	m.Set("b", []float64{3})

	_, err := FromColumns(m)
	require.Error(t, err)
}

func TestFromColumnsRejectsUnsupportedValues(t *testing.T) {
	m := NewColumnMap()
	m.Set("vec", [][]float64{{1, 2}, {3, 4}})

	_, err := FromColumns(m)
	require.Error(t, err)
	require.True(t, errors.IsType(err, errors.ErrorTypeData))
}

func TestRowAndValue(t *testing.T) {
	tbl, err := New(
		NewFloat64Column("a", []float64{1.0, math.NaN()}),
		NewInt64Column("b", []int64{3, 4}),
	)
	require.NoError(t, err)

	require.Equal(t, map[string]interface{}{"a": 1.0, "b": int64(3)}, tbl.Row(0))

	// Missing floats surface as nil.
	require.Equal(t, map[string]interface{}{"a": nil, "b": int64(4)}, tbl.Row(1))
}

func TestEqualDistinguishesValues(t *testing.T) {
	a, _ := New(NewInt64Column("x", []int64{1, 2}))
	b, _ := New(NewInt64Column("x", []int64{1, 3}))
	c, _ := New(NewInt64Column("y", []int64{1, 2}))

	require.True(t, a.Equal(a))
	require.False(t, a.Equal(b))
	require.False(t, a.Equal(c))
}

func TestColumnMapReplaceKeepsOrder(t *testing.T) {
	m := NewColumnMap()
	m.Set("a", []int64{1})
	m.Set("b", []int64{2})
	m.Set("a", []int64{3})

	require.Equal(t, []string{"a", "b"}, m.Names())
	v, _ := m.Get("a")
	require.Equal(t, []int64{3}, v)
}
