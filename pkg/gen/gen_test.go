package gen

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/skybench/skybench/pkg/table"
)

func TestCatalogShape(t *testing.T) {
	tbl := Catalog(100, 42)
	require.Equal(t, 100, tbl.NumRows())
	require.Equal(t, []string{"id", "name", "ra", "dec", "mag", "variable"}, tbl.Names())
	require.Equal(t, table.KindInt64, tbl.Column("id").Kind)
	require.Equal(t, table.KindString, tbl.Column("name").Kind)
	require.Equal(t, table.KindFloat64, tbl.Column("ra").Kind)
	require.Equal(t, table.KindBool, tbl.Column("variable").Kind)
}

func TestCatalogIsDeterministic(t *testing.T) {
	a := Catalog(1000, 42)
	b := Catalog(1000, 42)
	require.True(t, a.Equal(b), "same seed must generate the same catalog")

	c := Catalog(1000, 43)
	require.False(t, a.Equal(c), "different seeds must differ")
}

func TestCatalogValueRanges(t *testing.T) {
	tbl := Catalog(500, 7)
	for _, ra := range tbl.Column("ra").Floats {
		require.GreaterOrEqual(t, ra, 0.0)
		require.Less(t, ra, 360.0)
	}
	for _, dec := range tbl.Column("dec").Floats {
		require.GreaterOrEqual(t, dec, -90.0)
		require.LessOrEqual(t, dec, 90.0)
	}
}
