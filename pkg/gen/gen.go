// Package gen produces deterministic synthetic star catalogs used as
// benchmark input. The same seed and row count always yield the same
// table, which keeps benchmark output files byte-for-byte
// reproducible across runs.
package gen

import (
	"fmt"
	"math/rand"

	"github.com/skybench/skybench/pkg/table"
)

// Catalog generates a synthetic star catalog with n rows: an integer
// id, an object name, sky coordinates, a magnitude and a variability
// flag.
func Catalog(n int, seed int64) *table.Table {
	rng := rand.New(rand.NewSource(seed))

	ids := make([]int64, n)
	names := make([]string, n)
	ra := make([]float64, n)
	dec := make([]float64, n)
	mag := make([]float64, n)
	variable := make([]bool, n)

	for i := 0; i < n; i++ {
		ids[i] = int64(i + 1)
		names[i] = fmt.Sprintf("SKY-%07d", i+1)
		ra[i] = rng.Float64() * 360.0
		dec[i] = rng.Float64()*180.0 - 90.0
		mag[i] = 2.0 + rng.Float64()*18.0
		variable[i] = rng.Float64() < 0.05
	}

	// Construction cannot fail: all columns share n rows and names
	// are distinct.
	t, _ := table.New(
		table.NewInt64Column("id", ids),
		table.NewStringColumn("name", names),
		table.NewFloat64Column("ra", ra),
		table.NewFloat64Column("dec", dec),
		table.NewFloat64Column("mag", mag),
		table.NewBoolColumn("variable", variable),
	)
	return t
}
