package formats

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/skybench/skybench/pkg/gen"
	"github.com/skybench/skybench/pkg/table"
)

func testTable(t *testing.T) *table.Table {
	t.Helper()
	tbl, err := table.New(
		table.NewInt64Column("id", []int64{1, 2, 3}),
		table.NewStringColumn("name", []string{"Vega", "Deneb", "Altair"}),
		table.NewFloat64Column("mag", []float64{0.03, 1.25, math.NaN()}),
		table.NewBoolColumn("variable", []bool{false, true, false}),
	)
	require.NoError(t, err)
	return tbl
}

func TestParse(t *testing.T) {
	f, err := Parse("FITS")
	require.NoError(t, err)
	require.Equal(t, FITS, f)

	_, err = Parse("hdf5")
	require.Error(t, err)
}

func TestForPath(t *testing.T) {
	cases := map[string]Format{
		"data/cat.csv":     CSV,
		"data/cat.tsv":     CSV,
		"data/cat.csv.gz":  CSV,
		"data/cat.csv.zst": CSV,
		"data/cat.arrow":   Arrow,
		"data/cat.feather": Arrow,
		"data/cat.fits":    FITS,
		"data/cat.fit":     FITS,
	}
	for path, want := range cases {
		got, err := ForPath(path)
		require.NoError(t, err, path)
		require.Equal(t, want, got, path)
	}

	_, err := ForPath("data/cat.bin")
	require.Error(t, err)
}

func roundTrip(t *testing.T, format Format, tbl *table.Table) *table.Table {
	t.Helper()

	enc, err := NewEncoder(format, nil)
	require.NoError(t, err)
	dec, err := NewDecoder(format, nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, enc.Encode(&buf, tbl))

	got, err := dec.Decode(&buf)
	require.NoError(t, err)
	return got
}

func TestCSVRoundTrip(t *testing.T) {
	tbl := testTable(t)
	got := roundTrip(t, CSV, tbl)
	require.True(t, tbl.Equal(got), "round-tripped table differs")
}

func TestCSVTypeInference(t *testing.T) {
	in := "a,b,c,d\n1,1.5,true,x\n2,,false,2y\n"
	dec, err := NewDecoder(CSV, nil)
	require.NoError(t, err)

	tbl, err := dec.Decode(bytes.NewReader([]byte(in)))
	require.NoError(t, err)

	require.Equal(t, table.KindInt64, tbl.Column("a").Kind)
	require.Equal(t, table.KindFloat64, tbl.Column("b").Kind)
	require.Equal(t, table.KindBool, tbl.Column("c").Kind)
	require.Equal(t, table.KindString, tbl.Column("d").Kind)

	// Empty float cell reads back as missing.
	require.True(t, math.IsNaN(tbl.Column("b").Floats[1]))
}

func TestArrowRoundTrip(t *testing.T) {
	tbl := testTable(t)
	got := roundTrip(t, Arrow, tbl)
	require.True(t, tbl.Equal(got), "round-tripped table differs")
}

func TestArrowRoundTripMultipleBatches(t *testing.T) {
	tbl := gen.Catalog(2500, 7)

	opts := DefaultOptions()
	opts.BatchSize = 1000

	enc, err := NewEncoder(Arrow, opts)
	require.NoError(t, err)
	dec, err := NewDecoder(Arrow, opts)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, enc.Encode(&buf, tbl))

	got, err := dec.Decode(&buf)
	require.NoError(t, err)
	require.True(t, tbl.Equal(got))
}

func TestFITSRoundTripViaRegistry(t *testing.T) {
	tbl := testTable(t)
	got := roundTrip(t, FITS, tbl)
	require.True(t, tbl.Equal(got), "round-tripped table differs")
}

func TestWriteReadFileWithCompression(t *testing.T) {
	dir := t.TempDir()
	tbl := testTable(t)

	for _, name := range []string{
		"cat.csv",
		"cat.csv.gz",
		"cat.csv.zst",
		"cat.csv.s2",
		"cat.csv.lz4",
		"cat.arrow",
		"cat.fits",
	} {
		path := filepath.Join(dir, name)
		require.NoError(t, WriteFile(path, tbl, nil), name)

		got, err := ReadFile(path, nil)
		require.NoError(t, err, name)
		require.True(t, tbl.Equal(got), name)
	}
}

func TestWriteFileIsReproducible(t *testing.T) {
	dir := t.TempDir()
	tbl := gen.Catalog(500, 42)

	for _, name := range []string{"cat.csv", "cat.arrow", "cat.fits"} {
		p1 := filepath.Join(dir, "first_"+name)
		p2 := filepath.Join(dir, "second_"+name)
		require.NoError(t, WriteFile(p1, tbl, nil))
		require.NoError(t, WriteFile(p2, tbl, nil))

		b1, err := os.ReadFile(p1)
		require.NoError(t, err)
		b2, err := os.ReadFile(p2)
		require.NoError(t, err)
		require.Equal(t, b1, b2, "two writes of %s differ", name)
	}
}

func BenchmarkEncode(b *testing.B) {
	tbl := gen.Catalog(10000, 42)
	for _, f := range All() {
		b.Run(string(f), func(b *testing.B) {
			enc, err := NewEncoder(f, nil)
			if err != nil {
				b.Fatal(err)
			}
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				var buf bytes.Buffer
				if err := enc.Encode(&buf, tbl); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkDecode(b *testing.B) {
	tbl := gen.Catalog(10000, 42)
	for _, f := range All() {
		b.Run(string(f), func(b *testing.B) {
			enc, err := NewEncoder(f, nil)
			if err != nil {
				b.Fatal(err)
			}
			dec, err := NewDecoder(f, nil)
			if err != nil {
				b.Fatal(err)
			}
			var buf bytes.Buffer
			if err := enc.Encode(&buf, tbl); err != nil {
				b.Fatal(err)
			}
			data := buf.Bytes()

			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := dec.Decode(bytes.NewReader(data)); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
