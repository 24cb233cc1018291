package compression

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestForPath(t *testing.T) {
	cases := map[string]Algorithm{
		"cat.csv.gz":   Gzip,
		"cat.csv.gzip": Gzip,
		"cat.csv.zst":  Zstd,
		"cat.csv.zstd": Zstd,
		"cat.csv.s2":   S2,
		"cat.csv.lz4":  LZ4,
		"cat.csv":      None,
		"cat.fits":     None,
		"CAT.CSV.GZ":   Gzip,
	}
	for path, want := range cases {
		require.Equal(t, want, ForPath(path), path)
	}
}

func TestTrimSuffix(t *testing.T) {
	require.Equal(t, "data/cat.csv", TrimSuffix("data/cat.csv.gz"))
	require.Equal(t, "data/cat.csv", TrimSuffix("data/cat.csv"))
	require.Equal(t, "cat.arrow", TrimSuffix("cat.arrow.zst"))
}

func TestParse(t *testing.T) {
	for _, s := range []string{"", "none", "gzip", "zstd", "s2", "lz4", "GZIP"} {
		_, err := Parse(s)
		require.NoError(t, err, s)
	}

	_, err := Parse("brotli")
	require.Error(t, err)
}

func TestRoundTrip(t *testing.T) {
	payload := strings.Repeat("ra,dec,mag\n359.99,-89.5,12.25\n", 200)

	for _, algo := range []Algorithm{None, Gzip, Zstd, S2, LZ4} {
		var buf bytes.Buffer
		w, err := NewWriter(&buf, algo)
		require.NoError(t, err, algo)
		_, err = io.WriteString(w, payload)
		require.NoError(t, err, algo)
		require.NoError(t, w.Close(), algo)

		r, err := NewReader(bytes.NewReader(buf.Bytes()), algo)
		require.NoError(t, err, algo)
		got, err := io.ReadAll(r)
		require.NoError(t, err, algo)
		require.NoError(t, r.Close(), algo)

		require.Equal(t, payload, string(got), algo)
	}
}

func TestCompressedOutputIsSmaller(t *testing.T) {
	payload := strings.Repeat("359.99,-89.5,12.25\n", 1000)

	for _, algo := range []Algorithm{Gzip, Zstd, S2, LZ4} {
		var buf bytes.Buffer
		w, err := NewWriter(&buf, algo)
		require.NoError(t, err, algo)
		_, err = io.WriteString(w, payload)
		require.NoError(t, err, algo)
		require.NoError(t, w.Close(), algo)

		require.Less(t, buf.Len(), len(payload), algo)
	}
}
