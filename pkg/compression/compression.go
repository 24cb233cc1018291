// Package compression provides streaming compression support for the
// text codecs. It supports the algorithms the benchmark exercises
// (gzip, zstd, s2 and lz4) behind a single writer/reader constructor
// pair, selected by file extension.
package compression

import (
	"compress/gzip"
	"io"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/skybench/skybench/pkg/errors"
)

// Algorithm represents a compression algorithm.
type Algorithm string

const (
	// None represents no compression
	None Algorithm = "none"
	// Gzip represents gzip compression
	Gzip Algorithm = "gzip"
	// Zstd represents zstandard compression
	Zstd Algorithm = "zstd"
	// S2 represents s2 compression (Snappy compatible)
	S2 Algorithm = "s2"
	// LZ4 represents lz4 compression
	LZ4 Algorithm = "lz4"
)

// extensions maps trailing file extensions to algorithms.
var extensions = map[string]Algorithm{
	".gz":   Gzip,
	".gzip": Gzip,
	".zst":  Zstd,
	".zstd": Zstd,
	".s2":   S2,
	".lz4":  LZ4,
}

// ForPath returns the algorithm implied by the path's trailing
// extension, or None if the extension is not a compression suffix.
func ForPath(path string) Algorithm {
	ext := strings.ToLower(filepath.Ext(path))
	if algo, ok := extensions[ext]; ok {
		return algo
	}
	return None
}

// TrimSuffix strips a trailing compression extension from path, if
// present, so the inner format extension can be inspected.
func TrimSuffix(path string) string {
	if ForPath(path) == None {
		return path
	}
	return strings.TrimSuffix(path, filepath.Ext(path))
}

// Parse converts a string into an Algorithm.
func Parse(s string) (Algorithm, error) {
	switch Algorithm(strings.ToLower(s)) {
	case None, "":
		return None, nil
	case Gzip:
		return Gzip, nil
	case Zstd:
		return Zstd, nil
	case S2:
		return S2, nil
	case LZ4:
		return LZ4, nil
	default:
		return None, errors.Newf(errors.ErrorTypeConfig, "unknown compression algorithm %q", s)
	}
}

// nopWriteCloser adapts an io.Writer into an io.WriteCloser.
type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// NewWriter wraps w with a streaming compressor for the given
// algorithm. The returned writer must be closed to flush trailing
// frames before the underlying file is closed.
func NewWriter(w io.Writer, algo Algorithm) (io.WriteCloser, error) {
	switch algo {
	case None:
		return nopWriteCloser{w}, nil
	case Gzip:
		return gzip.NewWriter(w), nil
	case Zstd:
		zw, err := zstd.NewWriter(w)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeInternal, "failed to create zstd writer")
		}
		return zw, nil
	case S2:
		return s2.NewWriter(w), nil
	case LZ4:
		return lz4.NewWriter(w), nil
	default:
		return nil, errors.Newf(errors.ErrorTypeConfig, "unsupported compression algorithm %q", algo)
	}
}

// NewReader wraps r with a streaming decompressor for the given
// algorithm.
func NewReader(r io.Reader, algo Algorithm) (io.ReadCloser, error) {
	switch algo {
	case None:
		return io.NopCloser(r), nil
	case Gzip:
		gr, err := gzip.NewReader(r)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeData, "failed to create gzip reader")
		}
		return gr, nil
	case Zstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeData, "failed to create zstd reader")
		}
		return zr.IOReadCloser(), nil
	case S2:
		return io.NopCloser(s2.NewReader(r)), nil
	case LZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	default:
		return nil, errors.Newf(errors.ErrorTypeConfig, "unsupported compression algorithm %q", algo)
	}
}
