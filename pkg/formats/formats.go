// Package formats provides the tabular file-format codecs benchmarked
// by skybench: delimited text, the Arrow IPC columnar container and
// the FITS flexible format.
package formats

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/skybench/skybench/pkg/compression"
	"github.com/skybench/skybench/pkg/errors"
	"github.com/skybench/skybench/pkg/table"
)

// Format represents a tabular storage format
type Format string

const (
	// CSV is delimited text with a header row
	CSV Format = "csv"
	// Arrow is the Apache Arrow IPC file format
	Arrow Format = "arrow"
	// FITS is the flexible astronomy format
	FITS Format = "fits"
)

// All returns the supported formats in benchmark order.
func All() []Format {
	return []Format{CSV, Arrow, FITS}
}

// Parse converts a string into a Format.
func Parse(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case CSV:
		return CSV, nil
	case Arrow:
		return Arrow, nil
	case FITS:
		return FITS, nil
	default:
		return "", errors.Newf(errors.ErrorTypeConfig, "unknown format %q", s)
	}
}

// Encoder writes a whole table to a stream.
type Encoder interface {
	// Encode writes t to w
	Encode(w io.Writer, t *table.Table) error
	// Format returns the storage format
	Format() Format
}

// Decoder reads a whole table from a stream.
type Decoder interface {
	// Decode reads a table from r
	Decode(r io.Reader) (*table.Table, error)
	// Format returns the storage format
	Format() Format
}

// Options configures encoders and decoders.
type Options struct {
	// Delimiter is the CSV field separator
	Delimiter rune
	// BatchSize is the Arrow record-batch row count
	BatchSize int
}

// DefaultOptions returns the default codec options.
func DefaultOptions() *Options {
	return &Options{
		Delimiter: ',',
		BatchSize: 10000,
	}
}

// NewEncoder creates an encoder for the given format.
func NewEncoder(format Format, opts *Options) (Encoder, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	switch format {
	case CSV:
		return newCSVEncoder(opts), nil
	case Arrow:
		return newArrowEncoder(opts), nil
	case FITS:
		return newFITSEncoder(), nil
	default:
		return nil, errors.Newf(errors.ErrorTypeConfig, "unsupported format: %s", format)
	}
}

// NewDecoder creates a decoder for the given format.
func NewDecoder(format Format, opts *Options) (Decoder, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	switch format {
	case CSV:
		return newCSVDecoder(opts), nil
	case Arrow:
		return newArrowDecoder(), nil
	case FITS:
		return newFITSDecoder(), nil
	default:
		return nil, errors.Newf(errors.ErrorTypeConfig, "unsupported format: %s", format)
	}
}

// FormatInfo provides information about a storage format
type FormatInfo struct {
	Format           Format
	Name             string
	Description      string
	FileExtension    string
	MIMEType         string
	Binary           bool
	Columnar         bool
	SupportsCompress bool
}

// GetFormatInfo returns information about a storage format
func GetFormatInfo(format Format) *FormatInfo {
	switch format {
	case CSV:
		return &FormatInfo{
			Format:           CSV,
			Name:             "Delimited text",
			Description:      "Row-oriented text with a header line",
			FileExtension:    ".csv",
			MIMEType:         "text/csv",
			Binary:           false,
			Columnar:         false,
			SupportsCompress: true,
		}
	case Arrow:
		return &FormatInfo{
			Format:           Arrow,
			Name:             "Apache Arrow IPC",
			Description:      "Binary columnar container with per-field type metadata",
			FileExtension:    ".arrow",
			MIMEType:         "application/vnd.apache.arrow.file",
			Binary:           true,
			Columnar:         true,
			SupportsCompress: false,
		}
	case FITS:
		return &FormatInfo{
			Format:           FITS,
			Name:             "FITS",
			Description:      "Self-describing binary format with named field-groups",
			FileExtension:    ".fits",
			MIMEType:         "application/fits",
			Binary:           true,
			Columnar:         false,
			SupportsCompress: false,
		}
	default:
		return nil
	}
}

// ForPath infers the storage format from a file path, looking through
// a trailing compression suffix (data.csv.gz is CSV).
func ForPath(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(compression.TrimSuffix(path)))
	switch ext {
	case ".csv", ".txt", ".tsv":
		return CSV, nil
	case ".arrow", ".feather", ".ipc":
		return Arrow, nil
	case ".fits", ".fit", ".fts":
		return FITS, nil
	default:
		return "", errors.Newf(errors.ErrorTypeConfig, "cannot infer format from path %q", path)
	}
}
