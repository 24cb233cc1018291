// Path-level helpers: format and compression are inferred from the
// file name, so data.csv.zst writes zstd-compressed delimited text
// and data.fits writes the flexible format.
package formats

import (
	"os"

	"github.com/skybench/skybench/pkg/compression"
	"github.com/skybench/skybench/pkg/errors"
	"github.com/skybench/skybench/pkg/table"
)

// WriteFile writes t to path, inferring format and compression from
// the file name.
func WriteFile(path string, t *table.Table, opts *Options) error {
	format, err := ForPath(path)
	if err != nil {
		return err
	}

	enc, err := NewEncoder(format, opts)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to create output file").
			WithDetail("path", path)
	}

	cw, err := compression.NewWriter(f, compression.ForPath(path))
	if err != nil {
		f.Close()
		return err
	}

	encErr := enc.Encode(cw, t)
	closeErr := cw.Close()
	fileErr := f.Close()

	if encErr != nil {
		return encErr
	}
	if closeErr != nil {
		return errors.Wrap(closeErr, errors.ErrorTypeFile, "failed to flush compressed output").
			WithDetail("path", path)
	}
	if fileErr != nil {
		return errors.Wrap(fileErr, errors.ErrorTypeFile, "failed to close output file").
			WithDetail("path", path)
	}
	return nil
}

// ReadFile reads a table from path, inferring format and compression
// from the file name.
func ReadFile(path string, opts *Options) (*table.Table, error) {
	format, err := ForPath(path)
	if err != nil {
		return nil, err
	}

	dec, err := NewDecoder(format, opts)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to open input file").
			WithDetail("path", path)
	}
	defer f.Close()

	cr, err := compression.NewReader(f, compression.ForPath(path))
	if err != nil {
		return nil, err
	}
	defer cr.Close()

	return dec.Decode(cr)
}
