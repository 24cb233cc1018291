// Package fits implements the flexible-format codec: tables are
// written to and read from FITS files as binary table extensions,
// one named field per column.
//
// Reading deliberately mirrors the loose shape of real FITS archives:
// a field-group (HDU) holds named fields that usually, but not
// always, line up into a rectangular table. ReadTable returns an
// explicit Result that is either a reassembled Table (every decoded
// field scalar and equally sized) or the raw column mapping. Fields
// whose format cannot be decoded are skipped with a diagnostic
// rather than aborting the whole read.
package fits

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	fitsio "github.com/astrogo/fitsio"
	"go.uber.org/zap"

	"github.com/skybench/skybench/pkg/errors"
	"github.com/skybench/skybench/pkg/logger"
	"github.com/skybench/skybench/pkg/table"
)

// ExtName is the extension name given to table HDUs written by this package.
const ExtName = "DATA"

// WriteFile writes t to a new FITS file at path. Any failure during
// conversion, open, write or close is surfaced as a typed error
// carrying the underlying cause; nothing is swallowed.
func WriteFile(path string, t *table.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to create FITS file").
			WithDetail("path", path)
	}

	werr := WriteTable(f, t)
	cerr := f.Close()
	if werr != nil {
		return werr
	}
	if cerr != nil {
		return errors.Wrap(cerr, errors.ErrorTypeFile, "failed to close FITS file").
			WithDetail("path", path)
	}
	return nil
}

// WriteTable writes t to w as a FITS file: a mandatory primary HDU
// followed by a single binary table extension holding each column as
// a named field, in column order.
func WriteTable(w io.Writer, t *table.Table) error {
	cols, err := fitsColumns(t)
	if err != nil {
		return err
	}

	f, err := fitsio.Create(w)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeFormat, "failed to create FITS writer")
	}
	defer f.Close()

	phdu, err := fitsio.NewPrimaryHDU(nil)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeFormat, "failed to create primary HDU")
	}
	if err := f.Write(phdu); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFormat, "failed to write primary HDU")
	}

	tbl, err := fitsio.NewTable(ExtName, cols, fitsio.BINARY_TBL)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeFormat, "failed to create binary table")
	}
	defer tbl.Close()

	// Rows are written positionally, one typed pointer per field in
	// column order.
	nrows := t.NumRows()
	ncols := t.NumCols()
	args := make([]interface{}, ncols)
	for i := 0; i < nrows; i++ {
		for j := 0; j < ncols; j++ {
			col := t.ColumnAt(j)
			switch col.Kind {
			case table.KindFloat64:
				args[j] = &col.Floats[i]
			case table.KindInt64:
				args[j] = &col.Ints[i]
			case table.KindBool:
				args[j] = &col.Bools[i]
			default:
				args[j] = &col.Strings[i]
			}
		}
		if err := tbl.Write(args...); err != nil {
			return errors.Wrap(err, errors.ErrorTypeFormat, "failed to write table row").
				WithDetail("row", i)
		}
	}

	if err := f.Write(tbl); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFormat, "failed to write table HDU")
	}

	return nil
}

// fitsColumns maps table columns to binary-table column descriptors.
func fitsColumns(t *table.Table) ([]fitsio.Column, error) {
	cols := make([]fitsio.Column, 0, t.NumCols())
	for i := 0; i < t.NumCols(); i++ {
		col := t.ColumnAt(i)
		var format string
		switch col.Kind {
		case table.KindFloat64:
			format = "D"
		case table.KindInt64:
			format = "K"
		case table.KindBool:
			format = "L"
		case table.KindString:
			width := 1
			for _, s := range col.Strings {
				if len(s) > width {
					width = len(s)
				}
			}
			format = fmt.Sprintf("%dA", width)
		default:
			return nil, errors.Newf(errors.ErrorTypeFormat,
				"column %q has kind %s, not representable as a FITS field", col.Name, col.Kind)
		}
		cols = append(cols, fitsio.Column{Name: col.Name, Format: format})
	}
	return cols, nil
}

// Result is the outcome of reading a field-group. Exactly one of
// Table and Columns is set: Table when every decoded field was scalar
// with a uniform length, Columns otherwise.
type Result struct {
	Table   *table.Table
	Columns *table.ColumnMap
}

// IsTable reports whether the field-group reassembled into a table.
func (r *Result) IsTable() bool {
	return r.Table != nil
}

type readOptions struct {
	hduIndex int
	hduName  string
}

// ReadOption configures ReadTable.
type ReadOption func(*readOptions)

// WithHDUIndex selects the field-group by position. Index 1 is the
// first data region after the mandatory primary region and is the
// default.
func WithHDUIndex(i int) ReadOption {
	return func(o *readOptions) { o.hduIndex = i }
}

// WithHDUName selects the field-group by its extension name.
func WithHDUName(name string) ReadOption {
	return func(o *readOptions) { o.hduName = name }
}

// ReadFile reads a field-group from the FITS file at path.
func ReadFile(path string, opts ...ReadOption) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to open FITS file").
			WithDetail("path", path)
	}
	defer f.Close()
	return ReadTable(f, opts...)
}

// ReadTable reads one field-group from r. The group's field-name
// metadata is scanned, each decodable field is read in full, and the
// fields are reassembled into a table when their shapes agree. Fields
// with undecodable formats are skipped with a diagnostic.
func ReadTable(r io.Reader, opts ...ReadOption) (*Result, error) {
	o := readOptions{hduIndex: 1}
	for _, opt := range opts {
		opt(&o)
	}

	f, err := fitsio.Open(r)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFormat, "failed to open FITS stream")
	}
	defer f.Close()

	hdu, err := selectHDU(f, &o)
	if err != nil {
		return nil, err
	}

	tbl, ok := hdu.(*fitsio.Table)
	if !ok {
		return nil, errors.Newf(errors.ErrorTypeFormat,
			"field-group %q is not a table", hdu.Name())
	}

	return decodeTable(tbl)
}

func selectHDU(f *fitsio.File, o *readOptions) (fitsio.HDU, error) {
	hdus := f.HDUs()

	if o.hduName != "" {
		for _, hdu := range hdus {
			if hdu.Name() == o.hduName {
				return hdu, nil
			}
		}
		return nil, errors.Newf(errors.ErrorTypeNotFound, "no field-group named %q", o.hduName)
	}

	if o.hduIndex < 0 || o.hduIndex >= len(hdus) {
		return nil, errors.Newf(errors.ErrorTypeNotFound,
			"field-group index %d out of range, file has %d", o.hduIndex, len(hdus))
	}
	return hdus[o.hduIndex], nil
}

// fieldKind classifies a binary-table field format.
type fieldKind uint8

const (
	fieldFloat fieldKind = iota
	fieldInt
	fieldBool
	fieldString
	fieldVector
	fieldUnsupported
)

// classifyFormat parses a TFORM value like "D", "1E", "12A" or "3J".
// Repeat counts above one mean a vector field, except for "A" where
// the count is the string width.
func classifyFormat(format string) fieldKind {
	format = strings.TrimSpace(format)
	if format == "" {
		return fieldUnsupported
	}

	i := 0
	for i < len(format) && format[i] >= '0' && format[i] <= '9' {
		i++
	}
	repeat := 1
	if i > 0 {
		repeat, _ = strconv.Atoi(format[:i])
	}
	if i >= len(format) {
		return fieldUnsupported
	}

	switch format[i] {
	case 'A':
		return fieldString
	case 'L':
		if repeat > 1 {
			return fieldVector
		}
		return fieldBool
	case 'B', 'I', 'J', 'K':
		if repeat > 1 {
			return fieldVector
		}
		return fieldInt
	case 'E', 'D':
		if repeat > 1 {
			return fieldVector
		}
		return fieldFloat
	default:
		// Complex, bit and descriptor fields are not decoded.
		return fieldUnsupported
	}
}

// fieldBuffer accumulates one field's values across rows.
type fieldBuffer struct {
	name   string
	kind   fieldKind
	floats []float64
	ints   []int64
	bools  []bool
	strs   []string
	raw    []interface{} // vector fields keep per-row values as read
	failed bool
}

func decodeTable(tbl *fitsio.Table) (*Result, error) {
	log := logger.With(zap.String("field_group", tbl.Name()))

	var fields []*fieldBuffer
	for _, col := range tbl.Cols() {
		kind := classifyFormat(col.Format)
		if kind == fieldUnsupported {
			log.Warn("skipping field with undecodable format",
				zap.String("field", col.Name),
				zap.String("fits_format", col.Format))
			continue
		}
		fields = append(fields, &fieldBuffer{name: col.Name, kind: kind})
	}
	if len(fields) == 0 {
		return nil, errors.Newf(errors.ErrorTypeData,
			"field-group %q has no decodable fields", tbl.Name())
	}

	nrows := tbl.NumRows()
	rows, err := tbl.Read(0, nrows)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFormat, "failed to read field-group rows")
	}
	defer rows.Close()

	// Scan rows into a reusable map keyed by the kept field names.
	row := make(map[string]interface{}, len(fields))
	for _, fb := range fields {
		row[fb.name] = nil
	}
	for rows.Next() {
		if err := rows.Scan(&row); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeFormat, "failed to scan field-group row")
		}
		for _, fb := range fields {
			if fb.failed {
				continue
			}
			if err := fb.append(row[fb.name]); err != nil {
				fb.failed = true
				log.Warn("skipping field after read failure",
					zap.String("field", fb.name),
					zap.Error(err))
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFormat, "failed while iterating field-group rows")
	}

	kept := fields[:0]
	for _, fb := range fields {
		if !fb.failed {
			kept = append(kept, fb)
		}
	}
	if len(kept) == 0 {
		return nil, errors.Newf(errors.ErrorTypeData,
			"field-group %q had no readable fields", tbl.Name())
	}

	return assemble(kept)
}

// append folds one row value into the buffer, widening narrow numeric
// types as it goes. A value of an unexpected dynamic type marks the
// field failed.
func (fb *fieldBuffer) append(v interface{}) error {
	switch fb.kind {
	case fieldFloat:
		switch x := v.(type) {
		case float64:
			fb.floats = append(fb.floats, x)
		case float32:
			fb.floats = append(fb.floats, float64(x))
		default:
			return fmt.Errorf("unexpected value type %T for float field", v)
		}
	case fieldInt:
		switch x := v.(type) {
		case int64:
			fb.ints = append(fb.ints, x)
		case int32:
			fb.ints = append(fb.ints, int64(x))
		case int16:
			fb.ints = append(fb.ints, int64(x))
		case int8:
			fb.ints = append(fb.ints, int64(x))
		case uint8:
			fb.ints = append(fb.ints, int64(x))
		case int:
			fb.ints = append(fb.ints, int64(x))
		default:
			return fmt.Errorf("unexpected value type %T for integer field", v)
		}
	case fieldBool:
		x, ok := v.(bool)
		if !ok {
			return fmt.Errorf("unexpected value type %T for boolean field", v)
		}
		fb.bools = append(fb.bools, x)
	case fieldString:
		x, ok := v.(string)
		if !ok {
			return fmt.Errorf("unexpected value type %T for string field", v)
		}
		fb.strs = append(fb.strs, strings.TrimRight(x, " "))
	case fieldVector:
		fb.raw = append(fb.raw, v)
	}
	return nil
}

func (fb *fieldBuffer) values() interface{} {
	switch fb.kind {
	case fieldFloat:
		return fb.floats
	case fieldInt:
		return fb.ints
	case fieldBool:
		return fb.bools
	case fieldString:
		return fb.strs
	default:
		return fb.raw
	}
}

func (fb *fieldBuffer) len() int {
	switch fb.kind {
	case fieldFloat:
		return len(fb.floats)
	case fieldInt:
		return len(fb.ints)
	case fieldBool:
		return len(fb.bools)
	case fieldString:
		return len(fb.strs)
	default:
		return len(fb.raw)
	}
}

// assemble turns the decoded fields into a table when every field is
// scalar with identical length, and into the raw column mapping
// otherwise.
func assemble(fields []*fieldBuffer) (*Result, error) {
	rectangular := true
	length := fields[0].len()
	for _, fb := range fields {
		if fb.kind == fieldVector || fb.len() != length {
			rectangular = false
			break
		}
	}

	m := table.NewColumnMap()
	for _, fb := range fields {
		m.Set(fb.name, fb.values())
	}

	if !rectangular {
		return &Result{Columns: m}, nil
	}

	t, err := table.FromColumns(m)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeData, "failed to assemble table from fields")
	}
	return &Result{Table: t}, nil
}
