// CSV codec: delimited text with a header row. Column types are not
// carried by the format, so reading re-infers each column as int64,
// then float64, then bool, then string. An empty cell is a missing
// value and forces a column out of the integer and boolean kinds.
package formats

import (
	"encoding/csv"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/skybench/skybench/pkg/errors"
	"github.com/skybench/skybench/pkg/table"
)

type csvEncoder struct {
	opts *Options
}

func newCSVEncoder(opts *Options) *csvEncoder {
	return &csvEncoder{opts: opts}
}

func (e *csvEncoder) Format() Format { return CSV }

func (e *csvEncoder) Encode(w io.Writer, t *table.Table) error {
	cw := csv.NewWriter(w)
	if e.opts.Delimiter != 0 {
		cw.Comma = e.opts.Delimiter
	}

	if err := cw.Write(t.Names()); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFormat, "failed to write CSV header")
	}

	nrows := t.NumRows()
	ncols := t.NumCols()
	record := make([]string, ncols)
	for i := 0; i < nrows; i++ {
		for j := 0; j < ncols; j++ {
			record[j] = formatCell(t.ColumnAt(j), i)
		}
		if err := cw.Write(record); err != nil {
			return errors.Wrap(err, errors.ErrorTypeFormat, "failed to write CSV row").
				WithDetail("row", i)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFormat, "failed to flush CSV output")
	}
	return nil
}

func formatCell(col *table.Column, i int) string {
	switch col.Kind {
	case table.KindFloat64:
		v := col.Floats[i]
		if math.IsNaN(v) {
			return ""
		}
		s := strconv.FormatFloat(v, 'g', -1, 64)
		// Keep integral floats recognizable as floats on re-read.
		if !strings.ContainsAny(s, ".eEI") {
			s += ".0"
		}
		return s
	case table.KindInt64:
		return strconv.FormatInt(col.Ints[i], 10)
	case table.KindBool:
		return strconv.FormatBool(col.Bools[i])
	default:
		return col.Strings[i]
	}
}

type csvDecoder struct {
	opts *Options
}

func newCSVDecoder(opts *Options) *csvDecoder {
	return &csvDecoder{opts: opts}
}

func (d *csvDecoder) Format() Format { return CSV }

func (d *csvDecoder) Decode(r io.Reader) (*table.Table, error) {
	cr := csv.NewReader(r)
	if d.opts.Delimiter != 0 {
		cr.Comma = d.opts.Delimiter
	}

	records, err := cr.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFormat, "failed to read CSV input")
	}
	if len(records) == 0 {
		return nil, errors.New(errors.ErrorTypeData, "CSV input has no header row")
	}

	header := records[0]
	rows := records[1:]

	cols := make([]*table.Column, len(header))
	for j, name := range header {
		cells := make([]string, len(rows))
		for i, rec := range rows {
			cells[i] = rec[j]
		}
		cols[j] = inferColumn(name, cells)
	}

	return table.New(cols...)
}

// inferColumn picks the narrowest kind that fits every cell.
func inferColumn(name string, cells []string) *table.Column {
	hasEmpty := false
	for _, c := range cells {
		if c == "" {
			hasEmpty = true
			break
		}
	}

	if !hasEmpty {
		ints := make([]int64, len(cells))
		ok := true
		for i, c := range cells {
			v, err := strconv.ParseInt(c, 10, 64)
			if err != nil {
				ok = false
				break
			}
			ints[i] = v
		}
		if ok {
			return table.NewInt64Column(name, ints)
		}
	}

	floats := make([]float64, len(cells))
	okFloat := true
	for i, c := range cells {
		if c == "" {
			floats[i] = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(c, 64)
		if err != nil {
			okFloat = false
			break
		}
		floats[i] = v
	}
	if okFloat {
		return table.NewFloat64Column(name, floats)
	}

	if !hasEmpty {
		bools := make([]bool, len(cells))
		ok := true
		for i, c := range cells {
			switch c {
			case "true":
				bools[i] = true
			case "false":
				bools[i] = false
			default:
				ok = false
			}
			if !ok {
				break
			}
		}
		if ok {
			return table.NewBoolColumn(name, bools)
		}
	}

	return table.NewStringColumn(name, cells)
}
