// Arrow IPC codec: the binary columnar container. Tables are written
// as an Arrow IPC file of one or more record batches and read back
// batch by batch.
package formats

import (
	"bytes"
	"io"
	"math"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/skybench/skybench/pkg/errors"
	"github.com/skybench/skybench/pkg/table"
)

type arrowEncoder struct {
	opts *Options
}

func newArrowEncoder(opts *Options) *arrowEncoder {
	return &arrowEncoder{opts: opts}
}

func (e *arrowEncoder) Format() Format { return Arrow }

func (e *arrowEncoder) Encode(w io.Writer, t *table.Table) error {
	schema, err := arrowSchema(t)
	if err != nil {
		return err
	}

	pool := memory.NewGoAllocator()
	builder := array.NewRecordBuilder(pool, schema)
	defer builder.Release()

	fw, err := ipc.NewFileWriter(w, ipc.WithSchema(schema), ipc.WithAllocator(pool))
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeFormat, "failed to create Arrow writer")
	}

	batchSize := e.opts.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultOptions().BatchSize
	}

	nrows := t.NumRows()
	for start := 0; start < nrows || (nrows == 0 && start == 0); start += batchSize {
		end := start + batchSize
		if end > nrows {
			end = nrows
		}
		for j := 0; j < t.NumCols(); j++ {
			appendColumn(builder.Field(j), t.ColumnAt(j), start, end)
		}

		rec := builder.NewRecord()
		werr := fw.Write(rec)
		rec.Release()
		if werr != nil {
			fw.Close()
			return errors.Wrap(werr, errors.ErrorTypeFormat, "failed to write record batch")
		}
		if nrows == 0 {
			break
		}
	}

	if err := fw.Close(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFormat, "failed to close Arrow writer")
	}
	return nil
}

func arrowSchema(t *table.Table) (*arrow.Schema, error) {
	fields := make([]arrow.Field, t.NumCols())
	for i := 0; i < t.NumCols(); i++ {
		col := t.ColumnAt(i)
		var dt arrow.DataType
		switch col.Kind {
		case table.KindFloat64:
			dt = arrow.PrimitiveTypes.Float64
		case table.KindInt64:
			dt = arrow.PrimitiveTypes.Int64
		case table.KindString:
			dt = arrow.BinaryTypes.String
		case table.KindBool:
			dt = arrow.FixedWidthTypes.Boolean
		default:
			return nil, errors.Newf(errors.ErrorTypeFormat,
				"column %q has kind %s, not representable in Arrow", col.Name, col.Kind)
		}
		fields[i] = arrow.Field{Name: col.Name, Type: dt, Nullable: true}
	}
	return arrow.NewSchema(fields, nil), nil
}

func appendColumn(builder array.Builder, col *table.Column, start, end int) {
	switch b := builder.(type) {
	case *array.Float64Builder:
		for i := start; i < end; i++ {
			v := col.Floats[i]
			if math.IsNaN(v) {
				b.AppendNull()
			} else {
				b.Append(v)
			}
		}
	case *array.Int64Builder:
		for i := start; i < end; i++ {
			b.Append(col.Ints[i])
		}
	case *array.StringBuilder:
		for i := start; i < end; i++ {
			b.Append(col.Strings[i])
		}
	case *array.BooleanBuilder:
		for i := start; i < end; i++ {
			b.Append(col.Bools[i])
		}
	}
}

type arrowDecoder struct{}

func newArrowDecoder() *arrowDecoder {
	return &arrowDecoder{}
}

func (d *arrowDecoder) Format() Format { return Arrow }

func (d *arrowDecoder) Decode(r io.Reader) (*table.Table, error) {
	// The IPC file reader needs random access; buffer the stream.
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to read Arrow data")
	}

	fr, err := ipc.NewFileReader(bytes.NewReader(data), ipc.WithAllocator(memory.NewGoAllocator()))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFormat, "failed to create Arrow reader")
	}
	defer fr.Close()

	schema := fr.Schema()
	builders := make([]*fieldBuilder, len(schema.Fields()))
	for i, field := range schema.Fields() {
		fb, err := newFieldBuilder(field)
		if err != nil {
			return nil, err
		}
		builders[i] = fb
	}

	for i := 0; i < fr.NumRecords(); i++ {
		rec, err := fr.Record(i)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeFormat, "failed to read record batch").
				WithDetail("batch", i)
		}
		for j, fb := range builders {
			if err := fb.appendArray(rec.Column(j)); err != nil {
				return nil, err
			}
		}
	}

	cols := make([]*table.Column, len(builders))
	for i, fb := range builders {
		cols[i] = fb.column()
	}
	return table.New(cols...)
}

// fieldBuilder accumulates one Arrow column across record batches.
type fieldBuilder struct {
	name   string
	kind   table.Kind
	floats []float64
	ints   []int64
	strs   []string
	bools  []bool
}

func newFieldBuilder(field arrow.Field) (*fieldBuilder, error) {
	fb := &fieldBuilder{name: field.Name}
	switch field.Type.ID() {
	case arrow.FLOAT64:
		fb.kind = table.KindFloat64
	case arrow.INT64:
		fb.kind = table.KindInt64
	case arrow.STRING:
		fb.kind = table.KindString
	case arrow.BOOL:
		fb.kind = table.KindBool
	default:
		return nil, errors.Newf(errors.ErrorTypeFormat,
			"unsupported Arrow type %s for column %q", field.Type, field.Name)
	}
	return fb, nil
}

func (fb *fieldBuilder) appendArray(arr arrow.Array) error {
	switch a := arr.(type) {
	case *array.Float64:
		for i := 0; i < a.Len(); i++ {
			if a.IsNull(i) {
				fb.floats = append(fb.floats, math.NaN())
			} else {
				fb.floats = append(fb.floats, a.Value(i))
			}
		}
	case *array.Int64:
		for i := 0; i < a.Len(); i++ {
			fb.ints = append(fb.ints, a.Value(i))
		}
	case *array.String:
		for i := 0; i < a.Len(); i++ {
			fb.strs = append(fb.strs, a.Value(i))
		}
	case *array.Boolean:
		for i := 0; i < a.Len(); i++ {
			fb.bools = append(fb.bools, a.Value(i))
		}
	default:
		return errors.Newf(errors.ErrorTypeFormat,
			"unsupported Arrow array type %T for column %q", arr, fb.name)
	}
	return nil
}

func (fb *fieldBuilder) column() *table.Column {
	switch fb.kind {
	case table.KindFloat64:
		if fb.floats == nil {
			fb.floats = []float64{}
		}
		return table.NewFloat64Column(fb.name, fb.floats)
	case table.KindInt64:
		if fb.ints == nil {
			fb.ints = []int64{}
		}
		return table.NewInt64Column(fb.name, fb.ints)
	case table.KindBool:
		if fb.bools == nil {
			fb.bools = []bool{}
		}
		return table.NewBoolColumn(fb.name, fb.bools)
	default:
		if fb.strs == nil {
			fb.strs = []string{}
		}
		return table.NewStringColumn(fb.name, fb.strs)
	}
}
