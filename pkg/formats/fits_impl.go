// FITS codec: thin adapter over the fits package so the flexible
// format participates in the generic Encoder/Decoder surface. The
// generic decoder insists on a rectangular result; callers that want
// the table-or-mapping distinction use fits.ReadTable directly.
package formats

import (
	"io"

	"github.com/skybench/skybench/pkg/errors"
	"github.com/skybench/skybench/pkg/fits"
	"github.com/skybench/skybench/pkg/table"
)

type fitsEncoder struct{}

func newFITSEncoder() *fitsEncoder {
	return &fitsEncoder{}
}

func (e *fitsEncoder) Format() Format { return FITS }

func (e *fitsEncoder) Encode(w io.Writer, t *table.Table) error {
	return fits.WriteTable(w, t)
}

type fitsDecoder struct{}

func newFITSDecoder() *fitsDecoder {
	return &fitsDecoder{}
}

func (d *fitsDecoder) Format() Format { return FITS }

func (d *fitsDecoder) Decode(r io.Reader) (*table.Table, error) {
	res, err := fits.ReadTable(r)
	if err != nil {
		return nil, err
	}
	if !res.IsTable() {
		return nil, errors.New(errors.ErrorTypeData,
			"field-group is not rectangular; read it with fits.ReadTable")
	}
	return res.Table, nil
}
