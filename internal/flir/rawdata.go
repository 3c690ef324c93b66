package flir

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/thermal-cli/internal/thermal"
)

// Raw data record layout: a byte-order word, width and height at 0x02/0x04,
// then 16-bit unsigned samples in row-major order starting at 0x20. The
// declared record length must equal 2*(16 + width*height) exactly.
const rawHeaderWords = 16

func parseRawData(seg *segment, rec record) (*thermal.RawGrid, error) {
	if rec.subtype == rawSubtypePNG {
		return nil, eris.Wrap(thermal.ErrUnsupportedVersion, "flir: PNG-compressed raw data not supported")
	}

	data, err := seg.recordData(rec)
	if err != nil {
		return nil, err
	}
	order, err := recordOrder(data)
	if err != nil {
		return nil, err
	}

	r := newReader(data, order)
	r.seek(0x02)
	width := int(r.u16())
	height := int(r.u16())
	if r.err != nil {
		return nil, eris.Wrap(thermal.ErrMalformedBlock, "flir: raw data header")
	}
	if width <= 0 || height <= 0 {
		return nil, eris.Wrapf(thermal.ErrMalformedBlock, "flir: raw data dimensions %dx%d", width, height)
	}

	expected := 2 * (rawHeaderWords + width*height)
	if len(data) != expected {
		return nil, eris.Wrapf(thermal.ErrMalformedBlock,
			"flir: raw data record is %d bytes, expected %d for %dx%d samples", len(data), expected, width, height)
	}

	r.seek(2 * rawHeaderWords)
	pixels := make([]uint16, width*height)
	for i := range pixels {
		pixels[i] = r.u16()
	}
	if r.err != nil {
		return nil, eris.Wrap(thermal.ErrMalformedBlock, "flir: raw data samples")
	}

	return thermal.NewRawGrid(width, height, pixels)
}
