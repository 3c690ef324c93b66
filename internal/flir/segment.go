// Package flir decodes the proprietary FLIR metadata block embedded in
// radiometric JPEGs (R-JPEGs) into the normalized thermal parameter record
// and raw sensor grid. The segment layout follows the FFF format documented
// in the ExifTool sources.
package flir

import (
	"bytes"

	"github.com/rotisserie/eris"

	"github.com/sells-group/thermal-cli/internal/thermal"
)

const (
	markerSOI  = 0xd8
	markerEOI  = 0xd9
	markerSOS  = 0xda
	markerAPP1 = 0xe1
	markerTEM  = 0x01
)

var flirSignature = []byte("FLIR\x00")

// collectSegments walks the JPEG marker stream and reassembles the FLIR
// payload, which cameras split over multiple APP1 segments. Each FLIR APP1
// carries a one-byte segment index and the index of the last segment; the
// parts are validated for consistency and concatenated in order.
func collectSegments(jpeg []byte) ([]byte, error) {
	if len(jpeg) < 2 || jpeg[0] != 0xff || jpeg[1] != markerSOI {
		return nil, eris.Wrap(thermal.ErrUnsupportedVersion, "flir: not a JPEG stream")
	}

	var parts [][]byte
	found := 0

	pos := 2
	for pos < len(jpeg) {
		if jpeg[pos] != 0xff {
			return nil, eris.Wrapf(thermal.ErrMalformedBlock, "flir: expected marker at offset %#x", pos)
		}
		// Fill bytes before a marker are legal.
		for pos < len(jpeg) && jpeg[pos] == 0xff {
			pos++
		}
		if pos >= len(jpeg) {
			break
		}
		marker := jpeg[pos]
		pos++

		// All metadata precedes the scan data.
		if marker == markerSOS || marker == markerEOI {
			break
		}
		// Standalone markers carry no length word.
		if marker == markerTEM || (marker >= 0xd0 && marker <= 0xd7) {
			continue
		}

		if pos+2 > len(jpeg) {
			return nil, eris.Wrap(thermal.ErrMalformedBlock, "flir: truncated segment length")
		}
		segLen := int(jpeg[pos])<<8 | int(jpeg[pos+1])
		if segLen < 2 || pos+segLen > len(jpeg) {
			return nil, eris.Wrapf(thermal.ErrMalformedBlock, "flir: segment length %d out of bounds at offset %#x", segLen, pos)
		}
		contents := jpeg[pos+2 : pos+segLen]
		pos += segLen

		if marker != markerAPP1 || len(contents) < 8 || !bytes.HasPrefix(contents, flirSignature) {
			continue
		}

		idx := int(contents[6])
		total := int(contents[7]) + 1

		switch {
		case parts == nil:
			parts = make([][]byte, total)
		case len(parts) != total:
			return nil, eris.Wrapf(thermal.ErrMalformedBlock,
				"flir: inconsistent total segment count: %d != %d", len(parts), total)
		}
		if idx >= len(parts) {
			return nil, eris.Wrapf(thermal.ErrMalformedBlock,
				"flir: segment index %d out of bounds (%d total)", idx, len(parts))
		}
		if parts[idx] != nil {
			return nil, eris.Wrapf(thermal.ErrMalformedBlock, "flir: duplicate segment index %d", idx)
		}
		parts[idx] = contents[8:]
		found++
	}

	if parts == nil {
		return nil, eris.Wrap(thermal.ErrUnsupportedVersion, "flir: no FLIR metadata segments found")
	}
	if found != len(parts) {
		return nil, eris.Wrapf(thermal.ErrMalformedBlock,
			"flir: expected %d segments, found only %d", len(parts), found)
	}

	total := 0
	for _, p := range parts {
		total += len(p)
	}
	data := make([]byte, 0, total)
	for _, p := range parts {
		data = append(data, p...)
	}
	return data, nil
}
