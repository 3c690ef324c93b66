package flir

import (
	"bytes"
	"encoding/binary"

	"github.com/rotisserie/eris"

	"github.com/sells-group/thermal-cli/internal/thermal"
)

// FFF header layout (per ExifTool):
//
//	0x00  string[4]  format signature "FFF\0"
//	0x04  string[16] creator ("\0", "MTX IR\0", "CAMCTRL\0")
//	0x14  int32u     format version, 100..199
//	0x18  int32u     offset to record directory
//	0x1c  int32u     number of directory entries
var fffSignature = []byte("FFF\x00")

const (
	fffHeaderSize  = 0x40
	recordDirEntry = 0x20

	recordTypeRawData      = 0x0001
	recordTypeCameraParams = 0x0020

	rawSubtypePNG = 3
)

// record is one entry of the FFF record directory.
type record struct {
	typ      uint16
	subtype  uint16
	version  uint32
	id       uint32
	offset   uint32
	length   uint32
	parent   uint32
	objNum   uint32
	checksum uint32
}

// segment is a reassembled FLIR payload with its parsed record directory.
type segment struct {
	data    []byte
	records []record
}

// parseSegment validates the FFF header and reads the record directory.
// Byte order is not declared explicitly; following ExifTool, it is resolved
// by requiring the version field to land in [100, 200) under one of the two
// orders. Anything else is an unsupported version, never a guessed layout.
func parseSegment(data []byte) (*segment, error) {
	if len(data) < fffHeaderSize {
		return nil, eris.Wrapf(thermal.ErrMalformedBlock, "flir: segment of %d bytes is shorter than the FFF header", len(data))
	}
	if !bytes.Equal(data[0:4], fffSignature) {
		return nil, eris.Wrapf(thermal.ErrUnsupportedVersion, "flir: unexpected signature %q", data[0:4])
	}

	order, version, ok := resolveOrder(data[0x14:0x18])
	if !ok {
		return nil, eris.Wrapf(thermal.ErrUnsupportedVersion, "flir: format version %#x not recognized in either byte order", version)
	}

	r := newReader(data, order)
	r.seek(0x18)
	dirOffset := int(r.u32())
	numRecords := int(r.u32())
	if r.err != nil {
		return nil, eris.Wrap(thermal.ErrMalformedBlock, "flir: FFF header")
	}
	if dirOffset < 0 || numRecords < 0 || dirOffset+numRecords*recordDirEntry > len(data) {
		return nil, eris.Wrapf(thermal.ErrMalformedBlock,
			"flir: record directory (%d entries at %#x) exceeds segment of %d bytes", numRecords, dirOffset, len(data))
	}

	r.seek(dirOffset)
	records := make([]record, numRecords)
	for i := range records {
		records[i] = record{
			typ:      r.u16(),
			subtype:  r.u16(),
			version:  r.u32(),
			id:       r.u32(),
			offset:   r.u32(),
			length:   r.u32(),
			parent:   r.u32(),
			objNum:   r.u32(),
			checksum: r.u32(),
		}
	}
	if r.err != nil {
		return nil, eris.Wrap(thermal.ErrMalformedBlock, "flir: record directory")
	}

	return &segment{data: data, records: records}, nil
}

// resolveOrder picks the byte order under which a version word reads as a
// supported FFF version.
func resolveOrder(b []byte) (binary.ByteOrder, uint32, bool) {
	le := binary.LittleEndian.Uint32(b)
	if le >= 100 && le < 200 {
		return binary.LittleEndian, le, true
	}
	be := binary.BigEndian.Uint32(b)
	if be >= 100 && be < 200 {
		return binary.BigEndian, be, true
	}
	return nil, le, false
}

// recordData bounds-checks a directory entry against the segment.
func (s *segment) recordData(rec record) ([]byte, error) {
	end := int64(rec.offset) + int64(rec.length)
	if end > int64(len(s.data)) {
		return nil, eris.Wrapf(thermal.ErrMalformedBlock,
			"flir: record type %#x (%d bytes at %#x) exceeds segment of %d bytes",
			rec.typ, rec.length, rec.offset, len(s.data))
	}
	return s.data[rec.offset:end], nil
}

// recordOrder resolves the in-band byte-order word most FFF records start
// with: the value reads as 2 under the record's own byte order.
func recordOrder(data []byte) (binary.ByteOrder, error) {
	if len(data) < 2 {
		return nil, eris.Wrap(thermal.ErrMalformedBlock, "flir: record too short for byte-order word")
	}
	if binary.LittleEndian.Uint16(data) == 2 {
		return binary.LittleEndian, nil
	}
	if binary.BigEndian.Uint16(data) == 2 {
		return binary.BigEndian, nil
	}
	return nil, eris.Wrapf(thermal.ErrMalformedBlock, "flir: unrecognized byte-order word %#x", data[0:2])
}

// Decode parses a radiometric JPEG into the normalized parameter record,
// camera identification, and raw sensor grid. Decode errors are fatal for
// the whole image; no partial record is returned.
func Decode(jpeg []byte) (*thermal.Image, error) {
	data, err := collectSegments(jpeg)
	if err != nil {
		return nil, err
	}
	return DecodeSegment(data)
}

// DecodeSegment parses an already reassembled FLIR payload. Exposed for
// callers that extract the segment themselves (or for fixtures).
func DecodeSegment(data []byte) (*thermal.Image, error) {
	seg, err := parseSegment(data)
	if err != nil {
		return nil, err
	}

	img := &thermal.Image{Settings: thermal.DefaultSettings()}
	var haveRaw, haveParams bool

	for _, rec := range seg.records {
		switch rec.typ {
		case recordTypeRawData:
			if haveRaw {
				continue
			}
			grid, err := parseRawData(seg, rec)
			if err != nil {
				return nil, err
			}
			img.Raw = grid
			haveRaw = true
		case recordTypeCameraParams:
			if haveParams {
				continue
			}
			if err := parseCameraParams(seg, rec, img); err != nil {
				return nil, err
			}
			haveParams = true
		}
	}

	if !haveRaw {
		return nil, eris.Wrap(thermal.ErrMalformedBlock, "flir: no raw data record in segment")
	}
	if !haveParams {
		return nil, eris.Wrap(thermal.ErrMalformedBlock, "flir: no camera parameters record in segment")
	}
	if err := img.Settings.Validate(); err != nil {
		return nil, err
	}
	return img, nil
}
