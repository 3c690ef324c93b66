package flir

import (
	"encoding/binary"
	"math"

	"github.com/sells-group/thermal-cli/internal/thermal"
)

// segmentFixture builds synthetic big-endian FFF segments for tests: an FFF
// header, a two-entry record directory, a camera-params record and a raw
// data record. Individual fields can be tampered with to trigger the decode
// error paths.
type segmentFixture struct {
	settings thermal.Settings
	camera   thermal.CameraInfo
	width    int
	height   int
	pixels   []uint16

	fffVersion     uint32
	paramsVersion  uint32
	rawSubtype     uint16
	rawLengthDelta int // added to the declared raw record length
	truncateParams bool
}

func newSegmentFixture() *segmentFixture {
	s := thermal.DefaultSettings()
	s.Emissivity = 0.95
	s.RelativeHumidity = 0.55
	return &segmentFixture{
		settings: s,
		camera: thermal.CameraInfo{
			Model:        "FLIR T1030sc",
			SerialNumber: "63901234",
			Software:     "25.0.0",
			LensModel:    "FOL 21.2 mm",
		},
		width:         2,
		height:        2,
		pixels:        []uint16{13500, 14000, 16000, 20000},
		fffVersion:    100,
		paramsVersion: 0x64,
		rawSubtype:    1,
	}
}

const fixtureParamsLen = 0x384

func (f *segmentFixture) build() []byte {
	return f.buildWithOrder(true)
}

func (f *segmentFixture) buildWithOrder(bigEndian bool) []byte {
	var bo binary.ByteOrder = binary.BigEndian
	if !bigEndian {
		bo = binary.LittleEndian
	}
	paramsOffset := fffHeaderSize + 2*recordDirEntry
	paramsLen := fixtureParamsLen
	if f.truncateParams {
		paramsLen = 0x40
	}
	rawOffset := paramsOffset + paramsLen
	rawLen := 2 * (rawHeaderWords + f.width*f.height)

	buf := make([]byte, rawOffset+rawLen)
	be := bo

	// FFF header.
	copy(buf[0:], "FFF\x00")
	copy(buf[0x04:], "CAMCTRL\x00")
	be.PutUint32(buf[0x14:], f.fffVersion)
	be.PutUint32(buf[0x18:], fffHeaderSize)
	be.PutUint32(buf[0x1c:], 2)

	// Directory entry 0: camera parameters.
	dir := buf[fffHeaderSize:]
	be.PutUint16(dir[0x00:], recordTypeCameraParams)
	be.PutUint16(dir[0x02:], 1)
	be.PutUint32(dir[0x04:], f.paramsVersion)
	be.PutUint32(dir[0x08:], 1)
	be.PutUint32(dir[0x0c:], uint32(paramsOffset))
	be.PutUint32(dir[0x10:], uint32(paramsLen))

	// Directory entry 1: raw data.
	dir = buf[fffHeaderSize+recordDirEntry:]
	be.PutUint16(dir[0x00:], recordTypeRawData)
	be.PutUint16(dir[0x02:], f.rawSubtype)
	be.PutUint32(dir[0x04:], 0x64)
	be.PutUint32(dir[0x08:], 1)
	be.PutUint32(dir[0x0c:], uint32(rawOffset))
	be.PutUint32(dir[0x10:], uint32(rawLen+f.rawLengthDelta))

	f.fillParams(bo, buf[paramsOffset:paramsOffset+paramsLen])
	f.fillRaw(bo, buf[rawOffset:rawOffset+rawLen])
	return buf
}

func (f *segmentFixture) fillParams(be binary.ByteOrder, rec []byte) {
	putF32 := func(off int, v float64) {
		be.PutUint32(rec[off:], math.Float32bits(float32(v)))
	}
	putStr := func(off int, s string) {
		copy(rec[off:], s)
	}

	be.PutUint16(rec[0:], 2) // byte-order word
	if f.truncateParams {
		return
	}

	s := &f.settings
	putF32(0x20, s.Emissivity)
	putF32(0x24, s.ObjectDistance)
	putF32(0x28, s.ReflectedTemperature)
	putF32(0x2c, s.AtmosphericTemperature)
	putF32(0x30, s.IRWindowTemperature)
	putF32(0x34, s.IRWindowTransmission)
	putF32(0x3c, s.RelativeHumidity)
	putF32(0x58, s.PlanckR1)
	putF32(0x5c, s.PlanckB)
	putF32(0x60, s.PlanckF)
	putF32(0x70, s.AtmosphericAlpha1)
	putF32(0x74, s.AtmosphericAlpha2)
	putF32(0x78, s.AtmosphericBeta1)
	putF32(0x7c, s.AtmosphericBeta2)
	putF32(0x80, s.AtmosphericX)
	putF32(0x90, s.CameraTempRangeMax)
	putF32(0x94, s.CameraTempRangeMin)

	putStr(0xd4, f.camera.Model)
	putStr(0xf4, f.camera.PartNumber)
	putStr(0x104, f.camera.SerialNumber)
	putStr(0x114, f.camera.Software)
	putStr(0x170, f.camera.LensModel)
	putStr(0x190, f.camera.LensPartNumber)
	putStr(0x1a0, f.camera.LensSerialNumber)
	putStr(0x1ec, f.camera.FilterModel)
	putStr(0x20c, f.camera.FilterPartNumber)
	putStr(0x21c, f.camera.FilterSerialNumber)

	be.PutUint32(rec[0x308:], uint32(int32(s.PlanckO)))
	be.PutUint32(rec[0x30c:], math.Float32bits(float32(s.PlanckR2)))
	be.PutUint16(rec[0x310:], s.RawValueRangeMin)
	be.PutUint16(rec[0x312:], s.RawValueRangeMax)
}

func (f *segmentFixture) fillRaw(be binary.ByteOrder, rec []byte) {
	be.PutUint16(rec[0:], 2) // byte-order word
	be.PutUint16(rec[2:], uint16(f.width))
	be.PutUint16(rec[4:], uint16(f.height))
	for i, px := range f.pixels {
		be.PutUint16(rec[2*rawHeaderWords+2*i:], px)
	}
}

// wrapJPEG embeds a FLIR payload in a minimal JPEG stream, split over the
// given number of APP1 segments.
func wrapJPEG(payload []byte, parts int) []byte {
	out := []byte{0xff, markerSOI}
	chunk := (len(payload) + parts - 1) / parts
	for i := 0; i < parts; i++ {
		lo := i * chunk
		hi := lo + chunk
		if hi > len(payload) {
			hi = len(payload)
		}
		out = appendFLIRSegment(out, payload[lo:hi], i, parts)
	}
	out = append(out, 0xff, markerEOI)
	return out
}

func appendFLIRSegment(out, chunk []byte, idx, total int) []byte {
	segLen := 2 + 8 + len(chunk)
	out = append(out, 0xff, markerAPP1, byte(segLen>>8), byte(segLen))
	out = append(out, "FLIR\x00"...)
	out = append(out, 0x01, byte(idx), byte(total-1))
	return append(out, chunk...)
}
