package flir

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/thermal-cli/internal/thermal"
)

// paramLayout gives the offsets of the sub-blocks inside a camera-params
// record for one family of record versions. Firmware variants that move or
// drop a block get their own table entry; adding a camera is a data change.
type paramLayout struct {
	temperature int
	camera      int
	lens        int
	filter      int
	extra       int
}

// Record versions seen in the wild (0x64..0x6f and 0x104) all share the
// layout documented in ExifTool. Unknown versions are rejected instead of
// parsed against a guessed layout.
var paramLayouts = map[uint32]paramLayout{
	0x64:  {temperature: 0x20, camera: 0xd4, lens: 0x170, filter: 0x1ec, extra: 0x308},
	0x65:  {temperature: 0x20, camera: 0xd4, lens: 0x170, filter: 0x1ec, extra: 0x308},
	0x66:  {temperature: 0x20, camera: 0xd4, lens: 0x170, filter: 0x1ec, extra: 0x308},
	0x67:  {temperature: 0x20, camera: 0xd4, lens: 0x170, filter: 0x1ec, extra: 0x308},
	0x68:  {temperature: 0x20, camera: 0xd4, lens: 0x170, filter: 0x1ec, extra: 0x308},
	0x6f:  {temperature: 0x20, camera: 0xd4, lens: 0x170, filter: 0x1ec, extra: 0x308},
	0x104: {temperature: 0x20, camera: 0xd4, lens: 0x170, filter: 0x1ec, extra: 0x308},
}

// Block sizes used to decide whether a firmware variant's record carries a
// given sub-block at all. Blocks the record length does not cover keep their
// documented defaults.
const (
	temperatureBlockSize = 0x94 // through the camera temperature range
	cameraBlockSize      = 0x50
	lensBlockSize        = 0x40
	filterBlockSize      = 0x40
	extraBlockSize       = 0x10
)

func parseCameraParams(seg *segment, rec record, img *thermal.Image) error {
	layout, ok := paramLayouts[rec.version]
	if !ok {
		return eris.Wrapf(thermal.ErrUnsupportedVersion, "flir: camera parameters record version %#x", rec.version)
	}

	data, err := seg.recordData(rec)
	if err != nil {
		return err
	}
	order, err := recordOrder(data)
	if err != nil {
		return err
	}

	if len(data) < layout.temperature+temperatureBlockSize {
		return eris.Wrapf(thermal.ErrMalformedBlock,
			"flir: camera parameters record of %d bytes lacks the temperature block", len(data))
	}

	s := &img.Settings
	r := newReader(data, order)
	r.seek(layout.temperature)
	s.Emissivity = r.f32()
	s.ObjectDistance = r.f32()
	s.ReflectedTemperature = r.f32()
	s.AtmosphericTemperature = r.f32()
	s.IRWindowTemperature = r.f32()
	s.IRWindowTransmission = r.f32()
	r.skip(4)
	s.RelativeHumidity = r.f32()
	r.skip(6 * 4)
	s.PlanckR1 = r.f32()
	s.PlanckB = r.f32()
	s.PlanckF = r.f32()
	r.skip(3 * 4)
	s.AtmosphericAlpha1 = r.f32()
	s.AtmosphericAlpha2 = r.f32()
	s.AtmosphericBeta1 = r.f32()
	s.AtmosphericBeta2 = r.f32()
	s.AtmosphericX = r.f32()
	r.skip(3 * 4)
	s.CameraTempRangeMax = r.f32()
	s.CameraTempRangeMin = r.f32()
	if r.err != nil {
		return eris.Wrap(thermal.ErrMalformedBlock, "flir: temperature parameters block")
	}

	c := &img.Camera
	if len(data) >= layout.camera+cameraBlockSize {
		r.seek(layout.camera)
		c.Model = r.str(32)
		c.PartNumber = r.str(16)
		c.SerialNumber = r.str(16)
		c.Software = r.str(16)
	}
	if len(data) >= layout.lens+lensBlockSize {
		r.seek(layout.lens)
		c.LensModel = r.str(32)
		c.LensPartNumber = r.str(16)
		c.LensSerialNumber = r.str(16)
	}
	if len(data) >= layout.filter+filterBlockSize {
		r.seek(layout.filter)
		c.FilterModel = r.str(32)
		c.FilterPartNumber = r.str(16)
		c.FilterSerialNumber = r.str(16)
	}
	if len(data) >= layout.extra+extraBlockSize {
		r.seek(layout.extra)
		s.PlanckO = float64(r.i32())
		s.PlanckR2 = r.f32()
		s.RawValueRangeMin = r.u16()
		s.RawValueRangeMax = r.u16()
	}
	if r.err != nil {
		return eris.Wrap(thermal.ErrMalformedBlock, "flir: camera parameters record")
	}
	return nil
}
