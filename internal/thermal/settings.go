// Package thermal holds the normalized radiometric parameter model and the
// raw-count to temperature conversion engine shared by both metadata decoders.
package thermal

// Settings is the normalized camera/scene parameter record. All temperatures
// are Kelvin, distances are meters, humidity and transmission are fractions.
//
// Both the FLIR binary decoder and the exiftool JSON decoder produce this
// record, so the conversion engine never branches on source encoding.
type Settings struct {
	Emissivity     float64
	ObjectDistance float64

	ReflectedTemperature   float64
	AtmosphericTemperature float64
	RelativeHumidity       float64

	IRWindowTemperature  float64
	IRWindowTransmission float64

	// Planck-law sensor calibration constants.
	PlanckR1 float64
	PlanckR2 float64
	PlanckB  float64
	PlanckF  float64
	PlanckO  float64

	// Atmospheric attenuation coefficients and the mixing constant X of the
	// two-term exponential-decay transmission model.
	AtmosphericAlpha1 float64
	AtmosphericAlpha2 float64
	AtmosphericBeta1  float64
	AtmosphericBeta2  float64
	AtmosphericX      float64

	// Informational fields, present only in the binary camera-params record.
	CameraTempRangeMin float64
	CameraTempRangeMax float64
	RawValueRangeMin   uint16
	RawValueRangeMax   uint16
}

// CameraInfo holds camera, lens and filter identification strings from the
// binary camera-params record. All fields may be empty.
type CameraInfo struct {
	Model        string
	PartNumber   string
	SerialNumber string
	Software     string

	LensModel        string
	LensPartNumber   string
	LensSerialNumber string

	FilterModel        string
	FilterPartNumber   string
	FilterSerialNumber string
}

// Image is the result of one decode call: the parameter record, camera
// identification, and the raw sensor-count grid for a single source image.
type Image struct {
	// Source is the originating file path when the metadata carries one.
	Source   string
	Settings Settings
	Camera   CameraInfo
	Raw      *RawGrid
}

// DefaultSettings returns the documented default for every parameter.
// Decoders start from this record and overwrite the fields present in the
// source metadata. The Planck and attenuation defaults are the reference
// values published with the Thermimage raw2temp algorithm.
func DefaultSettings() Settings {
	return Settings{
		Emissivity:     1.0,
		ObjectDistance: 1.0,

		ReflectedTemperature:   293.15,
		AtmosphericTemperature: 293.15,
		RelativeHumidity:       0.50,

		IRWindowTemperature:  293.15,
		IRWindowTransmission: 1.0,

		PlanckR1: 21106.77,
		PlanckR2: 0.012545258,
		PlanckB:  1501.0,
		PlanckF:  1.0,
		PlanckO:  -7340.0,

		AtmosphericAlpha1: 0.006569,
		AtmosphericAlpha2: 0.01262,
		AtmosphericBeta1:  -0.002276,
		AtmosphericBeta2:  -0.00667,
		AtmosphericX:      1.9,
	}
}

// Validate checks every field against the model's range rules and returns an
// *InvalidParameterError for the first violation. A violating record is
// rejected rather than clamped.
func (s *Settings) Validate() error {
	switch {
	case !(s.Emissivity > 0 && s.Emissivity <= 1):
		return &InvalidParameterError{Field: "Emissivity", Reason: "must be in (0, 1]"}
	case !(s.ObjectDistance >= 0):
		return &InvalidParameterError{Field: "ObjectDistance", Reason: "must be non-negative"}
	case !(s.RelativeHumidity >= 0 && s.RelativeHumidity <= 1):
		return &InvalidParameterError{Field: "RelativeHumidity", Reason: "must be in [0, 1]"}
	case !(s.IRWindowTransmission > 0 && s.IRWindowTransmission <= 1):
		return &InvalidParameterError{Field: "IRWindowTransmission", Reason: "must be in (0, 1]"}
	case !(s.ReflectedTemperature > 0):
		return &InvalidParameterError{Field: "ReflectedTemperature", Reason: "must be above absolute zero"}
	case !(s.AtmosphericTemperature > 0):
		return &InvalidParameterError{Field: "AtmosphericTemperature", Reason: "must be above absolute zero"}
	case !(s.IRWindowTemperature > 0):
		return &InvalidParameterError{Field: "IRWindowTemperature", Reason: "must be above absolute zero"}
	case !(s.PlanckR1 > 0):
		return &InvalidParameterError{Field: "PlanckR1", Reason: "must be positive"}
	case !(s.PlanckR2 > 0):
		return &InvalidParameterError{Field: "PlanckR2", Reason: "must be positive"}
	case !(s.PlanckB > 0):
		return &InvalidParameterError{Field: "PlanckB", Reason: "must be positive"}
	case !(s.PlanckF > 0):
		return &InvalidParameterError{Field: "PlanckF", Reason: "must be positive"}
	case !(s.AtmosphericX > 0 && s.AtmosphericX <= 2):
		return &InvalidParameterError{Field: "AtmosphericX", Reason: "must be in (0, 2]"}
	}
	return nil
}

// ValidateWindowPair enforces the cross-field rule that IR-window temperature
// and transmission must both come from the source metadata or both default
// together. Decoders call it with the presence flags of the two keys.
func ValidateWindowPair(hasTemperature, hasTransmission bool) error {
	if hasTemperature == hasTransmission {
		return nil
	}
	if hasTemperature {
		return &InvalidParameterError{
			Field:  "IRWindowTransmission",
			Reason: "IRWindowTemperature set without IRWindowTransmission",
		}
	}
	return &InvalidParameterError{
		Field:  "IRWindowTemperature",
		Reason: "IRWindowTransmission set without IRWindowTemperature",
	}
}
