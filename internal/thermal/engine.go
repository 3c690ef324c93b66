package thermal

import (
	"math"

	"github.com/rotisserie/eris"
)

// Atmosphere holds the camera-model-specific constants of the humidity model
// that are not carried in image metadata. The defaults reproduce the
// Thermimage reference algorithm and can be overridden from config for
// cameras calibrated against different published vectors.
type Atmosphere struct {
	// VapourCoefficients c0..c3 of the power series converting atmospheric
	// temperature (Celsius inside the series) to water vapour partial
	// pressure: h2o = RH * exp(c0 + c1*T + c2*T^2 + c3*T^3).
	VapourCoefficients [4]float64

	// SplitAtWindow places the IR window at the midpoint of the optical
	// path, halving the distance inside the transmission exponent.
	SplitAtWindow bool
}

// DefaultAtmosphere returns the reference humidity model constants.
func DefaultAtmosphere() Atmosphere {
	return Atmosphere{
		VapourCoefficients: [4]float64{1.5587, 0.06939, -0.00027816, 0.00000068455},
		SplitAtWindow:      true,
	}
}

// RawFromTemp computes the raw sensor response expected from a blackbody at
// temperature t Kelvin: R1/(R2*(exp(B/t)-F)) - O.
func (s *Settings) RawFromTemp(t float64) float64 {
	return s.PlanckR1/(s.PlanckR2*(math.Exp(s.PlanckB/t)-s.PlanckF)) - s.PlanckO
}

// TempFromRaw inverts RawFromTemp, returning the blackbody temperature in
// Kelvin for a raw sensor count. A count outside the sensor's physical range
// makes the logarithm argument non-positive; the result is then NaN rather
// than a clamped value.
func (s *Settings) TempFromRaw(raw float64) float64 {
	arg := s.PlanckR1/(s.PlanckR2*(raw+s.PlanckO)) + s.PlanckF
	if math.IsInf(arg, 1) || !(arg > 1) {
		// ln(arg) <= 0 would put the temperature at or below absolute zero;
		// a zero denominator at raw == -O drives arg to +Inf and the quotient
		// to 0 K, equally out of domain.
		return math.NaN()
	}
	return s.PlanckB / math.Log(arg)
}

// Transmission computes the atmospheric transmission tau over the object
// distance using the two-term exponential-decay model with the attenuation
// coefficients and mixing constant from the record.
func (s *Settings) Transmission(atm Atmosphere) float64 {
	c := atm.VapourCoefficients
	tc := s.AtmosphericTemperature - 273.15
	h2o := s.RelativeHumidity * math.Exp(c[0]+c[1]*tc+c[2]*tc*tc+c[3]*tc*tc*tc)
	h2oSqrt := math.Sqrt(h2o)

	dist := s.ObjectDistance
	if atm.SplitAtWindow {
		dist /= 2
	}
	distFactor := math.Sqrt(dist)

	x := s.AtmosphericX
	return x*math.Exp(-distFactor*(s.AtmosphericAlpha1+s.AtmosphericBeta1*h2oSqrt)) +
		(1-x)*math.Exp(-distFactor*(s.AtmosphericAlpha2+s.AtmosphericBeta2*h2oSqrt))
}

// Transform converts raw sensor counts to object temperatures for one
// validated parameter record. The reflected, atmospheric and IR-window
// contributions depend only on the record, so they are folded into a
// precomputed gain/offset pair; the per-pixel work is one multiply-add and a
// Planck inversion. A Transform is immutable and safe for concurrent use.
type Transform struct {
	settings Settings
	gain     float64
	offset   float64
}

// NewTransform validates the record and precomputes the correction terms.
func NewTransform(s Settings, atm Atmosphere) (*Transform, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	tau := s.Transmission(atm)
	if !(tau > 0) {
		return nil, eris.Errorf("thermal: atmospheric transmission %v is not positive", tau)
	}

	e := s.Emissivity
	irt := s.IRWindowTransmission
	emissWindow := 1 - irt

	// Each non-target radiation source converted to raw-count units and
	// attenuated by everything between it and the sensor. The window is
	// assumed anti-reflective, so the window-reflection term is zero.
	refl := (1 - e) / e * s.RawFromTemp(s.ReflectedTemperature)
	atm1 := (1 - tau) / (e * tau) * s.RawFromTemp(s.AtmosphericTemperature)
	wind := emissWindow / (e * tau * irt) * s.RawFromTemp(s.IRWindowTemperature)
	atm2 := (1 - tau) / (e * tau * irt * tau) * s.RawFromTemp(s.AtmosphericTemperature)

	return &Transform{
		settings: s,
		gain:     1 / (e * tau * irt * tau),
		offset:   -(refl + atm1 + wind + atm2),
	}, nil
}

// Settings returns the validated record the transform was built from.
func (t *Transform) Settings() Settings { return t.settings }

// Temperature converts one raw sensor count to an object temperature in
// Kelvin. NaN marks a numeric domain error for that count.
func (t *Transform) Temperature(raw float64) float64 {
	return t.settings.TempFromRaw(t.gain*raw + t.offset)
}

// Apply converts every cell of a raw grid, producing a temperature grid of
// the same shape. Cells with numeric domain errors come out as NaN; the rest
// of the grid is unaffected.
func (t *Transform) Apply(g *RawGrid) *TempGrid {
	out := &TempGrid{
		width:  g.width,
		height: g.height,
		data:   make([]float64, len(g.data)),
	}
	for i, raw := range g.data {
		out.data[i] = t.Temperature(float64(raw))
	}
	return out
}
