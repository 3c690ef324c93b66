package flir

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/tiff"

	"github.com/sells-group/thermal-cli/internal/exiftool"
	"github.com/sells-group/thermal-cli/internal/thermal"
)

// The binary block and the exiftool JSON are two encodings of the same
// parameters and must converge on the same record and the same temperatures.
// The binary block stores float32, so fields agree to single precision.
func TestBinaryAndJSONPathsAgree(t *testing.T) {
	t.Parallel()

	fix := newSegmentFixture()
	fix.settings.ObjectDistance = 3.5
	fix.settings.ReflectedTemperature = 295.15
	fix.settings.AtmosphericTemperature = 291.65

	fromBinary, err := DecodeSegment(fix.build())
	require.NoError(t, err)

	doc := map[string]any{
		"Emissivity":                   0.95,
		"ObjectDistance":               "3.50 m",
		"ReflectedApparentTemperature": "22.0 C",
		"AtmosphericTemperature":       "18.5 C",
		"RelativeHumidity":             "55.0 %",
		"PlanckR1":                     21106.77,
		"PlanckR2":                     0.012545258,
		"PlanckB":                      1501.0,
		"PlanckF":                      1.0,
		"PlanckO":                      -7340,
		"RawThermalImage":              rawImageBase64(t, fix),
		"RawThermalImageType":          "TIFF",
	}
	payload, err := json.Marshal(doc)
	require.NoError(t, err)

	fromJSON, err := exiftool.Decode(payload)
	require.NoError(t, err)
	require.Len(t, fromJSON, 1)

	bs, js := fromBinary.Settings, fromJSON[0].Settings
	assert.InDelta(t, js.Emissivity, bs.Emissivity, 1e-6)
	assert.InDelta(t, js.ObjectDistance, bs.ObjectDistance, 1e-6)
	assert.InDelta(t, js.ReflectedTemperature, bs.ReflectedTemperature, 1e-4)
	assert.InDelta(t, js.AtmosphericTemperature, bs.AtmosphericTemperature, 1e-4)
	assert.InDelta(t, js.RelativeHumidity, bs.RelativeHumidity, 1e-6)
	assert.InDelta(t, js.PlanckR1, bs.PlanckR1, 0.01)
	assert.InDelta(t, js.PlanckR2, bs.PlanckR2, 1e-9)
	assert.InDelta(t, js.PlanckB, bs.PlanckB, 1e-3)
	assert.InDelta(t, js.PlanckO, bs.PlanckO, 1e-6)
	assert.Equal(t, fromJSON[0].Raw.Data(), fromBinary.Raw.Data())

	atm := thermal.DefaultAtmosphere()
	trBinary, err := thermal.NewTransform(bs, atm)
	require.NoError(t, err)
	trJSON, err := thermal.NewTransform(js, atm)
	require.NoError(t, err)

	for _, raw := range []float64{13500, 14000, 16000, 20000} {
		assert.InDelta(t, trJSON.Temperature(raw), trBinary.Temperature(raw), 1e-3, "raw %v", raw)
	}
}

func rawImageBase64(t *testing.T, fix *segmentFixture) string {
	t.Helper()
	img := image.NewGray16(image.Rect(0, 0, fix.width, fix.height))
	for y := 0; y < fix.height; y++ {
		for x := 0; x < fix.width; x++ {
			img.SetGray16(x, y, color.Gray16{Y: fix.pixels[y*fix.width+x]})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, tiff.Encode(&buf, img, nil))
	return "base64:" + base64.StdEncoding.EncodeToString(buf.Bytes())
}
