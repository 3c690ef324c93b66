// Package exiftool decodes the JSON emitted by `exiftool -j -b` on a
// radiometric JPEG into the normalized thermal parameter record and raw
// sensor grid. It accepts a single document or an array of documents, the
// two shapes exiftool produces for one or many input files.
//
// exiftool prints converted values: temperatures carry a " C" suffix (or are
// bare Celsius numbers), humidity is a percentage, distances are meters.
// This decoder normalizes all of that back into the Kelvin/fraction units of
// thermal.Settings.
package exiftool

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/image/tiff"

	"github.com/sells-group/thermal-cli/internal/thermal"
	"github.com/sells-group/thermal-cli/internal/units"
)

type document map[string]json.RawMessage

// Decode parses exiftool JSON output into one Image per document. A field
// error in any document fails the whole decode; no partial records are
// returned.
func Decode(data []byte) ([]*thermal.Image, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, eris.New("exiftool: empty document")
	}

	var docs []document
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &docs); err != nil {
			return nil, eris.Wrap(err, "exiftool: parse document array")
		}
	} else {
		var doc document
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, eris.Wrap(err, "exiftool: parse document")
		}
		docs = []document{doc}
	}

	images := make([]*thermal.Image, 0, len(docs))
	for _, doc := range docs {
		img, err := decodeDocument(doc)
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, nil
}

func decodeDocument(doc document) (*thermal.Image, error) {
	img := &thermal.Image{Settings: thermal.DefaultSettings()}
	s := &img.Settings

	img.Source, _ = stringField(doc, "SourceFile")

	// Required calibration fields: silently defaulting these would corrupt
	// every downstream temperature.
	required := []struct {
		key  string
		dst  *float64
		conv func(float64) float64
	}{
		{"Emissivity", &s.Emissivity, nil},
		{"PlanckR1", &s.PlanckR1, nil},
		{"PlanckR2", &s.PlanckR2, nil},
		{"PlanckB", &s.PlanckB, nil},
		{"PlanckF", &s.PlanckF, nil},
		{"PlanckO", &s.PlanckO, nil},
	}
	for _, f := range required {
		v, ok, err := floatField(doc, f.key)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, &thermal.MissingFieldError{Key: f.key}
		}
		if f.conv != nil {
			v = f.conv(v)
		}
		*f.dst = v
	}

	// Optional fields keep the documented defaults when absent.
	optional := []struct {
		key  string
		dst  *float64
		conv func(float64) float64
	}{
		{"ObjectDistance", &s.ObjectDistance, nil},
		{"ReflectedApparentTemperature", &s.ReflectedTemperature, celsiusToKelvin},
		{"AtmosphericTemperature", &s.AtmosphericTemperature, celsiusToKelvin},
		{"RelativeHumidity", &s.RelativeHumidity, percentToFraction},
		{"AtmosphericTransAlpha1", &s.AtmosphericAlpha1, nil},
		{"AtmosphericTransAlpha2", &s.AtmosphericAlpha2, nil},
		{"AtmosphericTransBeta1", &s.AtmosphericBeta1, nil},
		{"AtmosphericTransBeta2", &s.AtmosphericBeta2, nil},
		{"AtmosphericTransX", &s.AtmosphericX, nil},
	}
	for _, f := range optional {
		v, ok, err := floatField(doc, f.key)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if f.conv != nil {
			v = f.conv(v)
		}
		*f.dst = v
	}

	// The IR window pair must come from the document together or default
	// together; one without the other invalidates the record.
	winTemp, hasWinTemp, err := floatField(doc, "IRWindowTemperature")
	if err != nil {
		return nil, err
	}
	winTrans, hasWinTrans, err := floatField(doc, "IRWindowTransmission")
	if err != nil {
		return nil, err
	}
	if err := thermal.ValidateWindowPair(hasWinTemp, hasWinTrans); err != nil {
		return nil, err
	}
	if hasWinTemp {
		s.IRWindowTemperature = celsiusToKelvin(winTemp)
		s.IRWindowTransmission = winTrans
	}

	decodeCameraInfo(doc, &img.Camera)

	grid, err := decodeRawImage(doc)
	if err != nil {
		return nil, err
	}
	img.Raw = grid

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return img, nil
}

func decodeCameraInfo(doc document, c *thermal.CameraInfo) {
	get := func(key string) string {
		v, _ := stringField(doc, key)
		return v
	}
	c.Model = get("CameraModel")
	c.PartNumber = get("CameraPartNumber")
	c.SerialNumber = get("CameraSerialNumber")
	c.Software = get("CameraSoftware")
	c.LensModel = get("LensModel")
	c.LensPartNumber = get("LensPartNumber")
	c.LensSerialNumber = get("LensSerialNumber")
	c.FilterModel = get("FilterModel")
	c.FilterPartNumber = get("FilterPartNumber")
	c.FilterSerialNumber = get("FilterSerialNumber")
}

// decodeRawImage extracts the base64 raw sensor image. exiftool -b encodes
// the embedded raster as "base64:<data>"; FLIR firmware stores it as an 8-
// or 16-bit grayscale TIFF. PNG-packed raw images exist on some cameras and
// are rejected with a distinct error, mirroring the binary decoder.
func decodeRawImage(doc document) (*thermal.RawGrid, error) {
	enc, ok := stringField(doc, "RawThermalImage")
	if !ok {
		return nil, &thermal.MissingFieldError{Key: "RawThermalImage"}
	}
	typ, ok := stringField(doc, "RawThermalImageType")
	if !ok {
		return nil, &thermal.MissingFieldError{Key: "RawThermalImageType"}
	}
	if !strings.EqualFold(typ, "TIFF") {
		return nil, eris.Wrapf(thermal.ErrUnsupportedVersion, "exiftool: raw thermal image type %q", typ)
	}

	const prefix = "base64:"
	if !strings.HasPrefix(enc, prefix) {
		return nil, &thermal.MissingFieldError{Key: "RawThermalImage"}
	}
	raw, err := base64.StdEncoding.DecodeString(enc[len(prefix):])
	if err != nil {
		return nil, eris.Wrap(thermal.ErrMalformedBlock, "exiftool: raw thermal image base64")
	}

	decoded, err := tiff.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, eris.Wrap(thermal.ErrMalformedBlock, "exiftool: raw thermal image TIFF")
	}

	b := decoded.Bounds()
	w, h := b.Dx(), b.Dy()
	pixels := make([]uint16, 0, w*h)
	switch m := decoded.(type) {
	case *image.Gray16:
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				pixels = append(pixels, m.Gray16At(x, y).Y)
			}
		}
	case *image.Gray:
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				// 8-bit counts widen without rescaling; they are sensor
				// counts, not display intensities.
				pixels = append(pixels, uint16(m.GrayAt(x, y).Y))
			}
		}
	default:
		return nil, eris.Wrapf(thermal.ErrUnsupportedVersion, "exiftool: raw thermal image color model %T", decoded)
	}

	return thermal.NewRawGrid(w, h, pixels)
}

func celsiusToKelvin(v float64) float64 { return v + units.CelsiusOffset }

func percentToFraction(v float64) float64 { return v / 100 }

func stringField(doc document, key string) (string, bool) {
	raw, ok := doc[key]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// floatField reads a numeric field that exiftool may emit either as a JSON
// number or as a string with a unit suffix ("20.0 C", "50.0 %", "1.00 m").
// A present key that parses to no leading float is reported as a field
// error, never coerced.
func floatField(doc document, key string) (float64, bool, error) {
	raw, ok := doc[key]
	if !ok {
		return 0, false, nil
	}

	var num float64
	if err := json.Unmarshal(raw, &num); err == nil {
		return num, true, nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false, &thermal.MissingFieldError{Key: key}
	}
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return 0, false, &thermal.MissingFieldError{Key: key}
	}
	v, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, false, &thermal.MissingFieldError{Key: key}
	}
	return v, true, nil
}
