package export

import (
	"image"
	"image/png"
	"io"
	"math"

	"github.com/rotisserie/eris"
	"golang.org/x/image/tiff"

	"github.com/sells-group/thermal-cli/internal/thermal"
)

// AutoRange returns the minimum and maximum temperature over the valid cells
// of a grid. A degenerate range (all valid cells equal) is widened by 0.5 K
// on each side so the result is always usable with Normalize.
func AutoRange(g *thermal.TempGrid) (minT, maxT float64, err error) {
	minT = math.Inf(1)
	maxT = math.Inf(-1)
	for _, v := range g.Data() {
		if math.IsNaN(v) {
			continue
		}
		minT = math.Min(minT, v)
		maxT = math.Max(maxT, v)
	}
	if minT > maxT {
		return 0, 0, eris.New("export: no valid pixels in grid")
	}
	if minT == maxT {
		minT -= 0.5
		maxT += 0.5
	}
	return minT, maxT, nil
}

// Normalize maps a temperature grid linearly onto 16-bit gray samples over
// [minT, maxT]. Temperatures outside the range clamp to the nearest bound.
// Invalid cells map to sample 0, same as the lower bound; callers that need
// to tell them apart should consult TempGrid.InvalidCount first.
func Normalize(g *thermal.TempGrid, minT, maxT float64) (*image.Gray16, error) {
	if math.IsNaN(minT) || math.IsNaN(maxT) || minT >= maxT {
		return nil, eris.Errorf("export: invalid normalization range [%v, %v]", minT, maxT)
	}

	img := image.NewGray16(image.Rect(0, 0, g.Width(), g.Height()))
	scale := 65535 / (maxT - minT)
	for y := 0; y < g.Height(); y++ {
		for x := 0; x < g.Width(); x++ {
			t := g.At(x, y)
			if math.IsNaN(t) {
				continue
			}
			s := (t - minT) * scale
			if s < 0 {
				s = 0
			} else if s > 65535 {
				s = 65535
			}
			v := uint16(math.Round(s))
			i := img.PixOffset(x, y)
			img.Pix[i] = uint8(v >> 8)
			img.Pix[i+1] = uint8(v)
		}
	}
	return img, nil
}

// EncodeTIFF writes an image as a deflate-compressed TIFF. Lossless, so a
// normalized grid survives a round trip bit for bit.
func EncodeTIFF(w io.Writer, img image.Image) error {
	opts := &tiff.Options{Compression: tiff.Deflate, Predictor: true}
	if err := tiff.Encode(w, img, opts); err != nil {
		return eris.Wrap(err, "export: encode tiff")
	}
	return nil
}

// EncodePNG writes an image as a PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return eris.Wrap(err, "export: encode png")
	}
	return nil
}
