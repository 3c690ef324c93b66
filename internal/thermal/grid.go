package thermal

import (
	"math"

	"github.com/rotisserie/eris"
)

// RawGrid is a width×height grid of unsigned 16-bit sensor counts in
// row-major order. It is immutable once constructed.
type RawGrid struct {
	width  int
	height int
	data   []uint16
}

// NewRawGrid builds a RawGrid from row-major data. The slice is retained, not
// copied; the caller must not mutate it afterwards.
func NewRawGrid(width, height int, data []uint16) (*RawGrid, error) {
	if width <= 0 || height <= 0 {
		return nil, eris.Errorf("thermal: invalid grid dimensions %dx%d", width, height)
	}
	if len(data) != width*height {
		return nil, eris.Errorf("thermal: grid data length %d does not match %dx%d", len(data), width, height)
	}
	return &RawGrid{width: width, height: height, data: data}, nil
}

// Width returns the number of columns.
func (g *RawGrid) Width() int { return g.width }

// Height returns the number of rows.
func (g *RawGrid) Height() int { return g.height }

// At returns the sensor count at column x, row y.
func (g *RawGrid) At(x, y int) uint16 { return g.data[y*g.width+x] }

// Data returns the underlying row-major slice. Read-only.
func (g *RawGrid) Data() []uint16 { return g.data }

// TempGrid is a width×height grid of temperatures in Kelvin, row-major.
// Cells that hit a numeric domain error during conversion hold NaN and are
// excluded from statistics and raster normalization. Immutable once built.
type TempGrid struct {
	width  int
	height int
	data   []float64
}

// NewTempGrid builds a TempGrid from row-major Kelvin data. The slice is
// retained, not copied; the caller must not mutate it afterwards.
func NewTempGrid(width, height int, data []float64) (*TempGrid, error) {
	if width <= 0 || height <= 0 {
		return nil, eris.Errorf("thermal: invalid grid dimensions %dx%d", width, height)
	}
	if len(data) != width*height {
		return nil, eris.Errorf("thermal: grid data length %d does not match %dx%d", len(data), width, height)
	}
	return &TempGrid{width: width, height: height, data: data}, nil
}

// Width returns the number of columns.
func (g *TempGrid) Width() int { return g.width }

// Height returns the number of rows.
func (g *TempGrid) Height() int { return g.height }

// At returns the temperature in Kelvin at column x, row y. NaN marks an
// invalid cell.
func (g *TempGrid) At(x, y int) float64 { return g.data[y*g.width+x] }

// Data returns the underlying row-major slice. Read-only.
func (g *TempGrid) Data() []float64 { return g.data }

// InvalidCount returns the number of NaN cells.
func (g *TempGrid) InvalidCount() int {
	n := 0
	for _, v := range g.data {
		if math.IsNaN(v) {
			n++
		}
	}
	return n
}
