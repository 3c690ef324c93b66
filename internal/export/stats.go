// Package export turns temperature grids into summary statistics and
// normalized rasters. It is the seam to file I/O: encoding targets an
// io.Writer and everything else is pure.
package export

import (
	"math"
	"sort"

	"github.com/rotisserie/eris"
	"gonum.org/v1/gonum/stat"

	"github.com/sells-group/thermal-cli/internal/thermal"
)

// Stats summarizes the valid (non-NaN) cells of one temperature grid.
// All temperatures are Kelvin.
type Stats struct {
	Min  float64
	Max  float64
	Mean float64

	// ValidCount is the number of cells included; TotalCount-ValidCount
	// cells hit a numeric domain error during conversion.
	ValidCount int
	TotalCount int

	// Percentiles holds one entry per requested percentile (0..100).
	Percentiles map[float64]float64
}

// ComputeStats computes min, max, mean and the requested percentiles over
// the valid cells of a grid. A grid with no valid cells is an error, not a
// zeroed record.
func ComputeStats(g *thermal.TempGrid, percentiles []float64) (*Stats, error) {
	for _, p := range percentiles {
		if p < 0 || p > 100 {
			return nil, eris.Errorf("export: percentile %v out of range [0, 100]", p)
		}
	}

	valid := make([]float64, 0, len(g.Data()))
	for _, v := range g.Data() {
		if !math.IsNaN(v) {
			valid = append(valid, v)
		}
	}
	if len(valid) == 0 {
		return nil, eris.New("export: no valid pixels in grid")
	}
	sort.Float64s(valid)

	s := &Stats{
		Min:        valid[0],
		Max:        valid[len(valid)-1],
		Mean:       stat.Mean(valid, nil),
		ValidCount: len(valid),
		TotalCount: len(g.Data()),
	}
	if len(percentiles) > 0 {
		s.Percentiles = make(map[float64]float64, len(percentiles))
		for _, p := range percentiles {
			s.Percentiles[p] = stat.Quantile(p/100, stat.Empirical, valid, nil)
		}
	}
	return s, nil
}
