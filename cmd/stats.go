package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/thermal-cli/internal/export"
	"github.com/sells-group/thermal-cli/internal/units"
)

var statsCmd = &cobra.Command{
	Use:   "stats <image>...",
	Short: "Convert sensor counts and print temperature statistics",
	Long: `Decode each radiometric source, convert every pixel to an object
temperature, and print min/max/mean plus requested percentiles over the
valid pixels. Pixels that hit a numeric domain error during conversion are
excluded and reported as an invalid count.

Examples:
  # Default statistics in Celsius
  stats flight_0042.jpg

  # Quartiles in Fahrenheit, CSV to a file
  stats *.jpg --unit fahrenheit --percentiles 25,50,75 --format csv --output stats.csv

  # Machine-readable output
  stats survey.json --format json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runStats,
}

func init() {
	f := statsCmd.Flags()
	f.String("unit", "", "output unit: kelvin, celsius or fahrenheit (default from config)")
	f.String("percentiles", "", "comma-separated percentiles, e.g. 5,50,95 (default from config)")
	f.String("format", "table", "output format: table, csv or json")
	f.String("output", "", "output file path (default: stdout)")
	rootCmd.AddCommand(statsCmd)
}

// imageStats is one source's statistics row, temperatures already converted
// to the requested unit.
type imageStats struct {
	Source      string             `json:"source"`
	Unit        string             `json:"unit"`
	Min         float64            `json:"min"`
	Max         float64            `json:"max"`
	Mean        float64            `json:"mean"`
	ValidCount  int                `json:"valid_count"`
	TotalCount  int                `json:"total_count"`
	Percentiles map[string]float64 `json:"percentiles,omitempty"`
}

func runStats(cmd *cobra.Command, args []string) error {
	unit, _ := cmd.Flags().GetString("unit")
	if unit == "" {
		unit = cfg.Output.Unit
	}
	if !units.IsValid(unit) {
		return eris.Errorf("stats: --unit must be one of %s, got %q", units.ValidUnitsString(), unit)
	}

	var percentiles []float64
	if raw, _ := cmd.Flags().GetString("percentiles"); raw != "" {
		var err error
		percentiles, err = parsePercentiles(raw)
		if err != nil {
			return eris.Wrap(err, "stats")
		}
	} else {
		// Copy so sorting never reorders the shared config slice.
		percentiles = append(percentiles, cfg.Output.Percentiles...)
	}
	sort.Float64s(percentiles)

	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "table", "csv", "json":
	default:
		return eris.Errorf("stats: --format must be table, csv or json (got %q)", format)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := zap.L().With(zap.String("command", "stats"))

	var rows []imageStats
	for _, path := range args {
		if err := ctx.Err(); err != nil {
			return eris.Wrap(err, "stats: interrupted")
		}
		images, err := loadImages(path)
		if err != nil {
			return err
		}
		for _, img := range images {
			tr, err := buildTransform(img)
			if err != nil {
				return err
			}
			grid := tr.Apply(img.Raw)

			s, err := export.ComputeStats(grid, percentiles)
			if err != nil {
				return eris.Wrapf(err, "stats: %s", img.Source)
			}

			log.Debug("converted image",
				zap.String("source", img.Source),
				zap.Int("valid_pixels", s.ValidCount),
				zap.Int("invalid_pixels", s.TotalCount-s.ValidCount),
			)

			rows = append(rows, statsRow(img.Source, unit, s, percentiles))
		}
	}

	outPath, _ := cmd.Flags().GetString("output")
	return outputStats(outPath, rows, format, percentiles, unit)
}

func statsRow(source, unit string, s *export.Stats, percentiles []float64) imageStats {
	row := imageStats{
		Source:     source,
		Unit:       unit,
		Min:        units.FromKelvin(s.Min, unit),
		Max:        units.FromKelvin(s.Max, unit),
		Mean:       units.FromKelvin(s.Mean, unit),
		ValidCount: s.ValidCount,
		TotalCount: s.TotalCount,
	}
	if len(percentiles) > 0 {
		row.Percentiles = make(map[string]float64, len(percentiles))
		for _, p := range percentiles {
			row.Percentiles[percentileLabel(p)] = units.FromKelvin(s.Percentiles[p], unit)
		}
	}
	return row
}

// percentileLabel formats a percentile as a stable column name like "p95" or
// "p99.9".
func percentileLabel(p float64) string {
	return "p" + strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.4f", p), "0"), ".")
}

func outputStats(outPath string, rows []imageStats, format string, percentiles []float64, unit string) error {
	var w *os.File
	if outPath != "" {
		var err error
		w, err = os.Create(outPath)
		if err != nil {
			return eris.Wrapf(err, "stats: create output file %s", outPath)
		}
		defer w.Close() //nolint:errcheck
	} else {
		w = os.Stdout
	}

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rows); err != nil {
			return eris.Wrap(err, "stats: encode JSON")
		}
		return nil
	case "csv":
		return writeStatsCSV(w, rows, percentiles)
	default:
		return writeStatsTable(w, rows, percentiles, unit)
	}
}

func writeStatsCSV(w *os.File, rows []imageStats, percentiles []float64) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{"source", "unit", "min", "max", "mean", "valid_count", "total_count"}
	for _, p := range percentiles {
		header = append(header, percentileLabel(p))
	}
	if err := cw.Write(header); err != nil {
		return eris.Wrap(err, "stats: write CSV header")
	}

	for _, r := range rows {
		row := []string{
			r.Source,
			r.Unit,
			fmt.Sprintf("%.3f", r.Min),
			fmt.Sprintf("%.3f", r.Max),
			fmt.Sprintf("%.3f", r.Mean),
			fmt.Sprintf("%d", r.ValidCount),
			fmt.Sprintf("%d", r.TotalCount),
		}
		for _, p := range percentiles {
			row = append(row, fmt.Sprintf("%.3f", r.Percentiles[percentileLabel(p)]))
		}
		if err := cw.Write(row); err != nil {
			return eris.Wrap(err, "stats: write CSV row")
		}
	}
	return nil
}

func writeStatsTable(w *os.File, rows []imageStats, percentiles []float64, unit string) error {
	sym := units.Symbol(unit)
	header := fmt.Sprintf("%-40s %10s %10s %10s %8s", "Source", "Min "+sym, "Max "+sym, "Mean "+sym, "Valid")
	for _, p := range percentiles {
		header += fmt.Sprintf(" %10s", percentileLabel(p))
	}
	if _, err := fmt.Fprintln(w, header); err != nil {
		return eris.Wrap(err, "stats: write table header")
	}
	if _, err := fmt.Fprintln(w, strings.Repeat("-", len(header))); err != nil {
		return eris.Wrap(err, "stats: write table separator")
	}

	for _, r := range rows {
		source := r.Source
		if len(source) > 40 {
			source = "..." + source[len(source)-37:]
		}
		line := fmt.Sprintf("%-40s %10.2f %10.2f %10.2f %8d", source, r.Min, r.Max, r.Mean, r.ValidCount)
		for _, p := range percentiles {
			line += fmt.Sprintf(" %10.2f", r.Percentiles[percentileLabel(p)])
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return eris.Wrap(err, "stats: write table row")
		}
	}
	return nil
}
