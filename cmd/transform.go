package main

import (
	"fmt"
	"image"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/thermal-cli/internal/export"
	"github.com/sells-group/thermal-cli/internal/units"
)

var transformCmd = &cobra.Command{
	Use:   "transform <image>",
	Short: "Convert sensor counts and export a normalized 16-bit raster",
	Long: `Decode a radiometric source, convert every pixel to an object
temperature, map the temperatures linearly onto 16-bit gray samples, and
write the result as TIFF or PNG.

Without --min-temp/--max-temp the grid's own valid minimum and maximum are
used, so the full sample range is always exercised. Pixels that hit a
numeric domain error during conversion come out as sample 0.

Examples:
  # Auto-ranged TIFF next to the input
  transform flight_0042.jpg

  # Fixed range so several frames share one scale
  transform flight_0042.jpg --min-temp 10 --max-temp 40 --unit celsius

  # PNG to an explicit path
  transform survey.json --format png --output survey.png`,
	Args: cobra.ExactArgs(1),
	RunE: runTransform,
}

func init() {
	f := transformCmd.Flags()
	f.Float64("min-temp", math.NaN(), "lower bound of the normalization range, in --unit (default: grid minimum)")
	f.Float64("max-temp", math.NaN(), "upper bound of the normalization range, in --unit (default: grid maximum)")
	f.String("unit", "", "unit of --min-temp/--max-temp (default from config)")
	f.String("format", "", "raster format: tiff or png (default from config)")
	f.String("output", "", "output file path (default: derived from the input name)")
	rootCmd.AddCommand(transformCmd)
}

func runTransform(cmd *cobra.Command, args []string) error {
	path := args[0]

	unit, _ := cmd.Flags().GetString("unit")
	if unit == "" {
		unit = cfg.Output.Unit
	}
	if !units.IsValid(unit) {
		return eris.Errorf("transform: --unit must be one of %s, got %q", units.ValidUnitsString(), unit)
	}

	format, _ := cmd.Flags().GetString("format")
	if format == "" {
		format = cfg.Output.Format
	}
	if format != "tiff" && format != "png" {
		return eris.Errorf("transform: --format must be tiff or png (got %q)", format)
	}

	minFlag, _ := cmd.Flags().GetFloat64("min-temp")
	maxFlag, _ := cmd.Flags().GetFloat64("max-temp")
	if math.IsNaN(minFlag) != math.IsNaN(maxFlag) {
		return eris.New("transform: --min-temp and --max-temp must be given together")
	}

	outPath, _ := cmd.Flags().GetString("output")

	images, err := loadImages(path)
	if err != nil {
		return err
	}
	if len(images) > 1 && outPath != "" {
		return eris.Errorf("transform: %s holds %d images, --output only works with one", path, len(images))
	}

	log := zap.L().With(zap.String("command", "transform"))

	for i, img := range images {
		tr, err := buildTransform(img)
		if err != nil {
			return err
		}
		grid := tr.Apply(img.Raw)

		minT, maxT := minFlag, maxFlag
		if math.IsNaN(minT) {
			minT, maxT, err = export.AutoRange(grid)
			if err != nil {
				return eris.Wrapf(err, "transform: %s", img.Source)
			}
		} else {
			minT = units.ToKelvin(minT, unit)
			maxT = units.ToKelvin(maxT, unit)
		}

		raster, err := export.Normalize(grid, minT, maxT)
		if err != nil {
			return eris.Wrapf(err, "transform: %s", img.Source)
		}

		dest := outPath
		if dest == "" {
			dest = derivedOutputPath(path, format, i, len(images))
		}
		if err := writeRaster(dest, format, raster); err != nil {
			return err
		}

		log.Info("raster written",
			zap.String("source", img.Source),
			zap.String("output", dest),
			zap.Float64("min_temp_k", minT),
			zap.Float64("max_temp_k", maxT),
			zap.Int("invalid_pixels", grid.InvalidCount()),
		)
		fmt.Printf("%s -> %s (%.2f to %.2f %s)\n", img.Source, dest,
			units.FromKelvin(minT, unit), units.FromKelvin(maxT, unit), units.Symbol(unit))
	}

	return nil
}

// derivedOutputPath builds "<input>_temp.<ext>" next to the input, with a
// numeric suffix when one JSON dump yields several images.
func derivedOutputPath(input, format string, index, total int) string {
	base := strings.TrimSuffix(input, filepath.Ext(input))
	if total > 1 {
		return fmt.Sprintf("%s_temp_%d.%s", base, index, format)
	}
	return fmt.Sprintf("%s_temp.%s", base, format)
}

func writeRaster(path, format string, raster *image.Gray16) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "transform: create output file %s", path)
	}
	defer f.Close() //nolint:errcheck

	if format == "png" {
		return export.EncodePNG(f, raster)
	}
	return export.EncodeTIFF(f, raster)
}
