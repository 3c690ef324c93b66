package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/thermal-cli/internal/thermal"
	"github.com/sells-group/thermal-cli/internal/units"
)

var infoCmd = &cobra.Command{
	Use:   "info <image>...",
	Short: "Show calibration parameters and camera identification",
	Long: `Decode one or more radiometric sources and print the embedded scene
parameters, Planck calibration constants, and camera/lens/filter
identification without converting any pixels.

Inputs may be radiometric JPEGs or exiftool -j -b JSON dumps; a JSON dump
may hold several images.

Examples:
  # Inspect a single radiometric JPEG
  info flight_0042.jpg

  # Inspect an exiftool dump as JSON
  info survey.json --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runInfo,
}

func init() {
	infoCmd.Flags().Bool("json", false, "emit machine-readable JSON instead of a table")
	rootCmd.AddCommand(infoCmd)
}

// imageInfo is the JSON shape of one decoded image's metadata.
type imageInfo struct {
	Source   string              `json:"source"`
	Width    int                 `json:"width"`
	Height   int                 `json:"height"`
	Settings thermal.Settings    `json:"settings"`
	Camera   *thermal.CameraInfo `json:"camera,omitempty"`
}

func runInfo(cmd *cobra.Command, args []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")

	var infos []imageInfo
	for _, path := range args {
		images, err := loadImages(path)
		if err != nil {
			return err
		}
		for _, img := range images {
			info := imageInfo{
				Source:   img.Source,
				Width:    img.Raw.Width(),
				Height:   img.Raw.Height(),
				Settings: img.Settings,
			}
			if img.Camera != (thermal.CameraInfo{}) {
				c := img.Camera
				info.Camera = &c
			}
			infos = append(infos, info)
		}
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(infos); err != nil {
			return eris.Wrap(err, "info: encode JSON")
		}
		return nil
	}

	for i, info := range infos {
		if i > 0 {
			fmt.Println()
		}
		printImageInfo(info)
	}
	return nil
}

func printImageInfo(info imageInfo) {
	s := info.Settings

	fmt.Printf("Source:     %s\n", info.Source)
	fmt.Printf("Dimensions: %d x %d\n", info.Width, info.Height)
	if c := info.Camera; c != nil {
		if c.Model != "" {
			fmt.Printf("Camera:     %s (P/N %s, S/N %s, SW %s)\n", c.Model, c.PartNumber, c.SerialNumber, c.Software)
		}
		if c.LensModel != "" {
			fmt.Printf("Lens:       %s (P/N %s, S/N %s)\n", c.LensModel, c.LensPartNumber, c.LensSerialNumber)
		}
		if c.FilterModel != "" {
			fmt.Printf("Filter:     %s (P/N %s, S/N %s)\n", c.FilterModel, c.FilterPartNumber, c.FilterSerialNumber)
		}
	}

	fmt.Println("\nScene parameters:")
	fmt.Printf("  Emissivity:              %.3f\n", s.Emissivity)
	fmt.Printf("  Object distance:         %.2f m\n", s.ObjectDistance)
	fmt.Printf("  Reflected temperature:   %.2f °C\n", units.FromKelvin(s.ReflectedTemperature, units.Celsius))
	fmt.Printf("  Atmospheric temperature: %.2f °C\n", units.FromKelvin(s.AtmosphericTemperature, units.Celsius))
	fmt.Printf("  Relative humidity:       %.0f %%\n", s.RelativeHumidity*100)
	fmt.Printf("  IR window temperature:   %.2f °C\n", units.FromKelvin(s.IRWindowTemperature, units.Celsius))
	fmt.Printf("  IR window transmission:  %.3f\n", s.IRWindowTransmission)

	fmt.Println("\nPlanck calibration:")
	fmt.Printf("  R1: %g  R2: %g  B: %g  F: %g  O: %g\n", s.PlanckR1, s.PlanckR2, s.PlanckB, s.PlanckF, s.PlanckO)
	fmt.Printf("  Alpha: %g / %g  Beta: %g / %g  X: %g\n",
		s.AtmosphericAlpha1, s.AtmosphericAlpha2, s.AtmosphericBeta1, s.AtmosphericBeta2, s.AtmosphericX)

	if s.CameraTempRangeMax != 0 {
		fmt.Printf("\nCamera range: %.2f °C to %.2f °C\n",
			units.FromKelvin(s.CameraTempRangeMin, units.Celsius),
			units.FromKelvin(s.CameraTempRangeMax, units.Celsius))
	}
	if s.RawValueRangeMax != 0 {
		fmt.Printf("Raw range:    %d to %d\n", s.RawValueRangeMin, s.RawValueRangeMax)
	}
}
