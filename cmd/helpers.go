package main

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/thermal-cli/internal/exiftool"
	"github.com/sells-group/thermal-cli/internal/flir"
	"github.com/sells-group/thermal-cli/internal/thermal"
)

// loadImages reads a radiometric source file and decodes it. A file that
// starts with a JSON token is treated as an exiftool -j -b dump, which may
// hold several images; anything else goes through the binary JPEG decoder.
func loadImages(path string) ([]*thermal.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "read %s", path)
	}

	var images []*thermal.Image
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		images, err = exiftool.Decode(data)
	} else {
		var img *thermal.Image
		img, err = flir.Decode(data)
		if img != nil {
			images = []*thermal.Image{img}
		}
	}
	if err != nil {
		return nil, eris.Wrapf(err, "decode %s", path)
	}

	for i, img := range images {
		if img.Source == "" {
			img.Source = path
			if len(images) > 1 {
				img.Source = fmt.Sprintf("%s#%d", path, i)
			}
		}
	}
	return images, nil
}

// parsePercentiles parses a comma-separated percentile list like "5,50,95".
// An empty string means none.
func parsePercentiles(s string) ([]float64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var out []float64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		p, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return nil, eris.Errorf("invalid percentile %q", part)
		}
		if p < 0 || p > 100 {
			return nil, eris.Errorf("percentile %v out of range [0, 100]", p)
		}
		out = append(out, p)
	}
	return out, nil
}

// buildTransform wires one decoded image to the conversion engine using the
// configured atmosphere model.
func buildTransform(img *thermal.Image) (*thermal.Transform, error) {
	atm, err := cfg.Atmosphere.Model()
	if err != nil {
		return nil, err
	}
	tr, err := thermal.NewTransform(img.Settings, atm)
	if err != nil {
		return nil, eris.Wrapf(err, "build transform for %s", img.Source)
	}
	return tr, nil
}
