// Package config loads application configuration from config.yaml and the
// environment and wires the global logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/thermal-cli/internal/thermal"
	"github.com/sells-group/thermal-cli/internal/units"
)

// Config holds the full application configuration.
type Config struct {
	Atmosphere AtmosphereConfig `yaml:"atmosphere" mapstructure:"atmosphere"`
	Output     OutputConfig     `yaml:"output" mapstructure:"output"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// AtmosphereConfig configures the atmospheric transmission model. The
// defaults match calibrated broadband LWIR coefficients and should only be
// overridden when working against a camera with different atmospheric tuning.
type AtmosphereConfig struct {
	VapourCoefficients []float64 `yaml:"vapour_coefficients" mapstructure:"vapour_coefficients"`
	SplitAtWindow      bool      `yaml:"split_at_window" mapstructure:"split_at_window"`
}

// Model converts the config block into a thermal.Atmosphere.
func (a AtmosphereConfig) Model() (thermal.Atmosphere, error) {
	if len(a.VapourCoefficients) != 4 {
		return thermal.Atmosphere{}, eris.Errorf("config: atmosphere.vapour_coefficients needs 4 values, got %d", len(a.VapourCoefficients))
	}
	atm := thermal.Atmosphere{SplitAtWindow: a.SplitAtWindow}
	copy(atm.VapourCoefficients[:], a.VapourCoefficients)
	return atm, nil
}

// OutputConfig configures default output behavior, overridable per command
// via flags.
type OutputConfig struct {
	Unit        string    `yaml:"unit" mapstructure:"unit"`
	Format      string    `yaml:"format" mapstructure:"format"`
	Percentiles []float64 `yaml:"percentiles" mapstructure:"percentiles"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("THERMAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("atmosphere.vapour_coefficients", []float64{1.5587, 0.06939, -0.00027816, 0.00000068455})
	v.SetDefault("atmosphere.split_at_window", true)
	v.SetDefault("output.unit", "celsius")
	v.SetDefault("output.format", "tiff")
	v.SetDefault("output.percentiles", []float64{})

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks cross-field consistency after Load.
func (c *Config) Validate() error {
	if !units.IsValid(c.Output.Unit) {
		return eris.Errorf("config: output.unit must be one of %s, got %q", units.ValidUnitsString(), c.Output.Unit)
	}
	switch c.Output.Format {
	case "tiff", "png":
	default:
		return eris.Errorf("config: output.format must be tiff or png, got %q", c.Output.Format)
	}
	for _, p := range c.Output.Percentiles {
		if p < 0 || p > 100 {
			return eris.Errorf("config: output.percentiles entry %v out of range [0, 100]", p)
		}
	}
	if _, err := c.Atmosphere.Model(); err != nil {
		return err
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
