// Package config loads spot-analyzer settings.
//
// Values are resolved in three layers: built-in defaults, an optional TOML
// file named by SPOT_ANALYZER_CONFIG, and SPOT_ANALYZER_* environment
// variables, each overriding the previous one.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "SPOT_ANALYZER_"

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Duration is a time.Duration that decodes from TOML strings like "10s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Config holds all runtime settings.
type Config struct {
	// Addr is the HTTP listen address.
	Addr string `toml:"addr"`

	// ImagesDir is where annotated images are written and served from.
	ImagesDir string `toml:"images_dir"`

	// LogLevel is a zerolog level name: trace, debug, info, warn, error.
	LogLevel string `toml:"log_level"`

	// LogFormat is "console" for human-readable output or "json".
	LogFormat string `toml:"log_format"`

	// MinAreaRatio is the minimum spot area relative to the image area.
	MinAreaRatio float64 `toml:"min_area_ratio"`

	// AnnotationColor is the "#RRGGBB" color of boxes and labels.
	AnnotationColor string `toml:"annotation_color"`

	// JPEGQuality is used when writing annotated images.
	JPEGQuality int `toml:"jpeg_quality"`

	// MaxUploadMB caps the size of an uploaded request body.
	MaxUploadMB int64 `toml:"max_upload_mb"`

	// ShutdownTimeout bounds graceful HTTP shutdown.
	ShutdownTimeout Duration `toml:"shutdown_timeout"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Addr:            ":8000",
		ImagesDir:       "imagens",
		LogLevel:        "info",
		LogFormat:       "console",
		MinAreaRatio:    0.0005,
		AnnotationColor: "#FF0000",
		JPEGQuality:     95,
		MaxUploadMB:     20,
		ShutdownTimeout: Duration{10 * time.Second},
	}
}

// MaxUploadBytes returns MaxUploadMB in bytes.
func (c Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}

// Load builds a Config from defaults, the optional file named by
// SPOT_ANALYZER_CONFIG, and the environment.
func Load() (Config, error) {
	return LoadFrom(os.Getenv(EnvPrefix+"CONFIG"), os.LookupEnv)
}

// LoadFrom is Load with an explicit file path (may be empty) and environment
// lookup function.
func LoadFrom(path string, lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, errors.Wrapf(err, "failed to read config file %s", path)
		}
	}

	if err := cfg.applyEnv(lookup); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(EnvPrefix + key); ok && v != "" {
			*dst = v
		}
	}
	str("ADDR", &c.Addr)
	str("IMAGES_DIR", &c.ImagesDir)
	str("LOG_LEVEL", &c.LogLevel)
	str("LOG_FORMAT", &c.LogFormat)
	str("ANNOTATION_COLOR", &c.AnnotationColor)

	if v, ok := lookup(EnvPrefix + "MIN_AREA_RATIO"); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return errors.Wrapf(ErrInvalidConfig, "%sMIN_AREA_RATIO: %v", EnvPrefix, err)
		}
		c.MinAreaRatio = f
	}
	if v, ok := lookup(EnvPrefix + "JPEG_QUALITY"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrapf(ErrInvalidConfig, "%sJPEG_QUALITY: %v", EnvPrefix, err)
		}
		c.JPEGQuality = n
	}
	if v, ok := lookup(EnvPrefix + "MAX_UPLOAD_MB"); ok && v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return errors.Wrapf(ErrInvalidConfig, "%sMAX_UPLOAD_MB: %v", EnvPrefix, err)
		}
		c.MaxUploadMB = n
	}
	if v, ok := lookup(EnvPrefix + "SHUTDOWN_TIMEOUT"); ok && v != "" {
		if err := c.ShutdownTimeout.UnmarshalText([]byte(v)); err != nil {
			return errors.Wrapf(ErrInvalidConfig, "%sSHUTDOWN_TIMEOUT: %v", EnvPrefix, err)
		}
	}
	return nil
}

// Validate checks value ranges. Errors wrap ErrInvalidConfig.
func (c Config) Validate() error {
	switch {
	case c.Addr == "":
		return errors.Wrap(ErrInvalidConfig, "addr is empty")
	case c.ImagesDir == "":
		return errors.Wrap(ErrInvalidConfig, "images_dir is empty")
	case c.MinAreaRatio < 0 || c.MinAreaRatio >= 1:
		return errors.Wrapf(ErrInvalidConfig, "min_area_ratio %v outside [0, 1)", c.MinAreaRatio)
	case c.JPEGQuality < 1 || c.JPEGQuality > 100:
		return errors.Wrapf(ErrInvalidConfig, "jpeg_quality %d outside 1-100", c.JPEGQuality)
	case c.MaxUploadMB <= 0:
		return errors.Wrapf(ErrInvalidConfig, "max_upload_mb must be positive, got %d", c.MaxUploadMB)
	case c.ShutdownTimeout.Duration < 0:
		return errors.Wrap(ErrInvalidConfig, "shutdown_timeout is negative")
	}

	switch strings.ToLower(c.LogFormat) {
	case "console", "json":
	default:
		return errors.Wrapf(ErrInvalidConfig, "log_format %q is not console or json", c.LogFormat)
	}
	return nil
}
