// Package config loads optional defaults for the estegano command.
//
// Configuration comes from a single YAML file named by the --config flag or,
// failing that, the ESTEGANO_CONFIG environment variable. There is no
// discovery: without either, Default is used.
//
//	verbose: true
//	compression: 9          # deflate level for the hidden archive, -2..9
//	png_compression: best   # default, none, speed or best
package config

import (
	"errors"
	"fmt"
	"image/png"
	"os"

	"github.com/klauspost/compress/flate"
	"gopkg.in/yaml.v3"
)

// EnvVar names the environment variable holding the config file path.
const EnvVar = "ESTEGANO_CONFIG"

// Config holds defaults that command-line flags may override.
type Config struct {
	// Verbose enables debug-level progress output.
	Verbose bool `yaml:"verbose"`

	// Compression is the flate level used when packing the data to hide.
	// Smaller archives allow larger strides, which are harder to detect.
	Compression int `yaml:"compression"`

	// PNGCompression is the encoder setting for PNG output images.
	PNGCompression string `yaml:"png_compression"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Compression:    flate.BestCompression,
		PNGCompression: "best",
	}
}

// Path returns the config file path to load: flagValue if set, otherwise the
// environment variable, otherwise "".
func Path(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return os.Getenv(EnvVar)
}

// Load reads the YAML file at path over Default and validates the result.
// An empty path returns Default.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that every field holds a supported value.
func (c Config) Validate() error {
	var errs []error
	if c.Compression < flate.HuffmanOnly || c.Compression > flate.BestCompression {
		errs = append(errs, fmt.Errorf("compression %d is outside the allowed range of %d-%d",
			c.Compression, flate.HuffmanOnly, flate.BestCompression))
	}
	if _, err := c.PNGLevel(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// PNGLevel maps PNGCompression onto the image/png encoder setting.
func (c Config) PNGLevel() (png.CompressionLevel, error) {
	switch c.PNGCompression {
	case "default":
		return png.DefaultCompression, nil
	case "none":
		return png.NoCompression, nil
	case "speed":
		return png.BestSpeed, nil
	case "best", "":
		return png.BestCompression, nil
	default:
		return 0, fmt.Errorf("unknown png_compression %q (want default, none, speed or best)", c.PNGCompression)
	}
}
