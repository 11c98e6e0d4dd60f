// Package config holds the datesniff command configuration.
// It is read from an optional YAML file; command line flags override it.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nao1215/datesniff"
	"github.com/nao1215/datesniff/pattern"
)

// Config holds all command configuration.
type Config struct {
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
	Sniffer SnifferConfig `yaml:"sniffer"`
	Load    LoadConfig    `yaml:"load"`
}

// OutputConfig controls how verdicts are printed.
type OutputConfig struct {
	// Format is "text" or "json" (default: text)
	Format string `yaml:"format"`

	// Report adds the per-column counters to the output (default: false)
	Report bool `yaml:"report"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	// Level is "debug", "info", "warn" or "error" (default: warn)
	Level string `yaml:"level"`

	// Format is "text" or "json" (default: text)
	Format string `yaml:"format"`
}

// SnifferConfig tunes the string classifier.
type SnifferConfig struct {
	// MinLength is the shortest string considered at all (default: 6, 0 keeps the default)
	MinLength int `yaml:"min_length"`

	// DateFormats are strftime formats appended to the bundled date catalog
	DateFormats []string `yaml:"date_formats"`

	// DatetimeFormats are strftime formats appended to the bundled datetime catalog
	DatetimeFormats []string `yaml:"datetime_formats"`
}

// LoadConfig controls how inputs are read.
type LoadConfig struct {
	// NullValues replaces the cell texts treated as missing. Empty keeps the defaults.
	NullValues []string `yaml:"null_values"`

	// Concurrency is the number of tables evaluated at once (default: 4)
	Concurrency int `yaml:"concurrency"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Output: OutputConfig{
			Format: "text",
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "text",
		},
		Sniffer: SnifferConfig{
			MinLength: datesniff.DefaultMinLength,
		},
		Load: LoadConfig{
			Concurrency: 4,
		},
	}
}

// Load reads the YAML file at path over the defaults and validates the result.
// An empty path returns the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	b, err := os.ReadFile(path) //nolint:gosec // path comes from the command line
	if err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}
	cfg, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("config load %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults and validates the result.
// Unknown keys are rejected.
func Parse(b []byte) (*Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config decode: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string

	switch strings.ToLower(c.Output.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Sprintf("output.format (%q) must be text or json", c.Output.Format))
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Sprintf("logging.level (%q) must be debug, info, warn or error", c.Logging.Level))
	}

	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Sprintf("logging.format (%q) must be text or json", c.Logging.Format))
	}

	if c.Sniffer.MinLength < 0 {
		errs = append(errs, "sniffer.min_length must be non-negative")
	}
	if _, err := c.Catalog(); err != nil {
		errs = append(errs, err.Error())
	}

	if c.Load.Concurrency <= 0 {
		errs = append(errs, "load.concurrency must be positive")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// Catalog returns the bundled pattern catalog extended with the configured formats.
func (c *Config) Catalog() (*pattern.Catalog, error) {
	if len(c.Sniffer.DateFormats) == 0 && len(c.Sniffer.DatetimeFormats) == 0 {
		return pattern.Default(), nil
	}
	return pattern.Default().Extend(c.Sniffer.DateFormats, c.Sniffer.DatetimeFormats)
}
