// Package config loads the flowbalance YAML settings file.
//
//	max_belt: "1200"
//	timeout: 30s
//	log_level: info
//	log_format: text
//	cache_path: ""
//	metrics_addr: ""
//	jobs: 4
//
// Keys left out of the file keep their Default value. Unknown keys are an
// error.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/flowbalance/rate"
)

// ErrInvalidConfig wraps every load and validation failure.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Log formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Config holds every tunable of the CLI.
type Config struct {
	// MaxBelt is the default per-channel ceiling, as a decimal string.
	MaxBelt string `yaml:"max_belt"`
	// Timeout bounds each search. Zero disables the limit.
	Timeout time.Duration `yaml:"timeout"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
	// LogFormat is text or json.
	LogFormat string `yaml:"log_format"`
	// CachePath is the SQLite plan cache file. Empty disables caching.
	CachePath string `yaml:"cache_path"`
	// MetricsAddr serves /metrics when set, e.g. ":9090".
	MetricsAddr string `yaml:"metrics_addr"`
	// Jobs is the number of concurrent solves in batch mode.
	Jobs int `yaml:"jobs"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		MaxBelt:   "1200",
		Timeout:   30 * time.Second,
		LogLevel:  "info",
		LogFormat: FormatText,
		Jobs:      4,
	}
}

// Load reads path over the defaults and validates the result.
// An empty path returns Default.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read the config file: %w", err)
	}
	if err := cfg.decode(data); err != nil {
		return Config{}, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c *Config) decode(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}

	return nil
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	if _, err := c.Capacity(); err != nil {
		return err
	}
	if c.Timeout < 0 {
		return fmt.Errorf("%w: negative timeout %s", ErrInvalidConfig, c.Timeout)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	switch c.LogFormat {
	case FormatText, FormatJSON:
	default:
		return fmt.Errorf("%w: log_format %q", ErrInvalidConfig, c.LogFormat)
	}
	if c.Jobs < 1 {
		return fmt.Errorf("%w: jobs must be positive, got %d", ErrInvalidConfig, c.Jobs)
	}

	return nil
}

// Capacity parses MaxBelt.
func (c Config) Capacity() (rate.Rate, error) {
	r, err := rate.Parse(c.MaxBelt)
	if err != nil {
		return 0, fmt.Errorf("%w: max_belt: %w", ErrInvalidConfig, err)
	}
	if r == 0 {
		return 0, fmt.Errorf("%w: max_belt must be positive", ErrInvalidConfig)
	}

	return r, nil
}

// Level parses LogLevel.
func (c Config) Level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("%w: log_level %q", ErrInvalidConfig, c.LogLevel)
	}

	return lvl, nil
}

// NewLogger builds the slog handler selected by LogFormat and LogLevel.
func (c Config) NewLogger(w io.Writer) (*slog.Logger, error) {
	lvl, err := c.Level()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: lvl}
	switch c.LogFormat {
	case FormatJSON:
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case FormatText:
		return slog.New(slog.NewTextHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("%w: log_format %q", ErrInvalidConfig, c.LogFormat)
	}
}

// Encode writes c as YAML.
func (c Config) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return err
	}

	return enc.Close()
}
