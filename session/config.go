// SPDX-License-Identifier: MIT

package session

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/ptens/device"
)

// configValidate checks Config struct tags.
var configValidate = validator.New()

// Config is the file form of the session options.
//
//	device: accel
//	workers: 8
//	seed: 42
//	stream_depth: 128
//	log_level: debug
//	log_format: json
type Config struct {
	Device      string `yaml:"device" validate:"omitempty,oneof=host cpu accel gpu"`
	Workers     int    `yaml:"workers" validate:"gte=0,lte=4096"`
	Seed        uint64 `yaml:"seed"`
	StreamDepth int    `yaml:"stream_depth" validate:"gte=0"`
	LogLevel    string `yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`
	LogFormat   string `yaml:"log_format" validate:"omitempty,oneof=text json"`
}

// DefaultConfig returns the configuration matching New() with no options.
func DefaultConfig() *Config {
	return &Config{Device: "host", Seed: DefaultSeed, LogLevel: "info", LogFormat: "text"}
}

// ParseConfig decodes YAML over DefaultConfig and validates the result.
func ParseConfig(data []byte) (*Config, error) {
	c := DefaultConfig()
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, sessionErrorf("ParseConfig", fmt.Errorf("%w: %v", ErrInvalidConfig, err))
	}
	if err := c.Validate(); err != nil {
		return nil, sessionErrorf("ParseConfig", err)
	}

	return c, nil
}

// LoadConfig reads and parses a YAML config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, sessionErrorf("LoadConfig", err)
	}

	return ParseConfig(data)
}

// Validate checks the struct tags.
func (c *Config) Validate() error {
	if err := configValidate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Level maps LogLevel to a slog.Level (info when empty).
func (c *Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger builds the logger described by LogLevel and LogFormat.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	ho := &slog.HandlerOptions{Level: c.Level()}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, ho))
	}
	return slog.New(slog.NewTextHandler(w, ho))
}

// Options converts the config to session options, logging to w.
func (c *Config) Options(w io.Writer) ([]Option, error) {
	if err := c.Validate(); err != nil {
		return nil, sessionErrorf("Options", err)
	}
	dev, err := device.Parse(c.Device)
	if err != nil {
		return nil, sessionErrorf("Options", err)
	}

	return []Option{
		WithLogger(c.NewLogger(w)),
		WithSeed(c.Seed),
		WithWorkers(c.Workers),
		WithDefaultDevice(dev),
		WithStreamDepth(c.StreamDepth),
	}, nil
}
