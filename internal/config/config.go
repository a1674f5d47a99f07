// Package config provides unified configuration for the evtscope viewer
// and the conformance harness.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/evtscope/evtscope/internal/source"
	"github.com/evtscope/evtscope/pkg/types"
)

// FormatAuto sniffs the wire format from the RAW file header.
const FormatAuto = "auto"

// Config holds the configuration surface consumed by a decode session
// and the renderer.
type Config struct {
	// Input is the stream to decode: a local path, a device node, or an
	// s3://bucket/key URL. A ".sz" suffix enables snappy decompression.
	Input string `json:"input" yaml:"input"`

	// Format is the wire format: auto, EVT2, EVT2.1, or EVT3.
	Format string `json:"format" yaml:"format"`

	// TimeShift rebases the stream so its first event is at t = 0.
	TimeShift bool `json:"time_shift" yaml:"time_shift"`

	// RealTime paces playback against the wall clock.
	RealTime bool `json:"real_time_playback" yaml:"real_time_playback"`

	// RingCapacity is the display buffer size in events.
	RingCapacity int `json:"ring_capacity" yaml:"ring_capacity"`

	// Sensor is the pixel array geometry; zero values defer to the RAW
	// header.
	Sensor types.Geometry `json:"sensor" yaml:"sensor"`

	// FPS is the render frame rate.
	FPS int `json:"fps" yaml:"fps"`

	// RegistryPath is the conformance hash registry database location.
	RegistryPath string `json:"registry_path" yaml:"registry_path"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"log_level" yaml:"log_level"`

	// Source holds input-source settings (S3 client configuration).
	Source source.Config `json:"source" yaml:"source"`
}

// DefaultConfig returns the defaults for local playback.
func DefaultConfig() *Config {
	return &Config{
		Format:       FormatAuto,
		TimeShift:    true,
		RealTime:     true,
		RingCapacity: 262144,
		FPS:          30,
		RegistryPath: filepath.Join(".", "conformance.db"),
		LogLevel:     "info",
	}
}

// ParsedFormat resolves the configured format string. FormatAuto yields
// FormatUnknown, meaning "sniff from the header".
func (c *Config) ParsedFormat() (types.Format, error) {
	if strings.EqualFold(c.Format, FormatAuto) || c.Format == "" {
		return types.FormatUnknown, nil
	}
	return types.ParseFormat(c.Format)
}

// Validate rejects invalid combinations before a session is created.
func (c *Config) Validate() error {
	if c.Input == "" {
		return fmt.Errorf("input is required")
	}

	if c.RingCapacity <= 0 {
		return fmt.Errorf("ring_capacity must be positive, got %d", c.RingCapacity)
	}

	if _, err := c.ParsedFormat(); err != nil {
		return fmt.Errorf("invalid format %q (must be auto, EVT2, EVT2.1, or EVT3)", c.Format)
	}

	if c.FPS <= 0 || c.FPS > 240 {
		return fmt.Errorf("fps must be between 1 and 240, got %d", c.FPS)
	}

	return nil
}

// LoadFromFile loads configuration from a YAML or JSON file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file format: %s", ext)
	}

	return cfg, nil
}

// LoadFromEnv applies environment variables with the EVTSCOPE_ prefix.
func LoadFromEnv(cfg *Config) {
	if v := os.Getenv("EVTSCOPE_INPUT"); v != "" {
		cfg.Input = v
	}
	if v := os.Getenv("EVTSCOPE_FORMAT"); v != "" {
		cfg.Format = v
	}
	if v := os.Getenv("EVTSCOPE_TIME_SHIFT"); v != "" {
		cfg.TimeShift = v == "true" || v == "1"
	}
	if v := os.Getenv("EVTSCOPE_REAL_TIME"); v != "" {
		cfg.RealTime = v == "true" || v == "1"
	}
	if v := os.Getenv("EVTSCOPE_RING_CAPACITY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RingCapacity = n
		}
	}
	if v := os.Getenv("EVTSCOPE_FPS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.FPS = n
		}
	}
	if v := os.Getenv("EVTSCOPE_REGISTRY_PATH"); v != "" {
		cfg.RegistryPath = v
	}
	if v := os.Getenv("EVTSCOPE_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("EVTSCOPE_S3_REGION"); v != "" {
		cfg.Source.S3.Region = v
	}
	if v := os.Getenv("EVTSCOPE_S3_ENDPOINT"); v != "" {
		cfg.Source.S3.Endpoint = v
	}
	if v := os.Getenv("EVTSCOPE_S3_PATH_STYLE"); v != "" {
		cfg.Source.S3.UsePathStyle = v == "true" || v == "1"
	}
}
