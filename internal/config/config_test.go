package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evtscope/evtscope/pkg/types"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, FormatAuto, cfg.Format)
	assert.True(t, cfg.TimeShift)
	assert.True(t, cfg.RealTime)
	assert.Equal(t, 262144, cfg.RingCapacity)
	assert.Equal(t, 30, cfg.FPS)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := DefaultConfig()
		cfg.Input = "rec.raw"
		return cfg
	}

	assert.NoError(t, valid().Validate())

	cfg := valid()
	cfg.Input = ""
	assert.ErrorContains(t, cfg.Validate(), "input")

	cfg = valid()
	cfg.RingCapacity = 0
	assert.ErrorContains(t, cfg.Validate(), "ring_capacity")

	cfg = valid()
	cfg.Format = "EVT4"
	assert.ErrorContains(t, cfg.Validate(), "format")

	cfg = valid()
	cfg.FPS = 0
	assert.ErrorContains(t, cfg.Validate(), "fps")

	cfg = valid()
	cfg.FPS = 500
	assert.ErrorContains(t, cfg.Validate(), "fps")
}

func TestParsedFormat(t *testing.T) {
	cfg := DefaultConfig()

	f, err := cfg.ParsedFormat()
	require.NoError(t, err)
	assert.Equal(t, types.FormatUnknown, f)

	cfg.Format = "EVT2.1"
	f, err = cfg.ParsedFormat()
	require.NoError(t, err)
	assert.Equal(t, types.FormatEVT21, f)

	cfg.Format = "bogus"
	_, err = cfg.ParsedFormat()
	assert.Error(t, err)
}

func TestLoadFromFile_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
input: recording.raw
format: EVT3
time_shift: false
ring_capacity: 1024
fps: 60
source:
  s3:
    region: eu-west-1
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "recording.raw", cfg.Input)
	assert.Equal(t, "EVT3", cfg.Format)
	assert.False(t, cfg.TimeShift)
	assert.Equal(t, 1024, cfg.RingCapacity)
	assert.Equal(t, 60, cfg.FPS)
	assert.Equal(t, "eu-west-1", cfg.Source.S3.Region)
	// Untouched fields keep their defaults.
	assert.True(t, cfg.RealTime)
}

func TestLoadFromFile_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{"input": "recording.raw", "fps": 15}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "recording.raw", cfg.Input)
	assert.Equal(t, 15, cfg.FPS)
}

func TestLoadFromFile_UnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("x = 1"), 0o644))

	_, err := LoadFromFile(path)
	assert.ErrorContains(t, err, "unsupported config file format")
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("EVTSCOPE_INPUT", "s3://captures/hand.raw")
	t.Setenv("EVTSCOPE_FORMAT", "EVT2")
	t.Setenv("EVTSCOPE_TIME_SHIFT", "0")
	t.Setenv("EVTSCOPE_RING_CAPACITY", "4096")
	t.Setenv("EVTSCOPE_S3_REGION", "us-east-2")

	cfg := DefaultConfig()
	LoadFromEnv(cfg)

	assert.Equal(t, "s3://captures/hand.raw", cfg.Input)
	assert.Equal(t, "EVT2", cfg.Format)
	assert.False(t, cfg.TimeShift)
	assert.Equal(t, 4096, cfg.RingCapacity)
	assert.Equal(t, "us-east-2", cfg.Source.S3.Region)
}
