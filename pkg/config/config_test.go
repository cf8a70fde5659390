package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"microct/pkg/imgproc"
	"microct/pkg/ringfilter"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, runtime.NumCPU(), cfg.Processing.NumCores)
	assert.Equal(t, ringfilter.DefaultParams(), cfg.FilterParams())
	assert.Equal(t, ".bim", cfg.Sinogram.InputExt)
	assert.Equal(t, "sino", cfg.Sinogram.Prefix)
	assert.Equal(t, "lossy", cfg.Output.TextDecoding)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Filter, cfg.Filter)
}

func TestSaveAndLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "microct.yaml")

	cfg := DefaultConfig()
	cfg.Filter.Wavelet = "db6"
	cfg.Filter.Levels = 4
	cfg.Sinogram.RotationAxis = 511.5
	cfg.Preprocess.References = "median"
	require.NoError(t, SaveConfig(cfg, path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadConfigPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "microct.yaml")
	require.NoError(t, os.WriteFile(path, []byte("filter:\n  sigma: 3.5\n"), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 3.5, cfg.Filter.Sigma)
	assert.Equal(t, "sym16", cfg.Filter.Wavelet, "unset keys keep their defaults")
}

func TestLoadConfigErrors(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("filter: [unclosed"), 0644))
	_, err := LoadConfig(bad)
	assert.Error(t, err)

	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("filter:\n  wavelet: db99\n"), 0644))
	_, err = LoadConfig(invalid)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.ErrorIs(t, err, ringfilter.ErrUnknownKernel)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"sigma", func(c *Config) { c.Filter.Sigma = 0 }},
		{"levels", func(c *Config) { c.Filter.Levels = -1 }},
		{"pad", func(c *Config) { c.Filter.Pad = -2 }},
		{"text decoding", func(c *Config) { c.Output.TextDecoding = "latin1" }},
		{"byte order", func(c *Config) { c.Output.ByteOrder = "middle" }},
		{"bin method", func(c *Config) { c.Preprocess.BinMethod = "max" }},
		{"references", func(c *Config) { c.Preprocess.References = "mode" }},
		{"binning", func(c *Config) { c.Preprocess.Binning = -1 }},
		{"outlier size", func(c *Config) { c.Preprocess.OutlierSize = 0 }},
		{"preview size", func(c *Config) { c.Output.PreviewSize = -1 }},
		{"palette", func(c *Config) { c.Output.Palette = "sepia" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestFormatOptions(t *testing.T) {
	cfg := DefaultConfig()
	opts, err := cfg.FormatOptions()
	require.NoError(t, err)
	assert.Len(t, opts, 1)

	cfg.Output.ByteOrder = "Big"
	opts, err = cfg.FormatOptions()
	require.NoError(t, err)
	assert.Len(t, opts, 2)
}

func TestSinogramParams(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Processing.NumCores = 3
	cfg.Sinogram.RingRemoval = true
	cfg.Sinogram.RotationAxis = 100
	cfg.Preprocess.Binning = 2
	cfg.Preprocess.BinMethod = "sum"
	cfg.Preprocess.References = "median"

	p, err := cfg.SinogramParams("in", "")
	require.NoError(t, err)
	assert.Equal(t, "in", p.InputDir)
	assert.Equal(t, "sinograms", p.OutputDir)
	assert.Equal(t, 3, p.NumCores)
	assert.True(t, p.RingRemoval)
	assert.True(t, p.MedianReferences)
	assert.Equal(t, 100.0, p.RotationAxis)
	assert.Equal(t, 2, p.Binning)
	assert.Equal(t, imgproc.BinSum, p.BinMethod)
	assert.Equal(t, cfg.FilterParams(), p.Filter)
	assert.NotEmpty(t, p.Formats)

	p, err = cfg.SinogramParams("in", "out")
	require.NoError(t, err)
	assert.Equal(t, "out", p.OutputDir)

	cfg.Filter.Wavelet = "nope"
	_, err = cfg.SinogramParams("in", "out")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestFilterDirParams(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Filter.Sigma = 1.5

	p, err := cfg.FilterDirParams("a", "b")
	require.NoError(t, err)
	assert.Equal(t, "a", p.InputDir)
	assert.Equal(t, "b", p.OutputDir)
	assert.Equal(t, 1.5, p.Filter.Sigma)
	assert.Equal(t, cfg.Processing.NumCores, p.NumCores)
}

func TestCreateDefaultConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "microct.yaml")
	require.NoError(t, CreateDefaultConfigFile(path))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}
