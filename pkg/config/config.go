// Package config provides configuration loading and management for microct.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"microct/pkg/binio"
	"microct/pkg/formats"
	"microct/pkg/imgproc"
	"microct/pkg/pipeline"
	"microct/pkg/ringfilter"
	"microct/pkg/visualization"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config represents the application configuration loaded from YAML
type Config struct {
	// Processing parameters
	Processing struct {
		// NumCores specifies how many CPU cores to use for parallel processing
		NumCores int `yaml:"numCores"`
	} `yaml:"processing"`

	// Ring filter parameters
	Filter struct {
		// Levels is the number of wavelet decomposition levels, 0 for the maximum
		Levels int `yaml:"levels"`

		// Wavelet names the kernel, e.g. db4 or sym16
		Wavelet string `yaml:"wavelet"`

		// Sigma is the width of the Fourier damping
		Sigma float64 `yaml:"sigma"`

		// Pad adds rows/pad zero rows around the angle axis, 0 disables it
		Pad int `yaml:"pad"`

		// ForceNonNegative clamps negative filter output to zero
		ForceNonNegative bool `yaml:"forceNonNegative"`
	} `yaml:"filter"`

	// Sinogram build parameters
	Sinogram struct {
		// RotationAxis is the detector column of the rotation axis, 0 to skip centring
		RotationAxis float64 `yaml:"rotationAxis"`

		// InputExt selects the projection files
		InputExt string `yaml:"inputExt"`

		// OutputDir is used when no output directory is given on the command line
		OutputDir string `yaml:"outputDir"`

		// RingRemoval filters every sinogram as it is built
		RingRemoval bool `yaml:"ringRemoval"`

		// Prefix names the output files
		Prefix string `yaml:"prefix"`
	} `yaml:"sinogram"`

	// Projection preprocessing
	Preprocess struct {
		// Despeckle replaces bright outliers by the local median
		Despeckle bool `yaml:"despeckle"`

		// OutlierDelta is the threshold above the median
		OutlierDelta float64 `yaml:"outlierDelta"`

		// OutlierSize is the odd median window size
		OutlierSize int `yaml:"outlierSize"`

		// Binning combines binning x binning pixel blocks, 1 disables it
		Binning int `yaml:"binning"`

		// BinMethod is average or sum
		BinMethod string `yaml:"binMethod"`

		// References combines flat and dark stacks by mean or median
		References string `yaml:"references"`
	} `yaml:"preprocess"`

	// Output parameters
	Output struct {
		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`

		// TextDecoding is lossy or strict for BIM text fields
		TextDecoding string `yaml:"textDecoding"`

		// ByteOrder is native, little or big
		ByteOrder string `yaml:"byteOrder"`

		// PreviewSize bounds the longer side of quicklook images, 0 for full size
		PreviewSize int `yaml:"previewSize"`

		// Palette colours quicklooks: gray, viridis, inferno or hot
		Palette string `yaml:"palette"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	// Set default processing parameters
	cfg.Processing.NumCores = runtime.NumCPU() // Use all available cores by default

	// Set default filter parameters
	fp := ringfilter.DefaultParams()
	cfg.Filter.Levels = fp.Levels
	cfg.Filter.Wavelet = fp.Wavelet
	cfg.Filter.Sigma = fp.Sigma
	cfg.Filter.Pad = fp.Pad
	cfg.Filter.ForceNonNegative = fp.ForceNonNegative

	// Set default sinogram parameters
	cfg.Sinogram.InputExt = ".bim"
	cfg.Sinogram.OutputDir = "sinograms"
	cfg.Sinogram.Prefix = "sino"

	// Set default preprocessing parameters
	cfg.Preprocess.OutlierDelta = 0.1
	cfg.Preprocess.OutlierSize = 3
	cfg.Preprocess.Binning = 1
	cfg.Preprocess.BinMethod = imgproc.BinAverage.String()
	cfg.Preprocess.References = "mean"

	// Set default output parameters
	cfg.Output.TextDecoding = binio.TextLossy.String()
	cfg.Output.ByteOrder = "native"
	cfg.Output.PreviewSize = 1024
	cfg.Output.Palette = visualization.GrayPalette

	return cfg
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Parse YAML
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	// Marshal config to YAML
	data, err := cfg.Marshal()
	if err != nil {
		return err
	}

	// Write to file
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// Marshal returns the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("error marshaling config: %w", err)
	}
	return data, nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}

// Validate checks every section and reports the first problem found.
func (c *Config) Validate() error {
	if err := c.FilterParams().Validate(); err != nil {
		return fmt.Errorf("%w: filter: %w", ErrInvalidConfig, err)
	}
	if _, err := c.FormatOptions(); err != nil {
		return err
	}
	if _, err := imgproc.ParseBinMethod(c.Preprocess.BinMethod); err != nil {
		return fmt.Errorf("%w: preprocess.binMethod: %w", ErrInvalidConfig, err)
	}
	if _, err := c.medianReferences(); err != nil {
		return err
	}
	switch {
	case c.Preprocess.Binning < 0:
		return fmt.Errorf("%w: preprocess.binning must not be negative", ErrInvalidConfig)
	case c.Preprocess.OutlierSize < 1:
		return fmt.Errorf("%w: preprocess.outlierSize must be positive", ErrInvalidConfig)
	case c.Output.PreviewSize < 0:
		return fmt.Errorf("%w: output.previewSize must not be negative", ErrInvalidConfig)
	}
	if _, err := visualization.NewPalette(c.Output.Palette); err != nil {
		return fmt.Errorf("%w: output.palette: %w", ErrInvalidConfig, err)
	}
	return nil
}

// FilterParams returns the ring filter section as filter parameters.
func (c *Config) FilterParams() ringfilter.Params {
	return ringfilter.Params{
		Levels:           c.Filter.Levels,
		Wavelet:          c.Filter.Wavelet,
		Sigma:            c.Filter.Sigma,
		Pad:              c.Filter.Pad,
		ForceNonNegative: c.Filter.ForceNonNegative,
	}
}

// FormatOptions returns the codec options selected by the output section.
func (c *Config) FormatOptions() ([]formats.Option, error) {
	mode, err := binio.ParseTextDecoding(c.Output.TextDecoding)
	if err != nil {
		return nil, fmt.Errorf("%w: output.textDecoding: %w", ErrInvalidConfig, err)
	}
	opts := []formats.Option{formats.WithTextDecoding(mode)}

	switch strings.ToLower(strings.TrimSpace(c.Output.ByteOrder)) {
	case "", "native":
	case "little":
		opts = append(opts, formats.WithByteOrder(binary.LittleEndian))
	case "big":
		opts = append(opts, formats.WithByteOrder(binary.BigEndian))
	default:
		return nil, fmt.Errorf("%w: output.byteOrder %q (must be native, little or big)",
			ErrInvalidConfig, c.Output.ByteOrder)
	}
	return opts, nil
}

// SinogramParams returns pipeline parameters for building sinograms from
// inputDir into outputDir. An empty outputDir falls back to
// sinogram.outputDir.
func (c *Config) SinogramParams(inputDir, outputDir string) (pipeline.Params, error) {
	if err := c.Validate(); err != nil {
		return pipeline.Params{}, err
	}
	if outputDir == "" {
		outputDir = c.Sinogram.OutputDir
	}
	method, _ := imgproc.ParseBinMethod(c.Preprocess.BinMethod)
	median, _ := c.medianReferences()
	opts, _ := c.FormatOptions()

	return pipeline.Params{
		InputDir:         inputDir,
		InputExt:         c.Sinogram.InputExt,
		OutputDir:        outputDir,
		Prefix:           c.Sinogram.Prefix,
		RotationAxis:     c.Sinogram.RotationAxis,
		RingRemoval:      c.Sinogram.RingRemoval,
		Filter:           c.FilterParams(),
		MedianReferences: median,
		Despeckle:        c.Preprocess.Despeckle,
		OutlierDelta:     c.Preprocess.OutlierDelta,
		OutlierSize:      c.Preprocess.OutlierSize,
		Binning:          c.Preprocess.Binning,
		BinMethod:        method,
		NumCores:         c.Processing.NumCores,
		Formats:          opts,
	}, nil
}

// FilterDirParams returns pipeline parameters for batch filtering.
func (c *Config) FilterDirParams(inputDir, outputDir string) (pipeline.FilterDirParams, error) {
	if err := c.Validate(); err != nil {
		return pipeline.FilterDirParams{}, err
	}
	opts, _ := c.FormatOptions()
	return pipeline.FilterDirParams{
		InputDir:  inputDir,
		OutputDir: outputDir,
		Filter:    c.FilterParams(),
		NumCores:  c.Processing.NumCores,
		Formats:   opts,
	}, nil
}

func (c *Config) medianReferences() (bool, error) {
	switch strings.ToLower(strings.TrimSpace(c.Preprocess.References)) {
	case "", "mean", "average":
		return false, nil
	case "median":
		return true, nil
	}
	return false, fmt.Errorf("%w: preprocess.references %q (must be mean or median)",
		ErrInvalidConfig, c.Preprocess.References)
}
