package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/segmentio/ksuid"
	"gopkg.in/yaml.v3"

	"microct/pkg/ringfilter"
)

// ManifestName is the file a run writes next to its outputs.
const ManifestName = "manifest.yaml"

// Manifest records what a run did. It is written to the output directory
// once every output file is in place.
type Manifest struct {
	RunID       string          `yaml:"runId"`
	Command     string          `yaml:"command"`
	Started     time.Time       `yaml:"started"`
	Finished    time.Time       `yaml:"finished"`
	InputDir    string          `yaml:"inputDir"`
	OutputDir   string          `yaml:"outputDir"`
	Inputs      int             `yaml:"inputs"`
	Rows        int             `yaml:"rows,omitempty"`
	Cols        int             `yaml:"cols,omitempty"`
	ColumnShift int             `yaml:"columnShift,omitempty"`
	Filter      *FilterSettings `yaml:"filter,omitempty"`
	Outputs     []string        `yaml:"outputs"`
}

// FilterSettings is the ring filter configuration of a run.
type FilterSettings struct {
	Levels           int     `yaml:"levels"`
	Wavelet          string  `yaml:"wavelet"`
	Sigma            float64 `yaml:"sigma"`
	Pad              int     `yaml:"pad"`
	ForceNonNegative bool    `yaml:"forceNonNegative"`
}

func newManifest(command, inputDir, outputDir string) *Manifest {
	return &Manifest{
		RunID:     ksuid.New().String(),
		Command:   command,
		Started:   time.Now().UTC(),
		InputDir:  inputDir,
		OutputDir: outputDir,
	}
}

func filterSettings(p ringfilter.Params) *FilterSettings {
	return &FilterSettings{
		Levels:           p.Levels,
		Wavelet:          p.Wavelet,
		Sigma:            p.Sigma,
		Pad:              p.Pad,
		ForceNonNegative: p.ForceNonNegative,
	}
}

// write stores the manifest as dir/manifest.yaml.
func (m *Manifest) write(dir string) error {
	m.Finished = time.Now().UTC()
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ManifestName), data, 0644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// LoadManifest reads a manifest written by a previous run.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	if _, err := ksuid.Parse(m.RunID); err != nil {
		return nil, fmt.Errorf("manifest %s: bad run id: %w", path, err)
	}
	return &m, nil
}
