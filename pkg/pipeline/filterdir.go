package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"microct/internal/models"
	"microct/pkg/formats"
	"microct/pkg/ringfilter"
)

// FilterDirParams configures FilterDirectory.
type FilterDirParams struct {
	InputDir  string
	OutputDir string
	Filter    ringfilter.Params
	NumCores  int
	Formats   []formats.Option
	Logger    *slog.Logger
}

// FilterDirectory ring-filters every .binsino file of InputDir and writes
// the results under the same names to OutputDir, which must differ from
// InputDir.
func FilterDirectory(ctx context.Context, p FilterDirParams) (*Manifest, error) {
	if p.InputDir == "" || p.OutputDir == "" {
		return nil, fmt.Errorf("%w: input and output directories are required", ErrInvalidParams)
	}
	if same, err := sameDir(p.InputDir, p.OutputDir); err != nil {
		return nil, err
	} else if same {
		return nil, fmt.Errorf("%w: output directory is the input directory", ErrInvalidParams)
	}
	if err := p.Filter.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}
	if p.NumCores <= 0 {
		p.NumCores = runtime.NumCPU()
	}
	log := p.Logger
	if log == nil {
		log = slog.Default()
	}

	files, err := ListFiles(p.InputDir, formats.FormatSinogram.Extensions()[0])
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no sinograms in %s", ErrNoInput, p.InputDir)
	}
	if err := os.MkdirAll(p.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	man := newManifest("filter-dir", p.InputDir, p.OutputDir)
	man.Inputs = len(files)
	man.Filter = filterSettings(p.Filter)
	log = log.With("run", man.RunID)
	log.Info("pipeline: filtering sinograms", "count", len(files), "workers", p.NumCores)

	work := func(_ context.Context, i int) (*models.Sinogram, error) {
		sino, err := formats.ReadBINSINO(files[i], p.Formats...)
		if err != nil {
			return nil, err
		}
		filtered, err := ringfilter.Filter(sino.Data.Transpose(), p.Filter)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(files[i]), err)
		}
		return &models.Sinogram{Data: filtered.Transpose(), Angles: sino.Angles}, nil
	}
	emit := func(i int, sino *models.Sinogram) error {
		name := filepath.Base(files[i])
		if err := formats.WriteBINSINO(filepath.Join(p.OutputDir, name), sino, p.Formats...); err != nil {
			return err
		}
		man.Outputs = append(man.Outputs, name)
		log.Debug("pipeline: filtered sinogram", "file", name)
		return nil
	}
	if err := forEachOrdered(ctx, len(files), p.NumCores, work, emit); err != nil {
		return nil, fmt.Errorf("filter sinograms: %w", err)
	}

	if err := man.write(p.OutputDir); err != nil {
		return nil, err
	}
	log.Info("pipeline: done", "sinograms", len(man.Outputs), "out", p.OutputDir)
	return man, nil
}

func sameDir(a, b string) (bool, error) {
	absA, err := filepath.Abs(a)
	if err != nil {
		return false, err
	}
	absB, err := filepath.Abs(b)
	if err != nil {
		return false, err
	}
	return filepath.Clean(absA) == filepath.Clean(absB), nil
}
