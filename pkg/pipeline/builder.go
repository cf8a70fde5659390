// Package pipeline turns a directory of projections into per-detector-row
// sinograms, optionally ring-filtering each one, and batch-filters existing
// sinogram directories. Work is spread over a pool of goroutines while
// outputs are written in row order.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"runtime"

	"microct/internal/models"
	"microct/pkg/formats"
	"microct/pkg/imgproc"
	"microct/pkg/ringfilter"
)

var (
	// ErrNoInput is returned when the input directory holds no matching files.
	ErrNoInput = errors.New("pipeline: no input files")

	// ErrInvalidParams is returned for unusable Params.
	ErrInvalidParams = errors.New("pipeline: invalid parameters")

	// ErrShapeMismatch is returned when the projections differ in size.
	ErrShapeMismatch = errors.New("pipeline: projection shapes differ")

	// ErrMissingAngle is returned for projections stored without metadata.
	ErrMissingAngle = errors.New("pipeline: projection carries no angle")
)

// Params holds the sinogram build configuration.
type Params struct {
	// InputDir is the directory holding one projection file per angle.
	// Projections must carry metadata (.bim) so their angle is known.
	InputDir string

	// InputExt selects the projection files; defaults to ".bim".
	InputExt string

	// OutputDir receives the .binsino files and the run manifest. It is
	// created if missing.
	OutputDir string

	// Prefix names the outputs <Prefix>_<row>.binsino; defaults to "sino".
	Prefix string

	// RotationAxis is the detector column of the rotation axis, in pixels
	// of the projections after binning. Projections are zero-padded by
	// 2*round(cols/2 - RotationAxis) columns so that the axis ends up in
	// the centre. Zero or negative leaves the projections as they are.
	RotationAxis float64

	// RingRemoval runs the wavelet-Fourier filter on every sinogram.
	RingRemoval bool
	Filter      ringfilter.Params

	// FlatFields and DarkFields are reference images. When FlatFields is
	// set, every projection is converted to attenuation against the
	// combined references.
	FlatFields []string
	DarkFields []string

	// MedianReferences combines reference stacks by median instead of mean.
	MedianReferences bool

	// Despeckle removes bright outliers exceeding the local median by more
	// than OutlierDelta, using an OutlierSize x OutlierSize window.
	Despeckle    bool
	OutlierDelta float64
	OutlierSize  int

	// Binning combines Binning x Binning pixel blocks; 0 and 1 disable it.
	Binning   int
	BinMethod imgproc.BinMethod

	// NumCores bounds the worker goroutines; <= 0 uses every CPU.
	NumCores int

	// Formats is passed to every codec call.
	Formats []formats.Option

	// Logger defaults to slog.Default.
	Logger *slog.Logger
}

// Builder builds sinograms from a projection stack.
type Builder struct {
	params *Params
	log    *slog.Logger

	flat, dark  *models.Image
	projections []*models.Image
	angles      []float32
	rows, cols  int
}

// NewBuilder returns a Builder for p, filling in defaults.
func NewBuilder(p Params) *Builder {
	if p.InputExt == "" {
		p.InputExt = formats.FormatTaggedImage.Extensions()[0]
	}
	if p.Prefix == "" {
		p.Prefix = "sino"
	}
	if p.NumCores <= 0 {
		p.NumCores = runtime.NumCPU()
	}
	if p.OutlierSize == 0 {
		p.OutlierSize = 3
	}
	log := p.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Builder{params: &p, log: log}
}

func (b *Builder) validate() error {
	p := b.params
	switch {
	case p.InputDir == "":
		return fmt.Errorf("%w: input directory not set", ErrInvalidParams)
	case p.OutputDir == "":
		return fmt.Errorf("%w: output directory not set", ErrInvalidParams)
	case p.Binning < 0:
		return fmt.Errorf("%w: binning %d", ErrInvalidParams, p.Binning)
	case p.Despeckle && p.OutlierSize < 1:
		return fmt.Errorf("%w: outlier window %d", ErrInvalidParams, p.OutlierSize)
	case len(p.DarkFields) > 0 && len(p.FlatFields) == 0:
		return fmt.Errorf("%w: dark fields need flat fields", ErrInvalidParams)
	}
	if p.RingRemoval {
		if err := p.Filter.Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidParams, err)
		}
	}
	return nil
}

// Process runs the build and returns the manifest it wrote.
func (b *Builder) Process(ctx context.Context) (*Manifest, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}
	p := b.params
	man := newManifest("sinos", p.InputDir, p.OutputDir)
	log := b.log.With("run", man.RunID)

	if err := os.MkdirAll(p.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	if err := b.loadReferences(); err != nil {
		return nil, err
	}
	files, err := ListFiles(p.InputDir, p.InputExt)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no %s files in %s", ErrNoInput, p.InputExt, p.InputDir)
	}
	log.Info("pipeline: loading projections", "count", len(files), "dir", p.InputDir)
	if err := b.loadProjections(ctx, files); err != nil {
		return nil, err
	}

	shift := columnShift(b.cols, p.RotationAxis)
	log.Info("pipeline: building sinograms",
		"rows", b.rows, "cols", b.cols, "angles", len(b.angles), "columnShift", shift,
		"ringRemoval", p.RingRemoval, "workers", p.NumCores)

	man.Inputs, man.Rows, man.Cols, man.ColumnShift = len(files), b.rows, b.cols, shift
	if p.RingRemoval {
		man.Filter = filterSettings(p.Filter)
	}

	work := func(_ context.Context, row int) (*models.Sinogram, error) {
		return b.sinogram(row, shift)
	}
	emit := func(row int, sino *models.Sinogram) error {
		name := fmt.Sprintf("%s_%04d%s", p.Prefix, row, formats.FormatSinogram.Extensions()[0])
		if err := formats.WriteBINSINO(filepath.Join(p.OutputDir, name), sino, p.Formats...); err != nil {
			return err
		}
		man.Outputs = append(man.Outputs, name)
		log.Debug("pipeline: wrote sinogram", "row", row, "file", name)
		return nil
	}
	if err := forEachOrdered(ctx, b.rows, p.NumCores, work, emit); err != nil {
		return nil, fmt.Errorf("build sinograms: %w", err)
	}

	if err := man.write(p.OutputDir); err != nil {
		return nil, err
	}
	log.Info("pipeline: done", "sinograms", len(man.Outputs), "out", p.OutputDir)
	return man, nil
}

// Projections returns the preprocessed projections and their angles after
// Process has loaded them.
func (b *Builder) Projections() ([]*models.Image, []float32) {
	return b.projections, b.angles
}

func (b *Builder) loadReferences() error {
	p := b.params
	var err error
	if b.flat, err = b.combine(p.FlatFields); err != nil {
		return fmt.Errorf("flat fields: %w", err)
	}
	if b.dark, err = b.combine(p.DarkFields); err != nil {
		return fmt.Errorf("dark fields: %w", err)
	}
	return nil
}

func (b *Builder) combine(paths []string) (*models.Image, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	stack := make([]*models.Image, len(paths))
	for i, path := range paths {
		doc, err := formats.ReadAny(path, b.params.Formats...)
		if err != nil {
			return nil, err
		}
		stack[i] = doc.Image
	}
	if b.params.MedianReferences {
		return imgproc.MedianStack(stack)
	}
	return imgproc.AverageStack(stack)
}

type projection struct {
	img   *models.Image
	angle float32
}

func (b *Builder) loadProjections(ctx context.Context, files []string) error {
	b.projections = make([]*models.Image, 0, len(files))
	b.angles = make([]float32, 0, len(files))

	work := func(_ context.Context, i int) (projection, error) {
		doc, err := formats.ReadAny(files[i], b.params.Formats...)
		if err != nil {
			return projection{}, err
		}
		if doc.Metadata == nil {
			return projection{}, fmt.Errorf("%w: %s", ErrMissingAngle, filepath.Base(files[i]))
		}
		img, err := b.preprocess(doc.Image)
		if err != nil {
			return projection{}, fmt.Errorf("%s: %w", filepath.Base(files[i]), err)
		}
		return projection{img: img, angle: float32(doc.Metadata.Angle)}, nil
	}
	emit := func(i int, pr projection) error {
		if i == 0 {
			b.rows, b.cols = pr.img.Shape()
		} else if pr.img.Rows != b.rows || pr.img.Cols != b.cols {
			return fmt.Errorf("%w: %s is %dx%d, first projection is %dx%d",
				ErrShapeMismatch, filepath.Base(files[i]), pr.img.Rows, pr.img.Cols, b.rows, b.cols)
		}
		b.projections = append(b.projections, pr.img)
		b.angles = append(b.angles, pr.angle)
		return nil
	}
	if err := forEachOrdered(ctx, len(files), b.params.NumCores, work, emit); err != nil {
		return fmt.Errorf("load projections: %w", err)
	}
	return nil
}

// preprocess applies reference correction, outlier removal and binning.
func (b *Builder) preprocess(img *models.Image) (*models.Image, error) {
	p := b.params
	var err error
	if b.flat != nil {
		if img, err = imgproc.ExternalReference(img, b.flat, b.dark, true); err != nil {
			return nil, err
		}
	}
	if p.Despeckle {
		if img, err = imgproc.RemoveOutliers(img, p.OutlierDelta, p.OutlierSize); err != nil {
			return nil, err
		}
	}
	if p.Binning > 1 {
		if img, err = imgproc.Bin(img, p.Binning, p.BinMethod); err != nil {
			return nil, err
		}
	}
	return img, nil
}

// columnShift returns the number of zero columns that centre the rotation
// axis: positive values are prepended on the left for an axis left of centre,
// negative ones appended on the right.
func columnShift(cols int, axis float64) int {
	if axis <= 0 {
		return 0
	}
	return int(2 * math.RoundToEven(float64(cols)/2-axis))
}

// sinogram assembles, filters and transposes the sinogram of one detector
// row. The filter sees angles along rows; the stored layout has them along
// columns.
func (b *Builder) sinogram(row, shift int) (*models.Sinogram, error) {
	width := b.cols + abs(shift)
	offset := 0
	if shift > 0 {
		offset = shift
	}

	img := models.NewImage(len(b.projections), width)
	for i, proj := range b.projections {
		copy(img.Row(i)[offset:offset+b.cols], proj.Row(row))
	}

	if b.params.RingRemoval {
		filtered, err := ringfilter.Filter(img, b.params.Filter)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		img = filtered
	}
	return models.NewSinogram(img.Transpose(), append([]float32(nil), b.angles...))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
