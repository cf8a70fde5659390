// Package ringfilter removes ring artefacts from tomographic sinograms with
// the combined wavelet-Fourier filter of Münch et al. (Optics Express 17,
// 2009). Ring artefacts show up in a sinogram as vertical stripes; the filter
// isolates them in the vertical-detail wavelet bands and damps their low
// axis-0 frequencies before reconstructing the image.
package ringfilter

import (
	"errors"
	"fmt"
	"log/slog"
	"math/bits"

	"gonum.org/v1/gonum/mat"

	"microct/internal/models"
	"microct/pkg/wavelet"
)

var (
	// ErrInvalidParameter is returned for out-of-range filter parameters.
	ErrInvalidParameter = errors.New("ringfilter: invalid parameter")

	// ErrUnknownKernel is returned when Params.Wavelet names no supported kernel.
	ErrUnknownKernel = wavelet.ErrUnknownKernel
)

// Params controls the filter.
type Params struct {
	// Levels is the number of wavelet decomposition levels. Zero selects
	// MaxLevels for the input; larger values are clamped to it.
	Levels int

	// Wavelet names the kernel, see wavelet.Names.
	Wavelet string

	// Sigma is the width of the Gaussian notch in Fourier space. Larger
	// values damp more frequencies around the stripe component.
	Sigma float64

	// Pad adds rows/Pad zero rows around the angle axis before filtering
	// (half on each side). Zero disables padding.
	Pad int

	// ForceNonNegative clamps negative output samples to zero.
	ForceNonNegative bool
}

// DefaultParams returns the parameters used when nothing is configured.
func DefaultParams() Params {
	return Params{
		Levels:           0,
		Wavelet:          "sym16",
		Sigma:            2.0,
		Pad:              10,
		ForceNonNegative: true,
	}
}

// MaxLevels returns ceil(log2(max(rows, cols))), the deepest decomposition
// the filter performs for an input of that shape.
func MaxLevels(rows, cols int) int {
	n := max(rows, cols)
	if n <= 1 {
		return 0
	}
	return bits.Len(uint(n - 1))
}

// Filter removes vertical stripes from sino, whose rows are projection
// angles and whose columns are detector pixels. The result has the shape
// of the input; sino itself is not modified.
func Filter(sino *models.Image, p Params) (*models.Image, error) {
	if sino == nil || sino.Rows == 0 || sino.Cols == 0 {
		return nil, fmt.Errorf("%w: empty sinogram", ErrInvalidParameter)
	}
	out, err := FilterDense(sino.ToDense(), p)
	if err != nil {
		return nil, err
	}
	return models.ImageFromDense(out), nil
}

// FilterDense is Filter on a float64 matrix.
func FilterDense(sino *mat.Dense, p Params) (*mat.Dense, error) {
	if sino == nil || sino.IsEmpty() {
		return nil, fmt.Errorf("%w: empty sinogram", ErrInvalidParameter)
	}
	rows, cols := sino.Dims()

	kernel, err := p.kernel()
	if err != nil {
		return nil, err
	}
	levels := resolveLevels(p.Levels, rows, cols)

	work, offset := padRows(sino, p.Pad)

	details := make([]wavelet.Details, levels)
	approx := work
	for i := 0; i < levels; i++ {
		approx, details[i] = wavelet.DWT2(approx, kernel)
	}

	for _, d := range details {
		n, _ := d.V.Dims()
		newColumnDamper(n, p.Sigma).apply(d.V)
	}

	for i := levels - 1; i >= 0; i-- {
		hr, hc := details[i].H.Dims()
		cropped := mat.DenseCopyOf(approx.Slice(0, hr, 0, hc))
		approx, err = wavelet.IDWT2(cropped, details[i], kernel)
		if err != nil {
			return nil, fmt.Errorf("ringfilter: level %d reconstruction: %w", i+1, err)
		}
	}

	out := mat.DenseCopyOf(approx.Slice(offset, offset+rows, 0, cols))
	if p.ForceNonNegative {
		out.Apply(func(_, _ int, v float64) float64 {
			return max(v, 0)
		}, out)
	}
	return out, nil
}

// Validate checks the parameters that do not depend on the input shape.
func (p Params) Validate() error {
	_, err := p.kernel()
	return err
}

func (p Params) kernel() (*wavelet.Kernel, error) {
	if p.Levels < 0 {
		return nil, fmt.Errorf("%w: levels must not be negative, got %d", ErrInvalidParameter, p.Levels)
	}
	kernel, err := wavelet.Lookup(p.Wavelet)
	if err != nil {
		return nil, fmt.Errorf("ringfilter: %w", err)
	}
	if !(p.Sigma > 0) {
		return nil, fmt.Errorf("%w: sigma must be positive, got %v", ErrInvalidParameter, p.Sigma)
	}
	if p.Pad < 0 {
		return nil, fmt.Errorf("%w: pad must not be negative, got %d", ErrInvalidParameter, p.Pad)
	}
	return kernel, nil
}

func resolveLevels(requested, rows, cols int) int {
	limit := MaxLevels(rows, cols)
	switch {
	case requested == 0:
		return limit
	case requested > limit:
		slog.Warn("ringfilter: clamping decomposition levels",
			"requested", requested, "max", limit, "rows", rows, "cols", cols)
		return limit
	}
	return requested
}

// padRows surrounds sino with rows/pad zero rows along axis 0 and returns
// the padded copy and the offset of the first original row.
func padRows(sino *mat.Dense, pad int) (*mat.Dense, int) {
	rows, cols := sino.Dims()
	if pad == 0 {
		return mat.DenseCopyOf(sino), 0
	}
	extra := rows / pad
	offset := extra / 2
	out := mat.NewDense(rows+extra, cols, nil)
	out.Slice(offset, offset+rows, 0, cols).(*mat.Dense).Copy(sino)
	return out, offset
}
