// Package imgproc holds the projection preprocessing steps applied before
// sinograms are built: stack averaging, flat/dark-field correction,
// outlier removal and binning.
package imgproc

import (
	"errors"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"

	"microct/internal/models"
)

var (
	// ErrInvalidParameter is returned for out-of-range arguments.
	ErrInvalidParameter = errors.New("imgproc: invalid parameter")

	// ErrShapeMismatch is returned when images that must share a shape don't.
	ErrShapeMismatch = errors.New("imgproc: shape mismatch")
)

// AverageStack returns the per-pixel mean of the images in stack.
func AverageStack(stack []*models.Image) (*models.Image, error) {
	return reduceStack(stack, func(vals []float64) float64 {
		return stat.Mean(vals, nil)
	})
}

// MedianStack returns the per-pixel median of the images in stack. For an
// even number of images the two middle values are averaged.
func MedianStack(stack []*models.Image) (*models.Image, error) {
	return reduceStack(stack, func(vals []float64) float64 {
		sort.Float64s(vals)
		n := len(vals)
		if n%2 == 1 {
			return vals[n/2]
		}
		return (vals[n/2-1] + vals[n/2]) / 2
	})
}

func reduceStack(stack []*models.Image, reduce func([]float64) float64) (*models.Image, error) {
	if err := checkStack(stack); err != nil {
		return nil, err
	}
	first := stack[0]
	out := models.NewImage(first.Rows, first.Cols)
	vals := make([]float64, len(stack))
	for i := range out.Pix {
		for j, img := range stack {
			vals[j] = float64(img.Pix[i])
		}
		out.Pix[i] = float32(reduce(vals))
	}
	return out, nil
}

func checkStack(stack []*models.Image) error {
	if len(stack) == 0 {
		return fmt.Errorf("%w: empty stack", ErrInvalidParameter)
	}
	for i, img := range stack {
		if img == nil {
			return fmt.Errorf("%w: image %d is nil", ErrInvalidParameter, i)
		}
		if img.Rows != stack[0].Rows || img.Cols != stack[0].Cols {
			return fmt.Errorf("%w: image %d is %dx%d, want %dx%d",
				ErrShapeMismatch, i, img.Rows, img.Cols, stack[0].Rows, stack[0].Cols)
		}
	}
	return nil
}
