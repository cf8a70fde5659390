package imgproc

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/floats"

	"microct/internal/models"
)

// BinMethod selects how a block of pixels is combined.
type BinMethod int

const (
	BinAverage BinMethod = iota
	BinSum
)

func (m BinMethod) String() string {
	if m == BinSum {
		return "sum"
	}
	return "average"
}

// ParseBinMethod parses "average" or "sum".
func ParseBinMethod(s string) (BinMethod, error) {
	switch strings.ToLower(s) {
	case "", "average", "mean":
		return BinAverage, nil
	case "sum":
		return BinSum, nil
	}
	return 0, fmt.Errorf("%w: unknown binning method %q", ErrInvalidParameter, s)
}

// Bin combines non-overlapping b x b blocks. Trailing rows and columns that
// do not fill a block are dropped.
func Bin(img *models.Image, b int, method BinMethod) (*models.Image, error) {
	if b < 1 {
		return nil, fmt.Errorf("%w: binning factor %d", ErrInvalidParameter, b)
	}
	if b == 1 {
		return img.Clone(), nil
	}
	rows, cols := img.Rows/b, img.Cols/b
	out := models.NewImage(rows, cols)
	block := make([]float64, b*b)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			for i := 0; i < b; i++ {
				src := img.Row(r*b + i)[c*b : c*b+b]
				for j, v := range src {
					block[i*b+j] = float64(v)
				}
			}
			v := floats.Sum(block)
			if method == BinAverage {
				v /= float64(len(block))
			}
			out.Pix[r*cols+c] = float32(v)
		}
	}
	return out, nil
}

// BinStack bins every image of stack.
func BinStack(stack []*models.Image, b int, method BinMethod) ([]*models.Image, error) {
	out := make([]*models.Image, len(stack))
	for i, img := range stack {
		binned, err := Bin(img, b, method)
		if err != nil {
			return nil, fmt.Errorf("image %d: %w", i, err)
		}
		out[i] = binned
	}
	return out, nil
}
