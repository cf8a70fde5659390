package formats

import (
	"encoding/binary"
	"fmt"
	"math"

	"microct/internal/models"
	"microct/pkg/binio"
)

// maxFloatDim is the largest dimension a float32 size header holds exactly.
const maxFloatDim = 1 << 24

type options struct {
	order binary.ByteOrder
	text  binio.TextDecoding
}

// Option configures a read or write.
type Option func(*options)

// WithByteOrder overrides the host-native byte order, e.g. to read files
// written on a machine of the other endianness.
func WithByteOrder(order binary.ByteOrder) Option {
	return func(o *options) {
		o.order = order
	}
}

// WithTextDecoding selects how BIM text fields are decoded.
func WithTextDecoding(mode binio.TextDecoding) Option {
	return func(o *options) {
		o.text = mode
	}
}

func newOptions(opts []Option) *options {
	o := &options{order: binio.NativeOrder, text: binio.TextLossy}
	for _, opt := range opts {
		opt(o)
	}
	if o.order == nil {
		o.order = binio.NativeOrder
	}
	return o
}

// columnMajor returns the samples of img in column-major order.
func columnMajor(img *models.Image) []float32 {
	out := make([]float32, len(img.Pix))
	i := 0
	for c := 0; c < img.Cols; c++ {
		for r := 0; r < img.Rows; r++ {
			out[i] = img.Pix[r*img.Cols+c]
			i++
		}
	}
	return out
}

// fromColumnMajor builds a rows x cols image from column-major samples.
func fromColumnMajor(rows, cols int, data []float32) *models.Image {
	img := models.NewImage(rows, cols)
	i := 0
	for c := 0; c < cols; c++ {
		for r := 0; r < rows; r++ {
			img.Pix[r*cols+c] = data[i]
			i++
		}
	}
	return img
}

// floatDim converts a float size header value to a dimension.
func floatDim(v float32, what string) (int, error) {
	f := float64(v)
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 || f != math.Trunc(f) || f > maxFloatDim {
		return 0, fmt.Errorf("%w: %s %v is not a valid dimension", ErrMalformedHeader, what, v)
	}
	return int(f), nil
}

// pixelCount multiplies two dimensions, rejecting products that cannot be
// addressed as float32 samples.
func pixelCount(rows, cols uint64) (int, error) {
	if rows != 0 && cols > uint64(math.MaxInt/4)/rows {
		return 0, fmt.Errorf("%w: %d x %d samples overflow", ErrMalformedHeader, rows, cols)
	}
	return int(rows * cols), nil
}

func checkFloatShape(rows, cols int) error {
	if rows > maxFloatDim || cols > maxFloatDim {
		return fmt.Errorf("%w: %dx%d cannot be stored in a float32 size header", ErrShapeMismatch, rows, cols)
	}
	return nil
}
