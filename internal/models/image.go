package models

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Image is a 2-D grid of float32 samples held in row-major order.
// On disk the BIM and BIN formats store the same grid column-major; the
// conversion happens in the formats package, never here.
type Image struct {
	// Rows is the number of rows (image height)
	Rows int

	// Cols is the number of columns (image width)
	Cols int

	// Pix holds Rows*Cols samples, Pix[r*Cols+c]
	Pix []float32
}

// NewImage allocates a zero-filled rows x cols image.
func NewImage(rows, cols int) *Image {
	return &Image{
		Rows: rows,
		Cols: cols,
		Pix:  make([]float32, rows*cols),
	}
}

// NewImageFrom wraps pix as a rows x cols image. The slice is not copied.
func NewImageFrom(rows, cols int, pix []float32) (*Image, error) {
	if rows < 0 || cols < 0 {
		return nil, fmt.Errorf("invalid image shape %dx%d", rows, cols)
	}
	if len(pix) != rows*cols {
		return nil, fmt.Errorf("pixel count %d does not match shape %dx%d", len(pix), rows, cols)
	}
	return &Image{Rows: rows, Cols: cols, Pix: pix}, nil
}

// At returns the sample at row r, column c.
func (im *Image) At(r, c int) float32 {
	return im.Pix[r*im.Cols+c]
}

// Set stores v at row r, column c.
func (im *Image) Set(r, c int, v float32) {
	im.Pix[r*im.Cols+c] = v
}

// Row returns row r. The returned slice aliases the image.
func (im *Image) Row(r int) []float32 {
	return im.Pix[r*im.Cols : (r+1)*im.Cols]
}

// Col returns a copy of column c.
func (im *Image) Col(c int) []float32 {
	out := make([]float32, im.Rows)
	for r := 0; r < im.Rows; r++ {
		out[r] = im.Pix[r*im.Cols+c]
	}
	return out
}

// Shape returns (rows, cols).
func (im *Image) Shape() (int, int) {
	return im.Rows, im.Cols
}

// Transpose returns a new cols x rows image.
func (im *Image) Transpose() *Image {
	out := NewImage(im.Cols, im.Rows)
	for r := 0; r < im.Rows; r++ {
		for c := 0; c < im.Cols; c++ {
			out.Pix[c*im.Rows+r] = im.Pix[r*im.Cols+c]
		}
	}
	return out
}

// Clone returns a deep copy.
func (im *Image) Clone() *Image {
	out := NewImage(im.Rows, im.Cols)
	copy(out.Pix, im.Pix)
	return out
}

// Equal reports whether both images have the same shape and bit-identical
// samples. NaN payloads compare by bits, so a NaN round-trips as equal.
func (im *Image) Equal(other *Image) bool {
	if im == nil || other == nil {
		return im == other
	}
	if im.Rows != other.Rows || im.Cols != other.Cols {
		return false
	}
	for i, v := range im.Pix {
		if math.Float32bits(v) != math.Float32bits(other.Pix[i]) {
			return false
		}
	}
	return true
}

// MinMax returns the smallest and largest finite samples. An image without
// finite samples returns (0, 0).
func (im *Image) MinMax() (lo, hi float32) {
	first := true
	for _, v := range im.Pix {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			continue
		}
		if first {
			lo, hi = v, v
			first = false
			continue
		}
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

// ToDense converts the image to a float64 gonum matrix.
func (im *Image) ToDense() *mat.Dense {
	data := make([]float64, len(im.Pix))
	for i, v := range im.Pix {
		data[i] = float64(v)
	}
	return mat.NewDense(im.Rows, im.Cols, data)
}

// ImageFromDense converts m to an Image, coercing every sample to float32.
func ImageFromDense(m mat.Matrix) *Image {
	rows, cols := m.Dims()
	out := NewImage(rows, cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			out.Pix[r*cols+c] = float32(m.At(r, c))
		}
	}
	return out
}
