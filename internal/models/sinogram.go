package models

import "fmt"

// Sinogram pairs sinogram samples with their scan angles. In the BINSINO
// layout the angle axis runs along the columns, so len(Angles) == Data.Cols.
type Sinogram struct {
	Data   *Image
	Angles []float32
}

// NewSinogram validates that there is exactly one angle per column.
func NewSinogram(data *Image, angles []float32) (*Sinogram, error) {
	if data == nil {
		return nil, fmt.Errorf("sinogram data is nil")
	}
	if len(angles) != data.Cols {
		return nil, fmt.Errorf("got %d angles for %d sinogram columns", len(angles), data.Cols)
	}
	return &Sinogram{Data: data, Angles: angles}, nil
}
