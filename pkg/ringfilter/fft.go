package ringfilter

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/mat"
)

// columnDamper suppresses the low axis-0 frequencies of every column of a
// coefficient band. Vertical stripes in a sinogram are nearly constant down
// a column, so their energy sits around the zero-frequency bin.
type columnDamper struct {
	fft    *fourier.CmplxFFT
	weight []float64 // per unshifted frequency bin
	seq    []complex128
	coeff  []complex128
}

// newColumnDamper prepares a damper for columns of length n. Bins are
// weighted by 1 - exp(-c^2 / (2 sigma^2)), where c is the distance of the
// bin from the centre of the fftshifted spectrum.
func newColumnDamper(n int, sigma float64) *columnDamper {
	d := &columnDamper{
		fft:    fourier.NewCmplxFFT(n),
		weight: make([]float64, n),
		seq:    make([]complex128, n),
		coeff:  make([]complex128, n),
	}
	half := n / 2
	for p := 0; p < n; p++ {
		c := float64(p - half)
		d.weight[d.fft.ShiftIdx(p)] = 1 - math.Exp(-c*c/(2*sigma*sigma))
	}
	return d
}

// apply damps every column of band in place, keeping the real part of the
// inverse transform.
func (d *columnDamper) apply(band *mat.Dense) {
	rows, cols := band.Dims()
	scale := 1 / float64(rows)
	for c := 0; c < cols; c++ {
		for r := 0; r < rows; r++ {
			d.seq[r] = complex(band.At(r, c), 0)
		}
		d.fft.Coefficients(d.coeff, d.seq)
		for k, w := range d.weight {
			d.coeff[k] *= complex(w, 0)
		}
		d.fft.Sequence(d.seq, d.coeff)
		for r := 0; r < rows; r++ {
			band.Set(r, c, real(d.seq[r])*scale)
		}
	}
}
