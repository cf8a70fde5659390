package wavelet

import "fmt"

// CoeffLen returns the number of coefficients a single-level transform of
// n samples produces with a filter of length filterLen.
func CoeffLen(n, filterLen int) int {
	if n <= 0 {
		return 0
	}
	return (n + filterLen - 1) / 2
}

// RecLen returns the number of samples reconstructed from n coefficients.
func RecLen(n, filterLen int) int {
	return 2*n - filterLen + 2
}

// symIndex maps an index outside [0, n) onto the half-sample symmetric
// extension of a length-n signal: ... x1 x0 | x0 x1 ... xn-1 | xn-1 xn-2 ...
func symIndex(i, n int) int {
	period := 2 * n
	m := i % period
	if m < 0 {
		m += period
	}
	if m < n {
		return m
	}
	return period - 1 - m
}

// DWT performs a single-level decomposition of x into approximation and
// detail coefficients.
func DWT(x []float64, k *Kernel) (cA, cD []float64) {
	n := len(x)
	out := CoeffLen(n, k.Len())
	cA = make([]float64, out)
	cD = make([]float64, out)
	for i := 0; i < out; i++ {
		base := 2*i + 1
		var a, d float64
		for j := range k.DecLo {
			v := x[symIndex(base-j, n)]
			a += k.DecLo[j] * v
			d += k.DecHi[j] * v
		}
		cA[i], cD[i] = a, d
	}
	return cA, cD
}

// IDWT reconstructs a signal from one level of coefficients. For an input
// of odd length the result carries one extra trailing sample.
func IDWT(cA, cD []float64, k *Kernel) ([]float64, error) {
	if len(cA) != len(cD) {
		return nil, fmt.Errorf("%w: %d approximation vs %d detail coefficients",
			ErrCoefficientShape, len(cA), len(cD))
	}
	flen := k.Len()
	n := RecLen(len(cA), flen)
	if n <= 0 {
		return nil, fmt.Errorf("%w: %d coefficients are too few for a %d-tap filter",
			ErrCoefficientShape, len(cA), flen)
	}

	y := make([]float64, n)
	for i := range y {
		var s float64
		// u[t] is the zero-upsampled coefficient stream; only even t are set.
		for j := 0; j < flen; j++ {
			t := i + flen - 2 - j
			if t < 0 || t%2 != 0 {
				continue
			}
			m := t / 2
			if m >= len(cA) {
				continue
			}
			s += k.RecLo[j]*cA[m] + k.RecHi[j]*cD[m]
		}
		y[i] = s
	}
	return y, nil
}
