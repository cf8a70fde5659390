package wavelet

import (
	"errors"
	"math"
	"math/cmplx"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Phase linearity of symlet candidates is measured on (0, phaseBand*pi].
// Near pi the response has a zero of order N and its phase is noise.
const (
	phaseSamples = 64
	phaseBand    = 0.6
)

// rootGroup is one factor choice of the spectral factorisation: a real root
// of the Daubechies polynomial, or a complex conjugate pair of them. Either
// the roots inside or those outside the unit circle go into the filter.
type rootGroup struct {
	y       complex128
	inside  []complex128
	outside []complex128
}

// daubechies returns the reconstruction low-pass filter of the order-n
// Daubechies wavelet, built by minimum-phase spectral factorisation.
func daubechies(n int) ([]float64, error) {
	groups, err := factorGroups(n)
	if err != nil {
		return nil, err
	}
	var zs []complex128
	for _, g := range groups {
		zs = append(zs, g.inside...)
	}
	return buildFilter(n, zs), nil
}

// symletChoices fixes the factorisation of the symlets whose coefficients
// are tabulated by the common wavelet toolkits, where the phase criterion
// alone lands on a neighbouring root set. Bit i set takes the roots of group
// i+1 from outside the unit circle; group 0 always stays inside.
var symletChoices = map[int]int{
	4:  0b1,
	8:  0b101,
	16: 0b1010011,
}

// symlet returns the reconstruction low-pass filter of the order-n symlet:
// among all factorisations it keeps the one whose phase response deviates
// least from a straight line, unless symletChoices names one.
func symlet(n int) ([]float64, error) {
	groups, err := factorGroups(n)
	if err != nil {
		return nil, err
	}
	if len(groups) < 2 {
		return daubechies(n)
	}
	if mask, ok := symletChoices[n]; ok {
		return buildFilter(n, chooseRoots(groups, mask)), nil
	}

	// Flipping every choice only time-reverses the filter, so the first
	// group stays inside.
	var (
		best      []float64
		bestScore = math.Inf(1)
	)
	free := len(groups) - 1
	for mask := 0; mask < 1<<free; mask++ {
		h := buildFilter(n, chooseRoots(groups, mask))
		if score := phaseNonlinearity(h); score < bestScore {
			best, bestScore = h, score
		}
	}
	return best, nil
}

func chooseRoots(groups []rootGroup, mask int) []complex128 {
	zs := append([]complex128(nil), groups[0].inside...)
	for i, g := range groups[1:] {
		if mask&(1<<i) != 0 {
			zs = append(zs, g.outside...)
		} else {
			zs = append(zs, g.inside...)
		}
	}
	return zs
}

// factorGroups finds the roots of the Daubechies polynomial
// P(y) = sum_{k<n} C(n-1+k, k) y^k and maps each to its pair of roots
// z, 1/z of z^2 - (2-4y)z + 1.
func factorGroups(n int) ([]rootGroup, error) {
	ys, err := polyRoots(daubechiesPolynomial(n))
	if err != nil {
		return nil, err
	}

	var groups []rootGroup
	for _, y := range ys {
		tol := 1e-9 * (1 + cmplx.Abs(y))
		switch {
		case math.Abs(imag(y)) <= tol:
			y = complex(real(y), 0)
			in, out := unitCircleRoots(y)
			groups = append(groups, rootGroup{y: y, inside: []complex128{in}, outside: []complex128{out}})
		case imag(y) > 0:
			in, out := unitCircleRoots(y)
			groups = append(groups, rootGroup{
				y:       y,
				inside:  []complex128{in, cmplx.Conj(in)},
				outside: []complex128{out, cmplx.Conj(out)},
			})
		}
	}
	sort.Slice(groups, func(i, j int) bool {
		if real(groups[i].y) != real(groups[j].y) {
			return real(groups[i].y) < real(groups[j].y)
		}
		return imag(groups[i].y) < imag(groups[j].y)
	})
	return groups, nil
}

func daubechiesPolynomial(n int) []float64 {
	p := make([]float64, n)
	c := 1.0
	for k := 0; k < n; k++ {
		if k > 0 {
			c = c * float64(n-1+k) / float64(k)
		}
		p[k] = c
	}
	return p
}

// polyRoots returns the roots of the polynomial with ascending coefficients
// p as the eigenvalues of its companion matrix.
func polyRoots(p []float64) ([]complex128, error) {
	deg := len(p) - 1
	if deg < 1 {
		return nil, nil
	}
	lead := p[deg]
	comp := mat.NewDense(deg, deg, nil)
	for j := 0; j < deg; j++ {
		comp.Set(0, j, -p[deg-1-j]/lead)
	}
	for i := 1; i < deg; i++ {
		comp.Set(i, i-1, 1)
	}

	var eig mat.Eigen
	if ok := eig.Factorize(comp, mat.EigenNone); !ok {
		return nil, errors.New("companion matrix eigendecomposition did not converge")
	}
	return eig.Values(nil), nil
}

func unitCircleRoots(y complex128) (inside, outside complex128) {
	b := 2 - 4*y
	disc := cmplx.Sqrt(b*b - 4)
	z1, z2 := (b+disc)/2, (b-disc)/2
	if cmplx.Abs(z1) < cmplx.Abs(z2) {
		return z1, z2
	}
	return z2, z1
}

// buildFilter expands (z+1)^n * prod(z - zs) and returns its coefficients in
// descending powers, normalised to sum to sqrt(2).
func buildFilter(n int, zs []complex128) []float64 {
	poly := []complex128{1}
	for i := 0; i < n; i++ {
		poly = mulLinear(poly, -1)
	}
	for _, z := range zs {
		poly = mulLinear(poly, z)
	}
	h := make([]float64, len(poly))
	for i, c := range poly {
		h[i] = real(c)
	}
	return normalize(h)
}

// mulLinear multiplies the descending-power polynomial p by (z - root).
func mulLinear(p []complex128, root complex128) []complex128 {
	out := make([]complex128, len(p)+1)
	for i, c := range p {
		out[i] += c
		out[i+1] -= c * root
	}
	return out
}

// phaseNonlinearity is the residual sum of squares of a straight-line fit
// to the unwrapped phase response of h.
func phaseNonlinearity(h []float64) float64 {
	omega := make([]float64, phaseSamples)
	phase := make([]float64, phaseSamples)
	for j := range omega {
		w := phaseBand * math.Pi * float64(j+1) / phaseSamples
		var resp complex128
		for k, v := range h {
			resp += complex(v, 0) * cmplx.Rect(1, -w*float64(k))
		}
		omega[j] = w
		phase[j] = cmplx.Phase(resp)
	}
	unwrap(phase)

	alpha, beta := stat.LinearRegression(omega, phase, nil, false)
	var rss float64
	for j, w := range omega {
		d := phase[j] - alpha - beta*w
		rss += d * d
	}
	return rss
}

func unwrap(phase []float64) {
	for i := 1; i < len(phase); i++ {
		d := phase[i] - phase[i-1]
		for d > math.Pi {
			phase[i] -= 2 * math.Pi
			d -= 2 * math.Pi
		}
		for d < -math.Pi {
			phase[i] += 2 * math.Pi
			d += 2 * math.Pi
		}
	}
}
