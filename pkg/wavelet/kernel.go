// Package wavelet provides orthogonal wavelet kernels (Haar, Daubechies and
// symlets) and single-level discrete wavelet transforms with half-sample
// symmetric boundary extension, in one and two dimensions.
//
// A signal of length n filtered with a kernel of length L yields
// (n+L-1)/2 coefficients per band. Two-dimensional transforms run along
// axis 0 first, then axis 1.
package wavelet

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"gonum.org/v1/gonum/floats"
)

var (
	// ErrUnknownKernel is returned when a kernel name is not supported.
	ErrUnknownKernel = errors.New("wavelet: unknown kernel")

	// ErrCoefficientShape is returned when coefficient arrays handed to an
	// inverse transform do not fit together.
	ErrCoefficientShape = errors.New("wavelet: coefficient shape mismatch")
)

const (
	maxDaubechiesOrder = 20
	minSymletOrder     = 2
)

// Kernel holds the four filters of an orthogonal wavelet.
//
// Kernels returned by Lookup are shared; callers must not modify the slices.
type Kernel struct {
	Name  string
	DecLo []float64
	DecHi []float64
	RecLo []float64
	RecHi []float64
}

// Len returns the filter length.
func (k *Kernel) Len() int {
	return len(k.DecLo)
}

var (
	kernelMu    sync.Mutex
	kernelCache = map[string]*Kernel{}
)

// Lookup returns the kernel with the given name, e.g. "haar", "db4" or
// "sym16". Names are case-insensitive.
func Lookup(name string) (*Kernel, error) {
	key := strings.ToLower(strings.TrimSpace(name))

	kernelMu.Lock()
	defer kernelMu.Unlock()
	if k, ok := kernelCache[key]; ok {
		return k, nil
	}

	family, order, err := parseName(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKernel, name)
	}

	var recLo []float64
	switch family {
	case "db":
		recLo, err = daubechies(order)
	case "sym":
		recLo, err = symlet(order)
	}
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", key, err)
	}

	k := fromRecLo(key, recLo)
	kernelCache[key] = k
	return k, nil
}

// Names lists every supported kernel name.
func Names() []string {
	names := []string{"haar"}
	for n := 1; n <= maxDaubechiesOrder; n++ {
		names = append(names, "db"+strconv.Itoa(n))
	}
	for n := minSymletOrder; n <= maxDaubechiesOrder; n++ {
		names = append(names, "sym"+strconv.Itoa(n))
	}
	return names
}

func parseName(key string) (string, int, error) {
	if key == "haar" {
		return "db", 1, nil
	}
	for _, family := range []string{"db", "sym"} {
		rest, ok := strings.CutPrefix(key, family)
		if !ok {
			continue
		}
		order, err := strconv.Atoi(rest)
		if err != nil {
			return "", 0, err
		}
		lo := 1
		if family == "sym" {
			lo = minSymletOrder
		}
		if order < lo || order > maxDaubechiesOrder {
			return "", 0, fmt.Errorf("order %d out of range", order)
		}
		return family, order, nil
	}
	return "", 0, errors.New("unknown family")
}

// fromRecLo derives the remaining quadrature mirror filters from the
// reconstruction low-pass filter.
func fromRecLo(name string, recLo []float64) *Kernel {
	n := len(recLo)
	k := &Kernel{
		Name:  name,
		DecLo: make([]float64, n),
		DecHi: make([]float64, n),
		RecLo: recLo,
		RecHi: make([]float64, n),
	}
	for i := range recLo {
		k.DecLo[i] = recLo[n-1-i]
	}
	for i := range k.DecLo {
		k.RecHi[i] = k.DecLo[i]
		if i%2 == 1 {
			k.RecHi[i] = -k.RecHi[i]
		}
	}
	for i := range k.RecHi {
		k.DecHi[i] = k.RecHi[n-1-i]
	}
	return k
}

// normalize scales h so that its taps sum to sqrt(2).
func normalize(h []float64) []float64 {
	floats.Scale(math.Sqrt2/floats.Sum(h), h)
	return h
}
