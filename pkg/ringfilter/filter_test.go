package ringfilter

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"microct/internal/models"
)

func fill(rows, cols int, f func(r, c int) float32) *models.Image {
	img := models.NewImage(rows, cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			img.Set(r, c, f(r, c))
		}
	}
	return img
}

func maxAbsDiff(a, b *models.Image) float64 {
	var d float64
	for i := range a.Pix {
		d = math.Max(d, math.Abs(float64(a.Pix[i]-b.Pix[i])))
	}
	return d
}

func quickParams() Params {
	p := DefaultParams()
	p.Wavelet = "db4"
	return p
}

func TestDefaultParams(t *testing.T) {
	p := DefaultParams()
	assert.Equal(t, 0, p.Levels)
	assert.Equal(t, "sym16", p.Wavelet)
	assert.Equal(t, 2.0, p.Sigma)
	assert.Equal(t, 10, p.Pad)
	assert.True(t, p.ForceNonNegative)
}

func TestMaxLevels(t *testing.T) {
	tests := []struct {
		rows, cols, want int
	}{
		{1, 1, 0},
		{2, 1, 1},
		{16, 16, 4},
		{17, 3, 5},
		{3, 1024, 10},
		{1025, 8, 11},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MaxLevels(tt.rows, tt.cols), "%dx%d", tt.rows, tt.cols)
	}
}

func TestFilterZeros(t *testing.T) {
	in := models.NewImage(32, 40)
	out, err := Filter(in, DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, 32, out.Rows)
	assert.Equal(t, 40, out.Cols)
	for _, v := range out.Pix {
		require.Equal(t, float32(0), v)
	}
}

func TestFilterPreservesShape(t *testing.T) {
	for _, shape := range [][2]int{{16, 16}, {20, 33}, {37, 18}} {
		in := fill(shape[0], shape[1], func(r, c int) float32 {
			return float32(1 + math.Sin(float64(r)/3)*math.Cos(float64(c)/5))
		})
		for _, pad := range []int{0, 5, 10, 25} {
			p := quickParams()
			p.Pad = pad
			out, err := Filter(in, p)
			require.NoError(t, err, "shape %v pad %d", shape, pad)
			assert.Equal(t, in.Rows, out.Rows, "shape %v pad %d", shape, pad)
			assert.Equal(t, in.Cols, out.Cols, "shape %v pad %d", shape, pad)
		}
	}
}

func TestFilterDoesNotModifyInput(t *testing.T) {
	in := fill(24, 24, func(r, c int) float32 { return float32(r*24 + c) })
	orig := in.Clone()
	_, err := Filter(in, quickParams())
	require.NoError(t, err)
	assert.True(t, orig.Equal(in))
}

// Structure that only varies along the angle axis has no vertical-detail
// energy and must pass through untouched.
func TestFilterKeepsAngularStructure(t *testing.T) {
	in := fill(40, 30, func(r, c int) float32 { return float32(-1 + 0.05*float64(r)) })

	p := quickParams()
	p.ForceNonNegative = false
	out, err := Filter(in, p)
	require.NoError(t, err)
	assert.Less(t, maxAbsDiff(in, out), 1e-4)

	p.ForceNonNegative = true
	clamped, err := Filter(in, p)
	require.NoError(t, err)
	for i, v := range clamped.Pix {
		require.GreaterOrEqual(t, v, float32(0))
		if in.Pix[i] > 0.01 {
			assert.InDelta(t, in.Pix[i], v, 1e-4)
		}
	}
}

func TestFilterSuppressesStripe(t *testing.T) {
	const rows, cols, stripe = 64, 64, 20
	in := fill(rows, cols, func(r, c int) float32 {
		v := 2 + math.Sin(2*math.Pi*float64(r)/rows)*math.Cos(math.Pi*float64(c)/cols)
		if c == stripe {
			v++
		}
		return float32(v)
	})

	contrast := func(img *models.Image) float64 {
		mean := func(c int) float64 {
			var s float64
			for r := 0; r < img.Rows; r++ {
				s += float64(img.At(r, c))
			}
			return s / float64(img.Rows)
		}
		return mean(stripe) - (mean(stripe-1)+mean(stripe+1))/2
	}

	before := contrast(in)
	out, err := Filter(in, quickParams())
	require.NoError(t, err)
	after := contrast(out)

	assert.InDelta(t, 1.0, before, 0.05)
	assert.Less(t, math.Abs(after), 0.5*before, "stripe contrast %v -> %v", before, after)
}

func TestFilterLevelsClamped(t *testing.T) {
	in := fill(16, 16, func(r, c int) float32 { return float32((r * c) % 7) })

	auto, err := Filter(in, quickParams())
	require.NoError(t, err)

	p := quickParams()
	p.Levels = 100
	clamped, err := Filter(in, p)
	require.NoError(t, err)
	assert.True(t, auto.Equal(clamped))
}

func TestFilterInvalidParameters(t *testing.T) {
	in := fill(16, 16, func(r, c int) float32 { return 1 })

	tests := map[string]func(*Params){
		"zero sigma":     func(p *Params) { p.Sigma = 0 },
		"negative sigma": func(p *Params) { p.Sigma = -2 },
		"nan sigma":      func(p *Params) { p.Sigma = math.NaN() },
		"negative level": func(p *Params) { p.Levels = -1 },
		"negative pad":   func(p *Params) { p.Pad = -3 },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			p := quickParams()
			mutate(&p)
			_, err := Filter(in, p)
			assert.ErrorIs(t, err, ErrInvalidParameter)
		})
	}

	_, err := Filter(models.NewImage(0, 5), quickParams())
	assert.ErrorIs(t, err, ErrInvalidParameter)
	_, err = Filter(nil, quickParams())
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestFilterUnknownKernel(t *testing.T) {
	p := quickParams()
	p.Wavelet = "coif5"
	_, err := Filter(models.NewImage(8, 8), p)
	assert.ErrorIs(t, err, ErrUnknownKernel)
}

func TestFilterDenseSingleSample(t *testing.T) {
	out, err := FilterDense(mat.NewDense(1, 1, []float64{3}), DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, 3.0, out.At(0, 0))
}

func TestColumnDamper(t *testing.T) {
	band := mat.NewDense(8, 2, nil)
	for r := 0; r < 8; r++ {
		band.Set(r, 0, 4)
		band.Set(r, 1, float64(1-2*(r%2)))
	}
	newColumnDamper(8, 2).apply(band)

	// constant column sits in the zero bin and vanishes; the Nyquist
	// alternation is 4 bins from the centre
	gain := 1 - math.Exp(-16.0/8)
	for r := 0; r < 8; r++ {
		assert.InDelta(t, 0, band.At(r, 0), 1e-12)
		assert.InDelta(t, gain*float64(1-2*(r%2)), band.At(r, 1), 1e-12)
	}
}
