package wavelet

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Details holds the detail sub-bands of one 2-D decomposition level.
// H is high-pass along axis 0 (rows) and low-pass along axis 1, V the
// opposite, D high-pass along both. Vertical stripes end up in V.
type Details struct {
	H, V, D *mat.Dense
}

// DWT2 performs a single-level 2-D decomposition of x, transforming along
// axis 0 first and then along axis 1. x must not be empty.
func DWT2(x mat.Matrix, k *Kernel) (*mat.Dense, Details) {
	rows, cols := x.Dims()
	outRows := CoeffLen(rows, k.Len())

	lo := mat.NewDense(outRows, cols, nil)
	hi := mat.NewDense(outRows, cols, nil)
	col := make([]float64, rows)
	for c := 0; c < cols; c++ {
		mat.Col(col, c, x)
		a, d := DWT(col, k)
		lo.SetCol(c, a)
		hi.SetCol(c, d)
	}

	cA, cV := transformRows(lo, k)
	cH, cD := transformRows(hi, k)
	return cA, Details{H: cH, V: cV, D: cD}
}

func transformRows(m *mat.Dense, k *Kernel) (lo, hi *mat.Dense) {
	rows, cols := m.Dims()
	outCols := CoeffLen(cols, k.Len())
	lo = mat.NewDense(rows, outCols, nil)
	hi = mat.NewDense(rows, outCols, nil)
	for r := 0; r < rows; r++ {
		a, d := DWT(m.RawRowView(r), k)
		lo.SetRow(r, a)
		hi.SetRow(r, d)
	}
	return lo, hi
}

// IDWT2 inverts one level of DWT2. All four sub-bands must share a shape.
func IDWT2(cA *mat.Dense, d Details, k *Kernel) (*mat.Dense, error) {
	if d.H == nil || d.V == nil || d.D == nil {
		return nil, fmt.Errorf("%w: missing detail sub-band", ErrCoefficientShape)
	}
	r, c := cA.Dims()
	for _, band := range []*mat.Dense{d.H, d.V, d.D} {
		if br, bc := band.Dims(); br != r || bc != c {
			return nil, fmt.Errorf("%w: approximation %dx%d, detail %dx%d",
				ErrCoefficientShape, r, c, br, bc)
		}
	}

	lo, err := inverseRows(cA, d.V, k)
	if err != nil {
		return nil, err
	}
	hi, err := inverseRows(d.H, d.D, k)
	if err != nil {
		return nil, err
	}

	rows := RecLen(r, k.Len())
	if rows <= 0 {
		return nil, fmt.Errorf("%w: %d rows are too few for a %d-tap filter", ErrCoefficientShape, r, k.Len())
	}
	_, cols := lo.Dims()
	out := mat.NewDense(rows, cols, nil)
	a := make([]float64, r)
	h := make([]float64, r)
	for j := 0; j < cols; j++ {
		mat.Col(a, j, lo)
		mat.Col(h, j, hi)
		y, err := IDWT(a, h, k)
		if err != nil {
			return nil, err
		}
		out.SetCol(j, y)
	}
	return out, nil
}

func inverseRows(a, d *mat.Dense, k *Kernel) (*mat.Dense, error) {
	rows, cols := a.Dims()
	n := RecLen(cols, k.Len())
	if n <= 0 {
		return nil, fmt.Errorf("%w: %d columns are too few for a %d-tap filter", ErrCoefficientShape, cols, k.Len())
	}
	out := mat.NewDense(rows, n, nil)
	for r := 0; r < rows; r++ {
		y, err := IDWT(a.RawRowView(r), d.RawRowView(r), k)
		if err != nil {
			return nil, err
		}
		out.SetRow(r, y)
	}
	return out, nil
}
