package wavelet

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func testSignal(n int) []float64 {
	x := make([]float64, n)
	for i := range x {
		x[i] = math.Sin(float64(i)*0.7) + float64(i%5) - 0.3*float64(i)
	}
	return x
}

func TestDWTHaarValues(t *testing.T) {
	k, _ := Lookup("haar")
	cA, cD := DWT([]float64{1, 2, 3, 4}, k)
	a := 1 / math.Sqrt2
	if !closeSlices(cA, []float64{3 * a, 7 * a}, 1e-12) {
		t.Errorf("cA = %v", cA)
	}
	if !closeSlices(cD, []float64{-a, -a}, 1e-12) {
		t.Errorf("cD = %v", cD)
	}

	// odd length: the last sample is mirrored into the final pair
	cA, cD = DWT([]float64{1, 2, 3}, k)
	if !closeSlices(cA, []float64{3 * a, 6 * a}, 1e-12) || !closeSlices(cD, []float64{-a, 0}, 1e-12) {
		t.Errorf("odd-length haar gave cA=%v cD=%v", cA, cD)
	}
}

func TestCoefficientLengths(t *testing.T) {
	tests := []struct {
		n, flen, want int
	}{
		{4, 2, 2},
		{5, 2, 3},
		{8, 4, 5},
		{9, 32, 20},
		{1, 32, 16},
		{0, 4, 0},
	}
	for _, tt := range tests {
		if got := CoeffLen(tt.n, tt.flen); got != tt.want {
			t.Errorf("CoeffLen(%d, %d) = %d, want %d", tt.n, tt.flen, got, tt.want)
		}
	}
}

func TestPerfectReconstruction1D(t *testing.T) {
	for _, name := range []string{"haar", "db2", "db4", "sym4", "sym8", "sym16"} {
		k, err := Lookup(name)
		if err != nil {
			t.Fatalf("Lookup(%s) failed: %v", name, err)
		}
		for _, n := range []int{1, 2, 7, 16, 33, 64} {
			x := testSignal(n)
			cA, cD := DWT(x, k)
			y, err := IDWT(cA, cD, k)
			if err != nil {
				t.Fatalf("%s n=%d: IDWT failed: %v", name, n, err)
			}
			wantLen := n + n%2
			if len(y) != wantLen {
				t.Fatalf("%s n=%d: reconstructed %d samples, want %d", name, n, len(y), wantLen)
			}
			if !closeSlices(y[:n], x, 1e-8) {
				t.Errorf("%s n=%d: reconstruction error too large", name, n)
			}
		}
	}
}

func TestIDWTShapeErrors(t *testing.T) {
	k, _ := Lookup("db4")
	if _, err := IDWT([]float64{1, 2}, []float64{1}, k); !errors.Is(err, ErrCoefficientShape) {
		t.Errorf("mismatched lengths: err = %v", err)
	}
	if _, err := IDWT([]float64{1, 2}, []float64{1, 2}, k); !errors.Is(err, ErrCoefficientShape) {
		t.Errorf("too few coefficients: err = %v", err)
	}
}

func TestDWT2Shapes(t *testing.T) {
	k, _ := Lookup("db2")
	x := mat.NewDense(9, 12, nil)
	cA, d := DWT2(x, k)
	for name, m := range map[string]*mat.Dense{"cA": cA, "H": d.H, "V": d.V, "D": d.D} {
		if r, c := m.Dims(); r != 6 || c != 7 {
			t.Errorf("%s is %dx%d, want 6x7", name, r, c)
		}
	}
}

func TestDWT2VerticalStripes(t *testing.T) {
	// Columns that are constant down axis 0 carry no energy in H or D.
	k, _ := Lookup("db2")
	x := mat.NewDense(16, 16, nil)
	for r := 0; r < 16; r++ {
		for c := 0; c < 16; c++ {
			if c%4 == 1 {
				x.Set(r, c, 5)
			}
		}
	}
	_, d := DWT2(x, k)
	if n := mat.Norm(d.V, 2); n < 1 {
		t.Errorf("V norm = %v, expected stripe energy", n)
	}
	if n := mat.Norm(d.H, 2); n > 1e-9 {
		t.Errorf("H norm = %v, want 0", n)
	}
	if n := mat.Norm(d.D, 2); n > 1e-9 {
		t.Errorf("D norm = %v, want 0", n)
	}
}

func TestPerfectReconstruction2D(t *testing.T) {
	for _, name := range []string{"haar", "db3", "sym8"} {
		k, _ := Lookup(name)
		for _, shape := range [][2]int{{8, 8}, {11, 6}, {5, 17}} {
			rows, cols := shape[0], shape[1]
			x := mat.NewDense(rows, cols, nil)
			for r := 0; r < rows; r++ {
				for c := 0; c < cols; c++ {
					x.Set(r, c, math.Cos(float64(r*cols+c)*0.3)+float64(c))
				}
			}

			cA, d := DWT2(x, k)
			y, err := IDWT2(cA, d, k)
			if err != nil {
				t.Fatalf("%s %v: IDWT2 failed: %v", name, shape, err)
			}
			yr, yc := y.Dims()
			if yr != rows+rows%2 || yc != cols+cols%2 {
				t.Fatalf("%s %v: reconstructed %dx%d", name, shape, yr, yc)
			}
			diff := mat.NewDense(rows, cols, nil)
			diff.Sub(y.Slice(0, rows, 0, cols), x)
			if n := mat.Norm(diff, math.Inf(1)); n > 1e-8 {
				t.Errorf("%s %v: reconstruction error %e", name, shape, n)
			}
		}
	}
}

func TestIDWT2Mismatch(t *testing.T) {
	k, _ := Lookup("haar")
	cA, d := DWT2(mat.NewDense(8, 8, nil), k)
	d.V = mat.NewDense(3, 4, nil)
	if _, err := IDWT2(cA, d, k); !errors.Is(err, ErrCoefficientShape) {
		t.Errorf("err = %v, want ErrCoefficientShape", err)
	}
	d.V = nil
	if _, err := IDWT2(cA, d, k); !errors.Is(err, ErrCoefficientShape) {
		t.Errorf("err = %v, want ErrCoefficientShape", err)
	}
}
