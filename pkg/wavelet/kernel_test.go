package wavelet

import (
	"errors"
	"math"
	"testing"
)

func closeSlices(a, b []float64, tol float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if math.Abs(a[i]-b[i]) > tol {
			return false
		}
	}
	return true
}

func reversed(a []float64) []float64 {
	out := make([]float64, len(a))
	for i, v := range a {
		out[len(a)-1-i] = v
	}
	return out
}

func TestHaar(t *testing.T) {
	k, err := Lookup("haar")
	if err != nil {
		t.Fatalf("Lookup(haar) failed: %v", err)
	}
	a := 1 / math.Sqrt2
	want := map[string][2][]float64{
		"DecLo": {k.DecLo, {a, a}},
		"DecHi": {k.DecHi, {-a, a}},
		"RecLo": {k.RecLo, {a, a}},
		"RecHi": {k.RecHi, {a, -a}},
	}
	for name, pair := range want {
		if !closeSlices(pair[0], pair[1], 1e-12) {
			t.Errorf("%s = %v, want %v", name, pair[0], pair[1])
		}
	}

	db1, _ := Lookup("db1")
	if !closeSlices(db1.RecLo, k.RecLo, 1e-12) {
		t.Errorf("db1 differs from haar: %v", db1.RecLo)
	}
}

func TestDaubechiesCoefficients(t *testing.T) {
	s3 := math.Sqrt(3)
	tests := []struct {
		name  string
		recLo []float64
	}{
		{"db2", []float64{
			(1 + s3) / (4 * math.Sqrt2),
			(3 + s3) / (4 * math.Sqrt2),
			(3 - s3) / (4 * math.Sqrt2),
			(1 - s3) / (4 * math.Sqrt2),
		}},
		{"db3", []float64{
			0.3326705529509569, 0.8068915093133388, 0.4598775021193313,
			-0.13501102001039084, -0.08544127388224149, 0.035226291882100656,
		}},
		{"sym2", []float64{
			(1 + s3) / (4 * math.Sqrt2),
			(3 + s3) / (4 * math.Sqrt2),
			(3 - s3) / (4 * math.Sqrt2),
			(1 - s3) / (4 * math.Sqrt2),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k, err := Lookup(tt.name)
			if err != nil {
				t.Fatalf("Lookup failed: %v", err)
			}
			if !closeSlices(k.RecLo, tt.recLo, 1e-10) {
				t.Errorf("RecLo = %v, want %v", k.RecLo, tt.recLo)
			}
			if !closeSlices(k.DecLo, reversed(tt.recLo), 1e-10) {
				t.Errorf("DecLo is not the reversed RecLo: %v", k.DecLo)
			}
		})
	}
}

func TestSymletCoefficients(t *testing.T) {
	tests := []struct {
		name  string
		decLo []float64
		tol   float64
	}{
		{"sym4", []float64{
			-0.07576571478927333, -0.02963552764599851, 0.49761866763201545, 0.8037387518059161,
			0.29785779560527736, -0.09921954357684722, -0.012603967262037833, 0.0322231006040427,
		}, 1e-8},
		{"sym8", []float64{
			-0.0033824159510061256, -0.0005421323317911481, 0.03169508781149298, 0.007607487324917605,
			-0.1432942383508097, -0.061273359067658524, 0.4813596512583722, 0.7771857517005235,
			0.3644418948353314, -0.05194583810770904, -0.027219029917056003, 0.049137179673607506,
			0.003808752013890615, -0.01495225833704823, -0.0003029205147213668, 0.0018899503327594609,
		}, 1e-8},
		{"sym16", []float64{
			-1.0797982104330844e-05, -5.396483179313459e-06, 0.00016545679579123922, 3.65659248333042e-05,
			-0.0013387206066936502, -0.0002221164762102864, 0.006937761130811372, 0.0013598447424797494,
			-0.024952758046313084, -0.003510275068343843, 0.07803785290356646, 0.030721139063258233,
			-0.15959219218531603, -0.05404060138756915, 0.47534280601251955, 0.756524987876194,
			0.3971229336205652, -0.03457422841781206, -0.0669830490705633, 0.032333091610566043,
			0.004869274404813523, -0.031051202843638635, -0.0031265171722760464, 0.012666731659877703,
			0.0007182119788253323, -0.0038809122526122426, -0.00010844562230764396, 0.0008523547108065444,
			2.807858212820804e-05, -0.0001094314792955829, -3.113556407613885e-06, 6.230006701237625e-06,
		}, 1e-7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k, err := Lookup(tt.name)
			if err != nil {
				t.Fatalf("Lookup(%s) failed: %v", tt.name, err)
			}
			if !closeSlices(k.DecLo, tt.decLo, tt.tol) {
				if closeSlices(k.DecLo, reversed(tt.decLo), tt.tol) {
					t.Fatalf("%s DecLo is time-reversed", tt.name)
				}
				t.Errorf("%s DecLo = %v", tt.name, k.DecLo)
			}
		})
	}

	sym4, _ := Lookup("sym4")
	db4, _ := Lookup("db4")
	if closeSlices(sym4.DecLo, db4.DecLo, 1e-6) {
		t.Error("sym4 should differ from db4")
	}
}

// TestOrthonormality checks the defining properties of every supported
// kernel: unit energy, orthogonality under even shifts and a low-pass sum
// of sqrt(2).
func TestOrthonormality(t *testing.T) {
	for _, name := range Names() {
		k, err := Lookup(name)
		if err != nil {
			t.Fatalf("Lookup(%s) failed: %v", name, err)
		}
		h := k.RecLo

		var sum float64
		for _, v := range h {
			sum += v
		}
		if math.Abs(sum-math.Sqrt2) > 1e-9 {
			t.Errorf("%s: sum = %v, want sqrt(2)", name, sum)
		}

		for shift := 0; shift < len(h); shift += 2 {
			var dot float64
			for i := 0; i+shift < len(h); i++ {
				dot += h[i] * h[i+shift]
			}
			want := 0.0
			if shift == 0 {
				want = 1
			}
			if math.Abs(dot-want) > 1e-6 {
				t.Errorf("%s: shift %d autocorrelation = %v, want %v", name, shift, dot, want)
			}
		}

		var cross float64
		for i := range k.DecLo {
			cross += k.DecLo[i] * k.DecHi[i]
		}
		if math.Abs(cross) > 1e-9 {
			t.Errorf("%s: low/high cross product = %v", name, cross)
		}
	}
}

func TestLookupNames(t *testing.T) {
	names := Names()
	if len(names) != 1+20+19 {
		t.Fatalf("Names() returned %d kernels", len(names))
	}
	for _, n := range []string{"haar", "db1", "db20", "sym2", "sym16", "sym20"} {
		found := false
		for _, m := range names {
			found = found || m == n
		}
		if !found {
			t.Errorf("%s missing from Names()", n)
		}
	}

	k, err := Lookup("  SYM16 ")
	if err != nil {
		t.Fatalf("Lookup(SYM16) failed: %v", err)
	}
	if k.Len() != 32 {
		t.Errorf("sym16 has %d taps, want 32", k.Len())
	}
	again, _ := Lookup("sym16")
	if again != k {
		t.Error("second lookup did not hit the cache")
	}
}

func TestLookupUnknown(t *testing.T) {
	for _, name := range []string{"", "coif3", "db0", "db21", "sym1", "sym", "dbx", "bior2.2"} {
		if _, err := Lookup(name); !errors.Is(err, ErrUnknownKernel) {
			t.Errorf("Lookup(%q) error = %v, want ErrUnknownKernel", name, err)
		}
	}
}
