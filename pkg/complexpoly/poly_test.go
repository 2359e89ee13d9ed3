package complexpoly

import (
	"math/cmplx"
	"testing"
)

const epsilon = 1e-9

func polyEqual(t *testing.T, got, want Poly) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %v (len %d), want %v (len %d)", got, len(got), want, len(want))
	}
	for i := range want {
		if cmplx.Abs(got[i]-want[i]) > epsilon {
			t.Errorf("coefficient %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestEval(t *testing.T) {
	tests := []struct {
		name string
		p    Poly
		x    complex128
		want complex128
	}{
		{"constant ignores x", FromReal(7), 123, 7},
		{"constant at zero", FromReal(-1, 0, 0, 3), 0, -1},
		{"cubic", FromReal(-1, 0, 0, 1), 2, 7},
		{"imaginary unit", FromReal(1, 0, 1), 1i, 0},
		{"empty", Poly{}, 3, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Eval(tt.p, tt.x); cmplx.Abs(got-tt.want) > epsilon {
				t.Errorf("Eval(%v, %v) = %v, want %v", tt.p, tt.x, got, tt.want)
			}
		})
	}
}

func TestAdd(t *testing.T) {
	// (3x^2 + 2x + 5) + (2x^2 + x - 2)
	polyEqual(t, Add(FromReal(5, 2, 3), FromReal(-2, 1, 2)), FromReal(3, 3, 5))
	polyEqual(t, Add(FromReal(1), FromReal(1, 2, 3)), FromReal(2, 2, 3))
	polyEqual(t, Add(FromReal(1, 2, 3), FromReal(1)), FromReal(2, 2, 3))
	polyEqual(t, Add(nil, FromReal(4, 5)), FromReal(4, 5))
}

func TestMultiply(t *testing.T) {
	// (3x^2 + 2x + 5)(2x^2 + x - 2)
	polyEqual(t, Multiply(FromReal(5, 2, 3), FromReal(-2, 1, 2)), FromReal(-10, 1, 6, 7, 6))
	polyEqual(t, Multiply(Poly{1i}, Poly{1i, 1}), Poly{-1, 1i})
}

func TestFromRoots(t *testing.T) {
	polyEqual(t, FromRoots(nil), FromReal(1))
	polyEqual(t, FromRoots([]complex128{1, -1}), FromReal(-1, 0, 1))
	polyEqual(t, FromRoots([]complex128{1i, -1i}), FromReal(1, 0, 1))
}

func TestMultiplyByRootFactorVanishesAtRoot(t *testing.T) {
	others := []Poly{
		FromReal(5, 2, 3),
		{1 + 2i, -3i, 0, 4},
		FromReal(-1, 0, 0, 0, 0, 1),
	}
	roots := []complex128{0, 1, -0.5 + 0.866i, 3 - 4i, 1e-3i}

	for _, p := range others {
		for _, r := range roots {
			prod := Multiply(p, FromRoots([]complex128{r}))
			if v := Eval(prod, r); cmplx.Abs(v) > 1e-9 {
				t.Errorf("(%v)(x - %v) at %v = %v, want 0", p, r, r, v)
			}
		}
	}
}

func TestDerivative(t *testing.T) {
	polyEqual(t, Derivative(FromReal(-1, 0, 0, 3)), FromReal(0, 0, 9))
	polyEqual(t, Derivative(FromReal(5)), Poly{})
	polyEqual(t, Derivative(Poly{}), Poly{})

	for _, r := range []complex128{0, 2, -1i, 0.3 + 0.4i} {
		d := Derivative(FromRoots([]complex128{r}))
		if v := Eval(d, r); cmplx.Abs(v) == 0 {
			t.Errorf("derivative of (x - %v) vanishes at its root", r)
		}
	}
}

func TestFunc_CopiesCoefficients(t *testing.T) {
	p := FromReal(-1, 0, 0, 1)
	f := p.Func()
	p[0] = 100

	if got := f(1); cmplx.Abs(got) > epsilon {
		t.Errorf("f(1) = %v after mutating source, want 0", got)
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		p    Poly
		want string
	}{
		{FromReal(-1, 0, 0, 3), "-1 + 3*x^3"},
		{FromReal(0, 1, 1), "x + x^2"},
		{FromReal(2, 2.5), "2 + 2.5*x"},
		{Poly{1i}, "(0+1i)"},
		{FromReal(0, 0), ""},
	}
	for _, tt := range tests {
		if got := tt.p.String(); got != tt.want {
			t.Errorf("%#v.String() = %q, want %q", tt.p, got, tt.want)
		}
	}
}
