package newton

import (
	"math"
	"math/cmplx"
)

// Epsilon is both the convergence threshold on |f(x)| and the per-component
// tolerance for treating two roots as the same.
const Epsilon = 1e-5

var logEpsilon = math.Log(Epsilon)

// FindRoot iterates step from x0 until |f(x)| < Epsilon or maxIters steps
// have been taken.
//
// iters is the number of steps plus a fractional correction interpolated
// between the last two |f| values on a log scale, which smooths the color
// bands. The correction can be negative or exceed one. found is false when
// the iteration did not converge.
func FindRoot(
	x0 complex128,
	f func(complex128) complex128,
	step func(fx, x complex128) complex128,
	maxIters int,
) (root complex128, found bool, iters float64) {
	x := x0
	prevAbs := -1.0
	for n := 0; n < maxIters; n++ {
		fx := f(x)
		abs := cmplx.Abs(fx)
		if abs < Epsilon {
			extra := 0.0
			if prevAbs >= 0 {
				logPrev := math.Log(prevAbs)
				extra = (logEpsilon - logPrev) / (math.Log(abs) - logPrev)
			}
			return x, true, float64(n) + extra
		}

		x = step(fx, x)
		prevAbs = abs
	}
	return 0, false, float64(maxIters)
}

// AlmostEqual compares real and imaginary parts independently against
// Epsilon.
func AlmostEqual(a, b complex128) bool {
	return math.Abs(real(a)-real(b)) < Epsilon && math.Abs(imag(a)-imag(b)) < Epsilon
}
