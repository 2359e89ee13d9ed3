// Package mandelbrot renders the Mandelbrot set with smooth escape-time
// coloring, optionally equalized through an escape-count histogram.
package mandelbrot

import (
	"math"

	"github.com/willbeason/zoom-fractal/pkg/transforms"
)

var log2 = math.Log(2)

// InCardioidOrBulb reports whether (x0, y0) lies in the main cardioid or the
// period-2 bulb. Both regions are inside the set, so iteration can be skipped.
func InCardioidOrBulb(x0, y0 float64) bool {
	dx := x0 - 0.25
	q := dx*dx + y0*y0
	if q*(q+dx) < y0*y0/4 {
		return true
	}
	return (x0+1)*(x0+1)+y0*y0 < 1.0/16.0
}

// Escape iterates z -> z^2 + c from zero until |z| >= 2 or maxIters steps.
//
// iters is the integer step count, maxIters for points considered inside.
// smooth refines an escaped count with the potential function so that colors
// vary continuously; for interior points it equals maxIters.
func Escape(c complex128, maxIters int) (iters int, smooth float64) {
	x0, y0 := real(c), imag(c)
	if InCardioidOrBulb(x0, y0) {
		return maxIters, float64(maxIters)
	}

	m := transforms.Mandelbrot{C: c}
	x, y := 0.0, 0.0
	for x*x+y*y < 4 && iters < maxIters {
		x, y = m.NextParts(x, y)
		iters++
	}

	if iters >= maxIters {
		return iters, float64(iters)
	}

	// log|z| = log(x^2+y^2)/2. Dividing by log 2 rather than the log of the
	// bailout radius keeps the palette spanning the centre to radius 2.
	logZn := math.Log(x*x+y*y) / 2
	nu := math.Log(logZn/log2) / log2
	return iters, float64(iters) + 1 - nu
}
