package transforms

// Mandelbrot is the quadratic map z -> z^2 + C. Iterated from zero it decides
// membership of C in the Mandelbrot set.
type Mandelbrot struct {
	C complex128
}

func (m Mandelbrot) Next(z complex128) complex128 {
	return z*z + m.C
}

// NextParts is Next on split components, avoiding the complex128 round trip
// in the per-pixel loop.
func (m Mandelbrot) NextParts(x, y float64) (float64, float64) {
	return x*x - y*y + real(m.C), 2*x*y + imag(m.C)
}

var _ Transform = Mandelbrot{}
