package newton

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/willbeason/zoom-fractal/pkg/complexpoly"
	"github.com/willbeason/zoom-fractal/pkg/transforms"
)

const (
	DefaultMaxIters    = 20
	DefaultShadeFactor = 0.9
	DefaultWidthRe     = 8
)

// DefaultPolynomial is 3x^3 - 1, used when neither a polynomial nor roots are
// given.
var DefaultPolynomial = complexpoly.FromReal(-1, 0, 0, 3)

var (
	ErrNoImage        = errors.New("newton: no image to draw into")
	ErrInvalidOptions = errors.New("newton: invalid options")
)

// Options configures one Newton frame. Zero values take the defaults listed
// with each field.
type Options struct {
	// Polynomial whose root basins are drawn. When nil it is built from
	// Roots, or DefaultPolynomial if Roots is nil as well.
	Polynomial complexpoly.Poly

	// Roots seeds the root set, fixing the palette slot of each listed root.
	Roots []complex128

	// Derivative, Function and Step are normally derived from Polynomial.
	// Passing the values of a previous Context skips rebuilding them.
	Derivative complexpoly.Poly
	Function   func(complex128) complex128
	Step       func(fx, x complex128) complex128

	// MaxIters caps the Newton iteration per pixel. Default 20.
	MaxIters int

	// ShadeFactor darkens a root's color once per iteration. Default 0.9.
	ShadeFactor float64

	// WidthRe is the width of the view along the real axis. Default 8.
	WidthRe float64

	// CentreRe and CentreIm locate the centre of the view. Default 0.
	CentreRe, CentreIm float64

	// ACoefficient multiplies f(x) in the step x - a*f(x)/f'(x). Default 1.
	ACoefficient complex128

	// OnProgress receives the completed fraction after every column.
	OnProgress func(float64)

	// ProfileEnabled wraps the first column in a runtime/trace region.
	ProfileEnabled bool
}

func (o Options) WithDefaults() Options {
	if o.Polynomial == nil {
		if o.Roots != nil {
			o.Polynomial = complexpoly.FromRoots(o.Roots)
		} else {
			o.Polynomial = DefaultPolynomial
		}
	}
	if o.MaxIters == 0 {
		o.MaxIters = DefaultMaxIters
	}
	if o.ShadeFactor == 0 {
		o.ShadeFactor = DefaultShadeFactor
	}
	if o.WidthRe == 0 {
		o.WidthRe = DefaultWidthRe
	}
	if o.ACoefficient == 0 {
		o.ACoefficient = 1
	}
	if o.Derivative == nil {
		o.Derivative = complexpoly.Derivative(o.Polynomial)
	}
	if o.Function == nil {
		o.Function = o.Polynomial.Func()
	}
	if o.Step == nil {
		o.Step = transforms.Newton{
			F:  o.Function,
			DF: o.Derivative.Func(),
			A:  o.ACoefficient,
		}.Step
	}
	return o
}

func (o Options) Validate() error {
	switch {
	case o.Polynomial.Degree() < 1:
		return fmt.Errorf("%w: polynomial %q has no roots to find", ErrInvalidOptions, o.Polynomial)
	case o.MaxIters <= 0:
		return fmt.Errorf("%w: max iterations %d", ErrInvalidOptions, o.MaxIters)
	case !finite(o.ShadeFactor) || o.ShadeFactor <= 0:
		return fmt.Errorf("%w: shade factor %v", ErrInvalidOptions, o.ShadeFactor)
	case !finite(o.WidthRe) || o.WidthRe <= 0:
		return fmt.Errorf("%w: width %v", ErrInvalidOptions, o.WidthRe)
	case !finite(o.CentreRe) || !finite(o.CentreIm):
		return fmt.Errorf("%w: centre (%v, %v)", ErrInvalidOptions, o.CentreRe, o.CentreIm)
	case cmplx.IsNaN(o.ACoefficient) || cmplx.IsInf(o.ACoefficient):
		return fmt.Errorf("%w: a coefficient %v", ErrInvalidOptions, o.ACoefficient)
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
