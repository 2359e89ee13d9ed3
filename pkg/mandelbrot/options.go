package mandelbrot

import (
	"errors"
	"fmt"
	"math"
)

const (
	DefaultWidthRe  = 3.5
	DefaultMaxIters = 100

	// ChunkColumns is how many columns are computed per loop turn.
	ChunkColumns = 40

	// ProgressEvery is the column interval between progress reports.
	ProgressEvery = 10
)

var (
	ErrNoImage        = errors.New("mandelbrot: no image to draw into")
	ErrInvalidOptions = errors.New("mandelbrot: invalid options")
)

// Coloring selects how non-histogram frames map escape counts to colors.
type Coloring int

const (
	// ColorHue fades the hue linearly with the smoothed escape count.
	ColorHue Coloring = iota
	// ColorBlue is a blue ramp on the smoothed escape count.
	ColorBlue
)

// Options configures one Mandelbrot frame. Zero values take the defaults
// listed with each field.
type Options struct {
	// ReCentre and ImCentre locate the centre of the view. Default 0.
	ReCentre, ImCentre float64

	// WidthRe is the width of the view along the real axis. The imaginary
	// extent follows the image aspect ratio. Default 3.5.
	WidthRe float64

	// MaxIters caps the escape iteration. Default 100.
	MaxIters int

	// UseHistogram enables two-pass histogram-equalized coloring.
	UseHistogram bool

	// Coloring is ignored when UseHistogram is set.
	Coloring Coloring

	// OnProgress receives the completed fraction of the frame. It is called
	// on the loop goroutine and must return promptly.
	OnProgress func(float64)

	// ProfileEnabled wraps the frame in a runtime/trace task.
	ProfileEnabled bool
}

func (o Options) WithDefaults() Options {
	if o.WidthRe == 0 {
		o.WidthRe = DefaultWidthRe
	}
	if o.MaxIters == 0 {
		o.MaxIters = DefaultMaxIters
	}
	return o
}

func (o Options) Validate() error {
	switch {
	case !finite(o.ReCentre) || !finite(o.ImCentre):
		return fmt.Errorf("%w: centre (%v, %v)", ErrInvalidOptions, o.ReCentre, o.ImCentre)
	case !finite(o.WidthRe) || o.WidthRe <= 0:
		return fmt.Errorf("%w: width %v", ErrInvalidOptions, o.WidthRe)
	case o.MaxIters <= 0:
		return fmt.Errorf("%w: max iterations %d", ErrInvalidOptions, o.MaxIters)
	case o.Coloring != ColorHue && o.Coloring != ColorBlue:
		return fmt.Errorf("%w: coloring %d", ErrInvalidOptions, o.Coloring)
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
