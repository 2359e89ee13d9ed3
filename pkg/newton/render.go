// Package newton draws the basins of attraction of Newton's method for a
// complex polynomial: each pixel is colored by the root its starting point
// converges to, darkened by how long convergence took.
package newton

import (
	"context"
	"fmt"
	"image"
	"runtime/trace"
	"time"

	"github.com/willbeason/zoom-fractal/pkg/colormap"
	"github.com/willbeason/zoom-fractal/pkg/complexpoly"
	"github.com/willbeason/zoom-fractal/pkg/logging"
	"github.com/willbeason/zoom-fractal/pkg/scheduler"
)

// Context is the result of a completed frame. Pass it to Carry to draw the
// next frame with the same polynomial and root colors.
type Context struct {
	Image   *image.RGBA
	Elapsed time.Duration

	Polynomial complexpoly.Poly
	Derivative complexpoly.Poly
	Function   func(complex128) complex128
	Step       func(fx, x complex128) complex128

	// Roots holds every root reached so far, in palette order.
	Roots *RootSet

	// AverageIterations is the mean smoothed iteration count over the frame.
	AverageIterations float64
}

// Carry fills the polynomial, its derived functions and the known roots of
// next from c, leaving fields already set in next alone.
func (c *Context) Carry(next Options) Options {
	if next.Polynomial == nil {
		next.Polynomial = c.Polynomial
	}
	if next.Derivative == nil {
		next.Derivative = c.Derivative
	}
	if next.Function == nil {
		next.Function = c.Function
	}
	if next.Step == nil {
		next.Step = c.Step
	}
	if next.Roots == nil {
		next.Roots = c.Roots.Roots()
	}
	return next
}

type frame struct {
	img  *image.RGBA
	opts Options

	width, height int
	startRe       float64
	startIm       float64
	step          float64

	roots   *RootSet
	iterSum float64
}

func newFrame(img *image.RGBA, opts Options) *frame {
	b := img.Bounds()
	f := &frame{
		img:    img,
		opts:   opts,
		width:  b.Dx(),
		height: b.Dy(),
		roots:  NewRootSet(len(colormap.Palette), opts.Roots...),
	}
	f.step = opts.WidthRe / float64(f.width)
	f.startRe = opts.CentreRe - opts.WidthRe*0.5
	f.startIm = opts.CentreIm - float64(f.height)*0.5*f.step
	return f
}

func (f *frame) fillColumn(x int) {
	logger := logging.Logger()
	b := f.img.Bounds()
	re := f.startRe + float64(x)*f.step

	for y := 0; y < f.height; y++ {
		x0 := complex(re, f.startIm+float64(y)*f.step)
		root, found, iters := FindRoot(x0, f.opts.Function, f.opts.Step, f.opts.MaxIters)
		f.iterSum += iters

		c := colormap.Unreachable
		if found {
			index, added := f.roots.Match(root)
			if added {
				logger.Debug("newton: new root", "root", root, "index", index)
			}
			if index >= 0 {
				c = colormap.Root(index, iters, f.opts.ShadeFactor)
			}
		}
		f.img.SetRGBA(b.Min.X+x, b.Min.Y+y, c)
	}
}

// Render draws the Newton basins of opts.Polynomial into img, one column per
// loop turn, and resolves with the frame's Context.
//
// A nil or empty img, or invalid options, resolve the future with an error
// wrapping ErrNoImage or ErrInvalidOptions.
func Render(loop *scheduler.Loop, img *image.RGBA, opts Options) *scheduler.Future[*Context] {
	start := time.Now()
	logger := logging.Logger()

	if img == nil || img.Bounds().Empty() {
		logger.Warn("newton: render called without an image")
		return scheduler.Failed[*Context](loop, ErrNoImage)
	}
	opts = opts.WithDefaults()
	if err := opts.Validate(); err != nil {
		logger.Warn("newton: rejected options", "err", err)
		return scheduler.Failed[*Context](loop, err)
	}

	logger.Debug("newton: frame start",
		"polynomial", opts.Polynomial.String(),
		"derivative", opts.Derivative.String())

	f := newFrame(img, opts)
	work := f.fillColumn
	if opts.ProfileEnabled {
		work = func(x int) {
			if x != 0 {
				f.fillColumn(x)
				return
			}
			trace.WithRegion(context.Background(), "newton.first-column", func() { f.fillColumn(0) })
		}
	}

	return scheduler.Start(loop, scheduler.Job[*Context]{
		Units:         f.width,
		ChunkSize:     1,
		Work:          work,
		OnProgress:    opts.OnProgress,
		ProgressEvery: 1,
		Finish: func() (*Context, error) {
			if opts.OnProgress != nil {
				opts.OnProgress(1.0)
			}

			elapsed := time.Since(start)
			avg := f.iterSum / float64(f.width*f.height)
			logger.Info("newton: frame done",
				"averageIterations", avg,
				"roots", f.roots.Len(),
				"elapsed", elapsed)

			return &Context{
				Image:             img,
				Elapsed:           elapsed,
				Polynomial:        opts.Polynomial,
				Derivative:        opts.Derivative,
				Function:          opts.Function,
				Step:              opts.Step,
				Roots:             f.roots,
				AverageIterations: avg,
			}, nil
		},
	})
}

// RenderSync renders a frame on a private loop and blocks until it completes.
func RenderSync(ctx context.Context, img *image.RGBA, opts Options) (*Context, error) {
	loop := scheduler.NewLoop()
	fut := Render(loop, img, opts)
	if err := loop.RunUntil(ctx, fut.Done()); err != nil {
		return nil, fmt.Errorf("newton: %w", err)
	}
	return fut.Result()
}
