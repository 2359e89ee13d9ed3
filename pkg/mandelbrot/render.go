package mandelbrot

import (
	"context"
	"fmt"
	"image"
	"runtime/trace"
	"time"

	"github.com/willbeason/zoom-fractal/pkg/colormap"
	"github.com/willbeason/zoom-fractal/pkg/logging"
	"github.com/willbeason/zoom-fractal/pkg/scheduler"
)

// Context is the result of a completed frame.
type Context struct {
	// Image is the buffer passed to Render, now fully drawn.
	Image *image.RGBA

	// Elapsed is the wall time from the Render call to completion.
	Elapsed time.Duration

	// Histogram is set for histogram-colored frames.
	Histogram *Histogram

	// Options are the effective options, defaults applied.
	Options Options
}

// frame holds the per-render state shared by the column chunks.
type frame struct {
	img  *image.RGBA
	opts Options

	width, height int
	re0, im0      float64
	scale         float64

	// Histogram mode keeps the first pass results, column-major.
	hist   *Histogram
	iters  []int32
	smooth []float64
}

func newFrame(img *image.RGBA, opts Options) *frame {
	b := img.Bounds()
	f := &frame{
		img:    img,
		opts:   opts,
		width:  b.Dx(),
		height: b.Dy(),
	}

	f.re0 = opts.ReCentre - opts.WidthRe/2
	f.im0 = opts.ImCentre - opts.WidthRe*float64(f.height)/(2*float64(f.width))
	f.scale = opts.WidthRe / float64(f.width)

	if opts.UseHistogram {
		f.hist = NewHistogram(opts.MaxIters)
		f.iters = make([]int32, f.width*f.height)
		f.smooth = make([]float64, f.width*f.height)
	}
	return f
}

// Point returns the complex number drawn at pixel (x, y), relative to the
// image's top-left corner.
func (f *frame) Point(x, y int) complex128 {
	return complex(f.re0+f.scale*float64(x), f.im0+f.scale*float64(y))
}

func (f *frame) set(x, y int, smooth float64, interior bool) {
	c := colormap.Linear(smooth, interior)
	if f.opts.Coloring == ColorBlue && !interior {
		c = colormap.Blue(smooth)
	}
	b := f.img.Bounds()
	f.img.SetRGBA(b.Min.X+x, b.Min.Y+y, c)
}

// fillColumn is the first pass for one column. Without a histogram it also
// colors the pixels.
func (f *frame) fillColumn(x int) {
	maxIters := f.opts.MaxIters
	for y := 0; y < f.height; y++ {
		iters, smooth := Escape(f.Point(x, y), maxIters)

		if f.hist == nil {
			f.set(x, y, smooth, iters >= maxIters)
			continue
		}

		i := x*f.height + y
		f.iters[i] = int32(iters)
		f.smooth[i] = smooth
		f.hist.Add(iters)
	}
}

// equalize is the second histogram pass.
func (f *frame) equalize() {
	b := f.img.Bounds()
	for x := 0; x < f.width; x++ {
		for y := 0; y < f.height; y++ {
			i := x*f.height + y
			interior := int(f.iters[i]) >= f.opts.MaxIters

			var hue float64
			if !interior {
				hue = f.hist.Hue(f.smooth[i])
			}
			f.img.SetRGBA(b.Min.X+x, b.Min.Y+y, colormap.Equalized(hue, interior))
		}
	}
}

// Render draws the Mandelbrot set into img, ChunkColumns columns per loop
// turn, and resolves with the frame's Context. img is only written, never
// resized; the caller must not touch it until the future resolves.
//
// A nil or empty img, or invalid options, resolve the future with an error
// wrapping ErrNoImage or ErrInvalidOptions.
func Render(loop *scheduler.Loop, img *image.RGBA, opts Options) *scheduler.Future[*Context] {
	start := time.Now()
	logger := logging.Logger()

	if img == nil || img.Bounds().Empty() {
		logger.Warn("mandelbrot: render called without an image")
		return scheduler.Failed[*Context](loop, ErrNoImage)
	}
	opts = opts.WithDefaults()
	if err := opts.Validate(); err != nil {
		logger.Warn("mandelbrot: rejected options", "err", err)
		return scheduler.Failed[*Context](loop, err)
	}

	f := newFrame(img, opts)

	ctx := context.Background()
	var task *trace.Task
	if opts.ProfileEnabled {
		ctx, task = trace.NewTask(ctx, "mandelbrot")
	}

	return scheduler.Start(loop, scheduler.Job[*Context]{
		Units:         f.width,
		ChunkSize:     ChunkColumns,
		Work:          f.fillColumn,
		OnProgress:    opts.OnProgress,
		ProgressEvery: ProgressEvery,
		Finish: func() (*Context, error) {
			if task != nil {
				task.End()
			}
			logger.Debug("mandelbrot: first pass done", "elapsed", time.Since(start))

			if f.hist != nil {
				trace.WithRegion(ctx, "mandelbrot.equalize", f.equalize)
			}
			if opts.OnProgress != nil {
				opts.OnProgress(1.0)
			}

			elapsed := time.Since(start)
			logger.Info("mandelbrot: frame done",
				"re", opts.ReCentre, "im", opts.ImCentre, "widthRe", opts.WidthRe,
				"elapsed", elapsed)

			return &Context{
				Image:     img,
				Elapsed:   elapsed,
				Histogram: f.hist,
				Options:   opts,
			}, nil
		},
	})
}

// RenderSync renders a frame on a private loop and blocks until it completes.
func RenderSync(ctx context.Context, img *image.RGBA, opts Options) (*Context, error) {
	loop := scheduler.NewLoop()
	fut := Render(loop, img, opts)
	if err := loop.RunUntil(ctx, fut.Done()); err != nil {
		return nil, fmt.Errorf("mandelbrot: %w", err)
	}
	return fut.Result()
}
