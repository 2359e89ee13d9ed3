// Package animation runs the Mandelbrot auto-zoom: while the next, deeper
// frame is computed, the current one is visually scaled up, and a new cycle
// starts only once both have finished.
package animation

import (
	"errors"
	"fmt"
	"image"
	"sync"
	"sync/atomic"
	"time"

	"github.com/willbeason/zoom-fractal/pkg/logging"
	"github.com/willbeason/zoom-fractal/pkg/mandelbrot"
	"github.com/willbeason/zoom-fractal/pkg/scheduler"
)

// EasingLinear is the easing passed for zoom transitions.
const EasingLinear = "linear"

var ErrInvalidConfig = errors.New("animation: invalid config")

// Transition scales the displayed frame. Animate starts a transition to
// scale over duration and calls onComplete, if non-nil, when done. A zero
// duration applies the scale immediately. onComplete may be called from any
// goroutine.
type Transition interface {
	Animate(scale float64, duration time.Duration, easing string, onComplete func())
}

// Canvas displays committed frames. Commit must copy what it needs: the
// image is reused for the next render.
type Canvas interface {
	Commit(img *image.RGBA)
}

// Renderer starts rendering a frame into img.
type Renderer func(img *image.RGBA, opts mandelbrot.Options) *scheduler.Future[*mandelbrot.Context]

type Config struct {
	Loop       *scheduler.Loop
	Image      *image.RGBA
	Session    *Session
	Transition Transition
	Canvas     Canvas

	// Render defaults to mandelbrot.Render on Loop.
	Render Renderer

	// OnCommit, if set, runs on the loop after each committed frame.
	OnCommit func(s *Session)
}

// Coordinator alternates transitions and renders. Its methods other than
// Start, Stop, Active and Done must run on the loop.
type Coordinator struct {
	loop       *scheduler.Loop
	img        *image.RGBA
	session    *Session
	transition Transition
	canvas     Canvas
	render     Renderer
	onCommit   func(*Session)

	active   atomic.Bool
	err      error
	done     chan struct{}
	doneOnce sync.Once
}

func New(cfg Config) (*Coordinator, error) {
	switch {
	case cfg.Loop == nil:
		return nil, fmt.Errorf("%w: nil loop", ErrInvalidConfig)
	case cfg.Image == nil:
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, mandelbrot.ErrNoImage)
	case cfg.Session == nil:
		return nil, fmt.Errorf("%w: nil session", ErrInvalidConfig)
	case cfg.Transition == nil || cfg.Canvas == nil:
		return nil, fmt.Errorf("%w: transition and canvas are required", ErrInvalidConfig)
	case cfg.Session.ScaleStep <= 0 || cfg.Session.ScaleStep >= 1:
		return nil, fmt.Errorf("%w: scale step %v", ErrInvalidConfig, cfg.Session.ScaleStep)
	}

	render := cfg.Render
	if render == nil {
		loop := cfg.Loop
		render = func(img *image.RGBA, opts mandelbrot.Options) *scheduler.Future[*mandelbrot.Context] {
			return mandelbrot.Render(loop, img, opts)
		}
	}

	return &Coordinator{
		loop:       cfg.Loop,
		img:        cfg.Image,
		session:    cfg.Session,
		transition: cfg.Transition,
		canvas:     cfg.Canvas,
		render:     render,
		onCommit:   cfg.OnCommit,
		done:       make(chan struct{}),
	}, nil
}

// Start enables auto-repeat and schedules the first render. The first frame
// is committed without a transition.
func (c *Coordinator) Start() {
	c.active.Store(true)
	c.loop.Defer(func() { c.redraw(true) })
}

// Stop disables auto-repeat. Work already in flight runs to completion and
// is committed, but nothing new is scheduled.
func (c *Coordinator) Stop() {
	c.active.Store(false)
}

func (c *Coordinator) Active() bool {
	return c.active.Load()
}

// Done is closed once the chain has stopped rescheduling.
func (c *Coordinator) Done() <-chan struct{} {
	return c.done
}

// Err returns the render error that stopped the chain, if any. Read it after
// Done is closed.
func (c *Coordinator) Err() error {
	return c.err
}

func (c *Coordinator) Session() *Session {
	return c.session
}

func (c *Coordinator) finish() {
	c.doneOnce.Do(func() { close(c.done) })
}

// RedrawOnce renders and commits a single frame without starting the chain.
func (c *Coordinator) RedrawOnce() {
	c.redraw(false)
}

func (c *Coordinator) redraw(autoRepeat bool) {
	s := c.session
	if s.drawing {
		return
	}
	s.drawing = true

	opts := s.Options
	if s.PreviewProgress {
		opts.OnProgress = c.previewProgress(opts.OnProgress)
	}

	c.render(c.img, opts).Then(func(fc *mandelbrot.Context, err error) {
		logger := logging.Logger()
		s.drawing = false

		if err != nil {
			logger.Error("animation: render failed, stopping", "err", err)
			c.err = err
			c.Stop()
			if !s.transitioning {
				c.finish()
			}
			return
		}

		s.latest = fc.Image
		s.LastElapsed = fc.Elapsed
		if s.transitioning {
			logger.Debug("animation: render done, waiting for transition")
			return
		}

		s.raiseEstimate(fc.Elapsed)
		logger.Debug("animation: render finished last", "redrawEstimate", s.RedrawEstimate)
		c.finishCycle(autoRepeat)
	})
}

func (c *Coordinator) transit(autoRepeat bool) {
	s := c.session
	if s.transitioning {
		return
	}
	s.transitioning = true

	c.transition.Animate(s.ZoomScale(), s.RedrawEstimate, EasingLinear, func() {
		c.loop.Defer(func() {
			s.transitioning = false
			if s.drawing {
				logging.Logger().Debug("animation: transition done, waiting for render")
				return
			}
			logging.Logger().Debug("animation: transition finished last")
			c.finishCycle(autoRepeat)
		})
	})
}

// finishCycle runs once per cycle, from whichever of render and transition
// completed last.
func (c *Coordinator) finishCycle(autoRepeat bool) {
	s := c.session

	c.transition.Animate(1, 0, EasingLinear, nil)
	if s.latest != nil {
		c.canvas.Commit(s.latest)
		s.Cycles++
		if c.onCommit != nil {
			c.onCommit(s)
		}
	}
	s.Options.WidthRe *= s.ScaleStep

	if s.MaxCycles > 0 && s.Cycles >= s.MaxCycles {
		c.Stop()
	}
	if !autoRepeat || !c.Active() {
		c.finish()
		return
	}

	c.loop.Defer(func() { c.transit(autoRepeat) })
	c.loop.Defer(func() { c.redraw(autoRepeat) })
}

func (c *Coordinator) previewProgress(next func(float64)) func(float64) {
	s := c.session
	return func(p float64) {
		if !s.transitioning {
			c.transition.Animate(1+p*(s.ZoomScale()-1), 0, EasingLinear, nil)
		}
		if next != nil {
			next(p)
		}
	}
}
