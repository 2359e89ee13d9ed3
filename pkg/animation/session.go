package animation

import (
	"image"
	"time"

	"github.com/willbeason/zoom-fractal/pkg/mandelbrot"
)

const (
	// DefaultScaleStep shrinks the view width after every committed frame.
	DefaultScaleStep = 0.6

	// DefaultRedrawEstimate is the initial transition length.
	DefaultRedrawEstimate = 2 * time.Second

	// estimateMargin pads the measured render time when the transition
	// turned out shorter than the render.
	estimateMargin = 1.5
)

// State is what the coordinator is waiting for.
type State int

const (
	Idle State = iota
	Rendering
	Transitioning
	Both
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Rendering:
		return "rendering"
	case Transitioning:
		return "transitioning"
	case Both:
		return "rendering+transitioning"
	}
	return "unknown"
}

// Session is the mutable state of one auto-zoom run. It belongs to the
// coordinator's loop: read or change it only from tasks on that loop, or
// before Start.
type Session struct {
	// Options for the next frame. WidthRe shrinks by ScaleStep per cycle.
	Options mandelbrot.Options

	// ScaleStep is the zoom factor per cycle, in (0, 1).
	ScaleStep float64

	// RedrawEstimate is the transition length. It only grows, to 1.5 times
	// the last render time when a render finishes after its transition.
	RedrawEstimate time.Duration

	// PreviewProgress scales the view with render progress while no
	// transition is running.
	PreviewProgress bool

	// MaxCycles stops auto-repeat after that many committed frames; 0 means
	// no limit.
	MaxCycles int

	// Cycles counts committed frames.
	Cycles int

	// LastElapsed is the render time of the latest frame.
	LastElapsed time.Duration

	drawing       bool
	transitioning bool
	latest        *image.RGBA
}

// NewSession returns a session with default scale step and redraw estimate.
// Mandelbrot defaults are applied to opts.
func NewSession(opts mandelbrot.Options) *Session {
	return &Session{
		Options:        opts.WithDefaults(),
		ScaleStep:      DefaultScaleStep,
		RedrawEstimate: DefaultRedrawEstimate,
	}
}

func (s *Session) State() State {
	switch {
	case s.drawing && s.transitioning:
		return Both
	case s.drawing:
		return Rendering
	case s.transitioning:
		return Transitioning
	}
	return Idle
}

// ZoomScale is the visual scale a transition animates to: the frame being
// computed shows the current view magnified by this factor.
func (s *Session) ZoomScale() float64 {
	return 1 / s.ScaleStep
}

func (s *Session) raiseEstimate(elapsed time.Duration) {
	s.RedrawEstimate = max(s.RedrawEstimate, time.Duration(estimateMargin*float64(elapsed)))
}
