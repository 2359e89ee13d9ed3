package animation

import (
	"errors"
	"image"
	"testing"
	"time"

	"github.com/willbeason/zoom-fractal/pkg/mandelbrot"
	"github.com/willbeason/zoom-fractal/pkg/scheduler"
)

type animateCall struct {
	scale      float64
	duration   time.Duration
	onComplete func()
}

// stubTransition records transitions; tests fire completions by hand.
type stubTransition struct {
	calls []animateCall
}

func (s *stubTransition) Animate(scale float64, d time.Duration, _ string, onComplete func()) {
	s.calls = append(s.calls, animateCall{scale, d, onComplete})
}

// zooms returns the calls that started a timed zoom transition.
func (s *stubTransition) zooms() []animateCall {
	var out []animateCall
	for _, c := range s.calls {
		if c.onComplete != nil {
			out = append(out, c)
		}
	}
	return out
}

type stubCanvas struct {
	commits []*image.RGBA
}

func (s *stubCanvas) Commit(img *image.RGBA) {
	s.commits = append(s.commits, img)
}

// fakeRenderer hands out futures the test resolves explicitly.
type fakeRenderer struct {
	loop    *scheduler.Loop
	pending []*scheduler.Future[*mandelbrot.Context]
	widths  []float64
}

func (f *fakeRenderer) render(img *image.RGBA, opts mandelbrot.Options) *scheduler.Future[*mandelbrot.Context] {
	fut := scheduler.NewFuture[*mandelbrot.Context](f.loop)
	f.pending = append(f.pending, fut)
	f.widths = append(f.widths, opts.WidthRe)
	return fut
}

func (f *fakeRenderer) finish(i int, img *image.RGBA, elapsed time.Duration) {
	f.pending[i].Resolve(&mandelbrot.Context{Image: img, Elapsed: elapsed}, nil)
}

type harness struct {
	loop       *scheduler.Loop
	img        *image.RGBA
	transition *stubTransition
	canvas     *stubCanvas
	renderer   *fakeRenderer
	coord      *Coordinator
}

func newHarness(t *testing.T, opts mandelbrot.Options) *harness {
	t.Helper()
	loop := scheduler.NewLoop()
	h := &harness{
		loop:       loop,
		img:        image.NewRGBA(image.Rect(0, 0, 4, 4)),
		transition: &stubTransition{},
		canvas:     &stubCanvas{},
		renderer:   &fakeRenderer{loop: loop},
	}

	coord, err := New(Config{
		Loop:       loop,
		Image:      h.img,
		Session:    NewSession(opts),
		Transition: h.transition,
		Canvas:     h.canvas,
		Render:     h.renderer.render,
	})
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	h.coord = coord
	return h
}

func TestCoordinator_FirstFrameHasNoTransition(t *testing.T) {
	h := newHarness(t, mandelbrot.Options{WidthRe: 4})
	h.coord.Start()
	h.loop.Drain()

	if len(h.renderer.pending) != 1 {
		t.Fatalf("%d renders started, want 1", len(h.renderer.pending))
	}
	if len(h.transition.zooms()) != 0 {
		t.Fatal("transition started before the first frame")
	}
	if got := h.coord.Session().State(); got != Rendering {
		t.Errorf("state = %v, want rendering", got)
	}

	h.renderer.finish(0, h.img, 3*time.Second)
	h.loop.Drain()

	if len(h.canvas.commits) != 1 {
		t.Fatalf("%d commits, want 1", len(h.canvas.commits))
	}
	s := h.coord.Session()
	if s.Options.WidthRe != 4*DefaultScaleStep {
		t.Errorf("width = %v, want %v", s.Options.WidthRe, 4*DefaultScaleStep)
	}
	// The render outran the 2s estimate, so the estimate grows to 1.5x.
	if s.RedrawEstimate != 4500*time.Millisecond {
		t.Errorf("estimate = %v, want 4.5s", s.RedrawEstimate)
	}

	zooms := h.transition.zooms()
	if len(zooms) != 1 || zooms[0].duration != 4500*time.Millisecond {
		t.Fatalf("zoom transitions = %+v, want one of 4.5s", zooms)
	}
	if zooms[0].scale != s.ZoomScale() {
		t.Errorf("zoom scale = %v, want %v", zooms[0].scale, s.ZoomScale())
	}
	if len(h.renderer.pending) != 2 || h.renderer.widths[1] != 4*DefaultScaleStep {
		t.Errorf("second render: %d started, widths %v", len(h.renderer.pending), h.renderer.widths)
	}
	if got := s.State(); got != Both {
		t.Errorf("state = %v, want both", got)
	}
}

func TestCoordinator_RenderFinishingFirstWaitsForTransition(t *testing.T) {
	h := newHarness(t, mandelbrot.Options{WidthRe: 4})
	h.coord.Start()
	h.loop.Drain()
	h.renderer.finish(0, h.img, 10*time.Millisecond)
	h.loop.Drain()

	// Cycle 2: the render completes while the zoom is still running.
	h.renderer.finish(1, h.img, 10*time.Millisecond)
	h.loop.Drain()

	if n := len(h.renderer.pending); n != 2 {
		t.Fatalf("%d renders started before the transition completed, want 2", n)
	}
	if n := len(h.canvas.commits); n != 1 {
		t.Fatalf("%d commits before the transition completed, want 1", n)
	}
	if n := len(h.transition.zooms()); n != 1 {
		t.Fatalf("%d transitions started, want 1", n)
	}
	if got := h.coord.Session().State(); got != Transitioning {
		t.Errorf("state = %v, want transitioning", got)
	}

	h.transition.zooms()[0].onComplete()
	h.loop.Drain()

	if n := len(h.canvas.commits); n != 2 {
		t.Errorf("%d commits after the transition completed, want 2", n)
	}
	if n := len(h.renderer.pending); n != 3 {
		t.Errorf("%d renders after the transition completed, want 3", n)
	}
	if n := len(h.transition.zooms()); n != 2 {
		t.Errorf("%d transitions after the cycle, want 2", n)
	}
	// The transition finished last: the estimate is left alone.
	if got := h.coord.Session().RedrawEstimate; got != DefaultRedrawEstimate {
		t.Errorf("estimate = %v, want %v", got, DefaultRedrawEstimate)
	}
}

func TestCoordinator_TransitionFinishingFirstWaitsForRender(t *testing.T) {
	h := newHarness(t, mandelbrot.Options{WidthRe: 4})
	h.coord.Start()
	h.loop.Drain()
	h.renderer.finish(0, h.img, 10*time.Millisecond)
	h.loop.Drain()

	h.transition.zooms()[0].onComplete()
	h.loop.Drain()
	if n := len(h.canvas.commits); n != 1 {
		t.Fatalf("%d commits while rendering, want 1", n)
	}
	if n := len(h.renderer.pending); n != 2 {
		t.Fatalf("%d renders, want 2", n)
	}

	h.renderer.finish(1, h.img, 5*time.Second)
	h.loop.Drain()
	if n := len(h.canvas.commits); n != 2 {
		t.Errorf("%d commits, want 2", n)
	}
	if got := h.coord.Session().RedrawEstimate; got != 7500*time.Millisecond {
		t.Errorf("estimate = %v, want 7.5s", got)
	}
}

func TestCoordinator_StopLetsInFlightWorkFinish(t *testing.T) {
	h := newHarness(t, mandelbrot.Options{WidthRe: 4})
	h.coord.Start()
	h.loop.Drain()
	h.renderer.finish(0, h.img, time.Millisecond)
	h.loop.Drain()

	h.coord.Stop()
	h.renderer.finish(1, h.img, time.Millisecond)
	h.transition.zooms()[0].onComplete()
	h.loop.Drain()

	if n := len(h.canvas.commits); n != 2 {
		t.Errorf("%d commits, want 2: in-flight frame should still be committed", n)
	}
	if n := len(h.renderer.pending); n != 2 {
		t.Errorf("%d renders, want no new render after Stop", n)
	}
	select {
	case <-h.coord.Done():
	default:
		t.Error("Done not closed after the chain stopped")
	}
}

func TestCoordinator_MaxCycles(t *testing.T) {
	h := newHarness(t, mandelbrot.Options{WidthRe: 4})
	h.coord.Session().MaxCycles = 1
	h.coord.Start()
	h.loop.Drain()
	h.renderer.finish(0, h.img, time.Millisecond)
	h.loop.Drain()

	if len(h.renderer.pending) != 1 || h.coord.Active() {
		t.Errorf("chain continued past MaxCycles: %d renders", len(h.renderer.pending))
	}
	select {
	case <-h.coord.Done():
	default:
		t.Error("Done not closed")
	}
}

func TestCoordinator_RenderErrorStopsChain(t *testing.T) {
	h := newHarness(t, mandelbrot.Options{WidthRe: 4})
	h.coord.Start()
	h.loop.Drain()

	boom := errors.New("boom")
	h.renderer.pending[0].Resolve(nil, boom)
	h.loop.Drain()

	if !errors.Is(h.coord.Err(), boom) {
		t.Errorf("Err() = %v, want boom", h.coord.Err())
	}
	if len(h.canvas.commits) != 0 {
		t.Error("failed frame committed")
	}
	select {
	case <-h.coord.Done():
	default:
		t.Error("Done not closed")
	}
}

func TestCoordinator_RealRenderer(t *testing.T) {
	loop := scheduler.NewLoop()
	img := image.NewRGBA(image.Rect(0, 0, 50, 30))
	tr := &stubTransition{}
	canvas := &stubCanvas{}

	s := NewSession(mandelbrot.Options{MaxIters: 30})
	s.PreviewProgress = true
	s.MaxCycles = 1
	coord, err := New(Config{Loop: loop, Image: img, Session: s, Transition: tr, Canvas: canvas})
	if err != nil {
		t.Fatal(err)
	}

	coord.Start()
	loop.Drain()

	if len(canvas.commits) != 1 || canvas.commits[0] != img {
		t.Fatalf("commits = %d", len(canvas.commits))
	}
	// Progress previews are immediate scale changes between 1 and the zoom.
	previews := 0
	for _, c := range tr.calls {
		if c.duration == 0 && c.scale > 1 {
			previews++
			if c.scale > s.ZoomScale() {
				t.Errorf("preview scale %v beyond zoom %v", c.scale, s.ZoomScale())
			}
		}
	}
	if previews == 0 {
		t.Error("no progress previews")
	}
}

func TestNew_Validates(t *testing.T) {
	loop := scheduler.NewLoop()
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	s := NewSession(mandelbrot.Options{})

	if _, err := New(Config{Loop: loop, Session: s, Transition: &stubTransition{}, Canvas: &stubCanvas{}}); !errors.Is(err, mandelbrot.ErrNoImage) {
		t.Errorf("missing image: err = %v", err)
	}

	bad := NewSession(mandelbrot.Options{})
	bad.ScaleStep = 1.5
	if _, err := New(Config{Loop: loop, Image: img, Session: bad, Transition: &stubTransition{}, Canvas: &stubCanvas{}}); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("scale step 1.5: err = %v", err)
	}
}
