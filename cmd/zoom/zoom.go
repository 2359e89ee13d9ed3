package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime/trace"
	"time"

	"github.com/spf13/cobra"

	"github.com/willbeason/zoom-fractal/pkg/animation"
	"github.com/willbeason/zoom-fractal/pkg/cliflag"
	"github.com/willbeason/zoom-fractal/pkg/display"
	"github.com/willbeason/zoom-fractal/pkg/logging"
	"github.com/willbeason/zoom-fractal/pkg/mandelbrot"
	"github.com/willbeason/zoom-fractal/pkg/scheduler"
)

const (
	Width  = 960
	Height = 540

	// The default view zooms into a seahorse-valley spiral.
	CentreRe = 0.001643721971153
	CentreIm = -0.822467633298876
	WidthRe  = 4.0
	MaxIters = 1000
)

type flags struct {
	width, height int

	re, im, widthRe float64
	maxIters        int
	histogram       bool

	scaleStep      float64
	redrawEstimate time.Duration
	cycles         int
	preview        bool

	addr      string
	framesDir string
	fps       float64

	trace    string
	logLevel slog.Level
}

func mainCmd() *cobra.Command {
	f := &flags{}
	cmd := &cobra.Command{
		Use:   "zoom",
		Short: "Zoom continuously into the Mandelbrot set",
		Long: `Zoom continuously into the Mandelbrot set.

Each frame is rendered while the previous one is scaled up toward it. Frames
are shown to browsers connected to --addr, written as a PNG sequence to
--frames-dir, or both.`,
		Args: cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCmd(cmd, f)
		},
	}

	fs := cmd.Flags()
	fs.IntVar(&f.width, "width", Width, "image width in pixels")
	fs.IntVar(&f.height, "height", Height, "image height in pixels")
	fs.Float64Var(&f.re, "re", CentreRe, "real part of the zoom centre")
	fs.Float64Var(&f.im, "im", CentreIm, "imaginary part of the zoom centre")
	fs.Float64Var(&f.widthRe, "width-re", WidthRe, "initial width of the view along the real axis")
	fs.IntVar(&f.maxIters, "max-iters", MaxIters, "escape iteration limit")
	fs.BoolVar(&f.histogram, "histogram", false, "color by histogram-equalized escape counts")
	fs.Float64Var(&f.scaleStep, "scale-step", animation.DefaultScaleStep, "view width factor per frame, in (0, 1)")
	fs.DurationVar(&f.redrawEstimate, "redraw-estimate", animation.DefaultRedrawEstimate, "initial zoom transition length")
	fs.IntVar(&f.cycles, "cycles", 0, "stop after this many frames; 0 runs until interrupted")
	fs.BoolVar(&f.preview, "preview", false, "scale the view with render progress while no transition runs")
	fs.StringVar(&f.addr, "addr", "", "serve the browser viewer on this address, e.g. :8080")
	fs.StringVar(&f.framesDir, "frames-dir", "", "write committed and transition frames to this directory")
	fs.Float64Var(&f.fps, "fps", 30, "transition frame rate for --frames-dir")
	fs.StringVar(&f.trace, "trace", "", "write a runtime trace to this file")
	fs.Var(cliflag.NewLevel(&f.logLevel, slog.LevelInfo), "log-level", "debug, info, warn or error")

	cmd.MarkFlagsOneRequired("addr", "frames-dir")

	return cmd
}

// outputs fans frames out to several canvases. Only the first transition
// reports completion.
type outputs []interface {
	animation.Canvas
	animation.Transition
}

func (o outputs) Commit(img *image.RGBA) {
	for _, out := range o {
		out.Commit(img)
	}
}

func (o outputs) Animate(scale float64, d time.Duration, easing string, onComplete func()) {
	for i, out := range o {
		if i == 0 {
			out.Animate(scale, d, easing, onComplete)
		} else {
			out.Animate(scale, d, easing, nil)
		}
	}
}

func runCmd(cmd *cobra.Command, f *flags) error {
	// At this point usage information has already been printed if obviously incorrect.
	cmd.SilenceUsage = true

	logging.SetLogger(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: f.logLevel})))
	logger := logging.Logger()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	if f.trace != "" {
		stopTrace, err := startTrace(f.trace)
		if err != nil {
			return err
		}
		defer stopTrace()
	}

	loop := scheduler.NewLoop()

	var outs outputs
	serveErr := make(chan error, 1)
	var frames *display.FrameWriter
	if f.framesDir != "" {
		var err error
		frames, err = display.NewFrameWriter(loop, f.framesDir, f.fps)
		if err != nil {
			return err
		}
		outs = append(outs, frames)
	}
	if f.addr != "" {
		hub := display.NewHub()
		outs = append(outs, hub)

		srv := &http.Server{
			Addr:              f.addr,
			Handler:           hub.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Info("serving viewer", "addr", f.addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serveErr <- err
				stop()
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	session := animation.NewSession(mandelbrot.Options{
		ReCentre:       f.re,
		ImCentre:       f.im,
		WidthRe:        f.widthRe,
		MaxIters:       f.maxIters,
		UseHistogram:   f.histogram,
		ProfileEnabled: f.trace != "",
	})
	session.ScaleStep = f.scaleStep
	session.RedrawEstimate = f.redrawEstimate
	session.PreviewProgress = f.preview
	session.MaxCycles = f.cycles

	coord, err := animation.New(animation.Config{
		Loop:       loop,
		Image:      image.NewRGBA(image.Rect(0, 0, f.width, f.height)),
		Session:    session,
		Transition: outs,
		Canvas:     outs,
		OnCommit: func(s *animation.Session) {
			logger.Info("frame committed",
				"cycle", s.Cycles, "widthRe", s.Options.WidthRe,
				"render", s.LastElapsed, "transition", s.RedrawEstimate)
		},
	})
	if err != nil {
		return err
	}

	coord.Start()
	err = loop.RunUntil(ctx, coord.Done())
	coord.Stop()

	select {
	case err := <-serveErr:
		return fmt.Errorf("serving viewer: %w", err)
	default:
	}

	switch {
	case ctx.Err() != nil:
		logger.Info("interrupted", "frames", session.Cycles)
	case err != nil:
		return err
	case coord.Err() != nil:
		return coord.Err()
	}

	if frames != nil {
		if err := frames.Err(); err != nil {
			return err
		}
		logger.Info("wrote frames", "dir", f.framesDir, "count", frames.Frames())
	}

	return nil
}

func startTrace(path string) (func(), error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	if err := trace.Start(f); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("starting trace: %w", err)
	}

	return func() {
		trace.Stop()
		_ = f.Close()
	}, nil
}

func main() {
	ctx := context.Background()

	err := mainCmd().ExecuteContext(ctx)
	if err != nil {
		// At this point the error has already been printed; no need to print again.
		os.Exit(1)
	}
}
