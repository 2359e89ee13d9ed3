package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"runtime/trace"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/willbeason/zoom-fractal/pkg/cliflag"
	"github.com/willbeason/zoom-fractal/pkg/complexpoly"
	"github.com/willbeason/zoom-fractal/pkg/logging"
	"github.com/willbeason/zoom-fractal/pkg/newton"
)

const (
	Width  = 1280
	Height = 720
)

type flags struct {
	width, height int

	re, im, widthRe float64
	maxIters        int
	shade           float64

	roots []complex128
	poly  []complex128
	a     complex128

	frames    int
	scaleStep float64

	out      string
	trace    string
	logLevel slog.Level
}

func mainCmd() *cobra.Command {
	f := &flags{}
	cmd := &cobra.Command{
		Use:   "newton",
		Short: "Render the Newton's method root basins of a polynomial to PNG",
		Long: `Render the Newton's method root basins of a polynomial to PNG.

The polynomial is given either by its roots (--root, repeatable) or by its
coefficients from the constant term up (--poly). With neither, 3x^3 - 1 is
drawn. With --frames above 1, each frame zooms in by --scale-step and keeps
the colors of roots found in earlier frames.`,
		Args: cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCmd(cmd, f)
		},
	}

	fs := cmd.Flags()
	fs.IntVar(&f.width, "width", Width, "image width in pixels")
	fs.IntVar(&f.height, "height", Height, "image height in pixels")
	fs.Float64Var(&f.re, "re", 0, "real part of the view centre")
	fs.Float64Var(&f.im, "im", 0, "imaginary part of the view centre")
	fs.Float64Var(&f.widthRe, "width-re", newton.DefaultWidthRe, "width of the view along the real axis")
	fs.IntVar(&f.maxIters, "max-iters", newton.DefaultMaxIters, "Newton iteration limit per pixel")
	fs.Float64Var(&f.shade, "shade", newton.DefaultShadeFactor, "per-iteration darkening of root colors")
	fs.Var(cliflag.NewComplexSlice(&f.roots, nil), "root", "polynomial root, e.g. -0.5+0.866i; repeatable")
	fs.Var(cliflag.NewComplexSlice(&f.poly, nil), "poly", "polynomial coefficients, constant term first")
	fs.Var(cliflag.NewComplex(&f.a, 1), "a", "relaxation coefficient in x - a*f(x)/f'(x)")
	fs.IntVar(&f.frames, "frames", 1, "number of frames to render")
	fs.Float64Var(&f.scaleStep, "scale-step", 0.6, "view width factor between frames")
	fs.StringVarP(&f.out, "out", "o", "", "output PNG; defaults to a timestamped name")
	fs.StringVar(&f.trace, "trace", "", "write a runtime trace of the render to this file")
	fs.Var(cliflag.NewLevel(&f.logLevel, slog.LevelInfo), "log-level", "debug, info, warn or error")

	cmd.MarkFlagsMutuallyExclusive("root", "poly")

	return cmd
}

func runCmd(cmd *cobra.Command, f *flags) error {
	// At this point usage information has already been printed if obviously incorrect.
	cmd.SilenceUsage = true

	logging.SetLogger(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: f.logLevel})))
	logger := logging.Logger()

	if f.frames < 1 {
		return errors.New("--frames must be at least 1")
	}
	if f.scaleStep <= 0 {
		return errors.New("--scale-step must be positive")
	}

	if f.trace != "" {
		stop, err := startTrace(f.trace)
		if err != nil {
			return err
		}
		defer stop()
	}

	opts := newton.Options{
		Roots:          f.roots,
		MaxIters:       f.maxIters,
		ShadeFactor:    f.shade,
		WidthRe:        f.widthRe,
		CentreRe:       f.re,
		CentreIm:       f.im,
		ACoefficient:   f.a,
		ProfileEnabled: f.trace != "",
	}
	if f.poly != nil {
		opts.Polynomial = complexpoly.Poly(f.poly)
	}

	out := f.out
	if out == "" {
		out = fmt.Sprintf("newton-%s.png", time.Now().Format("20060102150405"))
	}

	img := image.NewRGBA(image.Rect(0, 0, f.width, f.height))
	var last *newton.Context
	for i := 0; i < f.frames; i++ {
		if last != nil {
			opts.Roots = nil
			opts = last.Carry(opts)
			opts.WidthRe *= f.scaleStep
		}

		fc, err := newton.RenderSync(cmd.Context(), img, opts)
		if err != nil {
			return err
		}
		last = fc

		name := frameName(out, i, f.frames)
		if err := writePNG(name, img); err != nil {
			return err
		}
		logger.Info("wrote image", "file", name,
			"polynomial", fc.Polynomial, "roots", fc.Roots.Len(), "avgIters", fc.AverageIterations)
	}

	for i, r := range last.Roots.Roots() {
		logger.Debug("root", "index", i, "value", r)
	}

	return nil
}

// frameName numbers out when more than one frame is rendered.
func frameName(out string, i, n int) string {
	if n == 1 {
		return out
	}
	return fmt.Sprintf("%s-%03d.png", strings.TrimSuffix(out, ".png"), i)
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

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	err = png.Encode(f, img)
	if err != nil {
		_ = f.Close()
		return err
	}

	return f.Close()
}

func main() {
	ctx := context.Background()

	err := mainCmd().ExecuteContext(ctx)
	if err != nil {
		// At this point the error has already been printed; no need to print again.
		os.Exit(1)
	}
}
