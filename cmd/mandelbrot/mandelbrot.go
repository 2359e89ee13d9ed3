package main

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"runtime/trace"
	"time"

	"github.com/spf13/cobra"

	"github.com/willbeason/zoom-fractal/pkg/cliflag"
	"github.com/willbeason/zoom-fractal/pkg/logging"
	"github.com/willbeason/zoom-fractal/pkg/mandelbrot"
)

const (
	Width  = 1280
	Height = 720
)

type flags struct {
	width, height int

	re, im, widthRe float64
	maxIters        int
	histogram       bool
	blue            bool

	out      string
	trace    string
	logLevel slog.Level
}

func mainCmd() *cobra.Command {
	f := &flags{}
	cmd := &cobra.Command{
		Use:   "mandelbrot",
		Short: "Render one frame of the Mandelbrot set to a PNG",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCmd(cmd, f)
		},
	}

	fs := cmd.Flags()
	fs.IntVar(&f.width, "width", Width, "image width in pixels")
	fs.IntVar(&f.height, "height", Height, "image height in pixels")
	fs.Float64Var(&f.re, "re", 0, "real part of the view centre")
	fs.Float64Var(&f.im, "im", 0, "imaginary part of the view centre")
	fs.Float64Var(&f.widthRe, "width-re", mandelbrot.DefaultWidthRe, "width of the view along the real axis")
	fs.IntVar(&f.maxIters, "max-iters", mandelbrot.DefaultMaxIters, "escape iteration limit")
	fs.BoolVar(&f.histogram, "histogram", false, "color by histogram-equalized escape counts")
	fs.BoolVar(&f.blue, "blue", false, "use the blue ramp instead of the hue fade")
	fs.StringVarP(&f.out, "out", "o", "", "output PNG; defaults to a timestamped name")
	fs.StringVar(&f.trace, "trace", "", "write a runtime trace of the render to this file")
	fs.Var(cliflag.NewLevel(&f.logLevel, slog.LevelInfo), "log-level", "debug, info, warn or error")

	return cmd
}

func runCmd(cmd *cobra.Command, f *flags) error {
	// At this point usage information has already been printed if obviously incorrect.
	cmd.SilenceUsage = true

	logging.SetLogger(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: f.logLevel})))
	logger := logging.Logger()

	if f.trace != "" {
		stop, err := startTrace(f.trace)
		if err != nil {
			return err
		}
		defer stop()
	}

	opts := mandelbrot.Options{
		ReCentre:       f.re,
		ImCentre:       f.im,
		WidthRe:        f.widthRe,
		MaxIters:       f.maxIters,
		UseHistogram:   f.histogram,
		ProfileEnabled: f.trace != "",
		OnProgress: func(p float64) {
			logger.Debug("progress", "done", p)
		},
	}
	if f.blue {
		opts.Coloring = mandelbrot.ColorBlue
	}

	img := image.NewRGBA(image.Rect(0, 0, f.width, f.height))
	if _, err := mandelbrot.RenderSync(cmd.Context(), img, opts); err != nil {
		return err
	}

	out := f.out
	if out == "" {
		out = fmt.Sprintf("mandelbrot-%s.png", time.Now().Format("20060102150405"))
	}
	if err := writePNG(out, img); err != nil {
		return err
	}
	logger.Info("wrote image", "file", out)

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
