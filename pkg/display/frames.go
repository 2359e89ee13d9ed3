package display

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/willbeason/zoom-fractal/pkg/logging"
	"github.com/willbeason/zoom-fractal/pkg/scheduler"
)

// FrameWriter is a Canvas and Transition that writes what a viewer would see
// as a numbered PNG sequence: every committed frame, plus zoomed previews of
// it at FPS while a transition plays.
//
// Transition ticks run on the loop between render chunks, so a slow render
// lowers the preview frame rate rather than racing it.
type FrameWriter struct {
	Dir string
	FPS float64

	loop    *scheduler.Loop
	current *image.RGBA
	preview *image.RGBA
	scale   float64
	next    int
	err     error
}

func NewFrameWriter(loop *scheduler.Loop, dir string, fps float64) (*FrameWriter, error) {
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("creating frame directory: %w", err)
	}
	return &FrameWriter{Dir: dir, FPS: fps, loop: loop, scale: 1}, nil
}

// Err returns the first write error. Later frames are skipped once a write
// has failed.
func (fw *FrameWriter) Err() error {
	return fw.err
}

// Frames is the number of files written.
func (fw *FrameWriter) Frames() int {
	return fw.next
}

// Commit stores a copy of img as the displayed frame and writes it.
func (fw *FrameWriter) Commit(img *image.RGBA) {
	if fw.current == nil || fw.current.Bounds() != img.Bounds() {
		fw.current = image.NewRGBA(img.Bounds())
		fw.preview = image.NewRGBA(img.Bounds())
	}
	copy(fw.current.Pix, img.Pix)
	fw.write(fw.current)
}

// Animate plays a linear scale change from the current scale. Zero-duration
// changes apply immediately without writing a frame.
func (fw *FrameWriter) Animate(scale float64, d time.Duration, _ string, onComplete func()) {
	from := fw.scale
	if d <= 0 || fw.FPS <= 0 {
		fw.scale = scale
		if onComplete != nil {
			fw.loop.Defer(onComplete)
		}
		return
	}

	start := time.Now()
	interval := time.Duration(float64(time.Second) / fw.FPS)

	var tick func()
	tick = func() {
		t := min(1, float64(time.Since(start))/float64(d))
		fw.scale = from + (scale-from)*t
		if fw.current != nil {
			Zoom(fw.preview, fw.current, fw.scale)
			fw.write(fw.preview)
		}

		if t >= 1 {
			if onComplete != nil {
				onComplete()
			}
			return
		}
		fw.loop.AfterFunc(interval, tick)
	}
	fw.loop.AfterFunc(interval, tick)
}

func (fw *FrameWriter) write(img image.Image) {
	if fw.err != nil {
		return
	}

	name := filepath.Join(fw.Dir, fmt.Sprintf("frame-%05d.png", fw.next))
	if err := writePNG(name, img); err != nil {
		fw.err = err
		logging.Logger().Error("display: frame write failed", "file", name, "err", err)
		return
	}
	fw.next++
}

func writePNG(name string, img image.Image) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}

	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return fmt.Errorf("encoding %s: %w", name, err)
	}
	return f.Close()
}
