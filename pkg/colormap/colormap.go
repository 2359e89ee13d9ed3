// Package colormap turns iteration counts and root indices into pixel colors.
package colormap

import (
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Black is used for Mandelbrot interior points.
var Black = color.RGBA{A: 255}

// Saturation and lightness shared by both Mandelbrot hue formulas.
const (
	Saturation = 0.4
	Lightness  = 0.5
)

// HSLToRGBA converts hue, saturation and lightness, all in [0, 1], to an opaque
// 8-bit color.
func HSLToRGBA(h, s, l float64) color.RGBA {
	r, g, b := colorful.Hsl(h*360, s, l).RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// Linear colors an escape count by a hue that falls linearly with the
// (possibly fractional) number of iterations. Interior points are black.
func Linear(iters float64, interior bool) color.RGBA {
	if interior {
		return Black
	}
	return HSLToRGBA(math.Max(0, (200-0.7*iters)/360), Saturation, Lightness)
}

// Equalized colors a point from its histogram-normalized position in [0, 1].
// Interior points are black.
func Equalized(hue float64, interior bool) color.RGBA {
	if interior {
		return Black
	}
	return HSLToRGBA(math.Max(0, (200-200*hue)/360), Saturation, Lightness)
}

// Blue is a plain blue ramp that fades to black after about 25 iterations.
func Blue(iters float64) color.RGBA {
	return color.RGBA{B: uint8(math.Max(0, math.Floor(255-10*iters))), A: 255}
}
