package colormap

import (
	"fmt"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Unreachable marks starting points that never converged, and roots found
// after the palette ran out of slots.
var Unreachable = color.RGBA{A: 255}

var paletteHex = []string{
	"#268BD2",
	"#DC322F",
	"#859900",
	"#6C71C4",
	"#B58900",
	"#CB4B16",
	"#2AA198",
	"#FDF6E3",
	"#586E75",
}

// Palette holds one color per tracked root. Its length caps the number of
// distinct roots a Newton render keeps.
var Palette = mustParsePalette(paletteHex)

func mustParsePalette(hexes []string) []color.RGBA {
	p := make([]color.RGBA, len(hexes))
	for i, h := range hexes {
		c, err := colorful.Hex(h)
		if err != nil {
			panic(fmt.Sprintf("colormap: bad palette entry %q: %v", h, err))
		}
		r, g, b := c.RGB255()
		p[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return p
}

// Shade multiplies the color channels of c by factor. Results are rounded to
// the nearest even integer and clamped to [0, 255]; alpha is unchanged.
func Shade(c color.RGBA, factor float64) color.RGBA {
	return color.RGBA{
		R: clamp8(float64(c.R) * factor),
		G: clamp8(float64(c.G) * factor),
		B: clamp8(float64(c.B) * factor),
		A: c.A,
	}
}

// Root colors a point that converged to the root with the given index after
// iters iterations. Each iteration darkens the palette color by shadeFactor.
func Root(index int, iters, shadeFactor float64) color.RGBA {
	base := Palette[index%len(Palette)]
	return Shade(base, math.Pow(shadeFactor, iters))
}

func clamp8(v float64) uint8 {
	v = math.RoundToEven(v)
	switch {
	case math.IsNaN(v), v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return uint8(v)
}
