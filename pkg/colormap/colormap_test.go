package colormap

import (
	"image/color"
	"testing"
)

func TestHSLToRGBA(t *testing.T) {
	tests := []struct {
		name    string
		h, s, l float64
		want    color.RGBA
	}{
		{"red", 0, 1, 0.5, color.RGBA{255, 0, 0, 255}},
		{"green", 1.0 / 3.0, 1, 0.5, color.RGBA{0, 255, 0, 255}},
		{"blue", 2.0 / 3.0, 1, 0.5, color.RGBA{0, 0, 255, 255}},
		{"white", 0, 0, 1, color.RGBA{255, 255, 255, 255}},
		{"black", 0.5, 0.4, 0, color.RGBA{0, 0, 0, 255}},
		{"gray", 0.2, 0, 0.5, color.RGBA{128, 128, 128, 255}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HSLToRGBA(tt.h, tt.s, tt.l); got != tt.want {
				t.Errorf("HSLToRGBA(%v, %v, %v) = %v, want %v", tt.h, tt.s, tt.l, got, tt.want)
			}
		})
	}
}

func TestLinear(t *testing.T) {
	if got := Linear(100, true); got != Black {
		t.Errorf("interior = %v, want black", got)
	}

	c := Linear(3.5, false)
	if c == Black {
		t.Error("exterior point colored black")
	}
	if c.A != 255 {
		t.Errorf("alpha = %d, want 255", c.A)
	}

	// Hue bottoms out at zero (red-ish) for very long escapes.
	if a, b := Linear(1000, false), Linear(2000, false); a != b {
		t.Errorf("hue not clamped: %v != %v", a, b)
	}
}

func TestEqualized(t *testing.T) {
	if got := Equalized(0.5, true); got != Black {
		t.Errorf("interior = %v, want black", got)
	}
	if Equalized(0, false) == Equalized(1, false) {
		t.Error("hue ends map to the same color")
	}
	if got, want := Equalized(1, false), HSLToRGBA(0, Saturation, Lightness); got != want {
		t.Errorf("Equalized(1) = %v, want %v", got, want)
	}
}

func TestBlue(t *testing.T) {
	if got := Blue(0); got != (color.RGBA{B: 255, A: 255}) {
		t.Errorf("Blue(0) = %v", got)
	}
	if got := Blue(40); got != (color.RGBA{A: 255}) {
		t.Errorf("Blue(40) = %v, want black", got)
	}
}

func TestPalette(t *testing.T) {
	if len(Palette) != 9 {
		t.Fatalf("palette has %d entries, want 9", len(Palette))
	}
	if want := (color.RGBA{0x26, 0x8B, 0xD2, 0xFF}); Palette[0] != want {
		t.Errorf("Palette[0] = %v, want %v", Palette[0], want)
	}
	if want := (color.RGBA{0x58, 0x6E, 0x75, 0xFF}); Palette[8] != want {
		t.Errorf("Palette[8] = %v, want %v", Palette[8], want)
	}
}

func TestShade(t *testing.T) {
	c := color.RGBA{200, 100, 50, 255}

	if got := Shade(c, 1); got != c {
		t.Errorf("Shade(c, 1) = %v, want %v", got, c)
	}
	if got, want := Shade(c, 0.5), (color.RGBA{100, 50, 25, 255}); got != want {
		t.Errorf("Shade(c, 0.5) = %v, want %v", got, want)
	}
	if got, want := Shade(c, 2), (color.RGBA{255, 200, 100, 255}); got != want {
		t.Errorf("Shade(c, 2) = %v, want %v", got, want)
	}
	if got := Shade(color.RGBA{10, 10, 10, 7}, 0); got != (color.RGBA{A: 7}) {
		t.Errorf("alpha changed: %v", got)
	}
}

func TestRoot_DarkensWithIterations(t *testing.T) {
	fast := Root(1, 2, 0.9)
	slow := Root(1, 10, 0.9)
	if slow.R >= fast.R || slow.G >= fast.G {
		t.Errorf("more iterations should be darker: fast %v, slow %v", fast, slow)
	}
	if Root(10, 0, 0.9) != Palette[1] {
		t.Error("index does not wrap around the palette")
	}
}
