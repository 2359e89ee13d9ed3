// Package display implements the host side of the auto-zoom: the canvas that
// shows committed frames and the scale transition played while the next
// frame renders.
package display

import (
	"image"

	"golang.org/x/image/draw"
)

// Zoom draws src magnified by scale about its centre into dst, the way a CSS
// scale transform would show it. Scales at or below 1 copy src unchanged.
func Zoom(dst, src *image.RGBA, scale float64) {
	sb := src.Bounds()
	if scale <= 1 {
		draw.Copy(dst, dst.Bounds().Min, src, sb, draw.Src, nil)
		return
	}

	w := float64(sb.Dx()) / scale
	h := float64(sb.Dy()) / scale
	cx := float64(sb.Min.X) + float64(sb.Dx())/2
	cy := float64(sb.Min.Y) + float64(sb.Dy())/2

	sr := image.Rect(int(cx-w/2), int(cy-h/2), int(cx+w/2+0.5), int(cy+h/2+0.5)).Intersect(sb)
	if sr.Empty() {
		sr = image.Rect(int(cx), int(cy), int(cx)+1, int(cy)+1).Intersect(sb)
	}
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, sr, draw.Src, nil)
}
