package mandelbrot

import "math"

// Histogram counts pixels by integer escape count. Index maxIters holds the
// interior points, so the counts always sum to Total.
type Histogram struct {
	Counts []int
	Total  int

	// below[i] is the sum of Counts[:i], built on first use by Hue.
	below []int
}

func NewHistogram(maxIters int) *Histogram {
	return &Histogram{Counts: make([]int, maxIters+1)}
}

// Add records one pixel that escaped after iters steps.
func (h *Histogram) Add(iters int) {
	h.Counts[iters]++
	h.Total++
	h.below = nil
}

// Hue maps a fractional escape count to [0, 1]: the share of pixels that
// escaped earlier, plus the fractional part of the pixel's own bucket.
func (h *Histogram) Hue(smooth float64) float64 {
	if h.Total == 0 {
		return 0
	}
	if h.below == nil {
		h.below = make([]int, len(h.Counts)+1)
		for i, c := range h.Counts {
			h.below[i+1] = h.below[i] + c
		}
	}

	whole := math.Floor(smooth)
	frac := smooth - whole

	// Very wide views can push the smoothed count slightly below zero.
	bucket := int(whole)
	switch {
	case bucket < 0:
		bucket, frac = 0, 0
	case bucket >= len(h.Counts):
		bucket, frac = len(h.Counts)-1, 1
	}

	hue := float64(h.below[bucket]) + frac*float64(h.Counts[bucket])
	return hue / float64(h.Total)
}
