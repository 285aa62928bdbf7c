package ui

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// RiverMask maps drainage area onto [0,1] on a log scale, so that the
// largest trunk channel is 1 and cells draining less than threshold times
// the maximum area are 0.
func RiverMask(dst []float32, area []float64, threshold float64) {
	if len(area) == 0 {
		return
	}
	hi := floats.Max(area)
	if hi <= 0 {
		for i := range dst {
			dst[i] = 0
		}
		return
	}
	lo := hi * threshold
	span := math.Log(hi / lo)
	for i, a := range area {
		if a <= lo || span <= 0 {
			dst[i] = 0
			continue
		}
		dst[i] = float32(clamp01(math.Log(a/lo) / span))
	}
}

// Hillshade lights the w×h elevation field from the north-west and writes a
// brightness in [0,1] per cell. Gradients use central differences, one-sided
// on the edges.
func Hillshade(dst []float64, z []float64, w, h int, spacing float64) {
	if len(z) != w*h || w == 0 || h == 0 {
		return
	}
	if spacing <= 0 {
		spacing = 1
	}
	const (
		azimuth  = 315 * math.Pi / 180
		altitude = 45 * math.Pi / 180
	)
	lx := math.Cos(altitude) * math.Sin(azimuth)
	ly := -math.Cos(altitude) * math.Cos(azimuth)
	lz := math.Sin(altitude)
	at := func(x, y int) float64 {
		x = min(max(x, 0), w-1)
		y = min(max(y, 0), h-1)
		return z[y*w+x]
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dx := (at(x+1, y) - at(x-1, y)) / (float64(min(x+1, w-1)-max(x-1, 0)) * spacing)
			dy := (at(x, y+1) - at(x, y-1)) / (float64(min(y+1, h-1)-max(y-1, 0)) * spacing)
			if w == 1 {
				dx = 0
			}
			if h == 1 {
				dy = 0
			}
			// Surface normal is (-dx, -dy, 1).
			n := math.Sqrt(dx*dx + dy*dy + 1)
			dst[y*w+x] = clamp01((-dx*lx - dy*ly + lz) / n)
		}
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
