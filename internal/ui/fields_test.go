package ui

import (
	"math"
	"testing"
)

func TestRiverMask(t *testing.T) {
	area := []float64{1, 10, 100, 1000, 0}
	mask := make([]float32, len(area))
	RiverMask(mask, area, 0.01)

	if mask[3] != 1 {
		t.Fatalf("largest area should be fully on, got %v", mask[3])
	}
	if mask[0] != 0 || mask[1] != 0 || mask[4] != 0 {
		t.Fatalf("cells below the threshold should be off: %v", mask)
	}
	if math.Abs(float64(mask[2])-0.5) > 1e-6 {
		t.Fatalf("halfway on the log scale should be 0.5, got %v", mask[2])
	}
}

func TestRiverMaskEmptyNetwork(t *testing.T) {
	mask := []float32{1, 1}
	RiverMask(mask, []float64{0, 0}, 0.01)
	if mask[0] != 0 || mask[1] != 0 {
		t.Fatalf("mask %v", mask)
	}
}

func TestHillshadeFlatAndFacing(t *testing.T) {
	const w, h = 4, 3
	flat := make([]float64, w*h)
	shade := make([]float64, w*h)
	Hillshade(shade, flat, w, h, 10)
	want := math.Sin(45 * math.Pi / 180)
	for i, s := range shade {
		if math.Abs(s-want) > 1e-12 {
			t.Fatalf("flat cell %d shade %v, want %v", i, s, want)
		}
	}

	// A surface rising towards the east faces the north-west light.
	east := make([]float64, w*h)
	west := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			east[y*w+x] = float64(x) * 5
			west[y*w+x] = float64(w-1-x) * 5
		}
	}
	se := make([]float64, w*h)
	sw := make([]float64, w*h)
	Hillshade(se, east, w, h, 10)
	Hillshade(sw, west, w, h, 10)
	if !(se[5] > want && sw[5] < want) {
		t.Fatalf("expected the east-rising slope brighter: east %v west %v", se[5], sw[5])
	}
}
