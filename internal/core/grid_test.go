package core

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestNewGridRejectsDegenerateShapes(t *testing.T) {
	cases := []struct {
		nx, ny int
		dx, dy float64
	}{
		{2, 5, 1, 1},
		{5, 2, 1, 1},
		{5, 5, 0, 1},
		{5, 5, 1, -1},
		{5, 5, math.NaN(), 1},
		{5, 5, 1, math.Inf(1)},
	}
	for _, c := range cases {
		if _, err := NewGrid(c.nx, c.ny, c.dx, c.dy); !errors.Is(err, ErrInvalidGrid) {
			t.Fatalf("NewGrid(%d, %d, %g, %g) error = %v, want ErrInvalidGrid", c.nx, c.ny, c.dx, c.dy, err)
		}
	}
}

func TestGridBoundaryClassification(t *testing.T) {
	g, err := NewGrid(4, 3, 10, 20)
	if err != nil {
		t.Fatal(err)
	}
	interior := 0
	for i := 0; i < g.Len(); i++ {
		x, y := g.XY(i)
		if g.Index(x, y) != i {
			t.Fatalf("Index(XY(%d)) = %d", i, g.Index(x, y))
		}
		onRim := x == 0 || y == 0 || x == g.NX-1 || y == g.NY-1
		if g.IsBoundary(i) != onRim {
			t.Fatalf("cell (%d,%d) boundary=%v, want %v", x, y, g.IsBoundary(i), onRim)
		}
		if !onRim {
			interior++
		}
	}
	if interior != 2 {
		t.Fatalf("expected 2 interior cells, got %d", interior)
	}
	if got := g.CellArea(); got != 200 {
		t.Fatalf("cell area = %g, want 200", got)
	}
	if got := g.Area(); got != 2400 {
		t.Fatalf("domain area = %g, want 2400", got)
	}
}

func TestGridCoordinatesAndNeighbors(t *testing.T) {
	g, err := NewGrid(3, 4, 2, 3)
	if err != nil {
		t.Fatal(err)
	}
	xs, ys := g.Coordinates()
	if len(xs) != 3 || len(ys) != 4 || xs[2] != 4 || ys[3] != 9 {
		t.Fatalf("unexpected coordinates x=%v y=%v", xs, ys)
	}
	if n := len(g.Neighbors(4)); n != 4 {
		t.Fatalf("4-connectivity returned %d neighbours", n)
	}
	n8 := g.Neighbors(8)
	if len(n8) != 8 {
		t.Fatalf("8-connectivity returned %d neighbours", len(n8))
	}
	if d := n8[7].Dist; math.Abs(d-math.Hypot(2, 3)) > 1e-12 {
		t.Fatalf("diagonal distance = %g", d)
	}
}

func TestFixedStepThrottles(t *testing.T) {
	clock := time.Unix(0, 0)
	fs := NewFixedStep(10)
	fs.now = func() time.Time { return clock }

	if !fs.ShouldStep() {
		t.Fatal("first call should consume the primed step")
	}
	if fs.ShouldStep() {
		t.Fatal("no time elapsed, expected no step")
	}
	clock = clock.Add(100 * time.Millisecond)
	if !fs.ShouldStep() {
		t.Fatal("expected a step after one period")
	}
	clock = clock.Add(10 * time.Second)
	steps := 0
	for i := 0; i < 5; i++ {
		if fs.ShouldStep() {
			steps++
		}
	}
	if steps > 2 {
		t.Fatalf("stall should not bank many steps, got %d", steps)
	}
}

func TestRNGFillUniformIsSeeded(t *testing.T) {
	a := make([]float64, 64)
	b := make([]float64, 64)
	NewRNG(42).FillUniform(a, 3)
	NewRNG(42).FillUniform(b, 3)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("same seed diverged at %d", i)
		}
		if a[i] < 0 || a[i] >= 3 {
			t.Fatalf("value %g outside [0, 3)", a[i])
		}
	}
}
