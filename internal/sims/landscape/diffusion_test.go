package landscape

import (
	"math"
	"slices"
	"testing"
)

func peakConfig(scheme string) Config {
	cfg := smallConfig(5, 5)
	cfg.XSpacing, cfg.YSpacing = 1, 1
	cfg.TimeStep, cfg.TimeTotal = 1, 2
	cfg.Diffusion = scheme
	cfg.Params = Params{KDiff: 0.1, MExp: 0.4, NExp: 1}
	return cfg
}

func TestDiffusionSpreadsSinglePeak(t *testing.T) {
	for _, scheme := range []string{DiffusionADI, DiffusionImplicit} {
		cfg := peakConfig(scheme)
		z := make([]float64, cfg.XSize*cfg.YSize)
		z[2*cfg.XSize+2] = 10
		m, err := NewWithElevation(cfg, z)
		if err != nil {
			t.Fatal(err)
		}
		before := interiorSum(m)
		if err := m.Step(); err != nil {
			t.Fatalf("%s: %v", scheme, err)
		}
		g := m.Grid()
		after := m.Topography().Elevation()
		if peak := after[g.Index(2, 2)]; !(peak < 10) {
			t.Fatalf("%s: peak %g did not decrease", scheme, peak)
		}
		for _, nb := range [][2]int{{1, 2}, {3, 2}, {2, 1}, {2, 3}} {
			if v := after[g.Index(nb[0], nb[1])]; !(v > 0) {
				t.Fatalf("%s: neighbour %v stayed at %g", scheme, nb, v)
			}
		}
		for i, v := range after {
			if g.IsBoundary(i) && v != 0 {
				t.Fatalf("%s: boundary cell %d moved to %g", scheme, i, v)
			}
		}
		// Mass only leaves through the fixed edge.
		if got := interiorSum(m); got > before+1e-12 || got <= 0 {
			t.Fatalf("%s: interior mass %g, started at %g", scheme, got, before)
		}
	}
}

func TestDiffusionMaxNeverGrows(t *testing.T) {
	for _, scheme := range []string{DiffusionADI, DiffusionImplicit} {
		cfg := smallConfig(21, 21)
		cfg.XSpacing, cfg.YSpacing = 10, 10
		cfg.TimeStep, cfg.TimeTotal = 10, 60
		cfg.Diffusion = scheme
		cfg.Params = Params{KDiff: 1, MExp: 0.4, NExp: 1}

		z := RandomSurface(mustGrid(t, 21, 21, 10, 10), 5, 10)
		for i := range z {
			x, y := i%21, i/21
			if x == 0 || y == 0 || x == 20 || y == 20 {
				z[i] = 0
			}
		}
		z[10*21+10] = 40
		m, err := NewWithElevation(cfg, z)
		if err != nil {
			t.Fatal(err)
		}
		prev := m.Stats().MaxElevation
		for m.State() != StateCompleted {
			if err := m.Step(); err != nil {
				t.Fatalf("%s: %v", scheme, err)
			}
			cur := m.Stats().MaxElevation
			if cur > prev+1e-12 {
				t.Fatalf("%s step %d: max rose from %g to %g", scheme, m.StepCount(), prev, cur)
			}
			prev = cur
		}
	}
}

// Steps far beyond the explicit limit (kd*dt/dx^2 = 100) must still smooth:
// no new maximum or minimum, and a peak or pit relaxes towards the edges.
func TestDiffusionLargeStepStaysWithinBounds(t *testing.T) {
	for _, scheme := range []string{DiffusionADI, DiffusionImplicit} {
		for _, bump := range []float64{10, -10} {
			g := mustGrid(t, 9, 9, 1, 1)
			z := make([]float64, g.Len())
			z[g.Index(4, 4)] = bump
			lo, hi := math.Min(bump, 0), math.Max(bump, 0)
			s := NewDiffusionSolver(g, scheme, 2)
			for step := 0; step < 3; step++ {
				if err := s.Apply(z, 1, 100); err != nil {
					t.Fatalf("%s: %v", scheme, err)
				}
				for i, v := range z {
					if v > hi+1e-9 || v < lo-1e-9 {
						t.Fatalf("%s bump=%g step %d: cell %d at %g outside [%g, %g]", scheme, bump, step, i, v, lo, hi)
					}
				}
			}
			if centre := math.Abs(z[g.Index(4, 4)]); centre > 0.5 {
				t.Fatalf("%s bump=%g: centre still at %g after three long steps", scheme, bump, z[g.Index(4, 4)])
			}
		}
	}
}

func TestDiffusionPreservesPlane(t *testing.T) {
	for _, scheme := range []string{DiffusionADI, DiffusionImplicit} {
		g := mustGrid(t, 12, 9, 3, 2)
		z := make([]float64, g.Len())
		for i := range z {
			x, y := g.XY(i)
			z[i] = 2*float64(x) + 0.5*float64(y)
		}
		want := append([]float64(nil), z...)
		s := NewDiffusionSolver(g, scheme, 2)
		if err := s.Apply(z, 5, 100); err != nil {
			t.Fatalf("%s: %v", scheme, err)
		}
		for i := range z {
			if math.Abs(z[i]-want[i]) > 1e-8 {
				t.Fatalf("%s: cell %d moved from %g to %g", scheme, i, want[i], z[i])
			}
		}
	}
}

func TestDiffusionWorkerCountDoesNotChangeResult(t *testing.T) {
	g := mustGrid(t, 40, 31, 50, 50)
	base := RandomSurface(g, 21, 100)

	var ref []float64
	for _, workers := range []int{1, 3, 8} {
		z := append([]float64(nil), base...)
		s := NewDiffusionSolver(g, DiffusionADI, workers)
		for step := 0; step < 3; step++ {
			if err := s.Apply(z, 0.5, 1000); err != nil {
				t.Fatal(err)
			}
		}
		if ref == nil {
			ref = z
			continue
		}
		if !slices.Equal(ref, z) {
			t.Fatalf("workers=%d produced a different field", workers)
		}
	}
}

func TestDiffusionZeroCoefficientIsNoop(t *testing.T) {
	g := mustGrid(t, 6, 6, 1, 1)
	z := RandomSurface(g, 1, 1)
	want := append([]float64(nil), z...)
	if err := NewDiffusionSolver(g, DiffusionADI, 1).Apply(z, 0, 10); err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(z, want) {
		t.Fatal("zero diffusivity changed the field")
	}
}
