package landscape

import (
	"math"
	"testing"
)

func TestErosionSingleCellClosedForm(t *testing.T) {
	g := mustGrid(t, 3, 3, 1, 1)
	z := make([]float64, g.Len())
	centre := g.Index(1, 1)
	z[centre] = 10
	r := routed(t, g, 8, z)

	p := Params{KSP: 1, MExp: 0.4, NExp: 1}
	if err := NewErosionSolver(g).Apply(z, r, p, 1); err != nil {
		t.Fatal(err)
	}
	// A = 1, d = 1, f = 1: z = (10 + 0) / 2.
	if math.Abs(z[centre]-5) > 1e-12 {
		t.Fatalf("centre elevation %g, want 5", z[centre])
	}
	for i, v := range z {
		if i != centre && v != 0 {
			t.Fatalf("boundary cell %d moved to %g", i, v)
		}
	}
}

func TestErosionNeverDeposits(t *testing.T) {
	g := mustGrid(t, 7, 7, 1, 1)
	z := bowl(g, 5, 1)
	r := routed(t, g, 8, z)
	centre := g.Index(3, 3)

	if err := NewErosionSolver(g).Apply(z, r, Params{KSP: 0.5, MExp: 0.5, NExp: 1}, 1); err != nil {
		t.Fatal(err)
	}
	// The pit drains uphill across its rim and must not be raised or cut.
	if z[centre] != 1 {
		t.Fatalf("pit elevation changed to %g", z[centre])
	}
}

func TestSolveStreamPower(t *testing.T) {
	cases := []struct {
		h0, f, n float64
		want     float64
	}{
		{h0: 10, f: 1, n: 1, want: 5},
		// h + f h^2 = h0
		{h0: 10, f: 0.5, n: 2, want: (-1 + math.Sqrt(1+4*0.5*10)) / (2 * 0.5)},
		{h0: 3, f: 2, n: 2, want: (-1 + math.Sqrt(1+4*2*3)) / (2 * 2)},
	}
	for _, c := range cases {
		got, err := solveStreamPower(c.h0, c.f, c.n)
		if err != nil {
			t.Fatalf("h0=%g f=%g n=%g: %v", c.h0, c.f, c.n, err)
		}
		if math.Abs(got-c.want) > 1e-5 {
			t.Fatalf("h0=%g f=%g n=%g: got %g, want %g", c.h0, c.f, c.n, got, c.want)
		}
	}

	// Sublinear slope exponent: check the residual instead of a closed form.
	h0, f, n := 4.0, 3.0, 0.5
	h, err := solveStreamPower(h0, f, n)
	if err != nil {
		t.Fatal(err)
	}
	if h <= 0 || h > h0 {
		t.Fatalf("solution %g outside (0, %g]", h, h0)
	}
	if res := h - h0 + f*math.Pow(h, n); math.Abs(res) > 1e-4 {
		t.Fatalf("residual %g too large", res)
	}
}

func TestErosionOnlyRemovesMass(t *testing.T) {
	for _, n := range []float64{1, 1.5} {
		cfg := smallConfig(30, 20)
		cfg.Initial = InitialSimplex
		cfg.InitialAmplitude = 50
		cfg.Params = Params{KSP: 1e-4, MExp: 0.4, NExp: n}
		m, err := New(cfg)
		if err != nil {
			t.Fatal(err)
		}
		prev := interiorSum(m)
		for m.State() != StateCompleted {
			if err := m.Step(); err != nil {
				t.Fatalf("n=%g: %v", n, err)
			}
			cur := interiorSum(m)
			if cur > prev+1e-9 {
				t.Fatalf("n=%g step %d: interior mass rose from %g to %g", n, m.StepCount(), prev, cur)
			}
			prev = cur
		}
	}
}
