package landscape

import (
	"context"
	"errors"
	"testing"
)

func TestSweepKeepsInputOrder(t *testing.T) {
	base := smallConfig(12, 10)
	sets := ParamGrid(base.Params, []float64{0, 1e-4}, []float64{0.01}, []float64{0, 1e-3})
	sets = append(sets, Params{KSP: -1, NExp: 1})
	if len(sets) != 5 {
		t.Fatalf("grid has %d sets", len(sets))
	}

	results, err := Sweep(context.Background(), base, sets, 3)
	if err != nil {
		t.Fatal(err)
	}
	for i, r := range results {
		if r.Index != i || r.Params != sets[i] {
			t.Fatalf("result %d out of place: %+v", i, r)
		}
	}
	if !errors.Is(results[4].Err, ErrConfiguration) {
		t.Fatalf("invalid set error %v", results[4].Err)
	}

	// The sweep must agree with a standalone run.
	cfg := base
	cfg.Params = sets[3]
	m, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Run(nil); err != nil {
		t.Fatal(err)
	}
	if m.Stats() != results[3].Final {
		t.Fatalf("sweep stats %+v differ from direct run %+v", results[3].Final, m.Stats())
	}

	SortByRelief(results)
	if results[len(results)-1].Err == nil {
		t.Fatal("failed run should sort last")
	}
	for i := 1; i < len(results)-1; i++ {
		if results[i].Final.Relief > results[i-1].Final.Relief {
			t.Fatalf("results not sorted by relief at %d", i)
		}
	}
}

func TestSweepHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Sweep(ctx, smallConfig(6, 6), []Params{DefaultConfig().Params}, 1)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
}
