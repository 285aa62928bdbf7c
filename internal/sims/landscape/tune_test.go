package landscape

import (
	"context"
	"errors"
	"math"
	"testing"
)

func TestTuneMovesTowardsTarget(t *testing.T) {
	base := smallConfig(9, 9)
	base.Params.KSP = 1e-4
	base.Params.KDiff = 0

	start, err := New(base)
	if err != nil {
		t.Fatal(err)
	}
	if err := start.Run(nil); err != nil {
		t.Fatal(err)
	}
	initial := start.Stats().Relief
	target := initial * 3

	params, final, records, err := Tune(context.Background(), base, target, 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) == 0 || records[0].Parameter != "baseline" {
		t.Fatalf("expected a baseline record, got %v", records)
	}
	if math.Abs(final.Relief-target) > math.Abs(initial-target) {
		t.Fatalf("tuning moved away from target: %g -> %g (target %g)", initial, final.Relief, target)
	}
	if len(records) > 1 && params == base.Params {
		t.Fatal("records show an improvement but the parameters did not change")
	}
}

func TestTuneRejectsBadTarget(t *testing.T) {
	_, _, _, err := Tune(context.Background(), smallConfig(5, 5), 0, 1, 1)
	if !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}
