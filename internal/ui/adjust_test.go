package ui

import (
	"testing"

	"fastscape/internal/core"
)

func TestAdjustStepsMultiplicatively(t *testing.T) {
	ctrl := core.ParameterControl{Key: "k_sp", Factor: 2, Min: 1e-8, Max: 1e-4}

	if v, ok := Adjust(ctrl, 1e-5, 1); !ok || v != 2e-5 {
		t.Fatalf("up from 1e-5 = %g, %v", v, ok)
	}
	if v, ok := Adjust(ctrl, 1e-5, -1); !ok || v != 5e-6 {
		t.Fatalf("down from 1e-5 = %g, %v", v, ok)
	}
	if v, ok := Adjust(ctrl, 8e-5, 1); !ok || v != 1e-4 {
		t.Fatalf("up near max = %g, %v", v, ok)
	}
	if _, ok := Adjust(ctrl, 1e-4, 1); ok {
		t.Fatal("stepping past max should be refused")
	}
}

func TestAdjustCrossesZero(t *testing.T) {
	ctrl := core.ParameterControl{Factor: 2, Min: 1e-3, Max: 1}

	if v, ok := Adjust(ctrl, 1.5e-3, -1); !ok || v != 0 {
		t.Fatalf("down below min = %g, %v", v, ok)
	}
	if _, ok := Adjust(ctrl, 0, -1); ok {
		t.Fatal("zero cannot go lower")
	}
	if v, ok := Adjust(ctrl, 0, 1); !ok || v != 1e-3 {
		t.Fatalf("up from zero = %g, %v", v, ok)
	}
}
