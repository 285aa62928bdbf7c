package app

import (
	"flag"
	"testing"

	"fastscape/internal/sims/landscape"
)

func TestConfigBindAndSettings(t *testing.T) {
	cfg := NewConfig()
	fs := flag.NewFlagSet("view", flag.ContinueOnError)
	cfg.Bind(fs)
	err := fs.Parse([]string{"-width", "64", "-seed", "7", "-set", "k_sp=2e-5", "-set", "x_size=80"})
	if err != nil {
		t.Fatal(err)
	}

	m, err := cfg.Settings()
	if err != nil {
		t.Fatal(err)
	}
	if m["x_size"] != "80" {
		t.Fatalf("override should win over -width, got %q", m["x_size"])
	}
	if m["y_size"] != "160" || m["seed"] != "7" || m["k_sp"] != "2e-5" {
		t.Fatalf("unexpected settings %v", m)
	}
	if m["time_total"] != "1e+09" {
		t.Fatalf("time_total %q", m["time_total"])
	}
}

func TestKVListRejectsBareKeys(t *testing.T) {
	l := KVList{"k_sp"}
	if _, err := l.Map(); err == nil {
		t.Fatal("expected an error for an entry without '='")
	}
}

func TestKVListAppliesInArgumentOrder(t *testing.T) {
	cfg := landscape.DefaultConfig()
	if err := (KVList{"spacing=50", "y_spacing=100"}).Apply(cfg.Set); err != nil {
		t.Fatal(err)
	}
	if cfg.XSpacing != 50 || cfg.YSpacing != 100 {
		t.Fatalf("spacing %g x %g, want 50 x 100", cfg.XSpacing, cfg.YSpacing)
	}

	cfg = landscape.DefaultConfig()
	if err := (KVList{"y_spacing=100", "spacing=50"}).Apply(cfg.Set); err != nil {
		t.Fatal(err)
	}
	if cfg.XSpacing != 50 || cfg.YSpacing != 50 {
		t.Fatalf("spacing %g x %g, want the later override to win", cfg.XSpacing, cfg.YSpacing)
	}

	if err := (KVList{"k_sp=abc"}).Apply(cfg.Set); err == nil {
		t.Fatal("expected a parse error")
	}
}
