package landscape

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	if cfg.Steps() != 100 {
		t.Fatalf("default run has %d steps, want 100", cfg.Steps())
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	mutations := map[string]func(*Config){
		"x_size":       func(c *Config) { c.XSize = 2 },
		"y_size":       func(c *Config) { c.YSize = 0 },
		"x_spacing":    func(c *Config) { c.XSpacing = 0 },
		"y_spacing":    func(c *Config) { c.YSpacing = math.NaN() },
		"time_step":    func(c *Config) { c.TimeStep = -1 },
		"time_total":   func(c *Config) { c.TimeTotal = c.TimeStep },
		"k_sp":         func(c *Config) { c.Params.KSP = -1e-5 },
		"k_diff":       func(c *Config) { c.Params.KDiff = math.Inf(1) },
		"u_rate":       func(c *Config) { c.Params.URate = -1 },
		"n_exp":        func(c *Config) { c.Params.NExp = 0 },
		"connectivity": func(c *Config) { c.Connectivity = 6 },
		"diffusion":    func(c *Config) { c.Diffusion = "explicit" },
		"initial":      func(c *Config) { c.Initial = "fractal" },
		"snapshot":     func(c *Config) { c.SnapshotEvery = -1 },
	}
	for name, mutate := range mutations {
		cfg := DefaultConfig()
		mutate(&cfg)
		if err := cfg.Validate(); !errors.Is(err, ErrConfiguration) {
			t.Fatalf("%s: expected ErrConfiguration, got %v", name, err)
		}
		if _, err := New(cfg); !errors.Is(err, ErrConfiguration) {
			t.Fatalf("%s: New accepted an invalid config: %v", name, err)
		}
	}
}

func TestFromMap(t *testing.T) {
	cfg, err := FromMap(map[string]string{
		"x_spacing": "50",
		"spacing":   "25",
		"k_sp":      "2e-5",
		"seed":      "42",
		"diffusion": "implicit",
	})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.XSpacing != 50 || cfg.YSpacing != 25 {
		t.Fatalf("spacing %gx%g, want per-axis override to win", cfg.XSpacing, cfg.YSpacing)
	}
	if cfg.Params.KSP != 2e-5 || cfg.Seed != 42 || cfg.Diffusion != DiffusionImplicit {
		t.Fatalf("unexpected config %+v", cfg)
	}

	if _, err := FromMap(map[string]string{"k_spp": "1"}); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("unknown key: %v", err)
	}
	if _, err := FromMap(map[string]string{"x_size": "many"}); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("bad int: %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.json")
	body := `{"x_size": 50, "time_total": 5e5, "params": {"k_sp": 3e-5, "m_exp": 0.5, "n_exp": 1}}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.XSize != 50 || cfg.YSize != 401 || cfg.TimeTotal != 5e5 || cfg.Params.KSP != 3e-5 || cfg.Params.MExp != 0.5 {
		t.Fatalf("unexpected config %+v", cfg)
	}

	if err := os.WriteFile(path, []byte(`{"x_sise": 50}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("misspelt field: %v", err)
	}
}
