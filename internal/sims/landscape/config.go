package landscape

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
)

// Diffusion schemes.
const (
	DiffusionADI      = "adi"
	DiffusionImplicit = "implicit"
)

// Initial surface generators.
const (
	InitialUniform = "uniform"
	InitialSimplex = "simplex"
)

// Params holds the process coefficients of the landscape model.
type Params struct {
	// KSP is the stream power law coefficient.
	KSP float64 `json:"k_sp"`
	// KDiff is the hillslope diffusivity (m**2/yr).
	KDiff float64 `json:"k_diff"`
	// URate is the block uplift rate (m/yr).
	URate float64 `json:"u_rate"`
	// MExp and NExp are the drainage area and slope exponents.
	MExp float64 `json:"m_exp"`
	NExp float64 `json:"n_exp"`
}

// Config controls the grid, clock and numerics of a landscape run.
type Config struct {
	XSize    int     `json:"x_size"`
	YSize    int     `json:"y_size"`
	XSpacing float64 `json:"x_spacing"`
	YSpacing float64 `json:"y_spacing"`

	TimeStep  float64 `json:"time_step"`
	TimeTotal float64 `json:"time_total"`

	Seed             int64   `json:"seed"`
	Initial          string  `json:"initial"`
	InitialAmplitude float64 `json:"initial_amplitude"`

	Connectivity int    `json:"connectivity"`
	Diffusion    string `json:"diffusion"`

	// SnapshotEvery records the elevation every N steps. Zero keeps only the
	// grid metadata and the final state.
	SnapshotEvery int `json:"snapshot_every"`
	// Workers bounds the goroutines used by the row and column sweeps of the
	// diffusion solver. Results do not depend on it.
	Workers int `json:"workers"`

	Params Params `json:"params"`
}

// DefaultConfig returns the configuration of the reference run.
func DefaultConfig() Config {
	return Config{
		XSize:            601,
		YSize:            401,
		XSpacing:         200,
		YSpacing:         200,
		TimeStep:         1e5,
		TimeTotal:        1e7,
		Seed:             1337,
		Initial:          InitialUniform,
		InitialAmplitude: 1,
		Connectivity:     8,
		Diffusion:        DiffusionADI,
		Workers:          1,
		Params: Params{
			KSP:   1e-5,
			KDiff: 1e-2,
			URate: 1e-3,
			MExp:  0.4,
			NExp:  1,
		},
	}
}

// Steps returns the number of steps needed to reach TimeTotal, counting a
// shortened final step.
func (c Config) Steps() int {
	if c.TimeStep <= 0 {
		return 0
	}
	return int(math.Ceil(c.TimeTotal/c.TimeStep - 1e-9))
}

// Validate checks every field and returns an error wrapping ErrConfiguration
// for the first invalid one.
func (c Config) Validate() error {
	bad := func(field string, value any, want string) error {
		return fmt.Errorf("%w: %s=%v (%s)", ErrConfiguration, field, value, want)
	}
	finite := func(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

	switch {
	case c.XSize < 3:
		return bad("x_size", c.XSize, "must be >= 3")
	case c.YSize < 3:
		return bad("y_size", c.YSize, "must be >= 3")
	case !(c.XSpacing > 0) || !finite(c.XSpacing):
		return bad("x_spacing", c.XSpacing, "must be > 0")
	case !(c.YSpacing > 0) || !finite(c.YSpacing):
		return bad("y_spacing", c.YSpacing, "must be > 0")
	case !(c.TimeStep > 0) || !finite(c.TimeStep):
		return bad("time_step", c.TimeStep, "must be > 0")
	case !(c.TimeTotal > c.TimeStep) || !finite(c.TimeTotal):
		return bad("time_total", c.TimeTotal, "must be > time_step")
	case !(c.Params.KSP >= 0) || !finite(c.Params.KSP):
		return bad("k_sp", c.Params.KSP, "must be >= 0")
	case !(c.Params.KDiff >= 0) || !finite(c.Params.KDiff):
		return bad("k_diff", c.Params.KDiff, "must be >= 0")
	case !(c.Params.URate >= 0) || !finite(c.Params.URate):
		return bad("u_rate", c.Params.URate, "must be >= 0")
	case !(c.Params.MExp >= 0) || !finite(c.Params.MExp):
		return bad("m_exp", c.Params.MExp, "must be >= 0")
	case !(c.Params.NExp > 0) || !finite(c.Params.NExp):
		return bad("n_exp", c.Params.NExp, "must be > 0")
	case c.Connectivity != 4 && c.Connectivity != 8:
		return bad("connectivity", c.Connectivity, "must be 4 or 8")
	case c.Diffusion != DiffusionADI && c.Diffusion != DiffusionImplicit:
		return bad("diffusion", c.Diffusion, "must be adi or implicit")
	case c.Initial != InitialUniform && c.Initial != InitialSimplex:
		return bad("initial", c.Initial, "must be uniform or simplex")
	case !(c.InitialAmplitude >= 0) || !finite(c.InitialAmplitude):
		return bad("initial_amplitude", c.InitialAmplitude, "must be >= 0")
	case c.SnapshotEvery < 0:
		return bad("snapshot_every", c.SnapshotEvery, "must be >= 0")
	case c.Workers < 0:
		return bad("workers", c.Workers, "must be >= 0")
	}
	return nil
}

// FromMap populates the config from a string map (flag-style key/value
// pairs). Unknown keys and unparsable values are reported as errors so a
// typo in a sweep does not silently run the defaults.
func FromMap(cfg map[string]string) (Config, error) {
	c := DefaultConfig()
	// Sorted so "spacing" applies before the per-axis overrides.
	keys := make([]string, 0, len(cfg))
	for k := range cfg {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := c.Set(k, cfg[k]); err != nil {
			return c, err
		}
	}
	return c, nil
}

// Set applies a single key=value override.
func (c *Config) Set(key, value string) error {
	value = strings.TrimSpace(value)
	parseFloat := func(dst *float64) error {
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %v", ErrConfiguration, key, value, err)
		}
		*dst = v
		return nil
	}
	parseInt := func(dst *int) error {
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %v", ErrConfiguration, key, value, err)
		}
		*dst = v
		return nil
	}

	switch key {
	case "x_size":
		return parseInt(&c.XSize)
	case "y_size":
		return parseInt(&c.YSize)
	case "spacing":
		if err := parseFloat(&c.XSpacing); err != nil {
			return err
		}
		c.YSpacing = c.XSpacing
		return nil
	case "x_spacing":
		return parseFloat(&c.XSpacing)
	case "y_spacing":
		return parseFloat(&c.YSpacing)
	case "time_step":
		return parseFloat(&c.TimeStep)
	case "time_total":
		return parseFloat(&c.TimeTotal)
	case "seed":
		v, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: seed=%q: %v", ErrConfiguration, value, err)
		}
		c.Seed = v
		return nil
	case "initial":
		c.Initial = value
		return nil
	case "initial_amplitude":
		return parseFloat(&c.InitialAmplitude)
	case "connectivity":
		return parseInt(&c.Connectivity)
	case "diffusion":
		c.Diffusion = value
		return nil
	case "snapshot_every":
		return parseInt(&c.SnapshotEvery)
	case "workers":
		return parseInt(&c.Workers)
	case "k_sp":
		return parseFloat(&c.Params.KSP)
	case "k_diff":
		return parseFloat(&c.Params.KDiff)
	case "u_rate":
		return parseFloat(&c.Params.URate)
	case "m_exp":
		return parseFloat(&c.Params.MExp)
	case "n_exp":
		return parseFloat(&c.Params.NExp)
	}
	return fmt.Errorf("%w: unknown key %q", ErrConfiguration, key)
}

// LoadFile reads a JSON settings file on top of the defaults. Fields absent
// from the file keep their default values.
func LoadFile(path string) (Config, error) {
	c := DefaultConfig()
	f, err := os.Open(path)
	if err != nil {
		return c, err
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		return c, fmt.Errorf("%w: parsing %s: %v", ErrConfiguration, path, err)
	}
	return c, nil
}
