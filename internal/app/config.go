package app

import (
	"flag"
	"fmt"
	"strconv"
	"strings"
)

// Config holds the viewer settings bound to command-line flags.
type Config struct {
	Sim            string
	Scale          int
	TPS            int
	StepsPerSecond int
	Seed           int64
	Width          int
	Height         int
	Years          float64
	Panel          int
	Overrides      KVList
}

// NewConfig returns the viewer defaults: a grid small enough to step at
// interactive rates and a long clock so the landscape keeps evolving.
func NewConfig() *Config {
	return &Config{
		Sim:            "landscape",
		Scale:          3,
		TPS:            60,
		StepsPerSecond: 20,
		Seed:           1337,
		Width:          240,
		Height:         160,
		Years:          1e9,
		Panel:          240,
	}
}

// Bind registers the config fields on fs.
func (c *Config) Bind(fs *flag.FlagSet) {
	fs.StringVar(&c.Sim, "sim", c.Sim, "simulation to view")
	fs.IntVar(&c.Scale, "scale", c.Scale, "pixels per cell")
	fs.IntVar(&c.TPS, "tps", c.TPS, "ebiten ticks per second")
	fs.IntVar(&c.StepsPerSecond, "sps", c.StepsPerSecond, "model steps per second")
	fs.Int64Var(&c.Seed, "seed", c.Seed, "initial surface seed")
	fs.IntVar(&c.Width, "width", c.Width, "grid columns")
	fs.IntVar(&c.Height, "height", c.Height, "grid rows")
	fs.Float64Var(&c.Years, "years", c.Years, "total simulated time (yr)")
	fs.IntVar(&c.Panel, "panel", c.Panel, "parameter panel width in pixels (0 hides it)")
	fs.Var(&c.Overrides, "set", "model setting in key=value form (repeatable)")
}

// Settings merges the viewer defaults with the -set overrides into the map
// passed to the simulation factory. Overrides win.
func (c *Config) Settings() (map[string]string, error) {
	m := map[string]string{
		"x_size":     strconv.Itoa(c.Width),
		"y_size":     strconv.Itoa(c.Height),
		"time_total": strconv.FormatFloat(c.Years, 'g', -1, 64),
		"seed":       strconv.FormatInt(c.Seed, 10),
		"initial":    "simplex",
	}
	over, err := c.Overrides.Map()
	if err != nil {
		return nil, err
	}
	for k, v := range over {
		m[k] = v
	}
	return m, nil
}

// KVList collects repeated key=value flags.
type KVList []string

func (l *KVList) String() string {
	return strings.Join(*l, ",")
}

func (l *KVList) Set(value string) error {
	*l = append(*l, value)
	return nil
}

// Apply calls set for every entry in the order given on the command line, so
// a later override wins over an earlier one touching the same field.
func (l KVList) Apply(set func(key, value string) error) error {
	for _, kv := range l {
		key, value, ok := strings.Cut(kv, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return fmt.Errorf("app: override %q is not key=value", kv)
		}
		if err := set(key, value); err != nil {
			return err
		}
	}
	return nil
}

// Map splits every entry on its first '='.
func (l KVList) Map() (map[string]string, error) {
	m := make(map[string]string, len(l))
	for _, kv := range l {
		key, value, ok := strings.Cut(kv, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("app: override %q is not key=value", kv)
		}
		m[key] = value
	}
	return m, nil
}
