package landscape

import (
	"math"
	"strconv"

	"fastscape/internal/core"
)

// Parameters reports the run configuration grouped for display.
func (m *Model) Parameters() core.ParameterSnapshot {
	c := m.cfg
	p := c.Params
	groups := []core.ParameterGroup{
		{
			Name: "Grid",
			Params: []core.Parameter{
				intParam("x_size", "X size", c.XSize),
				intParam("y_size", "Y size", c.YSize),
				floatParam("x_spacing", "X spacing", c.XSpacing, "m"),
				floatParam("y_spacing", "Y spacing", c.YSpacing, "m"),
				intParam("connectivity", "Connectivity", c.Connectivity),
			},
		},
		{
			Name: "Clock",
			Params: []core.Parameter{
				floatParam("time_step", "Time step", c.TimeStep, "yr"),
				floatParam("time_total", "Total time", c.TimeTotal, "yr"),
				intParam("snapshot_every", "Snapshot every", c.SnapshotEvery),
			},
		},
		{
			Name: "Processes",
			Params: []core.Parameter{
				floatParam("k_sp", "Stream power K", p.KSP, ""),
				floatParam("m_exp", "Area exponent m", p.MExp, ""),
				floatParam("n_exp", "Slope exponent n", p.NExp, ""),
				floatParam("k_diff", "Diffusivity", p.KDiff, "m2/yr"),
				floatParam("u_rate", "Uplift rate", p.URate, "m/yr"),
			},
		},
		{
			Name: "Numerics",
			Params: []core.Parameter{
				stringParam("diffusion", "Diffusion scheme", c.Diffusion),
				intParam("workers", "Workers", c.Workers),
				stringParam("initial", "Initial surface", c.Initial),
				floatParam("initial_amplitude", "Initial amplitude", c.InitialAmplitude, "m"),
				int64Param("seed", "Seed", c.Seed),
			},
		},
	}
	return core.ParameterSnapshot{Groups: groups}
}

// ParameterControls lists the coefficients the viewer can tune while the
// model runs.
func (m *Model) ParameterControls() []core.ParameterControl {
	return []core.ParameterControl{
		{Key: "k_sp", Label: "Stream power K", Factor: 2, Min: 1e-8, Max: 1e-2},
		{Key: "k_diff", Label: "Diffusivity", Factor: 2, Min: 1e-5, Max: 10},
		{Key: "u_rate", Label: "Uplift rate", Factor: 2, Min: 1e-6, Max: 1e-1},
	}
}

// SetFloatParameter updates a process coefficient between steps. Negative or
// non-finite values are rejected.
func (m *Model) SetFloatParameter(key string, value float64) bool {
	if value < 0 || math.IsNaN(value) || math.IsInf(value, 0) {
		return false
	}
	switch key {
	case "k_sp":
		m.cfg.Params.KSP = value
	case "k_diff":
		m.cfg.Params.KDiff = value
	case "u_rate":
		m.cfg.Params.URate = value
	default:
		return false
	}
	return true
}

func intParam(key, label string, value int) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeInt,
		Value: strconv.Itoa(value),
	}
}

func int64Param(key, label string, value int64) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeInt,
		Value: strconv.FormatInt(value, 10),
	}
}

func floatParam(key, label string, value float64, unit string) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeFloat,
		Value: strconv.FormatFloat(value, 'g', -1, 64),
		Unit:  unit,
	}
}

func stringParam(key, label, value string) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeString,
		Value: value,
	}
}
