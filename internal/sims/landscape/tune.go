package landscape

import (
	"context"
	"fmt"
	"math"
)

// TuneRecord documents an improvement found while searching.
type TuneRecord struct {
	Pass      int
	Parameter string
	Value     float64
	Relief    float64
	Params    Params
}

func (r TuneRecord) String() string {
	return fmt.Sprintf("pass %d %s=%g relief=%.2f", r.Pass, r.Parameter, r.Value, r.Relief)
}

type coefficient struct {
	name string
	get  func(Params) float64
	set  func(*Params, float64)
}

var tunedCoefficients = []coefficient{
	{"k_sp", func(p Params) float64 { return p.KSP }, func(p *Params, v float64) { p.KSP = v }},
	{"k_diff", func(p Params) float64 { return p.KDiff }, func(p *Params, v float64) { p.KDiff = v }},
	{"u_rate", func(p Params) float64 { return p.URate }, func(p *Params, v float64) { p.URate = v }},
}

// tuneFactors are the multiples of the current value tried for each
// coefficient in a pass.
var tuneFactors = []float64{0.25, 0.5, 2, 4}

// Tune searches for coefficients whose run ends with the target relief. It
// runs a coordinate descent over k_sp, k_diff and u_rate, trying multiples of
// the current value for one coefficient at a time and keeping the closest
// result, until a pass brings no improvement or passes are used up. The
// candidates of each coordinate run concurrently on Sweep.
func Tune(ctx context.Context, base Config, target float64, passes, workers int) (Params, StepStats, []TuneRecord, error) {
	if passes <= 0 {
		passes = 1
	}
	if !(target > 0) {
		return base.Params, StepStats{}, nil, fmt.Errorf("%w: target relief %g must be > 0", ErrConfiguration, target)
	}
	if err := base.Validate(); err != nil {
		return base.Params, StepStats{}, nil, err
	}

	baseline, err := Sweep(ctx, base, []Params{base.Params}, 1)
	if err != nil {
		return base.Params, StepStats{}, nil, err
	}
	if baseline[0].Err != nil {
		return base.Params, StepStats{}, nil, baseline[0].Err
	}
	current, best := base.Params, baseline[0].Final
	records := []TuneRecord{{Parameter: "baseline", Relief: best.Relief, Params: current}}
	miss := func(s StepStats) float64 { return math.Abs(s.Relief - target) }

	for pass := 1; pass <= passes; pass++ {
		improved := false
		for _, c := range tunedCoefficients {
			v := c.get(current)
			if v == 0 {
				continue
			}
			sets := make([]Params, len(tuneFactors))
			for i, f := range tuneFactors {
				sets[i] = current
				c.set(&sets[i], v*f)
			}
			results, err := Sweep(ctx, base, sets, workers)
			if err != nil {
				return current, best, records, err
			}
			for _, r := range results {
				if r.Err != nil || miss(r.Final) >= miss(best) {
					continue
				}
				current, best = r.Params, r.Final
				improved = true
				records = append(records, TuneRecord{
					Pass:      pass,
					Parameter: c.name,
					Value:     c.get(r.Params),
					Relief:    r.Final.Relief,
					Params:    r.Params,
				})
			}
		}
		if !improved {
			break
		}
	}
	return current, best, records, nil
}
