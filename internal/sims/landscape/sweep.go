package landscape

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"
)

// SweepResult records the outcome of one parameter set.
type SweepResult struct {
	Index  int
	Params Params
	Final  StepStats
	Err    error
}

func (r SweepResult) String() string {
	p := r.Params
	if r.Err != nil {
		return fmt.Sprintf("k_sp=%g k_diff=%g u_rate=%g failed: %v", p.KSP, p.KDiff, p.URate, r.Err)
	}
	return fmt.Sprintf("k_sp=%g k_diff=%g u_rate=%g relief=%.2f mean=%.2f max=%.2f",
		p.KSP, p.KDiff, p.URate, r.Final.Relief, r.Final.MeanElevation, r.Final.MaxElevation)
}

// ParamGrid expands the cartesian product of the given coefficient values on
// top of base. Exponents are taken from base.
func ParamGrid(base Params, kSP, kDiff, uRate []float64) []Params {
	sets := make([]Params, 0, len(kSP)*len(kDiff)*len(uRate))
	for _, k := range kSP {
		for _, d := range kDiff {
			for _, u := range uRate {
				p := base
				p.KSP, p.KDiff, p.URate = k, d, u
				sets = append(sets, p)
			}
		}
	}
	return sets
}

// Sweep runs one independent model per parameter set on at most workers
// goroutines and returns the results in input order. A failing run is
// reported in its result and does not stop the others; only cancellation of
// ctx aborts the sweep.
func Sweep(ctx context.Context, base Config, sets []Params, workers int) ([]SweepResult, error) {
	if workers <= 0 {
		workers = 1
	}
	results := make([]SweepResult, len(sets))
	eg, egctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i, p := range sets {
		if egctx.Err() != nil {
			break
		}
		eg.Go(func() error {
			if err := egctx.Err(); err != nil {
				return err
			}
			cfg := base
			cfg.Params = p
			// Runs already execute in parallel; keep each model serial.
			cfg.Workers = 1
			cfg.SnapshotEvery = 0
			res := SweepResult{Index: i, Params: p}
			m, err := New(cfg)
			if err == nil {
				err = m.Run(nil)
				res.Final = m.Stats()
			}
			res.Err = err
			results[i] = res
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return results, err
	}
	return results, ctx.Err()
}

// SortByRelief orders results by final relief, highest first. Failed runs
// sort last.
func SortByRelief(results []SweepResult) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if (a.Err == nil) != (b.Err == nil) {
			return a.Err == nil
		}
		return a.Final.Relief > b.Final.Relief
	})
}
