package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"

	"fastscape/internal/app"
	"fastscape/internal/sims/landscape"
)

func main() {
	target := flag.Float64("relief", 500, "target final relief (m)")
	passes := flag.Int("passes", 3, "coordinate-descent passes to execute")
	workers := flag.Int("workers", runtime.NumCPU(), "parallel candidate evaluations")
	width := flag.Int("x_size", 61, "grid columns for tuning runs")
	height := flag.Int("y_size", 61, "grid rows for tuning runs")
	seed := flag.Int64("seed", 1337, "seed used for deterministic runs")
	manualOnly := flag.Bool("manual", false, "skip tuning and only evaluate provided overrides")
	var overrides app.KVList
	flag.Var(&overrides, "set", "model setting in key=value form (repeatable)")
	flag.Parse()

	cfg := landscape.DefaultConfig()
	cfg.XSize = *width
	cfg.YSize = *height
	cfg.Seed = *seed
	if err := overrides.Apply(cfg.Set); err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *manualOnly {
		res, err := landscape.Sweep(ctx, cfg, []landscape.Params{cfg.Params}, 1)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("Manual evaluation: %s\n", res[0])
		printParams(cfg.Params)
		return
	}

	params, final, trace, err := landscape.Tune(ctx, cfg, *target, *passes, *workers)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Baseline relief %.2f m, target %.2f m\n", trace[0].Relief, *target)
	fmt.Printf("\nBest found: relief %.2f m, mean %.2f m, max %.2f m\n", final.Relief, final.MeanElevation, final.MaxElevation)
	printParams(params)

	if len(trace) > 1 {
		fmt.Println("\nImprovements:")
		for _, rec := range trace[1:] {
			fmt.Printf("  %s\n", rec)
		}
	}
}

func printParams(p landscape.Params) {
	fmt.Println("Parameters:")
	fmt.Printf("  k_sp=%g\n", p.KSP)
	fmt.Printf("  k_diff=%g\n", p.KDiff)
	fmt.Printf("  u_rate=%g\n", p.URate)
	fmt.Printf("  m_exp=%g\n", p.MExp)
	fmt.Printf("  n_exp=%g\n", p.NExp)
}
