package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"strings"
	"time"

	"fastscape/internal/app"
	"fastscape/internal/sims/landscape"
)

// floatList is a comma-separated list of values.
type floatList []float64

func (l *floatList) String() string {
	parts := make([]string, len(*l))
	for i, v := range *l {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(parts, ",")
}

func (l *floatList) Set(value string) error {
	var vals []float64
	for _, s := range strings.Split(value, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return err
		}
		vals = append(vals, v)
	}
	*l = vals
	return nil
}

func main() {
	kSP := floatList{5e-6, 1e-5, 2e-5}
	kDiff := floatList{1e-3, 1e-2, 1e-1}
	uRate := floatList{5e-4, 1e-3, 2e-3}
	flag.Var(&kSP, "k_sp", "stream power coefficients to try")
	flag.Var(&kDiff, "k_diff", "diffusivities to try (m**2/yr)")
	flag.Var(&uRate, "u_rate", "uplift rates to try (m/yr)")
	workers := flag.Int("workers", runtime.NumCPU(), "number of concurrent runs")
	width := flag.Int("x_size", 101, "grid columns per run")
	height := flag.Int("y_size", 101, "grid rows per run")
	top := flag.Int("top", 5, "number of results to print")
	var overrides app.KVList
	flag.Var(&overrides, "set", "model setting in key=value form (repeatable)")
	flag.Parse()

	base := landscape.DefaultConfig()
	base.XSize = *width
	base.YSize = *height
	if err := overrides.Apply(base.Set); err != nil {
		log.Fatal(err)
	}
	if err := base.Validate(); err != nil {
		log.Fatal(err)
	}

	sets := landscape.ParamGrid(base.Params, kSP, kDiff, uRate)
	fmt.Printf("Sweeping %d parameter sets (%d workers, %dx%d grid, %d steps)\n",
		len(sets), *workers, base.XSize, base.YSize, base.Steps())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	results, err := landscape.Sweep(ctx, base, sets, *workers)
	if err != nil {
		log.Fatalf("sweep interrupted: %v", err)
	}
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	landscape.SortByRelief(results)
	elapsed := time.Since(start)

	fmt.Printf("\nTop %d results (elapsed %s, %d failed):\n", min(*top, len(results)), elapsed.Round(time.Millisecond), failed)
	for i := 0; i < len(results) && i < *top; i++ {
		fmt.Printf("%2d) %s\n", i+1, results[i])
	}
	for _, r := range results {
		if r.Err != nil {
			fmt.Printf("failed: %s\n", r)
		}
	}
}
