package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"fastscape/internal/app"
	"fastscape/internal/output"
	"fastscape/internal/sims/landscape"
	"fastscape/internal/stream"

	"github.com/gosuri/uiprogress"
)

// modelFlags are the flags that map one-to-one onto landscape config keys.
var modelFlags = []string{"x_size", "y_size", "spacing", "time_step", "time_total", "seed", "snapshot_every", "workers"}

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] k_sp k_diff u_rate\n", os.Args[0])
	flag.PrintDefaults()
}

func main() {
	def := landscape.DefaultConfig()
	flag.Int("x_size", def.XSize, "grid columns")
	flag.Int("y_size", def.YSize, "grid rows")
	flag.Float64("spacing", def.XSpacing, "cell spacing in both directions (m)")
	flag.Float64("time_step", def.TimeStep, "time step (yr)")
	flag.Float64("time_total", def.TimeTotal, "total simulated time (yr)")
	flag.Int64("seed", def.Seed, "initial surface seed")
	flag.Int("snapshot_every", def.SnapshotEvery, "record the elevation every N steps (0 keeps the final state only)")
	flag.Int("workers", def.Workers, "goroutines used by the diffusion sweeps")
	outPath := flag.String("output", "out.npy", "final elevation array (.npy)")
	configPath := flag.String("config", "", "JSON settings file applied before the flags")
	initPath := flag.String("init", "", "initial elevation (.npy, shape y_size x x_size)")
	ncPath := flag.String("netcdf", "", "write snapshots to this netCDF file")
	pngPath := flag.String("png", "", "write the final elevation as an image")
	pngScale := flag.Int("png_scale", 1, "pixels per cell in the image")
	progress := flag.Bool("progress", false, "show a progress bar")
	serve := flag.String("serve", "", "stream frames over websocket on this address (e.g. :8080)")
	quiet := flag.Bool("quiet", false, "do not print the run report")
	var overrides app.KVList
	flag.Var(&overrides, "set", "model setting in key=value form (repeatable)")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() != 3 {
		usage()
		os.Exit(2)
	}

	cfg := def
	if *configPath != "" {
		var err error
		if cfg, err = landscape.LoadFile(*configPath); err != nil {
			log.Fatalf("loading config: %v", err)
		}
	}
	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	for _, key := range modelFlags {
		if !set[key] {
			continue
		}
		if err := cfg.Set(key, flag.Lookup(key).Value.String()); err != nil {
			log.Fatal(err)
		}
	}
	if err := overrides.Apply(cfg.Set); err != nil {
		log.Fatal(err)
	}
	for i, key := range []string{"k_sp", "k_diff", "u_rate"} {
		if err := cfg.Set(key, flag.Arg(i)); err != nil {
			log.Fatal(err)
		}
	}

	var (
		m   *landscape.Model
		err error
	)
	if *initPath != "" {
		z, err := output.ReadNPYFile(*initPath)
		if err != nil {
			log.Fatalf("reading initial elevation: %v", err)
		}
		if r, c := z.Dims(); r != cfg.YSize || c != cfg.XSize {
			log.Fatalf("initial elevation is %dx%d, grid is %dx%d", r, c, cfg.YSize, cfg.XSize)
		}
		m, err = landscape.NewWithElevation(cfg, z.RawMatrix().Data)
		if err != nil {
			log.Fatal(err)
		}
	} else if m, err = landscape.New(cfg); err != nil {
		log.Fatal(err)
	}

	var hub *stream.Hub
	if *serve != "" {
		hub = stream.NewHub()
		mux := http.NewServeMux()
		mux.Handle("/ws", hub)
		go func() {
			if err := http.ListenAndServe(*serve, mux); err != nil {
				log.Printf("stream server: %v", err)
			}
		}()
		defer hub.Close()
		hub.Publish(stream.FrameOf(m))
	}

	var bar *uiprogress.Bar
	if *progress {
		uiprogress.Start()
		bar = uiprogress.AddBar(cfg.Steps()).AppendCompleted().PrependElapsed()
		bar.PrependFunc(func(b *uiprogress.Bar) string {
			return fmt.Sprintf("t=%-10.4g", m.Time())
		})
	}

	start := time.Now()
	runErr := m.Run(func(landscape.StepStats) {
		if bar != nil {
			bar.Incr()
		}
		if hub != nil {
			hub.Publish(stream.FrameOf(m))
		}
	})
	if bar != nil {
		uiprogress.Stop()
	}
	elapsed := time.Since(start)
	if runErr != nil {
		log.Fatalf("run failed: %v", runErr)
	}

	var written []string
	if err := output.WriteNPYFile(*outPath, m.Elevation()); err != nil {
		log.Fatalf("writing %s: %v", *outPath, err)
	}
	written = append(written, *outPath)

	if *ncPath != "" {
		snaps := m.Snapshots()
		if len(snaps) == 0 {
			snaps = []landscape.Snapshot{m.FinalSnapshot()}
		}
		xs, ys := m.Coordinates()
		meta := output.NetCDFMeta{
			XS:      xs,
			YS:      ys,
			Params:  cfg.Params,
			Comment: "fastscape seed=" + strconv.FormatInt(cfg.Seed, 10),
		}
		if err := output.WriteNetCDFFile(*ncPath, meta, snaps); err != nil {
			log.Fatalf("writing %s: %v", *ncPath, err)
		}
		written = append(written, *ncPath)
	}
	if *pngPath != "" {
		if err := output.WritePNGFile(*pngPath, m.Elevation(), *pngScale); err != nil {
			log.Fatalf("writing %s: %v", *pngPath, err)
		}
		written = append(written, *pngPath)
	}

	if *quiet {
		return
	}
	err = output.Report(os.Stdout, output.RunSummary{
		Title:      "fastscape",
		Parameters: m.Parameters(),
		History:    m.History(),
		State:      m.State(),
		Elapsed:    elapsed,
		Outputs:    written,
	})
	if err != nil {
		log.Fatal(err)
	}
}
