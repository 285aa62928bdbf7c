//go:build ebiten

package main

import (
	"errors"
	"flag"
	"log"

	"fastscape/internal/app"
	"fastscape/internal/core"
	_ "fastscape/internal/sims/landscape"

	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	cfg := app.NewConfig()
	cfg.Bind(flag.CommandLine)
	flag.Parse()

	factory, ok := core.Sims()[cfg.Sim]
	if !ok {
		log.Fatalf("unknown sim %q", cfg.Sim)
	}
	settings, err := cfg.Settings()
	if err != nil {
		log.Fatal(err)
	}
	sim, err := factory(settings)
	if err != nil {
		log.Fatalf("creating %s: %v", cfg.Sim, err)
	}

	game := app.New(sim, cfg)
	size := sim.Size()

	ebiten.SetWindowTitle("fastscape - " + sim.Name())
	ebiten.SetTPS(cfg.TPS)
	ebiten.SetWindowSize(size.W*cfg.Scale+max(cfg.Panel, 0), size.H*cfg.Scale)

	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		log.Fatal(err)
	}
}
