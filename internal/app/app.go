//go:build ebiten

package app

import (
	"image/color"
	"log"
	"time"

	"fastscape/internal/core"
	"fastscape/internal/render"
	"fastscape/internal/ui"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

type paletteProvider interface {
	Palette() []color.RGBA
}

type gridProvider interface {
	Grid() *core.Grid
}

type completer interface {
	Completed() bool
}

// Game adapts a core simulation to the ebiten.Game interface.
type Game struct {
	sim     core.Sim
	painter *render.GridPainter
	hud     *ui.HUD
	overlay *ui.Overlay
	palette []color.RGBA
	stepper *core.FixedStep

	scale    int
	paused   bool
	tickOnce bool
	seed     int64
	halted   bool
}

// New constructs a Game for the provided simulation. A panel width of zero
// hides the parameter panel.
func New(sim core.Sim, cfg *Config) *Game {
	size := sim.Size()
	palette := render.GreyPalette()
	if p, ok := sim.(paletteProvider); ok {
		palette = p.Palette()
	}
	spacing := 1.0
	if g, ok := sim.(gridProvider); ok {
		spacing = g.Grid().DX
	}
	var hud *ui.HUD
	if cfg.Panel > 0 {
		hud = ui.NewHUD(sim, cfg.Panel)
	}
	return &Game{
		sim:     sim,
		painter: render.NewGridPainter(size.W, size.H),
		hud:     hud,
		overlay: ui.NewOverlay(sim, cfg.Scale, spacing),
		palette: palette,
		stepper: core.NewFixedStep(cfg.StepsPerSecond),
		scale:   cfg.Scale,
		seed:    cfg.Seed,
	}
}

// Reset reinitializes the simulation state with the provided seed.
func (g *Game) Reset(seed int64) {
	g.seed = seed
	g.sim.Reset(seed)
	g.tickOnce = false
	g.halted = false
}

// Update handles per-frame logic and advances the simulation.
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.paused = !g.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		g.paused = false
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyN) {
		g.tickOnce = true
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.Reset(g.seed)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		g.Reset(time.Now().UnixNano())
	}

	if g.overlay != nil {
		g.overlay.Update()
	}
	if g.hud != nil {
		g.hud.Update(g.sim.Size().W * g.scale)
	}

	if g.halted {
		return nil
	}
	if g.tickOnce || (!g.paused && g.stepper.ShouldStep()) {
		g.tickOnce = false
		g.step()
	}
	return nil
}

// step advances the simulation once. A failed or finished run stops the
// loop but keeps the window open on the last state.
func (g *Game) step() {
	if c, ok := g.sim.(completer); ok && c.Completed() {
		g.halted = true
		return
	}
	if err := g.sim.Step(); err != nil {
		g.halted = true
		log.Printf("simulation stopped: %v", err)
	}
}

// Draw renders the current simulation state.
func (g *Game) Draw(screen *ebiten.Image) {
	g.painter.Blit(screen, g.sim.Cells(), g.palette, g.scale)
	if g.overlay != nil {
		g.overlay.Draw(screen)
	}
	if g.hud != nil {
		g.hud.Draw(screen, g.sim.Size().W*g.scale, g.scale)
	}
}

// Layout returns the logical screen size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	s := g.sim.Size()
	return s.W*g.scale + g.hud.Width(), s.H * g.scale
}
