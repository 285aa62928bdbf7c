package landscape

import (
	"errors"
	"fmt"
	"math"

	"fastscape/internal/core"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// State is the lifecycle position of a Model.
type State int

const (
	StateInitialized State = iota
	StateRunning
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateInitialized:
		return "initialized"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// completionSlack is the relative tolerance under which the remaining time
// counts as zero, so floating-point drift never produces a sliver step.
const completionSlack = 1e-12

// StepStats summarises the field after one step.
type StepStats struct {
	Step int
	Time float64
	Dt   float64

	MeanElevation float64 // over interior cells
	MaxElevation  float64 // over interior cells
	Relief        float64 // max - min over all cells
	PitsResolved  int
	MaxArea       float64
}

// Model advances a landscape through route, erode, diffuse and uplift until
// the configured total time. It owns its topography exclusively; callers
// must not step it from more than one goroutine.
type Model struct {
	cfg  Config
	grid *core.Grid
	topo *Topography

	router    *FlowRouter
	erosion   *ErosionSolver
	diffusion *DiffusionSolver
	uplift    UpliftForcing

	state State
	step  int
	time  float64
	err   error

	snapshots []Snapshot
	history   []StepStats

	display      []uint8
	displayDirty bool
}

// New validates cfg and builds a model over the configured initial surface.
func New(cfg Config) (*Model, error) {
	m, err := build(cfg)
	if err != nil {
		return nil, err
	}
	m.Reset(cfg.Seed)
	return m, nil
}

// NewWithElevation builds a model whose initial field is z (row-major,
// y_size*x_size values) instead of a generated surface.
func NewWithElevation(cfg Config, z []float64) (*Model, error) {
	m, err := build(cfg)
	if err != nil {
		return nil, err
	}
	if err := m.topo.Initialize(z); err != nil {
		return nil, err
	}
	m.restart()
	return m, nil
}

func build(cfg Config) (*Model, error) {
	if cfg.Workers == 0 {
		cfg.Workers = 1
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	g, err := core.NewGrid(cfg.XSize, cfg.YSize, cfg.XSpacing, cfg.YSpacing)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	return &Model{
		cfg:       cfg,
		grid:      g,
		topo:      NewTopography(g),
		router:    NewFlowRouter(g, cfg.Connectivity),
		erosion:   NewErosionSolver(g),
		diffusion: NewDiffusionSolver(g, cfg.Diffusion, cfg.Workers),
		uplift:    NewUpliftForcing(g),
		display:   make([]uint8, g.Len()),
	}, nil
}

// Name returns the simulation identifier.
func (m *Model) Name() string { return "landscape" }

// Size reports the grid dimensions.
func (m *Model) Size() core.Size { return m.grid.Size() }

// Config returns the configuration the model runs with, including any live
// parameter changes.
func (m *Model) Config() Config { return m.cfg }

// Grid returns the mesh.
func (m *Model) Grid() *core.Grid { return m.grid }

// Topography returns the live elevation field.
func (m *Model) Topography() *Topography { return m.topo }

// Flow returns the network built during the last step.
func (m *Model) Flow() *FlowRouter { return m.router }

// State reports the lifecycle state.
func (m *Model) State() State { return m.state }

// Completed reports whether the run reached its end time.
func (m *Model) Completed() bool { return m.state == StateCompleted }

// Time returns the simulated time in years.
func (m *Model) Time() float64 { return m.time }

// StepCount returns the number of completed steps.
func (m *Model) StepCount() int { return m.step }

// Err returns the error that stopped the run, if any.
func (m *Model) Err() error { return m.err }

// History returns the stats of every completed step.
func (m *Model) History() []StepStats { return m.history }

// Snapshots returns the recorded snapshots in time order.
func (m *Model) Snapshots() []Snapshot { return m.snapshots }

// Coordinates returns the cell-centre coordinates along x and y.
func (m *Model) Coordinates() (xs, ys []float64) { return m.grid.Coordinates() }

// Elevation returns a copy of the current field with shape (y_size, x_size).
func (m *Model) Elevation() *mat.Dense {
	z := make([]float64, m.grid.Len())
	copy(z, m.topo.Elevation())
	return mat.NewDense(m.grid.NY, m.grid.NX, z)
}

// Reset regenerates the initial surface and rewinds the clock. A zero seed
// reuses the configured one.
func (m *Model) Reset(seed int64) {
	if seed == 0 {
		seed = m.cfg.Seed
	}
	m.cfg.Seed = seed
	var z []float64
	switch m.cfg.Initial {
	case InitialSimplex:
		z = SimplexSurface(m.grid, seed, m.cfg.InitialAmplitude)
	default:
		z = RandomSurface(m.grid, seed, m.cfg.InitialAmplitude)
	}
	// Generated surfaces are always finite and sized to the grid.
	_ = m.topo.Initialize(z)
	m.restart()
}

func (m *Model) restart() {
	m.state = StateInitialized
	m.step = 0
	m.time = 0
	m.err = nil
	m.history = m.history[:0]
	m.snapshots = m.snapshots[:0]
	clear(m.router.area)
	m.displayDirty = true
	if m.cfg.SnapshotEvery > 0 {
		m.record()
	}
}

// Step runs one route, erode, diffuse, uplift cycle. The last step is
// shortened to land on the total time. Once a step fails, the model keeps
// returning that error; once the run completes, Step returns ErrCompleted.
func (m *Model) Step() error {
	if m.err != nil {
		return m.err
	}
	if m.state == StateCompleted {
		return ErrCompleted
	}
	m.state = StateRunning

	dt := math.Min(m.cfg.TimeStep, m.cfg.TimeTotal-m.time)
	p := m.cfg.Params
	z := m.topo.Elevation()

	if err := m.router.Route(z); err != nil {
		return m.fail(PhaseRoute, err)
	}
	if err := m.erosion.Apply(z, m.router, p, dt); err != nil {
		return m.fail(PhaseErode, err)
	}
	if err := m.topo.CheckFinite(); err != nil {
		return m.fail(PhaseErode, err)
	}
	if err := m.diffusion.Apply(z, p.KDiff, dt); err != nil {
		return m.fail(PhaseDiffuse, err)
	}
	if err := m.topo.CheckFinite(); err != nil {
		return m.fail(PhaseDiffuse, err)
	}
	m.uplift.Apply(z, p.URate, dt)
	if err := m.topo.CheckFinite(); err != nil {
		return m.fail(PhaseUplift, err)
	}

	m.step++
	m.time += dt
	if m.cfg.TimeTotal-m.time <= completionSlack*m.cfg.TimeTotal {
		m.time = m.cfg.TimeTotal
		m.state = StateCompleted
	}
	m.displayDirty = true
	m.history = append(m.history, m.stats(dt))

	if every := m.cfg.SnapshotEvery; every > 0 && (m.step%every == 0 || m.state == StateCompleted) {
		m.record()
	}
	return nil
}

func (m *Model) fail(phase Phase, err error) error {
	m.err = &StepError{Step: m.step + 1, Time: m.time, Phase: phase, Err: err}
	return m.err
}

// Run steps until completion, calling observe (if non-nil) after every step.
func (m *Model) Run(observe func(StepStats)) error {
	for m.state != StateCompleted {
		if err := m.Step(); err != nil {
			if errors.Is(err, ErrCompleted) {
				return nil
			}
			return err
		}
		if observe != nil {
			observe(m.history[len(m.history)-1])
		}
	}
	return nil
}

// Stats summarises the current field without advancing it.
func (m *Model) Stats() StepStats {
	if n := len(m.history); n > 0 {
		return m.history[n-1]
	}
	return m.stats(0)
}

func (m *Model) stats(dt float64) StepStats {
	z := m.topo.Elevation()
	sum, hi := 0.0, math.Inf(-1)
	interior := 0
	for i, v := range z {
		if m.grid.IsBoundary(i) {
			continue
		}
		sum += v
		interior++
		if v > hi {
			hi = v
		}
	}
	st := StepStats{
		Step:          m.step,
		Time:          m.time,
		Dt:            dt,
		MeanElevation: sum / float64(interior),
		MaxElevation:  hi,
		Relief:        floats.Max(z) - floats.Min(z),
		PitsResolved:  m.router.PitCount(),
	}
	if m.step > 0 {
		st.MaxArea = floats.Max(m.router.Area())
	}
	return st
}

func init() {
	core.Register("landscape", func(cfg map[string]string) (core.Sim, error) {
		c, err := FromMap(cfg)
		if err != nil {
			return nil, err
		}
		return New(c)
	})
}
