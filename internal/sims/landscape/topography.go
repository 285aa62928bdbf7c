package landscape

import (
	"fmt"
	"math"

	"fastscape/internal/core"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// simplexWavelength is the feature size of the simplex initial surface, in
// cells.
const simplexWavelength = 32.0

// Topography owns the elevation field over a grid. Fixed-edge cells keep the
// value they had when the field was initialised.
type Topography struct {
	grid *core.Grid
	z    []float64
	z0   []float64
}

// NewTopography allocates a flat field over g.
func NewTopography(g *core.Grid) *Topography {
	return &Topography{
		grid: g,
		z:    make([]float64, g.Len()),
		z0:   make([]float64, g.Len()),
	}
}

// Grid returns the mesh the field lives on.
func (t *Topography) Grid() *core.Grid { return t.grid }

// Elevation exposes the live field in row-major order.
func (t *Topography) Elevation() []float64 { return t.z }

// Initial returns the field as it was at initialisation.
func (t *Topography) Initial() []float64 { return t.z0 }

// Initialize copies values into the field and pins the boundary to them for
// the rest of the run.
func (t *Topography) Initialize(values []float64) error {
	if len(values) != len(t.z) {
		return fmt.Errorf("%w: initial elevation has %d values, grid has %d cells", ErrConfiguration, len(values), len(t.z))
	}
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			x, y := t.grid.XY(i)
			return fmt.Errorf("%w: initial elevation at (%d,%d) is %v", ErrConfiguration, x, y, v)
		}
	}
	copy(t.z, values)
	copy(t.z0, values)
	return nil
}

// RandomSurface returns a near-flat field drawn uniformly from
// [0, amplitude).
func RandomSurface(g *core.Grid, seed int64, amplitude float64) []float64 {
	vals := make([]float64, g.Len())
	core.NewRNG(seed).FillUniform(vals, amplitude)
	return vals
}

// SimplexSurface returns a smooth near-flat field in [0, amplitude) built
// from two octaves of simplex noise.
func SimplexSurface(g *core.Grid, seed int64, amplitude float64) []float64 {
	noise := opensimplex.New(seed)
	vals := make([]float64, g.Len())
	for y := 0; y < g.NY; y++ {
		for x := 0; x < g.NX; x++ {
			fx := float64(x) / simplexWavelength
			fy := float64(y) / simplexWavelength
			n := 0.75*noise.Eval2(fx, fy) + 0.25*noise.Eval2(4*fx, 4*fy)
			// Eval2 is in [-1, 1].
			v := (n + 1) * 0.5
			if v < 0 {
				v = 0
			}
			if v >= 1 {
				v = math.Nextafter(1, 0)
			}
			vals[g.Index(x, y)] = v * amplitude
		}
	}
	return vals
}

// EnforceBoundary resets every fixed-edge cell to its initial value.
func (t *Topography) EnforceBoundary() {
	for i := range t.z {
		if t.grid.IsBoundary(i) {
			t.z[i] = t.z0[i]
		}
	}
}

// CheckFinite returns ErrNumericInstability for the first NaN or infinite
// elevation.
func (t *Topography) CheckFinite() error {
	for i, v := range t.z {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			x, y := t.grid.XY(i)
			return fmt.Errorf("%w: elevation at (%d,%d) is %v", ErrNumericInstability, x, y, v)
		}
	}
	return nil
}
