package landscape

import "fastscape/internal/core"

// UpliftForcing raises every interior cell at a constant rate. Fixed-edge
// cells never move.
type UpliftForcing struct {
	grid *core.Grid
}

// NewUpliftForcing returns the forcing for g.
func NewUpliftForcing(g *core.Grid) UpliftForcing {
	return UpliftForcing{grid: g}
}

// Apply adds rate*dt to the interior of z.
func (u UpliftForcing) Apply(z []float64, rate, dt float64) {
	if rate == 0 {
		return
	}
	dz := rate * dt
	for i := range z {
		if !u.grid.IsBoundary(i) {
			z[i] += dz
		}
	}
}
