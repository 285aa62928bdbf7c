package core

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidGrid reports grid dimensions or spacings that cannot form a mesh
// with at least one interior cell.
var ErrInvalidGrid = errors.New("core: invalid grid")

// MinGridDim is the smallest cell count along either axis.
const MinGridDim = 3

// CellKind classifies a grid cell for boundary handling.
type CellKind uint8

const (
	// CellInterior marks cells updated by the surface processes.
	CellInterior CellKind = iota
	// CellFixedEdge marks cells on the domain rim held at constant value.
	CellFixedEdge
)

// Neighbor is a relative offset to an adjacent cell along with the distance
// between the two cell centres.
type Neighbor struct {
	DX, DY int
	Dist   float64
}

// Grid describes a regular raster mesh stored in row-major order. It is
// immutable once constructed.
type Grid struct {
	NX, NY int
	DX, DY float64

	kind []CellKind
}

// NewGrid validates the dimensions and spacings and returns the mesh.
func NewGrid(nx, ny int, dx, dy float64) (*Grid, error) {
	if nx < MinGridDim || ny < MinGridDim {
		return nil, fmt.Errorf("%w: size %dx%d (each must be >= %d)", ErrInvalidGrid, nx, ny, MinGridDim)
	}
	if !(dx > 0) || !(dy > 0) || math.IsInf(dx, 0) || math.IsInf(dy, 0) {
		return nil, fmt.Errorf("%w: spacing %gx%g (each must be > 0)", ErrInvalidGrid, dx, dy)
	}
	g := &Grid{NX: nx, NY: ny, DX: dx, DY: dy, kind: make([]CellKind, nx*ny)}
	for y := 0; y < ny; y++ {
		for x := 0; x < nx; x++ {
			if x == 0 || y == 0 || x == nx-1 || y == ny-1 {
				g.kind[y*nx+x] = CellFixedEdge
			}
		}
	}
	return g, nil
}

// Len returns the number of cells.
func (g *Grid) Len() int { return g.NX * g.NY }

// Size reports the dimensions in the form the Sim contract uses.
func (g *Grid) Size() Size { return Size{W: g.NX, H: g.NY} }

// Index returns the linear slice index for coordinates (x, y).
func (g *Grid) Index(x, y int) int { return y*g.NX + x }

// XY returns the coordinates of the linear index i.
func (g *Grid) XY(i int) (int, int) { return i % g.NX, i / g.NX }

// InBounds reports whether (x, y) lies on the grid.
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.NX && y < g.NY
}

// Kind returns the boundary classification of cell i.
func (g *Grid) Kind(i int) CellKind { return g.kind[i] }

// IsBoundary reports whether cell i is a fixed-edge cell.
func (g *Grid) IsBoundary(i int) bool { return g.kind[i] == CellFixedEdge }

// CellArea returns the planform area of one cell.
func (g *Grid) CellArea() float64 { return g.DX * g.DY }

// Area returns the planform area of the whole domain.
func (g *Grid) Area() float64 { return float64(g.Len()) * g.CellArea() }

// Coordinates returns the cell-centre coordinate arrays along x and y, with
// the first cell at the origin.
func (g *Grid) Coordinates() (xs, ys []float64) {
	xs = make([]float64, g.NX)
	for i := range xs {
		xs[i] = float64(i) * g.DX
	}
	ys = make([]float64, g.NY)
	for j := range ys {
		ys[j] = float64(j) * g.DY
	}
	return xs, ys
}

// Neighbors returns the neighbourhood offsets for 4- or 8-connectivity.
// Orthogonal offsets come first so ties in steepest-descent searches resolve
// towards them.
func (g *Grid) Neighbors(connectivity int) []Neighbor {
	ns := []Neighbor{
		{DX: 1, DY: 0, Dist: g.DX},
		{DX: -1, DY: 0, Dist: g.DX},
		{DX: 0, DY: 1, Dist: g.DY},
		{DX: 0, DY: -1, Dist: g.DY},
	}
	if connectivity == 8 {
		diag := math.Hypot(g.DX, g.DY)
		ns = append(ns,
			Neighbor{DX: 1, DY: 1, Dist: diag},
			Neighbor{DX: -1, DY: 1, Dist: diag},
			Neighbor{DX: 1, DY: -1, Dist: diag},
			Neighbor{DX: -1, DY: -1, Dist: diag},
		)
	}
	return ns
}
