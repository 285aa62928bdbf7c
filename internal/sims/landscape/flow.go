package landscape

import (
	"container/heap"
	"fmt"
	"math"

	"fastscape/internal/core"
)

// FlowRouter builds a single-flow-direction drainage network from an
// elevation field. Every cell drains to a fixed-edge cell: closed
// depressions are reconnected through their lowest pass, found with a
// priority flood from the boundary, and the receivers along the path from
// the pit to the pass are reversed.
//
// All outputs are indexed by cell and rebuilt on every call to Route.
type FlowRouter struct {
	grid      *core.Grid
	neighbors []core.Neighbor
	offsets   []int

	receivers []int
	dist      []float64
	stack     []int
	area      []float64
	pits      int

	// scratch
	donorStart []int
	donors     []int
	basin      []int
	connected  []bool
	flooded    []bool
	parent     []int
	walk       []int
	queue      floodQueue
}

// NewFlowRouter prepares a router for g using 4- or 8-connectivity.
func NewFlowRouter(g *core.Grid, connectivity int) *FlowRouter {
	n := g.Len()
	ns := g.Neighbors(connectivity)
	offsets := make([]int, len(ns))
	for k, nb := range ns {
		offsets[k] = nb.DY*g.NX + nb.DX
	}
	return &FlowRouter{
		grid:       g,
		neighbors:  ns,
		offsets:    offsets,
		receivers:  make([]int, n),
		dist:       make([]float64, n),
		stack:      make([]int, 0, n),
		area:       make([]float64, n),
		donorStart: make([]int, n+1),
		donors:     make([]int, n),
		basin:      make([]int, n),
		connected:  make([]bool, n),
		flooded:    make([]bool, n),
		parent:     make([]int, n),
	}
}

// Receivers returns the downstream cell of every cell. Outlets are their own
// receiver.
func (r *FlowRouter) Receivers() []int { return r.receivers }

// Distances returns the distance from every cell to its receiver.
func (r *FlowRouter) Distances() []float64 { return r.dist }

// Stack returns all cells ordered so that each cell comes after its
// receiver. Walking it forwards visits outlets first; walking it backwards
// visits every donor before its receiver.
func (r *FlowRouter) Stack() []int { return r.stack }

// Area returns the drainage area of every cell, its own area included.
func (r *FlowRouter) Area() []float64 { return r.area }

// PitCount reports how many closed depressions were reconnected by the last
// Route call.
func (r *FlowRouter) PitCount() int { return r.pits }

// Outlets returns the cells that are their own receiver, in index order.
func (r *FlowRouter) Outlets() []int {
	var out []int
	for i, rc := range r.receivers {
		if rc == i {
			out = append(out, i)
		}
	}
	return out
}

// Route rebuilds receivers, stack and drainage area for the field z.
func (r *FlowRouter) Route(z []float64) error {
	if len(z) != r.grid.Len() {
		return fmt.Errorf("%w: elevation has %d values, grid has %d cells", ErrInvariantViolation, len(z), r.grid.Len())
	}
	r.steepestDescent(z)
	if err := r.buildStack(); err != nil {
		return err
	}
	r.resolvePits(z)
	if r.pits > 0 {
		if err := r.buildStack(); err != nil {
			return err
		}
	}
	for _, i := range r.stack {
		if r.receivers[i] == i && !r.grid.IsBoundary(i) {
			x, y := r.grid.XY(i)
			return fmt.Errorf("%w: interior cell (%d,%d) has no outlet", ErrInvariantViolation, x, y)
		}
	}
	r.accumulate()
	return nil
}

func (r *FlowRouter) steepestDescent(z []float64) {
	g := r.grid
	for i := range r.receivers {
		r.receivers[i] = i
		r.dist[i] = 0
		if g.IsBoundary(i) {
			continue
		}
		best := 0.0
		for k, off := range r.offsets {
			j := i + off
			d := r.neighbors[k].Dist
			if s := (z[i] - z[j]) / d; s > best {
				best = s
				r.receivers[i] = j
				r.dist[i] = d
			}
		}
	}
}

// buildStack indexes donors and orders cells by a depth-first walk from the
// outlets. Cells caught in a receiver cycle are never reached, which is
// reported as an invariant violation.
func (r *FlowRouter) buildStack() error {
	n := len(r.receivers)
	for i := range r.donorStart {
		r.donorStart[i] = 0
	}
	for i, rc := range r.receivers {
		if rc != i {
			r.donorStart[rc+1]++
		}
	}
	for i := 0; i < n; i++ {
		r.donorStart[i+1] += r.donorStart[i]
	}
	fill := r.walk[:0]
	fill = append(fill, r.donorStart[:n]...)
	for i, rc := range r.receivers {
		if rc != i {
			r.donors[fill[rc]] = i
			fill[rc]++
		}
	}

	r.stack = r.stack[:0]
	todo := fill[:0]
	for i, rc := range r.receivers {
		if rc != i {
			continue
		}
		todo = append(todo, i)
		for len(todo) > 0 {
			c := todo[len(todo)-1]
			todo = todo[:len(todo)-1]
			r.stack = append(r.stack, c)
			todo = append(todo, r.donors[r.donorStart[c]:r.donorStart[c+1]]...)
		}
	}
	r.walk = todo[:0]

	if len(r.stack) != n {
		return fmt.Errorf("%w: %d of %d cells do not drain to an outlet", ErrInvariantViolation, n-len(r.stack), n)
	}
	return nil
}

// resolvePits floods the surface from the boundary in order of increasing
// spill level. The first cell of a basin draining to an interior pit that
// leaves the queue is the basin's lowest pass; the basin is then
// re-rooted so that it drains across that pass into the already connected
// region. Connections only ever point into earlier-connected basins, so the
// network stays a forest rooted at the boundary.
func (r *FlowRouter) resolvePits(z []float64) {
	g := r.grid
	r.pits = 0

	hasPit := false
	for _, i := range r.stack {
		rc := r.receivers[i]
		if rc == i {
			r.basin[i] = i
			r.connected[i] = g.IsBoundary(i)
			if !g.IsBoundary(i) {
				hasPit = true
			}
			continue
		}
		r.basin[i] = r.basin[rc]
	}
	if !hasPit {
		return
	}

	for i := range r.flooded {
		r.flooded[i] = false
	}
	r.queue = r.queue[:0]
	for i := range z {
		if g.IsBoundary(i) {
			r.flooded[i] = true
			r.queue = append(r.queue, floodCell{level: z[i], idx: i})
		}
	}
	heap.Init(&r.queue)

	for r.queue.Len() > 0 {
		c := heap.Pop(&r.queue).(floodCell)
		// Cells leave the queue in order of spill level, so the first cell
		// of a closed basin to pop is its lowest pass.
		if b := r.basin[c.idx]; !r.connected[b] {
			r.carve(c.idx, r.parent[c.idx])
			r.connected[b] = true
			r.pits++
		}
		cx, cy := g.XY(c.idx)
		for _, nb := range r.neighbors {
			nx, ny := cx+nb.DX, cy+nb.DY
			if !g.InBounds(nx, ny) {
				continue
			}
			n := g.Index(nx, ny)
			if r.flooded[n] {
				continue
			}
			r.flooded[n] = true
			r.parent[n] = c.idx
			heap.Push(&r.queue, floodCell{level: math.Max(z[n], c.level), idx: n})
		}
	}
}

// carve makes pass drain into target and reverses the receiver chain from
// pass down to its pit, so the whole basin now leaves through pass.
func (r *FlowRouter) carve(pass, target int) {
	prev, cur := target, pass
	for {
		next := r.receivers[cur]
		r.receivers[cur] = prev
		r.dist[cur] = r.distance(cur, prev)
		if next == cur {
			return
		}
		prev, cur = cur, next
	}
}

func (r *FlowRouter) distance(a, b int) float64 {
	ax, ay := r.grid.XY(a)
	bx, by := r.grid.XY(b)
	dx, dy := ax != bx, ay != by
	switch {
	case dx && dy:
		return math.Hypot(r.grid.DX, r.grid.DY)
	case dx:
		return r.grid.DX
	default:
		return r.grid.DY
	}
}

func (r *FlowRouter) accumulate() {
	cell := r.grid.CellArea()
	for i := range r.area {
		r.area[i] = cell
	}
	for k := len(r.stack) - 1; k >= 0; k-- {
		i := r.stack[k]
		if rc := r.receivers[i]; rc != i {
			r.area[rc] += r.area[i]
		}
	}
}

// Validate walks every cell down its receivers and checks that it reaches a
// fixed-edge cell through adjacent cells within Len() hops.
func (r *FlowRouter) Validate() error {
	g := r.grid
	limit := g.Len()
	for i := range r.receivers {
		cur := i
		for hops := 0; ; hops++ {
			if hops > limit {
				x, y := g.XY(i)
				return fmt.Errorf("%w: cell (%d,%d) exceeds %d hops", ErrInvariantViolation, x, y, limit)
			}
			next := r.receivers[cur]
			if next == cur {
				if !g.IsBoundary(cur) {
					x, y := g.XY(i)
					return fmt.Errorf("%w: cell (%d,%d) ends in an interior pit", ErrInvariantViolation, x, y)
				}
				break
			}
			ax, ay := g.XY(cur)
			bx, by := g.XY(next)
			if abs(ax-bx) > 1 || abs(ay-by) > 1 {
				return fmt.Errorf("%w: receiver of (%d,%d) is not adjacent", ErrInvariantViolation, ax, ay)
			}
			cur = next
		}
	}
	return nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

type floodCell struct {
	level float64
	idx   int
}

// floodQueue is a min-heap on spill level. Equal levels pop in index order
// so routing is reproducible.
type floodQueue []floodCell

func (q floodQueue) Len() int { return len(q) }

func (q floodQueue) Less(i, j int) bool {
	if q[i].level != q[j].level {
		return q[i].level < q[j].level
	}
	return q[i].idx < q[j].idx
}

func (q floodQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *floodQueue) Push(x any) { *q = append(*q, x.(floodCell)) }

func (q *floodQueue) Pop() any {
	old := *q
	n := len(old)
	it := old[n-1]
	*q = old[:n-1]
	return it
}
