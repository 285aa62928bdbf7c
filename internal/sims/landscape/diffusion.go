package landscape

import (
	"fmt"
	"math"

	"fastscape/internal/core"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Conjugate gradient settings for the fully implicit scheme.
const (
	cgTolerance  = 1e-10
	cgMinMaxIter = 1000
)

// DiffusionSolver integrates linear hillslope diffusion
//
//	dz/dt = Kd * laplacian(z)
//
// with fixed-edge (Dirichlet) cells. The default scheme is a split
// alternating-direction implicit step: a full backward Euler step along x,
// then one along y, so each pass is a set of independent tridiagonal solves.
// Every line matrix is an M-matrix, so each pass is a convex combination of
// its inputs and no new extrema appear at any dt. Rows (then columns) are
// split across workers; each line is solved by exactly one worker into its
// own cells, so the result does not depend on the worker count.
type DiffusionSolver struct {
	grid    *core.Grid
	scheme  string
	workers int

	half  []float64
	lines []*lineSolver

	// implicit scheme scratch
	rhs, res, dir, pre, ap []float64
}

// lineSolver holds per-worker buffers for one tridiagonal line solve.
type lineSolver struct {
	rhs []float64
	b   *mat.VecDense
	x   *mat.VecDense
}

func newLineSolver(n int) *lineSolver {
	rhs := make([]float64, n)
	return &lineSolver{rhs: rhs, b: mat.NewVecDense(n, rhs), x: mat.NewVecDense(n, nil)}
}

// NewDiffusionSolver returns a solver for g. Workers below one run the
// sweeps on the calling goroutine.
func NewDiffusionSolver(g *core.Grid, scheme string, workers int) *DiffusionSolver {
	if workers < 1 {
		workers = 1
	}
	return &DiffusionSolver{
		grid:    g,
		scheme:  scheme,
		workers: workers,
		half:    make([]float64, g.Len()),
	}
}

// Apply advances z in place by dt.
func (s *DiffusionSolver) Apply(z []float64, kd, dt float64) error {
	if kd == 0 {
		return nil
	}
	if s.scheme == DiffusionImplicit {
		return s.implicit(z, kd, dt)
	}
	return s.adi(z, kd, dt)
}

func (s *DiffusionSolver) adi(z []float64, kd, dt float64) error {
	g := s.grid
	nx, ny := g.NX, g.NY
	ax := kd * dt / (g.DX * g.DX)
	ay := kd * dt / (g.DY * g.DY)

	// Pass 1: a full implicit step along x. Results go to s.half; boundary
	// cells carry over unchanged.
	copy(s.half, z)
	rows := tridiag(nx-2, ax)
	err := s.sweep(ny-2, nx-2, func(ls *lineSolver, line int) error {
		y := line + 1
		for k := range ls.rhs {
			ls.rhs[k] = z[g.Index(k+1, y)]
		}
		ls.rhs[0] += ax * z[g.Index(0, y)]
		ls.rhs[len(ls.rhs)-1] += ax * z[g.Index(nx-1, y)]
		if err := rows.SolveVecTo(ls.x, false, ls.b); err != nil {
			return fmt.Errorf("%w: row %d: %v", ErrNumericInstability, y, err)
		}
		for k := range ls.rhs {
			s.half[g.Index(k+1, y)] = ls.x.AtVec(k)
		}
		return nil
	})
	if err != nil {
		return err
	}

	// Pass 2: a full implicit step along y, back into z.
	cols := tridiag(ny-2, ay)
	h := s.half
	return s.sweep(nx-2, ny-2, func(ls *lineSolver, line int) error {
		x := line + 1
		for k := range ls.rhs {
			ls.rhs[k] = h[g.Index(x, k+1)]
		}
		ls.rhs[0] += ay * h[g.Index(x, 0)]
		ls.rhs[len(ls.rhs)-1] += ay * h[g.Index(x, ny-1)]
		if err := cols.SolveVecTo(ls.x, false, ls.b); err != nil {
			return fmt.Errorf("%w: column %d: %v", ErrNumericInstability, x, err)
		}
		for k := range ls.rhs {
			z[g.Index(x, k+1)] = ls.x.AtVec(k)
		}
		return nil
	})
}

// tridiag builds the (1+2a, -a) system of one implicit line step.
func tridiag(n int, a float64) *mat.Tridiag {
	d := make([]float64, n)
	off := make([]float64, n-1)
	lo := make([]float64, n-1)
	for i := range d {
		d[i] = 1 + 2*a
	}
	for i := range off {
		off[i] = -a
		lo[i] = -a
	}
	return mat.NewTridiag(n, lo, d, off)
}

// sweep runs fn over lines [0, count) split into contiguous chunks, one per
// worker. Each worker owns a lineSolver sized for width unknowns.
func (s *DiffusionSolver) sweep(count, width int, fn func(*lineSolver, int) error) error {
	workers := s.workers
	if workers > count {
		workers = count
	}
	for len(s.lines) < workers {
		s.lines = append(s.lines, nil)
	}
	for w := 0; w < workers; w++ {
		if s.lines[w] == nil || len(s.lines[w].rhs) != width {
			s.lines[w] = newLineSolver(width)
		}
	}

	if workers == 1 {
		ls := s.lines[0]
		for l := 0; l < count; l++ {
			if err := fn(ls, l); err != nil {
				return err
			}
		}
		return nil
	}

	var eg errgroup.Group
	eg.SetLimit(workers)
	chunk := (count + workers - 1) / workers
	for w := 0; w < workers; w++ {
		lo, hi := w*chunk, min((w+1)*chunk, count)
		if lo >= hi {
			break
		}
		ls := s.lines[w]
		eg.Go(func() error {
			for l := lo; l < hi; l++ {
				if err := fn(ls, l); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return eg.Wait()
}

// implicit solves the backward Euler system
//
//	(I - dt*Kd*L) z_new = z_old
//
// over interior cells with a Jacobi-preconditioned conjugate gradient. The
// operator is symmetric positive definite, so CG converges; failure to reach
// the tolerance is reported as numeric instability.
func (s *DiffusionSolver) implicit(z []float64, kd, dt float64) error {
	g := s.grid
	n := g.Len()
	if len(s.rhs) != n {
		s.rhs = make([]float64, n)
		s.res = make([]float64, n)
		s.dir = make([]float64, n)
		s.pre = make([]float64, n)
		s.ap = make([]float64, n)
	}
	cx := kd * dt / (g.DX * g.DX)
	cy := kd * dt / (g.DY * g.DY)
	diag := 1 + 2*cx + 2*cy

	// Right-hand side: old interior values plus the known boundary values of
	// the stencil. Boundary entries of every vector stay zero.
	b := s.rhs
	for i := range b {
		b[i] = 0
		if g.IsBoundary(i) {
			continue
		}
		b[i] = z[i]
		for _, nb := range [4]struct {
			j int
			c float64
		}{{i - 1, cx}, {i + 1, cx}, {i - g.NX, cy}, {i + g.NX, cy}} {
			if g.IsBoundary(nb.j) {
				b[i] += nb.c * z[nb.j]
			}
		}
	}

	apply := func(dst, v []float64) {
		for i := range dst {
			if g.IsBoundary(i) {
				dst[i] = 0
				continue
			}
			dst[i] = diag*v[i] - cx*(v[i-1]+v[i+1]) - cy*(v[i-g.NX]+v[i+g.NX])
		}
	}

	// Initial guess is the current interior field.
	x := make([]float64, n)
	for i := range x {
		if !g.IsBoundary(i) {
			x[i] = z[i]
		}
	}
	r, p, q, ap := s.res, s.dir, s.pre, s.ap
	apply(ap, x)
	floats.SubTo(r, b, ap)
	floats.ScaleTo(q, 1/diag, r)
	copy(p, q)
	rq := floats.Dot(r, q)

	bnorm := floats.Norm(b, 2)
	if bnorm == 0 {
		bnorm = 1
	}
	maxIter := max(cgMinMaxIter, n)
	converged := floats.Norm(r, 2) <= cgTolerance*bnorm
	for it := 0; it < maxIter && !converged; it++ {
		apply(ap, p)
		pap := floats.Dot(p, ap)
		if pap <= 0 || math.IsNaN(pap) {
			return fmt.Errorf("%w: diffusion operator lost positive definiteness", ErrNumericInstability)
		}
		alpha := rq / pap
		floats.AddScaled(x, alpha, p)
		floats.AddScaled(r, -alpha, ap)
		if floats.Norm(r, 2) <= cgTolerance*bnorm {
			converged = true
			break
		}
		floats.ScaleTo(q, 1/diag, r)
		rqNext := floats.Dot(r, q)
		beta := rqNext / rq
		rq = rqNext
		floats.AddScaledTo(p, q, beta, p)
	}
	if !converged {
		return fmt.Errorf("%w: conjugate gradient did not converge in %d iterations", ErrNumericInstability, maxIter)
	}
	for i := range z {
		if !g.IsBoundary(i) {
			z[i] = x[i]
		}
	}
	return nil
}
