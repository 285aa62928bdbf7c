package landscape

import "gonum.org/v1/gonum/mat"

// Snapshot is a copy of the elevation field at a point in the run.
type Snapshot struct {
	Step      int
	Time      float64
	Elevation []float64 // row-major, y_size*x_size
}

// Matrix views the snapshot as a (y_size, x_size) matrix. The matrix shares
// the snapshot's backing array.
func (s Snapshot) Matrix(nx, ny int) *mat.Dense {
	return mat.NewDense(ny, nx, s.Elevation)
}

func (m *Model) record() {
	z := make([]float64, m.grid.Len())
	copy(z, m.topo.Elevation())
	m.snapshots = append(m.snapshots, Snapshot{Step: m.step, Time: m.time, Elevation: z})
}

// FinalSnapshot returns the current field as a snapshot, whether or not
// periodic snapshots are enabled.
func (m *Model) FinalSnapshot() Snapshot {
	if n := len(m.snapshots); n > 0 && m.snapshots[n-1].Step == m.step {
		return m.snapshots[n-1]
	}
	z := make([]float64, m.grid.Len())
	copy(z, m.topo.Elevation())
	return Snapshot{Step: m.step, Time: m.time, Elevation: z}
}
