package output

import (
	"fmt"
	"os"

	"fastscape/internal/sims/landscape"

	"github.com/ctessum/cdf"
)

// NetCDFMeta describes the run stored alongside the snapshots.
type NetCDFMeta struct {
	XS, YS  []float64
	Params  landscape.Params
	Comment string
}

// WriteNetCDF stores snapshots as elevation(time, y, x) together with the x,
// y and time coordinate variables. Every snapshot must hold len(XS)*len(YS)
// values.
func WriteNetCDF(w *os.File, meta NetCDFMeta, snaps []landscape.Snapshot) error {
	nx, ny := len(meta.XS), len(meta.YS)
	if len(snaps) == 0 {
		return fmt.Errorf("output: no snapshots to write")
	}
	for _, s := range snaps {
		if len(s.Elevation) != nx*ny {
			return fmt.Errorf("output: snapshot at step %d has %d values, want %d", s.Step, len(s.Elevation), nx*ny)
		}
	}

	h := cdf.NewHeader([]string{"time", "y", "x"}, []int{len(snaps), ny, nx})
	if meta.Comment != "" {
		h.AddAttribute("", "comment", meta.Comment)
	}
	h.AddAttribute("", "k_sp", []float64{meta.Params.KSP})
	h.AddAttribute("", "k_diff", []float64{meta.Params.KDiff})
	h.AddAttribute("", "u_rate", []float64{meta.Params.URate})
	h.AddAttribute("", "m_exp", []float64{meta.Params.MExp})
	h.AddAttribute("", "n_exp", []float64{meta.Params.NExp})
	h.AddAttribute("", "nx", []int32{int32(nx)})
	h.AddAttribute("", "ny", []int32{int32(ny)})

	h.AddVariable("x", []string{"x"}, []float64{0})
	h.AddAttribute("x", "units", "m")
	h.AddVariable("y", []string{"y"}, []float64{0})
	h.AddAttribute("y", "units", "m")
	h.AddVariable("time", []string{"time"}, []float64{0})
	h.AddAttribute("time", "units", "yr")
	h.AddVariable("elevation", []string{"time", "y", "x"}, []float64{0})
	h.AddAttribute("elevation", "units", "m")
	h.AddAttribute("elevation", "description", "topographic elevation")
	h.Define()

	f, err := cdf.Create(w, h)
	if err != nil {
		return err
	}

	times := make([]float64, len(snaps))
	elev := make([]float64, 0, len(snaps)*nx*ny)
	for i, s := range snaps {
		times[i] = s.Time
		elev = append(elev, s.Elevation...)
	}
	for _, v := range []struct {
		name string
		data []float64
	}{
		{"x", meta.XS},
		{"y", meta.YS},
		{"time", times},
		{"elevation", elev},
	} {
		if err := writeVar(f, v.name, v.data); err != nil {
			return fmt.Errorf("output: writing %s to netcdf: %v", v.name, err)
		}
	}
	return cdf.UpdateNumRecs(w)
}

// WriteNetCDFFile creates path and writes the snapshots into it.
func WriteNetCDFFile(path string, meta NetCDFMeta, snaps []landscape.Snapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteNetCDF(f, meta, snaps); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeVar(f *cdf.File, name string, data []float64) error {
	end := f.Header.Lengths(name)
	n := 1
	for _, l := range end {
		n *= l
	}
	if len(data) != n {
		return fmt.Errorf("dims are %d but array length is %d", n, len(data))
	}
	start := make([]int, len(end))
	_, err := f.Writer(name, start, end).Write(data)
	return err
}
