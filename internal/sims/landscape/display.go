package landscape

import (
	"fmt"
	"image/color"

	"github.com/mazznoer/colorgrad"
	"gonum.org/v1/gonum/floats"
)

// PaletteSize is the number of shades Cells maps elevation onto.
const PaletteSize = 256

var elevationPalette = buildElevationPalette()

// Palette exposes the colours used for rendering the elevation shades.
func (m *Model) Palette() []color.RGBA {
	return elevationPalette
}

// ElevationPalette returns the PaletteSize colours indexed by Shade, low to
// high.
func ElevationPalette() []color.RGBA {
	return elevationPalette
}

func buildElevationPalette() []color.RGBA {
	cols := colorgrad.Viridis().Colors(PaletteSize)
	palette := make([]color.RGBA, len(cols))
	for i, c := range cols {
		r, g, b, a := c.RGBA()
		palette[i] = color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: uint8(a >> 8)}
	}
	return palette
}

// Cells exposes the elevation quantised to palette indices, stretched
// between the current minimum and maximum.
func (m *Model) Cells() []uint8 {
	if m.displayDirty {
		m.rebuildDisplay()
		m.displayDirty = false
	}
	return m.display
}

func (m *Model) rebuildDisplay() {
	z := m.topo.Elevation()
	Shade(m.display, z, floats.Min(z), floats.Max(z))
}

// Shade writes the palette index of every value in z into dst, mapping lo to
// 0 and hi to PaletteSize-1. A flat field maps to 0.
func Shade(dst []uint8, z []float64, lo, hi float64) {
	span := hi - lo
	for i, v := range z {
		if span <= 0 {
			dst[i] = 0
			continue
		}
		t := (v - lo) / span
		switch {
		case t <= 0:
			dst[i] = 0
		case t >= 1:
			dst[i] = PaletteSize - 1
		default:
			dst[i] = uint8(t * (PaletteSize - 1))
		}
	}
}

// DrainageArea exposes the drainage area of the network built by the last
// step. It is all zeros before the first step.
func (m *Model) DrainageArea() []float64 { return m.router.Area() }

// ElevationField exposes the live elevation for overlays.
func (m *Model) ElevationField() []float64 { return m.topo.Elevation() }

// Status is a one-line summary of the run position.
func (m *Model) Status() string {
	s := fmt.Sprintf("step %d/%d  t=%.4g yr  %s", m.step, m.cfg.Steps(), m.time, m.state)
	if m.err != nil {
		s += "  error: " + m.err.Error()
	}
	return s
}
