// Package render converts simulation cells into RGBA pixel buffers.
package render

import "image/color"

// FillPaletteRGBA converts cell values into RGBA pixels using a palette.
// Values past the end of the palette use its last colour. When the palette
// is empty the buffer is cleared to transparent black.
func FillPaletteRGBA(buf []byte, cells []uint8, palette []color.RGBA) {
	if len(palette) == 0 {
		for i := range cells {
			base := i * 4
			buf[base+0] = 0
			buf[base+1] = 0
			buf[base+2] = 0
			buf[base+3] = 0
		}
		return
	}

	last := len(palette) - 1
	for i, c := range cells {
		idx := int(c)
		if idx > last {
			idx = last
		}
		base := i * 4
		col := palette[idx]
		buf[base+0] = col.R
		buf[base+1] = col.G
		buf[base+2] = col.B
		buf[base+3] = col.A
	}
}

// GreyPalette is used for simulations that do not provide their own colours.
func GreyPalette() []color.RGBA {
	p := make([]color.RGBA, 256)
	for i := range p {
		v := uint8(i)
		p[i] = color.RGBA{R: v, G: v, B: v, A: 255}
	}
	return p
}
