//go:build ebiten

package render

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
)

// GridPainter uploads a cell buffer into an ebiten image and draws it scaled.
type GridPainter struct {
	img *ebiten.Image
	buf []byte
}

// NewGridPainter allocates a painter for a w x h grid.
func NewGridPainter(w, h int) *GridPainter {
	return &GridPainter{
		img: ebiten.NewImage(w, h),
		buf: make([]byte, 4*w*h),
	}
}

// Blit draws cells onto screen through palette, scaled by scale.
func (p *GridPainter) Blit(screen *ebiten.Image, cells []uint8, palette []color.RGBA, scale int) {
	if len(cells)*4 != len(p.buf) {
		return
	}
	FillPaletteRGBA(p.buf, cells, palette)
	p.img.WritePixels(p.buf)
	if scale <= 0 {
		scale = 1
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(scale), float64(scale))
	screen.DrawImage(p.img, op)
}
