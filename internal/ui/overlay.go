//go:build ebiten

package ui

import (
	"image/color"
	"math"

	"fastscape/internal/core"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"
)

type drainageProvider interface {
	DrainageArea() []float64
}

type elevationFieldProvider interface {
	ElevationField() []float64
}

type statusProvider interface {
	Status() string
}

// riverThreshold is the fraction of the largest drainage area below which
// cells are not drawn as channels.
const riverThreshold = 1e-3

// Overlay draws optional visuals on top of the elevation view: the channel
// network (key 1), hillshading (key 2) and a status line (key 3).
type Overlay struct {
	sim        core.Sim
	scale      int
	spacing    float64
	showRivers bool
	showShade  bool
	showStatus bool

	maskImg *ebiten.Image
	maskBuf []byte
	mask    []float32

	shadeImg *ebiten.Image
	shadeBuf []byte
	shade    []float64
}

// NewOverlay constructs a new overlay instance. spacing is the cell size in
// metres used for hillshading.
func NewOverlay(sim core.Sim, scale int, spacing float64) *Overlay {
	return &Overlay{sim: sim, scale: scale, spacing: spacing, showStatus: true}
}

// Update toggles the layers from the keyboard.
func (o *Overlay) Update() {
	if inpututil.IsKeyJustPressed(ebiten.KeyDigit1) {
		o.showRivers = !o.showRivers
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyDigit2) {
		o.showShade = !o.showShade
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyDigit3) {
		o.showStatus = !o.showStatus
	}
}

// Draw renders the enabled layers onto the provided screen.
func (o *Overlay) Draw(screen *ebiten.Image) {
	size := o.sim.Size()
	total := size.W * size.H
	if total == 0 {
		return
	}

	if o.showShade {
		if provider, ok := o.sim.(elevationFieldProvider); ok {
			o.drawShade(screen, provider.ElevationField(), size)
		}
	}

	if o.showRivers {
		if provider, ok := o.sim.(drainageProvider); ok {
			if len(o.mask) != total {
				o.mask = make([]float32, total)
			}
			RiverMask(o.mask, provider.DrainageArea(), riverThreshold)
			o.drawMask(screen, o.mask, color.RGBA{R: 64, G: 164, B: 223})
		}
	}

	if o.showStatus {
		if provider, ok := o.sim.(statusProvider); ok {
			face := basicfont.Face7x13
			text.Draw(screen, provider.Status(), face, 6, 16, color.RGBA{R: 240, G: 240, B: 245, A: 255})
		}
	}
}

func (o *Overlay) pixelScale() float64 {
	if o.scale <= 0 {
		return 1
	}
	return float64(o.scale)
}

func ensureLayer(img *ebiten.Image, buf []byte, size core.Size) (*ebiten.Image, []byte) {
	if img == nil || img.Bounds().Dx() != size.W || img.Bounds().Dy() != size.H {
		img = ebiten.NewImage(size.W, size.H)
	}
	if len(buf) != 4*size.W*size.H {
		buf = make([]byte, 4*size.W*size.H)
	}
	return img, buf
}

func (o *Overlay) drawMask(screen *ebiten.Image, mask []float32, tint color.RGBA) {
	size := o.sim.Size()
	total := size.W * size.H
	if len(mask) != total {
		return
	}
	o.maskImg, o.maskBuf = ensureLayer(o.maskImg, o.maskBuf, size)
	const (
		maxAlpha      = 200.0
		glowBase      = 0.45
		glowRange     = 0.55
		intensityBias = 0.6
	)

	for i := 0; i < total; i++ {
		base := i * 4
		intensity := clamp01(float64(mask[i]))
		if intensity == 0 {
			o.maskBuf[base+0] = 0
			o.maskBuf[base+1] = 0
			o.maskBuf[base+2] = 0
			o.maskBuf[base+3] = 0
			continue
		}
		alpha := math.Round(maxAlpha * math.Pow(intensity, intensityBias))
		glow := glowBase + glowRange*math.Sqrt(intensity)
		// Pixels are premultiplied.
		o.maskBuf[base+0] = scaleColorComponent(tint.R, glow*alpha/255)
		o.maskBuf[base+1] = scaleColorComponent(tint.G, glow*alpha/255)
		o.maskBuf[base+2] = scaleColorComponent(tint.B, glow*alpha/255)
		o.maskBuf[base+3] = uint8(alpha)
	}
	o.maskImg.WritePixels(o.maskBuf)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(o.pixelScale(), o.pixelScale())
	screen.DrawImage(o.maskImg, op)
}

func (o *Overlay) drawShade(screen *ebiten.Image, field []float64, size core.Size) {
	total := size.W * size.H
	if len(field) != total {
		return
	}
	o.shadeImg, o.shadeBuf = ensureLayer(o.shadeImg, o.shadeBuf, size)
	if len(o.shade) != total {
		o.shade = make([]float64, total)
	}
	Hillshade(o.shade, field, size.W, size.H, o.spacing)

	const maxAlpha = 150.0
	for i, s := range o.shade {
		base := i * 4
		// Dark where the slope faces away from the light, clear where lit.
		alpha := uint8(math.Round(maxAlpha * (1 - s)))
		o.shadeBuf[base+0] = 0
		o.shadeBuf[base+1] = 0
		o.shadeBuf[base+2] = 0
		o.shadeBuf[base+3] = alpha
	}
	o.shadeImg.WritePixels(o.shadeBuf)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(o.pixelScale(), o.pixelScale())
	screen.DrawImage(o.shadeImg, op)
}

func scaleColorComponent(value uint8, factor float64) uint8 {
	scaled := math.Round(float64(value) * factor)
	if scaled < 0 {
		return 0
	}
	if scaled > 255 {
		return 255
	}
	return uint8(scaled)
}
