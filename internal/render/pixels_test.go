package render

import (
	"image/color"
	"testing"
)

func TestFillPaletteRGBAClampsToLastColour(t *testing.T) {
	palette := []color.RGBA{{R: 1, A: 255}, {G: 2, A: 255}}
	buf := make([]byte, 3*4)
	FillPaletteRGBA(buf, []uint8{0, 1, 200}, palette)
	want := []byte{1, 0, 0, 255, 0, 2, 0, 255, 0, 2, 0, 255}
	for i := range want {
		if buf[i] != want[i] {
			t.Fatalf("buf = %v, want %v", buf, want)
		}
	}
}

func TestFillPaletteRGBAEmptyPaletteClears(t *testing.T) {
	buf := []byte{9, 9, 9, 9}
	FillPaletteRGBA(buf, []uint8{3}, nil)
	for _, b := range buf {
		if b != 0 {
			t.Fatalf("buf = %v, want cleared", buf)
		}
	}
}

func TestGreyPalette(t *testing.T) {
	p := GreyPalette()
	if len(p) != 256 || p[0].R != 0 || p[255].B != 255 || p[128].A != 255 {
		t.Fatalf("unexpected grey palette endpoints")
	}
}
