package output

import (
	"image"
	"io"

	"fastscape/internal/sims/landscape"

	"github.com/disintegration/imaging"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Image renders the elevation matrix with the viewer's palette, stretched
// between its minimum and maximum, and enlarged by scale with
// nearest-neighbour sampling. Row 0 of z is the top of the image.
func Image(z *mat.Dense, scale int) image.Image {
	ny, nx := z.Dims()
	vals := make([]float64, 0, nx*ny)
	for y := 0; y < ny; y++ {
		vals = append(vals, z.RawRowView(y)...)
	}
	shades := make([]uint8, len(vals))
	landscape.Shade(shades, vals, floats.Min(vals), floats.Max(vals))

	palette := landscape.ElevationPalette()
	img := image.NewRGBA(image.Rect(0, 0, nx, ny))
	for i, s := range shades {
		c := palette[s]
		o := i * 4
		img.Pix[o+0] = c.R
		img.Pix[o+1] = c.G
		img.Pix[o+2] = c.B
		img.Pix[o+3] = 0xFF
	}
	if scale <= 1 {
		return img
	}
	return imaging.Resize(img, nx*scale, ny*scale, imaging.NearestNeighbor)
}

// WritePNG encodes the rendered elevation as PNG.
func WritePNG(w io.Writer, z *mat.Dense, scale int) error {
	return imaging.Encode(w, Image(z, scale), imaging.PNG)
}

// WritePNGFile saves the rendered elevation; the format follows the file
// extension.
func WritePNGFile(path string, z *mat.Dense, scale int) error {
	return imaging.Save(Image(z, scale), path)
}
