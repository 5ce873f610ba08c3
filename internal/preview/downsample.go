package preview

import (
	"image"

	"golang.org/x/image/draw"
)

// Downsample scales a supersampled render down to a size×size square. The
// filter runs on premultiplied pixels so transparent background does not
// darken silhouette edges.
func Downsample(img *image.NRGBA, size int) *image.NRGBA {
	b := img.Bounds()
	if b.Dx() <= size && b.Dy() <= size {
		return img
	}

	// Drawing into RGBA premultiplies; drawing back into NRGBA undoes it.
	src := image.NewRGBA(b)
	draw.Draw(src, b, img, b.Min, draw.Src)

	small := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(small, small.Bounds(), src, b, draw.Src, nil)

	out := image.NewNRGBA(small.Bounds())
	draw.Draw(out, out.Bounds(), small, image.Point{}, draw.Src)
	return out
}
