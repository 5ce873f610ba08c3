package preview

import (
	"image"
	"image/color"
	"math"
)

// FrameBuffer is a color target with a depth value per pixel. Larger depth
// is nearer the camera.
type FrameBuffer struct {
	img   *image.NRGBA
	depth []float64
}

// NewFrameBuffer returns a transparent w×h target with every depth at -inf.
func NewFrameBuffer(w, h int) *FrameBuffer {
	depth := make([]float64, w*h)
	for i := range depth {
		depth[i] = math.Inf(-1)
	}
	return &FrameBuffer{img: image.NewNRGBA(image.Rect(0, 0, w, h)), depth: depth}
}

// Size returns the target dimensions.
func (fb *FrameBuffer) Size() (w, h int) {
	return fb.img.Rect.Dx(), fb.img.Rect.Dy()
}

// Closer reports whether z is nearer than what pixel (x, y) holds.
func (fb *FrameBuffer) Closer(x, y int, z float64) bool {
	return z > fb.depth[y*fb.img.Rect.Dx()+x]
}

// Plot writes c and z at (x, y).
func (fb *FrameBuffer) Plot(x, y int, z float64, c color.NRGBA) {
	fb.depth[y*fb.img.Rect.Dx()+x] = z
	fb.img.SetNRGBA(x, y, c)
}

// Image returns a copy of the color target.
func (fb *FrameBuffer) Image() *image.NRGBA {
	out := image.NewNRGBA(fb.img.Rect)
	copy(out.Pix, fb.img.Pix)
	return out
}
