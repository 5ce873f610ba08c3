package preview

import (
	"image"
	"image/color"
	"math"

	"rhst-exporter/internal/mathutil"
)

// Vertex is a projected triangle corner. X and Y are in pixels, Z grows
// toward the viewer.
type Vertex struct {
	X, Y, Z float64
	U, V    float64
	// Color modulates the texel, RGBA in [0,1].
	Color [4]float64
}

// RasterizeTriangle rasterizes a single triangle with texture mapping, z-buffer,
// sRGB color space, lighting, and ACES tone mapping. tex may be nil, in which
// case base is used for every pixel.
//
// All lighting is flat-shaded (per-face, not per-pixel).
func RasterizeTriangle(fb *FrameBuffer, t [3]Vertex, tex *image.NRGBA, wrap Wrap, base [4]uint8, lights *Lights) {
	a, b, c := t[0], t[1], t[2]

	// Face normal for flat shading
	n := mathutil.Vec3{b.X - a.X, b.Y - a.Y, b.Z - a.Z}.Cross(mathutil.Vec3{c.X - a.X, c.Y - a.Y, c.Z - a.Z})
	if n.Len() < 1e-8 {
		return
	}
	shade := lights.Shade(n.Normalize())

	// Bounding box
	w, h := fb.Size()
	minX := max(int(math.Min(math.Min(a.X, b.X), c.X)), 0)
	maxX := min(int(math.Max(math.Max(a.X, b.X), c.X))+1, w-1)
	minY := max(int(math.Min(math.Min(a.Y, b.Y), c.Y)), 0)
	maxY := min(int(math.Max(math.Max(a.Y, b.Y), c.Y))+1, h-1)
	if minX >= maxX || minY >= maxY {
		return
	}

	// Barycentric setup
	det := (b.Y-c.Y)*(a.X-c.X) + (c.X-b.X)*(a.Y-c.Y)
	if det > -1e-8 && det < 1e-8 {
		return
	}
	invDet := 1.0 / det

	dy12 := b.Y - c.Y
	dx21 := c.X - b.X
	dy20 := c.Y - a.Y
	dx02 := a.X - c.X

	for sy := minY; sy <= maxY; sy++ {
		dsy := float64(sy) - c.Y
		for sx := minX; sx <= maxX; sx++ {
			dsx := float64(sx) - c.X
			w0 := (dy12*dsx + dx21*dsy) * invDet
			w1 := (dy20*dsx + dx02*dsy) * invDet
			w2 := 1.0 - w0 - w1

			if w0 < -0.001 || w1 < -0.001 || w2 < -0.001 {
				continue
			}

			z := w0*a.Z + w1*b.Z + w2*c.Z
			if !fb.Closer(sx, sy, z) {
				continue
			}

			cr, cg, cb, ca := base[0], base[1], base[2], base[3]
			if tex != nil {
				u := w0*a.U + w1*b.U + w2*c.U
				v := w0*a.V + w1*b.V + w2*c.V
				cr, cg, cb, ca = SampleTexture(tex, u, v, wrap)
			}
			vr := w0*a.Color[0] + w1*b.Color[0] + w2*c.Color[0]
			vg := w0*a.Color[1] + w1*b.Color[1] + w2*c.Color[1]
			vb := w0*a.Color[2] + w1*b.Color[2] + w2*c.Color[2]
			va := w0*a.Color[3] + w1*b.Color[3] + w2*c.Color[3]
			alpha := clamp255(float64(ca) * va)

			// Skip transparent texels
			if alpha < 8 {
				continue
			}

			fb.Plot(sx, sy, z, color.NRGBA{
				R: lights.Expose(cr, vr, shade),
				G: lights.Expose(cg, vg, shade),
				B: lights.Expose(cb, vb, shade),
				A: alpha,
			})
		}
	}
}

func clamp255(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
