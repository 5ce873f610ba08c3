package preview

import (
	"image"
	"math"
)

// Wrap selects how out-of-range coordinates map into the texture.
type Wrap struct {
	ClampU, ClampV bool
}

func wrapCoord(t float64, clamp bool) float64 {
	if clamp {
		return math.Min(math.Max(t, 0), 1)
	}
	return t - math.Floor(t)
}

// SampleTexture filters tex bilinearly at (u, v), with (0, 0) at the top-left texel.
func SampleTexture(tex *image.NRGBA, u, v float64, wrap Wrap) (r, g, b, a uint8) {
	w, h := tex.Rect.Dx(), tex.Rect.Dy()
	if w == 0 || h == 0 {
		return 0, 0, 0, 0
	}

	fx := wrapCoord(u, wrap.ClampU) * float64(w-1)
	fy := wrapCoord(v, wrap.ClampV) * float64(h-1)
	x0, y0 := int(fx), int(fy)
	tx, ty := fx-float64(x0), fy-float64(y0)

	taps := [4]struct {
		x, y   int
		weight float64
	}{
		{x0, y0, (1 - tx) * (1 - ty)},
		{(x0 + 1) % w, y0, tx * (1 - ty)},
		{x0, (y0 + 1) % h, (1 - tx) * ty},
		{(x0 + 1) % w, (y0 + 1) % h, tx * ty},
	}
	var acc [4]float64
	for _, tp := range taps {
		px := tex.Pix[tex.PixOffset(tex.Rect.Min.X+tp.x, tex.Rect.Min.Y+tp.y):]
		for c := range acc {
			acc[c] += float64(px[c]) * tp.weight
		}
	}
	return uint8(acc[0] + 0.5), uint8(acc[1] + 0.5), uint8(acc[2] + 0.5), uint8(acc[3] + 0.5)
}
