package preview

import (
	"math"

	"rhst-exporter/internal/mathutil"
)

// Lights is the fixed preview rig: a warm key from the upper right, a rim
// from behind and a sky term, all two-sided so unculled back faces still read.
type Lights struct {
	Key, Rim mathutil.Vec3
	half     mathutil.Vec3

	Ambient, Sky, KeyGain, RimGain float64
	Shininess, Gloss               float64
	Exposure, Gamma                float64
}

// DefaultLights is tuned for matte course geometry seen from PreviewCamera.
func DefaultLights() *Lights {
	key := mathutil.Vec3{0.48, 0.7, 0.38}.Normalize()
	return &Lights{
		Key:       key,
		Rim:       mathutil.Vec3{-0.55, 0.45, -0.72}.Normalize(),
		half:      key.Sub(mathutil.Vec3{0, 0, -1}).Normalize(),
		Ambient:   0.45,
		Sky:       0.4,
		KeyGain:   1.2,
		RimGain:   0.35,
		Shininess: 16,
		Gloss:     0.15,
		Exposure:  1,
		Gamma:     2.2,
	}
}

// Shade is the light intensity reaching a face with unit normal n.
func (l *Lights) Shade(n mathutil.Vec3) float64 {
	sky := 0.5 + 0.5*(1-math.Abs(n[1]))
	spec := math.Pow(math.Max(n.Dot(l.half), 0), l.Shininess)
	return l.Ambient +
		l.Sky*sky +
		l.KeyGain*math.Abs(n.Dot(l.Key)) +
		l.RimGain*math.Abs(n.Dot(l.Rim)) +
		l.Gloss*spec
}

// Expose lights one 8-bit sRGB channel: linearize, scale by tint and shade,
// tone map, then re-encode.
func (l *Lights) Expose(c uint8, tint, shade float64) uint8 {
	lin := decodeGamma[c] * tint * shade * l.Exposure
	return clamp255(255 * math.Pow(filmic(lin), 1/l.Gamma))
}

var decodeGamma = func() (t [256]float64) {
	for i := range t {
		t[i] = math.Pow(float64(i)/255, 2.2)
	}
	return t
}()

// filmic is the Narkowicz fit of the ACES curve.
func filmic(x float64) float64 {
	const a, b, c, d, e = 2.51, 0.03, 2.43, 0.59, 0.14
	return x * (a*x + b) / (x*(c*x+d) + e)
}
