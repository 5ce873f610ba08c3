package mathutil

import "math"

// Vec3 is a float64 triple.
type Vec3 [3]float64

// Vec3From32 widens a float32 triple.
func Vec3From32(v [3]float32) Vec3 {
	return Vec3{float64(v[0]), float64(v[1]), float64(v[2])}
}

// To32 narrows v to float32.
func (v Vec3) To32() [3]float32 {
	return [3]float32{float32(v[0]), float32(v[1]), float32(v[2])}
}

func (v Vec3) Sub(b Vec3) Vec3 {
	return Vec3{v[0] - b[0], v[1] - b[1], v[2] - b[2]}
}

func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v[0] * s, v[1] * s, v[2] * s}
}

func (v Vec3) Dot(b Vec3) float64 {
	return v[0]*b[0] + v[1]*b[1] + v[2]*b[2]
}

func (v Vec3) Cross(b Vec3) Vec3 {
	return Vec3{
		v[1]*b[2] - v[2]*b[1],
		v[2]*b[0] - v[0]*b[2],
		v[0]*b[1] - v[1]*b[0],
	}
}

// Min is the component-wise minimum.
func (v Vec3) Min(b Vec3) Vec3 {
	return Vec3{math.Min(v[0], b[0]), math.Min(v[1], b[1]), math.Min(v[2], b[2])}
}

// Max is the component-wise maximum.
func (v Vec3) Max(b Vec3) Vec3 {
	return Vec3{math.Max(v[0], b[0]), math.Max(v[1], b[1]), math.Max(v[2], b[2])}
}

func (v Vec3) Len() float64 {
	return math.Sqrt(v.Dot(v))
}

// Normalize returns v scaled to unit length; a zero vector stays zero.
func (v Vec3) Normalize() Vec3 {
	l := v.Len()
	if l < 1e-12 {
		return Vec3{}
	}
	return v.Scale(1 / l)
}
