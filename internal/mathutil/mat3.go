package mathutil

import "math"

// Mat3 is a row-major 3×3 matrix.
type Mat3 [9]float64

func Mat3Identity() Mat3 {
	return Mat3Diag(1, 1, 1)
}

func Mat3Diag(x, y, z float64) Mat3 {
	return Mat3{x, 0, 0, 0, y, 0, 0, 0, z}
}

// Mat3FromRows stacks three row vectors.
func Mat3FromRows(a, b, c Vec3) Mat3 {
	return Mat3{a[0], a[1], a[2], b[0], b[1], b[2], c[0], c[1], c[2]}
}

// Row returns row i.
func (m Mat3) Row(i int) Vec3 {
	return Vec3{m[i*3], m[i*3+1], m[i*3+2]}
}

// Col returns column i.
func (m Mat3) Col(i int) Vec3 {
	return Vec3{m[i], m[3+i], m[6+i]}
}

// Mat3Mul returns a × b.
func Mat3Mul(a, b Mat3) Mat3 {
	var m Mat3
	for r := 0; r < 3; r++ {
		row := a.Row(r)
		for c := 0; c < 3; c++ {
			m[r*3+c] = row.Dot(b.Col(c))
		}
	}
	return m
}

// MulVec3 returns m × v.
func (m Mat3) MulVec3(v Vec3) Vec3 {
	return Vec3{m.Row(0).Dot(v), m.Row(1).Dot(v), m.Row(2).Dot(v)}
}

// Det is the scalar triple product of the rows.
func (m Mat3) Det() float64 {
	return m.Row(0).Dot(m.Row(1).Cross(m.Row(2)))
}

// cofactor returns the cofactor matrix, whose rows are the pairwise cross
// products of m's rows.
func (m Mat3) cofactor() Mat3 {
	r0, r1, r2 := m.Row(0), m.Row(1), m.Row(2)
	return Mat3FromRows(r1.Cross(r2), r2.Cross(r0), r0.Cross(r1))
}

// Inverse returns m⁻¹, or the identity for a singular matrix.
func (m Mat3) Inverse() Mat3 {
	d := m.Det()
	if d == 0 {
		return Mat3Identity()
	}
	return m.cofactor().Transpose().scale(1 / d)
}

// NormalMatrix is the inverse transpose of m, used to carry normals through
// non-uniform scales. Singular matrices yield the identity.
func (m Mat3) NormalMatrix() Mat3 {
	d := m.Det()
	if d == 0 {
		return Mat3Identity()
	}
	return m.cofactor().scale(1 / d)
}

func (m Mat3) Transpose() Mat3 {
	return Mat3FromRows(m.Col(0), m.Col(1), m.Col(2))
}

func (m Mat3) scale(s float64) Mat3 {
	for i := range m {
		m[i] *= s
	}
	return m
}

// RotX rotates about X by a radians.
func RotX(a float64) Mat3 {
	c, s := math.Cos(a), math.Sin(a)
	return Mat3FromRows(Vec3{1, 0, 0}, Vec3{0, c, -s}, Vec3{0, s, c})
}

// RotY rotates about Y by a radians.
func RotY(a float64) Mat3 {
	c, s := math.Cos(a), math.Sin(a)
	return Mat3FromRows(Vec3{c, 0, s}, Vec3{0, 1, 0}, Vec3{-s, 0, c})
}

func Deg2Rad(d float64) float64 {
	return d * math.Pi / 180
}
