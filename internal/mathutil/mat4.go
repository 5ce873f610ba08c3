package mathutil

// Mat4 is a row-major affine transform. The bottom row is always 0 0 0 1.
type Mat4 [16]float64

func Mat4Identity() Mat4 {
	return FromMat3Translation(Mat3Identity(), Vec3{})
}

// Mat4Mul returns a × b.
func Mat4Mul(a, b Mat4) Mat4 {
	var m Mat4
	for i := 0; i < 16; i++ {
		r, c := i/4, i%4
		for k := 0; k < 4; k++ {
			m[i] += a[r*4+k] * b[k*4+c]
		}
	}
	return m
}

// MulPoint applies m to a point.
func (m Mat4) MulPoint(v Vec3) Vec3 {
	t := m.Translation()
	p := m.Linear().MulVec3(v)
	return Vec3{p[0] + t[0], p[1] + t[1], p[2] + t[2]}
}

// MulNormal transforms a normal by the inverse transpose of the linear part
// and renormalizes it.
func (m Mat4) MulNormal(n Vec3) Vec3 {
	return m.Linear().NormalMatrix().MulVec3(n).Normalize()
}

func (m Mat4) Linear() Mat3 {
	return Mat3FromRows(
		Vec3{m[0], m[1], m[2]},
		Vec3{m[4], m[5], m[6]},
		Vec3{m[8], m[9], m[10]},
	)
}

func (m Mat4) Translation() Vec3 {
	return Vec3{m[3], m[7], m[11]}
}

// FromMat3Translation places l and t in an affine matrix.
func FromMat3Translation(l Mat3, t Vec3) Mat4 {
	var m Mat4
	for r := 0; r < 3; r++ {
		row := l.Row(r)
		copy(m[r*4:], row[:])
		m[r*4+3] = t[r]
	}
	m[15] = 1
	return m
}

// Mat4FromTRS composes translate × rotate × scale.
func Mat4FromTRS(t Vec3, q Quat, s Vec3) Mat4 {
	return FromMat3Translation(Mat3Mul(q.Mat3(), Mat3Diag(s[0], s[1], s[2])), t)
}

// Mat4FromColumnMajor reads the 16-float column-major layout glTF uses.
func Mat4FromColumnMajor(c [16]float32) Mat4 {
	var m Mat4
	for i := range c {
		m[(i%4)*4+i/4] = float64(c[i])
	}
	return m
}

// IsIdentity reports whether m is the identity within 1e-8 per element.
func (m Mat4) IsIdentity() bool {
	id := Mat4Identity()
	for i := range m {
		if d := m[i] - id[i]; d > 1e-8 || d < -1e-8 {
			return false
		}
	}
	return true
}
