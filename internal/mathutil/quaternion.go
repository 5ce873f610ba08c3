package mathutil

import "math"

// Quat is a rotation quaternion stored x, y, z, w.
type Quat [4]float64

func QuatIdentity() Quat {
	return Quat{3: 1}
}

// EulerToQuat composes rotations about X, then Y, then Z (radians).
func EulerToQuat(rx, ry, rz float64) Quat {
	sx, cx := math.Sincos(rx / 2)
	sy, cy := math.Sincos(ry / 2)
	sz, cz := math.Sincos(rz / 2)
	return Quat{
		sx*cy*cz - cx*sy*sz,
		cx*sy*cz + sx*cy*sz,
		cx*cy*sz - sx*sy*cz,
		cx*cy*cz + sx*sy*sz,
	}
}

// Mat3 returns the rotation matrix of q, which must be unit length.
func (q Quat) Mat3() Mat3 {
	x, y, z, w := q[0], q[1], q[2], q[3]
	return Mat3FromRows(
		Vec3{1 - 2*(y*y+z*z), 2 * (x*y - w*z), 2 * (x*z + w*y)},
		Vec3{2 * (x*y + w*z), 1 - 2*(x*x+z*z), 2 * (y*z - w*x)},
		Vec3{2 * (x*z - w*y), 2 * (y*z + w*x), 1 - 2*(x*x+y*y)},
	)
}
