package mathutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestZUpToYUp(t *testing.T) {
	v := ZUpToYUp.MulVec3(Vec3{1, 2, 3})
	assert.Equal(t, Vec3{1, 3, -2}, v)
}

func TestMat4FromTRS(t *testing.T) {
	q := EulerToQuat(0, 0, math.Pi/2)
	m := Mat4FromTRS(Vec3{10, 0, 0}, q, Vec3{2, 2, 2})
	p := m.MulPoint(Vec3{1, 0, 0})
	assert.InDelta(t, 10, p[0], 1e-9)
	assert.InDelta(t, 2, p[1], 1e-9)
	assert.InDelta(t, 0, p[2], 1e-9)
	assert.Equal(t, Vec3{10, 0, 0}, m.Translation())
}

func TestMat4FromColumnMajor(t *testing.T) {
	c := [16]float32{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		5, 6, 7, 1,
	}
	m := Mat4FromColumnMajor(c)
	assert.Equal(t, Vec3{5, 6, 7}, m.Translation())
}

func TestMulNormalIgnoresTranslationAndScale(t *testing.T) {
	m := Mat4FromTRS(Vec3{3, 4, 5}, QuatIdentity(), Vec3{4, 1, 1})
	n := m.MulNormal(Vec3{0, 1, 0})
	assert.InDelta(t, 1, n[1], 1e-9)
}

func TestRound32(t *testing.T) {
	assert.Equal(t, [3]float32{1, 0, -2}, Round32([3]float32{1.0000001, -0.0000001, -2}))
	assert.Equal(t, [3]float32{0.5, 0, 0}, Round32([3]float32{0.5, 0, 0}))
}

func TestMat3Inverse(t *testing.T) {
	m := Mat3Mul(RotY(0.7), Mat3Diag(2, 3, 4))
	id := Mat3Mul(m, m.Inverse())
	for i, want := range Mat3Identity() {
		assert.InDelta(t, want, id[i], 1e-12)
	}
	assert.Equal(t, Mat3Identity(), Mat3Diag(1, 0, 1).Inverse())
}

func TestNormalMatrixIsInverseTranspose(t *testing.T) {
	m := Mat3Mul(RotX(0.3), Mat3Diag(1, 5, 2))
	want := m.Inverse().Transpose()
	got := m.NormalMatrix()
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-12)
	}
}

func TestVec3MinMax(t *testing.T) {
	a, b := Vec3{1, -2, 3}, Vec3{0, 4, 3}
	assert.Equal(t, Vec3{0, -2, 3}, a.Min(b))
	assert.Equal(t, Vec3{1, 4, 3}, a.Max(b))
}
