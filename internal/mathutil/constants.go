package mathutil

import "math"

var (
	// ZUpToYUp maps Z-up source axes to the Y-up, -Z-forward target: (x, y, z) → (x, z, -y).
	ZUpToYUp = Mat3FromRows(Vec3{1, 0, 0}, Vec3{0, 0, 1}, Vec3{0, -1, 0})

	// PreviewCamera tilts the model down 20° and turns it 30° for thumbnails.
	PreviewCamera = Mat3Mul(RotX(Deg2Rad(20)), RotY(Deg2Rad(-30)))
)

// Round32 snaps values within 1e-6 of an integer, which hides float noise
// left by axis swaps and rotations.
func Round32(v [3]float32) [3]float32 {
	for i, x := range v {
		if r := float32(math.Round(float64(x))); x-r < 1e-6 && r-x < 1e-6 {
			v[i] = r
		}
	}
	return v
}
