package preview

import (
	"rhst-exporter/internal/mathutil"
	"rhst-exporter/internal/model"
)

// BoneWorlds computes the rest-pose world transform of each bone. Bones
// whose parent index does not precede them are treated as roots.
func BoneWorlds(bones []model.Bone) []mathutil.Mat4 {
	worlds := make([]mathutil.Mat4, len(bones))
	for i, bone := range bones {
		r := bone.SRT.Rotate
		q := mathutil.EulerToQuat(
			mathutil.Deg2Rad(float64(r[0])),
			mathutil.Deg2Rad(float64(r[1])),
			mathutil.Deg2Rad(float64(r[2])),
		)
		local := mathutil.Mat4FromTRS(mathutil.Vec3From32(bone.SRT.Translate), q, mathutil.Vec3From32(bone.SRT.Scale))

		// Chain with parent
		if bone.Parent >= 0 && bone.Parent < i {
			worlds[i] = mathutil.Mat4Mul(worlds[bone.Parent], local)
		} else {
			worlds[i] = local
		}
	}
	return worlds
}
