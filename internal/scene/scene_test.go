package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBillboardMode(t *testing.T) {
	assert.Equal(t, "none", Billboard{Axis: AxisY}.Mode())
	assert.Equal(t, "z_face", Billboard{Enabled: true}.Mode())
	assert.Equal(t, "y_parallel", Billboard{Enabled: true, Axis: AxisY, Look: LookParallel}.Mode())
}

func TestPriority(t *testing.T) {
	o := &Object{DrawPriority: 4}
	assert.Equal(t, 0, o.Priority())
	o.UsePriority = true
	assert.Equal(t, 4, o.Priority())
}

func TestTransformDefaultsToIdentity(t *testing.T) {
	o := &Object{}
	assert.True(t, o.Transform().IsIdentity())
}

func TestMeshValidate(t *testing.T) {
	m := &Mesh{
		Positions: [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		Triangles: []Triangle{{V: [3]int{0, 1, 2}}},
		UVLayers:  []UVLayer{{Name: "uv", Data: make([][2]float32, 3)}},
	}
	assert.NoError(t, m.Validate())

	m.Triangles = append(m.Triangles, Triangle{V: [3]int{0, 1, 3}})
	assert.ErrorIs(t, m.Validate(), ErrBadMesh)

	m.Triangles = m.Triangles[:1]
	m.ColorLayers = []ColorLayer{{Name: "col", Data: make([][4]float32, 2)}}
	assert.ErrorIs(t, m.Validate(), ErrBadMesh)
}

func TestDefaultMaterial(t *testing.T) {
	m := DefaultMaterial("m")
	assert.Equal(t, PEOpaque, m.PEMode)
	assert.Equal(t, "opa", m.PE.DrawPass)
}
