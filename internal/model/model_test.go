package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rhst-exporter/internal/material"
	"rhst-exporter/internal/rhst"
	"rhst-exporter/internal/vcd"
)

func TestMeshIDsAreDense(t *testing.T) {
	b := New(Options{SharedRoot: true})
	for i := 0; i < 5; i++ {
		assert.Equal(t, i, b.AddMesh(Polygon{Name: "p"}))
	}
	assert.Len(t, b.Polygons(), 5)
	assert.Equal(t, 5, b.AllocMeshID())
}

func TestMaterialDedupFirstWins(t *testing.T) {
	b := New(Options{SharedRoot: true})
	first := material.Material{Name: "Mat1", Samplers: []material.Sampler{{Texture: "grass"}}}
	second := material.Material{Name: "Mat1", Samplers: []material.Sampler{{Texture: "rock"}}}

	assert.Equal(t, 0, b.AddMaterial(first))
	assert.Equal(t, 0, b.AddMaterial(second))
	assert.Equal(t, 1, b.AddMaterial(material.Material{Name: "Mat2"}))

	require.Equal(t, 2, b.MaterialCount())
	assert.Equal(t, first, b.Material(0))
}

func TestSharedRoot(t *testing.T) {
	b := New(Options{SharedRoot: true})
	require.Len(t, b.Bones(), 1)
	assert.Equal(t, RootBoneName, b.Bones()[0].Name)
	assert.Equal(t, -1, b.Bones()[0].Parent)
	assert.Equal(t, [][]Weight{{{Bone: 0, Percent: 100}}}, b.Weights())

	idx := b.AppendBone("lamp", Identity(), "y_face")
	assert.Equal(t, 1, idx)
	assert.Equal(t, 0, b.Bones()[1].Parent)
	assert.Equal(t, []Weight{{Bone: 1, Percent: 100}}, b.Weights()[1])
}

func TestNoSharedRoot(t *testing.T) {
	b := New(Options{})
	assert.Empty(t, b.Bones())
	assert.Empty(t, b.Weights())

	idx := b.AppendBone("a", Identity(), "")
	assert.Equal(t, 0, idx)
	assert.Equal(t, -1, b.Bones()[0].Parent)
	assert.Equal(t, "none", b.Bones()[0].Billboard)
	assert.Equal(t, [][]Weight{{{Bone: 0, Percent: 100}}}, b.Weights())
}

func TestBoneID(t *testing.T) {
	b := New(Options{SharedRoot: true})
	b.AppendBone("a", Identity(), "none")
	b.AppendBone("a", Identity(), "none")

	id, err := b.BoneID(BoneIndex(7))
	require.NoError(t, err)
	assert.Equal(t, 7, id)

	id, err = b.BoneID(BoneNamed("a"))
	require.NoError(t, err)
	assert.Equal(t, 1, id)

	_, err = b.BoneID(BoneNamed("missing"))
	assert.ErrorIs(t, err, ErrUnknownBone)
}

func TestAppendDrawCall(t *testing.T) {
	b := New(Options{SharedRoot: true})
	b.AppendBone("lamp", Identity(), "none")

	require.NoError(t, b.AppendDrawCall(0, 0, 3, b.DefaultBone()))
	require.NoError(t, b.AppendDrawCall(1, 1, 0, BoneNamed("lamp")))
	assert.Equal(t, []DrawCall{{Material: 0, Mesh: 0, Priority: 3}}, b.Bones()[0].Draws)
	assert.Equal(t, []DrawCall{{Material: 1, Mesh: 1}}, b.Bones()[1].Draws)

	assert.ErrorIs(t, b.AppendDrawCall(0, 0, 0, BoneIndex(5)), ErrBoneIndex)
	assert.ErrorIs(t, b.AppendDrawCall(0, 0, 0, BoneNamed("nope")), ErrUnknownBone)
}

func TestPolygonValidate(t *testing.T) {
	p := Polygon{
		Name:       "p",
		Descriptor: vcd.Compute(0, 1, true),
		Facepoints: []Facepoint{
			{{0, 0, 0}, {0, 1, 0}, {1, 1, 1, 1}, {0, 1}},
		},
	}
	require.NoError(t, p.Validate())

	p.Facepoints = append(p.Facepoints, Facepoint{{0, 0, 0}, {0, 1, 0}})
	assert.ErrorIs(t, p.Validate(), vcd.ErrFacepointShape)
}

func TestTreeShape(t *testing.T) {
	b := New(Options{Name: "course", SharedRoot: true})
	mesh := b.AddMesh(Polygon{
		Name:       "obj___tex",
		Descriptor: vcd.Compute(0, 0, false),
		Facepoints: []Facepoint{{{1, 2, 3}, {0, 0, 1}}},
	})
	mat := b.AddMaterial(material.Material{Name: "m"})
	require.NoError(t, b.AppendDrawCall(mat, mesh, 0, b.DefaultBone()))

	tree := b.Tree()
	head, ok := tree.Get("head")
	require.True(t, ok)
	typ, _ := head.(*rhst.Object).Get("type")
	assert.Equal(t, rhst.String(FormatType), typ)

	bodyV, _ := tree.Get("body")
	body := bodyV.(*rhst.Object)
	assert.Equal(t, "course", body.Name())
	var keys []string
	for _, f := range body.Fields {
		keys = append(keys, f.Key)
	}
	assert.Equal(t, []string{"name", "materials", "polygons", "weights", "bones"}, keys)

	polys, _ := body.Get("polygons")
	poly := polys.(rhst.Array)[0].(*rhst.Object)
	pt, _ := poly.Get("primitive_type")
	assert.Equal(t, rhst.String(PrimitiveFan), pt)
	groups, _ := poly.Get("matrix_primitives")
	matrix, _ := groups.(rhst.Array)[0].(*rhst.Object).Get("matrix")
	assert.Len(t, matrix, MatrixSlots)

	bones, _ := body.Get("bones")
	draws, _ := bones.(rhst.Array)[0].(*rhst.Object).Get("draws")
	assert.True(t, rhst.Equal(rhst.Array{rhst.Ints(0, 0, 0)}, draws))

	// The tree must survive the binary round trip.
	data, err := rhst.Marshal(tree)
	require.NoError(t, err)
	_, back, err := rhst.Decode(data)
	require.NoError(t, err)
	assert.True(t, rhst.Equal(tree, back))
}
