package export

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rhst-exporter/internal/mathutil"
	"rhst-exporter/internal/model"
	"rhst-exporter/internal/rhst"
	"rhst-exporter/internal/scene"
	"rhst-exporter/internal/vcd"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func texturedMaterial(name, image string) *scene.Material {
	m := scene.DefaultMaterial(name)
	m.Samplers = []scene.Sampler{scene.DefaultSampler(0, image)}
	return m
}

// triangleObject has one triangle per material slot.
func triangleObject(name string, mats ...*scene.Material) *scene.Object {
	mesh := &scene.Mesh{
		Positions: [][3]float32{{1, 2, 3}, {0, 0, 0}, {1, 0, 0}},
		Normals:   [][3]float32{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}},
	}
	for i := range mats {
		mesh.Triangles = append(mesh.Triangles, scene.Triangle{V: [3]int{0, 1, 2}, Material: i})
	}
	uv := scene.UVLayer{Name: "uv"}
	for range mesh.Triangles {
		uv.Data = append(uv.Data, [2]float32{0, 0.25}, [2]float32{1, 0}, [2]float32{0, 1})
	}
	mesh.UVLayers = []scene.UVLayer{uv}
	return &scene.Object{
		Name:      name,
		World:     mathutil.Mat4Identity(),
		Mesh:      mesh,
		Materials: mats,
	}
}

func plainParams() Params {
	p := DefaultParams()
	p.Magnification = 1
	p.FlipFaces = false
	return p
}

func TestSynthesizedColor(t *testing.T) {
	s := &scene.Scene{Objects: []*scene.Object{triangleObject("a", texturedMaterial("m", "grass.png"))}}
	b, stats := Build(s, plainParams(), quiet)
	require.Equal(t, 1, stats.Polygons)

	poly := b.Polygons()[0]
	assert.Equal(t, 1, poly.Descriptor[vcd.Color0])
	assert.Equal(t, 0, poly.Descriptor[vcd.Color1])
	require.Len(t, poly.Facepoints, 3)
	for _, fp := range poly.Facepoints {
		require.Len(t, fp, poly.Descriptor.Arity())
		assert.Equal(t, []float32{1, 1, 1, 1}, fp[2])
	}
}

func TestNoDummyColors(t *testing.T) {
	s := &scene.Scene{Objects: []*scene.Object{triangleObject("a", texturedMaterial("m", "grass.png"))}}
	p := plainParams()
	p.AddDummyColors = false
	b, _ := Build(s, p, quiet)
	poly := b.Polygons()[0]
	assert.Equal(t, 0, poly.Descriptor.Colors())
	assert.Len(t, poly.Facepoints[0], 3)
}

func TestFacepointsMatchDescriptor(t *testing.T) {
	o := triangleObject("a", texturedMaterial("m", "grass.png"))
	o.Mesh.ColorLayers = []scene.ColorLayer{
		{Name: "c0", Data: [][4]float32{{1, 0, 0, 1}, {0, 1, 0, 1}, {0, 0, 1, 1}}},
		{Name: "c1", Data: make([][4]float32, 3)},
		{Name: "c2", Data: make([][4]float32, 3)},
	}
	b, _ := Build(&scene.Scene{Objects: []*scene.Object{o}}, plainParams(), quiet)
	poly := b.Polygons()[0]
	assert.Equal(t, 2, poly.Descriptor.Colors())
	for _, fp := range poly.Facepoints {
		assert.NoError(t, poly.Descriptor.Check(len(fp)))
	}
	assert.Equal(t, []float32{1, 0, 0, 1}, poly.Facepoints[0][2])
}

func TestAxisConversionAndUVFlip(t *testing.T) {
	s := &scene.Scene{Objects: []*scene.Object{triangleObject("a", texturedMaterial("m", "grass.png"))}}
	p := plainParams()
	p.Magnification = 2
	b, _ := Build(s, p, quiet)
	fp := b.Polygons()[0].Facepoints[0]
	assert.Equal(t, []float32{2, 6, -4}, fp[0])
	assert.InDelta(t, 1, fp[1][1], 1e-6)
	assert.Equal(t, []float32{0, 0.75}, fp[len(fp)-1])
}

func TestFlipFaces(t *testing.T) {
	s := &scene.Scene{Objects: []*scene.Object{triangleObject("a", texturedMaterial("m", "grass.png"))}}
	p := plainParams()
	p.FlipFaces = true
	p.SourceUp = "y"
	b, _ := Build(s, p, quiet)
	fps := b.Polygons()[0].Facepoints
	assert.Equal(t, []float32{1, 2, 3}, fps[0][0])
	assert.Equal(t, []float32{1, 0, 0}, fps[1][0])
	assert.Equal(t, []float32{0, 0, -1}, fps[0][1])
}

func TestSharedRootPresent(t *testing.T) {
	own := triangleObject("lamp", texturedMaterial("m", "grass.png"))
	own.UseOwnBone = true
	shared := triangleObject("floor", texturedMaterial("m", "grass.png"))

	b, _ := Build(&scene.Scene{Objects: []*scene.Object{own, shared}}, plainParams(), quiet)
	bones := b.Bones()
	require.Len(t, bones, 2)
	assert.Equal(t, model.RootBoneName, bones[0].Name)
	assert.Equal(t, 0, bones[1].Parent)
	assert.Len(t, bones[0].Draws, 1)
	assert.Len(t, bones[1].Draws, 1)
	assert.Equal(t, 1, b.MaterialCount())
	assert.Equal(t, 1, b.Polygons()[0].CurrentMatrix)
}

func TestAllOwnBones(t *testing.T) {
	a := triangleObject("a", texturedMaterial("m", "grass.png"))
	a.UseOwnBone = true
	a.Location = [3]float32{1, 2, 3}
	a.Billboard = scene.Billboard{Enabled: true, Axis: scene.AxisY, Look: scene.LookParallel}
	c := triangleObject("c", texturedMaterial("m", "grass.png"))
	c.UseOwnBone = true

	p := plainParams()
	p.Magnification = 10
	b, _ := Build(&scene.Scene{Objects: []*scene.Object{a, c}}, p, quiet)

	bones := b.Bones()
	require.Len(t, bones, 2)
	assert.Equal(t, "a", bones[0].Name)
	assert.Equal(t, -1, bones[0].Parent)
	assert.Equal(t, -1, bones[1].Parent)
	assert.Equal(t, [3]float32{10, 30, -20}, bones[0].SRT.Translate)
	assert.Equal(t, "y_parallel", bones[0].Billboard)
	assert.Equal(t, "none", bones[1].Billboard)
	assert.Len(t, b.Weights(), 2)
	assert.Equal(t, []model.Weight{{Bone: 1, Percent: 100}}, b.Weights()[1])

	// Own-bone geometry ignores the object transform.
	assert.Equal(t, []float32{10, 30, -20}, b.Polygons()[0].Facepoints[0][0])
}

func TestSkips(t *testing.T) {
	failed := &scene.Object{Name: "broken"}
	untextured := triangleObject("plain", scene.DefaultMaterial("bare"))
	holes := triangleObject("holes", nil, texturedMaterial("m", "grass.png"))
	unused := triangleObject("unused", texturedMaterial("m", "grass.png"), texturedMaterial("n", "rock.png"))
	unused.Mesh.Triangles = unused.Mesh.Triangles[:1]
	unused.Mesh.UVLayers[0].Data = unused.Mesh.UVLayers[0].Data[:3]

	s := &scene.Scene{Objects: []*scene.Object{failed, untextured, holes, unused}}
	b, stats := Build(s, plainParams(), quiet)
	assert.Equal(t, 1, stats.Skipped)
	assert.Equal(t, 2, stats.Polygons)
	assert.Equal(t, "holes___grass", b.Polygons()[0].Name)
	assert.Equal(t, "unused___grass", b.Polygons()[1].Name)
	assert.Equal(t, []string{"grass"}, Textures(b))
}

func TestSelectionOnly(t *testing.T) {
	a := triangleObject("a", texturedMaterial("m", "grass.png"))
	a.Selected = true
	c := triangleObject("c", texturedMaterial("m", "grass.png"))
	c.UseOwnBone = true

	p := plainParams()
	p.SelectionOnly = true
	b, _ := Build(&scene.Scene{Objects: []*scene.Object{a, c}}, p, quiet)
	assert.Len(t, b.Polygons(), 1)
	assert.Len(t, b.Bones(), 1)
}

func TestUnsplitExportsOnce(t *testing.T) {
	o := triangleObject("a", texturedMaterial("m", "grass.png"), texturedMaterial("n", "rock.png"))
	p := plainParams()
	p.SplitByMaterial = false
	b, _ := Build(&scene.Scene{Objects: []*scene.Object{o}}, p, quiet)
	require.Len(t, b.Polygons(), 1)
	assert.Len(t, b.Polygons()[0].Facepoints, 6)
}

func TestPriority(t *testing.T) {
	o := triangleObject("a", texturedMaterial("m", "grass.png"))
	o.UsePriority = true
	o.DrawPriority = 7
	b, _ := Build(&scene.Scene{Objects: []*scene.Object{o}}, plainParams(), quiet)
	assert.Equal(t, 7, b.Bones()[0].Draws[0].Priority)
}

func TestExportBinaryAndJSON(t *testing.T) {
	s := &scene.Scene{Name: "s", Objects: []*scene.Object{triangleObject("a", texturedMaterial("m", "grass.png"))}}
	dir := t.TempDir()

	bin := filepath.Join(dir, "course.rhst")
	res, err := Export(s, plainParams(), bin, FormatBinary, false, quiet)
	require.NoError(t, err)
	assert.Equal(t, []string{"grass"}, res.Textures)

	data, err := os.ReadFile(bin)
	require.NoError(t, err)
	_, decoded, err := rhst.Decode(data)
	require.NoError(t, err)
	tree := res.Graph.Tree()
	assert.True(t, rhst.Equal(tree, decoded))

	js := filepath.Join(dir, "course.json")
	jsRes, err := Export(s, plainParams(), js, FormatJSON, true, quiet)
	require.NoError(t, err)
	f, err := os.Open(js)
	require.NoError(t, err)
	defer f.Close()
	parsed, err := rhst.ParseJSON(f)
	require.NoError(t, err)
	assert.True(t, rhst.Equal(jsRes.Graph.Tree(), parsed))
	assert.True(t, rhst.Equal(tree, parsed))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	_, err = Export(s, plainParams(), js, "xml", false, quiet)
	assert.Error(t, err)
}
