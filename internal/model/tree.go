package model

import (
	"rhst-exporter/internal/rhst"
)

// Polygon record constants.
const (
	PrimitiveFan       = "triangle_fan"
	PrimitiveTriangles = "triangles"
	// MatrixSlots is the length of the per-group matrix list; unused slots are -1.
	MatrixSlots = 10
)

// Tree renders the graph.
func (b *Builder) Tree() *rhst.Object {
	head := (&rhst.Object{}).
		Set("generator", rhst.String(b.opts.Generator)).
		Set("type", rhst.String(FormatType)).
		Set("version", rhst.String(b.opts.Version))

	mats := b.Materials()
	materials := make(rhst.Array, len(mats))
	for i, m := range mats {
		materials[i] = m.Value()
	}
	polygons := make(rhst.Array, len(b.polygons))
	for i, p := range b.polygons {
		polygons[i] = p.Value()
	}
	weights := make(rhst.Array, len(b.weights))
	for i, row := range b.weights {
		entries := make(rhst.Array, len(row))
		for j, w := range row {
			entries[j] = rhst.Ints(w.Bone, w.Percent)
		}
		weights[i] = entries
	}
	bones := make(rhst.Array, len(b.bones))
	for i, bone := range b.bones {
		bones[i] = bone.Value()
	}

	body := rhst.NewObject(b.opts.Name)
	if b.opts.Name == "" {
		body.Set("name", rhst.String(""))
	}
	body.Set("materials", materials).
		Set("polygons", polygons).
		Set("weights", weights).
		Set("bones", bones)

	return (&rhst.Object{}).Set("head", head).Set("body", body)
}

// Value renders the bone record.
func (bone Bone) Value() *rhst.Object {
	draws := make(rhst.Array, len(bone.Draws))
	for i, d := range bone.Draws {
		draws[i] = rhst.Ints(d.Material, d.Mesh, d.Priority)
	}
	return rhst.NewObject(bone.Name).
		Set("parent", rhst.Int(bone.Parent)).
		Set("child", rhst.Int(bone.Child)).
		Set("scale", rhst.Vec3(bone.SRT.Scale)).
		Set("rotate", rhst.Vec3(bone.SRT.Rotate)).
		Set("translate", rhst.Vec3(bone.SRT.Translate)).
		Set("min", rhst.Vec3(bone.Min)).
		Set("max", rhst.Vec3(bone.Max)).
		Set("billboard", rhst.String(bone.Billboard)).
		Set("draws", draws)
}

// Value renders the polygon record. All facepoints go into a single
// matrix-primitive group with one triangle list.
func (p Polygon) Value() *rhst.Object {
	facepoints := make(rhst.Array, len(p.Facepoints))
	for i, fp := range p.Facepoints {
		tuples := make(rhst.Array, len(fp))
		for j, t := range fp {
			tuples[j] = rhst.Floats(t...)
		}
		facepoints[i] = tuples
	}

	matrix := make([]int, MatrixSlots)
	for i := range matrix {
		matrix[i] = -1
	}
	primitive := (&rhst.Object{}).
		Set("primitive_type", rhst.String(PrimitiveTriangles)).
		Set("facepoints", facepoints)
	group := (&rhst.Object{}).
		Set("matrix", rhst.Ints(matrix...)).
		Set("primitives", rhst.Array{primitive})

	primType := p.PrimitiveType
	if primType == "" {
		primType = PrimitiveFan
	}
	return rhst.NewObject(p.Name).
		Set("primitive_type", rhst.String(primType)).
		Set("current_matrix", rhst.Int(p.CurrentMatrix)).
		Set("facepoint_format", rhst.Ints(p.Descriptor.Ints()...)).
		Set("matrix_primitives", rhst.Array{group})
}
