// Package scene is the authoring-side view of a 3D scene handed to the
// exporter: objects with evaluated, triangulated meshes and the material
// state an artist set up for them.
package scene

import (
	"github.com/pkg/errors"

	"rhst-exporter/internal/mathutil"
)

// ErrBadMesh is returned for meshes whose attribute arrays disagree.
var ErrBadMesh = errors.New("scene: malformed mesh")

// Scene is the set of objects one export pass walks.
type Scene struct {
	Name string
	// Up is the up axis of the source, "z" or "y". Empty means "z".
	Up      string
	Objects []*Object
}

// Object is one placed mesh object.
type Object struct {
	Name     string
	Selected bool

	// World is the object-to-world transform in source axes.
	World mathutil.Mat4
	// Location is the translation part of World.
	Location [3]float32

	// UseOwnBone gives the object a dedicated bone carrying its location.
	UseOwnBone bool
	Billboard  Billboard

	UsePriority  bool
	DrawPriority int

	// Mesh is nil when evaluating the object's geometry failed; MeshErr says why.
	Mesh    *Mesh
	MeshErr error

	// Materials holds the object's material slots. Slots may be nil.
	Materials []*Material
}

// Transform returns World, or the identity when World was never set.
func (o *Object) Transform() mathutil.Mat4 {
	if o.World == (mathutil.Mat4{}) {
		return mathutil.Mat4Identity()
	}
	return o.World
}

// Priority is the draw priority used for every draw call of the object.
func (o *Object) Priority() int {
	if o.UsePriority {
		return o.DrawPriority
	}
	return 0
}

// BillboardAxis selects how a billboarded bone is constrained.
type BillboardAxis string

const (
	AxisWorld  BillboardAxis = "z"
	AxisScreen BillboardAxis = "zrotate"
	AxisY      BillboardAxis = "y"
)

// BillboardLook selects whether the bone faces the camera point or plane.
type BillboardLook string

const (
	LookPoint    BillboardLook = "face"
	LookParallel BillboardLook = "parallel"
)

// Billboard is the per-object billboard setting.
type Billboard struct {
	Enabled bool          `json:"enabled" yaml:"enabled"`
	Axis    BillboardAxis `json:"axis" yaml:"axis"`
	Look    BillboardLook `json:"look" yaml:"look"`
}

// Mode renders the setting the way bones store it: "none" or "<axis>_<look>".
func (b Billboard) Mode() string {
	if !b.Enabled {
		return "none"
	}
	axis, look := b.Axis, b.Look
	if axis == "" {
		axis = AxisWorld
	}
	if look == "" {
		look = LookPoint
	}
	return string(axis) + "_" + string(look)
}

// Triangle indexes three vertices and names the material slot it uses.
type Triangle struct {
	V        [3]int
	Material int
}

// Mesh is triangulated geometry. Positions and normals are per vertex;
// color and UV layers are per triangle corner (3 entries per triangle, in
// triangle order).
type Mesh struct {
	Positions   [][3]float32
	Normals     [][3]float32
	Triangles   []Triangle
	ColorLayers []ColorLayer
	UVLayers    []UVLayer
}

// ColorLayer is one per-corner RGBA layer in [0,1].
type ColorLayer struct {
	Name string
	Data [][4]float32
}

// UVLayer is one per-corner UV layer with the origin at the bottom left.
type UVLayer struct {
	Name string
	Data [][2]float32
}

// Corners returns the number of triangle corners.
func (m *Mesh) Corners() int {
	return len(m.Triangles) * 3
}

// Validate checks index ranges and per-corner layer lengths.
func (m *Mesh) Validate() error {
	if len(m.Normals) != 0 && len(m.Normals) != len(m.Positions) {
		return errors.Wrapf(ErrBadMesh, "%d normals for %d positions", len(m.Normals), len(m.Positions))
	}
	for i, t := range m.Triangles {
		for _, v := range t.V {
			if v < 0 || v >= len(m.Positions) {
				return errors.Wrapf(ErrBadMesh, "triangle %d references vertex %d of %d", i, v, len(m.Positions))
			}
		}
	}
	n := m.Corners()
	for _, l := range m.ColorLayers {
		if len(l.Data) != n {
			return errors.Wrapf(ErrBadMesh, "color layer %q has %d corners, want %d", l.Name, len(l.Data), n)
		}
	}
	for _, l := range m.UVLayers {
		if len(l.Data) != n {
			return errors.Wrapf(ErrBadMesh, "uv layer %q has %d corners, want %d", l.Name, len(l.Data), n)
		}
	}
	return nil
}
