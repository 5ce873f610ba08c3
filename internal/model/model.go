// Package model grows the normalized scene graph of one export pass:
// bones with their draw calls, the weight table, deduplicated materials
// and polygons, and renders it as the {head, body} tree.
package model

import (
	"cogentcore.org/core/base/ordmap"
	"github.com/pkg/errors"

	"rhst-exporter/internal/material"
	"rhst-exporter/internal/vcd"
)

// Format tags written into the head section.
const (
	FormatType       = "JMDL2"
	DefaultGenerator = "rhst-exporter"
	DefaultVersion   = "Beta 1"
	// RootBoneName names the implicit shared bone.
	RootBoneName = "rhst_root"
)

var (
	ErrUnknownBone = errors.New("model: unknown bone")
	ErrBoneIndex   = errors.New("model: bone index out of range")
)

// SRT is a scale/rotate/translate triple. Rotation is Euler XYZ in degrees.
type SRT struct {
	Scale     [3]float32 `json:"scale" toml:"scale" yaml:"scale"`
	Rotate    [3]float32 `json:"rotate" toml:"rotate" yaml:"rotate"`
	Translate [3]float32 `json:"translate" toml:"translate" yaml:"translate"`
}

// Identity is the unit transform.
func Identity() SRT {
	return SRT{Scale: [3]float32{1, 1, 1}}
}

// DrawCall binds a material and a polygon with a priority. It lives in the
// draw list of the bone that owns it.
type DrawCall struct {
	Material int
	Mesh     int
	Priority int
}

// Bone is one node of the skeleton.
type Bone struct {
	Name      string
	Parent    int
	Child     int
	SRT       SRT
	Min, Max  [3]float32
	Billboard string
	Draws     []DrawCall
}

// Weight is one (bone, percent) influence.
type Weight struct {
	Bone    int
	Percent int
}

// Facepoint is one triangle corner: position, normal, then the color and
// UV tuples the polygon's descriptor declares.
type Facepoint [][]float32

// Polygon is an exported mesh.
type Polygon struct {
	Name          string
	PrimitiveType string
	CurrentMatrix int
	Descriptor    vcd.Descriptor
	Facepoints    []Facepoint
}

// Options fixes the graph-wide settings before any bone is appended.
type Options struct {
	Name      string
	Generator string
	Version   string
	// Root is the transform of the implicit shared bone.
	Root SRT
	// SharedRoot keeps the implicit root bone. It must be false when every
	// exported object carries its own bone.
	SharedRoot bool
	// RootName overrides RootBoneName.
	RootName string
}

// Builder accumulates one export pass. It is not safe for concurrent use;
// each export owns its own.
type Builder struct {
	opts      Options
	nextMesh  int
	polygons  []Polygon
	materials *ordmap.Map[string, material.Material]
	bones     []Bone
	weights   [][]Weight
	parent    int
}

// New returns an empty graph. With SharedRoot set it starts with the root
// bone at index 0 and its 100% weight row; dedicated bones then parent to
// it. Otherwise dedicated bones are roots themselves (parent -1).
func New(opts Options) *Builder {
	if opts.Generator == "" {
		opts.Generator = DefaultGenerator
	}
	if opts.Version == "" {
		opts.Version = DefaultVersion
	}
	if opts.RootName == "" {
		opts.RootName = RootBoneName
	}
	if opts.Root == (SRT{}) {
		opts.Root = Identity()
	}
	b := &Builder{
		opts:      opts,
		materials: ordmap.New[string, material.Material](),
		parent:    -1,
	}
	if opts.SharedRoot {
		b.bones = append(b.bones, Bone{
			Name:      opts.RootName,
			Parent:    -1,
			Child:     -1,
			SRT:       opts.Root,
			Billboard: "none",
		})
		b.weights = append(b.weights, []Weight{{Bone: 0, Percent: 100}})
		b.parent = 0
	}
	return b
}

// AllocMeshID returns the next mesh id.
func (b *Builder) AllocMeshID() int {
	id := b.nextMesh
	b.nextMesh++
	return id
}

// AddMesh appends p and returns its id.
func (b *Builder) AddMesh(p Polygon) int {
	b.polygons = append(b.polygons, p)
	return b.AllocMeshID()
}

// AddMaterial registers m under its name and returns its id. A material
// whose name is already known is discarded and the existing id returned.
func (b *Builder) AddMaterial(m material.Material) int {
	if idx, ok := b.materials.IndexByKeyTry(m.Name); ok {
		return idx
	}
	b.materials.Add(m.Name, m)
	return b.materials.Len() - 1
}

// AppendBone adds a bone and its 100% weight row, and returns its index.
func (b *Builder) AppendBone(name string, srt SRT, billboard string) int {
	idx := len(b.bones)
	if billboard == "" {
		billboard = "none"
	}
	b.bones = append(b.bones, Bone{
		Name:      name,
		Parent:    b.parent,
		Child:     -1,
		SRT:       srt,
		Billboard: billboard,
	})
	b.weights = append(b.weights, []Weight{{Bone: idx, Percent: 100}})
	return idx
}

// BoneRef names a bone either by index or by name.
type BoneRef struct {
	Index int
	Name  string
	named bool
}

// BoneIndex refers to an already resolved bone.
func BoneIndex(i int) BoneRef { return BoneRef{Index: i} }

// BoneNamed refers to a bone by name.
func BoneNamed(name string) BoneRef { return BoneRef{Name: name, named: true} }

// BoneID resolves ref. Indices pass through unchanged; names resolve to the
// first bone with that name.
func (b *Builder) BoneID(ref BoneRef) (int, error) {
	if !ref.named {
		return ref.Index, nil
	}
	for i, bone := range b.bones {
		if bone.Name == ref.Name {
			return i, nil
		}
	}
	return -1, errors.Wrapf(ErrUnknownBone, "%q", ref.Name)
}

// AppendDrawCall adds a draw of mesh with mat to the bone ref resolves to.
func (b *Builder) AppendDrawCall(mat, mesh, priority int, ref BoneRef) error {
	id, err := b.BoneID(ref)
	if err != nil {
		return err
	}
	if id < 0 || id >= len(b.bones) {
		return errors.Wrapf(ErrBoneIndex, "%d of %d", id, len(b.bones))
	}
	b.bones[id].Draws = append(b.bones[id].Draws, DrawCall{Material: mat, Mesh: mesh, Priority: priority})
	return nil
}

// DefaultBone is the bone draw calls go to when an object has none of its
// own: the shared root if present.
func (b *Builder) DefaultBone() BoneRef {
	return BoneIndex(0)
}

func (b *Builder) Name() string        { return b.opts.Name }
func (b *Builder) Bones() []Bone       { return b.bones }
func (b *Builder) Weights() [][]Weight { return b.weights }
func (b *Builder) Polygons() []Polygon { return b.polygons }
func (b *Builder) MeshCount() int      { return b.nextMesh }
func (b *Builder) MaterialCount() int  { return b.materials.Len() }
func (b *Builder) HasSharedRoot() bool { return b.opts.SharedRoot }
func (b *Builder) Options() Options    { return b.opts }

// Materials returns the materials in id order.
func (b *Builder) Materials() []material.Material {
	return b.materials.Values()
}

// Material returns the material with the given id.
func (b *Builder) Material(id int) material.Material {
	return b.materials.ValueByIndex(id)
}

// Validate checks that every facepoint carries exactly the tuples the
// descriptor declares.
func (p Polygon) Validate() error {
	for i, fp := range p.Facepoints {
		if err := p.Descriptor.Check(len(fp)); err != nil {
			return errors.Wrapf(err, "polygon %q facepoint %d", p.Name, i)
		}
	}
	return nil
}
