// Package gltfscene loads a glTF 2.0 document as an authoring scene.
//
// Exporter settings that glTF has no field for travel in "extras" under the
// "rhst" key: on nodes the object settings (own bone, billboard, priority,
// selection), on materials a full material description.
package gltfscene

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"

	"rhst-exporter/internal/mathutil"
	"rhst-exporter/internal/scene"
)

// ExtrasKey is the extras entry carrying exporter settings.
const ExtrasKey = "rhst"

// NodeSettings is the per-node extras payload.
type NodeSettings struct {
	Selected     bool            `json:"selected"`
	UseOwnBone   bool            `json:"use_own_bone"`
	Billboard    scene.Billboard `json:"billboard"`
	UsePriority  bool            `json:"use_priority"`
	DrawPriority int             `json:"draw_priority"`
}

// Load opens a .gltf or .glb file.
func Load(path string, log *slog.Logger) (*scene.Scene, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "gltfscene: open %s", path)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return FromDocument(doc, name, log)
}

type loader struct {
	doc       *gltf.Document
	log       *slog.Logger
	materials map[uint32]*scene.Material
	scene     *scene.Scene
}

// FromDocument converts doc. Nodes of the default scene (or every root node
// when there is none) are walked depth first; each node with a mesh becomes
// one object.
func FromDocument(doc *gltf.Document, name string, log *slog.Logger) (*scene.Scene, error) {
	if log == nil {
		log = slog.Default()
	}
	l := &loader{
		doc:       doc,
		log:       log,
		materials: map[uint32]*scene.Material{},
		scene:     &scene.Scene{Name: name, Up: "y"},
	}
	roots, err := l.roots()
	if err != nil {
		return nil, err
	}
	for _, n := range roots {
		if err := l.walk(n, mathutil.Mat4Identity(), 0); err != nil {
			return nil, err
		}
	}
	return l.scene, nil
}

func (l *loader) roots() ([]uint32, error) {
	if len(l.doc.Scenes) > 0 {
		idx := uint32(0)
		if l.doc.Scene != nil {
			idx = *l.doc.Scene
		}
		if int(idx) >= len(l.doc.Scenes) {
			return nil, errors.Errorf("gltfscene: scene %d of %d", idx, len(l.doc.Scenes))
		}
		return l.doc.Scenes[idx].Nodes, nil
	}
	child := make([]bool, len(l.doc.Nodes))
	for _, n := range l.doc.Nodes {
		for _, c := range n.Children {
			if int(c) < len(child) {
				child[c] = true
			}
		}
	}
	var roots []uint32
	for i := range l.doc.Nodes {
		if !child[i] {
			roots = append(roots, uint32(i))
		}
	}
	return roots, nil
}

func (l *loader) walk(idx uint32, parent mathutil.Mat4, depth int) error {
	if int(idx) >= len(l.doc.Nodes) {
		return errors.Errorf("gltfscene: node %d of %d", idx, len(l.doc.Nodes))
	}
	if depth > len(l.doc.Nodes) {
		return errors.Errorf("gltfscene: node hierarchy has a cycle at node %d", idx)
	}
	node := l.doc.Nodes[idx]
	world := mathutil.Mat4Mul(parent, localMatrix(node))

	if node.Mesh != nil {
		l.scene.Objects = append(l.scene.Objects, l.object(idx, node, world))
	}
	for _, c := range node.Children {
		if err := l.walk(c, world, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func localMatrix(n *gltf.Node) mathutil.Mat4 {
	if m := n.MatrixOrDefault(); m != gltf.DefaultMatrix {
		return mathutil.Mat4FromColumnMajor(m)
	}
	t := n.TranslationOrDefault()
	r := n.RotationOrDefault()
	s := n.ScaleOrDefault()
	return mathutil.Mat4FromTRS(
		mathutil.Vec3From32(t),
		mathutil.Quat{float64(r[0]), float64(r[1]), float64(r[2]), float64(r[3])},
		mathutil.Vec3From32(s),
	)
}

func (l *loader) object(idx uint32, node *gltf.Node, world mathutil.Mat4) *scene.Object {
	name := node.Name
	if name == "" {
		name = fmt.Sprintf("node%d", idx)
	}
	o := &scene.Object{
		Name:     name,
		World:    world,
		Location: world.Translation().To32(),
	}
	var settings NodeSettings
	if err := decodeExtras(node.Extras, &settings); err != nil {
		l.log.Warn("ignoring node settings", "object", name, "err", err)
	}
	o.Selected = settings.Selected
	o.UseOwnBone = settings.UseOwnBone
	o.Billboard = settings.Billboard
	o.UsePriority = settings.UsePriority
	o.DrawPriority = settings.DrawPriority

	if int(*node.Mesh) >= len(l.doc.Meshes) {
		o.MeshErr = errors.Errorf("gltfscene: mesh %d of %d", *node.Mesh, len(l.doc.Meshes))
		return o
	}
	mesh, slots, err := l.mesh(l.doc.Meshes[*node.Mesh])
	if err != nil {
		o.MeshErr = err
		return o
	}
	o.Mesh = mesh
	for _, s := range slots {
		o.Materials = append(o.Materials, l.material(s))
	}
	return o
}

// decodeExtras fills v from the ExtrasKey entry of extras, if any.
func decodeExtras(extras any, v any) error {
	m, ok := extras.(map[string]any)
	if !ok {
		return nil
	}
	raw, ok := m[ExtrasKey]
	if !ok {
		return nil
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return errors.Wrap(err, "gltfscene: extras")
	}
	return errors.Wrap(json.Unmarshal(data, v), "gltfscene: extras")
}
