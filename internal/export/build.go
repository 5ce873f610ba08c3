// Package export runs one export pass: it walks a scene into a model
// graph and serializes the graph as RHST binary or JSON.
package export

import (
	"log/slog"
	"sort"

	"rhst-exporter/internal/material"
	"rhst-exporter/internal/mathutil"
	"rhst-exporter/internal/model"
	"rhst-exporter/internal/scene"
	"rhst-exporter/internal/vcd"
)

// DefaultMagnification scales scene units (meters) to model units.
const DefaultMagnification = 1000

// Params controls an export pass.
type Params struct {
	Name      string
	Generator string
	Version   string

	Magnification float64
	// SourceUp overrides the scene's up axis, "z" or "y".
	SourceUp string
	Root     model.SRT

	SplitByMaterial bool
	AddDummyColors  bool
	SelectionOnly   bool
	// FlipFaces reverses triangle winding and negates normals.
	FlipFaces bool

	ForceSRGB bool
	// BaseDir resolves relative material preset paths.
	BaseDir string
}

// DefaultParams mirrors the exporter's stock settings.
func DefaultParams() Params {
	return Params{
		Name:            "course",
		Magnification:   DefaultMagnification,
		Root:            model.Identity(),
		SplitByMaterial: true,
		AddDummyColors:  true,
		FlipFaces:       true,
	}
}

// Stats counts what a pass produced and skipped.
type Stats struct {
	Objects   int `json:"objects"`
	Skipped   int `json:"skipped"`
	Polygons  int `json:"polygons"`
	Materials int `json:"materials"`
	Bones     int `json:"bones"`
	DrawCalls int `json:"draw_calls"`
}

type pass struct {
	p      Params
	b      *model.Builder
	log    *slog.Logger
	global mathutil.Mat4
	stats  Stats
}

// Build walks s into a fresh graph. Objects and materials that cannot be
// exported are logged and skipped; Build itself does not fail.
func Build(s *scene.Scene, p Params, log *slog.Logger) (*model.Builder, Stats) {
	if log == nil {
		log = slog.Default()
	}
	if p.Magnification == 0 {
		p.Magnification = DefaultMagnification
	}

	objects := make([]*scene.Object, 0, len(s.Objects))
	for _, o := range s.Objects {
		if o.Selected || !p.SelectionOnly {
			objects = append(objects, o)
		}
	}

	shared := false
	for _, o := range objects {
		if !o.UseOwnBone {
			shared = true
			break
		}
	}

	ps := &pass{
		p: p,
		b: model.New(model.Options{
			Name:       p.Name,
			Generator:  p.Generator,
			Version:    p.Version,
			Root:       p.Root,
			SharedRoot: shared,
		}),
		log:    log,
		global: globalMatrix(p.Magnification, sourceUp(s, p)),
	}
	for _, o := range objects {
		ps.object(o)
	}

	ps.stats.Polygons = ps.b.MeshCount()
	ps.stats.Materials = ps.b.MaterialCount()
	ps.stats.Bones = len(ps.b.Bones())
	return ps.b, ps.stats
}

func sourceUp(s *scene.Scene, p Params) string {
	if p.SourceUp != "" {
		return p.SourceUp
	}
	if s.Up != "" {
		return s.Up
	}
	return "z"
}

// globalMatrix scales to model units and converts the scene's axes to
// Y-up, -Z forward.
func globalMatrix(mag float64, up string) mathutil.Mat4 {
	axis := mathutil.Mat3Identity()
	if up != "y" {
		axis = mathutil.ZUpToYUp
	}
	m := mathutil.Mat3Mul(mathutil.Mat3Diag(mag, mag, mag), axis)
	return mathutil.FromMat3Translation(m, mathutil.Vec3{})
}

func (ps *pass) object(o *scene.Object) {
	log := ps.log.With("object", o.Name)
	if o.Mesh == nil {
		log.Warn("skipping object", "reason", "mesh evaluation failed", "err", o.MeshErr)
		ps.stats.Skipped++
		return
	}
	if err := o.Mesh.Validate(); err != nil {
		log.Warn("skipping object", "reason", err)
		ps.stats.Skipped++
		return
	}
	ps.stats.Objects++

	bone := ps.b.DefaultBone()
	boneIndex := 0
	xf := mathutil.Mat4Mul(ps.global, o.Transform())
	if o.UseOwnBone {
		t := ps.global.MulPoint(mathutil.Vec3From32(o.Location)).To32()
		srt := model.Identity()
		srt.Translate = mathutil.Round32(t)
		ps.b.AppendBone(o.Name, srt, o.Billboard.Mode())
		bone = model.BoneNamed(o.Name)
		id, err := ps.b.BoneID(bone)
		if err != nil {
			log.Warn("skipping object", "reason", err)
			ps.stats.Skipped++
			return
		}
		boneIndex = id
		xf = ps.global
	}

	positions, normals := ps.transform(o.Mesh, xf)

	colorLayers := o.Mesh.ColorLayers
	if len(colorLayers) > vcd.MaxColors {
		colorLayers = colorLayers[:vcd.MaxColors]
	}
	uvLayers := o.Mesh.UVLayers
	if len(uvLayers) > vcd.MaxUVs {
		uvLayers = uvLayers[:vcd.MaxUVs]
	}
	desc := vcd.Compute(len(colorLayers), len(uvLayers), ps.p.AddDummyColors)

	for slot, sm := range o.Materials {
		if sm == nil {
			log.Warn("skipping material slot", "slot", slot, "reason", "no material assigned")
			continue
		}
		mlog := log.With("material", sm.Name)
		baked := material.Bake(sm, material.Options{BaseDir: ps.p.BaseDir, ForceSRGB: ps.p.ForceSRGB, Logger: mlog})
		if len(baked.Samplers) == 0 {
			mlog.Warn("skipping material", "reason", "no texture")
			continue
		}

		var fps []model.Facepoint
		for ti, tri := range o.Mesh.Triangles {
			if ps.p.SplitByMaterial && tri.Material != slot {
				continue
			}
			for _, k := range ps.corners() {
				fps = append(fps, facepoint(o.Mesh, positions, normals, colorLayers, uvLayers, ti, k, desc))
			}
		}
		if len(fps) == 0 {
			mlog.Debug("skipping material", "reason", "no vertices")
			continue
		}

		poly := model.Polygon{
			Name:          o.Name + "___" + baked.Samplers[0].Texture,
			PrimitiveType: model.PrimitiveFan,
			CurrentMatrix: boneIndex,
			Descriptor:    desc,
			Facepoints:    fps,
		}
		if err := poly.Validate(); err != nil {
			mlog.Error("skipping polygon", "err", err)
			continue
		}
		meshID := ps.b.AddMesh(poly)
		matID := ps.b.AddMaterial(baked)
		if err := ps.b.AppendDrawCall(matID, meshID, o.Priority(), bone); err != nil {
			mlog.Error("dropping draw call", "err", err)
			continue
		}
		ps.stats.DrawCalls++
		mlog.Debug("exported polygon", "mesh", meshID, "mat", matID, "facepoints", len(fps))

		// Unsplit meshes carry every triangle in their first polygon.
		if !ps.p.SplitByMaterial {
			break
		}
	}
}

func (ps *pass) corners() [3]int {
	if ps.p.FlipFaces {
		return [3]int{0, 2, 1}
	}
	return [3]int{0, 1, 2}
}

func (ps *pass) transform(m *scene.Mesh, xf mathutil.Mat4) ([][3]float32, [][3]float32) {
	positions := make([][3]float32, len(m.Positions))
	for i, p := range m.Positions {
		positions[i] = xf.MulPoint(mathutil.Vec3From32(p)).To32()
	}
	normals := make([][3]float32, len(m.Positions))
	for i := range normals {
		if i >= len(m.Normals) {
			continue
		}
		n := xf.MulNormal(mathutil.Vec3From32(m.Normals[i]))
		if ps.p.FlipFaces {
			n = n.Scale(-1)
		}
		normals[i] = n.To32()
	}
	return positions, normals
}

func facepoint(m *scene.Mesh, pos, nrm [][3]float32, colors []scene.ColorLayer, uvs []scene.UVLayer, tri, k int, desc vcd.Descriptor) model.Facepoint {
	v := m.Triangles[tri].V[k]
	corner := tri*3 + k

	fp := make(model.Facepoint, 0, desc.Arity())
	p, n := pos[v], nrm[v]
	fp = append(fp, []float32{p[0], p[1], p[2]}, []float32{n[0], n[1], n[2]})
	if len(colors) > 0 {
		for _, layer := range colors {
			c := layer.Data[corner]
			fp = append(fp, []float32{c[0], c[1], c[2], c[3]})
		}
	} else if desc.Colors() > 0 {
		fp = append(fp, []float32{1, 1, 1, 1})
	}
	for _, layer := range uvs {
		uv := layer.Data[corner]
		fp = append(fp, []float32{uv[0], 1 - uv[1]})
	}
	return fp
}

// Textures lists the distinct texture names the graph's materials sample.
func Textures(b *model.Builder) []string {
	seen := map[string]bool{}
	var out []string
	for _, m := range b.Materials() {
		for _, t := range m.Textures() {
			if !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
		}
	}
	sort.Strings(out)
	return out
}
