package gltfscene

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"rhst-exporter/internal/scene"
)

// slot is a primitive's material; nil when the primitive has none.
type slot = *uint32

// mesh merges the triangle primitives of m into one scene mesh. Per-vertex
// attributes become per-corner layers. Only layers every primitive carries
// are kept.
func (l *loader) mesh(m *gltf.Mesh) (*scene.Mesh, []slot, error) {
	out := &scene.Mesh{}
	var slots []slot
	slotIndex := func(s slot) int {
		for i, x := range slots {
			if (x == nil && s == nil) || (x != nil && s != nil && *x == *s) {
				return i
			}
		}
		slots = append(slots, s)
		return len(slots) - 1
	}

	colorCount, uvCount := -1, -1
	type prim struct {
		tris   [][3]uint32
		colors [][][4]float32
		uvs    [][][2]float32
		base   int
		slot   int
	}
	var prims []prim

	for pi, p := range m.Primitives {
		switch p.Mode {
		case gltf.PrimitiveTriangles, gltf.PrimitiveTriangleStrip, gltf.PrimitiveTriangleFan:
		default:
			l.log.Debug("skipping primitive", "mesh", m.Name, "primitive", pi, "mode", p.Mode)
			continue
		}
		posIdx, ok := p.Attributes["POSITION"]
		if !ok {
			return nil, nil, errors.Errorf("gltfscene: mesh %q primitive %d has no positions", m.Name, pi)
		}
		acc, err := l.accessor(posIdx)
		if err != nil {
			return nil, nil, err
		}
		positions, err := modeler.ReadPosition(l.doc, acc, nil)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "gltfscene: mesh %q positions", m.Name)
		}
		normals := make([][3]float32, len(positions))
		if idx, ok := p.Attributes["NORMAL"]; ok {
			acc, err := l.accessor(idx)
			if err != nil {
				return nil, nil, err
			}
			n, err := modeler.ReadNormal(l.doc, acc, nil)
			if err != nil {
				return nil, nil, errors.Wrapf(err, "gltfscene: mesh %q normals", m.Name)
			}
			copy(normals, n)
		}

		var indices []uint32
		if p.Indices != nil {
			acc, err := l.accessor(*p.Indices)
			if err != nil {
				return nil, nil, err
			}
			indices, err = modeler.ReadIndices(l.doc, acc, nil)
			if err != nil {
				return nil, nil, errors.Wrapf(err, "gltfscene: mesh %q indices", m.Name)
			}
		} else {
			indices = make([]uint32, len(positions))
			for i := range indices {
				indices[i] = uint32(i)
			}
		}
		for _, v := range indices {
			if int(v) >= len(positions) {
				return nil, nil, errors.Errorf("gltfscene: mesh %q index %d of %d vertices", m.Name, v, len(positions))
			}
		}

		pr := prim{tris: triangles(p.Mode, indices), base: len(out.Positions), slot: slotIndex(p.Material)}
		for i := 0; ; i++ {
			idx, ok := p.Attributes[fmt.Sprintf("COLOR_%d", i)]
			if !ok {
				break
			}
			acc, err := l.accessor(idx)
			if err != nil {
				return nil, nil, err
			}
			c, err := l.readColors(acc)
			if err != nil {
				return nil, nil, errors.Wrapf(err, "gltfscene: mesh %q COLOR_%d", m.Name, i)
			}
			if len(c) < len(positions) {
				return nil, nil, errors.Errorf("gltfscene: mesh %q COLOR_%d has %d of %d vertices", m.Name, i, len(c), len(positions))
			}
			pr.colors = append(pr.colors, c)
		}
		for i := 0; ; i++ {
			idx, ok := p.Attributes[fmt.Sprintf("TEXCOORD_%d", i)]
			if !ok {
				break
			}
			acc, err := l.accessor(idx)
			if err != nil {
				return nil, nil, err
			}
			uv, err := modeler.ReadTextureCoord(l.doc, acc, nil)
			if err != nil {
				return nil, nil, errors.Wrapf(err, "gltfscene: mesh %q TEXCOORD_%d", m.Name, i)
			}
			if len(uv) < len(positions) {
				return nil, nil, errors.Errorf("gltfscene: mesh %q TEXCOORD_%d has %d of %d vertices", m.Name, i, len(uv), len(positions))
			}
			pr.uvs = append(pr.uvs, uv)
		}
		if colorCount < 0 || len(pr.colors) < colorCount {
			colorCount = len(pr.colors)
		}
		if uvCount < 0 || len(pr.uvs) < uvCount {
			uvCount = len(pr.uvs)
		}

		out.Positions = append(out.Positions, positions...)
		out.Normals = append(out.Normals, normals...)
		prims = append(prims, pr)
	}

	out.ColorLayers = make([]scene.ColorLayer, max(colorCount, 0))
	for i := range out.ColorLayers {
		out.ColorLayers[i].Name = fmt.Sprintf("COLOR_%d", i)
	}
	out.UVLayers = make([]scene.UVLayer, max(uvCount, 0))
	for i := range out.UVLayers {
		out.UVLayers[i].Name = fmt.Sprintf("TEXCOORD_%d", i)
	}

	for _, pr := range prims {
		for _, t := range pr.tris {
			out.Triangles = append(out.Triangles, scene.Triangle{
				V:        [3]int{pr.base + int(t[0]), pr.base + int(t[1]), pr.base + int(t[2])},
				Material: pr.slot,
			})
			for _, v := range t {
				for i := range out.ColorLayers {
					out.ColorLayers[i].Data = append(out.ColorLayers[i].Data, pr.colors[i][v])
				}
				for i := range out.UVLayers {
					uv := pr.uvs[i][v]
					// glTF puts the UV origin at the top left.
					out.UVLayers[i].Data = append(out.UVLayers[i].Data, [2]float32{uv[0], 1 - uv[1]})
				}
			}
		}
	}
	return out, slots, nil
}

func (l *loader) accessor(i uint32) (*gltf.Accessor, error) {
	if int(i) >= len(l.doc.Accessors) {
		return nil, errors.Errorf("gltfscene: accessor %d of %d", i, len(l.doc.Accessors))
	}
	return l.doc.Accessors[i], nil
}

// triangles expands strips and fans into a triangle list.
func triangles(mode gltf.PrimitiveMode, idx []uint32) [][3]uint32 {
	var out [][3]uint32
	switch mode {
	case gltf.PrimitiveTriangleStrip:
		for i := 2; i < len(idx); i++ {
			if i%2 == 0 {
				out = append(out, [3]uint32{idx[i-2], idx[i-1], idx[i]})
			} else {
				out = append(out, [3]uint32{idx[i-1], idx[i-2], idx[i]})
			}
		}
	case gltf.PrimitiveTriangleFan:
		for i := 2; i < len(idx); i++ {
			out = append(out, [3]uint32{idx[0], idx[i-1], idx[i]})
		}
	default:
		for i := 0; i+2 < len(idx); i += 3 {
			out = append(out, [3]uint32{idx[i], idx[i+1], idx[i+2]})
		}
	}
	return out
}

// readColors normalizes any COLOR_n accessor layout to RGBA floats.
func (l *loader) readColors(acc *gltf.Accessor) ([][4]float32, error) {
	data, err := modeler.ReadAccessor(l.doc, acc, nil)
	if err != nil {
		return nil, err
	}
	switch c := data.(type) {
	case [][4]float32:
		return c, nil
	case [][3]float32:
		out := make([][4]float32, len(c))
		for i, v := range c {
			out[i] = [4]float32{v[0], v[1], v[2], 1}
		}
		return out, nil
	case [][4]uint8:
		out := make([][4]float32, len(c))
		for i, v := range c {
			out[i] = [4]float32{float32(v[0]) / 255, float32(v[1]) / 255, float32(v[2]) / 255, float32(v[3]) / 255}
		}
		return out, nil
	case [][3]uint8:
		out := make([][4]float32, len(c))
		for i, v := range c {
			out[i] = [4]float32{float32(v[0]) / 255, float32(v[1]) / 255, float32(v[2]) / 255, 1}
		}
		return out, nil
	case [][4]uint16:
		out := make([][4]float32, len(c))
		for i, v := range c {
			out[i] = [4]float32{float32(v[0]) / 65535, float32(v[1]) / 65535, float32(v[2]) / 65535, float32(v[3]) / 65535}
		}
		return out, nil
	case [][3]uint16:
		out := make([][4]float32, len(c))
		for i, v := range c {
			out[i] = [4]float32{float32(v[0]) / 65535, float32(v[1]) / 65535, float32(v[2]) / 65535, 1}
		}
		return out, nil
	}
	return nil, errors.Errorf("gltfscene: unsupported color layout %T", data)
}
