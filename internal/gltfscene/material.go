package gltfscene

import (
	"fmt"

	"github.com/qmuntal/gltf"

	"rhst-exporter/internal/scene"
)

// material converts the glTF material s refers to, once per index. A
// primitive without a material yields a nil slot.
func (l *loader) material(s slot) *scene.Material {
	if s == nil {
		return nil
	}
	if m, ok := l.materials[*s]; ok {
		return m
	}
	if int(*s) >= len(l.doc.Materials) {
		l.log.Warn("material index out of range", "material", *s)
		return nil
	}
	src := l.doc.Materials[*s]
	name := src.Name
	if name == "" {
		name = fmt.Sprintf("material%d", *s)
	}

	m := scene.DefaultMaterial(name)
	m.DisplayBack = src.DoubleSided
	switch src.AlphaMode {
	case gltf.AlphaMask:
		m.PEMode = scene.PEOutline
	case gltf.AlphaBlend:
		m.PEMode = scene.PETranslucent
	}
	if pbr := src.PBRMetallicRoughness; pbr != nil {
		if pbr.BaseColorFactor != nil {
			m.TevColors[0] = *pbr.BaseColorFactor
		}
		if pbr.BaseColorTexture != nil {
			if smp, ok := l.sampler(pbr.BaseColorTexture.Index); ok {
				m.Samplers = append(m.Samplers, smp)
			}
		}
	}

	if err := decodeExtras(src.Extras, m); err != nil {
		l.log.Warn("ignoring material settings", "material", name, "err", err)
	}
	m.Name = name
	l.materials[*s] = m
	return m
}

// sampler builds sampler slot 0 from a glTF texture.
func (l *loader) sampler(tex uint32) (scene.Sampler, bool) {
	if int(tex) >= len(l.doc.Textures) {
		return scene.Sampler{}, false
	}
	t := l.doc.Textures[tex]
	if t.Source == nil || int(*t.Source) >= len(l.doc.Images) {
		return scene.Sampler{}, false
	}
	img := l.doc.Images[*t.Source]
	ref := img.URI
	if ref == "" || img.IsEmbeddedResource() {
		ref = img.Name
	}
	if ref == "" {
		ref = fmt.Sprintf("image%d", *t.Source)
	}

	s := scene.DefaultSampler(0, ref)
	if t.Sampler != nil && int(*t.Sampler) < len(l.doc.Samplers) {
		gs := l.doc.Samplers[*t.Sampler]
		s.WrapU = wrapMode(gs.WrapS)
		s.WrapV = wrapMode(gs.WrapT)
		if gs.MagFilter == gltf.MagNearest {
			s.MagFilter = scene.FilterNear
		}
		switch gs.MinFilter {
		case gltf.MinNearest:
			s.MinFilter, s.UseMip = scene.FilterNear, false
		case gltf.MinLinear:
			s.UseMip = false
		case gltf.MinNearestMipMapNearest:
			s.MinFilter, s.MipFilter = scene.FilterNear, scene.FilterNear
		case gltf.MinLinearMipMapNearest:
			s.MipFilter = scene.FilterNear
		case gltf.MinNearestMipMapLinear:
			s.MinFilter = scene.FilterNear
		}
	}
	return s, true
}

func wrapMode(w gltf.WrappingMode) scene.WrapMode {
	switch w {
	case gltf.WrapClampToEdge:
		return scene.WrapClamp
	case gltf.WrapMirroredRepeat:
		return scene.WrapMirror
	}
	return scene.WrapRepeat
}
