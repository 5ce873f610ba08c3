// Package preview draws a flat-shaded thumbnail of a built scene graph so a
// batch run can be checked at a glance without launching a model viewer.
package preview

import (
	"image"
	"math"

	"rhst-exporter/internal/material"
	"rhst-exporter/internal/mathutil"
	"rhst-exporter/internal/model"
	"rhst-exporter/internal/scene"
	"rhst-exporter/internal/texture"
)

// Options sizes the render.
type Options struct {
	Size        int
	Supersample int
	// Margin is the border in output pixels around the fitted geometry.
	Margin int
}

// DefaultOptions renders a 256px thumbnail at 2x supersampling.
func DefaultOptions() Options {
	return Options{Size: 256, Supersample: 2, Margin: 16}
}

type drawItem struct {
	poly  model.Polygon
	mat   material.Material
	world mathutil.Mat4
}

// Render rasterizes every draw call of b from the fixed preview camera.
// Textures are looked up by the name of each material's first sampler; a
// nil resolver renders untextured.
func Render(b *model.Builder, tex texture.Resolver, opts Options) *image.NRGBA {
	if opts.Size <= 0 {
		opts.Size = DefaultOptions().Size
	}
	if opts.Supersample <= 0 {
		opts.Supersample = 1
	}

	items := collect(b)
	renderSize := opts.Size * opts.Supersample
	if len(items) == 0 {
		return image.NewNRGBA(image.Rect(0, 0, opts.Size, opts.Size))
	}

	R := mathutil.PreviewCamera

	// Bounding box in camera space
	lo := mathutil.Vec3{math.Inf(1), math.Inf(1), math.Inf(1)}
	hi := lo.Scale(-1)
	for _, it := range items {
		for _, fp := range it.poly.Facepoints {
			tv := R.MulVec3(it.world.MulPoint(position(fp)))
			lo, hi = lo.Min(tv), hi.Max(tv)
		}
	}

	center := lo.Sub(hi.Scale(-1)).Scale(0.5)
	span := math.Max(hi[0]-lo[0], hi[1]-lo[1])
	if span < 0.001 {
		span = 0.001
	}

	margin := opts.Margin * opts.Supersample
	scale := float64(renderSize-2*margin) / span
	half := float64(renderSize) / 2

	fb := NewFrameBuffer(renderSize, renderSize)
	lights := DefaultLights()

	for _, it := range items {
		var img *image.NRGBA
		wrap := Wrap{}
		if len(it.mat.Samplers) > 0 {
			s := it.mat.Samplers[0]
			wrap = Wrap{ClampU: s.WrapU == string(scene.WrapClamp), ClampV: s.WrapV == string(scene.WrapClamp)}
			if tex != nil {
				img = tex.Resolve(s.Texture)
			}
		}
		base := [4]uint8{160, 160, 170, 255}
		if img != nil {
			base = averageColor(img)
		}

		d := it.poly.Descriptor
		colorSlot := -1
		if d.Colors() > 0 {
			colorSlot = 2
		}
		uvSlot := -1
		if d.UVs() > 0 {
			uvSlot = 2 + d.Colors()
		}

		fps := it.poly.Facepoints
		for i := 0; i+2 < len(fps); i += 3 {
			var tri [3]Vertex
			for k := 0; k < 3; k++ {
				fp := fps[i+k]
				tv := R.MulVec3(it.world.MulPoint(position(fp)))
				tri[k] = Vertex{
					X:     (tv[0]-center[0])*scale + half,
					Y:     -(tv[1]-center[1])*scale + half,
					Z:     tv[2] - center[2],
					Color: [4]float64{1, 1, 1, 1},
				}
				if uvSlot >= 0 && uvSlot < len(fp) && len(fp[uvSlot]) >= 2 {
					tri[k].U, tri[k].V = float64(fp[uvSlot][0]), float64(fp[uvSlot][1])
				}
				if colorSlot >= 0 && colorSlot < len(fp) && len(fp[colorSlot]) >= 4 {
					c := fp[colorSlot]
					tri[k].Color = [4]float64{float64(c[0]), float64(c[1]), float64(c[2]), float64(c[3])}
				}
			}
			RasterizeTriangle(fb, tri, img, wrap, base, lights)
		}
	}

	out := fb.Image()
	if opts.Supersample > 1 {
		out = Downsample(out, opts.Size)
	}
	return out
}

// collect walks bones in order and resolves each draw call together with
// the pose of the bone that owns it.
func collect(b *model.Builder) []drawItem {
	polys := b.Polygons()
	worlds := BoneWorlds(b.Bones())
	var items []drawItem
	for bi, bone := range b.Bones() {
		for _, dc := range bone.Draws {
			if dc.Mesh < 0 || dc.Mesh >= len(polys) || dc.Material < 0 || dc.Material >= b.MaterialCount() {
				continue
			}
			items = append(items, drawItem{poly: polys[dc.Mesh], mat: b.Material(dc.Material), world: worlds[bi]})
		}
	}
	return items
}

func position(fp model.Facepoint) mathutil.Vec3 {
	if len(fp) == 0 || len(fp[0]) < 3 {
		return mathutil.Vec3{}
	}
	return mathutil.Vec3{float64(fp[0][0]), float64(fp[0][1]), float64(fp[0][2])}
}

func averageColor(tex *image.NRGBA) [4]uint8 {
	b := tex.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return [4]uint8{160, 160, 170, 255}
	}

	var sumR, sumG, sumB float64
	stride := tex.Stride
	for y := 0; y < h; y++ {
		off := y * stride
		for x := 0; x < w; x++ {
			i := off + x*4
			sumR += float64(tex.Pix[i])
			sumG += float64(tex.Pix[i+1])
			sumB += float64(tex.Pix[i+2])
		}
	}
	n := float64(w * h)
	return [4]uint8{uint8(sumR/n + 0.5), uint8(sumG/n + 0.5), uint8(sumB/n + 0.5), 255}
}
