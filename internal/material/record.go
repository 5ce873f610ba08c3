package material

import (
	"rhst-exporter/internal/rhst"
	"rhst-exporter/internal/scene"
)

// Value renders the record as the object the consumer reads.
func (m Material) Value() *rhst.Object {
	o := rhst.NewObject(m.Name)
	if m.Name == "" {
		o.Set("name", rhst.String(""))
	}
	// Superseded by samplers; kept for older readers.
	o.Set("texture", rhst.String(""))

	samplers := make(rhst.Array, len(m.Samplers))
	for i, s := range m.Samplers {
		samplers[i] = s.value()
	}
	o.Set("samplers", samplers)

	o.Set("display_front", rhst.Bool(m.DisplayFront))
	o.Set("display_back", rhst.Bool(m.DisplayBack))
	o.Set("pe", rhst.String(m.PEMode))
	if m.PE != nil {
		o.Set("pe_settings", peValue(m.PE))
	} else {
		o.Set("pe_settings", rhst.String(""))
	}
	o.Set("lightset", rhst.Int(m.Lightset))
	o.Set("fog", rhst.Int(m.Fog))

	stages := make(rhst.Array, len(m.Stages))
	for i, s := range m.Stages {
		stages[i] = s.value()
	}
	o.Set("tev_stages", stages)

	swaps := make(rhst.Array, len(m.SwapTable))
	for i, s := range m.SwapTable {
		swaps[i] = rhst.Strings(s.R, s.G, s.B, s.A)
	}
	o.Set("swap_table", swaps)

	colors := make(rhst.Array, len(m.Colors))
	for i, c := range m.Colors {
		colors[i] = rhst.Ints(c[0], c[1], c[2], c[3])
	}
	o.Set("tev_colors", colors)
	o.Set("preset_path_mdl0mat", rhst.String(m.PresetPath))
	return o
}

func (s Sampler) value() *rhst.Object {
	return (&rhst.Object{}).
		Set("texture", rhst.String(s.Texture)).
		Set("mapping", rhst.String(s.Mapping)).
		Set("scale", rhst.Vec2(s.Scale)).
		Set("rotate", rhst.Float(s.Rotate)).
		Set("translate", rhst.Vec2(s.Translate)).
		Set("wrap_u", rhst.String(s.WrapU)).
		Set("wrap_v", rhst.String(s.WrapV)).
		Set("min_filter", rhst.Bool(s.MinLinear)).
		Set("mag_filter", rhst.Bool(s.MagLinear)).
		Set("use_mip", rhst.Bool(s.UseMip)).
		Set("mip_filter", rhst.Bool(s.MipLinear)).
		Set("lod_bias", rhst.Float(s.LodBias))
}

func (s Stage) value() *rhst.Object {
	return (&rhst.Object{}).
		Set("ras_channel", rhst.String(s.RasChannel)).
		Set("tex_map", rhst.Int(s.TexMap)).
		Set("ras_swap", rhst.Int(s.RasSwap)).
		Set("tex_swap", rhst.Int(s.TexSwap)).
		Set("color_stage", channelValue(s.Color, s.ColorKonst)).
		Set("alpha_stage", channelValue(s.Alpha, s.AlphaKonst))
}

func channelValue(c scene.TevChannel, konst string) *rhst.Object {
	return (&rhst.Object{}).
		Set("a", rhst.String(c.A)).
		Set("b", rhst.String(c.B)).
		Set("c", rhst.String(c.C)).
		Set("d", rhst.String(c.D)).
		Set("constant_sel", rhst.String(konst)).
		Set("formula", rhst.String(orDefault(c.Formula, "add"))).
		Set("bias", rhst.String(orDefault(c.Bias, "zero"))).
		Set("scale", rhst.String(orDefault(c.Scale, "scale_1"))).
		Set("clamp", rhst.Bool(c.Clamp)).
		Set("out", rhst.Int(clampOut(c.Out)))
}

func peValue(pe *scene.PixelEngine) *rhst.Object {
	return (&rhst.Object{}).
		Set("xlu", rhst.Bool(pe.DrawPass == "xlu")).
		Set("alpha_test", rhst.String(pe.AlphaTest)).
		Set("comparison_left", rhst.String(pe.ComparisonLeft)).
		Set("comparison_ref_left", rhst.Int(pe.ComparisonRefLeft)).
		Set("comparison_op", rhst.String(pe.ComparisonOp)).
		Set("comparison_right", rhst.String(pe.ComparisonRight)).
		Set("comparison_ref_right", rhst.Int(pe.ComparisonRefRight)).
		Set("z_early_compare", rhst.Bool(pe.ZEarlyCompare)).
		Set("z_compare", rhst.Bool(pe.ZCompare)).
		Set("z_update", rhst.Bool(pe.ZUpdate)).
		Set("z_comparison", rhst.String(pe.ZComparison)).
		Set("blend_mode", rhst.String(pe.BlendMode)).
		Set("blend_source", rhst.String(pe.BlendSource)).
		Set("blend_dest", rhst.String(pe.BlendDest)).
		Set("dst_alpha_enabled", rhst.Bool(pe.DstAlphaEnabled)).
		Set("dst_alpha", rhst.Int(pe.DstAlpha))
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func clampOut(r int) int {
	if r < 0 {
		return 0
	}
	if r > 3 {
		return 3
	}
	return r
}
