package material

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rhst-exporter/internal/rhst"
	"rhst-exporter/internal/scene"
)

func TestSamplersSortedByIndex(t *testing.T) {
	m := scene.DefaultMaterial("m")
	m.Samplers = []scene.Sampler{
		scene.DefaultSampler(2, "//textures/c.png"),
		scene.DefaultSampler(0, `C:\art\a.tga`),
		{Index: 1, Image: "b.png", Disabled: true},
		{Index: 3},
		scene.DefaultSampler(1, "d.png"),
	}
	baked := Bake(m, Options{})
	assert.Equal(t, []string{"a", "d", "c"}, baked.Textures())
}

func TestKonstSelection(t *testing.T) {
	tests := []struct {
		k    scene.Konst
		want string
	}{
		{scene.Konst{Value: 0.5}, "const_4_8"},
		{scene.Konst{Value: 0.3}, "const_2_8"},
		{scene.Konst{Value: 1.2}, "const_8_8"},
		{scene.Konst{Value: -1}, "const_0_8"},
		{scene.Konst{Register: "k2"}, "k2"},
		{scene.Konst{Register: "K1", Swizzle: "a"}, "k1_a"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, KonstSelection(tt.k))
	}
}

func TestColorTransfer(t *testing.T) {
	assert.Equal(t, 128, EncodeLinear(0.5))
	assert.Equal(t, 255, EncodeLinear(1.5))
	assert.Equal(t, 0, EncodeLinear(-0.2))

	assert.Equal(t, 188, EncodeSRGB(0.5))
	assert.Equal(t, 255, EncodeSRGB(1))
	assert.Equal(t, 3, EncodeSRGB(0.001))
	assert.Equal(t, 0, EncodeSRGB(0))
}

func TestColorsUseMaterialFlag(t *testing.T) {
	m := scene.DefaultMaterial("m")
	m.TevColors[0] = [4]float32{0.5, 0.5, 0.5, 0.5}

	linear := Bake(m, Options{})
	require.Len(t, linear.Colors, 3)
	assert.Equal(t, [4]int{128, 128, 128, 128}, linear.Colors[0])

	m.SRGBColors = true
	srgb := Bake(m, Options{})
	assert.Equal(t, [4]int{188, 188, 188, 188}, srgb.Colors[0])
}

func TestKonstColorsExtendToSeven(t *testing.T) {
	m := scene.DefaultMaterial("m")
	m.KonstColors = [][4]float32{{1, 0, 0, 1}}
	baked := Bake(m, Options{})
	require.Len(t, baked.Colors, 7)
	assert.Equal(t, [4]int{255, 0, 0, 255}, baked.Colors[3])
	assert.Equal(t, [4]int{0, 0, 0, 0}, baked.Colors[6])
}

func TestPESettingsOnlyForCustom(t *testing.T) {
	m := scene.DefaultMaterial("m")
	v := Bake(m, Options{}).Value()
	pe, ok := v.Get("pe_settings")
	require.True(t, ok)
	assert.Equal(t, rhst.String(""), pe)

	m.PEMode = scene.PECustom
	m.PE.DrawPass = "xlu"
	v = Bake(m, Options{}).Value()
	pe, _ = v.Get("pe_settings")
	obj, ok := pe.(*rhst.Object)
	require.True(t, ok)
	xlu, _ := obj.Get("xlu")
	assert.Equal(t, rhst.Int(1), xlu)
}

func TestStagesCappedAndSwapTableFilled(t *testing.T) {
	m := scene.DefaultMaterial("m")
	m.Stages = make([]scene.TevStage, MaxStages+3)
	m.SwapTable = []scene.Swap{{R: "g"}}
	baked := Bake(m, Options{})
	assert.Len(t, baked.Stages, MaxStages)
	assert.Equal(t, scene.Swap{R: "g", G: "g", B: "b", A: "a"}, baked.SwapTable[0])
	assert.Equal(t, scene.Swap{R: "r", G: "g", B: "b", A: "a"}, baked.SwapTable[3])
}

func TestRecordKeyOrder(t *testing.T) {
	v := Bake(scene.DefaultMaterial("Mat1"), Options{}).Value()
	var keys []string
	for _, f := range v.Fields {
		keys = append(keys, f.Key)
	}
	assert.Equal(t, []string{
		"name", "texture", "samplers", "display_front", "display_back", "pe", "pe_settings",
		"lightset", "fog", "tev_stages", "swap_table", "tev_colors", "preset_path_mdl0mat",
	}, keys)
	assert.Equal(t, "Mat1", v.Name())
}

func TestPresetPathResolved(t *testing.T) {
	m := scene.DefaultMaterial("m")
	m.PresetPath = "presets/m.rspreset"
	baked := Bake(m, Options{BaseDir: "/work"})
	assert.Equal(t, "/work/presets/m.rspreset", baked.PresetPath)
}
