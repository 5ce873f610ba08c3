package scene

// Material is the authoring-side material state. Field tags match the keys
// scene sources use to carry these settings (glTF extras, sidecar files).
type Material struct {
	Name string `json:"-" yaml:"-"`

	Samplers []Sampler `json:"samplers" yaml:"samplers"`

	DisplayFront bool `json:"display_front" yaml:"display_front"`
	DisplayBack  bool `json:"display_back" yaml:"display_back"`

	PEMode PEMode      `json:"pe" yaml:"pe"`
	PE     PixelEngine `json:"pe_settings" yaml:"pe_settings"`

	Lightset int `json:"lightset" yaml:"lightset"`
	Fog      int `json:"fog" yaml:"fog"`

	Stages    []TevStage `json:"tev_stages" yaml:"tev_stages"`
	SwapTable []Swap     `json:"swap_table" yaml:"swap_table"`

	// TevColors are the three TEV color registers, RGBA in [0,1].
	TevColors [3][4]float32 `json:"tev_colors" yaml:"tev_colors"`
	// KonstColors are the four konst registers; empty when unused.
	KonstColors [][4]float32 `json:"konst_colors" yaml:"konst_colors"`
	// SRGBColors encodes the color constants with the sRGB transfer function.
	SRGBColors bool `json:"srgb_colors" yaml:"srgb_colors"`

	// PresetPath names an external material preset that overrides everything above.
	PresetPath string `json:"preset_path" yaml:"preset_path"`
}

// DefaultMaterial returns the settings a freshly created material starts with.
func DefaultMaterial(name string) *Material {
	return &Material{
		Name:         name,
		DisplayFront: true,
		PEMode:       PEOpaque,
		PE:           DefaultPixelEngine(),
		Lightset:     -1,
		TevColors:    [3][4]float32{{1, 1, 1, 1}, {1, 1, 1, 1}, {1, 1, 1, 1}},
	}
}

// MapMode is how a sampler generates texture coordinates.
type MapMode string

const (
	MapUV         MapMode = "uv"
	MapEnv        MapMode = "env_camera"
	MapLightEnv   MapMode = "env_light"
	MapSpecular   MapMode = "env_specular"
	MapProjection MapMode = "projection"
)

// WrapMode is the texture addressing mode of one axis.
type WrapMode string

const (
	WrapRepeat WrapMode = "repeat"
	WrapMirror WrapMode = "mirror"
	WrapClamp  WrapMode = "clamp"
)

// Filter is a texture filter.
type Filter string

const (
	FilterNear   Filter = "near"
	FilterLinear Filter = "linear"
)

// Sampler is one texture slot of a material.
type Sampler struct {
	Index    int    `json:"index" yaml:"index"`
	Disabled bool   `json:"disabled" yaml:"disabled"`
	Image    string `json:"image" yaml:"image"`

	Mapping   MapMode    `json:"mapping" yaml:"mapping"`
	Scale     [2]float32 `json:"scale" yaml:"scale"`
	Rotate    float32    `json:"rotate" yaml:"rotate"`
	Translate [2]float32 `json:"translate" yaml:"translate"`

	WrapU     WrapMode `json:"wrap_u" yaml:"wrap_u"`
	WrapV     WrapMode `json:"wrap_v" yaml:"wrap_v"`
	MinFilter Filter   `json:"min_filter" yaml:"min_filter"`
	MagFilter Filter   `json:"mag_filter" yaml:"mag_filter"`
	UseMip    bool     `json:"use_mip" yaml:"use_mip"`
	MipFilter Filter   `json:"mip_filter" yaml:"mip_filter"`
	LodBias   float32  `json:"lod_bias" yaml:"lod_bias"`
}

// Bound reports whether the slot contributes a sampler to the baked material.
func (s Sampler) Bound() bool {
	return !s.Disabled && s.Image != ""
}

// DefaultSampler returns a repeat-wrapped, linear-filtered UV sampler.
func DefaultSampler(index int, image string) Sampler {
	return Sampler{
		Index:     index,
		Image:     image,
		Mapping:   MapUV,
		Scale:     [2]float32{1, 1},
		WrapU:     WrapRepeat,
		WrapV:     WrapRepeat,
		MinFilter: FilterLinear,
		MagFilter: FilterLinear,
		UseMip:    true,
		MipFilter: FilterLinear,
	}
}

// Konst selects the constant input of a TEV stage: a literal in [0,1] when
// Register is empty, otherwise a konst register with an optional swizzle.
type Konst struct {
	Value    float32 `json:"value" yaml:"value"`
	Register string  `json:"register" yaml:"register"`
	Swizzle  string  `json:"swizzle" yaml:"swizzle"`
}

// TevChannel is the color or alpha half of a TEV stage.
type TevChannel struct {
	A       string `json:"a" yaml:"a"`
	B       string `json:"b" yaml:"b"`
	C       string `json:"c" yaml:"c"`
	D       string `json:"d" yaml:"d"`
	Konst   Konst  `json:"konst" yaml:"konst"`
	Formula string `json:"formula" yaml:"formula"`
	Bias    string `json:"bias" yaml:"bias"`
	Scale   string `json:"scale" yaml:"scale"`
	Clamp   bool   `json:"clamp" yaml:"clamp"`
	Out     int    `json:"out" yaml:"out"`
}

// TevStage is one combiner stage.
type TevStage struct {
	RasChannel string     `json:"ras_channel" yaml:"ras_channel"`
	TexMap     int        `json:"tex_map" yaml:"tex_map"`
	RasSwap    int        `json:"ras_swap" yaml:"ras_swap"`
	TexSwap    int        `json:"tex_swap" yaml:"tex_swap"`
	Color      TevChannel `json:"color" yaml:"color"`
	Alpha      TevChannel `json:"alpha" yaml:"alpha"`
}

// Swap maps each output channel to a source channel ("r", "g", "b" or "a").
type Swap struct {
	R string `json:"r" yaml:"r"`
	G string `json:"g" yaml:"g"`
	B string `json:"b" yaml:"b"`
	A string `json:"a" yaml:"a"`
}

// PEMode is the pixel-engine preset of a material.
type PEMode string

const (
	PEOpaque      PEMode = "opaque"
	PEOutline     PEMode = "outline"
	PETranslucent PEMode = "translucent"
	PECustom      PEMode = "custom"
)

// PixelEngine is the custom pixel-engine state.
type PixelEngine struct {
	DrawPass string `json:"draw_pass" yaml:"draw_pass"` // "opa" or "xlu"

	AlphaTest          string `json:"alpha_test" yaml:"alpha_test"`
	ComparisonLeft     string `json:"comparison_left" yaml:"comparison_left"`
	ComparisonRefLeft  int    `json:"comparison_ref_left" yaml:"comparison_ref_left"`
	ComparisonOp       string `json:"comparison_op" yaml:"comparison_op"`
	ComparisonRight    string `json:"comparison_right" yaml:"comparison_right"`
	ComparisonRefRight int    `json:"comparison_ref_right" yaml:"comparison_ref_right"`

	ZEarlyCompare bool   `json:"z_early_compare" yaml:"z_early_compare"`
	ZCompare      bool   `json:"z_compare" yaml:"z_compare"`
	ZUpdate       bool   `json:"z_update" yaml:"z_update"`
	ZComparison   string `json:"z_comparison" yaml:"z_comparison"`

	BlendMode   string `json:"blend_mode" yaml:"blend_mode"`
	BlendSource string `json:"blend_source" yaml:"blend_source"`
	BlendDest   string `json:"blend_dest" yaml:"blend_dest"`

	DstAlphaEnabled bool `json:"dst_alpha_enabled" yaml:"dst_alpha_enabled"`
	DstAlpha        int  `json:"dst_alpha" yaml:"dst_alpha"`
}

// DefaultPixelEngine mirrors the opaque preset.
func DefaultPixelEngine() PixelEngine {
	return PixelEngine{
		DrawPass:        "opa",
		AlphaTest:       "stencil",
		ComparisonLeft:  "always",
		ComparisonOp:    "and",
		ComparisonRight: "always",
		ZEarlyCompare:   true,
		ZCompare:        true,
		ZUpdate:         true,
		ZComparison:     "lequal",
		BlendMode:       "none",
		BlendSource:     "src_alpha",
		BlendDest:       "inv_src_alpha",
	}
}
