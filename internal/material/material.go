// Package material bakes authoring material settings into the record the
// RHST consumer reads.
package material

import (
	"log/slog"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/chewxy/math32"

	"rhst-exporter/internal/scene"
)

const (
	// MaxStages is the number of TEV stages the hardware runs.
	MaxStages = 16
	// MaxSamplers is the number of texture slots a material may bind.
	MaxSamplers = 16
	// SwapEntries is the fixed size of the swap table.
	SwapEntries = 4
)

// Options controls baking.
type Options struct {
	// BaseDir resolves relative preset paths. Empty leaves them relative.
	BaseDir string
	// ForceSRGB applies the sRGB transfer to every material regardless of its own flag.
	ForceSRGB bool
	Logger    *slog.Logger
}

// Sampler is a baked texture slot.
type Sampler struct {
	Texture   string
	Mapping   string
	Scale     [2]float32
	Rotate    float32
	Translate [2]float32
	WrapU     string
	WrapV     string
	MinLinear bool
	MagLinear bool
	UseMip    bool
	MipLinear bool
	LodBias   float32
}

// Stage is a baked TEV stage with konst selections resolved to names.
type Stage struct {
	scene.TevStage
	ColorKonst string
	AlphaKonst string
}

// Material is the serializable material record.
type Material struct {
	Name         string
	Samplers     []Sampler
	DisplayFront bool
	DisplayBack  bool
	PEMode       scene.PEMode
	PE           *scene.PixelEngine // nil unless PEMode is custom
	Lightset     int
	Fog          int
	Stages       []Stage
	SwapTable    [SwapEntries]scene.Swap
	// Colors holds the 3 TEV registers, then the 4 konst registers when present.
	Colors     [][4]int
	PresetPath string
}

// Bake converts m. It never fails; settings out of range are clamped or
// dropped and logged.
func Bake(m *scene.Material, opts Options) Material {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	out := Material{
		Name:         m.Name,
		Samplers:     bakeSamplers(m.Samplers),
		DisplayFront: m.DisplayFront,
		DisplayBack:  m.DisplayBack,
		PEMode:       m.PEMode,
		Lightset:     m.Lightset,
		Fog:          m.Fog,
		SwapTable:    bakeSwapTable(m.SwapTable),
		PresetPath:   presetPath(m.PresetPath, opts.BaseDir),
	}
	if out.PEMode == "" {
		out.PEMode = scene.PEOpaque
	}
	if out.PEMode == scene.PECustom {
		pe := m.PE
		out.PE = &pe
	}
	if len(out.Samplers) > MaxSamplers {
		log.Warn("too many samplers", "material", m.Name, "count", len(out.Samplers))
		out.Samplers = out.Samplers[:MaxSamplers]
	}

	stages := m.Stages
	if len(stages) > MaxStages {
		log.Warn("too many TEV stages", "material", m.Name, "count", len(stages))
		stages = stages[:MaxStages]
	}
	for _, s := range stages {
		out.Stages = append(out.Stages, Stage{
			TevStage:   s,
			ColorKonst: KonstSelection(s.Color.Konst),
			AlphaKonst: KonstSelection(s.Alpha.Konst),
		})
	}

	encode := EncodeLinear
	if m.SRGBColors || opts.ForceSRGB {
		encode = EncodeSRGB
	}
	for _, c := range m.TevColors {
		out.Colors = append(out.Colors, encodeColor(c, encode))
	}
	if len(m.KonstColors) > 0 {
		for i := 0; i < 4; i++ {
			var c [4]float32
			if i < len(m.KonstColors) {
				c = m.KonstColors[i]
			}
			out.Colors = append(out.Colors, encodeColor(c, encode))
		}
	}
	return out
}

func bakeSamplers(in []scene.Sampler) []Sampler {
	bound := make([]scene.Sampler, 0, len(in))
	for _, s := range in {
		if s.Bound() {
			bound = append(bound, s)
		}
	}
	sort.SliceStable(bound, func(i, j int) bool { return bound[i].Index < bound[j].Index })

	out := make([]Sampler, 0, len(bound))
	for _, s := range bound {
		out = append(out, Sampler{
			Texture:   TextureName(s.Image),
			Mapping:   string(s.Mapping),
			Scale:     s.Scale,
			Rotate:    s.Rotate,
			Translate: s.Translate,
			WrapU:     string(s.WrapU),
			WrapV:     string(s.WrapV),
			MinLinear: s.MinFilter == scene.FilterLinear,
			MagLinear: s.MagFilter == scene.FilterLinear,
			UseMip:    s.UseMip,
			MipLinear: s.MipFilter == scene.FilterLinear,
			LodBias:   s.LodBias,
		})
	}
	return out
}

func bakeSwapTable(in []scene.Swap) [SwapEntries]scene.Swap {
	var out [SwapEntries]scene.Swap
	for i := range out {
		out[i] = scene.Swap{R: "r", G: "g", B: "b", A: "a"}
		if i < len(in) {
			s := in[i]
			if s.R != "" {
				out[i].R = s.R
			}
			if s.G != "" {
				out[i].G = s.G
			}
			if s.B != "" {
				out[i].B = s.B
			}
			if s.A != "" {
				out[i].A = s.A
			}
		}
	}
	return out
}

func presetPath(p, base string) string {
	if p == "" || filepath.IsAbs(p) || base == "" {
		return p
	}
	return filepath.Join(base, p)
}

// TextureName is the base file name of an image path without its extension.
func TextureName(image string) string {
	base := path.Base(strings.ReplaceAll(image, "\\", "/"))
	return strings.TrimSuffix(base, path.Ext(base))
}

// KonstSelection names a konst input: const_N_8 for a literal in eighths,
// or kN with an optional _r/_g/_b/_a swizzle for a register.
func KonstSelection(k scene.Konst) string {
	if k.Register != "" {
		name := strings.ToLower(k.Register)
		if k.Swizzle != "" {
			name += "_" + strings.ToLower(k.Swizzle)
		}
		return name
	}
	v := math32.Max(0, math32.Min(1, k.Value))
	return "const_" + strconv.Itoa(roundNearest(v/0.125)) + "_8"
}

// EncodeLinear maps a channel in [0,1] to round(255c).
func EncodeLinear(c float32) int {
	return clampByte(roundNearest(255 * c))
}

// EncodeSRGB applies the sRGB transfer function and quantizes to a byte.
func EncodeSRGB(c float32) int {
	if c < 0.0031308 {
		c = 12.92 * c
	} else {
		c = 1.055*math32.Pow(c, 1/2.4) - 0.055
	}
	return clampByte(roundNearest(255 * c))
}

func encodeColor(c [4]float32, f func(float32) int) [4]int {
	return [4]int{f(c[0]), f(c[1]), f(c[2]), f(c[3])}
}

// roundNearest rounds half away from zero.
func roundNearest(x float32) int {
	if x < 0 {
		return -int(math32.Floor(-x + 0.5))
	}
	return int(math32.Floor(x + 0.5))
}

func clampByte(v int) int {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}

// Textures lists the texture names the material samples, in sampler order.
func (m Material) Textures() []string {
	out := make([]string, len(m.Samplers))
	for i, s := range m.Samplers {
		out[i] = s.Texture
	}
	return out
}
