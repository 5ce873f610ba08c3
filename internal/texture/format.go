package texture

import (
	"image"
	"strconv"
	"strings"
)

// Native texture formats.
const (
	FormatI4     = "i4"
	FormatI8     = "i8"
	FormatIA4    = "ia4"
	FormatIA8    = "ia8"
	FormatRGB565 = "rgb565"
	FormatRGB5A3 = "rgb5a3"
	FormatRGBA8  = "rgba8"
	FormatCMPR   = "cmpr"
)

// Formats lists every native format.
var Formats = []string{FormatI4, FormatI8, FormatIA4, FormatIA8, FormatRGB565, FormatRGB5A3, FormatRGBA8, FormatCMPR}

// ValidFormat reports whether f names a native format.
func ValidFormat(f string) bool {
	for _, x := range Formats {
		if x == f {
			return true
		}
	}
	return false
}

// Optimize is the trade-off BestFormat aims for.
type Optimize string

const (
	OptimizeQuality Optimize = "quality"
	OptimizeSize    Optimize = "size"
)

// Transparency classifies an image's alpha channel.
type Transparency string

const (
	Opaque      Transparency = "opaque"
	Outline     Transparency = "outline" // alpha is 0 or 255 only
	Translucent Transparency = "translucent"
)

// Analysis is what format selection needs to know about an image.
type Analysis struct {
	Grayscale    bool
	Transparency Transparency
}

// Analyze scans every pixel once.
func Analyze(img *image.NRGBA) Analysis {
	a := Analysis{Grayscale: true, Transparency: Opaque}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, y):img.PixOffset(b.Max.X, y)]
		for i := 0; i+3 < len(row); i += 4 {
			r, g, bl, al := row[i], row[i+1], row[i+2], row[i+3]
			if r != g || g != bl {
				a.Grayscale = false
			}
			switch {
			case al == 255:
			case al == 0:
				if a.Transparency == Opaque {
					a.Transparency = Outline
				}
			default:
				a.Transparency = Translucent
			}
		}
	}
	return a
}

// BestFormat picks a native format for an image with the given analysis.
func BestFormat(a Analysis, opt Optimize) string {
	quality := opt != OptimizeSize
	if !a.Grayscale {
		switch a.Transparency {
		case Opaque:
			if quality {
				return FormatRGB565
			}
			return FormatCMPR
		case Outline:
			if quality {
				return FormatRGB5A3
			}
			return FormatCMPR
		default:
			if quality {
				return FormatRGBA8
			}
			return FormatRGB5A3
		}
	}
	if a.Transparency != Opaque {
		if quality {
			return FormatIA8
		}
		return FormatIA4
	}
	if quality {
		return FormatI8
	}
	return FormatI4
}

// Mipmaps selects how many mip levels the encoder generates.
type Mipmaps struct {
	// Mode is "auto" (down to MinSize), "manual" (Count levels) or "none".
	Mode    string `json:"mode" toml:"mode" yaml:"mode"`
	MinSize int    `json:"min_size" toml:"min_size" yaml:"min_size"`
	Count   int    `json:"count" toml:"count" yaml:"count"`
}

// Flag renders the setting as an encoder flag.
func (m Mipmaps) Flag() string {
	switch strings.ToLower(m.Mode) {
	case "none":
		return "--n-mm=0"
	case "manual":
		return "--n-mm=" + strconv.Itoa(m.Count)
	}
	size := m.MinSize
	if size <= 0 {
		size = 32
	}
	return "--mipmap-size=" + strconv.Itoa(size)
}
