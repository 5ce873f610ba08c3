// Package config loads exporter settings from a JSON, TOML or YAML file and
// merges them with command-line overrides.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"rhst-exporter/internal/export"
	"rhst-exporter/internal/model"
	"rhst-exporter/internal/texture"
)

// Converter targets.
const (
	TargetBRRES = "brres"
	TargetBMD   = "bmd"
)

// Config holds all configurable paths and export settings.
type Config struct {
	// Paths
	OutputDir   string `json:"output_dir" toml:"output_dir" yaml:"output_dir"`
	TexturesDir string `json:"textures_dir" toml:"textures_dir" yaml:"textures_dir"`

	// Output
	Format string `json:"format" toml:"format" yaml:"format"`
	Indent bool   `json:"indent" toml:"indent" yaml:"indent"`

	// Export pass
	Name                string    `json:"name" toml:"name" yaml:"name"`
	Generator           string    `json:"generator" toml:"generator" yaml:"generator"`
	Magnification       float64   `json:"magnification" toml:"magnification" yaml:"magnification"`
	SourceUp            string    `json:"source_up" toml:"source_up" yaml:"source_up"`
	RootTransform       model.SRT `json:"root_transform" toml:"root_transform" yaml:"root_transform"`
	SplitMeshByMaterial *bool     `json:"split_mesh_by_material" toml:"split_mesh_by_material" yaml:"split_mesh_by_material"`
	AddDummyColors      *bool     `json:"add_dummy_colors" toml:"add_dummy_colors" yaml:"add_dummy_colors"`
	FlipFaces           *bool     `json:"flip_faces" toml:"flip_faces" yaml:"flip_faces"`
	SelectionOnly       bool      `json:"selection_only" toml:"selection_only" yaml:"selection_only"`
	SRGBColors          bool      `json:"srgb_colors" toml:"srgb_colors" yaml:"srgb_colors"`

	// Textures
	DumpTextures    *bool             `json:"dump_textures" toml:"dump_textures" yaml:"dump_textures"`
	TextureEncoder  string            `json:"texture_encoder" toml:"texture_encoder" yaml:"texture_encoder"`
	TextureOptimize string            `json:"texture_optimize" toml:"texture_optimize" yaml:"texture_optimize"`
	TextureFormats  map[string]string `json:"texture_formats" toml:"texture_formats" yaml:"texture_formats"`
	Mipmaps         texture.Mipmaps   `json:"mipmaps" toml:"mipmaps" yaml:"mipmaps"`

	Converter Converter `json:"converter" toml:"converter" yaml:"converter"`
	Preview   Preview   `json:"preview" toml:"preview" yaml:"preview"`

	Workers int `json:"workers" toml:"workers" yaml:"workers"`

	// dir is the directory of the loaded file; relative paths resolve against it.
	dir string
}

// Converter configures the downstream rszst run.
type Converter struct {
	Enabled            bool   `json:"enabled" toml:"enabled" yaml:"enabled"`
	Path               string `json:"path" toml:"path" yaml:"path"`
	Target             string `json:"target" toml:"target" yaml:"target"`
	Verbose            bool   `json:"verbose" toml:"verbose" yaml:"verbose"`
	KeepBuildArtifacts bool   `json:"keep_build_artifacts" toml:"keep_build_artifacts" yaml:"keep_build_artifacts"`
}

// Preview configures the thumbnail render.
type Preview struct {
	Enabled     bool `json:"enabled" toml:"enabled" yaml:"enabled"`
	Size        int  `json:"size" toml:"size" yaml:"size"`
	Supersample int  `json:"supersample" toml:"supersample" yaml:"supersample"`
}

// Load reads a config file; its extension selects the codec.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "config: read %s", path)
	}

	var cfg Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(data, &cfg)
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		return Config{}, errors.Errorf("config: unsupported file type %q", ext)
	}
	if err != nil {
		return Config{}, errors.Wrapf(err, "config: parse %s", path)
	}

	if abs, err := filepath.Abs(path); err == nil {
		cfg.dir = filepath.Dir(abs)
	} else {
		cfg.dir = filepath.Dir(path)
	}
	return cfg, nil
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	OutputDir   string
	TexturesDir string
	Format      string
	Workers     int
	Convert     bool
	Preview     bool
}

// Resolve applies flags, fills empty fields with defaults and resolves
// relative paths against the config file's directory. It reports settings
// that cannot work together.
func (c *Config) Resolve(flags Flags) error {
	// CLI flags override config file
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.TexturesDir != "" {
		c.TexturesDir = flags.TexturesDir
	}
	if flags.Format != "" {
		c.Format = flags.Format
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.Convert {
		c.Converter.Enabled = true
	}
	if flags.Preview {
		c.Preview.Enabled = true
	}

	c.OutputDir = c.resolvePath(c.OutputDir)
	c.TexturesDir = c.resolvePath(c.TexturesDir)
	if c.Converter.Path != "" && strings.ContainsRune(c.Converter.Path, filepath.Separator) {
		c.Converter.Path = c.resolvePath(c.Converter.Path)
	}
	if c.OutputDir == "" {
		c.OutputDir = "."
	}

	// Defaults for export settings
	def := export.DefaultParams()
	if c.Format == "" {
		c.Format = export.FormatBinary
	}
	if c.Name == "" {
		c.Name = def.Name
	}
	if c.Magnification <= 0 {
		c.Magnification = def.Magnification
	}
	if c.RootTransform == (model.SRT{}) {
		c.RootTransform = model.Identity()
	}
	c.SplitMeshByMaterial = orDefault(c.SplitMeshByMaterial, def.SplitByMaterial)
	c.AddDummyColors = orDefault(c.AddDummyColors, def.AddDummyColors)
	c.FlipFaces = orDefault(c.FlipFaces, def.FlipFaces)
	c.DumpTextures = orDefault(c.DumpTextures, true)
	if c.TextureOptimize == "" {
		c.TextureOptimize = string(texture.OptimizeQuality)
	}
	if c.Converter.Target == "" {
		c.Converter.Target = TargetBRRES
	}
	if c.Preview.Size <= 0 {
		c.Preview.Size = 256
	}
	if c.Preview.Supersample <= 0 {
		c.Preview.Supersample = 2
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}

	return c.validate()
}

func (c *Config) validate() error {
	if c.Format != export.FormatBinary && c.Format != export.FormatJSON {
		return errors.Errorf("config: format must be %q or %q, got %q", export.FormatBinary, export.FormatJSON, c.Format)
	}
	switch c.SourceUp {
	case "", "y", "z":
	default:
		return errors.Errorf("config: source_up must be \"y\" or \"z\", got %q", c.SourceUp)
	}
	if c.Converter.Target != TargetBRRES && c.Converter.Target != TargetBMD {
		return errors.Errorf("config: converter target must be %q or %q, got %q", TargetBRRES, TargetBMD, c.Converter.Target)
	}
	if c.Converter.Enabled && c.Format != export.FormatBinary {
		return errors.New("config: the converter reads binary output only")
	}
	return nil
}

func (c *Config) resolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) || c.dir == "" {
		return p
	}
	return filepath.Join(c.dir, p)
}

func orDefault(v *bool, def bool) *bool {
	if v != nil {
		return v
	}
	return &def
}

// Params returns the export pass settings.
func (c *Config) Params() export.Params {
	p := export.DefaultParams()
	p.Name = c.Name
	p.Generator = c.Generator
	if c.Magnification > 0 {
		p.Magnification = c.Magnification
	}
	p.SourceUp = c.SourceUp
	if c.RootTransform != (model.SRT{}) {
		p.Root = c.RootTransform
	}
	if c.SplitMeshByMaterial != nil {
		p.SplitByMaterial = *c.SplitMeshByMaterial
	}
	if c.AddDummyColors != nil {
		p.AddDummyColors = *c.AddDummyColors
	}
	if c.FlipFaces != nil {
		p.FlipFaces = *c.FlipFaces
	}
	p.SelectionOnly = c.SelectionOnly
	p.ForceSRGB = c.SRGBColors
	return p
}
