package texture

import (
	"context"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrNotFound is returned for texture names missing from the index.
var ErrNotFound = errors.New("texture: not found")

// StageOptions controls Stage.
type StageOptions struct {
	Optimize Optimize
	// Formats overrides the chosen format per texture name.
	Formats map[string]string
	Mipmaps Mipmaps
	// Encoder converts the PNGs to native textures; nil keeps the PNGs.
	Encoder *Encoder
	Logger  *slog.Logger
}

// Staged describes one texture written by Stage.
type Staged struct {
	Name   string
	Path   string
	Format string
}

// Stage writes every named texture into dir: as <name>.png, or as
// <name>.tex0 when an encoder is set. Missing or undecodable textures are
// logged and skipped.
func Stage(ctx context.Context, c *Cache, names []string, dir string, opts StageOptions) ([]Staged, error) {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "texture: create %s", dir)
	}

	var out []Staged
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		img, err := c.Load(name)
		if err != nil {
			log.Warn("skipping texture", "texture", name, "err", err)
			continue
		}

		format := opts.Formats[name]
		if format == "" || !ValidFormat(format) {
			format = BestFormat(Analyze(img), opts.Optimize)
		}

		if opts.Encoder == nil {
			path := filepath.Join(dir, name+".png")
			if err := writePNG(path, img); err != nil {
				log.Warn("skipping texture", "texture", name, "err", err)
				continue
			}
			out = append(out, Staged{Name: name, Path: path, Format: format})
			continue
		}

		tmp := filepath.Join(dir, uuid.NewString()+".png")
		if err := writePNG(tmp, img); err != nil {
			log.Warn("skipping texture", "texture", name, "err", err)
			continue
		}
		dst := filepath.Join(dir, name+".tex0")
		err = opts.Encoder.Encode(ctx, tmp, dst, format, opts.Mipmaps)
		os.Remove(tmp)
		if err != nil {
			log.Warn("skipping texture", "texture", name, "err", err)
			continue
		}
		log.Debug("encoded texture", "texture", name, "format", format)
		out = append(out, Staged{Name: name, Path: dst, Format: format})
	}
	return out, nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "texture: create %s", path)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return errors.Wrapf(err, "texture: encode %s", path)
	}
	return errors.Wrapf(f.Close(), "texture: close %s", path)
}
