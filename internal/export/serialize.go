package export

import (
	"bufio"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"

	"rhst-exporter/internal/model"
	"rhst-exporter/internal/rhst"
	"rhst-exporter/internal/scene"
)

// Output formats.
const (
	FormatBinary = "binary"
	FormatJSON   = "json"
)

// Ext returns the file extension for format.
func Ext(format string) string {
	if format == FormatJSON {
		return ".json"
	}
	return ".rhst"
}

// WriteBinary writes v as an RHST stream. The sink is sized to the exact
// encoded length and the file only replaces path once complete.
func WriteBinary(path string, v rhst.Value) error {
	if err := rhst.WriteFile(path, v); err != nil {
		return errors.Wrapf(err, "export: write %s", path)
	}
	return nil
}

// WriteJSON writes the textual form of v, staged beside path and renamed
// over it on success.
func WriteJSON(path string, v rhst.Value, indent bool) error {
	dir := filepath.Dir(path)
	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.Wrapf(err, "export: create temp file in %s", dir)
	}
	tmp := f.Name()
	fail := func(err error) error {
		f.Close()
		os.Remove(tmp)
		return errors.Wrapf(err, "export: write %s", path)
	}

	bw := bufio.NewWriter(f)
	if err := rhst.WriteJSON(bw, v, indent); err != nil {
		return fail(err)
	}
	if err := bw.Flush(); err != nil {
		return fail(err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return errors.Wrapf(err, "export: close %s", tmp)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return errors.Wrapf(err, "export: rename to %s", path)
	}
	return nil
}

// Result describes one finished export.
type Result struct {
	Path     string
	Format   string
	Stats    Stats
	Textures []string
	Build    time.Duration
	Write    time.Duration
	Graph    *model.Builder
}

// Export builds s and writes it to path in the given format.
func Export(s *scene.Scene, p Params, path, format string, indent bool, log *slog.Logger) (*Result, error) {
	if log == nil {
		log = slog.Default()
	}
	if format == "" {
		format = FormatBinary
	}
	if format != FormatBinary && format != FormatJSON {
		return nil, errors.Errorf("export: unknown format %q", format)
	}

	start := time.Now()
	b, stats := Build(s, p, log)
	res := &Result{
		Path:     path,
		Format:   format,
		Stats:    stats,
		Textures: Textures(b),
		Build:    time.Since(start),
		Graph:    b,
	}
	log.Info("RHST generation", "scene", s.Name, "took", res.Build,
		"polygons", stats.Polygons, "materials", stats.Materials, "skipped", stats.Skipped)

	start = time.Now()
	tree := b.Tree()
	var err error
	if format == FormatJSON {
		err = WriteJSON(path, tree, indent)
	} else {
		err = WriteBinary(path, tree)
	}
	if err != nil {
		return nil, err
	}
	res.Write = time.Since(start)
	log.Info("serialize", "path", path, "took", res.Write)
	return res, nil
}
