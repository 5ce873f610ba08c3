package preview

import (
	"image"
	"os"
	"path/filepath"

	"github.com/HugoSmits86/nativewebp"
	"github.com/pkg/errors"
)

// WriteWebP encodes img losslessly to path, replacing any existing file only
// once encoding succeeded.
func WriteWebP(path string, img image.Image) error {
	f, err := os.CreateTemp(filepath.Dir(path), ".preview-*.webp")
	if err != nil {
		return errors.Wrap(err, "create preview")
	}
	tmp := f.Name()
	if err := nativewebp.Encode(f, img, nil); err != nil {
		f.Close()
		os.Remove(tmp)
		return errors.Wrapf(err, "encode %s", path)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return errors.Wrapf(err, "close %s", tmp)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return errors.Wrapf(err, "rename %s", tmp)
	}
	return nil
}
