package texture

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// Extensions the index picks up, in priority order: when two files share a
// stem the earlier extension wins.
var Extensions = []string{".png", ".tga", ".bmp", ".webp", ".jpg", ".jpeg"}

func rank(path string) int {
	ext := strings.ToLower(filepath.Ext(path))
	for i, e := range Extensions {
		if e == ext {
			return i
		}
	}
	return -1
}

// stem lowercases the base name of a slash or backslash separated path and
// drops its extension, so "Tex\\Grass.PNG" and "grass.tga" share a key.
func stem(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	return strings.ToLower(strings.TrimSuffix(base, filepath.Ext(base)))
}

// Index maps texture stems to filesystem paths.
type Index struct {
	entries map[string]string
}

// BuildIndex walks dir and its subdirectories for image files. An empty dir
// yields an empty index.
func BuildIndex(dir string) *Index {
	idx := &Index{entries: make(map[string]string)}
	if dir == "" {
		return idx
	}
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err == nil && !d.IsDir() {
			idx.Add(path)
		}
		return nil
	})
	return idx
}

// Add registers path under its stem unless it is not an image or a
// higher-priority file is already known.
func (idx *Index) Add(path string) {
	r := rank(path)
	if r < 0 {
		return
	}
	key := stem(path)
	if cur, ok := idx.entries[key]; ok && rank(cur) <= r {
		return
	}
	idx.entries[key] = path
}

// ResolvePath returns the file indexed for a texture name. Directory prefixes
// and extensions on the name are ignored.
func (idx *Index) ResolvePath(texName string) (string, bool) {
	path, ok := idx.entries[stem(texName)]
	return path, ok
}

func (idx *Index) Len() int {
	return len(idx.entries)
}
