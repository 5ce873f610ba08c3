package texture

import (
	"image"
	"sync"
)

// Resolver resolves a texture name to a decoded image, or nil.
type Resolver interface {
	Resolve(texName string) *image.NRGBA
}

// Cache decodes each indexed file at most once. It is safe for concurrent
// use; workers asking for a file that is still loading wait for that load.
type Cache struct {
	index *Index

	mu    sync.Mutex
	files map[string]*cached
}

type cached struct {
	once sync.Once
	img  *image.NRGBA
	err  error
}

func NewCache(index *Index) *Cache {
	return &Cache{index: index, files: make(map[string]*cached)}
}

// Resolve implements Resolver.
func (c *Cache) Resolve(texName string) *image.NRGBA {
	img, _ := c.Load(texName)
	return img
}

// Load is Resolve with the reason a texture is missing.
func (c *Cache) Load(texName string) (*image.NRGBA, error) {
	path, ok := c.index.ResolvePath(texName)
	if !ok {
		return nil, ErrNotFound
	}

	c.mu.Lock()
	e := c.files[path]
	if e == nil {
		e = &cached{}
		c.files[path] = e
	}
	c.mu.Unlock()

	e.once.Do(func() { e.img, e.err = LoadTexture(path) })
	return e.img, e.err
}
