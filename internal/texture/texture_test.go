package texture

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func solid(c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func writeTestPNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
}

func TestIndexPrefersPNG(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Grass.tga"), []byte("x"), 0o644))
	writeTestPNG(t, filepath.Join(dir, "sub", "grass.png"), solid(color.NRGBA{255, 0, 0, 255}))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	idx := BuildIndex(dir)
	assert.Equal(t, 1, idx.Len())
	path, ok := idx.ResolvePath(`C:\art\GRASS.bmp`)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "sub", "grass.png"), path)

	idx.Add(filepath.Join(dir, "grass.jpg"))
	path, _ = idx.ResolvePath("grass")
	assert.Equal(t, filepath.Join(dir, "sub", "grass.png"), path)
}

func TestCacheLoad(t *testing.T) {
	dir := t.TempDir()
	writeTestPNG(t, filepath.Join(dir, "a.png"), solid(color.NRGBA{1, 2, 3, 255}))
	c := NewCache(BuildIndex(dir))

	img := c.Resolve("a")
	require.NotNil(t, img)
	assert.Same(t, img, c.Resolve("a.png"))
	assert.Equal(t, color.NRGBA{1, 2, 3, 255}, img.NRGBAAt(0, 0))

	_, err := c.Load("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBestFormat(t *testing.T) {
	tests := []struct {
		name string
		img  *image.NRGBA
		opt  Optimize
		want string
	}{
		{"color opaque quality", solid(color.NRGBA{255, 0, 0, 255}), OptimizeQuality, FormatRGB565},
		{"color opaque size", solid(color.NRGBA{255, 0, 0, 255}), OptimizeSize, FormatCMPR},
		{"color translucent quality", solid(color.NRGBA{255, 0, 0, 128}), OptimizeQuality, FormatRGBA8},
		{"color translucent size", solid(color.NRGBA{255, 0, 0, 128}), OptimizeSize, FormatRGB5A3},
		{"gray opaque quality", solid(color.NRGBA{9, 9, 9, 255}), OptimizeQuality, FormatI8},
		{"gray opaque size", solid(color.NRGBA{9, 9, 9, 255}), OptimizeSize, FormatI4},
		{"gray alpha quality", solid(color.NRGBA{9, 9, 9, 100}), OptimizeQuality, FormatIA8},
		{"gray alpha size", solid(color.NRGBA{9, 9, 9, 100}), OptimizeSize, FormatIA4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BestFormat(Analyze(tt.img), tt.opt))
		})
	}
}

func TestOutlineAlpha(t *testing.T) {
	img := solid(color.NRGBA{255, 0, 0, 255})
	img.SetNRGBA(1, 1, color.NRGBA{0, 0, 0, 0})
	a := Analyze(img)
	assert.Equal(t, Outline, a.Transparency)
	assert.Equal(t, FormatRGB5A3, BestFormat(a, OptimizeQuality))
	assert.Equal(t, FormatCMPR, BestFormat(a, OptimizeSize))
}

func TestMipmapFlag(t *testing.T) {
	assert.Equal(t, "--mipmap-size=32", Mipmaps{}.Flag())
	assert.Equal(t, "--mipmap-size=8", Mipmaps{Mode: "auto", MinSize: 8}.Flag())
	assert.Equal(t, "--n-mm=3", Mipmaps{Mode: "manual", Count: 3}.Flag())
	assert.Equal(t, "--n-mm=0", Mipmaps{Mode: "none"}.Flag())
}

func TestEncoderArgs(t *testing.T) {
	e := NewEncoder("")
	assert.Equal(t, "wimgt", e.Exe)
	assert.Equal(t,
		[]string{"encode", "in.png", "--transform", "CMPR", "--n-mm=0", "--dest", "out.tex0", "-o"},
		e.Args("in.png", "out.tex0", FormatCMPR, Mipmaps{Mode: "none"}))
}

func TestStagePNG(t *testing.T) {
	src := t.TempDir()
	writeTestPNG(t, filepath.Join(src, "grass.png"), solid(color.NRGBA{255, 0, 0, 255}))
	dst := filepath.Join(t.TempDir(), "textures")

	staged, err := Stage(context.Background(), NewCache(BuildIndex(src)), []string{"grass", "missing"}, dst,
		StageOptions{Optimize: OptimizeSize, Formats: map[string]string{"grass": "bogus"}, Logger: quiet})
	require.NoError(t, err)
	require.Len(t, staged, 1)
	assert.Equal(t, FormatCMPR, staged[0].Format)
	assert.FileExists(t, filepath.Join(dst, "grass.png"))
}

func TestStageEncoderFailureCleansUp(t *testing.T) {
	src := t.TempDir()
	writeTestPNG(t, filepath.Join(src, "grass.png"), solid(color.NRGBA{255, 0, 0, 255}))
	dst := t.TempDir()

	staged, err := Stage(context.Background(), NewCache(BuildIndex(src)), []string{"grass"}, dst,
		StageOptions{Encoder: NewEncoder(filepath.Join(dst, "no-such-wimgt")), Logger: quiet})
	require.NoError(t, err)
	assert.Empty(t, staged)

	entries, err := os.ReadDir(dst)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
