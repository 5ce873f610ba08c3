package texture

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/pkg/errors"
)

// ErrEncoderFailed is returned when the texture encoder exits non-zero.
var ErrEncoderFailed = errors.New("texture: encoder failed")

// Encoder runs wimgt to turn staged PNGs into native textures.
type Encoder struct {
	Exe string
}

// NewEncoder returns an encoder for exe, or "wimgt" from PATH.
func NewEncoder(exe string) *Encoder {
	if exe == "" {
		exe = "wimgt"
	}
	return &Encoder{Exe: exe}
}

// Available reports whether the encoder runs and identifies itself.
func (e *Encoder) Available(ctx context.Context) bool {
	out, err := exec.CommandContext(ctx, e.Exe, "version").Output()
	return err == nil && strings.HasPrefix(string(out), "wimgt: Wiimms")
}

// Args is the command line Encode runs, without the executable.
func (e *Encoder) Args(png, dst, format string, mm Mipmaps) []string {
	return []string{"encode", png, "--transform", strings.ToUpper(format), mm.Flag(), "--dest", dst, "-o"}
}

// Encode converts png into a native texture at dst.
func (e *Encoder) Encode(ctx context.Context, png, dst, format string, mm Mipmaps) error {
	cmd := exec.CommandContext(ctx, e.Exe, e.Args(png, dst, format, mm)...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		return errors.Wrapf(ErrEncoderFailed, "%s: %v: %s", dst, err, strings.TrimSpace(out.String()))
	}
	return nil
}
