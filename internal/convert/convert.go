// Package convert runs the downstream converter that turns an RHST file
// into a native model archive.
package convert

import (
	"bytes"
	"context"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// ErrConverterFailed is returned when the converter exits non-zero.
var ErrConverterFailed = errors.New("convert: converter failed")

// Converter invokes rszst.
type Converter struct {
	Exe string
}

// New returns a converter for exe, or "rszst" from PATH.
func New(exe string) *Converter {
	if exe == "" {
		exe = "rszst"
	}
	return &Converter{Exe: exe}
}

// Command picks the subcommand from the destination extension.
func Command(dst string) string {
	if strings.EqualFold(filepath.Ext(dst), ".bmd") {
		return "rhst2-bmd"
	}
	return "rhst2-brres"
}

// Args is the command line Run executes, without the executable.
func (c *Converter) Args(src, dst string, verbose bool) []string {
	args := []string{Command(dst), src, dst}
	if verbose {
		args = append(args, "-v")
	}
	return args
}

// Run converts src into dst and returns the converter's combined output.
func (c *Converter) Run(ctx context.Context, src, dst string, verbose bool) (string, error) {
	cmd := exec.CommandContext(ctx, c.Exe, c.Args(src, dst, verbose)...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	err := cmd.Run()
	if err != nil {
		var exit *exec.ExitError
		if errors.As(err, &exit) {
			return out.String(), errors.Wrapf(ErrConverterFailed, "%s: exit code %d: %s", dst, exit.ExitCode(), strings.TrimSpace(out.String()))
		}
		return out.String(), errors.Wrapf(err, "convert: run %s", c.Exe)
	}
	return out.String(), nil
}
