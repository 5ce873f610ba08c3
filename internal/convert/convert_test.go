package convert

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommand(t *testing.T) {
	assert.Equal(t, "rhst2-bmd", Command("out/course.BMD"))
	assert.Equal(t, "rhst2-brres", Command("out/course.brres"))
	assert.Equal(t, "rhst2-brres", Command("out/course"))
}

func TestArgs(t *testing.T) {
	c := New("")
	assert.Equal(t, "rszst", c.Exe)
	assert.Equal(t, []string{"rhst2-brres", "a.rhst", "a.brres"}, c.Args("a.rhst", "a.brres", false))
	assert.Equal(t, []string{"rhst2-bmd", "a.rhst", "a.bmd", "-v"}, c.Args("a.rhst", "a.bmd", true))
}

func fakeConverter(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script converter")
	}
	path := filepath.Join(t.TempDir(), "rszst")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755))
	return path
}

func TestRunExitCode(t *testing.T) {
	c := New(fakeConverter(t, "echo bad input >&2\nexit 3\n"))
	out, err := c.Run(context.Background(), "a.rhst", "a.brres", false)
	assert.ErrorIs(t, err, ErrConverterFailed)
	assert.Contains(t, err.Error(), "exit code 3")
	assert.Contains(t, out, "bad input")
}

func TestRunSuccess(t *testing.T) {
	c := New(fakeConverter(t, "echo \"$1 $2 $3 $4\"\n"))
	out, err := c.Run(context.Background(), "a.rhst", "a.bmd", true)
	require.NoError(t, err)
	assert.Equal(t, "rhst2-bmd a.rhst a.bmd -v\n", out)
}

func TestRunMissingExecutable(t *testing.T) {
	c := New(filepath.Join(t.TempDir(), "missing"))
	_, err := c.Run(context.Background(), "a.rhst", "a.brres", false)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrConverterFailed)
}
