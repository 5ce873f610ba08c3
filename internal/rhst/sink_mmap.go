//go:build linux || darwin || freebsd

package rhst

import (
	"os"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// FileSink is a memory-mapped temporary file that is renamed over its
// destination on Commit.
type FileSink struct {
	path string
	f    *os.File
	mem  []byte
}

// CreateFile maps a new temporary file of the given capacity beside path.
func CreateFile(path string, capacity int) (*FileSink, error) {
	if capacity <= 0 {
		return nil, errors.Errorf("rhst: invalid capacity %d", capacity)
	}
	f, err := tempFile(path)
	if err != nil {
		return nil, err
	}
	if err := f.Truncate(int64(capacity)); err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, errors.Wrapf(err, "rhst: size %s", f.Name())
	}
	mem, err := unix.Mmap(int(f.Fd()), 0, capacity, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, errors.Wrapf(err, "rhst: mmap %s", f.Name())
	}
	return &FileSink{path: path, f: f, mem: mem}, nil
}

func (s *FileSink) Bytes() []byte { return s.mem }

func (s *FileSink) Commit(n int) error {
	if err := unix.Msync(s.mem, unix.MS_SYNC); err != nil {
		s.Abort()
		return errors.Wrap(err, "rhst: msync")
	}
	if err := s.unmap(); err != nil {
		s.Abort()
		return err
	}
	return publish(s.f, n, s.path)
}

func (s *FileSink) Abort() error {
	err := s.unmap()
	s.f.Close()
	if rmErr := os.Remove(s.f.Name()); rmErr != nil && !os.IsNotExist(rmErr) && err == nil {
		err = errors.Wrap(rmErr, "rhst: remove temp file")
	}
	return err
}

func (s *FileSink) unmap() error {
	if s.mem == nil {
		return nil
	}
	mem := s.mem
	s.mem = nil
	if err := unix.Munmap(mem); err != nil {
		return errors.Wrap(err, "rhst: munmap")
	}
	return nil
}
