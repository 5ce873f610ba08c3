//go:build !linux && !darwin && !freebsd

package rhst

import (
	"os"

	"github.com/pkg/errors"
)

// FileSink stages the stream in memory and writes it to a temporary file
// beside its destination on Commit.
type FileSink struct {
	path string
	buf  []byte
}

// CreateFile returns a sink of the given capacity that publishes to path.
func CreateFile(path string, capacity int) (*FileSink, error) {
	if capacity <= 0 {
		return nil, errors.Errorf("rhst: invalid capacity %d", capacity)
	}
	return &FileSink{path: path, buf: make([]byte, capacity)}, nil
}

func (s *FileSink) Bytes() []byte { return s.buf }

func (s *FileSink) Commit(n int) error {
	f, err := tempFile(s.path)
	if err != nil {
		return err
	}
	if _, err := f.Write(s.buf[:n]); err != nil {
		f.Close()
		os.Remove(f.Name())
		return errors.Wrapf(err, "rhst: write %s", f.Name())
	}
	s.buf = nil
	return publish(f, n, s.path)
}

func (s *FileSink) Abort() error {
	s.buf = nil
	return nil
}
