package rhst

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// Sink is a fixed-capacity byte region a Writer fills front to back.
type Sink interface {
	// Bytes returns the whole writable region.
	Bytes() []byte
	// Commit finalizes the first n bytes and releases the sink.
	Commit(n int) error
	// Abort releases the sink without publishing anything.
	Abort() error
}

// MemSink is an in-memory sink.
type MemSink struct {
	buf  []byte
	data []byte
}

// NewMemSink allocates a sink of the given capacity.
func NewMemSink(capacity int) *MemSink {
	return &MemSink{buf: make([]byte, capacity)}
}

func (s *MemSink) Bytes() []byte { return s.buf }

func (s *MemSink) Commit(n int) error {
	s.data = s.buf[:n]
	return nil
}

func (s *MemSink) Abort() error {
	s.data = nil
	return nil
}

// Data returns the committed bytes, or nil before Commit.
func (s *MemSink) Data() []byte { return s.data }

// tempFile opens a fresh temporary file beside path.
func tempFile(path string) (*os.File, error) {
	dir := filepath.Dir(path)
	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return nil, errors.Wrapf(err, "rhst: create temp file in %s", dir)
	}
	return f, nil
}

// publish truncates the staged file to n bytes and renames it over path.
func publish(f *os.File, n int, path string) error {
	tmp := f.Name()
	if err := f.Truncate(int64(n)); err != nil {
		f.Close()
		os.Remove(tmp)
		return errors.Wrapf(err, "rhst: truncate %s", tmp)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return errors.Wrapf(err, "rhst: close %s", tmp)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return errors.Wrapf(err, "rhst: rename to %s", path)
	}
	return nil
}

// WriteFile encodes v as a complete stream into path. The stream is staged
// beside path and only replaces it once fully written.
func WriteFile(path string, v Value) error {
	sink, err := CreateFile(path, StreamSize(v))
	if err != nil {
		return err
	}
	w := NewWriter(sink)
	if err := w.WriteHeader(FormatVersion); err != nil {
		w.Abort()
		return err
	}
	if err := w.Encode(v); err != nil {
		w.Abort()
		return err
	}
	if err := w.Close(); err != nil {
		w.Abort()
		return err
	}
	return nil
}

// Marshal encodes v as a complete stream in memory.
func Marshal(v Value) ([]byte, error) {
	sink := NewMemSink(StreamSize(v))
	w := NewWriter(sink)
	if err := w.WriteHeader(FormatVersion); err != nil {
		return nil, err
	}
	if err := w.Encode(v); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return sink.Data(), nil
}
