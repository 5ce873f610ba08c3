// Package rhst encodes and decodes RHST (Rii Hierarchical Scene Tree) streams.
//
// A stream is the 4-byte magic "RHST", a little-endian int32 format version,
// one top-level value and a terminating end-of-stream tag. Every token starts
// with a little-endian int32 tag. Strings and object names are length
// prefixed and zero padded to a 4-byte boundary.
package rhst

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
)

// Tag identifies a token in the stream.
type Tag int32

const (
	TagNull            Tag = 0
	TagObject          Tag = 1
	TagArray           Tag = 2
	TagDynamicArray    Tag = 3
	TagEndObject       Tag = 4
	TagEndArray        Tag = 5
	TagEndDynamicArray Tag = 6
	TagString          Tag = 7
	TagInt             Tag = 8
	TagFloat           Tag = 9
)

// Magic opens every stream.
const Magic = "RHST"

// FormatVersion is written after the magic.
const FormatVersion = 1

// HeaderSize is the size of magic plus version.
const HeaderSize = 8

var (
	// ErrCapacityExceeded is returned when a write would run past the sink.
	ErrCapacityExceeded = errors.New("rhst: capacity exceeded")
	// ErrClosed is returned when writing to a closed writer.
	ErrClosed = errors.New("rhst: writer closed")
	// ErrUnbalanced is returned when end tags do not match open containers.
	ErrUnbalanced = errors.New("rhst: unbalanced container")
)

// Writer emits tokens at a monotonically increasing cursor into a sink of
// fixed capacity. It is not safe for concurrent use.
type Writer struct {
	sink   Sink
	buf    []byte
	pos    int
	open   []frame
	closed bool
}

type frame struct {
	tag     Tag
	sizeAt  int // offset of the size field of a dynamic array
	written int
}

// NewWriter returns a writer positioned at the start of the sink.
func NewWriter(sink Sink) *Writer {
	return &Writer{sink: sink, buf: sink.Bytes()}
}

// Pos returns the write cursor.
func (w *Writer) Pos() int { return w.pos }

// Cap returns the sink capacity.
func (w *Writer) Cap() int { return len(w.buf) }

func (w *Writer) reserve(n int) ([]byte, error) {
	if w.closed {
		return nil, ErrClosed
	}
	if w.pos+n > len(w.buf) {
		return nil, errors.Wrapf(ErrCapacityExceeded, "write of %d bytes at %d, capacity %d", n, w.pos, len(w.buf))
	}
	b := w.buf[w.pos : w.pos+n]
	w.pos += n
	return b, nil
}

func (w *Writer) putU32(v uint32) error {
	b, err := w.reserve(4)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(b, v)
	return nil
}

func (w *Writer) putTag(t Tag) error {
	return w.putU32(uint32(t))
}

// putBytes writes raw bytes followed by zero padding up to the next 4-byte boundary.
func (w *Writer) putBytes(p []byte) error {
	n := align4(len(p))
	b, err := w.reserve(n)
	if err != nil {
		return err
	}
	copy(b, p)
	for i := len(p); i < n; i++ {
		b[i] = 0
	}
	return nil
}

func (w *Writer) putPrefixed(s string) error {
	if len(s) > math.MaxInt32 {
		return errors.Errorf("rhst: string of %d bytes too long", len(s))
	}
	if err := w.putU32(uint32(len(s))); err != nil {
		return err
	}
	return w.putBytes([]byte(s))
}

// token runs one token write. On failure the cursor and the innermost
// dynamic-array count are restored, so a rejected token leaves no trace.
func (w *Writer) token(write func() error) error {
	pos, depth, written := w.pos, len(w.open), 0
	if depth > 0 {
		written = w.open[depth-1].written
	}
	err := write()
	if err != nil && !w.closed {
		w.pos = pos
		w.open = w.open[:depth]
		if depth > 0 {
			w.open[depth-1].written = written
		}
	}
	return err
}

// count records one child written into the innermost dynamic array.
func (w *Writer) count() {
	if n := len(w.open); n > 0 {
		w.open[n-1].written++
	}
}

// WriteHeader writes the magic and format version.
func (w *Writer) WriteHeader(version int32) error {
	return w.token(func() error {
		if w.pos != 0 {
			return errors.New("rhst: header must be written first")
		}
		if err := w.putBytes([]byte(Magic)); err != nil {
			return err
		}
		return w.putU32(uint32(version))
	})
}

// WriteString writes a string token.
func (w *Writer) WriteString(s string) error {
	return w.token(func() error {
		if err := w.putTag(TagString); err != nil {
			return err
		}
		w.count()
		return w.putPrefixed(s)
	})
}

// WriteInt writes a signed 32-bit integer token.
func (w *Writer) WriteInt(v int32) error {
	return w.token(func() error {
		if err := w.putTag(TagInt); err != nil {
			return err
		}
		w.count()
		return w.putU32(uint32(v))
	})
}

// WriteFloat writes a 32-bit float token.
func (w *Writer) WriteFloat(v float32) error {
	return w.token(func() error {
		if err := w.putTag(TagFloat); err != nil {
			return err
		}
		w.count()
		return w.putU32(math.Float32bits(v))
	})
}

// WriteNull writes a bare null token.
func (w *Writer) WriteNull() error {
	if err := w.putTag(TagNull); err != nil {
		return err
	}
	w.count()
	return nil
}

// BeginObject opens an object with a fixed number of children.
func (w *Writer) BeginObject(name string, children int) error {
	return w.token(func() error {
		if err := w.putTag(TagObject); err != nil {
			return err
		}
		w.count()
		if err := w.putU32(uint32(children)); err != nil {
			return err
		}
		if err := w.putPrefixed(name); err != nil {
			return err
		}
		w.open = append(w.open, frame{tag: TagObject})
		return nil
	})
}

// EndObject closes the innermost object.
func (w *Writer) EndObject() error {
	return w.end(TagObject, TagEndObject)
}

// BeginArray opens an array of a declared size.
func (w *Writer) BeginArray(size int, elem Tag) error {
	return w.token(func() error {
		if err := w.putTag(TagArray); err != nil {
			return err
		}
		w.count()
		if err := w.putU32(uint32(size)); err != nil {
			return err
		}
		if err := w.putU32(uint32(elem)); err != nil {
			return err
		}
		w.open = append(w.open, frame{tag: TagArray})
		return nil
	})
}

// EndArray closes the innermost fixed array.
func (w *Writer) EndArray() error {
	return w.end(TagArray, TagEndArray)
}

// BeginDynamicArray opens an array whose size is back-patched by EndDynamicArray.
func (w *Writer) BeginDynamicArray(elem Tag) error {
	return w.token(func() error {
		if err := w.putTag(TagDynamicArray); err != nil {
			return err
		}
		w.count()
		at := w.pos
		if err := w.putU32(0); err != nil {
			return err
		}
		if err := w.putU32(uint32(elem)); err != nil {
			return err
		}
		w.open = append(w.open, frame{tag: TagDynamicArray, sizeAt: at})
		return nil
	})
}

// EndDynamicArray closes the innermost dynamic array and patches its size.
func (w *Writer) EndDynamicArray() error {
	n := len(w.open)
	if n == 0 || w.open[n-1].tag != TagDynamicArray {
		return ErrUnbalanced
	}
	f := w.open[n-1]
	binary.LittleEndian.PutUint32(w.buf[f.sizeAt:], uint32(f.written))
	return w.end(TagDynamicArray, TagEndDynamicArray)
}

func (w *Writer) end(open, closing Tag) error {
	n := len(w.open)
	if n == 0 || w.open[n-1].tag != open {
		return errors.Wrapf(ErrUnbalanced, "tag %d", closing)
	}
	if err := w.putTag(closing); err != nil {
		return err
	}
	w.open = w.open[:n-1]
	return nil
}

// Encode writes a whole tree. Objects wrap every field in a one-child object
// named after the field key.
func (w *Writer) Encode(v Value) error {
	switch x := v.(type) {
	case Null:
		return w.WriteNull()
	case Int:
		return w.WriteInt(int32(x))
	case Float:
		return w.WriteFloat(float32(x))
	case String:
		return w.WriteString(string(x))
	case Array:
		if err := w.BeginArray(len(x), x.elemTag()); err != nil {
			return err
		}
		for _, e := range x {
			if err := w.Encode(e); err != nil {
				return err
			}
		}
		return w.EndArray()
	case *Object:
		if err := w.BeginObject(x.Name(), len(x.Fields)); err != nil {
			return err
		}
		for _, f := range x.Fields {
			if err := w.BeginObject(f.Key, 1); err != nil {
				return err
			}
			if err := w.Encode(f.Value); err != nil {
				return errors.Wrapf(err, "field %q", f.Key)
			}
			if err := w.EndObject(); err != nil {
				return err
			}
		}
		return w.EndObject()
	}
	// Value is sealed; a nil interface is the only way here.
	return errors.Errorf("rhst: cannot encode %T", v)
}

// Close writes the end-of-stream tag and commits the sink.
func (w *Writer) Close() error {
	if w.closed {
		return ErrClosed
	}
	if len(w.open) != 0 {
		return errors.Wrapf(ErrUnbalanced, "%d containers still open", len(w.open))
	}
	if err := w.putTag(TagNull); err != nil {
		return err
	}
	w.closed = true
	return w.sink.Commit(w.pos)
}

// Abort discards everything written and releases the sink.
func (w *Writer) Abort() error {
	if w.closed {
		return nil
	}
	w.closed = true
	return w.sink.Abort()
}

// EncodedSize returns the exact number of bytes Encode writes for v.
func EncodedSize(v Value) int {
	switch x := v.(type) {
	case Null:
		return 4
	case Int, Float:
		return 8
	case String:
		return 8 + align4(len(x))
	case Array:
		n := 4 + 8 + 4
		for _, e := range x {
			n += EncodedSize(e)
		}
		return n
	case *Object:
		n := 4 + 4 + 4 + align4(len(x.Name())) + 4
		for _, f := range x.Fields {
			n += 4 + 4 + 4 + align4(len(f.Key)) + 4
			n += EncodedSize(f.Value)
		}
		return n
	}
	return 0
}

// StreamSize returns the size of a complete stream holding v.
func StreamSize(v Value) int {
	return HeaderSize + EncodedSize(v) + 4
}

func align4(n int) int {
	return (n + 3) &^ 3
}
