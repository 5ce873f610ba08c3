package rhst

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
)

var (
	ErrBadMagic        = errors.New("rhst: bad magic")
	ErrTruncated       = errors.New("rhst: truncated stream")
	ErrUnexpectedToken = errors.New("rhst: unexpected token")
)

// Token is one decoded token. Only the fields relevant to Tag are set.
type Token struct {
	Tag  Tag
	Size int    // children of an object, elements of an array
	Elem Tag    // array element-type tag
	Str  string // string payload or object name
	Int  int32
	F32  float32
}

// MaxDepth bounds container nesting when decoding values.
const MaxDepth = 1 << 12

// Reader walks the tokens of a stream.
type Reader struct {
	data  []byte
	off   int
	depth int
}

// NewReader validates the header and returns a reader positioned at the
// first token along with the format version.
func NewReader(data []byte) (*Reader, int32, error) {
	if len(data) < HeaderSize {
		return nil, 0, ErrTruncated
	}
	if string(data[:4]) != Magic {
		return nil, 0, ErrBadMagic
	}
	version := int32(binary.LittleEndian.Uint32(data[4:8]))
	return &Reader{data: data, off: HeaderSize}, version, nil
}

// Offset returns the read cursor.
func (r *Reader) Offset() int { return r.off }

func (r *Reader) u32() (uint32, error) {
	if r.off+4 > len(r.data) {
		return 0, errors.Wrapf(ErrTruncated, "at %d", r.off)
	}
	v := binary.LittleEndian.Uint32(r.data[r.off:])
	r.off += 4
	return v, nil
}

func (r *Reader) str() (string, error) {
	n, err := r.u32()
	if err != nil {
		return "", err
	}
	padded := align4(int(n))
	if r.off+padded > len(r.data) {
		return "", errors.Wrapf(ErrTruncated, "string of %d bytes at %d", n, r.off)
	}
	s := string(r.data[r.off : r.off+int(n)])
	r.off += padded
	return s, nil
}

// Next reads one token.
func (r *Reader) Next() (Token, error) {
	t, err := r.u32()
	if err != nil {
		return Token{}, err
	}
	tok := Token{Tag: Tag(t)}
	switch tok.Tag {
	case TagNull, TagEndObject, TagEndArray, TagEndDynamicArray:
	case TagString:
		tok.Str, err = r.str()
	case TagInt:
		var v uint32
		v, err = r.u32()
		tok.Int = int32(v)
	case TagFloat:
		var v uint32
		v, err = r.u32()
		tok.F32 = math.Float32frombits(v)
	case TagObject:
		var n uint32
		if n, err = r.u32(); err == nil {
			tok.Size = int(n)
			tok.Str, err = r.str()
		}
	case TagArray, TagDynamicArray:
		var n, elem uint32
		if n, err = r.u32(); err == nil {
			elem, err = r.u32()
			tok.Size = int(n)
			tok.Elem = Tag(elem)
		}
	default:
		return Token{}, errors.Wrapf(ErrUnexpectedToken, "tag %d at %d", t, r.off-4)
	}
	return tok, err
}

func (r *Reader) expect(tag Tag) (Token, error) {
	at := r.off
	tok, err := r.Next()
	if err != nil {
		return tok, err
	}
	if tok.Tag != tag {
		return tok, errors.Wrapf(ErrUnexpectedToken, "want tag %d, got %d at %d", tag, tok.Tag, at)
	}
	return tok, nil
}

// sizeHint bounds a declared child count by what the remaining bytes can hold.
func (r *Reader) sizeHint(n int) int {
	if limit := (len(r.data) - r.off) / 4; n > limit {
		return limit
	}
	return n
}

// Value reads one complete value.
func (r *Reader) Value() (Value, error) {
	tok, err := r.Next()
	if err != nil {
		return nil, err
	}
	return r.value(tok)
}

func (r *Reader) value(tok Token) (Value, error) {
	switch tok.Tag {
	case TagNull:
		return Null{}, nil
	case TagInt:
		return Int(tok.Int), nil
	case TagFloat:
		return Float(tok.F32), nil
	case TagString:
		return String(tok.Str), nil
	case TagArray, TagDynamicArray, TagObject:
		if r.depth >= MaxDepth {
			return nil, errors.Wrapf(ErrUnexpectedToken, "nesting deeper than %d at %d", MaxDepth, r.off)
		}
		r.depth++
		defer func() { r.depth-- }()
	}

	switch tok.Tag {
	case TagArray, TagDynamicArray:
		end := TagEndArray
		if tok.Tag == TagDynamicArray {
			end = TagEndDynamicArray
		}
		arr := make(Array, 0, r.sizeHint(tok.Size))
		for i := 0; i < tok.Size; i++ {
			v, err := r.Value()
			if err != nil {
				return nil, errors.Wrapf(err, "element %d", i)
			}
			arr = append(arr, v)
		}
		if _, err := r.expect(end); err != nil {
			return nil, err
		}
		return arr, nil
	case TagObject:
		obj := &Object{Fields: make([]Field, 0, r.sizeHint(tok.Size))}
		for i := 0; i < tok.Size; i++ {
			wrap, err := r.expect(TagObject)
			if err != nil {
				return nil, err
			}
			if wrap.Size != 1 {
				return nil, errors.Wrapf(ErrUnexpectedToken, "field %q holds %d values", wrap.Str, wrap.Size)
			}
			v, err := r.Value()
			if err != nil {
				return nil, errors.Wrapf(err, "field %q", wrap.Str)
			}
			if _, err := r.expect(TagEndObject); err != nil {
				return nil, err
			}
			obj.Fields = append(obj.Fields, Field{Key: wrap.Str, Value: v})
		}
		if _, err := r.expect(TagEndObject); err != nil {
			return nil, err
		}
		return obj, nil
	}
	return nil, errors.Wrapf(ErrUnexpectedToken, "tag %d opens no value", tok.Tag)
}

// Decode parses a complete stream: header, one value, end-of-stream tag.
func Decode(data []byte) (int32, Value, error) {
	r, version, err := NewReader(data)
	if err != nil {
		return 0, nil, err
	}
	v, err := r.Value()
	if err != nil {
		return version, nil, err
	}
	if _, err := r.expect(TagNull); err != nil {
		return version, nil, errors.Wrap(err, "rhst: missing end-of-stream")
	}
	return version, v, nil
}
