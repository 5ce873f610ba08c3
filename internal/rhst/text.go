package rhst

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// MarshalJSON writes the fields in their stored order.
func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range o.Fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := marshalValue(f.Value)
		if err != nil {
			return nil, errors.Wrapf(err, "field %q", f.Key)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalJSON writes the elements in order.
func (a Array) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, v := range a {
		if i > 0 {
			buf.WriteByte(',')
		}
		val, err := marshalValue(v)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// MarshalJSON writes null.
func (Null) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// MarshalJSON always writes a fraction or exponent so the value reads back
// as a Float. NaN and the infinities have no JSON number form and are
// written as the strings "NaN", "+Inf" and "-Inf".
func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	switch {
	case math.IsNaN(v):
		return []byte(`"NaN"`), nil
	case math.IsInf(v, 1):
		return []byte(`"+Inf"`), nil
	case math.IsInf(v, -1):
		return []byte(`"-Inf"`), nil
	}
	b := strconv.AppendFloat(nil, v, 'g', -1, 32)
	if !bytes.ContainsAny(b, ".e") {
		b = append(b, ".0"...)
	}
	return b, nil
}

func marshalValue(v Value) ([]byte, error) {
	if v == nil {
		return []byte("null"), nil
	}
	return json.Marshal(v)
}

// WriteJSON writes the textual form of v. With indent set the output is
// tab-indented, otherwise compact.
func WriteJSON(w io.Writer, v Value, indent bool) error {
	raw, err := marshalValue(v)
	if err != nil {
		return errors.Wrap(err, "rhst: marshal json")
	}
	if indent {
		var buf bytes.Buffer
		if err := json.Indent(&buf, raw, "", "\t"); err != nil {
			return errors.Wrap(err, "rhst: indent json")
		}
		raw = buf.Bytes()
	}
	if _, err := w.Write(raw); err != nil {
		return errors.Wrap(err, "rhst: write json")
	}
	return nil
}

// ParseJSON reads the textual form back into a tree. Key order is kept;
// numbers without a fraction or exponent become Int, others Float. Integers
// outside the int32 range are an error.
func ParseJSON(r io.Reader) (Value, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	v, err := parseJSONValue(dec)
	if err != nil {
		return nil, errors.Wrap(err, "rhst: parse json")
	}
	return v, nil
}

func parseJSONValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			obj := &Object{}
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := kt.(string)
				if !ok {
					return nil, errors.Errorf("object key %v is not a string", kt)
				}
				v, err := parseJSONValue(dec)
				if err != nil {
					return nil, errors.Wrapf(err, "field %q", key)
				}
				obj.Fields = append(obj.Fields, Field{Key: key, Value: v})
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return obj, nil
		case '[':
			arr := Array{}
			for dec.More() {
				v, err := parseJSONValue(dec)
				if err != nil {
					return nil, err
				}
				arr = append(arr, v)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return arr, nil
		}
		return nil, errors.Errorf("unexpected delimiter %v", t)
	case json.Number:
		s := t.String()
		if !strings.ContainsAny(s, ".eE") {
			i, err := strconv.ParseInt(s, 10, 32)
			if err != nil {
				return nil, errors.Errorf("integer %s does not fit in 32 bits", s)
			}
			return Int(i), nil
		}
		f, err := t.Float64()
		if err != nil {
			return nil, err
		}
		return Float(float32(f)), nil
	case string:
		return String(t), nil
	case bool:
		return Bool(t), nil
	case nil:
		return Null{}, nil
	}
	return nil, errors.Errorf("unexpected token %v", tok)
}
