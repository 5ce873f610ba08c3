package rhst

import "github.com/chewxy/math32"

// Value is one node of an RHST tree. The set of implementations is closed:
// Null, *Object, Array, String, Int and Float.
type Value interface {
	tag() Tag
}

// Null is the empty value. It encodes as the end-of-stream tag and only
// appears as a placeholder in trees built by hand.
type Null struct{}

// Int is a signed 32-bit integer (tag 8).
type Int int32

// Float is a 32-bit float (tag 9).
type Float float32

// String is a length-prefixed, 4-byte padded string (tag 7).
type String string

// Array is a fixed-size sequence (tag 2 ... tag 5).
type Array []Value

// Field is one key of an Object.
type Field struct {
	Key   string
	Value Value
}

// Object is an ordered mapping (tag 1 ... tag 4). Keys keep insertion order.
type Object struct {
	Fields []Field
}

func (Null) tag() Tag    { return TagNull }
func (Int) tag() Tag     { return TagInt }
func (Float) tag() Tag   { return TagFloat }
func (String) tag() Tag  { return TagString }
func (Array) tag() Tag   { return TagArray }
func (*Object) tag() Tag { return TagObject }

// Bool stores a boolean the way the format does, as Int 0 or 1.
func Bool(b bool) Int {
	if b {
		return 1
	}
	return 0
}

// NewObject returns an object with the given name field already set.
// An empty name produces an object without a "name" field.
func NewObject(name string) *Object {
	o := &Object{}
	if name != "" {
		o.Set("name", String(name))
	}
	return o
}

// Set appends a field, or replaces the value of an existing key in place.
func (o *Object) Set(key string, v Value) *Object {
	for i := range o.Fields {
		if o.Fields[i].Key == key {
			o.Fields[i].Value = v
			return o
		}
	}
	o.Fields = append(o.Fields, Field{Key: key, Value: v})
	return o
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (Value, bool) {
	for _, f := range o.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// Name is the object's header name: its "name" field if that is a String.
func (o *Object) Name() string {
	if v, ok := o.Get("name"); ok {
		if s, ok := v.(String); ok {
			return string(s)
		}
	}
	return ""
}

// Len returns the number of fields.
func (o *Object) Len() int { return len(o.Fields) }

// Ints builds an Array of Int.
func Ints(vals ...int) Array {
	a := make(Array, len(vals))
	for i, v := range vals {
		a[i] = Int(v)
	}
	return a
}

// Floats builds an Array of Float.
func Floats(vals ...float32) Array {
	a := make(Array, len(vals))
	for i, v := range vals {
		a[i] = Float(v)
	}
	return a
}

// Strings builds an Array of String.
func Strings(vals ...string) Array {
	a := make(Array, len(vals))
	for i, v := range vals {
		a[i] = String(v)
	}
	return a
}

// Vec2 builds a two-float array.
func Vec2(v [2]float32) Array { return Floats(v[0], v[1]) }

// Vec3 builds a three-float array.
func Vec3(v [3]float32) Array { return Floats(v[0], v[1], v[2]) }

// Vec4 builds a four-float array.
func Vec4(v [4]float32) Array { return Floats(v[0], v[1], v[2], v[3]) }

// elemTag is the element-type tag written in an array header: the shared tag
// of all elements, or TagNull when the array is empty or mixed.
func (a Array) elemTag() Tag {
	if len(a) == 0 {
		return TagNull
	}
	t := a[0].tag()
	for _, v := range a[1:] {
		if v.tag() != t {
			return TagNull
		}
	}
	return t
}

// Equal reports whether two trees hold the same keys in the same order and
// the same scalar values. Floats compare by bit pattern, so NaN equals itself.
func Equal(a, b Value) bool {
	switch x := a.(type) {
	case Null:
		_, ok := b.(Null)
		return ok
	case Int:
		y, ok := b.(Int)
		return ok && x == y
	case Float:
		y, ok := b.(Float)
		return ok && math32.Float32bits(float32(x)) == math32.Float32bits(float32(y))
	case String:
		y, ok := b.(String)
		return ok && x == y
	case Array:
		y, ok := b.(Array)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	case *Object:
		y, ok := b.(*Object)
		if !ok || len(x.Fields) != len(y.Fields) {
			return false
		}
		for i := range x.Fields {
			if x.Fields[i].Key != y.Fields[i].Key || !Equal(x.Fields[i].Value, y.Fields[i].Value) {
				return false
			}
		}
		return true
	}
	return false
}
