// Package vcd computes vertex descriptors: which attribute channels the
// facepoints of one mesh carry.
package vcd

import (
	"github.com/pkg/errors"
)

// Slots in the descriptor vector.
const (
	Position = 9
	Normal   = 10
	Color0   = 11
	Color1   = 12
	UV0      = 13
	UV7      = 20

	NumSlots  = 21
	MaxColors = 2
	MaxUVs    = 8
)

// ErrFacepointShape is returned when a facepoint does not match its descriptor.
var ErrFacepointShape = errors.New("vcd: facepoint does not match descriptor")

// Descriptor is the per-mesh flag vector; a slot is 1 when the channel is present.
type Descriptor [NumSlots]int

// Compute builds the descriptor for a mesh with the given number of color
// and UV layers. synthesizeColor forces color 0 on for meshes that get a
// default white color when they have none.
func Compute(colors, uvs int, synthesizeColor bool) Descriptor {
	var d Descriptor
	d[Position] = 1
	d[Normal] = 1
	for i := 0; i < clamp(colors, MaxColors); i++ {
		d[Color0+i] = 1
	}
	for i := 0; i < clamp(uvs, MaxUVs); i++ {
		d[UV0+i] = 1
	}
	if synthesizeColor {
		d[Color0] = 1
	}
	return d
}

func clamp(n, limit int) int {
	if n < 0 {
		return 0
	}
	if n > limit {
		return limit
	}
	return n
}

// Arity is the number of attribute tuples each facepoint holds.
func (d Descriptor) Arity() int {
	n := 0
	for _, v := range d {
		if v != 0 {
			n++
		}
	}
	return n
}

// Colors is the number of color channels.
func (d Descriptor) Colors() int {
	return d[Color0] + d[Color1]
}

// UVs is the number of UV channels.
func (d Descriptor) UVs() int {
	n := 0
	for i := UV0; i <= UV7; i++ {
		n += d[i]
	}
	return n
}

// Bits packs the descriptor with bit i set for slot i.
func (d Descriptor) Bits() uint32 {
	var b uint32
	for i, v := range d {
		if v != 0 {
			b |= 1 << i
		}
	}
	return b
}

// Ints returns the descriptor as a plain slice.
func (d Descriptor) Ints() []int {
	return append([]int(nil), d[:]...)
}

// Check reports whether a facepoint with the given tuple count fits d.
func (d Descriptor) Check(arity int) error {
	if want := d.Arity(); arity != want {
		return errors.Wrapf(ErrFacepointShape, "got %d tuples, want %d", arity, want)
	}
	return nil
}
