package vcd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompute(t *testing.T) {
	tests := []struct {
		name       string
		colors     int
		uvs        int
		synth      bool
		wantColors int
		wantUVs    int
	}{
		{"bare", 0, 0, false, 0, 0},
		{"synthesized color", 0, 0, true, 1, 0},
		{"synth does not add a second color", 1, 1, true, 1, 1},
		{"two colors", 2, 3, false, 2, 3},
		{"capped", 5, 12, false, 2, 8},
		{"negative", -1, -1, false, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Compute(tt.colors, tt.uvs, tt.synth)
			assert.Equal(t, 1, d[Position])
			assert.Equal(t, 1, d[Normal])
			assert.Equal(t, tt.wantColors, d.Colors())
			assert.Equal(t, tt.wantUVs, d.UVs())
			assert.Equal(t, 2+tt.wantColors+tt.wantUVs, d.Arity())
		})
	}
}

func TestSynthesizedColorSlots(t *testing.T) {
	d := Compute(0, 1, true)
	assert.Equal(t, 1, d[Color0])
	assert.Equal(t, 0, d[Color1])
	assert.Equal(t, 1, d[UV0])
	for i := 0; i < Position; i++ {
		assert.Zero(t, d[i])
	}
}

func TestBits(t *testing.T) {
	d := Compute(1, 2, false)
	want := uint32(1<<Position | 1<<Normal | 1<<Color0 | 1<<UV0 | 1<<(UV0+1))
	assert.Equal(t, want, d.Bits())
	assert.Len(t, d.Ints(), NumSlots)
}

func TestCheck(t *testing.T) {
	d := Compute(0, 1, true)
	assert.NoError(t, d.Check(4))
	assert.ErrorIs(t, d.Check(3), ErrFacepointShape)
}
