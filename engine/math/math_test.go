package math

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
)

func TestClamp(t *testing.T) {
	assert.Equal(t, 5, Clamp(7, 0, 5))
	assert.Equal(t, 0, Clamp(-3, 0, 5))
	assert.Equal(t, float32(2.5), Clamp(float32(2.5), 0, 5))
}

func TestRandRangeBounds(t *testing.T) {
	Seed(42)
	for i := 0; i < 1000; i++ {
		v := RandRange(32, 128)
		assert.GreaterOrEqual(t, v, 32)
		assert.Less(t, v, 128)
	}
	assert.Equal(t, 9, RandRange(9, 9))
	assert.Equal(t, uint32(9), RandRange(uint32(9), uint32(3)))
}

func TestRandFloatUnitInterval(t *testing.T) {
	for i := 0; i < 1000; i++ {
		f := RandFloat()
		assert.GreaterOrEqual(t, f, float32(0))
		assert.Less(t, f, float32(1))
	}
}

func TestVertexMemoryLayout(t *testing.T) {
	var v VertexPositionColor
	assert.Equal(t, uintptr(24), unsafe.Sizeof(v))
	assert.Equal(t, uintptr(8), unsafe.Offsetof(v.Colour))

	var vt VertexPositionTexture
	assert.Equal(t, uintptr(16), unsafe.Sizeof(vt))
	assert.Equal(t, uintptr(8), unsafe.Offsetof(vt.Texcoord))
}

func TestExtentsAndRangeConvert(t *testing.T) {
	e := NewExtents2D(10, 20, 30, 40)
	assert.Equal(t, float32(30), e.Width())
	assert.Equal(t, float32(40), e.Height())
	assert.True(t, e.Max.Sub(e.Min).Compare(NewVec2(30, 40), K_FLOAT_EPSILON))
	assert.Equal(t, float32(0), RangeConvertFloat32(640, 0, 1280, -1, 1))
}
