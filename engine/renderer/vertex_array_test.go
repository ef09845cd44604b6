package renderer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/flatgl/engine/core"
	"github.com/spaghettifunk/flatgl/engine/renderer/headless"
	"github.com/spaghettifunk/flatgl/engine/renderer/metadata"
)

func TestVertexArrayDescribesLayout(t *testing.T) {
	b := headless.New()
	vb, err := NewVertexBuffer(b, PositionColorLayout, 4, metadata.BufferUsageStatic)
	require.NoError(t, err)

	va, err := NewVertexArray(b, vb)
	require.NoError(t, err)
	requireClean(t, b)

	vao, err := va.Handle()
	require.NoError(t, err)
	vbo, _ := vb.Handle()

	assert.Equal(t, map[uint32]headless.AttribPointer{
		0: {Buffer: vbo, Components: 2, Stride: 24, Offset: 0},
		1: {Buffer: vbo, Components: 4, Stride: 24, Offset: 8},
	}, b.AttribPointers(vao))
	assert.Same(t, vb, va.VertexBuffer())
}

func TestVertexArrayOverReleasedBuffer(t *testing.T) {
	b := headless.New()
	vb, err := NewVertexBuffer(b, PositionColorLayout, 4, metadata.BufferUsageStatic)
	require.NoError(t, err)
	vb.Release()

	va, err := NewVertexArray(b, vb)
	assert.ErrorIs(t, err, core.ErrUseAfterRelease)
	assert.Nil(t, va)
	assert.Zero(t, b.LiveVertexArrays())
}

func TestVertexArrayRelease(t *testing.T) {
	b := headless.New()
	vb, err := NewVertexBuffer(b, PositionTextureLayout, 4, metadata.BufferUsageStatic)
	require.NoError(t, err)
	va, err := NewVertexArray(b, vb)
	require.NoError(t, err)

	va.Release()
	va.Release()

	assert.Zero(t, b.LiveVertexArrays())
	assert.Equal(t, 1, b.LiveBuffers(), "the vertex buffer is not owned by the array")
	_, err = va.Handle()
	assert.ErrorIs(t, err, core.ErrUseAfterRelease)
	requireClean(t, b)
}
