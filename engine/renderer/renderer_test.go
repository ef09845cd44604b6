package renderer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/flatgl/engine/core"
	"github.com/spaghettifunk/flatgl/engine/renderer/headless"
	"github.com/spaghettifunk/flatgl/engine/renderer/metadata"
)

func TestDrawQuad(t *testing.T) {
	b := headless.New()
	r := New(b, metadata.Colour{R: 0.8, G: 0.8, B: 0.8, A: 1})

	vb, ib := newQuadBuffers(t, b)
	va, err := NewVertexArray(b, vb)
	require.NoError(t, err)
	sp, err := NewShaderProgram(b, "boxes", boxesVertex, boxesFragment)
	require.NoError(t, err)
	assert.Equal(t, metadata.ShaderStateLinked, sp.State())

	r.RegisterProgram(sp)
	r.Resize(1280, 768)

	require.NoError(t, r.BeginFrame(0))
	require.NoError(t, r.Draw(sp, va, ib, metadata.PrimitiveTriangles, len(quadIndices)))
	require.NoError(t, r.EndFrame(0))

	draws := b.Draws()
	require.Len(t, draws, 1)
	p, _ := sp.Handle()
	vao, _ := va.Handle()
	ibo, _ := ib.Handle()
	assert.Equal(t, headless.DrawCall{
		Mode:          metadata.PrimitiveTriangles,
		Count:         6,
		Program:       p,
		VertexArray:   vao,
		ElementBuffer: ibo,
	}, draws[0])
	requireClean(t, b)

	va.Release()
	ib.Release()
	vb.Release()
	sp.Release()
	assert.Zero(t, b.LiveBuffers())
	assert.Zero(t, b.LiveVertexArrays())
	assert.Zero(t, b.LivePrograms())
	requireClean(t, b)
}

func TestDrawRejects(t *testing.T) {
	b := headless.New()
	r := New(b, metadata.Colour{})
	vb, ib := newQuadBuffers(t, b)
	va, err := NewVertexArray(b, vb)
	require.NoError(t, err)
	sp, err := NewShaderProgram(b, "boxes", boxesVertex, boxesFragment)
	require.NoError(t, err)
	b.ResetCalls()

	assert.ErrorIs(t, r.Draw(sp, va, ib, metadata.PrimitiveTriangles, 0), core.ErrOutOfRange)
	assert.ErrorIs(t, r.Draw(sp, va, ib, metadata.PrimitiveTriangles, 7), core.ErrOutOfRange)
	assert.ErrorIs(t, r.Draw(nil, va, ib, metadata.PrimitiveTriangles, 6), core.ErrInvalidArgument)

	vb.Release()
	assert.ErrorIs(t, r.Draw(sp, va, ib, metadata.PrimitiveTriangles, 6), core.ErrUseAfterRelease)

	sp.Release()
	assert.ErrorIs(t, r.Draw(sp, va, ib, metadata.PrimitiveTriangles, 6), core.ErrUseAfterRelease)

	assert.Empty(t, b.Draws())
	requireClean(t, b)
}

func TestResizeUpdatesViewportUniform(t *testing.T) {
	b := headless.New()
	r := New(b, metadata.Colour{})
	sp, err := NewShaderProgram(b, "boxes", boxesVertex, boxesFragment)
	require.NoError(t, err)
	flat, err := NewShaderProgram(b, "flat", boxesVertex, flatFragment)
	require.NoError(t, err)

	r.Resize(1280, 768)
	r.RegisterProgram(sp)
	r.RegisterProgram(sp)
	r.RegisterProgram(flat)

	h, _ := sp.Handle()
	loc, _ := sp.UniformLocation(metadata.ViewportSizeUniform)
	v, _ := b.UniformValue(h, loc)
	assert.Equal(t, [2]float32{1280, 768}, v, "registering after a resize pushes the current size")

	r.Resize(800, 600)
	v, _ = b.UniformValue(h, loc)
	assert.Equal(t, [2]float32{800, 600}, v)
	assert.Equal(t, [4]int32{0, 0, 800, 600}, b.ViewportRect())
	w, hh := r.FramebufferSize()
	assert.Equal(t, uint32(800), w)
	assert.Equal(t, uint32(600), hh)

	r.UnregisterProgram(sp)
	r.Resize(640, 480)
	v, _ = b.UniformValue(h, loc)
	assert.Equal(t, [2]float32{800, 600}, v)
	requireClean(t, b)
}

func TestBeginFrameClears(t *testing.T) {
	b := headless.New()
	colour := metadata.Colour{R: 0.8, G: 0.8, B: 0.8, A: 1}
	r := New(b, colour)

	require.NoError(t, r.BeginFrame(0.016))
	require.NoError(t, r.BeginFrame(0.016))

	got, clears := b.ClearState()
	assert.Equal(t, colour, got)
	assert.Equal(t, 2, clears)
}
