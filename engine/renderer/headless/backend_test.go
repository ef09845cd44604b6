package headless

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/flatgl/engine/renderer/metadata"
)

func TestBufferStorageRoundTrip(t *testing.T) {
	b := New()
	id := b.GenBuffer()
	assert.NotZero(t, id)

	b.BindBuffer(metadata.BufferTargetArray, id)
	b.BufferData(metadata.BufferTargetArray, 8, metadata.BufferUsageDynamic)
	b.BufferSubData(metadata.BufferTargetArray, 2, []byte{1, 2, 3})

	out := make([]byte, 8)
	b.GetBufferSubData(metadata.BufferTargetArray, 0, out)
	b.BindBuffer(metadata.BufferTargetArray, 0)

	assert.Equal(t, []byte{0, 0, 1, 2, 3, 0, 0, 0}, out)
	assert.Equal(t, 8, b.BufferSize(id))
	usage, ok := b.BufferUsage(id)
	assert.True(t, ok)
	assert.Equal(t, metadata.BufferUsageDynamic, usage)
	assert.Empty(t, b.Errors())
	assert.True(t, b.Neutral())
}

func TestInvalidCallsAreRecorded(t *testing.T) {
	b := New()

	b.BufferData(metadata.BufferTargetArray, 4, metadata.BufferUsageStatic)
	b.DeleteBuffer(42)
	b.UseProgram(7)

	id := b.GenBuffer()
	b.BindBuffer(metadata.BufferTargetArray, id)
	b.BufferData(metadata.BufferTargetArray, 4, metadata.BufferUsageStatic)
	b.BufferSubData(metadata.BufferTargetArray, 2, []byte{1, 2, 3})
	b.BindBuffer(metadata.BufferTargetArray, 0)

	b.DeleteBuffer(id)
	b.DeleteBuffer(id)

	assert.Len(t, b.Errors(), 5)
	assert.Zero(t, b.LiveBuffers())
}

func TestCheckErrorReportsOnlyNewErrors(t *testing.T) {
	b := New()
	assert.NoError(t, b.CheckError("start"))

	b.DeleteBuffer(3)
	b.UseProgram(9)
	err := b.CheckError("frame")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "frame: ")
	assert.NoError(t, b.CheckError("frame"))
	assert.Len(t, b.Errors(), 2)
}

func TestDeleteUnbindsBuffer(t *testing.T) {
	b := New()
	id := b.GenBuffer()
	b.BindBuffer(metadata.BufferTargetElementArray, id)
	b.DeleteBuffer(id)
	assert.Zero(t, b.BoundBuffer(metadata.BufferTargetElementArray))
}

func TestVertexArrayRecordsPointers(t *testing.T) {
	b := New()
	vbo := b.GenBuffer()
	vao := b.GenVertexArray()

	b.BindVertexArray(vao)
	b.BindBuffer(metadata.BufferTargetArray, vbo)
	b.EnableVertexAttribArray(0)
	b.VertexAttribPointer(0, 2, 24, 0)
	b.EnableVertexAttribArray(1)
	b.VertexAttribPointer(1, 4, 24, 8)
	b.BindVertexArray(0)
	b.BindBuffer(metadata.BufferTargetArray, 0)

	assert.Equal(t, map[uint32]AttribPointer{
		0: {Buffer: vbo, Components: 2, Stride: 24, Offset: 0},
		1: {Buffer: vbo, Components: 4, Stride: 24, Offset: 8},
	}, b.AttribPointers(vao))
	assert.Empty(t, b.Errors())
}

func TestProgramLifecycle(t *testing.T) {
	b := New()

	vs := b.CreateShader(metadata.ShaderStageVertex)
	b.ShaderSource(vs, boxesVertex)
	b.CompileShader(vs)
	require.True(t, b.ShaderCompiled(vs), b.ShaderInfoLog(vs))

	fs := b.CreateShader(metadata.ShaderStageFragment)
	b.ShaderSource(fs, boxesFragment)
	b.CompileShader(fs)
	require.True(t, b.ShaderCompiled(fs), b.ShaderInfoLog(fs))

	p := b.CreateProgram()
	b.AttachShader(p, vs)
	b.AttachShader(p, fs)
	b.LinkProgram(p)
	require.True(t, b.ProgramLinked(p), b.ProgramInfoLog(p))
	b.DetachShader(p, vs)
	b.DetachShader(p, fs)
	b.DeleteShader(vs)
	b.DeleteShader(fs)

	loc := b.UniformLocation(p, "ViewportSize")
	assert.GreaterOrEqual(t, loc, int32(0))
	assert.Equal(t, int32(-1), b.UniformLocation(p, "Missing"))

	b.UseProgram(p)
	b.Uniform2f(loc, 800, 600)
	b.UseProgram(0)

	v, ok := b.UniformValue(p, loc)
	assert.True(t, ok)
	assert.Equal(t, [2]float32{800, 600}, v)

	b.DeleteProgram(p)
	assert.Zero(t, b.LivePrograms())
	assert.Zero(t, b.LiveShaders())
	assert.Empty(t, b.Errors())
}

func TestCompileFailureKeepsLog(t *testing.T) {
	b := New()
	vs := b.CreateShader(metadata.ShaderStageVertex)
	b.ShaderSource(vs, "#version 330 core\nvoid main()\n{\n    float a = 1\n    float b = 2;\n}\n")
	b.CompileShader(vs)

	assert.False(t, b.ShaderCompiled(vs))
	assert.Contains(t, b.ShaderInfoLog(vs), "error")
}

func TestDrawRequiresBindings(t *testing.T) {
	b := New()
	b.DrawElements(metadata.PrimitiveTriangles, 6)
	require.Len(t, b.Errors(), 1)
	assert.Empty(t, b.Draws())
}

func TestFrameState(t *testing.T) {
	b := New()
	b.Viewport(0, 0, 1280, 768)
	b.ClearColor(0.8, 0.8, 0.8, 1)
	b.Clear()
	b.Clear()

	assert.Equal(t, [4]int32{0, 0, 1280, 768}, b.ViewportRect())
	colour, clears := b.ClearState()
	assert.Equal(t, metadata.Colour{R: 0.8, G: 0.8, B: 0.8, A: 1}, colour)
	assert.Equal(t, 2, clears)
}
