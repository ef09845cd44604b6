package renderer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/flatgl/engine/math"
	"github.com/spaghettifunk/flatgl/engine/renderer/headless"
	"github.com/spaghettifunk/flatgl/engine/renderer/metadata"
)

var (
	_ Driver       = (*headless.Backend)(nil)
	_ BufferReader = (*headless.Backend)(nil)
)

const boxesVertex = `#version 330 core

uniform vec2 ViewportSize;

layout (location = 0) in vec2 aPosition;
layout (location = 1) in vec4 aColor;

out vec4 vColor;

void main()
{
    float nx = aPosition.x / ViewportSize.x * 2 - 1;
    float ny = aPosition.y / ViewportSize.y * 2 - 1;
    gl_Position = vec4(nx, ny, 0, 1);

    vColor = aColor;
}
`

const boxesFragment = `#version 330 core

in vec4 vColor;

out vec4 pixelColor;
void main()
{
    pixelColor = vColor;
}
`

// brokenVertex misses the semicolon after the nx declaration.
const brokenVertex = `#version 330 core

uniform vec2 ViewportSize;

layout (location = 0) in vec2 aPosition;

void main()
{
    float nx = aPosition.x / ViewportSize.x * 2 - 1
    float ny = aPosition.y / ViewportSize.y * 2 - 1;
    gl_Position = vec4(nx, ny, 0, 1);
}
`

// tintedFragment reads an input no vertex stage writes.
const tintedFragment = `#version 330 core

in vec4 vTint;

out vec4 pixelColor;
void main()
{
    pixelColor = vTint;
}
`

// flatFragment compiles and links with boxesVertex but declares no uniforms.
const flatFragment = `#version 330 core

out vec4 pixelColor;
void main()
{
    pixelColor = vec4(1.0, 0.0, 0.0, 1.0);
}
`

func quadVertices() []math.VertexPositionColor {
	red := math.NewVec4(1, 0, 0, 1)
	return []math.VertexPositionColor{
		{Position: math.NewVec2(0, 1), Colour: red},
		{Position: math.NewVec2(1, 1), Colour: red},
		{Position: math.NewVec2(1, 0), Colour: red},
		{Position: math.NewVec2(0, 0), Colour: red},
	}
}

var quadIndices = []uint32{0, 1, 2, 0, 2, 3}

// requireClean fails the test if the driver saw an invalid call or a
// binding slot was left non-zero.
func requireClean(t *testing.T, b *headless.Backend) {
	t.Helper()
	require.Empty(t, b.Errors())
	require.True(t, b.Neutral(), "binding slots not restored")
}

func newQuadBuffers(t *testing.T, b *headless.Backend) (*VertexBuffer, *IndexBuffer) {
	t.Helper()
	vb, err := NewVertexBuffer(b, PositionColorLayout, 4, metadata.BufferUsageStatic)
	require.NoError(t, err)
	require.NoError(t, WriteVertices(vb, quadVertices(), 4))

	ib, err := NewIndexBuffer(b, 6, metadata.BufferUsageStatic)
	require.NoError(t, err)
	require.NoError(t, ib.SetData(quadIndices, 6))
	return vb, ib
}
