package testbed

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/flatgl/engine"
	"github.com/spaghettifunk/flatgl/engine/core"
	"github.com/spaghettifunk/flatgl/engine/math"
	"github.com/spaghettifunk/flatgl/engine/renderer"
	"github.com/spaghettifunk/flatgl/engine/renderer/headless"
	"github.com/spaghettifunk/flatgl/engine/renderer/metadata"
)

func TestBoxIndices(t *testing.T) {
	assert.Equal(t, []uint32{0, 1, 2, 2, 3, 0, 4, 5, 6, 6, 7, 4}, BoxIndices(2))
	assert.Empty(t, BoxIndices(0))
}

func TestBoxVertices(t *testing.T) {
	colour := math.NewVec4(1, 0, 0, 1)
	v := BoxVertices(10, 20, 32, colour)
	require.Len(t, v, 4)
	assert.Equal(t, math.NewVec2(10, 20), v[0].Position)
	assert.Equal(t, math.NewVec2(42, 20), v[1].Position)
	assert.Equal(t, math.NewVec2(42, 52), v[2].Position)
	assert.Equal(t, math.NewVec2(10, 52), v[3].Position)
	for _, vertex := range v {
		assert.Equal(t, colour, vertex.Colour)
	}
}

func newHeadlessTestbed(t *testing.T, boxes int) (*TestGame, *engine.Engine) {
	t.Helper()
	config := engine.DefaultApplicationConfig()
	config.ShaderDir = filepath.Join("..", "assets", "shaders")
	config.WatchShaders = false
	config.BoxCount = boxes
	config.HeadlessFrames = 2
	config.LogLevel = core.WarnLevel

	tg, err := NewTestGame(config)
	require.NoError(t, err)
	e, err := engine.New(tg.Game, true)
	require.NoError(t, err)
	require.NoError(t, e.Initialize())
	t.Cleanup(func() { _ = e.Shutdown() })
	return tg, e
}

func TestBoxesSceneDrawsEveryFrame(t *testing.T) {
	math.Seed(7)
	tg, e := newHeadlessTestbed(t, 25)
	b, ok := e.Renderer().Driver().(*headless.Backend)
	require.True(t, ok)

	require.NoError(t, e.Run())

	draws := b.Draws()
	require.Len(t, draws, 2)
	for _, d := range draws {
		assert.Equal(t, metadata.PrimitiveTriangles, d.Mode)
		assert.Equal(t, int32(25*6), d.Count)
	}
	assert.True(t, b.Neutral())
	assert.Empty(t, b.Errors())

	// every box fits in the window and is 32..128 px wide
	boxes := tg.state().boxes
	vertices, err := renderer.ReadVertices[math.VertexPositionColor](boxes.VertexBuffer, 25*4)
	require.NoError(t, err)
	config := tg.ApplicationConfig
	for i := 0; i < len(vertices); i += 4 {
		lo, hi := vertices[i].Position, vertices[i+2].Position
		size := hi.X - lo.X
		assert.GreaterOrEqual(t, size, float32(minBoxSize))
		assert.LessOrEqual(t, size, float32(maxBoxSize))
		assert.Equal(t, size, hi.Y-lo.Y)
		assert.GreaterOrEqual(t, lo.X, float32(0))
		assert.GreaterOrEqual(t, lo.Y, float32(0))
		assert.LessOrEqual(t, hi.X, float32(config.StartWidth))
		assert.LessOrEqual(t, hi.Y, float32(config.StartHeight))
	}
}

func TestShutdownReleasesScene(t *testing.T) {
	_, e := newHeadlessTestbed(t, 3)
	b, ok := e.Renderer().Driver().(*headless.Backend)
	require.True(t, ok)
	require.NoError(t, e.Run())

	require.NoError(t, e.Shutdown())
	assert.Zero(t, b.LiveBuffers())
	assert.Zero(t, b.LiveVertexArrays())
	assert.Zero(t, b.LivePrograms())
}

func TestZeroBoxesDrawsNothing(t *testing.T) {
	tg, e := newHeadlessTestbed(t, 0)
	b, ok := e.Renderer().Driver().(*headless.Backend)
	require.True(t, ok)
	require.NoError(t, e.Run())

	assert.Empty(t, b.Draws())
	assert.Equal(t, uint64(2), tg.state().frames)
}
