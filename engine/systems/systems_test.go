package systems

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/flatgl/engine/assets"
	"github.com/spaghettifunk/flatgl/engine/core"
	"github.com/spaghettifunk/flatgl/engine/math"
	"github.com/spaghettifunk/flatgl/engine/renderer"
	"github.com/spaghettifunk/flatgl/engine/renderer/headless"
	"github.com/spaghettifunk/flatgl/engine/renderer/metadata"
)

const vertexSource = `#version 330 core

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

const fragmentSource = `#version 330 core

in vec4 vColor;

out vec4 pixelColor;
void main()
{
    pixelColor = vColor;
}
`

const inverseFragmentSource = `#version 330 core

in vec4 vColor;

out vec4 pixelColor;
void main()
{
    pixelColor = vec4(1.0 - vColor.rgb, vColor.a);
}
`

const brokenFragmentSource = `#version 330 core

in vec4 vColor;

out vec4 pixelColor;
void main()
{
    pixelColor = vColor
}
`

type fixture struct {
	dir      string
	backend  *headless.Backend
	renderer *renderer.Renderer
	assets   *assets.AssetManager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	writeSource(t, filepath.Join(dir, "boxes.vert"), vertexSource)
	writeSource(t, filepath.Join(dir, "boxes.frag"), fragmentSource)

	am, err := assets.NewAssetManager()
	require.NoError(t, err)
	require.NoError(t, am.Initialize(dir, false))
	t.Cleanup(func() { am.Shutdown() })

	b := headless.New()
	return &fixture{
		dir:      dir,
		backend:  b,
		renderer: renderer.New(b, metadata.Colour{A: 1}),
		assets:   am,
	}
}

func writeSource(t *testing.T, path, source string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(source), 0o644))
}

func newShaderSystem(t *testing.T, f *fixture) *ShaderSystem {
	t.Helper()
	ss, err := NewShaderSystem(&ShaderSystemConfig{MaxShaderCount: 4}, f.renderer, f.assets)
	require.NoError(t, err)
	return ss
}

func TestNewShaderSystemRejectsConfig(t *testing.T) {
	f := newFixture(t)
	_, err := NewShaderSystem(&ShaderSystemConfig{}, f.renderer, f.assets)
	assert.ErrorIs(t, err, core.ErrInvalidArgument)
	_, err = NewShaderSystem(&ShaderSystemConfig{MaxShaderCount: 1}, nil, f.assets)
	assert.ErrorIs(t, err, core.ErrInvalidArgument)
}

func TestShaderSystemLoadAndGet(t *testing.T) {
	f := newFixture(t)
	ss := newShaderSystem(t, f)

	sp, err := ss.Load("boxes", "boxes.vert", "boxes.frag")
	require.NoError(t, err)
	assert.Equal(t, metadata.ShaderStateLinked, sp.State())

	got, err := ss.Get("boxes")
	require.NoError(t, err)
	assert.Same(t, sp, got)

	_, err = ss.Get("missing")
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, err = ss.Load("boxes", "boxes.vert", "boxes.frag")
	assert.ErrorIs(t, err, core.ErrInvalidArgument)

	_, err = ss.Load("other", "missing.vert", "boxes.frag")
	assert.ErrorIs(t, err, core.ErrNotFound)

	require.NoError(t, ss.Shutdown())
	assert.Zero(t, f.backend.LivePrograms())
	assert.Empty(t, f.backend.Errors())
}

func TestShaderSystemCreateFromSources(t *testing.T) {
	f := newFixture(t)
	ss := newShaderSystem(t, f)

	_, err := ss.Create("inline", vertexSource, fragmentSource)
	require.NoError(t, err)
	assert.Equal(t, []string{"inline"}, ss.Names())

	_, err = ss.Create("broken", vertexSource, brokenFragmentSource)
	assert.ErrorIs(t, err, core.ErrCompileFailure)
	assert.Equal(t, []string{"inline"}, ss.Names())

	require.NoError(t, ss.Destroy("inline"))
	assert.ErrorIs(t, ss.Destroy("inline"), core.ErrNotFound)
	assert.Zero(t, f.backend.LivePrograms())
}

func TestShaderSystemCapacity(t *testing.T) {
	f := newFixture(t)
	ss, err := NewShaderSystem(&ShaderSystemConfig{MaxShaderCount: 1}, f.renderer, f.assets)
	require.NoError(t, err)

	_, err = ss.Create("first", vertexSource, fragmentSource)
	require.NoError(t, err)
	_, err = ss.Create("second", vertexSource, fragmentSource)
	assert.ErrorIs(t, err, core.ErrOutOfRange)
}

func TestShaderSystemReload(t *testing.T) {
	f := newFixture(t)
	ss := newShaderSystem(t, f)
	f.renderer.Resize(640, 480)

	old, err := ss.Load("boxes", "boxes.vert", "boxes.frag")
	require.NoError(t, err)

	writeSource(t, filepath.Join(f.dir, "boxes.frag"), inverseFragmentSource)
	assert.Equal(t, 1, ss.ProcessReloads([]string{filepath.Join(f.dir, "boxes.frag")}))

	current, err := ss.Get("boxes")
	require.NoError(t, err)
	assert.NotSame(t, old, current)
	assert.Equal(t, metadata.ShaderStateReleased, old.State())
	assert.Equal(t, 1, f.backend.LivePrograms())

	h, _ := current.Handle()
	loc, err := current.UniformLocation(metadata.ViewportSizeUniform)
	require.NoError(t, err)
	v, ok := f.backend.UniformValue(h, loc)
	assert.True(t, ok, "a reloaded program receives the viewport size")
	assert.Equal(t, [2]float32{640, 480}, v)

	assert.Zero(t, ss.ProcessReloads([]string{filepath.Join(f.dir, "unrelated.frag")}))
	assert.Empty(t, f.backend.Errors())
}

func TestShaderSystemReloadFailureKeepsProgram(t *testing.T) {
	f := newFixture(t)
	ss := newShaderSystem(t, f)

	old, err := ss.Load("boxes", "boxes.vert", "boxes.frag")
	require.NoError(t, err)

	writeSource(t, filepath.Join(f.dir, "boxes.frag"), brokenFragmentSource)
	assert.Zero(t, ss.ProcessReloads([]string{filepath.Join(f.dir, "boxes.frag")}))

	current, err := ss.Get("boxes")
	require.NoError(t, err)
	assert.Same(t, old, current)
	assert.Equal(t, metadata.ShaderStateLinked, current.State())
	assert.Equal(t, 1, f.backend.LivePrograms())
	assert.Zero(t, f.backend.LiveShaders())
}

func TestShaderSystemReloadsOnEvent(t *testing.T) {
	require.True(t, core.EventSystemInitialize())
	t.Cleanup(func() { core.EventSystemShutdown() })

	f := newFixture(t)
	ss := newShaderSystem(t, f)
	old, err := ss.Load("boxes", "boxes.vert", "boxes.frag")
	require.NoError(t, err)

	writeSource(t, filepath.Join(f.dir, "boxes.vert"), vertexSource+"\n")
	core.EventFire(core.EventContext{
		Type: core.EVENT_CODE_SHADER_SOURCE_CHANGED,
		Data: filepath.Join(f.dir, "boxes.vert"),
	})

	current, err := ss.Get("boxes")
	require.NoError(t, err)
	assert.NotSame(t, old, current)

	require.NoError(t, ss.Shutdown())
	assert.False(t, core.EventFire(core.EventContext{
		Type: core.EVENT_CODE_SHADER_SOURCE_CHANGED,
		Data: filepath.Join(f.dir, "boxes.vert"),
	}))
}

func quad(x, y, size float32) ([]math.VertexPositionColor, []uint32) {
	c := math.NewVec4(0.2, 0.4, 0.6, 1)
	vertices := []math.VertexPositionColor{
		{Position: math.NewVec2(x, y+size), Colour: c},
		{Position: math.NewVec2(x+size, y+size), Colour: c},
		{Position: math.NewVec2(x+size, y), Colour: c},
		{Position: math.NewVec2(x, y), Colour: c},
	}
	return vertices, []uint32{0, 1, 2, 0, 2, 3}
}

func TestGeometrySystemLifecycle(t *testing.T) {
	f := newFixture(t)
	gs, err := NewGeometrySystem(&GeometrySystemConfig{MaxGeometryCount: 2}, f.renderer)
	require.NoError(t, err)
	ss := newShaderSystem(t, f)
	sp, err := ss.Create("boxes", vertexSource, fragmentSource)
	require.NoError(t, err)

	vertices, indices := quad(10, 10, 32)
	g, err := CreateGeometry(gs, "quad", renderer.PositionColorLayout, vertices, indices, metadata.BufferUsageStatic)
	require.NoError(t, err)
	assert.Equal(t, 6, g.IndexCount)

	got, err := gs.Get("quad")
	require.NoError(t, err)
	assert.Same(t, g, got)

	require.NoError(t, gs.Draw(sp, g))
	require.Len(t, f.backend.Draws(), 1)
	assert.Equal(t, int32(6), f.backend.Draws()[0].Count)

	moved, _ := quad(50, 50, 32)
	require.NoError(t, UpdateGeometry(g, moved, nil))
	read, err := renderer.ReadVertices[math.VertexPositionColor](g.VertexBuffer, 4)
	require.NoError(t, err)
	assert.Equal(t, moved, read)

	_, err = CreateGeometry(gs, "quad", renderer.PositionColorLayout, vertices, indices, metadata.BufferUsageStatic)
	assert.ErrorIs(t, err, core.ErrInvalidArgument)

	require.NoError(t, gs.Shutdown())
	assert.Zero(t, f.backend.LiveBuffers())
	assert.Zero(t, f.backend.LiveVertexArrays())
	assert.True(t, f.backend.Neutral())
	assert.Empty(t, f.backend.Errors())
}

func TestGeometrySystemCreateFailureReleasesBuffers(t *testing.T) {
	f := newFixture(t)
	gs, err := NewGeometrySystem(&GeometrySystemConfig{MaxGeometryCount: 2}, f.renderer)
	require.NoError(t, err)

	_, err = gs.Create(GeometryConfig{
		Name:           "too_many_indices",
		Layout:         renderer.PositionColorLayout,
		VertexCapacity: 4,
		IndexCapacity:  metadata.MaxIndexCount + 1,
	})
	assert.ErrorIs(t, err, core.ErrOutOfRange)
	assert.Zero(t, f.backend.LiveBuffers())

	vertices, _ := quad(0, 0, 1)
	_, err = CreateGeometry(gs, "mismatch", renderer.PositionTextureLayout, vertices, []uint32{0}, metadata.BufferUsageStatic)
	assert.ErrorIs(t, err, core.ErrTypeMismatch)
	assert.Zero(t, f.backend.LiveBuffers())
	_, err = gs.Get("mismatch")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestSystemManager(t *testing.T) {
	f := newFixture(t)
	sm, err := NewSystemManager(f.renderer, f.assets)
	require.NoError(t, err)

	_, err = sm.ShaderSystem.Load("boxes", "boxes.vert", "boxes.frag")
	require.NoError(t, err)
	vertices, indices := quad(0, 0, 8)
	_, err = CreateGeometry(sm.GeometrySystem, "quad", renderer.PositionColorLayout, vertices, indices, metadata.BufferUsageDynamic)
	require.NoError(t, err)

	require.NoError(t, sm.OnResize(320, 200))
	w, h := f.renderer.FramebufferSize()
	assert.Equal(t, uint32(320), w)
	assert.Equal(t, uint32(200), h)

	require.NoError(t, sm.Shutdown())
	assert.Zero(t, f.backend.LiveBuffers())
	assert.Zero(t, f.backend.LivePrograms())
	assert.Empty(t, f.backend.Errors())
}
