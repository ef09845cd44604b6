package testbed

import (
	"fmt"

	"github.com/spaghettifunk/flatgl/engine"
	"github.com/spaghettifunk/flatgl/engine/core"
	"github.com/spaghettifunk/flatgl/engine/math"
	"github.com/spaghettifunk/flatgl/engine/renderer"
	"github.com/spaghettifunk/flatgl/engine/renderer/metadata"
	"github.com/spaghettifunk/flatgl/engine/systems"
)

const (
	BoxesShaderName   = "boxes"
	BoxesGeometryName = "boxes"

	boxesVertexFile   = "boxes.vert"
	boxesFragmentFile = "boxes.frag"

	minBoxSize = 32
	maxBoxSize = 128
)

// TestGame draws a field of randomly placed, randomly coloured boxes in
// window space. Pressing R scatters them again.
type TestGame struct {
	*engine.Game
}

type gameState struct {
	width  uint32
	height uint32

	boxes *systems.Geometry
	// frames rendered since Initialize
	frames uint64
}

func NewTestGame(config *engine.ApplicationConfig) (*TestGame, error) {
	if config == nil {
		config = engine.DefaultApplicationConfig()
	}
	tg := &TestGame{
		Game: &engine.Game{
			ApplicationConfig: config,
			State: &gameState{
				width:  config.StartWidth,
				height: config.StartHeight,
			},
		},
	}

	tg.FnBoot = tg.Boot
	tg.FnInitialize = tg.Initialize
	tg.FnUpdate = tg.Update
	tg.FnRender = tg.Render
	tg.FnOnResize = tg.OnResize
	tg.FnShutdown = tg.Shutdown

	return tg, nil
}

func (g *TestGame) state() *gameState {
	return g.State.(*gameState)
}

func (g *TestGame) Boot() error {
	core.LogInfo("booting testbed with %d boxes...", g.ApplicationConfig.BoxCount)
	return nil
}

func (g *TestGame) Initialize() error {
	core.LogDebug("TestGame Initialize fn....")

	if g.SystemManager == nil {
		return fmt.Errorf("the engine is not yet initialized with all the system managers ")
	}

	if _, err := g.SystemManager.ShaderSystem.Load(BoxesShaderName, boxesVertexFile, boxesFragmentFile); err != nil {
		return err
	}

	state := g.state()
	if g.ApplicationConfig.BoxCount == 0 {
		core.LogWarn("box_count is 0, nothing to draw")
		return nil
	}

	vertices := g.scatter(state.width, state.height)
	indices := BoxIndices(g.ApplicationConfig.BoxCount)
	geom, err := systems.CreateGeometry(g.SystemManager.GeometrySystem, BoxesGeometryName, renderer.PositionColorLayout, vertices, indices, metadata.BufferUsageDynamic)
	if err != nil {
		return err
	}
	state.boxes = geom
	return nil
}

// scatter builds the vertices of BoxCount boxes inside a width x height window.
func (g *TestGame) scatter(width, height uint32) []math.VertexPositionColor {
	vertices := make([]math.VertexPositionColor, 0, g.ApplicationConfig.BoxCount*4)
	for i := 0; i < g.ApplicationConfig.BoxCount; i++ {
		size := math.RandRange[int32](minBoxSize, maxBoxSize+1)
		x := math.RandRange[int32](0, math.Clamp(int32(width)-size, 1, int32(width)))
		y := math.RandRange[int32](0, math.Clamp(int32(height)-size, 1, int32(height)))
		// bigger boxes are more opaque
		alpha := math.RangeConvertFloat32(float32(size), minBoxSize, maxBoxSize, 0.4, 1)
		colour := math.NewVec4(math.RandFloat(), math.RandFloat(), math.RandFloat(), alpha)
		vertices = append(vertices, BoxVertices(float32(x), float32(y), float32(size), colour)...)
	}
	return vertices
}

// BoxVertices returns the four corners of an axis-aligned square, counter
// clockwise from the bottom left.
func BoxVertices(x, y, size float32, colour math.Vec4) []math.VertexPositionColor {
	return []math.VertexPositionColor{
		{Position: math.NewVec2(x, y), Colour: colour},
		{Position: math.NewVec2(x+size, y), Colour: colour},
		{Position: math.NewVec2(x+size, y+size), Colour: colour},
		{Position: math.NewVec2(x, y+size), Colour: colour},
	}
}

// BoxIndices returns two triangles per box for count boxes laid out by BoxVertices.
func BoxIndices(count int) []uint32 {
	indices := make([]uint32, 0, count*6)
	for i := 0; i < count; i++ {
		base := uint32(i * 4)
		indices = append(indices, base, base+1, base+2, base+2, base+3, base)
	}
	return indices
}

func (g *TestGame) Update(deltaTime float64) error {
	state := g.state()
	if state.boxes == nil {
		return nil
	}
	if !core.InputIsKeyDown(core.KEY_R) && core.InputWasKeyDown(core.KEY_R) {
		core.LogDebug("scattering %d boxes", g.ApplicationConfig.BoxCount)
		if err := systems.UpdateGeometry(state.boxes, g.scatter(state.width, state.height), nil); err != nil {
			return err
		}
	}
	return nil
}

func (g *TestGame) Render(deltaTime float64) error {
	state := g.state()
	state.frames++
	if state.boxes == nil {
		return nil
	}
	// Looked up every frame so a reloaded program is picked up.
	program, err := g.SystemManager.ShaderSystem.Get(BoxesShaderName)
	if err != nil {
		return err
	}
	return g.SystemManager.GeometrySystem.Draw(program, state.boxes)
}

func (g *TestGame) OnResize(width uint32, height uint32) error {
	state := g.state()
	state.width = width
	state.height = height
	return nil
}

func (g *TestGame) Shutdown() error {
	state := g.state()
	core.LogInfo("testbed rendered %d frames", state.frames)
	if g.SystemManager == nil {
		return nil
	}
	if state.boxes != nil {
		if err := g.SystemManager.GeometrySystem.Destroy(BoxesGeometryName); err != nil {
			return err
		}
		state.boxes = nil
	}
	return g.SystemManager.ShaderSystem.Destroy(BoxesShaderName)
}
