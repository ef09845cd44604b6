package systems

import (
	"fmt"
	"sort"

	"github.com/spaghettifunk/flatgl/engine/core"
	"github.com/spaghettifunk/flatgl/engine/renderer"
	"github.com/spaghettifunk/flatgl/engine/renderer/metadata"
)

/** @brief Configuration for the geometry system. */
type GeometrySystemConfig struct {
	/** @brief The maximum number of geometries held in the system. */
	MaxGeometryCount uint32
}

/** @brief Describes the buffers of a geometry. */
type GeometryConfig struct {
	/** @brief The unique geometry Name. */
	Name string
	/** @brief The vertex layout the vertex buffer holds. */
	Layout *metadata.VertexLayout
	/** @brief Vertex buffer capacity, in vertices. */
	VertexCapacity int
	/** @brief Index buffer capacity, in indices. */
	IndexCapacity int
	/** @brief Usage hint of both buffers. */
	Usage metadata.BufferUsage
	/** @brief The primitive the indices describe. */
	Primitive metadata.PrimitiveType
}

// Geometry bundles a vertex buffer, its vertex array and an index buffer.
type Geometry struct {
	Name         string
	VertexBuffer *renderer.VertexBuffer
	IndexBuffer  *renderer.IndexBuffer
	VertexArray  *renderer.VertexArray
	Primitive    metadata.PrimitiveType
	// Number of indices drawn by Draw.
	IndexCount int
}

func (g *Geometry) release() {
	// The vertex array references the vertex buffer, release it first.
	if g.VertexArray != nil {
		g.VertexArray.Release()
	}
	if g.IndexBuffer != nil {
		g.IndexBuffer.Release()
	}
	if g.VertexBuffer != nil {
		g.VertexBuffer.Release()
	}
}

type GeometrySystem struct {
	Config *GeometrySystemConfig

	geometries map[string]*Geometry
	renderer   *renderer.Renderer
}

func NewGeometrySystem(config *GeometrySystemConfig, r *renderer.Renderer) (*GeometrySystem, error) {
	if config == nil || config.MaxGeometryCount == 0 {
		err := fmt.Errorf("%w: NewGeometrySystem - config.MaxGeometryCount must be > 0", core.ErrInvalidArgument)
		core.LogWarn(err.Error())
		return nil, err
	}
	if r == nil {
		return nil, fmt.Errorf("%w: NewGeometrySystem - nil renderer", core.ErrInvalidArgument)
	}
	return &GeometrySystem{
		Config:     config,
		geometries: make(map[string]*Geometry),
		renderer:   r,
	}, nil
}

// Create allocates the buffers of config. The content is uninitialised and
// IndexCount is zero until data is uploaded.
func (gs *GeometrySystem) Create(config GeometryConfig) (*Geometry, error) {
	if config.Name == "" {
		return nil, fmt.Errorf("%w: empty geometry name", core.ErrInvalidArgument)
	}
	if _, ok := gs.geometries[config.Name]; ok {
		return nil, fmt.Errorf("%w: geometry %q already exists", core.ErrInvalidArgument, config.Name)
	}
	if uint32(len(gs.geometries)) >= gs.Config.MaxGeometryCount {
		return nil, fmt.Errorf("%w: geometry system is full (%d geometries)", core.ErrOutOfRange, gs.Config.MaxGeometryCount)
	}

	driver := gs.renderer.Driver()
	g := &Geometry{
		Name:      config.Name,
		Primitive: config.Primitive,
	}

	var err error
	if g.VertexBuffer, err = renderer.NewVertexBuffer(driver, config.Layout, config.VertexCapacity, config.Usage); err != nil {
		return nil, fmt.Errorf("geometry %q: %w", config.Name, err)
	}
	if g.IndexBuffer, err = renderer.NewIndexBuffer(driver, config.IndexCapacity, config.Usage); err != nil {
		g.release()
		return nil, fmt.Errorf("geometry %q: %w", config.Name, err)
	}
	if g.VertexArray, err = renderer.NewVertexArray(driver, g.VertexBuffer); err != nil {
		g.release()
		return nil, fmt.Errorf("geometry %q: %w", config.Name, err)
	}

	gs.geometries[config.Name] = g
	core.LogDebug("geometry %q created (%d vertices, %d indices)", config.Name, config.VertexCapacity, config.IndexCapacity)
	return g, nil
}

// CreateGeometry creates a geometry sized exactly for vertices and indices
// and uploads both.
func CreateGeometry[T any](gs *GeometrySystem, name string, layout *metadata.VertexLayout, vertices []T, indices []uint32, usage metadata.BufferUsage) (*Geometry, error) {
	g, err := gs.Create(GeometryConfig{
		Name:           name,
		Layout:         layout,
		VertexCapacity: len(vertices),
		IndexCapacity:  len(indices),
		Usage:          usage,
		Primitive:      metadata.PrimitiveTriangles,
	})
	if err != nil {
		return nil, err
	}
	if err := UpdateGeometry(g, vertices, indices); err != nil {
		gs.Destroy(name)
		return nil, err
	}
	return g, nil
}

// UpdateGeometry overwrites the start of both buffers and sets IndexCount to
// len(indices). A nil indices slice leaves the index buffer untouched.
func UpdateGeometry[T any](g *Geometry, vertices []T, indices []uint32) error {
	if err := renderer.WriteVertices(g.VertexBuffer, vertices, len(vertices)); err != nil {
		return fmt.Errorf("geometry %q: %w", g.Name, err)
	}
	if indices == nil {
		return nil
	}
	if err := g.IndexBuffer.SetData(indices, len(indices)); err != nil {
		return fmt.Errorf("geometry %q: %w", g.Name, err)
	}
	g.IndexCount = len(indices)
	return nil
}

func (gs *GeometrySystem) Get(name string) (*Geometry, error) {
	g, ok := gs.geometries[name]
	if !ok {
		return nil, fmt.Errorf("%w: geometry %q", core.ErrNotFound, name)
	}
	return g, nil
}

// Draw issues the geometry's indexed draw call with program.
func (gs *GeometrySystem) Draw(program *renderer.ShaderProgram, g *Geometry) error {
	if g.IndexCount == 0 {
		return nil
	}
	return gs.renderer.Draw(program, g.VertexArray, g.IndexBuffer, g.Primitive, g.IndexCount)
}

func (gs *GeometrySystem) Destroy(name string) error {
	g, ok := gs.geometries[name]
	if !ok {
		return fmt.Errorf("%w: geometry %q", core.ErrNotFound, name)
	}
	g.release()
	delete(gs.geometries, name)
	return nil
}

/**
 * @brief Shuts down the geometry system, releasing every geometry.
 */
func (gs *GeometrySystem) Shutdown() error {
	names := make([]string, 0, len(gs.geometries))
	for n := range gs.geometries {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		if err := gs.Destroy(n); err != nil {
			return err
		}
	}
	return nil
}
