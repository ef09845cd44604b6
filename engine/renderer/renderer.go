package renderer

import (
	"errors"
	"fmt"

	"github.com/spaghettifunk/flatgl/engine/core"
	"github.com/spaghettifunk/flatgl/engine/renderer/metadata"
)

type RendererType uint8

const (
	OpenGL RendererType = iota
	Headless
)

func (t RendererType) String() string {
	switch t {
	case OpenGL:
		return "opengl"
	case Headless:
		return "headless"
	default:
		return "unknown"
	}
}

// Renderer is the per-frame frontend over a Driver. It owns no resources; it
// only issues clear/draw calls and keeps the viewport uniform of registered
// programs in sync with the framebuffer size.
type Renderer struct {
	driver     Driver
	clearColor metadata.Colour
	width      uint32
	height     uint32
	programs   []*ShaderProgram
}

func New(driver Driver, clearColor metadata.Colour) *Renderer {
	return &Renderer{
		driver:     driver,
		clearColor: clearColor,
	}
}

func (r *Renderer) Driver() Driver {
	return r.driver
}

// FramebufferSize returns the last size given to Resize.
func (r *Renderer) FramebufferSize() (uint32, uint32) {
	return r.width, r.height
}

// RegisterProgram makes program receive the viewport size now and on every resize.
func (r *Renderer) RegisterProgram(program *ShaderProgram) {
	for _, p := range r.programs {
		if p == program {
			return
		}
	}
	r.programs = append(r.programs, program)
	if r.width > 0 && r.height > 0 {
		r.pushViewport(program)
	}
}

// UnregisterProgram stops viewport updates for program.
func (r *Renderer) UnregisterProgram(program *ShaderProgram) {
	for i, p := range r.programs {
		if p == program {
			r.programs = append(r.programs[:i], r.programs[i+1:]...)
			return
		}
	}
}

// Resize sets the viewport and pushes the new size to every registered program.
func (r *Renderer) Resize(width, height uint32) {
	r.width = width
	r.height = height
	r.driver.Viewport(0, 0, int32(width), int32(height))
	for _, p := range r.programs {
		r.pushViewport(p)
	}
}

func (r *Renderer) pushViewport(program *ShaderProgram) {
	err := program.SetUniform2f(metadata.ViewportSizeUniform, float32(r.width), float32(r.height))
	switch {
	case err == nil:
	case errors.Is(err, core.ErrNotFound):
		core.LogDebug("program %q has no %s uniform, skipping", program.Name(), metadata.ViewportSizeUniform)
	default:
		core.LogWarn("failed to update viewport of program %q: %s", program.Name(), err)
	}
}

// BeginFrame clears the colour target.
func (r *Renderer) BeginFrame(deltaTime float64) error {
	c := r.clearColor
	r.driver.ClearColor(c.R, c.G, c.B, c.A)
	r.driver.Clear()
	return nil
}

// EndFrame is where the platform presents the frame; nothing to do on the driver.
func (r *Renderer) EndFrame(deltaTime float64) error {
	return nil
}

// Draw issues one indexed draw call and restores the neutral bindings.
func (r *Renderer) Draw(program *ShaderProgram, va *VertexArray, ib *IndexBuffer, mode metadata.PrimitiveType, count int) error {
	if program == nil || va == nil || ib == nil {
		return fmt.Errorf("%w: nil draw resource", core.ErrInvalidArgument)
	}
	if count <= 0 || count > ib.Capacity() {
		return fmt.Errorf("%w: draw count %d not in [1, %d]", core.ErrOutOfRange, count, ib.Capacity())
	}
	p, err := program.Handle()
	if err != nil {
		return fmt.Errorf("draw program %q: %w", program.Name(), err)
	}
	v, err := va.Handle()
	if err != nil {
		return fmt.Errorf("draw vertex array: %w", err)
	}
	if va.VertexBuffer().Released() {
		return fmt.Errorf("draw vertex buffer: %w", core.ErrUseAfterRelease)
	}
	i, err := ib.Handle()
	if err != nil {
		return fmt.Errorf("draw index buffer: %w", err)
	}

	r.driver.UseProgram(p)
	r.driver.BindVertexArray(v)
	r.driver.BindBuffer(metadata.BufferTargetElementArray, i)
	r.driver.DrawElements(mode, int32(count))
	r.driver.BindVertexArray(0)
	r.driver.BindBuffer(metadata.BufferTargetElementArray, 0)
	r.driver.UseProgram(0)
	return nil
}
