// Package opengl implements the renderer Driver on top of an OpenGL 3.3 core
// context. Every call must come from the thread the context is current on.
package opengl

import (
	"fmt"
	"strings"
	"unsafe"

	"github.com/go-gl/gl/v3.3-core/gl"

	"github.com/spaghettifunk/flatgl/engine/core"
	"github.com/spaghettifunk/flatgl/engine/renderer/metadata"
)

type Backend struct {
	version string
}

// New loads the GL function pointers of the current context.
func New() (*Backend, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	b := &Backend{
		version: gl.GoStr(gl.GetString(gl.VERSION)),
	}
	core.LogInfo("OpenGL %s (%s)", b.version, gl.GoStr(gl.GetString(gl.RENDERER)))
	return b, nil
}

func (b *Backend) Version() string {
	return b.version
}

func target(t metadata.BufferTarget) uint32 {
	switch t {
	case metadata.BufferTargetElementArray:
		return gl.ELEMENT_ARRAY_BUFFER
	default:
		return gl.ARRAY_BUFFER
	}
}

func usage(u metadata.BufferUsage) uint32 {
	switch u {
	case metadata.BufferUsageDynamic:
		return gl.STREAM_DRAW
	default:
		return gl.STATIC_DRAW
	}
}

func stage(s metadata.ShaderStage) uint32 {
	switch s {
	case metadata.ShaderStageFragment:
		return gl.FRAGMENT_SHADER
	default:
		return gl.VERTEX_SHADER
	}
}

func primitive(p metadata.PrimitiveType) uint32 {
	switch p {
	case metadata.PrimitiveLines:
		return gl.LINES
	case metadata.PrimitivePoints:
		return gl.POINTS
	default:
		return gl.TRIANGLES
	}
}

func (b *Backend) GenBuffer() uint32 {
	var id uint32
	gl.GenBuffers(1, &id)
	return id
}

func (b *Backend) BindBuffer(t metadata.BufferTarget, buffer uint32) {
	gl.BindBuffer(target(t), buffer)
}

func (b *Backend) BufferData(t metadata.BufferTarget, size int, u metadata.BufferUsage) {
	gl.BufferData(target(t), size, nil, usage(u))
}

func (b *Backend) BufferSubData(t metadata.BufferTarget, offset int, data []byte) {
	if len(data) == 0 {
		return
	}
	gl.BufferSubData(target(t), offset, len(data), unsafe.Pointer(&data[0]))
}

func (b *Backend) GetBufferSubData(t metadata.BufferTarget, offset int, data []byte) {
	if len(data) == 0 {
		return
	}
	gl.GetBufferSubData(target(t), offset, len(data), unsafe.Pointer(&data[0]))
}

func (b *Backend) DeleteBuffer(buffer uint32) {
	gl.DeleteBuffers(1, &buffer)
}

func (b *Backend) GenVertexArray() uint32 {
	var id uint32
	gl.GenVertexArrays(1, &id)
	return id
}

func (b *Backend) BindVertexArray(array uint32) {
	gl.BindVertexArray(array)
}

func (b *Backend) EnableVertexAttribArray(location uint32) {
	gl.EnableVertexAttribArray(location)
}

func (b *Backend) VertexAttribPointer(location uint32, components int32, stride int32, offset int) {
	gl.VertexAttribPointerWithOffset(location, components, gl.FLOAT, false, stride, uintptr(offset))
}

func (b *Backend) DeleteVertexArray(array uint32) {
	gl.DeleteVertexArrays(1, &array)
}

func (b *Backend) CreateShader(s metadata.ShaderStage) uint32 {
	return gl.CreateShader(stage(s))
}

func (b *Backend) ShaderSource(shader uint32, source string) {
	csource, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csource, nil)
	free()
}

func (b *Backend) CompileShader(shader uint32) {
	gl.CompileShader(shader)
}

func (b *Backend) ShaderCompiled(shader uint32) bool {
	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	return status == gl.TRUE
}

func (b *Backend) ShaderInfoLog(shader uint32) string {
	var length int32
	gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &length)
	if length <= 1 {
		return ""
	}
	log := make([]byte, length)
	gl.GetShaderInfoLog(shader, length, nil, &log[0])
	return strings.TrimRight(string(log), "\x00")
}

func (b *Backend) DeleteShader(shader uint32) {
	gl.DeleteShader(shader)
}

func (b *Backend) CreateProgram() uint32 {
	return gl.CreateProgram()
}

func (b *Backend) AttachShader(program, shader uint32) {
	gl.AttachShader(program, shader)
}

func (b *Backend) DetachShader(program, shader uint32) {
	gl.DetachShader(program, shader)
}

func (b *Backend) LinkProgram(program uint32) {
	gl.LinkProgram(program)
}

func (b *Backend) ProgramLinked(program uint32) bool {
	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	return status == gl.TRUE
}

func (b *Backend) ProgramInfoLog(program uint32) string {
	var length int32
	gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &length)
	if length <= 1 {
		return ""
	}
	log := make([]byte, length)
	gl.GetProgramInfoLog(program, length, nil, &log[0])
	return strings.TrimRight(string(log), "\x00")
}

func (b *Backend) UseProgram(program uint32) {
	gl.UseProgram(program)
}

func (b *Backend) DeleteProgram(program uint32) {
	gl.DeleteProgram(program)
}

func (b *Backend) UniformLocation(program uint32, name string) int32 {
	cname, free := gl.Strs(name + "\x00")
	defer free()
	return gl.GetUniformLocation(program, *cname)
}

func (b *Backend) Uniform2f(location int32, x, y float32) {
	gl.Uniform2f(location, x, y)
}

func (b *Backend) Viewport(x, y, width, height int32) {
	gl.Viewport(x, y, width, height)
}

func (b *Backend) ClearColor(r, g, bl, a float32) {
	gl.ClearColor(r, g, bl, a)
}

func (b *Backend) Clear() {
	gl.Clear(gl.COLOR_BUFFER_BIT)
}

func (b *Backend) DrawElements(mode metadata.PrimitiveType, count int32) {
	gl.DrawElementsWithOffset(primitive(mode), count, gl.UNSIGNED_INT, 0)
}

// CheckError drains the GL error queue, logging every entry. It returns the
// first error seen, if any.
func (b *Backend) CheckError(op string) error {
	var first error
	for code := gl.GetError(); code != gl.NO_ERROR; code = gl.GetError() {
		err := fmt.Errorf("%s: GL error 0x%04X", op, code)
		core.LogError("%s", err)
		if first == nil {
			first = err
		}
	}
	return first
}
