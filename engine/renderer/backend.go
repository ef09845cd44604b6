package renderer

import "github.com/spaghettifunk/flatgl/engine/renderer/metadata"

// Driver is the set of graphics API operations the resource layer issues.
// Handles are driver-defined; zero always means "no object" and binding
// zero restores the neutral state of a slot. All calls are synchronous and
// must happen on the thread that owns the graphics context.
type Driver interface {
	GenBuffer() uint32
	BindBuffer(target metadata.BufferTarget, buffer uint32)
	// BufferData allocates size bytes of uninitialised storage for the
	// buffer bound to target.
	BufferData(target metadata.BufferTarget, size int, usage metadata.BufferUsage)
	// BufferSubData overwrites len(data) bytes starting at offset.
	BufferSubData(target metadata.BufferTarget, offset int, data []byte)
	DeleteBuffer(buffer uint32)

	GenVertexArray() uint32
	BindVertexArray(array uint32)
	EnableVertexAttribArray(location uint32)
	// VertexAttribPointer describes a float attribute of the bound array buffer.
	VertexAttribPointer(location uint32, components int32, stride int32, offset int)
	DeleteVertexArray(array uint32)

	CreateShader(stage metadata.ShaderStage) uint32
	ShaderSource(shader uint32, source string)
	CompileShader(shader uint32)
	ShaderCompiled(shader uint32) bool
	ShaderInfoLog(shader uint32) string
	DeleteShader(shader uint32)

	CreateProgram() uint32
	AttachShader(program, shader uint32)
	DetachShader(program, shader uint32)
	LinkProgram(program uint32)
	ProgramLinked(program uint32) bool
	ProgramInfoLog(program uint32) string
	UseProgram(program uint32)
	DeleteProgram(program uint32)
	// UniformLocation returns -1 when the program has no active uniform by that name.
	UniformLocation(program uint32, name string) int32
	// Uniform2f sets a vec2 uniform of the program in use.
	Uniform2f(location int32, x, y float32)

	Viewport(x, y, width, height int32)
	ClearColor(r, g, b, a float32)
	Clear()
	// DrawElements draws count uint32 indices from the bound element array buffer.
	DrawElements(mode metadata.PrimitiveType, count int32)
}

// BufferReader is implemented by drivers able to read buffer storage back.
type BufferReader interface {
	// GetBufferSubData fills data with the bytes starting at offset of the
	// buffer bound to target.
	GetBufferSubData(target metadata.BufferTarget, offset int, data []byte)
}
