// Package headless implements the renderer Driver in memory. It behaves
// like an OpenGL 3.3 core context closely enough for the resource layer to
// be exercised without a display: objects get names, bindings are tracked
// per slot, buffer storage is real memory that can be read back, and shader
// sources go through a GLSL front-end check.
package headless

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spaghettifunk/flatgl/engine/core"
	"github.com/spaghettifunk/flatgl/engine/renderer/metadata"
)

type buffer struct {
	data      []byte
	usage     metadata.BufferUsage
	allocated bool
}

type vertexArray struct {
	enabled  map[uint32]bool
	pointers map[uint32]AttribPointer
	elements uint32
}

// AttribPointer is what VertexAttribPointer recorded for one location.
type AttribPointer struct {
	Buffer     uint32
	Components int32
	Stride     int32
	Offset     int
}

type shader struct {
	stage    metadata.ShaderStage
	source   string
	compiled *compiledShader
	log      string
}

type program struct {
	attached map[uint32]bool
	linked   *linkedProgram
	log      string
	values   map[int32][2]float32
}

// DrawCall is one recorded DrawElements.
type DrawCall struct {
	Mode          metadata.PrimitiveType
	Count         int32
	Program       uint32
	VertexArray   uint32
	ElementBuffer uint32
}

type Backend struct {
	mutex sync.Mutex

	nextName uint32

	buffers      map[uint32]*buffer
	vertexArrays map[uint32]*vertexArray
	shaders      map[uint32]*shader
	programs     map[uint32]*program

	bound        map[metadata.BufferTarget]uint32
	boundArray   uint32
	boundProgram uint32

	viewport   [4]int32
	clearColor metadata.Colour
	clears     int
	draws      []DrawCall
	calls      []string
	errors     []error
	// errors[:checked] were already returned by CheckError.
	checked int
}

func New() *Backend {
	return &Backend{
		buffers:      make(map[uint32]*buffer),
		vertexArrays: make(map[uint32]*vertexArray),
		shaders:      make(map[uint32]*shader),
		programs:     make(map[uint32]*program),
		bound:        make(map[metadata.BufferTarget]uint32),
	}
}

func (b *Backend) record(format string, args ...interface{}) {
	b.calls = append(b.calls, fmt.Sprintf(format, args...))
}

// fail records a driver error the way glGetError would surface it.
func (b *Backend) fail(format string, args ...interface{}) {
	err := fmt.Errorf(format, args...)
	core.LogWarn("headless driver: %s", err)
	b.errors = append(b.errors, err)
}

func (b *Backend) name() uint32 {
	b.nextName++
	return b.nextName
}

// ------------------------------------------
// Buffers
// ------------------------------------------

func (b *Backend) GenBuffer() uint32 {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	id := b.name()
	b.buffers[id] = &buffer{}
	b.record("GenBuffer %d", id)
	return id
}

func (b *Backend) BindBuffer(target metadata.BufferTarget, id uint32) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.record("BindBuffer %s %d", target, id)
	if id != 0 {
		if _, ok := b.buffers[id]; !ok {
			b.fail("BindBuffer: %d is not a buffer", id)
			return
		}
	}
	b.bound[target] = id
	if target == metadata.BufferTargetElementArray && b.boundArray != 0 {
		b.vertexArrays[b.boundArray].elements = id
	}
}

func (b *Backend) boundBuffer(op string, target metadata.BufferTarget) *buffer {
	id := b.bound[target]
	if id == 0 {
		b.fail("%s: no buffer bound to %s", op, target)
		return nil
	}
	return b.buffers[id]
}

func (b *Backend) BufferData(target metadata.BufferTarget, size int, usage metadata.BufferUsage) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.record("BufferData %s %d %s", target, size, usage)
	buf := b.boundBuffer("BufferData", target)
	if buf == nil {
		return
	}
	if size < 0 {
		b.fail("BufferData: negative size %d", size)
		return
	}
	buf.data = make([]byte, size)
	buf.usage = usage
	buf.allocated = true
}

func (b *Backend) BufferSubData(target metadata.BufferTarget, offset int, data []byte) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.record("BufferSubData %s %d %d", target, offset, len(data))
	buf := b.boundBuffer("BufferSubData", target)
	if buf == nil {
		return
	}
	if offset < 0 || offset+len(data) > len(buf.data) {
		b.fail("BufferSubData: range [%d, %d) outside storage of %d bytes", offset, offset+len(data), len(buf.data))
		return
	}
	copy(buf.data[offset:], data)
}

func (b *Backend) GetBufferSubData(target metadata.BufferTarget, offset int, data []byte) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.record("GetBufferSubData %s %d %d", target, offset, len(data))
	buf := b.boundBuffer("GetBufferSubData", target)
	if buf == nil {
		return
	}
	if offset < 0 || offset+len(data) > len(buf.data) {
		b.fail("GetBufferSubData: range [%d, %d) outside storage of %d bytes", offset, offset+len(data), len(buf.data))
		return
	}
	copy(data, buf.data[offset:])
}

func (b *Backend) DeleteBuffer(id uint32) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.record("DeleteBuffer %d", id)
	if _, ok := b.buffers[id]; !ok {
		b.fail("DeleteBuffer: %d is not a buffer", id)
		return
	}
	delete(b.buffers, id)
	for target, bound := range b.bound {
		if bound == id {
			b.bound[target] = 0
		}
	}
}

// ------------------------------------------
// Vertex arrays
// ------------------------------------------

func (b *Backend) GenVertexArray() uint32 {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	id := b.name()
	b.vertexArrays[id] = &vertexArray{
		enabled:  make(map[uint32]bool),
		pointers: make(map[uint32]AttribPointer),
	}
	b.record("GenVertexArray %d", id)
	return id
}

func (b *Backend) BindVertexArray(id uint32) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.record("BindVertexArray %d", id)
	if id != 0 {
		if _, ok := b.vertexArrays[id]; !ok {
			b.fail("BindVertexArray: %d is not a vertex array", id)
			return
		}
	}
	b.boundArray = id
}

func (b *Backend) EnableVertexAttribArray(location uint32) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.record("EnableVertexAttribArray %d", location)
	if b.boundArray == 0 {
		b.fail("EnableVertexAttribArray: no vertex array bound")
		return
	}
	b.vertexArrays[b.boundArray].enabled[location] = true
}

func (b *Backend) VertexAttribPointer(location uint32, components int32, stride int32, offset int) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.record("VertexAttribPointer %d %d %d %d", location, components, stride, offset)
	if b.boundArray == 0 {
		b.fail("VertexAttribPointer: no vertex array bound")
		return
	}
	if b.bound[metadata.BufferTargetArray] == 0 {
		b.fail("VertexAttribPointer: no array buffer bound")
		return
	}
	if components < 1 || components > 4 {
		b.fail("VertexAttribPointer: invalid component count %d", components)
		return
	}
	b.vertexArrays[b.boundArray].pointers[location] = AttribPointer{
		Buffer:     b.bound[metadata.BufferTargetArray],
		Components: components,
		Stride:     stride,
		Offset:     offset,
	}
}

func (b *Backend) DeleteVertexArray(id uint32) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.record("DeleteVertexArray %d", id)
	if _, ok := b.vertexArrays[id]; !ok {
		b.fail("DeleteVertexArray: %d is not a vertex array", id)
		return
	}
	delete(b.vertexArrays, id)
	if b.boundArray == id {
		b.boundArray = 0
	}
}

// ------------------------------------------
// Shaders and programs
// ------------------------------------------

func (b *Backend) CreateShader(stage metadata.ShaderStage) uint32 {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	id := b.name()
	b.shaders[id] = &shader{stage: stage}
	b.record("CreateShader %s %d", stage, id)
	return id
}

func (b *Backend) ShaderSource(id uint32, source string) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.record("ShaderSource %d", id)
	s, ok := b.shaders[id]
	if !ok {
		b.fail("ShaderSource: %d is not a shader", id)
		return
	}
	s.source = source
}

func (b *Backend) CompileShader(id uint32) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.record("CompileShader %d", id)
	s, ok := b.shaders[id]
	if !ok {
		b.fail("CompileShader: %d is not a shader", id)
		return
	}
	s.compiled, s.log = compileSource(s.stage, s.source)
}

func (b *Backend) ShaderCompiled(id uint32) bool {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	s, ok := b.shaders[id]
	return ok && s.compiled != nil
}

func (b *Backend) ShaderInfoLog(id uint32) string {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	if s, ok := b.shaders[id]; ok {
		return s.log
	}
	return ""
}

func (b *Backend) DeleteShader(id uint32) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.record("DeleteShader %d", id)
	if _, ok := b.shaders[id]; !ok {
		b.fail("DeleteShader: %d is not a shader", id)
		return
	}
	delete(b.shaders, id)
}

func (b *Backend) CreateProgram() uint32 {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	id := b.name()
	b.programs[id] = &program{
		attached: make(map[uint32]bool),
		values:   make(map[int32][2]float32),
	}
	b.record("CreateProgram %d", id)
	return id
}

func (b *Backend) AttachShader(programID, shaderID uint32) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.record("AttachShader %d %d", programID, shaderID)
	p, ok := b.programs[programID]
	if !ok {
		b.fail("AttachShader: %d is not a program", programID)
		return
	}
	if _, ok := b.shaders[shaderID]; !ok {
		b.fail("AttachShader: %d is not a shader", shaderID)
		return
	}
	p.attached[shaderID] = true
}

func (b *Backend) DetachShader(programID, shaderID uint32) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.record("DetachShader %d %d", programID, shaderID)
	p, ok := b.programs[programID]
	if !ok {
		b.fail("DetachShader: %d is not a program", programID)
		return
	}
	if !p.attached[shaderID] {
		b.fail("DetachShader: %d is not attached to %d", shaderID, programID)
		return
	}
	delete(p.attached, shaderID)
}

func (b *Backend) LinkProgram(programID uint32) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.record("LinkProgram %d", programID)
	p, ok := b.programs[programID]
	if !ok {
		b.fail("LinkProgram: %d is not a program", programID)
		return
	}
	var stages []*compiledShader
	for id := range p.attached {
		s, ok := b.shaders[id]
		if !ok {
			b.fail("LinkProgram: attached shader %d was deleted", id)
			return
		}
		if s.compiled == nil {
			p.linked, p.log = nil, fmt.Sprintf("error: linking with uncompiled/unspecialized %s shader\n", s.stage)
			return
		}
		stages = append(stages, s.compiled)
	}
	p.linked, p.log = linkShaders(stages)
}

func (b *Backend) ProgramLinked(programID uint32) bool {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	p, ok := b.programs[programID]
	return ok && p.linked != nil
}

func (b *Backend) ProgramInfoLog(programID uint32) string {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	if p, ok := b.programs[programID]; ok {
		return p.log
	}
	return ""
}

func (b *Backend) UseProgram(programID uint32) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.record("UseProgram %d", programID)
	if programID != 0 {
		p, ok := b.programs[programID]
		if !ok || p.linked == nil {
			b.fail("UseProgram: %d is not a linked program", programID)
			return
		}
	}
	b.boundProgram = programID
}

func (b *Backend) DeleteProgram(programID uint32) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.record("DeleteProgram %d", programID)
	if _, ok := b.programs[programID]; !ok {
		b.fail("DeleteProgram: %d is not a program", programID)
		return
	}
	delete(b.programs, programID)
	if b.boundProgram == programID {
		b.boundProgram = 0
	}
}

func (b *Backend) UniformLocation(programID uint32, name string) int32 {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	p, ok := b.programs[programID]
	if !ok || p.linked == nil {
		b.fail("UniformLocation: %d is not a linked program", programID)
		return -1
	}
	if loc, ok := p.linked.uniforms[name]; ok {
		return loc
	}
	return -1
}

func (b *Backend) Uniform2f(location int32, x, y float32) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.record("Uniform2f %d %g %g", location, x, y)
	if b.boundProgram == 0 {
		b.fail("Uniform2f: no program in use")
		return
	}
	if location < 0 {
		return
	}
	b.programs[b.boundProgram].values[location] = [2]float32{x, y}
}

// ------------------------------------------
// Frame
// ------------------------------------------

func (b *Backend) Viewport(x, y, width, height int32) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.record("Viewport %d %d %d %d", x, y, width, height)
	b.viewport = [4]int32{x, y, width, height}
}

func (b *Backend) ClearColor(r, g, bl, a float32) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.clearColor = metadata.Colour{R: r, G: g, B: bl, A: a}
}

func (b *Backend) Clear() {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.record("Clear")
	b.clears++
}

func (b *Backend) DrawElements(mode metadata.PrimitiveType, count int32) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.record("DrawElements %s %d", mode, count)
	if b.boundProgram == 0 {
		b.fail("DrawElements: no program in use")
		return
	}
	if b.boundArray == 0 {
		b.fail("DrawElements: no vertex array bound")
		return
	}
	elements := b.bound[metadata.BufferTargetElementArray]
	if elements == 0 {
		b.fail("DrawElements: no element array buffer bound")
		return
	}
	if int(count)*metadata.IndexElementSize > len(b.buffers[elements].data) {
		b.fail("DrawElements: %d indices exceed element buffer storage", count)
		return
	}
	b.draws = append(b.draws, DrawCall{
		Mode:          mode,
		Count:         count,
		Program:       b.boundProgram,
		VertexArray:   b.boundArray,
		ElementBuffer: elements,
	})
}

// ------------------------------------------
// Inspection
// ------------------------------------------

// Errors returns every invalid call the driver has seen.
func (b *Backend) Errors() []error {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return append([]error(nil), b.errors...)
}

// CheckError returns the first error recorded since the previous call.
func (b *Backend) CheckError(op string) error {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	if b.checked == len(b.errors) {
		return nil
	}
	first := b.errors[b.checked]
	b.checked = len(b.errors)
	return fmt.Errorf("%s: %w", op, first)
}

// Calls returns the log of state-changing calls, oldest first.
func (b *Backend) Calls() []string {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return append([]string(nil), b.calls...)
}

func (b *Backend) ResetCalls() {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.calls = nil
}

func (b *Backend) LiveBuffers() int {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return len(b.buffers)
}

func (b *Backend) LiveVertexArrays() int {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return len(b.vertexArrays)
}

func (b *Backend) LiveShaders() int {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return len(b.shaders)
}

func (b *Backend) LivePrograms() int {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return len(b.programs)
}

// ShadersOfStage counts the live shader objects of stage.
func (b *Backend) ShadersOfStage(stage metadata.ShaderStage) int {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	n := 0
	for _, s := range b.shaders {
		if s.stage == stage {
			n++
		}
	}
	return n
}

// CreatedShaders counts CreateShader calls for stage since the last ResetCalls.
func (b *Backend) CreatedShaders(stage metadata.ShaderStage) int {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	prefix := fmt.Sprintf("CreateShader %s ", stage)
	n := 0
	for _, c := range b.calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

func (b *Backend) BoundBuffer(target metadata.BufferTarget) uint32 {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return b.bound[target]
}

func (b *Backend) BoundVertexArray() uint32 {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return b.boundArray
}

func (b *Backend) CurrentProgram() uint32 {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return b.boundProgram
}

// Neutral reports whether every binding slot is back to zero.
func (b *Backend) Neutral() bool {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	for _, id := range b.bound {
		if id != 0 {
			return false
		}
	}
	return b.boundArray == 0 && b.boundProgram == 0
}

// BufferUsage returns the usage hint buffer was allocated with.
func (b *Backend) BufferUsage(buffer uint32) (metadata.BufferUsage, bool) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	buf, ok := b.buffers[buffer]
	if !ok || !buf.allocated {
		return 0, false
	}
	return buf.usage, true
}

// BufferSize returns the allocated size of buffer in bytes.
func (b *Backend) BufferSize(buffer uint32) int {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	if buf, ok := b.buffers[buffer]; ok {
		return len(buf.data)
	}
	return 0
}

// AttribPointers returns what was recorded on vertex array, keyed by location.
func (b *Backend) AttribPointers(array uint32) map[uint32]AttribPointer {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	va, ok := b.vertexArrays[array]
	if !ok {
		return nil
	}
	out := make(map[uint32]AttribPointer, len(va.pointers))
	for loc, p := range va.pointers {
		if va.enabled[loc] {
			out[loc] = p
		}
	}
	return out
}

// UniformValue returns the last vec2 written at location of program.
func (b *Backend) UniformValue(program uint32, location int32) ([2]float32, bool) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	p, ok := b.programs[program]
	if !ok {
		return [2]float32{}, false
	}
	v, ok := p.values[location]
	return v, ok
}

func (b *Backend) Draws() []DrawCall {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return append([]DrawCall(nil), b.draws...)
}

func (b *Backend) ViewportRect() [4]int32 {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return b.viewport
}

func (b *Backend) ClearState() (metadata.Colour, int) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return b.clearColor, b.clears
}
