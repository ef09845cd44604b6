package renderer

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spaghettifunk/flatgl/engine/core"
	"github.com/spaghettifunk/flatgl/engine/renderer/metadata"
)

// ShaderCompileError carries the driver's compiler diagnostic verbatim.
type ShaderCompileError struct {
	Stage metadata.ShaderStage
	Log   string
}

func (e *ShaderCompileError) Error() string {
	return fmt.Sprintf("%s shader: %s", e.Stage, strings.TrimSpace(e.Log))
}

func (e *ShaderCompileError) Unwrap() error {
	return core.ErrCompileFailure
}

// ShaderLinkError carries the driver's linker diagnostic verbatim.
type ShaderLinkError struct {
	Log string
}

func (e *ShaderLinkError) Error() string {
	return fmt.Sprintf("link: %s", strings.TrimSpace(e.Log))
}

func (e *ShaderLinkError) Unwrap() error {
	return core.ErrLinkFailure
}

// CompileStage compiles source for stage and returns the stage object.
// On failure the stage object is already deleted.
func CompileStage(driver Driver, source string, stage metadata.ShaderStage) (uint32, error) {
	if driver == nil {
		return 0, fmt.Errorf("%w: nil driver", core.ErrInvalidArgument)
	}
	if strings.TrimSpace(source) == "" {
		return 0, fmt.Errorf("%w: empty %s shader source", core.ErrInvalidArgument, stage)
	}

	shader := driver.CreateShader(stage)
	driver.ShaderSource(shader, source)
	driver.CompileShader(shader)

	info := driver.ShaderInfoLog(shader)
	if !driver.ShaderCompiled(shader) {
		driver.DeleteShader(shader)
		if info == "" {
			info = "compilation failed without a diagnostic"
		}
		return 0, &ShaderCompileError{Stage: stage, Log: info}
	}
	if strings.TrimSpace(info) != "" {
		core.LogWarn("%s shader compiled with diagnostics: %s", stage, strings.TrimSpace(info))
	}
	return shader, nil
}

// ShaderProgram is a linked vertex + fragment program.
type ShaderProgram struct {
	id       uuid.UUID
	name     string
	driver   Driver
	program  handle
	vertex   handle
	pixel    handle
	state    metadata.ShaderState
	uniforms map[string]int32
}

// NewShaderProgram compiles both stages (vertex first) and links them. It
// either returns a linked program or an error with every driver object it
// created already deleted.
func NewShaderProgram(driver Driver, name, vertexSource, pixelSource string) (*ShaderProgram, error) {
	if driver == nil {
		return nil, fmt.Errorf("%w: nil driver", core.ErrInvalidArgument)
	}

	sp := &ShaderProgram{
		id:       core.NewResourceID(),
		name:     name,
		driver:   driver,
		state:    metadata.ShaderStateUncompiled,
		uniforms: make(map[string]int32),
	}

	vs, err := CompileStage(driver, vertexSource, metadata.ShaderStageVertex)
	if err != nil {
		sp.state = metadata.ShaderStateCompileFailed
		return nil, fmt.Errorf("shader program %q: %w", name, err)
	}
	sp.vertex.acquire(vs)

	ps, err := CompileStage(driver, pixelSource, metadata.ShaderStageFragment)
	if err != nil {
		sp.state = metadata.ShaderStateCompileFailed
		sp.releaseStages()
		return nil, fmt.Errorf("shader program %q: %w", name, err)
	}
	sp.pixel.acquire(ps)
	sp.state = metadata.ShaderStateStageCompiled

	program := driver.CreateProgram()
	driver.AttachShader(program, vs)
	driver.AttachShader(program, ps)
	driver.LinkProgram(program)
	driver.DetachShader(program, vs)
	driver.DetachShader(program, ps)

	if !driver.ProgramLinked(program) {
		info := driver.ProgramInfoLog(program)
		if info == "" {
			info = "link failed without a diagnostic"
		}
		driver.DeleteProgram(program)
		sp.releaseStages()
		sp.state = metadata.ShaderStateLinkFailed
		return nil, fmt.Errorf("shader program %q: %w", name, &ShaderLinkError{Log: info})
	}
	sp.program.acquire(program)

	// The program keeps the linked code, the stage objects are no longer needed.
	sp.releaseStages()
	sp.state = metadata.ShaderStateLinked

	core.LogDebug("shader program %q (%s) linked", name, core.ShortID(sp.id))
	return sp, nil
}

func (sp *ShaderProgram) releaseStages() {
	if id, ok := sp.vertex.release(); ok {
		sp.driver.DeleteShader(id)
	}
	if id, ok := sp.pixel.release(); ok {
		sp.driver.DeleteShader(id)
	}
}

// UniformLocation returns the binding slot of a uniform. core.ErrNotFound
// means the uniform is absent or was optimised out; callers should skip the
// write rather than fail.
func (sp *ShaderProgram) UniformLocation(name string) (int32, error) {
	program, err := sp.program.get()
	if err != nil {
		return -1, fmt.Errorf("shader program %q: %w", sp.name, err)
	}
	if loc, ok := sp.uniforms[name]; ok {
		if loc < 0 {
			return -1, fmt.Errorf("%w: uniform %q in program %q", core.ErrNotFound, name, sp.name)
		}
		return loc, nil
	}

	loc := sp.driver.UniformLocation(program, name)
	sp.uniforms[name] = loc
	if loc < 0 {
		return -1, fmt.Errorf("%w: uniform %q in program %q", core.ErrNotFound, name, sp.name)
	}
	return loc, nil
}

// SetUniform2f writes a vec2 uniform, restoring the neutral program binding
// afterwards.
func (sp *ShaderProgram) SetUniform2f(name string, x, y float32) error {
	loc, err := sp.UniformLocation(name)
	if err != nil {
		return err
	}
	sp.driver.UseProgram(sp.program.id)
	sp.driver.Uniform2f(loc, x, y)
	sp.driver.UseProgram(0)
	return nil
}

// Release deletes the program and any stage object still held. Calling it
// again is a no-op.
func (sp *ShaderProgram) Release() {
	sp.releaseStages()
	id, ok := sp.program.release()
	if !ok {
		return
	}
	sp.driver.UseProgram(0)
	sp.driver.DeleteProgram(id)
	sp.state = metadata.ShaderStateReleased
	core.LogDebug("shader program %q (%s) released", sp.name, core.ShortID(sp.id))
}

func (sp *ShaderProgram) Handle() (uint32, error) {
	return sp.program.get()
}

func (sp *ShaderProgram) State() metadata.ShaderState {
	return sp.state
}

func (sp *ShaderProgram) Name() string {
	return sp.name
}

func (sp *ShaderProgram) ID() uuid.UUID {
	return sp.id
}
