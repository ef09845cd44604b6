package systems

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/spaghettifunk/flatgl/engine/assets"
	"github.com/spaghettifunk/flatgl/engine/core"
	"github.com/spaghettifunk/flatgl/engine/renderer"
)

/** @brief Configuration for the shader system. */
type ShaderSystemConfig struct {
	/** @brief The maximum number of programs held in the system. */
	MaxShaderCount uint16
}

type shaderEntry struct {
	program *renderer.ShaderProgram
	// Source files, empty when the program was built from in-memory sources.
	vertexPath string
	pixelPath  string
}

// ShaderSystem owns named shader programs. Programs loaded from files are
// rebuilt when their sources change; a rebuild that fails keeps the previous
// program in service.
type ShaderSystem struct {
	Config *ShaderSystemConfig

	shaders    map[string]*shaderEntry
	renderer   *renderer.Renderer
	assets     *assets.AssetManager
	eventToken uint64
}

// NewShaderSystem creates the system. am may be nil, in which case only
// in-memory sources can be used.
func NewShaderSystem(config *ShaderSystemConfig, r *renderer.Renderer, am *assets.AssetManager) (*ShaderSystem, error) {
	if config == nil || config.MaxShaderCount == 0 {
		err := fmt.Errorf("%w: NewShaderSystem - config.MaxShaderCount must be greater than 0", core.ErrInvalidArgument)
		core.LogError(err.Error())
		return nil, err
	}
	if r == nil {
		return nil, fmt.Errorf("%w: NewShaderSystem - nil renderer", core.ErrInvalidArgument)
	}

	ss := &ShaderSystem{
		Config:   config,
		shaders:  make(map[string]*shaderEntry),
		renderer: r,
		assets:   am,
	}
	ss.eventToken = core.EventRegister(core.EVENT_CODE_SHADER_SOURCE_CHANGED, ss.onSourceChanged)
	return ss, nil
}

func (ss *ShaderSystem) checkName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty shader name", core.ErrInvalidArgument)
	}
	if _, ok := ss.shaders[name]; ok {
		return fmt.Errorf("%w: shader %q already exists", core.ErrInvalidArgument, name)
	}
	if len(ss.shaders) >= int(ss.Config.MaxShaderCount) {
		return fmt.Errorf("%w: shader system is full (%d programs)", core.ErrOutOfRange, ss.Config.MaxShaderCount)
	}
	return nil
}

// Create builds a program from in-memory sources and registers it with the renderer.
func (ss *ShaderSystem) Create(name, vertexSource, pixelSource string) (*renderer.ShaderProgram, error) {
	if err := ss.checkName(name); err != nil {
		return nil, err
	}
	sp, err := renderer.NewShaderProgram(ss.renderer.Driver(), name, vertexSource, pixelSource)
	if err != nil {
		core.LogError("failed to create shader %q: %s", name, err)
		return nil, err
	}
	ss.shaders[name] = &shaderEntry{program: sp}
	ss.renderer.RegisterProgram(sp)
	return sp, nil
}

// Load builds a program from two source files relative to the asset root.
// The program is rebuilt whenever one of the files changes.
func (ss *ShaderSystem) Load(name, vertexFile, pixelFile string) (*renderer.ShaderProgram, error) {
	if ss.assets == nil {
		return nil, fmt.Errorf("%w: shader system has no asset manager", core.ErrNotFound)
	}
	if err := ss.checkName(name); err != nil {
		return nil, err
	}

	entry := &shaderEntry{
		vertexPath: ss.assets.Path(vertexFile),
		pixelPath:  ss.assets.Path(pixelFile),
	}
	sp, err := ss.build(name, vertexFile, pixelFile)
	if err != nil {
		core.LogError("failed to load shader %q: %s", name, err)
		return nil, err
	}
	entry.program = sp
	ss.shaders[name] = entry
	ss.renderer.RegisterProgram(sp)
	core.LogInfo("shader %q loaded from %s and %s", name, vertexFile, pixelFile)
	return sp, nil
}

func (ss *ShaderSystem) build(name, vertexFile, pixelFile string) (*renderer.ShaderProgram, error) {
	vs, err := ss.assets.LoadAsset(vertexFile, nil)
	if err != nil {
		return nil, err
	}
	defer ss.assets.UnloadAsset(vs)
	ps, err := ss.assets.LoadAsset(pixelFile, nil)
	if err != nil {
		return nil, err
	}
	defer ss.assets.UnloadAsset(ps)

	return renderer.NewShaderProgram(ss.renderer.Driver(), name, string(vs.Data), string(ps.Data))
}

func (ss *ShaderSystem) Get(name string) (*renderer.ShaderProgram, error) {
	entry, ok := ss.shaders[name]
	if !ok {
		return nil, fmt.Errorf("%w: shader %q", core.ErrNotFound, name)
	}
	return entry.program, nil
}

// Names returns the registered program names, sorted.
func (ss *ShaderSystem) Names() []string {
	names := make([]string, 0, len(ss.shaders))
	for n := range ss.shaders {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Destroy releases the named program.
func (ss *ShaderSystem) Destroy(name string) error {
	entry, ok := ss.shaders[name]
	if !ok {
		return fmt.Errorf("%w: shader %q", core.ErrNotFound, name)
	}
	ss.renderer.UnregisterProgram(entry.program)
	entry.program.Release()
	delete(ss.shaders, name)
	return nil
}

// ProcessReloads rebuilds every file-backed program that uses one of paths
// and returns how many were replaced. Must run on the render thread.
func (ss *ShaderSystem) ProcessReloads(paths []string) int {
	if ss.assets == nil || len(paths) == 0 {
		return 0
	}
	changed := make(map[string]bool, len(paths))
	for _, p := range paths {
		changed[filepath.Clean(p)] = true
	}

	reloaded := 0
	for _, name := range ss.Names() {
		entry := ss.shaders[name]
		if entry.vertexPath == "" || (!changed[entry.vertexPath] && !changed[entry.pixelPath]) {
			continue
		}
		vertexFile, _ := filepath.Rel(ss.assets.Root(), entry.vertexPath)
		pixelFile, _ := filepath.Rel(ss.assets.Root(), entry.pixelPath)

		sp, err := ss.build(name, vertexFile, pixelFile)
		if err != nil {
			core.LogError("shader %q reload failed, keeping the previous program: %s", name, err)
			continue
		}
		ss.renderer.UnregisterProgram(entry.program)
		entry.program.Release()
		entry.program = sp
		ss.renderer.RegisterProgram(sp)
		reloaded++
		core.LogInfo("shader %q reloaded", name)
	}
	return reloaded
}

func (ss *ShaderSystem) onSourceChanged(context core.EventContext) bool {
	path, ok := context.Data.(string)
	if !ok {
		core.LogError("wrong event associated with the event type `%d`", context.Type)
		return false
	}
	ss.ProcessReloads([]string{path})
	// Other listeners may care about the same file.
	return false
}

/**
 * @brief Shuts down the shader system, releasing every program.
 */
func (ss *ShaderSystem) Shutdown() error {
	if ss.eventToken != 0 {
		core.EventUnregister(core.EVENT_CODE_SHADER_SOURCE_CHANGED, ss.eventToken)
		ss.eventToken = 0
	}
	for _, name := range ss.Names() {
		if err := ss.Destroy(name); err != nil {
			return err
		}
	}
	return nil
}
