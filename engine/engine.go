package engine

import (
	"fmt"
	"sync/atomic"

	"github.com/spaghettifunk/flatgl/engine/assets"
	"github.com/spaghettifunk/flatgl/engine/core"
	"github.com/spaghettifunk/flatgl/engine/platform"
	"github.com/spaghettifunk/flatgl/engine/renderer"
	"github.com/spaghettifunk/flatgl/engine/renderer/headless"
	"github.com/spaghettifunk/flatgl/engine/renderer/opengl"
	"github.com/spaghettifunk/flatgl/engine/systems"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently booting up
	EngineStageBooting
	// Engine completed boot process and is ready to be initialized
	EngineStageBootComplete
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

// errorChecker is implemented by drivers that can report errors raised by
// the calls of a whole frame.
type errorChecker interface {
	CheckError(op string) error
}

type registration struct {
	code  core.SystemEventCode
	token uint64
}

type Engine struct {
	currentStage  Stage
	gameInstance  *Game
	config        *ApplicationConfig
	rendererType  renderer.RendererType
	isRunning     bool
	isSuspended   bool
	stopRequested atomic.Bool
	platform      *platform.Platform
	assetManager  *assets.AssetManager
	renderer      *renderer.Renderer
	systemManager *systems.SystemManager
	width         uint32
	height        uint32
	clock         *core.Clock
	lastTime      float64
	frameCount    uint64
	registrations []registration
}

// New prepares an engine for g. With headless set no window is opened and
// the in-memory driver renders the frames.
func New(g *Game, headless bool) (*Engine, error) {
	if g == nil {
		return nil, fmt.Errorf("%w: nil game", core.ErrInvalidArgument)
	}
	if g.ApplicationConfig == nil {
		g.ApplicationConfig = DefaultApplicationConfig()
	}
	if err := g.ApplicationConfig.Validate(); err != nil {
		core.LogError("%s", err)
		return nil, err
	}
	core.SetLogLevel(g.ApplicationConfig.LogLevel)

	rt := renderer.OpenGL
	if headless {
		rt = renderer.Headless
	}

	return &Engine{
		currentStage: EngineStageUninitialized,
		gameInstance: g,
		config:       g.ApplicationConfig,
		rendererType: rt,
		clock:        core.NewClock(),
		isRunning:    true,
		isSuspended:  false,
		width:        g.ApplicationConfig.StartWidth,
		height:       g.ApplicationConfig.StartHeight,
	}, nil
}

func (e *Engine) Stage() Stage {
	return e.currentStage
}

func (e *Engine) Initialize() error {
	e.currentStage = EngineStageBooting

	// initialize input
	if err := core.InputInitialize(); err != nil {
		return err
	}

	// initialize events
	if !core.EventSystemInitialize() {
		return fmt.Errorf("failed to initialize the event system")
	}

	// register some events
	e.register(core.EVENT_CODE_APPLICATION_QUIT, e.onEvent)
	e.register(core.EVENT_CODE_KEY_PRESSED, e.onKey)
	e.register(core.EVENT_CODE_KEY_RELEASED, e.onKey)
	e.register(core.EVENT_CODE_RESIZED, e.onResized)

	driver, err := e.startDriver()
	if err != nil {
		return err
	}

	clearColour, err := e.config.Clear()
	if err != nil {
		return err
	}
	e.renderer = renderer.New(driver, clearColour)

	am, err := assets.NewAssetManager()
	if err != nil {
		core.LogError("%s", err)
		return err
	}
	if err := am.Initialize(e.config.ShaderDir, e.config.WatchShaders); err != nil {
		core.LogError("failed to initialize the asset manager: %s", err)
		return err
	}
	e.assetManager = am

	sm, err := systems.NewSystemManager(e.renderer, am)
	if err != nil {
		core.LogError("%s", err)
		return err
	}
	e.systemManager = sm
	e.gameInstance.SystemManager = sm

	if e.gameInstance.FnBoot != nil {
		if err := e.gameInstance.FnBoot(); err != nil {
			core.LogError("game failed to boot: %s", err)
			return err
		}
	}
	e.currentStage = EngineStageBootComplete

	e.currentStage = EngineStageInitializing
	if e.gameInstance.FnInitialize != nil {
		if err := e.gameInstance.FnInitialize(); err != nil {
			core.LogError("game failed to initialize: %s", err)
			return err
		}
	}

	if e.platform != nil {
		e.width, e.height = e.platform.FramebufferSize()
	}
	if err := e.resize(e.width, e.height); err != nil {
		return err
	}

	e.currentStage = EngineStageInitialized
	core.LogInfo("engine initialized with the %s renderer (%dx%d)", e.rendererType, e.width, e.height)
	return nil
}

func (e *Engine) startDriver() (renderer.Driver, error) {
	if e.rendererType == renderer.Headless {
		return headless.New(), nil
	}

	e.platform = platform.New()
	if err := e.platform.Startup(e.config.Name,
		e.config.StartPosX,
		e.config.StartPosY,
		e.config.StartWidth,
		e.config.StartHeight,
		e.config.VSync); err != nil {
		return nil, err
	}
	backend, err := opengl.New()
	if err != nil {
		core.LogError("failed to initialize OpenGL: %s", err)
		return nil, err
	}
	return backend, nil
}

func (e *Engine) register(code core.SystemEventCode, fn core.FnOnEvent) {
	token := core.EventRegister(code, fn)
	if token != 0 {
		e.registrations = append(e.registrations, registration{code: code, token: token})
	}
}

func (e *Engine) Run() error {
	if e.currentStage != EngineStageInitialized {
		return fmt.Errorf("engine cannot run from stage %d", e.currentStage)
	}
	e.currentStage = EngineStageRunning

	e.clock.Start()
	e.clock.Update()
	core.MetricsReset()

	e.lastTime = e.clock.Elapsed()

	var targetFrameSeconds float64 = 1.0 / 60.0
	limitFrames := e.platform != nil && !e.config.VSync

	for e.isRunning {
		if e.stopRequested.Load() {
			e.isRunning = false
			break
		}
		if e.platform != nil && !e.platform.PumpMessages() {
			e.isRunning = false
			break
		}

		e.processShaderChanges()

		if e.isSuspended {
			if e.platform != nil {
				e.platform.Sleep(10)
			}
			continue
		}

		// Update clock and get delta time.
		e.clock.Update()

		var currentTime float64 = e.clock.Elapsed()
		var delta float64 = (currentTime - e.lastTime)
		var frameStartTime float64 = currentTime

		if err := e.frame(delta); err != nil {
			core.LogError("frame %d failed, shutting down: %s", e.frameCount, err)
			e.isRunning = false
			return err
		}

		// Figure out how long the frame took and, if below the target, give
		// the remaining time back to the OS.
		e.clock.Update()
		var frameElapsedTime float64 = e.clock.Elapsed() - frameStartTime
		var remainingSeconds float64 = targetFrameSeconds - frameElapsedTime
		if remainingSeconds > 0 && limitFrames {
			remainingMS := remainingSeconds * 1000
			if remainingMS > 1 {
				e.platform.Sleep(remainingMS - 1)
			}
		}
		core.MetricsUpdate(frameElapsedTime)

		// NOTE: Input update/state copying should always be handled
		// after any input should be recorded; I.E. before this line.
		core.InputUpdate(delta)

		// Update last time
		e.lastTime = currentTime
		e.frameCount++

		if e.platform == nil && e.config.HeadlessFrames > 0 && e.frameCount >= e.config.HeadlessFrames {
			e.isRunning = false
		}
	}

	fps, frameMS := core.MetricsFrame()
	core.LogInfo("loop stopped after %d frames (%.1f fps, %.2f ms/frame)", e.frameCount, fps, frameMS)
	return nil
}

func (e *Engine) frame(delta float64) error {
	if e.gameInstance.FnUpdate != nil {
		if err := e.gameInstance.FnUpdate(delta); err != nil {
			return fmt.Errorf("game update: %w", err)
		}
	}

	if err := e.renderer.BeginFrame(delta); err != nil {
		return err
	}
	// Call the game's render routine.
	if e.gameInstance.FnRender != nil {
		if err := e.gameInstance.FnRender(delta); err != nil {
			return fmt.Errorf("game render: %w", err)
		}
	}
	if err := e.renderer.EndFrame(delta); err != nil {
		return err
	}

	if checker, ok := e.renderer.Driver().(errorChecker); ok {
		// Driver errors are reported but do not stop the loop.
		_ = checker.CheckError(fmt.Sprintf("frame %d", e.frameCount))
	}

	if e.platform != nil {
		e.platform.SwapBuffers()
	}
	return nil
}

// processShaderChanges hands the files changed since the previous frame to
// the listeners of EVENT_CODE_SHADER_SOURCE_CHANGED, on the render thread.
func (e *Engine) processShaderChanges() {
	for _, path := range e.assetManager.DrainChanges() {
		core.LogDebug("shader source changed: %s", path)
		core.EventFire(core.EventContext{
			Type: core.EVENT_CODE_SHADER_SOURCE_CHANGED,
			Data: path,
		})
	}
}

// Stop ends the loop after the current frame. Safe to call from any goroutine.
func (e *Engine) Stop() {
	e.stopRequested.Store(true)
}

// FrameCount returns the number of frames rendered by Run.
func (e *Engine) FrameCount() uint64 {
	return e.frameCount
}

func (e *Engine) Renderer() *renderer.Renderer {
	return e.renderer
}

func (e *Engine) Shutdown() error {
	if e.currentStage == EngineStageShuttingDown {
		return nil
	}
	e.currentStage = EngineStageShuttingDown

	if e.gameInstance.FnShutdown != nil {
		if err := e.gameInstance.FnShutdown(); err != nil {
			core.LogError("game shutdown failed: %s", err)
		}
	}
	if e.systemManager != nil {
		if err := e.systemManager.Shutdown(); err != nil {
			return err
		}
	}
	if e.assetManager != nil {
		if err := e.assetManager.Shutdown(); err != nil {
			return err
		}
	}
	for _, r := range e.registrations {
		core.EventUnregister(r.code, r.token)
	}
	e.registrations = nil
	if err := core.EventSystemShutdown(); err != nil {
		return err
	}
	if err := core.InputShutdown(); err != nil {
		return err
	}
	if e.platform != nil {
		if err := e.platform.Shutdown(); err != nil {
			return err
		}
	}
	core.LogInfo("engine shut down")
	return nil
}

// GetFramebufferSize returns the width and height (in this order)
// of the application Framebuffer
func (e *Engine) GetFramebufferSize() (uint32, uint32) {
	return e.width, e.height
}

func (e *Engine) resize(width, height uint32) error {
	if err := e.systemManager.OnResize(width, height); err != nil {
		return err
	}
	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(width, height); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) onEvent(context core.EventContext) bool {
	switch context.Type {
	case core.EVENT_CODE_APPLICATION_QUIT:
		core.LogInfo("EVENT_CODE_APPLICATION_QUIT received, shutting down.")
		e.isRunning = false
		return true
	}
	return false
}

func (e *Engine) onKey(context core.EventContext) bool {
	ke, ok := context.Data.(*core.KeyEvent)
	if !ok {
		core.LogError("wrong event associated with the event type `%d`", context.Type)
		return false
	}

	if context.Type == core.EVENT_CODE_KEY_PRESSED && ke.KeyCode == core.KEY_ESCAPE {
		// NOTE: Technically firing an event to itself, but there may be other listeners.
		core.EventFire(core.EventContext{
			Type: core.EVENT_CODE_APPLICATION_QUIT,
		})
		// Block anything else from processing this.
		return true
	}
	return false
}

func (e *Engine) onResized(context core.EventContext) bool {
	se, ok := context.Data.(*core.SystemEvent)
	if !ok {
		core.LogError("wrong event associated with the event type `%d`", context.Type)
		return false
	}

	width := se.WindowWidth
	height := se.WindowHeight

	// Check if different. If so, trigger a resize event.
	if width == e.width && height == e.height {
		return false
	}
	e.width = width
	e.height = height
	core.LogDebug("Window resize: %d, %d", width, height)

	// Handle minimization
	if width == 0 || height == 0 {
		core.LogInfo("Window minimized, suspending application.")
		e.isSuspended = true
		return true
	}
	if e.isSuspended {
		core.LogInfo("Window restored, resuming application.")
		e.isSuspended = false
	}
	if e.systemManager == nil {
		return false
	}
	if err := e.resize(width, height); err != nil {
		core.LogError("resize failed: %s", err)
	}
	// Other listeners may want the size too.
	return false
}
