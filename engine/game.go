package engine

import (
	"github.com/spaghettifunk/flatgl/engine/systems"
)

// Game is the set of hooks the engine drives. Hooks left nil are skipped.
// Order: FnBoot, FnInitialize, FnOnResize, then FnUpdate/FnRender once per
// frame, and FnShutdown when the loop exits.
type Game struct {
	ApplicationConfig *ApplicationConfig
	// Set by the engine before FnInitialize runs.
	SystemManager *systems.SystemManager
	State         interface{}
	FnBoot        Boot
	FnInitialize  Initialize
	FnUpdate      Update
	FnRender      Render
	FnOnResize    OnResize
	FnShutdown    Shutdown
}

type Boot func() error
type Initialize func() error
type Update func(deltaTime float64) error
type Render func(deltaTime float64) error
type OnResize func(width uint32, height uint32) error
type Shutdown func() error
