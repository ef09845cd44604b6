package systems

import (
	"github.com/spaghettifunk/flatgl/engine/assets"
	"github.com/spaghettifunk/flatgl/engine/renderer"
)

type SystemManager struct {
	Renderer       *renderer.Renderer
	ShaderSystem   *ShaderSystem
	GeometrySystem *GeometrySystem
}

func NewSystemManager(r *renderer.Renderer, am *assets.AssetManager) (*SystemManager, error) {
	ssys, err := NewShaderSystem(&ShaderSystemConfig{
		MaxShaderCount: 64,
	}, r, am)
	if err != nil {
		return nil, err
	}
	gs, err := NewGeometrySystem(&GeometrySystemConfig{
		MaxGeometryCount: 1024,
	}, r)
	if err != nil {
		ssys.Shutdown()
		return nil, err
	}
	return &SystemManager{
		Renderer:       r,
		ShaderSystem:   ssys,
		GeometrySystem: gs,
	}, nil
}

// OnResize forwards the new framebuffer size to the renderer.
func (sm *SystemManager) OnResize(width, height uint32) error {
	sm.Renderer.Resize(width, height)
	return nil
}

// Shutdown releases geometry before shaders, the reverse of creation order.
func (sm *SystemManager) Shutdown() error {
	if err := sm.GeometrySystem.Shutdown(); err != nil {
		return err
	}
	if err := sm.ShaderSystem.Shutdown(); err != nil {
		return err
	}
	return nil
}
