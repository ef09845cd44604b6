package engine

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"golang.org/x/image/colornames"

	"github.com/spaghettifunk/flatgl/engine/core"
	"github.com/spaghettifunk/flatgl/engine/renderer/metadata"
)

type ApplicationConfig struct {
	// Window starting position x axis, if applicable.
	StartPosX uint32 `toml:"start_pos_x"`
	// Window starting position y axis, if applicable.
	StartPosY uint32 `toml:"start_pos_y"`
	// Window starting width, if applicable.
	StartWidth uint32 `toml:"start_width"`
	// Window starting height, if applicable.
	StartHeight uint32 `toml:"start_height"`
	// The application name used in windowing, if applicable.
	Name     string        `toml:"name"`
	LogLevel core.LogLevel `toml:"log_level"`
	VSync    bool          `toml:"vsync"`
	// An SVG 1.1 colour keyword, e.g. "lightgray".
	ClearColour string `toml:"clear_colour"`
	// Directory the shader sources are loaded from.
	ShaderDir    string `toml:"shader_dir"`
	WatchShaders bool   `toml:"watch_shaders"`
	// Number of boxes spawned by the demo scene.
	BoxCount int `toml:"box_count"`
	// Frames rendered before a headless run stops. Zero runs until quit.
	HeadlessFrames uint64 `toml:"headless_frames"`
}

func DefaultApplicationConfig() *ApplicationConfig {
	return &ApplicationConfig{
		StartPosX:      100,
		StartPosY:      100,
		StartWidth:     1280,
		StartHeight:    720,
		Name:           "flatgl",
		LogLevel:       core.InfoLevel,
		VSync:          true,
		ClearColour:    "lightgray",
		ShaderDir:      "assets/shaders",
		WatchShaders:   true,
		BoxCount:       1000,
		HeadlessFrames: 120,
	}
}

// LoadApplicationConfig reads a TOML file on top of the defaults, so keys
// missing from the file keep their default value.
func LoadApplicationConfig(path string) (*ApplicationConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		core.LogError("failed to read config %s: %s", path, err)
		return nil, err
	}
	config := DefaultApplicationConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		err = fmt.Errorf("%w: config %s: %s", core.ErrInvalidArgument, path, err)
		core.LogError("%s", err)
		return nil, err
	}
	if err := config.Validate(); err != nil {
		core.LogError("%s", err)
		return nil, err
	}
	return config, nil
}

func (c *ApplicationConfig) Validate() error {
	if c.StartWidth == 0 || c.StartHeight == 0 {
		return fmt.Errorf("%w: window size %dx%d", core.ErrInvalidArgument, c.StartWidth, c.StartHeight)
	}
	if c.BoxCount < 0 {
		return fmt.Errorf("%w: box_count %d", core.ErrInvalidArgument, c.BoxCount)
	}
	if c.ShaderDir == "" {
		return fmt.Errorf("%w: empty shader_dir", core.ErrInvalidArgument)
	}
	if _, err := c.Clear(); err != nil {
		return err
	}
	return nil
}

// Clear resolves ClearColour to a linear RGBA colour.
func (c *ApplicationConfig) Clear() (metadata.Colour, error) {
	name := strings.ToLower(strings.TrimSpace(c.ClearColour))
	rgba, ok := colornames.Map[name]
	if !ok {
		return metadata.Colour{}, fmt.Errorf("%w: unknown clear colour %q", core.ErrNotFound, c.ClearColour)
	}
	return metadata.Colour{
		R: float32(rgba.R) / 255,
		G: float32(rgba.G) / 255,
		B: float32(rgba.B) / 255,
		A: float32(rgba.A) / 255,
	}, nil
}
