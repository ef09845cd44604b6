package loaders

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spaghettifunk/flatgl/engine/core"
	"github.com/spaghettifunk/flatgl/engine/renderer/metadata"
)

// ShaderLoader reads a GLSL source file. The stage is taken from the extension.
type ShaderLoader struct{}

func (sl *ShaderLoader) Load(path string, assetType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	if _, ok := metadata.ShaderStageForPath(path); !ok {
		return nil, fmt.Errorf("%w: %s is not a shader source (.vert, .vs, .frag, .fs)", core.ErrInvalidArgument, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("%w: shader source %s is empty", core.ErrInvalidArgument, path)
	}
	base := filepath.Base(path)
	return &metadata.Resource{
		Name:     strings.TrimSuffix(base, filepath.Ext(base)),
		FullPath: path,
		Type:     assetType,
		DataSize: uint64(len(data)),
		Data:     data,
	}, nil
}

func (sl *ShaderLoader) Unload(res *metadata.Resource) error {
	res.Data = nil
	res.DataSize = 0
	return nil
}
