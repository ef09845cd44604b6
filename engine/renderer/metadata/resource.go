package metadata

import (
	"path/filepath"
	"strings"
)

type ResourceType int

/** @brief Pre-defined resource types. */
const (
	ResourceTypeNone ResourceType = iota
	/** @brief Text resource type. */
	ResourceTypeText
	/** @brief Shader source resource type. */
	ResourceTypeShader
)

/**
 * @brief A loaded asset.
 */
type Resource struct {
	/** @brief The Name of the resource, the file name without extension. */
	Name string
	/** @brief The full file path to the resource. */
	FullPath string
	/** @brief The resource type. */
	Type ResourceType
	/** @brief The size of the resource data in bytes. */
	DataSize uint64
	/** @brief The resource data. */
	Data []byte
}

// ShaderStageForPath maps a shader source file to its stage by extension.
func ShaderStageForPath(path string) (ShaderStage, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".vert", ".vs":
		return ShaderStageVertex, true
	case ".frag", ".fs":
		return ShaderStageFragment, true
	default:
		return 0, false
	}
}
