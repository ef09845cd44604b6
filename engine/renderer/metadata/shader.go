package metadata

/** @brief Shader stages available in the system. */
type ShaderStage int

const (
	ShaderStageVertex   ShaderStage = 0x00000001
	ShaderStageFragment ShaderStage = 0x00000004
)

func (s ShaderStage) String() string {
	switch s {
	case ShaderStageVertex:
		return "vertex"
	case ShaderStageFragment:
		return "fragment"
	default:
		return "unknown"
	}
}

/**
 * @brief Represents the current state of a shader program.
 */
type ShaderState int

const (
	/** @brief Nothing has been submitted to the driver yet. */
	ShaderStateUncompiled ShaderState = iota
	/** @brief Both stages compiled, the program is not linked yet. */
	ShaderStateStageCompiled
	/** @brief The program is linked and usable. */
	ShaderStateLinked
	/** @brief A stage failed to compile. Terminal. */
	ShaderStateCompileFailed
	/** @brief The stages compiled but linking failed. Terminal. */
	ShaderStateLinkFailed
	/** @brief The program has been released. Terminal. */
	ShaderStateReleased
)

func (s ShaderState) String() string {
	switch s {
	case ShaderStateUncompiled:
		return "uncompiled"
	case ShaderStateStageCompiled:
		return "stage_compiled"
	case ShaderStateLinked:
		return "linked"
	case ShaderStateCompileFailed:
		return "compile_failed"
	case ShaderStateLinkFailed:
		return "link_failed"
	case ShaderStateReleased:
		return "released"
	default:
		return "unknown"
	}
}

// The uniform every program in the engine receives on resize.
const ViewportSizeUniform = "ViewportSize"
