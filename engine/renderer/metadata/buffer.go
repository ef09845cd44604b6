package metadata

const (
	MinVertexCount = 1
	MaxVertexCount = 100_000

	MinIndexCount = 1
	MaxIndexCount = 250_000

	// Size in bytes of one index element.
	IndexElementSize = 4
)

/** @brief How often the content of a buffer is expected to change. */
type BufferUsage uint8

const (
	/** @brief Content is written once or rarely. */
	BufferUsageStatic BufferUsage = iota
	/** @brief Content is rewritten every frame; the driver should pick a streaming path. */
	BufferUsageDynamic
)

func (u BufferUsage) String() string {
	switch u {
	case BufferUsageStatic:
		return "static"
	case BufferUsageDynamic:
		return "dynamic"
	default:
		return "unknown"
	}
}

/** @brief The binding slot a buffer is attached to. */
type BufferTarget uint8

const (
	/** @brief Vertex attribute data. */
	BufferTargetArray BufferTarget = iota
	/** @brief Vertex indices. */
	BufferTargetElementArray
)

func (t BufferTarget) String() string {
	switch t {
	case BufferTargetArray:
		return "array"
	case BufferTargetElementArray:
		return "element_array"
	default:
		return "unknown"
	}
}
