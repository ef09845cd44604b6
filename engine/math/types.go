package math

// Vec2 represents a 2D vector
type Vec2 struct {
	X, Y float32
}

// Vec4 represents a 4D vector
type Vec4 struct {
	X, Y, Z, W float32
}

/**
 * @brief Represents the extents of a 2d object.
 */
type Extents2D struct {
	/** @brief The minimum extents of the object. */
	Min Vec2
	/** @brief The maximum extents of the object. */
	Max Vec2
}

/**
 * @brief A vertex with a window-space position and an RGBA colour.
 * Memory layout: Position at byte 0, Colour at byte 8, 24 bytes total.
 */
type VertexPositionColor struct {
	/** @brief The position of the vertex, in pixels. */
	Position Vec2
	/** @brief The colour of the vertex. */
	Colour Vec4
}

/**
 * @brief A vertex with a position and a texture coordinate.
 * Memory layout: Position at byte 0, Texcoord at byte 8, 16 bytes total.
 */
type VertexPositionTexture struct {
	/** @brief The position of the vertex */
	Position Vec2
	/** @brief The texture coordinate of the vertex. */
	Texcoord Vec2
}
