package metadata

/** @brief The primitive kind of a draw call. */
type PrimitiveType uint8

const (
	PrimitiveTriangles PrimitiveType = iota
	PrimitiveLines
	PrimitivePoints
)

func (p PrimitiveType) String() string {
	switch p {
	case PrimitiveTriangles:
		return "triangles"
	case PrimitiveLines:
		return "lines"
	case PrimitivePoints:
		return "points"
	default:
		return "unknown"
	}
}

// Colour is a linear RGBA clear colour.
type Colour struct {
	R, G, B, A float32
}
