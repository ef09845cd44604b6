package renderer

import (
	"unsafe"

	"github.com/spaghettifunk/flatgl/engine/math"
	"github.com/spaghettifunk/flatgl/engine/renderer/metadata"
)

// Layouts of the vertex structures in engine/math. Locations match the
// `layout (location = N)` inputs of the shipped shaders.
var (
	PositionColorLayout   = mustLayout(positionColorLayout())
	PositionTextureLayout = mustLayout(positionTextureLayout())
)

func positionColorLayout() (*metadata.VertexLayout, error) {
	var v math.VertexPositionColor
	return metadata.LayoutOf[math.VertexPositionColor](
		metadata.NewVertexAttribute("Position", 0, 2, uint32(unsafe.Offsetof(v.Position))),
		metadata.NewVertexAttribute("Colour", 1, 4, uint32(unsafe.Offsetof(v.Colour))),
	)
}

func positionTextureLayout() (*metadata.VertexLayout, error) {
	var v math.VertexPositionTexture
	return metadata.LayoutOf[math.VertexPositionTexture](
		metadata.NewVertexAttribute("Position", 0, 2, uint32(unsafe.Offsetof(v.Position))),
		metadata.NewVertexAttribute("Texcoord", 1, 2, uint32(unsafe.Offsetof(v.Texcoord))),
	)
}

func mustLayout(l *metadata.VertexLayout, err error) *metadata.VertexLayout {
	if err != nil {
		panic(err)
	}
	return l
}
