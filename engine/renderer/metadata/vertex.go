package metadata

import (
	"fmt"
	"reflect"

	"github.com/spaghettifunk/flatgl/engine/core"
)

// Size in bytes of a single attribute component. Attributes are float32 only.
const AttributeComponentSize uint32 = 4

/**
 * @brief Describes one field of a vertex structure as seen by a shader program.
 */
type VertexAttribute struct {
	/** @brief The attribute Name, used for diagnostics only. */
	Name string
	/** @brief The shader input Location the attribute feeds. */
	Location uint32
	/** @brief The number of float components, in [1, 4]. */
	ComponentCount int32
	/** @brief The byte Offset of the field from the start of the vertex. */
	Offset uint32
}

// NewVertexAttribute builds an attribute. It is validated when added to a layout.
func NewVertexAttribute(name string, location uint32, componentCount int32, offset uint32) VertexAttribute {
	return VertexAttribute{
		Name:           name,
		Location:       location,
		ComponentCount: componentCount,
		Offset:         offset,
	}
}

// SizeInBytes is the span of the attribute inside one vertex.
func (a VertexAttribute) SizeInBytes() uint32 {
	return uint32(a.ComponentCount) * AttributeComponentSize
}

func (a VertexAttribute) String() string {
	return fmt.Sprintf("%s(location=%d, components=%d, offset=%d)", a.Name, a.Location, a.ComponentCount, a.Offset)
}

// VertexLayout is the ordered attribute set of one vertex structure type.
// It is immutable once built and safe to share between buffers.
type VertexLayout struct {
	vertexType reflect.Type
	attributes []VertexAttribute
	stride     uint32
}

// NewVertexLayout validates attributes against vertexType and computes the
// stride from the type's size. Any malformed input fails with core.ErrInvalidLayout.
func NewVertexLayout(vertexType reflect.Type, attributes ...VertexAttribute) (*VertexLayout, error) {
	if vertexType == nil {
		return nil, fmt.Errorf("%w: vertex type is nil", core.ErrInvalidLayout)
	}
	stride := uint32(vertexType.Size())
	if stride == 0 {
		return nil, fmt.Errorf("%w: vertex type %s has zero size", core.ErrInvalidLayout, vertexType)
	}
	if len(attributes) == 0 {
		return nil, fmt.Errorf("%w: vertex type %s declares no attributes", core.ErrInvalidLayout, vertexType)
	}

	locations := make(map[uint32]string, len(attributes))
	for _, a := range attributes {
		if a.Name == "" {
			return nil, fmt.Errorf("%w: attribute at location %d has no name", core.ErrInvalidLayout, a.Location)
		}
		if a.ComponentCount < 1 || a.ComponentCount > 4 {
			return nil, fmt.Errorf("%w: attribute %s has %d components, want 1..4", core.ErrInvalidLayout, a.Name, a.ComponentCount)
		}
		if other, ok := locations[a.Location]; ok {
			return nil, fmt.Errorf("%w: attributes %s and %s share location %d", core.ErrInvalidLayout, other, a.Name, a.Location)
		}
		locations[a.Location] = a.Name
		if uint64(a.Offset)+uint64(a.SizeInBytes()) > uint64(stride) {
			return nil, fmt.Errorf("%w: attribute %s ends at byte %d, past stride %d", core.ErrInvalidLayout, a.Name, a.Offset+a.SizeInBytes(), stride)
		}
	}

	attrs := make([]VertexAttribute, len(attributes))
	copy(attrs, attributes)
	return &VertexLayout{
		vertexType: vertexType,
		attributes: attrs,
		stride:     stride,
	}, nil
}

// LayoutOf is NewVertexLayout for the vertex structure type T.
func LayoutOf[T any](attributes ...VertexAttribute) (*VertexLayout, error) {
	return NewVertexLayout(reflect.TypeFor[T](), attributes...)
}

// Type is the vertex structure type the layout describes.
func (l *VertexLayout) Type() reflect.Type {
	return l.vertexType
}

// SizeInBytes is the stride: the byte size of one vertex.
func (l *VertexLayout) SizeInBytes() uint32 {
	return l.stride
}

// Len is the number of attributes.
func (l *VertexLayout) Len() int {
	return len(l.attributes)
}

// Attributes returns a copy of the attributes in declaration order.
func (l *VertexLayout) Attributes() []VertexAttribute {
	attrs := make([]VertexAttribute, len(l.attributes))
	copy(attrs, l.attributes)
	return attrs
}

// AttributeAt returns the attribute bound to location.
func (l *VertexLayout) AttributeAt(location uint32) (VertexAttribute, error) {
	for _, a := range l.attributes {
		if a.Location == location {
			return a, nil
		}
	}
	return VertexAttribute{}, fmt.Errorf("%w: no attribute at location %d in layout of %s", core.ErrNotFound, location, l.vertexType)
}

func (l *VertexLayout) String() string {
	return fmt.Sprintf("%s(stride=%d, attributes=%v)", l.vertexType, l.stride, l.attributes)
}
