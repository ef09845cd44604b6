package renderer

import (
	"fmt"
	"reflect"
	"unsafe"

	"github.com/google/uuid"
	"github.com/spaghettifunk/flatgl/engine/core"
	"github.com/spaghettifunk/flatgl/engine/renderer/metadata"
)

// VertexBuffer is a fixed capacity array of vertices in GPU memory.
type VertexBuffer struct {
	id       uuid.UUID
	driver   Driver
	handle   handle
	layout   *metadata.VertexLayout
	capacity int
	usage    metadata.BufferUsage
}

// NewVertexBuffer allocates storage for capacity vertices of layout. The
// content is uninitialised until WriteVertices is called.
func NewVertexBuffer(driver Driver, layout *metadata.VertexLayout, capacity int, usage metadata.BufferUsage) (*VertexBuffer, error) {
	if driver == nil {
		return nil, fmt.Errorf("%w: nil driver", core.ErrInvalidArgument)
	}
	if layout == nil {
		return nil, fmt.Errorf("%w: nil vertex layout", core.ErrInvalidArgument)
	}
	if capacity < metadata.MinVertexCount || capacity > metadata.MaxVertexCount {
		return nil, fmt.Errorf("%w: vertex capacity %d not in [%d, %d]", core.ErrOutOfRange, capacity, metadata.MinVertexCount, metadata.MaxVertexCount)
	}

	vb := &VertexBuffer{
		id:       core.NewResourceID(),
		driver:   driver,
		layout:   layout,
		capacity: capacity,
		usage:    usage,
	}

	vb.handle.acquire(driver.GenBuffer())
	driver.BindBuffer(metadata.BufferTargetArray, vb.handle.id)
	driver.BufferData(metadata.BufferTargetArray, capacity*int(layout.SizeInBytes()), usage)
	driver.BindBuffer(metadata.BufferTargetArray, 0)

	core.LogDebug("vertex buffer %s created: %d x %d bytes (%s)", core.ShortID(vb.id), capacity, layout.SizeInBytes(), usage)
	return vb, nil
}

// WriteVertices overwrites the first count vertices of vb with data[:count].
// T must be the vertex type vb's layout was built for.
func WriteVertices[T any](vb *VertexBuffer, data []T, count int) error {
	if vb == nil {
		return fmt.Errorf("%w: nil vertex buffer", core.ErrInvalidArgument)
	}
	id, err := vb.handle.get()
	if err != nil {
		return fmt.Errorf("vertex buffer %s: %w", core.ShortID(vb.id), err)
	}
	if typ := reflect.TypeFor[T](); typ != vb.layout.Type() {
		return fmt.Errorf("%w: got %s, buffer holds %s", core.ErrTypeMismatch, typ, vb.layout.Type())
	}
	if len(data) == 0 {
		return fmt.Errorf("%w: no vertex data", core.ErrInvalidArgument)
	}
	if count <= 0 {
		return fmt.Errorf("%w: vertex count %d", core.ErrInvalidArgument, count)
	}
	if count > vb.capacity {
		return fmt.Errorf("%w: vertex count %d exceeds capacity %d", core.ErrOutOfRange, count, vb.capacity)
	}
	if count > len(data) {
		return fmt.Errorf("%w: vertex count %d exceeds data length %d", core.ErrOutOfRange, count, len(data))
	}

	size := count * int(vb.layout.SizeInBytes())
	bytes := unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(data))), size)

	vb.driver.BindBuffer(metadata.BufferTargetArray, id)
	vb.driver.BufferSubData(metadata.BufferTargetArray, 0, bytes)
	vb.driver.BindBuffer(metadata.BufferTargetArray, 0)
	return nil
}

// Release deletes the GPU buffer. Calling it again is a no-op.
func (vb *VertexBuffer) Release() {
	id, ok := vb.handle.release()
	if !ok {
		return
	}
	vb.driver.BindBuffer(metadata.BufferTargetArray, 0)
	vb.driver.DeleteBuffer(id)
	core.LogDebug("vertex buffer %s released", core.ShortID(vb.id))
}

// Handle is the driver buffer name, for binding in draw calls.
func (vb *VertexBuffer) Handle() (uint32, error) {
	return vb.handle.get()
}

func (vb *VertexBuffer) ID() uuid.UUID {
	return vb.id
}

func (vb *VertexBuffer) Layout() *metadata.VertexLayout {
	return vb.layout
}

// Capacity is the number of vertices the buffer can hold.
func (vb *VertexBuffer) Capacity() int {
	return vb.capacity
}

func (vb *VertexBuffer) Usage() metadata.BufferUsage {
	return vb.usage
}

func (vb *VertexBuffer) Released() bool {
	return vb.handle.state == handleReleased
}

// ReadVertices reads back the first count vertices when the driver supports it.
func ReadVertices[T any](vb *VertexBuffer, count int) ([]T, error) {
	id, err := vb.handle.get()
	if err != nil {
		return nil, err
	}
	if typ := reflect.TypeFor[T](); typ != vb.layout.Type() {
		return nil, fmt.Errorf("%w: got %s, buffer holds %s", core.ErrTypeMismatch, typ, vb.layout.Type())
	}
	if count <= 0 || count > vb.capacity {
		return nil, fmt.Errorf("%w: vertex count %d not in [1, %d]", core.ErrOutOfRange, count, vb.capacity)
	}
	reader, ok := vb.driver.(BufferReader)
	if !ok {
		return nil, fmt.Errorf("%w: driver cannot read buffers back", core.ErrNotFound)
	}

	out := make([]T, count)
	bytes := unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(out))), count*int(vb.layout.SizeInBytes()))
	vb.driver.BindBuffer(metadata.BufferTargetArray, id)
	reader.GetBufferSubData(metadata.BufferTargetArray, 0, bytes)
	vb.driver.BindBuffer(metadata.BufferTargetArray, 0)
	return out, nil
}
