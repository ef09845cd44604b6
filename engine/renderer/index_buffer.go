package renderer

import (
	"fmt"
	"unsafe"

	"github.com/google/uuid"
	"github.com/spaghettifunk/flatgl/engine/core"
	"github.com/spaghettifunk/flatgl/engine/renderer/metadata"
)

// IndexBuffer is a fixed capacity array of uint32 indices in GPU memory.
type IndexBuffer struct {
	id       uuid.UUID
	driver   Driver
	handle   handle
	capacity int
	usage    metadata.BufferUsage
}

func NewIndexBuffer(driver Driver, capacity int, usage metadata.BufferUsage) (*IndexBuffer, error) {
	if driver == nil {
		return nil, fmt.Errorf("%w: nil driver", core.ErrInvalidArgument)
	}
	if capacity < metadata.MinIndexCount || capacity > metadata.MaxIndexCount {
		return nil, fmt.Errorf("%w: index capacity %d not in [%d, %d]", core.ErrOutOfRange, capacity, metadata.MinIndexCount, metadata.MaxIndexCount)
	}

	ib := &IndexBuffer{
		id:       core.NewResourceID(),
		driver:   driver,
		capacity: capacity,
		usage:    usage,
	}

	ib.handle.acquire(driver.GenBuffer())
	driver.BindBuffer(metadata.BufferTargetElementArray, ib.handle.id)
	driver.BufferData(metadata.BufferTargetElementArray, capacity*metadata.IndexElementSize, usage)
	driver.BindBuffer(metadata.BufferTargetElementArray, 0)

	core.LogDebug("index buffer %s created: %d indices (%s)", core.ShortID(ib.id), capacity, usage)
	return ib, nil
}

// SetData overwrites the first count indices with indices[:count].
func (ib *IndexBuffer) SetData(indices []uint32, count int) error {
	id, err := ib.handle.get()
	if err != nil {
		return fmt.Errorf("index buffer %s: %w", core.ShortID(ib.id), err)
	}
	if len(indices) == 0 {
		return fmt.Errorf("%w: no index data", core.ErrInvalidArgument)
	}
	if count <= 0 {
		return fmt.Errorf("%w: index count %d", core.ErrInvalidArgument, count)
	}
	if count > ib.capacity {
		return fmt.Errorf("%w: index count %d exceeds capacity %d", core.ErrOutOfRange, count, ib.capacity)
	}
	if count > len(indices) {
		return fmt.Errorf("%w: index count %d exceeds data length %d", core.ErrOutOfRange, count, len(indices))
	}

	bytes := unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(indices))), count*metadata.IndexElementSize)

	ib.driver.BindBuffer(metadata.BufferTargetElementArray, id)
	ib.driver.BufferSubData(metadata.BufferTargetElementArray, 0, bytes)
	ib.driver.BindBuffer(metadata.BufferTargetElementArray, 0)
	return nil
}

// ReadData reads back the first count indices when the driver supports it.
func (ib *IndexBuffer) ReadData(count int) ([]uint32, error) {
	id, err := ib.handle.get()
	if err != nil {
		return nil, err
	}
	if count <= 0 || count > ib.capacity {
		return nil, fmt.Errorf("%w: index count %d not in [1, %d]", core.ErrOutOfRange, count, ib.capacity)
	}
	reader, ok := ib.driver.(BufferReader)
	if !ok {
		return nil, fmt.Errorf("%w: driver cannot read buffers back", core.ErrNotFound)
	}

	out := make([]uint32, count)
	bytes := unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(out))), count*metadata.IndexElementSize)
	ib.driver.BindBuffer(metadata.BufferTargetElementArray, id)
	reader.GetBufferSubData(metadata.BufferTargetElementArray, 0, bytes)
	ib.driver.BindBuffer(metadata.BufferTargetElementArray, 0)
	return out, nil
}

// Release deletes the GPU buffer. Calling it again is a no-op.
func (ib *IndexBuffer) Release() {
	id, ok := ib.handle.release()
	if !ok {
		return
	}
	ib.driver.BindBuffer(metadata.BufferTargetElementArray, 0)
	ib.driver.DeleteBuffer(id)
	core.LogDebug("index buffer %s released", core.ShortID(ib.id))
}

func (ib *IndexBuffer) Handle() (uint32, error) {
	return ib.handle.get()
}

func (ib *IndexBuffer) ID() uuid.UUID {
	return ib.id
}

func (ib *IndexBuffer) Capacity() int {
	return ib.capacity
}

func (ib *IndexBuffer) Usage() metadata.BufferUsage {
	return ib.usage
}

func (ib *IndexBuffer) Released() bool {
	return ib.handle.state == handleReleased
}
