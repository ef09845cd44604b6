package renderer

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spaghettifunk/flatgl/engine/core"
	"github.com/spaghettifunk/flatgl/engine/renderer/metadata"
)

// VertexArray records which vertex buffer feeds which shader input location.
// It references the vertex buffer but does not own it.
type VertexArray struct {
	id     uuid.UUID
	driver Driver
	handle handle
	vb     *VertexBuffer
}

// NewVertexArray enables every attribute of vb's layout at its location.
func NewVertexArray(driver Driver, vb *VertexBuffer) (*VertexArray, error) {
	if driver == nil || vb == nil {
		return nil, fmt.Errorf("%w: nil driver or vertex buffer", core.ErrInvalidArgument)
	}
	vbo, err := vb.Handle()
	if err != nil {
		return nil, fmt.Errorf("vertex array over buffer %s: %w", core.ShortID(vb.id), err)
	}

	va := &VertexArray{
		id:     core.NewResourceID(),
		driver: driver,
		vb:     vb,
	}

	layout := vb.Layout()
	stride := int32(layout.SizeInBytes())

	va.handle.acquire(driver.GenVertexArray())
	driver.BindVertexArray(va.handle.id)
	driver.BindBuffer(metadata.BufferTargetArray, vbo)
	for _, a := range layout.Attributes() {
		driver.EnableVertexAttribArray(a.Location)
		driver.VertexAttribPointer(a.Location, a.ComponentCount, stride, int(a.Offset))
	}
	driver.BindVertexArray(0)
	driver.BindBuffer(metadata.BufferTargetArray, 0)

	return va, nil
}

func (va *VertexArray) Handle() (uint32, error) {
	return va.handle.get()
}

func (va *VertexArray) ID() uuid.UUID {
	return va.id
}

// VertexBuffer is the buffer the array was built over.
func (va *VertexArray) VertexBuffer() *VertexBuffer {
	return va.vb
}

// Release deletes the vertex array object. Calling it again is a no-op.
func (va *VertexArray) Release() {
	id, ok := va.handle.release()
	if !ok {
		return
	}
	va.driver.BindVertexArray(0)
	va.driver.DeleteVertexArray(id)
}
