package renderer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/flatgl/engine/core"
	"github.com/spaghettifunk/flatgl/engine/renderer/headless"
	"github.com/spaghettifunk/flatgl/engine/renderer/metadata"
)

func TestNewIndexBufferCapacity(t *testing.T) {
	tests := []struct {
		name     string
		capacity int
		err      error
	}{
		{"zero", 0, core.ErrOutOfRange},
		{"minimum", metadata.MinIndexCount, nil},
		{"maximum", metadata.MaxIndexCount, nil},
		{"above maximum", metadata.MaxIndexCount + 1, core.ErrOutOfRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := headless.New()
			ib, err := NewIndexBuffer(b, tt.capacity, metadata.BufferUsageStatic)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				assert.Nil(t, ib)
				assert.Empty(t, b.Calls())
				return
			}
			require.NoError(t, err)
			h, err := ib.Handle()
			require.NoError(t, err)
			assert.Equal(t, tt.capacity*metadata.IndexElementSize, b.BufferSize(h))
			requireClean(t, b)
		})
	}
}

func TestIndexBufferRoundTrip(t *testing.T) {
	b := headless.New()
	ib, err := NewIndexBuffer(b, 6, metadata.BufferUsageDynamic)
	require.NoError(t, err)

	require.NoError(t, ib.SetData(quadIndices, 6))
	requireClean(t, b)

	got, err := ib.ReadData(6)
	require.NoError(t, err)
	assert.Equal(t, quadIndices, got)
	requireClean(t, b)
}

func TestIndexBufferSetDataRejects(t *testing.T) {
	b := headless.New()
	ib, err := NewIndexBuffer(b, 6, metadata.BufferUsageStatic)
	require.NoError(t, err)
	b.ResetCalls()

	err = ib.SetData(append(quadIndices, 3), 7)
	assert.ErrorIs(t, err, core.ErrOutOfRange)

	err = ib.SetData(quadIndices[:3], 4)
	assert.ErrorIs(t, err, core.ErrOutOfRange)

	err = ib.SetData(nil, 1)
	assert.ErrorIs(t, err, core.ErrInvalidArgument)
	assert.False(t, errors.Is(err, core.ErrOutOfRange))

	err = ib.SetData(quadIndices, -1)
	assert.ErrorIs(t, err, core.ErrInvalidArgument)

	assert.Empty(t, b.Calls())
}

func TestIndexBufferRelease(t *testing.T) {
	b := headless.New()
	ib, err := NewIndexBuffer(b, 6, metadata.BufferUsageStatic)
	require.NoError(t, err)

	ib.Release()
	ib.Release()

	assert.True(t, ib.Released())
	assert.Zero(t, b.LiveBuffers())
	requireClean(t, b)
	assert.ErrorIs(t, ib.SetData(quadIndices, 6), core.ErrUseAfterRelease)
	_, err = ib.ReadData(6)
	assert.ErrorIs(t, err, core.ErrUseAfterRelease)
}
