package renderer

import (
	"fmt"

	"github.com/spaghettifunk/flatgl/engine/core"
)

type handleState uint8

const (
	handleNotCreated handleState = iota
	handleLive
	handleReleased
)

func (s handleState) String() string {
	switch s {
	case handleNotCreated:
		return "not_created"
	case handleLive:
		return "live"
	case handleReleased:
		return "released"
	default:
		return "unknown"
	}
}

// handle is a driver object identifier that knows whether it is usable.
type handle struct {
	id    uint32
	state handleState
}

func (h *handle) acquire(id uint32) {
	h.id = id
	h.state = handleLive
}

// get returns the id of a live handle, or why it cannot be used.
func (h *handle) get() (uint32, error) {
	switch h.state {
	case handleLive:
		return h.id, nil
	case handleReleased:
		return 0, core.ErrUseAfterRelease
	default:
		return 0, fmt.Errorf("%w: handle was never created", core.ErrInvalidArgument)
	}
}

func (h *handle) live() bool {
	return h.state == handleLive
}

// release marks the handle released and returns the id to delete. The
// second return is false when there is nothing to delete.
func (h *handle) release() (uint32, bool) {
	if h.state != handleLive {
		if h.state == handleNotCreated {
			h.state = handleReleased
		}
		return 0, false
	}
	id := h.id
	h.id = 0
	h.state = handleReleased
	return id, true
}
