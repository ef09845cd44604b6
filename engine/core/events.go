package core

import "sync"

// System internal event codes. Application should use codes beyond 255.
type SystemEventCode int

const (
	// Shuts the application down on the next frame.
	EVENT_CODE_APPLICATION_QUIT SystemEventCode = 0x01

	// Keyboard key pressed. Data is *KeyEvent.
	EVENT_CODE_KEY_PRESSED SystemEventCode = 0x02

	// Keyboard key released. Data is *KeyEvent.
	EVENT_CODE_KEY_RELEASED SystemEventCode = 0x03

	// Resized/resolution changed from the OS. Data is *SystemEvent.
	EVENT_CODE_RESIZED SystemEventCode = 0x08

	// A watched shader source changed on disk. Data is the file path (string).
	EVENT_CODE_SHADER_SOURCE_CHANGED SystemEventCode = 0x10

	MAX_EVENT_CODE SystemEventCode = 0xFF
)

type EventContext struct {
	Type SystemEventCode
	Data interface{}
}

type KeyEvent struct {
	KeyCode KeyCode
}

type SystemEvent struct {
	WindowWidth  uint32
	WindowHeight uint32
}

// Should return true if handled.
type FnOnEvent func(context EventContext) bool

type registeredEvent struct {
	id       uint64
	callback FnOnEvent
}

type eventSystemState struct {
	mutex      sync.Mutex
	nextID     uint64
	registered map[SystemEventCode][]registeredEvent
}

var eventState *eventSystemState

// EventSystemInitialize prepares the event registry. Calling it twice is a no-op.
func EventSystemInitialize() bool {
	if eventState != nil {
		return true
	}
	eventState = &eventSystemState{
		registered: make(map[SystemEventCode][]registeredEvent),
	}
	return true
}

func EventSystemShutdown() error {
	if eventState == nil {
		return nil
	}
	eventState.mutex.Lock()
	eventState.registered = make(map[SystemEventCode][]registeredEvent)
	eventState.mutex.Unlock()
	eventState = nil
	return nil
}

// EventRegister adds a listener for code and returns a token usable with
// EventUnregister. A zero token means the event system is not running.
func EventRegister(code SystemEventCode, onEvent FnOnEvent) uint64 {
	if eventState == nil || onEvent == nil {
		return 0
	}
	eventState.mutex.Lock()
	defer eventState.mutex.Unlock()

	eventState.nextID++
	eventState.registered[code] = append(eventState.registered[code], registeredEvent{
		id:       eventState.nextID,
		callback: onEvent,
	})
	return eventState.nextID
}

func EventUnregister(code SystemEventCode, token uint64) bool {
	if eventState == nil {
		return false
	}
	eventState.mutex.Lock()
	defer eventState.mutex.Unlock()

	events := eventState.registered[code]
	for i, e := range events {
		if e.id == token {
			eventState.registered[code] = append(events[:i], events[i+1:]...)
			return true
		}
	}
	return false
}

// EventFire delivers context to listeners in registration order. When a
// listener returns true the event is considered handled and propagation stops.
func EventFire(context EventContext) bool {
	if eventState == nil {
		return false
	}
	eventState.mutex.Lock()
	events := make([]registeredEvent, len(eventState.registered[context.Type]))
	copy(events, eventState.registered[context.Type])
	eventState.mutex.Unlock()

	for _, e := range events {
		if e.callback(context) {
			return true
		}
	}
	return false
}
