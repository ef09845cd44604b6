package core

import "sync"

// Key code definitions. Values follow the platform layer's printable key
// codes so that letters map to their upper case ASCII value.
type KeyCode uint16

const (
	KEY_UNKNOWN   KeyCode = 0x00
	KEY_BACKSPACE KeyCode = 0x08
	KEY_TAB       KeyCode = 0x09
	KEY_ENTER     KeyCode = 0x0D
	KEY_ESCAPE    KeyCode = 0x1B
	KEY_SPACE     KeyCode = 0x20
	KEY_R         KeyCode = 0x52
	KEYS_MAX_KEYS KeyCode = 0x100
)

type KeyboardState struct {
	Keys [KEYS_MAX_KEYS]bool
}

// Input state structure that holds current and previous keyboard states.
type InputState struct {
	KeyboardCurrent  KeyboardState
	KeyboardPrevious KeyboardState
}

var inputMutex sync.Mutex
var inputState *InputState

func InputInitialize() error {
	inputMutex.Lock()
	inputState = &InputState{}
	inputMutex.Unlock()
	LogInfo("Input subsystem initialized.")
	return nil
}

func InputShutdown() error {
	inputMutex.Lock()
	inputState = nil
	inputMutex.Unlock()
	return nil
}

// InputUpdate copies current states to previous states. Call once per frame.
func InputUpdate(deltaTime float64) error {
	inputMutex.Lock()
	defer inputMutex.Unlock()
	if inputState == nil {
		return nil
	}
	inputState.KeyboardPrevious = inputState.KeyboardCurrent
	return nil
}

func InputIsKeyDown(key KeyCode) bool {
	inputMutex.Lock()
	defer inputMutex.Unlock()
	if inputState == nil || key >= KEYS_MAX_KEYS {
		return false
	}
	return inputState.KeyboardCurrent.Keys[key]
}

func InputWasKeyDown(key KeyCode) bool {
	inputMutex.Lock()
	defer inputMutex.Unlock()
	if inputState == nil || key >= KEYS_MAX_KEYS {
		return false
	}
	return inputState.KeyboardPrevious.Keys[key]
}

// InputProcessKey records a key transition and fires the matching event.
func InputProcessKey(key KeyCode, pressed bool) error {
	if key >= KEYS_MAX_KEYS {
		return nil
	}
	inputMutex.Lock()
	if inputState == nil || inputState.KeyboardCurrent.Keys[key] == pressed {
		inputMutex.Unlock()
		return nil
	}
	inputState.KeyboardCurrent.Keys[key] = pressed
	inputMutex.Unlock()

	code := EVENT_CODE_KEY_RELEASED
	if pressed {
		code = EVENT_CODE_KEY_PRESSED
	}

	// Fire off an event for immediate processing.
	EventFire(EventContext{
		Type: code,
		Data: &KeyEvent{
			KeyCode: key,
		},
	})
	return nil
}
