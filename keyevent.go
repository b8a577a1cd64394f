package evremap

import (
	"fmt"

	"github.com/holoplot/go-evremap/key"
)

// KeyState is the kind of a key transition. The values match the value field
// of an evdev EV_KEY event.
type KeyState uint8

const (
	KeyUp     KeyState = 0x0
	KeyDown   KeyState = 0x1
	KeyRepeat KeyState = 0x2
)

func (s KeyState) String() string {
	switch s {
	case KeyUp:
		return "up"
	case KeyDown:
		return "down"
	case KeyRepeat:
		return "repeat"
	}
	return "unknown"
}

// KeyEvent is one physical key transition delivered by an input source.
type KeyEvent struct {
	Code  key.Code
	State KeyState
}

// NewKeyEvent converts the value field of an evdev key event. Values other
// than 0, 1 and 2 report ok == false.
func NewKeyEvent(code key.Code, value int32) (ev KeyEvent, ok bool) {
	switch value {
	case 0:
		return KeyEvent{Code: code, State: KeyUp}, true
	case 1:
		return KeyEvent{Code: code, State: KeyDown}, true
	case 2:
		return KeyEvent{Code: code, State: KeyRepeat}, true
	}
	return KeyEvent{}, false
}

func (ev KeyEvent) String() string {
	return fmt.Sprintf("key event %s (%d), (%s)", ev.Code, ev.Code, ev.State)
}
