package tileterm

import "fmt"

// EventType identifies the kind of an input Event.
type EventType uint8

const (
	// EventClose is sent when the user closes the window or terminal.
	EventClose EventType = iota + 1
	// EventKey is sent when a key is pressed.
	EventKey
	// EventResize is sent when the surface changes size. The grid is not
	// resized; backends scale the frame to the new surface.
	EventResize
)

// Key identifies a pressed key. Printable keys are reported as KeyRune with
// the rune in Event.Rune.
type Key uint8

// Keys reported by backends.
const (
	KeyUnknown Key = iota
	KeyRune
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyEnter
	KeyEscape
	KeySpace
	KeyBackspace
	KeyTab
)

var keyNames = [...]string{
	KeyUnknown:   "Unknown",
	KeyRune:      "Rune",
	KeyUp:        "Up",
	KeyDown:      "Down",
	KeyLeft:      "Left",
	KeyRight:     "Right",
	KeyEnter:     "Enter",
	KeyEscape:    "Escape",
	KeySpace:     "Space",
	KeyBackspace: "Backspace",
	KeyTab:       "Tab",
}

func (k Key) String() string {
	if int(k) < len(keyNames) {
		return keyNames[k]
	}
	return fmt.Sprintf("Key(%d)", k)
}

// Event is an input event delivered by an EventSource.
type Event struct {
	Type EventType
	Key  Key
	Rune rune

	// Width and Height are set for EventResize, in pixels.
	Width, Height int
}

// KeyEvent returns a key press event for k.
func KeyEvent(k Key) Event {
	return Event{Type: EventKey, Key: k}
}

// RuneEvent returns a key press event for a printable rune.
func RuneEvent(r rune) Event {
	if r == ' ' {
		return Event{Type: EventKey, Key: KeySpace, Rune: r}
	}
	return Event{Type: EventKey, Key: KeyRune, Rune: r}
}
