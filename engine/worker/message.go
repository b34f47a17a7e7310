package worker

import (
	"github.com/Carmen-Shannon/oxy-badges/engine/renderer"
)

// Surface is the drawing surface handed to the router by Init. After the hand-off the host must not
// use it again.
type Surface = renderer.Surface

// Message is a command sent from the host to the router. Messages carry plain values only.
type Message interface {
	// Kind names the command for logging.
	Kind() string
}

// Init starts the router: it loads the native module if a locator is given, builds the scene on
// the surface and shows the first badge. Only the first successful Init has an effect.
type Init struct {
	// Surface is the drawing surface the scene renders into.
	Surface Surface

	// BadgeName is the badge shown first, for example "votes".
	BadgeName string

	// Width and Height are the logical viewport size in pixels.
	Width, Height int

	// PixelRatio is the number of device pixels per logical pixel.
	PixelRatio float32

	// Native locates the weaver module, see native.Load. Empty skips loading.
	Native string
}

// SwitchBadge replaces the shown badge.
type SwitchBadge struct {
	BadgeName string
}

// MouseMove nudges the pointer light. X and Y are normalized device coordinates in [-1, 1].
type MouseMove struct {
	X, Y float32
}

// Resize changes the logical viewport size.
type Resize struct {
	Width, Height int
}

func (Init) Kind() string        { return "init" }
func (SwitchBadge) Kind() string { return "switchBadge" }
func (MouseMove) Kind() string   { return "mouseMove" }
func (Resize) Kind() string      { return "resize" }

// EventType identifies an event sent from the router to the host.
type EventType int

const (
	// EventReady is sent exactly once, when the first Init has completed.
	EventReady EventType = iota

	// EventError reports a failure the router could not recover from, such as a surface or module
	// that could not be set up.
	EventError
)

func (t EventType) String() string {
	switch t {
	case EventReady:
		return "ready"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is a notification from the router to the host.
type Event struct {
	Type EventType
	Err  error
}
