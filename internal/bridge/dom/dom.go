// Package dom is the narrow document/window port the bridge is written against.
//
// The bridge never touches a concrete DOM. Anything that can deliver pointer,
// keyboard and cross-frame message events and answer a handful of element
// queries can host it: the headless page in this repository, or a js/wasm
// adapter over the real browser DOM.
package dom

import (
	"net/url"
	"time"

	"github.com/GriffinCanCode/previewbridge/internal/bridge/protocol"
)

// EventKind names a native event stream
type EventKind string

const (
	KindMouseMove EventKind = "mousemove"
	KindClick     EventKind = "click"
	KindKeyDown   EventKind = "keydown"
	KindMessage   EventKind = "message"
	KindError     EventKind = "error"
)

// Event is a native event as delivered to a listener
type Event struct {
	Kind   EventKind
	Target Element

	// Pointer/keyboard
	AltKey bool
	Key    string

	// Cross-frame message
	Origin string
	Data   []byte

	// Page error
	Message string
	Stack   string

	defaultPrevented bool
	stopped          bool
}

// PreventDefault cancels the page's default action
func (e *Event) PreventDefault() { e.defaultPrevented = true }

// StopPropagation stops delivery to later bubble listeners
func (e *Event) StopPropagation() { e.stopped = true }

// DefaultPrevented reports whether PreventDefault was called
func (e *Event) DefaultPrevented() bool { return e.defaultPrevented }

// PropagationStopped reports whether StopPropagation was called
func (e *Event) PropagationStopped() bool { return e.stopped }

// Handler receives events
type Handler func(*Event)

// ListenOptions controls listener registration
type ListenOptions struct {
	Capture bool
}

// Unsubscribe detaches a listener. Calling it more than once is a no-op.
type Unsubscribe func()

// EventTarget accepts listeners
type EventTarget interface {
	Listen(kind EventKind, opts ListenOptions, h Handler) Unsubscribe
}

// ScrollOptions mirrors scrollIntoView options
type ScrollOptions struct {
	Behavior string // "auto", "smooth"
	Block    string // "start", "center", "end", "nearest"
}

// Element is a node of the hosted document
type Element interface {
	// Closest returns the nearest ancestor, including the element itself,
	// that carries attr. Nil when none does.
	Closest(attr string) Element
	Attribute(name string) (string, bool)
	ClassName() string
	TextContent() string
	TagName() string
	BoundingRect() protocol.Rect
	Outline() string
	SetOutline(value string)
	ScrollIntoView(opts ScrollOptions)
}

// Document is the hosted document
type Document interface {
	EventTarget
	// QuerySelector returns the first match, or nil when nothing matches or
	// the selector does not parse.
	QuerySelector(selector string) Element
}

// MessagePoster is the parent frame as seen from the page
type MessagePoster interface {
	PostMessage(data []byte, targetOrigin string) error
}

// Window is the hosting browsing context
type Window interface {
	EventTarget
	Document() Document
	Location() *url.URL
	Parent() MessagePoster
	Now() time.Time
	// SetTimeout runs fn once after d, on the page's event loop
	SetTimeout(d time.Duration, fn func())
}
