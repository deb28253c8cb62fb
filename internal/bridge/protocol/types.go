package protocol

// Source tags stamped on every envelope
const (
	SourceBridge = "bridge-sdk"
	SourceShell  = "editor-shell"
)

// EventType tags an outbound event
type EventType string

const (
	EventReady             EventType = "ready"
	EventMapChanged        EventType = "map-changed"
	EventSelect            EventType = "select"
	EventHover             EventType = "hover"
	EventDeselect          EventType = "deselect"
	EventError             EventType = "error"
	EventInlineEditorOpen  EventType = "inline-editor-open"
	EventInlineEditorClose EventType = "inline-editor-close"
)

// CommandType tags an inbound command
type CommandType string

const (
	CommandHighlight           CommandType = "highlight"
	CommandScrollTo            CommandType = "scroll-to"
	CommandRefreshMap          CommandType = "refresh-map"
	CommandSetPickMode         CommandType = "set-pick-mode"
	CommandInlineEditorRequest CommandType = "inline-editor-request"
)

// Known reports whether the command tag is understood by this build
func (t CommandType) Known() bool {
	switch t {
	case CommandHighlight, CommandScrollTo, CommandRefreshMap, CommandSetPickMode, CommandInlineEditorRequest:
		return true
	}
	return false
}

// Rect mirrors a DOMRect
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// NewRect builds a rect from origin and size, filling the edge fields
func NewRect(x, y, width, height float64) Rect {
	return Rect{
		X:      x,
		Y:      y,
		Width:  width,
		Height: height,
		Top:    y,
		Right:  x + width,
		Bottom: y + height,
		Left:   x,
	}
}

// ErrorPayload carries a page error
type ErrorPayload struct {
	Message string `json:"message"`
	Stack   string `json:"stack,omitempty"`
}

// Position is a viewport coordinate
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Event is sent from the preview to the editor shell
type Event struct {
	Source      string        `json:"source"`
	Type        EventType     `json:"type"`
	ElementID   string        `json:"elementId,omitempty"`
	Rect        *Rect         `json:"rect,omitempty"`
	ClassName   *string       `json:"className,omitempty"`
	TextContent *string       `json:"textContent,omitempty"`
	TagName     string        `json:"tagName,omitempty"`
	Error       *ErrorPayload `json:"error,omitempty"`
	Position    *Position     `json:"position,omitempty"`
}

// Payload is the optional argument block of a command
type Payload struct {
	Selector  string `json:"selector,omitempty"`
	Enabled   *bool  `json:"enabled,omitempty"`
	ElementID string `json:"elementId,omitempty"`
}

// Command is sent from the editor shell to the preview
type Command struct {
	Source  string      `json:"source"`
	Type    CommandType `json:"type"`
	Payload *Payload    `json:"payload,omitempty"`
}

// Selector returns the payload selector or ""
func (c Command) Selector() string {
	if c.Payload == nil {
		return ""
	}
	return c.Payload.Selector
}

// Enabled returns the payload flag, false when absent
func (c Command) Enabled() bool {
	if c.Payload == nil || c.Payload.Enabled == nil {
		return false
	}
	return *c.Payload.Enabled
}

// ElementID returns the payload element id or ""
func (c Command) ElementID() string {
	if c.Payload == nil {
		return ""
	}
	return c.Payload.ElementID
}
