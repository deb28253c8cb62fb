package bridge

import (
	"strings"
	"unicode/utf8"

	"github.com/GriffinCanCode/previewbridge/internal/bridge/dom"
	"github.com/GriffinCanCode/previewbridge/internal/bridge/protocol"
)

// identified returns the nearest identity-bearing ancestor of target
func identified(target dom.Element) dom.Element {
	if target == nil {
		return nil
	}
	return target.Closest(dom.IdentityAttribute)
}

// trimText trims and cuts text to MaxTextContentLength characters
func trimText(s string) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= MaxTextContentLength {
		return s
	}
	return string([]rune(s)[:MaxTextContentLength])
}

// handleClick picks the clicked element in pick mode or with Alt held.
// Other clicks pass through to the page untouched.
func (b *Bridge) handleClick(ev *dom.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.state.Initialized {
		return
	}

	el := identified(ev.Target)
	if el == nil {
		return
	}
	if !b.state.PickModeEnabled && !ev.AltKey {
		return
	}

	ev.PreventDefault()
	ev.StopPropagation()

	id, _ := el.Attribute(dom.IdentityAttribute)
	if id == "" {
		return
	}

	b.state.SelectedElementID = id

	rect := el.BoundingRect()
	className := el.ClassName()
	text := trimText(el.TextContent())
	b.post(protocol.Event{
		Type:        protocol.EventSelect,
		ElementID:   id,
		Rect:        &rect,
		ClassName:   &className,
		TextContent: &text,
		TagName:     strings.ToLower(el.TagName()),
	})
}

// handleMouseMove tracks the hovered element in pick mode, evaluating at
// most once per HoverThrottle. Events inside the window are dropped.
func (b *Bridge) handleMouseMove(ev *dom.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.state.Initialized || !b.state.PickModeEnabled {
		return
	}
	if !b.hover.AllowN(b.win.Now(), 1) {
		return
	}

	el := identified(ev.Target)
	if el == nil {
		if b.state.HoveredElementID != "" {
			b.state.HoveredElementID = ""
			b.post(protocol.Event{Type: protocol.EventDeselect})
		}
		return
	}

	id, _ := el.Attribute(dom.IdentityAttribute)
	if id == "" {
		return
	}

	if id != b.state.HoveredElementID {
		b.state.HoveredElementID = id
		rect := el.BoundingRect()
		b.post(protocol.Event{
			Type:      protocol.EventHover,
			ElementID: id,
			Rect:      &rect,
		})
	}
}

// handleKeyDown clears the selection on Escape
func (b *Bridge) handleKeyDown(ev *dom.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.state.Initialized {
		return
	}
	if ev.Key == "Escape" && b.state.SelectedElementID != "" {
		b.state.SelectedElementID = ""
		b.post(protocol.Event{Type: protocol.EventDeselect})
	}
}

// handlePageError forwards uncaught page errors when console capture is on
func (b *Bridge) handlePageError(ev *dom.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.state.Initialized || !b.config.CaptureConsole {
		return
	}
	b.postError(ev.Message, ev.Stack)
}
