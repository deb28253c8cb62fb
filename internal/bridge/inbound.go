package bridge

import (
	"errors"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/previewbridge/internal/bridge/dom"
	"github.com/GriffinCanCode/previewbridge/internal/bridge/protocol"
	"github.com/GriffinCanCode/previewbridge/internal/bridge/selector"
)

// Drop reasons reported to metrics
const (
	dropNotInitialized = "not_initialized"
	dropOrigin         = "origin"
	dropSource         = "source"
	dropMalformed      = "malformed"
	dropUnknown        = "unknown_type"
)

func (b *Bridge) handleMessage(ev *dom.Event) {
	if after := b.handleCommand(ev.Origin, ev.Data); after != nil {
		after()
	}
}

// handleCommand validates and dispatches one inbound message. Rejected
// messages are dropped without a reply. The returned func, if any, must run
// after the bridge lock is released.
func (b *Bridge) handleCommand(origin string, data []byte) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.state.Initialized || b.state.AllowedOrigin == "" {
		b.drop(dropNotInitialized)
		return nil
	}
	if origin != b.state.AllowedOrigin {
		b.drop(dropOrigin)
		b.logger.Debug("Ignored message from untrusted origin", zap.String("origin", origin))
		return nil
	}

	cmd, err := protocol.DecodeCommand(data)
	switch {
	case errors.Is(err, protocol.ErrForeignSource):
		b.drop(dropSource)
		return nil
	case err != nil:
		b.drop(dropMalformed)
		b.logger.Debug("Ignored malformed message", zap.Error(err))
		return nil
	}

	if !cmd.Type.Known() {
		b.drop(dropUnknown)
		b.logger.Debug("Ignored unknown command", zap.String("type", string(cmd.Type)))
		return nil
	}

	b.metrics.RecordBridgeCommand(string(cmd.Type))
	b.logger.Debug("Command received", zap.String("type", string(cmd.Type)))

	switch cmd.Type {
	case protocol.CommandHighlight:
		b.highlight(cmd.Selector())
	case protocol.CommandScrollTo:
		b.scrollTo(cmd.Selector())
	case protocol.CommandRefreshMap:
		b.post(protocol.Event{Type: protocol.EventMapChanged})
	case protocol.CommandSetPickMode:
		b.state.PickModeEnabled = cmd.Enabled()
	case protocol.CommandInlineEditorRequest:
		if fn := b.inlineEditor; fn != nil {
			id := cmd.ElementID()
			return func() { fn(id) }
		}
	}
	return nil
}

func (b *Bridge) drop(reason string) {
	b.metrics.RecordBridgeDropped(reason)
}

// resolve returns the first element matching sel, nil when the selector is
// rejected or nothing matches
func (b *Bridge) resolve(sel string) dom.Element {
	if !selector.IsValid(sel) {
		b.logger.Debug("Rejected selector", zap.Int("length", len(sel)))
		return nil
	}
	return b.win.Document().QuerySelector(sel)
}

// highlight outlines the element, then restores its prior outline
func (b *Bridge) highlight(sel string) {
	el := b.resolve(sel)
	if el == nil {
		return
	}

	prior := el.Outline()
	el.SetOutline(HighlightOutline)
	b.win.SetTimeout(HighlightDuration, func() {
		el.SetOutline(prior)
	})
}

func (b *Bridge) scrollTo(sel string) {
	el := b.resolve(sel)
	if el == nil {
		return
	}
	el.ScrollIntoView(dom.ScrollOptions{Behavior: "smooth", Block: "center"})
}
