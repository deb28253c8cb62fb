package bridge

import (
	"go.uber.org/zap"

	"github.com/GriffinCanCode/previewbridge/internal/bridge/protocol"
)

// post sends event to the trusted parent. It is a no-op unless the bridge is
// initialized with an allowed origin, and never targets a wildcard.
// Callers hold b.mu.
func (b *Bridge) post(event protocol.Event) {
	if !b.state.Initialized || b.state.AllowedOrigin == "" {
		return
	}

	data, err := protocol.EncodeEvent(event)
	if err != nil {
		b.logger.Error("Failed to encode event", zap.String("type", string(event.Type)), zap.Error(err))
		return
	}

	if err := b.win.Parent().PostMessage(data, b.state.AllowedOrigin); err != nil {
		b.logger.Warn("Failed to post event", zap.String("type", string(event.Type)), zap.Error(err))
		return
	}

	b.metrics.RecordBridgeEvent(string(event.Type))
	b.logger.Debug("Posted event",
		zap.String("type", string(event.Type)),
		zap.String("element_id", event.ElementID),
	)
}

// ReadyMessage encodes a ready event for one late-attaching shell transport
// without posting it to the parent. ok is false while the bridge is inert.
func (b *Bridge) ReadyMessage() (data []byte, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.state.Initialized || b.state.AllowedOrigin == "" {
		return nil, false
	}
	data, err := protocol.EncodeEvent(protocol.Event{Type: protocol.EventReady})
	if err != nil {
		b.logger.Error("Failed to encode event", zap.String("type", string(protocol.EventReady)), zap.Error(err))
		return nil, false
	}
	b.metrics.RecordBridgeEvent(string(protocol.EventReady))
	return data, true
}

// NotifyInlineEditor tells the shell an inline editor opened or closed
func (b *Bridge) NotifyInlineEditor(open bool, elementID string, pos *protocol.Position) {
	b.mu.Lock()
	defer b.mu.Unlock()

	event := protocol.Event{Type: protocol.EventInlineEditorClose, ElementID: elementID, Position: pos}
	if open {
		event.Type = protocol.EventInlineEditorOpen
	}
	b.post(event)
}

// ReportError forwards a page error to the shell
func (b *Bridge) ReportError(message, stack string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.postError(message, stack)
}

func (b *Bridge) postError(message, stack string) {
	b.post(protocol.Event{
		Type:  protocol.EventError,
		Error: &protocol.ErrorPayload{Message: message, Stack: stack},
	})
}
