package protocol

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/bytedance/sonic"
)

// MaxMessageSize bounds an inbound envelope (64KB)
const MaxMessageSize = 64 * 1024

var (
	ErrMalformed     = errors.New("malformed bridge message")
	ErrForeignSource = errors.New("message not sent by editor shell")
	ErrTooLarge      = errors.New("bridge message too large")
)

// EncodeEvent stamps the sender tag and serializes the event
func EncodeEvent(event Event) ([]byte, error) {
	event.Source = SourceBridge
	data, err := sonic.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("encode %s event: %w", event.Type, err)
	}
	return data, nil
}

var (
	envelopeKeys = []string{"source", "type", "payload"}
	payloadKeys  = []string{"selector", "enabled", "elementId"}
)

// DecodeCommand validates an inbound envelope at the boundary. Keys match
// exactly: a case variant of a field name is an unknown field and ignored.
// Unknown command types decode fine; callers ignore them.
func DecodeCommand(data []byte) (Command, error) {
	var cmd Command

	if len(data) > MaxMessageSize {
		return cmd, ErrTooLarge
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return cmd, ErrMalformed
	}

	var raw map[string]interface{}
	if err := sonic.Unmarshal(trimmed, &raw); err != nil {
		return Command{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	if src, _ := raw["source"].(string); src != SourceShell {
		return Command{}, ErrForeignSource
	}

	envelope := exactKeys(raw, envelopeKeys)
	if payload, ok := envelope["payload"].(map[string]interface{}); ok {
		envelope["payload"] = exactKeys(payload, payloadKeys)
	}

	// The struct decoder folds case, so it only ever sees exact keys
	normalized, err := sonic.Marshal(envelope)
	if err != nil {
		return Command{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := sonic.Unmarshal(normalized, &cmd); err != nil {
		return Command{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	return cmd, nil
}

func exactKeys(m map[string]interface{}, keys []string) map[string]interface{} {
	out := make(map[string]interface{}, len(keys))
	for _, k := range keys {
		if v, ok := m[k]; ok {
			out[k] = v
		}
	}
	return out
}

// DecodeEvent parses an outbound event, as a shell would
func DecodeEvent(data []byte) (Event, error) {
	var event Event
	if err := sonic.Unmarshal(data, &event); err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if event.Source != SourceBridge {
		return Event{}, fmt.Errorf("%w: source %q", ErrMalformed, event.Source)
	}
	return event, nil
}

// EncodeCommand stamps the shell tag and serializes the command
func EncodeCommand(cmd Command) ([]byte, error) {
	cmd.Source = SourceShell
	data, err := sonic.Marshal(cmd)
	if err != nil {
		return nil, fmt.Errorf("encode %s command: %w", cmd.Type, err)
	}
	return data, nil
}
