package protocol

import (
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeEventStampsSource(t *testing.T) {
	data, err := EncodeEvent(Event{Source: "spoofed", Type: EventReady})
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, sonic.Unmarshal(data, &raw))

	assert.Equal(t, SourceBridge, raw["source"])
	assert.Equal(t, "ready", raw["type"])
	assert.NotContains(t, raw, "elementId")
	assert.NotContains(t, raw, "rect")
}

func TestEncodeSelectKeepsEmptyClassName(t *testing.T) {
	empty := ""
	rect := NewRect(10, 20, 30, 40)
	data, err := EncodeEvent(Event{
		Type:        EventSelect,
		ElementID:   "btn-1",
		Rect:        &rect,
		ClassName:   &empty,
		TextContent: &empty,
		TagName:     "button",
	})
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, sonic.Unmarshal(data, &raw))

	assert.Equal(t, "", raw["className"])
	assert.Equal(t, "", raw["textContent"])
	r := raw["rect"].(map[string]interface{})
	assert.Equal(t, float64(40), r["right"])
	assert.Equal(t, float64(60), r["bottom"])
}

func TestDecodeCommand(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr error
		check   func(t *testing.T, cmd Command)
	}{
		{
			name: "set pick mode",
			data: `{"source":"editor-shell","type":"set-pick-mode","payload":{"enabled":true}}`,
			check: func(t *testing.T, cmd Command) {
				assert.Equal(t, CommandSetPickMode, cmd.Type)
				assert.True(t, cmd.Enabled())
			},
		},
		{
			name: "missing payload defaults",
			data: `{"source":"editor-shell","type":"set-pick-mode"}`,
			check: func(t *testing.T, cmd Command) {
				assert.False(t, cmd.Enabled())
				assert.Empty(t, cmd.Selector())
				assert.Empty(t, cmd.ElementID())
			},
		},
		{
			name: "unknown type is accepted",
			data: `{"source":"editor-shell","type":"negotiate-version","extra":1}`,
			check: func(t *testing.T, cmd Command) {
				assert.False(t, cmd.Type.Known())
			},
		},
		{
			name:    "foreign source",
			data:    `{"source":"devtools","type":"highlight","payload":{"selector":"#a"}}`,
			wantErr: ErrForeignSource,
		},
		{
			name:    "missing source",
			data:    `{"type":"highlight"}`,
			wantErr: ErrForeignSource,
		},
		{
			name:    "upper-cased source key",
			data:    `{"SOURCE":"editor-shell","type":"set-pick-mode","payload":{"enabled":true}}`,
			wantErr: ErrForeignSource,
		},
		{
			name: "case variants of fields are ignored",
			data: `{"source":"editor-shell","Type":"set-pick-mode","PAYLOAD":{"ENABLED":true}}`,
			check: func(t *testing.T, cmd Command) {
				assert.Empty(t, cmd.Type)
				assert.False(t, cmd.Type.Known())
				assert.Nil(t, cmd.Payload)
			},
		},
		{
			name: "case variants inside payload are ignored",
			data: `{"source":"editor-shell","type":"set-pick-mode","payload":{"Enabled":true,"SELECTOR":"#a"}}`,
			check: func(t *testing.T, cmd Command) {
				assert.Equal(t, CommandSetPickMode, cmd.Type)
				assert.False(t, cmd.Enabled())
				assert.Empty(t, cmd.Selector())
			},
		},
		{
			name:    "mistyped source",
			data:    `{"source":1,"type":"refresh-map"}`,
			wantErr: ErrForeignSource,
		},
		{
			name:    "not an object",
			data:    `"hello"`,
			wantErr: ErrMalformed,
		},
		{
			name:    "empty",
			data:    ``,
			wantErr: ErrMalformed,
		},
		{
			name:    "mistyped enabled",
			data:    `{"source":"editor-shell","type":"set-pick-mode","payload":{"enabled":"yes"}}`,
			wantErr: ErrMalformed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := DecodeCommand([]byte(tt.data))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			if tt.check != nil {
				tt.check(t, cmd)
			}
		})
	}
}

func TestDecodeCommandTooLarge(t *testing.T) {
	data := make([]byte, MaxMessageSize+1)
	_, err := DecodeCommand(data)
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestDecodeEventRejectsShellEnvelope(t *testing.T) {
	data, err := EncodeCommand(Command{Type: CommandRefreshMap})
	require.NoError(t, err)

	_, err = DecodeEvent(data)
	assert.ErrorIs(t, err, ErrMalformed)
}
