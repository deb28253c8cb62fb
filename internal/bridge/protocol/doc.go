/*
Package protocol defines the cross-frame wire contract between an embedded
preview page and its parent editor shell.

# Envelopes

Outbound (preview to shell):

	{"source": "bridge-sdk", "type": "select", "elementId": "btn-1", "rect": {...}, ...}

Inbound (shell to preview):

	{"source": "editor-shell", "type": "set-pick-mode", "payload": {"enabled": true}}

Both directions are tagged unions keyed by "type". Inbound data is decoded and
validated at the boundary by DecodeCommand; an envelope that is not a JSON
object, carries mistyped fields, or lacks the editor-shell source tag is
rejected. Command types this build does not know decode successfully so newer
shells can talk to older previews.
*/
package protocol
