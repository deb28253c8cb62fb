// Package main is the preview daemon.
//
// It loads a preview page into a headless browsing context, attaches the
// bridge to it and exposes the page to a remote editor shell:
//
//	Editor shell ──ws /bridge──▶ previewd ──message events──▶ bridge
//	             ◀─────────────  (parent frame)  ◀── postMessage
//
// The server provides:
//   - WebSocket relay restricted to the trusted shell origin
//   - Inspection endpoints for bridge state and the element map
//   - Input simulation for driving pick mode without a browser
//   - Prometheus metrics
//
// Configuration:
//   - Environment variables (SHELL_ORIGIN, PREVIEW_SOURCE, ...)
//   - CLI flags (override env vars)
//
// Usage:
//
//	./previewd -origin https://shell.example -source ./dist/index.html -layout layout.yaml
//
//	# Development mode (colored logs, debug level)
//	./previewd -dev
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
