// Package http implements the HTTP handlers of the preview daemon.
//
// Endpoints:
//   - GET /health: daemon and bridge status
//   - GET /preview/state: bridge state
//   - GET /preview/map: pickable elements with their geometry
//   - POST /preview/input: simulate mousemove, click, keydown or a page error
package http
