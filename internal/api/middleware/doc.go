// Package middleware provides the gin middleware of the preview daemon:
// CORS restricted to the shell origin and per-IP rate limiting.
package middleware
