package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Bridge metrics
	BridgeInitialized prometheus.Gauge
	BridgeEvents      *prometheus.CounterVec
	BridgeCommands    *prometheus.CounterVec
	BridgeDropped     *prometheus.CounterVec

	// WebSocket relay metrics
	WSConnections prometheus.Gauge
	WSMessages    *prometheus.CounterVec

	// Chat client metrics
	ChatRequests *prometheus.CounterVec
	ChatChunks   prometheus.Counter
}

// NewMetrics creates a collector on its own registry, so several instances
// (one per test) never collide.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "previewd_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "previewd_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),

		BridgeInitialized: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "previewd_bridge_initialized",
				Help: "1 while the preview bridge is initialized",
			},
		),
		BridgeEvents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "previewd_bridge_events_total",
				Help: "Events posted to the editor shell",
			},
			[]string{"type"},
		),
		BridgeCommands: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "previewd_bridge_commands_total",
				Help: "Trusted commands received from the editor shell",
			},
			[]string{"type"},
		),
		BridgeDropped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "previewd_bridge_dropped_total",
				Help: "Inbound messages or command arguments rejected by the bridge",
			},
			[]string{"reason"},
		),

		WSConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "previewd_ws_connections",
				Help: "Number of active shell WebSocket connections",
			},
		),
		WSMessages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "previewd_ws_messages_total",
				Help: "Total number of relayed WebSocket messages",
			},
			[]string{"direction"},
		),

		ChatRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "previewd_chat_requests_total",
				Help: "Chat completion requests by mode and outcome",
			},
			[]string{"mode", "status"},
		),
		ChatChunks: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "previewd_chat_stream_chunks_total",
				Help: "Streamed content chunks delivered",
			},
		),
	}
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler exposes the registry in Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// SetBridgeInitialized flips the initialized gauge
func (m *Metrics) SetBridgeInitialized(initialized bool) {
	if m == nil {
		return
	}
	if initialized {
		m.BridgeInitialized.Set(1)
	} else {
		m.BridgeInitialized.Set(0)
	}
}

// RecordBridgeEvent counts an outbound event
func (m *Metrics) RecordBridgeEvent(eventType string) {
	if m == nil {
		return
	}
	m.BridgeEvents.WithLabelValues(eventType).Inc()
}

// RecordBridgeCommand counts a trusted inbound command
func (m *Metrics) RecordBridgeCommand(commandType string) {
	if m == nil {
		return
	}
	m.BridgeCommands.WithLabelValues(commandType).Inc()
}

// RecordBridgeDropped counts a rejected inbound message
func (m *Metrics) RecordBridgeDropped(reason string) {
	if m == nil {
		return
	}
	m.BridgeDropped.WithLabelValues(reason).Inc()
}

// RecordWSMessage records a relayed WebSocket message
func (m *Metrics) RecordWSMessage(direction string) {
	if m == nil {
		return
	}
	m.WSMessages.WithLabelValues(direction).Inc()
}

// IncWSConnections increments WebSocket connections
func (m *Metrics) IncWSConnections() {
	if m == nil {
		return
	}
	m.WSConnections.Inc()
}

// DecWSConnections decrements WebSocket connections
func (m *Metrics) DecWSConnections() {
	if m == nil {
		return
	}
	m.WSConnections.Dec()
}

// RecordChatRequest counts a chat request outcome
func (m *Metrics) RecordChatRequest(mode, status string) {
	if m == nil {
		return
	}
	m.ChatRequests.WithLabelValues(mode, status).Inc()
}

// IncChatChunks counts a streamed chunk
func (m *Metrics) IncChatChunks() {
	if m == nil {
		return
	}
	m.ChatChunks.Inc()
}
