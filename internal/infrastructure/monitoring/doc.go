/*
Package monitoring provides Prometheus metrics for the preview daemon.

# Overview

Each Metrics value owns a private registry, so the daemon and every test get
an independent set of collectors. Recording methods are nil-safe: components
built without metrics simply skip them.

# Metrics

  - previewd_http_requests_total / _request_duration_seconds
  - previewd_bridge_initialized, _events_total{type}, _commands_total{type},
    _dropped_total{reason}
  - previewd_ws_connections, _ws_messages_total{direction}
  - previewd_chat_requests_total{mode,status}, _chat_stream_chunks_total

# Usage

	metrics := monitoring.NewMetrics()
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
*/
package monitoring
