package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seedtrace_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "seedtrace_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Tracing metrics
	tracesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seedtrace_traces_total",
			Help: "Total number of traces by outcome",
		},
		[]string{"type", "outcome"}, // type: trace, blobs, websocket; outcome: closed, open, error
	)

	traceDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "seedtrace_trace_duration_seconds",
			Help:    "Tracing duration in seconds",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1, 5},
		},
		[]string{"type"},
	)

	contourLength = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "seedtrace_contour_length",
			Help:    "Number of edges visited per contour",
			Buckets: prometheus.ExponentialBuckets(4, 4, 10),
		},
		[]string{"type"},
	)

	contoursPerImage = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "seedtrace_contours_per_image",
			Help:    "Number of contours extracted per /blobs request",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 1000},
		},
	)

	// File upload metrics
	uploadSizeBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "seedtrace_upload_size_bytes",
			Help:    "Size of uploaded files in bytes",
			Buckets: []float64{1024, 10 * 1024, 100 * 1024, 1024 * 1024, 10 * 1024 * 1024, 50 * 1024 * 1024, 100 * 1024 * 1024},
		},
	)

	// WebSocket metrics
	websocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "seedtrace_websocket_active_connections",
			Help: "Number of active WebSocket connections",
		},
	)

	websocketMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seedtrace_websocket_messages_total",
			Help: "Total number of WebSocket messages",
		},
		[]string{"direction"}, // direction: sent, received
	)
)

func outcome(closed bool) string {
	if closed {
		return "closed"
	}
	return "open"
}
