// Package server exposes boundary tracing over HTTP and WebSocket.
package server

import (
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MeKo-Tech/seedtrace/internal/blob"
	"github.com/MeKo-Tech/seedtrace/internal/export"
	"github.com/MeKo-Tech/seedtrace/internal/imageio"
	"github.com/MeKo-Tech/seedtrace/internal/trace"
)

const defaultChunkSize = 256

// Server holds the HTTP server state and dependencies.
type Server struct {
	addr        string
	corsOrigin  string
	maxUploadMB int64
	timeoutSec  int
	chunkSize   int
	blob        blob.Config
	binarize    imageio.BinarizeOptions
	overlay     export.OverlayOptions
}

// Config holds server configuration.
type Config struct {
	Host        string
	Port        int
	CORSOrigin  string
	MaxUploadMB int64
	TimeoutSec  int
	// ChunkSize is the default number of edges per WebSocket chunk.
	ChunkSize int

	// Request defaults, overridable per request.
	Blob     blob.Config
	Binarize imageio.BinarizeOptions
	Overlay  export.OverlayOptions
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Time    string `json:"time"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Kind    string `json:"kind,omitempty"`
}

// NewServer creates a new tracing server instance.
func NewServer(config Config) (*Server, error) {
	if config.MaxUploadMB <= 0 {
		return nil, errors.New("max upload size must be positive")
	}
	if config.ChunkSize <= 0 {
		config.ChunkSize = defaultChunkSize
	}
	if config.Overlay.Scale <= 0 {
		config.Overlay = export.DefaultOverlayOptions()
	}

	return &Server{
		addr:        net.JoinHostPort(config.Host, strconv.Itoa(config.Port)),
		corsOrigin:  config.CORSOrigin,
		maxUploadMB: config.MaxUploadMB,
		timeoutSec:  config.TimeoutSec,
		chunkSize:   config.ChunkSize,
		blob:        config.Blob,
		binarize:    config.Binarize,
		overlay:     config.Overlay,
	}, nil
}

// Addr is the host:port the server listens on.
func (s *Server) Addr() string {
	return s.addr
}

// SetupRoutes configures the HTTP routes.
func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", s.corsMiddleware(s.healthHandler))
	mux.HandleFunc("/trace", s.corsMiddleware(s.withTimeout(s.traceHandler)))
	mux.HandleFunc("/blobs", s.corsMiddleware(s.withTimeout(s.blobsHandler)))
	mux.HandleFunc("/ws/trace", s.traceWebSocketHandler)
	mux.Handle("/metrics", promhttp.Handler())
}

// Handler returns a ready-to-serve handler with all routes installed.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.SetupRoutes(mux)
	return mux
}

func (s *Server) withTimeout(next http.HandlerFunc) http.HandlerFunc {
	if s.timeoutSec <= 0 {
		return next
	}
	h := http.TimeoutHandler(next, time.Duration(s.timeoutSec)*time.Second, `{"success":false,"error":"request timed out"}`)
	return h.ServeHTTP
}

// traceRequest is the decoded form of a single seeded trace.
type traceRequest struct {
	X, Y    int
	Options trace.Options
	Chain   bool
	Format  string
}
