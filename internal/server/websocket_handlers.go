package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/MeKo-Tech/seedtrace/internal/imageio"
	"github.com/MeKo-Tech/seedtrace/internal/trace"
)

// WebSocket upgrader with reasonable defaults.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Stream message types.
const (
	MessageChunk = "chunk"
	MessageDone  = "done"
	MessageError = "error"
)

// TraceStreamRequest starts a chunked trace. Image carries the encoded file
// (base64 in JSON).
type TraceStreamRequest struct {
	Image          []byte `json:"image"`
	X              int    `json:"x"`
	Y              int    `json:"y"`
	Dir            string `json:"dir,omitempty"`
	Clockwise      bool   `json:"clockwise,omitempty"`
	SuppressBorder bool   `json:"suppress_border,omitempty"`
	MaxLength      int    `json:"max_length,omitempty"`
	Chunk          int    `json:"chunk,omitempty"`
	Threshold      *int   `json:"threshold,omitempty"`
	Invert         bool   `json:"invert,omitempty"`
}

// StreamMessage is sent for every chunk, once at the end, or on failure.
type StreamMessage struct {
	Type      string        `json:"type"`
	Points    trace.Contour `json:"points,omitempty"`
	Start     *trace.Edge   `json:"start,omitempty"`
	Stop      *trace.Edge   `json:"stop,omitempty"`
	Length    int           `json:"length"`
	Turns     int           `json:"turns"`
	Closed    bool          `json:"closed,omitempty"`
	Error     string        `json:"error,omitempty"`
	ErrorType string        `json:"error_type,omitempty"`
}

// WebSocketConnWriter is an interface for writing WebSocket messages.
type WebSocketConnWriter interface {
	WriteMessage(messageType int, data []byte) error
}

// traceWebSocketHandler streams chunked traces over a WebSocket.
func (s *Server) traceWebSocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("Failed to upgrade connection to WebSocket", "error", err)
		return
	}
	defer func() {
		_ = conn.Close()
	}()

	websocketConnections.Inc()
	defer websocketConnections.Dec()

	slog.Info("WebSocket connection established", "remote_addr", r.RemoteAddr)
	s.handleWebSocketConnection(conn)
}

func (s *Server) handleWebSocketConnection(conn *websocket.Conn) {
	_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(10*time.Second)); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}()

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Error("WebSocket error", "error", err)
			}
			return
		}
		websocketMessagesTotal.WithLabelValues("received").Inc()

		if messageType == websocket.TextMessage {
			s.handleWebSocketMessage(conn, data)
		}
	}
}

func (s *Server) handleWebSocketMessage(conn WebSocketConnWriter, data []byte) {
	var req TraceStreamRequest
	if err := json.Unmarshal(data, &req); err != nil {
		s.sendWebSocketError(conn, "invalid_request", fmt.Sprintf("Failed to parse request: %v", err))
		return
	}
	s.streamTrace(conn, req)
}

// streamTrace decodes the request image and sends one chunk message per
// Tracer.Next call followed by a done message.
func (s *Server) streamTrace(conn WebSocketConnWriter, req TraceStreamRequest) {
	if len(req.Image) == 0 {
		s.sendWebSocketError(conn, "invalid_request", "No image data provided")
		return
	}
	img, err := imageio.DecodeImage(bytes.NewReader(req.Image))
	if err != nil {
		s.sendWebSocketError(conn, "invalid_request", fmt.Sprintf("Failed to decode image: %v", err))
		return
	}

	binOpts := s.binarize
	binOpts.Invert = req.Invert
	if req.Threshold != nil {
		if *req.Threshold < 0 || *req.Threshold > 255 {
			s.sendWebSocketError(conn, "invalid_request", "threshold must be between 0 and 255")
			return
		}
		binOpts.Threshold = uint8(*req.Threshold)
	}
	bin, err := imageio.Binarize(img, binOpts)
	if err != nil {
		s.sendTraceError(conn, err)
		return
	}

	dir, err := trace.ParseDirection(req.Dir)
	if err != nil {
		s.sendTraceError(conn, err)
		return
	}
	opts := trace.Options{
		Dir:            dir,
		Clockwise:      req.Clockwise,
		SuppressBorder: req.SuppressBorder,
		Stop:           trace.StopSpec{MaxLength: req.MaxLength},
	}

	tracer, err := trace.NewTracer(bin, req.X, req.Y, opts)
	if err != nil {
		tracesTotal.WithLabelValues("websocket", "error").Inc()
		s.sendTraceError(conn, err)
		return
	}

	chunk := req.Chunk
	if chunk <= 0 {
		chunk = s.chunkSize
	}

	start := time.Now()
	for !tracer.Done() {
		var points trace.Contour
		res, err := tracer.Next(&points, chunk)
		if err != nil {
			tracesTotal.WithLabelValues("websocket", "error").Inc()
			s.sendTraceError(conn, err)
			return
		}
		stop := res.Stop
		if err := s.sendWebSocketMessage(conn, StreamMessage{
			Type:   MessageChunk,
			Points: points,
			Stop:   &stop,
			Length: tracer.Length(),
			Turns:  tracer.Turns(),
		}); err != nil {
			return
		}
	}
	traceDuration.WithLabelValues("websocket").Observe(time.Since(start).Seconds())
	tracesTotal.WithLabelValues("websocket", outcome(tracer.Closed())).Inc()
	contourLength.WithLabelValues("websocket").Observe(float64(tracer.Length()))

	first, last := tracer.Start(), tracer.Position()
	_ = s.sendWebSocketMessage(conn, StreamMessage{
		Type:   MessageDone,
		Start:  &first,
		Stop:   &last,
		Length: tracer.Length(),
		Turns:  tracer.Turns(),
		Closed: tracer.Closed(),
	})
}

// sendWebSocketMessage sends a message over WebSocket.
func (s *Server) sendWebSocketMessage(conn WebSocketConnWriter, msg StreamMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("Failed to marshal WebSocket message", "error", err)
		return err
	}

	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		slog.Error("Failed to send WebSocket message", "error", err)
		return err
	}

	websocketMessagesTotal.WithLabelValues("sent").Inc()
	return nil
}

func (s *Server) sendTraceError(conn WebSocketConnWriter, err error) {
	_, kind := statusForError(err)
	if kind == "" {
		kind = "invalid_request"
	}
	s.sendWebSocketError(conn, kind, err.Error())
}

// sendWebSocketError sends an error message over WebSocket.
func (s *Server) sendWebSocketError(conn WebSocketConnWriter, errorType, message string) {
	_ = s.sendWebSocketMessage(conn, StreamMessage{
		Type:      MessageError,
		Error:     message,
		ErrorType: errorType,
	})
}
