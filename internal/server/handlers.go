package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/disintegration/imaging"

	"github.com/MeKo-Tech/seedtrace/internal/blob"
	"github.com/MeKo-Tech/seedtrace/internal/export"
	"github.com/MeKo-Tech/seedtrace/internal/imageio"
	"github.com/MeKo-Tech/seedtrace/internal/trace"
	"github.com/MeKo-Tech/seedtrace/internal/version"
)

const (
	formatJSON    = "json"
	formatOverlay = "overlay"
)

// upload is a decoded and binarized request image.
type upload struct {
	name   string
	source image.Image
	binary trace.Image
}

// healthHandler returns server health status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := HealthResponse{
		Status:  "healthy",
		Version: version.Version,
		Time:    time.Now().UTC().Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		slog.Error("Error encoding health response", "error", err)
	}
}

// traceHandler runs one seeded trace on the uploaded image.
func (s *Server) traceHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	up, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	req, err := s.parseTraceRequest(r)
	if err != nil {
		s.writeTraceError(w, err)
		return
	}

	start := time.Now()
	res, points, suppressible, err := blob.TraceSeed(up.binary, req.X, req.Y, req.Options, req.Chain)
	traceDuration.WithLabelValues("trace").Observe(time.Since(start).Seconds())
	if err != nil {
		tracesTotal.WithLabelValues("trace", "error").Inc()
		s.writeTraceError(w, err)
		return
	}
	tracesTotal.WithLabelValues("trace", outcome(res.Complete)).Inc()
	contourLength.WithLabelValues("trace").Observe(float64(res.Length))

	if req.Format == formatOverlay {
		s.writeOverlay(w, export.OverlayTrace(up.binary, points, s.overlay))
		return
	}

	doc := export.NewTraceDocument(up.name, up.binary, res, points)
	doc.StartSuppressible = suppressible
	out, err := export.FormatTrace(doc, req.Format)
	if err != nil {
		s.writeErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.writeFormatted(w, req.Format, out)
}

// blobsHandler extracts every contour of the uploaded image.
func (s *Server) blobsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	up, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	cfg, err := s.parseBlobConfig(r)
	if err != nil {
		s.writeErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	start := time.Now()
	res, err := blob.Find(up.binary, cfg)
	traceDuration.WithLabelValues("blobs").Observe(time.Since(start).Seconds())
	if err != nil {
		tracesTotal.WithLabelValues("blobs", "error").Inc()
		s.writeTraceError(w, err)
		return
	}
	for _, c := range res.Contours {
		tracesTotal.WithLabelValues("blobs", outcome(c.Closed)).Inc()
		contourLength.WithLabelValues("blobs").Observe(float64(c.Length))
	}
	contoursPerImage.Observe(float64(len(res.Contours)))

	format := requestFormat(r)
	if format == formatOverlay {
		s.writeOverlay(w, export.Overlay(up.source, up.binary, res, s.overlay))
		return
	}

	out, err := export.Format([]export.Document{{File: up.name, Result: res}}, format)
	if err != nil {
		s.writeErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.writeFormatted(w, format, out)
}

// readUpload parses the multipart body and binarizes the "image" part. It
// writes the error response itself and reports false on failure.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (upload, bool) {
	limit := s.maxUploadMB * 1024 * 1024
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	if err := r.ParseMultipartForm(limit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeErrorResponse(w, "File too large", http.StatusRequestEntityTooLarge)
		} else {
			s.writeErrorResponse(w, "Failed to parse form data", http.StatusBadRequest)
		}
		return upload{}, false
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		s.writeErrorResponse(w, "No image file provided", http.StatusBadRequest)
		return upload{}, false
	}
	defer func() { _ = file.Close() }()
	uploadSizeBytes.Observe(float64(header.Size))

	img, err := imageio.DecodeImage(file)
	if err != nil {
		s.writeErrorResponse(w, "Invalid image format", http.StatusBadRequest)
		return upload{}, false
	}

	opts, err := s.parseBinarizeOptions(r)
	if err != nil {
		s.writeErrorResponse(w, err.Error(), http.StatusBadRequest)
		return upload{}, false
	}
	bin, err := imageio.Binarize(img, opts)
	if err != nil {
		s.writeTraceError(w, err)
		return upload{}, false
	}

	return upload{name: header.Filename, source: img, binary: bin}, true
}

func (s *Server) parseBinarizeOptions(r *http.Request) (imageio.BinarizeOptions, error) {
	opts := s.binarize
	threshold, err := formInt(r, "threshold", int(opts.Threshold))
	if err != nil {
		return opts, err
	}
	if threshold < 0 || threshold > 255 {
		return opts, fmt.Errorf("threshold must be between 0 and 255, got %d", threshold)
	}
	opts.Threshold = uint8(threshold)
	if opts.Invert, err = formBool(r, "invert", opts.Invert); err != nil {
		return opts, err
	}
	return opts, nil
}

func (s *Server) parseTraceRequest(r *http.Request) (traceRequest, error) {
	req := traceRequest{Options: trace.DefaultOptions(), Format: requestFormat(r)}
	var err error

	if req.X, err = requiredInt(r, "x"); err != nil {
		return req, err
	}
	if req.Y, err = requiredInt(r, "y"); err != nil {
		return req, err
	}
	if req.Options.Dir, err = trace.ParseDirection(r.FormValue("dir")); err != nil {
		return req, err
	}
	if req.Options.Clockwise, err = formBool(r, "clockwise", s.blob.Clockwise); err != nil {
		return req, err
	}
	if req.Options.SuppressBorder, err = formBool(r, "suppress_border", s.blob.SuppressBorder); err != nil {
		return req, err
	}
	if req.Chain, err = formBool(r, "chain", s.blob.ChainApprox); err != nil {
		return req, err
	}
	if req.Options.Stop.MaxLength, err = formInt(r, "max_length", s.blob.MaxLength); err != nil {
		return req, err
	}

	stopX, stopY, stopDir := r.FormValue("stop_x"), r.FormValue("stop_y"), r.FormValue("stop_dir")
	if stopX == "" && stopY == "" && stopDir == "" {
		return req, nil
	}
	if stopX == "" || stopY == "" || stopDir == "" {
		return req, errors.New("stop_x, stop_y and stop_dir must be given together")
	}
	at := trace.Edge{}
	if at.X, err = requiredInt(r, "stop_x"); err != nil {
		return req, err
	}
	if at.Y, err = requiredInt(r, "stop_y"); err != nil {
		return req, err
	}
	if at.Dir, err = trace.ParseDirection(stopDir); err != nil {
		return req, err
	}
	if at.Dir == trace.AutoDirection {
		return req, trace.NewError("stop", trace.ErrConfiguration, "stop direction must be explicit")
	}
	req.Options.Stop.At = &at
	return req, nil
}

func (s *Server) parseBlobConfig(r *http.Request) (blob.Config, error) {
	cfg := s.blob
	var err error
	if cfg.Clockwise, err = formBool(r, "clockwise", cfg.Clockwise); err != nil {
		return cfg, err
	}
	if cfg.SuppressBorder, err = formBool(r, "suppress_border", cfg.SuppressBorder); err != nil {
		return cfg, err
	}
	if cfg.ChainApprox, err = formBool(r, "chain", cfg.ChainApprox); err != nil {
		return cfg, err
	}
	if cfg.Holes, err = formBool(r, "holes", cfg.Holes); err != nil {
		return cfg, err
	}
	if cfg.MinPixels, err = formInt(r, "min_pixels", cfg.MinPixels); err != nil {
		return cfg, err
	}
	if cfg.MaxLength, err = formInt(r, "max_length", cfg.MaxLength); err != nil {
		return cfg, err
	}
	if cfg.Simplify, err = formFloat(r, "simplify", cfg.Simplify); err != nil {
		return cfg, err
	}
	if cfg.Hull, err = formBool(r, "hull", cfg.Hull); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func requestFormat(r *http.Request) string {
	format := r.FormValue("format")
	if format == "" {
		format = r.URL.Query().Get("format")
	}
	if format == "" {
		return formatJSON
	}
	return strings.ToLower(format)
}

func requiredInt(r *http.Request, key string) (int, error) {
	v := r.FormValue(key)
	if v == "" {
		return 0, fmt.Errorf("missing %s", key)
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, v)
	}
	return n, nil
}

func formInt(r *http.Request, key string, def int) (int, error) {
	if r.FormValue(key) == "" {
		return def, nil
	}
	return requiredInt(r, key)
}

func formFloat(r *http.Request, key string, def float64) (float64, error) {
	v := r.FormValue(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def, fmt.Errorf("invalid %s: %q", key, v)
	}
	return f, nil
}

func formBool(r *http.Request, key string, def bool) (bool, error) {
	v := r.FormValue(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, fmt.Errorf("invalid %s: %q", key, v)
	}
	return b, nil
}

// statusForError maps tracing failures to HTTP status codes. Anything that
// is not a trace.Error is a malformed request.
func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, trace.ErrBounds):
		return http.StatusUnprocessableEntity, "bounds"
	case errors.Is(err, trace.ErrGeometry):
		return http.StatusUnprocessableEntity, "geometry"
	case errors.Is(err, trace.ErrConfiguration):
		return http.StatusUnprocessableEntity, "configuration"
	case errors.Is(err, trace.ErrLayout):
		return http.StatusUnprocessableEntity, "layout"
	case errors.Is(err, trace.ErrState):
		return http.StatusInternalServerError, "state"
	}
	return http.StatusBadRequest, ""
}

func (s *Server) writeTraceError(w http.ResponseWriter, err error) {
	status, kind := statusForError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: err.Error(), Kind: kind}); err != nil {
		slog.Error("Error writing error response", "error", err)
	}
}

func (s *Server) writeFormatted(w http.ResponseWriter, format, body string) {
	switch format {
	case "json":
		w.Header().Set("Content-Type", "application/json")
	case "yaml":
		w.Header().Set("Content-Type", "application/yaml")
	case "csv":
		w.Header().Set("Content-Type", "text/csv")
	case "svg":
		w.Header().Set("Content-Type", "image/svg+xml")
	default:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	}
	if _, err := w.Write([]byte(body)); err != nil {
		slog.Error("Error writing response", "error", err)
	}
}

func (s *Server) writeOverlay(w http.ResponseWriter, img image.Image) {
	w.Header().Set("Content-Type", "image/png")
	if err := imaging.Encode(w, img, imaging.PNG); err != nil {
		slog.Error("Error encoding overlay", "error", err)
	}
}

// writeErrorResponse writes a JSON error response.
func (s *Server) writeErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: message}); err != nil {
		slog.Error("Error writing error response", "error", err)
	}
}
