package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/MeKo-Tech/seedtrace/internal/blob"
	"github.com/MeKo-Tech/seedtrace/internal/export"
	"github.com/MeKo-Tech/seedtrace/internal/imageio"
	"github.com/MeKo-Tech/seedtrace/internal/trace"
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
		Verbose:  false,
		Trace: TraceConfig{
			Holes:     true,
			MinPixels: 1,
		},
		Image: ImageConfig{
			Threshold: 128,
		},
		Output: OutputConfig{
			Format:       "text",
			OverlayColor: "#FF0000",
			HoleColor:    "#0000FF",
			OverlayScale: 1,
		},
		Server: ServerConfig{
			Host:            "localhost",
			Port:            8080,
			CORSOrigin:      "*",
			MaxUploadMB:     50,
			TimeoutSec:      30,
			ShutdownTimeout: 10,
			ChunkSize:       256,
		},
		Batch: BatchConfig{
			Workers:         4,
			ContinueOnError: false,
		},
	}
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.LogLevel, strings.Join(validLogLevels, ", "))
	}

	if c.Output.Format != "" && !export.IsValidFormat(c.Output.Format) {
		return fmt.Errorf("invalid output format: %s (must be one of: %s)", c.Output.Format, strings.Join(export.Formats, ", "))
	}
	if _, err := export.ParseHexColor(c.Output.OverlayColor); err != nil {
		return fmt.Errorf("invalid output.overlay_color: %w", err)
	}
	if _, err := export.ParseHexColor(c.Output.HoleColor); err != nil {
		return fmt.Errorf("invalid output.hole_color: %w", err)
	}
	if c.Output.OverlayScale < 1 || c.Output.OverlayScale > 32 {
		return fmt.Errorf("invalid overlay scale: %d (must be between 1 and 32)", c.Output.OverlayScale)
	}

	if c.Image.Threshold < 0 || c.Image.Threshold > 255 {
		return fmt.Errorf("invalid image threshold: %d (must be between 0 and 255)", c.Image.Threshold)
	}
	if c.Trace.MaxLength < 0 {
		return fmt.Errorf("invalid trace max length: %d (must not be negative)", c.Trace.MaxLength)
	}
	if c.Trace.MinPixels < 0 {
		return fmt.Errorf("invalid trace min pixels: %d (must not be negative)", c.Trace.MinPixels)
	}
	if c.Trace.Simplify < 0 {
		return fmt.Errorf("invalid trace simplify tolerance: %g (must not be negative)", c.Trace.Simplify)
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be between 1 and 65535)", c.Server.Port)
	}
	if c.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("invalid max upload size: %d (must be positive)", c.Server.MaxUploadMB)
	}
	if c.Server.TimeoutSec <= 0 {
		return fmt.Errorf("invalid timeout: %d (must be positive)", c.Server.TimeoutSec)
	}
	if c.Server.ChunkSize <= 0 {
		return fmt.Errorf("invalid chunk size: %d (must be positive)", c.Server.ChunkSize)
	}
	if c.Batch.Workers <= 0 {
		return fmt.Errorf("invalid batch workers: %d (must be positive)", c.Batch.Workers)
	}

	return nil
}

// ToBlobConfig converts the tracing section for blob extraction.
func (c *Config) ToBlobConfig() blob.Config {
	return blob.Config{
		Clockwise:      c.Trace.Clockwise,
		SuppressBorder: c.Trace.SuppressBorder,
		ChainApprox:    c.Trace.ChainApprox,
		Holes:          c.Trace.Holes,
		MinPixels:      c.Trace.MinPixels,
		MaxLength:      c.Trace.MaxLength,
		Simplify:       c.Trace.Simplify,
		Hull:           c.Trace.Hull,
	}
}

// ToTraceOptions converts the tracing section for a single seeded trace.
func (c *Config) ToTraceOptions() trace.Options {
	return trace.Options{
		Dir:            trace.AutoDirection,
		Clockwise:      c.Trace.Clockwise,
		SuppressBorder: c.Trace.SuppressBorder,
		Stop:           trace.StopSpec{MaxLength: c.Trace.MaxLength},
	}
}

// ToBinarizeOptions converts the image section.
func (c *Config) ToBinarizeOptions() imageio.BinarizeOptions {
	return imageio.BinarizeOptions{
		Threshold: uint8(c.Image.Threshold), //nolint:gosec // validated to 0..255
		Invert:    c.Image.Invert,
		Packed:    c.Image.Packed,
	}
}

// ToOverlayOptions converts the output section. Invalid colors fall back to
// the defaults.
func (c *Config) ToOverlayOptions() export.OverlayOptions {
	opts := export.DefaultOverlayOptions()
	if col, err := export.ParseHexColor(c.Output.OverlayColor); err == nil {
		opts.Outer = col
	}
	if col, err := export.ParseHexColor(c.Output.HoleColor); err == nil {
		opts.Hole = col
	}
	if c.Output.OverlayScale > 0 {
		opts.Scale = c.Output.OverlayScale
	}
	return opts
}
