// Package export renders traced contours as JSON, YAML, CSV, text, SVG or
// PNG overlays.
package export

import (
	"fmt"
	"strings"

	"github.com/MeKo-Tech/seedtrace/internal/blob"
	"github.com/MeKo-Tech/seedtrace/internal/trace"
)

// Formats lists the accepted text output formats.
var Formats = []string{"json", "yaml", "csv", "text", "svg"}

// IsValidFormat reports whether format is one of Formats.
func IsValidFormat(format string) bool {
	for _, f := range Formats {
		if f == format {
			return true
		}
	}
	return false
}

// Document is the blob extraction output for one image.
type Document struct {
	File   string       `json:"file,omitempty" yaml:"file,omitempty"`
	Error  string       `json:"error,omitempty" yaml:"error,omitempty"`
	Result *blob.Result `json:"result,omitempty" yaml:"result,omitempty"`
}

// TraceDocument is the output of a single seeded trace.
type TraceDocument struct {
	File              string        `json:"file,omitempty" yaml:"file,omitempty"`
	Width             int           `json:"width" yaml:"width"`
	Height            int           `json:"height" yaml:"height"`
	Start             trace.Edge    `json:"start" yaml:"start"`
	Stop              trace.Edge    `json:"stop" yaml:"stop"`
	Length            int           `json:"length" yaml:"length"`
	Turns             int           `json:"turns" yaml:"turns"`
	Complete          bool          `json:"complete" yaml:"complete"`
	StartSuppressible bool          `json:"start_suppressible,omitempty" yaml:"start_suppressible,omitempty"`
	Points            trace.Contour `json:"points" yaml:"points"`
}

// NewTraceDocument fills a TraceDocument from a trace result.
func NewTraceDocument(file string, img trace.Image, res trace.Result, points trace.Contour) TraceDocument {
	if points == nil {
		points = trace.Contour{}
	}
	return TraceDocument{
		File:     file,
		Width:    img.Width(),
		Height:   img.Height(),
		Start:    res.Start,
		Stop:     res.Stop,
		Length:   res.Length,
		Turns:    res.Turns,
		Complete: res.Complete,
		Points:   points,
	}
}

// Format renders blob documents.
func Format(docs []Document, format string) (string, error) {
	switch strings.ToLower(format) {
	case "json":
		return formatJSON(struct {
			Images []Document `json:"images"`
		}{docs})
	case "yaml":
		return formatYAML(struct {
			Images []Document `yaml:"images"`
		}{docs})
	case "csv":
		return formatBlobCSV(docs)
	case "svg":
		if len(docs) != 1 || docs[0].Result == nil {
			return "", fmt.Errorf("svg output needs exactly one successful image, got %d", len(docs))
		}
		return SVG(docs[0].Result, "")
	case "", "text":
		return formatBlobText(docs), nil
	}
	return "", fmt.Errorf("unsupported format: %s", format)
}

// FormatTrace renders a single trace.
func FormatTrace(doc TraceDocument, format string) (string, error) {
	switch strings.ToLower(format) {
	case "json":
		return formatJSON(doc)
	case "yaml":
		return formatYAML(doc)
	case "csv":
		return formatTraceCSV(doc)
	case "svg":
		res := &blob.Result{
			Width:  doc.Width,
			Height: doc.Height,
			Contours: []blob.Contour{{
				Label:    1,
				Polarity: polarityOf(doc.Turns),
				Points:   doc.Points,
			}},
		}
		return SVG(res, "")
	case "", "text":
		return formatTraceText(doc), nil
	}
	return "", fmt.Errorf("unsupported format: %s", format)
}

func polarityOf(turns int) blob.Polarity {
	if turns < 0 {
		return blob.Hole
	}
	return blob.Outer
}
