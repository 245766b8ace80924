package batch

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/MeKo-Tech/seedtrace/internal/blob"
	"github.com/MeKo-Tech/seedtrace/internal/export"
	"github.com/MeKo-Tech/seedtrace/internal/imageio"
)

// Config holds all configuration for batch processing.
type Config struct {
	// Extraction settings
	Blob     blob.Config
	Binarize imageio.BinarizeOptions

	// Parallel processing settings
	Workers int

	// File discovery settings
	Recursive       bool
	IncludePatterns []string
	ExcludePatterns []string

	// ContinueOnError records per-file failures in the result instead of
	// aborting the batch.
	ContinueOnError bool

	// Overlay settings; no overlays are written when OverlayDir is empty.
	OverlayDir string
	Overlay    export.OverlayOptions

	// Progress is optional.
	Progress ProgressCallback
}

// DefaultConfig mirrors the configuration file defaults.
func DefaultConfig() *Config {
	return &Config{
		Blob:     blob.DefaultConfig(),
		Binarize: imageio.DefaultBinarizeOptions(),
		Workers:  4,
		Overlay:  export.DefaultOverlayOptions(),
	}
}

// Result holds the result of batch processing.
type Result struct {
	Documents   []export.Document
	ImagePaths  []string
	Duration    time.Duration
	WorkerCount int
	Failed      int
}

// FormatResults formats the batch processing results in the specified format.
func (r *Result) FormatResults(format string) (string, error) {
	return export.Format(r.Documents, format)
}

// SaveResults writes the formatted results to outputFile, or to w when no
// file is given.
func (r *Result) SaveResults(w io.Writer, format, outputFile string) error {
	output, err := r.FormatResults(format)
	if err != nil {
		return fmt.Errorf("failed to format results: %w", err)
	}

	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(output), 0o600); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		return nil
	}

	_, err = fmt.Fprint(w, output)
	return err
}

// PrintStats prints processing statistics.
func (r *Result) PrintStats(w io.Writer) {
	contours, holes := 0, 0
	for _, doc := range r.Documents {
		if doc.Result == nil {
			continue
		}
		contours += len(doc.Result.Contours)
		holes += len(doc.Result.Holes())
	}

	_, _ = fmt.Fprintf(w, "\nProcessing Statistics:\n")
	_, _ = fmt.Fprintf(w, "  Total images: %d\n", len(r.ImagePaths))
	_, _ = fmt.Fprintf(w, "  Processed: %d\n", len(r.ImagePaths)-r.Failed)
	_, _ = fmt.Fprintf(w, "  Failed: %d\n", r.Failed)
	_, _ = fmt.Fprintf(w, "  Contours: %d (%d holes)\n", contours, holes)
	_, _ = fmt.Fprintf(w, "  Workers: %d\n", r.WorkerCount)
	_, _ = fmt.Fprintf(w, "  Duration: %v\n", r.Duration.Round(time.Millisecond))
	if n := len(r.ImagePaths); n > 0 {
		_, _ = fmt.Fprintf(w, "  Avg per image: %v\n", (r.Duration / time.Duration(n)).Round(time.Microsecond))
	}
}
