// Package batch extracts contours from many image files with a worker pool.
package batch

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/MeKo-Tech/seedtrace/internal/blob"
	"github.com/MeKo-Tech/seedtrace/internal/export"
	"github.com/MeKo-Tech/seedtrace/internal/imageio"
	"github.com/MeKo-Tech/seedtrace/internal/trace"
)

// ErrNoImages is returned when discovery finds nothing to process.
var ErrNoImages = errors.New("no image files found")

type loadedImage struct {
	doc   int
	orig  image.Image
	image trace.Image
}

// ProcessBatch discovers, binarizes and traces every image named by paths.
func ProcessBatch(ctx context.Context, paths []string, config *Config) (*Result, error) {
	if config == nil {
		config = DefaultConfig()
	}

	files, err := DiscoverImageFiles(paths, config.Recursive, config.IncludePatterns, config.ExcludePatterns)
	if err != nil {
		return nil, fmt.Errorf("failed to discover image files: %w", err)
	}
	if len(files) == 0 {
		return nil, ErrNoImages
	}

	progress := config.Progress
	if progress == nil {
		progress = NoOpProgressCallback{}
	}

	start := time.Now()
	progress.OnStart(len(files))

	res := &Result{
		Documents:   make([]export.Document, len(files)),
		ImagePaths:  files,
		WorkerCount: config.Workers,
	}

	loaded := make([]loadedImage, 0, len(files))
	for i, path := range files {
		res.Documents[i].File = path
		orig, bin, err := loadBinary(path, config.Binarize)
		if err != nil {
			if !config.ContinueOnError {
				return nil, err
			}
			res.Documents[i].Error = err.Error()
			res.Failed++
			progress.OnError(i, err)
			slog.Warn("skipping image", "file", path, "error", err)
			continue
		}
		li := loadedImage{doc: i, image: bin}
		if config.OverlayDir != "" {
			li.orig = orig
		}
		loaded = append(loaded, li)
	}

	if len(loaded) > 0 {
		if err := traceLoaded(ctx, loaded, config, res, progress); err != nil {
			return nil, err
		}
	}

	progress.OnComplete()
	res.Duration = time.Since(start)
	slog.Info("batch finished",
		"images", len(files),
		"failed", res.Failed,
		"duration", res.Duration.Round(time.Millisecond),
	)
	return res, nil
}

func loadBinary(path string, opts imageio.BinarizeOptions) (image.Image, trace.Image, error) {
	img, _, err := imageio.LoadImage(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	bin, err := imageio.Binarize(img, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to binarize %s: %w", path, err)
	}
	return img, bin, nil
}

func traceLoaded(ctx context.Context, loaded []loadedImage, config *Config, res *Result, progress ProgressCallback) error {
	images := make([]trace.Image, len(loaded))
	for i, li := range loaded {
		images[i] = li.image
	}

	failed := make(map[int]error)
	pc := blob.ParallelConfig{
		MaxWorkers: config.Workers,
		Progress: func(done, _ int) {
			progress.OnProgress(res.Failed+done, len(res.Documents))
		},
		OnError: func(index int, err error) {
			failed[index] = err
		},
	}

	results, err := blob.FindAll(ctx, images, config.Blob, pc)
	if err != nil && (!config.ContinueOnError || results == nil) {
		return fmt.Errorf("batch processing failed: %w", err)
	}

	for i, li := range loaded {
		doc := &res.Documents[li.doc]
		if ferr, ok := failed[i]; ok {
			doc.Error = ferr.Error()
			res.Failed++
			progress.OnError(li.doc, ferr)
			continue
		}
		doc.Result = results[i]

		if config.OverlayDir != "" {
			if err := writeOverlay(li, doc, config); err != nil {
				slog.Warn("failed to write overlay", "file", doc.File, "error", err)
			}
		}
	}
	return nil
}

func writeOverlay(li loadedImage, doc *export.Document, config *Config) error {
	ov := export.Overlay(li.orig, li.image, doc.Result, config.Overlay)
	base := filepath.Base(doc.File)
	outPath := filepath.Join(config.OverlayDir, strings.TrimSuffix(base, filepath.Ext(base))+"_overlay.png")
	return imageio.SaveImage(ov, outPath)
}
