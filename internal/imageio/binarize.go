package imageio

import (
	"errors"
	"image"

	"github.com/MeKo-Tech/seedtrace/internal/raster"
	"github.com/MeKo-Tech/seedtrace/internal/trace"
)

// BinarizeOptions select how a decoded image becomes a binary raster.
type BinarizeOptions struct {
	// Threshold: pixels darker than this are foreground.
	Threshold uint8
	// Invert treats light pixels as foreground.
	Invert bool
	// Packed stores the result one bit per pixel.
	Packed bool
}

// DefaultBinarizeOptions selects dark ink on light paper.
func DefaultBinarizeOptions() BinarizeOptions {
	return BinarizeOptions{Threshold: 128}
}

// Binarize converts img into a tracer accessor.
func Binarize(img image.Image, opts BinarizeOptions) (trace.Image, error) {
	if img == nil {
		return nil, &ImageProcessingError{Operation: "binarize", Err: errors.New("input image is nil")}
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, &ImageProcessingError{Operation: "binarize", Err: errors.New("image has no pixels")}
	}

	bytes := raster.Binarize(img, opts.Threshold, opts.Invert)
	if opts.Packed {
		return raster.PackBits(bytes), nil
	}
	return bytes, nil
}

// LoadBinary loads path and binarizes it in one step.
func LoadBinary(path string, opts BinarizeOptions) (trace.Image, ImageMetadata, error) {
	img, meta, err := LoadImage(path)
	if err != nil {
		return nil, meta, err
	}
	bin, err := Binarize(img, opts)
	if err != nil {
		return nil, meta, err
	}
	return bin, meta, nil
}
