package export

import (
	"fmt"
	"image"
	"image/color"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/MeKo-Tech/seedtrace/internal/blob"
	"github.com/MeKo-Tech/seedtrace/internal/raster"
	"github.com/MeKo-Tech/seedtrace/internal/trace"
)

// OverlayOptions control contour overlays.
type OverlayOptions struct {
	Outer color.NRGBA
	Hole  color.NRGBA
	// Scale enlarges the result with nearest-neighbour sampling.
	Scale int
}

// DefaultOverlayOptions draws outer contours red and holes blue at 1x.
func DefaultOverlayOptions() OverlayOptions {
	return OverlayOptions{
		Outer: color.NRGBA{R: 255, A: 255},
		Hole:  color.NRGBA{B: 255, A: 255},
		Scale: 1,
	}
}

// ParseHexColor accepts "#rrggbb" or "rrggbb".
func ParseHexColor(s string) (color.NRGBA, error) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return color.NRGBA{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}

// Overlay draws the contours of r on top of base. When base is nil the
// binary image is rendered as background instead.
func Overlay(base image.Image, bin trace.Image, r *blob.Result, opts OverlayOptions) *image.NRGBA {
	var dst *image.NRGBA
	if base != nil {
		dst = imaging.Clone(base)
	} else {
		dst = imaging.Clone(raster.ToImage(bin))
	}

	for _, c := range r.Contours {
		col := opts.Outer
		if c.Polarity == blob.Hole {
			col = opts.Hole
		}
		drawPoints(dst, c.Points, col)
	}

	if opts.Scale > 1 {
		b := dst.Bounds()
		dst = imaging.Resize(dst, b.Dx()*opts.Scale, b.Dy()*opts.Scale, imaging.NearestNeighbor)
	}
	return dst
}

// OverlayTrace draws a single contour.
func OverlayTrace(bin trace.Image, points trace.Contour, opts OverlayOptions) *image.NRGBA {
	r := &blob.Result{
		Width:    bin.Width(),
		Height:   bin.Height(),
		Contours: []blob.Contour{{Polarity: blob.Outer, Points: points}},
	}
	return Overlay(nil, bin, r, opts)
}

func drawPoints(dst *image.NRGBA, points trace.Contour, col color.NRGBA) {
	b := dst.Bounds()
	for _, p := range points {
		x, y := b.Min.X+p.X, b.Min.Y+p.Y
		if image.Pt(x, y).In(b) {
			dst.SetNRGBA(x, y, col)
		}
	}
}
