// Package raster provides binary image accessors for the tracer.
package raster

import (
	"image"

	"github.com/MeKo-Tech/seedtrace/internal/trace"
)

// Bytes stores one byte per pixel. Any non-zero byte is foreground.
type Bytes struct {
	Pix    []byte
	Stride int
	W, H   int
}

// NewBytes wraps pix as a width x height raster with the given row stride.
func NewBytes(pix []byte, width, height, stride int) (*Bytes, error) {
	if err := checkLayout("bytes", len(pix), width, height, stride); err != nil {
		return nil, err
	}
	return &Bytes{Pix: pix, Stride: stride, W: width, H: height}, nil
}

// NewBlank allocates a zeroed raster.
func NewBlank(width, height int) *Bytes {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Bytes{Pix: make([]byte, width*height), Stride: width, W: width, H: height}
}

// FromGray wraps an *image.Gray without copying.
func FromGray(g *image.Gray) *Bytes {
	b := g.Bounds()
	return &Bytes{
		Pix:    g.Pix[g.PixOffset(b.Min.X, b.Min.Y):],
		Stride: g.Stride,
		W:      b.Dx(),
		H:      b.Dy(),
	}
}

func (b *Bytes) Width() int  { return b.W }
func (b *Bytes) Height() int { return b.H }

func (b *Bytes) IsForeground(x, y int) bool {
	if x < 0 || y < 0 || x >= b.W || y >= b.H {
		return false
	}
	return b.Pix[y*b.Stride+x] != 0
}

// Set marks (x, y) as foreground or background. Out of range is ignored.
func (b *Bytes) Set(x, y int, on bool) {
	if x < 0 || y < 0 || x >= b.W || y >= b.H {
		return
	}
	if on {
		b.Pix[y*b.Stride+x] = 1
	} else {
		b.Pix[y*b.Stride+x] = 0
	}
}

// Count returns the number of foreground pixels.
func (b *Bytes) Count() int {
	n := 0
	for y := 0; y < b.H; y++ {
		row := b.Pix[y*b.Stride : y*b.Stride+b.W]
		for _, v := range row {
			if v != 0 {
				n++
			}
		}
	}
	return n
}

func checkLayout(op string, size, width, height, stride int) error {
	if width <= 0 || height <= 0 {
		return trace.NewError(op, trace.ErrLayout, "invalid size %dx%d", width, height)
	}
	if stride < width {
		return trace.NewError(op, trace.ErrLayout, "stride %d smaller than width %d", stride, width)
	}
	if need := (height-1)*stride + width; size < need {
		return trace.NewError(op, trace.ErrLayout, "buffer holds %d pixels, need %d", size, need)
	}
	return nil
}
