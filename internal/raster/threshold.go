package raster

import "github.com/MeKo-Tech/seedtrace/internal/trace"

// Threshold stores one byte per pixel; a pixel is foreground when its value
// is strictly greater than Level.
type Threshold struct {
	Pix    []byte
	Stride int
	W, H   int
	Level  byte
}

// NewThreshold wraps pix as a thresholded raster.
func NewThreshold(pix []byte, width, height, stride int, level byte) (*Threshold, error) {
	if err := checkLayout("threshold", len(pix), width, height, stride); err != nil {
		return nil, err
	}
	return &Threshold{Pix: pix, Stride: stride, W: width, H: height, Level: level}, nil
}

func (t *Threshold) Width() int  { return t.W }
func (t *Threshold) Height() int { return t.H }

func (t *Threshold) IsForeground(x, y int) bool {
	if x < 0 || y < 0 || x >= t.W || y >= t.H {
		return false
	}
	return t.Pix[y*t.Stride+x] > t.Level
}

var _ trace.Image = (*Threshold)(nil)
