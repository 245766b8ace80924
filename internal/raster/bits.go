package raster

import "github.com/MeKo-Tech/seedtrace/internal/trace"

// Bits stores one bit per pixel, least significant bit first. Stride is
// measured in pixels: pixel (x, y) is bit x + y*Stride of Data.
type Bits struct {
	Data   []byte
	Stride int
	W, H   int
}

// NewBits wraps packed data.
func NewBits(data []byte, width, height, stride int) (*Bits, error) {
	if err := checkLayout("bits", len(data)*8, width, height, stride); err != nil {
		return nil, err
	}
	return &Bits{Data: data, Stride: stride, W: width, H: height}, nil
}

// PackBits copies any accessor into a tightly packed bit raster.
func PackBits(img trace.Image) *Bits {
	w, h := img.Width(), img.Height()
	b := &Bits{Data: make([]byte, (w*h+7)/8), Stride: w, W: w, H: h}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if img.IsForeground(x, y) {
				b.Set(x, y, true)
			}
		}
	}
	return b
}

func (b *Bits) Width() int  { return b.W }
func (b *Bits) Height() int { return b.H }

func (b *Bits) IsForeground(x, y int) bool {
	if x < 0 || y < 0 || x >= b.W || y >= b.H {
		return false
	}
	i := x + y*b.Stride
	return b.Data[i>>3]&(1<<uint(i&7)) != 0
}

func (b *Bits) Set(x, y int, on bool) {
	if x < 0 || y < 0 || x >= b.W || y >= b.H {
		return
	}
	i := x + y*b.Stride
	if on {
		b.Data[i>>3] |= 1 << uint(i&7)
	} else {
		b.Data[i>>3] &^= 1 << uint(i&7)
	}
}
