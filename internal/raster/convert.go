package raster

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"

	"github.com/MeKo-Tech/seedtrace/internal/trace"
)

// ThresholdFunc decides whether a colour is foreground.
type ThresholdFunc func(c color.Color) bool

// DarkerThan returns a ThresholdFunc that marks pixels with luminance below
// level as foreground.
func DarkerThan(level uint8) ThresholdFunc {
	return func(c color.Color) bool {
		g := color.GrayModel.Convert(c).(color.Gray)
		return g.Y < level
	}
}

// BrighterThan marks pixels with luminance above level as foreground.
func BrighterThan(level uint8) ThresholdFunc {
	return func(c color.Color) bool {
		g := color.GrayModel.Convert(c).(color.Gray)
		return g.Y > level
	}
}

// FromImage binarizes img with fn.
func FromImage(img image.Image, fn ThresholdFunc) *Bytes {
	b := img.Bounds()
	out := NewBlank(b.Dx(), b.Dy())
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			if fn(img.At(b.Min.X+x, b.Min.Y+y)) {
				out.Pix[y*out.Stride+x] = 1
			}
		}
	}
	return out
}

// Binarize converts img to grayscale and keeps pixels darker than level
// (brighter when invert is set).
func Binarize(img image.Image, level uint8, invert bool) *Bytes {
	gray := imaging.Grayscale(img)
	if invert {
		gray = imaging.Invert(gray)
	}
	out := NewBlank(gray.Rect.Dx(), gray.Rect.Dy())
	for y := 0; y < out.H; y++ {
		row := gray.Pix[y*gray.Stride:]
		for x := 0; x < out.W; x++ {
			if row[x*4] < level {
				out.Pix[y*out.Stride+x] = 1
			}
		}
	}
	return out
}

// ToImage renders the raster as black foreground on white.
func ToImage(img trace.Image) *image.Gray {
	g := image.NewGray(image.Rect(0, 0, img.Width(), img.Height()))
	for y := 0; y < img.Height(); y++ {
		for x := 0; x < img.Width(); x++ {
			if img.IsForeground(x, y) {
				g.Pix[y*g.Stride+x] = 0
			} else {
				g.Pix[y*g.Stride+x] = 255
			}
		}
	}
	return g
}
