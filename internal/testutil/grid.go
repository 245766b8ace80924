package testutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/seedtrace/internal/raster"
	"github.com/MeKo-Tech/seedtrace/internal/trace"
)

// ParseGrid builds a raster from ASCII art. '#', 'X' and '1' are foreground,
// everything else is background. Leading and trailing blank lines and common
// indentation are ignored; rows shorter than the widest row are padded.
func ParseGrid(art string) *raster.Bytes {
	lines := strings.Split(art, "\n")
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}

	indent := -1
	for _, l := range lines {
		trimmed := strings.TrimLeft(l, " \t")
		if trimmed == "" {
			continue
		}
		if n := len(l) - len(trimmed); indent < 0 || n < indent {
			indent = n
		}
	}
	if indent < 0 {
		indent = 0
	}

	width := 0
	for i, l := range lines {
		if len(l) >= indent {
			lines[i] = l[indent:]
		} else {
			lines[i] = ""
		}
		lines[i] = strings.TrimRight(lines[i], " \t")
		if len(lines[i]) > width {
			width = len(lines[i])
		}
	}

	img := raster.NewBlank(width, len(lines))
	for y, l := range lines {
		for x, c := range l {
			img.Set(x, y, c == '#' || c == 'X' || c == '1')
		}
	}
	return img
}

// MustGrid parses art and fails the test on an empty result.
func MustGrid(t *testing.T, art string) *raster.Bytes {
	t.Helper()

	img := ParseGrid(art)
	require.Positive(t, img.Width(), "grid has no columns")
	require.Positive(t, img.Height(), "grid has no rows")
	return img
}

// Render prints img as ASCII art using '#' and '.'.
func Render(img trace.Image) string {
	var sb strings.Builder
	for y := 0; y < img.Height(); y++ {
		for x := 0; x < img.Width(); x++ {
			if img.IsForeground(x, y) {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// FirstForeground returns the first foreground pixel in raster order.
func FirstForeground(img trace.Image) (int, int, bool) {
	for y := 0; y < img.Height(); y++ {
		for x := 0; x < img.Width(); x++ {
			if img.IsForeground(x, y) {
				return x, y, true
			}
		}
	}
	return 0, 0, false
}
