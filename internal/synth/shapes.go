// Package synth generates binary rasters for tests, benchmarks and the
// generate command.
package synth

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/MeKo-Tech/seedtrace/internal/raster"
)

// Ring draws a square ring of the given thickness with a single foreground
// pixel in the middle of its hole. size must leave room for a background
// gap between ring and island.
func Ring(size, thickness int) *raster.Bytes {
	img := raster.NewBlank(size, size)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			edge := min(x, y, size-1-x, size-1-y)
			if edge < thickness {
				img.Set(x, y, true)
			}
		}
	}
	if size-2*thickness >= 3 {
		img.Set(size/2, size/2, true)
	}
	return img
}

// Snake draws a serpentine of one pixel wide rows joined at alternating
// ends. Its contour visits almost every pixel twice, close to the worst
// case for trace length.
func Snake(width, height int) *raster.Bytes {
	img := raster.NewBlank(width, height)
	for y := 0; y < height; y += 2 {
		for x := 0; x < width; x++ {
			img.Set(x, y, true)
		}
		if y+1 < height {
			if (y/2)%2 == 0 {
				img.Set(width-1, y+1, true)
			} else {
				img.Set(0, y+1, true)
			}
		}
	}
	return img
}

// Checkerboard sets every pixel where x+y is even. All foreground pixels are
// diagonal neighbors, so the whole board is one 8-connected component.
func Checkerboard(width, height int) *raster.Bytes {
	img := raster.NewBlank(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, (x+y)%2 == 0)
		}
	}
	return img
}

// Disk draws a filled circle centered in a width x height raster.
func Disk(width, height, radius int) *raster.Bytes {
	img := raster.NewBlank(width, height)
	cx, cy := width/2, height/2
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy <= radius*radius {
				img.Set(x, y, true)
			}
		}
	}
	return img
}

// Generator builds a raster of roughly the requested size.
type Generator func(rng *rand.Rand, width, height int) *raster.Bytes

var catalog = map[string]Generator{
	"random": func(rng *rand.Rand, w, h int) *raster.Bytes {
		return Random(rng, w, h, DefaultRandomConfig())
	},
	"ring": func(_ *rand.Rand, w, h int) *raster.Bytes {
		size := min(w, h)
		return Ring(size, max(1, size/8))
	},
	"snake": func(_ *rand.Rand, w, h int) *raster.Bytes {
		return Snake(w, h)
	},
	"checkerboard": func(_ *rand.Rand, w, h int) *raster.Bytes {
		return Checkerboard(w, h)
	},
	"disk": func(_ *rand.Rand, w, h int) *raster.Bytes {
		return Disk(w, h, min(w, h)/3)
	},
}

// Names lists the registered generators in sorted order.
func Names() []string {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the named generator.
func Lookup(name string) (Generator, error) {
	gen, ok := catalog[name]
	if !ok {
		return nil, fmt.Errorf("unknown shape %q (available: %v)", name, Names())
	}
	return gen, nil
}
