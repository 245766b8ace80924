package synth

import (
	"math/rand"

	"github.com/MeKo-Tech/seedtrace/internal/raster"
)

// RandomConfig controls Random.
type RandomConfig struct {
	// ZeroProbability is the chance of a pixel starting as background.
	ZeroProbability float64
	// JoinFraction is the share of pixels re-decided by a 3x3 majority vote,
	// which merges noise into larger blobs.
	JoinFraction float64
}

// DefaultRandomConfig gives irregular blobs with holes and thin bridges.
func DefaultRandomConfig() RandomConfig {
	return RandomConfig{ZeroProbability: 0.65, JoinFraction: 0.1}
}

// Random fills a width x height raster from rng.
func Random(rng *rand.Rand, width, height int, cfg RandomConfig) *raster.Bytes {
	img := raster.NewBlank(width, height)
	for i := range img.Pix {
		if rng.Float64() >= cfg.ZeroProbability {
			img.Pix[i] = 1
		}
	}

	for todo := int(float64(width*height) * cfg.JoinFraction); todo > 0; todo-- {
		x := rng.Intn(width)
		y := rng.Intn(height)

		sum, count := 0, 0
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				nx, ny := x+dx, y+dy
				if nx < 0 || ny < 0 || nx >= width || ny >= height {
					continue
				}
				if img.IsForeground(nx, ny) {
					sum++
				}
				count++
			}
		}
		img.Set(x, y, sum*2 > count)
	}
	return img
}
