package trace_test

import (
	"math/rand"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/MeKo-Tech/seedtrace/internal/raster"
	"github.com/MeKo-Tech/seedtrace/internal/synth"
	"github.com/MeKo-Tech/seedtrace/internal/testutil"
	"github.com/MeKo-Tech/seedtrace/internal/trace"
)

// outerSeed returns the topmost-leftmost foreground pixel with the edge
// facing the background above it.
func outerSeed(img *raster.Bytes, clockwise bool) (int, int, trace.Direction, bool) {
	x, y, ok := testutil.FirstForeground(img)
	if clockwise {
		return x, y, trace.Right, ok
	}
	return x, y, trace.Left, ok
}

func randomImage(w, h int, seed int64) *raster.Bytes {
	return synth.Random(rand.New(rand.NewSource(seed)), w, h, synth.DefaultRandomConfig())
}

func isSubsequence(sub, seq trace.Contour) bool {
	i := 0
	for _, p := range seq {
		if i < len(sub) && sub[i] == p {
			i++
		}
	}
	return i == len(sub)
}

func TestTrace_OuterBoundaryProperty(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("outer boundary closes with four net turns", prop.ForAll(
		func(w, h int, seed int64, cw bool) bool {
			img := randomImage(w, h, seed)
			x, y, dir, ok := outerSeed(img, cw)
			if !ok {
				return true
			}

			var c trace.Contour
			res, err := trace.Trace(&c, img, x, y, trace.Options{Dir: dir, Clockwise: cw})
			if err != nil {
				return false
			}
			return res.Complete &&
				res.Turns == 4 &&
				res.Length <= trace.UpperLimit(w, h) &&
				len(c) <= res.Length &&
				len(c) > 0
		},
		gen.IntRange(1, 40),
		gen.IntRange(1, 40),
		gen.Int64(),
		gen.Bool(),
	))

	properties.TestingRun(t)
}

func TestTracer_ResumeEquivalenceProperty(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("chunked trace equals uninterrupted trace", prop.ForAll(
		func(w, h int, seed int64, chunk int, cw, suppress bool) bool {
			img := randomImage(w, h, seed)
			x, y, dir, ok := outerSeed(img, cw)
			if !ok {
				return true
			}
			opts := trace.Options{Dir: dir, Clockwise: cw, SuppressBorder: suppress}

			var whole trace.Contour
			res, err := trace.Trace(&whole, img, x, y, opts)
			if err != nil {
				return false
			}

			tr, err := trace.NewTracer(img, x, y, opts)
			if err != nil {
				return false
			}
			var pieces trace.Contour
			for !tr.Done() {
				if _, err := tr.Next(&pieces, chunk); err != nil {
					return false
				}
			}

			if len(whole) != len(pieces) {
				return false
			}
			for i := range whole {
				if whole[i] != pieces[i] {
					return false
				}
			}
			return tr.Length() == res.Length &&
				tr.Turns() == res.Turns &&
				tr.Position() == res.Stop
		},
		gen.IntRange(1, 32),
		gen.IntRange(1, 32),
		gen.Int64(),
		gen.IntRange(1, 12),
		gen.Bool(),
		gen.Bool(),
	))

	properties.TestingRun(t)
}

func TestTrace_SuppressionSubsequenceProperty(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("suppressed output is a subsequence of full output", prop.ForAll(
		func(w, h int, seed int64, cw bool) bool {
			img := randomImage(w, h, seed)
			x, y, dir, ok := outerSeed(img, cw)
			if !ok {
				return true
			}

			var full, suppressed trace.Contour
			r1, err := trace.Trace(&full, img, x, y, trace.Options{Dir: dir, Clockwise: cw})
			if err != nil {
				return false
			}
			r2, err := trace.Trace(&suppressed, img, x, y, trace.Options{Dir: dir, Clockwise: cw, SuppressBorder: true})
			if err != nil {
				return false
			}
			return r1.Length == r2.Length &&
				r1.Turns == r2.Turns &&
				isSubsequence(suppressed, full)
		},
		gen.IntRange(1, 40),
		gen.IntRange(1, 40),
		gen.Int64(),
		gen.Bool(),
	))

	properties.TestingRun(t)
}

func TestTrace_PackedLayoutProperty(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("bit-packed raster traces like byte raster", prop.ForAll(
		func(w, h int, seed int64) bool {
			img := randomImage(w, h, seed)
			x, y, dir, ok := outerSeed(img, false)
			if !ok {
				return true
			}

			var a, b trace.Contour
			r1, err1 := trace.Trace(&a, img, x, y, trace.Options{Dir: dir})
			r2, err2 := trace.Trace(&b, raster.PackBits(img), x, y, trace.Options{Dir: dir})
			if err1 != nil || err2 != nil || r1 != r2 || len(a) != len(b) {
				return false
			}
			for i := range a {
				if a[i] != b[i] {
					return false
				}
			}
			return true
		},
		gen.IntRange(1, 40),
		gen.IntRange(1, 40),
		gen.Int64(),
	))

	properties.TestingRun(t)
}
