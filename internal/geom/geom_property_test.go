package geom

import (
	"math"
	"slices"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/MeKo-Tech/seedtrace/internal/trace"
)

func genPoint() gopter.Gen {
	return gopter.CombineGens(
		gen.IntRange(0, 50),
		gen.IntRange(0, 50),
	).Map(func(vals []interface{}) trace.Point {
		return trace.Point{X: vals[0].(int), Y: vals[1].(int)}
	})
}

func genContour() gopter.Gen {
	return gen.SliceOfN(24, genPoint()).Map(func(pts []trace.Point) trace.Contour {
		return trace.Contour(pts)
	})
}

func TestSimplifyProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("simplified contour is an ordered subset keeping both ends", prop.ForAll(
		func(points trace.Contour, epsilon float64) bool {
			out := Simplify(points, epsilon)
			if len(out) > len(points) {
				return false
			}
			if out[0] != points[0] || out[len(out)-1] != points[len(points)-1] {
				return false
			}
			j := 0
			for _, p := range out {
				for j < len(points) && points[j] != p {
					j++
				}
				if j == len(points) {
					return false
				}
				j++
			}
			return true
		},
		genContour(),
		gen.Float64Range(0.1, 10),
	))

	properties.TestingRun(t)
}

func TestConvexHullProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("every point lies inside or on the hull", prop.ForAll(
		func(points trace.Contour) bool {
			hull := ConvexHull(points)
			if len(hull) < 3 {
				return true
			}
			for i := range hull {
				a, b := hull[i], hull[(i+1)%len(hull)]
				for _, p := range points {
					if cross(a, b, p) < 0 {
						return false
					}
				}
			}
			return true
		},
		genContour(),
	))

	properties.Property("hull vertices are input points", prop.ForAll(
		func(points trace.Contour) bool {
			for _, h := range ConvexHull(points) {
				if !slices.Contains(points, h) {
					return false
				}
			}
			return true
		},
		genContour(),
	))

	properties.TestingRun(t)
}

func TestMinAreaRectProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("rectangle is no larger than the axis-aligned bounding box", prop.ForAll(
		func(points trace.Contour) bool {
			minX, minY := math.MaxInt, math.MaxInt
			maxX, maxY := math.MinInt, math.MinInt
			for _, p := range points {
				minX, maxX = min(minX, p.X), max(maxX, p.X)
				minY, maxY = min(minY, p.Y), max(maxY, p.Y)
			}
			box := float64((maxX - minX) * (maxY - minY))
			return RectArea(MinAreaRect(points)) <= box+1e-6
		},
		genContour(),
	))

	properties.TestingRun(t)
}
