// Package geom derives shape descriptors from traced contours: polygon
// simplification, convex hull and the minimum-area enclosing rectangle.
package geom

import (
	"math"
	"slices"

	"github.com/MeKo-Tech/seedtrace/internal/trace"
)

// PointF is a point with fractional coordinates.
type PointF struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Simplify reduces a closed contour with the Douglas-Peucker algorithm.
// Points farther than epsilon from the simplified outline are kept. The
// first and last points always survive, so the result still starts where the
// trace started.
func Simplify(points trace.Contour, epsilon float64) trace.Contour {
	if len(points) <= 3 || epsilon <= 0 {
		return slices.Clone(points)
	}

	keep := make([]bool, len(points))
	keep[0] = true
	keep[len(points)-1] = true
	douglasPeucker(points, 0, len(points)-1, epsilon, keep)

	out := make(trace.Contour, 0, len(points))
	for i, k := range keep {
		if k {
			out = append(out, points[i])
		}
	}
	return out
}

func douglasPeucker(pts trace.Contour, start, end int, eps float64, keep []bool) {
	if end <= start+1 {
		return
	}
	maxDist := -1.0
	index := -1
	for i := start + 1; i < end; i++ {
		if d := segmentDistance(pts[i], pts[start], pts[end]); d > maxDist {
			maxDist = d
			index = i
		}
	}
	if maxDist > eps {
		keep[index] = true
		douglasPeucker(pts, start, index, eps, keep)
		douglasPeucker(pts, index, end, eps, keep)
	}
}

// segmentDistance is the distance from p to the line through a and b, or to
// a when both coincide. Closed contours start and end on the same pixel, so
// the degenerate case is common.
func segmentDistance(p, a, b trace.Point) float64 {
	vx, vy := float64(b.X-a.X), float64(b.Y-a.Y)
	px, py := float64(p.X-a.X), float64(p.Y-a.Y)
	if vx == 0 && vy == 0 {
		return math.Hypot(px, py)
	}
	return math.Abs(px*vy-py*vx) / math.Hypot(vx, vy)
}

// ConvexHull returns the hull vertices with the monotone chain algorithm,
// starting at the leftmost-topmost point. Collinear points are dropped.
func ConvexHull(points trace.Contour) trace.Contour {
	p := slices.Clone(points)
	slices.SortFunc(p, func(a, b trace.Point) int {
		if a.X != b.X {
			return a.X - b.X
		}
		return a.Y - b.Y
	})
	p = slices.Compact(p)
	if len(p) <= 2 {
		return p
	}

	lower := halfHull(p, 0, len(p), 1)
	upper := halfHull(p, len(p)-1, -1, -1)

	hull := make(trace.Contour, 0, len(lower)+len(upper)-2)
	hull = append(hull, lower[:len(lower)-1]...)
	hull = append(hull, upper[:len(upper)-1]...)
	return hull
}

func halfHull(p trace.Contour, from, to, step int) trace.Contour {
	h := make(trace.Contour, 0, len(p))
	for i := from; i != to; i += step {
		for len(h) >= 2 && cross(h[len(h)-2], h[len(h)-1], p[i]) <= 0 {
			h = h[:len(h)-1]
		}
		h = append(h, p[i])
	}
	return h
}

func cross(o, a, b trace.Point) int {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}

// MinAreaRect returns the four corners of the smallest rectangle, in any
// orientation, that encloses the points. Rectangles of single points and
// lines have zero width.
func MinAreaRect(points trace.Contour) []PointF {
	hull := ConvexHull(points)
	switch len(hull) {
	case 0:
		return nil
	case 1:
		p := toF(hull[0])
		return []PointF{p, p, p, p}
	case 2:
		a, b := toF(hull[0]), toF(hull[1])
		return []PointF{a, b, b, a}
	}

	bestArea := math.Inf(1)
	var ux, uy, minS, maxS, minT, maxT float64
	for i := range hull {
		a, b := hull[i], hull[(i+1)%len(hull)]
		dx, dy := float64(b.X-a.X), float64(b.Y-a.Y)
		l := math.Hypot(dx, dy)
		ex, ey := dx/l, dy/l

		s0, s1 := math.Inf(1), math.Inf(-1)
		t0, t1 := math.Inf(1), math.Inf(-1)
		for _, p := range hull {
			x, y := float64(p.X), float64(p.Y)
			s := x*ex + y*ey
			t := -x*ey + y*ex
			s0, s1 = math.Min(s0, s), math.Max(s1, s)
			t0, t1 = math.Min(t0, t), math.Max(t1, t)
		}
		if area := (s1 - s0) * (t1 - t0); area < bestArea {
			bestArea = area
			ux, uy = ex, ey
			minS, maxS, minT, maxT = s0, s1, t0, t1
		}
	}

	corner := func(s, t float64) PointF {
		return PointF{X: clean(s*ux - t*uy), Y: clean(s*uy + t*ux)}
	}
	return []PointF{corner(minS, minT), corner(maxS, minT), corner(maxS, maxT), corner(minS, maxT)}
}

// RectArea is the area of a rectangle returned by MinAreaRect.
func RectArea(r []PointF) float64 {
	if len(r) != 4 {
		return 0
	}
	return math.Hypot(r[1].X-r[0].X, r[1].Y-r[0].Y) * math.Hypot(r[3].X-r[0].X, r[3].Y-r[0].Y)
}

func toF(p trace.Point) PointF {
	return PointF{X: float64(p.X), Y: float64(p.Y)}
}

// clean rounds away floating point noise so axis-aligned rectangles come out
// on whole pixels.
func clean(v float64) float64 {
	r := math.Round(v)
	if math.Abs(v-r) < 1e-9 {
		return r
	}
	return v
}
