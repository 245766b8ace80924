// Package chain compresses a stream of 8-connected contour points so that
// every horizontal, vertical or diagonal run keeps only its endpoints.
package chain

import "github.com/MeKo-Tech/seedtrace/internal/trace"

// Step direction codes are dx + 3*dy for unit steps:
//
//	-4 -3 -2
//	-1  0  1
//	 2  3  4
//
// dirNone marks a zero move, a jump longer than one pixel, or a run that has
// not started yet.
const dirNone = 0

func direction(from trace.Point, x, y int) int {
	dx := x - from.X
	dy := y - from.Y
	if abs(dx) > 1 || abs(dy) > 1 {
		return dirNone
	}
	return dx + 3*dy
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Approx is a streaming chain-approximation filter. It implements
// trace.Sink. Results are available only after all points were appended;
// reading them closes the filter.
type Approx struct {
	out        trace.Contour
	start      [2]trace.Point
	startCount int
	last       trace.Point
	dir        int
	closed     bool
	suppress   bool
	err        error
}

// New returns an empty filter.
func New() *Approx {
	return &Approx{}
}

// NewWithCapacity preallocates room for n output points.
func NewWithCapacity(n int) *Approx {
	return &Approx{out: make(trace.Contour, 0, n)}
}

// Append feeds the next contour point.
func (a *Approx) Append(x, y int) {
	if a.closed {
		if a.err == nil {
			a.err = trace.NewError("chain append", trace.ErrState, "contour already closed")
		}
		return
	}
	a.push(x, y)
}

func (a *Approx) push(x, y int) {
	if a.startCount < 2 {
		a.start[a.startCount] = trace.Point{X: x, Y: y}
		a.startCount++
		if a.startCount == 1 {
			a.last = a.start[0]
			return
		}
	}

	// A continuing run drops the buffered point; jumps and zero moves never do.
	d := direction(a.last, x, y)
	if d != a.dir || d == dirNone {
		a.out = append(a.out, a.last)
	}
	a.dir = d
	a.last = trace.Point{X: x, Y: y}
}

func (a *Approx) close() {
	if a.closed {
		return
	}
	a.closed = true
	if a.startCount == 0 {
		return
	}

	d1 := direction(a.last, a.start[0].X, a.start[0].Y)
	d2 := dirNone
	if a.startCount == 2 {
		d2 = direction(a.start[0], a.start[1].X, a.start[1].Y)
	}
	a.suppress = d1 == d2 && d1 != dirNone

	// Returning to the start flushes the pending last point.
	a.push(a.start[0].X, a.start[0].Y)
}

// Result closes the filter and returns the compressed contour. The start
// point is always first; see StartIsSuppressible.
func (a *Approx) Result() (trace.Contour, error) {
	a.close()
	if a.err != nil {
		return nil, a.err
	}
	return a.out, nil
}

// StartIsSuppressible closes the filter and reports whether the start point
// lies inside a straight run through the closing segment.
func (a *Approx) StartIsSuppressible() bool {
	a.close()
	return a.suppress
}

// Err returns the first misuse error, if any.
func (a *Approx) Err() error {
	return a.err
}

// Simplify runs a closed contour through a fresh filter. With dropStart the
// start point is removed when it is suppressible.
func Simplify(points trace.Contour, dropStart bool) (trace.Contour, bool) {
	a := NewWithCapacity(len(points))
	for _, p := range points {
		a.push(p.X, p.Y)
	}
	out, _ := a.Result()
	suppressible := a.StartIsSuppressible()
	if dropStart && suppressible && len(out) > 0 {
		out = out[1:]
	}
	return out, suppressible
}
