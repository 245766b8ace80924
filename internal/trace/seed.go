package trace

// ResolveSeed turns a foreground pixel and an optional direction into a
// consistent start edge.
func ResolveSeed(img Image, x, y int, dir Direction, clockwise bool) (Edge, error) {
	if err := checkSeed(img, x, y, dir); err != nil {
		return Edge{}, err
	}
	return resolveSeed(newWalker(img, nil, clockwise, false), x, y, dir)
}

func checkSeed(img Image, x, y int, dir Direction) error {
	if dir != AutoDirection && !dir.Valid() {
		return newError("seed", ErrConfiguration, "invalid direction %d", int(dir))
	}
	w, h := img.Width(), img.Height()
	if w <= 0 || h <= 0 {
		return newError("seed", ErrBounds, "empty image %dx%d", w, h)
	}
	if x < 0 || y < 0 || x >= w || y >= h {
		return newError("seed", ErrBounds, "seed (%d,%d) outside %dx%d image", x, y, w, h)
	}
	if !img.IsForeground(x, y) {
		return newError("seed", ErrBounds, "seed pixel (%d,%d) is not foreground", x, y)
	}
	return nil
}

func resolveSeed(wk *walker, x, y int, dir Direction) (Edge, error) {
	if dir == AutoDirection {
		dir = wk.pickDirection(x, y)
		if dir == AutoDirection {
			return Edge{}, newError("seed", ErrGeometry, "bad seed pixel (%d,%d): no boundary edge", x, y)
		}
	}

	e := Edge{X: x, Y: y, Dir: dir}
	if wk.leftIsForeground(e) && wk.forwardIsForeground(e) {
		dx, dy := dir.Step()
		e.X += dx
		e.Y += dy
	}
	if wk.leftIsForeground(e) {
		return Edge{}, newError("seed", ErrGeometry, "bad seed direction %s at (%d,%d)", dir, x, y)
	}
	return e, nil
}

// pickDirection prefers an edge whose bordering pixel is background, then
// one whose diagonal is background.
func (wk *walker) pickDirection(x, y int) Direction {
	for d := Up; d <= Left; d++ {
		if !wk.leftIsForeground(Edge{X: x, Y: y, Dir: d}) {
			return d
		}
	}
	for d := Up; d <= Left; d++ {
		if !wk.leftForwardIsForeground(Edge{X: x, Y: y, Dir: d}) {
			return d
		}
	}
	return AutoDirection
}

func checkStopEdge(img Image, e Edge, clockwise bool) error {
	if !e.Dir.Valid() {
		return newError("stop", ErrConfiguration, "invalid stop direction %d", int(e.Dir))
	}
	w, h := img.Width(), img.Height()
	if e.X < 0 || e.Y < 0 || e.X >= w || e.Y >= h {
		return newError("stop", ErrBounds, "stop edge %s outside %dx%d image", e, w, h)
	}
	if !img.IsForeground(e.X, e.Y) {
		return newError("stop", ErrBounds, "stop pixel (%d,%d) is not foreground", e.X, e.Y)
	}
	if newWalker(img, nil, clockwise, false).leftIsForeground(e) {
		return newError("stop", ErrGeometry, "stop edge %s is not a boundary edge", e)
	}
	return nil
}
