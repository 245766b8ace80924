package trace

type walker struct {
	img       Image
	sink      Sink
	w, h      int
	clockwise bool
	suppress  bool
}

func newWalker(img Image, sink Sink, clockwise, suppress bool) *walker {
	return &walker{
		img:       img,
		sink:      sink,
		w:         img.Width(),
		h:         img.Height(),
		clockwise: clockwise,
		suppress:  suppress,
	}
}

func (wk *walker) foreground(x, y int) bool {
	if x < 0 || y < 0 || x >= wk.w || y >= wk.h {
		return false
	}
	return wk.img.IsForeground(x, y)
}

func (wk *walker) leftIsForeground(e Edge) bool {
	dx, dy := e.Dir.TurnLeft(wk.clockwise).Step()
	return wk.foreground(e.X+dx, e.Y+dy)
}

func (wk *walker) forwardIsForeground(e Edge) bool {
	dx, dy := e.Dir.Step()
	return wk.foreground(e.X+dx, e.Y+dy)
}

func (wk *walker) leftForwardIsForeground(e Edge) bool {
	fx, fy := e.Dir.Step()
	lx, ly := e.Dir.TurnLeft(wk.clockwise).Step()
	return wk.foreground(e.X+fx+lx, e.Y+fy+ly)
}

func (wk *walker) leftIsBorder(e Edge) bool {
	return IsLeftBorder(e.X, e.Y, e.Dir, wk.clockwise, wk.w, wk.h)
}

// hasNonBorderEdgeBackwards walks the start pixel's edges in reverse order
// and reports whether any of them, up to the point where the reverse walk
// would leave the pixel, lies inside the image.
func (wk *walker) hasNonBorderEdgeBackwards(e Edge) bool {
	rev := &walker{img: wk.img, w: wk.w, h: wk.h, clockwise: !wk.clockwise}
	e.Dir = e.Dir.Reverse()
	for i := 0; i < 4; i++ {
		if !rev.leftIsBorder(e) {
			return true
		}
		if rev.leftForwardIsForeground(e) || rev.forwardIsForeground(e) {
			break
		}
		e.Dir = e.Dir.TurnRight(rev.clockwise)
	}
	return false
}

// run follows the boundary from start until it comes back, reaches stop or
// has visited limit edges.
func (wk *walker) run(start Edge, stop *Edge, limit int) Result {
	e := start
	length, turns := 0, 0
	valid := !wk.suppress || wk.hasNonBorderEdgeBackwards(start)

	for {
		fx, fy := e.Dir.Step()
		switch {
		case wk.leftForwardIsForeground(e):
			wk.sink.Append(e.X, e.Y)
			lx, ly := e.Dir.TurnLeft(wk.clockwise).Step()
			e.X += fx + lx
			e.Y += fy + ly
			e.Dir = e.Dir.TurnLeft(wk.clockwise)
			turns--
			length++
			valid = true
		case wk.forwardIsForeground(e):
			if valid {
				wk.sink.Append(e.X, e.Y)
			}
			e.X += fx
			e.Y += fy
			length++
			if wk.suppress {
				valid = !wk.leftIsBorder(e)
			}
		default:
			e.Dir = e.Dir.TurnRight(wk.clockwise)
			turns++
			if !valid {
				valid = !wk.leftIsBorder(e)
			}
			if e == start || (stop != nil && e == *stop) {
				return wk.finish(start, e, stop, length, turns, valid)
			}
			continue
		}
		if length >= limit {
			break
		}
		if e == start || (stop != nil && e == *stop) {
			break
		}
	}
	return wk.finish(start, e, stop, length, turns, valid)
}

func (wk *walker) finish(start, end Edge, stop *Edge, length, turns int, valid bool) Result {
	if length == 0 && end == start {
		// Isolated pixel: the walk only turned in place.
		if valid {
			wk.sink.Append(start.X, start.Y)
		}
		length = 1
	}
	return Result{
		Start:    start,
		Stop:     end,
		Length:   length,
		Turns:    turns,
		Complete: end == start || (stop != nil && end == *stop),
	}
}
