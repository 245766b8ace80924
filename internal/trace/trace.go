// Package trace follows the 8-connected outline of a foreground region in a
// binary raster, starting from a seed pixel. A trace may be stopped at any
// boundary edge and resumed later from the edge it stopped on.
package trace

// Trace walks the boundary through the seed pixel (x, y) and appends every
// boundary pixel to sink. With SuppressBorder, pixels whose boundary edges
// all lie on the image border are skipped.
//
// Passing Result.Stop of one call as the seed (with explicit Dir) and the
// first call's Result.Start as Stop.At of the next continues the walk
// exactly where it left off.
func Trace(sink Sink, img Image, x, y int, opts Options) (Result, error) {
	if err := checkOptions(img, x, y, opts); err != nil {
		return Result{}, err
	}

	wk := newWalker(img, sink, opts.Clockwise, opts.SuppressBorder)
	start, err := resolveSeed(wk, x, y, opts.Dir)
	if err != nil {
		return Result{}, err
	}
	return wk.run(start, opts.Stop.At, effectiveLimit(img, opts.Stop.MaxLength)), nil
}

func checkOptions(img Image, x, y int, opts Options) error {
	if opts.Stop.MaxLength < 0 {
		return newError("trace", ErrConfiguration, "negative max length %d", opts.Stop.MaxLength)
	}
	if err := checkSeed(img, x, y, opts.Dir); err != nil {
		return err
	}
	if opts.Stop.At != nil {
		return checkStopEdge(img, *opts.Stop.At, opts.Clockwise)
	}
	return nil
}

func effectiveLimit(img Image, maxLength int) int {
	limit := UpperLimit(img.Width(), img.Height())
	if maxLength > 0 && maxLength < limit {
		return maxLength
	}
	return limit
}
