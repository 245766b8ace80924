package trace

// Tracer runs one boundary walk in bounded chunks.
type Tracer struct {
	img    Image
	opts   Options
	start  Edge
	pos    Edge
	limit  int
	length int
	turns  int
	chunks int
	done   bool
}

// NewTracer resolves the seed and prepares a chunked walk. Stop.MaxLength,
// when set, caps the total length over all chunks. Stop.At is not supported.
func NewTracer(img Image, x, y int, opts Options) (*Tracer, error) {
	if opts.Stop.At != nil {
		return nil, newError("tracer", ErrConfiguration, "stop edge is not supported for chunked traces")
	}
	if err := checkOptions(img, x, y, opts); err != nil {
		return nil, err
	}
	start, err := resolveSeed(newWalker(img, nil, opts.Clockwise, false), x, y, opts.Dir)
	if err != nil {
		return nil, err
	}
	return &Tracer{
		img:   img,
		opts:  opts,
		start: start,
		pos:   start,
		limit: effectiveLimit(img, opts.Stop.MaxLength),
	}, nil
}

// Next visits at most maxEdges further edges (all remaining ones when
// maxEdges <= 0) and appends their points to sink.
func (t *Tracer) Next(sink Sink, maxEdges int) (Result, error) {
	if t.done {
		return Result{}, newError("next", ErrState, "trace already complete")
	}

	budget := t.limit - t.length
	if maxEdges > 0 && maxEdges < budget {
		budget = maxEdges
	}
	opts := Options{
		Dir:            t.pos.Dir,
		Clockwise:      t.opts.Clockwise,
		SuppressBorder: t.opts.SuppressBorder,
		Stop:           StopSpec{MaxLength: budget},
	}
	if t.chunks > 0 {
		opts.Stop.At = &t.start
	}

	res, err := Trace(sink, t.img, t.pos.X, t.pos.Y, opts)
	if err != nil {
		return Result{}, err
	}
	t.chunks++
	t.pos = res.Stop
	t.length += res.Length
	t.turns += res.Turns
	t.done = res.Stop == t.start || t.length >= t.limit
	return res, nil
}

// Start is the resolved seed edge.
func (t *Tracer) Start() Edge { return t.start }

// Position is the edge the next chunk starts from.
func (t *Tracer) Position() Edge { return t.pos }

// Length is the number of edges visited so far.
func (t *Tracer) Length() int { return t.length }

// Turns is the net number of quarter turns so far.
func (t *Tracer) Turns() int { return t.turns }

// Done reports whether the walk closed or hit its length cap.
func (t *Tracer) Done() bool { return t.done }

// Closed reports whether the walk returned to its start edge.
func (t *Tracer) Closed() bool { return t.done && t.pos == t.start }
