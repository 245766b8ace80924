// Package blob extracts the outlines of all foreground blobs in a binary
// raster by seeding one boundary trace per component and, optionally, one
// per enclosed hole.
package blob

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/MeKo-Tech/seedtrace/internal/chain"
	"github.com/MeKo-Tech/seedtrace/internal/geom"
	"github.com/MeKo-Tech/seedtrace/internal/trace"
)

// Polarity tells outer boundaries from hole boundaries.
type Polarity int

const (
	Outer Polarity = 1
	Hole  Polarity = -1
)

func (p Polarity) String() string {
	if p == Hole {
		return "hole"
	}
	return "outer"
}

// MarshalText encodes the polarity by name.
func (p Polarity) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText accepts "outer" or "hole".
func (p *Polarity) UnmarshalText(b []byte) error {
	switch string(b) {
	case "outer":
		*p = Outer
	case "hole":
		*p = Hole
	default:
		return fmt.Errorf("unknown polarity %q", string(b))
	}
	return nil
}

// Bounds is an inclusive pixel rectangle.
type Bounds struct {
	MinX int `json:"min_x" yaml:"min_x"`
	MinY int `json:"min_y" yaml:"min_y"`
	MaxX int `json:"max_x" yaml:"max_x"`
	MaxY int `json:"max_y" yaml:"max_y"`
}

// Width of the rectangle in pixels.
func (b Bounds) Width() int { return b.MaxX - b.MinX + 1 }

// Height of the rectangle in pixels.
func (b Bounds) Height() int { return b.MaxY - b.MinY + 1 }

// Contour is one traced boundary.
type Contour struct {
	Label             int           `json:"label" yaml:"label"`
	Polarity          Polarity      `json:"polarity" yaml:"polarity"`
	Start             trace.Edge    `json:"start" yaml:"start"`
	Points            trace.Contour `json:"points" yaml:"points"`
	StartSuppressible bool          `json:"start_suppressible,omitempty" yaml:"start_suppressible,omitempty"`
	Length            int           `json:"length" yaml:"length"`
	Turns             int           `json:"turns" yaml:"turns"`
	Closed            bool          `json:"closed" yaml:"closed"`
	Pixels            int           `json:"pixels" yaml:"pixels"`
	Bounds            Bounds        `json:"bounds" yaml:"bounds"`
	Area              float64       `json:"area" yaml:"area"`
	// Hull and MinRect are filled when Config.Hull is set.
	Hull    trace.Contour `json:"hull,omitempty" yaml:"hull,omitempty"`
	MinRect []geom.PointF `json:"min_rect,omitempty" yaml:"min_rect,omitempty"`
}

// Config controls blob extraction.
type Config struct {
	Clockwise      bool `json:"clockwise" yaml:"clockwise"`
	SuppressBorder bool `json:"suppress_border" yaml:"suppress_border"`
	ChainApprox    bool `json:"chain_approx" yaml:"chain_approx"`
	Holes          bool `json:"holes" yaml:"holes"`
	// MinPixels drops components (and their holes) smaller than this.
	MinPixels int `json:"min_pixels" yaml:"min_pixels"`
	// MaxLength caps each trace; 0 means no cap.
	MaxLength int `json:"max_length" yaml:"max_length"`
	// Simplify is the Douglas-Peucker tolerance applied to each contour
	// after tracing; 0 keeps every point.
	Simplify float64 `json:"simplify" yaml:"simplify"`
	// Hull adds the convex hull and minimum-area rectangle to each contour.
	Hull bool `json:"hull" yaml:"hull"`
}

// DefaultConfig traces outer boundaries and holes of every blob.
func DefaultConfig() Config {
	return Config{Holes: true, MinPixels: 1}
}

// Result lists all contours of one image, outer boundaries first in raster
// order of their components, then holes.
type Result struct {
	Width      int           `json:"width" yaml:"width"`
	Height     int           `json:"height" yaml:"height"`
	Components int           `json:"components" yaml:"components"`
	Contours   []Contour     `json:"contours" yaml:"contours"`
	Duration   time.Duration `json:"duration_ns" yaml:"duration_ns"`
}

// Outer returns only the outer boundaries.
func (r *Result) Outer() []Contour {
	return r.filter(Outer)
}

// Holes returns only the hole boundaries.
func (r *Result) Holes() []Contour {
	return r.filter(Hole)
}

func (r *Result) filter(p Polarity) []Contour {
	var out []Contour
	for _, c := range r.Contours {
		if c.Polarity == p {
			out = append(out, c)
		}
	}
	return out
}

// Find traces every blob of img.
func Find(img trace.Image, cfg Config) (*Result, error) {
	start := time.Now()
	w, h := img.Width(), img.Height()
	if w <= 0 || h <= 0 {
		return nil, trace.NewError("blob", trace.ErrBounds, "empty image %dx%d", w, h)
	}
	if cfg.MaxLength < 0 {
		return nil, trace.NewError("blob", trace.ErrConfiguration, "negative max length %d", cfg.MaxLength)
	}
	if cfg.Simplify < 0 {
		return nil, trace.NewError("blob", trace.ErrConfiguration, "negative simplify tolerance %g", cfg.Simplify)
	}

	lb := newLabeling(img, cfg.Holes)
	defer lb.release()

	res := &Result{Width: w, Height: h}
	for i, st := range lb.fg {
		if st.count < cfg.MinPixels {
			continue
		}
		res.Components++

		dir := trace.Left
		if cfg.Clockwise {
			dir = trace.Right
		}
		c, err := traceOne(img, st.seedX, st.seedY, dir, cfg)
		if err != nil {
			return nil, fmt.Errorf("component %d: %w", i+1, err)
		}
		c.Label = i + 1
		c.Polarity = Outer
		c.Pixels = st.count
		c.Bounds = Bounds{MinX: st.minX, MinY: st.minY, MaxX: st.maxX, MaxY: st.maxY}
		res.Contours = append(res.Contours, c)
	}

	if cfg.Holes {
		holes, err := findHoles(img, lb, cfg)
		if err != nil {
			return nil, err
		}
		res.Contours = append(res.Contours, holes...)
	}

	res.Duration = time.Since(start)
	slog.Debug("blobs traced",
		"width", w, "height", h,
		"components", res.Components,
		"contours", len(res.Contours),
		"duration", res.Duration)
	return res, nil
}

// findHoles traces the inner boundary around every background region that
// does not reach the image border. The seed is the foreground pixel directly
// above the region's first pixel, facing so that the hole is on the
// bordering side.
func findHoles(img trace.Image, lb *labeling, cfg Config) ([]Contour, error) {
	dir := trace.Right
	if cfg.Clockwise {
		dir = trace.Left
	}

	var holes []Contour
	for i, st := range lb.bg {
		if st.touchesEdge || st.seedY == 0 {
			continue
		}
		sx, sy := st.seedX, st.seedY-1
		owner := int(lb.at(sx, sy))
		if owner <= 0 || lb.fg[owner-1].count < cfg.MinPixels {
			continue
		}

		c, err := traceOne(img, sx, sy, dir, cfg)
		if err != nil {
			return nil, fmt.Errorf("hole %d: %w", i+1, err)
		}
		c.Label = owner
		c.Polarity = Hole
		c.Pixels = st.count
		c.Bounds = Bounds{MinX: st.minX, MinY: st.minY, MaxX: st.maxX, MaxY: st.maxY}
		holes = append(holes, c)
	}

	sort.SliceStable(holes, func(a, b int) bool { return holes[a].Label < holes[b].Label })
	return holes, nil
}

func traceOne(img trace.Image, x, y int, dir trace.Direction, cfg Config) (Contour, error) {
	opts := trace.Options{
		Dir:            dir,
		Clockwise:      cfg.Clockwise,
		SuppressBorder: cfg.SuppressBorder,
		Stop:           trace.StopSpec{MaxLength: cfg.MaxLength},
	}

	res, points, suppressible, err := TraceSeed(img, x, y, opts, cfg.ChainApprox)
	if err != nil {
		return Contour{}, err
	}

	c := Contour{
		Start:             res.Start,
		Points:            points,
		StartSuppressible: suppressible,
		Length:            res.Length,
		Turns:             res.Turns,
		Closed:            res.Complete,
		Area:              PolygonArea(points),
	}
	if cfg.Simplify > 0 {
		c.Points = geom.Simplify(points, cfg.Simplify)
	}
	if cfg.Hull {
		c.Hull = geom.ConvexHull(points)
		c.MinRect = geom.MinAreaRect(c.Hull)
	}
	return c, nil
}

// TraceSeed runs a single trace from (x, y). With chainApprox the points
// are compressed as they are produced and the returned flag reports whether
// the first point could be dropped as well.
func TraceSeed(img trace.Image, x, y int, opts trace.Options, chainApprox bool) (trace.Result, trace.Contour, bool, error) {
	if !chainApprox {
		var points trace.Contour
		res, err := trace.Trace(&points, img, x, y, opts)
		if err != nil {
			return trace.Result{}, nil, false, err
		}
		return res, points, false, nil
	}

	approx := chain.New()
	res, err := trace.Trace(approx, img, x, y, opts)
	if err != nil {
		return trace.Result{}, nil, false, err
	}
	points, err := approx.Result()
	if err != nil {
		return trace.Result{}, nil, false, err
	}
	return res, points, approx.StartIsSuppressible(), nil
}

// PolygonArea is the shoelace area of the polygon through the pixel centres.
func PolygonArea(points trace.Contour) float64 {
	n := len(points)
	if n < 3 {
		return 0
	}
	sum := 0
	for i := range n {
		j := (i + 1) % n
		sum += points[i].X*points[j].Y - points[j].X*points[i].Y
	}
	return math.Abs(float64(sum)) / 2
}
