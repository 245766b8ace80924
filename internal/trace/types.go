package trace

import "fmt"

// Point is a pixel coordinate.
type Point struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// Edge is a pixel together with a walk direction. It names the boundary
// segment on the bordering side of the pixel while facing Dir.
type Edge struct {
	X   int       `json:"x" yaml:"x"`
	Y   int       `json:"y" yaml:"y"`
	Dir Direction `json:"dir" yaml:"dir"`
}

func (e Edge) String() string {
	return fmt.Sprintf("(%d,%d,%s)", e.X, e.Y, e.Dir)
}

// Point returns the pixel of e.
func (e Edge) Point() Point {
	return Point{X: e.X, Y: e.Y}
}

// Image is read-only access to a binary raster. IsForeground must return
// false for coordinates outside [0,Width) x [0,Height).
type Image interface {
	Width() int
	Height() int
	IsForeground(x, y int) bool
}

// Sink receives contour points in walk order.
type Sink interface {
	Append(x, y int)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(x, y int)

func (f SinkFunc) Append(x, y int) { f(x, y) }

// Contour is an ordered list of boundary pixels. *Contour is a Sink.
type Contour []Point

func (c *Contour) Append(x, y int) {
	*c = append(*c, Point{X: x, Y: y})
}

// StopSpec bounds a trace.
type StopSpec struct {
	// At is an extra edge to stop on. The walk always stops on its own start.
	At *Edge
	// MaxLength caps the number of edges visited. Zero means no caller cap;
	// the effective cap is never above UpperLimit.
	MaxLength int
}

// Options configure a single trace.
type Options struct {
	Dir            Direction
	Clockwise      bool
	SuppressBorder bool
	Stop           StopSpec
}

// DefaultOptions returns counterclockwise tracing with automatic direction.
func DefaultOptions() Options {
	return Options{Dir: AutoDirection}
}

// Result describes a finished trace call.
type Result struct {
	Start    Edge `json:"start"`
	Stop     Edge `json:"stop"`
	Length   int  `json:"length"`
	Turns    int  `json:"turns"`
	Complete bool `json:"complete"`
}

// UpperLimit is the longest possible walk in a width x height image.
func UpperLimit(width, height int) int {
	return width*height + width + height
}
