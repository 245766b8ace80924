// Package benchmark measures tracing and blob extraction throughput on
// synthetic rasters.
package benchmark

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"runtime"
	"sync"
	"time"

	"github.com/MeKo-Tech/seedtrace/internal/blob"
	"github.com/MeKo-Tech/seedtrace/internal/chain"
	"github.com/MeKo-Tech/seedtrace/internal/raster"
	"github.com/MeKo-Tech/seedtrace/internal/synth"
	"github.com/MeKo-Tech/seedtrace/internal/trace"
)

// Timer provides simple timing utilities for benchmarking.
type Timer struct {
	start    time.Time
	name     string
	duration time.Duration
}

// NewTimer creates a new timer with the given name.
func NewTimer(name string) *Timer {
	return &Timer{
		name:  name,
		start: time.Now(),
	}
}

// Stop stops the timer and returns the elapsed duration.
func (t *Timer) Stop() time.Duration {
	t.duration = time.Since(t.start)
	return t.duration
}

// Duration returns the recorded duration (only valid after Stop()).
func (t *Timer) Duration() time.Duration {
	return t.duration
}

func (t *Timer) String() string {
	return fmt.Sprintf("%s: %v", t.name, t.duration)
}

// MemoryStats holds memory usage statistics.
type MemoryStats struct {
	AllocBytes      uint64  // Currently allocated bytes
	TotalAllocBytes uint64  // Total allocated bytes (cumulative)
	SysBytes        uint64  // Total bytes from system
	NumGC           uint32  // Number of GC runs
	GCCPUFraction   float64 // Fraction of CPU time spent in GC
}

// GetMemoryStats returns current memory statistics.
func GetMemoryStats() MemoryStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return MemoryStats{
		AllocBytes:      m.Alloc,
		TotalAllocBytes: m.TotalAlloc,
		SysBytes:        m.Sys,
		NumGC:           m.NumGC,
		GCCPUFraction:   m.GCCPUFraction,
	}
}

func (m MemoryStats) String() string {
	return fmt.Sprintf("Alloc: %d KB, Total: %d KB, Sys: %d KB, GC: %d (%.2f%% CPU)",
		m.AllocBytes/1024,
		m.TotalAllocBytes/1024,
		m.SysBytes/1024,
		m.NumGC,
		m.GCCPUFraction*100)
}

// Result holds the result of a benchmark run.
type Result struct {
	Name         string
	Duration     time.Duration
	MemoryBefore MemoryStats
	MemoryAfter  MemoryStats
	Iterations   int
	// Edges is the number of boundary edges visited per iteration, when the
	// benchmark reports it.
	Edges int
	Error error
}

// PerOp is the mean duration of one iteration.
func (r Result) PerOp() time.Duration {
	if r.Iterations <= 0 {
		return 0
	}
	return r.Duration / time.Duration(r.Iterations)
}

// EdgesPerSecond is the tracing throughput, or 0 when unknown.
func (r Result) EdgesPerSecond() float64 {
	if r.Edges == 0 || r.Duration <= 0 {
		return 0
	}
	return float64(r.Edges) * float64(r.Iterations) / r.Duration.Seconds()
}

func (r Result) String() string {
	if r.Error != nil {
		return fmt.Sprintf("%s: ERROR - %v", r.Name, r.Error)
	}

	allocDiff := int64(r.MemoryAfter.TotalAllocBytes - r.MemoryBefore.TotalAllocBytes) //nolint:gosec // display only
	s := fmt.Sprintf("%s: %d iterations, avg: %v, total: %v, alloc: %d KB",
		r.Name, r.Iterations, r.PerOp(), r.Duration.Round(time.Microsecond), allocDiff/1024)
	if eps := r.EdgesPerSecond(); eps > 0 {
		s += fmt.Sprintf(", %.1f Medges/s", eps/1e6)
	}
	return s
}

// Func is one benchmark iteration. It returns the number of edges visited.
type Func func() (int, error)

type entry struct {
	name string
	fn   Func
}

// Suite manages multiple benchmarks.
type Suite struct {
	benchmarks []entry
	results    []Result
	mu         sync.Mutex
}

// NewSuite creates an empty suite.
func NewSuite() *Suite {
	return &Suite{}
}

// Add adds a benchmark to the suite.
func (s *Suite) Add(name string, fn Func) {
	s.benchmarks = append(s.benchmarks, entry{name: name, fn: fn})
}

// Names lists the registered benchmarks in insertion order.
func (s *Suite) Names() []string {
	names := make([]string, len(s.benchmarks))
	for i, b := range s.benchmarks {
		names[i] = b.name
	}
	return names
}

// Run runs a single benchmark with the specified number of iterations.
func (s *Suite) Run(name string, iterations int) Result {
	for _, b := range s.benchmarks {
		if b.name == name {
			return run(b, iterations)
		}
	}
	return Result{Name: name, Error: fmt.Errorf("benchmark '%s' not found", name)}
}

// RunAll runs all benchmarks in the suite.
func (s *Suite) RunAll(iterations int) []Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.results = make([]Result, 0, len(s.benchmarks))
	for _, b := range s.benchmarks {
		s.results = append(s.results, run(b, iterations))
	}
	return s.results
}

// Results returns the last RunAll results.
func (s *Suite) Results() []Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	results := make([]Result, len(s.results))
	copy(results, s.results)
	return results
}

// PrintResults writes one line per result.
func (s *Suite) PrintResults(w io.Writer) {
	for _, r := range s.Results() {
		_, _ = fmt.Fprintln(w, r.String())
	}
}

func run(b entry, iterations int) Result {
	if iterations <= 0 {
		return Result{Name: b.name, Error: errors.New("iterations must be positive")}
	}

	runtime.GC()
	memBefore := GetMemoryStats()

	timer := NewTimer(b.name)
	var (
		edges int
		err   error
	)
	for range iterations {
		if edges, err = b.fn(); err != nil {
			break
		}
	}
	duration := timer.Stop()

	return Result{
		Name:         b.name,
		Duration:     duration,
		MemoryBefore: memBefore,
		MemoryAfter:  GetMemoryStats(),
		Iterations:   iterations,
		Edges:        edges,
		Error:        err,
	}
}

// Options select the rasters of a tracing suite.
type Options struct {
	Shapes []string
	Width  int
	Height int
	Seed   int64
}

// DefaultOptions benchmarks every synthetic shape at 256x256.
func DefaultOptions() Options {
	return Options{Shapes: synth.Names(), Width: 256, Height: 256, Seed: 1}
}

// NewTraceSuite registers, per shape, a single outer trace, the same trace
// through the chain filter, blob extraction and blob extraction on a
// bit-packed copy.
func NewTraceSuite(opts Options) (*Suite, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("invalid size %dx%d", opts.Width, opts.Height)
	}

	rng := rand.New(rand.NewSource(opts.Seed)) //nolint:gosec // reproducible test data
	s := NewSuite()
	for _, name := range opts.Shapes {
		gen, err := synth.Lookup(name)
		if err != nil {
			return nil, err
		}
		img := gen(rng, opts.Width, opts.Height)
		x, y, ok := firstForeground(img)
		if !ok {
			return nil, fmt.Errorf("shape %s has no foreground pixels", name)
		}
		addShape(s, name, img, x, y)
	}
	return s, nil
}

func addShape(s *Suite, name string, img *raster.Bytes, x, y int) {
	limit := trace.UpperLimit(img.Width(), img.Height())
	points := make(trace.Contour, 0, limit)
	opts := trace.DefaultOptions()

	s.Add("trace/"+name, func() (int, error) {
		points = points[:0]
		res, err := trace.Trace(&points, img, x, y, opts)
		return res.Length, err
	})

	s.Add("chain/"+name, func() (int, error) {
		approx := chain.NewWithCapacity(limit)
		res, err := trace.Trace(approx, img, x, y, opts)
		if err != nil {
			return 0, err
		}
		_, err = approx.Result()
		return res.Length, err
	})

	cfg := blob.DefaultConfig()
	s.Add("blobs/"+name, func() (int, error) {
		return findEdges(img, cfg)
	})

	packed := raster.PackBits(img)
	s.Add("blobs-packed/"+name, func() (int, error) {
		return findEdges(packed, cfg)
	})
}

func findEdges(img trace.Image, cfg blob.Config) (int, error) {
	res, err := blob.Find(img, cfg)
	if err != nil {
		return 0, err
	}
	edges := 0
	for _, c := range res.Contours {
		edges += c.Length
	}
	return edges, nil
}

func firstForeground(img trace.Image) (int, int, bool) {
	for y := 0; y < img.Height(); y++ {
		for x := 0; x < img.Width(); x++ {
			if img.IsForeground(x, y) {
				return x, y, true
			}
		}
	}
	return 0, 0, false
}
