package benchmark

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuite(t *testing.T) {
	suite := NewSuite()
	assert.NotNil(t, suite)
	assert.Empty(t, suite.benchmarks)

	suite.Add("test_benchmark", func() (int, error) {
		time.Sleep(1 * time.Millisecond)
		return 0, nil
	})

	assert.Equal(t, []string{"test_benchmark"}, suite.Names())
}

func TestSuiteRun(t *testing.T) {
	suite := NewSuite()

	suite.Add("success_test", func() (int, error) {
		time.Sleep(1 * time.Millisecond)
		return 10, nil
	})
	suite.Add("error_test", func() (int, error) {
		return 0, errors.New("test error")
	})

	result := suite.Run("success_test", 5)
	assert.Equal(t, "success_test", result.Name)
	assert.Equal(t, 5, result.Iterations)
	require.NoError(t, result.Error)
	assert.Positive(t, result.Duration)
	assert.Equal(t, 10, result.Edges)
	assert.Positive(t, result.PerOp())
	assert.Positive(t, result.EdgesPerSecond())

	result = suite.Run("error_test", 3)
	require.Error(t, result.Error)
	assert.Contains(t, result.Error.Error(), "test error")
	assert.Contains(t, result.String(), "ERROR")

	result = suite.Run("non_existent", 1)
	require.Error(t, result.Error)
	assert.Contains(t, result.Error.Error(), "not found")

	result = suite.Run("success_test", 0)
	require.Error(t, result.Error)
}

func TestSuiteRunAll(t *testing.T) {
	suite := NewSuite()
	calls := 0
	suite.Add("a", func() (int, error) { calls++; return 0, nil })
	suite.Add("b", func() (int, error) { calls++; return 0, nil })

	results := suite.RunAll(3)
	require.Len(t, results, 2)
	assert.Equal(t, 6, calls)
	assert.Equal(t, results, suite.Results())

	var buf bytes.Buffer
	suite.PrintResults(&buf)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "a: 3 iterations"))
	assert.NotContains(t, lines[0], "Medges/s")
}

func TestTimer(t *testing.T) {
	timer := NewTimer("work")
	time.Sleep(1 * time.Millisecond)
	d := timer.Stop()

	assert.GreaterOrEqual(t, d, time.Millisecond)
	assert.Equal(t, d, timer.Duration())
	assert.True(t, strings.HasPrefix(timer.String(), "work: "))
}

func TestGetMemoryStats(t *testing.T) {
	stats := GetMemoryStats()
	assert.Positive(t, stats.SysBytes)
	assert.Contains(t, stats.String(), "Alloc:")
}

func TestNewTraceSuite(t *testing.T) {
	suite, err := NewTraceSuite(Options{Shapes: []string{"ring", "snake"}, Width: 32, Height: 24, Seed: 3})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"trace/ring", "chain/ring", "blobs/ring", "blobs-packed/ring",
		"trace/snake", "chain/snake", "blobs/snake", "blobs-packed/snake",
	}, suite.Names())

	results := suite.RunAll(2)
	for _, r := range results {
		require.NoError(t, r.Error, r.Name)
		assert.Positive(t, r.Edges, r.Name)
	}

	// Packed and byte rasters describe the same pixels.
	assert.Equal(t, results[2].Edges, results[3].Edges)
	// The chain filter does not change how far the tracer walks.
	assert.Equal(t, results[0].Edges, results[1].Edges)
}

func TestNewTraceSuiteErrors(t *testing.T) {
	_, err := NewTraceSuite(Options{Shapes: []string{"ring"}, Width: 0, Height: 8})
	require.Error(t, err)

	_, err = NewTraceSuite(Options{Shapes: []string{"spiral"}, Width: 8, Height: 8})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown shape")
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	assert.Contains(t, opts.Shapes, "ring")
	assert.Equal(t, 256, opts.Width)
}

func BenchmarkTraceSuite(b *testing.B) {
	suite, err := NewTraceSuite(Options{Shapes: []string{"ring", "disk", "random"}, Width: 128, Height: 128, Seed: 1})
	if err != nil {
		b.Fatal(err)
	}
	for _, name := range suite.Names() {
		b.Run(strings.ReplaceAll(name, "/", "_"), func(b *testing.B) {
			for b.Loop() {
				if r := suite.Run(name, 1); r.Error != nil {
					b.Fatal(r.Error)
				}
			}
		})
	}
}
