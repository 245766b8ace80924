package blob

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/seedtrace/internal/geom"
	"github.com/MeKo-Tech/seedtrace/internal/testutil"
	"github.com/MeKo-Tech/seedtrace/internal/trace"
)

const ringWithIsland = `
	.......
	.#####.
	.#...#.
	.#.#.#.
	.#...#.
	.#####.
	.......
`

func TestFindRingWithIsland(t *testing.T) {
	img := testutil.MustGrid(t, ringWithIsland)

	res, err := Find(img, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Components)
	require.Len(t, res.Contours, 3)

	ring := res.Contours[0]
	assert.Equal(t, 1, ring.Label)
	assert.Equal(t, Outer, ring.Polarity)
	assert.Equal(t, 4, ring.Turns)
	assert.True(t, ring.Closed)
	assert.Len(t, ring.Points, 16)
	assert.Equal(t, 16, ring.Pixels)
	assert.Equal(t, Bounds{MinX: 1, MinY: 1, MaxX: 5, MaxY: 5}, ring.Bounds)
	assert.InDelta(t, 16.0, ring.Area, 1e-9)

	island := res.Contours[1]
	assert.Equal(t, 2, island.Label)
	assert.Equal(t, trace.Contour{{X: 3, Y: 3}}, island.Points)
	assert.Equal(t, 4, island.Turns)

	hole := res.Contours[2]
	assert.Equal(t, 1, hole.Label)
	assert.Equal(t, Hole, hole.Polarity)
	assert.Equal(t, -4, hole.Turns)
	assert.Len(t, hole.Points, 12)
	assert.Equal(t, 8, hole.Pixels)
	assert.Equal(t, Bounds{MinX: 2, MinY: 2, MaxX: 4, MaxY: 4}, hole.Bounds)
	assert.Equal(t, trace.Edge{X: 2, Y: 1, Dir: trace.Right}, hole.Start)

	assert.Len(t, res.Outer(), 2)
	assert.Len(t, res.Holes(), 1)
}

func TestFindClockwise(t *testing.T) {
	img := testutil.MustGrid(t, ringWithIsland)
	cfg := DefaultConfig()
	cfg.Clockwise = true

	res, err := Find(img, cfg)
	require.NoError(t, err)
	for _, c := range res.Contours {
		assert.Equal(t, 4*int(c.Polarity), c.Turns, "label %d %s", c.Label, c.Polarity)
	}
	assert.Equal(t, trace.Edge{X: 1, Y: 1, Dir: trace.Right}, res.Contours[0].Start)
}

func TestFindMinPixelsAndNoHoles(t *testing.T) {
	img := testutil.MustGrid(t, ringWithIsland)

	cfg := DefaultConfig()
	cfg.MinPixels = 2
	res, err := Find(img, cfg)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Components)
	require.Len(t, res.Contours, 2)
	assert.Equal(t, Hole, res.Contours[1].Polarity)

	cfg.Holes = false
	res, err = Find(img, cfg)
	require.NoError(t, err)
	assert.Len(t, res.Contours, 1)
	assert.Empty(t, res.Holes())
}

func TestFindChainApprox(t *testing.T) {
	img := testutil.MustGrid(t, `
		......
		.####.
		.####.
		.####.
		.####.
		......
	`)
	cfg := DefaultConfig()
	cfg.ChainApprox = true

	res, err := Find(img, cfg)
	require.NoError(t, err)
	require.Len(t, res.Contours, 1)

	c := res.Contours[0]
	assert.Equal(t, trace.Contour{{X: 1, Y: 1}, {X: 1, Y: 4}, {X: 4, Y: 4}, {X: 4, Y: 1}}, c.Points)
	assert.False(t, c.StartSuppressible)
	assert.Equal(t, 12, c.Length)
	assert.InDelta(t, 9.0, c.Area, 1e-9)
}

func TestFindShapeDescriptors(t *testing.T) {
	img := testutil.MustGrid(t, `
		......
		.####.
		.####.
		.####.
		.####.
		......
	`)
	cfg := DefaultConfig()
	cfg.Simplify = 0.5
	cfg.Hull = true

	res, err := Find(img, cfg)
	require.NoError(t, err)
	require.Len(t, res.Contours, 1)

	c := res.Contours[0]
	assert.Equal(t, trace.Contour{{X: 1, Y: 1}, {X: 1, Y: 4}, {X: 4, Y: 4}, {X: 4, Y: 1}, {X: 2, Y: 1}}, c.Points)
	assert.Equal(t, 12, c.Length)
	assert.InDelta(t, 9.0, c.Area, 1e-9)
	assert.Equal(t, trace.Contour{{X: 1, Y: 1}, {X: 4, Y: 1}, {X: 4, Y: 4}, {X: 1, Y: 4}}, c.Hull)
	assert.Equal(t, []geom.PointF{{X: 1, Y: 1}, {X: 4, Y: 1}, {X: 4, Y: 4}, {X: 1, Y: 4}}, c.MinRect)

	data, err := json.Marshal(c)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"min_rect":[{"x":1,"y":1}`)

	res, err = Find(img, DefaultConfig())
	require.NoError(t, err)
	assert.Nil(t, res.Contours[0].Hull)
	data, err = json.Marshal(res.Contours[0])
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hull")
}

func TestFindErrors(t *testing.T) {
	_, err := Find(testutil.ParseGrid(""), DefaultConfig())
	assert.ErrorIs(t, err, trace.ErrBounds)

	cfg := DefaultConfig()
	cfg.MaxLength = -3
	_, err = Find(testutil.MustGrid(t, "#"), cfg)
	assert.ErrorIs(t, err, trace.ErrConfiguration)

	cfg = DefaultConfig()
	cfg.Simplify = -1
	_, err = Find(testutil.MustGrid(t, "#"), cfg)
	assert.ErrorIs(t, err, trace.ErrConfiguration)
}

func TestFindMaxLength(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxLength = 5

	res, err := Find(testutil.MustGrid(t, ringWithIsland), cfg)
	require.NoError(t, err)
	ring := res.Contours[0]
	assert.Equal(t, 5, ring.Length)
	assert.False(t, ring.Closed)
}

func TestPolarityJSON(t *testing.T) {
	data, err := json.Marshal(Contour{Polarity: Hole})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"polarity":"hole"`)

	var c Contour
	require.NoError(t, json.Unmarshal(data, &c))
	assert.Equal(t, Hole, c.Polarity)

	var p Polarity
	assert.Error(t, p.UnmarshalText([]byte("sideways")))
}

func TestPolygonArea(t *testing.T) {
	assert.Zero(t, PolygonArea(trace.Contour{{X: 0, Y: 0}, {X: 1, Y: 1}}))
	square := trace.Contour{{X: 0, Y: 0}, {X: 0, Y: 2}, {X: 2, Y: 2}, {X: 2, Y: 0}}
	assert.InDelta(t, 4.0, PolygonArea(square), 1e-9)
}

func TestFindAllPreservesOrder(t *testing.T) {
	images := []trace.Image{
		testutil.MustGrid(t, "#.#"),
		testutil.MustGrid(t, ringWithIsland),
		testutil.MustGrid(t, "###"),
	}

	var progress []int
	results, err := FindAll(context.Background(), images, DefaultConfig(), ParallelConfig{
		MaxWorkers: 2,
		Progress:   func(done, _ int) { progress = append(progress, done) },
	})
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, 2, results[0].Components)
	assert.Equal(t, 2, results[1].Components)
	assert.Equal(t, 1, results[2].Components)
	assert.Equal(t, []int{1, 2, 3}, progress)
}

func TestFindAllReportsErrors(t *testing.T) {
	images := []trace.Image{testutil.MustGrid(t, "#"), testutil.ParseGrid("")}

	var failed []int
	results, err := FindAll(context.Background(), images, DefaultConfig(), ParallelConfig{
		OnError: func(i int, _ error) { failed = append(failed, i) },
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, trace.ErrBounds)
	assert.NotNil(t, results[0])
	assert.Nil(t, results[1])
	assert.Equal(t, []int{1}, failed)

	_, err = FindAll(context.Background(), nil, DefaultConfig(), ParallelConfig{})
	assert.Error(t, err)
}

func TestFindAllCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := FindAll(ctx, []trace.Image{testutil.MustGrid(t, "#")}, DefaultConfig(), ParallelConfig{})
	assert.ErrorIs(t, err, context.Canceled)
}
