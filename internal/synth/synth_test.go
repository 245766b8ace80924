package synth

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/seedtrace/internal/blob"
	"github.com/MeKo-Tech/seedtrace/internal/testutil"
)

func TestRandomDeterministic(t *testing.T) {
	a := Random(rand.New(rand.NewSource(7)), 32, 24, DefaultRandomConfig())
	b := Random(rand.New(rand.NewSource(7)), 32, 24, DefaultRandomConfig())

	assert.Equal(t, a.Pix, b.Pix)
	assert.Equal(t, 32, a.Width())
	assert.Equal(t, 24, a.Height())
}

func TestRing(t *testing.T) {
	img := Ring(7, 1)
	assert.Equal(t, ""+
		"#######\n"+
		"#.....#\n"+
		"#.....#\n"+
		"#..#..#\n"+
		"#.....#\n"+
		"#.....#\n"+
		"#######\n", testutil.Render(img))

	res, err := blob.Find(img, blob.DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Components)
	assert.Len(t, res.Outer(), 2)
	assert.Len(t, res.Holes(), 1)
}

func TestRingWithoutRoomForIsland(t *testing.T) {
	img := Ring(4, 1)
	assert.Equal(t, "####\n#..#\n#..#\n####\n", testutil.Render(img))
}

func TestSnake(t *testing.T) {
	img := Snake(5, 5)
	assert.Equal(t, ""+
		"#####\n"+
		"....#\n"+
		"#####\n"+
		"#....\n"+
		"#####\n", testutil.Render(img))

	res, err := blob.Find(img, blob.DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Components)
	assert.Empty(t, res.Holes())
}

func TestCheckerboardIsOneComponent(t *testing.T) {
	img := Checkerboard(6, 4)
	assert.Equal(t, 12, img.Count())

	res, err := blob.Find(img, blob.Config{MinPixels: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Components)
}

func TestDisk(t *testing.T) {
	img := Disk(9, 9, 2)
	assert.True(t, img.IsForeground(4, 4))
	assert.True(t, img.IsForeground(4, 2))
	assert.False(t, img.IsForeground(2, 2))
	assert.Equal(t, 13, img.Count())
}

func TestLookup(t *testing.T) {
	assert.Equal(t, []string{"checkerboard", "disk", "random", "ring", "snake"}, Names())

	for _, name := range Names() {
		gen, err := Lookup(name)
		require.NoError(t, err, name)

		img := gen(rand.New(rand.NewSource(1)), 16, 12)
		assert.Positive(t, img.Width(), name)
		assert.Positive(t, img.Count(), name)
	}

	_, err := Lookup("spiral")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown shape")
}
