package batch

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/seedtrace/internal/imageio"
	"github.com/MeKo-Tech/seedtrace/internal/raster"
	"github.com/MeKo-Tech/seedtrace/internal/testutil"
)

const ring = `
	.......
	.#####.
	.#...#.
	.#.#.#.
	.#...#.
	.#####.
	.......
`

func writeGrid(t *testing.T, dir, name, art string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, imageio.SaveImage(raster.ToImage(testutil.MustGrid(t, art)), path))
	return path
}

func TestProcessBatch(t *testing.T) {
	dir := testutil.CreateTempDir(t)
	a := writeGrid(t, dir, "a.png", ring)
	b := writeGrid(t, dir, "b.png", "##\n##")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600))

	cfg := DefaultConfig()
	cfg.Workers = 2
	res, err := ProcessBatch(context.Background(), []string{dir}, cfg)
	require.NoError(t, err)

	assert.Equal(t, []string{a, b}, res.ImagePaths)
	require.Len(t, res.Documents, 2)
	assert.Zero(t, res.Failed)

	require.NotNil(t, res.Documents[0].Result)
	assert.Len(t, res.Documents[0].Result.Contours, 3)
	assert.Len(t, res.Documents[0].Result.Holes(), 1)

	require.NotNil(t, res.Documents[1].Result)
	require.Len(t, res.Documents[1].Result.Contours, 1)
	assert.Len(t, res.Documents[1].Result.Contours[0].Points, 4)
}

func TestProcessBatchContinueOnError(t *testing.T) {
	dir := testutil.CreateTempDir(t)
	good := writeGrid(t, dir, "good.png", "#")
	broken := filepath.Join(dir, "broken.png")
	require.NoError(t, os.WriteFile(broken, []byte("not a png"), 0o600))

	cfg := DefaultConfig()
	_, err := ProcessBatch(context.Background(), []string{good, broken}, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.png")

	cfg.ContinueOnError = true
	var progress bytes.Buffer
	cfg.Progress = NewConsoleProgressCallback(&progress, "trace: ")
	res, err := ProcessBatch(context.Background(), []string{good, broken}, cfg)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Failed)
	assert.NotNil(t, res.Documents[0].Result)
	assert.Nil(t, res.Documents[1].Result)
	assert.NotEmpty(t, res.Documents[1].Error)
	assert.Contains(t, progress.String(), "Error at item 1")
	assert.Contains(t, progress.String(), "Completed")
}

func TestProcessBatchNoImages(t *testing.T) {
	dir := testutil.CreateTempDir(t)
	_, err := ProcessBatch(context.Background(), []string{dir}, nil)
	assert.ErrorIs(t, err, ErrNoImages)

	_, err = ProcessBatch(context.Background(), []string{filepath.Join(dir, "missing")}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot access")
}

func TestProcessBatchOverlays(t *testing.T) {
	dir := testutil.CreateTempDir(t)
	src := writeGrid(t, dir, "shape.png", ring)
	overlays := filepath.Join(dir, "overlays")

	cfg := DefaultConfig()
	cfg.OverlayDir = overlays
	cfg.Overlay.Scale = 2
	_, err := ProcessBatch(context.Background(), []string{src}, cfg)
	require.NoError(t, err)

	out := filepath.Join(overlays, "shape_overlay.png")
	require.FileExists(t, out)
	img, meta, err := imageio.LoadImage(out)
	require.NoError(t, err)
	assert.Equal(t, 14, meta.Width)
	assert.Equal(t, 14, img.Bounds().Dy())
}

func TestResultOutput(t *testing.T) {
	dir := testutil.CreateTempDir(t)
	src := writeGrid(t, dir, "one.png", "##\n##")

	res, err := ProcessBatch(context.Background(), []string{src}, nil)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, res.SaveResults(&out, "json", ""))
	assert.Contains(t, out.String(), `"file"`)
	assert.Contains(t, out.String(), "one.png")

	file := filepath.Join(dir, "result.csv")
	out.Reset()
	require.NoError(t, res.SaveResults(&out, "csv", file))
	assert.Empty(t, out.String())
	assert.FileExists(t, file)

	_, err = res.FormatResults("xml")
	assert.Error(t, err)

	out.Reset()
	res.PrintStats(&out)
	assert.Contains(t, out.String(), "Total images: 1")
	assert.Contains(t, out.String(), "Contours: 1 (0 holes)")
}
