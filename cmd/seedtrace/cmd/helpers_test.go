package cmd

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/seedtrace/internal/imageio"
	"github.com/MeKo-Tech/seedtrace/internal/raster"
	"github.com/MeKo-Tech/seedtrace/internal/testutil"
)

const (
	row  = ".###."
	ring = `
		.......
		.#####.
		.#...#.
		.#.#.#.
		.#...#.
		.#####.
		.......
	`
)

// isolate runs the test in an empty directory with no reachable config file.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", dir)
	return dir
}

// executeCommand runs a fresh command tree and captures both streams.
func executeCommand(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	root := NewRootCommand()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

// writeImage saves ASCII art as a black-on-white PNG.
func writeImage(t *testing.T, dir, name, art string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, imageio.SaveImage(raster.ToImage(testutil.MustGrid(t, art)), path))
	return path
}
