package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/MeKo-Tech/seedtrace/internal/config"
)

func TestConfigInit(t *testing.T) {
	dir := isolate(t)

	out, _, err := executeCommand(t, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote seedtrace.yaml")
	assert.FileExists(t, filepath.Join(dir, "seedtrace.yaml"))

	_, _, err = executeCommand(t, "config", "init")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, _, err = executeCommand(t, "config", "init", "--force")
	require.NoError(t, err)
}

func TestConfigShow(t *testing.T) {
	isolate(t)
	t.Setenv("SEEDTRACE_TRACE_MAX_LENGTH", "7")

	out, _, err := executeCommand(t, "config", "show")
	require.NoError(t, err)

	var cfg config.Config
	require.NoError(t, yaml.Unmarshal([]byte(out), &cfg))
	assert.Equal(t, 7, cfg.Trace.MaxLength)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestConfigShowSkipsValidation(t *testing.T) {
	dir := isolate(t)
	file := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(file, []byte("log_level: loud\n"), 0o600))

	out, _, err := executeCommand(t, "config", "show", "--config", file)
	require.NoError(t, err)
	assert.Contains(t, out, "log_level: loud")
}

func TestConfigPath(t *testing.T) {
	dir := isolate(t)
	file := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(file, []byte("verbose: true\n"), 0o600))

	out, _, err := executeCommand(t, "config", "path", "--config", file)
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration file used: "+file)
	assert.Contains(t, out, "SEEDTRACE")
}
