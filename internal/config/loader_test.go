package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestNewLoader(t *testing.T) {
	v := viper.New()
	assert.Same(t, v, NewLoader(v).Viper())

	isolated := NewLoader(nil)
	require.NotNil(t, isolated.Viper())
	assert.NotSame(t, viper.GetViper(), isolated.Viper())
}

func TestLoadWithNoConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	t.Chdir(tmpDir)
	t.Setenv("HOME", tmpDir)
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	cfg, err := NewLoader(viper.New()).Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), *cfg)
}

func TestLoadWithFile(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "custom.yaml", `
log_level: debug
trace:
  clockwise: true
  chain_approx: true
  max_length: 64
image:
  threshold: 90
  packed: true
output:
  format: json
server:
  port: 9090
batch:
  workers: 2
  continue_on_error: true
`)

	loader := NewLoader(viper.New())
	cfg, err := loader.LoadWithFile(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.Trace.Clockwise)
	assert.True(t, cfg.Trace.ChainApprox)
	assert.Equal(t, 64, cfg.Trace.MaxLength)
	assert.True(t, cfg.Trace.Holes, "unset keys keep defaults")
	assert.Equal(t, 90, cfg.Image.Threshold)
	assert.True(t, cfg.Image.Packed)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 2, cfg.Batch.Workers)
	assert.True(t, cfg.Batch.ContinueOnError)
	assert.Equal(t, path, loader.ConfigFileUsed())
}

func TestLoadFindsFileInWorkingDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, ConfigFileName+".yaml", "trace:\n  min_pixels: 7\n")
	t.Chdir(tmpDir)

	cfg, err := NewLoader(viper.New()).Load()
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Trace.MinPixels)
}

func TestLoadWithFileErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := NewLoader(viper.New()).LoadWithFile(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")

	bad := writeConfig(t, dir, "bad.yaml", "trace: [unclosed\n")
	_, err = NewLoader(viper.New()).LoadWithFile(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")

	invalid := writeConfig(t, dir, "invalid.yaml", "server:\n  port: -1\n")
	_, err = NewLoader(viper.New()).LoadWithFile(invalid)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")

	cfg, err := NewLoader(viper.New()).LoadWithFileWithoutValidation(invalid)
	require.NoError(t, err)
	assert.Equal(t, -1, cfg.Server.Port)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SEEDTRACE_TRACE_MAX_LENGTH", "12")
	t.Setenv("SEEDTRACE_OUTPUT_FORMAT", "yaml")
	t.Setenv("SEEDTRACE_LOG_LEVEL", "warn")

	cfg, err := NewLoader(viper.New()).LoadWithoutValidation()
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.Trace.MaxLength)
	assert.Equal(t, "yaml", cfg.Output.Format)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestExplicitValuesOverrideDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	v := viper.New()
	v.Set("output.format", "csv")
	v.Set("trace.hull", true)

	cfg, err := NewLoader(v).Load()
	require.NoError(t, err)
	assert.Equal(t, "csv", cfg.Output.Format)
	assert.True(t, cfg.Trace.Hull)
}

func TestDefaultValuesCoverConfig(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	require.NoError(t, v.Unmarshal(&cfg))
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestGenerateDefaultConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "generated.yaml")
	require.NoError(t, GenerateDefaultConfigFile(path))
	assert.FileExists(t, path)

	cfg, err := NewLoader(viper.New()).LoadWithFile(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), *cfg)
}

func TestSearchPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	paths := SearchPaths()
	assert.Equal(t, ".", paths[0])
	assert.Contains(t, paths, "/etc/seedtrace")
	assert.Contains(t, paths, filepath.Join("/xdg", "seedtrace"))
}

func TestPrintConfigInfo(t *testing.T) {
	t.Chdir(t.TempDir())

	loader := NewLoader(viper.New())
	_, err := loader.Load()
	require.NoError(t, err)

	var buf bytes.Buffer
	loader.PrintConfigInfo(&buf)
	assert.Contains(t, buf.String(), "Configuration file used: (none)")
	assert.Contains(t, buf.String(), "Environment prefix: SEEDTRACE")
}
