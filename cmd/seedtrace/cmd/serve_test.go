package cmd

import (
	"net"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/seedtrace/internal/config"
)

func TestServerConfigFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Server.Port = 9000
	cfg.Server.ChunkSize = 64
	cfg.Trace.Clockwise = true
	cfg.Image.Invert = true

	a := &app{cfg: &cfg}
	sc := a.serverConfig()
	assert.Equal(t, "localhost", sc.Host)
	assert.Equal(t, 9000, sc.Port)
	assert.Equal(t, int64(50), sc.MaxUploadMB)
	assert.Equal(t, 64, sc.ChunkSize)
	assert.True(t, sc.Blob.Clockwise)
	assert.True(t, sc.Binarize.Invert)
	assert.Equal(t, 1, sc.Overlay.Scale)
}

func TestServeFailsOnBusyPort(t *testing.T) {
	isolate(t)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer func() { _ = ln.Close() }()
	port := ln.Addr().(*net.TCPAddr).Port

	_, _, err = executeCommand(t, "serve", "--host", "127.0.0.1", "--port", strconv.Itoa(port))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server error")
}

func TestServeRejectsInvalidPort(t *testing.T) {
	isolate(t)

	_, _, err := executeCommand(t, "serve", "--port", "70000")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid server port")
}
