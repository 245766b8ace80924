package support

import (
	"bytes"
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/MeKo-Tech/seedtrace/cmd/seedtrace/cmd"
	"github.com/MeKo-Tech/seedtrace/internal/server"
)

// TestContext holds the state of one scenario.
type TestContext struct {
	// Command execution state
	LastCommand  string
	LastOutput   string
	LastStderr   string
	LastError    error
	LastDuration time.Duration

	// HTTP state
	LastHTTPStatusCode int
	LastContentType    string

	// Streamed trace state
	StreamChunks   int
	StreamMessages []server.StreamMessage

	// Test environment
	OriginalDir string
	TempDir     string
	setEnv      []string

	HTTPTestServer *httptest.Server
}

// NewTestContext creates a scratch directory and switches into it, so
// relative paths in steps resolve there and no project config is picked up.
func NewTestContext() (*TestContext, error) {
	originalDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	tempDir, err := os.MkdirTemp("", "seedtrace-test-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	if err := os.Chdir(tempDir); err != nil {
		return nil, fmt.Errorf("failed to enter temp directory: %w", err)
	}

	testCtx := &TestContext{OriginalDir: originalDir, TempDir: tempDir}
	testCtx.SetEnv("HOME", tempDir)
	testCtx.SetEnv("XDG_CONFIG_HOME", tempDir)
	return testCtx, nil
}

// SetEnv sets an environment variable until Cleanup.
func (testCtx *TestContext) SetEnv(name, value string) {
	if old, ok := os.LookupEnv(name); ok {
		testCtx.setEnv = append(testCtx.setEnv, name+"="+old)
	} else {
		testCtx.setEnv = append(testCtx.setEnv, name)
	}
	_ = os.Setenv(name, value)
}

// Cleanup stops servers, restores the environment and removes the scratch
// directory.
func (testCtx *TestContext) Cleanup() error {
	if testCtx.HTTPTestServer != nil {
		testCtx.HTTPTestServer.Close()
		testCtx.HTTPTestServer = nil
	}

	for i := len(testCtx.setEnv) - 1; i >= 0; i-- {
		name, value, hadValue := strings.Cut(testCtx.setEnv[i], "=")
		if hadValue {
			_ = os.Setenv(name, value)
		} else {
			_ = os.Unsetenv(name)
		}
	}

	var errs []error
	if err := os.Chdir(testCtx.OriginalDir); err != nil {
		errs = append(errs, fmt.Errorf("failed to restore working directory: %w", err))
	}
	if err := os.RemoveAll(testCtx.TempDir); err != nil {
		errs = append(errs, fmt.Errorf("failed to remove temp directory %s: %w", testCtx.TempDir, err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("cleanup errors: %v", errs)
	}
	return nil
}

// Path resolves name inside the scratch directory.
func (testCtx *TestContext) Path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(testCtx.TempDir, name)
}

// Run executes a seedtrace command line in-process.
func (testCtx *TestContext) Run(command string) {
	args := strings.Fields(command)
	if len(args) > 0 && args[0] == "seedtrace" {
		args = args[1:]
	}

	root := cmd.NewRootCommand()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)

	start := time.Now()
	testCtx.LastCommand = command
	testCtx.LastError = root.Execute()
	testCtx.LastDuration = time.Since(start)
	testCtx.LastOutput = stdout.String()
	testCtx.LastStderr = stderr.String()
}
