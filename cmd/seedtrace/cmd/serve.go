package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/seedtrace/internal/server"
)

func newServeCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start HTTP server for the tracing API",
		Long: `Start an HTTP server that exposes tracing over REST and WebSocket.

The server provides the following endpoints:
  POST /trace     - Trace one boundary from a seed in an uploaded image
  POST /blobs     - Extract every blob boundary of an uploaded image
  GET  /ws/trace  - Stream a trace in chunks over a WebSocket
  GET  /health    - Health check endpoint
  GET  /metrics   - Prometheus metrics

Examples:
  seedtrace serve
  seedtrace serve --port 8080
  seedtrace serve --host 0.0.0.0 --port 3000 --chunk-size 1024`,
		Args: cobra.NoArgs,
		RunE: a.runServe,
	}

	cmd.Flags().StringP("host", "H", "localhost", "server host")
	cmd.Flags().IntP("port", "p", 8080, "server port")
	cmd.Flags().String("cors-origin", "*", "CORS allowed origins")
	cmd.Flags().Int("max-upload-size", 50, "maximum upload size in MB")
	cmd.Flags().Int("timeout", 30, "request timeout in seconds")
	cmd.Flags().Int("shutdown-timeout", 10, "shutdown timeout in seconds")
	cmd.Flags().Int("chunk-size", 256, "default edges per WebSocket chunk")

	cmd.Flags().Bool("holes", true, "trace hole boundaries by default")
	cmd.Flags().Int("min-pixels", 1, "default minimum component size")
	addShapeFlags(cmd)
	addTraceFlags(cmd)
	addImageFlags(cmd)
	cmd.Flags().String("overlay-color", "#FF0000", "overlay color for outer contours (hex)")
	cmd.Flags().String("hole-color", "#0000FF", "overlay color for holes (hex)")
	cmd.Flags().Int("overlay-scale", 1, "overlay magnification (1-32)")
	return cmd
}

func (a *app) serverConfig() server.Config {
	sc := a.cfg.Server
	return server.Config{
		Host:        sc.Host,
		Port:        sc.Port,
		CORSOrigin:  sc.CORSOrigin,
		MaxUploadMB: int64(sc.MaxUploadMB),
		TimeoutSec:  sc.TimeoutSec,
		ChunkSize:   sc.ChunkSize,
		Blob:        a.cfg.ToBlobConfig(),
		Binarize:    a.cfg.ToBinarizeOptions(),
		Overlay:     a.cfg.ToOverlayOptions(),
	}
}

func (a *app) runServe(cmd *cobra.Command, _ []string) error {
	srv, err := server.NewServer(a.serverConfig())
	if err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	timeout := time.Duration(a.cfg.Server.TimeoutSec) * time.Second
	httpServer := &http.Server{
		Addr:              srv.Addr(),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       timeout,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("Starting trace server", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		slog.Info("Received shutdown signal")
	}

	shutdownTimeout := time.Duration(a.cfg.Server.ShutdownTimeout) * time.Second
	slog.Info("Starting graceful shutdown", "timeout", shutdownTimeout)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
		return err
	}

	slog.Info("Graceful shutdown completed")
	return nil
}
