package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/seedtrace/internal/config"
	"github.com/MeKo-Tech/seedtrace/internal/version"
)

// skipValidation marks commands that must run on an invalid configuration.
const skipValidation = "skip-validation"

// flagKeys maps CLI flag names to configuration keys. Only the flags of the
// command being executed are bound, so commands sharing a flag name do not
// overwrite each other's bindings.
var flagKeys = map[string]string{
	"log-level": "log_level",
	"verbose":   "verbose",

	"clockwise":       "trace.clockwise",
	"suppress-border": "trace.suppress_border",
	"chain":           "trace.chain_approx",
	"max-length":      "trace.max_length",
	"holes":           "trace.holes",
	"min-pixels":      "trace.min_pixels",
	"simplify":        "trace.simplify",
	"hull":            "trace.hull",

	"threshold": "image.threshold",
	"invert":    "image.invert",
	"packed":    "image.packed",

	"format":        "output.format",
	"output":        "output.file",
	"overlay-dir":   "output.overlay_dir",
	"overlay-color": "output.overlay_color",
	"hole-color":    "output.hole_color",
	"overlay-scale": "output.overlay_scale",

	"host":             "server.host",
	"port":             "server.port",
	"cors-origin":      "server.cors_origin",
	"max-upload-size":  "server.max_upload_mb",
	"timeout":          "server.timeout_sec",
	"shutdown-timeout": "server.shutdown_timeout",
	"chunk-size":       "server.chunk_size",

	"workers":           "batch.workers",
	"recursive":         "batch.recursive",
	"continue-on-error": "batch.continue_on_error",
}

// app is the state shared by one command tree.
type app struct {
	cfgFile string
	v       *viper.Viper
	loader  *config.Loader
	cfg     *config.Config
}

// Execute runs the command line and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

// NewRootCommand builds a fresh command tree with its own configuration
// state, so tests can execute it repeatedly.
func NewRootCommand() *cobra.Command {
	a := &app{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "seedtrace",
		Short: "Trace 8-connected boundaries in binary images",
		Long: `seedtrace follows the boundary of 8-connected foreground regions in
binary images, starting from a seed pixel.

It can trace a single contour with stop and resume control, extract every
blob and hole of an image, process directories of images in parallel and
serve the same operations over HTTP and WebSocket.

Examples:
  seedtrace trace shape.png --x 10 --y 4
  seedtrace blobs shape.png --format json --holes
  seedtrace batch images/ --recursive --workers 8
  seedtrace serve --port 8080`,
		Version:           version.String(),
		SilenceUsage:      true,
		PersistentPreRunE: a.preRun,
	}

	rootCmd.PersistentFlags().StringVar(&a.cfgFile, "config", "",
		"config file (default is search in ., $HOME, /etc/seedtrace, $HOME/.config/seedtrace)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output (equivalent to --log-level=debug)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		newTraceCommand(a),
		newBlobsCommand(a),
		newBatchCommand(a),
		newServeCommand(a),
		newGenerateCommand(a),
		newBenchCommand(a),
		newConfigCommand(a),
	)
	return rootCmd
}

func (a *app) preRun(cmd *cobra.Command, _ []string) error {
	if err := a.bindFlags(cmd); err != nil {
		return err
	}

	a.loader = config.NewLoader(a.v)

	var err error
	if cmd.Annotations[skipValidation] != "" {
		a.cfg, err = a.loader.LoadWithFileWithoutValidation(a.cfgFile)
	} else {
		a.cfg, err = a.loader.LoadWithFile(a.cfgFile)
	}
	if err != nil {
		return fmt.Errorf("error loading configuration: %w", err)
	}

	slog.SetDefault(newLogger(cmd.ErrOrStderr(), a.cfg))
	slog.Debug("configuration loaded", "file", a.loader.ConfigFileUsed(), "command", cmd.Name())
	return nil
}

func (a *app) bindFlags(cmd *cobra.Command) error {
	for name, key := range flagKeys {
		f := cmd.Flags().Lookup(name)
		if f == nil {
			continue
		}
		if err := a.v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}
	return nil
}

func newLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	} else {
		switch cfg.LogLevel {
		case "debug":
			level = slog.LevelDebug
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		}
	}

	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// writeOutput prints body to the command's stdout, or to file when given.
func writeOutput(cmd *cobra.Command, body, file string) error {
	if file == "" {
		_, err := fmt.Fprint(cmd.OutOrStdout(), body)
		return err
	}
	if err := os.WriteFile(file, []byte(body), 0o600); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	slog.Info("output written", "file", file)
	return nil
}

func addTraceFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("clockwise", false, "trace with foreground on the right")
	cmd.Flags().Bool("suppress-border", false, "do not emit points on the image border")
	cmd.Flags().Bool("chain", false, "compress straight runs to their end points")
	cmd.Flags().Int("max-length", 0, "maximum edges per trace (0 = no limit)")
}

// addShapeFlags registers the per-contour descriptor flags of blob extraction.
func addShapeFlags(cmd *cobra.Command) {
	cmd.Flags().Float64("simplify", 0, "Douglas-Peucker tolerance for contour points (0 = keep all)")
	cmd.Flags().Bool("hull", false, "add convex hull and minimum-area rectangle to each contour")
}

func addImageFlags(cmd *cobra.Command) {
	cmd.Flags().Int("threshold", 128, "pixels darker than this are foreground (0-255)")
	cmd.Flags().Bool("invert", false, "treat light pixels as foreground")
	cmd.Flags().Bool("packed", false, "store the binary image one bit per pixel")
}

func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("format", "f", "text", "output format: text, json, yaml, csv, svg")
	cmd.Flags().StringP("output", "o", "", "output file (default: stdout)")
	cmd.Flags().String("overlay-color", "#FF0000", "overlay color for outer contours (hex)")
	cmd.Flags().String("hole-color", "#0000FF", "overlay color for holes (hex)")
	cmd.Flags().Int("overlay-scale", 1, "overlay magnification (1-32)")
}
