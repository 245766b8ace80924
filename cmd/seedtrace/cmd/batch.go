package cmd

import (
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/seedtrace/internal/batch"
)

func newBatchCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch [files...]",
		Short: "Extract blobs from many images in parallel",
		Long: `Discover image files and directories, binarize each image and extract
every blob boundary using a pool of workers.

Supported formats: JPEG, PNG, BMP, GIF, TIFF, WEBP

Examples:
  seedtrace batch *.png
  seedtrace batch images/ --recursive --workers 8
  seedtrace batch images/ --format json --output results.json
  seedtrace batch images/ --overlay-dir overlays/ --progress --stats`,
		Args: cobra.MinimumNArgs(1),
		RunE: a.runBatch,
	}

	cmd.Flags().Bool("holes", true, "also trace hole boundaries")
	cmd.Flags().Int("min-pixels", 1, "ignore components smaller than this")
	addShapeFlags(cmd)
	cmd.Flags().String("overlay-dir", "", "directory to save overlay images")

	cmd.Flags().IntP("workers", "w", 4, fmt.Sprintf("number of parallel workers (CPUs: %d)", runtime.NumCPU()))
	cmd.Flags().BoolP("recursive", "r", false, "recursively scan directories")
	cmd.Flags().StringSlice("include", []string{}, "file patterns to include (default: all supported images)")
	cmd.Flags().StringSlice("exclude", []string{}, "file patterns to exclude")
	cmd.Flags().Bool("continue-on-error", false, "record failing images instead of aborting")

	cmd.Flags().Bool("progress", false, "show progress bar")
	cmd.Flags().Duration("progress-interval", 500*time.Millisecond, "progress update interval")
	cmd.Flags().Bool("stats", false, "show processing statistics")

	addTraceFlags(cmd)
	addImageFlags(cmd)
	addOutputFlags(cmd)
	return cmd
}

// batchConfig maps the loaded configuration and the CLI-only discovery
// flags to batch.Config.
func (a *app) batchConfig(cmd *cobra.Command) *batch.Config {
	bc := batch.DefaultConfig()
	bc.Blob = a.cfg.ToBlobConfig()
	bc.Binarize = a.cfg.ToBinarizeOptions()
	bc.Workers = a.cfg.Batch.Workers
	bc.Recursive = a.cfg.Batch.Recursive
	bc.ContinueOnError = a.cfg.Batch.ContinueOnError
	bc.OverlayDir = a.cfg.Output.OverlayDir
	bc.Overlay = a.cfg.ToOverlayOptions()

	bc.IncludePatterns, _ = cmd.Flags().GetStringSlice("include")
	bc.ExcludePatterns, _ = cmd.Flags().GetStringSlice("exclude")

	if show, _ := cmd.Flags().GetBool("progress"); show {
		interval, _ := cmd.Flags().GetDuration("progress-interval")
		bc.Progress = batch.NewConsoleProgressCallback(cmd.ErrOrStderr(), "Tracing: ").WithUpdateInterval(interval)
	} else {
		bc.Progress = batch.NewLogProgressCallback(slog.Default(), slog.LevelDebug)
	}
	return bc
}

func (a *app) runBatch(cmd *cobra.Command, args []string) error {
	bc := a.batchConfig(cmd)

	result, err := batch.ProcessBatch(cmd.Context(), args, bc)
	if err != nil {
		return fmt.Errorf("batch processing failed: %w", err)
	}

	if err := result.SaveResults(cmd.OutOrStdout(), a.cfg.Output.Format, a.cfg.Output.File); err != nil {
		return fmt.Errorf("failed to save results: %w", err)
	}

	if stats, _ := cmd.Flags().GetBool("stats"); stats {
		result.PrintStats(cmd.ErrOrStderr())
	}
	return nil
}
