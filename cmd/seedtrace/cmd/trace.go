package cmd

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/seedtrace/internal/blob"
	"github.com/MeKo-Tech/seedtrace/internal/export"
	"github.com/MeKo-Tech/seedtrace/internal/imageio"
	"github.com/MeKo-Tech/seedtrace/internal/trace"
)

func newTraceCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trace IMAGE",
		Short: "Trace one boundary starting from a seed pixel",
		Long: `Trace the boundary of the 8-connected region containing the seed pixel.

The walk starts at the seed edge and ends when it returns there, reaches the
optional stop edge, or visits --max-length edges. The reported stop edge can
be passed back as --x/--y/--dir to resume an interrupted trace.

Examples:
  seedtrace trace shape.png --x 10 --y 4
  seedtrace trace shape.png --x 10 --y 4 --dir left --clockwise
  seedtrace trace shape.png --x 10 --y 4 --max-length 100 --format json
  seedtrace trace shape.png --x 10 --y 4 --chain --drop-start --overlay out.png`,
		Args: cobra.ExactArgs(1),
		RunE: a.runTrace,
	}

	cmd.Flags().Int("x", 0, "seed column")
	cmd.Flags().Int("y", 0, "seed row")
	cmd.Flags().String("dir", "auto", "start direction: auto, up, right, down, left")
	cmd.Flags().Int("stop-x", 0, "column of an extra stop edge")
	cmd.Flags().Int("stop-y", 0, "row of an extra stop edge")
	cmd.Flags().String("stop-dir", "", "direction of an extra stop edge")
	cmd.Flags().Bool("drop-start", false, "drop the start point when the chain approximation marks it redundant")
	cmd.Flags().String("overlay", "", "write a PNG overlay of the contour to this file")
	_ = cmd.MarkFlagRequired("x")
	_ = cmd.MarkFlagRequired("y")

	addTraceFlags(cmd)
	addImageFlags(cmd)
	addOutputFlags(cmd)
	return cmd
}

func (a *app) runTrace(cmd *cobra.Command, args []string) error {
	opts, x, y, err := a.traceOptions(cmd)
	if err != nil {
		return err
	}

	path := args[0]
	bin, _, err := imageio.LoadBinary(path, a.cfg.ToBinarizeOptions())
	if err != nil {
		return fmt.Errorf("failed to load image: %w", err)
	}

	res, points, suppressible, err := blob.TraceSeed(bin, x, y, opts, a.cfg.Trace.ChainApprox)
	if err != nil {
		return fmt.Errorf("trace failed: %w", err)
	}
	if drop, _ := cmd.Flags().GetBool("drop-start"); drop && suppressible && len(points) > 0 {
		points = points[1:]
	}
	slog.Debug("trace finished",
		"file", path, "start", res.Start.String(), "stop", res.Stop.String(),
		"length", res.Length, "turns", res.Turns, "complete", res.Complete)

	doc := export.NewTraceDocument(path, bin, res, points)
	doc.StartSuppressible = suppressible

	if overlay, _ := cmd.Flags().GetString("overlay"); overlay != "" {
		if err := imageio.SaveImage(export.OverlayTrace(bin, points, a.cfg.ToOverlayOptions()), overlay); err != nil {
			return fmt.Errorf("failed to write overlay: %w", err)
		}
	}

	body, err := export.FormatTrace(doc, a.cfg.Output.Format)
	if err != nil {
		return err
	}
	return writeOutput(cmd, body, a.cfg.Output.File)
}

// traceOptions combines the configured defaults with the seed and stop flags.
func (a *app) traceOptions(cmd *cobra.Command) (trace.Options, int, int, error) {
	opts := a.cfg.ToTraceOptions()
	flags := cmd.Flags()

	x, _ := flags.GetInt("x")
	y, _ := flags.GetInt("y")

	dir, _ := flags.GetString("dir")
	var err error
	if opts.Dir, err = trace.ParseDirection(dir); err != nil {
		return opts, 0, 0, err
	}

	given := 0
	for _, name := range []string{"stop-x", "stop-y", "stop-dir"} {
		if flags.Changed(name) {
			given++
		}
	}
	switch given {
	case 0:
		return opts, x, y, nil
	case 3:
	default:
		return opts, 0, 0, errors.New("--stop-x, --stop-y and --stop-dir must be given together")
	}

	at := trace.Edge{}
	at.X, _ = flags.GetInt("stop-x")
	at.Y, _ = flags.GetInt("stop-y")
	stopDir, _ := flags.GetString("stop-dir")
	if at.Dir, err = trace.ParseDirection(stopDir); err != nil {
		return opts, 0, 0, err
	}
	if at.Dir == trace.AutoDirection {
		return opts, 0, 0, trace.NewError("stop", trace.ErrConfiguration, "stop direction must be explicit")
	}
	opts.Stop.At = &at
	return opts, x, y, nil
}
