package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/seedtrace/internal/blob"
	"github.com/MeKo-Tech/seedtrace/internal/export"
	"github.com/MeKo-Tech/seedtrace/internal/imageio"
)

func newBlobsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "blobs IMAGE",
		Short: "Extract the outer boundary and holes of every blob",
		Long: `Label the 8-connected foreground components of an image and trace the
outer boundary of each one, plus the boundary of every enclosed hole.

Examples:
  seedtrace blobs shape.png
  seedtrace blobs shape.png --format json --min-pixels 20
  seedtrace blobs scan.jpg --threshold 100 --format svg -o contours.svg
  seedtrace blobs shape.png --overlay shape_overlay.png --overlay-scale 4`,
		Args: cobra.ExactArgs(1),
		RunE: a.runBlobs,
	}

	cmd.Flags().Bool("holes", true, "also trace hole boundaries")
	cmd.Flags().Int("min-pixels", 1, "ignore components smaller than this")
	addShapeFlags(cmd)
	cmd.Flags().String("overlay", "", "write a PNG overlay of all contours to this file")

	addTraceFlags(cmd)
	addImageFlags(cmd)
	addOutputFlags(cmd)
	return cmd
}

func (a *app) runBlobs(cmd *cobra.Command, args []string) error {
	path := args[0]
	img, _, err := imageio.LoadImage(path)
	if err != nil {
		return fmt.Errorf("failed to load image: %w", err)
	}
	bin, err := imageio.Binarize(img, a.cfg.ToBinarizeOptions())
	if err != nil {
		return err
	}

	res, err := blob.Find(bin, a.cfg.ToBlobConfig())
	if err != nil {
		return fmt.Errorf("blob extraction failed: %w", err)
	}
	slog.Debug("blobs extracted", "file", path, "summary", export.Summary(res), "duration", res.Duration)

	if overlay, _ := cmd.Flags().GetString("overlay"); overlay != "" {
		if err := imageio.SaveImage(export.Overlay(img, bin, res, a.cfg.ToOverlayOptions()), overlay); err != nil {
			return fmt.Errorf("failed to write overlay: %w", err)
		}
	}

	body, err := export.Format([]export.Document{{File: path, Result: res}}, a.cfg.Output.Format)
	if err != nil {
		return err
	}
	return writeOutput(cmd, body, a.cfg.Output.File)
}
