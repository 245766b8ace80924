package cmd

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/seedtrace/internal/benchmark"
	"github.com/MeKo-Tech/seedtrace/internal/synth"
)

func newBenchCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Measure tracing throughput on synthetic images",
		Long: `Run the tracer, the chain filter and blob extraction on synthetic images
and report timing, allocation and throughput per benchmark.

Examples:
  seedtrace bench
  seedtrace bench --shapes ring,disk --width 1024 --height 1024 -n 20
  seedtrace bench --filter trace/`,
		Args: cobra.NoArgs,
		RunE: a.runBench,
	}

	defaults := benchmark.DefaultOptions()
	cmd.Flags().StringSlice("shapes", defaults.Shapes, "shapes to benchmark")
	cmd.Flags().Int("width", defaults.Width, "image width")
	cmd.Flags().Int("height", defaults.Height, "image height")
	cmd.Flags().Int64("seed", defaults.Seed, "random seed")
	cmd.Flags().IntP("iterations", "n", 10, "iterations per benchmark")
	cmd.Flags().String("filter", "", "only run benchmarks whose name contains this")
	cmd.Flags().Bool("list", false, "list benchmarks without running them")
	return cmd
}

func (a *app) runBench(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	opts := benchmark.DefaultOptions()
	opts.Shapes, _ = flags.GetStringSlice("shapes")
	opts.Width, _ = flags.GetInt("width")
	opts.Height, _ = flags.GetInt("height")
	opts.Seed, _ = flags.GetInt64("seed")
	iterations, _ := flags.GetInt("iterations")
	filter, _ := flags.GetString("filter")
	list, _ := flags.GetBool("list")

	if iterations <= 0 {
		return fmt.Errorf("invalid iterations: %d (must be positive)", iterations)
	}

	suite, err := benchmark.NewTraceSuite(opts)
	if err != nil {
		return err
	}

	names := slices.DeleteFunc(suite.Names(), func(n string) bool {
		return !strings.Contains(n, filter)
	})
	if len(names) == 0 {
		return fmt.Errorf("no benchmark matches %q (shapes: %v)", filter, synth.Names())
	}

	out := cmd.OutOrStdout()
	if list {
		for _, n := range names {
			_, _ = fmt.Fprintln(out, n)
		}
		return nil
	}

	slog.Info("running benchmarks", "count", len(names), "iterations", iterations,
		"width", opts.Width, "height", opts.Height)
	failed := 0
	for _, n := range names {
		r := suite.Run(n, iterations)
		if r.Error != nil {
			failed++
		}
		_, _ = fmt.Fprintln(out, r.String())
	}
	if failed > 0 {
		return fmt.Errorf("%d benchmarks failed", failed)
	}
	return nil
}
