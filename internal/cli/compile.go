package cli

import (
	"fmt"
	"log/slog"

	"github.com/beetlebugorg/waterway/pkg/waterway"
	"github.com/spf13/cobra"
	"github.com/viant/afs"
)

func runCompile(cmd *cobra.Command, args []string) error {
	input := args[0]
	graphPath := argOr(args, 1, "graph_nodes.json")
	linksPath := argOr(args, 2, "graph_links.json")
	locatorsPath := argOr(args, 3, "graph_locators.json")

	tolerance, _ := cmd.Flags().GetFloat64("dist-tolerance")
	serial, _ := cmd.Flags().GetBool("serial")
	workers, _ := cmd.Flags().GetInt("workers")
	quiet, _ := cmd.Flags().GetBool("quiet")

	ctx := cmd.Context()
	fs := afs.New()

	var dataset *waterway.FeatureCollection
	var err error
	if input == "-" {
		dataset, err = waterway.DecodeDataset(cmd.InOrStdin())
	} else {
		dataset, err = waterway.LoadDataset(ctx, fs, input)
	}
	if err != nil {
		return err
	}

	opts := waterway.DefaultCompileOptions()
	opts.Tolerance = tolerance
	opts.Parallel = !serial
	if workers > 0 {
		opts.Workers = workers
	}
	stderr := cmd.ErrOrStderr()
	if !quiet {
		opts.ErrorLog = stderr
		opts.Progress = func(done, total int) {
			fmt.Fprintf(stderr, "\rCompiling features: %d/%d", done, total)
			if done == total {
				fmt.Fprintln(stderr)
			}
		}
	}

	result, err := waterway.Compile(dataset, opts)
	if err != nil {
		return err
	}

	if err := waterway.WriteResult(ctx, fs, result, graphPath, linksPath, locatorsPath); err != nil {
		return err
	}

	if !quiet {
		logger := slog.New(slog.NewTextHandler(stderr, nil))
		logger.Info("graph compiled",
			"features", result.Stats.FeaturesCompiled,
			"skipped", result.Stats.FeaturesSkipped,
			"nodes", result.Stats.Nodes,
			"junctionEdges", result.Stats.JunctionEdges,
			"idCollisions", result.Stats.IDCollisions,
		)
	}

	stdout := cmd.OutOrStdout()
	fmt.Fprintf(stdout, "Graph saved to %s\n", graphPath)
	fmt.Fprintf(stdout, "Links saved to %s\n", linksPath)
	fmt.Fprintf(stdout, "Locators saved to %s\n", locatorsPath)
	return nil
}

func argOr(args []string, i int, fallback string) string {
	if i < len(args) {
		return args[i]
	}
	return fallback
}
