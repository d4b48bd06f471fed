package cli

import (
	"fmt"

	"github.com/beetlebugorg/waterway/internal/chunk"
	"github.com/beetlebugorg/waterway/pkg/waterway"
	"github.com/spf13/cobra"
)

// NewRootCommand builds the waterway command tree.
func NewRootCommand(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "waterway",
		Short: "Compile waterway features into a navigable routing graph",
		Long: `Waterway turns GeoJSON canal, lock, and bridge features into the routing
graph consumed by the navigation stack: one node per coordinate, sequential
adjacency along each feature, and inferred junctions wherever two features
pass within a distance tolerance.`,
		SilenceUsage: true,
	}

	compileCmd := &cobra.Command{
		Use:   "compile INPUT [GRAPH [LINKS [LOCATORS]]]",
		Short: "Build graph, link, and locator documents from a feature collection",
		Long: `Compile reads one JSON document with a "features" array and writes the
graph, links, and locators documents. Output paths default to
graph_nodes.json, graph_links.json, and graph_locators.json in the working
directory. INPUT of '-' reads standard input.`,
		Args: cobra.RangeArgs(1, 4),
		RunE: runCompile,
	}
	compileCmd.Flags().Float64("dist-tolerance", waterway.DefaultTolerance, "Distance tolerance for detecting junctions")
	compileCmd.Flags().Bool("serial", false, "Disable parallel neighbor resolution")
	compileCmd.Flags().Int("workers", 0, "Resolver goroutines (default: NumCPU)")
	compileCmd.Flags().Bool("quiet", false, "Suppress progress output")

	chunkCmd := &cobra.Command{
		Use:   "chunk [INPUT]",
		Short: "Compact a JSON document, splitting oversized containers into chunks",
		Long: `Chunk rewrites one JSON document compactly. When a top-level array or a
--target field holds more elements than --limit, the container is split into
numbered chunk files and the document is rewritten as an index referencing
them. Rewriting an existing file in place first copies it to a timestamped
backup. INPUT of '-' (or no INPUT) reads standard input.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runChunk,
	}
	chunkCmd.Flags().String("target", "", "Top-level key holding the array or object to split")
	chunkCmd.Flags().Int("limit", chunk.DefaultLimit, "Max number of elements per chunk")
	chunkCmd.Flags().String("output", "", "Output path (default: rewrite INPUT in place; required for stdin)")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "waterway %s\n", version)
		},
	}

	rootCmd.AddCommand(compileCmd, chunkCmd, versionCmd)
	return rootCmd
}
