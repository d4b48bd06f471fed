package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/beetlebugorg/waterway/pkg/waterway"
	"github.com/viant/afs"
)

func main() {
	ctx := context.Background()
	fs := afs.New()

	// Load the feature collection
	dataset, err := waterway.LoadDataset(ctx, fs, "canals.json")
	if err != nil {
		log.Fatal(err)
	}

	// Compile with progress reporting
	opts := waterway.DefaultCompileOptions()
	opts.Progress = func(done, total int) {
		fmt.Fprintf(os.Stderr, "\rCompiling: %d/%d", done, total)
	}

	result, err := waterway.Compile(dataset, opts)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Fprintln(os.Stderr)

	// Print compilation stats
	fmt.Printf("Features: %d compiled, %d skipped\n",
		result.Stats.FeaturesCompiled, result.Stats.FeaturesSkipped)
	fmt.Printf("Nodes: %d\n", result.Stats.Nodes)
	fmt.Printf("Junction edges: %d\n", result.Stats.JunctionEdges)

	// Enter the graph by feature name
	for _, locator := range result.Locators {
		node := result.Graph[locator.Value]
		fmt.Printf("%s -> %s (%d neighbors)\n",
			locator.Name, node.ID, len(node.Neighbors))
	}

	// Persist the triple
	err = waterway.WriteResult(ctx, fs, result,
		"graph_nodes.json", "graph_links.json", "graph_locators.json")
	if err != nil {
		log.Fatal(err)
	}
}
