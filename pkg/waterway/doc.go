// Package waterway compiles named waterway features (canals, locks, bridges)
// into a navigable routing graph.
//
// The input is a GeoJSON-shaped feature collection. Each named feature
// contributes one graph node per coordinate, sequential adjacency along its
// coordinate sequence, and junction edges to any coordinate of any feature
// that lies within a distance tolerance. The compiler emits three artifacts:
// a node graph keyed by node id, per-feature link records keyed by feature
// id, and name-keyed locators pointing at one representative node each.
//
// Example:
//
//	fs := afs.New()
//	dataset, err := waterway.LoadDataset(ctx, fs, "canals.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := waterway.Compile(dataset, waterway.DefaultCompileOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	err = waterway.WriteResult(ctx, fs, result,
//	    "graph_nodes.json", "graph_links.json", "graph_locators.json")
package waterway
