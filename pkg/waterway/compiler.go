package waterway

import (
	"fmt"
	"io"
	"runtime"
	"sync"
)

// DefaultTolerance is the junction detection radius, in input coordinate
// units. It is sized for GPS jitter on near-coincident waterway traces, not
// for any physical channel width.
const DefaultTolerance = 0.000005

// CompileOptions controls graph compilation.
type CompileOptions struct {
	// Tolerance is the maximum Euclidean distance between two coordinates
	// for them to be linked as a junction. Values <= 0 fall back to
	// DefaultTolerance.
	Tolerance float64

	// Parallel enables concurrent per-feature neighbor resolution.
	// The spatial index is read-only after build, so workers share it
	// without synchronization; results are merged in input order and the
	// output is byte-identical to a serial run.
	Parallel bool

	// Workers specifies the number of resolver goroutines.
	// If 0, defaults to runtime.NumCPU(). Only used when Parallel is true.
	Workers int

	// Progress is an optional callback invoked after each feature is
	// resolved. Parameters: (done, total) counted in features.
	Progress func(done, total int)

	// ErrorLog is an optional writer for diagnostics about degraded input,
	// such as feature id collisions. Leniency gaps are never errors.
	ErrorLog io.Writer
}

// DefaultCompileOptions returns compile options with sensible defaults.
func DefaultCompileOptions() CompileOptions {
	return CompileOptions{
		Tolerance: DefaultTolerance,
		Parallel:  true,
		Workers:   runtime.NumCPU(),
	}
}

// compiledFeature is one included feature with its resolved identity and
// normalized coordinates.
type compiledFeature struct {
	feature *Feature
	id      FeatureID
	name    string
	oneway  bool
	coords  []Coordinate
	occs    []*occurrence
}

// featureResult is the output of resolving one feature, kept separate per
// feature so parallel workers never touch shared maps.
type featureResult struct {
	nodes     []*GraphNode
	link      *LinkRecord
	junctions int
}

// Compile builds the routing graph for one feature collection.
//
// The run is a single batch pass: features without a name are skipped,
// geometries are normalized and cached, every coordinate is indexed, and each
// coordinate occurrence becomes one graph node whose neighbors are its
// sequential predecessors/successors plus every indexed coordinate within the
// tolerance. Per-feature link records and name-keyed locators are emitted
// alongside.
//
// Malformed geometries and unnamed features degrade silently (tracked in
// Stats); only a nil dataset is an error.
func Compile(dataset *FeatureCollection, opts CompileOptions) (*Result, error) {
	if dataset == nil {
		return nil, ErrEmptyDataset
	}
	tol := opts.Tolerance
	if tol <= 0 {
		tol = DefaultTolerance
	}

	stats := Stats{FeaturesSeen: len(dataset.Features)}
	cache := newPosListCache()
	index := newCoordIndex()

	// Pass 1: assign identities, normalize geometries, index coordinates.
	var included []*compiledFeature
	seen := make(map[FeatureID]bool)
	seq := 0
	for _, f := range dataset.Features {
		if f == nil || f.Name() == "" {
			stats.FeaturesSkipped++
			continue
		}
		fid := FeatureIDOf(f)
		if seen[fid] {
			stats.IDCollisions++
			if opts.ErrorLog != nil {
				fmt.Fprintf(opts.ErrorLog, "duplicate feature id %s, later link record wins\n", fid)
			}
		}
		seen[fid] = true

		cf := &compiledFeature{
			feature: f,
			id:      fid,
			name:    f.Name(),
			oneway:  f.Oneway(),
			coords:  cache.posList(fid, f),
		}
		for i, c := range cf.coords {
			occ := &occurrence{fid: fid, coord: c, index: i, seq: seq}
			seq++
			cf.occs = append(cf.occs, occ)
			index.add(occ)
		}
		included = append(included, cf)
	}

	// Pass 2: resolve neighbors per feature.
	results := make([]*featureResult, len(included))
	if opts.Parallel && len(included) > 1 {
		compileParallel(included, index, tol, opts, results)
	} else {
		for i, cf := range included {
			results[i] = cf.resolve(index, tol)
			if opts.Progress != nil {
				opts.Progress(i+1, len(included))
			}
		}
	}

	// Pass 3: merge in input order so map overwrites and locator ties stay
	// deterministic regardless of worker scheduling.
	out := &Result{
		Graph: make(map[NodeID]*GraphNode),
		Links: make(map[FeatureID]*LinkRecord),
	}
	locatorSeen := make(map[string]bool)
	for i, res := range results {
		if res == nil {
			stats.FeaturesSkipped++
			continue
		}
		stats.FeaturesCompiled++
		stats.JunctionEdges += res.junctions
		for _, node := range res.nodes {
			out.Graph[node.ID] = node
		}
		out.Links[res.link.ID] = res.link

		name := included[i].name
		if !locatorSeen[name] {
			locatorSeen[name] = true
			out.Locators = append(out.Locators, Locator{Name: name, Value: res.nodes[0].ID})
		}
	}
	stats.Nodes = len(out.Graph)
	out.Stats = stats
	return out, nil
}

// resolve builds the nodes and link record for one feature. Returns nil for
// features whose geometry normalized to nothing.
func (cf *compiledFeature) resolve(index *coordIndex, tol float64) *featureResult {
	if len(cf.coords) == 0 {
		return nil
	}
	res := &featureResult{nodes: make([]*GraphNode, 0, len(cf.coords))}

	for i, coord := range cf.coords {
		neighbors := []Neighbor{}

		// Forward sequential edge, when a next coordinate exists.
		if i+1 < len(cf.coords) {
			neighbors = append(neighbors, Neighbor{cf.id, nodeID(cf.id, cf.coords[i+1])})
		}

		// Backward sequential edge, unless one-way traffic.
		if i > 0 && !cf.oneway {
			neighbors = append(neighbors, Neighbor{cf.id, nodeID(cf.id, cf.coords[i-1])})
		}

		// Junction edges. Only the exact querying occurrence is excluded;
		// another occurrence of the same coordinate on the same feature
		// (closed ring ends) is a valid adjacency.
		for _, occ := range index.within(coord, tol) {
			if occ == cf.occs[i] {
				continue
			}
			neighbors = append(neighbors, Neighbor{occ.fid, nodeID(occ.fid, occ.coord)})
			res.junctions++
		}

		res.nodes = append(res.nodes, &GraphNode{
			ID:        nodeID(cf.id, coord),
			Pos:       coord,
			Neighbors: neighbors,
		})
	}

	res.link = &LinkRecord{
		ID:          cf.id,
		Name:        cf.name,
		Coordinates: cf.coords,
		Feature:     cf.feature,
	}
	return res
}

// compileParallel resolves features over a worker pool. Results land in
// their input slot; the progress callback runs only on the collector side.
func compileParallel(included []*compiledFeature, index *coordIndex, tol float64, opts CompileOptions, results []*featureResult) {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(included) {
		workers = len(included)
	}

	type resolved struct {
		index int
		res   *featureResult
	}

	jobs := make(chan int, len(included))
	out := make(chan resolved, len(included))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				out <- resolved{index: i, res: included[i].resolve(index, tol)}
			}
		}()
	}

	for i := range included {
		jobs <- i
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(out)
	}()

	done := 0
	for r := range out {
		done++
		if opts.Progress != nil {
			opts.Progress(done, len(included))
		}
		results[r.index] = r.res
	}
}
