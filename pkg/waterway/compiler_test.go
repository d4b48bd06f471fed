package waterway

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDataset(t *testing.T, doc string) *FeatureCollection {
	t.Helper()
	dataset, err := DecodeDataset(strings.NewReader(doc))
	require.NoError(t, err)
	return dataset
}

func serialOptions() CompileOptions {
	opts := DefaultCompileOptions()
	opts.Parallel = false
	return opts
}

func nodeAt(t *testing.T, result *Result, fid FeatureID, c Coordinate) *GraphNode {
	t.Helper()
	node, ok := result.Graph[nodeID(fid, c)]
	require.True(t, ok, "no node for feature %s at %v", fid, c)
	return node
}

func TestCompileNilDataset(t *testing.T) {
	_, err := Compile(nil, serialOptions())
	assert.ErrorIs(t, err, ErrEmptyDataset)
}

// A lone point feature compiles to one node with no neighbors, one link
// record, and one locator pointing at that node.
func TestCompileSinglePoint(t *testing.T) {
	dataset := mustDataset(t, `{"features":[
		{"geometry":{"type":"Point","coordinates":[1.0,2.0]},"properties":{"name":"A"}}
	]}`)

	result, err := Compile(dataset, serialOptions())
	require.NoError(t, err)

	require.Len(t, result.Graph, 1)
	require.Len(t, result.Links, 1)
	require.Len(t, result.Locators, 1)

	fid := FeatureIDOf(dataset.Features[0])
	node := nodeAt(t, result, fid, Coordinate{1, 2})
	assert.Empty(t, node.Neighbors)
	assert.Equal(t, Coordinate{1, 2}, node.Pos)

	link := result.Links[fid]
	require.NotNil(t, link)
	assert.Equal(t, "A", link.Name)
	assert.Equal(t, []Coordinate{{1, 2}}, link.Coordinates)
	assert.Same(t, dataset.Features[0], link.Feature)

	assert.Equal(t, Locator{Name: "A", Value: node.ID}, result.Locators[0])
}

func TestCompileSequentialNeighbors(t *testing.T) {
	dataset := mustDataset(t, `{"features":[
		{"geometry":{"type":"LineString","coordinates":[[0,0],[10,0],[20,0]]},"properties":{"name":"canal"}}
	]}`)

	result, err := Compile(dataset, serialOptions())
	require.NoError(t, err)
	require.Len(t, result.Graph, 3)

	fid := FeatureIDOf(dataset.Features[0])
	first := nodeAt(t, result, fid, Coordinate{0, 0})
	interior := nodeAt(t, result, fid, Coordinate{10, 0})
	last := nodeAt(t, result, fid, Coordinate{20, 0})

	// First: forward only. Interior: forward then backward. Last: backward only.
	assert.Equal(t, []Neighbor{{fid, nodeID(fid, Coordinate{10, 0})}}, first.Neighbors)
	assert.Equal(t, []Neighbor{
		{fid, nodeID(fid, Coordinate{20, 0})},
		{fid, nodeID(fid, Coordinate{0, 0})},
	}, interior.Neighbors)
	assert.Equal(t, []Neighbor{{fid, nodeID(fid, Coordinate{10, 0})}}, last.Neighbors)
}

func TestCompileOnewayHasNoBackwardEdges(t *testing.T) {
	dataset := mustDataset(t, `{"features":[
		{"geometry":{"type":"LineString","coordinates":[[0,0],[10,0],[20,0]]},"properties":{"name":"sluice","oneway":true}}
	]}`)

	result, err := Compile(dataset, serialOptions())
	require.NoError(t, err)

	fid := FeatureIDOf(dataset.Features[0])
	assert.Len(t, nodeAt(t, result, fid, Coordinate{0, 0}).Neighbors, 1)
	assert.Equal(t, []Neighbor{{fid, nodeID(fid, Coordinate{20, 0})}},
		nodeAt(t, result, fid, Coordinate{10, 0}).Neighbors)
	assert.Empty(t, nodeAt(t, result, fid, Coordinate{20, 0}).Neighbors)
}

// Two points closer than the tolerance must reference each other, even
// though each edge is emitted by an independent query.
func TestCompileJunctionEdgesAreMutual(t *testing.T) {
	dataset := mustDataset(t, `{"features":[
		{"geometry":{"type":"Point","coordinates":[1.0,2.0]},"properties":{"name":"A"}},
		{"geometry":{"type":"Point","coordinates":[1.0000001,2.0]},"properties":{"name":"B"}}
	]}`)

	result, err := Compile(dataset, serialOptions())
	require.NoError(t, err)

	fidA := FeatureIDOf(dataset.Features[0])
	fidB := FeatureIDOf(dataset.Features[1])
	nodeA := nodeAt(t, result, fidA, Coordinate{1, 2})
	nodeB := nodeAt(t, result, fidB, Coordinate{1.0000001, 2})

	assert.Equal(t, []Neighbor{{fidB, nodeB.ID}}, nodeA.Neighbors)
	assert.Equal(t, []Neighbor{{fidA, nodeA.ID}}, nodeB.Neighbors)
	assert.Equal(t, 2, result.Stats.JunctionEdges)
}

func TestCompileBeyondToleranceNotLinked(t *testing.T) {
	dataset := mustDataset(t, `{"features":[
		{"geometry":{"type":"Point","coordinates":[1.0,2.0]},"properties":{"name":"A"}},
		{"geometry":{"type":"Point","coordinates":[1.00001,2.0]},"properties":{"name":"B"}}
	]}`)

	result, err := Compile(dataset, serialOptions())
	require.NoError(t, err)

	for _, node := range result.Graph {
		assert.Empty(t, node.Neighbors)
	}
	assert.Zero(t, result.Stats.JunctionEdges)
}

// Mutuality over a whole dataset: every cross-feature edge has its reverse
// recorded by the neighbor's own query.
func TestCompileJunctionSymmetryAcrossDataset(t *testing.T) {
	var features []string
	for i := 0; i < 8; i++ {
		// Lines radiating from a shared hub coordinate.
		features = append(features, fmt.Sprintf(
			`{"geometry":{"type":"LineString","coordinates":[[5.0,52.0],[5.%d,52.%d]]},"properties":{"name":"spoke-%d"}}`,
			i+1, i+1, i))
	}
	dataset := mustDataset(t, `{"features":[`+strings.Join(features, ",")+`]}`)

	result, err := Compile(dataset, serialOptions())
	require.NoError(t, err)

	for _, node := range result.Graph {
		for _, n := range node.Neighbors {
			other, ok := result.Graph[n.Node]
			require.True(t, ok, "neighbor %s of %s missing from graph", n.Node, node.ID)
			if n.Node == node.ID {
				continue
			}
			reverse := false
			for _, back := range other.Neighbors {
				if back.Node == node.ID {
					reverse = true
					break
				}
			}
			assert.True(t, reverse, "edge %s -> %s has no reverse", node.ID, n.Node)
		}
	}
}

func TestCompileUnnamedFeatureExcluded(t *testing.T) {
	dataset := mustDataset(t, `{"features":[
		{"geometry":{"type":"Point","coordinates":[1.0,2.0]},"properties":{}},
		{"geometry":{"type":"Point","coordinates":[3.0,4.0]},"properties":{"name":""}}
	]}`)

	result, err := Compile(dataset, serialOptions())
	require.NoError(t, err)

	assert.Empty(t, result.Graph)
	assert.Empty(t, result.Links)
	assert.Empty(t, result.Locators)
	assert.Equal(t, 2, result.Stats.FeaturesSkipped)
	assert.Zero(t, result.Stats.FeaturesCompiled)
}

func TestCompileEmptyGeometryYieldsNothing(t *testing.T) {
	dataset := mustDataset(t, `{"features":[
		{"geometry":{"type":"LineString","coordinates":[]},"properties":{"name":"dry"}},
		{"geometry":{"type":"Point","coordinates":[1.0,2.0]},"properties":{"name":"wet"}}
	]}`)

	result, err := Compile(dataset, serialOptions())
	require.NoError(t, err)

	assert.Len(t, result.Graph, 1)
	assert.Len(t, result.Links, 1)
	require.Len(t, result.Locators, 1)
	assert.Equal(t, "wet", result.Locators[0].Name)
	assert.Equal(t, 1, result.Stats.FeaturesSkipped)
	assert.Equal(t, 1, result.Stats.FeaturesCompiled)
}

func TestCompileLocatorFirstWriteWins(t *testing.T) {
	dataset := mustDataset(t, `{"features":[
		{"geometry":{"type":"Point","coordinates":[1.0,2.0]},"properties":{"name":"Keizersgracht"}},
		{"geometry":{"type":"Point","coordinates":[8.0,9.0]},"properties":{"name":"Keizersgracht","oneway":true}}
	]}`)

	result, err := Compile(dataset, serialOptions())
	require.NoError(t, err)

	require.Len(t, result.Links, 2)
	require.Len(t, result.Locators, 1)

	fidFirst := FeatureIDOf(dataset.Features[0])
	assert.Equal(t, nodeID(fidFirst, Coordinate{1, 2}), result.Locators[0].Value)
}

// Structurally identical features share a FeatureID; the later link record
// overwrites the earlier one and the collision is counted.
func TestCompileIdenticalFeaturesCollide(t *testing.T) {
	dataset := mustDataset(t, `{"features":[
		{"geometry":{"type":"Point","coordinates":[1.0,2.0]},"properties":{"name":"A"}},
		{"geometry":{"type":"Point","coordinates":[1.0,2.0]},"properties":{"name":"A"}}
	]}`)

	var diag strings.Builder
	opts := serialOptions()
	opts.ErrorLog = &diag

	result, err := Compile(dataset, opts)
	require.NoError(t, err)

	assert.Len(t, result.Links, 1)
	assert.Equal(t, 1, result.Stats.IDCollisions)
	assert.Contains(t, diag.String(), "duplicate feature id")
	// The surviving link record is the later occurrence.
	fid := FeatureIDOf(dataset.Features[1])
	assert.Same(t, dataset.Features[1], result.Links[fid].Feature)
}

// A closed ring's first and last occurrences share a node id; the spatial
// pass still records the adjacency between the two occurrences.
func TestCompileClosedRing(t *testing.T) {
	dataset := mustDataset(t, `{"features":[
		{"geometry":{"type":"Polygon","coordinates":[[[0,0],[10,0],[10,10],[0,0]]]},"properties":{"name":"basin"}}
	]}`)

	result, err := Compile(dataset, serialOptions())
	require.NoError(t, err)

	// Four occurrences, three distinct node ids.
	require.Len(t, result.Graph, 3)

	fid := FeatureIDOf(dataset.Features[0])
	ringEnd := nodeAt(t, result, fid, Coordinate{0, 0})
	assert.Contains(t, ringEnd.Neighbors, Neighbor{fid, ringEnd.ID})
}

func TestCompileSerialParallelEquivalence(t *testing.T) {
	var features []string
	for i := 0; i < 12; i++ {
		features = append(features, fmt.Sprintf(
			`{"geometry":{"type":"LineString","coordinates":[[5.0,52.0],[5.0000001,52.0],[5.%d,52.%d]]},"properties":{"name":"canal-%d"}}`,
			i+1, i+1, i))
	}
	doc := `{"features":[` + strings.Join(features, ",") + `]}`

	serialResult, err := Compile(mustDataset(t, doc), serialOptions())
	require.NoError(t, err)

	parallelOpts := DefaultCompileOptions()
	parallelOpts.Workers = 4
	parallelResult, err := Compile(mustDataset(t, doc), parallelOpts)
	require.NoError(t, err)

	assert.Equal(t, marshal(t, serialResult.Graph), marshal(t, parallelResult.Graph))
	assert.Equal(t, marshal(t, serialResult.Links), marshal(t, parallelResult.Links))
	assert.Equal(t, marshal(t, serialResult.Locators), marshal(t, parallelResult.Locators))
	assert.Equal(t, serialResult.Stats, parallelResult.Stats)
}

func TestCompileDeterministicAcrossRuns(t *testing.T) {
	doc := `{"features":[
		{"geometry":{"type":"LineString","coordinates":[[0,0],[1,1]]},"properties":{"name":"A"}},
		{"geometry":{"type":"Point","coordinates":[1,1]},"properties":{"name":"B"}},
		{"geometry":{"type":"Polygon","coordinates":[[[0,0],[2,0],[2,2],[0,0]]]},"properties":{"name":"C"}}
	]}`

	first, err := Compile(mustDataset(t, doc), serialOptions())
	require.NoError(t, err)
	second, err := Compile(mustDataset(t, doc), serialOptions())
	require.NoError(t, err)

	assert.Equal(t, marshal(t, first.Graph), marshal(t, second.Graph))
	assert.Equal(t, marshal(t, first.Links), marshal(t, second.Links))
	assert.Equal(t, marshal(t, first.Locators), marshal(t, second.Locators))
}

func TestCompileProgressReachesTotal(t *testing.T) {
	dataset := mustDataset(t, `{"features":[
		{"geometry":{"type":"Point","coordinates":[1,2]},"properties":{"name":"A"}},
		{"geometry":{"type":"Point","coordinates":[3,4]},"properties":{"name":"B"}},
		{"geometry":{"type":"Point","coordinates":[5,6]},"properties":{"name":"C"}}
	]}`)

	var calls int
	var lastDone, lastTotal int
	opts := serialOptions()
	opts.Progress = func(done, total int) {
		calls++
		lastDone, lastTotal = done, total
	}

	_, err := Compile(dataset, opts)
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 3, lastDone)
	assert.Equal(t, 3, lastTotal)
}

func marshal(t *testing.T, v interface{}) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return string(data)
}
