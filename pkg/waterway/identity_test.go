package waterway

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeatureIDFormat(t *testing.T) {
	f := mustFeature(t, `{"geometry":{"type":"Point","coordinates":[1,2]},"properties":{"name":"Prinsengracht"}}`)
	assert.Regexp(t, regexp.MustCompile(`^Prinsengracht#[0-9a-f]{7}$`), string(FeatureIDOf(f)))
}

func TestFeatureIDUnnamedFallsBackToNode(t *testing.T) {
	f := mustFeature(t, `{"geometry":{"type":"Point","coordinates":[1,2]},"properties":{}}`)
	assert.Regexp(t, regexp.MustCompile(`^node#[0-9a-f]{7}$`), string(FeatureIDOf(f)))
}

func TestFeatureIDDeterministic(t *testing.T) {
	data := `{"geometry":{"type":"Point","coordinates":[4.9,52.37]},"properties":{"name":"A","oneway":true}}`
	assert.Equal(t, FeatureIDOf(mustFeature(t, data)), FeatureIDOf(mustFeature(t, data)))
}

// Key order in the input file must not affect identity: hashing runs over
// the canonical sorted-key serialization.
func TestFeatureIDIgnoresKeyOrder(t *testing.T) {
	a := mustFeature(t, `{"geometry":{"type":"Point","coordinates":[4.9,52.37]},"properties":{"name":"A","oneway":true}}`)
	b := mustFeature(t, `{"properties":{"oneway":true,"name":"A"},"geometry":{"coordinates":[4.9,52.37],"type":"Point"}}`)
	assert.Equal(t, FeatureIDOf(a), FeatureIDOf(b))
}

func TestFeatureIDDistinctContent(t *testing.T) {
	a := mustFeature(t, `{"geometry":{"type":"Point","coordinates":[1,2]},"properties":{"name":"A"}}`)
	b := mustFeature(t, `{"geometry":{"type":"Point","coordinates":[1,3]},"properties":{"name":"A"}}`)
	assert.NotEqual(t, FeatureIDOf(a), FeatureIDOf(b))
}

func TestCoordinateKeyRendering(t *testing.T) {
	assert.Equal(t, "1.5,-2.25", Coordinate{1.5, -2.25}.Key())
	assert.Equal(t, "1e-07,2", Coordinate{0.0000001, 2}.Key())
	assert.Equal(t, "0,0", Coordinate{0, 0}.Key())
}

func TestNodeIDComposition(t *testing.T) {
	f := mustFeature(t, `{"geometry":{"type":"Point","coordinates":[1,2]},"properties":{"name":"A"}}`)
	fid := FeatureIDOf(f)

	id := nodeID(fid, Coordinate{1, 2})
	require.Equal(t, NodeID(string(fid)+";1,2"), id)

	// Same feature, same coordinate, always the same id.
	assert.Equal(t, id, nodeID(fid, Coordinate{1, 2}))
}
