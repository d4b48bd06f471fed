package waterway

import (
	"encoding/json"
	"fmt"

	"github.com/minio/highwayhash"
)

// FeatureID uniquely identifies one feature within a compiled graph.
//
// The id is derived from the feature's content, so the same input always
// yields the same ids across runs. Structurally identical features (same
// name, geometry, and properties) receive the same id; the compiler counts
// such collisions in Stats but relies on upstream deduplication.
type FeatureID string

// NodeID uniquely identifies one (feature, coordinate) occurrence.
//
// Two features touching the same coordinate produce two distinct NodeIDs
// referencing the same physical location; they are linked by a junction
// edge, never merged.
type NodeID string

const idHashLen = 7

var idHashKey = []byte("waterway0123456789ABCDEFabcdef01")

// FeatureIDOf derives the stable id for a feature: "{name-or-node}#{hash}".
func FeatureIDOf(f *Feature) FeatureID {
	name := f.Name()
	if name == "" {
		name = "node"
	}
	return FeatureID(name + "#" + contentHash(f.canonical(), idHashLen))
}

func nodeID(fid FeatureID, c Coordinate) NodeID {
	return NodeID(string(fid) + ";" + c.Key())
}

// canonical returns the sorted-key serialization used for content hashing.
// encoding/json writes map keys in sorted order, so decoding the original
// bytes into a value tree and re-marshalling yields a stable form regardless
// of the key order in the input file.
func (f *Feature) canonical() []byte {
	src := f.raw
	if len(src) == 0 {
		src, _ = json.Marshal(f)
	}
	var tree interface{}
	if err := json.Unmarshal(src, &tree); err != nil {
		return src
	}
	out, err := json.Marshal(tree)
	if err != nil {
		return src
	}
	return out
}

func contentHash(data []byte, n int) string {
	mac, err := highwayhash.New64(idHashKey)
	if err != nil {
		// The key is a compile-time constant of the required length.
		panic("waterway: invalid id hash key: " + err.Error())
	}
	mac.Write(data)
	return fmt.Sprintf("%016x", mac.Sum64())[:n]
}
