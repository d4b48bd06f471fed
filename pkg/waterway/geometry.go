package waterway

import (
	"encoding/json"
	"sync"
)

// posListCache memoizes normalized coordinate sequences per feature.
//
// Entries are keyed by pre-assigned FeatureID so the spatial index build and
// the per-node compilation pass decode each geometry exactly once. The cache
// is owned by a single compilation run; nothing survives across runs.
type posListCache struct {
	mu    sync.Mutex
	lists map[FeatureID][]Coordinate
}

func newPosListCache() *posListCache {
	return &posListCache{lists: make(map[FeatureID][]Coordinate)}
}

func (c *posListCache) posList(fid FeatureID, f *Feature) []Coordinate {
	c.mu.Lock()
	defer c.mu.Unlock()
	if list, ok := c.lists[fid]; ok {
		return list
	}
	list := flattenGeometry(f.Geometry)
	c.lists[fid] = list
	return list
}

// flattenGeometry reduces a geometry to the ordered vertex sequence relevant
// to graph construction.
//
// Point yields a single coordinate, Polygon all ring vertices in ring order,
// MultiPolygon all polygons' rings in declaration order. Any other type is
// treated as a raw coordinate sequence (covers LineString and friends).
// Payloads that fit none of these decode to nil rather than failing the run.
func flattenGeometry(g Geometry) []Coordinate {
	if len(g.Coordinates) == 0 {
		return nil
	}
	switch g.Type {
	case "Point":
		var c Coordinate
		if err := json.Unmarshal(g.Coordinates, &c); err != nil {
			return nil
		}
		return []Coordinate{c}
	case "Polygon":
		var rings [][]Coordinate
		if err := json.Unmarshal(g.Coordinates, &rings); err != nil {
			return nil
		}
		var out []Coordinate
		for _, ring := range rings {
			out = append(out, ring...)
		}
		return out
	case "MultiPolygon":
		var polygons [][][]Coordinate
		if err := json.Unmarshal(g.Coordinates, &polygons); err != nil {
			return nil
		}
		var out []Coordinate
		for _, polygon := range polygons {
			for _, ring := range polygon {
				out = append(out, ring...)
			}
		}
		return out
	default:
		var coords []Coordinate
		if err := json.Unmarshal(g.Coordinates, &coords); err != nil {
			return nil
		}
		return coords
	}
}
