package waterway

import (
	"sort"

	"github.com/dhconnelly/rtreego"
)

// occurrence is one (feature, coordinate index) appearance of a coordinate.
type occurrence struct {
	fid   FeatureID
	coord Coordinate
	index int // position within the feature's coordinate sequence
	seq   int // global insertion order, keeps neighbor order reproducible
}

// coordEntry is one distinct coordinate together with every occurrence that
// lands on it. Duplicate coordinates are common at shared junctions and all
// of their occurrences are junction candidates, not just one representative.
type coordEntry struct {
	coord       Coordinate
	occurrences []*occurrence
}

// R-tree rectangles must have non-zero extent, so point entries are padded
// with a sliver well below any usable tolerance.
const pointExtent = 1e-9

// Bounds implements rtreego.Spatial.
func (e *coordEntry) Bounds() rtreego.Rect {
	point := rtreego.Point{e.coord.Lon() - pointExtent/2, e.coord.Lat() - pointExtent/2}
	rect, _ := rtreego.NewRect(point, []float64{pointExtent, pointExtent})
	return rect
}

// coordIndex answers radius queries over every coordinate of every included
// feature.
//
// A pairwise scan is quadratic and unusable past a few thousand points; the
// R-tree makes each radius query O(log N), near-linear amortized over the
// whole run. The index is read-only once built and safe for concurrent
// queries from multiple workers.
type coordIndex struct {
	rtree   *rtreego.Rtree
	entries map[Coordinate]*coordEntry
}

func newCoordIndex() *coordIndex {
	return &coordIndex{
		rtree:   rtreego.NewTree(2, 25, 50),
		entries: make(map[Coordinate]*coordEntry),
	}
}

func (idx *coordIndex) add(occ *occurrence) {
	entry, ok := idx.entries[occ.coord]
	if !ok {
		entry = &coordEntry{coord: occ.coord}
		idx.entries[occ.coord] = entry
		idx.rtree.Insert(entry)
	}
	entry.occurrences = append(entry.occurrences, occ)
}

// within returns every occurrence strictly closer than tol to c, in global
// insertion order. Excluding the querying occurrence itself is the caller's
// job: a different occurrence of the same coordinate on the same feature
// (closed ring ends) is a valid match.
func (idx *coordIndex) within(c Coordinate, tol float64) []*occurrence {
	point := rtreego.Point{c.Lon() - tol, c.Lat() - tol}
	rect, err := rtreego.NewRect(point, []float64{2 * tol, 2 * tol})
	if err != nil {
		return nil
	}

	// Box query first, exact Euclidean filter second. The box fully
	// contains the tol-radius disc, so nothing is missed.
	var matches []*occurrence
	for _, spatial := range idx.rtree.SearchIntersect(rect) {
		entry := spatial.(*coordEntry)
		if c.DistanceTo(entry.coord) >= tol {
			continue
		}
		matches = append(matches, entry.occurrences...)
	}

	// R-tree result order is not stable across builds; sorting by global
	// insertion order keeps compiled output byte-identical between runs.
	sort.Slice(matches, func(i, j int) bool { return matches[i].seq < matches[j].seq })
	return matches
}
