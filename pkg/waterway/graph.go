package waterway

import "encoding/json"

// Neighbor is one directed adjacency from a graph node, recording both the
// feature the edge belongs to and the node it points at.
type Neighbor struct {
	Feature FeatureID
	Node    NodeID
}

// MarshalJSON emits the wire form ["featureId", "nodeId"].
func (n Neighbor) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{string(n.Feature), string(n.Node)})
}

// UnmarshalJSON decodes the ["featureId", "nodeId"] wire form.
func (n *Neighbor) UnmarshalJSON(data []byte) error {
	var pair [2]string
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	n.Feature = FeatureID(pair[0])
	n.Node = NodeID(pair[1])
	return nil
}

// GraphNode is one (feature, coordinate) occurrence in the compiled graph.
//
// Neighbors are ordered: forward sequential edge first, then the backward
// sequential edge (absent for one-way features and at the first coordinate),
// then junction edges in dataset order.
type GraphNode struct {
	ID        NodeID     `json:"id"`
	Pos       Coordinate `json:"pos"`
	Neighbors []Neighbor `json:"neighbors"`
}

// LinkRecord is the per-feature entry of the links document, carrying the
// normalized coordinate sequence and the original feature.
type LinkRecord struct {
	ID          FeatureID    `json:"id"`
	Name        string       `json:"name"`
	Coordinates []Coordinate `json:"coordinates"`
	Feature     *Feature     `json:"feature"`
}

// Locator maps a feature name to one representative graph node, usable to
// enter the graph by name. The first node compiled for a name wins.
type Locator struct {
	Name  string `json:"name"`
	Value NodeID `json:"value"`
}

// Result holds the three artifacts of one compilation run.
type Result struct {
	Graph    map[NodeID]*GraphNode
	Links    map[FeatureID]*LinkRecord
	Locators []Locator
	Stats    Stats
}

// Stats summarizes one compilation run.
type Stats struct {
	FeaturesSeen     int // features present in the input document
	FeaturesCompiled int // named features that produced at least one node
	FeaturesSkipped  int // unnamed features and features with no coordinates
	Nodes            int // distinct node ids emitted
	JunctionEdges    int // spatial neighbor edges emitted
	IDCollisions     int // distinct input features mapping to one FeatureID
}
