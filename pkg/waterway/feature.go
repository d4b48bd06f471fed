package waterway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/viant/afs"
)

// Coordinate is a (longitude, latitude) pair in input units.
//
// Coordinates follow the GeoJSON convention [lon, lat] and marshal as a
// two-element JSON array. They are not unique: the same coordinate may appear
// in several features (shared junctions) or several times within one feature
// (closed rings).
type Coordinate [2]float64

// Lon returns the longitude (first) component.
func (c Coordinate) Lon() float64 { return c[0] }

// Lat returns the latitude (second) component.
func (c Coordinate) Lat() float64 { return c[1] }

// Key renders the coordinate in the textual form used inside node ids.
// Equal coordinates always render identically, so node ids derived from the
// same (feature, coordinate) pair are byte-identical across runs.
func (c Coordinate) Key() string {
	return formatOrdinate(c[0]) + "," + formatOrdinate(c[1])
}

// DistanceTo returns the Euclidean distance to another coordinate, in the
// same units as the input data.
func (c Coordinate) DistanceTo(o Coordinate) float64 {
	return math.Hypot(c[0]-o[0], c[1]-o[1])
}

func formatOrdinate(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Geometry is the raw spatial payload of a feature.
//
// Coordinates stay unparsed until the normalizer flattens them; the shape of
// the payload depends on Type and unsupported shapes degrade to nothing
// rather than failing the run.
type Geometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// Feature is one named geometric record from the input dataset.
//
// The property bag is free-form. Only two properties matter to compilation:
// "name" (required for a feature to be included at all) and "oneway"
// (optional boolean, default false).
type Feature struct {
	Type       string                 `json:"type,omitempty"`
	Geometry   Geometry               `json:"geometry"`
	Properties map[string]interface{} `json:"properties"`

	// raw keeps the original encoding for content hashing and so link
	// records can carry the feature through unmodified.
	raw json.RawMessage
}

// UnmarshalJSON decodes the feature and retains its original encoding.
func (f *Feature) UnmarshalJSON(data []byte) error {
	type plain Feature
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*f = Feature(p)
	f.raw = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON emits the feature exactly as it appeared in the input when the
// original encoding is available.
func (f *Feature) MarshalJSON() ([]byte, error) {
	if len(f.raw) > 0 {
		return f.raw, nil
	}
	type plain Feature
	return json.Marshal((*plain)(f))
}

// Name returns the feature's name property, or "" when absent or not a
// string. Features with an empty name are excluded from compilation.
func (f *Feature) Name() string {
	if f == nil || f.Properties == nil {
		return ""
	}
	name, _ := f.Properties["name"].(string)
	return name
}

// Oneway reports whether traffic along the feature is restricted to the
// forward coordinate order.
func (f *Feature) Oneway() bool {
	if f == nil || f.Properties == nil {
		return false
	}
	oneway, _ := f.Properties["oneway"].(bool)
	return oneway
}

// FeatureCollection is the decoded input document.
type FeatureCollection struct {
	Type     string     `json:"type,omitempty"`
	Features []*Feature `json:"features"`
}

// DecodeDataset reads one feature collection from r.
//
// A document without a "features" array is an input error; individual
// features with missing names or odd geometries are not, they are skipped
// later during compilation.
func DecodeDataset(r io.Reader) (*FeatureCollection, error) {
	var probe struct {
		Type     string      `json:"type"`
		Features *[]*Feature `json:"features"`
	}
	if err := json.NewDecoder(r).Decode(&probe); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	if probe.Features == nil {
		return nil, ErrMissingFeatures
	}
	return &FeatureCollection{Type: probe.Type, Features: *probe.Features}, nil
}

// LoadDataset reads a feature collection from the given location.
func LoadDataset(ctx context.Context, fs afs.Service, location string) (*FeatureCollection, error) {
	ok, err := fs.Exists(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", location, err)
	}
	if !ok {
		return nil, &ErrNoInput{Path: location}
	}
	data, err := fs.DownloadWithURL(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", location, err)
	}
	return DecodeDataset(bytes.NewReader(data))
}
