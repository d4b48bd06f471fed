package waterway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/viant/afs"
)

// SchemaVersion identifies the output document schema. Kept as a JSON number
// literal so it serializes as 1.0, the form downstream consumers expect.
const SchemaVersion = "1.0"

// envelope carries the metadata common to every output document.
type envelope struct {
	Name          string      `json:"name"`
	CreatedAt     string      `json:"createdAt"`
	SchemaVersion json.Number `json:"schemaVersion"`
}

func newEnvelope(name string, now time.Time) envelope {
	return envelope{
		Name:          name,
		CreatedAt:     now.UTC().Format(time.RFC3339),
		SchemaVersion: json.Number(SchemaVersion),
	}
}

// GraphDocument is the persisted form of the node graph.
type GraphDocument struct {
	envelope
	Graph map[NodeID]*GraphNode `json:"graph"`
}

// LinksDocument is the persisted form of the per-feature link records.
type LinksDocument struct {
	envelope
	Tree map[FeatureID]*LinkRecord `json:"tree"`
}

// LocatorsDocument is the persisted form of the name-keyed locators.
type LocatorsDocument struct {
	envelope
	Locators []Locator `json:"locators"`
}

// NewGraphDocument wraps a result's graph for persistence under the given
// document name.
func NewGraphDocument(name string, result *Result, now time.Time) *GraphDocument {
	return &GraphDocument{envelope: newEnvelope(name, now), Graph: result.Graph}
}

// NewLinksDocument wraps a result's link records for persistence.
func NewLinksDocument(name string, result *Result, now time.Time) *LinksDocument {
	return &LinksDocument{envelope: newEnvelope(name, now), Tree: result.Links}
}

// NewLocatorsDocument wraps a result's locators for persistence.
func NewLocatorsDocument(name string, result *Result, now time.Time) *LocatorsDocument {
	locators := result.Locators
	if locators == nil {
		locators = []Locator{}
	}
	return &LocatorsDocument{envelope: newEnvelope(name, now), Locators: locators}
}

// WriteDocument serializes doc as indented JSON at the given location.
func WriteDocument(ctx context.Context, fs afs.Service, location string, doc interface{}) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", location, err)
	}
	if err := fs.Upload(ctx, location, 0644, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write %s: %w", location, err)
	}
	return nil
}

// WriteResult persists the full graph/links/locators triple.
//
// All three documents are serialized before the first byte is written, so an
// encoding problem fails the run with nothing on disk.
func WriteResult(ctx context.Context, fs afs.Service, result *Result, graphPath, linksPath, locatorsPath string) error {
	now := time.Now()
	docs := []struct {
		location string
		doc      interface{}
	}{
		{graphPath, NewGraphDocument(graphPath, result, now)},
		{linksPath, NewLinksDocument(linksPath, result, now)},
		{locatorsPath, NewLocatorsDocument(locatorsPath, result, now)},
	}

	encoded := make([][]byte, len(docs))
	for i, d := range docs {
		data, err := json.MarshalIndent(d.doc, "", "  ")
		if err != nil {
			return fmt.Errorf("encode %s: %w", d.location, err)
		}
		encoded[i] = data
	}
	for i, d := range docs {
		if err := fs.Upload(ctx, d.location, 0644, bytes.NewReader(encoded[i])); err != nil {
			return fmt.Errorf("write %s: %w", d.location, err)
		}
	}
	return nil
}
