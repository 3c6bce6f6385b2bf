// Package snapshot serializes a session into the opaque document kept by
// the snapshot store and reads it back.
package snapshot

import (
	"encoding/json"
	"fmt"

	"mindmap-backend/domain/core/aggregates"
	"mindmap-backend/domain/core/entities"
	"mindmap-backend/domain/core/valueobjects"
	"mindmap-backend/domain/versioning"
	pkgerrors "mindmap-backend/pkg/errors"
)

// FormatVersion is the document version written by Encode
const FormatVersion = 1

// Document is the serialized form of a map
type Document struct {
	Version  int                    `json:"version"`
	Nodes    []NodeDocument         `json:"nodes"`
	Edges    []EdgeDocument         `json:"edges"`
	Viewport *valueobjects.Viewport `json:"viewport,omitempty"`
	Checksum string                 `json:"checksum,omitempty"`
}

// NodeDocument is the serialized form of a node
type NodeDocument struct {
	ID       string                 `json:"id"`
	Type     string                 `json:"type"`
	Position valueobjects.Position  `json:"position"`
	Label    string                 `json:"label"`
	Style    valueobjects.NodeStyle `json:"style"`
	Size     *valueobjects.Size     `json:"size,omitempty"`
}

// EdgeDocument is the serialized form of an edge
type EdgeDocument struct {
	ID     string                 `json:"id"`
	Source string                 `json:"source"`
	Target string                 `json:"target"`
	Style  valueobjects.EdgeStyle `json:"style"`
}

// Codec converts between graph states and documents. Decoding goes
// through the graph store so a document breaking any graph rule is
// rejected as a whole.
type Codec struct {
	store  *aggregates.GraphStore
	bounds valueobjects.ZoomBounds
}

// NewCodec creates a codec validating against the store's rules
func NewCodec(store *aggregates.GraphStore, bounds valueobjects.ZoomBounds) *Codec {
	return &Codec{store: store, bounds: bounds}
}

// Encode serializes a state and the viewport it was last seen through
func (c *Codec) Encode(state aggregates.GraphState, viewport valueobjects.Viewport) ([]byte, error) {
	doc, err := c.ToDocument(state, viewport)
	if err != nil {
		return nil, err
	}
	return json.Marshal(doc)
}

// ToDocument builds the document for a state
func (c *Codec) ToDocument(state aggregates.GraphState, viewport valueobjects.Viewport) (*Document, error) {
	checksum, err := versioning.Checksum(state)
	if err != nil {
		return nil, err
	}

	doc := &Document{
		Version:  FormatVersion,
		Nodes:    make([]NodeDocument, 0, state.NodeCount()),
		Edges:    make([]EdgeDocument, 0, state.EdgeCount()),
		Viewport: &viewport,
		Checksum: checksum,
	}
	for _, node := range state.Nodes() {
		nd := NodeDocument{
			ID:       node.ID().String(),
			Type:     string(node.Kind()),
			Position: node.Position(),
			Label:    node.Label(),
			Style:    node.Style(),
		}
		if size := node.Size(); !size.IsZero() {
			nd.Size = &size
		}
		doc.Nodes = append(doc.Nodes, nd)
	}
	for _, edge := range state.Edges() {
		doc.Edges = append(doc.Edges, EdgeDocument{
			ID:     edge.ID().String(),
			Source: edge.Source().String(),
			Target: edge.Target().String(),
			Style:  edge.Style(),
		})
	}
	return doc, nil
}

// Decode parses a document back into a state and viewport. A document
// without a viewport opens at the identity view.
func (c *Codec) Decode(data []byte) (aggregates.GraphState, valueobjects.Viewport, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return aggregates.GraphState{}, valueobjects.Viewport{},
			pkgerrors.NewValidationError("malformed map document").WithCause(err)
	}
	return c.FromDocument(&doc)
}

// FromDocument validates a parsed document and rebuilds its state
func (c *Codec) FromDocument(doc *Document) (aggregates.GraphState, valueobjects.Viewport, error) {
	viewport := valueobjects.NewViewport(c.bounds)
	if doc.Version < 0 || doc.Version > FormatVersion {
		return aggregates.GraphState{}, viewport,
			pkgerrors.NewValidationError(fmt.Sprintf("unsupported map document version %d", doc.Version))
	}

	violations := pkgerrors.NewValidationErrors()

	nodes := make([]entities.Node, 0, len(doc.Nodes))
	for i, nd := range doc.Nodes {
		field := fmt.Sprintf("nodes[%d]", i)
		if err := nd.Style.Validate(); err != nil {
			violations.Add(field+".style", err.Error())
			continue
		}
		var size valueobjects.Size
		if nd.Size != nil {
			size = *nd.Size
		}
		node, err := entities.ReconstructNode(
			valueobjects.NodeID(nd.ID),
			entities.NodeKind(nd.Type),
			nd.Position,
			nd.Label,
			nd.Style,
			size,
		)
		if err != nil {
			violations.Add(field, err.Error())
			continue
		}
		nodes = append(nodes, node)
	}

	edges := make([]entities.Edge, 0, len(doc.Edges))
	for i, ed := range doc.Edges {
		field := fmt.Sprintf("edges[%d]", i)
		if err := ed.Style.Validate(); err != nil {
			violations.Add(field+".style", err.Error())
			continue
		}
		edge, err := entities.ReconstructEdge(
			valueobjects.EdgeID(ed.ID),
			valueobjects.NodeID(ed.Source),
			valueobjects.NodeID(ed.Target),
			ed.Style,
		)
		if err != nil {
			violations.Add(field, err.Error())
			continue
		}
		edges = append(edges, edge)
	}

	if err := violations.ErrorOrNil(); err != nil {
		return aggregates.GraphState{}, viewport, err
	}

	state, err := c.store.Restore(nodes, edges)
	if err != nil {
		return aggregates.GraphState{}, viewport, err
	}

	if doc.Checksum != "" {
		sum, err := versioning.Checksum(state)
		if err != nil {
			return aggregates.GraphState{}, viewport, err
		}
		if sum != doc.Checksum {
			return aggregates.GraphState{}, viewport,
				pkgerrors.NewValidationError("map document checksum mismatch").WithCode("CHECKSUM_MISMATCH")
		}
	}

	if doc.Viewport != nil {
		viewport = doc.Viewport.WithBounds(c.bounds)
	}
	return state, viewport, nil
}
