package entities

import (
	"mindmap-backend/domain/core/valueobjects"
	pkgerrors "mindmap-backend/pkg/errors"
)

// Edge connects two nodes. Source and target are kept for rendering only:
// for connectivity an edge between A and B is the same as one between B and A.
type Edge struct {
	id     valueobjects.EdgeID
	source valueobjects.NodeID
	target valueobjects.NodeID
	style  valueobjects.EdgeStyle
}

// NewEdge creates an edge
func NewEdge(id valueobjects.EdgeID, source, target valueobjects.NodeID, style valueobjects.EdgeStyle) Edge {
	return Edge{
		id:     id,
		source: source,
		target: target,
		style:  valueobjects.EdgeStyle{}.Merge(style),
	}
}

// ReconstructEdge recreates an edge from stored data
func ReconstructEdge(id valueobjects.EdgeID, source, target valueobjects.NodeID, style valueobjects.EdgeStyle) (Edge, error) {
	if id.IsZero() {
		return Edge{}, pkgerrors.NewValidationError("edge id cannot be empty")
	}
	if source.IsZero() || target.IsZero() {
		return Edge{}, pkgerrors.NewValidationError("edge endpoints cannot be empty")
	}
	return NewEdge(id, source, target, style), nil
}

// ID returns the edge's identifier
func (e Edge) ID() valueobjects.EdgeID {
	return e.id
}

// Source returns the node the edge is drawn from
func (e Edge) Source() valueobjects.NodeID {
	return e.source
}

// Target returns the node the edge is drawn to
func (e Edge) Target() valueobjects.NodeID {
	return e.target
}

// Style returns the explicitly set style fields
func (e Edge) Style() valueobjects.EdgeStyle {
	return e.style
}

// Touches reports whether the node is one of the edge's endpoints
func (e Edge) Touches(id valueobjects.NodeID) bool {
	return e.source.Equals(id) || e.target.Equals(id)
}

// Connects reports whether the edge joins a and b in either direction
func (e Edge) Connects(a, b valueobjects.NodeID) bool {
	return (e.source.Equals(a) && e.target.Equals(b)) ||
		(e.source.Equals(b) && e.target.Equals(a))
}

// Other returns the endpoint opposite to id
func (e Edge) Other(id valueobjects.NodeID) valueobjects.NodeID {
	if e.source.Equals(id) {
		return e.target
	}
	return e.source
}

// Restyled returns a copy with the patch merged into its style
func (e Edge) Restyled(patch valueobjects.EdgeStyle) Edge {
	e.style = e.style.Merge(patch)
	return e
}

// Reconnected returns a copy with new endpoints
func (e Edge) Reconnected(source, target valueobjects.NodeID) Edge {
	e.source = source
	e.target = target
	return e
}
