package entities

import (
	"mindmap-backend/domain/core/valueobjects"
	pkgerrors "mindmap-backend/pkg/errors"
)

// NodeKind is the closed set of node variants a map can hold
type NodeKind string

const (
	// KindEditable is a free-text node with a resizable box
	KindEditable NodeKind = "editable"
)

// ParseNodeKind validates a node kind. An empty kind is the editable node.
func ParseNodeKind(s string) (NodeKind, error) {
	switch kind := NodeKind(s); kind {
	case "", KindEditable:
		return KindEditable, nil
	}
	return "", pkgerrors.NewValidationError("unknown node kind: " + s)
}

// Node is a labeled, styled box on the canvas.
// Nodes are immutable values: every change returns a modified copy so a
// GraphState held by the history can never be altered after the fact.
type Node struct {
	id       valueobjects.NodeID
	kind     NodeKind
	position valueobjects.Position
	label    string
	style    valueobjects.NodeStyle
	size     valueobjects.Size
}

// NewNode creates an editable node. The label is stored as given; callers
// normalize it first.
func NewNode(id valueobjects.NodeID, position valueobjects.Position, label string, style valueobjects.NodeStyle) Node {
	return Node{
		id:       id,
		kind:     KindEditable,
		position: position,
		label:    label,
		style:    valueobjects.NodeStyle{}.Merge(style),
	}
}

// ReconstructNode recreates a node from stored data
func ReconstructNode(
	id valueobjects.NodeID,
	kind NodeKind,
	position valueobjects.Position,
	label string,
	style valueobjects.NodeStyle,
	size valueobjects.Size,
) (Node, error) {
	if id.IsZero() {
		return Node{}, pkgerrors.NewValidationError("node id cannot be empty")
	}
	kind, err := ParseNodeKind(string(kind))
	if err != nil {
		return Node{}, err
	}

	return Node{
		id:       id,
		kind:     kind,
		position: position,
		label:    label,
		style:    valueobjects.NodeStyle{}.Merge(style),
		size:     size,
	}, nil
}

// ID returns the node's identifier
func (n Node) ID() valueobjects.NodeID {
	return n.id
}

// Kind returns the node variant
func (n Node) Kind() NodeKind {
	return n.kind
}

// Position returns the node's canvas position
func (n Node) Position() valueobjects.Position {
	return n.position
}

// Label returns the node's text
func (n Node) Label() string {
	return n.label
}

// Style returns the explicitly set style fields
func (n Node) Style() valueobjects.NodeStyle {
	return n.style
}

// Size returns the node box; the zero size means "auto"
func (n Node) Size() valueobjects.Size {
	return n.size
}

// MovedTo returns a copy at the given position
func (n Node) MovedTo(position valueobjects.Position) Node {
	n.position = position
	return n
}

// Relabeled returns a copy with the given label
func (n Node) Relabeled(label string) Node {
	n.label = label
	return n
}

// Restyled returns a copy with the patch merged into its style
func (n Node) Restyled(patch valueobjects.NodeStyle) Node {
	n.style = n.style.Merge(patch)
	return n
}

// Resized returns a copy with the given box
func (n Node) Resized(size valueobjects.Size) Node {
	n.size = size
	return n
}
