package versioning

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"mindmap-backend/domain/core/aggregates"
	"mindmap-backend/domain/core/entities"
	"mindmap-backend/domain/core/valueobjects"
)

// ChangeType represents the type of change between two states
type ChangeType string

const (
	ChangeTypeNodeAdded   ChangeType = "node_added"
	ChangeTypeNodeRemoved ChangeType = "node_removed"
	ChangeTypeNodeUpdated ChangeType = "node_updated"
	ChangeTypeEdgeAdded   ChangeType = "edge_added"
	ChangeTypeEdgeRemoved ChangeType = "edge_removed"
	ChangeTypeEdgeUpdated ChangeType = "edge_updated"
)

// Change represents one element that differs between two states
type Change struct {
	Type     ChangeType `json:"type"`
	EntityID string     `json:"entity_id"`
}

// StateDiff represents the difference between two graph states
type StateDiff struct {
	NodesDiff NodesDiff `json:"nodes_diff"`
	EdgesDiff EdgesDiff `json:"edges_diff"`
	Changes   []Change  `json:"changes,omitempty"`
}

// NodesDiff represents changes in nodes
type NodesDiff struct {
	Added   int `json:"added"`
	Removed int `json:"removed"`
	Updated int `json:"updated"`
}

// EdgesDiff represents changes in edges
type EdgesDiff struct {
	Added   int `json:"added"`
	Removed int `json:"removed"`
	Updated int `json:"updated"`
}

// IsEmpty reports whether both states are equal
func (d StateDiff) IsEmpty() bool {
	return len(d.Changes) == 0
}

// Compare lists the nodes and edges added, removed or updated going from
// one state to the other. Changes are ordered: nodes before edges, each
// following the z-order of the state they are found in. Elements are
// matched by id, so an id deleted and then handed out again shows up as
// an update.
func Compare(from, to aggregates.GraphState) StateDiff {
	var diff StateDiff

	for _, node := range to.Nodes() {
		before, ok := from.Node(node.ID())
		switch {
		case !ok:
			diff.NodesDiff.Added++
			diff.Changes = append(diff.Changes, Change{ChangeTypeNodeAdded, node.ID().String()})
		case !sameNode(before, node):
			diff.NodesDiff.Updated++
			diff.Changes = append(diff.Changes, Change{ChangeTypeNodeUpdated, node.ID().String()})
		}
	}
	for _, node := range from.Nodes() {
		if !to.HasNode(node.ID()) {
			diff.NodesDiff.Removed++
			diff.Changes = append(diff.Changes, Change{ChangeTypeNodeRemoved, node.ID().String()})
		}
	}

	for _, edge := range to.Edges() {
		before, ok := from.Edge(edge.ID())
		switch {
		case !ok:
			diff.EdgesDiff.Added++
			diff.Changes = append(diff.Changes, Change{ChangeTypeEdgeAdded, edge.ID().String()})
		case !sameEdge(before, edge):
			diff.EdgesDiff.Updated++
			diff.Changes = append(diff.Changes, Change{ChangeTypeEdgeUpdated, edge.ID().String()})
		}
	}
	for _, edge := range from.Edges() {
		if _, ok := to.Edge(edge.ID()); !ok {
			diff.EdgesDiff.Removed++
			diff.Changes = append(diff.Changes, Change{ChangeTypeEdgeRemoved, edge.ID().String()})
		}
	}

	return diff
}

func sameNode(a, b entities.Node) bool {
	return a.Kind() == b.Kind() &&
		a.Position().Equals(b.Position()) &&
		a.Label() == b.Label() &&
		a.Size() == b.Size() &&
		a.Style().Equals(b.Style())
}

func sameEdge(a, b entities.Edge) bool {
	return a.Source().Equals(b.Source()) &&
		a.Target().Equals(b.Target()) &&
		a.Style().Equals(b.Style())
}

// Equal reports whether two states hold the same nodes and edges in the
// same order
func Equal(a, b aggregates.GraphState) bool {
	if a.NodeCount() != b.NodeCount() || a.EdgeCount() != b.EdgeCount() {
		return false
	}
	an, bn := a.Nodes(), b.Nodes()
	for i := range an {
		if an[i].ID() != bn[i].ID() || !sameNode(an[i], bn[i]) {
			return false
		}
	}
	ae, be := a.Edges(), b.Edges()
	for i := range ae {
		if ae[i].ID() != be[i].ID() || !sameEdge(ae[i], be[i]) {
			return false
		}
	}
	return true
}

// canonical is the deterministic representation hashed by Checksum
type canonical struct {
	Nodes []canonicalNode `json:"n"`
	Edges []canonicalEdge `json:"e"`
}

type canonicalNode struct {
	ID       string                 `json:"id"`
	Kind     entities.NodeKind      `json:"k"`
	Position valueobjects.Position  `json:"p"`
	Label    string                 `json:"l"`
	Style    valueobjects.NodeStyle `json:"s"`
	Size     valueobjects.Size      `json:"z"`
}

type canonicalEdge struct {
	ID     string                 `json:"id"`
	Source string                 `json:"src"`
	Target string                 `json:"dst"`
	Style  valueobjects.EdgeStyle `json:"s"`
}

// Checksum calculates a SHA-256 over the content and order of a state
func Checksum(state aggregates.GraphState) (string, error) {
	data := canonical{
		Nodes: make([]canonicalNode, 0, state.NodeCount()),
		Edges: make([]canonicalEdge, 0, state.EdgeCount()),
	}
	for _, node := range state.Nodes() {
		data.Nodes = append(data.Nodes, canonicalNode{
			ID:       node.ID().String(),
			Kind:     node.Kind(),
			Position: node.Position(),
			Label:    node.Label(),
			Style:    node.Style(),
			Size:     node.Size(),
		})
	}
	for _, edge := range state.Edges() {
		data.Edges = append(data.Edges, canonicalEdge{
			ID:     edge.ID().String(),
			Source: edge.Source().String(),
			Target: edge.Target().String(),
			Style:  edge.Style(),
		})
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("failed to encode state for checksum: %w", err)
	}

	hash := sha256.Sum256(jsonData)
	return hex.EncodeToString(hash[:]), nil
}
