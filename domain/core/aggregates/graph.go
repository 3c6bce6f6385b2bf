package aggregates

import (
	"mindmap-backend/domain/config"
	"mindmap-backend/domain/core/entities"
	"mindmap-backend/domain/core/validators"
	"mindmap-backend/domain/core/valueobjects"
	"mindmap-backend/pkg/errors"
)

// GraphState is one immutable snapshot of a mind map: nodes in insertion
// order (which is also their z-order) and edges in insertion order.
// The zero value is the empty graph.
type GraphState struct {
	nodes []entities.Node
	edges []entities.Edge
}

// EmptyState returns a graph without nodes or edges
func EmptyState() GraphState {
	return GraphState{}
}

// Nodes returns a copy of the nodes in z-order
func (s GraphState) Nodes() []entities.Node {
	nodes := make([]entities.Node, len(s.nodes))
	copy(nodes, s.nodes)
	return nodes
}

// Edges returns a copy of the edges in insertion order
func (s GraphState) Edges() []entities.Edge {
	edges := make([]entities.Edge, len(s.edges))
	copy(edges, s.edges)
	return edges
}

// NodeCount returns the number of nodes
func (s GraphState) NodeCount() int {
	return len(s.nodes)
}

// EdgeCount returns the number of edges
func (s GraphState) EdgeCount() int {
	return len(s.edges)
}

// IsEmpty reports whether the graph has no nodes
func (s GraphState) IsEmpty() bool {
	return len(s.nodes) == 0 && len(s.edges) == 0
}

// Node looks up a node by id
func (s GraphState) Node(id valueobjects.NodeID) (entities.Node, bool) {
	if i := s.nodeIndex(id); i >= 0 {
		return s.nodes[i], true
	}
	return entities.Node{}, false
}

// HasNode checks if a node exists without returning it
func (s GraphState) HasNode(id valueobjects.NodeID) bool {
	return s.nodeIndex(id) >= 0
}

// Edge looks up an edge by id
func (s GraphState) Edge(id valueobjects.EdgeID) (entities.Edge, bool) {
	if i := s.edgeIndex(id); i >= 0 {
		return s.edges[i], true
	}
	return entities.Edge{}, false
}

// NodeIDs returns the ids of all nodes in z-order
func (s GraphState) NodeIDs() []valueobjects.NodeID {
	ids := make([]valueobjects.NodeID, len(s.nodes))
	for i, node := range s.nodes {
		ids[i] = node.ID()
	}
	return ids
}

// EdgeIDs returns the ids of all edges in insertion order
func (s GraphState) EdgeIDs() []valueobjects.EdgeID {
	ids := make([]valueobjects.EdgeID, len(s.edges))
	for i, edge := range s.edges {
		ids[i] = edge.ID()
	}
	return ids
}

// Neighbors returns the set of nodes joined to id by an edge, in either
// direction
func (s GraphState) Neighbors(id valueobjects.NodeID) map[valueobjects.NodeID]bool {
	neighbors := make(map[valueobjects.NodeID]bool)
	for _, edge := range s.edges {
		if edge.Touches(id) {
			neighbors[edge.Other(id)] = true
		}
	}
	return neighbors
}

// Clusters groups node ids into connected components, treating edges as
// undirected. Components and their members follow z-order.
func (s GraphState) Clusters() [][]valueobjects.NodeID {
	adjacency := make(map[valueobjects.NodeID][]valueobjects.NodeID, len(s.nodes))
	for _, edge := range s.edges {
		adjacency[edge.Source()] = append(adjacency[edge.Source()], edge.Target())
		adjacency[edge.Target()] = append(adjacency[edge.Target()], edge.Source())
	}

	visited := make(map[valueobjects.NodeID]bool, len(s.nodes))
	var clusters [][]valueobjects.NodeID
	for _, node := range s.nodes {
		if visited[node.ID()] {
			continue
		}
		var cluster []valueobjects.NodeID
		stack := []valueobjects.NodeID{node.ID()}
		visited[node.ID()] = true
		for len(stack) > 0 {
			current := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			cluster = append(cluster, current)
			for _, next := range adjacency[current] {
				if !visited[next] {
					visited[next] = true
					stack = append(stack, next)
				}
			}
		}
		clusters = append(clusters, s.inZOrder(cluster))
	}
	return clusters
}

func (s GraphState) inZOrder(ids []valueobjects.NodeID) []valueobjects.NodeID {
	members := make(map[valueobjects.NodeID]bool, len(ids))
	for _, id := range ids {
		members[id] = true
	}
	ordered := make([]valueobjects.NodeID, 0, len(ids))
	for _, node := range s.nodes {
		if members[node.ID()] {
			ordered = append(ordered, node.ID())
		}
	}
	return ordered
}

func (s GraphState) nodeIndex(id valueobjects.NodeID) int {
	for i, node := range s.nodes {
		if node.ID().Equals(id) {
			return i
		}
	}
	return -1
}

func (s GraphState) edgeIndex(id valueobjects.EdgeID) int {
	for i, edge := range s.edges {
		if edge.ID().Equals(id) {
			return i
		}
	}
	return -1
}

// withNode returns a state where the node at index i is replaced.
// The backing arrays are copied so earlier snapshots stay untouched.
func (s GraphState) withNode(i int, node entities.Node) GraphState {
	nodes := s.Nodes()
	nodes[i] = node
	return GraphState{nodes: nodes, edges: s.edges}
}

func (s GraphState) withEdge(i int, edge entities.Edge) GraphState {
	edges := s.Edges()
	edges[i] = edge
	return GraphState{nodes: s.nodes, edges: edges}
}

// GraphStore applies the graph operations. Every operation is pure: it
// takes a state and returns a new one, leaving its input untouched, and
// it reports whether anything changed. Operations naming a missing node or
// edge are no-ops.
type GraphStore struct {
	config    *config.DomainConfig
	validator *validators.ConnectionValidator
}

// NewGraphStore creates a store applying the given rules
func NewGraphStore(cfg *config.DomainConfig) *GraphStore {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return &GraphStore{
		config:    cfg,
		validator: validators.NewConnectionValidator(cfg),
	}
}

// Validator returns the connection validator used by AddEdge
func (g *GraphStore) Validator() *validators.ConnectionValidator {
	return g.validator
}

// SeedState returns the state a new map starts with: one placeholder
// node at the canvas origin
func (g *GraphStore) SeedState() GraphState {
	state, _ := g.AddNode(EmptyState(), valueobjects.Origin(), nil, valueobjects.NodeStyle{})
	return state
}

// Restore builds a state from decoded nodes and edges, rejecting any that
// break a structural rule
func (g *GraphStore) Restore(nodes []entities.Node, edges []entities.Edge) (GraphState, error) {
	if err := g.validator.ValidateState(nodes, edges); err != nil {
		return GraphState{}, err
	}
	state := GraphState{
		nodes: make([]entities.Node, len(nodes)),
		edges: make([]entities.Edge, len(edges)),
	}
	copy(state.nodes, nodes)
	copy(state.edges, edges)
	return state, nil
}

// AddNode appends a node with a fresh id. A nil label gives the node the
// placeholder label. AddNode never fails.
func (g *GraphStore) AddNode(s GraphState, position valueobjects.Position, label *string, style valueobjects.NodeStyle) (GraphState, valueobjects.NodeID) {
	text := g.config.PlaceholderLabel
	if label != nil {
		text = valueobjects.NormalizeLabel(*label, g.config)
	}

	id := valueobjects.NextNodeID(s.NodeIDs())
	nodes := make([]entities.Node, len(s.nodes), len(s.nodes)+1)
	copy(nodes, s.nodes)
	nodes = append(nodes, entities.NewNode(id, position, text, style))

	return GraphState{nodes: nodes, edges: s.edges}, id
}

// MoveNode updates one node's position
func (g *GraphStore) MoveNode(s GraphState, id valueobjects.NodeID, position valueobjects.Position) (GraphState, bool) {
	i := s.nodeIndex(id)
	if i < 0 || s.nodes[i].Position().Equals(position) {
		return s, false
	}
	return s.withNode(i, s.nodes[i].MovedTo(position)), true
}

// UpdateNodeStyle merges a partial style into a node
func (g *GraphStore) UpdateNodeStyle(s GraphState, id valueobjects.NodeID, patch valueobjects.NodeStyle) (GraphState, bool) {
	i := s.nodeIndex(id)
	if i < 0 {
		return s, false
	}
	updated := s.nodes[i].Restyled(patch)
	if updated.Style().Equals(s.nodes[i].Style()) {
		return s, false
	}
	return s.withNode(i, updated), true
}

// SetNodeLabel replaces a node's label
func (g *GraphStore) SetNodeLabel(s GraphState, id valueobjects.NodeID, text string) (GraphState, bool) {
	i := s.nodeIndex(id)
	if i < 0 {
		return s, false
	}
	text = valueobjects.NormalizeLabel(text, g.config)
	if s.nodes[i].Label() == text {
		return s, false
	}
	return s.withNode(i, s.nodes[i].Relabeled(text)), true
}

// ResizeNode sets a node's box, clamped to the minimum node size
func (g *GraphStore) ResizeNode(s GraphState, id valueobjects.NodeID, size valueobjects.Size) (GraphState, bool) {
	i := s.nodeIndex(id)
	if i < 0 {
		return s, false
	}
	size = valueobjects.NewSize(size.Width(), size.Height())
	if s.nodes[i].Size() == size {
		return s, false
	}
	return s.withNode(i, s.nodes[i].Resized(size)), true
}

// DeleteNode removes a node and every edge touching it
func (g *GraphStore) DeleteNode(s GraphState, id valueobjects.NodeID) (GraphState, bool) {
	i := s.nodeIndex(id)
	if i < 0 {
		return s, false
	}

	nodes := make([]entities.Node, 0, len(s.nodes)-1)
	nodes = append(nodes, s.nodes[:i]...)
	nodes = append(nodes, s.nodes[i+1:]...)

	edges := make([]entities.Edge, 0, len(s.edges))
	for _, edge := range s.edges {
		if !edge.Touches(id) {
			edges = append(edges, edge)
		}
	}

	return GraphState{nodes: nodes, edges: edges}, true
}

// AddEdge appends an edge with a fresh id if both endpoints exist and the
// connection validator accepts it. Otherwise the input state is returned
// together with the reason.
func (g *GraphStore) AddEdge(s GraphState, source, target valueobjects.NodeID, style valueobjects.EdgeStyle) (GraphState, valueobjects.EdgeID, error) {
	if !s.HasNode(source) {
		return s, "", errors.ErrNodeNotFound.WithDetail("node_id", source.String())
	}
	if !s.HasNode(target) {
		return s, "", errors.ErrNodeNotFound.WithDetail("node_id", target.String())
	}

	candidate := validators.Connection{Source: source, Target: target}
	if err := g.validator.Check(candidate, s.edges); err != nil {
		return s, "", err
	}

	id := valueobjects.NextEdgeID(s.EdgeIDs())
	edges := make([]entities.Edge, len(s.edges), len(s.edges)+1)
	copy(edges, s.edges)
	edges = append(edges, entities.NewEdge(id, source, target, style))

	return GraphState{nodes: s.nodes, edges: edges}, id, nil
}

// CanConnect reports whether AddEdge would accept the pair
func (g *GraphStore) CanConnect(s GraphState, source, target valueobjects.NodeID) bool {
	if !s.HasNode(source) || !s.HasNode(target) {
		return false
	}
	return g.validator.IsValid(validators.Connection{Source: source, Target: target}, s.edges)
}

// ReconnectEdge moves an edge to new endpoints. The move is checked
// against every other edge, so an edge may be flipped onto its own pair.
// A missing edge or endpoint and a rejected move leave the state unchanged.
func (g *GraphStore) ReconnectEdge(s GraphState, id valueobjects.EdgeID, source, target valueobjects.NodeID) (GraphState, bool, error) {
	i := s.edgeIndex(id)
	if i < 0 {
		return s, false, errors.ErrEdgeNotFound.WithDetail("edge_id", id.String())
	}
	if !s.HasNode(source) {
		return s, false, errors.ErrNodeNotFound.WithDetail("node_id", source.String())
	}
	if !s.HasNode(target) {
		return s, false, errors.ErrNodeNotFound.WithDetail("node_id", target.String())
	}

	current := s.edges[i]
	if current.Source().Equals(source) && current.Target().Equals(target) {
		return s, false, nil
	}

	others := make([]entities.Edge, 0, len(s.edges)-1)
	others = append(others, s.edges[:i]...)
	others = append(others, s.edges[i+1:]...)
	candidate := validators.Connection{Source: source, Target: target}
	if err := g.validator.Check(candidate, others); err != nil {
		return s, false, err
	}

	return s.withEdge(i, current.Reconnected(source, target)), true, nil
}

// UpdateEdgeStyle merges a partial style into an edge
func (g *GraphStore) UpdateEdgeStyle(s GraphState, id valueobjects.EdgeID, patch valueobjects.EdgeStyle) (GraphState, bool) {
	i := s.edgeIndex(id)
	if i < 0 {
		return s, false
	}
	updated := s.edges[i].Restyled(patch)
	if updated.Style().Equals(s.edges[i].Style()) {
		return s, false
	}
	return s.withEdge(i, updated), true
}

// SetEdgeShape changes how an edge is routed
func (g *GraphStore) SetEdgeShape(s GraphState, id valueobjects.EdgeID, shape valueobjects.EdgeShape) (GraphState, bool) {
	return g.UpdateEdgeStyle(s, id, valueobjects.EdgeStyle{Shape: &shape})
}

// DeleteEdge removes one edge
func (g *GraphStore) DeleteEdge(s GraphState, id valueobjects.EdgeID) (GraphState, bool) {
	i := s.edgeIndex(id)
	if i < 0 {
		return s, false
	}
	edges := make([]entities.Edge, 0, len(s.edges)-1)
	edges = append(edges, s.edges[:i]...)
	edges = append(edges, s.edges[i+1:]...)
	return GraphState{nodes: s.nodes, edges: edges}, true
}

// Clear empties both collections. Clearing an empty graph changes nothing.
func (g *GraphStore) Clear(s GraphState) (GraphState, bool) {
	if s.IsEmpty() {
		return s, false
	}
	return EmptyState(), true
}
