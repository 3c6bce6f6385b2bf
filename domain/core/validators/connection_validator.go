package validators

import (
	"mindmap-backend/domain/config"
	"mindmap-backend/domain/core/entities"
	"mindmap-backend/domain/core/valueobjects"
	"mindmap-backend/pkg/errors"
)

// Connection is a candidate edge between two nodes
type Connection struct {
	Source valueobjects.NodeID
	Target valueobjects.NodeID
}

// IsValidConnection reports whether candidate may be added next to the
// existing edges. A candidate is rejected when any edge already joins the
// same unordered pair of nodes, and when it is a self-loop unless
// allowSelf is set.
func IsValidConnection(candidate Connection, existing []entities.Edge, allowSelf bool) bool {
	return checkConnection(candidate, existing, allowSelf) == nil
}

func checkConnection(candidate Connection, existing []entities.Edge, allowSelf bool) *errors.DomainError {
	if candidate.Source.Equals(candidate.Target) && !allowSelf {
		return errors.ErrSelfConnection
	}
	for _, edge := range existing {
		if edge.Connects(candidate.Source, candidate.Target) {
			return errors.ErrDuplicateConnection.
				WithDetail("edge_id", edge.ID().String())
		}
	}
	return nil
}

// ConnectionValidator applies the connection rules of a DomainConfig
type ConnectionValidator struct {
	allowSelf bool
	maxNodes  int
	maxEdges  int
}

// NewConnectionValidator creates a validator for the given rules
func NewConnectionValidator(cfg *config.DomainConfig) *ConnectionValidator {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return &ConnectionValidator{
		allowSelf: cfg.AllowSelfConnections,
		maxNodes:  cfg.MaxNodesPerGraph,
		maxEdges:  cfg.MaxEdgesPerGraph,
	}
}

// IsValid reports whether candidate may be added next to existing
func (v *ConnectionValidator) IsValid(candidate Connection, existing []entities.Edge) bool {
	return IsValidConnection(candidate, existing, v.allowSelf)
}

// Check is IsValid with the reason for a rejection
func (v *ConnectionValidator) Check(candidate Connection, existing []entities.Edge) error {
	if err := checkConnection(candidate, existing, v.allowSelf); err != nil {
		return err
	}
	return nil
}

// ValidateState checks every structural rule of a graph: unique node and
// edge ids with suffixes in range, edges referencing existing nodes, no two edges on the same
// unordered pair and the configured size limits. It is used on states
// that did not come from the graph operations, e.g. decoded snapshots.
func (v *ConnectionValidator) ValidateState(nodes []entities.Node, edges []entities.Edge) error {
	violations := errors.NewValidationErrors()

	if v.maxNodes > 0 && len(nodes) > v.maxNodes {
		violations.AddError(errors.ErrGraphLimitExceeded.
			WithDetail("nodes", len(nodes)).
			WithDetail("limit", v.maxNodes))
	}
	if v.maxEdges > 0 && len(edges) > v.maxEdges {
		violations.AddError(errors.ErrGraphLimitExceeded.
			WithDetail("edges", len(edges)).
			WithDetail("limit", v.maxEdges))
	}

	known := make(map[valueobjects.NodeID]bool, len(nodes))
	for _, node := range nodes {
		if !valueobjects.SuffixInRange(node.ID().String(), valueobjects.NodeIDPrefix) {
			violations.AddError(errors.ErrIDOutOfRange.
				WithDetail("node_id", node.ID().String()))
			continue
		}
		if known[node.ID()] {
			violations.AddError(errors.ErrDuplicateNodeID.
				WithDetail("node_id", node.ID().String()))
			continue
		}
		known[node.ID()] = true
	}

	seenEdges := make(map[valueobjects.EdgeID]bool, len(edges))
	accepted := make([]entities.Edge, 0, len(edges))
	for _, edge := range edges {
		if seenEdges[edge.ID()] {
			violations.AddError(errors.ErrDuplicateEdgeID.
				WithDetail("edge_id", edge.ID().String()))
			continue
		}
		seenEdges[edge.ID()] = true

		if !valueobjects.SuffixInRange(edge.ID().String(), valueobjects.EdgeIDPrefix) {
			violations.AddError(errors.ErrIDOutOfRange.
				WithDetail("edge_id", edge.ID().String()))
			continue
		}

		if !known[edge.Source()] || !known[edge.Target()] {
			violations.AddError(errors.ErrDanglingEdge.
				WithDetail("edge_id", edge.ID().String()))
			continue
		}

		candidate := Connection{Source: edge.Source(), Target: edge.Target()}
		if err := checkConnection(candidate, accepted, v.allowSelf); err != nil {
			violations.AddError(err.WithDetail("conflicting_edge_id", edge.ID().String()))
			continue
		}
		accepted = append(accepted, edge)
	}

	return violations.ErrorOrNil()
}
