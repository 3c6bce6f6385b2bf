package validators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindmap-backend/domain/config"
	"mindmap-backend/domain/core/entities"
	"mindmap-backend/domain/core/valueobjects"
	pkgerrors "mindmap-backend/pkg/errors"
)

func edge(id, source, target string) entities.Edge {
	return entities.NewEdge(valueobjects.EdgeID(id), valueobjects.NodeID(source), valueobjects.NodeID(target), valueobjects.EdgeStyle{})
}

func node(id string) entities.Node {
	return entities.NewNode(valueobjects.NodeID(id), valueobjects.Origin(), "", valueobjects.NodeStyle{})
}

func TestIsValidConnection(t *testing.T) {
	existing := []entities.Edge{edge("e1", "n1", "n2")}

	tests := []struct {
		name      string
		candidate Connection
		allowSelf bool
		want      bool
	}{
		{name: "new pair", candidate: Connection{Source: "n2", Target: "n3"}, want: true},
		{name: "same direction duplicate", candidate: Connection{Source: "n1", Target: "n2"}, want: false},
		{name: "reversed duplicate", candidate: Connection{Source: "n2", Target: "n1"}, want: false},
		{name: "self loop rejected", candidate: Connection{Source: "n3", Target: "n3"}, want: false},
		{name: "self loop allowed", candidate: Connection{Source: "n3", Target: "n3"}, allowSelf: true, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidConnection(tt.candidate, existing, tt.allowSelf))
		})
	}
}

func TestConnectionValidator_Check(t *testing.T) {
	v := NewConnectionValidator(nil)
	existing := []entities.Edge{edge("e1", "n1", "n2")}

	err := v.Check(Connection{Source: "n2", Target: "n1"}, existing)
	require.Error(t, err)
	assert.ErrorIs(t, err, pkgerrors.ErrDuplicateConnection)

	var domainErr *pkgerrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "e1", domainErr.Details["edge_id"])
	assert.Empty(t, pkgerrors.ErrDuplicateConnection.Details, "sentinel stays untouched")

	assert.NoError(t, v.Check(Connection{Source: "n1", Target: "n3"}, existing))
}

func TestConnectionValidator_ValidateState(t *testing.T) {
	v := NewConnectionValidator(config.DefaultDomainConfig())

	tests := []struct {
		name  string
		nodes []entities.Node
		edges []entities.Edge
		want  error
	}{
		{
			name:  "valid graph",
			nodes: []entities.Node{node("n1"), node("n2")},
			edges: []entities.Edge{edge("e1", "n1", "n2")},
		},
		{
			name:  "duplicate node id",
			nodes: []entities.Node{node("n1"), node("n1")},
			want:  pkgerrors.ErrDuplicateNodeID,
		},
		{
			name:  "dangling edge",
			nodes: []entities.Node{node("n1")},
			edges: []entities.Edge{edge("e1", "n1", "n7")},
			want:  pkgerrors.ErrDanglingEdge,
		},
		{
			name:  "two edges on one pair",
			nodes: []entities.Node{node("n1"), node("n2")},
			edges: []entities.Edge{edge("e1", "n1", "n2"), edge("e2", "n2", "n1")},
			want:  pkgerrors.ErrDuplicateConnection,
		},
		{
			name:  "self loop",
			nodes: []entities.Node{node("n1")},
			edges: []entities.Edge{edge("e1", "n1", "n1")},
			want:  pkgerrors.ErrSelfConnection,
		},
		{
			name:  "node id suffix too large",
			nodes: []entities.Node{node("n9223372036854775807")},
			want:  pkgerrors.ErrIDOutOfRange,
		},
		{
			name:  "edge id suffix too large",
			nodes: []entities.Node{node("n1"), node("n2")},
			edges: []entities.Edge{edge("e99999999999999999999", "n1", "n2")},
			want:  pkgerrors.ErrIDOutOfRange,
		},
		{
			name:  "largest supported suffix",
			nodes: []entities.Node{node("n2147483647"), node("n2")},
			edges: []entities.Edge{edge("e2147483647", "n2147483647", "n2")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateState(tt.nodes, tt.edges)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestConnectionValidator_Limits(t *testing.T) {
	cfg := config.DefaultDomainConfig()
	cfg.MaxNodesPerGraph = 1
	v := NewConnectionValidator(cfg)

	err := v.ValidateState([]entities.Node{node("n1"), node("n2")}, nil)
	assert.ErrorIs(t, err, pkgerrors.ErrGraphLimitExceeded)
}
