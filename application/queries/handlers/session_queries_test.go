package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindmap-backend/application/commands"
	"mindmap-backend/application/ports"
	"mindmap-backend/application/queries"
	"mindmap-backend/application/queries/bus"
	"mindmap-backend/application/session"
	"mindmap-backend/domain/core/valueobjects"
	"mindmap-backend/infrastructure/persistence/memory"
	pkgerrors "mindmap-backend/pkg/errors"
)

func newTestQueries(t *testing.T) (*bus.QueryBus, *session.Session, commands.SessionRef) {
	t.Helper()
	manager := session.NewManager(nil, memory.NewSnapshotStore(), nil, nil, nil, nil, session.ManagerConfig{})
	b := bus.NewQueryBus()
	NewSessionQueries(manager, nil).Register(b)

	s, err := manager.Create(context.Background(), "alice", "Plan")
	require.NoError(t, err)
	return b, s, commands.SessionRef{OwnerID: "alice", SessionID: s.ID()}
}

func TestSessionQueries_GetSession(t *testing.T) {
	b, s, ref := newTestQueries(t)
	s.AddNode(valueobjects.PositionAt(100, 100), nil, valueobjects.NodeStyle{})
	s.AddEdge("n1", "n2", valueobjects.EdgeStyle{})

	result, err := b.Ask(context.Background(), queries.GetSessionQuery{SessionRef: ref, Theme: "dark"})
	require.NoError(t, err)
	view := result.(*queries.SessionResult)

	assert.Equal(t, "Plan", view.Title)
	assert.Equal(t, "dark", view.Graph.Theme)
	assert.Equal(t, 2, view.Graph.Stats.NodeCount)
	assert.Equal(t, 1, view.Graph.Stats.EdgeCount)
	assert.Equal(t, 1, view.Graph.Stats.ClusterCount)
	assert.InDelta(t, 1.0, view.Graph.Stats.Density, 1e-9)
	assert.True(t, view.History.CanUndo)
	assert.False(t, view.History.CanRedo)
	assert.NotEmpty(t, view.Checksum)
	assert.NotNil(t, view.Suggestions.Items)
}

func TestSessionQueries_GraphAndViewport(t *testing.T) {
	ctx := context.Background()
	b, s, ref := newTestQueries(t)

	result, err := b.Ask(ctx, queries.GetGraphDataQuery{SessionRef: ref})
	require.NoError(t, err)
	graph := result.(*queries.GraphDataResult)
	assert.Equal(t, "light", graph.Theme)
	require.Len(t, graph.Nodes, 1)
	assert.Equal(t, "n1", graph.Nodes[0].ID)
	assert.Empty(t, graph.Edges)

	s.AddNode(valueobjects.PositionAt(50, 0), nil, valueobjects.NodeStyle{})
	result, err = b.Ask(ctx, queries.CanConnectQuery{SessionRef: ref, Source: "n1", Target: "n2"})
	require.NoError(t, err)
	assert.Equal(t, true, result)

	s.SetZoom(2)
	result, err = b.Ask(ctx, queries.ToCanvasQuery{SessionRef: ref, X: 100, Y: 50})
	require.NoError(t, err)
	canvas := result.(valueobjects.Position)
	assert.InDelta(t, 50, canvas.X(), 1e-9)
	assert.InDelta(t, 25, canvas.Y(), 1e-9)
}

func TestSessionQueries_Lists(t *testing.T) {
	ctx := context.Background()
	b, _, ref := newTestQueries(t)

	result, err := b.Ask(ctx, queries.ListSessionsQuery{OwnerID: "alice"})
	require.NoError(t, err)
	assert.Equal(t, []string{ref.SessionID}, result)

	result, err = b.Ask(ctx, queries.ListMapsQuery{OwnerID: "alice"})
	require.NoError(t, err)
	assert.Equal(t, []ports.MapSummary{}, result)
}

func TestSessionQueries_Errors(t *testing.T) {
	ctx := context.Background()
	b, _, ref := newTestQueries(t)

	_, err := b.Ask(ctx, queries.GetGraphDataQuery{SessionRef: ref, Theme: "neon"})
	var verrs *pkgerrors.ValidationErrors
	assert.ErrorAs(t, err, &verrs)

	foreign := ref
	foreign.OwnerID = "mallory"
	_, err = b.Ask(ctx, queries.GetSuggestionsQuery{SessionRef: foreign})
	assert.True(t, pkgerrors.IsForbidden(err))

	_, err = b.Ask(ctx, queries.GetSuggestionsQuery{SessionRef: commands.SessionRef{OwnerID: "alice", SessionID: "00000000-0000-4000-8000-000000000000"}})
	assert.True(t, pkgerrors.IsNotFound(err))
}
