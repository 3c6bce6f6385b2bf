// Package handlers answers session queries from the session manager
package handlers

import (
	"context"

	"go.uber.org/zap"

	"mindmap-backend/application/ports"
	"mindmap-backend/application/queries"
	"mindmap-backend/application/queries/bus"
	"mindmap-backend/application/session"
	"mindmap-backend/domain/core/aggregates"
	"mindmap-backend/domain/core/valueobjects"
	"mindmap-backend/domain/theme"
	"mindmap-backend/domain/versioning"
)

// SessionQueries answers every read of the session host
type SessionQueries struct {
	manager *session.Manager
	logger  *zap.Logger
}

// NewSessionQueries creates the query handler set
func NewSessionQueries(manager *session.Manager, logger *zap.Logger) *SessionQueries {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionQueries{manager: manager, logger: logger}
}

// Register binds every query type to its handler
func (h *SessionQueries) Register(b *bus.QueryBus) {
	b.MustRegister(queries.GetSessionQuery{}, bus.QueryHandlerFunc(h.getSession))
	b.MustRegister(queries.GetGraphDataQuery{}, bus.QueryHandlerFunc(h.getGraphData))
	b.MustRegister(queries.CanConnectQuery{}, bus.QueryHandlerFunc(h.canConnect))
	b.MustRegister(queries.ToCanvasQuery{}, bus.QueryHandlerFunc(h.toCanvas))
	b.MustRegister(queries.GetSuggestionsQuery{}, bus.QueryHandlerFunc(h.getSuggestions))
	b.MustRegister(queries.ListSessionsQuery{}, bus.QueryHandlerFunc(h.listSessions))
	b.MustRegister(queries.ListMapsQuery{}, bus.QueryHandlerFunc(h.listMaps))
}

func (h *SessionQueries) getSession(_ context.Context, q bus.Query) (interface{}, error) {
	query := q.(queries.GetSessionQuery)
	t, err := theme.Parse(query.Theme)
	if err != nil {
		return nil, err
	}
	s, err := h.manager.Get(query.OwnerID, query.SessionID)
	if err != nil {
		return nil, err
	}

	view := s.View()
	checksum, err := versioning.Checksum(view.State)
	if err != nil {
		h.logger.Warn("Failed to checksum session state",
			zap.String("session_id", view.SessionID),
			zap.Error(err),
		)
	}

	return &queries.SessionResult{
		SessionID: view.SessionID,
		MapID:     view.MapID,
		Title:     view.Title,
		Graph:     BuildGraphData(view.State, t),
		Viewport:  view.Viewport,
		Selected:  view.Selected.String(),
		InGesture: view.InGesture,
		History: queries.HistoryInfo{
			CanUndo:   view.CanUndo,
			CanRedo:   view.CanRedo,
			UndoDepth: view.UndoDepth,
			RedoDepth: view.RedoDepth,
		},
		Revision: view.Revision,
		Dirty:    view.Dirty,
		Checksum: checksum,
		Suggestions: queries.SuggestionsResult{
			NodeID:  view.SuggestionsFor.String(),
			Pending: view.SuggestionsPending,
			Items:   nonNil(view.Suggestions),
		},
		CreatedAt: view.CreatedAt,
		UpdatedAt: view.UpdatedAt,
	}, nil
}

func (h *SessionQueries) getGraphData(_ context.Context, q bus.Query) (interface{}, error) {
	query := q.(queries.GetGraphDataQuery)
	t, err := theme.Parse(query.Theme)
	if err != nil {
		return nil, err
	}
	s, err := h.manager.Get(query.OwnerID, query.SessionID)
	if err != nil {
		return nil, err
	}
	result := BuildGraphData(s.Present(), t)
	return &result, nil
}

func (h *SessionQueries) canConnect(_ context.Context, q bus.Query) (interface{}, error) {
	query := q.(queries.CanConnectQuery)
	s, err := h.manager.Get(query.OwnerID, query.SessionID)
	if err != nil {
		return nil, err
	}
	return s.CanConnect(valueobjects.NodeID(query.Source), valueobjects.NodeID(query.Target)), nil
}

func (h *SessionQueries) toCanvas(_ context.Context, q bus.Query) (interface{}, error) {
	query := q.(queries.ToCanvasQuery)
	s, err := h.manager.Get(query.OwnerID, query.SessionID)
	if err != nil {
		return nil, err
	}
	return s.ToCanvas(valueobjects.PositionAt(query.X, query.Y)), nil
}

func (h *SessionQueries) getSuggestions(_ context.Context, q bus.Query) (interface{}, error) {
	query := q.(queries.GetSuggestionsQuery)
	s, err := h.manager.Get(query.OwnerID, query.SessionID)
	if err != nil {
		return nil, err
	}
	view := s.View()
	return &queries.SuggestionsResult{
		NodeID:  view.SuggestionsFor.String(),
		Pending: view.SuggestionsPending,
		Items:   nonNil(view.Suggestions),
	}, nil
}

func (h *SessionQueries) listSessions(_ context.Context, q bus.Query) (interface{}, error) {
	query := q.(queries.ListSessionsQuery)
	return h.manager.Sessions(query.OwnerID), nil
}

func (h *SessionQueries) listMaps(ctx context.Context, q bus.Query) (interface{}, error) {
	query := q.(queries.ListMapsQuery)
	maps, err := h.manager.ListMaps(ctx, query.OwnerID)
	if err != nil {
		return nil, err
	}
	if maps == nil {
		maps = []ports.MapSummary{}
	}
	return maps, nil
}

// BuildGraphData renders a state for a theme, with graph statistics
func BuildGraphData(state aggregates.GraphState, t theme.Theme) queries.GraphDataResult {
	nodes := state.Nodes()
	edges := state.Edges()

	result := queries.GraphDataResult{
		Theme: string(t),
		Nodes: make([]queries.GraphNode, 0, len(nodes)),
		Edges: make([]queries.GraphEdge, 0, len(edges)),
		Stats: queries.GraphStats{
			NodeCount:    len(nodes),
			EdgeCount:    len(edges),
			ClusterCount: len(state.Clusters()),
		},
	}

	for _, node := range nodes {
		graphNode := queries.GraphNode{
			ID:       node.ID().String(),
			Type:     string(node.Kind()),
			Position: node.Position(),
			Label:    node.Label(),
			Style:    node.Style(),
			Resolved: t.NodeStyle(node),
		}
		if size := node.Size(); !size.IsZero() {
			graphNode.Size = &size
		}
		result.Nodes = append(result.Nodes, graphNode)
	}

	for _, edge := range edges {
		resolved := t.EdgeStyle(edge)
		result.Edges = append(result.Edges, queries.GraphEdge{
			ID:        edge.ID().String(),
			Source:    edge.Source().String(),
			Target:    edge.Target().String(),
			Style:     edge.Style(),
			Resolved:  resolved,
			DashArray: resolved.DashPattern.StrokeDashArray(),
		})
	}

	// Density of an undirected simple graph
	if n := len(nodes); n > 1 {
		maxEdges := float64(n*(n-1)) / 2
		result.Stats.Density = float64(len(edges)) / maxEdges
	}

	return result
}

func nonNil(results []ports.SuggestionResult) []ports.SuggestionResult {
	if results == nil {
		return []ports.SuggestionResult{}
	}
	return results
}
