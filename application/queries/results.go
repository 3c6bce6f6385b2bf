package queries

import (
	"time"

	"mindmap-backend/application/ports"
	"mindmap-backend/domain/core/valueobjects"
)

// SessionResult is the full state of an open session
type SessionResult struct {
	SessionID string                `json:"sessionId"`
	MapID     string                `json:"mapId,omitempty"`
	Title     string                `json:"title,omitempty"`
	Graph     GraphDataResult       `json:"graph"`
	Viewport  valueobjects.Viewport `json:"viewport"`
	Selected  string                `json:"selected,omitempty"`
	InGesture bool                  `json:"inGesture"`
	History   HistoryInfo           `json:"history"`
	Revision  int                   `json:"revision"`
	Dirty     bool                  `json:"dirty"`
	Checksum  string                `json:"checksum"`

	Suggestions SuggestionsResult `json:"suggestions"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// HistoryInfo tells the client which history buttons to enable
type HistoryInfo struct {
	CanUndo   bool `json:"canUndo"`
	CanRedo   bool `json:"canRedo"`
	UndoDepth int  `json:"undoDepth"`
	RedoDepth int  `json:"redoDepth"`
}

// SuggestionsResult is the displayed suggestion set
type SuggestionsResult struct {
	NodeID  string                   `json:"nodeId,omitempty"`
	Pending bool                     `json:"pending"`
	Items   []ports.SuggestionResult `json:"items"`
}

// GraphDataResult is the graph ready to draw
type GraphDataResult struct {
	Theme string      `json:"theme"`
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
	Stats GraphStats  `json:"stats"`
}

// GraphNode is a node with its style resolved for a theme
type GraphNode struct {
	ID       string                         `json:"id"`
	Type     string                         `json:"type"`
	Position valueobjects.Position          `json:"position"`
	Label    string                         `json:"label"`
	Style    valueobjects.NodeStyle         `json:"style"`
	Resolved valueobjects.ResolvedNodeStyle `json:"resolved"`
	Size     *valueobjects.Size             `json:"size,omitempty"`
}

// GraphEdge is an edge with its style resolved for a theme
type GraphEdge struct {
	ID        string                         `json:"id"`
	Source    string                         `json:"source"`
	Target    string                         `json:"target"`
	Style     valueobjects.EdgeStyle         `json:"style"`
	Resolved  valueobjects.ResolvedEdgeStyle `json:"resolved"`
	DashArray string                         `json:"strokeDasharray,omitempty"`
}

// GraphStats contains graph statistics
type GraphStats struct {
	NodeCount    int     `json:"node_count"`
	EdgeCount    int     `json:"edge_count"`
	ClusterCount int     `json:"cluster_count"`
	Density      float64 `json:"density"`
}
