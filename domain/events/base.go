package events

import (
	"time"

	"mindmap-backend/domain/core/valueobjects"
)

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields. The aggregate of every session
// event is the editing session; Version is the session's revision after
// the change.
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	OwnerID     string    `json:"owner_id"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

// Event types
const (
	TypeSessionOpened    = "session.opened"
	TypeSessionClosed    = "session.closed"
	TypeNodeAdded        = "node.added"
	TypeNodeChanged      = "node.changed"
	TypeNodeDeleted      = "node.deleted"
	TypeEdgeAdded        = "edge.added"
	TypeEdgeChanged      = "edge.changed"
	TypeEdgeDeleted      = "edge.deleted"
	TypeGraphCleared     = "graph.cleared"
	TypeHistoryMoved     = "history.moved"
	TypeMapSaved         = "map.saved"
	TypeSuggestionsShown = "suggestions.shown"
)

// NewBase fills the common fields of an event
func NewBase(sessionID, ownerID, eventType string, version int, timestamp time.Time) BaseEvent {
	return BaseEvent{
		AggregateID: sessionID,
		EventType:   eventType,
		OwnerID:     ownerID,
		Timestamp:   timestamp,
		Version:     version,
	}
}

// Session Events

// SessionOpened is raised when a map is opened for editing
type SessionOpened struct {
	BaseEvent
	MapID string `json:"map_id,omitempty"`
}

// SessionClosed is raised when an editing session ends
type SessionClosed struct {
	BaseEvent
}

// Node Events

// NodeAdded is raised when a node is placed on the canvas
type NodeAdded struct {
	BaseEvent
	NodeID   valueobjects.NodeID   `json:"node_id"`
	Position valueobjects.Position `json:"position"`
	Label    string                `json:"label"`
}

// NodeChange names what changed on a node
type NodeChange string

const (
	NodeMoved     NodeChange = "moved"
	NodeRelabeled NodeChange = "relabeled"
	NodeRestyled  NodeChange = "restyled"
	NodeResized   NodeChange = "resized"
)

// NodeChanged is raised when a committed change touches one node
type NodeChanged struct {
	BaseEvent
	NodeID valueobjects.NodeID `json:"node_id"`
	Change NodeChange          `json:"change"`
}

// NodeDeleted is raised when a node and its edges are removed
type NodeDeleted struct {
	BaseEvent
	NodeID       valueobjects.NodeID   `json:"node_id"`
	RemovedEdges []valueobjects.EdgeID `json:"removed_edges,omitempty"`
}

// Edge Events

// EdgeAdded is raised when two nodes are connected
type EdgeAdded struct {
	BaseEvent
	EdgeID    valueobjects.EdgeID `json:"edge_id"`
	SourceID  valueobjects.NodeID `json:"source_id"`
	TargetID  valueobjects.NodeID `json:"target_id"`
	Suggested bool                `json:"suggested"`
}

// EdgeChange names what changed on an edge
type EdgeChange string

const (
	EdgeRestyled    EdgeChange = "restyled"
	EdgeReconnected EdgeChange = "reconnected"
)

// EdgeChanged is raised when a committed change touches one edge
type EdgeChanged struct {
	BaseEvent
	EdgeID valueobjects.EdgeID `json:"edge_id"`
	Change EdgeChange          `json:"change"`
}

// EdgeDeleted is raised when an edge is removed
type EdgeDeleted struct {
	BaseEvent
	EdgeID valueobjects.EdgeID `json:"edge_id"`
}

// Graph Events

// GraphCleared is raised when every node and edge is removed at once
type GraphCleared struct {
	BaseEvent
	NodeCount int `json:"node_count"`
	EdgeCount int `json:"edge_count"`
}

// HistoryMoved is raised on undo and redo
type HistoryMoved struct {
	BaseEvent
	Direction string `json:"direction"`
}

// MapSaved is raised after the session was written to the snapshot store
type MapSaved struct {
	BaseEvent
	MapID string `json:"map_id"`
	Title string `json:"title"`
}

// SuggestionsShown is raised when a suggestion request produced results
type SuggestionsShown struct {
	BaseEvent
	NodeID valueobjects.NodeID `json:"node_id"`
	Count  int                 `json:"count"`
}
