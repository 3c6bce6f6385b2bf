// Package session is the single-writer facade over one open mind map.
//
// A Session owns the graph history, the viewport, the selection and the
// pending suggestion request. Every method takes the session lock, so all
// mutations are serialized; network calls made on behalf of a session run
// without holding it.
package session

import (
	"sync"
	"time"

	"mindmap-backend/application/ports"
	"mindmap-backend/application/suggestions"
	"mindmap-backend/domain/config"
	"mindmap-backend/domain/core/aggregates"
	"mindmap-backend/domain/core/valueobjects"
	"mindmap-backend/domain/events"
	"mindmap-backend/domain/history"
	pkgerrors "mindmap-backend/pkg/errors"
)

// Outcome reports the effect of one editing operation. Declined and no-op
// operations are not errors: Changed is false and Reason, when set,
// explains a declined mutation.
type Outcome struct {
	Changed  bool                `json:"changed"`
	NodeID   valueobjects.NodeID `json:"nodeId,omitempty"`
	EdgeID   valueobjects.EdgeID `json:"edgeId,omitempty"`
	Reason   error               `json:"-"`
	Revision int                 `json:"revision"`
}

// Options describe how a session starts
type Options struct {
	ID       string
	OwnerID  string
	MapID    string
	Title    string
	Initial  *aggregates.GraphState // nil starts from the seed node
	Viewport *valueobjects.Viewport
	Now      func() time.Time
}

// Session is one open mind map
type Session struct {
	mu sync.Mutex

	id      string
	ownerID string
	mapID   string
	title   string

	cfg     *config.DomainConfig
	store   *aggregates.GraphStore
	history *history.History

	viewport      valueobjects.Viewport
	viewportDirty bool
	selected      valueobjects.NodeID
	inGesture     bool

	revision      int
	savedRevision int

	adapter     *suggestions.Adapter
	suggestions suggestions.Tracker

	metrics ports.Metrics
	events  []events.DomainEvent

	now       func() time.Time
	createdAt time.Time
	updatedAt time.Time
}

// New creates a session. A nil adapter disables suggestions.
func New(
	store *aggregates.GraphStore,
	cfg *config.DomainConfig,
	adapter *suggestions.Adapter,
	metrics ports.Metrics,
	opts Options,
) *Session {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if metrics == nil {
		metrics = ports.NoopMetrics{}
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	initial := store.SeedState()
	if opts.Initial != nil {
		initial = *opts.Initial
	}
	viewport := valueobjects.NewViewport(valueobjects.ZoomBoundsFrom(cfg))
	if opts.Viewport != nil {
		viewport = opts.Viewport.WithBounds(valueobjects.ZoomBoundsFrom(cfg))
	}

	created := now()
	s := &Session{
		id:        opts.ID,
		ownerID:   opts.OwnerID,
		mapID:     opts.MapID,
		title:     opts.Title,
		cfg:       cfg,
		store:     store,
		history:   history.New(initial, cfg.MaxHistoryDepth),
		viewport:  viewport,
		adapter:   adapter,
		metrics:   metrics,
		now:       now,
		createdAt: created,
		updatedAt: created,
	}
	s.record(events.SessionOpened{BaseEvent: s.base(events.TypeSessionOpened), MapID: opts.MapID})
	return s
}

// ID returns the session id
func (s *Session) ID() string {
	return s.id
}

// OwnerID returns the id of the only user allowed to use the session
func (s *Session) OwnerID() string {
	return s.ownerID
}

// CheckOwner returns FORBIDDEN unless ownerID owns the session
func (s *Session) CheckOwner(ownerID string) error {
	if ownerID == "" || ownerID != s.ownerID {
		return pkgerrors.NewForbiddenError("session belongs to another user")
	}
	return nil
}

// Present returns the current graph state
func (s *Session) Present() aggregates.GraphState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Present()
}

// DrainEvents returns the events recorded since the last call
func (s *Session) DrainEvents() []events.DomainEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	drained := s.events
	s.events = nil
	return drained
}

// Node operations

// AddNode places a node at a canvas position. A nil label uses the
// placeholder label.
func (s *Session) AddNode(position valueobjects.Position, label *string, style valueobjects.NodeStyle) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addNode(position, label, style)
}

// AddNodeAtScreen places a node under a pointer position
func (s *Session) AddNodeAtScreen(screen valueobjects.Position, label *string, style valueobjects.NodeStyle) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addNode(s.viewport.ToCanvas(screen), label, style)
}

func (s *Session) addNode(position valueobjects.Position, label *string, style valueobjects.NodeStyle) Outcome {
	present := s.history.Present()
	if limit := s.cfg.MaxNodesPerGraph; limit > 0 && present.NodeCount() >= limit {
		return s.declined("add_node", pkgerrors.ErrGraphLimitExceeded.WithDetail("limit", limit))
	}

	next, id := s.store.AddNode(present, position, label, style)
	s.commit("add_node", next)
	node, _ := next.Node(id)
	s.record(events.NodeAdded{
		BaseEvent: s.base(events.TypeNodeAdded),
		NodeID:    id,
		Position:  node.Position(),
		Label:     node.Label(),
	})
	return Outcome{Changed: true, NodeID: id, Revision: s.revision}
}

// MoveNode moves a node as one undoable step
func (s *Session) MoveNode(id valueobjects.NodeID, position valueobjects.Position) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, changed := s.store.MoveNode(s.history.Present(), id, position)
	return s.applyNodeChange("move_node", id, next, changed, events.NodeMoved)
}

// SetNodeLabel replaces a node's label, as on leaving the label editor
func (s *Session) SetNodeLabel(id valueobjects.NodeID, text string) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, changed := s.store.SetNodeLabel(s.history.Present(), id, text)
	return s.applyNodeChange("set_node_label", id, next, changed, events.NodeRelabeled)
}

// UpdateNodeStyle merges a partial style into a node
func (s *Session) UpdateNodeStyle(id valueobjects.NodeID, patch valueobjects.NodeStyle) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, changed := s.store.UpdateNodeStyle(s.history.Present(), id, patch)
	return s.applyNodeChange("update_node_style", id, next, changed, events.NodeRestyled)
}

// ResizeNode sets a node's box as one undoable step
func (s *Session) ResizeNode(id valueobjects.NodeID, size valueobjects.Size) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, changed := s.store.ResizeNode(s.history.Present(), id, size)
	return s.applyNodeChange("resize_node", id, next, changed, events.NodeResized)
}

func (s *Session) applyNodeChange(op string, id valueobjects.NodeID, next aggregates.GraphState, changed bool, change events.NodeChange) Outcome {
	if !changed {
		return s.unchanged(op)
	}
	s.commit(op, next)
	s.record(events.NodeChanged{BaseEvent: s.base(events.TypeNodeChanged), NodeID: id, Change: change})
	return Outcome{Changed: true, NodeID: id, Revision: s.revision}
}

// DeleteNode removes a node together with its edges
func (s *Session) DeleteNode(id valueobjects.NodeID) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	present := s.history.Present()
	var removed []valueobjects.EdgeID
	for _, edge := range present.Edges() {
		if edge.Touches(id) {
			removed = append(removed, edge.ID())
		}
	}

	next, changed := s.store.DeleteNode(present, id)
	if !changed {
		return s.unchanged("delete_node")
	}
	s.commit("delete_node", next)
	s.record(events.NodeDeleted{BaseEvent: s.base(events.TypeNodeDeleted), NodeID: id, RemovedEdges: removed})
	return Outcome{Changed: true, NodeID: id, Revision: s.revision}
}

// Edge operations

// AddEdge connects two nodes. A connection the validator rejects is
// declined silently: no history entry, Reason says why.
func (s *Session) AddEdge(source, target valueobjects.NodeID, style valueobjects.EdgeStyle) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addEdge(source, target, style, false)
}

func (s *Session) addEdge(source, target valueobjects.NodeID, style valueobjects.EdgeStyle, suggested bool) Outcome {
	present := s.history.Present()
	if limit := s.cfg.MaxEdgesPerGraph; limit > 0 && present.EdgeCount() >= limit {
		return s.declined("add_edge", pkgerrors.ErrGraphLimitExceeded.WithDetail("limit", limit))
	}

	next, id, err := s.store.AddEdge(present, source, target, style)
	if err != nil {
		return s.declined("add_edge", err)
	}
	s.commit("add_edge", next)
	s.record(events.EdgeAdded{
		BaseEvent: s.base(events.TypeEdgeAdded),
		EdgeID:    id,
		SourceID:  source,
		TargetID:  target,
		Suggested: suggested,
	})
	return Outcome{Changed: true, EdgeID: id, Revision: s.revision}
}

// CanConnect reports whether AddEdge would accept the pair, for graying
// out invalid drop targets
func (s *Session) CanConnect(source, target valueobjects.NodeID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.CanConnect(s.history.Present(), source, target)
}

// UpdateEdgeStyle merges a partial style into an edge
func (s *Session) UpdateEdgeStyle(id valueobjects.EdgeID, patch valueobjects.EdgeStyle) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, changed := s.store.UpdateEdgeStyle(s.history.Present(), id, patch)
	return s.applyEdgeChange("update_edge_style", id, next, changed, events.EdgeRestyled)
}

// SetEdgeShape changes how an edge is routed
func (s *Session) SetEdgeShape(id valueobjects.EdgeID, shape valueobjects.EdgeShape) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, changed := s.store.SetEdgeShape(s.history.Present(), id, shape)
	return s.applyEdgeChange("set_edge_shape", id, next, changed, events.EdgeRestyled)
}

// ReconnectEdge moves an edge to new endpoints as one undoable step
func (s *Session) ReconnectEdge(id valueobjects.EdgeID, source, target valueobjects.NodeID) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, changed, err := s.store.ReconnectEdge(s.history.Present(), id, source, target)
	if err != nil {
		return s.declined("reconnect_edge", err)
	}
	return s.applyEdgeChange("reconnect_edge", id, next, changed, events.EdgeReconnected)
}

func (s *Session) applyEdgeChange(op string, id valueobjects.EdgeID, next aggregates.GraphState, changed bool, change events.EdgeChange) Outcome {
	if !changed {
		return s.unchanged(op)
	}
	s.commit(op, next)
	s.record(events.EdgeChanged{BaseEvent: s.base(events.TypeEdgeChanged), EdgeID: id, Change: change})
	return Outcome{Changed: true, EdgeID: id, Revision: s.revision}
}

// DeleteEdge removes one edge
func (s *Session) DeleteEdge(id valueobjects.EdgeID) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, changed := s.store.DeleteEdge(s.history.Present(), id)
	if !changed {
		return s.unchanged("delete_edge")
	}
	s.commit("delete_edge", next)
	s.record(events.EdgeDeleted{BaseEvent: s.base(events.TypeEdgeDeleted), EdgeID: id})
	return Outcome{Changed: true, EdgeID: id, Revision: s.revision}
}

// Clear removes every node and edge as one undoable step
func (s *Session) Clear() Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	present := s.history.Present()
	next, changed := s.store.Clear(present)
	if !changed {
		return s.unchanged("clear")
	}
	s.commit("clear", next)
	s.record(events.GraphCleared{
		BaseEvent: s.base(events.TypeGraphCleared),
		NodeCount: present.NodeCount(),
		EdgeCount: present.EdgeCount(),
	})
	return Outcome{Changed: true, Revision: s.revision}
}

// History

// Undo steps back one committed change
func (s *Session) Undo() Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.undo()
}

// Redo re-applies the last undone change
func (s *Session) Redo() Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.redo()
}

func (s *Session) undo() Outcome {
	s.inGesture = false
	if !s.history.Undo() {
		return s.unchanged("undo")
	}
	s.afterHistoryMove("undo")
	return Outcome{Changed: true, Revision: s.revision}
}

func (s *Session) redo() Outcome {
	s.inGesture = false
	if !s.history.Redo() {
		return s.unchanged("redo")
	}
	s.afterHistoryMove("redo")
	return Outcome{Changed: true, Revision: s.revision}
}

func (s *Session) afterHistoryMove(direction string) {
	s.touch()
	s.reconcileSelection()
	s.metrics.SessionOperation(direction, true)
	s.record(events.HistoryMoved{BaseEvent: s.base(events.TypeHistoryMoved), Direction: direction})
}

// CanUndo reports whether Undo would change anything
func (s *Session) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.CanUndo()
}

// CanRedo reports whether Redo would change anything
func (s *Session) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.CanRedo()
}

// Selection

// Select makes a node the active node. Changing the selection discards
// displayed and in-flight suggestions. An empty id clears the selection.
func (s *Session) Select(id valueobjects.NodeID) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !id.IsZero() && !s.history.Present().HasNode(id) {
		return s.unchanged("select")
	}
	if s.selected.Equals(id) {
		return s.unchanged("select")
	}
	s.selected = id
	s.suggestions.Invalidate()
	return Outcome{Changed: true, NodeID: id, Revision: s.revision}
}

// reconcileSelection drops a selection whose node no longer exists
func (s *Session) reconcileSelection() {
	if !s.selected.IsZero() && !s.history.Present().HasNode(s.selected) {
		s.selected = ""
		s.suggestions.Invalidate()
	}
}

// Internal helpers

func (s *Session) commit(op string, next aggregates.GraphState) {
	s.inGesture = false
	s.history.Commit(next)
	s.touch()
	s.reconcileSelection()
	s.metrics.SessionOperation(op, true)
}

func (s *Session) touch() {
	s.revision++
	s.updatedAt = s.now()
}

func (s *Session) unchanged(op string) Outcome {
	s.metrics.SessionOperation(op, false)
	return Outcome{Revision: s.revision}
}

func (s *Session) declined(op string, reason error) Outcome {
	s.metrics.SessionOperation(op, false)
	return Outcome{Reason: reason, Revision: s.revision}
}

func (s *Session) base(eventType string) events.BaseEvent {
	return events.NewBase(s.id, s.ownerID, eventType, s.revision, s.now())
}

func (s *Session) record(event events.DomainEvent) {
	s.events = append(s.events, event)
}
