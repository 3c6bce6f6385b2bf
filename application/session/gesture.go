package session

import (
	"mindmap-backend/domain/core/aggregates"
	"mindmap-backend/domain/core/valueobjects"
)

// A gesture is a continuous pointer interaction (dragging a node, dragging
// a resize handle, dragging an edge end). The first update issued while
// the gesture lasts records the state before the gesture as one undoable
// step; later updates replace the present without adding steps, so the
// whole gesture undoes at once. A gesture that changes nothing, or ends
// where it started, leaves no step.

// BeginGesture opens a gesture. Opening a gesture while one is open
// changes nothing.
func (s *Session) BeginGesture() Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.beginGesture() {
		return s.unchanged("begin_gesture")
	}
	return Outcome{Changed: true, Revision: s.revision}
}

func (s *Session) beginGesture() bool {
	if s.inGesture {
		return false
	}
	s.history.BeginGesture()
	s.inGesture = true
	s.metrics.SessionOperation("begin_gesture", true)
	return true
}

// EndGesture closes the open gesture
func (s *Session) EndGesture() Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.inGesture {
		return s.unchanged("end_gesture")
	}
	s.history.EndGesture()
	s.inGesture = false
	return Outcome{Changed: true, Revision: s.revision}
}

// DragNode moves a node as part of a gesture, opening one if needed
func (s *Session) DragNode(id valueobjects.NodeID, position valueobjects.Position) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dragNode(id, position)
}

// DragNodeBy moves a node by a pointer delta in screen units. The delta is
// divided by the zoom so the node stays under the pointer.
func (s *Session) DragNodeBy(id valueobjects.NodeID, dx, dy float64) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	node, ok := s.history.Present().Node(id)
	if !ok {
		return s.unchanged("drag_node")
	}
	zoom := s.viewport.Zoom()
	return s.dragNode(id, node.Position().Translate(dx/zoom, dy/zoom))
}

func (s *Session) dragNode(id valueobjects.NodeID, position valueobjects.Position) Outcome {
	present := s.history.Present()
	if !present.HasNode(id) {
		return s.unchanged("drag_node")
	}
	next, changed := s.store.MoveNode(present, id, position)
	if !changed {
		return s.unchanged("drag_node")
	}
	s.beginGesture()
	s.transient(next)
	return Outcome{Changed: true, NodeID: id, Revision: s.revision}
}

// ResizeNodeLive resizes a node as part of a gesture, opening one if needed
func (s *Session) ResizeNodeLive(id valueobjects.NodeID, size valueobjects.Size) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, changed := s.store.ResizeNode(s.history.Present(), id, size)
	if !changed {
		return s.unchanged("resize_node_live")
	}
	s.beginGesture()
	s.transient(next)
	return Outcome{Changed: true, NodeID: id, Revision: s.revision}
}

// PreviewReconnect moves an edge end as part of a gesture, opening one if
// needed. Invalid targets are declined like ReconnectEdge.
func (s *Session) PreviewReconnect(id valueobjects.EdgeID, source, target valueobjects.NodeID) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, changed, err := s.store.ReconnectEdge(s.history.Present(), id, source, target)
	if err != nil {
		return s.declined("preview_reconnect", err)
	}
	if !changed {
		return s.unchanged("preview_reconnect")
	}
	s.beginGesture()
	s.transient(next)
	return Outcome{Changed: true, EdgeID: id, Revision: s.revision}
}

func (s *Session) transient(next aggregates.GraphState) {
	s.history.Transient(next)
	s.touch()
	s.metrics.SessionOperation("transient", true)
}
