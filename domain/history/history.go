// Package history keeps the undo/redo stacks of an editing session.
//
// Every entry is a complete, immutable GraphState, so undo and redo are
// plain stack moves: nothing is diffed or replayed.
package history

import (
	"mindmap-backend/domain/core/aggregates"
	"mindmap-backend/domain/versioning"
)

// History holds the past, present and future states of one session.
// It is not safe for concurrent use; the owning session serializes access.
type History struct {
	past     []aggregates.GraphState // oldest first
	present  aggregates.GraphState
	future   []aggregates.GraphState // next redo first
	maxDepth int
	gesture  *gesture
}

// gesture remembers where an open gesture started. The undo step is only
// taken on its first transient update.
type gesture struct {
	base     aggregates.GraphState
	future   []aggregates.GraphState
	recorded bool
}

// New starts a history at the given state. A positive maxDepth bounds the
// number of undo steps kept; zero keeps every step.
func New(initial aggregates.GraphState, maxDepth int) *History {
	if maxDepth < 0 {
		maxDepth = 0
	}
	return &History{
		present:  initial,
		maxDepth: maxDepth,
	}
}

// Present returns the current state
func (h *History) Present() aggregates.GraphState {
	return h.present
}

// Commit makes state the present as a new undoable step and drops any
// redo steps
func (h *History) Commit(state aggregates.GraphState) {
	h.gesture = nil
	h.commit(state)
}

func (h *History) commit(state aggregates.GraphState) {
	h.past = append(h.past, h.present)
	if h.maxDepth > 0 && len(h.past) > h.maxDepth {
		trimmed := make([]aggregates.GraphState, h.maxDepth)
		copy(trimmed, h.past[len(h.past)-h.maxDepth:])
		h.past = trimmed
	}
	h.present = state
	h.future = nil
}

// Transient replaces the present without creating a step. The first
// transient update of an open gesture records the gesture's start as one
// undoable step and drops the redo steps; later ones leave past and
// future as they are.
func (h *History) Transient(state aggregates.GraphState) {
	if h.gesture != nil && !h.gesture.recorded {
		h.gesture.recorded = true
		h.commit(state)
		return
	}
	h.present = state
}

// BeginGesture opens a gesture at the present state so that its transient
// updates collapse into a single undo step
func (h *History) BeginGesture() {
	h.gesture = &gesture{base: h.present, future: h.future}
}

// EndGesture closes the open gesture. A gesture that left the graph as it
// found it leaves no step behind and gives back the redo steps it dropped.
func (h *History) EndGesture() {
	g := h.gesture
	h.gesture = nil
	if g == nil || !g.recorded || !versioning.Equal(g.base, h.present) {
		return
	}
	h.past = h.past[:len(h.past)-1]
	h.future = g.future
}

// Undo moves one step back. It reports false when there is nothing to undo.
func (h *History) Undo() bool {
	h.gesture = nil
	if len(h.past) == 0 {
		return false
	}
	last := len(h.past) - 1
	h.future = append([]aggregates.GraphState{h.present}, h.future...)
	h.present = h.past[last]
	h.past = h.past[:last]
	return true
}

// Redo moves one step forward. It reports false when there is nothing to redo.
func (h *History) Redo() bool {
	h.gesture = nil
	if len(h.future) == 0 {
		return false
	}
	h.past = append(h.past, h.present)
	h.present = h.future[0]
	h.future = h.future[1:]
	return true
}

// CanUndo reports whether Undo would change the present
func (h *History) CanUndo() bool {
	return len(h.past) > 0
}

// CanRedo reports whether Redo would change the present
func (h *History) CanRedo() bool {
	return len(h.future) > 0
}

// Depths returns the number of undo and redo steps available
func (h *History) Depths() (undo, redo int) {
	return len(h.past), len(h.future)
}

// MaxDepth returns the undo limit, zero meaning unlimited
func (h *History) MaxDepth() int {
	return h.maxDepth
}
