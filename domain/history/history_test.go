package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindmap-backend/domain/core/aggregates"
	"mindmap-backend/domain/core/valueobjects"
)

func TestHistory_UndoRedoRestoresIdenticalStates(t *testing.T) {
	store := aggregates.NewGraphStore(nil)
	seed := store.SeedState()
	h := New(seed, 0)

	withA, _ := store.AddNode(h.Present(), valueobjects.PositionAt(10, 10), nil, valueobjects.NodeStyle{})
	h.Commit(withA)
	withB, _ := store.AddNode(h.Present(), valueobjects.PositionAt(20, 20), nil, valueobjects.NodeStyle{})
	h.Commit(withB)

	require.True(t, h.Undo())
	assert.Equal(t, withA, h.Present())
	require.True(t, h.Undo())
	assert.Equal(t, seed, h.Present())
	assert.False(t, h.Undo(), "nothing left to undo")

	require.True(t, h.Redo())
	require.True(t, h.Redo())
	assert.Equal(t, withB, h.Present())
	assert.False(t, h.Redo())
}

func TestHistory_CommitClearsRedo(t *testing.T) {
	store := aggregates.NewGraphStore(nil)
	h := New(store.SeedState(), 0)

	next, _ := store.AddNode(h.Present(), valueobjects.Origin(), nil, valueobjects.NodeStyle{})
	h.Commit(next)
	h.Undo()
	require.True(t, h.CanRedo())

	other, _ := store.MoveNode(h.Present(), "n1", valueobjects.PositionAt(5, 5))
	h.Commit(other)
	assert.False(t, h.CanRedo())

	undo, redo := h.Depths()
	assert.Equal(t, 1, undo)
	assert.Equal(t, 0, redo)
}

func TestHistory_GestureCollapsesTransientUpdates(t *testing.T) {
	store := aggregates.NewGraphStore(nil)
	seed := store.SeedState()
	h := New(seed, 0)

	h.BeginGesture()
	state := h.Present()
	for i := 1; i <= 10; i++ {
		state, _ = store.MoveNode(state, "n1", valueobjects.PositionAt(float64(i), 0))
		h.Transient(state)
	}
	h.EndGesture()

	undo, _ := h.Depths()
	assert.Equal(t, 1, undo)

	require.True(t, h.Undo())
	assert.Equal(t, seed, h.Present())
}

func TestHistory_GestureWithoutChangeLeavesNoStep(t *testing.T) {
	store := aggregates.NewGraphStore(nil)
	seed := store.SeedState()
	h := New(seed, 0)
	next, _ := store.AddNode(seed, valueobjects.Origin(), nil, valueobjects.NodeStyle{})
	h.Commit(next)
	require.True(t, h.Undo())

	h.BeginGesture()
	h.EndGesture()
	undo, redo := h.Depths()
	assert.Equal(t, 0, undo)
	assert.Equal(t, 1, redo)

	h.BeginGesture()
	moved, _ := store.MoveNode(seed, "n1", valueobjects.PositionAt(8, 8))
	h.Transient(moved)
	assert.False(t, h.CanRedo())
	h.Transient(seed)
	h.EndGesture()

	undo, redo = h.Depths()
	assert.Equal(t, 0, undo)
	assert.Equal(t, 1, redo)
	assert.Equal(t, seed, h.Present())
}

func TestHistory_MaxDepth(t *testing.T) {
	store := aggregates.NewGraphStore(nil)
	h := New(store.SeedState(), 2)

	state := h.Present()
	for i := 0; i < 5; i++ {
		state, _ = store.AddNode(state, valueobjects.Origin(), nil, valueobjects.NodeStyle{})
		h.Commit(state)
	}

	undo, _ := h.Depths()
	assert.Equal(t, 2, undo)
	assert.Equal(t, 2, h.MaxDepth())
	assert.Equal(t, 0, New(aggregates.EmptyState(), -3).MaxDepth())
}
