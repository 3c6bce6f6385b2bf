package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindmap-backend/domain/core/valueobjects"
)

func TestGesture_DragUndoesAsOneStep(t *testing.T) {
	s := newTestSession(t)
	start := s.Present()

	require.True(t, s.BeginGesture().Changed)
	for i := 1; i <= 20; i++ {
		s.DragNode("n1", valueobjects.PositionAt(float64(i*5), 0))
	}
	require.True(t, s.EndGesture().Changed)

	node, _ := s.Present().Node("n1")
	assert.Equal(t, 100.0, node.Position().X())
	assert.Equal(t, 1, s.View().UndoDepth)

	s.Undo()
	assert.Equal(t, start, s.Present())
}

func TestGesture_AutoBeginsOnlyOnEffectiveChange(t *testing.T) {
	s := newTestSession(t)

	out := s.DragNode("n1", valueobjects.Origin())
	assert.False(t, out.Changed)
	assert.False(t, s.View().InGesture)
	assert.False(t, s.CanUndo())

	out = s.DragNode("n1", valueobjects.PositionAt(3, 4))
	assert.True(t, out.Changed)
	assert.True(t, s.View().InGesture)
	assert.Equal(t, 1, s.View().UndoDepth)
}

func TestGesture_BeginTwiceIsNoOp(t *testing.T) {
	s := newTestSession(t)
	require.True(t, s.BeginGesture().Changed)
	assert.False(t, s.BeginGesture().Changed)
	assert.Equal(t, 0, s.View().UndoDepth)

	require.True(t, s.EndGesture().Changed)
	assert.False(t, s.EndGesture().Changed)
	assert.False(t, s.CanUndo())
}

func TestGesture_EmptyGestureKeepsHistory(t *testing.T) {
	s := newTestSession(t)
	s.AddNode(valueobjects.PositionAt(5, 5), nil, valueobjects.NodeStyle{})
	require.True(t, s.Undo().Changed)
	require.True(t, s.CanRedo())

	s.BeginGesture()
	s.EndGesture()
	assert.Equal(t, 0, s.View().UndoDepth)
	assert.True(t, s.CanRedo())

	// dragged away and back to the start
	s.BeginGesture()
	s.DragNode("n1", valueobjects.PositionAt(40, 40))
	s.DragNode("n1", valueobjects.Origin())
	s.EndGesture()
	assert.Equal(t, 0, s.View().UndoDepth)
	assert.True(t, s.CanRedo())

	require.True(t, s.Redo().Changed)
	assert.Equal(t, 2, s.Present().NodeCount())
}

func TestGesture_DragByDividesByZoom(t *testing.T) {
	s := newTestSession(t)
	s.SetZoom(2)

	s.DragNodeBy("n1", 40, -20)
	node, _ := s.Present().Node("n1")
	assert.InDelta(t, 20, node.Position().X(), 1e-9)
	assert.InDelta(t, -10, node.Position().Y(), 1e-9)
}

func TestGesture_LiveResizeAndReconnect(t *testing.T) {
	s := newTestSession(t)
	n2 := s.AddNode(valueobjects.PositionAt(1, 1), nil, valueobjects.NodeStyle{}).NodeID
	n3 := s.AddNode(valueobjects.PositionAt(2, 2), nil, valueobjects.NodeStyle{}).NodeID
	e1 := s.AddEdge("n1", n2, valueobjects.EdgeStyle{}).EdgeID
	depth := s.View().UndoDepth

	s.ResizeNodeLive("n1", valueobjects.NewSize(200, 80))
	s.ResizeNodeLive("n1", valueobjects.NewSize(260, 90))
	s.EndGesture()
	assert.Equal(t, depth+1, s.View().UndoDepth)

	out := s.PreviewReconnect(e1, "n1", "n1")
	assert.False(t, out.Changed)
	assert.Error(t, out.Reason)

	out = s.PreviewReconnect(e1, "n1", n3)
	require.True(t, out.Changed)
	s.EndGesture()
	edge, _ := s.Present().Edge(e1)
	assert.Equal(t, n3, edge.Target())
	assert.Equal(t, depth+2, s.View().UndoDepth)
}

func TestGesture_CommitEndsGesture(t *testing.T) {
	s := newTestSession(t)
	s.DragNode("n1", valueobjects.PositionAt(9, 9))
	require.True(t, s.View().InGesture)

	s.AddNode(valueobjects.Origin(), nil, valueobjects.NodeStyle{})
	assert.False(t, s.View().InGesture)
}
