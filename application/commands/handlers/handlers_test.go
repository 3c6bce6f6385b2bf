package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindmap-backend/application/commands"
	"mindmap-backend/application/commands/bus"
	"mindmap-backend/application/ports"
	"mindmap-backend/application/session"
	"mindmap-backend/infrastructure/persistence/memory"
	pkgerrors "mindmap-backend/pkg/errors"
)

func newTestBus(t *testing.T) (*bus.CommandBus, *session.Manager) {
	t.Helper()
	manager := session.NewManager(nil, memory.NewSnapshotStore(), nil, nil, nil, nil, session.ManagerConfig{})
	b := bus.NewCommandBus()
	NewSessionHandlers(manager, nil).Register(b)
	return b, manager
}

func openSession(t *testing.T, b *bus.CommandBus) commands.SessionRef {
	t.Helper()
	result, err := b.Send(context.Background(), commands.CreateSessionCommand{OwnerID: "alice", Title: "Plan"})
	require.NoError(t, err)
	opened := result.(Opened)
	assert.Equal(t, "Plan", opened.Title)
	return commands.SessionRef{OwnerID: "alice", SessionID: opened.SessionID}
}

func TestSessionHandlers_EditingFlow(t *testing.T) {
	ctx := context.Background()
	b, manager := newTestBus(t)
	ref := openSession(t, b)

	result, err := b.Send(ctx, commands.AddNodeCommand{SessionRef: ref, X: 100, Y: 100})
	require.NoError(t, err)
	added := result.(session.Outcome)
	require.True(t, added.Changed)
	assert.Equal(t, "n2", added.NodeID.String())

	result, err = b.Send(ctx, commands.AddEdgeCommand{SessionRef: ref, Source: "n1", Target: "n2"})
	require.NoError(t, err)
	assert.True(t, result.(session.Outcome).Changed)

	result, err = b.Send(ctx, commands.AddEdgeCommand{SessionRef: ref, Source: "n2", Target: "n1"})
	require.NoError(t, err, "a declined edge is an outcome, not an error")
	declined := result.(session.Outcome)
	assert.False(t, declined.Changed)
	assert.ErrorIs(t, declined.Reason, pkgerrors.ErrDuplicateConnection)

	result, err = b.Send(ctx, commands.ShortcutCommand{SessionRef: ref, Key: "z", Meta: true, Platform: "mac"})
	require.NoError(t, err)
	shortcut := result.(ShortcutResult)
	assert.Equal(t, session.ActionUndo, shortcut.Action)

	s, err := manager.Get("alice", ref.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 0, s.Present().EdgeCount())
}

func TestSessionHandlers_SaveAndOpen(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBus(t)
	ref := openSession(t, b)

	result, err := b.Send(ctx, commands.SaveMapCommand{SessionRef: ref})
	require.NoError(t, err)
	record := result.(*ports.MapRecord)
	assert.Equal(t, "Plan", record.Title)

	result, err = b.Send(ctx, commands.OpenMapCommand{OwnerID: "alice", MapID: record.ID})
	require.NoError(t, err)
	opened := result.(Opened)
	assert.Equal(t, record.ID, opened.MapID)
	assert.NotEqual(t, ref.SessionID, opened.SessionID)

	result, err = b.Send(ctx, commands.CloseSessionCommand{SessionRef: ref})
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestSessionHandlers_Validation(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBus(t)
	ref := openSession(t, b)

	tests := []struct {
		name string
		cmd  bus.Command
	}{
		{name: "missing owner", cmd: commands.CreateSessionCommand{}},
		{name: "session id is not a uuid", cmd: commands.UndoCommand{SessionRef: commands.SessionRef{OwnerID: "alice", SessionID: "nope"}}},
		{name: "unknown zoom action", cmd: commands.ZoomCommand{SessionRef: ref, Action: "sideways"}},
		{name: "missing node id", cmd: commands.MoveNodeCommand{SessionRef: ref}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := b.Send(ctx, tt.cmd)
			var verrs *pkgerrors.ValidationErrors
			assert.ErrorAs(t, err, &verrs)
		})
	}

	_, err := b.Send(ctx, commands.SetEdgeShapeCommand{SessionRef: ref, EdgeID: "e1", Shape: "zigzag"})
	assert.Error(t, err)
}

func TestSessionHandlers_ForeignSession(t *testing.T) {
	b, _ := newTestBus(t)
	ref := openSession(t, b)
	ref.OwnerID = "mallory"

	_, err := b.Send(context.Background(), commands.UndoCommand{SessionRef: ref})
	assert.True(t, pkgerrors.IsForbidden(err))
}
