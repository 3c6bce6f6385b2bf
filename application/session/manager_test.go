package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindmap-backend/domain/core/valueobjects"
	"mindmap-backend/domain/events"
	"mindmap-backend/infrastructure/persistence/memory"
	pkgerrors "mindmap-backend/pkg/errors"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.DomainEvent
}

func (p *recordingPublisher) Publish(ctx context.Context, event events.DomainEvent) error {
	return p.PublishBatch(ctx, []events.DomainEvent{event})
}

func (p *recordingPublisher) PublishBatch(_ context.Context, batch []events.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, batch...)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, len(p.events))
	for i, e := range p.events {
		types[i] = e.GetEventType()
	}
	return types
}

func newTestManager(cfg ManagerConfig) (*Manager, *memory.SnapshotStore, *recordingPublisher) {
	store := memory.NewSnapshotStore()
	publisher := &recordingPublisher{}
	return NewManager(nil, store, nil, publisher, nil, nil, cfg), store, publisher
}

func TestManager_SaveAndReopen(t *testing.T) {
	ctx := context.Background()
	m, store, _ := newTestManager(ManagerConfig{})

	s, err := m.Create(ctx, "alice", "")
	require.NoError(t, err)
	n2 := s.AddNode(valueobjects.PositionAt(120, 40), label("Ideas"), valueobjects.NodeStyle{}).NodeID
	s.AddEdge("n1", n2, valueobjects.EdgeStyle{})
	s.PanBy(30, 10)
	s.ZoomIn()
	assert.True(t, s.View().Dirty)

	record, err := m.Save(ctx, "alice", s.ID(), "", "")
	require.NoError(t, err)
	assert.Equal(t, DefaultTitle, record.Title)
	assert.False(t, s.View().Dirty)
	assert.Equal(t, record.ID, s.View().MapID)

	// a second save updates the same record
	again, err := m.Save(ctx, "alice", s.ID(), "Renamed", "")
	require.NoError(t, err)
	assert.Equal(t, record.ID, again.ID)
	assert.Equal(t, 1, store.Len())

	reopened, err := m.Open(ctx, "alice", record.ID)
	require.NoError(t, err)
	view := reopened.View()
	assert.Equal(t, s.Present().NodeIDs(), view.State.NodeIDs())
	assert.Equal(t, 1, view.State.EdgeCount())
	assert.InDelta(t, 1.1, view.Viewport.Zoom(), 1e-9)
	assert.True(t, view.Viewport.Pan().Equals(valueobjects.PositionAt(30, 10)))
	assert.False(t, view.CanUndo, "history starts fresh")
	assert.Equal(t, "Renamed", view.Title)
}

func TestManager_OwnerIsolation(t *testing.T) {
	ctx := context.Background()
	m, _, _ := newTestManager(ManagerConfig{})

	s, err := m.Create(ctx, "alice", "")
	require.NoError(t, err)

	_, err = m.Get("bob", s.ID())
	assert.True(t, pkgerrors.IsForbidden(err))

	_, err = m.Get("alice", "missing")
	assert.True(t, pkgerrors.IsNotFound(err))

	record, err := m.Save(ctx, "alice", s.ID(), "Mine", "")
	require.NoError(t, err)
	_, err = m.Open(ctx, "bob", record.ID)
	assert.True(t, pkgerrors.IsNotFound(err))
	assert.Contains(t, err.Error(), "open map "+record.ID+": ")

	assert.Len(t, m.Sessions("alice"), 1)
	assert.Empty(t, m.Sessions("bob"))

	_, err = m.Create(ctx, "", "")
	assert.True(t, pkgerrors.IsUnauthorized(err))
}

func TestManager_SessionLimit(t *testing.T) {
	ctx := context.Background()
	m, _, _ := newTestManager(ManagerConfig{MaxSessionsPerOwner: 1})

	_, err := m.Create(ctx, "alice", "")
	require.NoError(t, err)
	_, err = m.Create(ctx, "alice", "")
	assert.Equal(t, "SESSION_LIMIT", pkgerrors.CodeOf(err))

	_, err = m.Create(ctx, "bob", "")
	assert.NoError(t, err)
}

func TestManager_SweepClosesIdleSessions(t *testing.T) {
	ctx := context.Background()
	m, _, publisher := newTestManager(ManagerConfig{IdleTimeout: time.Minute})
	clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return clock }

	idle, err := m.Create(ctx, "alice", "")
	require.NoError(t, err)
	clock = clock.Add(45 * time.Second)
	active, err := m.Create(ctx, "alice", "")
	require.NoError(t, err)

	clock = clock.Add(30 * time.Second)
	assert.Equal(t, 1, m.Sweep(ctx))

	_, err = m.Get("alice", idle.ID())
	assert.True(t, pkgerrors.IsNotFound(err))
	_, err = m.Get("alice", active.ID())
	assert.NoError(t, err)

	assert.Contains(t, publisher.types(), events.TypeSessionClosed)
}

func TestManager_PublishesDrainedEvents(t *testing.T) {
	ctx := context.Background()
	m, _, publisher := newTestManager(ManagerConfig{})

	s, err := m.Create(ctx, "alice", "")
	require.NoError(t, err)
	s.AddNode(valueobjects.Origin(), nil, valueobjects.NodeStyle{})
	m.Publish(ctx, s)
	m.Publish(ctx, s)

	assert.Equal(t, []string{events.TypeSessionOpened, events.TypeNodeAdded}, publisher.types())
}

func TestManager_DeleteMapForgetsRecord(t *testing.T) {
	ctx := context.Background()
	m, _, _ := newTestManager(ManagerConfig{})

	s, err := m.Create(ctx, "alice", "")
	require.NoError(t, err)
	record, err := m.Save(ctx, "alice", s.ID(), "Plan", "")
	require.NoError(t, err)

	maps, err := m.ListMaps(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, maps, 1)

	require.NoError(t, m.DeleteMap(ctx, "alice", record.ID))
	view := s.View()
	assert.Empty(t, view.MapID)
	assert.True(t, view.Dirty)

	assert.True(t, pkgerrors.IsNotFound(m.DeleteMap(ctx, "alice", record.ID)))
}

func TestManager_Shutdown(t *testing.T) {
	ctx := context.Background()
	m, _, _ := newTestManager(ManagerConfig{})
	for i := 0; i < 3; i++ {
		_, err := m.Create(ctx, "alice", "")
		require.NoError(t, err)
	}

	m.Shutdown(ctx)
	assert.Equal(t, 0, m.Count())
}
