package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"mindmap-backend/application/ports"
	"mindmap-backend/application/snapshot"
	"mindmap-backend/application/suggestions"
	"mindmap-backend/domain/config"
	"mindmap-backend/domain/core/aggregates"
	"mindmap-backend/domain/core/valueobjects"
	"mindmap-backend/domain/events"
	pkgerrors "mindmap-backend/pkg/errors"
)

// DefaultTitle is used when a map is saved without a title
const DefaultTitle = "Untitled map"

// ManagerConfig holds the limits of a session host
type ManagerConfig struct {
	// IdleTimeout closes sessions not used for this long. Zero disables it.
	IdleTimeout time.Duration

	// MaxSessionsPerOwner caps concurrently open sessions. Zero is unlimited.
	MaxSessionsPerOwner int
}

type entry struct {
	session    *Session
	lastAccess time.Time
}

// Manager keeps the open sessions of a host and moves them to and from
// the snapshot store
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*entry

	domain    *config.DomainConfig
	graphs    *aggregates.GraphStore
	codec     *snapshot.Codec
	store     ports.SnapshotStore
	adapter   *suggestions.Adapter
	publisher ports.EventPublisher
	metrics   ports.Metrics
	logger    *zap.Logger
	cfg       ManagerConfig
	now       func() time.Time
}

// NewManager creates a session manager. A nil publisher drops events and
// a nil adapter disables suggestions.
func NewManager(
	domain *config.DomainConfig,
	store ports.SnapshotStore,
	adapter *suggestions.Adapter,
	publisher ports.EventPublisher,
	metrics ports.Metrics,
	logger *zap.Logger,
	cfg ManagerConfig,
) *Manager {
	if domain == nil {
		domain = config.DefaultDomainConfig()
	}
	if metrics == nil {
		metrics = ports.NoopMetrics{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	graphs := aggregates.NewGraphStore(domain)
	return &Manager{
		sessions:  make(map[string]*entry),
		domain:    domain,
		graphs:    graphs,
		codec:     snapshot.NewCodec(graphs, valueobjects.ZoomBoundsFrom(domain)),
		store:     store,
		adapter:   adapter,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Codec returns the document codec used for saved maps
func (m *Manager) Codec() *snapshot.Codec {
	return m.codec
}

// Create opens a new unsaved map holding the seed node
func (m *Manager) Create(ctx context.Context, ownerID, title string) (*Session, error) {
	return m.open(ctx, Options{OwnerID: ownerID, Title: title})
}

// Open loads a saved map into a new session
func (m *Manager) Open(ctx context.Context, ownerID, mapID string) (*Session, error) {
	if m.store == nil {
		return nil, pkgerrors.NewUnavailableError("snapshot store")
	}

	start := time.Now()
	record, err := m.store.Load(ctx, ownerID, mapID)
	m.metrics.StoreOperation("load", err, time.Since(start))
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "open map %s", mapID)
	}

	state, viewport, err := m.codec.Decode(record.Data)
	if err != nil {
		m.logger.Warn("Saved map failed validation",
			zap.String("map_id", mapID),
			zap.String("owner_id", ownerID),
			zap.Error(err),
		)
		return nil, err
	}

	return m.open(ctx, Options{
		OwnerID:  ownerID,
		MapID:    record.ID,
		Title:    record.Title,
		Initial:  &state,
		Viewport: &viewport,
	})
}

func (m *Manager) open(ctx context.Context, opts Options) (*Session, error) {
	if opts.OwnerID == "" {
		return nil, pkgerrors.NewUnauthorizedError("owner is required")
	}
	opts.ID = uuid.New().String()
	opts.Now = m.now

	m.mu.Lock()
	if limit := m.cfg.MaxSessionsPerOwner; limit > 0 && m.countOwnerLocked(opts.OwnerID) >= limit {
		m.mu.Unlock()
		return nil, pkgerrors.NewConflictError("too many open sessions").
			WithCode("SESSION_LIMIT").
			WithDetails(map[string]interface{}{"limit": limit})
	}
	s := New(m.graphs, m.domain, m.adapter, m.metrics, opts)
	m.sessions[s.ID()] = &entry{session: s, lastAccess: m.now()}
	count := len(m.sessions)
	m.mu.Unlock()

	m.metrics.ActiveSessions(count)
	m.logger.Info("Session opened",
		zap.String("session_id", s.ID()),
		zap.String("owner_id", opts.OwnerID),
		zap.String("map_id", opts.MapID),
	)
	m.Publish(ctx, s)
	return s, nil
}

func (m *Manager) countOwnerLocked(ownerID string) int {
	count := 0
	for _, e := range m.sessions {
		if e.session.OwnerID() == ownerID {
			count++
		}
	}
	return count
}

// Get returns an open session. A session owned by someone else is
// FORBIDDEN.
func (m *Manager) Get(ownerID, sessionID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.sessions[sessionID]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("session")
	}
	if err := e.session.CheckOwner(ownerID); err != nil {
		return nil, err
	}
	e.lastAccess = m.now()
	return e.session, nil
}

// Sessions returns the ids of the owner's open sessions
func (m *Manager) Sessions(ownerID string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0)
	for id, e := range m.sessions {
		if e.session.OwnerID() == ownerID {
			ids = append(ids, id)
		}
	}
	return ids
}

// Count returns the number of open sessions
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Save stores the session's present state. The first save creates a map
// record; later saves update it. An empty title keeps the current one.
func (m *Manager) Save(ctx context.Context, ownerID, sessionID, title, thumbnail string) (*ports.MapRecord, error) {
	if m.store == nil {
		return nil, pkgerrors.NewUnavailableError("snapshot store")
	}
	s, err := m.Get(ownerID, sessionID)
	if err != nil {
		return nil, err
	}

	view := s.View()
	if title == "" {
		title = view.Title
	}
	if title == "" {
		title = DefaultTitle
	}

	data, err := m.codec.Encode(view.State, view.Viewport)
	if err != nil {
		return nil, pkgerrors.NewInternalError("failed to encode map").WithCause(err)
	}

	start := time.Now()
	record, err := m.store.Save(ctx, ownerID, ports.SaveMapInput{
		ID:        view.MapID,
		Title:     title,
		Data:      data,
		Thumbnail: thumbnail,
	})
	m.metrics.StoreOperation("save", err, time.Since(start))
	if err != nil {
		m.logger.Error("Failed to save map",
			zap.String("session_id", sessionID),
			zap.String("map_id", view.MapID),
			zap.Error(err),
		)
		return nil, pkgerrors.Wrap(err, "save map")
	}

	s.MarkSaved(record.ID, record.Title, view.Revision)
	m.logger.Info("Map saved",
		zap.String("session_id", sessionID),
		zap.String("map_id", record.ID),
		zap.Int("revision", view.Revision),
		zap.Int("bytes", len(data)),
	)
	m.Publish(ctx, s)
	return record, nil
}

// Close discards a session. Unsaved changes are lost.
func (m *Manager) Close(ctx context.Context, ownerID, sessionID string) error {
	s, err := m.Get(ownerID, sessionID)
	if err != nil {
		return err
	}
	m.close(ctx, s, "closed")
	return nil
}

func (m *Manager) close(ctx context.Context, s *Session, reason string) {
	m.mu.Lock()
	delete(m.sessions, s.ID())
	count := len(m.sessions)
	m.mu.Unlock()

	s.Invalidate()
	s.mu.Lock()
	s.record(events.SessionClosed{BaseEvent: s.base(events.TypeSessionClosed)})
	s.mu.Unlock()

	m.metrics.ActiveSessions(count)
	m.logger.Info("Session closed",
		zap.String("session_id", s.ID()),
		zap.String("owner_id", s.OwnerID()),
		zap.String("reason", reason),
	)
	m.Publish(ctx, s)
}

// Sweep closes sessions idle for longer than the configured timeout and
// returns how many it closed
func (m *Manager) Sweep(ctx context.Context) int {
	if m.cfg.IdleTimeout <= 0 {
		return 0
	}
	cutoff := m.now().Add(-m.cfg.IdleTimeout)

	m.mu.RLock()
	var idle []*Session
	for _, e := range m.sessions {
		if e.lastAccess.Before(cutoff) {
			idle = append(idle, e.session)
		}
	}
	m.mu.RUnlock()

	for _, s := range idle {
		m.close(ctx, s, "idle")
	}
	return len(idle)
}

// RunJanitor sweeps idle sessions every interval until ctx is done
func (m *Manager) RunJanitor(ctx context.Context, interval time.Duration) {
	if m.cfg.IdleTimeout <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Sweep(ctx); n > 0 {
				m.logger.Info("Closed idle sessions", zap.Int("count", n))
			}
		}
	}
}

// ListMaps returns the owner's saved maps
func (m *Manager) ListMaps(ctx context.Context, ownerID string) ([]ports.MapSummary, error) {
	if m.store == nil {
		return nil, pkgerrors.NewUnavailableError("snapshot store")
	}
	start := time.Now()
	maps, err := m.store.List(ctx, ownerID)
	m.metrics.StoreOperation("list", err, time.Since(start))
	return maps, err
}

// DeleteMap removes a saved map. Sessions opened from it stay open as
// unsaved maps.
func (m *Manager) DeleteMap(ctx context.Context, ownerID, mapID string) error {
	if m.store == nil {
		return pkgerrors.NewUnavailableError("snapshot store")
	}
	start := time.Now()
	err := m.store.Delete(ctx, ownerID, mapID)
	m.metrics.StoreOperation("delete", err, time.Since(start))
	if err != nil {
		return pkgerrors.Wrapf(err, "delete map %s", mapID)
	}

	m.mu.RLock()
	var affected []*Session
	for _, e := range m.sessions {
		if e.session.OwnerID() == ownerID {
			affected = append(affected, e.session)
		}
	}
	m.mu.RUnlock()

	for _, s := range affected {
		s.ForgetMap(mapID)
	}
	return nil
}

// Publish hands the session's pending events to the publisher. Failures
// are logged and never fail the operation that produced the events.
func (m *Manager) Publish(ctx context.Context, s *Session) {
	drained := s.DrainEvents()
	if len(drained) == 0 || m.publisher == nil {
		return
	}
	if err := m.publisher.PublishBatch(ctx, drained); err != nil {
		m.logger.Warn("Failed to publish session events",
			zap.String("session_id", s.ID()),
			zap.Int("count", len(drained)),
			zap.Error(err),
		)
	}
}

// Shutdown closes every open session
func (m *Manager) Shutdown(ctx context.Context) {
	m.mu.RLock()
	open := make([]*Session, 0, len(m.sessions))
	for _, e := range m.sessions {
		open = append(open, e.session)
	}
	m.mu.RUnlock()

	for _, s := range open {
		m.close(ctx, s, "shutdown")
	}
}
