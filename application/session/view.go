package session

import (
	"time"

	"mindmap-backend/application/ports"
	"mindmap-backend/domain/core/aggregates"
	"mindmap-backend/domain/core/valueobjects"
	"mindmap-backend/domain/events"
)

// View is a consistent read of a session taken under its lock
type View struct {
	SessionID          string
	OwnerID            string
	MapID              string
	Title              string
	State              aggregates.GraphState
	Viewport           valueobjects.Viewport
	Selected           valueobjects.NodeID
	InGesture          bool
	CanUndo            bool
	CanRedo            bool
	UndoDepth          int
	RedoDepth          int
	Revision           int
	Dirty              bool
	SuggestionsFor     valueobjects.NodeID
	Suggestions        []ports.SuggestionResult
	SuggestionsPending bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// View returns a snapshot of the session
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	undo, redo := s.history.Depths()
	suggestedFor, results := s.suggestions.Results()
	return View{
		SessionID:          s.id,
		OwnerID:            s.ownerID,
		MapID:              s.mapID,
		Title:              s.title,
		State:              s.history.Present(),
		Viewport:           s.viewport,
		Selected:           s.selected,
		InGesture:          s.inGesture,
		CanUndo:            undo > 0,
		CanRedo:            redo > 0,
		UndoDepth:          undo,
		RedoDepth:          redo,
		Revision:           s.revision,
		Dirty:              s.revision != s.savedRevision || s.viewportDirty,
		SuggestionsFor:     suggestedFor,
		Suggestions:        results,
		SuggestionsPending: s.suggestions.Pending(),
		CreatedAt:          s.createdAt,
		UpdatedAt:          s.updatedAt,
	}
}

// Viewport operations. The viewport is transient view state: it never
// enters the history, but it is saved with the map.

// Viewport returns the current pan and zoom
func (s *Session) Viewport() valueobjects.Viewport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewport
}

// PanBy shifts the view by a raw screen-space drag delta
func (s *Session) PanBy(dx, dy float64) valueobjects.Viewport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setViewport(s.viewport.PanBy(dx, dy))
}

// ZoomIn zooms in by one step
func (s *Session) ZoomIn() valueobjects.Viewport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setViewport(s.viewport.ZoomIn())
}

// ZoomOut zooms out by one step
func (s *Session) ZoomOut() valueobjects.Viewport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setViewport(s.viewport.ZoomOut())
}

// SetZoom sets the zoom factor, clamped to the configured bounds
func (s *Session) SetZoom(zoom float64) valueobjects.Viewport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setViewport(s.viewport.SetZoom(zoom))
}

// ToCanvas converts a pointer position into canvas coordinates
func (s *Session) ToCanvas(screen valueobjects.Position) valueobjects.Position {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewport.ToCanvas(screen)
}

func (s *Session) setViewport(v valueobjects.Viewport) valueobjects.Viewport {
	if v != s.viewport {
		s.viewport = v
		s.viewportDirty = true
	}
	return s.viewport
}

// Persistence bookkeeping

// MarkSaved records that the state at revision was stored under mapID
func (s *Session) MarkSaved(mapID, title string, revision int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mapID = mapID
	s.title = title
	s.savedRevision = revision
	if revision == s.revision {
		s.viewportDirty = false
	}
	s.record(events.MapSaved{BaseEvent: s.base(events.TypeMapSaved), MapID: mapID, Title: title})
}

// ForgetMap turns the session back into an unsaved map when mapID, the
// record it was saved to, has been deleted
func (s *Session) ForgetMap(mapID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mapID == mapID {
		s.mapID = ""
		s.savedRevision = -1
	}
}

// Invalidate cancels in-flight work ahead of closing the session
func (s *Session) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.inGesture = false
	s.suggestions.Invalidate()
}
