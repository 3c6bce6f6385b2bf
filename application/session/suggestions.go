package session

import (
	"context"
	"errors"

	"mindmap-backend/application/ports"
	"mindmap-backend/domain/core/valueobjects"
	"mindmap-backend/domain/events"
	pkgerrors "mindmap-backend/pkg/errors"
)

func errSuperseded() error {
	return pkgerrors.NewConflictError("suggestion request was superseded by a newer one").
		WithCode("SUGGESTIONS_SUPERSEDED")
}

// RequestSuggestions asks the similarity service for edges from the given
// node, which becomes the selected node. A blank or placeholder label is
// rejected before any network call. Starting a request cancels the one in
// flight; if this request is itself superseded before it completes, its
// results are dropped and a CONFLICT error is returned.
func (s *Session) RequestSuggestions(ctx context.Context, nodeID valueobjects.NodeID) ([]ports.SuggestionResult, error) {
	s.mu.Lock()
	if s.adapter == nil {
		s.mu.Unlock()
		return nil, pkgerrors.NewUnavailableError("suggestions")
	}

	if !s.selected.Equals(nodeID) && s.history.Present().HasNode(nodeID) {
		s.selected = nodeID
	}
	req, err := s.adapter.BuildRequest(s.history.Present(), nodeID)
	if err != nil {
		s.suggestions.Invalidate()
		s.mu.Unlock()
		return nil, err
	}
	reqCtx, ticket := s.suggestions.Begin(ctx, nodeID)
	ownerID := s.ownerID
	s.mu.Unlock()

	results, err := s.adapter.Fetch(reqCtx, ownerID, req)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		if !s.suggestions.Fail(ticket) {
			return nil, errSuperseded()
		}
		if errors.Is(err, context.Canceled) && ctx.Err() == nil {
			return nil, errSuperseded()
		}
		return nil, err
	}
	if !s.suggestions.Complete(ticket, results) {
		return nil, errSuperseded()
	}

	s.record(events.SuggestionsShown{
		BaseEvent: s.base(events.TypeSuggestionsShown),
		NodeID:    nodeID,
		Count:     len(results),
	})
	_, shown := s.suggestions.Results()
	return shown, nil
}

// Suggestions returns the node the displayed suggestions belong to and
// the suggestions themselves
func (s *Session) Suggestions() (valueobjects.NodeID, []ports.SuggestionResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.suggestions.Results()
}

// AcceptSuggestion adds the suggested edge from the active node to target
// as an ordinary committed edge and removes that suggestion. Other
// suggestions stay displayed. A suggestion whose nodes changed in the
// meantime is declined like any other invalid edge.
func (s *Session) AcceptSuggestion(target valueobjects.NodeID) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	source, _ := s.suggestions.Results()
	if _, ok := s.suggestions.Take(target); !ok {
		return s.declined("accept_suggestion", pkgerrors.NewNotFoundError("suggestion"))
	}
	return s.addEdge(source, target, valueobjects.EdgeStyle{}, true)
}

// DismissSuggestions clears displayed suggestions and cancels the request
// in flight
func (s *Session) DismissSuggestions() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.suggestions.Invalidate()
}
