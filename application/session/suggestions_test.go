package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindmap-backend/application/ports"
	"mindmap-backend/application/suggestions"
	"mindmap-backend/domain/config"
	"mindmap-backend/domain/core/aggregates"
	"mindmap-backend/domain/core/valueobjects"
	pkgerrors "mindmap-backend/pkg/errors"
)

// stubService answers with fixed results, or blocks until its context is
// cancelled when block is set
type stubService struct {
	mu      sync.Mutex
	calls   int
	results []ports.SuggestionResult
	block   bool
	started chan struct{}
}

func (s *stubService) Suggest(ctx context.Context, req ports.SuggestionRequest) ([]ports.SuggestionResult, error) {
	s.mu.Lock()
	s.calls++
	block := s.block
	s.mu.Unlock()

	if block {
		close(s.started)
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return s.results, nil
}

func (s *stubService) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func newSuggestingSession(t *testing.T, service ports.SuggestionService) *Session {
	t.Helper()
	cfg := config.DefaultDomainConfig()
	adapter := suggestions.NewAdapter(service, nil, cfg, time.Second, nil, nil)
	s := New(aggregates.NewGraphStore(cfg), cfg, adapter, nil, Options{ID: "s1", OwnerID: "owner-1"})
	s.SetNodeLabel("n1", "Quarterly budget")
	s.AddNode(valueobjects.PositionAt(100, 0), label("Budget review"), valueobjects.NodeStyle{})
	s.AddNode(valueobjects.PositionAt(200, 0), label("Team offsite"), valueobjects.NodeStyle{})
	return s
}

func TestSession_BlankLabelSkipsNetwork(t *testing.T) {
	service := &stubService{}
	s := newSuggestingSession(t, service)
	s.SetNodeLabel("n1", "")

	_, err := s.RequestSuggestions(context.Background(), "n1")
	assert.ErrorIs(t, err, suggestions.ErrLabelRequired)
	assert.Equal(t, 0, service.Calls())
}

func TestSession_AcceptSuggestion(t *testing.T) {
	service := &stubService{results: []ports.SuggestionResult{
		{TargetNodeID: "n2", Score: 0.8},
		{TargetNodeID: "n3", Score: 0.4},
	}}
	s := newSuggestingSession(t, service)

	results, err := s.RequestSuggestions(context.Background(), "n1")
	require.NoError(t, err)
	assert.Len(t, results, 2)
	assert.Equal(t, valueobjects.NodeID("n1"), s.View().Selected)

	out := s.AcceptSuggestion("n2")
	require.True(t, out.Changed)
	edge, ok := s.Present().Edge(out.EdgeID)
	require.True(t, ok)
	assert.Equal(t, valueobjects.NodeID("n1"), edge.Source())
	assert.Equal(t, valueobjects.NodeID("n2"), edge.Target())

	forNode, remaining := s.Suggestions()
	assert.Equal(t, valueobjects.NodeID("n1"), forNode)
	assert.Equal(t, []ports.SuggestionResult{{TargetNodeID: "n3", Score: 0.4}}, remaining)

	out = s.AcceptSuggestion("n2")
	assert.False(t, out.Changed)
	assert.True(t, pkgerrors.IsNotFound(out.Reason))

	// accepted edges are ordinary undoable steps
	s.Undo()
	assert.Equal(t, 0, s.Present().EdgeCount())
}

func TestSession_SelectionChangeSupersedesRequest(t *testing.T) {
	service := &stubService{block: true, started: make(chan struct{})}
	s := newSuggestingSession(t, service)

	done := make(chan error, 1)
	go func() {
		_, err := s.RequestSuggestions(context.Background(), "n1")
		done <- err
	}()

	<-service.started
	assert.True(t, s.View().SuggestionsPending)
	s.Select("n2")

	select {
	case err := <-done:
		require.Error(t, err)
		assert.True(t, pkgerrors.IsConflict(err))
		assert.Equal(t, "SUGGESTIONS_SUPERSEDED", pkgerrors.CodeOf(err))
	case <-time.After(2 * time.Second):
		t.Fatal("request was not cancelled")
	}

	forNode, results := s.Suggestions()
	assert.True(t, forNode.IsZero())
	assert.Empty(t, results)
}

func TestSession_DismissSuggestions(t *testing.T) {
	service := &stubService{results: []ports.SuggestionResult{{TargetNodeID: "n2"}}}
	s := newSuggestingSession(t, service)

	_, err := s.RequestSuggestions(context.Background(), "n1")
	require.NoError(t, err)
	s.DismissSuggestions()

	_, results := s.Suggestions()
	assert.Empty(t, results)
}

func TestSession_SuggestionsDisabled(t *testing.T) {
	s := newTestSession(t)
	_, err := s.RequestSuggestions(context.Background(), "n1")
	assert.True(t, pkgerrors.IsUnavailable(err))
}
