package suggestions

import (
	"context"

	"mindmap-backend/application/ports"
	"mindmap-backend/domain/core/valueobjects"
)

// Tracker holds the pending request and the displayed results of one
// session. Only the most recent request may publish results: starting a
// new request or changing the selection cancels the one in flight and
// discards anything it returns later.
//
// A Tracker is not safe for concurrent use; the owning session guards it.
type Tracker struct {
	generation uint64
	cancel     context.CancelFunc
	nodeID     valueobjects.NodeID
	results    []ports.SuggestionResult
}

// Begin supersedes any earlier request and returns the context and ticket
// for a new one
func (t *Tracker) Begin(parent context.Context, nodeID valueobjects.NodeID) (context.Context, uint64) {
	t.Invalidate()
	ctx, cancel := context.WithCancel(parent)
	t.cancel = cancel
	t.nodeID = nodeID
	return ctx, t.generation
}

// Complete publishes results for a request. It reports false, dropping
// the results, when the request was superseded in the meantime.
func (t *Tracker) Complete(ticket uint64, results []ports.SuggestionResult) bool {
	if ticket != t.generation {
		return false
	}
	t.release()
	t.results = append([]ports.SuggestionResult(nil), results...)
	return true
}

// Fail ends a request that produced no results
func (t *Tracker) Fail(ticket uint64) bool {
	if ticket != t.generation {
		return false
	}
	t.release()
	return true
}

// Invalidate cancels the request in flight and clears displayed results
func (t *Tracker) Invalidate() {
	t.generation++
	t.release()
	t.nodeID = ""
	t.results = nil
}

// Pending reports whether a request is in flight
func (t *Tracker) Pending() bool {
	return t.cancel != nil
}

// Results returns the node the displayed results belong to and a copy of them
func (t *Tracker) Results() (valueobjects.NodeID, []ports.SuggestionResult) {
	return t.nodeID, append([]ports.SuggestionResult(nil), t.results...)
}

// Take removes the result proposing target and returns it. Sibling
// results stay displayed.
func (t *Tracker) Take(target valueobjects.NodeID) (ports.SuggestionResult, bool) {
	for i, result := range t.results {
		if result.TargetNodeID == target.String() {
			t.results = append(t.results[:i:i], t.results[i+1:]...)
			return result, true
		}
	}
	return ports.SuggestionResult{}, false
}

func (t *Tracker) release() {
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
}
