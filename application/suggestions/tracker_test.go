package suggestions

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindmap-backend/application/ports"
)

func TestTracker_OnlyLatestRequestPublishes(t *testing.T) {
	var tracker Tracker

	firstCtx, first := tracker.Begin(context.Background(), "n1")
	_, second := tracker.Begin(context.Background(), "n1")

	assert.ErrorIs(t, firstCtx.Err(), context.Canceled, "starting a request cancels the one in flight")
	assert.False(t, tracker.Complete(first, []ports.SuggestionResult{{TargetNodeID: "n2"}}))

	require.True(t, tracker.Complete(second, []ports.SuggestionResult{{TargetNodeID: "n3"}}))
	nodeID, results := tracker.Results()
	assert.Equal(t, "n1", nodeID.String())
	assert.Equal(t, []ports.SuggestionResult{{TargetNodeID: "n3"}}, results)
	assert.False(t, tracker.Pending())
}

func TestTracker_InvalidateDropsLateResults(t *testing.T) {
	var tracker Tracker

	ctx, ticket := tracker.Begin(context.Background(), "n1")
	assert.True(t, tracker.Pending())
	tracker.Invalidate()

	assert.Error(t, ctx.Err())
	assert.False(t, tracker.Complete(ticket, []ports.SuggestionResult{{TargetNodeID: "n2"}}))
	assert.False(t, tracker.Fail(ticket))
	nodeID, results := tracker.Results()
	assert.True(t, nodeID.IsZero())
	assert.Empty(t, results)
}

func TestTracker_TakeKeepsSiblings(t *testing.T) {
	var tracker Tracker
	_, ticket := tracker.Begin(context.Background(), "n1")
	require.True(t, tracker.Complete(ticket, []ports.SuggestionResult{
		{TargetNodeID: "n2"}, {TargetNodeID: "n3"}, {TargetNodeID: "n4"},
	}))

	taken, ok := tracker.Take("n3")
	require.True(t, ok)
	assert.Equal(t, "n3", taken.TargetNodeID)

	_, results := tracker.Results()
	assert.Equal(t, []ports.SuggestionResult{{TargetNodeID: "n2"}, {TargetNodeID: "n4"}}, results)

	_, ok = tracker.Take("n3")
	assert.False(t, ok)
}
