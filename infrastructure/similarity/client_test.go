package similarity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindmap-backend/application/ports"
	pkgerrors "mindmap-backend/pkg/errors"
)

var testRequest = ports.SuggestionRequest{
	ActiveNode: ports.SuggestionCandidate{ID: "n1", Text: "solar power"},
	OtherNodes: []ports.SuggestionCandidate{{ID: "n2", Text: "wind power", X: 10, Y: 20}},
}

func TestClient_Suggest(t *testing.T) {
	var received ports.SuggestionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		_, _ = w.Write([]byte(`[
			{"targetNodeId":"n2","score":0.9,"explanation":"Both mention power."},
			{"targetNodeId":"n3","score":0.4}
		]`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{URL: server.URL}, server.Client(), nil)
	results, err := client.Suggest(context.Background(), testRequest)
	require.NoError(t, err)

	assert.Equal(t, testRequest, received)
	assert.Equal(t, []ports.SuggestionResult{
		{TargetNodeID: "n2", Score: 0.9, Explanation: "Both mention power."},
		{TargetNodeID: "n3", Score: 0.4},
	}, results)
}

func TestClient_NonListResponseIsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":"oops"}`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{URL: server.URL}, server.Client(), nil)
	results, err := client.Suggest(context.Background(), testRequest)
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestClient_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "broken", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(ClientConfig{URL: server.URL}, server.Client(), nil)
	_, err := client.Suggest(context.Background(), testRequest)
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeExternal))
}

func TestClient_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	client := NewClient(ClientConfig{URL: server.URL}, server.Client(), nil)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.Suggest(ctx, testRequest)
	assert.True(t, pkgerrors.IsTimeout(err))
	assert.Equal(t, "SUGGESTIONS_TIMEOUT", pkgerrors.CodeOf(err))
}

func TestClient_BreakerOpens(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(ClientConfig{URL: server.URL, BreakerFailures: 2, BreakerTimeout: time.Minute}, server.Client(), nil)
	for i := 0; i < 2; i++ {
		_, err := client.Suggest(context.Background(), testRequest)
		require.Error(t, err)
	}

	_, err := client.Suggest(context.Background(), testRequest)
	assert.True(t, pkgerrors.IsUnavailable(err))
	assert.Equal(t, "SUGGESTIONS_UNAVAILABLE", pkgerrors.CodeOf(err))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestDecodeResults(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []ports.SuggestionResult
	}{
		{name: "not json", raw: `nope`, want: []ports.SuggestionResult{}},
		{name: "object", raw: `{"results":[]}`, want: []ports.SuggestionResult{}},
		{name: "null", raw: `null`, want: []ports.SuggestionResult{}},
		{
			name: "bad items skipped",
			raw:  `[{"targetNodeId":5,"score":1},{"targetNodeId":"n2","score":"high"},"x",{"targetNodeId":"n3","score":0.5}]`,
			want: []ports.SuggestionResult{{TargetNodeID: "n3", Score: 0.5}},
		},
		{
			name: "scores and order kept as sent",
			raw:  `[{"targetNodeId":"n3","score":-2},{"targetNodeId":"n2","score":1.7}]`,
			want: []ports.SuggestionResult{{TargetNodeID: "n3", Score: -2}, {TargetNodeID: "n2", Score: 1.7}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DecodeResults([]byte(tt.raw), nil))
		})
	}
}
