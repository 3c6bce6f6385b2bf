package observability

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func scrape(t *testing.T, c *Collector) string {
	t.Helper()
	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestCollector(t *testing.T) {
	c := NewCollector("mindmap")

	c.HTTPRequest("GET", "/api/v1/sessions/{sessionID}", 200, 15*time.Millisecond)
	c.SessionOperation("add_node", true)
	c.SessionOperation("add_node", true)
	c.SessionOperation("connect", false)
	c.SuggestionRequest("ok", 3, time.Second)
	c.SuggestionRequest("timeout", 0, 0)
	c.ActiveSessions(4)
	c.StoreOperation("save", nil, time.Millisecond)
	c.StoreOperation("load", errors.New("boom"), time.Millisecond)

	out := scrape(t, c)
	assert.Contains(t, out, `mindmap_http_requests_total{method="GET",route="/api/v1/sessions/{sessionID}",status="200"} 1`)
	assert.Contains(t, out, `mindmap_session_operations_total{changed="true",operation="add_node"} 2`)
	assert.Contains(t, out, `mindmap_session_operations_total{changed="false",operation="connect"} 1`)
	assert.Contains(t, out, `mindmap_suggestion_requests_total{outcome="timeout"} 1`)
	assert.Contains(t, out, `mindmap_suggestion_results_count 1`)
	assert.Contains(t, out, `mindmap_active_sessions 4`)
	assert.Contains(t, out, `mindmap_store_operations_total{operation="load",status="failure"} 1`)
	assert.Contains(t, out, `mindmap_store_operations_total{operation="save",status="success"} 1`)
	assert.NotContains(t, out, `mindmap_suggestion_request_duration_seconds_count{outcome="timeout"}`)
}

type recordingCloudWatch struct {
	mu    sync.Mutex
	calls []*cloudwatch.PutMetricDataInput
	err   error
}

func (r *recordingCloudWatch) PutMetricData(_ context.Context, params *cloudwatch.PutMetricDataInput, _ ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, params)
	return &cloudwatch.PutMetricDataOutput{}, r.err
}

func TestCloudWatchMetrics_Flush(t *testing.T) {
	client := &recordingCloudWatch{}
	m := NewCloudWatchMetrics("MindMap", client, nil)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return fixed }

	m.SessionOperation("undo", true)
	m.SuggestionRequest("ok", 2, 120*time.Millisecond)
	m.StoreOperation("save", nil, 8*time.Millisecond)

	m.Flush(context.Background())
	require.Len(t, client.calls, 1)
	call := client.calls[0]
	assert.Equal(t, "MindMap", aws.ToString(call.Namespace))
	require.Len(t, call.MetricData, 6)

	names := make([]string, 0, len(call.MetricData))
	for _, d := range call.MetricData {
		names = append(names, aws.ToString(d.MetricName))
		assert.Equal(t, fixed, aws.ToTime(d.Timestamp))
	}
	assert.Equal(t, []string{
		"SessionOperation",
		"SuggestionRequest", "SuggestionLatency", "SuggestionResults",
		"StoreOperation", "StoreLatency",
	}, names)
	assert.Equal(t, float64(120), aws.ToFloat64(call.MetricData[2].Value))

	// the buffer is drained
	m.Flush(context.Background())
	assert.Len(t, client.calls, 1)
}

func TestCloudWatchMetrics_FlushSplitsLargeBatches(t *testing.T) {
	client := &recordingCloudWatch{}
	m := NewCloudWatchMetrics("MindMap", client, nil)
	for i := 0; i < maxDatums+5; i++ {
		m.ActiveSessions(i)
	}

	m.Flush(context.Background())
	require.Len(t, client.calls, 2)
	assert.Len(t, client.calls[0].MetricData, maxDatums)
	assert.Len(t, client.calls[1].MetricData, 5)
}

func TestCloudWatchMetrics_FailedSendIsLogged(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	client := &recordingCloudWatch{err: errors.New("throttled")}
	m := NewCloudWatchMetrics("MindMap", client, zap.New(core))

	m.ActiveSessions(1)
	m.Flush(context.Background())

	entries := logs.FilterMessage("Failed to send metrics").All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(1), entries[0].ContextMap()["datums"])
}

func TestCloudWatchMetrics_NilClientRecordsNothing(t *testing.T) {
	m := NewCloudWatchMetrics("MindMap", nil, nil)
	m.ActiveSessions(3)
	assert.Empty(t, m.buffer)
	assert.NotPanics(t, func() { m.Flush(context.Background()) })
}

func TestCloudWatchMetrics_RunFlushesOnShutdown(t *testing.T) {
	client := &recordingCloudWatch{}
	m := NewCloudWatchMetrics("MindMap", client, nil)
	m.ActiveSessions(2)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx, time.Hour)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	client.mu.Lock()
	defer client.mu.Unlock()
	require.Len(t, client.calls, 1)
	assert.Len(t, client.calls[0].MetricData, 1)
}
