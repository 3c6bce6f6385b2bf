package messaging

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"mindmap-backend/domain/events"
	pkgerrors "mindmap-backend/pkg/errors"
)

type batchRecorder struct {
	mu      sync.Mutex
	batches [][]events.DomainEvent
	err     error
}

func (r *batchRecorder) Publish(ctx context.Context, event events.DomainEvent) error {
	return r.PublishBatch(ctx, []events.DomainEvent{event})
}

func (r *batchRecorder) PublishBatch(_ context.Context, domainEvents []events.DomainEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, append([]events.DomainEvent(nil), domainEvents...))
	return r.err
}

func (r *batchRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, b := range r.batches {
		n += len(b)
	}
	return n
}

func testEvent(version int) events.DomainEvent {
	return events.SessionClosed{BaseEvent: events.NewBase("s1", "alice", events.TypeSessionClosed, version, time.Now())}
}

func TestAsyncPublisher_FlushDelivers(t *testing.T) {
	next := &batchRecorder{}
	p := NewAsyncPublisher(next, 16, 10, time.Hour, nil)

	for i := 1; i <= 3; i++ {
		require.NoError(t, p.Publish(context.Background(), testEvent(i)))
	}
	require.NoError(t, p.Flush(context.Background()))
	assert.Equal(t, 3, next.count())

	require.NoError(t, p.Close(context.Background()))
}

func TestAsyncPublisher_BatchSize(t *testing.T) {
	next := &batchRecorder{}
	p := NewAsyncPublisher(next, 16, 2, time.Hour, nil)

	require.NoError(t, p.PublishBatch(context.Background(), []events.DomainEvent{testEvent(1), testEvent(2), testEvent(3)}))
	require.NoError(t, p.Close(context.Background()))

	next.mu.Lock()
	defer next.mu.Unlock()
	require.Len(t, next.batches, 2)
	assert.Len(t, next.batches[0], 2)
	assert.Len(t, next.batches[1], 1)
}

func TestAsyncPublisher_Ticker(t *testing.T) {
	next := &batchRecorder{}
	p := NewAsyncPublisher(next, 16, 10, 10*time.Millisecond, nil)
	defer func() { _ = p.Close(context.Background()) }()

	require.NoError(t, p.Publish(context.Background(), testEvent(1)))
	assert.Eventually(t, func() bool { return next.count() == 1 }, time.Second, 5*time.Millisecond)
}

func TestAsyncPublisher_Closed(t *testing.T) {
	p := NewAsyncPublisher(&batchRecorder{}, 16, 10, time.Hour, nil)
	require.NoError(t, p.Close(context.Background()))
	require.NoError(t, p.Close(context.Background()))

	err := p.Publish(context.Background(), testEvent(1))
	assert.True(t, pkgerrors.IsUnavailable(err))
	assert.NoError(t, p.Flush(context.Background()))
}

func TestAsyncPublisher_DeliveryErrorIsLogged(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	next := &batchRecorder{err: errors.New("bus down")}
	p := NewAsyncPublisher(next, 16, 10, time.Hour, zap.New(core))

	require.NoError(t, p.Publish(context.Background(), testEvent(1)))
	require.NoError(t, p.Close(context.Background()))
	assert.Equal(t, 1, logs.FilterMessage("Failed to publish events").Len())
}

func TestLogPublisher(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	p := NewLogPublisher(zap.New(core))

	require.NoError(t, p.PublishBatch(context.Background(), []events.DomainEvent{testEvent(1), testEvent(2)}))
	entries := logs.FilterMessage("Domain event").All()
	require.Len(t, entries, 2)
	assert.Equal(t, events.TypeSessionClosed, entries[0].ContextMap()["event_type"])
}
