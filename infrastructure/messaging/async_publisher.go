// Package messaging moves session events off the request path
package messaging

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"mindmap-backend/application/ports"
	"mindmap-backend/domain/events"
	pkgerrors "mindmap-backend/pkg/errors"
)

// AsyncPublisher buffers events and hands them to the next publisher in
// batches from a background goroutine. A full buffer drops events rather
// than blocking the editor.
type AsyncPublisher struct {
	next      ports.EventPublisher
	queue     chan events.DomainEvent
	batchSize int
	interval  time.Duration
	logger    *zap.Logger

	mu     sync.RWMutex
	closed bool

	flushReq chan chan struct{}
	done     chan struct{}
}

// NewAsyncPublisher starts the dispatch loop
func NewAsyncPublisher(next ports.EventPublisher, bufferSize, batchSize int, interval time.Duration, logger *zap.Logger) *AsyncPublisher {
	if bufferSize <= 0 {
		bufferSize = 1024
	}
	if batchSize <= 0 {
		batchSize = 10
	}
	if interval <= 0 {
		interval = time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &AsyncPublisher{
		next:      next,
		queue:     make(chan events.DomainEvent, bufferSize),
		batchSize: batchSize,
		interval:  interval,
		logger:    logger,
		flushReq:  make(chan chan struct{}),
		done:      make(chan struct{}),
	}
	go p.run()
	return p
}

// Publish enqueues one event
func (p *AsyncPublisher) Publish(ctx context.Context, event events.DomainEvent) error {
	return p.PublishBatch(ctx, []events.DomainEvent{event})
}

// PublishBatch enqueues events without waiting for delivery
func (p *AsyncPublisher) PublishBatch(_ context.Context, domainEvents []events.DomainEvent) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return pkgerrors.NewUnavailableError("event publisher")
	}

	for _, event := range domainEvents {
		select {
		case p.queue <- event:
		default:
			p.logger.Warn("Event buffer full, dropping event",
				zap.String("event_type", event.GetEventType()),
				zap.String("session_id", event.GetAggregateID()),
			)
		}
	}
	return nil
}

func (p *AsyncPublisher) run() {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	batch := make([]events.DomainEvent, 0, p.batchSize)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := p.next.PublishBatch(ctx, batch); err != nil {
			p.logger.Error("Failed to publish events",
				zap.Int("count", len(batch)),
				zap.Error(err),
			)
		}
		cancel()
		batch = make([]events.DomainEvent, 0, p.batchSize)
	}

	for {
		select {
		case event, ok := <-p.queue:
			if !ok {
				flush()
				return
			}
			batch = append(batch, event)
			if len(batch) >= p.batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case ack := <-p.flushReq:
			for drained := false; !drained; {
				select {
				case event, ok := <-p.queue:
					if !ok {
						drained = true
						break
					}
					batch = append(batch, event)
				default:
					drained = true
				}
			}
			flush()
			close(ack)
		}
	}
}

// Flush delivers everything buffered so far and waits for it, for callers
// that are about to be suspended
func (p *AsyncPublisher) Flush(ctx context.Context) error {
	ack := make(chan struct{})
	select {
	case p.flushReq <- ack:
	case <-p.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-ack:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting events and waits until the buffered ones are
// delivered or ctx expires
func (p *AsyncPublisher) Close(ctx context.Context) error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
	p.mu.Unlock()

	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
