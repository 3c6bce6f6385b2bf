package messaging

import (
	"context"

	"go.uber.org/zap"

	"mindmap-backend/domain/events"
)

// LogPublisher writes events to the log. It stands in for EventBridge
// when no event bus is configured.
type LogPublisher struct {
	logger *zap.Logger
}

// NewLogPublisher creates a publisher logging at debug level
func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogPublisher{logger: logger}
}

// Publish logs one event
func (p *LogPublisher) Publish(_ context.Context, event events.DomainEvent) error {
	p.logger.Debug("Domain event",
		zap.String("event_type", event.GetEventType()),
		zap.String("session_id", event.GetAggregateID()),
		zap.Int("version", event.GetVersion()),
		zap.Time("timestamp", event.GetTimestamp()),
	)
	return nil
}

// PublishBatch logs every event
func (p *LogPublisher) PublishBatch(ctx context.Context, domainEvents []events.DomainEvent) error {
	for _, event := range domainEvents {
		_ = p.Publish(ctx, event)
	}
	return nil
}
