// Package persistence holds the snapshot store implementations and the
// decorators shared by all of them.
package persistence

import (
	"context"

	"mindmap-backend/application/ports"
	"mindmap-backend/pkg/observability"
)

// TracedStore wraps every store call in an X-Ray subsegment
type TracedStore struct {
	next   ports.SnapshotStore
	tracer *observability.Tracer
}

// NewTracedStore decorates next. A disabled tracer returns next unchanged.
func NewTracedStore(next ports.SnapshotStore, tracer *observability.Tracer) ports.SnapshotStore {
	if !tracer.Enabled() {
		return next
	}
	return &TracedStore{next: next, tracer: tracer}
}

func (s *TracedStore) Save(ctx context.Context, ownerID string, input ports.SaveMapInput) (*ports.MapRecord, error) {
	var record *ports.MapRecord
	err := s.tracer.TraceFunction(ctx, "store.Save", func(ctx context.Context) error {
		s.tracer.AddAnnotation(ctx, "owner_id", ownerID)
		s.tracer.AddMetadata(ctx, "bytes", len(input.Data))
		var err error
		record, err = s.next.Save(ctx, ownerID, input)
		return err
	})
	return record, err
}

func (s *TracedStore) Load(ctx context.Context, ownerID, id string) (*ports.MapRecord, error) {
	var record *ports.MapRecord
	err := s.tracer.TraceFunction(ctx, "store.Load", func(ctx context.Context) error {
		s.tracer.AddAnnotation(ctx, "map_id", id)
		var err error
		record, err = s.next.Load(ctx, ownerID, id)
		return err
	})
	return record, err
}

func (s *TracedStore) List(ctx context.Context, ownerID string) ([]ports.MapSummary, error) {
	var summaries []ports.MapSummary
	err := s.tracer.TraceFunction(ctx, "store.List", func(ctx context.Context) error {
		var err error
		summaries, err = s.next.List(ctx, ownerID)
		return err
	})
	return summaries, err
}

func (s *TracedStore) Delete(ctx context.Context, ownerID, id string) error {
	return s.tracer.TraceFunction(ctx, "store.Delete", func(ctx context.Context) error {
		s.tracer.AddAnnotation(ctx, "map_id", id)
		return s.next.Delete(ctx, ownerID, id)
	})
}
