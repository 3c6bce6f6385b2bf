package similarity

import (
	"context"

	"mindmap-backend/application/ports"
	"mindmap-backend/pkg/observability"
)

type tracedService struct {
	next   ports.SuggestionService
	tracer *observability.Tracer
}

// Traced wraps a suggestion service in an X-Ray subsegment. A disabled
// tracer returns next unchanged.
func Traced(next ports.SuggestionService, tracer *observability.Tracer) ports.SuggestionService {
	if !tracer.Enabled() {
		return next
	}
	return &tracedService{next: next, tracer: tracer}
}

func (s *tracedService) Suggest(ctx context.Context, req ports.SuggestionRequest) ([]ports.SuggestionResult, error) {
	var results []ports.SuggestionResult
	err := s.tracer.TraceFunction(ctx, "similarity.Suggest", func(ctx context.Context) error {
		s.tracer.AddAnnotation(ctx, "node_id", req.ActiveNode.ID)
		s.tracer.AddMetadata(ctx, "candidates", len(req.OtherNodes))
		var err error
		results, err = s.next.Suggest(ctx, req)
		return err
	})
	return results, err
}
