// Package suggestions asks an external similarity service for edges worth
// adding from one node and tracks which answer is still current.
package suggestions

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"mindmap-backend/application/ports"
	"mindmap-backend/domain/config"
	"mindmap-backend/domain/core/aggregates"
	"mindmap-backend/domain/core/valueobjects"
	"mindmap-backend/pkg/auth"
	pkgerrors "mindmap-backend/pkg/errors"
)

// ErrLabelRequired is returned, before any network call, when the active
// node is blank or still carries the placeholder label
var ErrLabelRequired = pkgerrors.NewDomainError(
	pkgerrors.DomainValidationError,
	"LABEL_REQUIRED",
	"Give the node a label before asking for suggestions",
)

// Outcome labels used for metrics
const (
	OutcomeOK          = "ok"
	OutcomeEmpty       = "empty"
	OutcomeError       = "error"
	OutcomeTimeout     = "timeout"
	OutcomeUnavailable = "unavailable"
	OutcomeSuperseded  = "superseded"
	OutcomeRateLimited = "rate_limited"
)

// Adapter builds suggestion requests from a graph and sends them to the
// similarity service
type Adapter struct {
	service ports.SuggestionService
	limiter auth.RateLimiter
	domain  *config.DomainConfig
	timeout atomic.Int64
	metrics ports.Metrics
	logger  *zap.Logger
}

// NewAdapter creates an adapter. A nil limiter disables rate limiting and
// a zero timeout leaves the deadline to the caller's context.
func NewAdapter(
	service ports.SuggestionService,
	limiter auth.RateLimiter,
	domain *config.DomainConfig,
	timeout time.Duration,
	metrics ports.Metrics,
	logger *zap.Logger,
) *Adapter {
	if domain == nil {
		domain = config.DefaultDomainConfig()
	}
	if metrics == nil {
		metrics = ports.NoopMetrics{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &Adapter{
		service: service,
		limiter: limiter,
		domain:  domain,
		metrics: metrics,
		logger:  logger,
	}
	a.SetTimeout(timeout)
	return a
}

// SetTimeout changes the per-request deadline; safe to call while
// requests are in flight
func (a *Adapter) SetTimeout(timeout time.Duration) {
	a.timeout.Store(int64(timeout))
}

// BuildRequest checks the preconditions of a request for the active node
// and collects its candidate pool: every node except the active one and
// the nodes already connected to it, in z-order.
func (a *Adapter) BuildRequest(state aggregates.GraphState, activeID valueobjects.NodeID) (ports.SuggestionRequest, error) {
	active, ok := state.Node(activeID)
	if !ok {
		return ports.SuggestionRequest{}, pkgerrors.ErrNodeNotFound.WithDetail("node_id", activeID.String())
	}
	if !valueobjects.IsMeaningfulLabel(active.Label(), a.domain) {
		return ports.SuggestionRequest{}, ErrLabelRequired.WithDetail("node_id", activeID.String())
	}

	connected := state.Neighbors(activeID)
	others := make([]ports.SuggestionCandidate, 0, state.NodeCount())
	for _, node := range state.Nodes() {
		if node.ID().Equals(activeID) || connected[node.ID()] {
			continue
		}
		if a.domain.MaxSuggestionCandidates > 0 && len(others) >= a.domain.MaxSuggestionCandidates {
			break
		}
		others = append(others, candidateOf(node.ID(), node.Label(), node.Position()))
	}

	return ports.SuggestionRequest{
		ActiveNode: candidateOf(active.ID(), active.Label(), active.Position()),
		OtherNodes: others,
	}, nil
}

func candidateOf(id valueobjects.NodeID, label string, position valueobjects.Position) ports.SuggestionCandidate {
	return ports.SuggestionCandidate{
		ID:   id.String(),
		Text: label,
		X:    position.X(),
		Y:    position.Y(),
	}
}

// Fetch sends a request on behalf of ownerID. The results are returned in
// the order the service ranked them. A cancelled context means the request
// was superseded and is reported as context.Canceled.
func (a *Adapter) Fetch(ctx context.Context, ownerID string, req ports.SuggestionRequest) ([]ports.SuggestionResult, error) {
	if a.limiter != nil {
		allowed, err := a.limiter.Allow(ctx, "suggest:"+ownerID)
		if err != nil {
			return nil, err
		}
		if !allowed {
			a.metrics.SuggestionRequest(OutcomeRateLimited, 0, 0)
			return nil, pkgerrors.NewRateLimitError(a.limit(), "minute").WithCode("SUGGESTIONS_RATE_LIMITED")
		}
	}

	if len(req.OtherNodes) == 0 {
		a.metrics.SuggestionRequest(OutcomeEmpty, 0, 0)
		return []ports.SuggestionResult{}, nil
	}

	if timeout := time.Duration(a.timeout.Load()); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	results, err := a.service.Suggest(ctx, req)
	duration := time.Since(start)

	switch {
	case errors.Is(err, context.Canceled):
		a.metrics.SuggestionRequest(OutcomeSuperseded, 0, duration)
		return nil, context.Canceled
	case err != nil:
		a.metrics.SuggestionRequest(failureOutcome(err), 0, duration)
		a.logger.Warn("Suggestion request failed",
			zap.String("owner_id", ownerID),
			zap.String("node_id", req.ActiveNode.ID),
			zap.Int("candidates", len(req.OtherNodes)),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		if pkgerrors.IsAppError(err) {
			return nil, err
		}
		return nil, pkgerrors.NewExternalError("similarity", err)
	}

	if results == nil {
		results = []ports.SuggestionResult{}
	}
	outcome := OutcomeOK
	if len(results) == 0 {
		outcome = OutcomeEmpty
	}
	a.metrics.SuggestionRequest(outcome, len(results), duration)
	a.logger.Debug("Suggestions received",
		zap.String("owner_id", ownerID),
		zap.String("node_id", req.ActiveNode.ID),
		zap.Int("results", len(results)),
		zap.Duration("duration", duration),
	)

	return results, nil
}

func failureOutcome(err error) string {
	switch {
	case pkgerrors.IsTimeout(err):
		return OutcomeTimeout
	case pkgerrors.IsUnavailable(err):
		return OutcomeUnavailable
	default:
		return OutcomeError
	}
}

func (a *Adapter) limit() int {
	if l, ok := a.limiter.(interface{ Limit() int }); ok {
		return l.Limit()
	}
	return 0
}
