// Package similarity talks to the service that proposes edges between
// nodes, and provides a local implementation of that service.
package similarity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"mindmap-backend/application/ports"
	pkgerrors "mindmap-backend/pkg/errors"
)

// maxResponseBytes bounds how much of a response body is read
const maxResponseBytes = 1 << 20

// ClientConfig configures the HTTP client
type ClientConfig struct {
	URL string

	// Consecutive failures that open the breaker, and how long it stays open
	BreakerFailures uint32
	BreakerTimeout  time.Duration
}

// Client is a ports.SuggestionService calling a remote similarity service
// over HTTP. Calls go through a circuit breaker so a dead service fails
// fast.
type Client struct {
	url     string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

// NewClient creates a client. httpClient may be nil; deadlines come from
// the request context.
func NewClient(cfg ClientConfig, httpClient *http.Client, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 5
	}

	c := &Client{url: cfg.URL, http: httpClient, logger: logger}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "similarity",
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		// A superseded request says nothing about the service's health
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})
	return c
}

// Suggest posts the request and decodes the ranked results
func (c *Client) Suggest(ctx context.Context, req ports.SuggestionRequest) ([]ports.SuggestionResult, error) {
	out, err := c.breaker.Execute(func() (interface{}, error) {
		return c.post(ctx, req)
	})

	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return nil, pkgerrors.NewUnavailableError("similarity").WithCode("SUGGESTIONS_UNAVAILABLE").WithCause(err)
	case err != nil:
		return nil, err
	}
	return out.([]ports.SuggestionResult), nil
}

func (c *Client) post(ctx context.Context, req ports.SuggestionRequest) ([]ports.SuggestionResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, pkgerrors.NewInternalError("failed to encode suggestion request").WithCause(err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, pkgerrors.NewInternalError("failed to build suggestion request").WithCause(err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			if errors.Is(ctxErr, context.DeadlineExceeded) {
				return nil, pkgerrors.NewTimeoutError("suggest").WithCode("SUGGESTIONS_TIMEOUT").WithCause(err)
			}
			return nil, ctxErr
		}
		return nil, pkgerrors.NewNetworkError("similarity service unreachable", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, pkgerrors.NewNetworkError("failed to read similarity response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, pkgerrors.NewExternalError("similarity",
			fmt.Errorf("status %d: %s", resp.StatusCode, truncate(raw, 200)))
	}

	return DecodeResults(raw, c.logger), nil
}

// resultItem tolerates any JSON in each field so one bad item does not
// discard the rest
type resultItem struct {
	TargetNodeID json.RawMessage `json:"targetNodeId"`
	Score        json.RawMessage `json:"score"`
	Explanation  json.RawMessage `json:"explanation"`
}

// DecodeResults reads a similarity response. Anything other than a JSON
// list is an empty result. Items without a string target id or a numeric
// score are skipped; scores and order are kept as the service sent them.
func DecodeResults(raw []byte, logger *zap.Logger) []ports.SuggestionResult {
	results := []ports.SuggestionResult{}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		if logger != nil {
			logger.Debug("Similarity response is not a list", zap.Int("bytes", len(raw)))
		}
		return results
	}

	for _, rawItem := range items {
		var item resultItem
		if err := json.Unmarshal(rawItem, &item); err != nil {
			continue
		}
		var target string
		if err := json.Unmarshal(item.TargetNodeID, &target); err != nil || target == "" {
			continue
		}
		var score float64
		if err := json.Unmarshal(item.Score, &score); err != nil {
			continue
		}
		var explanation string
		_ = json.Unmarshal(item.Explanation, &explanation)

		results = append(results, ports.SuggestionResult{
			TargetNodeID: target,
			Score:        score,
			Explanation:  explanation,
		})
	}
	return results
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
