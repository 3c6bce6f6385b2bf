package ports

import "context"

// SuggestionCandidate is a node as seen by the similarity service
type SuggestionCandidate struct {
	ID   string  `json:"id"`
	Text string  `json:"text"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// SuggestionRequest is the payload sent to the similarity service
type SuggestionRequest struct {
	ActiveNode SuggestionCandidate   `json:"active_node"`
	OtherNodes []SuggestionCandidate `json:"other_nodes"`
}

// SuggestionResult is one proposed edge from the active node
type SuggestionResult struct {
	TargetNodeID string  `json:"targetNodeId"`
	Score        float64 `json:"score"`
	Explanation  string  `json:"explanation"`
}

// SuggestionService proposes edges for an active node. Implementations
// return the results in the order the service ranked them; a response
// that is not a list is an empty result, not an error.
type SuggestionService interface {
	Suggest(ctx context.Context, req SuggestionRequest) ([]SuggestionResult, error)
}
