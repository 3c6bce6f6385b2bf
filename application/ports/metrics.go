package ports

import "time"

// Metrics receives the measurements taken by the application layer
type Metrics interface {
	// SessionOperation counts an editing operation and whether it changed the graph
	SessionOperation(operation string, changed bool)

	// SuggestionRequest records one call to the similarity service
	SuggestionRequest(outcome string, results int, duration time.Duration)

	// ActiveSessions sets the number of open sessions
	ActiveSessions(count int)

	// StoreOperation records one call to the snapshot store
	StoreOperation(operation string, err error, duration time.Duration)
}

// NoopMetrics discards every measurement
type NoopMetrics struct{}

func (NoopMetrics) SessionOperation(string, bool)                {}
func (NoopMetrics) SuggestionRequest(string, int, time.Duration) {}
func (NoopMetrics) ActiveSessions(int)                           {}
func (NoopMetrics) StoreOperation(string, error, time.Duration)  {}
