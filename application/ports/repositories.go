package ports

import (
	"context"
	"time"

	"mindmap-backend/domain/events"
)

// MapRecord is one saved mind map. Data is the serialized session
// document; the store never looks inside it.
type MapRecord struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"ownerId"`
	Title     string    `json:"title"`
	Data      []byte    `json:"-"`
	Thumbnail string    `json:"thumbnail,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// MapSummary is a MapRecord without its data, as returned by List
type MapSummary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Thumbnail string    `json:"thumbnail,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SaveMapInput is the payload of a save. An empty or unknown ID creates
// a new record with a fresh id; a known ID updates that record.
type SaveMapInput struct {
	ID        string
	Title     string
	Data      []byte
	Thumbnail string
}

// SnapshotStore defines the interface for saved map persistence
// This is a port in hexagonal architecture - the domain doesn't know about the implementation
type SnapshotStore interface {
	// Save creates or updates a record owned by ownerID
	Save(ctx context.Context, ownerID string, input SaveMapInput) (*MapRecord, error)

	// Load returns a record with its data verbatim
	Load(ctx context.Context, ownerID, id string) (*MapRecord, error)

	// List returns the owner's records, most recently updated first
	List(ctx context.Context, ownerID string) ([]MapSummary, error)

	// Delete removes a record
	Delete(ctx context.Context, ownerID, id string) error
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	// Publish sends a single event
	Publish(ctx context.Context, event events.DomainEvent) error

	// PublishBatch sends multiple events
	PublishBatch(ctx context.Context, events []events.DomainEvent) error
}
