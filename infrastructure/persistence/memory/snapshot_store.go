// Package memory keeps saved maps in process memory. It backs local
// development and tests; everything is lost on restart.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/btree"

	"mindmap-backend/application/ports"
	pkgerrors "mindmap-backend/pkg/errors"
)

type recordKey struct {
	ownerID string
	id      string
}

// listItem orders an owner's records most recently updated first
type listItem struct {
	ownerID   string
	updatedAt time.Time
	id        string
}

func listItemLess(a, b listItem) bool {
	if a.ownerID != b.ownerID {
		return a.ownerID < b.ownerID
	}
	if !a.updatedAt.Equal(b.updatedAt) {
		return a.updatedAt.After(b.updatedAt)
	}
	return a.id < b.id
}

// SnapshotStore is an in-memory ports.SnapshotStore
type SnapshotStore struct {
	mu      sync.RWMutex
	records map[recordKey]*ports.MapRecord
	byOwner *btree.BTreeG[listItem]
	now     func() time.Time
}

// NewSnapshotStore creates an empty store
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{
		records: make(map[recordKey]*ports.MapRecord),
		byOwner: btree.NewBTreeG[listItem](listItemLess),
		now:     time.Now,
	}
}

// Save creates or updates a record. An id the owner has no record for
// creates a new record with a fresh id.
func (s *SnapshotStore) Save(ctx context.Context, ownerID string, input ports.SaveMapInput) (*ports.MapRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if ownerID == "" {
		return nil, pkgerrors.NewUnauthorizedError("owner is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	existing, ok := s.records[recordKey{ownerID, input.ID}]
	if input.ID == "" || !ok {
		record := &ports.MapRecord{
			ID:        uuid.New().String(),
			OwnerID:   ownerID,
			Title:     input.Title,
			Data:      cloneBytes(input.Data),
			Thumbnail: input.Thumbnail,
			CreatedAt: now,
			UpdatedAt: now,
		}
		s.put(record)
		return cloneRecord(record), nil
	}

	s.byOwner.Delete(itemOf(existing))
	updated := *existing
	updated.Title = input.Title
	updated.Data = cloneBytes(input.Data)
	if input.Thumbnail != "" {
		updated.Thumbnail = input.Thumbnail
	}
	updated.UpdatedAt = now
	s.put(&updated)
	return cloneRecord(&updated), nil
}

func (s *SnapshotStore) put(record *ports.MapRecord) {
	s.records[recordKey{record.OwnerID, record.ID}] = record
	s.byOwner.Set(itemOf(record))
}

// Load returns a record with its data verbatim
func (s *SnapshotStore) Load(ctx context.Context, ownerID, id string) (*ports.MapRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[recordKey{ownerID, id}]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("map")
	}
	return cloneRecord(record), nil
}

// List returns the owner's records, most recently updated first
func (s *SnapshotStore) List(ctx context.Context, ownerID string) ([]ports.MapSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := make([]ports.MapSummary, 0)
	s.byOwner.Ascend(listItem{ownerID: ownerID, updatedAt: maxTime}, func(item listItem) bool {
		if item.ownerID != ownerID {
			return false
		}
		record := s.records[recordKey{item.ownerID, item.id}]
		summaries = append(summaries, ports.MapSummary{
			ID:        record.ID,
			Title:     record.Title,
			Thumbnail: record.Thumbnail,
			CreatedAt: record.CreatedAt,
			UpdatedAt: record.UpdatedAt,
		})
		return true
	})
	return summaries, nil
}

// Delete removes a record
func (s *SnapshotStore) Delete(ctx context.Context, ownerID, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := recordKey{ownerID, id}
	record, ok := s.records[key]
	if !ok {
		return pkgerrors.NewNotFoundError("map")
	}
	s.byOwner.Delete(itemOf(record))
	delete(s.records, key)
	return nil
}

// Len returns the number of stored records
func (s *SnapshotStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// maxTime sorts before every real timestamp in the descending order
var maxTime = time.Unix(1<<62, 0)

func itemOf(record *ports.MapRecord) listItem {
	return listItem{ownerID: record.OwnerID, updatedAt: record.UpdatedAt, id: record.ID}
}

func cloneRecord(record *ports.MapRecord) *ports.MapRecord {
	clone := *record
	clone.Data = cloneBytes(record.Data)
	return &clone
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte(nil), b...)
}
