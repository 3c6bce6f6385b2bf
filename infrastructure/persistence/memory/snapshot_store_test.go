package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindmap-backend/application/ports"
	pkgerrors "mindmap-backend/pkg/errors"
)

func newClockedStore() (*SnapshotStore, *time.Time) {
	store := NewSnapshotStore()
	clock := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return clock }
	return store, &clock
}

func TestSnapshotStore_SaveAndLoad(t *testing.T) {
	ctx := context.Background()
	store, clock := newClockedStore()

	created, err := store.Save(ctx, "alice", ports.SaveMapInput{Title: "Plan", Data: []byte(`{"a":1}`)})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)

	*clock = clock.Add(time.Minute)
	updated, err := store.Save(ctx, "alice", ports.SaveMapInput{ID: created.ID, Title: "Plan v2", Data: []byte(`{"a":2}`)})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))

	loaded, err := store.Load(ctx, "alice", created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Plan v2", loaded.Title)
	assert.Equal(t, []byte(`{"a":2}`), loaded.Data)

	loaded.Data[0] = 'X'
	again, err := store.Load(ctx, "alice", created.ID)
	require.NoError(t, err)
	assert.Equal(t, byte('{'), again.Data[0], "loaded data must be a copy")

	assert.Equal(t, 1, store.Len())
}

func TestSnapshotStore_UnknownIDCreates(t *testing.T) {
	ctx := context.Background()
	store, _ := newClockedStore()

	record, err := store.Save(ctx, "alice", ports.SaveMapInput{ID: "not-mine", Title: "Plan"})
	require.NoError(t, err)
	assert.NotEqual(t, "not-mine", record.ID)

	_, err = store.Save(ctx, "", ports.SaveMapInput{Title: "Plan"})
	assert.True(t, pkgerrors.IsUnauthorized(err))
}

func TestSnapshotStore_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	store, clock := newClockedStore()

	first, err := store.Save(ctx, "alice", ports.SaveMapInput{Title: "first"})
	require.NoError(t, err)
	*clock = clock.Add(time.Second)
	_, err = store.Save(ctx, "alice", ports.SaveMapInput{Title: "second"})
	require.NoError(t, err)
	*clock = clock.Add(time.Second)
	_, err = store.Save(ctx, "bob", ports.SaveMapInput{Title: "other"})
	require.NoError(t, err)

	titles := func(owner string) []string {
		summaries, err := store.List(ctx, owner)
		require.NoError(t, err)
		var out []string
		for _, s := range summaries {
			out = append(out, s.Title)
		}
		return out
	}
	assert.Equal(t, []string{"second", "first"}, titles("alice"))

	*clock = clock.Add(time.Second)
	_, err = store.Save(ctx, "alice", ports.SaveMapInput{ID: first.ID, Title: "first"})
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, titles("alice"))
	assert.Equal(t, []string{"other"}, titles("bob"))

	empty, err := store.List(ctx, "carol")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestSnapshotStore_OwnerIsolationAndDelete(t *testing.T) {
	ctx := context.Background()
	store, _ := newClockedStore()

	record, err := store.Save(ctx, "alice", ports.SaveMapInput{Title: "Plan"})
	require.NoError(t, err)

	_, err = store.Load(ctx, "bob", record.ID)
	assert.True(t, pkgerrors.IsNotFound(err))
	assert.True(t, pkgerrors.IsNotFound(store.Delete(ctx, "bob", record.ID)))

	require.NoError(t, store.Delete(ctx, "alice", record.ID))
	_, err = store.Load(ctx, "alice", record.ID)
	assert.True(t, pkgerrors.IsNotFound(err))
	assert.Equal(t, 0, store.Len())
}

func TestSnapshotStore_CanceledContext(t *testing.T) {
	store, _ := newClockedStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Save(ctx, "alice", ports.SaveMapInput{})
	assert.ErrorIs(t, err, context.Canceled)
	_, err = store.List(ctx, "alice")
	assert.ErrorIs(t, err, context.Canceled)
}
