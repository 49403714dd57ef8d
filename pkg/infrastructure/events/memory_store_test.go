package events

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/lineplan/pkg/domain/entities"
)

func TestInMemoryEventStore_AppendAndRead(t *testing.T) {
	store := NewInMemoryEventStore(nil)
	a := entities.Assignment{ID: "as-1", OrderID: "ord-1", Quantity: 100}

	first, err := store.Append(NewAssignmentCommittedEvent("unit-1", "line-1A", a))
	require.NoError(t, err)
	assert.Equal(t, 0, first.Position)
	assert.Equal(t, 1, first.Version)
	assert.Equal(t, "ord-1", first.Stream)

	_, err = store.Append(NewBoardResetEvent(6, 6))
	require.NoError(t, err)
	removed, err := store.Append(NewAssignmentRemovedEvent("line-1A", a, "unassigned"))
	require.NoError(t, err)
	assert.Equal(t, 2, removed.Position)
	assert.Equal(t, 2, removed.Version)

	stream, err := store.ReadStream("ord-1", 0)
	require.NoError(t, err)
	require.Len(t, stream, 2)
	assert.NotEmpty(t, stream[0].ID)
	payload, ok := stream[1].Payload.(AssignmentRemoved)
	require.True(t, ok)
	assert.Equal(t, "unassigned", payload.Reason)

	tail, err := store.ReadStream("ord-1", 2)
	require.NoError(t, err)
	require.Len(t, tail, 1)
	assert.Equal(t, AssignmentRemovedEvent, tail[0].Type)

	all, err := store.ReadAll(1)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, BoardResetEvent, all[0].Type)
	assert.Equal(t, BoardStream, all[0].Stream)

	none, err := store.ReadStream("missing", 0)
	require.NoError(t, err)
	assert.Empty(t, none)

	past, err := store.ReadAll(10)
	require.NoError(t, err)
	assert.Empty(t, past)
}

func TestInMemoryEventStore_Defaults(t *testing.T) {
	store := NewInMemoryEventStore(nil)

	_, err := store.Append(Event{})
	assert.Error(t, err)

	e, err := store.Append(Event{Type: "custom"})
	require.NoError(t, err)
	assert.Equal(t, BoardStream, e.Stream)
	assert.NotEmpty(t, e.ID)
	assert.False(t, e.At.IsZero())
}

func TestInMemoryEventStore_ConcurrentAppends(t *testing.T) {
	store := NewInMemoryEventStore(nil)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = store.Append(NewBoardResetEvent(1, 1))
		}()
	}
	wg.Wait()

	all, err := store.ReadAll(0)
	require.NoError(t, err)
	require.Len(t, all, 50)
	for i, e := range all {
		assert.Equal(t, i, e.Position)
		assert.Equal(t, i+1, e.Version)
	}
}
