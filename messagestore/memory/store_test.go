package memory_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	es "github.com/terraskye/eventcore"
	"github.com/terraskye/eventcore/fixtures"
	"github.com/terraskye/eventcore/messagestore/memory"
)

func TestAppend_EmptyBatch(t *testing.T) {
	store := memory.NewMessageStore()
	defer store.Close()

	streamID := es.NewIdentifier()
	require.NoError(t, store.Append(t.Context(), streamID, nil))

	exists, err := store.Exists(t.Context(), streamID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestAppendAndLoad(t *testing.T) {
	ctx := t.Context()
	store := memory.NewMessageStore()
	streamID := es.NewIdentifier()

	first := fixtures.MessagesFromEvents(streamID,
		fixtures.OrderCreated{OrderID: "o-1", CustomerID: "alice"},
		fixtures.ItemAdded{OrderID: "o-1", ItemID: "book", Qty: 1},
	)
	second := fixtures.MessagesFromVersion(streamID, 3, fixtures.OrderShipped{OrderID: "o-1"})

	require.NoError(t, store.Append(ctx, streamID, first))
	require.NoError(t, store.Append(ctx, streamID, second))

	loaded, err := store.Load(ctx, streamID)
	require.NoError(t, err)
	assert.Equal(t, append(first, second...), loaded)

	version, err := store.Version(ctx, streamID)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), version)

	exists, err := store.Exists(ctx, streamID)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestLoad_OrdersByVersion(t *testing.T) {
	ctx := t.Context()
	store := memory.NewMessageStore()
	streamID := es.NewIdentifier()

	events := fixtures.NewTestEvent().BuildN(3)
	require.NoError(t, store.Append(ctx, streamID, []es.Message{
		fixtures.NewMessage(streamID, events[2], fixtures.WithVersion(3)),
		fixtures.NewMessage(streamID, events[0], fixtures.WithVersion(1)),
		fixtures.NewMessage(streamID, events[1], fixtures.WithVersion(2)),
	}))

	loaded, err := store.Load(ctx, streamID)
	require.NoError(t, err)
	assert.Equal(t, events, fixtures.Events(loaded))
}

func TestMissingStream(t *testing.T) {
	ctx := t.Context()
	store := memory.NewMessageStore()
	streamID := es.NewIdentifier()

	exists, err := store.Exists(ctx, streamID)
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = store.Load(ctx, streamID)
	var notFound *es.StreamNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, streamID, notFound.StreamID)

	_, err = store.Version(ctx, streamID)
	assert.ErrorIs(t, err, es.ErrStreamNotFound)
}

func TestAppend_VersionConflict(t *testing.T) {
	ctx := t.Context()
	store := memory.NewMessageStore()
	streamID := es.NewIdentifier()

	require.NoError(t, store.Append(ctx, streamID, fixtures.MessagesFromEvents(streamID, fixtures.NewTestEvent().BuildN(2)...)))

	// Versions 2 and 3: version 2 is taken, so neither is stored.
	err := store.Append(ctx, streamID, fixtures.MessagesFromVersion(streamID, 2,
		fixtures.NewTestEvent().WithData("late").BuildN(2)...,
	))

	var conflict *es.VersionConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, uint64(2), conflict.Version)
	assert.Equal(t, streamID, conflict.StreamID)

	loaded, err := store.Load(ctx, streamID)
	require.NoError(t, err)
	assert.Len(t, loaded, 2)

	version, err := store.Version(ctx, streamID)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), version)
}

func TestAppend_InvalidBatch(t *testing.T) {
	ctx := t.Context()
	streamID := es.NewIdentifier()
	ev := fixtures.NewTestEvent().Build()

	tests := []struct {
		name     string
		messages []es.Message
		target   error
	}{
		{
			name:     "foreign stream id",
			messages: []es.Message{fixtures.NewMessage(es.NewIdentifier(), ev)},
			target:   es.ErrInvalidMessageBatch,
		},
		{
			name:     "version zero",
			messages: []es.Message{fixtures.NewMessage(streamID, ev, fixtures.WithVersion(0))},
			target:   es.ErrInvalidMessageBatch,
		},
		{
			name:     "missing event",
			messages: []es.Message{es.NewMessage(streamID, 1, nil, 0)},
			target:   es.ErrInvalidMessageBatch,
		},
		{
			name: "duplicate version inside batch",
			messages: []es.Message{
				fixtures.NewMessage(streamID, ev, fixtures.WithVersion(1)),
				fixtures.NewMessage(streamID, ev, fixtures.WithVersion(1)),
			},
			target: es.ErrVersionConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.NewMessageStore()

			err := store.Append(ctx, streamID, tt.messages)

			assert.ErrorIs(t, err, tt.target)
			exists, err := store.Exists(ctx, streamID)
			require.NoError(t, err)
			assert.False(t, exists, "rejected batch must leave no trace")
		})
	}
}

func TestAppend_ConcurrentWritersExactlyOneWins(t *testing.T) {
	ctx := t.Context()
	store := memory.NewMessageStore()
	streamID := es.NewIdentifier()

	const writers = 32
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		wins      int
		conflicts int
	)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ev := fixtures.NewTestEvent().WithData(string(rune('a' + i))).Build()
			err := store.Append(ctx, streamID, []es.Message{fixtures.NewMessage(streamID, ev)})

			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				wins++
			} else if errors.Is(err, es.ErrVersionConflict) {
				conflicts++
			} else {
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	assert.Equal(t, writers-1, conflicts)

	loaded, err := store.Load(ctx, streamID)
	require.NoError(t, err)
	assert.Len(t, loaded, 1)
}

func TestCanceledContext(t *testing.T) {
	store := memory.NewMessageStore()
	streamID := es.NewIdentifier()

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	err := store.Append(ctx, streamID, fixtures.MessagesFromEvents(streamID, fixtures.NewTestEvent().Build()))
	assert.ErrorIs(t, err, context.Canceled)

	_, err = store.Load(ctx, streamID)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClose_DropsStreams(t *testing.T) {
	ctx := t.Context()
	store := memory.NewMessageStore()
	streamID := es.NewIdentifier()
	require.NoError(t, store.Append(ctx, streamID, fixtures.MessagesFromEvents(streamID, fixtures.NewTestEvent().Build())))

	require.NoError(t, store.Close())
	require.NoError(t, store.Close())

	exists, err := store.Exists(ctx, streamID)
	require.NoError(t, err)
	assert.False(t, exists)
}
