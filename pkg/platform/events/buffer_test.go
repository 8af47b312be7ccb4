package events

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRingBufferDropsOldest(t *testing.T) {
	buf := NewRingBuffer(3)
	for i := 0; i < 5; i++ {
		buf.Enqueue(Event{ID: fmt.Sprintf("e%d", i)})
	}

	require.Equal(t, 3, buf.Len())
	require.EqualValues(t, 2, buf.Dropped())

	batch := buf.DequeueBatch(10)
	require.Len(t, batch, 3)
	require.Equal(t, "e2", batch[0].ID)
	require.Equal(t, "e4", batch[2].ID)
	require.Equal(t, 0, buf.Len())
}

func TestRingBufferBatching(t *testing.T) {
	buf := NewRingBuffer(8)
	for i := 0; i < 5; i++ {
		buf.Enqueue(Event{ID: fmt.Sprintf("e%d", i)})
	}

	require.Nil(t, NewRingBuffer(4).DequeueBatch(1))

	first := buf.DequeueBatch(2)
	require.Len(t, first, 2)
	require.Equal(t, "e0", first[0].ID)

	rest := buf.DequeueBatch(10)
	require.Len(t, rest, 3)
	require.Equal(t, "e2", rest[0].ID)
}

func TestMemoryPublisher(t *testing.T) {
	mem := NewMemory()
	ctx := context.Background()

	e1 := New(KindChallengeIssued, "0xa1")
	e2 := New(KindCredentialIssued, "0xa1")
	mem.Emit(ctx, e1)
	mem.Emit(ctx, e2)

	require.NotEmpty(t, e1.ID)
	require.NotEqual(t, e1.ID, e2.ID)
	require.Len(t, mem.Events(), 2)
	require.Len(t, mem.ByKind(KindChallengeIssued), 1)
	require.Empty(t, mem.ByKind(KindCredentialDecayed))
}
