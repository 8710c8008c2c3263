package callback

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryQueue_SendReceiveBatch(t *testing.T) {
	q := NewMemoryQueue(4)
	ctx := context.Background()

	require.NoError(t, q.Send(ctx, "one"))
	require.NoError(t, q.Send(ctx, "two"))
	require.NoError(t, q.Send(ctx, "three"))
	assert.Equal(t, 3, q.Len())

	msgs, err := q.Receive(ctx, 2, 1)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "one", msgs[0].Body)
	assert.Equal(t, "two", msgs[1].Body)
	assert.NotEmpty(t, msgs[0].ID)
	assert.NotEmpty(t, msgs[0].ReceiptHandle)
	assert.NoError(t, q.Delete(ctx, msgs[0].ReceiptHandle))

	msgs, err = q.Receive(ctx, 10, 1)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "three", msgs[0].Body)
}

func TestMemoryQueue_ReceiveTimesOut(t *testing.T) {
	msgs, err := NewMemoryQueue(1).Receive(context.Background(), 1, 1)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestMemoryQueue_ContextCancellation(t *testing.T) {
	q := NewMemoryQueue(1)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := q.Receive(ctx, 1, 0)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, q.Send(context.Background(), "fills buffer"))
	full, cancelFull := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancelFull()
	assert.ErrorIs(t, q.Send(full, "blocked"), context.DeadlineExceeded)
}
