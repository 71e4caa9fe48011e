package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	ID string
}

func TestQueue_PublishConsume(t *testing.T) {
	queue := NewQueue[payload](DefaultConfig())
	ctx := context.Background()

	require.NoError(t, queue.Publish(ctx, &payload{ID: "a"}))
	require.NoError(t, queue.Publish(ctx, &payload{ID: "b"}))
	assert.Equal(t, 2, queue.Size())

	message, err := queue.Consume(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", message.T().ID)
	require.NoError(t, message.Ack())
	assert.Error(t, message.Ack(), "double ack should fail")
}

func TestQueue_ConsumeHonoursContext(t *testing.T) {
	queue := NewQueue[payload](DefaultConfig())
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := queue.Consume(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestQueue_NackRedeliversThenDeadLetters(t *testing.T) {
	queue := NewQueue[payload](Config{
		MaxRetries:  1,
		RetryDelay:  time.Millisecond,
		DeadLetter:  true,
		QueueBuffer: 10,
	})
	ctx := context.Background()
	require.NoError(t, queue.Publish(ctx, &payload{ID: "flaky"}))

	message, err := queue.Consume(ctx)
	require.NoError(t, err)
	require.NoError(t, message.Nack(errors.New("boom")))

	redeliverCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	redelivered, err := queue.Consume(redeliverCtx)
	require.NoError(t, err)
	assert.Equal(t, "flaky", redelivered.T().ID)

	require.NoError(t, redelivered.Nack(errors.New("boom again")))
	assert.Eventually(t, func() bool {
		return queue.DLQSize() == 1
	}, time.Second, 10*time.Millisecond)
}
