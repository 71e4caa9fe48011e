package fs

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
)

type payload struct {
	ID string
}

func newTestQueue(t *testing.T) *Queue[payload] {
	queue, err := NewQueue[payload](afs.New(), Config{
		BasePath:   fmt.Sprintf("mem://localhost/queue/%s-%d", t.Name(), time.Now().UnixNano()),
		MaxRetries: 1,
		RetryDelay: time.Millisecond,
	})
	require.NoError(t, err)
	return queue
}

func TestQueue_PublishConsumeAck(t *testing.T) {
	queue := newTestQueue(t)
	ctx := context.Background()

	require.NoError(t, queue.Publish(ctx, &payload{ID: "a"}))
	require.NoError(t, queue.Publish(ctx, &payload{ID: "b"}))

	message, err := queue.Consume(ctx)
	require.NoError(t, err)
	require.NotNil(t, message)
	assert.Equal(t, "a", message.T().ID, "consumption should follow publication order")
	require.NoError(t, message.Ack())

	next, err := queue.Consume(ctx)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, "b", next.T().ID)
}

func TestQueue_EmptyReturnsNil(t *testing.T) {
	queue := newTestQueue(t)
	message, err := queue.Consume(context.Background())
	require.NoError(t, err)
	assert.Nil(t, message)
}

func TestQueue_NackRetriesThenDeadLetters(t *testing.T) {
	queue := newTestQueue(t)
	ctx := context.Background()
	require.NoError(t, queue.Publish(ctx, &payload{ID: "flaky"}))

	message, err := queue.Consume(ctx)
	require.NoError(t, err)
	require.NotNil(t, message)
	require.NoError(t, message.Nack(errors.New("boom")))

	// first retry comes back from the failed directory
	retried, err := queue.Consume(ctx)
	require.NoError(t, err)
	require.NotNil(t, retried)
	assert.Equal(t, "flaky", retried.T().ID)
	require.NoError(t, retried.Nack(errors.New("boom again")))

	// retries exhausted, the message lands in the DLQ
	exhausted, err := queue.Consume(ctx)
	require.NoError(t, err)
	assert.Nil(t, exhausted)
}
