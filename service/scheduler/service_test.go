package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atomhq/atom/model/invocation"
	invmem "github.com/atomhq/atom/service/dao/invocation/memory"
	"github.com/atomhq/atom/service/messaging/memory"
)

func TestService_DispatchDue(t *testing.T) {
	ctx := context.Background()
	invocationDAO := invmem.New()
	queue := memory.NewQueue[invocation.Invocation](memory.DefaultConfig())
	srv := New(invocationDAO, queue, DefaultConfig())

	past := time.Now().Add(-time.Second)
	future := time.Now().Add(time.Hour)

	due := invocation.New("connector", "call", nil)
	due.Reschedule(past)
	require.NoError(t, invocationDAO.Save(ctx, due))

	notDue := invocation.New("connector", "call", nil)
	notDue.Reschedule(future)
	require.NoError(t, invocationDAO.Save(ctx, notDue))

	approved := true
	started := time.Now()
	resumed := invocation.New("exec", "run", nil)
	resumed.Approved = &approved
	resumed.StartedAt = &started
	require.NoError(t, invocationDAO.Save(ctx, resumed))

	fresh := invocation.New("nop", "nop", nil)
	require.NoError(t, invocationDAO.Save(ctx, fresh))

	require.NoError(t, srv.dispatchDue(ctx))

	dispatched := map[string]bool{}
	for i := 0; i < 2; i++ {
		consumeCtx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
		msg, err := queue.Consume(consumeCtx)
		cancel()
		require.NoError(t, err)
		require.NotNil(t, msg)
		dispatched[msg.T().ID] = true
		require.NoError(t, msg.Ack())
	}
	assert.True(t, dispatched[due.ID])
	assert.True(t, dispatched[resumed.ID])

	// nothing else became due
	consumeCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	_, err := queue.Consume(consumeCtx)
	assert.Error(t, err)

	// a second pass must not dispatch the same transitions again
	require.NoError(t, srv.dispatchDue(ctx))
	consumeCtx2, cancel2 := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel2()
	_, err = queue.Consume(consumeCtx2)
	assert.Error(t, err)
}
