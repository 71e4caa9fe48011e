package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atomhq/atom/model/invocation"
	"github.com/atomhq/atom/service/approval"
	dmemory "github.com/atomhq/atom/service/dao/invocation/memory"
	qmemory "github.com/atomhq/atom/service/messaging/memory"
	"github.com/atomhq/atom/service/scheduler"
)

func gatedInvocation(t *testing.T, ctx context.Context, invocationDAO *dmemory.Service) *invocation.Invocation {
	t.Helper()
	anInvocation := invocation.New("logger", "print", map[string]interface{}{"message": "gated"})
	anInvocation.Start()
	anInvocation.State = invocation.StateWaitForApproval
	require.NoError(t, invocationDAO.Save(ctx, anInvocation))
	return anInvocation
}

// An approval with an attached invocation queue publishes the approved
// invocation exactly once; subsequent scheduler scans must not publish the
// same transition again.
func TestService_DecideDispatchesOnce(t *testing.T) {
	ctx := context.Background()
	invocationDAO := dmemory.New()
	queue := qmemory.NewQueue[invocation.Invocation](qmemory.DefaultConfig())
	svc := New(invocationDAO, WithInvocationQueue(queue))

	anInvocation := gatedInvocation(t, ctx, invocationDAO)
	require.NoError(t, svc.RequestApproval(ctx, &approval.Request{
		InvocationID: anInvocation.ID,
		Action:       anInvocation.Action(),
		CreatedAt:    time.Now(),
	}))

	_, err := svc.Decide(ctx, anInvocation.ID, true, "looks safe")
	require.NoError(t, err)
	assert.Equal(t, 1, queue.Size())

	// the stored shape must not match any scheduler scan
	stored, err := invocationDAO.Load(ctx, anInvocation.ID)
	require.NoError(t, err)
	assert.Equal(t, invocation.StateScheduled, stored.State)
	assert.Nil(t, stored.RunAfter)
	require.NotNil(t, stored.Approved)
	assert.True(t, *stored.Approved)

	// several scheduler passes over the store add nothing to the queue
	scanCtx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel()
	sched := scheduler.New(invocationDAO, queue, scheduler.Config{PollingInterval: 10 * time.Millisecond})
	_ = sched.Start(scanCtx)
	assert.Equal(t, 1, queue.Size())
}

// Without an attached queue the scheduler owns resumption: the decision
// rewinds the invocation to pending and exactly one scan dispatches it.
func TestService_DecideSchedulerResumesOnce(t *testing.T) {
	ctx := context.Background()
	invocationDAO := dmemory.New()
	queue := qmemory.NewQueue[invocation.Invocation](qmemory.DefaultConfig())
	svc := New(invocationDAO)

	anInvocation := gatedInvocation(t, ctx, invocationDAO)
	require.NoError(t, svc.RequestApproval(ctx, &approval.Request{
		InvocationID: anInvocation.ID,
		Action:       anInvocation.Action(),
		CreatedAt:    time.Now(),
	}))

	_, err := svc.Decide(ctx, anInvocation.ID, true, "looks safe")
	require.NoError(t, err)
	assert.Equal(t, 0, queue.Size())

	stored, err := invocationDAO.Load(ctx, anInvocation.ID)
	require.NoError(t, err)
	assert.Equal(t, invocation.StatePending, stored.State)

	scanCtx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel()
	sched := scheduler.New(invocationDAO, queue, scheduler.Config{PollingInterval: 10 * time.Millisecond})
	_ = sched.Start(scanCtx)
	assert.Equal(t, 1, queue.Size())
}

func TestService_DecideRejection(t *testing.T) {
	ctx := context.Background()
	invocationDAO := dmemory.New()
	queue := qmemory.NewQueue[invocation.Invocation](qmemory.DefaultConfig())
	svc := New(invocationDAO, WithInvocationQueue(queue))

	anInvocation := gatedInvocation(t, ctx, invocationDAO)
	require.NoError(t, svc.RequestApproval(ctx, &approval.Request{
		InvocationID: anInvocation.ID,
		Action:       anInvocation.Action(),
		CreatedAt:    time.Now(),
	}))

	decision, err := svc.Decide(ctx, anInvocation.ID, false, "not today")
	require.NoError(t, err)
	assert.False(t, decision.Approved)
	// rejections are never published directly
	assert.Equal(t, 0, queue.Size())

	stored, err := invocationDAO.Load(ctx, anInvocation.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Approved)
	assert.False(t, *stored.Approved)
	assert.Contains(t, stored.Error, "rejected")

	_, err = svc.Decide(ctx, anInvocation.ID, true, "changed my mind")
	assert.Error(t, err, "a decision is final")
}
