package memory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/atomhq/atom/model/invocation"
	approval "github.com/atomhq/atom/service/approval"
	"github.com/atomhq/atom/service/dao"
	"github.com/atomhq/atom/service/dao/store"
	"github.com/atomhq/atom/service/messaging"
	qmem "github.com/atomhq/atom/service/messaging/memory"
)

type service struct {
	invocationDao dao.Service[string, invocation.Invocation]

	// DAO-backed stores
	reqDAO dao.Service[string, approval.Request]
	decDAO dao.Service[string, approval.Decision]

	// fan-out queue
	events messaging.Queue[approval.Event]

	// optional - when set, an approved invocation is published back to the
	// invocation queue so that the processor picks it up without waiting for
	// the scheduler scan.
	invocationQueue messaging.Queue[invocation.Invocation]
}

// key selectors – grab ID field
func reqKey(r *approval.Request) string  { return r.ID }
func decKey(d *approval.Decision) string { return d.ID }

func New(invocationDao dao.Service[string, invocation.Invocation], options ...Option) approval.Service {
	ret := &service{
		invocationDao: invocationDao,
		reqDAO:        store.NewMemoryStore[string, approval.Request](reqKey),
		decDAO:        store.NewMemoryStore[string, approval.Decision](decKey),
		events:        qmem.NewQueue[approval.Event](qmem.DefaultConfig()),
	}
	for _, option := range options {
		option(ret)
	}
	return ret
}

/* ---------------- DAO-style operations -------------------------------- */

func (s *service) RequestApproval(ctx context.Context, r *approval.Request) error {
	if r == nil {
		return errors.New("invalid request")
	}

	// Ensure the request has a globally unique identifier.  If the caller did
	// not specify one we fall back to InvocationID (unique within a run) to
	// protect against silent drops caused by empty IDs.
	if r.ID == "" {
		switch {
		case r.InvocationID != "":
			r.ID = r.InvocationID
		case r.RunID != "":
			r.ID = fmt.Sprintf("%s/%d", r.RunID, time.Now().UnixNano())
		default:
			r.ID = fmt.Sprintf("anon-%d", time.Now().UnixNano())
		}
	}

	// Idempotent save – overwrite any previous copy to handle re-submissions
	// gracefully; a re-submission announces itself as an update.
	topic := approval.TopicRequestCreated
	if existing, _ := s.reqDAO.Load(ctx, r.ID); existing != nil {
		topic = approval.TopicRequestUpdated
	}
	_ = s.reqDAO.Save(ctx, r)
	_ = s.events.Publish(ctx, &approval.Event{Topic: topic, Data: r})
	return nil
}

func (s *service) ListPending(ctx context.Context) ([]*approval.Request, error) {
	all, err := s.reqDAO.List(ctx)
	if err != nil {
		return nil, err
	}
	pending := make([]*approval.Request, 0, len(all))
	for _, r := range all {
		if d, _ := s.decDAO.Load(ctx, r.ID); d == nil {
			pending = append(pending, r)
		}
	}
	return pending, nil
}

func (s *service) Decide(ctx context.Context, id string,
	ok bool, reason string) (*approval.Decision, error) {

	if id == "" {
		return nil, errors.New("empty id")
	}
	request, _ := s.reqDAO.Load(ctx, id)
	if request == nil {
		return nil, fmt.Errorf("request %s not found", id)
	}
	if d, _ := s.decDAO.Load(ctx, id); d != nil {
		return nil, fmt.Errorf("already decided")
	}

	// When the service is initialised with an invocation DAO and the request
	// is linked to a concrete invocation, rewind the invocation so that the
	// scheduler (or the attached queue) re-dispatches it with the decision
	// recorded.  The DAO is optional - the approval service can gate generic
	// actions where no invocation tracking exists.
	if s.invocationDao != nil && request.InvocationID != "" {
		anInvocation, err := s.invocationDao.Load(ctx, request.InvocationID)
		if err != nil {
			return nil, err
		}

		anInvocation.Approved = &ok
		anInvocation.ApprovalReason = reason
		if !ok {
			anInvocation.Error = fmt.Sprintf("action %s rejected: %s", request.Action, reason)
		} else {
			anInvocation.Error = ""
		}
		// Rewind state so the invocation gets dispatched again.
		anInvocation.State = invocation.StatePending

		// When a queue is attached the decision itself is the dispatch: store
		// the invocation in the already-dispatched shape (scheduled, RunAfter
		// cleared) so no scheduler scan can publish the same transition again.
		directDispatch := ok && s.invocationQueue != nil
		if directDispatch {
			anInvocation.State = invocation.StateScheduled
			anInvocation.RunAfter = nil
		}
		if err = s.invocationDao.Save(ctx, anInvocation); err != nil {
			return nil, err
		}
		if directDispatch {
			_ = s.invocationQueue.Publish(ctx, anInvocation)
		}
	}

	d := &approval.Decision{
		ID:        id,
		Approved:  ok,
		Reason:    reason,
		DecidedAt: time.Now(),
	}
	_ = s.decDAO.Save(ctx, d)
	_ = s.events.Publish(ctx, &approval.Event{Topic: approval.TopicDecisionCreated, Data: d})
	return d, nil
}

/* ---------------- Broker-style ---------------------------------------- */

func (s *service) Queue() messaging.Queue[approval.Event] { return s.events }

var _ approval.Service = (*service)(nil)
