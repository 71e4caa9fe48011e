package approval

import (
	"context"
	"fmt"
	"time"
)

// DecisionFunc decides what to do with a pending request.
// Return (true,  "") to approve
//
//	(false, "…") to reject with reason.
type DecisionFunc func(r *Request) (approved bool, reason string)

// AutoDecider starts a goroutine that polls ListPending and applies fn to
// every request.  It returns stop() – call it (or cancel ctx) to exit.
func AutoDecider(ctx context.Context,
	svc Service,
	fn DecisionFunc,
	interval time.Duration) (stop func()) {

	if interval <= 0 {
		interval = 20 * time.Millisecond
	}
	done := make(chan struct{})

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case <-ticker.C:
				reqs, _ := svc.ListPending(ctx)
				for _, r := range reqs {
					ok, reason := fn(r)
					_, _ = svc.Decide(ctx, r.ID, ok, reason)
				}
			}
		}
	}()
	return func() { close(done) }
}

// AutoApprove automatically approves all pending requests
func AutoApprove(ctx context.Context,
	svc Service,
	interval time.Duration) func() {
	return AutoDecider(ctx, svc,
		func(*Request) (bool, string) { return true, "" }, interval)
}

// AutoReject automatically rejects all pending requests with the given reason
func AutoReject(ctx context.Context,
	svc Service,
	reason string,
	interval time.Duration) func() {
	return AutoDecider(ctx, svc,
		func(*Request) (bool, string) { return false, reason }, interval)
}

// AutoExpire rejects requests whose ExpiresAt deadline has passed.  Requests
// without a deadline are left untouched.
func AutoExpire(ctx context.Context,
	svc Service,
	reason string,
	interval time.Duration) (stop func()) {

	if interval <= 0 {
		interval = 20 * time.Millisecond
	}
	done := make(chan struct{})

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case <-ticker.C:
				reqs, _ := svc.ListPending(ctx)
				for _, r := range reqs {
					if r.ExpiresAt != nil && time.Now().After(*r.ExpiresAt) {
						_ = svc.Queue().Publish(ctx, &Event{Topic: TopicRequestExpired, Data: r})
						_, _ = svc.Decide(ctx, r.ID, false, reason)
					}
				}
			}
		}
	}()
	return func() { close(done) }
}

// PendingFilter narrows the result of ListPending.
type PendingFilter func(r *Request) bool

// WithRunID keeps only requests belonging to the supplied run.
func WithRunID(runID string) PendingFilter {
	return func(r *Request) bool { return r.RunID == runID }
}

// WithAction keeps only requests for the supplied "service.method" action.
func WithAction(action string) PendingFilter {
	return func(r *Request) bool { return r.Action == action }
}

// ListPending returns the pending requests that match all supplied filters.
func ListPending(ctx context.Context, svc Service, filters ...PendingFilter) ([]*Request, error) {
	all, err := svc.ListPending(ctx)
	if err != nil {
		return nil, err
	}
	if len(filters) == 0 {
		return all, nil
	}
	var ret []*Request
outer:
	for _, r := range all {
		for _, filter := range filters {
			if !filter(r) {
				continue outer
			}
		}
		ret = append(ret, r)
	}
	return ret, nil
}

// WaitForDecision blocks until a decision for the supplied request id is
// published on the service queue, or the timeout elapses.
func WaitForDecision(ctx context.Context, svc Service, id string, timeout time.Duration) (*Decision, error) {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	queue := svc.Queue()
	for {
		msg, err := queue.Consume(waitCtx)
		if err != nil {
			if waitCtx.Err() != nil {
				return nil, fmt.Errorf("timed out waiting for decision on %s: %w", id, waitCtx.Err())
			}
			return nil, err
		}
		if msg == nil {
			continue
		}
		event := msg.T()
		_ = msg.Ack()
		if event.Topic != TopicDecisionCreated {
			continue
		}
		decision, ok := event.Data.(*Decision)
		if !ok || decision.ID != id {
			continue
		}
		return decision, nil
	}
}
