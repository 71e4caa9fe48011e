package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/atomhq/atom/model/invocation"
	"github.com/atomhq/atom/service/dao"
	"github.com/atomhq/atom/service/messaging"
)

// Config represents scheduler service configuration
type Config struct {
	// PollingInterval is how often the scheduler checks for due invocations
	PollingInterval time.Duration
}

// DefaultConfig returns the default scheduler configuration
func DefaultConfig() Config {
	return Config{
		PollingInterval: 20 * time.Millisecond,
	}
}

// Service dispatches due invocations to the processing queue.
type Service struct {
	config        Config
	invocationDAO dao.Service[string, invocation.Invocation]
	queue         messaging.Queue[invocation.Invocation]
	shutdownCh    chan struct{}
}

// New creates a new scheduler service
func New(invocationDAO dao.Service[string, invocation.Invocation], queue messaging.Queue[invocation.Invocation], config Config) *Service {
	return &Service{
		config:        config,
		invocationDAO: invocationDAO,
		queue:         queue,
		shutdownCh:    make(chan struct{}),
	}
}

// Start begins the dispatch loop
func (s *Service) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.config.PollingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.shutdownCh:
			return nil
		case <-ticker.C:
			if err := s.dispatchDue(ctx); err != nil {
				// Log error but continue
				log.Printf("error dispatching invocations: %v", err)
			}
		}
	}
}

// dispatchDue republishes every invocation that became runnable again.  An
// invocation is dispatched at most once per state transition: dispatching
// clears RunAfter while keeping the scheduled state, which no scan matches,
// so a second pass cannot pick the same transition up again.
func (s *Service) dispatchDue(ctx context.Context) error {
	scheduled, err := s.invocationDAO.List(ctx, dao.NewParameter("State", string(invocation.StateScheduled)))
	if err != nil {
		return err
	}
	now := time.Now()
	for _, anInvocation := range scheduled {
		if anInvocation.RunAfter == nil || anInvocation.RunAfter.After(now) {
			continue
		}
		if err := s.dispatch(ctx, anInvocation); err != nil {
			return err
		}
	}

	// Approval decisions rewind gated invocations to pending while keeping
	// StartedAt set; those need a second trip through the queue.
	pending, err := s.invocationDAO.List(ctx, dao.NewParameter("State", string(invocation.StatePending)))
	if err != nil {
		return err
	}
	for _, anInvocation := range pending {
		if anInvocation.Approved == nil || anInvocation.StartedAt == nil {
			continue
		}
		if err := s.dispatch(ctx, anInvocation); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) dispatch(ctx context.Context, anInvocation *invocation.Invocation) error {
	anInvocation.State = invocation.StateScheduled
	anInvocation.RunAfter = nil
	if err := s.invocationDAO.Save(ctx, anInvocation); err != nil {
		return err
	}
	return s.queue.Publish(ctx, anInvocation)
}

// Shutdown stops the scheduler service
func (s *Service) Shutdown() {
	close(s.shutdownCh)
}
