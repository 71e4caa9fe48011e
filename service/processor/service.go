package processor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/atomhq/atom/model/invocation"
	"github.com/atomhq/atom/service/dao"
	"github.com/atomhq/atom/service/executor"
	"github.com/atomhq/atom/service/messaging"
)

// Config represents processor service configuration
type Config struct {
	// WorkerCount is the number of workers processing invocations
	WorkerCount int

	// MaxRetries is the maximum number of retries for an invocation
	MaxRetries int

	// RetryDelay is the delay between retry attempts
	RetryDelay time.Duration
}

// DefaultConfig returns the default processor configuration
func DefaultConfig() Config {
	return Config{
		WorkerCount: 5,
		MaxRetries:  1,
		RetryDelay:  3 * time.Second,
	}
}

// RetryResolver returns the retry policy for an invocation, or nil for the
// processor defaults.  Typically wired to catalog connector profiles.
type RetryResolver func(anInvocation *invocation.Invocation) *Retry

// Service runs the invocation worker pool.
type Service struct {
	config        Config
	invocationDAO dao.Service[string, invocation.Invocation]

	queue    messaging.Queue[invocation.Invocation]
	executor executor.Service

	retryResolver RetryResolver

	workers    []*worker
	workerWg   sync.WaitGroup
	shutdownCh chan struct{}
}

type worker struct {
	id       int
	service  *Service
	ctx      context.Context
	cancelFn context.CancelFunc
}

// New creates a new processor service
func New(options ...Option) (*Service, error) {
	s := &Service{
		config:     DefaultConfig(),
		shutdownCh: make(chan struct{}),
	}
	for _, opt := range options {
		opt(s)
	}
	if s.executor == nil {
		return nil, fmt.Errorf("executor is required")
	}
	if s.queue == nil {
		return nil, fmt.Errorf("message queue is required")
	}
	if s.invocationDAO == nil {
		return nil, fmt.Errorf("invocationDAO service is required")
	}
	return s, nil
}

// Start begins the invocation processing service
func (s *Service) Start(ctx context.Context) error {
	for i := 0; i < s.config.WorkerCount; i++ {
		workerCtx, cancel := context.WithCancel(ctx)
		worker := &worker{
			id:       i,
			service:  s,
			ctx:      workerCtx,
			cancelFn: cancel,
		}
		s.workers = append(s.workers, worker)
		s.workerWg.Add(1)
		go worker.run()
	}
	return nil
}

// run processes messages from the queue
func (w *worker) run() {
	defer w.service.workerWg.Done()

	for {
		// Block until we either get a message or the context is cancelled.
		msg, err := w.service.queue.Consume(w.ctx)
		if err != nil {
			// Context was cancelled – graceful shutdown.
			if errors.Is(err, context.Canceled) {
				return
			}
			// Transient error (e.g. queue closed); back off a bit.
			time.Sleep(100 * time.Millisecond)
			continue
		}

		if msg == nil {
			continue
		}

		if pErr := w.service.processMessage(w.ctx, msg); pErr != nil {
			log.Printf("worker %d: failed to process message: %v", w.id, pErr)
		}
	}
}

// processMessage handles a single invocation message
func (s *Service) processMessage(ctx context.Context, message messaging.Message[invocation.Invocation]) error {
	anInvocation := message.T()

	// A decision could have arrived while the message sat on the queue.
	if stored, _ := s.invocationDAO.Load(ctx, anInvocation.ID); stored != nil {
		if stored.State.IsTerminal() {
			return message.Ack()
		}
		anInvocation.Merge(stored)
	}

	anInvocation.Start()
	if err := s.invocationDAO.Save(ctx, anInvocation); err != nil {
		return message.Nack(err)
	}

	err := s.executor.Execute(ctx, anInvocation)

	// Waiting for a human decision is a transitional state, not a failure.
	if errors.Is(err, executor.ErrWaitForApproval) {
		if daoErr := s.invocationDAO.Save(ctx, anInvocation); daoErr != nil {
			return message.Nack(daoErr)
		}
		return message.Ack()
	}

	if err != nil {
		// Denied and rejected actions are final - retrying cannot change the
		// governance outcome.
		permanent := errors.Is(err, executor.ErrActionDenied) || errors.Is(err, executor.ErrActionRejected)

		var retryCfg *Retry
		if s.retryResolver != nil {
			retryCfg = s.retryResolver(anInvocation)
		}
		shouldRetry, delay := s.shouldRetry(retryCfg, anInvocation.Attempts)
		if shouldRetry && !permanent {
			anInvocation.Attempts++
			anInvocation.Error = err.Error()
			anInvocation.Reschedule(time.Now().Add(delay))
			if daoErr := s.invocationDAO.Save(ctx, anInvocation); daoErr != nil {
				return message.Nack(fmt.Errorf("error %w and failed to save invocation: %v", err, daoErr))
			}
			return message.Ack()
		}

		// Give up – mark as failed
		anInvocation.Fail(err)
		if daoErr := s.invocationDAO.Save(ctx, anInvocation); daoErr != nil {
			return message.Nack(fmt.Errorf("encounter error: %w, and failed to save invocation: %v", err, daoErr))
		}
		return message.Ack()
	}

	anInvocation.Complete()
	if err := s.invocationDAO.Save(ctx, anInvocation); err != nil {
		return message.Nack(err)
	}
	return message.Ack()
}

// Shutdown stops the processor service
func (s *Service) Shutdown() {
	close(s.shutdownCh)
	for _, worker := range s.workers {
		worker.cancelFn()
	}
	s.workerWg.Wait()
}
