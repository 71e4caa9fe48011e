package processor

import (
	"github.com/atomhq/atom/model/invocation"
	"github.com/atomhq/atom/service/dao"
	"github.com/atomhq/atom/service/executor"
	"github.com/atomhq/atom/service/messaging"
)

type Option func(*Service)

// WithInvocationDAO sets the invocation store implementation
func WithInvocationDAO(invocationDAO dao.Service[string, invocation.Invocation]) Option {
	return func(s *Service) {
		s.invocationDAO = invocationDAO
	}
}

// WithMessageQueue sets the message queue implementation
func WithMessageQueue(queue messaging.Queue[invocation.Invocation]) Option {
	return func(s *Service) {
		s.queue = queue
	}
}

// WithExecutor sets the invocation executor for the service
func WithExecutor(executor executor.Service) Option {
	return func(s *Service) {
		s.executor = executor
	}
}

// WithWorkers sets the number of worker goroutines
func WithWorkers(count int) Option {
	return func(s *Service) {
		s.config.WorkerCount = count
	}
}

// WithRetryResolver sets the per-invocation retry policy resolver
func WithRetryResolver(resolver RetryResolver) Option {
	return func(s *Service) {
		s.retryResolver = resolver
	}
}

// WithConfig sets the configuration for the service
func WithConfig(config Config) Option {
	return func(s *Service) {
		s.config = config
	}
}
