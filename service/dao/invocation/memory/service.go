package memory

import (
	"context"
	"sync"

	"github.com/atomhq/atom/model/invocation"
	"github.com/atomhq/atom/service/dao"
	"github.com/atomhq/atom/service/dao/criteria"
)

// Service implements in-memory invocation storage. All operations are
// thread-safe and return copies of the underlying objects to prevent data
// races when callers mutate the returned instances.
type Service struct {
	invocations map[string]*invocation.Invocation
	mux         sync.RWMutex
}

var _ dao.Service[string, invocation.Invocation] = (*Service)(nil)

// Save persists (a clone of) the supplied invocation.
func (s *Service) Save(_ context.Context, inv *invocation.Invocation) error {
	if inv == nil {
		return dao.ErrNilEntity
	}
	if inv.ID == "" {
		return dao.ErrInvalidID
	}
	s.mux.Lock()
	defer s.mux.Unlock()
	s.invocations[inv.ID] = inv.Clone()
	return nil
}

// Load retrieves a copy of the invocation or dao.ErrNotFound.
func (s *Service) Load(_ context.Context, id string) (*invocation.Invocation, error) {
	if id == "" {
		return nil, dao.ErrInvalidID
	}
	s.mux.RLock()
	inv, ok := s.invocations[id]
	s.mux.RUnlock()
	if !ok {
		return nil, dao.ErrNotFound
	}
	return inv.Clone(), nil
}

// Delete removes an invocation.
func (s *Service) Delete(_ context.Context, id string) error {
	if id == "" {
		return dao.ErrInvalidID
	}
	s.mux.Lock()
	defer s.mux.Unlock()
	if _, ok := s.invocations[id]; !ok {
		return dao.ErrNotFound
	}
	delete(s.invocations, id)
	return nil
}

// List returns copies of all invocations matching the supplied parameters
// (State, Service, RunID).
func (s *Service) List(_ context.Context, parameters ...*dao.Parameter) ([]*invocation.Invocation, error) {
	s.mux.RLock()
	defer s.mux.RUnlock()

	out := make([]*invocation.Invocation, 0, len(s.invocations))
	for _, inv := range s.invocations {
		attributes := map[string]string{
			"State":   string(inv.State),
			"Service": inv.Service,
			"RunID":   inv.RunID,
		}
		if !criteria.Match(attributes, parameters) {
			continue
		}
		out = append(out, inv.Clone())
	}
	return out, nil
}

// New constructor.
func New() *Service {
	return &Service{invocations: map[string]*invocation.Invocation{}}
}
