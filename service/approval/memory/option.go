package memory

import (
	"github.com/atomhq/atom/model/invocation"
	"github.com/atomhq/atom/service/messaging"
)

type Option func(*service)

// WithInvocationQueue attaches the invocation queue so that the approval
// service can re-dispatch an invocation automatically once it has been
// approved.  Without the queue the decision is only recorded on the DAO and
// the scheduler scan picks the invocation up on its next pass.
func WithInvocationQueue(q messaging.Queue[invocation.Invocation]) Option {
	return func(s *service) { s.invocationQueue = q }
}
