package invocation

import (
	"fmt"
	"sync"
	"time"

	"github.com/atomhq/atom/internal/idgen"
	"github.com/atomhq/atom/service/event"
)

// EventKey is the context key under which an optional event service travels
// with an invocation.
type eventKeyT string

var EventKey = eventKeyT("atom-event-service")

// Invocation represents a single asynchronous integration call.
type Invocation struct {
	ID             string                 `json:"id"`
	RunID          string                 `json:"runId,omitempty"`
	Service        string                 `json:"service"`
	Method         string                 `json:"method"`
	Input          interface{}            `json:"input,omitempty"`
	Output         interface{}            `json:"output,omitempty"`
	State          State                  `json:"state"`
	Error          string                 `json:"error,omitempty"`
	Attempts       int                    `json:"attempts,omitempty"`
	ScheduledAt    time.Time              `json:"scheduledAt"`
	StartedAt      *time.Time             `json:"startedAt,omitempty"`
	CompletedAt    *time.Time             `json:"completedAt,omitempty"`
	RunAfter       *time.Time             `json:"runAfter,omitempty"`
	Approved       *bool                  `json:"approved,omitempty"`
	ApprovalReason string                 `json:"approvalReason,omitempty"`
	Meta           map[string]interface{} `json:"meta,omitempty"`
	mux            sync.RWMutex
}

// New creates a pending invocation for the given service method.
func New(service, method string, input interface{}) *Invocation {
	return &Invocation{
		ID:          generateID(service, method),
		Service:     service,
		Method:      method,
		Input:       input,
		State:       StatePending,
		ScheduledAt: time.Now(),
	}
}

// Action returns the fully qualified action name "service.method".
func (i *Invocation) Action() string {
	return i.Service + "." + i.Method
}

// Context builds an event context describing this invocation.
func (i *Invocation) Context(eventType string) *event.Context {
	return &event.Context{
		EventType:    eventType,
		RunID:        i.RunID,
		InvocationID: i.ID,
		Service:      i.Service,
		Method:       i.Method,
	}
}

// Start marks the invocation as started
func (i *Invocation) Start() {
	now := time.Now()
	i.StartedAt = &now
	i.State = StateRunning
}

// Complete marks the invocation as completed
func (i *Invocation) Complete() {
	now := time.Now()
	i.CompletedAt = &now
	i.State = StateCompleted
}

// Fail marks the invocation as failed
func (i *Invocation) Fail(err error) {
	now := time.Now()
	i.CompletedAt = &now
	if err != nil {
		i.Error = err.Error()
	}
	i.State = StateFailed
}

func (i *Invocation) Skip() {
	i.State = StateSkipped
}

func (i *Invocation) Cancel() {
	now := time.Now()
	i.CompletedAt = &now
	i.State = StateCancelled
}

// Reschedule defers the invocation until runAfter.
func (i *Invocation) Reschedule(runAfter time.Time) {
	i.RunAfter = &runAfter
	i.State = StateScheduled
}

// Merge copies non-empty fields from the other invocation.
func (i *Invocation) Merge(other *Invocation) {
	if other == nil || other == i {
		return
	}
	i.mux.Lock()
	other.mux.RLock()
	defer other.mux.RUnlock()
	defer i.mux.Unlock()

	if other.Output != nil {
		i.Output = other.Output
	}
	if other.State != "" {
		i.State = other.State
	}
	if other.Error != "" {
		i.Error = other.Error
	}
	if other.StartedAt != nil {
		i.StartedAt = other.StartedAt
	}
	if other.CompletedAt != nil {
		i.CompletedAt = other.CompletedAt
	}
	if other.Approved != nil {
		i.Approved = other.Approved
		i.ApprovalReason = other.ApprovalReason
	}
	if i.Meta == nil {
		i.Meta = make(map[string]interface{})
	}
	for key, value := range other.Meta {
		i.Meta[key] = value
	}
}

// Clone creates a deep copy so that the caller can mutate it without
// affecting the original instance. Input/Output values are shared, they are
// treated as immutable once recorded.
func (i *Invocation) Clone() *Invocation {
	if i == nil {
		return nil
	}
	i.mux.RLock()
	defer i.mux.RUnlock()

	clone := *i
	clone.mux = sync.RWMutex{}

	if i.Meta != nil {
		clone.Meta = make(map[string]interface{}, len(i.Meta))
		for k, v := range i.Meta {
			clone.Meta[k] = v
		}
	}
	if i.RunAfter != nil {
		t := *i.RunAfter
		clone.RunAfter = &t
	}
	if i.Approved != nil {
		b := *i.Approved
		clone.Approved = &b
	}
	return &clone
}

// generateID creates a unique ID for an invocation
func generateID(service, method string) string {
	return fmt.Sprintf("%s-%s-%s", service, method, idgen.New())
}
