package invocation

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

var errEmptyPipeline = errors.New("pipeline has no steps")

func errIncompleteStep(name string) error {
	return fmt.Errorf("step %q misses service or method", name)
}

func errDuplicateStep(name string) error {
	return fmt.Errorf("duplicate step %q", name)
}

// StepStatus records the outcome of a single pipeline step.
type StepStatus struct {
	Name         string     `json:"name"`
	InvocationID string     `json:"invocationId"`
	State        State      `json:"state"`
	Error        string     `json:"error,omitempty"`
	StartedAt    *time.Time `json:"startedAt,omitempty"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
}

// Run is the execution record of one pipeline run.
type Run struct {
	ID          string            `json:"id"`
	Pipeline    string            `json:"pipeline"`
	State       State             `json:"state"`
	Steps       []*StepStatus     `json:"steps"`
	Errors      map[string]string `json:"errors,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
	CompletedAt *time.Time        `json:"completedAt,omitempty"`
	mux         sync.Mutex
}

// NewRun creates a run record for the supplied pipeline.
func NewRun(id string, p *Pipeline) *Run {
	return &Run{
		ID:        id,
		Pipeline:  p.Name,
		State:     StateRunning,
		Errors:    make(map[string]string),
		CreatedAt: time.Now(),
	}
}

// RecordStep appends the step outcome and tracks the first error.
func (r *Run) RecordStep(status *StepStatus) {
	r.mux.Lock()
	defer r.mux.Unlock()
	r.Steps = append(r.Steps, status)
	if status.Error != "" {
		r.Errors[status.Name] = status.Error
	}
}

// Finish marks the run as completed or failed depending on recorded errors.
func (r *Run) Finish() {
	r.mux.Lock()
	defer r.mux.Unlock()
	now := time.Now()
	r.CompletedAt = &now
	if len(r.Errors) > 0 {
		r.State = StateFailed
		return
	}
	r.State = StateCompleted
}
