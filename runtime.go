package atom

import (
	"context"
	"fmt"
	"time"

	"github.com/viant/toolbox"

	"github.com/atomhq/atom/intelligence"
	"github.com/atomhq/atom/internal/idgen"
	"github.com/atomhq/atom/model/invocation"
	"github.com/atomhq/atom/policy"
	"github.com/atomhq/atom/service/approval"
	"github.com/atomhq/atom/service/dao"
	"github.com/atomhq/atom/service/event"
	"github.com/atomhq/atom/service/executor"
	"github.com/atomhq/atom/service/messaging"
	"github.com/atomhq/atom/service/processor"
	"github.com/atomhq/atom/service/report"
	"github.com/atomhq/atom/service/scheduler"
)

// stepTimeout bounds how long a single pipeline step may take.
const stepTimeout = 5 * time.Minute

// Runtime drives asynchronous invocations: it owns the queue, the worker
// pool, the scheduler scan and the approval surface.
type Runtime struct {
	invocationDAO dao.Service[string, invocation.Invocation]
	queue         messaging.Queue[invocation.Invocation]
	executor      executor.Service
	processor     *processor.Service
	scheduler     *scheduler.Service
	approval      approval.Service
	eventService  *event.Service
	reports       *report.Service
	policy        *policy.Policy
	detector      *intelligence.Detector
}

// Start starts the worker pool and the scheduler scan.  The supplied context
// carries the governance policy and optional event service into every worker.
func (r *Runtime) Start(ctx context.Context) error {
	ctx = r.contextFor(ctx)
	go r.processor.Start(ctx)
	go r.scheduler.Start(ctx)
	return nil
}

// Shutdown stops the runtime.
func (r *Runtime) Shutdown(ctx context.Context) error {
	r.processor.Shutdown()
	r.scheduler.Shutdown()
	return nil
}

// contextFor decorates ctx with the runtime policy and event service.
func (r *Runtime) contextFor(ctx context.Context) context.Context {
	if r.policy != nil {
		ctx = policy.WithPolicy(ctx, r.policy)
	}
	if r.eventService != nil {
		ctx = context.WithValue(ctx, invocation.EventKey, r.eventService)
	}
	return ctx
}

// Approval returns the approval service.
func (r *Runtime) Approval() approval.Service {
	return r.approval
}

// Reports returns the report service.
func (r *Runtime) Reports() *report.Service {
	return r.reports
}

// Policy returns the governance policy applied to invocations.
func (r *Runtime) Policy() *policy.Policy {
	return r.policy
}

// Invocation returns a stored invocation.
func (r *Runtime) Invocation(ctx context.Context, id string) (*invocation.Invocation, error) {
	return r.invocationDAO.Load(ctx, id)
}

// Invocations lists stored invocations matching the supplied parameters.
func (r *Runtime) Invocations(ctx context.Context, parameters ...*dao.Parameter) ([]*invocation.Invocation, error) {
	return r.invocationDAO.List(ctx, parameters...)
}

// ScheduleInvocation persists the invocation and publishes it to the worker
// queue.  The returned wait function blocks until the invocation reaches a
// final state or is explicitly rejected.
func (r *Runtime) ScheduleInvocation(ctx context.Context, anInvocation *invocation.Invocation) (func(timeout time.Duration) (*invocation.Invocation, error), error) {
	if anInvocation.ID == "" {
		anInvocation.ID = idgen.New()
	}
	if err := r.invocationDAO.Save(ctx, anInvocation); err != nil {
		return nil, err
	}
	if err := r.queue.Publish(ctx, anInvocation); err != nil {
		return nil, err
	}
	id := anInvocation.ID
	return func(timeout time.Duration) (*invocation.Invocation, error) {
		return r.waitForInvocation(ctx, id, timeout)
	}, nil
}

// Invoke runs a single action and waits for its outcome.
func (r *Runtime) Invoke(ctx context.Context, service, method string, input interface{}) (*invocation.Invocation, error) {
	wait, err := r.ScheduleInvocation(ctx, invocation.New(service, method, input))
	if err != nil {
		return nil, err
	}
	return wait(stepTimeout)
}

func (r *Runtime) waitForInvocation(ctx context.Context, id string, timeout time.Duration) (*invocation.Invocation, error) {
	deadline := time.Now().Add(timeout)
	for {
		anInvocation, err := r.invocationDAO.Load(ctx, id)
		if err != nil {
			return nil, err
		}
		if anInvocation.State.IsTerminal() {
			return anInvocation, nil
		}
		// A rejected invocation can never proceed - finish right away instead
		// of waiting for the processor round-trip.
		if anInvocation.State == invocation.StateWaitForApproval || anInvocation.State == invocation.StatePending {
			if anInvocation.Approved != nil && !*anInvocation.Approved {
				return anInvocation, nil
			}
		}
		if time.Now().After(deadline) {
			return anInvocation, fmt.Errorf("timeout waiting for invocation %q", id)
		}
		select {
		case <-ctx.Done():
			return anInvocation, ctx.Err()
		case <-time.After(20 * time.Millisecond):
		}
	}
}

// RunPipeline executes the pipeline steps sequentially, records a run report
// and persists it.  A failing step marks the remaining steps as skipped.
func (r *Runtime) RunPipeline(ctx context.Context, pipeline *invocation.Pipeline) (*report.RunReport, error) {
	return r.runPipeline(ctx, pipeline, nil)
}

// RunText detects the services a free-form request refers to, suggests a
// pipeline and runs it.  The resulting report carries the detection outcome.
func (r *Runtime) RunText(ctx context.Context, text string) (*report.RunReport, error) {
	if r.detector == nil {
		return nil, fmt.Errorf("no detector configured")
	}
	pipeline := r.detector.SuggestPipeline(text)
	if pipeline == nil || len(pipeline.Steps) == 0 {
		return nil, fmt.Errorf("no service detected in %q", text)
	}
	return r.runPipeline(ctx, pipeline, r.detector.Detect(text))
}

func (r *Runtime) runPipeline(ctx context.Context, pipeline *invocation.Pipeline, detection *intelligence.Detection) (*report.RunReport, error) {
	if err := pipeline.Validate(); err != nil {
		return nil, err
	}
	run := invocation.NewRun("run-"+idgen.New(), pipeline)

	var carry map[string]interface{}
	failed := false
	for _, step := range pipeline.Steps {
		stepName := step.Name
		if stepName == "" {
			stepName = step.Action()
		}
		if failed {
			run.RecordStep(&invocation.StepStatus{Name: stepName, State: invocation.StateSkipped})
			continue
		}

		input := make(map[string]interface{}, len(step.Input)+1)
		for key, value := range step.Input {
			input[key] = value
		}
		if carry != nil && step.CarryAs != "" {
			input[step.CarryAs] = carry
		}

		anInvocation := invocation.New(step.Service, step.Method, input)
		anInvocation.RunID = run.ID
		wait, err := r.ScheduleInvocation(ctx, anInvocation)
		if err != nil {
			return nil, err
		}
		anInvocation, err = wait(stepTimeout)
		if err != nil {
			return nil, err
		}

		status := &invocation.StepStatus{
			Name:         stepName,
			InvocationID: anInvocation.ID,
			State:        anInvocation.State,
			Error:        anInvocation.Error,
			StartedAt:    anInvocation.StartedAt,
			CompletedAt:  anInvocation.CompletedAt,
		}
		run.RecordStep(status)
		if anInvocation.State != invocation.StateCompleted {
			failed = true
			continue
		}
		carry = outputAsMap(anInvocation.Output)
	}
	run.Finish()

	runReport := report.Build(run)
	runReport.Detection = detection
	if r.reports != nil {
		if _, err := r.reports.Save(ctx, runReport); err != nil {
			return runReport, err
		}
	}
	return runReport, nil
}

// outputAsMap converts a typed action output into a generic map so the next
// step can consume it.
func outputAsMap(output interface{}) map[string]interface{} {
	if output == nil {
		return nil
	}
	if aMap, ok := output.(map[string]interface{}); ok {
		return aMap
	}
	aMap := map[string]interface{}{}
	if err := toolbox.DefaultConverter.AssignConverted(&aMap, output); err != nil {
		return nil
	}
	return toolbox.DeleteEmptyKeys(aMap)
}
