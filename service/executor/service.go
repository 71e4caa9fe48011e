package executor

// The executor invokes registered extension actions, converts inputs/outputs
// to the method's declared types and, after the user-supplied method runs,
// calls an optional listener that can observe the data that flew through the
// invocation.

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"reflect"
	"time"

	"github.com/viant/structology/conv"

	"github.com/atomhq/atom/extension"
	"github.com/atomhq/atom/model/invocation"
	"github.com/atomhq/atom/policy"
	"github.com/atomhq/atom/service/approval"
	"github.com/atomhq/atom/service/event"
	"github.com/atomhq/atom/tracing"
)

// Listener is invoked once an action completes (regardless of whether it
// returned an error or not). Implementations can log, collect metrics or
// perform any other side-effects they require.
//
// For convenience the listener is defined as a function type rather than an
// interface; users can therefore pass a plain function literal when
// customising the executor.
type Listener func(anInvocation *invocation.Invocation, input, output interface{})

// StdoutListener serialises the invocation, input and output into JSON and
// prints them to standard output. Errors from json.Marshal are ignored on
// purpose – they indicate non-serialisable values.
func StdoutListener(anInvocation *invocation.Invocation, input, output interface{}) {
	if anInvocation == nil {
		return
	}
	data, _ := json.Marshal(anInvocation)
	fmt.Println(string(data))
	if input != nil {
		in, _ := json.Marshal(input)
		fmt.Println(string(in))
	}
	if output != nil {
		out, _ := json.Marshal(output)
		fmt.Println(string(out))
	}
}

// Option is used to customise the executor instance.
type Option func(*service)

// WithListener overrides the listener invoked after every executed
// invocation. Passing nil disables the callback entirely.
func WithListener(l Listener) Option {
	return func(s *service) {
		s.listener = l
	}
}

// WithApproval attaches the approval service used to park gated invocations.
func WithApproval(svc approval.Service) Option {
	return func(s *service) {
		s.approval = svc
	}
}

// Service represents an invocation executor.
type Service interface {
	Execute(ctx context.Context, anInvocation *invocation.Invocation) error
}

// service is the concrete implementation of Service.
type service struct {
	actions   *extension.Actions
	converter *conv.Converter
	listener  Listener
	approval  approval.Service
}

// Execute runs a single invocation: governance checks first, then the
// registered action method.
func (s *service) Execute(ctx context.Context, anInvocation *invocation.Invocation) error {
	ctx, span := tracing.StartSpan(ctx, anInvocation.Action(), "INTERNAL")
	started := time.Now()
	err := s.execute(ctx, anInvocation)
	if err == ErrWaitForApproval {
		tracing.EndSpan(span.WithAttributes(map[string]string{"invocation.state": string(invocation.StateWaitForApproval)}), nil)
		return err
	}
	tracing.EndSpan(span, err)

	// Publish an invocation event if an event service travels with the context.
	if value := ctx.Value(invocation.EventKey); value != nil {
		eventService := value.(*event.Service)
		publisher, pErr := event.PublisherOf[*invocation.Invocation](eventService)
		if pErr == nil {
			eCtx := anInvocation.Context("executed")
			eCtx.TimeTakenMs = int(time.Since(started).Milliseconds())
			anEvent := event.NewEvent[*invocation.Invocation](eCtx, anInvocation)
			if pErr = publisher.Publish(ctx, anEvent); pErr != nil {
				log.Printf("failed to publish invocation event: %v", pErr)
			}
		}
	}
	return err
}

func (s *service) execute(ctx context.Context, anInvocation *invocation.Invocation) error {
	action := anInvocation.Action()

	if err := s.checkPolicy(ctx, anInvocation, action); err != nil {
		return err
	}

	actionService := s.actions.Lookup(anInvocation.Service)
	if actionService == nil {
		return fmt.Errorf("service %v not found", anInvocation.Service)
	}
	if anInvocation.Method == "" {
		return fmt.Errorf("method not found for service %v", anInvocation.Service)
	}

	method, err := actionService.Method(anInvocation.Method)
	if err != nil {
		return fmt.Errorf("failed to find method %v for service %v: %w", anInvocation.Method, anInvocation.Service, err)
	}

	signature := actionService.Methods().Lookup(anInvocation.Method)
	if signature == nil {
		return fmt.Errorf("failed to find signature %v for service %v", anInvocation.Method, anInvocation.Service)
	}

	input, err := s.typedValue(signature.Input, anInvocation.Input)
	if err != nil {
		return fmt.Errorf("failed to convert input for %v: %w", action, err)
	}
	anInvocation.Input = input

	output, err := s.typedValue(signature.Output, nil)
	if err != nil {
		return fmt.Errorf("failed to allocate output for %v: %w", action, err)
	}

	// Invoke the user-defined method.
	if err = method(ctx, input, output); err != nil {
		return err
	}

	// Call the listener (if any).
	if s.listener != nil {
		s.listener(anInvocation, input, output)
	}

	anInvocation.Output = output
	return nil
}

// checkPolicy enforces the governance policy attached to the context: block
// lists and deny mode fail the invocation, maturity shortfall and ask mode
// park it behind an approval request.
func (s *service) checkPolicy(ctx context.Context, anInvocation *invocation.Invocation, action string) error {
	aPolicy := policy.FromContext(ctx)
	if aPolicy == nil {
		return nil
	}
	if !aPolicy.IsAllowed(action) || aPolicy.Mode == policy.ModeDeny {
		return fmt.Errorf("%w: %s", ErrActionDenied, action)
	}

	// A recorded decision overrides the gate.
	if anInvocation.Approved != nil {
		if *anInvocation.Approved {
			return nil
		}
		reason := anInvocation.ApprovalReason
		if reason == "" {
			reason = "no reason given"
		}
		return fmt.Errorf("%w: %s: %s", ErrActionRejected, action, reason)
	}

	if !aPolicy.RequiresApproval(action) {
		return nil
	}

	// Ask callback short-circuits the asynchronous approval flow.
	if aPolicy.Mode == policy.ModeAsk && aPolicy.Ask != nil {
		args, _ := anInvocation.Input.(map[string]interface{})
		if aPolicy.Ask(ctx, action, args, aPolicy) {
			approved := true
			anInvocation.Approved = &approved
			return nil
		}
		return fmt.Errorf("%w: %s", ErrActionRejected, action)
	}

	if s.approval == nil {
		return fmt.Errorf("%w: %s: no approval service configured", ErrActionDenied, action)
	}
	args, _ := json.Marshal(anInvocation.Input)
	request := &approval.Request{
		ID:           anInvocation.ID,
		RunID:        anInvocation.RunID,
		InvocationID: anInvocation.ID,
		Action:       action,
		Args:         args,
		CreatedAt:    time.Now(),
	}
	if err := s.approval.RequestApproval(ctx, request); err != nil {
		return fmt.Errorf("failed to request approval for %s: %w", action, err)
	}
	anInvocation.State = invocation.StateWaitForApproval
	return ErrWaitForApproval
}

// typedValue converts the supplied value into a new instance of the given
// type using the structology converter.
func (s *service) typedValue(rType reflect.Type, value interface{}) (interface{}, error) {
	if rType == nil {
		return value, nil
	}
	if rType.Kind() == reflect.Ptr {
		rType = rType.Elem()
	}
	ret := reflect.New(rType).Interface()
	if value == nil {
		return ret, nil
	}
	if reflect.TypeOf(value) == reflect.PtrTo(rType) {
		return value, nil
	}
	if err := s.converter.Convert(value, ret); err != nil {
		return nil, err
	}
	return ret, nil
}

// NewService creates a new executor service instance.
func NewService(actions *extension.Actions, opts ...Option) Service {
	options := conv.DefaultOptions()
	options.ClonePointerData = true
	options.IgnoreUnmapped = true
	options.AccessUnexported = true

	s := &service{
		actions:   actions,
		converter: conv.NewConverter(options),
	}

	for _, o := range opts {
		o(s)
	}

	return s
}
