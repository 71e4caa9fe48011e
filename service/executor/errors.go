package executor

import "errors"

var (
	// ErrActionDenied indicates the governance policy blocked the action.
	ErrActionDenied = errors.New("action denied by policy")
	// ErrActionRejected indicates a human reviewer rejected the action.
	ErrActionRejected = errors.New("action rejected")
	// ErrWaitForApproval indicates the invocation was parked until a decision
	// is recorded; the processor must not treat it as a failure.
	ErrWaitForApproval = errors.New("invocation awaits approval")
)
