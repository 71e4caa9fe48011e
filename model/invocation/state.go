package invocation

// State represents the current State of an invocation
type State string

const (
	StatePending   State = "pending"
	StateScheduled State = "scheduled"
	StateRunning   State = "running"
	// StateWaitForApproval indicates the invocation is gated on an explicit
	// human decision before it can be executed. Used by the policy/approval
	// mechanism.
	StateWaitForApproval State = "waitForApproval"
	StateCompleted       State = "completed"
	StateFailed          State = "failed"
	StateSkipped         State = "skipped"
	StateCancelled       State = "cancelled"
)

func (s State) IsWaitForApproval() bool {
	return s == StateWaitForApproval
}

// IsTerminal reports whether no further transition is possible.
func (s State) IsTerminal() bool {
	switch s {
	case StateCompleted, StateFailed, StateSkipped, StateCancelled:
		return true
	}
	return false
}
