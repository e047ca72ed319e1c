package agent

// Status is the lifecycle state of a proposed tool invocation.
type Status int

const (
	StatusPending  Status = iota // proposed, awaiting a human decision
	StatusApproved               // approved, execution imminent
	StatusRejected               // denied, terminal, no side effect
	StatusExecuted               // side effect applied, result recorded
	StatusFailed                 // attempt failed, terminal, no automatic retry
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusApproved:
		return "approved"
	case StatusRejected:
		return "rejected"
	case StatusExecuted:
		return "executed"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the status can no longer change.
func (s Status) Terminal() bool {
	return s == StatusRejected || s == StatusExecuted || s == StatusFailed
}

// ToolInvocation is one proposed call moving through the approval gate.
type ToolInvocation struct {
	ID     string
	Name   string
	Args   map[string]any
	Status Status
}
