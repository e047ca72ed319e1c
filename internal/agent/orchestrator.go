package agent

import (
	"context"
	"sync"
	"time"

	hperrors "github.com/hubpilot/hubpilot/internal/errors"
	"github.com/hubpilot/hubpilot/internal/llm"
	"github.com/hubpilot/hubpilot/internal/logger"
	"github.com/hubpilot/hubpilot/internal/tools"
	"github.com/hubpilot/hubpilot/internal/workspace"
)

var orchLog = logger.WithPrefix("AGENT")

// State is the orchestrator's position in the conversational round trip.
type State int

const (
	StateIdle             State = iota // ready for the next user message
	StateAwaitingEngine                // engine round trip in flight
	StateAwaitingApproval              // a proposed call is held for a human decision
	StateExecutingTool                 // approved call running against the remote
	StateAwaitingFollowup              // engine digesting a tool result
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingEngine:
		return "awaiting_engine"
	case StateAwaitingApproval:
		return "awaiting_approval"
	case StateExecutingTool:
		return "executing_tool"
	case StateAwaitingFollowup:
		return "awaiting_followup"
	default:
		return "unknown"
	}
}

const baseSystemPrompt = `You are hubpilot, an assistant embedded in a GitHub client.
You help the user browse and modify their repositories through the provided tools.
Every file-changing tool call is shown to the user for approval before it runs, so
propose one action at a time and explain what you are about to do.
When a tool result starts with "Error:", read it carefully and adjust: a patch
mismatch means your view of the file is stale and you should read it again first.

Current workspace:
`

// Options configures a new Orchestrator.
type Options struct {
	Model        string // engine model id used for every round trip until changed
	MaxTurns     int    // cap on engine round trips per SendMessage (0 = default)
	HasEngineKey bool   // false surfaces a configuration notice instead of calling out
}

const defaultMaxTurns = 10

// Orchestrator owns the conversation history and drives the
// request/response/approval/execution loop. One instance serves one
// conversation; all methods are safe for concurrent use, but only one round
// trip is ever in flight: SendMessage is a no-op unless the state is Idle.
type Orchestrator struct {
	mu       sync.Mutex
	state    State
	turns    []llm.Turn
	pending  *ToolInvocation
	resolved []ToolInvocation // terminal invocations, oldest first
	depth    int              // engine round trips consumed by the current message

	engine   llm.EngineClient
	executor *Executor

	model        string
	maxTurns     int
	hasEngineKey bool

	ctxState workspace.State
	policy   workspace.Policy

	// notify is a coalesced change signal: subscribers re-read the snapshot
	// accessors whenever it fires.
	notify chan struct{}
}

// New creates an orchestrator over the given engine and executor.
func New(engine llm.EngineClient, executor *Executor, policy workspace.Policy, opts Options) *Orchestrator {
	maxTurns := opts.MaxTurns
	if maxTurns <= 0 {
		maxTurns = defaultMaxTurns
	}
	return &Orchestrator{
		engine:       engine,
		executor:     executor,
		policy:       policy,
		model:        opts.Model,
		maxTurns:     maxTurns,
		hasEngineKey: opts.HasEngineKey,
		notify:       make(chan struct{}, 1),
	}
}

// Notify returns the coalesced change channel.
func (o *Orchestrator) Notify() <-chan struct{} {
	return o.notify
}

func (o *Orchestrator) signal() {
	select {
	case o.notify <- struct{}{}:
	default:
	}
}

// UpdateWorkspace replaces the workspace snapshot. Called by presentation on
// every navigation; the orchestrator only reads it through the scoper.
func (o *Orchestrator) UpdateWorkspace(state workspace.State) {
	o.mu.Lock()
	o.ctxState = state
	o.mu.Unlock()
}

// Workspace returns the current workspace snapshot.
func (o *Orchestrator) Workspace() workspace.State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.ctxState
}

// SetPolicy replaces the disclosure policy.
func (o *Orchestrator) SetPolicy(policy workspace.Policy) {
	o.mu.Lock()
	o.policy = policy
	o.mu.Unlock()
}

// Policy returns the current disclosure policy.
func (o *Orchestrator) Policy() workspace.Policy {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.policy
}

// SetModel switches the engine model for subsequent round trips. The
// conversation history is untouched: the same conversation continues under a
// different tier.
func (o *Orchestrator) SetModel(model string) {
	o.mu.Lock()
	o.model = model
	o.mu.Unlock()
}

// Model returns the current engine model id.
func (o *Orchestrator) Model() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.model
}

// State returns the current state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// IsThinking reports whether a round trip or tool execution is in flight.
// False while Idle and while a proposed call waits for a decision.
func (o *Orchestrator) IsThinking() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state == StateAwaitingEngine || o.state == StateExecutingTool || o.state == StateAwaitingFollowup
}

// Turns returns a copy of the conversation history.
func (o *Orchestrator) Turns() []llm.Turn {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]llm.Turn, len(o.turns))
	copy(out, o.turns)
	return out
}

// PendingToolCall returns a copy of the invocation awaiting approval, or nil.
func (o *Orchestrator) PendingToolCall() *ToolInvocation {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.pending == nil {
		return nil
	}
	inv := *o.pending
	return &inv
}

// Invocations returns a copy of all invocations that reached a terminal
// status, oldest first.
func (o *Orchestrator) Invocations() []ToolInvocation {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]ToolInvocation, len(o.resolved))
	copy(out, o.resolved)
	return out
}

// LastMutation exposes the executor's mutation counter to observers that
// cache remote views.
func (o *Orchestrator) LastMutation() (uint64, time.Time) {
	return o.executor.Mutations(), o.executor.LastMutationAt()
}

// Reset clears the conversation. Only allowed while no round trip is in
// flight; a pending approval is discarded as rejected.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state == StateAwaitingEngine || o.state == StateExecutingTool || o.state == StateAwaitingFollowup {
		return
	}
	if o.pending != nil {
		o.pending.Status = StatusRejected
		o.resolved = append(o.resolved, *o.pending)
		o.pending = nil
	}
	o.turns = nil
	o.state = StateIdle
	o.signal()
}

// SendMessage appends a user turn and starts an engine round trip. It is a
// no-op unless the orchestrator is Idle: only one conversational round trip
// or tool execution may be in flight at a time.
func (o *Orchestrator) SendMessage(ctx context.Context, text string) {
	if text == "" {
		return
	}

	o.mu.Lock()
	if o.state != StateIdle {
		orchLog.Debug("SendMessage ignored in state %s", o.state)
		o.mu.Unlock()
		return
	}

	if !o.hasEngineKey {
		o.turns = append(o.turns, llm.SystemTurn(hperrors.GetUserMessage(hperrors.MissingCredential("ANTHROPIC_API_KEY"))))
		o.mu.Unlock()
		o.signal()
		return
	}

	o.turns = append(o.turns, llm.UserTurn(text))
	o.state = StateAwaitingEngine
	o.depth = 0
	o.mu.Unlock()
	o.signal()

	go o.roundTrip(ctx)
}

// roundTrip performs one engine call and routes the outcome.
func (o *Orchestrator) roundTrip(ctx context.Context) {
	o.mu.Lock()
	history := make([]llm.Turn, len(o.turns))
	copy(history, o.turns)
	systemPrompt := baseSystemPrompt + workspace.Project(o.ctxState, o.policy).Render()
	model := o.model
	o.depth++
	depth := o.depth
	o.mu.Unlock()

	if depth > o.maxTurns {
		o.mu.Lock()
		o.turns = append(o.turns, llm.SystemTurn("Stopped: too many consecutive tool calls."))
		o.state = StateIdle
		o.mu.Unlock()
		o.signal()
		return
	}

	resp, err := o.engine.Converse(ctx, history, systemPrompt, tools.FixedSet(), model)

	o.mu.Lock()
	defer func() {
		o.mu.Unlock()
		o.signal()
	}()

	if err != nil {
		orchLog.Warn("engine round trip failed: %v", err)
		o.turns = append(o.turns, llm.SystemTurn(hperrors.GetUserMessage(err)))
		o.state = StateIdle
		o.pending = nil
		return
	}

	o.turns = append(o.turns, llm.ModelTurn(resp.Text, resp.Calls))

	if len(resp.Calls) == 0 {
		o.state = StateIdle
		return
	}

	// Only the first proposed call of a turn is actionable; any additional
	// calls in the same response are recorded on the turn but never
	// surfaced. This caps the blast radius to one approval per round trip.
	first := resp.Calls[0]
	o.pending = &ToolInvocation{
		ID:     first.ID,
		Name:   first.Name,
		Args:   first.Args,
		Status: StatusPending,
	}
	o.state = StateAwaitingApproval
}

// ApproveToolCall approves the pending invocation and executes it. No-op
// unless a call is awaiting approval.
func (o *Orchestrator) ApproveToolCall(ctx context.Context) {
	o.mu.Lock()
	if o.state != StateAwaitingApproval || o.pending == nil {
		o.mu.Unlock()
		return
	}

	o.pending.Status = StatusApproved
	o.state = StateExecutingTool
	inv := *o.pending
	state := o.ctxState
	o.mu.Unlock()
	o.signal()

	go func() {
		result := o.executor.Execute(ctx, inv, state)

		o.mu.Lock()
		if result.IsError {
			o.pending.Status = StatusFailed
		} else {
			o.pending.Status = StatusExecuted
		}
		o.resolved = append(o.resolved, *o.pending)
		o.pending = nil

		// Failures are threaded back as tool results too, so the engine can
		// adapt its next proposal instead of the error being swallowed.
		o.turns = append(o.turns, llm.FunctionResultTurn(inv.ID, inv.Name, result.Text))
		o.state = StateAwaitingFollowup
		o.mu.Unlock()
		o.signal()

		o.roundTrip(ctx)
	}()
}

// RejectToolCall rejects the pending invocation: terminal, synchronous, and
// guaranteed to make no remote call. The only cancellation primitive.
func (o *Orchestrator) RejectToolCall() {
	o.mu.Lock()
	defer func() {
		o.mu.Unlock()
		o.signal()
	}()

	if o.state != StateAwaitingApproval || o.pending == nil {
		return
	}

	o.pending.Status = StatusRejected
	o.resolved = append(o.resolved, *o.pending)
	o.pending = nil
	o.turns = append(o.turns, llm.SystemTurn("Tool call cancelled by user."))
	o.state = StateIdle
}
