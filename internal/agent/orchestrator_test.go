package agent

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	hperrors "github.com/hubpilot/hubpilot/internal/errors"
	"github.com/hubpilot/hubpilot/internal/llm"
	"github.com/hubpilot/hubpilot/internal/tools"
	"github.com/hubpilot/hubpilot/internal/workspace"
)

func newTestOrchestrator(engine llm.EngineClient, fake *fakeRemote) *Orchestrator {
	o := New(engine, NewExecutor(fake), workspace.DefaultPolicy(), Options{
		Model:        "test-model",
		HasEngineKey: true,
	})
	o.UpdateWorkspace(openRepo("alice", "proj"))
	return o
}

// waitFor polls until cond holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not reached before deadline")
}

func waitIdle(t *testing.T, o *Orchestrator) {
	t.Helper()
	waitFor(t, func() bool { return o.State() == StateIdle })
}

func TestPlainConversationRoundTrip(t *testing.T) {
	mock := llm.NewMockEngine(
		llm.ScriptStep{Response: &llm.EngineResponse{Text: "You have 3 repositories."}},
	)
	o := newTestOrchestrator(mock, newFakeRemote())

	o.SendMessage(t.Context(), "how many repos do I have?")
	waitIdle(t, o)

	turns := o.Turns()
	if len(turns) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(turns))
	}
	if turns[0].Kind != llm.TurnUser || turns[1].Kind != llm.TurnModel {
		t.Errorf("turn kinds = %v, %v", turns[0].Kind, turns[1].Kind)
	}
	if turns[1].Text != "You have 3 repositories." {
		t.Errorf("model text = %q", turns[1].Text)
	}
	if o.PendingToolCall() != nil {
		t.Error("no tool call should be pending")
	}
}

func TestApprovedCallExecutesAndThreadsResult(t *testing.T) {
	mock := llm.NewMockEngine(
		llm.ScriptStep{Response: &llm.EngineResponse{
			Text: "I'll create the file.",
			Calls: []llm.ToolCall{{
				ID:   "call_1",
				Name: tools.CreateOrUpdateFile,
				Args: map[string]any{"path": "hello.txt", "content": "hi", "message": "add hello"},
			}},
		}},
		llm.ScriptStep{Response: &llm.EngineResponse{Text: "Done, hello.txt is in place."}},
	)
	fake := newFakeRemote()
	o := newTestOrchestrator(mock, fake)

	o.SendMessage(t.Context(), "create hello.txt")
	waitFor(t, func() bool { return o.State() == StateAwaitingApproval })

	pending := o.PendingToolCall()
	if pending == nil || pending.Name != tools.CreateOrUpdateFile {
		t.Fatalf("pending = %+v", pending)
	}
	if pending.Status != StatusPending {
		t.Errorf("pending status = %s", pending.Status)
	}

	o.ApproveToolCall(t.Context())
	waitIdle(t, o)

	if _, ok := fake.files[key("alice", "proj", "hello.txt")]; !ok {
		t.Error("approved call did not reach the remote")
	}

	turns := o.Turns()
	// user, model+call, tool result, followup model
	if len(turns) != 4 {
		t.Fatalf("expected 4 turns, got %d", len(turns))
	}
	result := turns[2]
	if result.Kind != llm.TurnFunctionResult || result.CallID != "call_1" {
		t.Errorf("result turn = %+v", result)
	}
	if !strings.HasPrefix(result.Result, "Created hello.txt") {
		t.Errorf("result text = %q", result.Result)
	}
	if turns[3].Text != "Done, hello.txt is in place." {
		t.Errorf("followup text = %q", turns[3].Text)
	}

	// The follow-up engine call must carry the tool result in its history.
	if mock.CallCount() != 2 {
		t.Fatalf("engine calls = %d, want 2", mock.CallCount())
	}
	second := mock.Calls[1].History
	if second[len(second)-1].Kind != llm.TurnFunctionResult {
		t.Error("follow-up history must end with the tool result")
	}

	invs := o.Invocations()
	if len(invs) != 1 || invs[0].Status != StatusExecuted {
		t.Errorf("invocations = %+v", invs)
	}
}

func TestRejectedCallHasNoSideEffect(t *testing.T) {
	mock := llm.NewMockEngine(
		llm.ScriptStep{Response: &llm.EngineResponse{
			Text: "Deleting it now.",
			Calls: []llm.ToolCall{{
				ID:   "call_1",
				Name: tools.DeleteFile,
				Args: map[string]any{"path": "keep.txt", "message": "remove"},
			}},
		}},
	)
	fake := newFakeRemote()
	fake.seed("alice", "proj", "keep.txt", "precious")
	o := newTestOrchestrator(mock, fake)

	o.SendMessage(t.Context(), "delete keep.txt")
	waitFor(t, func() bool { return o.State() == StateAwaitingApproval })

	o.RejectToolCall()

	if o.State() != StateIdle {
		t.Errorf("state after reject = %s", o.State())
	}
	if _, ok := fake.files[key("alice", "proj", "keep.txt")]; !ok {
		t.Error("rejected call must not touch the remote")
	}
	if mock.CallCount() != 1 {
		t.Errorf("rejection must not trigger a follow-up, calls = %d", mock.CallCount())
	}

	turns := o.Turns()
	last := turns[len(turns)-1]
	if last.Kind != llm.TurnSystem || !strings.Contains(last.Text, "cancelled") {
		t.Errorf("last turn = %+v", last)
	}

	invs := o.Invocations()
	if len(invs) != 1 || invs[0].Status != StatusRejected {
		t.Errorf("invocations = %+v", invs)
	}

	// The conversation stays usable.
	mock.Script = append(mock.Script, llm.ScriptStep{Response: &llm.EngineResponse{Text: "ok"}})
	o.SendMessage(t.Context(), "never mind")
	waitIdle(t, o)
	if o.Turns()[len(o.Turns())-1].Text != "ok" {
		t.Error("conversation did not continue after rejection")
	}
}

func TestFailedCallThreadsErrorBack(t *testing.T) {
	mock := llm.NewMockEngine(
		llm.ScriptStep{Response: &llm.EngineResponse{
			Calls: []llm.ToolCall{{
				ID:   "call_1",
				Name: tools.ReadFile,
				Args: map[string]any{"path": "ghost.txt"},
			}},
		}},
		llm.ScriptStep{Response: &llm.EngineResponse{Text: "That file does not exist."}},
	)
	o := newTestOrchestrator(mock, newFakeRemote())

	o.SendMessage(t.Context(), "read ghost.txt")
	waitFor(t, func() bool { return o.State() == StateAwaitingApproval })
	o.ApproveToolCall(t.Context())
	waitIdle(t, o)

	invs := o.Invocations()
	if len(invs) != 1 || invs[0].Status != StatusFailed {
		t.Fatalf("invocations = %+v", invs)
	}

	turns := o.Turns()
	var result *llm.Turn
	for i := range turns {
		if turns[i].Kind == llm.TurnFunctionResult {
			result = &turns[i]
		}
	}
	if result == nil {
		t.Fatal("failure was not threaded back as a tool result")
	}
	if !strings.HasPrefix(result.Result, "Error: ") {
		t.Errorf("result text = %q", result.Result)
	}
}

func TestMissingEngineCredentialShortCircuits(t *testing.T) {
	mock := llm.NewMockEngine()
	o := New(mock, NewExecutor(newFakeRemote()), workspace.DefaultPolicy(), Options{
		Model:        "test-model",
		HasEngineKey: false,
	})

	o.SendMessage(t.Context(), "hello")

	if mock.CallCount() != 0 {
		t.Error("engine must not be called without a credential")
	}
	turns := o.Turns()
	if len(turns) != 1 || turns[0].Kind != llm.TurnSystem {
		t.Fatalf("turns = %+v", turns)
	}
	if !strings.Contains(turns[0].Text, "ANTHROPIC_API_KEY") {
		t.Errorf("notice = %q", turns[0].Text)
	}
	if o.State() != StateIdle {
		t.Errorf("state = %s", o.State())
	}
}

func TestEngineErrorEndsTurn(t *testing.T) {
	mock := llm.NewMockEngine(
		llm.ScriptStep{Err: hperrors.EngineFailed(errors.New("boom"))},
		llm.ScriptStep{Response: &llm.EngineResponse{Text: "recovered"}},
	)
	o := newTestOrchestrator(mock, newFakeRemote())

	o.SendMessage(t.Context(), "hi")
	waitIdle(t, o)

	turns := o.Turns()
	last := turns[len(turns)-1]
	if last.Kind != llm.TurnSystem {
		t.Fatalf("last turn = %+v", last)
	}

	// Usable afterwards.
	o.SendMessage(t.Context(), "hi again")
	waitIdle(t, o)
	if o.Turns()[len(o.Turns())-1].Text != "recovered" {
		t.Error("conversation did not recover from an engine error")
	}
}

func TestSendMessageNoOpWhileBusy(t *testing.T) {
	release := make(chan struct{})
	mock := &llm.MockEngine{
		ConverseFunc: func(ctx context.Context, history []llm.Turn, systemPrompt string, defs []tools.Definition, model string) (*llm.EngineResponse, error) {
			<-release
			return &llm.EngineResponse{Text: "done"}, nil
		},
	}
	o := newTestOrchestrator(mock, newFakeRemote())

	o.SendMessage(t.Context(), "first")
	waitFor(t, func() bool { return o.State() == StateAwaitingEngine })

	o.SendMessage(t.Context(), "second")

	close(release)
	waitIdle(t, o)

	userTurns := 0
	for _, turn := range o.Turns() {
		if turn.Kind == llm.TurnUser {
			userTurns++
		}
	}
	if userTurns != 1 {
		t.Errorf("expected the second message to be dropped, got %d user turns", userTurns)
	}
}

func TestOnlyFirstProposedCallIsPending(t *testing.T) {
	mock := llm.NewMockEngine(
		llm.ScriptStep{Response: &llm.EngineResponse{
			Calls: []llm.ToolCall{
				{ID: "call_1", Name: tools.ReadFile, Args: map[string]any{"path": "a.txt"}},
				{ID: "call_2", Name: tools.DeleteFile, Args: map[string]any{"path": "b.txt", "message": "rm"}},
			},
		}},
	)
	o := newTestOrchestrator(mock, newFakeRemote())

	o.SendMessage(t.Context(), "go")
	waitFor(t, func() bool { return o.State() == StateAwaitingApproval })

	pending := o.PendingToolCall()
	if pending.ID != "call_1" {
		t.Errorf("pending id = %s, want call_1", pending.ID)
	}
}

func TestSystemPromptCarriesWorkspaceProjection(t *testing.T) {
	mock := llm.NewMockEngine(
		llm.ScriptStep{Response: &llm.EngineResponse{Text: "ok"}},
	)
	o := newTestOrchestrator(mock, newFakeRemote())
	o.UpdateWorkspace(workspace.State{
		ActiveView: workspace.ViewCode,
		Repository: workspace.RepoRef{Owner: "alice", Name: "proj"},
		Path:       "src/main.go",
	})

	o.SendMessage(t.Context(), "where am I?")
	waitIdle(t, o)

	prompt := mock.Calls[0].SystemPrompt
	if !strings.Contains(prompt, "alice/proj") || !strings.Contains(prompt, "src/main.go") {
		t.Errorf("system prompt missing workspace fields: %q", prompt)
	}

	// Withholding a field removes it from the projection.
	o.SetPolicy(workspace.Policy{IncludeRepoMap: false, IncludeFileContent: false, IncludeSelection: false})
	mock.Script = append(mock.Script, llm.ScriptStep{Response: &llm.EngineResponse{Text: "ok"}})
	o.SendMessage(t.Context(), "and now?")
	waitIdle(t, o)

	prompt = mock.Calls[1].SystemPrompt
	if strings.Contains(prompt, "alice/proj") {
		t.Errorf("withheld repository leaked into the prompt: %q", prompt)
	}
}

func TestMaxTurnsStopsToolLoop(t *testing.T) {
	call := llm.ToolCall{ID: "loop", Name: tools.ReadFile, Args: map[string]any{"path": "a.txt"}}
	mock := &llm.MockEngine{
		ConverseFunc: func(ctx context.Context, history []llm.Turn, systemPrompt string, defs []tools.Definition, model string) (*llm.EngineResponse, error) {
			return &llm.EngineResponse{Calls: []llm.ToolCall{call}}, nil
		},
	}
	fake := newFakeRemote()
	fake.seed("alice", "proj", "a.txt", "x")
	o := New(mock, NewExecutor(fake), workspace.DefaultPolicy(), Options{
		Model:        "test-model",
		MaxTurns:     2,
		HasEngineKey: true,
	})
	o.UpdateWorkspace(openRepo("alice", "proj"))

	o.SendMessage(t.Context(), "loop forever")
	for range 5 {
		waitFor(t, func() bool {
			s := o.State()
			return s == StateAwaitingApproval || s == StateIdle
		})
		if o.State() == StateIdle {
			break
		}
		o.ApproveToolCall(t.Context())
	}
	waitIdle(t, o)

	last := o.Turns()[len(o.Turns())-1]
	if last.Kind != llm.TurnSystem || !strings.Contains(last.Text, "Stopped") {
		t.Errorf("expected a depth-limit notice, got %+v", last)
	}
}

func TestResetClearsConversation(t *testing.T) {
	mock := llm.NewMockEngine(
		llm.ScriptStep{Response: &llm.EngineResponse{
			Calls: []llm.ToolCall{{ID: "call_1", Name: tools.ReadFile, Args: map[string]any{"path": "a.txt"}}},
		}},
	)
	o := newTestOrchestrator(mock, newFakeRemote())

	o.SendMessage(t.Context(), "read a.txt")
	waitFor(t, func() bool { return o.State() == StateAwaitingApproval })

	o.Reset()

	if len(o.Turns()) != 0 {
		t.Error("turns not cleared")
	}
	if o.PendingToolCall() != nil {
		t.Error("pending call survived reset")
	}
	invs := o.Invocations()
	if len(invs) != 1 || invs[0].Status != StatusRejected {
		t.Errorf("pending call should be recorded as rejected, got %+v", invs)
	}
	if o.State() != StateIdle {
		t.Errorf("state = %s", o.State())
	}
}
