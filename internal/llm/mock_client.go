package llm

import (
	"context"
	"sync"

	"github.com/hubpilot/hubpilot/internal/tools"
)

// MockEngine implements EngineClient for testing.
type MockEngine struct {
	// Injectable behavior: either a func, or a scripted queue of responses
	// consumed one per call.
	ConverseFunc func(ctx context.Context, history []Turn, systemPrompt string, defs []tools.Definition, model string) (*EngineResponse, error)
	Script       []ScriptStep

	mu   sync.Mutex
	next int

	// Call recording
	Calls []ConverseCall
}

// ScriptStep is one queued reply (or error) of a scripted mock.
type ScriptStep struct {
	Response *EngineResponse
	Err      error
}

// ConverseCall records the arguments of a Converse invocation.
type ConverseCall struct {
	History      []Turn
	SystemPrompt string
	Defs         []tools.Definition
	Model        string
}

// NewMockEngine creates a mock with an empty script.
func NewMockEngine(steps ...ScriptStep) *MockEngine {
	return &MockEngine{Script: steps}
}

// Converse records the call, then replies from ConverseFunc, the script, or
// a default text response.
func (m *MockEngine) Converse(ctx context.Context, history []Turn, systemPrompt string, defs []tools.Definition, model string) (*EngineResponse, error) {
	m.mu.Lock()
	snapshot := make([]Turn, len(history))
	copy(snapshot, history)
	m.Calls = append(m.Calls, ConverseCall{
		History:      snapshot,
		SystemPrompt: systemPrompt,
		Defs:         defs,
		Model:        model,
	})
	step := m.next
	if step < len(m.Script) {
		m.next++
	}
	m.mu.Unlock()

	if m.ConverseFunc != nil {
		return m.ConverseFunc(ctx, history, systemPrompt, defs, model)
	}

	if step < len(m.Script) {
		s := m.Script[step]
		return s.Response, s.Err
	}

	return &EngineResponse{Text: "mock response"}, nil
}

// CallCount returns the number of Converse invocations so far.
func (m *MockEngine) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
