package llm

// TurnKind tags the four kinds of conversation turns.
type TurnKind int

const (
	TurnUser           TurnKind = iota // user input
	TurnModel                          // engine output: text and/or proposed calls
	TurnSystem                         // diagnostic notice, never sent to the engine
	TurnFunctionResult                 // executed outcome of one proposed call
)

func (k TurnKind) String() string {
	switch k {
	case TurnUser:
		return "user"
	case TurnModel:
		return "model"
	case TurnSystem:
		return "system"
	case TurnFunctionResult:
		return "function_result"
	default:
		return "unknown"
	}
}

// ToolCall is a call the engine proposes. The ID threads the eventual result
// back to this exact proposal.
type ToolCall struct {
	ID   string
	Name string
	Args map[string]any
}

// Turn is one atomic entry of the conversation history.
type Turn struct {
	Kind  TurnKind
	Text  string
	Calls []ToolCall // model turns only

	// Function-result turns only.
	CallID   string
	ToolName string
	Result   string
}

// UserTurn builds a user turn.
func UserTurn(text string) Turn {
	return Turn{Kind: TurnUser, Text: text}
}

// ModelTurn builds a model turn with optional proposed calls.
func ModelTurn(text string, calls []ToolCall) Turn {
	return Turn{Kind: TurnModel, Text: text, Calls: calls}
}

// SystemTurn builds a diagnostic turn shown to the user only.
func SystemTurn(text string) Turn {
	return Turn{Kind: TurnSystem, Text: text}
}

// FunctionResultTurn builds the turn that threads a tool's outcome back into
// the conversation.
func FunctionResultTurn(callID, toolName, result string) Turn {
	return Turn{Kind: TurnFunctionResult, CallID: callID, ToolName: toolName, Result: result}
}

// EngineResponse is the engine's structured reply: text, zero or more
// proposed calls, or both. Zero calls is a pure conversational turn.
type EngineResponse struct {
	Text  string
	Calls []ToolCall
}
