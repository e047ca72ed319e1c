package llm

import (
	"context"
	"encoding/json"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	hperrors "github.com/hubpilot/hubpilot/internal/errors"
	"github.com/hubpilot/hubpilot/internal/logger"
	"github.com/hubpilot/hubpilot/internal/tools"
)

// EngineClient is the interface the orchestrator talks to. Stateless: the
// full history travels on every call, and the model is chosen per call so a
// conversation can switch tiers without losing history.
type EngineClient interface {
	Converse(ctx context.Context, history []Turn, systemPrompt string, defs []tools.Definition, model string) (*EngineResponse, error)
}

// Client wraps the Anthropic SDK.
type Client struct {
	client      *anthropic.Client
	maxTokens   int64
	temperature float64
}

// NewClient creates an engine client.
func NewClient(apiKey string, maxTokens int, temperature float64, maxRetries int) *Client {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(maxRetries),
	}
	client := anthropic.NewClient(opts...)
	return &Client{
		client:      &client,
		maxTokens:   int64(maxTokens),
		temperature: temperature,
	}
}

// Converse sends the serialized history and returns the engine's reply.
// Failures are surfaced as EngineFailed; retry policy, if any, belongs to
// the caller (none is implemented: a failure ends the turn).
func (c *Client) Converse(ctx context.Context, history []Turn, systemPrompt string, defs []tools.Definition, model string) (*EngineResponse, error) {
	logger.Debug("Converse: %d turns, %d tools, model=%s", len(history), len(defs), model)

	params := buildParams(history, systemPrompt, defs, model, c.maxTokens, c.temperature)

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		logger.Error("Converse: API error: %v", err)
		return nil, hperrors.EngineFailed(err)
	}

	logger.Debug("Converse: stop_reason=%s", msg.StopReason)
	return parseResponse(msg), nil
}

// buildParams serializes turns into the roles the Anthropic protocol
// expects: user turns become user messages, model turns become assistant
// messages carrying text and tool_use blocks, function-result turns become
// user messages carrying a tool_result block. System turns are display-only
// and are never serialized.
func buildParams(history []Turn, systemPrompt string, defs []tools.Definition, model string, maxTokens int64, temperature float64) anthropic.MessageNewParams {
	var messages []anthropic.MessageParam

	for _, turn := range history {
		switch turn.Kind {
		case TurnUser:
			messages = append(messages, anthropic.NewUserMessage(
				anthropic.NewTextBlock(turn.Text),
			))

		case TurnModel:
			var blocks []anthropic.ContentBlockParamUnion
			if turn.Text != "" {
				blocks = append(blocks, anthropic.NewTextBlock(turn.Text))
			}
			for _, call := range turn.Calls {
				blocks = append(blocks, anthropic.ContentBlockParamUnion{
					OfToolUse: &anthropic.ToolUseBlockParam{
						ID:    call.ID,
						Name:  call.Name,
						Input: call.Args,
					},
				})
			}
			if len(blocks) > 0 {
				messages = append(messages, anthropic.MessageParam{
					Role:    anthropic.MessageParamRoleAssistant,
					Content: blocks,
				})
			}

		case TurnFunctionResult:
			messages = append(messages, anthropic.MessageParam{
				Role: anthropic.MessageParamRoleUser,
				Content: []anthropic.ContentBlockParamUnion{{
					OfToolResult: &anthropic.ToolResultBlockParam{
						ToolUseID: turn.CallID,
						Content: []anthropic.ToolResultBlockParamContentUnion{{
							OfText: &anthropic.TextBlockParam{Text: turn.Result},
						}},
					},
				}},
			})

		case TurnSystem:
			// Never sent back to the engine.
		}
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: maxTokens,
		Messages:  messages,
	}
	params.Temperature = anthropic.Float(temperature)

	if systemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{
			Type: "text",
			Text: systemPrompt,
		}}
	}

	if len(defs) > 0 {
		var apiTools []anthropic.ToolUnionParam
		for _, def := range defs {
			schema := buildInputSchema(def.InputSchema)
			toolParam := anthropic.ToolUnionParamOfTool(schema, def.Name)
			toolParam.OfTool.Description = anthropic.String(def.Description)
			apiTools = append(apiTools, toolParam)
		}
		params.Tools = apiTools
	}

	return params
}

func parseResponse(msg *anthropic.Message) *EngineResponse {
	resp := &EngineResponse{}

	for _, block := range msg.Content {
		switch b := block.AsAny().(type) {
		case anthropic.TextBlock:
			resp.Text += b.Text
		case anthropic.ToolUseBlock:
			var args map[string]any
			if err := json.Unmarshal(b.Input, &args); err != nil {
				logger.Warn("failed to parse tool input for %s: %v", b.Name, err)
				args = make(map[string]any) // Use empty map on error
			}
			resp.Calls = append(resp.Calls, ToolCall{
				ID:   b.ID,
				Name: b.Name,
				Args: args,
			})
		}
	}

	return resp
}

// buildInputSchema converts a tool's schema map to the SDK's ToolInputSchemaParam
func buildInputSchema(schema map[string]any) anthropic.ToolInputSchemaParam {
	result := anthropic.ToolInputSchemaParam{}

	if props, ok := schema["properties"].(map[string]any); ok {
		result.Properties = props
	}

	if req, ok := schema["required"]; ok {
		result.ExtraFields = map[string]interface{}{
			"required": req,
		}
	}

	return result
}
