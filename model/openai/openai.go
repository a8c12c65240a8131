// Package openai provides a model.Client backed by the OpenAI Chat
// Completions API (including function/tool calling). It adapts courseflow's
// normalized request/response structures into the SDK's message format and
// back.
package openai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/courseflow/courseflow/core"
	"github.com/courseflow/courseflow/model"
)

// Options configure the OpenAI client adapter.
type Options struct {
	Model       string
	Temperature float64
	MaxTokens   int64
	APIKey      string
}

// Client wraps the OpenAI Chat Completions API behind the model.Client
// interface.
type Client struct {
	api  *openai.Client
	opts Options
}

// NewClient creates a new OpenAI client using the official SDK. Without an
// explicit APIKey option the SDK reads the key from the environment.
func NewClient(optFns ...func(o *Options)) *Client {
	opts := defaultOptions(optFns)

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}

	api := openai.NewClient(clientOpts...)
	return &Client{api: &api, opts: opts}
}

// NewClientFromAPI creates an adapter from an existing SDK client.
func NewClientFromAPI(api *openai.Client, optFns ...func(o *Options)) *Client {
	return &Client{api: api, opts: defaultOptions(optFns)}
}

func defaultOptions(optFns []func(o *Options)) Options {
	opts := Options{
		Model:       openai.ChatModelGPT4oMini,
		Temperature: 0,
		MaxTokens:   800,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return opts
}

// Complete implements model.Client.
func (c *Client) Complete(ctx context.Context, req model.Request) (*model.Response, error) {
	params := openai.ChatCompletionNewParams{
		Messages:            buildMessages(req),
		Model:               c.opts.Model,
		Temperature:         openai.Float(c.opts.Temperature),
		MaxCompletionTokens: openai.Int(c.opts.MaxTokens),
	}
	if len(req.Tools) > 0 {
		params.Tools = buildTools(req.Tools)
	}

	resp, err := c.api.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai api error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai api error: no choices returned")
	}

	choice := resp.Choices[0]
	blocks := make([]core.Block, 0, len(choice.Message.ToolCalls)+1)
	if choice.Message.Content != "" {
		blocks = append(blocks, core.TextBlock{Text: choice.Message.Content})
	}
	for _, tc := range choice.Message.ToolCalls {
		var input map[string]any
		if tc.Function.Arguments != "" {
			_ = json.Unmarshal([]byte(tc.Function.Arguments), &input)
		}
		blocks = append(blocks, core.ToolUseBlock{ID: tc.ID, Name: tc.Function.Name, Input: input})
	}

	stop := model.StopReasonEndTurn
	if choice.FinishReason == "tool_calls" || len(choice.Message.ToolCalls) > 0 {
		stop = model.StopReasonToolUse
	} else if choice.FinishReason == "length" {
		stop = model.StopReasonMaxTokens
	}

	return &model.Response{Blocks: blocks, StopReason: stop}, nil
}

// Info returns metadata describing this OpenAI client implementation.
func (c *Client) Info() model.Info {
	return model.Info{
		Name:          c.opts.Model,
		Provider:      "openai",
		SupportsTools: true,
	}
}

// buildMessages converts normalized messages into OpenAI chat messages. Tool
// result blocks become role "tool" messages that directly follow the
// assistant message carrying the matching tool calls.
func buildMessages(req model.Request) []openai.ChatCompletionMessageParamUnion {
	var messages []openai.ChatCompletionMessageParamUnion

	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}

	for _, msg := range req.Messages {
		switch msg.Role {
		case core.RoleAssistant:
			messages = append(messages, buildAssistantMessage(msg))
		default:
			toolResults := false
			for _, b := range msg.Blocks {
				if tr, ok := b.(core.ToolResultBlock); ok {
					messages = append(messages, openai.ToolMessage(tr.Content, tr.ToolUseID))
					toolResults = true
				}
			}
			if toolResults {
				continue
			}
			if text := core.FirstText(msg.Blocks); text != "" {
				messages = append(messages, openai.UserMessage(text))
			}
		}
	}

	return messages
}

// buildAssistantMessage maps an assistant turn, attaching any tool-use blocks
// as OpenAI tool calls.
func buildAssistantMessage(msg core.Message) openai.ChatCompletionMessageParamUnion {
	var toolCalls []openai.ChatCompletionMessageToolCallParam
	for _, b := range msg.Blocks {
		tu, ok := b.(core.ToolUseBlock)
		if !ok {
			continue
		}
		args := "{}"
		if tu.Input != nil {
			if raw, err := json.Marshal(tu.Input); err == nil {
				args = string(raw)
			}
		}
		toolCalls = append(toolCalls, openai.ChatCompletionMessageToolCallParam{
			ID:   tu.ID,
			Type: "function",
			Function: openai.ChatCompletionMessageToolCallFunctionParam{
				Name:      tu.Name,
				Arguments: args,
			},
		})
	}

	if len(toolCalls) == 0 {
		return openai.AssistantMessage(core.FirstText(msg.Blocks))
	}

	return openai.ChatCompletionMessageParamUnion{OfAssistant: &openai.ChatCompletionAssistantMessageParam{
		Role:      "assistant",
		ToolCalls: toolCalls,
	}}
}

// buildTools converts tool definitions to the OpenAI tool format.
func buildTools(defs []model.ToolDefinition) []openai.ChatCompletionToolParam {
	tools := make([]openai.ChatCompletionToolParam, len(defs))
	for i, def := range defs {
		tools[i] = openai.ChatCompletionToolParam{
			Type: "function",
			Function: openai.FunctionDefinitionParam{
				Name:        def.Name,
				Description: openai.String(def.Description),
				Parameters:  def.InputSchema,
			},
		}
	}
	return tools
}
