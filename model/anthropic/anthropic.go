// Package anthropic provides a model.Client backed by the Anthropic Messages
// API, including function/tool calling.
package anthropic

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/shared/constant"

	"github.com/courseflow/courseflow/core"
	"github.com/courseflow/courseflow/model"
)

// Options configures the Anthropic client adapter. Temperature defaults to 0
// for deterministic answers; MaxTokens caps every completion.
type Options struct {
	Model       anthropic.Model
	Temperature float64
	MaxTokens   int64
	APIKey      string
}

// Client wraps the Anthropic Messages API behind the model.Client interface.
type Client struct {
	api  *anthropic.Client
	opts Options
}

// NewClient creates a new Anthropic client using the official SDK.
func NewClient(optFns ...func(o *Options)) *Client {
	opts := Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0,
		MaxTokens:   800,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}

	api := anthropic.NewClient(clientOpts...)

	return &Client{api: &api, opts: opts}
}

// NewClientFromAPI creates an adapter from an existing SDK client.
func NewClientFromAPI(api *anthropic.Client, optFns ...func(o *Options)) *Client {
	opts := Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0,
		MaxTokens:   800,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Client{api: api, opts: opts}
}

// Complete implements model.Client. Tool schemas are attached with tool
// choice "auto" whenever the request carries tool definitions.
func (c *Client) Complete(ctx context.Context, req model.Request) (*model.Response, error) {
	params := anthropic.MessageNewParams{
		Model:       c.opts.Model,
		MaxTokens:   c.opts.MaxTokens,
		Temperature: anthropic.Float(c.opts.Temperature),
		Messages:    buildMessages(req.Messages),
	}

	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	if len(req.Tools) > 0 {
		params.Tools = buildTools(req.Tools)
		params.ToolChoice = anthropic.ToolChoiceUnionParam{OfAuto: &anthropic.ToolChoiceAutoParam{}}
	}

	resp, err := c.api.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic api error: %w", err)
	}

	blocks := make([]core.Block, 0, len(resp.Content))
	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			textBlock := block.AsText()
			if textBlock.Text != "" {
				blocks = append(blocks, core.TextBlock{Text: textBlock.Text})
			}
		case "tool_use":
			toolBlock := block.AsToolUse()
			var input map[string]any
			if toolBlock.Input != nil {
				if raw, err := json.Marshal(toolBlock.Input); err == nil {
					_ = json.Unmarshal(raw, &input)
				}
			}
			blocks = append(blocks, core.ToolUseBlock{ID: toolBlock.ID, Name: toolBlock.Name, Input: input})
		}
	}

	return &model.Response{
		Blocks:     blocks,
		StopReason: model.StopReason(resp.StopReason),
	}, nil
}

// Info returns metadata describing this Anthropic client implementation.
func (c *Client) Info() model.Info {
	return model.Info{
		Name:          string(c.opts.Model),
		Provider:      "anthropic",
		SupportsTools: true,
	}
}

// buildMessages converts courseflow messages to the Anthropic message format.
func buildMessages(messages []core.Message) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(messages))

	for _, msg := range messages {
		content := make([]anthropic.ContentBlockParamUnion, 0, len(msg.Blocks))
		for _, b := range msg.Blocks {
			switch block := b.(type) {
			case core.TextBlock:
				if block.Text != "" {
					content = append(content, anthropic.NewTextBlock(block.Text))
				}
			case core.ToolUseBlock:
				content = append(content, anthropic.NewToolUseBlock(block.ID, block.Input, block.Name))
			case core.ToolResultBlock:
				content = append(content, anthropic.NewToolResultBlock(block.ToolUseID, block.Content, block.IsError))
			}
		}
		if len(content) == 0 {
			continue
		}
		switch msg.Role {
		case core.RoleAssistant:
			out = append(out, anthropic.NewAssistantMessage(content...))
		default:
			out = append(out, anthropic.NewUserMessage(content...))
		}
	}

	return out
}

// buildTools converts tool definitions to the Anthropic tool format.
func buildTools(defs []model.ToolDefinition) []anthropic.ToolUnionParam {
	tools := make([]anthropic.ToolUnionParam, len(defs))

	for i, def := range defs {
		inputSchema := anthropic.ToolInputSchemaParam{
			Type: constant.Object("object"),
		}

		if def.InputSchema != nil {
			if properties, exists := def.InputSchema["properties"]; exists {
				inputSchema.Properties = properties
			}
			if required, exists := def.InputSchema["required"]; exists {
				inputSchema.Required = requiredStrings(required)
			}
		}

		tools[i] = anthropic.ToolUnionParam{OfTool: &anthropic.ToolParam{
			Name:        def.Name,
			Description: anthropic.String(def.Description),
			InputSchema: inputSchema,
		}}
	}

	return tools
}

// requiredStrings normalizes a schema "required" entry that may be either a
// []string or a JSON-decoded []any.
func requiredStrings(required any) []string {
	switch req := required.(type) {
	case []string:
		return req
	case []any:
		out := make([]string, 0, len(req))
		for _, r := range req {
			if s, ok := r.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
