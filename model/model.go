// Package model defines the completion-client boundary: the normalized
// request/response structures exchanged with a text-completion provider and
// the Client interface the generator loop drives each round.
package model

import (
	"context"
	"fmt"
	"sync"

	"github.com/courseflow/courseflow/core"
)

// StopReason indicates how a completion ended. Any value other than
// StopReasonToolUse is treated as a final answer by the generator.
type StopReason string

const (
	// StopReasonEndTurn marks a normal terminal text answer.
	StopReasonEndTurn StopReason = "end_turn"
	// StopReasonToolUse marks a request to invoke one or more tools.
	StopReasonToolUse StopReason = "tool_use"
	// StopReasonMaxTokens marks a completion truncated by the token cap.
	StopReasonMaxTokens StopReason = "max_tokens"
)

// ToolDefinition declaratively exposes a callable tool to the model.
// InputSchema is a JSON Schema object (minimal subset expected).
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"input_schema"`
}

// Request captures the normalized input for one completion call. When Tools
// is non-empty, adapters attach the schemas with tool choice "auto".
type Request struct {
	System   string           `json:"system"`
	Messages []core.Message   `json:"messages"`
	Tools    []ToolDefinition `json:"tools,omitempty"`
}

// Response is the completion result for a single call.
type Response struct {
	Blocks     []core.Block `json:"content"`
	StopReason StopReason   `json:"stop_reason"`
}

// ToolRequested reports whether the response asks for tool invocations.
func (r *Response) ToolRequested() bool { return r.StopReason == StopReasonToolUse }

// Info contains metadata about a client implementation.
type Info struct {
	Name          string `json:"name"`
	Provider      string `json:"provider"`
	SupportsTools bool   `json:"supports_tools"`
}

// Client is the minimal interface the generator needs to drive completion
// rounds. Complete is synchronous: one request, one response.
type Client interface {
	Complete(ctx context.Context, req Request) (*Response, error)

	// Info returns information about the client implementation.
	Info() Info
}

// ScriptedClient is an in-memory Client for tests. It replays a fixed
// sequence of responses (or errors) and records every request it receives.
type ScriptedClient struct {
	mu    sync.Mutex
	steps []scriptStep
	reqs  []Request
}

type scriptStep struct {
	resp *Response
	err  error
}

// NewScriptedClient constructs an empty ScriptedClient.
func NewScriptedClient() *ScriptedClient { return &ScriptedClient{} }

// EnqueueResponse appends a canned response to the script.
func (c *ScriptedClient) EnqueueResponse(resp *Response) *ScriptedClient {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.steps = append(c.steps, scriptStep{resp: resp})
	return c
}

// EnqueueError appends a failing step to the script.
func (c *ScriptedClient) EnqueueError(err error) *ScriptedClient {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.steps = append(c.steps, scriptStep{err: err})
	return c
}

// Complete implements Client by replaying the next scripted step. Calling
// past the end of the script is a test bug and fails loudly.
func (c *ScriptedClient) Complete(_ context.Context, req Request) (*Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reqs = append(c.reqs, req)
	if len(c.steps) == 0 {
		return nil, fmt.Errorf("scripted client: no response scripted for call %d", len(c.reqs))
	}
	step := c.steps[0]
	c.steps = c.steps[1:]
	if step.err != nil {
		return nil, step.err
	}
	return step.resp, nil
}

// Info implements Client.
func (c *ScriptedClient) Info() Info {
	return Info{Name: "scripted", Provider: "test", SupportsTools: true}
}

// Requests returns a copy of all recorded requests in call order.
func (c *ScriptedClient) Requests() []Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Request, len(c.reqs))
	copy(out, c.reqs)
	return out
}

// Calls returns the number of Complete invocations so far.
func (c *ScriptedClient) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.reqs)
}
