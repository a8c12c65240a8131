package tool

import (
	"context"

	"github.com/courseflow/courseflow/core"
	"github.com/courseflow/courseflow/internal/util"
)

// Func is the implementation signature wrapped by FunctionTool.
type Func func(ctx context.Context, args map[string]any) (string, []core.Source, error)

// FunctionTool is a generic adapter that exposes a plain Go function as a
// tool. It holds a JSON-Schema-like parameter specification used by the
// registry for argument validation before the function is invoked.
//
// A FunctionTool has no internal mutable state after construction and is safe
// for concurrent use by multiple goroutines.
type FunctionTool struct {
	name        string
	description string
	parameters  map[string]any
	fn          Func
}

// NewFunctionTool constructs a FunctionTool from an explicit schema and
// function.
//
// Example:
//
//	echoTool := NewFunctionTool(
//	  "echo",
//	  "Echo the given text back",
//	  map[string]any{
//	    "type": "object",
//	    "properties": map[string]any{
//	      "text": map[string]any{"type": "string"},
//	    },
//	    "required": []string{"text"},
//	  },
//	  func(ctx context.Context, args map[string]any) (string, []core.Source, error) {
//	    return args["text"].(string), nil, nil
//	  },
//	)
func NewFunctionTool(name, description string, parameters map[string]any, fn Func) *FunctionTool {
	return &FunctionTool{
		name:        name,
		description: description,
		parameters:  parameters,
		fn:          fn,
	}
}

// NewFunctionToolFromStruct derives the parameter schema from a struct using
// reflection. Field names come from json tags and descriptions from
// `description` tags.
//
// Example:
//
//	type EchoArgs struct {
//	  Text string `json:"text" description:"Text to echo back"`
//	}
//
//	echoTool := NewFunctionToolFromStruct("echo", "Echo the given text back", EchoArgs{}, fn)
func NewFunctionToolFromStruct(name, description string, structType any, fn Func) *FunctionTool {
	return NewFunctionTool(name, description, util.CreateSchema(structType), fn)
}

// Name returns the unique tool name.
func (t *FunctionTool) Name() string { return t.name }

// Description returns the description exposed to models.
func (t *FunctionTool) Description() string { return t.description }

// Parameters returns the JSON schema describing expected arguments.
func (t *FunctionTool) Parameters() map[string]any { return t.parameters }

// Execute invokes the wrapped function. Argument validation happens in the
// registry before this is called.
func (t *FunctionTool) Execute(ctx context.Context, args map[string]any) (string, []core.Source, error) {
	return t.fn(ctx, args)
}
