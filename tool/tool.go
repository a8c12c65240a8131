// Package tool implements the function-calling subsystem: the Tool interface
// for structured capabilities the model can invoke, a Registry that exposes
// their schemas and dispatches calls, and the built-in course search and
// outline tools.
package tool

import (
	"context"
	"fmt"

	"github.com/courseflow/courseflow/core"
	"github.com/courseflow/courseflow/internal/util"
)

// Tool is a callable capability exposed to the model.
//
// Implementations should provide descriptive names (snake_case), a JSON
// schema for their parameters, and be safe for concurrent use. Execute
// returns the textual result handed back to the model plus any provenance
// sources the call produced.
type Tool interface {
	// Name returns the unique identifier for this tool.
	Name() string

	// Description returns a human-readable description provided to the model
	// so it can decide when to use the tool.
	Description() string

	// Parameters returns a JSON schema describing the expected arguments.
	Parameters() map[string]any

	// Execute runs the tool with validated arguments. The returned sources
	// describe where the result content came from; they may be nil.
	Execute(ctx context.Context, args map[string]any) (string, []core.Source, error)
}

// ValidationError reports a parameter that failed schema validation.
type ValidationError = util.ValidationError

// ToolError represents errors that occur during tool execution.
type ToolError struct {
	Tool    string `json:"tool"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}

func (e *ToolError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// NewToolError creates a new ToolError with the specified details.
func NewToolError(tool, message, code string) *ToolError {
	return &ToolError{
		Tool:    tool,
		Message: message,
		Code:    code,
	}
}
