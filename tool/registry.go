package tool

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/courseflow/courseflow/core"
	"github.com/courseflow/courseflow/internal/util"
	"github.com/courseflow/courseflow/logging"
	"github.com/courseflow/courseflow/model"
)

var (
	// ErrDuplicateTool is returned when registering a name that already exists.
	ErrDuplicateTool = errors.New("tool already registered")
	// ErrUnknownTool is returned when dispatching to an unregistered name.
	ErrUnknownTool = errors.New("unknown tool")
)

// Result is the outcome of a single tool dispatch. IsError marks results that
// should be surfaced to the model as failed tool calls.
type Result struct {
	Content string
	IsError bool
}

// Registry holds the tools available to the generator. Definitions are
// reported in registration order so the model sees a stable tool list.
// Dispatch returns provenance sources alongside the result, so the registry
// itself carries no per-call state and is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	tools  map[string]Tool
	order  []string
	logger logging.Logger
}

// NewRegistry creates an empty Registry.
func NewRegistry(logger logging.Logger) *Registry {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Registry{
		tools:  make(map[string]Tool),
		logger: logger,
	}
}

// Register adds a tool. Registering an empty name or a duplicate fails.
func (r *Registry) Register(t Tool) error {
	name := t.Name()
	if name == "" {
		return fmt.Errorf("tool name must not be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateTool, name)
	}

	r.tools[name] = t
	r.order = append(r.order, name)
	return nil
}

// MustRegister registers a tool and panics on failure. Intended for wiring at
// startup where a duplicate name is a programming error.
func (r *Registry) MustRegister(t Tool) {
	if err := r.Register(t); err != nil {
		panic(err)
	}
}

// Get returns the tool with the given name.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// Definitions returns the schema definitions of all registered tools in
// registration order.
func (r *Registry) Definitions() []model.ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]model.ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		t := r.tools[name]
		defs = append(defs, model.ToolDefinition{
			Name:        t.Name(),
			Description: t.Description(),
			InputSchema: t.Parameters(),
		})
	}
	return defs
}

// Dispatch validates args against the tool's schema and executes it. A
// non-nil error is returned only for unknown tool names; validation failures,
// execution errors and panics are folded into an error Result so the model
// can read them as failed tool calls and recover.
func (r *Registry) Dispatch(ctx context.Context, name string, args map[string]any) (Result, []core.Source, error) {
	t, ok := r.Get(name)
	if !ok {
		return Result{}, nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}

	if args == nil {
		args = map[string]any{}
	}

	if schema := t.Parameters(); schema != nil {
		if err := util.ValidateParameters(args, schema); err != nil {
			toolErr := &ToolError{
				Tool:    name,
				Message: fmt.Sprintf("parameter validation failed: %v", err),
				Code:    "VALIDATION_ERROR",
				Details: err,
			}
			var vErr *ValidationError
			if errors.As(err, &vErr) {
				r.logger.Warn("tool argument validation failed", "tool", name, "field", vErr.Field, "code", toolErr.Code)
			} else {
				r.logger.Warn("tool argument validation failed", "tool", name, "error", err)
			}
			return errResult(toolErr), nil, nil
		}
	}

	content, sources, err := r.execute(ctx, t, args)
	if err != nil {
		toolErr := asToolError(name, err)
		r.logger.Error("tool execution failed", "tool", name, "code", toolErr.Code, "error", toolErr.Message)
		return errResult(toolErr), nil, nil
	}

	r.logger.Debug("tool executed", "tool", name, "sources", len(sources))
	return Result{Content: content}, sources, nil
}

// execute runs the tool, converting panics into errors so one misbehaving
// tool cannot take down the generator loop.
func (r *Registry) execute(ctx context.Context, t Tool, args map[string]any) (content string, sources []core.Source, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("tool panicked: %v", rec)
		}
	}()
	return t.Execute(ctx, args)
}

// asToolError passes through errors the tool already classified and wraps
// everything else as an execution failure.
func asToolError(tool string, err error) *ToolError {
	var toolErr *ToolError
	if errors.As(err, &toolErr) {
		return toolErr
	}
	return &ToolError{Tool: tool, Message: err.Error(), Code: "EXECUTION_ERROR"}
}

func errResult(err *ToolError) Result {
	return Result{
		Content: fmt.Sprintf("Tool execution failed: %s", err.Message),
		IsError: true,
	}
}
