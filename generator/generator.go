// Package generator implements the bounded multi-round tool-calling loop that
// turns a user query into a final answer. Each round the model either answers
// directly or requests tool calls; tool results are fed back as a user turn
// and the loop continues until the model answers or the round limit forces a
// final tools-disabled completion.
package generator

import (
	"context"
	"fmt"

	"github.com/courseflow/courseflow/core"
	"github.com/courseflow/courseflow/logging"
	"github.com/courseflow/courseflow/model"
	"github.com/courseflow/courseflow/tool"
)

const systemPrompt = `You are an AI assistant specialized in course materials and educational content, with tools for searching course content and retrieving course outlines.

Tool usage:
- search_course_content: for questions about specific course content or detailed educational materials
- get_course_outline: for questions about a course's structure, its lessons, or its link
- You may use up to two tool calls per query when a first result is needed to inform a second lookup (for example an outline first, then a content search)
- If a search yields no results, say so clearly without guessing

Response protocol:
- General knowledge questions: answer from your own knowledge without tools
- Course-specific questions: use the appropriate tool first, then answer
- Keep answers brief, concise and focused; do not mention the tools or your search process

All responses must be direct and factually grounded in the retrieved content when tools were used.`

// loopState tracks the generator's position in one query's round loop.
type loopState int

const (
	// stateAwaitingCompletion means the next step is a model completion call.
	stateAwaitingCompletion loopState = iota
	// stateToolsRequested means the last completion asked for tool calls that
	// still have to be dispatched.
	stateToolsRequested
	// stateTerminal means the last completion is the final answer.
	stateTerminal
)

// Options configures a Generator.
type Options struct {
	// MaxRounds bounds the number of tool-dispatch rounds per query. The
	// total number of completion calls is at most MaxRounds+1.
	MaxRounds int
	Logger    logging.Logger
}

// Generator drives the round loop against a completion client.
type Generator struct {
	client    model.Client
	maxRounds int
	logger    logging.Logger
}

// New creates a Generator with two tool rounds by default.
func New(client model.Client, optFns ...func(o *Options)) *Generator {
	opts := Options{
		MaxRounds: 2,
		Logger:    logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.MaxRounds < 1 {
		opts.MaxRounds = 1
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	return &Generator{
		client:    client,
		maxRounds: opts.MaxRounds,
		logger:    opts.Logger,
	}
}

// Respond answers query, optionally informed by rendered conversation
// history and the tools in reg. Sources accumulate across rounds in dispatch
// order without deduplication. Completion failures propagate unchanged;
// individual tool failures are folded into the conversation as error results
// so the model can recover.
func (g *Generator) Respond(ctx context.Context, query, history string, reg *tool.Registry) (string, []core.Source, error) {
	system := systemPrompt
	if history != "" {
		system += "\n\nPrevious conversation:\n" + history
	}

	messages := []core.Message{core.NewUserText(query)}

	var defs []model.ToolDefinition
	if reg != nil {
		defs = reg.Definitions()
	}

	// Without tools there is nothing to loop over: one completion, done.
	if len(defs) == 0 {
		resp, err := g.client.Complete(ctx, model.Request{System: system, Messages: messages})
		if err != nil {
			return "", nil, err
		}
		return core.FirstText(resp.Blocks), nil, nil
	}

	var (
		sources []core.Source
		resp    *model.Response
		rounds  int
		err     error
	)

	for state := stateAwaitingCompletion; state != stateTerminal; {
		switch state {
		case stateAwaitingCompletion:
			req := model.Request{System: system, Messages: messages}
			// Tools stay attached until the round limit is reached; the final
			// forced call goes out without them so the model must answer.
			if rounds < g.maxRounds {
				req.Tools = defs
			}

			resp, err = g.client.Complete(ctx, req)
			if err != nil {
				return "", nil, err
			}

			// The assistant turn is recorded exactly once per completion,
			// before the response is inspected.
			messages = append(messages, core.NewAssistantMessage(resp.Blocks...))

			if resp.ToolRequested() && rounds < g.maxRounds && len(core.ToolUses(resp.Blocks)) > 0 {
				state = stateToolsRequested
			} else {
				state = stateTerminal
			}

		case stateToolsRequested:
			results, roundSources := g.runTools(ctx, reg, resp.Blocks)
			messages = append(messages, core.NewUserMessage(results...))
			sources = append(sources, roundSources...)
			rounds++
			g.logger.Debug("tool round complete", "round", rounds, "results", len(results), "sources", len(roundSources))
			state = stateAwaitingCompletion
		}
	}

	return core.FirstText(resp.Blocks), sources, nil
}

// runTools dispatches every tool-use block of one completion in order,
// producing exactly one result block per request. A failed dispatch yields an
// error result block and contributes no sources.
func (g *Generator) runTools(ctx context.Context, reg *tool.Registry, blocks []core.Block) ([]core.Block, []core.Source) {
	var results []core.Block
	var sources []core.Source

	for _, use := range core.ToolUses(blocks) {
		result, callSources, err := reg.Dispatch(ctx, use.Name, use.Input)
		if err != nil {
			g.logger.Warn("tool dispatch failed", "tool", use.Name, "error", err)
			results = append(results, core.ToolResultBlock{
				ToolUseID: use.ID,
				Content:   fmt.Sprintf("Tool execution failed: %s", err.Error()),
				IsError:   true,
			})
			continue
		}
		results = append(results, core.ToolResultBlock{
			ToolUseID: use.ID,
			Content:   result.Content,
			IsError:   result.IsError,
		})
		sources = append(sources, callSources...)
	}

	return results, sources
}
