// Package core defines the shared conversation and course data model used by
// the generator loop, the tool layer and the completion-client adapters.
package core

// Role identifies the author of a conversation message.
type Role string

const (
	// RoleUser marks messages authored by the user, including tool-result
	// turns, which the Messages API convention sends with the user role.
	RoleUser Role = "user"
	// RoleAssistant marks messages authored by the model.
	RoleAssistant Role = "assistant"
)

// Message is a single conversation turn holding an ordered block sequence.
type Message struct {
	Role   Role    `json:"role"`
	Blocks []Block `json:"content"`
}

// Block is one element of a message's content. Implementations are TextBlock,
// ToolUseBlock and ToolResultBlock.
type Block interface {
	blockType() string
}

// TextBlock carries plain text content.
type TextBlock struct {
	Text string `json:"text"`
}

func (TextBlock) blockType() string { return "text" }

// ToolUseBlock is a model request to invoke a named tool with the given
// arguments. The ID correlates the request with its eventual result block.
type ToolUseBlock struct {
	ID    string         `json:"id"`
	Name  string         `json:"name"`
	Input map[string]any `json:"input"`
}

func (ToolUseBlock) blockType() string { return "tool_use" }

// ToolResultBlock carries the outcome of one tool invocation, keyed back to
// the requesting ToolUseBlock. Exactly one result is produced per request.
type ToolResultBlock struct {
	ToolUseID string `json:"tool_use_id"`
	Content   string `json:"content"`
	IsError   bool   `json:"is_error,omitempty"`
}

func (ToolResultBlock) blockType() string { return "tool_result" }

// NewUserMessage builds a user-role message from the given blocks.
func NewUserMessage(blocks ...Block) Message {
	return Message{Role: RoleUser, Blocks: blocks}
}

// NewAssistantMessage builds an assistant-role message from the given blocks.
func NewAssistantMessage(blocks ...Block) Message {
	return Message{Role: RoleAssistant, Blocks: blocks}
}

// NewUserText builds a user message holding a single text block.
func NewUserText(text string) Message {
	return NewUserMessage(TextBlock{Text: text})
}

// FirstText returns the text of the first TextBlock in blocks, or "" if the
// sequence contains none.
func FirstText(blocks []Block) string {
	for _, b := range blocks {
		if tb, ok := b.(TextBlock); ok {
			return tb.Text
		}
	}
	return ""
}

// ToolUses returns the tool-use blocks in their order of appearance.
func ToolUses(blocks []Block) []ToolUseBlock {
	var uses []ToolUseBlock
	for _, b := range blocks {
		if tu, ok := b.(ToolUseBlock); ok {
			uses = append(uses, tu)
		}
	}
	return uses
}
