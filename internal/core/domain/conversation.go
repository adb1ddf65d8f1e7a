package domain

import "encoding/json"

// Role tags a conversation message.
type Role string

// Conversation roles.
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is one entry in an agent conversation.
// The sequence of messages is append-only and is resent in full on
// every model call.
type Message struct {
	// Role is the author of the message.
	Role Role `json:"role"`

	// Content is the message text. May be empty for assistant messages
	// that only carry tool calls.
	Content string `json:"content"`

	// ToolCalls are the tool invocations requested by an assistant message.
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`

	// ToolCallID links a tool message back to the request it answers.
	ToolCallID string `json:"tool_call_id,omitempty"`

	// Name is the tool name for tool messages.
	Name string `json:"name,omitempty"`

	// IsError marks a tool message that reports a failure.
	IsError bool `json:"is_error,omitempty"`
}

// ToolCall is a model-issued request to run a tool.
type ToolCall struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// ToolResult is the outcome of one tool call. A result is produced for
// every call, including failed ones.
type ToolResult struct {
	ToolCallID string `json:"tool_call_id"`
	Name       string `json:"name"`
	Content    string `json:"content"`
	IsError    bool   `json:"is_error"`
}

// Message converts the result into the tool-role message that answers it.
func (r ToolResult) Message() Message {
	return Message{
		Role:       RoleTool,
		Content:    r.Content,
		ToolCallID: r.ToolCallID,
		Name:       r.Name,
		IsError:    r.IsError,
	}
}

// ToolSchema declares a tool to the language model.
type ToolSchema struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}
