// Package assistant lets a language model manage the calendar through four
// tools (create, update, delete, list) backed by the agenda service.
package assistant

import (
	"context"
)

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Message represents a chat message.
type Message struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"` // assistant messages only
	ToolCallID string     `json:"tool_call_id,omitempty"`
	Name       string     `json:"name,omitempty"` // tool name on tool messages
}

// ToolCall is a model's request to run a tool. Arguments is a JSON object.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Tool describes a callable function with a JSON schema for its arguments.
type Tool struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// Reply is one model turn: either tool calls or a final answer.
type Reply struct {
	Content   string
	ToolCalls []ToolCall
}

// Client defines the interface for LLM providers.
type Client interface {
	// Complete sends the conversation and the available tools and returns the next turn.
	Complete(ctx context.Context, messages []Message, tools []Tool) (*Reply, error)
}
