// Package llm talks to a chat model with tool calling. The toolkit is
// exposed to the model as Tools and RunToolLoop drives the conversation
// until the model answers in text.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ProviderOllama is the only supported provider.
const ProviderOllama = "ollama"

// DefaultModel is used when no model is configured.
const DefaultModel = "ministral-3:8b"

// Common errors returned by providers.
var (
	ErrProviderDown = errors.New("llm: provider unavailable")
	ErrToolNotFound = errors.New("llm: tool not found")
	ErrToolLoop     = errors.New("llm: tool loop did not converge")
)

// Role represents the role of a message sender.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is one turn of a conversation.
type Message struct {
	Role      Role       `json:"role"`
	Content   string     `json:"content"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
	Name      string     `json:"name,omitempty"` // tool name on tool results
}

// ToolCall is a tool invocation requested by the model.
type ToolCall struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// Response is a complete model reply.
type Response struct {
	Content   string        `json:"content"`
	ToolCalls []ToolCall    `json:"tool_calls,omitempty"`
	Model     string        `json:"model"`
	Usage     Usage         `json:"usage"`
	Latency   time.Duration `json:"latency"`
}

// Usage tracks token consumption for a request.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

// Total returns prompt plus completion tokens.
func (u Usage) Total() int { return u.PromptTokens + u.CompletionTokens }

// ChatOptions configures a single chat request.
type ChatOptions struct {
	Model       string  `json:"model,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
}

// LLMProvider is implemented by chat model backends.
type LLMProvider interface {
	Name() string
	// Chat sends a conversation and returns the complete reply. tools may be nil.
	Chat(ctx context.Context, messages []Message, tools []Tool, opts *ChatOptions) (*Response, error)
	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error
}

// SystemMessage creates a system prompt message.
func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// UserMessage creates a user message.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// AssistantMessage creates an assistant message.
func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// ToolResultMessage creates a tool result message.
func ToolResultMessage(name, content string) Message {
	return Message{Role: RoleTool, Content: content, Name: name}
}

// HasToolCalls returns true if the response contains tool calls.
func (r *Response) HasToolCalls() bool {
	return len(r.ToolCalls) > 0
}

// String returns a short summary of the response for logs.
func (r *Response) String() string {
	if r.HasToolCalls() {
		return fmt.Sprintf("[%s] %d tool call(s), %d tokens", r.Model, len(r.ToolCalls), r.Usage.Total())
	}
	text := []rune(r.Content)
	if len(text) > 80 {
		text = append(text[:80], []rune("...")...)
	}
	return fmt.Sprintf("[%s] %q, %d tokens", r.Model, string(text), r.Usage.Total())
}
