package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

// Tool is a function the model may call.
type Tool struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Parameters  *JSONSchema `json:"parameters"`
	Handler     ToolHandler `json:"-"`
}

// ToolHandler executes a tool call and returns its textual result.
type ToolHandler func(ctx context.Context, args json.RawMessage) (string, error)

// JSONSchema describes tool parameters.
type JSONSchema struct {
	Type        string                 `json:"type"`
	Description string                 `json:"description,omitempty"`
	Properties  map[string]*JSONSchema `json:"properties,omitempty"`
	Required    []string               `json:"required,omitempty"`
	Enum        []string               `json:"enum,omitempty"`
}

// ObjectSchema creates a JSON Schema for an object with the given properties.
func ObjectSchema(props map[string]*JSONSchema, required ...string) *JSONSchema {
	if props == nil {
		props = map[string]*JSONSchema{}
	}
	return &JSONSchema{Type: "object", Properties: props, Required: required}
}

// StringProp creates a JSON Schema for a string property.
func StringProp(desc string) *JSONSchema {
	return &JSONSchema{Type: "string", Description: desc}
}

// EnumProp creates a JSON Schema for a string enum property.
func EnumProp(desc string, values ...string) *JSONSchema {
	return &JSONSchema{Type: "string", Description: desc, Enum: values}
}

// ToolRegistry holds tools in registration order and executes calls.
type ToolRegistry struct {
	mu    sync.RWMutex
	tools map[string]Tool
	order []string
}

// NewToolRegistry creates a registry holding tools.
func NewToolRegistry(tools ...Tool) *ToolRegistry {
	r := &ToolRegistry{tools: make(map[string]Tool)}
	for _, t := range tools {
		r.Register(t)
	}
	return r
}

// Register adds a tool, replacing one with the same name.
func (r *ToolRegistry) Register(tool Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[tool.Name]; !exists {
		r.order = append(r.order, tool.Name)
	}
	r.tools[tool.Name] = tool
}

// Get retrieves a tool by name.
func (r *ToolRegistry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// List returns the tools in registration order.
func (r *ToolRegistry) List() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name])
	}
	return out
}

// Names returns tool names in registration order.
func (r *ToolRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Execute runs one tool call.
func (r *ToolRegistry) Execute(ctx context.Context, call ToolCall) (string, error) {
	tool, ok := r.Get(call.Name)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrToolNotFound, call.Name)
	}
	if tool.Handler == nil {
		return "", fmt.Errorf("llm: tool %q has no handler", call.Name)
	}
	args := call.Arguments
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}
	return tool.Handler(ctx, args)
}

// ExecuteAll runs the calls concurrently and returns tool messages in call order.
func (r *ToolRegistry) ExecuteAll(ctx context.Context, calls []ToolCall) []Message {
	out := make([]Message, len(calls))
	var wg sync.WaitGroup
	for i, call := range calls {
		wg.Add(1)
		go func() {
			defer wg.Done()
			content, err := r.Execute(ctx, call)
			if err != nil {
				content = fmt.Sprintf(`{"error": %q}`, err.Error())
			}
			out[i] = ToolResultMessage(call.Name, content)
		}()
	}
	wg.Wait()
	return out
}

// RunToolLoop sends messages to the model, executes any tool calls it
// makes and feeds the results back, until the model answers in text or
// maxIterations rounds have run. The returned history includes the final
// assistant message.
func RunToolLoop(ctx context.Context, provider LLMProvider, registry *ToolRegistry,
	messages []Message, opts *ChatOptions, maxIterations int, log *logrus.Entry) (*Response, []Message, error) {

	if maxIterations <= 0 {
		maxIterations = 8
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	msgs := append([]Message(nil), messages...)
	tools := registry.List()

	for i := 0; i < maxIterations; i++ {
		resp, err := provider.Chat(ctx, msgs, tools, opts)
		if err != nil {
			return nil, msgs, err
		}
		log.WithField("round", i+1).Debug(resp.String())

		if !resp.HasToolCalls() {
			msgs = append(msgs, AssistantMessage(resp.Content))
			return resp, msgs, nil
		}

		msgs = append(msgs, Message{Role: RoleAssistant, ToolCalls: resp.ToolCalls})
		for _, tc := range resp.ToolCalls {
			log.WithFields(logrus.Fields{"tool": tc.Name, "args": string(tc.Arguments)}).Info("Tool call")
		}
		msgs = append(msgs, registry.ExecuteAll(ctx, resp.ToolCalls)...)
	}

	return nil, msgs, fmt.Errorf("%w after %d rounds", ErrToolLoop, maxIterations)
}
