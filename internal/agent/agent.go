// Package agent implements the conversational layer of nivesh: a root
// assistant for general questions that hands finance questions to a
// financial advisor agent owning the market data and analytics tools.
package agent

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/seenimoa/nivesh/internal/llm"
)

// ── Result ──

// Result holds the output of one agent turn.
type Result struct {
	AgentName string        `json:"agent_name"`
	Content   string        `json:"content"`
	ToolCalls int           `json:"tool_calls"` // tool calls made during the turn
	Tokens    int           `json:"tokens"`
	Duration  time.Duration `json:"duration"`
	Messages  []llm.Message `json:"-"`
	Error     string        `json:"error,omitempty"`
}

// ── Memory ──

// Memory is a sliding window of conversation history. System messages are
// never stored.
type Memory struct {
	mu       sync.RWMutex
	messages []llm.Message
	maxSize  int
}

// NewMemory creates a conversation memory keeping at most maxSize messages.
func NewMemory(maxSize int) *Memory {
	if maxSize <= 0 {
		maxSize = 50
	}
	return &Memory{maxSize: maxSize}
}

// AddAll appends msgs and drops the oldest messages beyond the window. The
// window always starts at a user message.
func (m *Memory) AddAll(msgs []llm.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, msg := range msgs {
		if msg.Role != llm.RoleSystem {
			m.messages = append(m.messages, msg)
		}
	}
	if over := len(m.messages) - m.maxSize; over > 0 {
		m.messages = m.messages[over:]
	}
	for len(m.messages) > 0 && (m.messages[0].Role == llm.RoleTool || m.messages[0].Role == llm.RoleAssistant) {
		m.messages = m.messages[1:]
	}
}

// Messages returns a copy of the stored history.
func (m *Memory) Messages() []llm.Message {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]llm.Message, len(m.messages))
	copy(out, m.messages)
	return out
}

// Size returns the number of stored messages.
func (m *Memory) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.messages)
}

// Clear drops all history.
func (m *Memory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = nil
}

// ── BaseAgent ──

// BaseAgent runs a system prompt and a tool set against a provider.
type BaseAgent struct {
	name        string
	description string
	instruction func() string
	registry    *llm.ToolRegistry
	provider    llm.LLMProvider
	opts        *llm.ChatOptions
	maxToolIter int
	log         *logrus.Entry
}

// BaseAgentConfig configures a BaseAgent.
type BaseAgentConfig struct {
	Name        string
	Description string
	// Instruction builds the system prompt for each turn, so it can embed
	// the current date.
	Instruction func() string
	Provider    llm.LLMProvider
	Tools       []llm.Tool
	ChatOptions *llm.ChatOptions
	MaxToolIter int
	Logger      *logrus.Entry
}

// NewBaseAgent creates a BaseAgent from cfg.
func NewBaseAgent(cfg BaseAgentConfig) *BaseAgent {
	if cfg.MaxToolIter <= 0 {
		cfg.MaxToolIter = 8
	}
	if cfg.Instruction == nil {
		cfg.Instruction = func() string { return "" }
	}
	log := cfg.Logger
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &BaseAgent{
		name:        cfg.Name,
		description: cfg.Description,
		instruction: cfg.Instruction,
		registry:    llm.NewToolRegistry(cfg.Tools...),
		provider:    cfg.Provider,
		opts:        cfg.ChatOptions,
		maxToolIter: cfg.MaxToolIter,
		log:         log.WithField("agent", cfg.Name),
	}
}

// Name returns the agent's identifier.
func (a *BaseAgent) Name() string { return a.name }

// Description returns what the agent handles.
func (a *BaseAgent) Description() string { return a.description }

// SystemPrompt returns the system prompt for a turn started now.
func (a *BaseAgent) SystemPrompt() string { return a.instruction() }

// ToolNames returns the names of the agent's tools in registration order.
func (a *BaseAgent) ToolNames() []string { return a.registry.Names() }

// Process runs task in a fresh conversation.
func (a *BaseAgent) Process(ctx context.Context, task string) (*Result, error) {
	return a.ProcessWithMessages(ctx, task, nil)
}

// ProcessWithMessages runs task after history. The returned Messages exclude
// the system prompt.
func (a *BaseAgent) ProcessWithMessages(ctx context.Context, task string, history []llm.Message) (*Result, error) {
	start := time.Now()

	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.SystemMessage(a.instruction()))
	messages = append(messages, history...)
	messages = append(messages, llm.UserMessage(task))

	resp, final, err := llm.RunToolLoop(ctx, a.provider, a.registry, messages, a.opts, a.maxToolIter, a.log)
	result := &Result{
		AgentName: a.name,
		ToolCalls: countToolCalls(final),
		Duration:  time.Since(start),
		Messages:  final[1:],
	}
	if err != nil {
		result.Error = err.Error()
		return result, fmt.Errorf("%s: %w", a.name, err)
	}
	result.Content = resp.Content
	result.Tokens = resp.Usage.Total()
	a.log.WithFields(logrus.Fields{
		"tool_calls":  result.ToolCalls,
		"duration_ms": result.Duration.Milliseconds(),
	}).Debug("Turn complete")
	return result, nil
}

func countToolCalls(msgs []llm.Message) int {
	n := 0
	for _, m := range msgs {
		n += len(m.ToolCalls)
	}
	return n
}
