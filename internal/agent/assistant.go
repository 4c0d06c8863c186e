package agent

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/seenimoa/nivesh/internal/llm"
	"github.com/seenimoa/nivesh/internal/tools"
	"github.com/seenimoa/nivesh/pkg/utils"
)

// ErrEmptyMessage is returned for blank user input.
var ErrEmptyMessage = errors.New("agent: empty message")

// AssistantConfig configures NewAssistant.
type AssistantConfig struct {
	ChatOptions *llm.ChatOptions
	MaxToolIter int
	MemorySize  int
	Now         func() time.Time // defaults to utils.NowIST
	Logger      *logrus.Entry
}

// Assistant is the root agent of a conversation. It keeps the chat history
// and delegates finance questions to the advisor.
type Assistant struct {
	root    *BaseAgent
	advisor *BaseAgent
	memory  *Memory
	log     *logrus.Entry

	mu sync.Mutex // serializes turns so history stays ordered
}

// NewAssistant wires the root agent and the financial advisor over tk.
func NewAssistant(provider llm.LLMProvider, tk *tools.Toolkit, cfg AssistantConfig) *Assistant {
	now := cfg.Now
	if now == nil {
		now = utils.NowIST
	}
	log := cfg.Logger
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	advisor := NewBaseAgent(BaseAgentConfig{
		Name:        AdvisorAgentName,
		Description: advisorDescription,
		Instruction: func() string { return AdvisorInstruction(now()) },
		Provider:    provider,
		Tools:       tk.AdvisorTools(),
		ChatOptions: cfg.ChatOptions,
		MaxToolIter: cfg.MaxToolIter,
		Logger:      log,
	})

	a := &Assistant{advisor: advisor, memory: NewMemory(cfg.MemorySize), log: log}
	a.root = NewBaseAgent(BaseAgentConfig{
		Name:        RootAgentName,
		Description: "A helpful assistant that delegates financial and investment queries to the financial advisor.",
		Instruction: func() string { return rootInstruction },
		Provider:    provider,
		Tools:       append(tk.RootTools(), a.transferTool()),
		ChatOptions: cfg.ChatOptions,
		MaxToolIter: cfg.MaxToolIter,
		Logger:      log,
	})
	return a
}

// Root returns the root agent.
func (a *Assistant) Root() *BaseAgent { return a.root }

// Advisor returns the financial advisor agent.
func (a *Assistant) Advisor() *BaseAgent { return a.advisor }

// Chat answers input in the context of the conversation so far.
func (a *Assistant) Chat(ctx context.Context, input string) (*Result, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	res, err := a.Ask(ctx, input, a.memory.Messages())
	if err != nil {
		return res, err
	}
	a.memory.AddAll(res.Messages)
	return res, nil
}

// Ask answers input after history without touching the stored
// conversation. It is safe for concurrent use.
func (a *Assistant) Ask(ctx context.Context, input string, history []llm.Message) (*Result, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, ErrEmptyMessage
	}
	return a.root.ProcessWithMessages(ctx, input, history)
}

// Reset forgets the conversation.
func (a *Assistant) Reset() { a.memory.Clear() }

// History returns the stored conversation.
func (a *Assistant) History() []llm.Message { return a.memory.Messages() }

type transferArgs struct {
	Request string `json:"request"`
}

// transferTool runs the advisor on a fresh conversation and returns its
// answer to the root agent.
func (a *Assistant) transferTool() llm.Tool {
	return llm.Tool{
		Name:        TransferTool,
		Description: "Delegates a question about stocks, mutual funds, investments, portfolios or financial markets to the financial advisor. " + advisorDescription,
		Parameters: llm.ObjectSchema(map[string]*llm.JSONSchema{
			"request": llm.StringProp("The user's full request, with any tickers, scheme names or codes mentioned so far."),
		}, "request"),
		Handler: func(ctx context.Context, raw json.RawMessage) (string, error) {
			var args transferArgs
			if err := json.Unmarshal(raw, &args); err != nil || strings.TrimSpace(args.Request) == "" {
				return `{"error": "request must not be empty"}`, nil
			}
			a.log.WithField("request", args.Request).Info("Delegating to financial advisor")
			res, err := a.advisor.Process(ctx, args.Request)
			if err != nil {
				out, _ := json.Marshal(map[string]string{"error": err.Error()})
				return string(out), nil
			}
			out, _ := json.Marshal(map[string]any{
				"agent":      res.AgentName,
				"answer":     res.Content,
				"tool_calls": res.ToolCalls,
			})
			return string(out), nil
		},
	}
}
