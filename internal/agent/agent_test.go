package agent

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/seenimoa/nivesh/internal/llm"
	"github.com/seenimoa/nivesh/internal/tools"
	"github.com/seenimoa/nivesh/pkg/utils"
)

// ════════════════════════════════════════════════════════════════════
// Mock LLM Provider
// ════════════════════════════════════════════════════════════════════

type chatFunc func(ctx context.Context, messages []llm.Message, tools []llm.Tool) (*llm.Response, error)

// mockProvider implements llm.LLMProvider for testing.
type mockProvider struct {
	fn    chatFunc
	mu    sync.Mutex
	calls int
}

func (m *mockProvider) Name() string                 { return "mock" }
func (m *mockProvider) Ping(_ context.Context) error { return nil }

func (m *mockProvider) Chat(ctx context.Context, messages []llm.Message, tools []llm.Tool, _ *llm.ChatOptions) (*llm.Response, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	return m.fn(ctx, messages, tools)
}

func (m *mockProvider) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func quietLog() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func toolCall(name, args string) *llm.Response {
	return &llm.Response{ToolCalls: []llm.ToolCall{{ID: "call_0", Name: name, Arguments: json.RawMessage(args)}}}
}

func lastMessage(msgs []llm.Message) llm.Message { return msgs[len(msgs)-1] }

var testNow = time.Date(2025, 10, 17, 10, 30, 0, 0, utils.IST)

// ════════════════════════════════════════════════════════════════════
// Memory Tests
// ════════════════════════════════════════════════════════════════════

func TestMemorySkipsSystemMessages(t *testing.T) {
	m := NewMemory(10)
	m.AddAll([]llm.Message{llm.SystemMessage("sys"), llm.UserMessage("hi"), llm.AssistantMessage("hello")})
	if m.Size() != 2 {
		t.Fatalf("Size() = %d, want 2", m.Size())
	}
	if got := m.Messages()[0].Role; got != llm.RoleUser {
		t.Errorf("first role = %q, want user", got)
	}
}

func TestMemoryWindowStartsAtUser(t *testing.T) {
	m := NewMemory(3)
	m.AddAll([]llm.Message{
		llm.UserMessage("q1"),
		{Role: llm.RoleAssistant, ToolCalls: []llm.ToolCall{{Name: "x"}}},
		llm.ToolResultMessage("x", "{}"),
		llm.AssistantMessage("a1"),
		llm.UserMessage("q2"),
		llm.AssistantMessage("a2"),
	})
	msgs := m.Messages()
	if len(msgs) != 2 {
		t.Fatalf("len = %d, want 2: %+v", len(msgs), msgs)
	}
	if msgs[0].Content != "q2" {
		t.Errorf("first = %q, want q2", msgs[0].Content)
	}
}

func TestMemoryClear(t *testing.T) {
	m := NewMemory(0)
	m.AddAll([]llm.Message{llm.UserMessage("hi")})
	m.Clear()
	if m.Size() != 0 {
		t.Errorf("Size() after Clear = %d, want 0", m.Size())
	}
}

// ════════════════════════════════════════════════════════════════════
// BaseAgent Tests
// ════════════════════════════════════════════════════════════════════

func TestBaseAgentProcess(t *testing.T) {
	var calls int
	p := &mockProvider{fn: func(_ context.Context, msgs []llm.Message, _ []llm.Tool) (*llm.Response, error) {
		calls++
		if calls == 1 {
			return toolCall("echo", `{"text":"TCS"}`), nil
		}
		if got := lastMessage(msgs); got.Role != llm.RoleTool || got.Content != "TCS" {
			t.Errorf("tool result = %+v", got)
		}
		return &llm.Response{Content: "done", Usage: llm.Usage{PromptTokens: 10, CompletionTokens: 5}}, nil
	}}
	echo := llm.Tool{
		Name:       "echo",
		Parameters: llm.ObjectSchema(nil),
		Handler: func(_ context.Context, raw json.RawMessage) (string, error) {
			var in struct{ Text string }
			_ = json.Unmarshal(raw, &in)
			return in.Text, nil
		},
	}
	a := NewBaseAgent(BaseAgentConfig{
		Name:        "tester",
		Instruction: func() string { return "be brief" },
		Provider:    p,
		Tools:       []llm.Tool{echo},
		Logger:      quietLog(),
	})

	res, err := a.Process(context.Background(), "go")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if res.Content != "done" || res.Tokens != 15 || res.ToolCalls != 1 {
		t.Errorf("result = %+v", res)
	}
	if res.Messages[0].Role != llm.RoleUser {
		t.Errorf("Messages should exclude the system prompt, got %q first", res.Messages[0].Role)
	}
}

func TestBaseAgentProviderError(t *testing.T) {
	p := &mockProvider{fn: func(context.Context, []llm.Message, []llm.Tool) (*llm.Response, error) {
		return nil, llm.ErrProviderDown
	}}
	a := NewBaseAgent(BaseAgentConfig{Name: "tester", Provider: p, Logger: quietLog()})

	res, err := a.Process(context.Background(), "go")
	if !errors.Is(err, llm.ErrProviderDown) {
		t.Fatalf("err = %v, want ErrProviderDown", err)
	}
	if res == nil || res.Error == "" {
		t.Errorf("result should carry the error, got %+v", res)
	}
}

// ════════════════════════════════════════════════════════════════════
// Assistant Tests
// ════════════════════════════════════════════════════════════════════

func newTestAssistant(fn chatFunc) (*Assistant, *mockProvider) {
	p := &mockProvider{fn: fn}
	tk := &tools.Toolkit{Now: func() time.Time { return testNow }}
	return NewAssistant(p, tk, AssistantConfig{
		Now:    func() time.Time { return testNow },
		Logger: quietLog(),
	}), p
}

func isAdvisor(msgs []llm.Message) bool {
	return strings.HasPrefix(msgs[0].Content, "You are a financial advisor")
}

func TestAssistantToolSets(t *testing.T) {
	a, _ := newTestAssistant(nil)

	root := strings.Join(a.Root().ToolNames(), ",")
	if root != "search_web,get_current_time,transfer_to_financial_advisor" {
		t.Errorf("root tools = %s", root)
	}
	if n := len(a.Advisor().ToolNames()); n != 7 {
		t.Errorf("advisor has %d tools, want 7", n)
	}
}

func TestAdvisorInstructionInjectsDate(t *testing.T) {
	got := AdvisorInstruction(testNow)
	for _, want := range []string{"Today's date is 2025-10-17", "The current year is 2025", "analyze_investment", AdvisorDisclaimer} {
		if !strings.Contains(got, want) {
			t.Errorf("instruction missing %q", want)
		}
	}
	if strings.Contains(got, "%!") {
		t.Errorf("instruction has formatting errors:\n%s", got)
	}
}

func TestAssistantDelegatesToAdvisor(t *testing.T) {
	var rootCalls int
	var advisorPrompt, delegated string
	a, p := newTestAssistant(func(_ context.Context, msgs []llm.Message, _ []llm.Tool) (*llm.Response, error) {
		if isAdvisor(msgs) {
			advisorPrompt = msgs[0].Content
			delegated = lastMessage(msgs).Content
			return &llm.Response{Content: "TCS CAGR is 12%."}, nil
		}
		rootCalls++
		if rootCalls == 1 {
			return toolCall(TransferTool, `{"request":"How has TCS done?"}`), nil
		}
		var payload map[string]any
		if err := json.Unmarshal([]byte(lastMessage(msgs).Content), &payload); err != nil {
			t.Errorf("transfer result is not JSON: %v", err)
		}
		return &llm.Response{Content: "Advisor says: " + payload["answer"].(string)}, nil
	})

	res, err := a.Chat(context.Background(), "How has TCS done?")
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if res.Content != "Advisor says: TCS CAGR is 12%." {
		t.Errorf("Content = %q", res.Content)
	}
	if delegated != "How has TCS done?" {
		t.Errorf("advisor got %q", delegated)
	}
	if !strings.Contains(advisorPrompt, "2025-10-17") {
		t.Error("advisor prompt should carry today's date")
	}
	if p.callCount() != 3 {
		t.Errorf("provider calls = %d, want 3", p.callCount())
	}
}

func TestAssistantTransferFailureIsPayload(t *testing.T) {
	var rootCalls int
	var toolResult string
	a, _ := newTestAssistant(func(_ context.Context, msgs []llm.Message, _ []llm.Tool) (*llm.Response, error) {
		if isAdvisor(msgs) {
			return nil, llm.ErrProviderDown
		}
		rootCalls++
		if rootCalls == 1 {
			return toolCall(TransferTool, `{"request":"NAV of 119597"}`), nil
		}
		toolResult = lastMessage(msgs).Content
		return &llm.Response{Content: "Sorry, the advisor is unavailable."}, nil
	})

	if _, err := a.Chat(context.Background(), "NAV of 119597"); err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if !strings.Contains(toolResult, `"error"`) {
		t.Errorf("tool result = %s, want an error payload", toolResult)
	}
}

func TestAssistantKeepsHistory(t *testing.T) {
	var seen int
	a, _ := newTestAssistant(func(_ context.Context, msgs []llm.Message, _ []llm.Tool) (*llm.Response, error) {
		seen = len(msgs)
		return &llm.Response{Content: "ok"}, nil
	})
	ctx := context.Background()

	if _, err := a.Chat(ctx, "first"); err != nil {
		t.Fatal(err)
	}
	if _, err := a.Chat(ctx, "second"); err != nil {
		t.Fatal(err)
	}
	// system + first + ok + second
	if seen != 4 {
		t.Errorf("second turn saw %d messages, want 4", seen)
	}
	if n := len(a.History()); n != 4 {
		t.Errorf("History() = %d messages, want 4", n)
	}

	a.Reset()
	if n := len(a.History()); n != 0 {
		t.Errorf("History() after Reset = %d, want 0", n)
	}
	if _, err := a.Chat(ctx, "  "); err == nil {
		t.Error("empty message should fail")
	}
}
