package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

// ── Mock provider ──

type mockProvider struct {
	responses []*Response
	calls     int
	seen      [][]Message
}

func (m *mockProvider) Name() string                   { return "mock" }
func (m *mockProvider) Ping(ctx context.Context) error { return nil }

func (m *mockProvider) Chat(_ context.Context, msgs []Message, _ []Tool, _ *ChatOptions) (*Response, error) {
	m.seen = append(m.seen, msgs)
	if m.calls >= len(m.responses) {
		return nil, errors.New("mock: no more responses")
	}
	r := m.responses[m.calls]
	m.calls++
	return r, nil
}

func quietLog() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func echoTool(name string) Tool {
	return Tool{
		Name:        name,
		Description: "echoes its input",
		Parameters:  ObjectSchema(map[string]*JSONSchema{"text": StringProp("text")}, "text"),
		Handler: func(_ context.Context, args json.RawMessage) (string, error) {
			var in struct{ Text string }
			if err := json.Unmarshal(args, &in); err != nil {
				return "", err
			}
			return fmt.Sprintf(`{"echo":%q}`, in.Text), nil
		},
	}
}

// ── Registry ──

func TestToolRegistryOrder(t *testing.T) {
	r := NewToolRegistry(echoTool("b"), echoTool("a"))
	r.Register(echoTool("c"))
	r.Register(echoTool("a")) // replace keeps position

	got := strings.Join(r.Names(), ",")
	if got != "b,a,c" {
		t.Errorf("Names() = %q, want %q", got, "b,a,c")
	}
	if len(r.List()) != 3 {
		t.Errorf("List() len = %d, want 3", len(r.List()))
	}
}

func TestToolRegistryExecute(t *testing.T) {
	r := NewToolRegistry(echoTool("echo"))
	ctx := context.Background()

	out, err := r.Execute(ctx, ToolCall{Name: "echo", Arguments: json.RawMessage(`{"text":"hi"}`)})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if out != `{"echo":"hi"}` {
		t.Errorf("Execute = %q", out)
	}

	_, err = r.Execute(ctx, ToolCall{Name: "missing"})
	if !errors.Is(err, ErrToolNotFound) {
		t.Errorf("missing tool: got %v, want ErrToolNotFound", err)
	}
}

func TestExecuteAllKeepsOrderAndReportsErrors(t *testing.T) {
	r := NewToolRegistry(echoTool("echo"))
	msgs := r.ExecuteAll(context.Background(), []ToolCall{
		{Name: "echo", Arguments: json.RawMessage(`{"text":"one"}`)},
		{Name: "nope"},
		{Name: "echo", Arguments: json.RawMessage(`{"text":"three"}`)},
	})
	if len(msgs) != 3 {
		t.Fatalf("got %d messages, want 3", len(msgs))
	}
	if msgs[0].Content != `{"echo":"one"}` || msgs[2].Content != `{"echo":"three"}` {
		t.Errorf("order not preserved: %+v", msgs)
	}
	var payload map[string]string
	if err := json.Unmarshal([]byte(msgs[1].Content), &payload); err != nil {
		t.Fatalf("error payload not JSON: %q", msgs[1].Content)
	}
	if !strings.Contains(payload["error"], "tool not found") {
		t.Errorf("error payload = %q", payload["error"])
	}
	if msgs[1].Role != RoleTool || msgs[1].Name != "nope" {
		t.Errorf("tool message = %+v", msgs[1])
	}
}

// ── Tool loop ──

func TestRunToolLoop(t *testing.T) {
	p := &mockProvider{responses: []*Response{
		{ToolCalls: []ToolCall{{ID: "call_0", Name: "echo", Arguments: json.RawMessage(`{"text":"x"}`)}}},
		{Content: "done"},
	}}
	r := NewToolRegistry(echoTool("echo"))

	resp, history, err := RunToolLoop(context.Background(), p, r,
		[]Message{SystemMessage("sys"), UserMessage("go")}, nil, 5, quietLog())
	if err != nil {
		t.Fatalf("RunToolLoop: %v", err)
	}
	if resp.Content != "done" {
		t.Errorf("Content = %q, want %q", resp.Content, "done")
	}
	// sys, user, assistant(tool call), tool, assistant(final)
	if len(history) != 5 {
		t.Fatalf("history len = %d, want 5", len(history))
	}
	if history[3].Role != RoleTool || history[3].Content != `{"echo":"x"}` {
		t.Errorf("tool result = %+v", history[3])
	}
	if history[4].Content != "done" {
		t.Errorf("final = %+v", history[4])
	}
	if p.calls != 2 {
		t.Errorf("provider calls = %d, want 2", p.calls)
	}
}

func TestRunToolLoopMaxIterations(t *testing.T) {
	call := &Response{ToolCalls: []ToolCall{{Name: "echo", Arguments: json.RawMessage(`{"text":"x"}`)}}}
	p := &mockProvider{responses: []*Response{call, call, call}}
	r := NewToolRegistry(echoTool("echo"))

	_, _, err := RunToolLoop(context.Background(), p, r, []Message{UserMessage("go")}, nil, 3, quietLog())
	if !errors.Is(err, ErrToolLoop) {
		t.Errorf("got %v, want ErrToolLoop", err)
	}
}

func TestRunToolLoopDoesNotMutateInput(t *testing.T) {
	p := &mockProvider{responses: []*Response{{Content: "hi"}}}
	in := []Message{UserMessage("hello")}
	_, history, err := RunToolLoop(context.Background(), p, NewToolRegistry(), in, nil, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(in) != 1 || len(history) != 2 {
		t.Errorf("input len %d, history len %d", len(in), len(history))
	}
}

// ── Ollama ──

func TestOllamaChat(t *testing.T) {
	var got ollamaChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		fmt.Fprint(w, `{"model":"ministral-3:8b","done":true,"prompt_eval_count":12,"eval_count":5,
			"message":{"role":"assistant","content":"","tool_calls":[
				{"function":{"name":"analyze_investment","arguments":{"identifier":"TCS"}}}]}}`)
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, WithOllamaHTTPClient(srv.Client()), WithOllamaSampling(0.1, 512))
	resp, err := p.Chat(context.Background(), []Message{
		UserMessage("analyze tcs"),
		ToolResultMessage("get_current_time", `{"current_time":"x"}`),
	}, []Tool{echoTool("echo")}, nil)
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}

	if got.Model != DefaultModel || got.Stream {
		t.Errorf("request model=%q stream=%v", got.Model, got.Stream)
	}
	if got.Options == nil || got.Options.NumPredict != 512 {
		t.Errorf("options = %+v", got.Options)
	}
	if len(got.Tools) != 1 || got.Tools[0].Function.Name != "echo" {
		t.Errorf("tools = %+v", got.Tools)
	}
	if got.Messages[1].ToolName != "get_current_time" {
		t.Errorf("tool message name = %q", got.Messages[1].ToolName)
	}

	if !resp.HasToolCalls() || resp.ToolCalls[0].Name != "analyze_investment" {
		t.Fatalf("tool calls = %+v", resp.ToolCalls)
	}
	if string(resp.ToolCalls[0].Arguments) != `{"identifier":"TCS"}` {
		t.Errorf("arguments = %s", resp.ToolCalls[0].Arguments)
	}
	if resp.Usage.Total() != 17 {
		t.Errorf("usage total = %d, want 17", resp.Usage.Total())
	}
}

func TestOllamaHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, WithOllamaHTTPClient(srv.Client()))
	_, err := p.Chat(context.Background(), []Message{UserMessage("x")}, nil, &ChatOptions{Model: "nope"})
	if err == nil || !strings.Contains(err.Error(), "HTTP 404") {
		t.Errorf("got %v, want HTTP 404 error", err)
	}
}

func TestOllamaPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"models":[]}`)
	}))
	p := NewOllamaProvider(srv.URL, WithOllamaHTTPClient(srv.Client()))
	if err := p.Ping(context.Background()); err != nil {
		t.Errorf("Ping: %v", err)
	}
	srv.Close()
	if err := p.Ping(context.Background()); !errors.Is(err, ErrProviderDown) {
		t.Errorf("Ping after close: got %v, want ErrProviderDown", err)
	}
}

func TestResponseString(t *testing.T) {
	r := &Response{Model: "m", Content: strings.Repeat("a", 100)}
	if s := r.String(); !strings.Contains(s, "...") {
		t.Errorf("long content not truncated: %s", s)
	}
	r = &Response{Model: "m", ToolCalls: []ToolCall{{Name: "x"}}}
	if s := r.String(); !strings.Contains(s, "1 tool call") {
		t.Errorf("String() = %s", s)
	}
}
