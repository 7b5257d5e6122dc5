package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/javiermolinar/lifecoach/internal/agenda"
	"github.com/javiermolinar/lifecoach/internal/db"
	"github.com/javiermolinar/lifecoach/internal/scheduler"
)

// 2025-01-15 is a Wednesday.
var testNow = time.Date(2025, 1, 15, 8, 0, 0, 0, time.UTC)

func newTestAgenda(t *testing.T) *agenda.Service {
	t.Helper()
	store, err := db.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("db.New: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	sched, err := scheduler.New("06:30", "23:00")
	if err != nil {
		t.Fatalf("scheduler.New: %v", err)
	}
	return agenda.New(store, sched, agenda.WithClock(func() time.Time { return testNow }))
}

// scriptedClient replays canned replies and records what it was sent.
type scriptedClient struct {
	replies []*Reply
	calls   [][]Message
}

func (c *scriptedClient) Complete(_ context.Context, messages []Message, _ []Tool) (*Reply, error) {
	c.calls = append(c.calls, append([]Message(nil), messages...))
	if len(c.replies) == 0 {
		return nil, errors.New("script exhausted")
	}
	r := c.replies[0]
	c.replies = c.replies[1:]
	return r, nil
}

func decodeResult(t *testing.T, raw string) ToolResult {
	t.Helper()
	var res ToolResult
	if err := json.Unmarshal([]byte(raw), &res); err != nil {
		t.Fatalf("tool result is not JSON: %v (%s)", err, raw)
	}
	return res
}

func TestToolbox_CreateAndRelocate(t *testing.T) {
	tb := NewToolbox(newTestAgenda(t), "me")
	ctx := context.Background()

	res := decodeResult(t, tb.Call(ctx, ToolCall{
		Name:      ToolCreate,
		Arguments: `{"title":"Lunch","start":"12:00","end":"12:30","category":"meal"}`,
	}))
	if !res.OK {
		t.Fatalf("create failed: %+v", res.Error)
	}

	raw := tb.Call(ctx, ToolCall{
		Name:      ToolCreate,
		Arguments: `{"title":"Review","date":"2025-01-15","start":"12:15","end":"12:45","category":"meeting"}`,
	})
	res = decodeResult(t, raw)
	if !res.OK {
		t.Fatalf("create failed: %+v", res.Error)
	}
	if !strings.Contains(raw, `"relocated":[{`) || !strings.Contains(raw, `"to":"12:45-13:15"`) {
		t.Errorf("relocation missing from result: %s", raw)
	}
}

func TestToolbox_ErrorKinds(t *testing.T) {
	tb := NewToolbox(newTestAgenda(t), "me")
	ctx := context.Background()

	seed := decodeResult(t, tb.Call(ctx, ToolCall{
		Name:      ToolCreate,
		Arguments: `{"title":"Standup","start":"09:00","end":"09:30","category":"meeting"}`,
	}))
	if !seed.OK {
		t.Fatalf("seed failed: %+v", seed.Error)
	}

	tests := []struct {
		name  string
		call  ToolCall
		kind  string
		field string
	}{
		{
			name: "hard conflict",
			call: ToolCall{Name: ToolCreate, Arguments: `{"title":"Call","start":"09:15","end":"09:45","category":"meeting"}`},
			kind: KindHardConflict,
		},
		{
			name:  "validation",
			call:  ToolCall{Name: ToolCreate, Arguments: `{"title":"Call","start":"09:15","end":"09:45","category":"party"}`},
			kind:  KindValidation,
			field: "category",
		},
		{
			name: "malformed arguments",
			call: ToolCall{Name: ToolCreate, Arguments: `{"title":`},
			kind: KindValidation,
		},
		{
			name: "not found",
			call: ToolCall{Name: ToolDelete, Arguments: `{"id":"nope"}`},
			kind: KindNotFound,
		},
		{
			name: "no fields",
			call: ToolCall{Name: ToolUpdate, Arguments: `{"id":"nope"}`},
			kind: KindNoFields,
		},
		{
			name:  "missing id",
			call:  ToolCall{Name: ToolUpdate, Arguments: `{"title":"x"}`},
			kind:  KindValidation,
			field: "id",
		},
		{
			name: "unknown tool",
			call: ToolCall{Name: "book_flight", Arguments: `{}`},
			kind: KindUnknownTool,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := decodeResult(t, tb.Call(ctx, tt.call))
			if res.OK || res.Error == nil {
				t.Fatalf("expected failure, got %+v", res)
			}
			if res.Error.Kind != tt.kind {
				t.Errorf("kind = %q, want %q (%s)", res.Error.Kind, tt.kind, res.Error.Message)
			}
			if tt.field != "" && res.Error.Field != tt.field {
				t.Errorf("field = %q, want %q", res.Error.Field, tt.field)
			}
		})
	}

	res := decodeResult(t, tb.Call(ctx, ToolCall{
		Name:      ToolCreate,
		Arguments: `{"title":"Call","start":"09:15","end":"09:45","category":"meeting"}`,
	}))
	if len(res.Error.Blocking) != 1 || res.Error.Blocking[0] != "Standup" {
		t.Errorf("blocking = %v, want [Standup]", res.Error.Blocking)
	}
}

func TestToolbox_UpdateDeleteList(t *testing.T) {
	tb := NewToolbox(newTestAgenda(t), "me")
	ctx := context.Background()

	created := decodeResult(t, tb.Call(ctx, ToolCall{
		Name:      ToolCreate,
		Arguments: `{"title":"Gym","start":"18:00","end":"19:00","category":"workout"}`,
	}))
	id := created.Data.(map[string]any)["entry_id"].(string)

	updated := decodeResult(t, tb.Call(ctx, ToolCall{
		Name:      ToolUpdate,
		Arguments: `{"id":"` + id + `","start":"19:00","end":"20:00"}`,
	}))
	if !updated.OK {
		t.Fatalf("update failed: %+v", updated.Error)
	}

	raw := tb.Call(ctx, ToolCall{Name: ToolList, Arguments: `{"from":"2025-01-15","to":"2025-01-15"}`})
	if !strings.Contains(raw, `"start":"19:00"`) || !strings.Contains(raw, `"title":"Gym"`) {
		t.Errorf("list does not show the update: %s", raw)
	}

	deleted := decodeResult(t, tb.Call(ctx, ToolCall{Name: ToolDelete, Arguments: `{"id":"` + id + `"}`}))
	if !deleted.OK {
		t.Fatalf("delete failed: %+v", deleted.Error)
	}
	raw = tb.Call(ctx, ToolCall{Name: ToolList, Arguments: ``})
	if strings.Contains(raw, "Gym") {
		t.Errorf("deleted entry still listed: %s", raw)
	}
}

func TestSession_RunsToolsUntilReply(t *testing.T) {
	client := &scriptedClient{replies: []*Reply{
		{ToolCalls: []ToolCall{{
			ID:        "call_1",
			Name:      ToolCreate,
			Arguments: `{"title":"Dentist","start":"15:00","end":"16:00","category":"appointment"}`,
		}}},
		{Content: "  Booked the dentist at 15:00.  "},
	}}
	session := NewSession(client, NewToolbox(newTestAgenda(t), "me"), SystemPrompt(testNow, "06:30", "23:00"), 4)

	answer, err := session.Ask(context.Background(), "book the dentist at 3pm")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if answer != "Booked the dentist at 15:00." {
		t.Errorf("answer = %q", answer)
	}
	if len(client.calls) != 2 {
		t.Fatalf("expected 2 completions, got %d", len(client.calls))
	}

	second := client.calls[1]
	last := second[len(second)-1]
	if last.Role != RoleTool || last.ToolCallID != "call_1" || !strings.Contains(last.Content, `"ok":true`) {
		t.Errorf("tool result not fed back: %+v", last)
	}
	if second[0].Role != RoleSystem || !strings.Contains(second[0].Content, "2025-01-15 (Wednesday)") {
		t.Errorf("system prompt missing or wrong: %q", second[0].Content)
	}
}

func TestSession_StepLimit(t *testing.T) {
	loop := &Reply{ToolCalls: []ToolCall{{ID: "c", Name: ToolList, Arguments: `{}`}}}
	client := &scriptedClient{replies: []*Reply{loop, loop, loop}}
	session := NewSession(client, NewToolbox(newTestAgenda(t), "me"), "", 2)

	_, err := session.Ask(context.Background(), "what's on?")
	if !errors.Is(err, ErrTooManySteps) {
		t.Fatalf("expected ErrTooManySteps, got %v", err)
	}
	if len(client.calls) != 2 {
		t.Errorf("expected 2 completions, got %d", len(client.calls))
	}
}

func TestParseJSONTurn(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantTool string
		wantArgs string
		wantText string
	}{
		{
			name:     "tool call",
			input:    `{"tool": "list_calendar_entries", "arguments": {"from": "2025-01-15"}}`,
			wantTool: ToolList,
			wantArgs: `{"from": "2025-01-15"}`,
		},
		{
			name:     "tool call without arguments",
			input:    `{"tool": "list_calendar_entries"}`,
			wantTool: ToolList,
			wantArgs: `{}`,
		},
		{
			name:     "reply",
			input:    "```json\n{\"reply\": \"All done\"}\n```",
			wantText: "All done",
		},
		{
			name:     "plain text",
			input:    "Sure, you are free after five.",
			wantText: "Sure, you are free after five.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseJSONTurn(tt.input)
			if tt.wantTool == "" {
				if len(got.ToolCalls) != 0 || got.Content != tt.wantText {
					t.Errorf("got %+v, want reply %q", got, tt.wantText)
				}
				return
			}
			if len(got.ToolCalls) != 1 {
				t.Fatalf("expected 1 tool call, got %+v", got)
			}
			if got.ToolCalls[0].Name != tt.wantTool || got.ToolCalls[0].Arguments != tt.wantArgs {
				t.Errorf("call = %+v", got.ToolCalls[0])
			}
			if got.ToolCalls[0].ID == "" {
				t.Error("tool call has no id")
			}
		})
	}
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "raw json object", input: `{"reply": "hi"}`, expected: `{"reply": "hi"}`},
		{name: "leading text", input: `Here: {"tool": "x"} thanks`, expected: `{"tool": "x"}`},
		{name: "code block", input: "```json\n{\"a\": 1}\n```", expected: `{"a": 1}`},
		{name: "plain code block", input: "```\n{\"a\": 1}\n```", expected: `{"a": 1}`},
		{name: "braces inside strings", input: `{"reply": "use {curly} ones"}`, expected: `{"reply": "use {curly} ones"}`},
		{name: "no json", input: "nothing here", expected: "nothing here"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractJSON(tt.input); got != tt.expected {
				t.Errorf("extractJSON() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestToolsSchema(t *testing.T) {
	names := map[string]bool{}
	for _, tool := range Tools() {
		names[tool.Name] = true
		if _, err := json.Marshal(tool.Parameters); err != nil {
			t.Errorf("%s: schema does not marshal: %v", tool.Name, err)
		}
	}
	for _, want := range []string{ToolCreate, ToolUpdate, ToolDelete, ToolList} {
		if !names[want] {
			t.Errorf("missing tool %s", want)
		}
	}
	if len(names) != 4 {
		t.Errorf("expected exactly 4 tools, got %d", len(names))
	}
}

func TestNewClient(t *testing.T) {
	client, err := NewClient("ollama", "llama3", "", "")
	if err != nil {
		t.Fatalf("ollama: %v", err)
	}
	if c, ok := client.(*OllamaClient); !ok || c.baseURL != defaultOllamaBaseURL {
		t.Errorf("ollama client = %#v", client)
	}

	client, err = NewClient("lmstudio", "qwen", "", "")
	if err != nil {
		t.Fatalf("lmstudio: %v", err)
	}
	if c, ok := client.(*OpenAIClient); !ok || c.baseURL != defaultLMStudioBaseURL {
		t.Errorf("lmstudio client = %#v", client)
	}

	if _, err := NewClient("openai", "gpt-4o-mini", "", ""); err == nil {
		t.Error("expected error for openai without api key")
	}
	if _, err := NewClient("openai", "gpt-4o-mini", "", "sk-test"); err != nil {
		t.Errorf("openai: %v", err)
	}
	if _, err := NewClient("unknown", "model", "", ""); err == nil {
		t.Error("expected error for unsupported provider")
	}
}
