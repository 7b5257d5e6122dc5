package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
)

const defaultOllamaBaseURL = "http://localhost:11434"

// OllamaClient implements Client on an Ollama backend. Tools are offered
// through the prompt and the model answers in JSON mode with either a tool
// call or a reply.
type OllamaClient struct {
	client  *ollama.LLM
	model   string
	baseURL string
}

// NewOllamaClient creates a new Ollama client.
func NewOllamaClient(model, baseURL string) (*OllamaClient, error) {
	if model == "" {
		return nil, errors.New("ollama model is required")
	}
	if baseURL == "" {
		baseURL = defaultOllamaBaseURL
	}

	client, err := ollama.New(
		ollama.WithModel(model),
		ollama.WithServerURL(baseURL),
	)
	if err != nil {
		return nil, fmt.Errorf("creating ollama client: %w", err)
	}

	return &OllamaClient{
		client:  client,
		model:   model,
		baseURL: baseURL,
	}, nil
}

// jsonTurn is the shape the model must answer with.
type jsonTurn struct {
	Tool      string          `json:"tool,omitempty"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
	Reply     string          `json:"reply,omitempty"`
}

// Complete sends the conversation and returns the model's next turn.
func (c *OllamaClient) Complete(ctx context.Context, messages []Message, tools []Tool) (*Reply, error) {
	resp, err := c.client.GenerateContent(
		ctx,
		toLangChainMessages(messages, tools),
		llms.WithModel(c.model),
		llms.WithJSONMode(),
	)
	if err != nil {
		return nil, fmt.Errorf("ollama chat: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response choices returned")
	}
	return parseJSONTurn(resp.Choices[0].Content), nil
}

// parseJSONTurn decodes a JSON-mode answer. Anything that is not a tool call is a reply.
func parseJSONTurn(content string) *Reply {
	var turn jsonTurn
	if err := json.Unmarshal([]byte(extractJSON(content)), &turn); err != nil {
		return &Reply{Content: content}
	}
	if turn.Tool == "" {
		if turn.Reply == "" {
			return &Reply{Content: content}
		}
		return &Reply{Content: turn.Reply}
	}
	args := string(turn.Arguments)
	if args == "" || args == "null" {
		args = "{}"
	}
	return &Reply{ToolCalls: []ToolCall{{
		ID:        "call_" + uuid.NewString()[:8],
		Name:      turn.Tool,
		Arguments: args,
	}}}
}

// toolInstructions renders the tool catalogue and the answer format.
func toolInstructions(tools []Tool) string {
	var b strings.Builder
	b.WriteString("You can call these tools:\n")
	for _, t := range tools {
		schema, _ := json.Marshal(t.Parameters)
		fmt.Fprintf(&b, "- %s: %s\n  arguments schema: %s\n", t.Name, t.Description, schema)
	}
	b.WriteString(`
Answer with a single JSON object and nothing else.
To call a tool: {"tool": "<name>", "arguments": {...}}
To answer the user: {"reply": "<text>"}`)
	return b.String()
}

func toLangChainMessages(messages []Message, tools []Tool) []llms.MessageContent {
	result := make([]llms.MessageContent, 0, len(messages)+1)
	if len(tools) > 0 {
		result = append(result, llms.TextParts(llms.ChatMessageTypeSystem, toolInstructions(tools)))
	}
	for _, msg := range messages {
		switch strings.ToLower(msg.Role) {
		case RoleSystem:
			result = append(result, llms.TextParts(llms.ChatMessageTypeSystem, msg.Content))
		case RoleAssistant:
			content := msg.Content
			if len(msg.ToolCalls) > 0 {
				tc := msg.ToolCalls[0]
				content = fmt.Sprintf(`{"tool": %q, "arguments": %s}`, tc.Name, tc.Arguments)
			}
			result = append(result, llms.TextParts(llms.ChatMessageTypeAI, content))
		case RoleTool:
			result = append(result, llms.TextParts(llms.ChatMessageTypeHuman,
				fmt.Sprintf("Result of %s: %s", msg.Name, msg.Content)))
		default:
			result = append(result, llms.TextParts(llms.ChatMessageTypeHuman, msg.Content))
		}
	}
	return result
}
