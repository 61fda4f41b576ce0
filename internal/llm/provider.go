package llm

import (
	"context"
	"encoding/json"
)

// Provider is the abstraction over an LLM grading backend.
// Both the fast and detail grading adapters talk to the model through it.
type Provider interface {
	// Generate sends a prompt to the LLM and returns structured output.
	// When the request carries a Schema, the response Content is JSON
	// validated against it before being returned.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes a single LLM call.
type Request struct {
	// System sets the grader role and constraints.
	System string

	// Messages is the conversation. Grading is single-turn, so this is
	// normally one user message carrying the essay or transcript context.
	Messages []Message

	// Schema is the JSON Schema the response must conform to. When set,
	// the provider uses its native structured output mechanism. When nil,
	// Content is the raw text wrapped as json.RawMessage.
	Schema *Schema

	// MaxTokens caps the response length.
	MaxTokens int

	// Temperature controls randomness, 0.0–1.0. Zero means deterministic.
	Temperature float64
}

// Message is one turn of the conversation.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema defines the JSON structure expected from the LLM.
type Schema struct {
	// Name identifies this schema (tool name for Anthropic, schema name
	// for OpenAI). Kebab-case, e.g. "fast-grading".
	Name string

	// Description tells the LLM what the schema represents.
	Description string

	// Definition is the JSON Schema definition as a map.
	Definition map[string]any
}

// Response holds the LLM's output.
type Response struct {
	// Content is the generated output. Validated JSON when a Schema was
	// requested, otherwise raw text as a JSON string.
	Content json.RawMessage

	// Usage reports token consumption for this request.
	Usage Usage

	// Model is the actual model that served the request.
	Model string

	// StopReason is "end" for a complete response. Truncated responses
	// surface as *ErrMaxTokensExceeded instead of a response.
	StopReason string
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// resolveModel turns a friendly alias into a backend model ID. Names not
// in the alias table pass through so exact model IDs work too.
func resolveModel(name string, aliases map[string]string) string {
	if id, ok := aliases[name]; ok {
		return id
	}
	return name
}
