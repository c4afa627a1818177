package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
)

// Provider is the core abstraction for LLM interaction.
// Every generator in vuequest talks to the model through this interface.
type Provider interface {
	// Generate sends a prompt to the LLM and returns its response.
	// When req.Schema is set the provider asks for structured output and
	// validates the result; otherwise Content holds the raw text, which
	// callers must treat as untrusted and run through the normalizer.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes what to send to the LLM.
type Request struct {
	// System is the system prompt. Sets the LLM's role and constraints.
	System string

	// Messages is the conversation history. Challenge, hint and review
	// prompts are single-turn; tutor chat replays the recent history.
	Messages []Message

	// Schema is the JSON Schema the response must conform to.
	// When nil, the response Content is the model's raw text.
	Schema *Schema

	// MaxTokens is the maximum number of tokens in the response.
	MaxTokens int

	// Temperature controls randomness. Range: 0.0 - 1.0.
	Temperature float64
}

// SingleTurn builds the common system + one user message request.
func SingleTurn(system, user string, maxTokens int, temperature float64) Request {
	return Request{
		System:      system,
		Messages:    []Message{{Role: RoleUser, Content: user}},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}
}

// Message represents a single message in the conversation.
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
	// Name identifies this schema (used as schema name for OpenAI and as
	// the compiled-schema cache key). Kebab-case, e.g. "code-evaluation".
	Name string

	// Description is a human-readable description of what this schema
	// represents.
	Description string

	// Definition is the JSON Schema definition as a map.
	Definition map[string]any
}

// Response holds the LLM's output.
type Response struct {
	// Content is the generated output: validated JSON when a Schema was
	// requested, raw model text otherwise.
	Content json.RawMessage

	// Usage reports token consumption for this request.
	Usage Usage

	// Model is the actual model that served the request.
	Model string

	// StopReason indicates why generation stopped.
	// Normalized to: "end", "max_tokens", "error"
	StopReason string
}

// Text returns the response content as trimmed text.
func (r *Response) Text() string {
	if r == nil {
		return ""
	}
	return strings.TrimSpace(string(r.Content))
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// finish builds the Response every provider returns. Structured requests
// must arrive complete and match their schema. Free text only has to be
// non-empty; a truncated answer is kept for the normalizer to salvage.
func finish(req Request, content string, truncated bool, usage Usage, model string) (*Response, error) {
	raw := json.RawMessage(content)
	if strings.TrimSpace(content) == "" {
		return nil, &ErrInvalidResponse{Err: errors.New("empty response")}
	}
	if req.Schema != nil {
		if truncated {
			return nil, &ErrMaxTokensExceeded{Content: raw}
		}
		if err := validateResponse(req.Schema, raw); err != nil {
			return nil, err
		}
	}

	stop := "end"
	if truncated {
		stop = "max_tokens"
	}
	if usage.TotalTokens == 0 {
		usage.TotalTokens = usage.InputTokens + usage.OutputTokens
	}
	return &Response{Content: raw, Usage: usage, Model: model, StopReason: stop}, nil
}

// resolveModel maps a friendly model name to a provider model ID. Unknown
// names pass through so direct IDs work.
func resolveModel(name string, models map[string]string) string {
	if id, ok := models[name]; ok {
		return id
	}
	return name
}
