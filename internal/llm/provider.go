// Package llm is the model-provider layer behind the reasoning
// classifier. Every provider returns schema-validated JSON; retries,
// timeouts and request logging are layered on as decorators.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
)

// Provider generates a single structured completion.
type Provider interface {
	// Generate sends req and returns the model's answer. When req.Schema
	// is set the answer has already been validated against it.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID is the model the provider is configured to call.
	ModelID() string
}

// Request is one prompt to a model.
type Request struct {
	System   string
	Messages []Message

	// Schema asks the provider for JSON output conforming to it. When nil
	// the raw text answer is returned.
	Schema *Schema

	// Model overrides the provider's configured model for this call. It
	// may be an alias ("claude-sonnet") or a full model id.
	Model string

	MaxTokens int

	// Temperature is in [0, 1]; zero leaves the provider default.
	Temperature float64
}

// Message is one conversation turn.
type Message struct {
	Role    Role
	Content string
}

// Role is the author of a Message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema is a named JSON Schema. The name doubles as the tool or
// response-format name on providers that need one, e.g. "reasoning-blocks".
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

// DefaultMaxTokens is used when Request.MaxTokens is zero.
const DefaultMaxTokens = 4096

func (r Request) maxTokens() int {
	if r.MaxTokens > 0 {
		return r.MaxTokens
	}
	return DefaultMaxTokens
}

// models resolves the model of each call: the request's override when
// set, the configured model otherwise.
type models struct {
	model   string
	aliases map[string]string
}

func newModels(name string, aliases map[string]string) models {
	return models{model: resolveModel(name, aliases), aliases: aliases}
}

func (m models) ModelID() string {
	return m.model
}

func (m models) pick(req Request) string {
	if req.Model == "" {
		return m.model
	}
	return resolveModel(req.Model, m.aliases)
}

// resolveModel maps an alias to a model id; unknown names are assumed to
// be ids already.
func resolveModel(name string, aliases map[string]string) string {
	if id, ok := aliases[name]; ok {
		return id
	}
	return name
}

// finish checks a provider's answer and wraps it in a Response. A
// truncated, empty or schema-violating answer is an error.
func finish(req Request, text string, truncated bool, usage Usage, model string) (*Response, error) {
	content := json.RawMessage(text)
	if truncated {
		return nil, &ErrMaxTokensExceeded{Content: content}
	}
	if strings.TrimSpace(text) == "" {
		return nil, &ErrInvalidResponse{Err: errors.New("empty answer")}
	}
	if err := validateResponse(req.Schema, content); err != nil {
		return nil, err
	}
	if usage.TotalTokens == 0 {
		usage.TotalTokens = usage.InputTokens + usage.OutputTokens
	}
	return &Response{Content: content, Usage: usage, Model: model, StopReason: StopEnd}, nil
}

// Normalized stop reasons.
const (
	StopEnd       = "end"
	StopMaxTokens = "max_tokens"
)

// Response is a model answer.
type Response struct {
	Content    json.RawMessage
	Usage      Usage
	Model      string
	StopReason string
}

// Usage is the token accounting of one call.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
