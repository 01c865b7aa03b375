// File: api/schemas/interfaces.go
package schemas

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// -- LLM Client Schemas & Interface --

// GenerationOptions controls sampling for a single completion.
type GenerationOptions struct {
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p,omitempty"`
	TopK        int     `json:"top_k,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
}

// GenerationRequest encapsulates one request to the model. SystemPrompt carries
// the rendered template; UserPrompt is optional.
type GenerationRequest struct {
	SystemPrompt string            `json:"system_prompt"`
	UserPrompt   string            `json:"user_prompt,omitempty"`
	Options      GenerationOptions `json:"options"`
}

// GenerationResult is the accumulated output of a streamed completion.
type GenerationResult struct {
	Text             string `json:"text"`
	Provider         string `json:"provider"`
	Model            string `json:"model"`
	PromptTokens     int    `json:"prompt_tokens,omitempty"`
	CompletionTokens int    `json:"completion_tokens,omitempty"`
}

// LLMClient abstracts a streaming text-generation provider.
type LLMClient interface {
	// Stream produces a completion, forwarding each non-empty text delta to
	// onDelta as it arrives. The returned result holds the full text.
	Stream(ctx context.Context, req GenerationRequest, onDelta func(delta string)) (*GenerationResult, error)
	// Close releases any resources held by the client.
	Close() error
}

// -- Generation Telemetry --

// GenerationLog is one record of a completed code generation.
type GenerationLog struct {
	ID               uuid.UUID         `json:"id"`
	PromptID         string            `json:"prompt_id"`
	Provider         string            `json:"provider"`
	Model            string            `json:"model"`
	Completion       string            `json:"completion"`
	Variables        map[string]string `json:"variables,omitempty"`
	PromptTokens     int               `json:"prompt_tokens,omitempty"`
	CompletionTokens int               `json:"completion_tokens,omitempty"`
	Latency          time.Duration     `json:"latency"`
	CreatedAt        time.Time         `json:"created_at"`
}

// TelemetrySink receives generation records.
type TelemetrySink interface {
	Record(ctx context.Context, entry GenerationLog) error
}
