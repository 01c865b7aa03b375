// File: internal/llmclient/gemini_client.go
package llmclient

import (
	"context"
	"fmt"
	"iter"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/xkilldash9x/framesmith/api/schemas"
	"github.com/xkilldash9x/framesmith/internal/config"
	"github.com/xkilldash9x/framesmith/internal/network"
)

// contentStreamer is the slice of the genai Models service the client uses.
type contentStreamer interface {
	GenerateContentStream(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error]
}

// GeminiClient streams completions from the Gemini API through the genai SDK.
type GeminiClient struct {
	model   string
	timeout time.Duration
	models  contentStreamer
	logger  *zap.Logger
}

// NewGeminiClient initializes the client.
func NewGeminiClient(ctx context.Context, cfg config.LLMConfig, logger *zap.Logger) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("Gemini API Key is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	netCfg := network.NewDefaultClientConfig()
	netCfg.Logger = logger
	clientCfg := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: network.NewStreamingClient(netCfg),
	}
	if cfg.Endpoint != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.Endpoint}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return newGeminiClient(cfg, client.Models, logger), nil
}

func newGeminiClient(cfg config.LLMConfig, models contentStreamer, logger *zap.Logger) *GeminiClient {
	return &GeminiClient{
		model:   cfg.Model,
		timeout: cfg.APITimeout,
		models:  models,
		logger:  logger.Named("llm_client.gemini"),
	}
}

// Stream implements schemas.LLMClient. The rendered template becomes the
// system instruction; when the request has no user prompt, the template is
// sent as the only user turn instead, since the API needs at least one.
func (c *GeminiClient) Stream(ctx context.Context, req schemas.GenerationRequest, onDelta func(string)) (*schemas.GenerationResult, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	contents, genCfg := c.buildRequest(req)
	result := &schemas.GenerationResult{Provider: string(config.ProviderGemini), Model: c.model}

	var text strings.Builder
	startTime := time.Now()
	for resp, err := range c.models.GenerateContentStream(ctx, c.model, contents, genCfg) {
		if err != nil {
			return nil, fmt.Errorf("gemini stream failed after %d bytes: %w", text.Len(), err)
		}
		if resp == nil {
			continue
		}
		if resp.UsageMetadata != nil {
			result.PromptTokens = int(resp.UsageMetadata.PromptTokenCount)
			result.CompletionTokens = int(resp.UsageMetadata.CandidatesTokenCount)
		}
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return nil, fmt.Errorf("gemini API blocked the prompt (Reason: %s)", resp.PromptFeedback.BlockReason)
		}
		if len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
			continue
		}

		candidate := resp.Candidates[0]
		switch reason := string(candidate.FinishReason); reason {
		case "SAFETY", "BLOCKLIST", "PROHIBITED_CONTENT":
			return nil, fmt.Errorf("gemini API blocked the response (Reason: %s)", reason)
		}
		if delta := candidateText(candidate); delta != "" {
			text.WriteString(delta)
			if onDelta != nil {
				onDelta(delta)
			}
		}
	}

	result.Text = text.String()
	c.logger.Info("LLM generation complete (Gemini)",
		zap.String("model", c.model),
		zap.Duration("duration", time.Since(startTime)),
		zap.Int("prompt_tokens", result.PromptTokens),
		zap.Int("completion_tokens", result.CompletionTokens),
	)
	return result, nil
}

// Close implements schemas.LLMClient. The genai client holds no resources.
func (c *GeminiClient) Close() error { return nil }

func (c *GeminiClient) buildRequest(req schemas.GenerationRequest) ([]*genai.Content, *genai.GenerateContentConfig) {
	genCfg := &genai.GenerateContentConfig{
		Temperature: float32Ptr(req.Options.Temperature),
	}
	if req.Options.TopP > 0 {
		genCfg.TopP = float32Ptr(req.Options.TopP)
	}
	if req.Options.TopK > 0 {
		genCfg.TopK = float32Ptr(float64(req.Options.TopK))
	}
	if req.Options.MaxTokens > 0 {
		genCfg.MaxOutputTokens = int32(req.Options.MaxTokens)
	}

	user := req.UserPrompt
	if strings.TrimSpace(user) == "" {
		user = req.SystemPrompt
	} else if req.SystemPrompt != "" {
		genCfg.SystemInstruction = textContent("", req.SystemPrompt)
	}
	return []*genai.Content{textContent("user", user)}, genCfg
}

// candidateText joins the text parts of a candidate, skipping thoughts.
func candidateText(c *genai.Candidate) string {
	if c.Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range c.Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		sb.WriteString(part.Text)
	}
	return sb.String()
}

func textContent(role, text string) *genai.Content {
	return &genai.Content{Role: role, Parts: []*genai.Part{{Text: text}}}
}

func float32Ptr(v float64) *float32 {
	f := float32(v)
	return &f
}
