// File: internal/llmclient/openai_client.go
package llmclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	json "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/xkilldash9x/framesmith/api/schemas"
	"github.com/xkilldash9x/framesmith/internal/config"
	"github.com/xkilldash9x/framesmith/internal/network"
)

const defaultOpenAIBaseURL = "https://api.openai.com"

// APIError is a non-2xx response from a provider.
type APIError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s API error: status %d", e.Provider, e.StatusCode)
	}
	return fmt.Sprintf("%s API error: status %d: %s", e.Provider, e.StatusCode, e.Message)
}

// Retryable reports whether the request may succeed if repeated.
func (e *APIError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// -- OpenAI API Request/Response Structures (Internal to this file) --

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIStreamOptions struct {
	IncludeUsage bool `json:"include_usage"`
}

type openAIRequest struct {
	Model         string              `json:"model"`
	Messages      []openAIMessage     `json:"messages"`
	Stream        bool                `json:"stream"`
	StreamOptions openAIStreamOptions `json:"stream_options"`
	Temperature   float64             `json:"temperature"`
	TopP          float64             `json:"top_p,omitempty"`
	MaxTokens     int                 `json:"max_tokens,omitempty"`
}

type openAIChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
			Refusal string `json:"refusal"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// OpenAIClient streams chat completions over server-sent events.
type OpenAIClient struct {
	apiKey     string
	endpoint   string
	model      string
	timeout    time.Duration
	httpClient *http.Client
	newBackOff func() backoff.BackOff
	logger     *zap.Logger
}

// NewOpenAIClient initializes the client. cfg.Endpoint, when set, replaces the
// API base URL.
func NewOpenAIClient(cfg config.LLMConfig, logger *zap.Logger) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API Key is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	base := cfg.Endpoint
	if base == "" {
		base = defaultOpenAIBaseURL
	}
	netCfg := network.NewDefaultClientConfig()
	netCfg.Logger = logger

	return &OpenAIClient{
		apiKey:     cfg.APIKey,
		endpoint:   strings.TrimRight(base, "/") + "/v1/chat/completions",
		model:      cfg.Model,
		timeout:    cfg.APITimeout,
		httpClient: network.NewStreamingClient(netCfg),
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.MaxElapsedTime = 2 * time.Minute
			b.MaxInterval = 30 * time.Second
			return b
		},
		logger: logger.Named("llm_client.openai"),
	}, nil
}

// Stream implements schemas.LLMClient. Connection attempts are retried on
// throttling and server errors; once the stream is open a failure is final.
func (c *OpenAIClient) Stream(ctx context.Context, req schemas.GenerationRequest, onDelta func(string)) (*schemas.GenerationResult, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	body, err := json.Marshal(c.buildRequestPayload(req))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request payload: %w", err)
	}

	startTime := time.Now()
	var resp *http.Response
	operation := func() error {
		var err error
		resp, err = c.connect(ctx, body)
		return err
	}
	notify := func(err error, wait time.Duration) {
		c.logger.Warn("LLM request failed, retrying...", zap.Duration("wait", wait), zap.Error(err))
	}
	if err := backoff.RetryNotify(operation, backoff.WithContext(c.newBackOff(), ctx), notify); err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	result := &schemas.GenerationResult{Provider: string(config.ProviderOpenAI), Model: c.model}
	var text strings.Builder
	err = readSSE(resp.Body, func(data string) error {
		data = strings.TrimSpace(data)
		if data == "[DONE]" {
			return errStreamDone
		}
		if data == "" {
			return nil
		}

		var chunk openAIChunk
		if err := json.UnmarshalFromString(data, &chunk); err != nil {
			return fmt.Errorf("failed to decode stream chunk: %w", err)
		}
		if chunk.Error != nil {
			return fmt.Errorf("openai stream error: %s", chunk.Error.Message)
		}
		if chunk.Usage != nil {
			result.PromptTokens = chunk.Usage.PromptTokens
			result.CompletionTokens = chunk.Usage.CompletionTokens
		}
		for _, choice := range chunk.Choices {
			if choice.Delta.Refusal != "" {
				return fmt.Errorf("model refused: %s", choice.Delta.Refusal)
			}
			if delta := choice.Delta.Content; delta != "" {
				text.WriteString(delta)
				if onDelta != nil {
					onDelta(delta)
				}
			}
		}
		return nil
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("openai stream failed after %d bytes: %w", text.Len(), err)
	}

	result.Text = text.String()
	c.logger.Info("LLM generation complete (OpenAI)",
		zap.String("model", c.model),
		zap.Duration("duration", time.Since(startTime)),
		zap.Int("prompt_tokens", result.PromptTokens),
		zap.Int("completion_tokens", result.CompletionTokens),
	)
	return result, nil
}

// Close implements schemas.LLMClient.
func (c *OpenAIClient) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

func (c *OpenAIClient) connect(ctx context.Context, body []byte) (*http.Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to create HTTP request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, backoff.Permanent(ctxErr)
		}
		return nil, fmt.Errorf("failed to execute HTTP request: %w", err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		return resp, nil
	}

	defer resp.Body.Close()
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	apiErr := &APIError{Provider: "openai", StatusCode: resp.StatusCode, Message: errorMessage(respBody)}
	c.logger.Error("OpenAI API returned error status", zap.Int("status", resp.StatusCode), zap.String("message", apiErr.Message))
	if apiErr.Retryable() {
		return nil, apiErr
	}
	return nil, backoff.Permanent(apiErr)
}

func (c *OpenAIClient) buildRequestPayload(req schemas.GenerationRequest) openAIRequest {
	messages := make([]openAIMessage, 0, 2)
	if req.SystemPrompt != "" {
		messages = append(messages, openAIMessage{Role: "system", Content: req.SystemPrompt})
	}
	if strings.TrimSpace(req.UserPrompt) != "" {
		messages = append(messages, openAIMessage{Role: "user", Content: req.UserPrompt})
	}
	return openAIRequest{
		Model:         c.model,
		Messages:      messages,
		Stream:        true,
		StreamOptions: openAIStreamOptions{IncludeUsage: true},
		Temperature:   req.Options.Temperature,
		TopP:          req.Options.TopP,
		MaxTokens:     req.Options.MaxTokens,
	}
}

// errorMessage extracts error.message from a provider error body, falling back
// to the trimmed body.
func errorMessage(body []byte) string {
	if msg := json.Get(body, "error", "message").ToString(); msg != "" {
		return msg
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 512 {
		msg = msg[:512]
	}
	return msg
}
