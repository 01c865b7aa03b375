// File: internal/llmclient/helper_test.go
package llmclient

import (
	"context"
	"iter"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"google.golang.org/genai"

	"github.com/xkilldash9x/framesmith/api/schemas"
	"github.com/xkilldash9x/framesmith/internal/config"
)

// setupTestLogger returns a logger whose Info and above entries are observable.
func setupTestLogger(t *testing.T) (*zap.Logger, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.InfoLevel)
	return zap.New(core), logs
}

// getValidLLMConfig returns a valid LLMConfig for testing purposes.
func getValidLLMConfig(provider config.LLMProvider) config.LLMConfig {
	return config.LLMConfig{
		Provider:    provider,
		APIKey:      "test-api-key",
		Model:       "test-model",
		APITimeout:  5 * time.Second,
		Temperature: 0.5,
		TopP:        0.9,
		TopK:        40,
		MaxTokens:   1024,
	}
}

// createTestRequest provides a standard generation request structure.
func createTestRequest() schemas.GenerationRequest {
	return schemas.GenerationRequest{
		SystemPrompt: "Turn this frame into a component: []",
		Options: schemas.GenerationOptions{
			Temperature: 0.5,
			TopP:        0.9,
			TopK:        40,
			MaxTokens:   1024,
		},
	}
}

// collectDeltas returns an onDelta callback and a pointer to what it saw.
func collectDeltas() (func(string), *[]string) {
	var got []string
	return func(d string) { got = append(got, d) }, &got
}

// fakeStreamer replays canned responses in place of the genai Models service.
type fakeStreamer struct {
	responses []*genai.GenerateContentResponse
	err       error

	gotModel    string
	gotContents []*genai.Content
	gotConfig   *genai.GenerateContentConfig
}

func (f *fakeStreamer) GenerateContentStream(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error] {
	f.gotModel = model
	f.gotContents = contents
	f.gotConfig = cfg
	return func(yield func(*genai.GenerateContentResponse, error) bool) {
		for _, r := range f.responses {
			if !yield(r, nil) {
				return
			}
		}
		if f.err != nil {
			yield(nil, f.err)
		}
	}
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: textContent("model", text)}},
	}
}
